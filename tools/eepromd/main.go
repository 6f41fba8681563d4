//go:build linux || darwin

// Eepromd registers the LPC178x/177x EEPROM with the host and serves it as a
// file until interrupted.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/clktmr/lpceeprom/drivers/eeprom"
	"github.com/clktmr/lpceeprom/drivers/eeprom/eepromfs"
	"github.com/clktmr/lpceeprom/hal"
	ee "github.com/clktmr/lpceeprom/hal/eeprom"
	"github.com/clktmr/lpceeprom/hal/eeprom/sim"
)

const usageString = `EEPROM driver daemon.

Usage: %s [flags]

Serves the EEPROM as <mount>/<name>. Only one process can have the file open
at a time.

`

var (
	cfg = eeprom.DefaultConfig()

	mount     = flag.String("mount", "/dev", "directory to serve the device in")
	mem       = flag.String("mem", hal.DevMem, "physical memory `device`")
	simImage  = flag.String("sim", "", "simulate the controller, persisting its memory to `image`")
	lockPath  = flag.String("lock", "/run/eepromd.lock", "lock `file` preventing concurrent daemons")
	debugFlag = flag.Int("debug", 0, "driver verbosity level")
)

func init() {
	flag.StringVar(&cfg.Name, "name", cfg.Name, "device name")
	flag.UintVar(&cfg.Major, "major", cfg.Major, "device major number")
	flag.Var(&cfg.PCLK, "pclk", "peripheral clock `frequency`")
	flag.IntVar(&cfg.PollLimit, "poll-limit", cfg.PollLimit, "status polls until a transaction times out, 0 waits forever")
}

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), usageString, os.Args[0])
	flag.PrintDefaults()
}

func main() {
	log.Default().SetFlags(0)
	log.SetPrefix("eepromd: ")
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() != 0 || *debugFlag < 0 || cfg.PollLimit < 0 {
		flag.Usage()
		os.Exit(1)
	}
	cfg.Debug = *debugFlag

	unlock, err := lock(*lockPath)
	if err != nil {
		log.Fatalln("lock:", err)
	}
	defer unlock()

	var bus hal.Bus
	var hw *sim.Controller
	if *simImage != "" {
		hw, err = sim.Open(*simImage)
		bus = hw
	} else {
		var m *hal.Mem
		m, err = hal.MapMem(*mem, ee.BaseAddr, ee.RegsSize)
		if err == nil {
			defer m.Close()
		}
		bus = m
	}
	if err != nil {
		log.Fatalln(err)
	}

	dev := eeprom.New(bus, cfg)
	if err = dev.Register(); err != nil {
		log.Fatalln(err)
	}

	srv, err := eepromfs.Mount(dev, *mount)
	if err != nil {
		log.Fatalln("mount:", err)
	}

	sigintr := make(chan os.Signal, 1)
	signal.Notify(sigintr, os.Interrupt, syscall.SIGTERM)

	if err = serve(srv, sigintr); err != nil {
		log.Println("serve:", err)
	}

	if err = dev.Teardown(); err != nil && !errors.Is(err, eeprom.ErrNotRegistered) {
		log.Println("teardown:", err)
	}
	if hw != nil {
		if err = hw.Save(*simImage); err != nil {
			log.Println("save:", err)
		}
	}
}

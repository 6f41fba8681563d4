// Eeprom reads and writes the EEPROM device served by eepromd.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"

	"golang.org/x/term"
)

const usageString = `EEPROM inspection utility.

Usage:

	%[1]s [flags] -r <page> <npages>	dump npages pages starting at page
	%[1]s [flags] -w <offset> <text>	write text at byte offset
	%[1]s [flags] -s			read commands from stdin

`

var (
	readFlag  = flag.Bool("r", false, "read pages")
	writeFlag = flag.Bool("w", false, "write text")
	shellFlag = flag.Bool("s", false, "shell mode")
	devPath   = flag.String("dev", "/dev/eeprom", "device `file`")
	charset   = flag.String("charset", "", "decode the text column with the IANA `charset`")
)

func usage() {
	fmt.Fprintf(flag.CommandLine.Output(), usageString, os.Args[0])
	flag.PrintDefaults()
	os.Exit(1)
}

func main() {
	log.Default().SetFlags(0)
	log.SetPrefix(os.Args[0] + ": ")
	flag.Usage = usage
	flag.Parse()

	modes := 0
	for _, set := range []bool{*readFlag, *writeFlag, *shellFlag} {
		if set {
			modes++
		}
	}
	if modes != 1 {
		flag.Usage()
	}

	if err := run(); err != nil {
		log.Fatalln(err)
	}
}

func run() error {
	d, err := newDumper(os.Stdout, *charset)
	if err != nil {
		return err
	}

	switch {
	case *readFlag:
		if flag.NArg() != 2 {
			flag.Usage()
		}
		page, npages := atoi(flag.Arg(0)), atoi(flag.Arg(1))
		f, err := os.Open(*devPath)
		if err != nil {
			return err
		}
		defer f.Close()
		return readPages(f, d, page, npages)
	case *writeFlag:
		if flag.NArg() != 2 {
			flag.Usage()
		}
		offset := atoi(flag.Arg(0))
		f, err := os.OpenFile(*devPath, os.O_RDWR, 0)
		if err != nil {
			return err
		}
		defer f.Close()
		return writeText(f, int64(offset), flag.Arg(1))
	default:
		if flag.NArg() != 0 {
			flag.Usage()
		}
		f, err := os.OpenFile(*devPath, os.O_RDWR, 0)
		if err != nil {
			return err
		}
		defer f.Close()
		prompt := term.IsTerminal(int(os.Stdin.Fd()))
		return runShell(os.Stdin, os.Stdout, f, d, prompt)
	}
}

func atoi(s string) int {
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		flag.Usage()
	}
	return v
}

// readPages dumps npages pages starting at page.
func readPages(dev io.ReadSeeker, d *dumper, page, npages int) error {
	addr := int64(page) * pageSize
	if _, err := dev.Seek(addr, io.SeekStart); err != nil {
		return fmt.Errorf("unable to seek to page %d: %w", page, err)
	}

	var buf [lineSize]byte
	for range npages * pageSize / lineSize {
		if _, err := io.ReadFull(dev, buf[:]); err != nil {
			return fmt.Errorf("unable to read at %#04x: %w", addr, err)
		}
		d.line(addr, buf[:])
		addr += lineSize
	}
	return d.err
}

// writeText writes text at offset.
func writeText(dev io.WriteSeeker, offset int64, text string) error {
	if _, err := dev.Seek(offset, io.SeekStart); err != nil {
		return fmt.Errorf("unable to seek to %d: %w", offset, err)
	}
	n, err := io.WriteString(dev, text)
	if err != nil {
		return fmt.Errorf("unable to write: %w", err)
	}
	if n != len(text) {
		return fmt.Errorf("unable to write: %w", io.ErrShortWrite)
	}
	return nil
}

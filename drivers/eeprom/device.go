// Package eeprom provides the LPC178x/177x on-chip EEPROM as a linear,
// seekable device of Capacity bytes.
//
// Only a single Session may be open at a time, which serializes all access to
// the controller. Requests are split into page chunks, every chunk written
// costs a full erase/program cycle of its page.
package eeprom

import (
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"

	"github.com/clktmr/lpceeprom/hal"
	ee "github.com/clktmr/lpceeprom/hal/eeprom"
	"periph.io/x/conn/v3/physic"
)

const Capacity = ee.Capacity

var (
	ErrBusy          = errors.New("eeprom device busy")
	ErrInvalid       = errors.New("invalid argument")
	ErrNotRegistered = errors.New("eeprom device not registered")
	ErrClosed        = errors.New("eeprom session closed")
)

// Config holds the parameters of a Device.
type Config struct {
	Name  string // device name used for registration
	Major uint   // device number, must not be zero
	Debug int    // verbosity: 0 silent, 1 lifecycle, 2 open/release, 3 read/write

	PCLK      physic.Frequency // peripheral clock of the controller
	PollLimit int              // polls per handshake, 0 waits forever
}

func DefaultConfig() Config {
	return Config{
		Name:  "eeprom",
		Major: 166,
		PCLK:  120 * physic.MegaHertz,
	}
}

// Device is the EEPROM with its lifecycle and access lock. It is safe for
// concurrent use, but a Session is not.
type Device struct {
	cfg  Config
	ctrl *ee.Controller

	mtx        sync.Mutex // guards lifecycle state
	registered bool
	timing     ee.Timing

	locked atomic.Bool
	refs   atomic.Int32
}

func New(bus hal.Bus, cfg Config) *Device {
	return &Device{cfg: cfg, ctrl: ee.NewController(bus)}
}

func (d *Device) Config() Config {
	return d.cfg
}

func (d *Device) debugf(level int, op string, format string, args ...any) {
	if d.cfg.Debug >= level {
		log.Printf("%s: "+format, append([]any{op}, args...)...)
	}
}

// Register validates the configuration and sets up the controller's timing.
// It must be called before the first Open.
func (d *Device) Register() (err error) {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	defer func() {
		d.debugf(1, "register", "name=%s,major=%d,err=%v", d.cfg.Name, d.cfg.Major, err)
	}()

	if d.cfg.Major == 0 {
		log.Println("register: major number can't be 0")
		return fmt.Errorf("%w: major number 0", ErrInvalid)
	}
	if d.cfg.Name == "" {
		return fmt.Errorf("%w: empty device name", ErrInvalid)
	}
	if d.cfg.PCLK < ee.TargetClock {
		return fmt.Errorf("%w: pclk %v below %v", ErrInvalid, d.cfg.PCLK, ee.TargetClock)
	}
	if d.registered {
		return fmt.Errorf("%w: %s already registered", ErrBusy, d.cfg.Name)
	}

	d.ctrl.PollLimit = d.cfg.PollLimit
	d.timing = d.ctrl.Init(d.cfg.PCLK)
	d.registered = true
	d.debugf(1, "register", "pclk=%v,clkdiv=%d,wstate=%#06x", d.cfg.PCLK, d.timing.ClockDiv, d.timing.WaitState)

	return nil
}

// Teardown unregisters the device. It fails with ErrBusy while a session is
// open.
func (d *Device) Teardown() error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if !d.registered {
		return ErrNotRegistered
	}
	if refs := d.refs.Load(); refs > 0 {
		return fmt.Errorf("%w: %d open sessions", ErrBusy, refs)
	}

	d.registered = false
	d.timing = ee.Timing{}
	stats := d.ctrl.Stats()
	d.debugf(1, "teardown", "read=%d,staged=%d,eraseprograms=%d",
		stats.BytesRead, stats.BytesStaged, stats.ErasePrograms)

	return nil
}

// Timing returns the controller timing and whether it was configured.
func (d *Device) Timing() (ee.Timing, bool) {
	d.mtx.Lock()
	defer d.mtx.Unlock()
	return d.timing, d.registered
}

func (d *Device) Stats() ee.Stats {
	return d.ctrl.Stats()
}

// Open starts a new session at offset 0. Only one session can be open at a
// time, otherwise ErrBusy is returned.
func (d *Device) Open() (*Session, error) {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if !d.registered {
		return nil, ErrNotRegistered
	}
	if !d.locked.CompareAndSwap(false, true) {
		d.debugf(2, "open", "busy")
		return nil, ErrBusy
	}
	d.refs.Add(1)
	d.debugf(2, "open", "lock=1")

	return &Session{dev: d}, nil
}

func (d *Device) release() {
	d.locked.Store(false)
	d.refs.Add(-1)
	d.debugf(2, "release", "lock=0")
}

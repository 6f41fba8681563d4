// Package eeprom implements access to the on-chip EEPROM controller of the
// LPC178x/177x.
//
// The controller only knows about pages: bytes are read from a page through
// the RDATA register, written to a page register through WDATA and finally
// committed by erasing and programming a whole page. Each step is finished
// when the controller sets a flag in the interrupt status register.
package eeprom

import (
	"github.com/clktmr/lpceeprom/debug"
	"github.com/clktmr/lpceeprom/hal"
)

// BaseAddr is the physical address of the EEPROM register block.
const BaseAddr hal.Addr = 0x0020_0080

// The EEPROM supports 4032 bytes in 63 pages with 64 bytes per page.
const (
	PageSize  = 64
	PageCount = 63
	Capacity  = PageSize * PageCount

	PageShift = 6
	PageMask  = PageSize - 1
)

// Register offsets relative to BaseAddr.
const (
	OffCmd        = 0x000
	OffAddr       = 0x004
	OffWData      = 0x008
	OffRData      = 0x00c
	OffWState     = 0x010
	OffClkDiv     = 0x014
	OffPwrDwn     = 0x018
	OffIntEnClr   = 0xf58
	OffIntEnSet   = 0xf5c
	OffIntStat    = 0xf60
	OffIntEn      = 0xf64
	OffIntStatClr = 0xf68
	OffIntStatSet = 0xf6c

	// Size of the register block
	RegsSize = OffIntStatSet + 4
)

type Command uint32

const (
	Cmd8BitsRead Command = iota
	Cmd16BitsRead
	Cmd32BitsRead
	Cmd8BitsWrite
	Cmd16BitsWrite
	Cmd32BitsWrite
	CmdEraseProgramPage

	CmdMask Command = 0x7

	CmdReadPrefetch Command = 1 << 3 // read the next location after each RDATA access
)

type IntFlag uint32

const (
	IntEndOfRW   IntFlag = 1 << 26 // read or write of a single item finished
	IntEndOfProg IntFlag = 1 << 28 // erase/program of a page finished
)

// Registers provides typed access to the EEPROM register block. None of its
// methods synchronize, callers must make sure only a single goroutine uses
// the registers at a time.
type Registers struct {
	cmd        hal.R32[Command]
	addr       hal.U32
	wdata      hal.U32
	rdata      hal.U32
	wstate     hal.U32
	clkdiv     hal.U32
	pwrdwn     hal.U32
	intstat    hal.R32[IntFlag]
	intstatclr hal.R32[IntFlag]
}

func NewRegisters(bus hal.Bus) *Registers {
	return &Registers{
		cmd:        hal.NewR32[Command](bus, OffCmd),
		addr:       hal.NewU32(bus, OffAddr),
		wdata:      hal.NewU32(bus, OffWData),
		rdata:      hal.NewU32(bus, OffRData),
		wstate:     hal.NewU32(bus, OffWState),
		clkdiv:     hal.NewU32(bus, OffClkDiv),
		pwrdwn:     hal.NewU32(bus, OffPwrDwn),
		intstat:    hal.NewR32[IntFlag](bus, OffIntStat),
		intstatclr: hal.NewR32[IntFlag](bus, OffIntStatClr),
	}
}

func (r *Registers) SetCmd(cmd Command) {
	r.cmd.Store(cmd)
}

// SetAddr selects a page and the offset within it.
func (r *Registers) SetAddr(page, offset uint32) {
	debug.Assert(page < PageCount, "eeprom page out of range")
	debug.Assert(offset < PageSize, "eeprom page offset out of range")
	r.addr.Store(PackAddr(page, offset))
}

// PackAddr returns the ADDR register value for page and offset.
func PackAddr(page, offset uint32) uint32 {
	return page<<PageShift | offset
}

func (r *Registers) WriteData(v uint32) {
	r.wdata.Store(v)
}

func (r *Registers) ReadData() uint32 {
	return r.rdata.Load()
}

func (r *Registers) SetWaitState(ws uint32) {
	r.wstate.Store(ws)
}

func (r *Registers) SetClockDiv(div uint32) {
	r.clkdiv.Store(div)
}

func (r *Registers) DisablePowerDown() {
	r.pwrdwn.Store(0)
}

func (r *Registers) ClearIntStatus(mask IntFlag) {
	r.intstatclr.Store(mask)
}

func (r *Registers) IntStatus() IntFlag {
	return r.intstat.Load()
}

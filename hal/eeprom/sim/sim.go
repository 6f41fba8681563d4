// Package sim simulates the LPC178x/177x EEPROM controller.
//
// The simulation implements hal.Bus and answers the register accesses of
// the eeprom package like the hardware does, including the handshake on the
// interrupt status register. Unlike the hardware, a page erase/program only
// replaces the bytes that were staged in the page register since the last
// commit.
package sim

import (
	"sync"

	"github.com/clktmr/lpceeprom/hal/eeprom"
)

// Controller is a simulated EEPROM controller. It is safe for concurrent use.
type Controller struct {
	mtx sync.Mutex

	mem     [eeprom.Capacity]byte
	pageReg [eeprom.PageSize]byte
	staged  uint64 // bit i set if pageReg[i] was written

	cmd     eeprom.Command
	addr    uint32
	wstate  uint32
	clkdiv  uint32
	pwrdwn  uint32
	inten   eeprom.IntFlag
	intstat eeprom.IntFlag

	hang       bool
	programmed []uint32
}

// New returns a powered down controller with zeroed memory.
func New() *Controller {
	return &Controller{pwrdwn: 1}
}

// SetHang stops the controller from signaling completion of transactions.
func (c *Controller) SetHang(hang bool) {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	c.hang = hang
}

func (c *Controller) Load32(off uint32) uint32 {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	switch off {
	case eeprom.OffCmd:
		return uint32(c.cmd)
	case eeprom.OffAddr:
		return c.addr
	case eeprom.OffRData:
		if c.cmd&eeprom.CmdMask != eeprom.Cmd8BitsRead {
			return 0
		}
		v := c.mem[c.addr%eeprom.Capacity]
		c.advance()
		c.signal(eeprom.IntEndOfRW)
		return uint32(v)
	case eeprom.OffWState:
		return c.wstate
	case eeprom.OffClkDiv:
		return c.clkdiv
	case eeprom.OffPwrDwn:
		return c.pwrdwn
	case eeprom.OffIntEn:
		return uint32(c.inten)
	case eeprom.OffIntStat:
		return uint32(c.intstat)
	}
	return 0
}

func (c *Controller) Store32(off uint32, v uint32) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	switch off {
	case eeprom.OffCmd:
		c.cmd = eeprom.Command(v)
		if c.cmd&eeprom.CmdMask == eeprom.CmdEraseProgramPage {
			c.eraseProgram()
		}
	case eeprom.OffAddr:
		c.addr = v & (eeprom.PageMask<<eeprom.PageShift | eeprom.PageMask)
	case eeprom.OffWData:
		if c.cmd&eeprom.CmdMask != eeprom.Cmd8BitsWrite {
			return
		}
		i := c.addr & eeprom.PageMask
		c.pageReg[i] = byte(v)
		c.staged |= 1 << i
		c.advance()
		c.signal(eeprom.IntEndOfRW)
	case eeprom.OffWState:
		c.wstate = v
	case eeprom.OffClkDiv:
		c.clkdiv = v
	case eeprom.OffPwrDwn:
		c.pwrdwn = v & 0x1
	case eeprom.OffIntEnSet:
		c.inten |= eeprom.IntFlag(v)
	case eeprom.OffIntEnClr:
		c.inten &^= eeprom.IntFlag(v)
	case eeprom.OffIntStatSet:
		c.intstat |= eeprom.IntFlag(v)
	case eeprom.OffIntStatClr:
		c.intstat &^= eeprom.IntFlag(v)
	}
}

// The address auto increments, but wraps at the page boundary.
func (c *Controller) advance() {
	c.addr = c.addr&^eeprom.PageMask | (c.addr+1)&eeprom.PageMask
}

func (c *Controller) signal(flag eeprom.IntFlag) {
	if c.hang || c.pwrdwn != 0 {
		return
	}
	c.intstat |= flag
}

func (c *Controller) eraseProgram() {
	page := c.addr >> eeprom.PageShift
	if page >= eeprom.PageCount || c.hang || c.pwrdwn != 0 {
		return
	}
	base := page * eeprom.PageSize
	for i := range c.pageReg {
		if c.staged&(1<<i) != 0 {
			c.mem[base+uint32(i)] = c.pageReg[i]
		}
	}
	c.staged = 0
	c.programmed = append(c.programmed, page)
	c.signal(eeprom.IntEndOfProg)
}

// Programmed returns the pages erased and programmed so far, in order.
func (c *Controller) Programmed() []uint32 {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return append([]uint32(nil), c.programmed...)
}

// Memory returns a copy of the non-volatile memory.
func (c *Controller) Memory() []byte {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return append([]byte(nil), c.mem[:]...)
}

// Timing returns the clock divider and wait state registers.
func (c *Controller) Timing() eeprom.Timing {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return eeprom.Timing{ClockDiv: c.clkdiv, WaitState: c.wstate}
}

func (c *Controller) PoweredDown() bool {
	c.mtx.Lock()
	defer c.mtx.Unlock()
	return c.pwrdwn != 0
}

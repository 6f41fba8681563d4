package eeprom

import (
	"errors"
	"fmt"

	"github.com/clktmr/lpceeprom/hal"
)

var ErrTimeout = errors.New("eeprom controller timeout")

// Stats counts the transactions a Controller has issued.
type Stats struct {
	BytesRead     uint64
	BytesStaged   uint64
	ErasePrograms uint64
}

// Controller drives read, write and erase/program transactions. Each
// transaction blocks until the hardware signals completion.
//
// Controller is not safe for concurrent use.
type Controller struct {
	regs *Registers

	// PollLimit bounds the number of status polls per handshake. Zero means
	// waiting forever, which hangs the caller if the hardware never
	// responds.
	PollLimit int

	stats Stats
}

func NewController(bus hal.Bus) *Controller {
	return &Controller{regs: NewRegisters(bus)}
}

func (c *Controller) Stats() Stats {
	return c.stats
}

// Read reads len(p) bytes from page starting at offset. The range must not
// cross the page boundary.
func (c *Controller) Read(page, offset uint32, p []byte) (n int, err error) {
	c.regs.ClearIntStatus(IntEndOfRW)
	c.regs.SetAddr(page, offset)
	c.regs.SetCmd(Cmd8BitsRead | CmdReadPrefetch)

	for n = range p {
		p[n] = byte(c.regs.ReadData())
		if err = c.waitForIntStatus(IntEndOfRW); err != nil {
			break
		}
		c.stats.BytesRead++
	}
	if err != nil {
		return n, fmt.Errorf("read page %d offset %d: %w", page, offset+uint32(n), err)
	}
	return len(p), nil
}

// WritePageRegister stages p in the page register starting at offset. The
// data isn't persisted until EraseProgramPage is called.
func (c *Controller) WritePageRegister(offset uint32, p []byte) (n int, err error) {
	c.regs.ClearIntStatus(IntEndOfRW)
	c.regs.SetCmd(Cmd8BitsWrite)
	c.regs.SetAddr(0, offset)

	for n = range p {
		c.regs.WriteData(uint32(p[n]))
		if err = c.waitForIntStatus(IntEndOfRW); err != nil {
			break
		}
		c.stats.BytesStaged++
	}
	if err != nil {
		return n, fmt.Errorf("stage offset %d: %w", offset+uint32(n), err)
	}
	return len(p), nil
}

// EraseProgramPage commits the page register to page.
func (c *Controller) EraseProgramPage(page uint32) error {
	c.regs.ClearIntStatus(IntEndOfProg)
	c.regs.SetAddr(page, 0)
	c.regs.SetCmd(CmdEraseProgramPage)

	if err := c.waitForIntStatus(IntEndOfProg); err != nil {
		return fmt.Errorf("erase/program page %d: %w", page, err)
	}
	c.stats.ErasePrograms++
	return nil
}

// Blocks until all bits in mask are set, then clears them.
func (c *Controller) waitForIntStatus(mask IntFlag) error {
	for polls := 0; ; polls++ {
		if c.regs.IntStatus()&mask == mask {
			break
		}
		if c.PollLimit > 0 && polls >= c.PollLimit {
			return ErrTimeout
		}
	}
	c.regs.ClearIntStatus(mask)
	return nil
}

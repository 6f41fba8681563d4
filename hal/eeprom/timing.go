package eeprom

import (
	"periph.io/x/conn/v3/physic"
)

// TargetClock is the clock the EEPROM controller is operated at.
const TargetClock = 375 * physic.KiloHertz

// Minimal durations of the three wait state phases in nanoseconds.
const (
	phase1NS = 16
	phase2NS = 55
	phase3NS = 35
)

// Timing holds register values derived from the peripheral clock.
type Timing struct {
	ClockDiv  uint32
	WaitState uint32
}

// ComputeTiming returns the clock divider and wait states for a peripheral
// clock of pclk. The result is only meaningful for pclk >= TargetClock.
func ComputeTiming(pclk physic.Frequency) Timing {
	mhz := uint32(pclk / physic.MegaHertz)
	ws := waitCycles(mhz, phase1NS)
	ws |= waitCycles(mhz, phase2NS) << 8
	ws |= waitCycles(mhz, phase3NS) << 16
	return Timing{
		ClockDiv:  uint32(pclk/TargetClock) - 1,
		WaitState: ws,
	}
}

func waitCycles(mhz, ns uint32) uint32 {
	return (mhz*ns+999)/1000 + 1
}

// Init powers up the controller and sets its timing for a peripheral clock of
// pclk. It must be called once before any other transaction.
func (c *Controller) Init(pclk physic.Frequency) Timing {
	t := ComputeTiming(pclk)
	c.regs.DisablePowerDown()
	c.regs.SetClockDiv(t.ClockDiv)
	c.regs.SetWaitState(t.WaitState)
	return t
}

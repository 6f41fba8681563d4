// The hal package provides an hardware abstraction layer for memory mapped
// peripherals.
//
// Registers are accessed through a Bus, which is either a mapping of physical
// memory or a simulated peripheral. All hardware capabilities are directly
// exposed and in general unsafe. Use the drivers instead.
package hal

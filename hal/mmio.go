package hal

// Addr represents a physical memory address
type Addr uint32

// Bus gives 32-bit access to a block of memory mapped registers. Offsets are
// relative to the start of the block and must be 4 byte aligned.
//
// Implementations must not buffer or reorder accesses, since registers may be
// modified by the hardware between any two loads.
type Bus interface {
	Load32(off uint32) uint32
	Store32(off uint32, v uint32)
}

// T32 is the set of types a 32-bit register can be interpreted as.
type T32 interface{ ~uint32 }

// U32 is a plain 32-bit register at a fixed offset of a Bus.
type U32 struct {
	bus Bus
	off uint32
}

func NewU32(bus Bus, off uint32) U32 {
	return U32{bus, off}
}

func (r U32) Load() uint32 {
	return r.bus.Load32(r.off)
}

func (r U32) Store(v uint32) {
	r.bus.Store32(r.off, v)
}

// R32 is a 32-bit register holding a value of type T, usually a set of flags.
type R32[T T32] struct {
	bus Bus
	off uint32
}

func NewR32[T T32](bus Bus, off uint32) R32[T] {
	return R32[T]{bus, off}
}

func (r R32[T]) Load() T {
	return T(r.bus.Load32(r.off))
}

func (r R32[T]) Store(v T) {
	r.bus.Store32(r.off, uint32(v))
}

// LoadBits returns the register's value masked by mask.
func (r R32[T]) LoadBits(mask T) T {
	return r.Load() & mask
}

//go:build unix

package hal

import (
	"errors"
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// DevMem is the default source for mappings of physical memory.
const DevMem = "/dev/mem"

var ErrOutOfRange = errors.New("register offset out of range")

// Mem is a Bus backed by a shared, uncached mapping of physical memory.
// Accesses are done with atomic loads and stores, which keeps the compiler
// from caching or reordering them.
type Mem struct {
	region []byte
	start  uint32 // offset of the register block within region
	size   uint32
}

// MapMem maps size bytes of physical memory at addr from the file at path,
// which is usually DevMem. addr doesn't need to be page aligned.
func MapMem(path string, addr Addr, size uint32) (*Mem, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_SYNC, 0)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	pageMask := uint32(unix.Getpagesize() - 1)
	base := uint32(addr) &^ pageMask
	start := uint32(addr) & pageMask
	length := (start + size + pageMask) &^ pageMask

	region, err := unix.Mmap(int(f.Fd()), int64(base), int(length),
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return nil, fmt.Errorf("mmap %s at %#08x: %w", path, base, err)
	}

	return &Mem{region: region, start: start, size: size}, nil
}

func (m *Mem) ptr(off uint32) *uint32 {
	if off&0x3 != 0 || off+4 > m.size {
		panic(fmt.Errorf("%w: %#x", ErrOutOfRange, off))
	}
	return (*uint32)(unsafe.Pointer(&m.region[m.start+off]))
}

func (m *Mem) Load32(off uint32) uint32 {
	return atomic.LoadUint32(m.ptr(off))
}

func (m *Mem) Store32(off uint32, v uint32) {
	atomic.StoreUint32(m.ptr(off), v)
}

// Close unmaps the registers. The Mem must not be used afterwards.
func (m *Mem) Close() error {
	if m.region == nil {
		return nil
	}
	err := unix.Munmap(m.region)
	m.region = nil
	return err
}

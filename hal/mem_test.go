//go:build unix

package hal

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

func TestMapMem(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mem")
	if err := os.WriteFile(path, make([]byte, 0x4000), 0o600); err != nil {
		t.Fatal(err)
	}

	const addr = 0x1080
	m, err := MapMem(path, addr, 0x20)
	if err != nil {
		t.Fatal("map:", err)
	}

	tests := map[string]struct {
		off uint32
		val uint32
	}{
		"first":  {0x00, 0xdeadbeef},
		"middle": {0x0c, 0x1234_5678},
		"last":   {0x1c, 0x0000_0001},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			m.Store32(tc.off, tc.val)
			if got := m.Load32(tc.off); got != tc.val {
				t.Fatalf("expected %#x, got %#x", tc.val, got)
			}
		})
	}

	if err := m.Close(); err != nil {
		t.Fatal("close:", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	for _, tc := range tests {
		got := binary.NativeEndian.Uint32(data[addr+tc.off:])
		if got != tc.val {
			t.Errorf("expected %#x at %#x, got %#x", tc.val, addr+tc.off, got)
		}
	}
}

func TestMemOutOfRange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mem")
	if err := os.WriteFile(path, make([]byte, 0x1000), 0o600); err != nil {
		t.Fatal(err)
	}
	m, err := MapMem(path, 0, 0x10)
	if err != nil {
		t.Fatal("map:", err)
	}
	defer m.Close()

	for _, off := range []uint32{0x10, 0x02} {
		func() {
			defer func() {
				if recover() == nil {
					t.Errorf("expected panic for offset %#x", off)
				}
			}()
			m.Load32(off)
		}()
	}
}

type fakeBus map[uint32]uint32

func (b fakeBus) Load32(off uint32) uint32     { return b[off] }
func (b fakeBus) Store32(off uint32, v uint32) { b[off] = v }

func TestR32(t *testing.T) {
	type flags uint32
	bus := fakeBus{}
	r := NewR32[flags](bus, 0x8)
	r.Store(0b1011)
	if bus[0x8] != 0b1011 {
		t.Fatalf("expected %#b, got %#b", 0b1011, bus[0x8])
	}
	if got := r.LoadBits(0b0110); got != 0b0010 {
		t.Fatalf("expected %#b, got %#b", 0b0010, got)
	}
	if NewU32(bus, 0x8).Load() != 0b1011 {
		t.Fatal("U32 and R32 disagree")
	}
}

package sim

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/clktmr/lpceeprom/hal/eeprom"
	"github.com/sigurn/crc8"
)

// An image file holds the simulated memory followed by a single CRC-8 byte.
const imageSize = eeprom.Capacity + 1

var ErrChecksum = errors.New("sim image checksum mismatch")

var imageCRC8 = crc8.MakeTable(crc8.CRC8)

// ReadImage replaces the simulated memory with an image read from r.
func (c *Controller) ReadImage(r io.Reader) error {
	var buf [imageSize]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return fmt.Errorf("read sim image: %w", err)
	}
	if crc8.Checksum(buf[:eeprom.Capacity], imageCRC8) != buf[eeprom.Capacity] {
		return ErrChecksum
	}

	c.mtx.Lock()
	defer c.mtx.Unlock()
	copy(c.mem[:], buf[:eeprom.Capacity])
	return nil
}

// WriteImage writes the simulated memory as an image to w.
func (c *Controller) WriteImage(w io.Writer) error {
	mem := c.Memory()
	mem = append(mem, crc8.Checksum(mem, imageCRC8))
	_, err := w.Write(mem)
	return err
}

// Open returns a controller with its memory loaded from the image at path. A
// missing file yields a zeroed memory.
func Open(path string) (*Controller, error) {
	c := New()
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return c, nil
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	if err = c.ReadImage(f); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

// Save writes the memory image to path.
func (c *Controller) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err = c.WriteImage(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

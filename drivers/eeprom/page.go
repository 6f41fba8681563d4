package eeprom

import (
	"iter"
	"slices"

	"github.com/clktmr/lpceeprom/debug"
	ee "github.com/clktmr/lpceeprom/hal/eeprom"
)

// Chunk is the part of a request that lies within a single page.
type Chunk struct {
	Page   uint32
	Offset uint32
	Len    int
}

// Clamp returns the number of bytes of a request of length bytes at cursor
// that lie within the EEPROM.
func Clamp(cursor int64, length int) int {
	left := int64(ee.Capacity) - cursor
	if left <= 0 || length <= 0 {
		return 0
	}
	return int(min(int64(length), left))
}

// Chunks splits a request of length bytes at cursor into page sized chunks
// in ascending order. The request is clamped to the EEPROM's capacity first.
func Chunks(cursor int64, length int) iter.Seq[Chunk] {
	return func(yield func(Chunk) bool) {
		for left := Clamp(cursor, length); left > 0; {
			c := Chunk{
				Page:   uint32(cursor >> ee.PageShift),
				Offset: uint32(cursor & ee.PageMask),
			}
			c.Len = min(left, ee.PageSize-int(c.Offset))
			if debug.Enabled {
				debug.Assertf(c.Page < ee.PageCount, "chunk page %d out of range", c.Page)
				debug.Assertf(int(c.Offset)+c.Len <= ee.PageSize, "chunk %+v crosses page", c)
			}

			if !yield(c) {
				return
			}
			cursor += int64(c.Len)
			left -= c.Len
		}
	}
}

// Translate returns the chunks of a request as a slice.
func Translate(cursor int64, length int) []Chunk {
	return slices.Collect(Chunks(cursor, length))
}

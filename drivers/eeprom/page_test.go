package eeprom

import (
	"slices"
	"testing"

	ee "github.com/clktmr/lpceeprom/hal/eeprom"
	"github.com/davecgh/go-spew/spew"
)

func TestTranslate(t *testing.T) {
	tests := map[string]struct {
		cursor int64
		length int
		chunks []Chunk
	}{
		"empty":      {0, 0, nil},
		"eof":        {Capacity, 16, nil},
		"beyondeof":  {Capacity + 100, 16, nil},
		"negative":   {0, -1, nil},
		"single":     {0, 5, []Chunk{{0, 0, 5}}},
		"fullpage":   {64, 64, []Chunk{{1, 0, 64}}},
		"twopages":   {60, 8, []Chunk{{0, 60, 4}, {1, 0, 4}}},
		"threepages": {100, 100, []Chunk{{1, 36, 28}, {2, 0, 64}, {3, 0, 8}}},
		"clamped":    {Capacity - 3, 10, []Chunk{{62, 61, 3}}},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			chunks := Translate(tc.cursor, tc.length)
			if !slices.Equal(chunks, tc.chunks) {
				t.Fatalf("expected %v, got\n%s", tc.chunks, spew.Sdump(chunks))
			}
		})
	}

	chunks := Translate(0, 4040)
	if len(chunks) != ee.PageCount {
		t.Fatalf("expected %d chunks, got %d", ee.PageCount, len(chunks))
	}
}

func TestTranslateTiling(t *testing.T) {
	lengths := []int{0, 1, 2, 63, 64, 65, 127, 128, 129, 1000, Capacity, Capacity + 1, 1 << 20}
	for cursor := int64(0); cursor <= Capacity; cursor++ {
		for _, length := range lengths {
			chunks := Translate(cursor, length)

			expected := min(int64(length), Capacity-cursor)
			pos, total := cursor, int64(0)
			for _, c := range chunks {
				addr := int64(c.Page)*ee.PageSize + int64(c.Offset)
				if addr != pos || c.Len <= 0 || int(c.Offset)+c.Len > ee.PageSize || c.Page >= ee.PageCount {
					t.Fatalf("cursor %d length %d: bad chunk at %d\n%s", cursor, length, pos, spew.Sdump(chunks))
				}
				pos += int64(c.Len)
				total += int64(c.Len)
			}
			if total != expected {
				t.Fatalf("cursor %d length %d: expected %d bytes, got %d", cursor, length, expected, total)
			}
		}
	}
}

func TestChunksStop(t *testing.T) {
	n := 0
	for range Chunks(0, Capacity) {
		n++
		if n == 3 {
			break
		}
	}
	if n != 3 {
		t.Fatalf("expected iteration to stop after 3 chunks, got %d", n)
	}
}

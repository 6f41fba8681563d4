package sim

import (
	"bytes"
	"errors"
	"path/filepath"
	"testing"

	"github.com/clktmr/lpceeprom/hal/eeprom"
	"github.com/davecgh/go-spew/spew"
)

func powerUp(c *Controller) {
	c.Store32(eeprom.OffPwrDwn, 0)
}

func stage(c *Controller, page, offset uint32, data []byte) {
	c.Store32(eeprom.OffCmd, uint32(eeprom.Cmd8BitsWrite))
	c.Store32(eeprom.OffAddr, eeprom.PackAddr(0, offset))
	for _, b := range data {
		c.Store32(eeprom.OffWData, uint32(b))
	}
	c.Store32(eeprom.OffAddr, eeprom.PackAddr(page, 0))
	c.Store32(eeprom.OffCmd, uint32(eeprom.CmdEraseProgramPage))
}

func TestPartialProgram(t *testing.T) {
	c := New()
	powerUp(c)

	stage(c, 1, 0, bytes.Repeat([]byte{0xff}, eeprom.PageSize))
	stage(c, 1, 8, []byte("abc"))

	mem := c.Memory()
	page := mem[eeprom.PageSize : 2*eeprom.PageSize]
	expected := bytes.Repeat([]byte{0xff}, eeprom.PageSize)
	copy(expected[8:], "abc")
	if !bytes.Equal(page, expected) {
		t.Fatalf("unexpected page contents:\n%s", spew.Sdump(page))
	}
	if got := c.Programmed(); len(got) != 2 || got[0] != 1 || got[1] != 1 {
		t.Fatalf("expected pages [1 1], got %v", got)
	}
}

func TestAddressWrap(t *testing.T) {
	c := New()
	powerUp(c)
	stage(c, 4, eeprom.PageSize-2, []byte("wxyz"))

	mem := c.Memory()
	base := 4 * eeprom.PageSize
	if string(mem[base+eeprom.PageSize-2:base+eeprom.PageSize]) != "wx" {
		t.Fatal("missing bytes at end of page")
	}
	if string(mem[base:base+2]) != "yz" {
		t.Fatal("expected write to wrap to start of page")
	}
}

func TestPoweredDown(t *testing.T) {
	c := New()
	c.Load32(eeprom.OffRData)
	stage(c, 0, 0, []byte("x"))
	if c.Load32(eeprom.OffIntStat) != 0 {
		t.Fatal("powered down controller signaled completion")
	}
	if len(c.Programmed()) != 0 {
		t.Fatal("powered down controller programmed a page")
	}
}

func TestIntStatus(t *testing.T) {
	c := New()
	c.Store32(eeprom.OffIntStatSet, uint32(eeprom.IntEndOfRW|eeprom.IntEndOfProg))
	c.Store32(eeprom.OffIntStatClr, uint32(eeprom.IntEndOfRW))
	if got := eeprom.IntFlag(c.Load32(eeprom.OffIntStat)); got != eeprom.IntEndOfProg {
		t.Fatalf("expected %#x, got %#x", eeprom.IntEndOfProg, got)
	}
}

func TestImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eeprom.img")

	c, err := Open(path)
	if err != nil {
		t.Fatal("open missing image:", err)
	}
	powerUp(c)
	stage(c, 62, 60, []byte("last"))
	if err = c.Save(path); err != nil {
		t.Fatal("save:", err)
	}

	c2, err := Open(path)
	if err != nil {
		t.Fatal("reopen:", err)
	}
	if !bytes.Equal(c.Memory(), c2.Memory()) {
		t.Fatal("memory differs after reopening image")
	}
}

func TestImageChecksum(t *testing.T) {
	c := New()
	var buf bytes.Buffer
	if err := c.WriteImage(&buf); err != nil {
		t.Fatal(err)
	}
	img := buf.Bytes()
	img[100] ^= 0x01

	if err := New().ReadImage(bytes.NewReader(img)); !errors.Is(err, ErrChecksum) {
		t.Fatalf("expected %v, got %v", ErrChecksum, err)
	}
	if err := New().ReadImage(bytes.NewReader(img[:10])); err == nil {
		t.Fatal("expected error on truncated image")
	}
}

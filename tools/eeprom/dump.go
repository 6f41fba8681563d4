package main

import (
	"fmt"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/ianaindex"
)

const (
	pageSize = 64
	lineSize = 8
)

// dumper prints lines of hex and text.
type dumper struct {
	w   io.Writer
	dec *encoding.Decoder
	err error
}

func newDumper(w io.Writer, charset string) (*dumper, error) {
	d := &dumper{w: w}
	if charset == "" {
		return d, nil
	}

	enc, err := ianaindex.IANA.Encoding(charset)
	if err != nil {
		return nil, fmt.Errorf("charset %s: %w", charset, err)
	}
	if enc == nil {
		return nil, fmt.Errorf("charset %s: unsupported", charset)
	}
	d.dec = enc.NewDecoder()
	return d, nil
}

func (d *dumper) char(b byte) rune {
	if d.dec == nil {
		if b < utf8.RuneSelf && unicode.IsPrint(rune(b)) {
			return rune(b)
		}
		return '.'
	}

	s, err := d.dec.Bytes([]byte{b})
	if err != nil {
		return '.'
	}
	r, _ := utf8.DecodeRune(s)
	if r == utf8.RuneError || !unicode.IsPrint(r) {
		return '.'
	}
	return r
}

func (d *dumper) line(addr int64, p []byte) {
	if d.err != nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%04x ", addr)
	for _, b := range p {
		fmt.Fprintf(&sb, "%02x ", b)
	}
	for _, b := range p {
		sb.WriteRune(d.char(b))
	}
	sb.WriteByte('\n')

	_, d.err = io.WriteString(d.w, sb.String())
}

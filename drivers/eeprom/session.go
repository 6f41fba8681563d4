package eeprom

import (
	"fmt"
	"io"
)

// Session is an open EEPROM with its own cursor. It implements
// io.ReadWriteSeeker, io.ReaderAt and io.WriterAt.
//
// Session is not safe for concurrent use.
type Session struct {
	dev    *Device
	cursor int64
	closed bool
}

// Read reads from the cursor and advances it. At or beyond the end of the
// EEPROM it returns 0, io.EOF.
func (s *Session) Read(p []byte) (n int, err error) {
	if s.closed {
		return 0, ErrClosed
	}
	if len(p) == 0 {
		return 0, nil
	}
	defer func() { s.dev.debugf(3, "read", "length=%d,n=%d,err=%v", len(p), n, err) }()

	for c := range Chunks(s.cursor, len(p)) {
		var nn int
		nn, err = s.dev.ctrl.Read(c.Page, c.Offset, p[n:n+c.Len])
		n += nn
		s.cursor += int64(nn)
		if err != nil {
			return
		}
	}

	if n == 0 {
		err = io.EOF
	}
	return
}

// Write writes p at the cursor and advances it. Each page touched is erased
// and programmed once. If p doesn't fit into the EEPROM, the rest is dropped
// and io.ErrShortWrite returned.
func (s *Session) Write(p []byte) (n int, err error) {
	if s.closed {
		return 0, ErrClosed
	}
	defer func() { s.dev.debugf(3, "write", "length=%d,n=%d,err=%v", len(p), n, err) }()

	for c := range Chunks(s.cursor, len(p)) {
		chunk := p[n : n+c.Len]
		if _, err = s.dev.ctrl.WritePageRegister(c.Offset, chunk); err != nil {
			return
		}
		if err = s.dev.ctrl.EraseProgramPage(c.Page); err != nil {
			return
		}
		n += c.Len
		s.cursor += int64(c.Len)
	}

	if n < len(p) {
		err = io.ErrShortWrite
	}
	return
}

// Seek sets the cursor. Positions beyond the end are allowed, reads and
// writes there transfer nothing.
func (s *Session) Seek(offset int64, whence int) (int64, error) {
	if s.closed {
		return 0, ErrClosed
	}

	var newoffset int64
	switch whence {
	case io.SeekStart:
		// newoffset = 0
	case io.SeekCurrent:
		newoffset = s.cursor
	case io.SeekEnd:
		newoffset = Capacity
	default:
		return s.cursor, fmt.Errorf("%w: whence %d", ErrInvalid, whence)
	}
	newoffset += offset
	if newoffset < 0 {
		return s.cursor, fmt.Errorf("%w: seek to %d", ErrInvalid, newoffset)
	}

	s.cursor = newoffset
	return newoffset, nil
}

// ReadAt moves the cursor to off and reads from there.
func (s *Session) ReadAt(p []byte, off int64) (n int, err error) {
	if _, err = s.Seek(off, io.SeekStart); err != nil {
		return
	}
	n, err = s.Read(p)
	if err == nil && n < len(p) {
		err = io.EOF
	}
	return
}

// WriteAt moves the cursor to off and writes there.
func (s *Session) WriteAt(p []byte, off int64) (n int, err error) {
	if _, err = s.Seek(off, io.SeekStart); err != nil {
		return
	}
	return s.Write(p)
}

// Close releases the device's lock, so the next Open will succeed. It never
// fails. Only the first Close of a session releases the lock, later calls
// have no effect and can't unlock a session opened in the meantime.
func (s *Session) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	s.dev.release()
	return nil
}

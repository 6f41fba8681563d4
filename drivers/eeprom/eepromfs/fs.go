//go:build linux || darwin

// Package eepromfs registers an EEPROM device with the host by serving it as
// a single file on a FUSE mount.
//
// Every open of the file starts a session on the device, so the device's
// exclusivity applies to all processes on the host.
package eepromfs

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/clktmr/lpceeprom/drivers/eeprom"
	ee "github.com/clktmr/lpceeprom/hal/eeprom"
	"rsc.io/rsc/fuse"
)

// Server serves a device on a mount point until it is closed.
type Server struct {
	dir  string
	done chan error
}

// Mount mounts dir and serves dev under its configured name in it.
func Mount(dev *eeprom.Device, dir string) (*Server, error) {
	c, err := fuse.Mount(dir)
	if err != nil {
		return nil, err
	}

	s := &Server{dir: dir, done: make(chan error, 1)}
	go func() {
		s.done <- c.Serve(&fusefs{dev})
	}()
	return s, nil
}

// Done returns a channel that receives the result of serving once the file
// system was unmounted.
func (s *Server) Done() <-chan error {
	return s.done
}

// Close unmounts the file system.
func (s *Server) Close() error {
	cmd := exec.Command("/bin/umount", s.dir)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: %s", err, bytes.TrimSpace(out))
	}
	return nil
}

// fusefs implements the file system and the root dir Node.
type fusefs struct {
	dev *eeprom.Device
}

func (p *fusefs) Root() (fuse.Node, fuse.Error) {
	return p, nil
}

func (p *fusefs) Attr() fuse.Attr {
	return fuse.Attr{
		Inode: 1,
		Mode:  os.ModeDir | 0o555,
	}
}

func (p *fusefs) Lookup(name string, intr fuse.Intr) (fuse.Node, fuse.Error) {
	if name != p.dev.Config().Name {
		return nil, fuse.Errno(syscall.ENOENT)
	}
	return &fusefile{p.dev}, nil
}

func (p *fusefs) ReadDir(intr fuse.Intr) ([]fuse.Dirent, fuse.Error) {
	return []fuse.Dirent{{Name: p.dev.Config().Name}}, nil
}

// fusefile is the device node.
type fusefile struct {
	dev *eeprom.Device
}

func (p *fusefile) Attr() fuse.Attr {
	return fuse.Attr{
		Inode: 2,
		Mode:  0o666,
		Size:  ee.Capacity,
		Nlink: 1,
		Rdev:  mkdev(p.dev.Config().Major, 0),
	}
}

func mkdev(major, minor uint) uint32 {
	return uint32(major<<8 | minor&0xff)
}

func (p *fusefile) Open(req *fuse.OpenRequest, res *fuse.OpenResponse, intr fuse.Intr) (fuse.Handle, fuse.Error) {
	s, err := p.dev.Open()
	if err != nil {
		return nil, errno(err)
	}
	return &handle{s: s}, nil
}

// handle is an open session. The server may call it from multiple
// goroutines.
type handle struct {
	mtx sync.Mutex
	s   *eeprom.Session
}

func (h *handle) Read(req *fuse.ReadRequest, res *fuse.ReadResponse, intr fuse.Intr) fuse.Error {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	buf := make([]byte, req.Size)
	n, err := h.s.ReadAt(buf, req.Offset)
	if err != nil && err != io.EOF {
		return errno(err)
	}
	res.Data = buf[:n]
	return nil
}

func (h *handle) Write(req *fuse.WriteRequest, res *fuse.WriteResponse, intr fuse.Intr) fuse.Error {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	n, err := h.s.WriteAt(req.Data, req.Offset)
	res.Size = n
	if err != nil && !errors.Is(err, io.ErrShortWrite) {
		return errno(err)
	}
	return nil
}

func (h *handle) Release(req *fuse.ReleaseRequest, intr fuse.Intr) fuse.Error {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	h.s.Close()
	return nil
}

func errno(err error) fuse.Error {
	if errors.Is(err, eeprom.ErrBusy) {
		return fuse.Errno(syscall.EBUSY)
	} else if errors.Is(err, eeprom.ErrInvalid) {
		return fuse.Errno(syscall.EINVAL)
	} else if errors.Is(err, io.ErrShortWrite) {
		return fuse.Errno(syscall.ENOSPC)
	} else if errors.Is(err, ee.ErrTimeout) {
		return fuse.Errno(syscall.ETIMEDOUT)
	} else if errors.Is(err, eeprom.ErrNotRegistered) {
		return fuse.Errno(syscall.ENODEV)
	} else {
		return fuse.EIO
	}
}

//go:build linux || darwin

package main

import (
	"errors"
	"log"
	"os"
)

var errForcedExit = errors.New("exiting with device still mounted")

type server interface {
	Close() error
	Done() <-chan error
}

// serve waits until srv stops serving or an interrupt unmounts it. An unmount
// fails while a client holds the device open, in which case the next
// interrupt retries it and gives up on the mount if it fails again.
func serve(srv server, sigintr <-chan os.Signal) error {
	failed := 0
	for {
		select {
		case <-sigintr:
			err := srv.Close()
			if err == nil {
				return <-srv.Done()
			}
			log.Println("unmount:", err)
			if failed++; failed > 1 {
				return errForcedExit
			}
			log.Println("interrupt again to retry, exiting if it fails again")
		case err := <-srv.Done():
			return err
		}
	}
}

//go:build unix

package main

import (
	"path/filepath"
	"testing"
)

func TestLock(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eepromd.lock")

	unlock, err := lock(path)
	if err != nil {
		t.Fatal("lock:", err)
	}
	if _, err = lock(path); err == nil {
		t.Fatal("expected second lock to fail")
	}

	unlock()
	unlock2, err := lock(path)
	if err != nil {
		t.Fatal("lock after unlock:", err)
	}
	unlock2()
}

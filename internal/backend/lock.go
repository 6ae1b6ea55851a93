package backend

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
	"pkt.systems/trove/schema"
)

const lockFile = ".lock"

// Lock takes an exclusive advisory lock on the trove so that a second
// server cannot share it. It returns schema.ErrTroveLocked when another
// process holds the lock.
func (b *Backend) Lock() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.lock != nil {
		return nil
	}
	path := filepath.Join(b.store.AppDataDir(), lockFile)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return fmt.Errorf("open lock file: %w", err)
	}
	if err := unix.Flock(int(f.Fd()), unix.LOCK_EX|unix.LOCK_NB); err != nil {
		_ = f.Close()
		if errors.Is(err, unix.EWOULDBLOCK) {
			return schema.ErrTroveLocked
		}
		return fmt.Errorf("lock trove: %w", err)
	}
	b.lock = f
	b.log.Debug("backend trove locked", "path", path)
	return nil
}

func (b *Backend) unlockLocked() error {
	if b.lock == nil {
		return nil
	}
	f := b.lock
	b.lock = nil
	if err := unix.Flock(int(f.Fd()), unix.LOCK_UN); err != nil {
		_ = f.Close()
		return fmt.Errorf("unlock trove: %w", err)
	}
	return f.Close()
}

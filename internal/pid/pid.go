// Package pid guards against two instances sharing one settings database.
package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"codeberg.org/mutker/stackchart/internal/errors"
)

// File is a PID file owned by the current process.
type File struct {
	path string
}

// Acquire writes the current process ID to path. It fails with
// ErrAlreadyRunning when the file names a live process; stale or
// unreadable files are replaced.
func Acquire(path string) (*File, error) {
	errFactory := errors.New()

	if running, err := ownerRunning(path); err != nil {
		return nil, errFactory.Wrap(errors.ErrInternal, err)
	} else if running {
		return nil, errFactory.WithData(errors.ErrAlreadyRunning, path)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errFactory.Wrap(errors.ErrInternal, err)
	}

	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
		return nil, errFactory.Wrap(errors.ErrInternal, err)
	}

	return &File{path: path}, nil
}

func ownerRunning(path string) (bool, error) {
	bytes, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	owner, err := strconv.Atoi(strings.TrimSpace(string(bytes)))
	if err != nil || owner <= 0 || owner == os.Getpid() {
		return false, nil
	}

	process, err := os.FindProcess(owner)
	if err != nil {
		return false, nil
	}

	return process.Signal(syscall.Signal(0)) == nil, nil
}

// Path returns the location of the PID file.
func (f *File) Path() string {
	return f.path
}

// Release removes the PID file.
func (f *File) Release() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return errors.New().Wrap(errors.ErrInternal, err)
	}

	return nil
}

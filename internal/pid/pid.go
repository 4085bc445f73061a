package pid

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"codeberg.org/mutker/producflow/internal/errors"
)

// File is a PID file guarding against a second running instance.
type File struct {
	path string
}

func New(path string) *File {
	return &File{path: path}
}

func (f *File) Path() string {
	return f.path
}

// Write records the current process ID. It fails with ErrAlreadyRunning when
// the file names a live process; a stale file is overwritten.
func (f *File) Write() error {
	errFactory := errors.New()

	running, pid, err := f.running()
	if err != nil {
		return err
	}
	if running {
		return errFactory.WithData(ErrAlreadyRunning, pid)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return errFactory.Wrap(ErrPIDFile, err)
	}
	if err := os.WriteFile(f.path, []byte(strconv.Itoa(os.Getpid())), 0o600); err != nil {
		return errFactory.Wrap(ErrPIDFile, err)
	}

	return nil
}

// running reports whether the file exists and names a process that answers
// signal 0. Our own pid does not count.
func (f *File) running() (bool, int, error) {
	errFactory := errors.New()

	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return false, 0, nil
	}
	if err != nil {
		return false, 0, errFactory.Wrap(ErrPIDFile, err)
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		// Unparseable content is treated as stale
		return false, 0, nil
	}
	if pid == os.Getpid() {
		return false, pid, nil
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return false, pid, nil
	}

	return process.Signal(syscall.Signal(0)) == nil, pid, nil
}

// Remove removes the PID file.
func (f *File) Remove() error {
	errFactory := errors.New()

	if _, err := os.Stat(f.path); os.IsNotExist(err) {
		return nil
	}

	if err := os.Remove(f.path); err != nil {
		return errFactory.Wrap(ErrPIDFile, err)
	}

	return nil
}

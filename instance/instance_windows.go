//go:build windows

package instance

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows"
)

const (
	mbOK          = 0x00000000
	mbIconWarning = 0x00000030
)

// Lock is a held single-instance mutex. Keep it for the life of the process.
type Lock struct {
	handle windows.Handle
}

// Acquire creates the named mutex. If another process already created it,
// the handle is closed again and ErrAlreadyRunning is returned.
func Acquire(name string) (*Lock, error) {
	namePtr, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return nil, fmt.Errorf("invalid mutex name %q: %w", name, err)
	}
	h, err := windows.CreateMutex(nil, false, namePtr)
	if errors.Is(err, windows.ERROR_ALREADY_EXISTS) {
		if h != 0 {
			windows.CloseHandle(h)
		}
		return nil, ErrAlreadyRunning
	}
	if h == 0 {
		return nil, fmt.Errorf("CreateMutex %s: %w", name, err)
	}
	return &Lock{handle: h}, nil
}

// Close releases the mutex so a later instance can start.
func (l *Lock) Close() error {
	if l.handle == 0 {
		return nil
	}
	err := windows.CloseHandle(l.handle)
	l.handle = 0
	return err
}

// Warn shows a blocking warning dialog.
func Warn(title, text string) {
	t, _ := windows.UTF16PtrFromString(title)
	m, _ := windows.UTF16PtrFromString(text)
	windows.MessageBox(0, m, t, mbOK|mbIconWarning)
}

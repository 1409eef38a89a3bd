//go:build windows

package ipc

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

// find returns the listener window. Message-only windows are invisible to
// FindWindow, so the search runs under HWND_MESSAGE with an exact class match.
func find() uintptr {
	className, err := windows.UTF16PtrFromString(WindowClass)
	if err != nil {
		return 0
	}
	hwnd, _, _ := procFindWindowExW.Call(hwndMessage, 0, uintptr(unsafe.Pointer(className)), 0)
	return hwnd
}

// Running reports whether an instance is listening.
func Running() bool {
	return find() != 0
}

// Post sends m to the running instance without waiting for it.
func Post(m Message) error {
	hwnd := find()
	if hwnd == 0 {
		return ErrNotRunning
	}
	ret, _, err := procPostMessageW.Call(hwnd, uintptr(m.ID()), 0, 0)
	if ret == 0 {
		return fmt.Errorf("post %s: %w", m, err)
	}
	return nil
}

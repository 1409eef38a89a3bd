//go:build windows

package taskbar

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	swHide = 0
	swShow = 5
)

var (
	user32           = windows.NewLazySystemDLL("user32.dll")
	procFindWindowEx = user32.NewProc("FindWindowExW")
	procShowWindow   = user32.NewProc("ShowWindow")
)

// Win32 is the Desktop backed by user32.
type Win32 struct{}

func (Win32) FindNext(class string, after Handle) Handle {
	className, err := windows.UTF16PtrFromString(class)
	if err != nil {
		return 0
	}
	hwnd, _, _ := procFindWindowEx.Call(0, uintptr(after), uintptr(unsafe.Pointer(className)), 0)
	return Handle(hwnd)
}

func (Win32) OwnerPID(h Handle) uint32 {
	var pid uint32
	if _, err := windows.GetWindowThreadProcessId(windows.HWND(h), &pid); err != nil {
		return 0
	}
	return pid
}

func (Win32) Show(h Handle, show bool) {
	cmd := uintptr(swHide)
	if show {
		cmd = swShow
	}
	procShowWindow.Call(uintptr(h), cmd)
}

func (Win32) IsVisible(h Handle) bool {
	return windows.IsWindowVisible(windows.HWND(h))
}

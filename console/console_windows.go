//go:build windows

// Package console reconnects a GUI-subsystem build to the console it was
// started from, so CLI output is visible.
package console

import (
	"os"

	"golang.org/x/sys/windows"
)

// ATTACH_PARENT_PROCESS, (DWORD)-1.
const attachParentProcess = uintptr(^uint32(0))

var (
	kernel32          = windows.NewLazySystemDLL("kernel32.dll")
	procAttachConsole = kernel32.NewProc("AttachConsole")
)

// AttachParent attaches to the parent's console and rebinds os.Stdout and
// os.Stderr to it. It reports false when there is no usable console, which
// is also the case when the process already owns one.
func AttachParent() bool {
	if ret, _, _ := procAttachConsole.Call(attachParentProcess); ret == 0 {
		return false
	}
	out, ok := stdHandle(windows.STD_OUTPUT_HANDLE)
	if !ok {
		return false
	}
	os.Stdout = os.NewFile(uintptr(out), "/dev/stdout")
	if errh, ok := stdHandle(windows.STD_ERROR_HANDLE); ok {
		os.Stderr = os.NewFile(uintptr(errh), "/dev/stderr")
	}
	return true
}

// stdHandle returns the standard handle once the console answers for it.
func stdHandle(which uint32) (windows.Handle, bool) {
	h, err := windows.GetStdHandle(which)
	if err != nil || h == windows.InvalidHandle || h == 0 {
		return 0, false
	}
	var mode uint32
	if err := windows.GetConsoleMode(h, &mode); err != nil {
		return 0, false
	}
	return h, true
}

// Present reports whether stderr is a console, as it is for a console-subsystem
// build started from a terminal.
func Present() bool {
	_, ok := stdHandle(windows.STD_ERROR_HANDLE)
	return ok
}

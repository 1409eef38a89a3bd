//go:build windows

package appbar

import (
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	abmGetState = 0x4
	abmSetState = 0xA
)

var (
	shell32             = windows.NewLazySystemDLL("shell32.dll")
	procSHAppBarMessage = shell32.NewProc("SHAppBarMessage")
)

type appBarData struct {
	CbSize           uint32
	HWnd             windows.HWND
	UCallbackMessage uint32
	UEdge            uint32
	Rc               windows.Rect
	LParam           uintptr
}

// Shell is the Store backed by SHAppBarMessage.
type Shell struct{}

func (Shell) Get() uint32 {
	var abd appBarData
	abd.CbSize = uint32(unsafe.Sizeof(abd))
	ret, _, _ := procSHAppBarMessage.Call(abmGetState, uintptr(unsafe.Pointer(&abd)))
	return uint32(ret)
}

func (Shell) Set(state uint32) {
	var abd appBarData
	abd.CbSize = uint32(unsafe.Sizeof(abd))
	abd.LParam = uintptr(state)
	procSHAppBarMessage.Call(abmSetState, uintptr(unsafe.Pointer(&abd)))
}

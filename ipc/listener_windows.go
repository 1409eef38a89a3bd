//go:build windows

package ipc

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/rs/zerolog/log"
	"golang.org/x/sys/windows"
)

// Serve registers the listener window and pumps its messages, forwarding
// requests to events. It returns after a Quit request or when the window
// cannot be created. Run it on its own goroutine.
func Serve(events chan<- Message) error {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	className, err := windows.UTF16PtrFromString(WindowClass)
	if err != nil {
		return fmt.Errorf("encode class name: %w", err)
	}
	hInstance, _, _ := procGetModuleHandleW.Call(0)

	wndProc := windows.NewCallback(func(hwnd uintptr, id uint32, wParam, lParam uintptr) uintptr {
		m, ok := Parse(id)
		if !ok {
			ret, _, _ := procDefWindowProcW.Call(hwnd, uintptr(id), wParam, lParam)
			return ret
		}
		if m == Quit {
			procPostQuitMessage.Call(0)
		}
		select {
		case events <- m:
		default:
			log.Warn().Stringer("message", m).Msg("Event queue full, dropping IPC request")
		}
		return 0
	})

	var wc wndClassExW
	wc.CbSize = uint32(unsafe.Sizeof(wc))
	wc.LpfnWndProc = wndProc
	wc.HInstance = hInstance
	wc.LpszClassName = className
	if atom, _, err := procRegisterClassExW.Call(uintptr(unsafe.Pointer(&wc))); atom == 0 {
		return fmt.Errorf("register IPC window class: %w", err)
	}
	defer procUnregisterClassW.Call(uintptr(unsafe.Pointer(className)), hInstance)

	hwnd, _, err := procCreateWindowExW.Call(
		0,
		uintptr(unsafe.Pointer(className)),
		0,
		0,
		0, 0, 0, 0,
		hwndMessage,
		0,
		hInstance,
		0,
	)
	if hwnd == 0 {
		return fmt.Errorf("create IPC window: %w", err)
	}
	defer procDestroyWindow.Call(hwnd)
	log.Debug().Str("class", WindowClass).Msg("IPC window ready")

	var m msg
	for {
		ret, _, _ := procGetMessageW.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if int32(ret) <= 0 {
			break
		}
		procTranslateMessage.Call(uintptr(unsafe.Pointer(&m)))
		procDispatchMessageW.Call(uintptr(unsafe.Pointer(&m)))
	}
	return nil
}

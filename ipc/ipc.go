// Package ipc carries show/hide/quit requests from CLI invocations to the
// running instance as private window messages.
package ipc

import (
	"errors"
	"fmt"
)

// WindowClass is the class of the running instance's message-only window.
const WindowClass = "THideIPCWindow"

const wmApp = 0x8000

// ErrNotRunning is returned when no listener window exists.
var ErrNotRunning = errors.New("THide is not running")

// Message is a request understood by the running instance.
type Message int

const (
	Show Message = iota + 1
	Hide
	Quit
)

// ID returns the window message id for m.
func (m Message) ID() uint32 {
	return wmApp + uint32(m)
}

func (m Message) String() string {
	switch m {
	case Show:
		return "show"
	case Hide:
		return "hide"
	case Quit:
		return "quit"
	default:
		return fmt.Sprintf("Message(%d)", int(m))
	}
}

// Parse maps a window message id to a Message.
func Parse(id uint32) (Message, bool) {
	if id < wmApp {
		return 0, false
	}
	switch m := Message(id - wmApp); m {
	case Show, Hide, Quit:
		return m, true
	}
	return 0, false
}

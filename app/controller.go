// Package app runs the tray instance: it keeps the taskbar hidden, applies
// show/hide/quit requests from the tray menu and from other processes, and
// puts the user's AppBar setting back on the way out.
package app

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"

	"thide/appbar"
	"thide/ipc"
	"thide/taskbar"
)

// State is the main loop state.
type State int32

const (
	Hidden State = iota
	Shown
	Quitting
)

func (s State) String() string {
	switch s {
	case Hidden:
		return "hidden"
	case Shown:
		return "shown"
	case Quitting:
		return "quitting"
	default:
		return "unknown"
	}
}

// Controller applies events to the taskbar. Handle must be called from a
// single goroutine; Enforce may run concurrently with it.
type Controller struct {
	// mu keeps a poll from hiding the taskbar halfway through a show.
	mu      sync.Mutex
	hide    atomic.Bool
	state   atomic.Int32
	appbar  *appbar.Manager
	desktop taskbar.Desktop
	finder  taskbar.Enumerator
}

func NewController(m *appbar.Manager, d taskbar.Desktop, finder taskbar.Enumerator) *Controller {
	return &Controller{appbar: m, desktop: d, finder: finder}
}

// KeepHidden reports whether the poller should re-hide the taskbar.
func (c *Controller) KeepHidden() bool { return c.hide.Load() }

func (c *Controller) State() State { return State(c.state.Load()) }

// Handle applies one event and reports whether the loop should stop.
func (c *Controller) Handle(m ipc.Message) (quit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	switch m {
	case ipc.Show:
		c.show()
		c.state.Store(int32(Shown))
		log.Info().Msg("Taskbar shown")
	case ipc.Hide:
		c.hide.Store(true)
		c.appbar.Enforce()
		taskbar.SetVisible(c.desktop, c.finder.Find(), false)
		c.state.Store(int32(Hidden))
		log.Info().Msg("Taskbar hidden")
	case ipc.Quit:
		c.show()
		c.state.Store(int32(Quitting))
		log.Info().Msg("Taskbar restored, quitting")
		return true
	default:
		log.Warn().Stringer("message", m).Msg("Ignoring unknown event")
	}
	return false
}

func (c *Controller) show() {
	c.hide.Store(false)
	c.appbar.Restore()
	taskbar.SetVisible(c.desktop, c.finder.Find(), true)
}

// Enforce re-hides the taskbar every interval while KeepHidden is set,
// until ctx is done. bars is owned by this goroutine.
func (c *Controller) Enforce(ctx context.Context, interval time.Duration, bars taskbar.Enumerator) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.enforceOnce(bars)
		}
	}
}

func (c *Controller) enforceOnce(bars taskbar.Enumerator) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.hide.Load() {
		return false
	}
	handles := bars.Find()
	if !taskbar.AnyVisible(c.desktop, handles) {
		return false
	}
	log.Debug().Int("taskbars", len(handles)).Msg("Taskbar reappeared, hiding again")
	taskbar.SetVisible(c.desktop, handles, false)
	return true
}

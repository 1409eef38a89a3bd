package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"thide/appbar"
	"thide/instance"
	"thide/ipc"
	"thide/taskbar"
)

// Tray is the notification-area icon.
type Tray interface {
	// Run shows the icon and blocks until Quit. Menu clicks are sent to
	// clicks; ready is called once the menu exists. onExit runs when the
	// icon goes away, including at logoff or shutdown, when the process may
	// be killed right after it returns.
	Run(clicks chan<- ipc.Message, ready func(), onExit func()) error
	Quit()
}

// Deps are the OS surfaces Run drives.
type Deps struct {
	Acquire func() (io.Closer, error)
	Warn    func(text string)
	Store   appbar.Store
	Desktop taskbar.Desktop
	Finder  taskbar.Enumerator
	Tray    Tray
	// Listen serves IPC requests into events until a Quit arrives.
	Listen func(events chan<- ipc.Message) error
}

type Options struct {
	PollInterval time.Duration
	CacheRefresh time.Duration
}

// DefaultPollInterval is used when Options leaves PollInterval unset.
const DefaultPollInterval = 100 * time.Millisecond

const eventQueue = 16

// Run holds the single-instance lock, hides the taskbar and serves events
// until a Quit. When another instance holds the lock it warns and returns
// instance.ErrAlreadyRunning without touching any taskbar state.
func Run(ctx context.Context, d Deps, opts Options) error {
	lock, err := d.Acquire()
	if errors.Is(err, instance.ErrAlreadyRunning) {
		log.Warn().Msg("Another instance is already running")
		d.Warn("Application is already running!")
		return err
	}
	if err != nil {
		return fmt.Errorf("acquire single-instance lock: %w", err)
	}
	defer lock.Close()

	state := appbar.New(d.Store)
	defer state.Close()
	log.Info().
		Uint32("original", state.Original()).
		Uint32("enforced", state.Enforced()).
		Msg("Captured AppBar state")

	c := NewController(state, d.Desktop, d.Finder)
	c.Handle(ipc.Hide)

	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	events := make(chan ipc.Message, eventQueue)

	go func() {
		defer restoreOnPanic(state)
		if err := d.Listen(events); err != nil {
			log.Error().Err(err).Msg("IPC listener failed, CLI commands are disabled")
		}
	}()
	go func() {
		defer restoreOnPanic(state)
		c.Enforce(ctx, opts.PollInterval, taskbar.NewCache(d.Finder, opts.CacheRefresh))
	}()
	go quitOnSignal(ctx, events)

	return d.Tray.Run(events, func() {
		go loop(c, state, events, d.Tray.Quit)
	}, func() {
		log.Info().Msg("Tray exiting, restoring AppBar state")
		state.Close()
	})
}

func loop(c *Controller, state *appbar.Manager, events <-chan ipc.Message, quit func()) {
	defer restoreOnPanic(state)
	for m := range events {
		log.Debug().Stringer("event", m).Msg("Handling event")
		if c.Handle(m) {
			quit()
			return
		}
	}
}

// restoreOnPanic puts the AppBar state back before a panic on a worker
// goroutine takes the process down. Deferred cleanup on Run's goroutine does
// not run in that case.
func restoreOnPanic(state *appbar.Manager) {
	if r := recover(); r != nil {
		state.Close()
		panic(r)
	}
}

// quitOnSignal turns an interrupt, a console close or the end of ctx into a
// Quit event.
func quitOnSignal(ctx context.Context, events chan<- ipc.Message) {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sig)

	select {
	case s := <-sig:
		log.Info().Stringer("signal", s).Msg("Received signal")
	case <-ctx.Done():
	}
	select {
	case events <- ipc.Quit:
	default:
	}
}

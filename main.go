//go:build windows

// Command thide keeps the Windows taskbar hidden from a tray icon and accepts
// show, hide and stop requests from the command line.
//
// Release builds use the GUI subsystem so the tray instance, including the
// one started at login, opens no console window:
//
//	go build -ldflags "-H windowsgui" -o thide.exe .
//
// CLI commands then attach to the console of the shell that started them.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"

	"thide/app"
	"thide/appbar"
	"thide/cli"
	"thide/config"
	"thide/console"
	"thide/instance"
	"thide/ipc"
	"thide/logger"
	"thide/taskbar"
	"thide/trayicon"
)

const dialogTitle = "Taskbar Hide"

var version = "dev"

func main() {
	args := os.Args[1:]
	serving := len(args) > 0 && strings.EqualFold(args[0], "run")
	if len(args) > 0 && !serving {
		console.AttachParent()
	}
	cli.Version = version
	os.Exit(cli.Execute(args, cli.System{Run: runInstance}, os.Stdout, os.Stderr))
}

// runInstance is the tray process. Errors before logging is up are shown in
// a dialog; a windowsgui build has no console. A console build also logs to
// stderr.
func runInstance() error {
	path, err := config.DefaultPath()
	if err != nil {
		return fail(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fail(err)
	}

	opts := logger.Options{File: cfg.LogFile, Level: cfg.LogLevel}
	if console.Present() {
		opts.Console = os.Stderr
	}
	closer, err := logger.Init(opts)
	if err != nil {
		return fail(err)
	}
	defer closer.Close()
	log.Info().Str("version", version).Str("config", path).Msg("Starting THide")

	tray, err := trayicon.New()
	if err != nil {
		log.Error().Err(err).Msg("Failed to load tray icon")
		return fail(err)
	}

	desktop := taskbar.Win32{}
	err = app.Run(context.Background(), app.Deps{
		Acquire: func() (io.Closer, error) { return instance.Acquire(instance.MutexName) },
		Warn:    func(text string) { instance.Warn(dialogTitle, text) },
		Store:   appbar.Shell{},
		Desktop: desktop,
		Finder:  taskbar.NewShellFinder(desktop, cfg.ShellExecutable),
		Tray:    tray,
		Listen:  ipc.Serve,
	}, app.Options{
		PollInterval: cfg.PollInterval(),
		CacheRefresh: cfg.CacheRefresh(),
	})
	if errors.Is(err, instance.ErrAlreadyRunning) {
		return nil
	}
	if err != nil {
		log.Error().Err(err).Msg("THide stopped with an error")
		return err
	}
	log.Info().Msg("THide stopped")
	return nil
}

func fail(err error) error {
	instance.Warn(dialogTitle, fmt.Sprintf("THide could not start:\n%v", err))
	return err
}

//go:build windows

package cli

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"thide/autostart"
	"thide/ipc"
)

// System is the Backend for the real machine.
type System struct {
	// Run serves the tray instance for the hidden run command.
	Run func() error
}

func (System) Running() bool { return ipc.Running() }

func (System) Post(m ipc.Message) error { return ipc.Post(m) }

// Spawn starts a detached tray instance of this executable.
func (System) Spawn() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}
	cmd := exec.Command(exe, "run")
	cmd.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

func (System) EnableAutostart() error {
	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locate executable: %w", err)
	}
	return autostart.Enable(autostart.Command(exe))
}

func (System) DisableAutostart() error { return autostart.Disable() }

func (s System) Serve() error { return s.Run() }

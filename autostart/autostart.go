// Package autostart registers the tray instance to start at logon.
package autostart

import "errors"

// RunKey is the per-user run key, relative to HKEY_CURRENT_USER.
const RunKey = `Software\Microsoft\Windows\CurrentVersion\Run`

// ValueName is the run-key value owned by THide.
const ValueName = "THide"

// ErrNotEnabled is returned by Disable when no value was registered.
var ErrNotEnabled = errors.New("autostart was not enabled")

// Command is the command line stored in the run key for exe.
func Command(exe string) string {
	return `"` + exe + `" run`
}

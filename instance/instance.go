// Package instance keeps a single tray instance running per machine.
package instance

import "errors"

// MutexName is the machine-wide mutex held by the running instance.
const MutexName = `Global\TaskbarHideApp_SingleInstance`

// ErrAlreadyRunning is returned by Acquire when another process holds the mutex.
var ErrAlreadyRunning = errors.New("application is already running")

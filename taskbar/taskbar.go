package taskbar

import "strings"

// Window classes of the shell taskbars.
const (
	PrimaryClass   = "Shell_TrayWnd"
	SecondaryClass = "Shell_SecondaryTrayWnd"
)

// DefaultShell is the executable that owns the real taskbar windows.
const DefaultShell = "explorer.exe"

// Handle is an opaque, non-owned top-level window handle.
type Handle uintptr

// Desktop is the part of the windowing API the taskbar code drives.
type Desktop interface {
	// FindNext returns the next top-level window of class after the given
	// handle, or 0 when there are no more.
	FindNext(class string, after Handle) Handle
	// OwnerPID returns the id of the process owning h, or 0.
	OwnerPID(h Handle) uint32
	Show(h Handle, show bool)
	IsVisible(h Handle) bool
}

// Enumerator returns the current set of taskbar windows.
type Enumerator interface {
	Find() []Handle
}

// ShellFinder locates the taskbars owned by the shell process.
type ShellFinder struct {
	desktop     Desktop
	shell       string
	processName func(pid uint32) (string, error)
}

// NewShellFinder returns a finder matching windows owned by the shell
// executable. An empty shell falls back to DefaultShell.
func NewShellFinder(d Desktop, shell string) *ShellFinder {
	if shell == "" {
		shell = DefaultShell
	}
	return &ShellFinder{desktop: d, shell: shell, processName: ProcessName}
}

// Find returns the primary taskbar followed by every secondary taskbar.
// No match is not an error; explorer may be restarting.
func (f *ShellFinder) Find() []Handle {
	found := f.scan(PrimaryClass, true)
	return append(found, f.scan(SecondaryClass, false)...)
}

func (f *ShellFinder) scan(class string, firstOnly bool) []Handle {
	var found []Handle
	for h := f.desktop.FindNext(class, 0); h != 0; h = f.desktop.FindNext(class, h) {
		if !f.ownedByShell(h) {
			continue
		}
		found = append(found, h)
		if firstOnly {
			break
		}
	}
	return found
}

func (f *ShellFinder) ownedByShell(h Handle) bool {
	pid := f.desktop.OwnerPID(h)
	if pid == 0 {
		return false
	}
	name, err := f.processName(pid)
	if err != nil {
		return false
	}
	return strings.EqualFold(name, f.shell)
}

// SetVisible shows or hides every handle. Failures are ignored: a window
// that no longer exists simply does nothing.
func SetVisible(d Desktop, handles []Handle, show bool) {
	for _, h := range handles {
		d.Show(h, show)
	}
}

// AnyVisible reports whether at least one of the handles is visible.
func AnyVisible(d Desktop, handles []Handle) bool {
	for _, h := range handles {
		if d.IsVisible(h) {
			return true
		}
	}
	return false
}

//go:build windows

package trayicon

import (
	_ "embed"
	"fmt"

	"github.com/getlantern/systray"

	"thide/ipc"
)

//go:embed icon.ico
var IconData []byte

const Tooltip = "Taskbar Hide"

// Tray is the notification-area icon with the show/hide/quit menu.
type Tray struct {
	icon []byte
}

// New validates the embedded icon. A broken icon is fatal at startup.
func New() (*Tray, error) {
	if err := validateICO(IconData); err != nil {
		return nil, fmt.Errorf("load tray icon: %w", err)
	}
	return &Tray{icon: IconData}, nil
}

// Run shows the icon and blocks until Quit. It must be called from the
// main goroutine. systray calls onExit after Quit and also on
// WM_ENDSESSION, before Windows ends the process at logoff or shutdown.
func (t *Tray) Run(clicks chan<- ipc.Message, ready func(), onExit func()) error {
	systray.Run(func() {
		systray.SetIcon(t.icon)
		systray.SetTooltip(Tooltip)

		mShow := systray.AddMenuItem("Show Taskbar", "Show the taskbar")
		mHide := systray.AddMenuItem("Hide Taskbar", "Hide the taskbar")
		systray.AddSeparator()
		mQuit := systray.AddMenuItem("Quit", "Restore the taskbar and exit")

		go func() {
			for {
				select {
				case <-mShow.ClickedCh:
					clicks <- ipc.Show
				case <-mHide.ClickedCh:
					clicks <- ipc.Hide
				case <-mQuit.ClickedCh:
					clicks <- ipc.Quit
					return
				}
			}
		}()
		ready()
	}, onExit)
	return nil
}

func (t *Tray) Quit() {
	systray.Quit()
}

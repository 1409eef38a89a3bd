// Package cli is the command-line side of THide: it drives a running
// instance over IPC, starts one, or manages autostart.
package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"thide/autostart"
	"thide/ipc"
)

// Backend is what the commands act on.
type Backend interface {
	Running() bool
	Post(m ipc.Message) error
	Spawn() error
	EnableAutostart() error
	DisableAutostart() error
	// Serve runs the tray instance in this process.
	Serve() error
}

// Version is reported by --version.
var Version = "dev"

// errReported means the command already printed its failure.
var errReported = errors.New("reported")

const usage = `THide - Taskbar Hide Utility

USAGE:
    thide [COMMAND]

COMMANDS:
    start              Start THide in GUI mode
    show               Show the taskbar (if THide is running)
    hide               Hide the taskbar (if THide is running)
    stop               Stop THide and restore taskbar
    enable-autostart   Enable autostart on login
    disable-autostart  Disable autostart on login
    help               Show this help message
`

// Execute runs the command in args and returns the process exit code.
func Execute(args []string, b Backend, stdout, stderr io.Writer) int {
	// A nil slice makes cobra read os.Args instead.
	args = append([]string{}, args...)
	if len(args) > 0 {
		args[0] = strings.ToLower(args[0])
	}

	root := newRootCmd(b)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errReported):
		return 1
	default:
		fmt.Fprintf(stderr, "Error: %v\n\n", err)
		fmt.Fprint(stderr, usage)
		return 1
	}
}

func newRootCmd(b Backend) *cobra.Command {
	root := &cobra.Command{
		Use:           "thide",
		Short:         "Keep the Windows taskbar hidden",
		Version:       Version,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.CompletionOptions.DisableDefaultCmd = true
	root.SetHelpFunc(func(cmd *cobra.Command, _ []string) {
		fmt.Fprint(cmd.OutOrStdout(), usage)
	})

	root.AddCommand(
		&cobra.Command{
			Use:   "start",
			Short: "Start THide in GUI mode",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return start(cmd, b)
			},
		},
		postCmd(b, "show", "Show the taskbar", ipc.Show, "Showing taskbar..."),
		postCmd(b, "hide", "Hide the taskbar", ipc.Hide, "Hiding taskbar..."),
		postCmd(b, "stop", "Stop THide and restore the taskbar", ipc.Quit, "Stopping THide...", "quit"),
		&cobra.Command{
			Use:   "enable-autostart",
			Short: "Enable autostart on login",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return enableAutostart(cmd, b)
			},
		},
		&cobra.Command{
			Use:   "disable-autostart",
			Short: "Disable autostart on login",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return disableAutostart(cmd, b)
			},
		},
		&cobra.Command{
			Use:    "run",
			Short:  "Run the tray instance in this process",
			Hidden: true,
			Args:   cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				if err := b.Serve(); err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
					return errReported
				}
				return nil
			},
		},
	)
	return root
}

func postCmd(b Backend, use, short string, m ipc.Message, done string, aliases ...string) *cobra.Command {
	return &cobra.Command{
		Use:     use,
		Short:   short,
		Aliases: aliases,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			err := b.Post(m)
			if errors.Is(err, ipc.ErrNotRunning) {
				fmt.Fprintln(cmd.ErrOrStderr(), "Error: THide is not running!")
				return errReported
			}
			if err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
				return errReported
			}
			fmt.Fprintln(cmd.OutOrStdout(), done)
			return nil
		},
	}
}

func start(cmd *cobra.Command, b Backend) error {
	if b.Running() {
		fmt.Fprintln(cmd.OutOrStdout(), "THide is already running.")
		return nil
	}
	if err := b.Spawn(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Failed to start THide: %v\n", err)
		return errReported
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Starting THide...")
	return nil
}

func enableAutostart(cmd *cobra.Command, b Backend) error {
	if err := b.EnableAutostart(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Failed to enable autostart: %v\n", err)
		return errReported
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "✓ Autostart enabled successfully!")
	fmt.Fprintln(out, "  THide will start automatically when you log in.")
	return nil
}

func disableAutostart(cmd *cobra.Command, b Backend) error {
	err := b.DisableAutostart()
	switch {
	case errors.Is(err, autostart.ErrNotEnabled):
		fmt.Fprintln(cmd.OutOrStdout(), "Autostart was not enabled.")
		return nil
	case err != nil:
		fmt.Fprintf(cmd.ErrOrStderr(), "Failed to disable autostart: %v\n", err)
		return errReported
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✓ Autostart disabled successfully!")
	return nil
}

//go:build windows

package autostart

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

// Enable writes the run-key value, replacing any previous one.
func Enable(command string) error {
	k, _, err := registry.CreateKey(registry.CURRENT_USER, RunKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("open run key: %w", err)
	}
	defer k.Close()
	if err := k.SetStringValue(ValueName, command); err != nil {
		return fmt.Errorf("write %s: %w", ValueName, err)
	}
	return nil
}

// Disable deletes the run-key value. A missing key or value yields
// ErrNotEnabled.
func Disable() error {
	k, err := registry.OpenKey(registry.CURRENT_USER, RunKey, registry.SET_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return ErrNotEnabled
	}
	if err != nil {
		return fmt.Errorf("open run key: %w", err)
	}
	defer k.Close()
	err = k.DeleteValue(ValueName)
	if errors.Is(err, registry.ErrNotExist) {
		return ErrNotEnabled
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", ValueName, err)
	}
	return nil
}

package taskbar

import "github.com/shirou/gopsutil/v4/process"

// ProcessName returns the executable base name of pid. gopsutil opens the
// process with limited query rights and closes the handle before returning.
func ProcessName(pid uint32) (string, error) {
	p, err := process.NewProcess(int32(pid))
	if err != nil {
		return "", err
	}
	return p.Name()
}

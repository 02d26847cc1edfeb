//go:build windows

package abav1

import (
	"fmt"
	"os"

	"golang.org/x/sys/windows"
)

func lowerPriority(p *os.Process) error {
	handle, err := windows.OpenProcess(windows.PROCESS_SET_INFORMATION, false, uint32(p.Pid))
	if err != nil {
		return fmt.Errorf("OpenProcess(%d): %w", p.Pid, err)
	}
	defer windows.CloseHandle(handle)

	if err := windows.SetPriorityClass(handle, windows.BELOW_NORMAL_PRIORITY_CLASS); err != nil {
		return fmt.Errorf("SetPriorityClass(%d): %w", p.Pid, err)
	}
	return nil
}

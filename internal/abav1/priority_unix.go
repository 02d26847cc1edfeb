//go:build linux || darwin || freebsd || netbsd || openbsd

package abav1

import (
	"os"

	"golang.org/x/sys/unix"
)

// niceIncrement is added to the child's scheduling priority.
const niceIncrement = 10

func lowerPriority(p *os.Process) error {
	return unix.Setpriority(unix.PRIO_PROCESS, p.Pid, niceIncrement)
}

//go:build !linux && !darwin && !freebsd && !netbsd && !openbsd && !windows

package abav1

import (
	"errors"
	"os"
)

func lowerPriority(*os.Process) error {
	return errors.New("process priority is not supported on this platform")
}

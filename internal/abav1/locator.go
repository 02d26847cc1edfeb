package abav1

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	coreerrors "github.com/five82/abwalk/internal/errors"
	"github.com/five82/abwalk/internal/util"
)

// Locator finds the encoder binary.
type Locator interface {
	Locate(name string) (string, error)
}

// LocatorFunc adapts a function to Locator.
type LocatorFunc func(name string) (string, error)

// Locate calls f.
func (f LocatorFunc) Locate(name string) (string, error) {
	return f(name)
}

// DefaultLocator looks in Dir (the working directory when empty) and then
// on PATH. The platform executable suffix is added to name.
type DefaultLocator struct {
	Dir string
}

// Locate returns the absolute path of the binary.
func (l DefaultLocator) Locate(name string) (string, error) {
	exe := util.ExecutableName(name)

	dir := l.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err == nil {
			dir = wd
		}
	}
	if dir != "" {
		candidate := filepath.Join(dir, exe)
		if isExecutableFile(candidate) {
			return filepath.Abs(candidate)
		}
	}

	path, err := exec.LookPath(exe)
	if err != nil {
		return "", coreerrors.NewToolNotFoundError(exe, err)
	}
	return path, nil
}

// FixedLocator returns a configured path after checking it exists.
type FixedLocator string

// Locate ignores name and checks the fixed path.
func (l FixedLocator) Locate(string) (string, error) {
	path := string(l)
	if !isExecutableFile(path) {
		return "", coreerrors.NewToolNotFoundError(path, fmt.Errorf("%s is not an executable file", path))
	}
	return filepath.Abs(path)
}

// LocatorFor returns a FixedLocator when toolPath is set, else a DefaultLocator.
func LocatorFor(toolPath string) Locator {
	if toolPath != "" {
		return FixedLocator(toolPath)
	}
	return DefaultLocator{}
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if util.ExecutableName("") != "" {
		// Windows has no exec bit
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}

package abav1

import (
	"context"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/five82/abwalk/internal/config"
	"github.com/five82/abwalk/internal/discovery"
	coreerrors "github.com/five82/abwalk/internal/errors"
)

// Logger receives command lines and priority warnings.
type Logger interface {
	Debug(format string, args ...any)
	Warn(format string, args ...any)
}

// Invoker runs one ab-av1 attempt at a time.
type Invoker struct {
	ToolPath string
	Config   *config.Config

	// Stdout and Stderr receive the child's output. Nil means the
	// process's own streams.
	Stdout io.Writer
	Stderr io.Writer

	Log Logger
}

// NewInvoker creates an Invoker for the tool at toolPath.
func NewInvoker(toolPath string, cfg *config.Config, log Logger) *Invoker {
	return &Invoker{
		ToolPath: toolPath,
		Config:   cfg,
		Stdout:   os.Stdout,
		Stderr:   os.Stderr,
		Log:      log,
	}
}

// OutputPath returns where an attempt at target writes its output.
func (inv *Invoker) OutputPath(file discovery.MediaFile, target int) string {
	return OutputPath(file, inv.Config.Backend, target)
}

// Invoke encodes file at target and blocks until the child exits.
// Cancelling ctx kills the child.
func (inv *Invoker) Invoke(ctx context.Context, file discovery.MediaFile, target int) Attempt {
	output := inv.OutputPath(file, target)
	args := BuildArgs(file.Path, output, target, inv.Config)

	attempt := Attempt{
		Input:      file.Path,
		Target:     target,
		OutputPath: output,
	}

	if inv.Log != nil {
		inv.Log.Debug("Running: %s %v", inv.ToolPath, args)
	}

	tail := newTailBuffer(defaultTailSize)
	cmd := exec.CommandContext(ctx, inv.ToolPath, args...)
	cmd.Stdout = writerOr(inv.Stdout, os.Stdout)
	cmd.Stderr = io.MultiWriter(writerOr(inv.Stderr, os.Stderr), tail)

	start := time.Now()
	if err := cmd.Start(); err != nil {
		attempt.Outcome = Fatal
		attempt.ExitCode = -1
		attempt.Err = coreerrors.NewCommandStartError(inv.ToolPath, err)
		return attempt
	}

	if inv.Config.Responsive {
		if err := lowerPriority(cmd.Process); err != nil && inv.Log != nil {
			inv.Log.Warn("Could not lower encoder priority: %v", err)
		}
	}

	err := cmd.Wait()
	attempt.Duration = time.Since(start)
	attempt.StderrTail = tail.String()
	attempt.Outcome, attempt.ExitCode = ClassifyExit(err, inv.Config.TransientExitCode)
	if err != nil {
		attempt.Err = coreerrors.WrapExecError(inv.ToolPath, err, lastLine(attempt.StderrTail))
	}
	return attempt
}

func writerOr(w, fallback io.Writer) io.Writer {
	if w == nil {
		return fallback
	}
	return w
}

// lastLine returns the final non-empty line of s.
func lastLine(s string) string {
	end := len(s)
	for end > 0 && (s[end-1] == '\n' || s[end-1] == '\r') {
		end--
	}
	start := end
	for start > 0 && s[start-1] != '\n' && s[start-1] != '\r' {
		start--
	}
	return s[start:end]
}

package abav1

import (
	"errors"
	"os/exec"
	"time"
)

// Outcome classifies a finished attempt.
type Outcome int

const (
	// Success means the tool exited 0 and the output was written.
	Success Outcome = iota
	// QualityUnreachable means the tool exited non-zero; a lower target may work.
	QualityUnreachable
	// Transient means the tool hit an environmental failure; the same target may work.
	Transient
	// Fatal means the tool could not be run at all, or crashed: a child
	// killed by any signal, including SIGKILL from the OOM killer, is
	// Fatal and stops the batch. Resource failures ab-av1 reports itself
	// arrive as the transient exit code instead.
	Fatal
)

func (o Outcome) String() string {
	switch o {
	case Success:
		return "success"
	case QualityUnreachable:
		return "quality unreachable"
	case Transient:
		return "transient"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Attempt records one invocation. It is never persisted.
type Attempt struct {
	Input      string
	Target     int
	OutputPath string
	Outcome    Outcome
	ExitCode   int
	Err        error
	Duration   time.Duration
	StderrTail string
}

// ClassifyExit maps the error returned by exec.Cmd.Wait (or Start) to an
// outcome and exit code. A child killed by a signal reports exit code -1
// and is Fatal, as is a process that never started.
func ClassifyExit(err error, transientCode int) (Outcome, int) {
	if err == nil {
		return Success, 0
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return Fatal, -1
	}

	code := exitErr.ExitCode()
	switch {
	case code < 0:
		return Fatal, code
	case code == transientCode:
		return Transient, code
	default:
		return QualityUnreachable, code
	}
}

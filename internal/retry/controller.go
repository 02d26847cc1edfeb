// Package retry drives one file through repeated encode attempts.
//
// A file starts at the configured VMAF target. When the encoder cannot
// reach the target the controller lowers it by one and tries again, down
// to 1. Transient failures repeat the same target after a backoff delay.
// A fatal failure stops the file and is returned to the caller, which is
// expected to stop the batch.
package retry

import (
	"context"
	"time"

	"github.com/five82/abwalk/internal/abav1"
	"github.com/five82/abwalk/internal/config"
	"github.com/five82/abwalk/internal/discovery"
	coreerrors "github.com/five82/abwalk/internal/errors"
	"github.com/five82/abwalk/internal/reporter"
)

// State is a position in the per-file state machine.
type State int

const (
	Attempting State = iota
	Succeeded
	Exhausted
	TransientLimit
)

func (s State) String() string {
	switch s {
	case Attempting:
		return "attempting"
	case Succeeded:
		return "succeeded"
	case Exhausted:
		return "exhausted"
	case TransientLimit:
		return "transient_limit"
	default:
		return "unknown"
	}
}

// Invoker runs a single encode attempt.
type Invoker interface {
	OutputPath(file discovery.MediaFile, target int) string
	Invoke(ctx context.Context, file discovery.MediaFile, target int) abav1.Attempt
}

// Logger receives per-attempt log lines.
type Logger interface {
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Debug(format string, args ...any)
}

// FileResult is the final state of one file.
type FileResult struct {
	File        discovery.MediaFile
	State       State
	FinalTarget int
	OutputPath  string
	Attempts    []abav1.Attempt
	Duration    time.Duration
}

// Controller runs the retry state machine. It is not safe for concurrent use.
type Controller struct {
	invoker Invoker
	policy  Policy
	rep     reporter.Reporter
	log     Logger

	// Sleep waits between transient retries. It returns early with an
	// error when ctx is done.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewController creates a controller. rep and log may be nil.
func NewController(invoker Invoker, policy Policy, rep reporter.Reporter, log Logger) *Controller {
	if rep == nil {
		rep = reporter.NullReporter{}
	}
	return &Controller{
		invoker: invoker,
		policy:  policy,
		rep:     rep,
		log:     log,
		Sleep:   sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Run encodes file starting at initialTarget. Targets only ever decrease
// and never go below config.MinQualityTarget. The error is non-nil only
// for a fatal encoder failure or cancellation; Exhausted and
// TransientLimit are reported through the result.
func (c *Controller) Run(ctx context.Context, file discovery.MediaFile, initialTarget int) (FileResult, error) {
	start := time.Now()
	result := FileResult{File: file, State: Attempting}
	finish := func(state State, target int) FileResult {
		result.State = state
		result.FinalTarget = target
		result.Duration = time.Since(start)
		return result
	}

	target := initialTarget
	transientRetries := 0

	for {
		if ctx.Err() != nil {
			finish(Attempting, target)
			return result, coreerrors.NewCancelledError()
		}

		c.rep.AttemptStarted(reporter.AttemptInfo{
			File:       file.Path,
			Target:     target,
			OutputPath: c.invoker.OutputPath(file, target),
			Attempt:    len(result.Attempts) + 1,
		})

		attempt := c.invoker.Invoke(ctx, file, target)
		result.Attempts = append(result.Attempts, attempt)
		c.logAttempt(attempt)

		if ctx.Err() != nil {
			finish(Attempting, target)
			return result, coreerrors.NewCancelledError()
		}

		finished := reporter.AttemptResult{
			File:       file.Path,
			Target:     target,
			OutputPath: attempt.OutputPath,
			Outcome:    attempt.Outcome.String(),
			ExitCode:   attempt.ExitCode,
			Duration:   attempt.Duration,
		}

		switch attempt.Outcome {
		case abav1.Success:
			c.rep.AttemptFinished(finished)
			result.OutputPath = attempt.OutputPath
			return finish(Succeeded, target), nil

		case abav1.Transient:
			if !c.policy.Allows(transientRetries) {
				finished.Message = "transient retry limit reached"
				c.rep.AttemptFinished(finished)
				return finish(TransientLimit, target), nil
			}
			delay := c.policy.Backoff(transientRetries)
			transientRetries++
			finished.NextTarget = target
			finished.RetryDelay = delay
			c.rep.AttemptFinished(finished)
			if err := c.Sleep(ctx, delay); err != nil {
				finish(Attempting, target)
				return result, coreerrors.NewCancelledError()
			}

		case abav1.QualityUnreachable:
			next := target - 1
			if next < config.MinQualityTarget {
				c.rep.AttemptFinished(finished)
				return finish(Exhausted, target), nil
			}
			finished.NextTarget = next
			c.rep.AttemptFinished(finished)
			target = next

		default:
			if attempt.Err != nil {
				finished.Message = attempt.Err.Error()
			}
			c.rep.AttemptFinished(finished)
			finish(Attempting, target)
			return result, coreerrors.NewEncoderFatalError(file.Path, attempt.Err)
		}
	}
}

func (c *Controller) logAttempt(a abav1.Attempt) {
	if c.log == nil {
		return
	}
	switch a.Outcome {
	case abav1.Success:
		c.log.Info("Encoded %s at VMAF %d in %s", a.Input, a.Target, a.Duration.Round(time.Second))
	case abav1.Fatal:
		c.log.Warn("Encoder could not run for %s: %v", a.Input, a.Err)
	default:
		c.log.Info("Attempt for %s at VMAF %d ended %s (exit code %d)", a.Input, a.Target, a.Outcome, a.ExitCode)
		if a.StderrTail != "" {
			c.log.Debug("stderr tail:\n%s", a.StderrTail)
		}
	}
}

// Package processing drives a batch of files through the encoder, one at a time.
package processing

import (
	"context"
	"fmt"
	"time"

	"github.com/five82/abwalk/internal/config"
	"github.com/five82/abwalk/internal/discovery"
	coreerrors "github.com/five82/abwalk/internal/errors"
	"github.com/five82/abwalk/internal/reporter"
	"github.com/five82/abwalk/internal/retry"
	"github.com/five82/abwalk/internal/util"
)

// FileOutcome is one file's final state plus the size of its output.
type FileOutcome struct {
	retry.FileResult
	EncodedSize uint64
}

// Summary describes a finished or stopped batch.
type Summary struct {
	RunID          string
	RootDir        string
	Scan           *ScanResult
	TotalFiles     int
	Results        []FileOutcome
	Succeeded      int
	Exhausted      int
	TransientLimit int
	OriginalSize   uint64
	EncodedSize    uint64
	Duration       time.Duration
	Aborted        bool
}

// Processed returns how many files reached a final state.
func (s *Summary) Processed() int {
	return len(s.Results)
}

// Options carries per-run values that are not part of the encode config.
type Options struct {
	RunID string
	Log   Logger
}

// ProcessDirectory discovers, filters and encodes every eligible file under
// cfg.RootDir. A fatal encoder failure or cancellation stops the batch and
// is returned with the partial summary. Per-file failures are not errors.
func ProcessDirectory(ctx context.Context, cfg *config.Config, invoker retry.Invoker, rep reporter.Reporter, opts Options) (*Summary, error) {
	if rep == nil {
		rep = reporter.NullReporter{}
	}

	sysInfo := util.GetSystemInfo()
	rep.Hardware(reporter.HardwareSummary{
		Hostname: sysInfo.Hostname,
		OS:       sysInfo.OS,
		Arch:     sysInfo.Arch,
		NumCPU:   sysInfo.NumCPU,
	})
	rep.EncodingConfig(EncodingConfigSummary(cfg))

	scan, err := Scan(cfg, opts.Log)
	if err != nil {
		return nil, err
	}
	rep.Discovery(scan.DiscoverySummary())

	if len(scan.Filter.Kept) == 0 {
		// Not a failure: the batch still completes with nothing to do
		noFiles := coreerrors.NewNoFilesFoundError(scan.RootDir)
		rep.Warning(noFiles.Error())
		if opts.Log != nil {
			opts.Log.Warn("%v", noFiles)
		}
	}

	summary, err := ProcessFiles(ctx, cfg, scan.Filter.Kept, invoker, rep, opts)
	summary.RootDir = scan.RootDir
	summary.Scan = scan
	return summary, err
}

// EncodingConfigSummary describes cfg for reporting. Tuning fields are
// blank for backends that ignore them.
func EncodingConfigSummary(cfg *config.Config) reporter.EncodingConfigSummary {
	s := reporter.EncodingConfigSummary{
		Tool:          cfg.ToolPath,
		Encoder:       cfg.Backend.String(),
		QualityTarget: cfg.QualityTarget,
		AudioCodec:    cfg.AudioCodec,
		Downmix:       cfg.DownmixStereo,
		MinSize:       cfg.MinSize,
	}
	if s.Tool == "" {
		s.Tool = cfg.ToolName
	}
	if cfg.Backend.AcceptsTuning() {
		s.ExtraParams = cfg.ExtraParams
		s.PixelFormat = cfg.PixelFormat
		s.Preset = cfg.Preset
	}
	return s
}

// ProcessFiles encodes files in order. It always returns a summary.
func ProcessFiles(ctx context.Context, cfg *config.Config, files []discovery.MediaFile, invoker retry.Invoker, rep reporter.Reporter, opts Options) (*Summary, error) {
	if rep == nil {
		rep = reporter.NullReporter{}
	}
	log := opts.Log

	start := time.Now()
	summary := &Summary{
		RunID:      opts.RunID,
		RootDir:    cfg.RootDir,
		TotalFiles: len(files),
	}

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name()
	}
	rep.BatchStarted(reporter.BatchStartInfo{
		RunID:      opts.RunID,
		TotalFiles: len(files),
		FileList:   names,
		RootDir:    cfg.RootDir,
	})

	var retryLog retry.Logger
	if log != nil {
		retryLog = log
	}
	controller := retry.NewController(invoker, retry.PolicyFromConfig(cfg.Transient), rep, retryLog)

	var runErr error
	for i, file := range files {
		if ctx.Err() != nil {
			runErr = coreerrors.NewCancelledError()
			break
		}

		rep.FileProgress(reporter.FileProgressContext{
			CurrentFile: i + 1,
			TotalFiles:  len(files),
			File:        file.Path,
			Size:        file.Size,
		})
		if log != nil {
			log.Info("Processing file %d of %d: %s", i+1, len(files), file.Path)
		}

		res, err := controller.Run(ctx, file, cfg.QualityTarget)
		if err != nil {
			runErr = err
			fileResult := toReporterResult(res, statusForError(err), 0)
			rep.FileComplete(fileResult)
			if coreerrors.IsEncoderFatal(err) {
				rep.Error(reporter.ReporterError{
					Title:      "Encoder failure",
					Message:    err.Error(),
					Context:    fmt.Sprintf("File: %s", file.Path),
					Suggestion: "Check that ab-av1 and ffmpeg run from this shell",
				})
				if log != nil {
					log.Error("Stopping batch: %v", err)
				}
			}
			break
		}

		var encodedSize uint64
		switch res.State {
		case retry.Succeeded:
			summary.Succeeded++
			summary.OriginalSize += file.Size
			if size, err := util.GetFileSize(res.OutputPath); err == nil {
				encodedSize = size
				summary.EncodedSize += size
			} else if log != nil {
				log.Warn("Could not stat output %s: %v", res.OutputPath, err)
			}
		case retry.Exhausted:
			summary.Exhausted++
			if log != nil {
				log.Warn("No VMAF target reachable for %s", file.Path)
			}
		case retry.TransientLimit:
			summary.TransientLimit++
			if log != nil {
				log.Warn("Giving up on %s after repeated transient failures", file.Path)
			}
		}
		summary.Results = append(summary.Results, FileOutcome{FileResult: res, EncodedSize: encodedSize})
		rep.FileComplete(toReporterResult(res, statusFor(res.State), encodedSize))
	}

	summary.Duration = time.Since(start)
	summary.Aborted = runErr != nil
	rep.BatchComplete(summary.batchSummary())
	if log != nil {
		log.Info("Batch finished: %d of %d succeeded in %s", summary.Succeeded, summary.TotalFiles, util.FormatDuration(summary.Duration))
	}
	return summary, runErr
}

func statusFor(state retry.State) reporter.FileStatus {
	switch state {
	case retry.Succeeded:
		return reporter.StatusSucceeded
	case retry.Exhausted:
		return reporter.StatusExhausted
	case retry.TransientLimit:
		return reporter.StatusTransientLimit
	default:
		return reporter.StatusFatal
	}
}

func statusForError(err error) reporter.FileStatus {
	if coreerrors.IsCancelled(err) {
		return reporter.StatusCancelled
	}
	return reporter.StatusFatal
}

func toReporterResult(res retry.FileResult, status reporter.FileStatus, encodedSize uint64) reporter.FileResult {
	return reporter.FileResult{
		File:         res.File.Path,
		Status:       status,
		FinalTarget:  res.FinalTarget,
		OutputPath:   res.OutputPath,
		OriginalSize: res.File.Size,
		EncodedSize:  encodedSize,
		Attempts:     len(res.Attempts),
		Duration:     res.Duration,
	}
}

func (s *Summary) batchSummary() reporter.BatchSummary {
	results := make([]reporter.FileResult, len(s.Results))
	for i, res := range s.Results {
		results[i] = toReporterResult(res.FileResult, statusFor(res.State), res.EncodedSize)
	}
	return reporter.BatchSummary{
		RunID:             s.RunID,
		TotalFiles:        s.TotalFiles,
		ProcessedCount:    s.Processed(),
		SuccessfulCount:   s.Succeeded,
		ExhaustedCount:    s.Exhausted,
		TransientCount:    s.TransientLimit,
		Aborted:           s.Aborted,
		TotalOriginalSize: s.OriginalSize,
		TotalEncodedSize:  s.EncodedSize,
		TotalDuration:     s.Duration,
		FileResults:       results,
	}
}

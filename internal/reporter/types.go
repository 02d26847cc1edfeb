// Package reporter provides progress reporting interfaces and implementations.
package reporter

import (
	"time"

	"github.com/five82/abwalk/internal/util"
)

// HardwareSummary contains host information.
type HardwareSummary struct {
	Hostname string
	OS       string
	Arch     string
	NumCPU   int
}

// EncodingConfigSummary describes the encode job applied to every file.
type EncodingConfigSummary struct {
	Tool          string
	Encoder       string
	QualityTarget int
	ExtraParams   string
	PixelFormat   string
	Preset        string
	AudioCodec    string
	Downmix       bool
	MinSize       uint64
}

// ExcludedFile is a discovered file the filter removed.
type ExcludedFile struct {
	Path   string
	Reason string
}

// DiscoverySummary reports the walk and filter results.
type DiscoverySummary struct {
	RootDir    string
	FoundCount int
	KeptCount  int
	Excluded   []ExcludedFile
	WalkErrors int
}

// BatchStartInfo contains batch start metadata.
type BatchStartInfo struct {
	RunID      string
	TotalFiles int
	FileList   []string
	RootDir    string
}

// FileProgressContext announces the file about to be encoded.
type FileProgressContext struct {
	CurrentFile int
	TotalFiles  int
	File        string
	Size        uint64
}

// AttemptInfo announces one invocation of the encoder.
type AttemptInfo struct {
	File       string
	Target     int
	OutputPath string
	Attempt    int
}

// AttemptResult reports a finished invocation and what happens next.
// NextTarget is zero when no further attempt follows.
type AttemptResult struct {
	File       string
	Target     int
	OutputPath string
	Outcome    string
	ExitCode   int
	Duration   time.Duration
	NextTarget int
	RetryDelay time.Duration
	Message    string
}

// FileStatus is the terminal state of one file.
type FileStatus string

const (
	StatusSucceeded      FileStatus = "succeeded"
	StatusExhausted      FileStatus = "exhausted"
	StatusTransientLimit FileStatus = "transient_limit"
	StatusFatal          FileStatus = "fatal"
	StatusCancelled      FileStatus = "cancelled"
)

// FileResult contains the per-file outcome.
type FileResult struct {
	File         string
	Status       FileStatus
	FinalTarget  int
	OutputPath   string
	OriginalSize uint64
	EncodedSize  uint64
	Attempts     int
	Duration     time.Duration
}

// Reduction returns the size reduction in percent, or 0 when nothing was written.
func (f FileResult) Reduction() float64 {
	if f.Status != StatusSucceeded || f.OriginalSize == 0 || f.EncodedSize == 0 {
		return 0
	}
	return util.CalculateSizeReduction(f.OriginalSize, f.EncodedSize)
}

// ReporterError contains error information.
type ReporterError struct {
	Title      string
	Message    string
	Context    string
	Suggestion string
}

// BatchSummary contains batch completion information.
type BatchSummary struct {
	RunID             string
	TotalFiles        int
	ProcessedCount    int
	SuccessfulCount   int
	ExhaustedCount    int
	TransientCount    int
	Aborted           bool
	TotalOriginalSize uint64
	TotalEncodedSize  uint64
	TotalDuration     time.Duration
	FileResults       []FileResult
}

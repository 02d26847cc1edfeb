// Package abwalk provides a library interface for batch transcoding with ab-av1.
//
// An Encoder walks a directory, skips files that are already encoded, preview
// samples or too small, and runs ab-av1 auto-encode on each remaining file in
// turn, lowering the VMAF target until the encode succeeds.
//
// Example usage:
//
//	enc, err := abwalk.New(
//	    abwalk.WithQualityTarget(95),
//	    abwalk.WithBackend(abwalk.BackendAV1),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	result, err := enc.Run(ctx, "/media/films", nil)
package abwalk

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/five82/abwalk/internal/abav1"
	"github.com/five82/abwalk/internal/config"
	"github.com/five82/abwalk/internal/discovery"
	"github.com/five82/abwalk/internal/eligibility"
	"github.com/five82/abwalk/internal/processing"
	"github.com/five82/abwalk/internal/reporter"
	"github.com/five82/abwalk/internal/retry"
	"github.com/five82/abwalk/internal/util"
)

// Backend selects the ab-av1 encoder.
type Backend = config.Backend

// Available backends.
const (
	BackendX265 = config.BackendX265
	BackendAV1  = config.BackendAV1
)

// ParseBackend parses a backend name.
func ParseBackend(s string) (Backend, error) {
	return config.ParseBackend(s)
}

// Reporter receives progress events during a run.
type Reporter = reporter.Reporter

// Locator finds the ab-av1 binary.
type Locator = abav1.Locator

// LocatorFunc adapts a function to Locator.
type LocatorFunc = abav1.LocatorFunc

// Encoder runs batches with a fixed configuration.
type Encoder struct {
	config  *config.Config
	locator Locator
	runID   string
}

// FileResult contains the outcome for one file.
type FileResult struct {
	Input                string
	Output               string
	Status               string
	FinalTarget          int
	Attempts             int
	OriginalSize         uint64
	EncodedSize          uint64
	SizeReductionPercent float64
	Duration             time.Duration
}

// BatchResult contains the outcome of a run.
type BatchResult struct {
	RunID               string
	Results             []FileResult
	TotalFiles          int
	SuccessfulCount     int
	ExhaustedCount      int
	TransientLimitCount int
	TotalSizeReduction  float64
	Aborted             bool
}

// Exclusion is a discovered file that will not be encoded.
type Exclusion struct {
	Path   string
	Reason string
}

// ScanResult lists what a run would encode.
type ScanResult struct {
	RootDir  string
	Found    int
	Eligible []string
	Excluded []Exclusion
}

// Option configures an Encoder.
type Option func(*Encoder)

// New creates a new Encoder with the given options.
func New(opts ...Option) (*Encoder, error) {
	e := &Encoder{config: config.NewConfig(".")}

	for _, opt := range opts {
		opt(e)
	}

	if err := e.config.Validate(); err != nil {
		return nil, err
	}
	if e.runID == "" {
		e.runID = uuid.NewString()
	}

	return e, nil
}

// WithQualityTarget sets the starting VMAF target (1-100).
func WithQualityTarget(vmaf int) Option {
	return func(e *Encoder) {
		e.config.QualityTarget = vmaf
	}
}

// WithBackend selects the encoder backend.
func WithBackend(b Backend) Option {
	return func(e *Encoder) {
		e.config.Backend = b
	}
}

// WithEncoderTuning sets the --enc, --pix-format and --preset values. They
// are ignored by backends that do not accept tuning.
func WithEncoderTuning(extraParams, pixelFormat, preset string) Option {
	return func(e *Encoder) {
		e.config.ExtraParams = extraParams
		e.config.PixelFormat = pixelFormat
		e.config.Preset = preset
	}
}

// WithAudio sets the audio codec and whether to downmix to stereo.
func WithAudio(codec string, downmix bool) Option {
	return func(e *Encoder) {
		e.config.AudioCodec = codec
		e.config.DownmixStereo = downmix
	}
}

// WithMinSize sets the smallest file size in bytes that is encoded.
func WithMinSize(bytes uint64) Option {
	return func(e *Encoder) {
		e.config.MinSize = bytes
	}
}

// WithTransientRetry bounds retries after transient failures. A negative
// maxRetries retries without limit.
func WithTransientRetry(maxRetries int, delay time.Duration) Option {
	return func(e *Encoder) {
		e.config.Transient.MaxRetries = maxRetries
		e.config.Transient.Delay = delay
	}
}

// WithResponsive lowers the encoder's scheduling priority.
func WithResponsive() Option {
	return func(e *Encoder) {
		e.config.Responsive = true
	}
}

// WithToolPath uses the ab-av1 binary at path instead of searching for it.
func WithToolPath(path string) Option {
	return func(e *Encoder) {
		e.config.ToolPath = path
	}
}

// WithLocator replaces the binary lookup.
func WithLocator(l Locator) Option {
	return func(e *Encoder) {
		e.locator = l
	}
}

// WithRunID sets the identifier attached to events. A random one is used otherwise.
func WithRunID(id string) Option {
	return func(e *Encoder) {
		e.runID = id
	}
}

// RunID returns the identifier attached to this encoder's events.
func (e *Encoder) RunID() string {
	return e.runID
}

// Run encodes every eligible file under dir. The returned error is non-nil
// for configuration problems, a fatal encoder failure or cancellation; the
// result is still returned in the latter two cases.
func (e *Encoder) Run(ctx context.Context, dir string, rep Reporter) (*BatchResult, error) {
	cfg := *e.config
	cfg.RootDir = dir

	locator := e.locator
	if locator == nil {
		locator = abav1.LocatorFor(cfg.ToolPath)
	}
	tool, err := locator.Locate(cfg.ToolName)
	if err != nil {
		return nil, err
	}
	cfg.ToolPath = tool

	inv := abav1.NewInvoker(tool, &cfg, nil)
	summary, err := processing.ProcessDirectory(ctx, &cfg, inv, rep, processing.Options{RunID: e.runID})
	if summary == nil {
		return nil, err
	}
	return e.batchResult(summary), err
}

// Scan reports which files under dir a run would encode, without encoding.
func (e *Encoder) Scan(dir string) (*ScanResult, error) {
	cfg := *e.config
	cfg.RootDir = dir

	scan, err := processing.Scan(&cfg, nil)
	if err != nil {
		return nil, err
	}

	result := &ScanResult{
		RootDir: scan.RootDir,
		Found:   len(scan.Discovery.Files),
	}
	for _, f := range scan.Filter.Kept {
		result.Eligible = append(result.Eligible, f.Path)
	}
	for _, ex := range scan.Filter.Excluded {
		result.Excluded = append(result.Excluded, Exclusion{
			Path:   ex.File.Path,
			Reason: eligibility.JoinReasons(ex.Reasons),
		})
	}
	return result, nil
}

func (e *Encoder) batchResult(s *processing.Summary) *BatchResult {
	batch := &BatchResult{
		RunID:               e.runID,
		TotalFiles:          s.TotalFiles,
		SuccessfulCount:     s.Succeeded,
		ExhaustedCount:      s.Exhausted,
		TransientLimitCount: s.TransientLimit,
		TotalSizeReduction:  util.CalculateSizeReduction(s.OriginalSize, s.EncodedSize),
		Aborted:             s.Aborted,
	}
	for _, res := range s.Results {
		fr := FileResult{
			Input:        res.File.Path,
			Status:       res.State.String(),
			Attempts:     len(res.Attempts),
			OriginalSize: res.File.Size,
			Duration:     res.Duration,
		}
		if res.State == retry.Succeeded {
			fr.Output = res.OutputPath
			fr.FinalTarget = res.FinalTarget
			fr.EncodedSize = res.EncodedSize
			fr.SizeReductionPercent = util.CalculateSizeReduction(res.File.Size, res.EncodedSize)
		}
		batch.Results = append(batch.Results, fr)
	}
	return batch
}

// FindVideos finds video files in a directory tree.
func FindVideos(dir string) ([]string, error) {
	return discovery.FindVideoFiles(dir)
}

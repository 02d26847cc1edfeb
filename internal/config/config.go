// Package config provides configuration types and defaults for abwalk.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Default constants
const (
	// DefaultQualityTarget is the initial VMAF target requested from ab-av1.
	DefaultQualityTarget = 95

	// MinQualityTarget is the lowest VMAF target that will ever be attempted.
	MinQualityTarget = 1

	// MaxQualityTarget is the highest valid VMAF target.
	MaxQualityTarget = 100

	// DefaultBackend is the encoder used when none is selected.
	DefaultBackend = BackendX265

	// DefaultExtraParams is passed through --enc for backends that accept tuning.
	DefaultExtraParams = "x265-params=limit-sao,bframes=8,psy-rd=1,aq-mode=3"

	// DefaultPixelFormat is the output pixel format.
	DefaultPixelFormat = "yuv420p10le"

	// DefaultPreset is the encoder preset for backends that accept tuning.
	DefaultPreset = "slow"

	// DefaultAudioCodec is the codec audio tracks are converted to.
	DefaultAudioCodec = "aac"

	// DefaultMinSize is the smallest input size in bytes worth encoding.
	DefaultMinSize uint64 = 400_000_000

	// DefaultSampleMarker marks preview clips that are never encoded.
	DefaultSampleMarker = "sample"

	// DefaultTransientExitCode is the ab-av1 exit code treated as a transient failure.
	DefaultTransientExitCode = 145

	// DefaultMaxTransientRetries caps retries at an unchanged target.
	DefaultMaxTransientRetries = 3

	// DefaultTransientDelay is the wait before the first transient retry.
	DefaultTransientDelay = 5 * time.Second

	// DefaultTransientMaxDelay caps the backoff between transient retries.
	DefaultTransientMaxDelay = time.Minute

	// DefaultTransientMultiplier grows the delay between transient retries.
	DefaultTransientMultiplier = 2.0

	// DefaultToolName is the encoder binary looked up at startup.
	DefaultToolName = "ab-av1"
)

// TransientRetry bounds retries of an attempt that failed for environmental
// reasons. MaxRetries < 0 retries without limit.
type TransientRetry struct {
	MaxRetries int
	Delay      time.Duration
	MaxDelay   time.Duration
	Multiplier float64
}

// Unlimited reports whether transient retries are uncapped.
func (t TransientRetry) Unlimited() bool {
	return t.MaxRetries < 0
}

// Config holds all configuration for a batch run.
type Config struct {
	// Input and logging paths
	RootDir string
	LogDir  string
	Verbose bool
	NoLog   bool

	// Encode job
	QualityTarget int
	Backend       Backend
	ExtraParams   string // Passed through --enc, tuning backends only
	PixelFormat   string
	Preset        string
	AudioCodec    string
	DownmixStereo bool

	// Eligibility rules
	MinSize      uint64
	SampleMarker string

	// Failure handling
	TransientExitCode int
	Transient         TransientRetry

	// External tool
	ToolName string
	ToolPath string // Optional explicit path, skips lookup

	// Processing options
	Responsive  bool // Lower the encoder's scheduling priority
	ClearScreen bool // Clear the terminal before each file
}

// NewConfig creates a new Config with default values.
func NewConfig(rootDir string) *Config {
	return &Config{
		RootDir:           rootDir,
		LogDir:            DefaultLogDir(),
		QualityTarget:     DefaultQualityTarget,
		Backend:           DefaultBackend,
		ExtraParams:       DefaultExtraParams,
		PixelFormat:       DefaultPixelFormat,
		Preset:            DefaultPreset,
		AudioCodec:        DefaultAudioCodec,
		DownmixStereo:     true,
		MinSize:           DefaultMinSize,
		SampleMarker:      DefaultSampleMarker,
		TransientExitCode: DefaultTransientExitCode,
		Transient: TransientRetry{
			MaxRetries: DefaultMaxTransientRetries,
			Delay:      DefaultTransientDelay,
			MaxDelay:   DefaultTransientMaxDelay,
			Multiplier: DefaultTransientMultiplier,
		},
		ToolName: DefaultToolName,
	}
}

// DefaultLogDir returns the per-user log directory, falling back to the temp dir.
func DefaultLogDir() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(os.TempDir(), "abwalk", "logs")
	}
	return filepath.Join(home, ".local", "state", "abwalk", "logs")
}

// Validate checks the configuration for errors and normalizes backend
// aliases. It does not touch the filesystem.
func (c *Config) Validate() error {
	if c.QualityTarget < MinQualityTarget || c.QualityTarget > MaxQualityTarget {
		return fmt.Errorf("%w: must be %d-%d, got %d", ErrInvalidQuality, MinQualityTarget, MaxQualityTarget, c.QualityTarget)
	}

	backend, err := ParseBackend(string(c.Backend))
	if err != nil {
		return err
	}
	// Aliases become the canonical name used in tags and arguments
	c.Backend = backend

	if c.TransientExitCode == 0 {
		return fmt.Errorf("%w: 0 is the success code", ErrInvalidExitCode)
	}

	if c.Transient.Delay < 0 || c.Transient.MaxDelay < 0 {
		return fmt.Errorf("%w: delays must not be negative", ErrInvalidRetryPolicy)
	}

	if c.Transient.Multiplier < 1 {
		return fmt.Errorf("%w: multiplier must be >= 1, got %g", ErrInvalidRetryPolicy, c.Transient.Multiplier)
	}

	return nil
}

// ValidateRootDir checks that RootDir exists and is a directory, returning its absolute form.
func (c *Config) ValidateRootDir() (string, error) {
	abs, err := filepath.Abs(c.RootDir)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrInvalidRootDir, c.RootDir, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrInvalidRootDir, c.RootDir)
	}
	return abs, nil
}

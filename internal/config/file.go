package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pelletier/go-toml/v2"
)

// FileConfig mirrors the optional TOML configuration file. Unset keys leave
// the defaults untouched.
type FileConfig struct {
	Encode  EncodeSection  `toml:"encode"`
	Filter  FilterSection  `toml:"filter"`
	Retry   RetrySection   `toml:"retry"`
	Tool    ToolSection    `toml:"tool"`
	Logging LoggingSection `toml:"logging"`
}

// EncodeSection holds encoder selection and tuning.
type EncodeSection struct {
	VMAF        *int    `toml:"vmaf"`
	Encoder     *string `toml:"encoder"`
	Params      *string `toml:"params"`
	PixelFormat *string `toml:"pix_fmt"`
	Preset      *string `toml:"preset"`
	AudioCodec  *string `toml:"acodec"`
	Downmix     *bool   `toml:"downmix_to_stereo"`
	Responsive  *bool   `toml:"responsive"`
}

// FilterSection holds eligibility rules.
type FilterSection struct {
	MinSize      *string `toml:"min_size"`
	SampleMarker *string `toml:"sample_marker"`
}

// RetrySection holds the transient retry policy.
type RetrySection struct {
	TransientExitCode   *int     `toml:"transient_exit_code"`
	MaxTransientRetries *int     `toml:"max_transient_retries"`
	Delay               *string  `toml:"delay"`
	MaxDelay            *string  `toml:"max_delay"`
	Multiplier          *float64 `toml:"multiplier"`
}

// ToolSection locates the ab-av1 binary.
type ToolSection struct {
	Name *string `toml:"name"`
	Path *string `toml:"path"`
}

// LoggingSection controls the run log.
type LoggingSection struct {
	Dir     *string `toml:"dir"`
	Verbose *bool   `toml:"verbose"`
}

// LoadFile parses a TOML configuration file. Unknown keys are rejected.
func LoadFile(path string) (*FileConfig, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var fc FileConfig
	decoder := toml.NewDecoder(file)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&fc); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return &fc, nil
}

// Apply copies every key set in the file onto c.
func (fc *FileConfig) Apply(c *Config) error {
	e := fc.Encode
	if e.VMAF != nil {
		c.QualityTarget = *e.VMAF
	}
	if e.Encoder != nil {
		b, err := ParseBackend(*e.Encoder)
		if err != nil {
			return err
		}
		c.Backend = b
	}
	setString(&c.ExtraParams, e.Params)
	setString(&c.PixelFormat, e.PixelFormat)
	setString(&c.Preset, e.Preset)
	setString(&c.AudioCodec, e.AudioCodec)
	setBool(&c.DownmixStereo, e.Downmix)
	setBool(&c.Responsive, e.Responsive)

	if fc.Filter.MinSize != nil {
		size, err := ParseSize(*fc.Filter.MinSize)
		if err != nil {
			return err
		}
		c.MinSize = size
	}
	setString(&c.SampleMarker, fc.Filter.SampleMarker)

	r := fc.Retry
	if r.TransientExitCode != nil {
		c.TransientExitCode = *r.TransientExitCode
	}
	if r.MaxTransientRetries != nil {
		c.Transient.MaxRetries = *r.MaxTransientRetries
	}
	if err := setDuration(&c.Transient.Delay, r.Delay, "retry.delay"); err != nil {
		return err
	}
	if err := setDuration(&c.Transient.MaxDelay, r.MaxDelay, "retry.max_delay"); err != nil {
		return err
	}
	if r.Multiplier != nil {
		c.Transient.Multiplier = *r.Multiplier
	}

	setString(&c.ToolName, fc.Tool.Name)
	setString(&c.ToolPath, fc.Tool.Path)
	setString(&c.LogDir, fc.Logging.Dir)
	setBool(&c.Verbose, fc.Logging.Verbose)
	return nil
}

// ParseSize parses a human readable byte size such as "400MB" or "1.5GiB".
func ParseSize(s string) (uint64, error) {
	size, err := humanize.ParseBytes(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	return size, nil
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

func setBool(dst *bool, v *bool) {
	if v != nil {
		*dst = *v
	}
}

func setDuration(dst *time.Duration, v *string, key string) error {
	if v == nil {
		return nil
	}
	d, err := time.ParseDuration(*v)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", ErrInvalidRetryPolicy, key, err)
	}
	*dst = d
	return nil
}

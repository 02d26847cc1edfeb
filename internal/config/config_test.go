package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNewConfig(t *testing.T) {
	cfg := NewConfig("/videos")

	if cfg.RootDir != "/videos" {
		t.Errorf("expected RootDir=/videos, got %s", cfg.RootDir)
	}

	// Check defaults
	if cfg.QualityTarget != DefaultQualityTarget {
		t.Errorf("expected QualityTarget=%d, got %d", DefaultQualityTarget, cfg.QualityTarget)
	}
	if cfg.Backend != BackendX265 {
		t.Errorf("expected Backend=%s, got %s", BackendX265, cfg.Backend)
	}
	if cfg.MinSize != 400000000 {
		t.Errorf("expected MinSize=400000000, got %d", cfg.MinSize)
	}
	if cfg.TransientExitCode != 145 {
		t.Errorf("expected TransientExitCode=145, got %d", cfg.TransientExitCode)
	}
	if cfg.Transient.Unlimited() {
		t.Error("default transient retry policy should be bounded")
	}
	if !cfg.DownmixStereo {
		t.Error("expected DownmixStereo=true by default")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name         string
		modify       func(*Config)
		wantErr      bool
		wantSentinel error
	}{
		{
			name:    "default config is valid",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:         "vmaf 0 is invalid",
			modify:       func(c *Config) { c.QualityTarget = 0 },
			wantErr:      true,
			wantSentinel: ErrInvalidQuality,
		},
		{
			name:    "vmaf 1 is valid",
			modify:  func(c *Config) { c.QualityTarget = 1 },
			wantErr: false,
		},
		{
			name:    "vmaf 100 is valid",
			modify:  func(c *Config) { c.QualityTarget = 100 },
			wantErr: false,
		},
		{
			name:         "vmaf 101 is invalid",
			modify:       func(c *Config) { c.QualityTarget = 101 },
			wantErr:      true,
			wantSentinel: ErrInvalidQuality,
		},
		{
			name:         "unknown backend is invalid",
			modify:       func(c *Config) { c.Backend = "hevc_nvenc" },
			wantErr:      true,
			wantSentinel: ErrUnknownBackend,
		},
		{
			name:         "transient exit code 0 is invalid",
			modify:       func(c *Config) { c.TransientExitCode = 0 },
			wantErr:      true,
			wantSentinel: ErrInvalidExitCode,
		},
		{
			name:         "negative delay is invalid",
			modify:       func(c *Config) { c.Transient.Delay = -time.Second },
			wantErr:      true,
			wantSentinel: ErrInvalidRetryPolicy,
		},
		{
			name:         "multiplier below 1 is invalid",
			modify:       func(c *Config) { c.Transient.Multiplier = 0.5 },
			wantErr:      true,
			wantSentinel: ErrInvalidRetryPolicy,
		},
		{
			name:    "unlimited transient retries is valid",
			modify:  func(c *Config) { c.Transient.MaxRetries = -1 },
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig("/videos")
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantSentinel != nil && !errors.Is(err, tt.wantSentinel) {
				t.Errorf("Validate() error = %v, want sentinel %v", err, tt.wantSentinel)
			}
		})
	}
}

func TestParseBackend(t *testing.T) {
	tests := []struct {
		input   string
		want    Backend
		wantErr bool
	}{
		{"libx265", BackendX265, false},
		{"x265", BackendX265, false},
		{"h265-software", BackendX265, false},
		{"av1", BackendAV1, false},
		{" av1 ", BackendAV1, false},
		{"AV1", "", true},
		{"libsvtav1", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseBackend(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseBackend(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr && !errors.Is(err, ErrUnknownBackend) {
				t.Errorf("ParseBackend(%q) error = %v, want ErrUnknownBackend", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseBackend(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateNormalizesBackendAlias(t *testing.T) {
	tests := []struct {
		alias string
		want  Backend
	}{
		{"x265", BackendX265},
		{"h265-software", BackendX265},
		{" libx265 ", BackendX265},
		{"av1", BackendAV1},
	}

	for _, tt := range tests {
		t.Run(tt.alias, func(t *testing.T) {
			cfg := NewConfig(".")
			cfg.Backend = Backend(tt.alias)
			if err := cfg.Validate(); err != nil {
				t.Fatalf("Validate() error = %v", err)
			}
			if cfg.Backend != tt.want {
				t.Errorf("Backend = %q, want %q", cfg.Backend, tt.want)
			}
		})
	}
}

func TestBackendAcceptsTuning(t *testing.T) {
	if !BackendX265.AcceptsTuning() {
		t.Error("libx265 should accept tuning parameters")
	}
	if BackendAV1.AcceptsTuning() {
		t.Error("av1 should not accept tuning parameters")
	}
}

func TestValidateRootDir(t *testing.T) {
	dir := t.TempDir()

	cfg := NewConfig(dir)
	abs, err := cfg.ValidateRootDir()
	if err != nil {
		t.Fatalf("ValidateRootDir() error = %v", err)
	}
	if !filepath.IsAbs(abs) {
		t.Errorf("ValidateRootDir() = %s, want absolute path", abs)
	}

	file := filepath.Join(dir, "movie.mkv")
	if err := os.WriteFile(file, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	for _, root := range []string{file, filepath.Join(dir, "missing")} {
		cfg := NewConfig(root)
		if _, err := cfg.ValidateRootDir(); !errors.Is(err, ErrInvalidRootDir) {
			t.Errorf("ValidateRootDir(%s) error = %v, want ErrInvalidRootDir", root, err)
		}
	}
}

func TestLoadFileApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "abwalk.toml")
	contents := `
[encode]
vmaf = 93
encoder = "av1"
acodec = "opus"
downmix_to_stereo = false

[filter]
min_size = "1GB"
sample_marker = "trailer"

[retry]
max_transient_retries = 5
delay = "2s"
max_delay = "30s"
multiplier = 1.5

[tool]
path = "/opt/ab-av1/ab-av1"
`
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatal(err)
	}

	fc, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}

	cfg := NewConfig("/videos")
	if err := fc.Apply(cfg); err != nil {
		t.Fatalf("Apply() error = %v", err)
	}

	if cfg.QualityTarget != 93 {
		t.Errorf("QualityTarget = %d, want 93", cfg.QualityTarget)
	}
	if cfg.Backend != BackendAV1 {
		t.Errorf("Backend = %s, want av1", cfg.Backend)
	}
	if cfg.AudioCodec != "opus" || cfg.DownmixStereo {
		t.Errorf("audio = %s/%v, want opus/false", cfg.AudioCodec, cfg.DownmixStereo)
	}
	if cfg.MinSize != 1000000000 {
		t.Errorf("MinSize = %d, want 1000000000", cfg.MinSize)
	}
	if cfg.SampleMarker != "trailer" {
		t.Errorf("SampleMarker = %s, want trailer", cfg.SampleMarker)
	}
	want := TransientRetry{MaxRetries: 5, Delay: 2 * time.Second, MaxDelay: 30 * time.Second, Multiplier: 1.5}
	if cfg.Transient != want {
		t.Errorf("Transient = %+v, want %+v", cfg.Transient, want)
	}
	if cfg.ToolPath != "/opt/ab-av1/ab-av1" {
		t.Errorf("ToolPath = %s", cfg.ToolPath)
	}
	// Untouched keys keep defaults
	if cfg.Preset != DefaultPreset {
		t.Errorf("Preset = %s, want default %s", cfg.Preset, DefaultPreset)
	}
}

func TestLoadFileErrors(t *testing.T) {
	dir := t.TempDir()

	if _, err := LoadFile(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("LoadFile() on missing file should fail")
	}

	unknown := filepath.Join(dir, "unknown.toml")
	if err := os.WriteFile(unknown, []byte("[encode]\ncrf = 20\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(unknown); err == nil {
		t.Error("LoadFile() should reject unknown keys")
	}

	badEncoder := filepath.Join(dir, "bad.toml")
	if err := os.WriteFile(badEncoder, []byte("[encode]\nencoder = \"hevc_qsv\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	fc, err := LoadFile(badEncoder)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if err := fc.Apply(NewConfig("/videos")); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Apply() error = %v, want ErrUnknownBackend", err)
	}

	badDelay := filepath.Join(dir, "delay.toml")
	if err := os.WriteFile(badDelay, []byte("[retry]\ndelay = \"soon\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	fc, err = LoadFile(badDelay)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if err := fc.Apply(NewConfig("/videos")); !errors.Is(err, ErrInvalidRetryPolicy) {
		t.Errorf("Apply() error = %v, want ErrInvalidRetryPolicy", err)
	}
}

func TestParseSize(t *testing.T) {
	tests := []struct {
		input   string
		want    uint64
		wantErr bool
	}{
		{"400MB", 400000000, false},
		{"400000000", 400000000, false},
		{"1GiB", 1 << 30, false},
		{" 2 GB ", 2000000000, false},
		{"lots", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseSize(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseSize(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseSize(%q) = %d, want %d", tt.input, got, tt.want)
		}
	}
}

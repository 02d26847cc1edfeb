package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/five82/abwalk/internal/config"
	coreerrors "github.com/five82/abwalk/internal/errors"
)

// jobFlags holds the flags shared by encode and scan.
type jobFlags struct {
	folder     string
	configPath string

	vmaf       int
	encoder    string
	params     string
	pixFmt     string
	preset     string
	acodec     string
	noDownmix  bool
	minSize    string
	tool       string
	responsive bool

	maxTransientRetries int
	transientDelay      time.Duration
	transientExitCode   int

	clear   bool
	json    bool
	logDir  string
	verbose bool
	noLog   bool
}

func bindJobFlags(cmd *cobra.Command, f *jobFlags) {
	flags := cmd.Flags()
	flags.StringVarP(&f.folder, "folder", "f", "", "Root directory to walk (required)")
	flags.StringVarP(&f.configPath, "config", "c", "", "TOML configuration file")

	flags.IntVarP(&f.vmaf, "vmaf", "q", config.DefaultQualityTarget, "Starting VMAF target (1-100)")
	flags.StringVarP(&f.encoder, "encoder", "e", string(config.DefaultBackend), "Encoder backend (libx265, av1)")
	flags.StringVar(&f.params, "params", config.DefaultExtraParams, "Extra encoder arguments passed via --enc")
	flags.StringVar(&f.pixFmt, "pix-fmt", config.DefaultPixelFormat, "Output pixel format")
	flags.StringVar(&f.preset, "preset", config.DefaultPreset, "Encoder preset")
	flags.StringVar(&f.acodec, "acodec", config.DefaultAudioCodec, "Audio codec")
	flags.BoolVar(&f.noDownmix, "no-downmix", false, "Keep the original audio channel layout")
	flags.StringVar(&f.minSize, "min-size", "400MB", "Skip files smaller than this size")
	flags.StringVar(&f.tool, "tool", "", "Path to the ab-av1 binary (default: working directory, then PATH)")
	flags.BoolVar(&f.responsive, "responsive", false, "Run the encoder at lower scheduling priority")

	flags.IntVar(&f.maxTransientRetries, "max-transient-retries", config.DefaultMaxTransientRetries, "Retries after a transient failure (-1 for no limit)")
	flags.DurationVar(&f.transientDelay, "transient-delay", config.DefaultTransientDelay, "Wait before the first transient retry")
	flags.IntVar(&f.transientExitCode, "transient-exit-code", config.DefaultTransientExitCode, "ab-av1 exit code treated as transient")

	flags.BoolVar(&f.clear, "clear", false, "Clear the terminal before each file")
	flags.BoolVar(&f.json, "json", false, "Emit NDJSON progress events on stdout")
	flags.StringVarP(&f.logDir, "log-dir", "l", "", "Log directory (default: "+config.DefaultLogDir()+")")
	flags.BoolVarP(&f.verbose, "verbose", "v", false, "Enable debug logging")
	flags.BoolVar(&f.noLog, "no-log", false, "Disable log file creation")

	_ = cmd.MarkFlagRequired("folder")
}

// buildConfig layers defaults, the optional config file and explicitly set
// flags, then validates the result.
func buildConfig(cmd *cobra.Command, f *jobFlags) (*config.Config, error) {
	cfg := config.NewConfig(f.folder)

	if f.configPath != "" {
		fc, err := config.LoadFile(f.configPath)
		if err != nil {
			return nil, coreerrors.NewConfigError("load config file", err)
		}
		if err := fc.Apply(cfg); err != nil {
			return nil, coreerrors.NewConfigError(f.configPath, err)
		}
	}

	changed := cmd.Flags().Changed
	if changed("vmaf") {
		cfg.QualityTarget = f.vmaf
	}
	if changed("encoder") {
		b, err := config.ParseBackend(f.encoder)
		if err != nil {
			return nil, coreerrors.NewConfigError("invalid --encoder", err)
		}
		cfg.Backend = b
	}
	if changed("params") {
		cfg.ExtraParams = f.params
	}
	if changed("pix-fmt") {
		cfg.PixelFormat = f.pixFmt
	}
	if changed("preset") {
		cfg.Preset = f.preset
	}
	if changed("acodec") {
		cfg.AudioCodec = f.acodec
	}
	if changed("no-downmix") {
		cfg.DownmixStereo = !f.noDownmix
	}
	if changed("min-size") {
		size, err := config.ParseSize(f.minSize)
		if err != nil {
			return nil, coreerrors.NewConfigError("invalid --min-size", err)
		}
		cfg.MinSize = size
	}
	if changed("tool") {
		cfg.ToolPath = f.tool
	}
	if changed("responsive") {
		cfg.Responsive = f.responsive
	}
	if changed("max-transient-retries") {
		cfg.Transient.MaxRetries = f.maxTransientRetries
	}
	if changed("transient-delay") {
		cfg.Transient.Delay = f.transientDelay
	}
	if changed("transient-exit-code") {
		cfg.TransientExitCode = f.transientExitCode
	}
	if changed("log-dir") {
		cfg.LogDir = f.logDir
	}
	if changed("verbose") {
		cfg.Verbose = f.verbose
	}
	cfg.NoLog = f.noLog
	cfg.ClearScreen = f.clear

	if err := cfg.Validate(); err != nil {
		return nil, coreerrors.NewConfigError("invalid configuration", err)
	}
	if _, err := cfg.ValidateRootDir(); err != nil {
		return nil, coreerrors.NewConfigError("invalid --folder", err)
	}
	return cfg, nil
}

func describeConfig(cfg *config.Config) string {
	return fmt.Sprintf("backend=%s vmaf=%d min_size=%d transient_exit=%d retries=%d delay=%s",
		cfg.Backend, cfg.QualityTarget, cfg.MinSize, cfg.TransientExitCode, cfg.Transient.MaxRetries, cfg.Transient.Delay)
}

// Package abav1 builds and runs ab-av1 auto-encode invocations.
package abav1

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/five82/abwalk/internal/config"
	"github.com/five82/abwalk/internal/discovery"
)

// OutputPath returns the path an encode of file at target is written to.
// The name embeds the backend tag and target, so every retry writes a new file.
func OutputPath(file discovery.MediaFile, backend config.Backend, target int) string {
	name := fmt.Sprintf("%s.%s.%d.%s", file.Stem, backend.Tag(), target, file.Ext)
	return filepath.Join(file.Dir, name)
}

// BuildArgs returns the ab-av1 argument list for one attempt.
func BuildArgs(input, output string, target int, cfg *config.Config) []string {
	args := []string{
		"auto-encode",
		"-i", input,
		"--min-vmaf", strconv.Itoa(target),
	}

	if cfg.AudioCodec != "" {
		args = append(args, "--acodec", cfg.AudioCodec)
	}
	if cfg.DownmixStereo {
		args = append(args, "--downmix-to-stereo")
	}

	args = append(args, "-e", cfg.Backend.EncoderArg())

	// av1 picks its own settings
	if cfg.Backend.AcceptsTuning() {
		if cfg.ExtraParams != "" {
			args = append(args, "--enc", cfg.ExtraParams)
		}
		if cfg.PixelFormat != "" {
			args = append(args, "--pix-format", cfg.PixelFormat)
		}
		if cfg.Preset != "" {
			args = append(args, "--preset", cfg.Preset)
		}
	}

	args = append(args, "-o", output)
	return args
}

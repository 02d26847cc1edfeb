package abav1

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/five82/abwalk/internal/config"
	"github.com/five82/abwalk/internal/discovery"
)

func TestOutputPath(t *testing.T) {
	dir := filepath.FromSlash("/media/films")
	tests := []struct {
		name    string
		file    string
		backend config.Backend
		target  int
		want    string
	}{
		{"av1", "movie.mkv", config.BackendAV1, 42, "movie.av1.42.mkv"},
		{"x265", "movie.mkv", config.BackendX265, 95, "movie.libx265.95.mkv"},
		{"dotted stem", "show.s01e02.mp4", config.BackendAV1, 90, "show.s01e02.av1.90.mp4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			file := discovery.NewMediaFile(filepath.Join(dir, tt.file), 1)
			got := OutputPath(file, tt.backend, tt.target)
			want := filepath.Join(dir, tt.want)
			if got != want {
				t.Errorf("OutputPath() = %q, want %q", got, want)
			}
		})
	}
}

func TestOutputPathDiffersPerTarget(t *testing.T) {
	file := discovery.NewMediaFile(filepath.FromSlash("/m/a.mkv"), 1)
	if OutputPath(file, config.BackendAV1, 95) == OutputPath(file, config.BackendAV1, 94) {
		t.Error("outputs for different targets share a path")
	}
}

func TestBuildArgs(t *testing.T) {
	x265 := config.NewConfig("/m")

	av1 := config.NewConfig("/m")
	av1.Backend = config.BackendAV1

	noDownmix := config.NewConfig("/m")
	noDownmix.DownmixStereo = false
	noDownmix.AudioCodec = "opus"
	noDownmix.Preset = ""

	tests := []struct {
		name string
		cfg  *config.Config
		want []string
	}{
		{
			name: "libx265 gets tuning",
			cfg:  x265,
			want: []string{
				"auto-encode", "-i", "in.mkv", "--min-vmaf", "95",
				"--acodec", "aac", "--downmix-to-stereo",
				"-e", "libx265",
				"--enc", config.DefaultExtraParams,
				"--pix-format", "yuv420p10le",
				"--preset", "slow",
				"-o", "out.mkv",
			},
		},
		{
			name: "av1 omits tuning",
			cfg:  av1,
			want: []string{
				"auto-encode", "-i", "in.mkv", "--min-vmaf", "95",
				"--acodec", "aac", "--downmix-to-stereo",
				"-e", "av1",
				"-o", "out.mkv",
			},
		},
		{
			name: "no downmix and empty preset",
			cfg:  noDownmix,
			want: []string{
				"auto-encode", "-i", "in.mkv", "--min-vmaf", "95",
				"--acodec", "opus",
				"-e", "libx265",
				"--enc", config.DefaultExtraParams,
				"--pix-format", "yuv420p10le",
				"-o", "out.mkv",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildArgs("in.mkv", "out.mkv", 95, tt.cfg)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BuildArgs() =\n%q\nwant\n%q", got, tt.want)
			}
		})
	}
}

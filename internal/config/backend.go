package config

import (
	"fmt"
	"strings"
)

// Backend identifies the encoder ab-av1 drives. Its string value is also the
// tag embedded in output file names.
type Backend string

const (
	// BackendX265 is the software HEVC encoder.
	BackendX265 Backend = "libx265"
	// BackendAV1 is ab-av1's default AV1 encoder.
	BackendAV1 Backend = "av1"
)

// Backends lists the supported backends in display order.
var Backends = []Backend{BackendX265, BackendAV1}

var backendAliases = map[string]Backend{
	"libx265":       BackendX265,
	"x265":          BackendX265,
	"h265-software": BackendX265,
	"av1":           BackendAV1,
}

// ParseBackend resolves a backend name or alias. Matching is exact.
func ParseBackend(s string) (Backend, error) {
	if b, ok := backendAliases[strings.TrimSpace(s)]; ok {
		return b, nil
	}
	return "", fmt.Errorf("%w: '%s', valid options: %s", ErrUnknownBackend, s, backendList())
}

// String returns the string representation of the backend.
func (b Backend) String() string {
	return string(b)
}

// Tag is the marker written into output names and matched by the filter.
func (b Backend) Tag() string {
	return string(b)
}

// EncoderArg is the value passed to ab-av1's -e flag.
func (b Backend) EncoderArg() string {
	return string(b)
}

// AcceptsTuning reports whether the backend takes --enc, --pix-format and --preset.
func (b Backend) AcceptsTuning() bool {
	return b != BackendAV1
}

func backendList() string {
	names := make([]string, len(Backends))
	for i, b := range Backends {
		names[i] = string(b)
	}
	return strings.Join(names, ", ")
}

// Package eligibility decides which discovered files are worth encoding.
//
// A file is excluded when it is itself an earlier abwalk output, when it
// looks like a preview clip, or when it is too small. Outputs also exclude
// the input they were produced from, so a re-run never encodes a file whose
// tagged sibling already exists.
package eligibility

import (
	"path/filepath"
	"strings"

	"github.com/five82/abwalk/internal/discovery"
)

// Reason explains why a file was excluded.
type Reason string

const (
	ReasonEncodedOutput Reason = "encoded output"
	ReasonHasOutput     Reason = "already encoded"
	ReasonSample        Reason = "sample"
	ReasonBelowMinSize  Reason = "below minimum size"
)

// Rules configures the filter.
type Rules struct {
	// Tag is the backend marker embedded in output file names.
	Tag string
	// SampleMarker excludes any path containing it. Empty disables the rule.
	SampleMarker string
	// MinSize excludes files smaller than this many bytes.
	MinSize uint64
}

// Exclusion records one removed file and every reason that applied.
type Exclusion struct {
	File    discovery.MediaFile
	Reasons []Reason
}

// Result is the outcome of filtering.
type Result struct {
	Kept     []discovery.MediaFile
	Excluded []Exclusion
}

// IsEncodedOutput reports whether the file name carries the tag. Directory
// names are ignored, so a folder called "av1" does not hide its contents.
func IsEncodedOutput(path, tag string) bool {
	if tag == "" {
		return false
	}
	return strings.Contains(filepath.Base(path), tag)
}

// IsSample reports whether the path contains the sample marker.
func IsSample(path, marker string) bool {
	if marker == "" {
		return false
	}
	return strings.Contains(path, marker)
}

// BelowMinSize reports whether size is under the threshold. A file of
// exactly minSize bytes is kept.
func BelowMinSize(size, minSize uint64) bool {
	return size < minSize
}

// OriginalFor reconstructs the input path that produced a tagged output by
// cutting the stem at the ".{tag}" segment. It returns false when the stem
// has no such segment.
func OriginalFor(path, tag string) (string, bool) {
	if tag == "" {
		return "", false
	}
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	marker := "." + tag
	idx := -1
	for start := 0; ; {
		i := strings.Index(stem[start:], marker)
		if i < 0 {
			break
		}
		i += start
		end := i + len(marker)
		// The tag must be a whole dot-separated segment
		if end == len(stem) || stem[end] == '.' {
			idx = i
			break
		}
		start = i + 1
	}
	if idx <= 0 {
		return "", false
	}
	return filepath.Join(dir, stem[:idx]+ext), true
}

// Filter removes ineligible files. The result depends only on the set of
// inputs, not their order, and filtering a filtered list changes nothing.
// Input order is preserved in Kept.
func Filter(files []discovery.MediaFile, rules Rules) Result {
	// Originals of tagged outputs, whether or not they exist on disk.
	hasOutput := make(map[string]bool)
	for _, f := range files {
		if !IsEncodedOutput(f.Path, rules.Tag) {
			continue
		}
		if orig, ok := OriginalFor(f.Path, rules.Tag); ok {
			hasOutput[orig] = true
		}
	}

	var result Result
	for _, f := range files {
		reasons := Check(f, rules)
		if hasOutput[f.Path] {
			reasons = append(reasons, ReasonHasOutput)
		}
		if len(reasons) == 0 {
			result.Kept = append(result.Kept, f)
			continue
		}
		result.Excluded = append(result.Excluded, Exclusion{File: f, Reasons: reasons})
	}
	return result
}

// Check returns the reasons a single file is ineligible on its own,
// without considering its siblings.
func Check(f discovery.MediaFile, rules Rules) []Reason {
	var reasons []Reason
	if IsEncodedOutput(f.Path, rules.Tag) {
		reasons = append(reasons, ReasonEncodedOutput)
	}
	if IsSample(f.Path, rules.SampleMarker) {
		reasons = append(reasons, ReasonSample)
	}
	if BelowMinSize(f.Size, rules.MinSize) {
		reasons = append(reasons, ReasonBelowMinSize)
	}
	return reasons
}

// JoinReasons renders reasons for display.
func JoinReasons(reasons []Reason) string {
	parts := make([]string, len(reasons))
	for i, r := range reasons {
		parts[i] = string(r)
	}
	return strings.Join(parts, ", ")
}

package util

import (
	"os"
	"path/filepath"
	"strings"
)

// Category is the coarse media type of a path.
type Category int

const (
	// CategoryOther is anything abwalk will not encode.
	CategoryOther Category = iota
	// CategoryVideo is a container format ab-av1 can take as input.
	CategoryVideo
)

// String returns a string representation of the category.
func (c Category) String() string {
	if c == CategoryVideo {
		return "video"
	}
	return "other"
}

// VideoExtensions is the list of recognised video container extensions.
// Matching is case-sensitive: "MP4" is not "mp4".
var VideoExtensions = map[string]bool{
	"mkv":  true,
	"avi":  true,
	"mp4":  true,
	"divx": true,
	"flv":  true,
	"m4v":  true,
	"mov":  true,
	"ogv":  true,
	"ts":   true,
	"webm": true,
	"wmv":  true,
}

// Classify maps a path to a category using only its final extension.
func Classify(path string) Category {
	ext := GetExtension(path)
	if ext != "" && VideoExtensions[ext] {
		return CategoryVideo
	}
	return CategoryOther
}

// GetFilename returns the filename from a path.
func GetFilename(path string) string {
	return filepath.Base(path)
}

// GetFileStem returns the filename without extension.
func GetFileStem(path string) string {
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	return strings.TrimSuffix(base, ext)
}

// GetExtension returns the final extension without its leading dot.
func GetExtension(path string) string {
	return strings.TrimPrefix(filepath.Ext(path), ".")
}

// GetFileSize returns the size of a file in bytes.
func GetFileSize(path string) (uint64, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return uint64(info.Size()), nil
}

// EnsureDirectory creates a directory if it doesn't exist.
func EnsureDirectory(path string) error {
	return os.MkdirAll(path, 0755)
}

// DirectoryExists checks if a directory exists.
func DirectoryExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// Package discovery provides file discovery for video processing.
package discovery

import (
	"fmt"
	"io/fs"
	"path/filepath"

	"go.uber.org/multierr"

	coreerrors "github.com/five82/abwalk/internal/errors"
	"github.com/five82/abwalk/internal/util"
)

// DiscoveryLogger defines the interface for discovery logging.
type DiscoveryLogger interface {
	Info(format string, args ...any)
	Debug(format string, args ...any)
}

// MediaFile is a discovered video file. Identity is Path.
type MediaFile struct {
	Path string // Absolute path
	Dir  string
	Stem string
	Ext  string // Without the leading dot
	Size uint64
}

// NewMediaFile derives the MediaFile fields from an absolute path and size.
func NewMediaFile(path string, size uint64) MediaFile {
	return MediaFile{
		Path: path,
		Dir:  filepath.Dir(path),
		Stem: util.GetFileStem(path),
		Ext:  util.GetExtension(path),
		Size: size,
	}
}

// Name returns the file's base name.
func (m MediaFile) Name() string {
	return util.GetFilename(m.Path)
}

// DiscoveryResult contains the results of file discovery with metadata.
type DiscoveryResult struct {
	Files        []MediaFile
	SkippedCount int
	// Errors combines every entry that failed during the walk. The walk
	// continues past them.
	Errors error
}

// Discover recursively finds video files under rootDir. Symbolic links are
// not followed. Entries that cannot be read are skipped and recorded in
// Errors. Only a missing or non-directory rootDir fails the call.
func Discover(rootDir string) (*DiscoveryResult, error) {
	absRoot, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("invalid directory %s: %w", rootDir, err)
	}
	if !util.DirectoryExists(absRoot) {
		return nil, coreerrors.NewPathError(fmt.Sprintf("%s is not an existing directory", rootDir))
	}
	// The root itself may be a link; links below it are not followed.
	if resolved, err := filepath.EvalSymlinks(absRoot); err == nil {
		absRoot = resolved
	}

	result := &DiscoveryResult{}
	seen := make(map[string]struct{})

	walkErr := filepath.WalkDir(absRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			result.Errors = multierr.Append(result.Errors, err)
			if d != nil && d.IsDir() && path != absRoot {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		if util.Classify(path) != util.CategoryVideo {
			result.SkippedCount++
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			// Removed or replaced between listing and stat
			result.Errors = multierr.Append(result.Errors, err)
			return nil
		}
		if _, dup := seen[path]; dup {
			return nil
		}
		seen[path] = struct{}{}
		result.Files = append(result.Files, NewMediaFile(path, uint64(fi.Size())))
		return nil
	})
	if walkErr != nil {
		result.Errors = multierr.Append(result.Errors, walkErr)
	}

	return result, nil
}

// FindVideoFiles returns the absolute paths of every video file under inputDir.
func FindVideoFiles(inputDir string) ([]string, error) {
	result, err := Discover(inputDir)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(result.Files))
	for i, f := range result.Files {
		paths[i] = f.Path
	}
	return paths, nil
}

// DiscoverWithLogging discovers files and logs the first few plus a count.
func DiscoverWithLogging(rootDir string, logger DiscoveryLogger) (*DiscoveryResult, error) {
	result, err := Discover(rootDir)
	if err != nil {
		return nil, err
	}
	if logger != nil {
		logDiscoveredFiles(result, logger)
	}
	return result, nil
}

// logDiscoveredFiles logs the first 5 discovered files plus a count.
func logDiscoveredFiles(result *DiscoveryResult, logger DiscoveryLogger) {
	for _, err := range multierr.Errors(result.Errors) {
		logger.Debug("Skipped unreadable entry: %v", err)
	}

	files := result.Files
	if len(files) == 0 {
		logger.Info("No video files found")
		return
	}

	logger.Info("Found %d video file(s), %d other file(s) ignored", len(files), result.SkippedCount)

	maxToLog := min(5, len(files))
	for i := 0; i < maxToLog; i++ {
		logger.Debug("  %s", files[i].Path)
	}

	if len(files) > 5 {
		logger.Debug("  ... and %d more", len(files)-5)
	}
}

package processing

import (
	"go.uber.org/multierr"

	"github.com/five82/abwalk/internal/config"
	"github.com/five82/abwalk/internal/discovery"
	"github.com/five82/abwalk/internal/eligibility"
	coreerrors "github.com/five82/abwalk/internal/errors"
	"github.com/five82/abwalk/internal/reporter"
)

// Logger is the subset of the run logger used while processing.
type Logger interface {
	Info(format string, args ...any)
	Debug(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// ScanResult holds discovery and filter output for one root.
type ScanResult struct {
	RootDir   string
	Discovery *discovery.DiscoveryResult
	Filter    eligibility.Result
}

// RulesFor returns the eligibility rules implied by cfg.
func RulesFor(cfg *config.Config) eligibility.Rules {
	return eligibility.Rules{
		Tag:          cfg.Backend.Tag(),
		SampleMarker: cfg.SampleMarker,
		MinSize:      cfg.MinSize,
	}
}

// Scan discovers video files under cfg.RootDir and filters them.
func Scan(cfg *config.Config, log Logger) (*ScanResult, error) {
	root, err := cfg.ValidateRootDir()
	if err != nil {
		return nil, coreerrors.NewConfigError("invalid folder", err)
	}

	var dlog discovery.DiscoveryLogger
	if log != nil {
		dlog = log
	}
	found, err := discovery.DiscoverWithLogging(root, dlog)
	if err != nil {
		return nil, coreerrors.NewIOError("discovery failed", err)
	}

	filtered := eligibility.Filter(found.Files, RulesFor(cfg))
	if log != nil {
		for _, ex := range filtered.Excluded {
			log.Debug("Excluded %s: %s", ex.File.Path, eligibility.JoinReasons(ex.Reasons))
		}
		log.Info("%d of %d video files eligible for encoding", len(filtered.Kept), len(found.Files))
	}

	return &ScanResult{RootDir: root, Discovery: found, Filter: filtered}, nil
}

// DiscoverySummary converts a scan for reporting.
func (s *ScanResult) DiscoverySummary() reporter.DiscoverySummary {
	excluded := make([]reporter.ExcludedFile, len(s.Filter.Excluded))
	for i, ex := range s.Filter.Excluded {
		excluded[i] = reporter.ExcludedFile{
			Path:   ex.File.Path,
			Reason: eligibility.JoinReasons(ex.Reasons),
		}
	}
	return reporter.DiscoverySummary{
		RootDir:    s.RootDir,
		FoundCount: len(s.Discovery.Files),
		KeptCount:  len(s.Filter.Kept),
		Excluded:   excluded,
		WalkErrors: len(multierr.Errors(s.Discovery.Errors)),
	}
}

package processing

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/five82/abwalk/internal/abav1"
	"github.com/five82/abwalk/internal/config"
	"github.com/five82/abwalk/internal/discovery"
	coreerrors "github.com/five82/abwalk/internal/errors"
	"github.com/five82/abwalk/internal/reporter"
)

// fakeInvoker decides outcomes per file name and writes an output file on success.
type fakeInvoker struct {
	cfg     *config.Config
	calls   []string
	outcome func(name string, target int) abav1.Outcome
	cancel  context.CancelFunc
}

func (f *fakeInvoker) OutputPath(file discovery.MediaFile, target int) string {
	return abav1.OutputPath(file, f.cfg.Backend, target)
}

func (f *fakeInvoker) Invoke(_ context.Context, file discovery.MediaFile, target int) abav1.Attempt {
	f.calls = append(f.calls, fmt.Sprintf("%s@%d", file.Name(), target))
	out := abav1.Success
	if f.outcome != nil {
		out = f.outcome(file.Name(), target)
	}
	a := abav1.Attempt{Input: file.Path, Target: target, OutputPath: f.OutputPath(file, target), Outcome: out}
	switch out {
	case abav1.Success:
		_ = os.WriteFile(a.OutputPath, []byte("enc"), 0o644)
	case abav1.Fatal:
		a.ExitCode = -1
		a.Err = errors.New("exec: \"ab-av1\": executable file not found")
	case abav1.Transient:
		a.ExitCode = 145
		a.Err = errors.New("exit status 145")
	default:
		a.ExitCode = 1
		a.Err = errors.New("exit status 1")
	}
	if f.cancel != nil {
		f.cancel()
	}
	return a
}

type eventRecorder struct {
	reporter.NullReporter
	events   []string
	warnings []string
	summary  reporter.BatchSummary
	discover reporter.DiscoverySummary
}

func (r *eventRecorder) Discovery(s reporter.DiscoverySummary) { r.discover = s }

func (r *eventRecorder) FileProgress(c reporter.FileProgressContext) {
	r.events = append(r.events, fmt.Sprintf("start %d/%d %s", c.CurrentFile, c.TotalFiles, filepath.Base(c.File)))
}

func (r *eventRecorder) FileComplete(res reporter.FileResult) {
	r.events = append(r.events, fmt.Sprintf("done %s %s", filepath.Base(res.File), res.Status))
}

func (r *eventRecorder) BatchComplete(s reporter.BatchSummary) { r.summary = s }

func (r *eventRecorder) Warning(message string) {
	r.warnings = append(r.warnings, message)
}

func writeFile(t *testing.T, path string, size int) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, make([]byte, size), 0o644); err != nil {
		t.Fatal(err)
	}
}

func testConfig(root string) *config.Config {
	cfg := config.NewConfig(root)
	cfg.MinSize = 100
	cfg.Transient.Delay = 0
	return cfg
}

func mediaFiles(t *testing.T, dir string, names ...string) []discovery.MediaFile {
	t.Helper()
	files := make([]discovery.MediaFile, len(names))
	for i, name := range names {
		path := filepath.Join(dir, name)
		writeFile(t, path, 1000)
		files[i] = discovery.NewMediaFile(path, 1000)
	}
	return files
}

func TestProcessFilesFatalStopsBatch(t *testing.T) {
	dir := t.TempDir()
	files := mediaFiles(t, dir, "1.mkv", "2.mkv", "3.mkv", "4.mkv", "5.mkv")
	cfg := testConfig(dir)
	inv := &fakeInvoker{cfg: cfg, outcome: func(name string, _ int) abav1.Outcome {
		if name == "3.mkv" {
			return abav1.Fatal
		}
		return abav1.Success
	}}
	rep := &eventRecorder{}

	summary, err := ProcessFiles(context.Background(), cfg, files, inv, rep, Options{})
	if !coreerrors.IsEncoderFatal(err) {
		t.Fatalf("ProcessFiles() error = %v, want encoder fatal", err)
	}

	want := []string{"1.mkv@95", "2.mkv@95", "3.mkv@95"}
	if strings.Join(inv.calls, " ") != strings.Join(want, " ") {
		t.Errorf("calls = %v, want %v", inv.calls, want)
	}
	if summary.Processed() != 2 || summary.Succeeded != 2 || !summary.Aborted {
		t.Errorf("summary = processed %d, succeeded %d, aborted %v", summary.Processed(), summary.Succeeded, summary.Aborted)
	}
	if !rep.summary.Aborted || rep.summary.ProcessedCount != 2 {
		t.Errorf("reported summary = %+v", rep.summary)
	}
	if last := rep.events[len(rep.events)-1]; last != "done 3.mkv fatal" {
		t.Errorf("last event = %q", last)
	}
}

func TestProcessFilesContinuesAfterPerFileFailures(t *testing.T) {
	dir := t.TempDir()
	files := mediaFiles(t, dir, "a.mkv", "b.mkv", "c.mkv")
	cfg := testConfig(dir)
	cfg.QualityTarget = 3
	cfg.Transient.MaxRetries = 1
	inv := &fakeInvoker{cfg: cfg, outcome: func(name string, _ int) abav1.Outcome {
		switch name {
		case "a.mkv":
			return abav1.QualityUnreachable
		case "b.mkv":
			return abav1.Transient
		default:
			return abav1.Success
		}
	}}
	rep := &eventRecorder{}

	summary, err := ProcessFiles(context.Background(), cfg, files, inv, rep, Options{})
	if err != nil {
		t.Fatalf("ProcessFiles() error = %v", err)
	}

	wantCalls := []string{"a.mkv@3", "a.mkv@2", "a.mkv@1", "b.mkv@3", "b.mkv@3", "c.mkv@3"}
	if strings.Join(inv.calls, " ") != strings.Join(wantCalls, " ") {
		t.Errorf("calls = %v, want %v", inv.calls, wantCalls)
	}
	if summary.Exhausted != 1 || summary.TransientLimit != 1 || summary.Succeeded != 1 {
		t.Errorf("summary counts = %d exhausted, %d transient, %d succeeded",
			summary.Exhausted, summary.TransientLimit, summary.Succeeded)
	}
	if summary.Aborted {
		t.Error("batch should not be aborted")
	}

	wantEvents := []string{
		"start 1/3 a.mkv", "done a.mkv exhausted",
		"start 2/3 b.mkv", "done b.mkv transient_limit",
		"start 3/3 c.mkv", "done c.mkv succeeded",
	}
	if strings.Join(rep.events, "|") != strings.Join(wantEvents, "|") {
		t.Errorf("events = %v, want %v", rep.events, wantEvents)
	}
	if summary.EncodedSize != 3 || summary.OriginalSize != 1000 {
		t.Errorf("sizes = %d -> %d, want 1000 -> 3", summary.OriginalSize, summary.EncodedSize)
	}
}

func TestProcessFilesCancelled(t *testing.T) {
	dir := t.TempDir()
	files := mediaFiles(t, dir, "a.mkv", "b.mkv")
	cfg := testConfig(dir)
	ctx, cancel := context.WithCancel(context.Background())
	inv := &fakeInvoker{cfg: cfg, cancel: cancel}

	summary, err := ProcessFiles(ctx, cfg, files, inv, nil, Options{})
	if !coreerrors.IsCancelled(err) {
		t.Fatalf("ProcessFiles() error = %v, want cancelled", err)
	}
	if len(inv.calls) != 1 {
		t.Errorf("calls = %v, want one", inv.calls)
	}
	if !summary.Aborted {
		t.Error("summary should be marked aborted")
	}
}

func TestProcessDirectory(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "movies", "keep.mkv"), 1000)
	writeFile(t, filepath.Join(root, "movies", "done.mkv"), 1000)
	writeFile(t, filepath.Join(root, "movies", "done.libx265.95.mkv"), 1000)
	writeFile(t, filepath.Join(root, "movies", "trailer-sample.mkv"), 1000)
	writeFile(t, filepath.Join(root, "movies", "tiny.mp4"), 10)
	writeFile(t, filepath.Join(root, "movies", "notes.txt"), 1000)
	writeFile(t, filepath.Join(root, "shows", "ep1.webm"), 1000)

	cfg := testConfig(root)
	inv := &fakeInvoker{cfg: cfg}
	rep := &eventRecorder{}

	summary, err := ProcessDirectory(context.Background(), cfg, inv, rep, Options{RunID: "run"})
	if err != nil {
		t.Fatalf("ProcessDirectory() error = %v", err)
	}

	want := []string{"keep.mkv@95", "ep1.webm@95"}
	if strings.Join(inv.calls, " ") != strings.Join(want, " ") {
		t.Errorf("calls = %v, want %v", inv.calls, want)
	}
	if rep.discover.FoundCount != 6 || rep.discover.KeptCount != 2 || len(rep.discover.Excluded) != 4 {
		t.Errorf("discovery = %+v", rep.discover)
	}
	if summary.Succeeded != 2 || summary.RunID != "run" {
		t.Errorf("summary = %+v", summary)
	}
	if _, err := os.Stat(filepath.Join(root, "movies", "keep.libx265.95.mkv")); err != nil {
		t.Errorf("expected output next to input: %v", err)
	}
}

func TestProcessDirectoryEmpty(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "small.mkv"), 10)
	cfg := testConfig(root)
	inv := &fakeInvoker{cfg: cfg}

	rep := &eventRecorder{}

	summary, err := ProcessDirectory(context.Background(), cfg, inv, rep, Options{})
	if err != nil {
		t.Fatalf("ProcessDirectory() error = %v", err)
	}
	if summary.TotalFiles != 0 || len(inv.calls) != 0 {
		t.Errorf("expected no work, got %d files, calls %v", summary.TotalFiles, inv.calls)
	}
	want := coreerrors.NewNoFilesFoundError(summary.RootDir).Error()
	if len(rep.warnings) != 1 || rep.warnings[0] != want {
		t.Errorf("warnings = %v, want [%q]", rep.warnings, want)
	}
}

func TestProcessDirectoryInvalidRoot(t *testing.T) {
	cfg := testConfig(filepath.Join(t.TempDir(), "missing"))
	_, err := ProcessDirectory(context.Background(), cfg, &fakeInvoker{cfg: cfg}, nil, Options{})
	if !coreerrors.IsKind(err, coreerrors.KindConfig) {
		t.Errorf("ProcessDirectory() error = %v, want config error", err)
	}
}

func TestEncodingConfigSummary(t *testing.T) {
	cfg := config.NewConfig("/m")
	cfg.ToolPath = "/usr/bin/ab-av1"
	s := EncodingConfigSummary(cfg)
	if s.Tool != "/usr/bin/ab-av1" || s.Preset != "slow" || s.Encoder != "libx265" {
		t.Errorf("summary = %+v", s)
	}

	cfg.Backend = config.BackendAV1
	cfg.ToolPath = ""
	s = EncodingConfigSummary(cfg)
	if s.Tool != "ab-av1" || s.Preset != "" || s.ExtraParams != "" || s.PixelFormat != "" {
		t.Errorf("av1 summary = %+v", s)
	}
}

package reporter

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"

	"github.com/five82/abwalk/internal/util"
)

// TerminalOptions configures a TerminalReporter.
type TerminalOptions struct {
	// Out receives normal output; Err receives errors. Nil means
	// os.Stdout and os.Stderr.
	Out io.Writer
	Err io.Writer
	// ClearScreen clears the terminal before each file when Out is a terminal.
	ClearScreen bool
}

// TerminalReporter outputs human-friendly text to the terminal.
type TerminalReporter struct {
	mu       sync.Mutex
	out      io.Writer
	errOut   io.Writer
	tty      bool
	clear    bool
	progress *progressbar.ProgressBar
	done     int
	cyan     *color.Color
	green    *color.Color
	yellow   *color.Color
	red      *color.Color
	magenta  *color.Color
	bold     *color.Color
	faint    *color.Color
}

// NewTerminalReporterWithOptions creates a terminal reporter. Colors are
// disabled when Out is not a terminal.
func NewTerminalReporterWithOptions(opts TerminalOptions) *TerminalReporter {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	errOut := opts.Err
	if errOut == nil {
		errOut = os.Stderr
	}

	r := &TerminalReporter{
		out:     out,
		errOut:  errOut,
		tty:     isTerminal(out),
		cyan:    color.New(color.FgCyan, color.Bold),
		green:   color.New(color.FgGreen, color.Bold),
		yellow:  color.New(color.FgYellow, color.Bold),
		red:     color.New(color.FgRed, color.Bold),
		magenta: color.New(color.FgMagenta),
		bold:    color.New(color.Bold),
		faint:   color.New(color.Faint),
	}
	r.clear = opts.ClearScreen && r.tty

	if !r.tty {
		for _, c := range []*color.Color{r.cyan, r.green, r.yellow, r.red, r.magenta, r.bold, r.faint} {
			c.DisableColor()
		}
	}
	return r
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// printLabel prints a bold label with fixed width padding followed by a value.
// Width is applied to the plain text before styling to ensure proper alignment.
func (r *TerminalReporter) printLabel(width int, label, value string) {
	paddedLabel := fmt.Sprintf("%-*s", width, label)
	fmt.Fprintf(r.out, "  %s %s\n", r.bold.Sprint(paddedLabel), value)
}

func (r *TerminalReporter) heading(title string) {
	fmt.Fprintln(r.out)
	_, _ = r.cyan.Fprintln(r.out, title)
}

func (r *TerminalReporter) Hardware(summary HardwareSummary) {
	r.heading("HARDWARE")
	r.printLabel(10, "Hostname:", summary.Hostname)
	r.printLabel(10, "System:", fmt.Sprintf("%s/%s, %d CPUs", summary.OS, summary.Arch, summary.NumCPU))
}

func (r *TerminalReporter) EncodingConfig(summary EncodingConfigSummary) {
	r.heading("ENCODING")
	const w = 13
	r.printLabel(w, "Tool:", summary.Tool)
	r.printLabel(w, "Encoder:", summary.Encoder)
	r.printLabel(w, "VMAF target:", strconv.Itoa(summary.QualityTarget))
	if summary.ExtraParams != "" {
		r.printLabel(w, "Params:", summary.ExtraParams)
	}
	if summary.PixelFormat != "" {
		r.printLabel(w, "Pixel format:", summary.PixelFormat)
	}
	if summary.Preset != "" {
		r.printLabel(w, "Preset:", summary.Preset)
	}
	audio := summary.AudioCodec
	if summary.Downmix {
		audio += " (stereo downmix)"
	}
	r.printLabel(w, "Audio:", audio)
	r.printLabel(w, "Min size:", util.FormatBytes(summary.MinSize))
}

func (r *TerminalReporter) Discovery(summary DiscoverySummary) {
	r.heading("DISCOVERY")
	fmt.Fprintf(r.out, "  Found %s video files in %s\n", r.bold.Sprint(summary.FoundCount), summary.RootDir)
	fmt.Fprintf(r.out, "  %s eligible, %d excluded\n", r.green.Sprint(summary.KeptCount), len(summary.Excluded))
	if summary.WalkErrors > 0 {
		fmt.Fprintf(r.out, "  %s\n", r.yellow.Sprintf("%d entries could not be read", summary.WalkErrors))
	}
}

func (r *TerminalReporter) BatchStarted(info BatchStartInfo) {
	r.heading("BATCH")
	fmt.Fprintf(r.out, "  Processing %d files in %s\n", info.TotalFiles, r.bold.Sprint(info.RootDir))
	for i, name := range info.FileList {
		fmt.Fprintf(r.out, "  %d. %s\n", i+1, name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = 0
	r.progress = progressbar.NewOptions(
		info.TotalFiles,
		progressbar.OptionSetDescription("Files"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetWriter(r.out),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionShowCount(),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetRenderBlankState(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
}

func (r *TerminalReporter) FileProgress(context FileProgressContext) {
	if r.clear {
		fmt.Fprint(r.out, "\033[H\033[2J")
	}
	fmt.Fprintf(r.out, "\nFile %s of %d: %s (%s)\n",
		r.bold.Sprint(context.CurrentFile),
		context.TotalFiles,
		r.bold.Sprint(filepath.Base(context.File)),
		util.FormatBytes(context.Size))
}

func (r *TerminalReporter) AttemptStarted(info AttemptInfo) {
	fmt.Fprintf(r.out, "  %s Encoding with VMAF of %d -> %s\n",
		r.magenta.Sprint("›"), info.Target, filepath.Base(info.OutputPath))
}

func (r *TerminalReporter) AttemptFinished(result AttemptResult) {
	name := filepath.Base(result.File)
	switch {
	case result.Outcome == "success":
		_, _ = r.green.Fprintf(r.out, "%s encoded successfully with VMAF of %d\n", name, result.Target)
	case result.Outcome == "fatal":
		_, _ = r.red.Fprintf(r.out, "%s could not be encoded: %s\n", name, result.Message)
	case result.NextTarget == result.Target:
		_, _ = r.yellow.Fprintf(r.out, "%s failed with exit code %d, retrying with VMAF of %d in %s\n",
			name, result.ExitCode, result.NextTarget, result.RetryDelay)
	case result.NextTarget > 0:
		_, _ = r.red.Fprintf(r.out, "%s encode failed with VMAF of %d\n", name, result.Target)
		_, _ = r.yellow.Fprintf(r.out, "Retrying with VMAF of %d\n", result.NextTarget)
	default:
		_, _ = r.red.Fprintf(r.out, "%s encode failed with VMAF of %d\n", name, result.Target)
	}
}

func (r *TerminalReporter) FileComplete(result FileResult) {
	name := filepath.Base(result.File)
	switch result.Status {
	case StatusSucceeded:
		fmt.Fprintf(r.out, "  %s %s -> %s (%s -> %s, %.1f%% reduction)\n",
			r.green.Sprint("✓"), name, filepath.Base(result.OutputPath),
			util.FormatBytes(result.OriginalSize), util.FormatBytes(result.EncodedSize),
			result.Reduction())
	case StatusExhausted:
		fmt.Fprintf(r.out, "  %s %s: no VMAF target could be reached\n", r.red.Sprint("✗"), name)
	case StatusTransientLimit:
		fmt.Fprintf(r.out, "  %s %s: gave up after repeated transient failures\n", r.red.Sprint("✗"), name)
	default:
		fmt.Fprintf(r.out, "  %s %s: %s\n", r.red.Sprint("✗"), name, result.Status)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.progress != nil {
		r.done++
		_ = r.progress.Set(r.done)
		fmt.Fprintln(r.out)
	}
}

func (r *TerminalReporter) Warning(message string) {
	fmt.Fprintln(r.out)
	_, _ = r.yellow.Fprintf(r.out, "WARN: %s\n", message)
}

func (r *TerminalReporter) Error(err ReporterError) {
	_, _ = fmt.Fprintln(r.errOut)
	_, _ = r.red.Fprintf(r.errOut, "ERROR %s\n", err.Title)
	_, _ = fmt.Fprintf(r.errOut, "  %s\n", err.Message)
	if err.Context != "" {
		_, _ = fmt.Fprintf(r.errOut, "  Context: %s\n", err.Context)
	}
	if err.Suggestion != "" {
		_, _ = fmt.Fprintf(r.errOut, "  Suggestion: %s\n", err.Suggestion)
	}
}

func (r *TerminalReporter) BatchComplete(summary BatchSummary) {
	r.mu.Lock()
	if r.progress != nil {
		_ = r.progress.Finish()
		r.progress = nil
	}
	r.mu.Unlock()

	reduction := util.CalculateSizeReduction(summary.TotalOriginalSize, summary.TotalEncodedSize)

	r.heading("BATCH SUMMARY")
	fmt.Fprintf(r.out, "  %s\n", r.bold.Sprintf("%d of %d succeeded", summary.SuccessfulCount, summary.TotalFiles))
	if summary.ExhaustedCount > 0 || summary.TransientCount > 0 {
		fmt.Fprintf(r.out, "  Failed: %s exhausted, %s transient limit\n",
			r.red.Sprint(summary.ExhaustedCount), r.red.Sprint(summary.TransientCount))
	}
	if summary.Aborted {
		fmt.Fprintf(r.out, "  %s\n", r.red.Sprintf("Stopped after %d of %d files", summary.ProcessedCount, summary.TotalFiles))
	}
	fmt.Fprintf(r.out, "  Size: %s -> %s (%.1f%% reduction)\n",
		util.FormatBytes(summary.TotalOriginalSize), util.FormatBytes(summary.TotalEncodedSize), reduction)
	fmt.Fprintf(r.out, "  Time: %s\n", util.FormatDuration(summary.TotalDuration))

	if len(summary.FileResults) > 0 {
		fmt.Fprintln(r.out, RenderTable(
			[]string{"File", "Status", "VMAF", "Attempts", "Size", "Reduction", "Time"},
			FileResultRows(summary.FileResults),
			[]ColumnAlignment{AlignLeft, AlignLeft, AlignRight, AlignRight, AlignRight, AlignRight, AlignRight},
		))
	}
}

// FileResultRows formats per-file results as table rows.
func FileResultRows(results []FileResult) [][]string {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		target, size, reduction := "-", "-", "-"
		if res.Status == StatusSucceeded {
			target = strconv.Itoa(res.FinalTarget)
			size = util.FormatBytes(res.EncodedSize)
			reduction = fmt.Sprintf("%.1f%%", res.Reduction())
		}
		rows = append(rows, []string{
			filepath.Base(res.File),
			string(res.Status),
			target,
			strconv.Itoa(res.Attempts),
			size,
			reduction,
			util.FormatDuration(res.Duration),
		})
	}
	return rows
}

func (r *TerminalReporter) Verbose(message string) {
	_, _ = r.faint.Fprintln(r.out, message)
}

package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/five82/abwalk/internal/util"
)

// JSONReporter outputs NDJSON events, one object per line.
type JSONReporter struct {
	writer io.Writer
	runID  string
	mu     sync.Mutex
}

// NewJSONReporterWithWriter creates a JSON reporter with a custom writer.
func NewJSONReporterWithWriter(w io.Writer, runID string) *JSONReporter {
	return &JSONReporter{writer: w, runID: runID}
}

func (r *JSONReporter) timestamp() int64 {
	return time.Now().Unix()
}

func (r *JSONReporter) write(v map[string]interface{}) {
	v["timestamp"] = r.timestamp()
	if r.runID != "" {
		v["run_id"] = r.runID
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	_, _ = fmt.Fprintln(r.writer, string(data))
}

func (r *JSONReporter) Hardware(summary HardwareSummary) {
	r.write(map[string]interface{}{
		"type":     "hardware",
		"hostname": summary.Hostname,
		"os":       summary.OS,
		"arch":     summary.Arch,
		"num_cpu":  summary.NumCPU,
	})
}

func (r *JSONReporter) EncodingConfig(summary EncodingConfigSummary) {
	r.write(map[string]interface{}{
		"type":           "encoding_config",
		"tool":           summary.Tool,
		"encoder":        summary.Encoder,
		"quality_target": summary.QualityTarget,
		"extra_params":   summary.ExtraParams,
		"pixel_format":   summary.PixelFormat,
		"preset":         summary.Preset,
		"audio_codec":    summary.AudioCodec,
		"downmix":        summary.Downmix,
		"min_size":       summary.MinSize,
	})
}

func (r *JSONReporter) Discovery(summary DiscoverySummary) {
	excluded := make([]map[string]string, len(summary.Excluded))
	for i, ex := range summary.Excluded {
		excluded[i] = map[string]string{"path": ex.Path, "reason": ex.Reason}
	}

	r.write(map[string]interface{}{
		"type":        "discovery",
		"root_dir":    summary.RootDir,
		"found_count": summary.FoundCount,
		"kept_count":  summary.KeptCount,
		"excluded":    excluded,
		"walk_errors": summary.WalkErrors,
	})
}

func (r *JSONReporter) BatchStarted(info BatchStartInfo) {
	r.write(map[string]interface{}{
		"type":        "batch_started",
		"total_files": info.TotalFiles,
		"file_list":   info.FileList,
		"root_dir":    info.RootDir,
	})
}

func (r *JSONReporter) FileProgress(context FileProgressContext) {
	r.write(map[string]interface{}{
		"type":         "file_progress",
		"current_file": context.CurrentFile,
		"total_files":  context.TotalFiles,
		"file":         context.File,
		"size":         context.Size,
	})
}

func (r *JSONReporter) AttemptStarted(info AttemptInfo) {
	r.write(map[string]interface{}{
		"type":        "attempt_started",
		"file":        info.File,
		"target":      info.Target,
		"output_path": info.OutputPath,
		"attempt":     info.Attempt,
	})
}

func (r *JSONReporter) AttemptFinished(result AttemptResult) {
	event := map[string]interface{}{
		"type":             "attempt_finished",
		"file":             result.File,
		"target":           result.Target,
		"output_path":      result.OutputPath,
		"outcome":          result.Outcome,
		"exit_code":        result.ExitCode,
		"duration_seconds": int64(result.Duration.Seconds()),
	}
	if result.NextTarget > 0 {
		event["next_target"] = result.NextTarget
	}
	if result.RetryDelay > 0 {
		event["retry_delay_seconds"] = result.RetryDelay.Seconds()
	}
	if result.Message != "" {
		event["message"] = result.Message
	}
	r.write(event)
}

func (r *JSONReporter) FileComplete(result FileResult) {
	r.write(map[string]interface{}{
		"type":                   "file_complete",
		"file":                   result.File,
		"status":                 string(result.Status),
		"final_target":           result.FinalTarget,
		"output_path":            result.OutputPath,
		"original_size":          result.OriginalSize,
		"encoded_size":           result.EncodedSize,
		"attempts":               result.Attempts,
		"duration_seconds":       int64(result.Duration.Seconds()),
		"size_reduction_percent": result.Reduction(),
	})
}

func (r *JSONReporter) Warning(message string) {
	r.write(map[string]interface{}{
		"type":    "warning",
		"message": message,
	})
}

func (r *JSONReporter) Error(err ReporterError) {
	r.write(map[string]interface{}{
		"type":       "error",
		"title":      err.Title,
		"message":    err.Message,
		"context":    err.Context,
		"suggestion": err.Suggestion,
	})
}

func (r *JSONReporter) BatchComplete(summary BatchSummary) {
	reduction := util.CalculateSizeReduction(summary.TotalOriginalSize, summary.TotalEncodedSize)

	r.write(map[string]interface{}{
		"type":                         "batch_complete",
		"total_files":                  summary.TotalFiles,
		"processed_count":              summary.ProcessedCount,
		"successful_count":             summary.SuccessfulCount,
		"exhausted_count":              summary.ExhaustedCount,
		"transient_limit_count":        summary.TransientCount,
		"aborted":                      summary.Aborted,
		"total_original_size":          summary.TotalOriginalSize,
		"total_encoded_size":           summary.TotalEncodedSize,
		"total_duration_seconds":       int64(summary.TotalDuration.Seconds()),
		"total_size_reduction_percent": reduction,
	})
}

// Verbose is not emitted; verbose text goes to the log file.
func (r *JSONReporter) Verbose(string) {}

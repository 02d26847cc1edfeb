package reporter

// Reporter defines the interface for progress reporting.
type Reporter interface {
	Hardware(summary HardwareSummary)
	EncodingConfig(summary EncodingConfigSummary)
	Discovery(summary DiscoverySummary)
	BatchStarted(info BatchStartInfo)
	FileProgress(context FileProgressContext)
	AttemptStarted(info AttemptInfo)
	AttemptFinished(result AttemptResult)
	FileComplete(result FileResult)
	Warning(message string)
	Error(err ReporterError)
	BatchComplete(summary BatchSummary)
	Verbose(message string)
}

// NullReporter is a no-op reporter that discards all updates.
type NullReporter struct{}

func (NullReporter) Hardware(HardwareSummary)             {}
func (NullReporter) EncodingConfig(EncodingConfigSummary) {}
func (NullReporter) Discovery(DiscoverySummary)           {}
func (NullReporter) BatchStarted(BatchStartInfo)          {}
func (NullReporter) FileProgress(FileProgressContext)     {}
func (NullReporter) AttemptStarted(AttemptInfo)           {}
func (NullReporter) AttemptFinished(AttemptResult)        {}
func (NullReporter) FileComplete(FileResult)              {}
func (NullReporter) Warning(string)                       {}
func (NullReporter) Error(ReporterError)                  {}
func (NullReporter) BatchComplete(BatchSummary)           {}
func (NullReporter) Verbose(string)                       {}

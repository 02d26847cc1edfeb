package reporter

// CompositeReporter fans out events to multiple reporters.
type CompositeReporter struct {
	reporters []Reporter
}

// NewCompositeReporter creates a composite reporter. Nil entries are dropped.
func NewCompositeReporter(reporters ...Reporter) *CompositeReporter {
	kept := make([]Reporter, 0, len(reporters))
	for _, r := range reporters {
		if r != nil {
			kept = append(kept, r)
		}
	}
	return &CompositeReporter{reporters: kept}
}

func (c *CompositeReporter) Hardware(summary HardwareSummary) {
	for _, r := range c.reporters {
		r.Hardware(summary)
	}
}

func (c *CompositeReporter) EncodingConfig(summary EncodingConfigSummary) {
	for _, r := range c.reporters {
		r.EncodingConfig(summary)
	}
}

func (c *CompositeReporter) Discovery(summary DiscoverySummary) {
	for _, r := range c.reporters {
		r.Discovery(summary)
	}
}

func (c *CompositeReporter) BatchStarted(info BatchStartInfo) {
	for _, r := range c.reporters {
		r.BatchStarted(info)
	}
}

func (c *CompositeReporter) FileProgress(context FileProgressContext) {
	for _, r := range c.reporters {
		r.FileProgress(context)
	}
}

func (c *CompositeReporter) AttemptStarted(info AttemptInfo) {
	for _, r := range c.reporters {
		r.AttemptStarted(info)
	}
}

func (c *CompositeReporter) AttemptFinished(result AttemptResult) {
	for _, r := range c.reporters {
		r.AttemptFinished(result)
	}
}

func (c *CompositeReporter) FileComplete(result FileResult) {
	for _, r := range c.reporters {
		r.FileComplete(result)
	}
}

func (c *CompositeReporter) Warning(message string) {
	for _, r := range c.reporters {
		r.Warning(message)
	}
}

func (c *CompositeReporter) Error(err ReporterError) {
	for _, r := range c.reporters {
		r.Error(err)
	}
}

func (c *CompositeReporter) BatchComplete(summary BatchSummary) {
	for _, r := range c.reporters {
		r.BatchComplete(summary)
	}
}

func (c *CompositeReporter) Verbose(message string) {
	for _, r := range c.reporters {
		r.Verbose(message)
	}
}

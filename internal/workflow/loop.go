package workflow

// IterationResult is the captured outcome of one loop iteration. A failed
// iteration never carries a value; its Error string describes the failure.
// Failures are data, not errors: the loop keeps iterating and the aggregator
// counts them.
type IterationResult struct {
	Index   int    `json:"index"`
	Value   any    `json:"value,omitempty"`
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// NewIterationSuccess builds a successful iteration result.
func NewIterationSuccess(index int, value any) IterationResult {
	return IterationResult{Index: index, Value: value, Success: true}
}

// NewIterationFailure builds a failed iteration result. The value is absent
// by invariant.
func NewIterationFailure(index int, errMsg string) IterationResult {
	return IterationResult{Index: index, Success: false, Error: errMsg}
}

// LoopResultsConfig is the typed configuration record controlling how a Loop
// node shapes its output.
type LoopResultsConfig struct {
	Collect        bool   `json:"collect"`
	AggregationKey string `json:"aggregation_key,omitempty"`
}

// LoopSummary is the aggregate of a finished loop.
type LoopSummary struct {
	TotalIterations int   `json:"total_iterations"`
	SuccessCount    int   `json:"success_count"`
	FailureCount    int   `json:"failure_count"`
	Results         []any `json:"results"`
	AllSucceeded    bool  `json:"all_succeeded"`
}

// AggregateLoopResults folds a sequence of per-iteration outcomes into a
// summary. When collecting, Results holds one entry per iteration in original
// order, with nil standing in for failed iterations; otherwise Results is
// empty. AllSucceeded requires at least one iteration: an empty loop has
// nothing that succeeded.
func AggregateLoopResults(iterations []IterationResult, config LoopResultsConfig) LoopSummary {
	summary := LoopSummary{
		TotalIterations: len(iterations),
		Results:         []any{},
	}

	for _, iter := range iterations {
		if iter.Success {
			summary.SuccessCount++
		} else {
			summary.FailureCount++
		}
		if config.Collect {
			if iter.Success {
				summary.Results = append(summary.Results, iter.Value)
			} else {
				summary.Results = append(summary.Results, nil)
			}
		}
	}

	summary.AllSucceeded = summary.FailureCount == 0 && summary.TotalIterations > 0
	return summary
}

// AggregationKey returns the key the loop output is published under: the
// configured aggregation key when present, else the node's default output
// key.
func AggregationKey(config LoopResultsConfig, defaultOutputKey string) string {
	if config.AggregationKey != "" {
		return config.AggregationKey
	}
	return defaultOutputKey
}

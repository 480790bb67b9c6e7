package report

// Status is the outcome of a single test within one job.
type Status string

const (
	// StatusPassed marks a test that passed on at least one node.
	StatusPassed Status = "passed"

	// StatusFailed marks a test that failed.
	StatusFailed Status = "failed"
)

// FailureEntry records one failed test occurrence in one job. Entries are
// created during parsing and never mutated afterwards.
type FailureEntry struct {
	JobName  string `json:"job_name"`
	TestName string `json:"test_name"`
	Error    string `json:"error"`

	// ModelName is nil when the test path does not follow the
	// tests/models/<model>/ convention. A nil model is serialized as
	// JSON null, never as an empty string.
	ModelName *string `json:"model_name"`
}

// FailureSummary is the serialized failure report for one workflow: the
// raw failure entries in collection order plus the two aggregate views.
type FailureSummary struct {
	Failures []FailureEntry `json:"failures"`
	ByTest   *Aggregate     `json:"by_test"`
	ByModel  *Aggregate     `json:"by_model"`
}

// NewFailureSummary builds a FailureSummary. A nil entries slice is
// replaced with an empty one so the JSON output is [] rather than null.
func NewFailureSummary(
	entries []FailureEntry,
	byTest, byModel *Aggregate,
) *FailureSummary {
	if entries == nil {
		entries = []FailureEntry{}
	}

	return &FailureSummary{
		Failures: entries,
		ByTest:   byTest,
		ByModel:  byModel,
	}
}

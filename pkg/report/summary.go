package report

import (
	"bytes"
	"encoding/json"
	"sort"
)

// JobSummary maps each test seen in one job to its final status. The JSON
// serialization preserves report order: failed tests before passed tests,
// lexicographic within each status group.
type JobSummary struct {
	statuses map[string]Status
}

// NewJobSummary creates an empty JobSummary.
func NewJobSummary() *JobSummary {
	return &JobSummary{statuses: make(map[string]Status)}
}

// Set records the status for a test. Later writes overwrite earlier ones.
func (s *JobSummary) Set(test string, status Status) {
	s.statuses[test] = status
}

// Get returns the recorded status for a test.
func (s *JobSummary) Get(test string) (Status, bool) {
	status, ok := s.statuses[test]

	return status, ok
}

// Len returns the number of tests recorded.
func (s *JobSummary) Len() int {
	return len(s.statuses)
}

// CountByStatus returns how many tests have the given status.
func (s *JobSummary) CountByStatus(status Status) int {
	var n int

	for _, st := range s.statuses {
		if st == status {
			n++
		}
	}

	return n
}

// Tests returns the test identifiers in report order. Sorting by the
// status string places "failed" before "passed".
func (s *JobSummary) Tests() []string {
	tests := make([]string, 0, len(s.statuses))
	for t := range s.statuses {
		tests = append(tests, t)
	}

	sort.Slice(tests, func(i, j int) bool {
		si, sj := s.statuses[tests[i]], s.statuses[tests[j]]
		if si != sj {
			return si < sj
		}

		return tests[i] < tests[j]
	})

	return tests
}

// MarshalJSON serializes the summary as a JSON object with keys in
// report order.
func (s *JobSummary) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, test := range s.Tests() {
		if i > 0 {
			buf.WriteByte(',')
		}

		if err := writeJSONPair(&buf, test, s.statuses[test]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// WorkflowSummary presents each test's outcome across all jobs of a
// workflow in a single row. Both levels of the JSON serialization are
// sorted ascending by key.
type WorkflowSummary struct {
	tests map[string]map[string]Status
}

// NewWorkflowSummary creates an empty WorkflowSummary.
func NewWorkflowSummary() *WorkflowSummary {
	return &WorkflowSummary{tests: make(map[string]map[string]Status)}
}

// AddJob merges one job's summary into the workflow view.
func (s *WorkflowSummary) AddJob(jobName string, summary *JobSummary) {
	for test, status := range summary.statuses {
		if s.tests[test] == nil {
			s.tests[test] = make(map[string]Status)
		}

		s.tests[test][jobName] = status
	}
}

// Len returns the number of distinct tests across all jobs.
func (s *WorkflowSummary) Len() int {
	return len(s.tests)
}

// JobStatuses returns the per-job statuses recorded for a test.
func (s *WorkflowSummary) JobStatuses(test string) map[string]Status {
	return s.tests[test]
}

// MarshalJSON serializes the workflow summary as nested JSON objects with
// both levels sorted ascending.
func (s *WorkflowSummary) MarshalJSON() ([]byte, error) {
	tests := make([]string, 0, len(s.tests))
	for t := range s.tests {
		tests = append(tests, t)
	}

	sort.Strings(tests)

	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, test := range tests {
		if i > 0 {
			buf.WriteByte(',')
		}

		key, err := json.Marshal(test)
		if err != nil {
			return nil, err
		}

		buf.Write(key)
		buf.WriteByte(':')

		jobs := make([]string, 0, len(s.tests[test]))
		for j := range s.tests[test] {
			jobs = append(jobs, j)
		}

		sort.Strings(jobs)

		buf.WriteByte('{')

		for j, job := range jobs {
			if j > 0 {
				buf.WriteByte(',')
			}

			if err := writeJSONPair(&buf, job, s.tests[test][job]); err != nil {
				return nil, err
			}
		}

		buf.WriteByte('}')
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// writeJSONPair writes a single `"key":value` pair into buf.
func writeJSONPair(buf *bytes.Buffer, key string, value any) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}

	v, err := json.Marshal(value)
	if err != nil {
		return err
	}

	buf.Write(k)
	buf.WriteByte(':')
	buf.Write(v)

	return nil
}

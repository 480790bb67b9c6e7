package report

import "strings"

const (
	passedPrefix = "PASSED "
	failedPrefix = "FAILED "

	// subprocessMarker tags failures of the pytest subprocess harness
	// itself. These are transient and excluded from failure collection.
	subprocessMarker = " - Failed: (subprocess)"

	// summaryBanner is the pytest short-summary heading that leaks into
	// failure-detail artifacts. Compared case-insensitively.
	summaryBanner = "short test summary"
)

// ParseSummaryText scans one node's summary artifact and records each
// PASSED/FAILED line into the job summary. A later line for the same test
// overwrites an earlier one. Lines matching neither prefix are skipped.
func (s *JobSummary) ParseSummaryText(text string) {
	for _, line := range strings.Split(text, "\n") {
		switch {
		case strings.HasPrefix(line, passedPrefix):
			s.Set(line[len(passedPrefix):], StatusPassed)
		case strings.HasPrefix(line, failedPrefix):
			fields := strings.Fields(line[len(failedPrefix):])
			if len(fields) == 0 {
				continue
			}

			s.Set(fields[0], StatusFailed)
		}
	}
}

// FilterFailureLines extracts the candidate full-error messages from one
// node's failure-detail artifact, preserving their order. Separator lines,
// blanks, lines without a ": " message prefix and the short-summary banner
// are dropped.
func FilterFailureLines(text string) []string {
	var lines []string

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if strings.HasPrefix(line, "=") || strings.HasPrefix(line, "_") {
			continue
		}

		if !strings.Contains(line, ": ") {
			continue
		}

		if strings.HasPrefix(strings.ToLower(line), summaryBanner) {
			continue
		}

		lines = append(lines, line)
	}

	return lines
}

// CollectNodeFailures correlates the FAILED lines of one node's summary
// artifact with the node's filtered failure-detail lines by position: the
// Nth non-subprocess FAILED line consumes the Nth detail line. When the
// detail lines run out, the short error embedded in the summary line
// (after " - ") is used instead.
func CollectNodeFailures(jobName, summaryText, failureText string) []FailureEntry {
	details := FilterFailureLines(failureText)

	var (
		entries []FailureEntry
		idx     int
	)

	for _, line := range strings.Split(summaryText, "\n") {
		if !strings.HasPrefix(line, failedPrefix) {
			continue
		}

		if strings.Contains(line, subprocessMarker) {
			continue
		}

		failureLine := strings.TrimSpace(line[len(failedPrefix):])
		testName, shortError, _ := strings.Cut(failureLine, " - ")
		testName = strings.TrimSpace(testName)

		errMsg := shortError
		if idx < len(details) {
			errMsg = details[idx]
		}

		entries = append(entries, FailureEntry{
			JobName:   jobName,
			TestName:  testName,
			Error:     errMsg,
			ModelName: modelNameOf(testName),
		})

		idx++
	}

	return entries
}

// modelNameOf wraps ExtractModelName into the nullable form used by
// FailureEntry.
func modelNameOf(testName string) *string {
	model, ok := ExtractModelName(testName)
	if !ok {
		return nil
	}

	return &model
}

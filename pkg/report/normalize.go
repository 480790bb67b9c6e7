package report

import (
	"regexp"
	"strings"
)

// numericSuffixPattern matches auto-numbered duplicate test names.
// Format: underscore, two or more digits, anything after.
// Example: test_foo_012 or test_foo_042_extra.
var numericSuffixPattern = regexp.MustCompile(`_\d{2,}.*$`)

// modelTestPrefix is the path prefix of model-bearing test files.
const modelTestPrefix = "tests/models/"

// NormalizeTestName produces the canonical grouping key for a test
// identifier: the bracketed parametrization suffix is dropped and a
// numeric suffix on the final :: segment is stripped. Normalization is
// idempotent and accepts any string.
func NormalizeTestName(testName string) string {
	baseName, _, _ := strings.Cut(testName, "[")

	parts := strings.Split(baseName, "::")
	parts[len(parts)-1] = numericSuffixPattern.ReplaceAllString(parts[len(parts)-1], "")

	return strings.Join(parts, "::")
}

// ExtractModelName derives the model name from a test identifier whose
// file path follows the tests/models/<model>/ convention. The second
// return value is false when the path does not follow the convention.
func ExtractModelName(testNodeID string) (string, bool) {
	filePath, _, _ := strings.Cut(testNodeID, "::")
	if !strings.HasPrefix(filePath, modelTestPrefix) {
		return "", false
	}

	parts := strings.Split(filePath, "/")
	if len(parts) < 3 || parts[2] == "" {
		return "", false
	}

	return parts[2], true
}

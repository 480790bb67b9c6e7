package report

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderFailureReportEmpty(t *testing.T) {
	md := RenderFailureReport(NewAggregate(), NewAggregate())

	assert.Contains(t, md, "# Failure summary")
	assert.Contains(t, md, "No failures were reported.")
	assert.NotContains(t, md, "|")
}

func TestRenderFailureReportTables(t *testing.T) {
	entries := []FailureEntry{
		{
			JobName:   "tests_torch",
			TestName:  "tests/models/bart/test_modeling_bart.py::T::test_x",
			Error:     "AssertionError: boom",
			ModelName: strPtr("bart"),
		},
		{
			JobName:   "tests_torch",
			TestName:  "tests/models/bart/test_modeling_bart.py::T::test_x",
			Error:     "AssertionError: boom",
			ModelName: strPtr("bart"),
		},
		{
			JobName:  "tests_tf",
			TestName: "tests/utils/test_generic.py::test_y",
			Error:    "ValueError: bad",
		},
	}

	byTest, byModel := AggregateFailures(entries)
	md := RenderFailureReport(byTest, byModel)

	assert.Contains(t, md, "## By test")
	assert.Contains(t, md, "## By model")
	assert.Contains(t, md, "| Test | Failures | Error(s) |")
	assert.Contains(t, md, "| Model | Failures | Error(s) |")
	assert.Contains(t, md,
		"| tests/models/bart/test_modeling_bart.py::T::test_x | 2 | "+
			"2× AssertionError: boom |")
	assert.Contains(t, md, "| bart | 2 | 2× AssertionError: boom |")
	assert.NotContains(t, md, "No failures were reported.")

	// Rows are ordered by descending failure count.
	bartRow := strings.Index(md,
		"| tests/models/bart/test_modeling_bart.py::T::test_x |")
	genericRow := strings.Index(md, "| tests/utils/test_generic.py::test_y |")
	require.GreaterOrEqual(t, bartRow, 0)
	require.GreaterOrEqual(t, genericRow, 0)
	assert.Less(t, bartRow, genericRow)
}

func TestRenderFailureReportErrorJoin(t *testing.T) {
	agg := NewAggregate()
	agg.Add("x::test", "E1: one")
	agg.Add("x::test", "E2: two")
	agg.Add("x::test", "E2: two")

	md := RenderFailureReport(agg, NewAggregate())

	assert.Contains(t, md, "| x::test | 3 | 2× E2: two; 1× E1: one |")
}

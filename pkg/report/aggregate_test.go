package report

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestAggregateFailures(t *testing.T) {
	entries := []FailureEntry{
		{
			JobName:   "tests_torch",
			TestName:  "tests/models/bart/test_modeling_bart.py::T::test_x[a]",
			Error:     "AssertionError: boom",
			ModelName: strPtr("bart"),
		},
		{
			JobName:   "tests_torch",
			TestName:  "tests/models/bart/test_modeling_bart.py::T::test_x[b]",
			Error:     "AssertionError: boom",
			ModelName: strPtr("bart"),
		},
		{
			JobName:  "tests_torch",
			TestName: "tests/utils/test_generic.py::test_y",
			Error:    "ValueError: bad",
		},
	}

	byTest, byModel := AggregateFailures(entries)

	// Parametrized runs collapse onto one normalized key.
	require.Equal(t, 2, byTest.Len())

	group := byTest.Get("tests/models/bart/test_modeling_bart.py::T::test_x")
	require.NotNil(t, group)
	assert.Equal(t, 2, group.Count)
	assert.Equal(t, 2, group.Errors.Count("AssertionError: boom"))

	// Entries without a model name only appear in the by-test view.
	require.Equal(t, 1, byModel.Len())
	assert.Equal(t, 2, byModel.Get("bart").Count)

	// Count invariants: by-test sums to N, by-model to M.
	assert.Equal(t, len(entries), byTest.TotalCount())
	assert.Equal(t, 2, byModel.TotalCount())
}

func TestAggregateKeysRanked(t *testing.T) {
	agg := NewAggregate()
	agg.Add("one", "E")
	agg.Add("two", "E")
	agg.Add("two", "E")
	agg.Add("three", "E")

	// Descending count, first-seen order on ties.
	assert.Equal(t, []string{"two", "one", "three"}, agg.Keys())
}

func TestErrorTallyOrdering(t *testing.T) {
	tally := NewErrorTally()
	tally.Add("first")
	tally.Add("second")
	tally.Add("second")
	tally.Add("third")

	assert.Equal(t, []string{"second", "first", "third"}, tally.Messages())
	assert.Equal(t, 2, tally.Count("second"))
	assert.Equal(t, 0, tally.Count("missing"))
}

func TestErrorTallyJSON(t *testing.T) {
	tally := NewErrorTally()
	tally.Add("a: one")
	tally.Add("b: two")
	tally.Add("b: two")

	data, err := json.Marshal(tally)
	require.NoError(t, err)
	assert.JSONEq(t, `{"b: two": 2, "a: one": 1}`, string(data))

	// Key order is count-descending.
	assert.Equal(t, `{"b: two":2,"a: one":1}`, string(data))
}

func TestAggregateJSONRoundTrip(t *testing.T) {
	agg := NewAggregate()
	agg.Add("x::test_a", "E1: one")
	agg.Add("x::test_b", "E2: two")
	agg.Add("x::test_b", "E3: three")

	data, err := json.Marshal(agg)
	require.NoError(t, err)

	var restored Aggregate
	require.NoError(t, json.Unmarshal(data, &restored))

	assert.Equal(t, 2, restored.Len())
	assert.Equal(t, agg.Keys(), restored.Keys())
	assert.Equal(t, 1, restored.Get("x::test_a").Count)
	assert.Equal(t, 2, restored.Get("x::test_b").Count)
	assert.Equal(t,
		agg.Get("x::test_b").Errors.Messages(),
		restored.Get("x::test_b").Errors.Messages(),
	)
}

func TestAggregateEmptyJSON(t *testing.T) {
	data, err := json.Marshal(NewAggregate())
	require.NoError(t, err)
	assert.Equal(t, "{}", string(data))
}

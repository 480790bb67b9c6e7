package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// ErrorTally counts occurrences of distinct error messages within one
// group. Serialization and iteration order is by descending count, with
// ties keeping first-seen order.
type ErrorTally struct {
	counts map[string]int
	order  []string
}

// NewErrorTally creates an empty tally.
func NewErrorTally() *ErrorTally {
	return &ErrorTally{counts: make(map[string]int)}
}

// Add counts one occurrence of a message.
func (t *ErrorTally) Add(msg string) {
	if _, seen := t.counts[msg]; !seen {
		t.order = append(t.order, msg)
	}

	t.counts[msg]++
}

// Count returns the occurrence count for a message.
func (t *ErrorTally) Count(msg string) int {
	return t.counts[msg]
}

// Len returns the number of distinct messages.
func (t *ErrorTally) Len() int {
	return len(t.counts)
}

// Messages returns the distinct messages ordered by descending count,
// stable on first-seen ties.
func (t *ErrorTally) Messages() []string {
	msgs := append([]string(nil), t.order...)

	sort.SliceStable(msgs, func(i, j int) bool {
		return t.counts[msgs[i]] > t.counts[msgs[j]]
	})

	return msgs
}

// MarshalJSON serializes the tally as a JSON object in tally order.
func (t *ErrorTally) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, msg := range t.Messages() {
		if i > 0 {
			buf.WriteByte(',')
		}

		if err := writeJSONPair(&buf, msg, t.counts[msg]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON restores a tally from a JSON object, preserving the
// document's key order.
func (t *ErrorTally) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	if err := expectDelim(dec, '{'); err != nil {
		return fmt.Errorf("error tally: %w", err)
	}

	t.counts = make(map[string]int)
	t.order = nil

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("error tally key: %w", err)
		}

		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("error tally key: unexpected token %v", tok)
		}

		var count int
		if err := dec.Decode(&count); err != nil {
			return fmt.Errorf("error tally count for %q: %w", key, err)
		}

		if _, seen := t.counts[key]; !seen {
			t.order = append(t.order, key)
		}

		t.counts[key] = count
	}

	return nil
}

// Group is the aggregate for a single by-test or by-model key.
type Group struct {
	Count  int         `json:"count"`
	Errors *ErrorTally `json:"errors"`
}

// Aggregate is an ordered mapping from group key (normalized test name or
// model name) to its Group. Keys are kept in first-seen order, which is
// the JSON serialization order; ranked iteration is provided by Keys.
type Aggregate struct {
	groups map[string]*Group
	order  []string
}

// NewAggregate creates an empty aggregate.
func NewAggregate() *Aggregate {
	return &Aggregate{groups: make(map[string]*Group)}
}

// Add counts one failure with the given error message under key.
func (a *Aggregate) Add(key, errMsg string) {
	group, ok := a.groups[key]
	if !ok {
		group = &Group{Errors: NewErrorTally()}
		a.groups[key] = group
		a.order = append(a.order, key)
	}

	group.Count++
	group.Errors.Add(errMsg)
}

// Get returns the group for a key, or nil.
func (a *Aggregate) Get(key string) *Group {
	return a.groups[key]
}

// Len returns the number of groups.
func (a *Aggregate) Len() int {
	return len(a.groups)
}

// Keys returns the group keys ordered by descending failure count, stable
// on first-seen ties.
func (a *Aggregate) Keys() []string {
	keys := append([]string(nil), a.order...)

	sort.SliceStable(keys, func(i, j int) bool {
		return a.groups[keys[i]].Count > a.groups[keys[j]].Count
	})

	return keys
}

// TotalCount returns the sum of all group counts.
func (a *Aggregate) TotalCount() int {
	var n int

	for _, group := range a.groups {
		n += group.Count
	}

	return n
}

// MarshalJSON serializes the aggregate as a JSON object in first-seen
// key order.
func (a *Aggregate) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteByte('{')

	for i, key := range a.order {
		if i > 0 {
			buf.WriteByte(',')
		}

		if err := writeJSONPair(&buf, key, a.groups[key]); err != nil {
			return nil, err
		}
	}

	buf.WriteByte('}')

	return buf.Bytes(), nil
}

// UnmarshalJSON restores an aggregate from a JSON object, preserving the
// document's key order.
func (a *Aggregate) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))

	if err := expectDelim(dec, '{'); err != nil {
		return fmt.Errorf("aggregate: %w", err)
	}

	a.groups = make(map[string]*Group)
	a.order = nil

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return fmt.Errorf("aggregate key: %w", err)
		}

		key, ok := tok.(string)
		if !ok {
			return fmt.Errorf("aggregate key: unexpected token %v", tok)
		}

		var group Group
		if err := dec.Decode(&group); err != nil {
			return fmt.Errorf("aggregate group %q: %w", key, err)
		}

		if _, seen := a.groups[key]; !seen {
			a.order = append(a.order, key)
		}

		a.groups[key] = &group
	}

	return nil
}

// expectDelim consumes the next token and checks it is the given
// delimiter.
func expectDelim(dec *json.Decoder, delim rune) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	if d, ok := tok.(json.Delim); !ok || rune(d) != delim {
		return fmt.Errorf("expected %q, got %v", delim, tok)
	}

	return nil
}

// AggregateFailures groups failure entries by normalized test name and by
// model name in a single pass. Entries without a model name are excluded
// from the by-model aggregate but still counted in the by-test one.
func AggregateFailures(entries []FailureEntry) (byTest, byModel *Aggregate) {
	byTest = NewAggregate()
	byModel = NewAggregate()

	for _, entry := range entries {
		byTest.Add(NormalizeTestName(entry.TestName), entry.Error)

		if entry.ModelName != nil {
			byModel.Add(*entry.ModelName, entry.Error)
		}
	}

	return byTest, byModel
}

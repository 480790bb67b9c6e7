package report

import (
	"fmt"
	"strings"
)

// RenderFailureReport produces the markdown failure report for the given
// aggregates. When both aggregates are empty a short note is emitted
// instead of the tables.
func RenderFailureReport(byTest, byModel *Aggregate) string {
	var sb strings.Builder

	sb.Grow(1024)

	sb.WriteString("# Failure summary\n\n")

	if byTest.Len() == 0 && byModel.Len() == 0 {
		sb.WriteString("No failures were reported.\n")

		return sb.String()
	}

	writeAggregateTable(&sb, "By test", "Test", byTest)
	writeAggregateTable(&sb, "By model", "Model", byModel)

	return sb.String()
}

// writeAggregateTable writes one aggregate as a markdown table with rows
// ordered by descending failure count.
func writeAggregateTable(
	sb *strings.Builder,
	heading, keyColumn string,
	agg *Aggregate,
) {
	fmt.Fprintf(sb, "## %s\n\n", heading)
	fmt.Fprintf(sb, "| %s | Failures | Error(s) |\n", keyColumn)
	sb.WriteString("| --- | --- | --- |\n")

	for _, key := range agg.Keys() {
		group := agg.Get(key)
		fmt.Fprintf(sb, "| %s | %d | %s |\n",
			key, group.Count, formatErrors(group.Errors))
	}

	sb.WriteByte('\n')
}

// formatErrors renders a group's error tally as "<count>× <message>"
// pairs joined by "; ", in tally order.
func formatErrors(tally *ErrorTally) string {
	parts := make([]string, 0, tally.Len())

	for _, msg := range tally.Messages() {
		parts = append(parts, fmt.Sprintf("%d× %s", tally.Count(msg), msg))
	}

	return strings.Join(parts, "; ")
}

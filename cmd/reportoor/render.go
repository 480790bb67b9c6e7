package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ethpandaops/reportoor/pkg/report"
	"github.com/spf13/cobra"
)

var (
	renderInput  string
	renderOutput string
)

var renderCmd = &cobra.Command{
	Use:   "render",
	Short: "Render a markdown report from a failure summary",
	Long: `Render the markdown failure report from an existing
failure_summary.json file without contacting CircleCI.`,
	RunE: runRender,
}

func init() {
	rootCmd.AddCommand(renderCmd)
	renderCmd.Flags().StringVar(&renderInput, "input", "",
		"Path to a failure_summary.json file")
	renderCmd.Flags().StringVar(&renderOutput, "output", "",
		"Output markdown file (defaults to stdout)")

	_ = renderCmd.MarkFlagRequired("input")
}

func runRender(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(renderInput)
	if err != nil {
		return fmt.Errorf("reading failure summary: %w", err)
	}

	var summary report.FailureSummary
	if err := json.Unmarshal(data, &summary); err != nil {
		return fmt.Errorf("parsing failure summary: %w", err)
	}

	markdown := report.RenderFailureReport(summary.ByTest, summary.ByModel)

	if renderOutput == "" {
		fmt.Print(markdown)

		return nil
	}

	if err := os.WriteFile(renderOutput, []byte(markdown), 0o644); err != nil {
		return fmt.Errorf("writing markdown report: %w", err)
	}

	log.WithField("path", renderOutput).Info("Markdown report written")

	return nil
}

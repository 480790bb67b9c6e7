package main

import (
	"context"
	"fmt"

	"github.com/ethpandaops/reportoor/pkg/circleci"
	"github.com/ethpandaops/reportoor/pkg/config"
	"github.com/ethpandaops/reportoor/pkg/fsutil"
	"github.com/ethpandaops/reportoor/pkg/indexstore"
	"github.com/ethpandaops/reportoor/pkg/processor"
	"github.com/ethpandaops/reportoor/pkg/sink"
	"github.com/spf13/cobra"
)

var (
	processWorkflowID string
	processOutputDir  string
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process a CircleCI workflow's test reports",
	Long: `Fetch the test report artifacts of every job in a CircleCI workflow,
merge the per-node summaries and write per-job summaries, a workflow
summary and aggregated failure reports to the output directory.`,
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
	processCmd.Flags().StringVar(&processWorkflowID, "workflow-id", "",
		"CircleCI workflow ID to process")
	processCmd.Flags().StringVar(&processOutputDir, "output-dir", "",
		"Output directory (overrides config)")

	_ = processCmd.MarkFlagRequired("workflow-id")
}

func runProcess(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	if processOutputDir != "" {
		cfg.Report.OutputDir = processOutputDir
	}

	if cfg.CircleCI.ResolveToken() == "" {
		log.WithField("env", cfg.CircleCI.TokenEnv).
			Warn("No CircleCI token configured, artifact access may fail")
	}

	var owner *fsutil.OwnerConfig

	if cfg.Report.OutputOwner != "" {
		owner, err = fsutil.ParseOwner(cfg.Report.OutputOwner)
		if err != nil {
			return fmt.Errorf("parsing output owner: %w", err)
		}
	}

	source := circleci.NewClient(log, &cfg.CircleCI)
	out := sink.NewLocal(cfg.Report.OutputDir, owner)
	proc := processor.New(log, &cfg.Report, source, out)

	ctx := cmd.Context()

	result, err := proc.ProcessWorkflow(ctx, processWorkflowID)
	if err != nil {
		return fmt.Errorf("processing workflow: %w", err)
	}

	if cfg.Database != nil {
		if err := indexResult(ctx, cfg, result); err != nil {
			return fmt.Errorf("indexing workflow: %w", err)
		}
	}

	return nil
}

// indexResult records the processed workflow in the index database.
func indexResult(
	ctx context.Context,
	cfg *config.Config,
	result *processor.Result,
) error {
	store := indexstore.NewStore(log, cfg.Database)

	if err := store.Start(ctx); err != nil {
		return fmt.Errorf("starting index store: %w", err)
	}

	defer func() {
		if err := store.Stop(); err != nil {
			log.WithError(err).Warn("Failed to close index store")
		}
	}()

	return store.UpsertWorkflow(ctx, &indexstore.Workflow{
		WorkflowID:    result.WorkflowID,
		JobsProcessed: result.JobsProcessed,
		TestsTotal:    result.TestsTotal,
		TestsPassed:   result.TestsPassed,
		TestsFailed:   result.TestsFailed,
		FailureCount:  result.FailureCount,
	})
}

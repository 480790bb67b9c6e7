package main

import (
	"fmt"

	"github.com/ethpandaops/reportoor/pkg/upload"
	"github.com/spf13/cobra"
)

var (
	uploadMethod     string
	uploadOutputDir  string
	uploadWorkflowID string
)

var uploadOutputsCmd = &cobra.Command{
	Use:   "upload-outputs",
	Short: "Upload report outputs to remote storage",
	Long:  `Upload a local report outputs directory to S3-compatible storage using the config file settings.`,
	RunE:  runUploadOutputs,
}

func init() {
	rootCmd.AddCommand(uploadOutputsCmd)
	uploadOutputsCmd.Flags().StringVar(&uploadMethod, "method", "s3",
		"Upload method (currently only \"s3\")")
	uploadOutputsCmd.Flags().StringVar(&uploadOutputDir, "output-dir", "",
		"Path to the outputs directory to upload")
	uploadOutputsCmd.Flags().StringVar(&uploadWorkflowID, "workflow-id", "",
		"Workflow ID the outputs belong to")

	_ = uploadOutputsCmd.MarkFlagRequired("output-dir")
	_ = uploadOutputsCmd.MarkFlagRequired("workflow-id")
}

func runUploadOutputs(cmd *cobra.Command, args []string) error {
	if cfgFile == "" {
		return fmt.Errorf("config file is required (use --config)")
	}

	if uploadMethod != "s3" {
		return fmt.Errorf("unsupported method %q (only \"s3\" is supported)", uploadMethod)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.Upload == nil || cfg.Upload.S3 == nil || !cfg.Upload.S3.Enabled {
		return fmt.Errorf("S3 upload is not configured or not enabled in config")
	}

	uploader, err := upload.NewS3Uploader(log, cfg.Upload.S3)
	if err != nil {
		return fmt.Errorf("creating S3 uploader: %w", err)
	}

	ctx := cmd.Context()

	if err := uploader.Preflight(ctx); err != nil {
		return fmt.Errorf("S3 preflight check failed: %w", err)
	}

	log.WithField("dir", uploadOutputDir).Info("Uploading report outputs")

	if err := uploader.Upload(ctx, uploadOutputDir, uploadWorkflowID); err != nil {
		return fmt.Errorf("uploading outputs: %w", err)
	}

	log.Info("Upload completed successfully")

	return nil
}

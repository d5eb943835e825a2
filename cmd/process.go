package cmd

import (
	"fmt"
	"log/slog"

	"shopstory/internal/app"
	"shopstory/pkg/config"

	"github.com/spf13/cobra"
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Process all pending products into finished videos",
	Long: `Fetch crawled products awaiting processing from the database, and for each
one: download and merge its clips, generate the voice-over script and caption,
synthesize speech, assemble the final video and upload it.`,
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	pipeline, err := app.BuildPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer pipeline.Close()

	slog.Info("Starting video processing...")

	summary, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}

	if summary.Failed > 0 {
		return fmt.Errorf("%d product(s) failed", summary.Failed)
	}

	return nil
}

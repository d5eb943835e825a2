package cmd

import (
	"log/slog"

	"shopstory/internal/app"
	"shopstory/internal/product"
	"shopstory/internal/script"
	"shopstory/pkg/config"
	"shopstory/pkg/prompts"

	"github.com/spf13/cobra"
)

var generateOverlay bool

var generateCmd = &cobra.Command{
	Use:   "generate <video-data.json>",
	Short: "Generate a voice-over script for a product",
	Long: `Generate a Vietnamese voice-over script from a product's video-data JSON
file. With --overlay the model is also asked for a short on-screen caption and
both texts are written out.

Target duration and script length come from the VIDEO_DURATION and
TARGET_SCRIPT_LENGTH environment variables.`,
	Args: cobra.ExactArgs(1),
	RunE: runGenerate,
}

func init() {
	generateCmd.Flags().BoolVarP(&generateOverlay, "overlay", "o", false, "Also generate an on-screen caption")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}

	p, err := prompts.Load()
	if err != nil {
		return err
	}

	vd, err := product.Load(args[0])
	if err != nil {
		return err
	}

	client, err := app.NewLLMClient(cfg)
	if err != nil {
		return err
	}

	gen := script.NewGenerator(client, p)

	slog.Info("Generating script...",
		"product", vd.ProductInfo.Name,
		"duration", cfg.VideoDuration,
		"target_length", cfg.TargetScriptLength,
		"overlay", generateOverlay,
	)

	var result *script.Result
	if generateOverlay {
		result, err = gen.GenerateWithOverlay(ctx, vd.ProductInfo, cfg.VideoDuration, cfg.TargetScriptLength)
	} else {
		result, err = gen.Generate(ctx, vd.ProductInfo, cfg.VideoDuration, cfg.TargetScriptLength)
	}
	if err != nil {
		return err
	}

	if err := gen.Write(result, cfg.Video.ScriptsDir); err != nil {
		return err
	}

	slog.Info("Script written",
		"dir", cfg.Video.ScriptsDir,
		"length", len([]rune(result.Script)),
	)
	if result.Overlay != "" {
		slog.Info("Overlay written", "overlay", result.Overlay)
	}

	return nil
}

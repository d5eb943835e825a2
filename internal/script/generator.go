package script

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"shopstory/internal/llm"
	"shopstory/internal/product"
	"shopstory/pkg/prompts"
)

const (
	// ScriptFileName holds the voice-over narration text.
	ScriptFileName = "generated_script.txt"
	// OverlayFileName holds the on-screen caption, overlay runs only.
	OverlayFileName = "text_overlay.txt"
)

// Result is the generated text pair. Overlay is empty for script-only runs.
type Result struct {
	Script  string
	Overlay string
}

type Generator struct {
	client  llm.Client
	prompts *prompts.Prompts
}

func NewGenerator(client llm.Client, p *prompts.Prompts) *Generator {
	return &Generator{
		client:  client,
		prompts: p,
	}
}

// Generate builds the prompt for the product, makes the one LLM call and
// returns the script. Duration and targetLength are rendered verbatim.
func (g *Generator) Generate(ctx context.Context, info product.ProductInfo, duration, targetLength string) (*Result, error) {
	params := promptParams(info, duration, targetLength)

	prompt, err := g.prompts.RenderScript(params)
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	content, err := g.client.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	return &Result{Script: content}, nil
}

// GenerateWithOverlay additionally asks for the on-screen caption and parses
// the two-field JSON answer. A missing script is fatal; a missing overlay
// degrades to the product name.
func (g *Generator) GenerateWithOverlay(ctx context.Context, info product.ProductInfo, duration, targetLength string) (*Result, error) {
	params := promptParams(info, duration, targetLength)

	prompt, err := g.prompts.RenderScriptWithOverlay(params)
	if err != nil {
		return nil, fmt.Errorf("render prompt: %w", err)
	}

	content, err := g.client.Generate(ctx, prompt)
	if err != nil {
		return nil, err
	}

	parsed, err := parseStructured(content)
	if err != nil {
		return nil, err
	}

	if parsed.Overlay == "" {
		slog.Warn("No overlay in response, falling back to product name", "product", info.Name)
		parsed.Overlay = info.Name
	}

	return &Result{Script: parsed.Script, Overlay: parsed.Overlay}, nil
}

// Write persists the result under dir, overwriting previous runs. The overlay
// file is written only when the result carries an overlay.
func (g *Generator) Write(result *Result, dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create scripts directory: %w", err)
	}

	scriptPath := filepath.Join(dir, ScriptFileName)
	if err := os.WriteFile(scriptPath, []byte(result.Script), 0644); err != nil {
		return fmt.Errorf("write script: %w", err)
	}

	if result.Overlay != "" {
		overlayPath := filepath.Join(dir, OverlayFileName)
		if err := os.WriteFile(overlayPath, []byte(result.Overlay), 0644); err != nil {
			return fmt.Errorf("write overlay: %w", err)
		}
	}

	return nil
}

func promptParams(info product.ProductInfo, duration, targetLength string) prompts.ScriptParams {
	return prompts.ScriptParams{
		ProductName:   info.Name,
		Price:         product.FormatPrice(info.Price),
		OriginalPrice: product.FormatPrice(info.OriginalPrice),
		Discount:      info.Discount,
		Duration:      duration,
		TargetLength:  targetLength,
	}
}

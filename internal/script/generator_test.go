package script

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"shopstory/internal/product"
	"shopstory/pkg/prompts"
)

type fakeClient struct {
	content string
	err     error
	prompt  string
}

func (f *fakeClient) Generate(_ context.Context, prompt string) (string, error) {
	f.prompt = prompt
	if f.err != nil {
		return "", f.err
	}
	return f.content, nil
}

func testInfo() product.ProductInfo {
	return product.ProductInfo{
		Name:          "Áo thun nam",
		Price:         "269.000₫",
		OriginalPrice: "429.000₫",
		Discount:      "37%",
	}
}

func testPrompts(t *testing.T) *prompts.Prompts {
	t.Helper()
	tmp := t.TempDir()
	orig, _ := os.Getwd()
	defer func() { _ = os.Chdir(orig) }()
	_ = os.Chdir(tmp)

	p, err := prompts.Load()
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestGenerate(t *testing.T) {
	want := "Xin chào cả nhà! " + prompts.ClosingSentence
	client := &fakeClient{content: want}
	gen := NewGenerator(client, testPrompts(t))

	result, err := gen.Generate(context.Background(), testInfo(), "36", "540")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if result.Script != want {
		t.Errorf("Script = %q, want %q", result.Script, want)
	}
	if result.Overlay != "" {
		t.Errorf("Overlay = %q, want empty", result.Overlay)
	}

	// Prompt carries the spoken-form prices, not the display prices.
	for _, fragment := range []string{"269k", "429k", "37%", "Áo thun nam", "540"} {
		if !strings.Contains(client.prompt, fragment) {
			t.Errorf("prompt missing %q", fragment)
		}
	}
	if strings.Contains(client.prompt, "₫") {
		t.Error("prompt should not contain raw ₫ prices")
	}
}

func TestGenerateClientError(t *testing.T) {
	client := &fakeClient{err: errors.New("connection refused")}
	gen := NewGenerator(client, testPrompts(t))

	if _, err := gen.Generate(context.Background(), testInfo(), "36", "540"); err == nil {
		t.Fatal("Generate() expected error")
	}
}

func TestGenerateWithOverlay(t *testing.T) {
	tests := []struct {
		name        string
		content     string
		wantErr     bool
		wantScript  string
		wantOverlay string
	}{
		{
			name:        "plainJSON",
			content:     `{"script":"A","overlay":"B"}`,
			wantScript:  "A",
			wantOverlay: "B",
		},
		{
			name:        "markdownWrapped",
			content:     "```json\n{\"script\":\"A\",\"overlay\":\"B\"}\n```",
			wantScript:  "A",
			wantOverlay: "B",
		},
		{
			name:        "overlayMissingFallsBackToProductName",
			content:     `{"script":"A"}`,
			wantScript:  "A",
			wantOverlay: "Áo thun nam",
		},
		{
			name:    "scriptUnrecoverable",
			content: "Không có JSON ở đây.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &fakeClient{content: tt.content}
			gen := NewGenerator(client, testPrompts(t))

			result, err := gen.GenerateWithOverlay(context.Background(), testInfo(), "36", "540")

			if (err != nil) != tt.wantErr {
				t.Fatalf("GenerateWithOverlay() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				return
			}

			if result.Script != tt.wantScript {
				t.Errorf("Script = %q, want %q", result.Script, tt.wantScript)
			}
			if result.Overlay != tt.wantOverlay {
				t.Errorf("Overlay = %q, want %q", result.Overlay, tt.wantOverlay)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "scripts")
	gen := NewGenerator(&fakeClient{}, testPrompts(t))

	result := &Result{Script: "A", Overlay: "B"}
	if err := gen.Write(result, dir); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	script, err := os.ReadFile(filepath.Join(dir, ScriptFileName))
	if err != nil {
		t.Fatal(err)
	}
	if string(script) != "A" {
		t.Errorf("script file = %q, want A", script)
	}

	overlay, err := os.ReadFile(filepath.Join(dir, OverlayFileName))
	if err != nil {
		t.Fatal(err)
	}
	if string(overlay) != "B" {
		t.Errorf("overlay file = %q, want B", overlay)
	}
}

func TestWriteScriptOnly(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(&fakeClient{}, testPrompts(t))

	if err := gen.Write(&Result{Script: "A"}, dir); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, OverlayFileName)); !os.IsNotExist(err) {
		t.Error("overlay file should not exist for script-only runs")
	}
}

func TestWriteOverwrites(t *testing.T) {
	dir := t.TempDir()
	gen := NewGenerator(&fakeClient{}, testPrompts(t))

	if err := gen.Write(&Result{Script: "first run"}, dir); err != nil {
		t.Fatal(err)
	}
	if err := gen.Write(&Result{Script: "second"}, dir); err != nil {
		t.Fatal(err)
	}

	data, _ := os.ReadFile(filepath.Join(dir, ScriptFileName))
	if string(data) != "second" {
		t.Errorf("script file = %q, want full overwrite", data)
	}
}

package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"shopstory/internal/product"
	"shopstory/internal/script"
	"shopstory/internal/store"
	"shopstory/internal/video"
	"shopstory/pkg/config"
)

type productStore interface {
	Pending(ctx context.Context) ([]store.PendingProduct, error)
	MarkMerged(ctx context.Context, id int64, videoURL string) error
	SetCrawlStatus(ctx context.Context, id int64, status bool) error
}

type scriptGenerator interface {
	GenerateWithOverlay(ctx context.Context, info product.ProductInfo, duration, targetLength string) (*script.Result, error)
	Write(result *script.Result, dir string) error
}

type speechClient interface {
	Synthesize(ctx context.Context, text string) ([]byte, error)
}

type videoUploader interface {
	UploadVideo(ctx context.Context, localPath string, productID int64, productName string) (string, error)
}

// Pipeline runs the whole product-to-video flow for every pending product.
type Pipeline struct {
	cfg        *config.Config
	store      productStore
	generator  scriptGenerator
	speech     speechClient
	processor  *video.Processor
	downloader *video.Downloader
	uploader   videoUploader
}

// Summary is the batch outcome: products are either processed, skipped for
// invalid data, or failed. One product's failure never aborts the batch.
type Summary struct {
	Success int
	Failed  int
	Skipped int
}

func (p *Pipeline) Run(ctx context.Context) (*Summary, error) {
	products, err := p.store.Pending(ctx)
	if err != nil {
		return nil, err
	}

	slog.Info("Found pending products", "count", len(products))
	if len(products) == 0 {
		return &Summary{}, nil
	}

	summary := &Summary{}
	for _, prod := range products {
		if prod.VideoData == nil || len(prod.VideoData.Videos) == 0 {
			slog.Warn("Skipping product with no usable video data", "product_id", prod.ID)
			summary.Skipped++
			continue
		}

		videoURL, err := p.processProduct(ctx, prod.ID, prod.VideoData)
		if err != nil {
			slog.Error("Failed to process product", "product_id", prod.ID, "error", err)
			summary.Failed++
			continue
		}

		if err := p.store.MarkMerged(ctx, prod.ID, videoURL); err != nil {
			slog.Error("Failed to update product status", "product_id", prod.ID, "error", err)
			summary.Failed++
			continue
		}

		slog.Info("Product processed", "product_id", prod.ID, "url", videoURL)
		summary.Success++
	}

	slog.Info("Processing complete",
		"success", summary.Success,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"total", len(products),
	)

	return summary, nil
}

func (p *Pipeline) processProduct(ctx context.Context, id int64, vd *product.VideoData) (string, error) {
	slog.Info("Processing product", "product_id", id, "name", vd.ProductInfo.Name)

	if err := p.resetWorkDirs(); err != nil {
		return "", err
	}

	urls := make([]string, len(vd.Videos))
	for i, v := range vd.Videos {
		urls[i] = v.URL
	}

	slog.Info("Downloading clips...", "count", len(urls))
	if err := p.downloader.Download(ctx, urls, p.cfg.Video.VideosDir); err != nil {
		if errors.Is(err, video.ErrNotFound) {
			slog.Warn("Clips expired, flagging product for re-crawl", "product_id", id)
			if statusErr := p.store.SetCrawlStatus(ctx, id, false); statusErr != nil {
				slog.Error("Failed to reset crawl status", "product_id", id, "error", statusErr)
			}
		}
		return "", err
	}

	merged, err := p.prepareVideo(ctx, len(urls))
	if err != nil {
		return "", err
	}

	duration, err := p.processor.Duration(ctx, merged)
	if err != nil {
		return "", err
	}

	result, err := p.generateTexts(ctx, vd.ProductInfo, duration)
	if err != nil {
		return "", err
	}

	final, err := p.assemble(ctx, merged, result)
	if err != nil {
		return "", err
	}

	slog.Info("Uploading video...", "path", final)
	return p.uploader.UploadVideo(ctx, final, id, vd.ProductInfo.Name)
}

// prepareVideo trims every downloaded clip and merges them into one file.
func (p *Pipeline) prepareVideo(ctx context.Context, count int) (string, error) {
	slog.Info("Trimming clips...")
	trimmed := make([]string, count)
	for i := 0; i < count; i++ {
		input := filepath.Join(p.cfg.Video.VideosDir, fmt.Sprintf("video_%d.mp4", i))
		output := filepath.Join(p.cfg.Video.VideosDir, fmt.Sprintf("trimmed_%d.mp4", i))
		if err := p.processor.Trim(ctx, input, output); err != nil {
			return "", err
		}
		trimmed[i] = output
	}

	slog.Info("Merging clips...")
	merged := filepath.Join(p.cfg.Video.OutputDir, "merged_temp.mp4")
	if err := p.processor.Merge(ctx, trimmed, merged); err != nil {
		return "", err
	}

	return merged, nil
}

func (p *Pipeline) generateTexts(ctx context.Context, info product.ProductInfo, duration float64) (*script.Result, error) {
	targetLength := int(duration * p.cfg.Content.CharsPerSecond)
	slog.Info("Generating script...",
		"duration", duration,
		"target_length", targetLength,
	)

	result, err := p.generator.GenerateWithOverlay(ctx, info,
		strconv.FormatFloat(duration, 'f', -1, 64),
		strconv.Itoa(targetLength),
	)
	if err != nil {
		return nil, err
	}

	if err := p.generator.Write(result, p.cfg.Video.ScriptsDir); err != nil {
		return nil, err
	}

	return result, nil
}

// assemble voices the script, muxes it over the merged video and burns in
// the caption.
func (p *Pipeline) assemble(ctx context.Context, merged string, result *script.Result) (string, error) {
	slog.Info("Generating voice-over...", "length", len([]rune(result.Script)))
	audio, err := p.speech.Synthesize(ctx, result.Script)
	if err != nil {
		return "", err
	}

	audioPath := filepath.Join(p.cfg.Video.OutputDir, "voiceover.wav")
	if err := os.WriteFile(audioPath, audio, 0644); err != nil {
		return "", fmt.Errorf("save voice-over: %w", err)
	}

	withAudio := filepath.Join(p.cfg.Video.OutputDir, "merged_with_audio.mp4")
	if err := p.processor.MuxAudio(ctx, merged, audioPath, withAudio); err != nil {
		return "", err
	}

	slog.Info("Burning caption...", "caption", result.Overlay)
	final := filepath.Join(p.cfg.Video.OutputDir, "final_merged_video.mp4")
	if err := p.processor.BurnCaption(ctx, withAudio, result.Overlay, final); err != nil {
		return "", err
	}

	return final, nil
}

func (p *Pipeline) resetWorkDirs() error {
	for _, dir := range []string{p.cfg.Video.VideosDir, p.cfg.Video.OutputDir, p.cfg.Video.ScriptsDir} {
		if err := os.RemoveAll(dir); err != nil {
			return fmt.Errorf("clean %s: %w", dir, err)
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create %s: %w", dir, err)
		}
	}
	return nil
}

package app

import (
	"context"
	"fmt"

	"shopstory/internal/llm"
	"shopstory/internal/script"
	"shopstory/internal/storage"
	"shopstory/internal/store"
	"shopstory/internal/tts"
	"shopstory/internal/video"
	"shopstory/pkg/config"
	"shopstory/pkg/prompts"
)

// NewLLMClient picks the generation backend from config.
func NewLLMClient(cfg *config.Config) (llm.Client, error) {
	switch cfg.LLM.Provider {
	case "groq":
		return llm.NewGroqClient(cfg.GroqAPIKey, cfg.LLM.Model)
	case "huggingface":
		return llm.NewHuggingFaceClient(cfg.HuggingFaceAPIKey, cfg.LLM.Endpoint, cfg.LLM.Model), nil
	default:
		return nil, fmt.Errorf("unknown llm provider: %s", cfg.LLM.Provider)
	}
}

// BuildPipeline wires every stage of the batch pipeline from config.
func BuildPipeline(ctx context.Context, cfg *config.Config) (*Pipeline, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.GCSBucket == "" {
		return nil, fmt.Errorf("GCS_BUCKET is required")
	}

	st, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	client, err := NewLLMClient(cfg)
	if err != nil {
		st.Close()
		return nil, err
	}

	p, err := prompts.Load()
	if err != nil {
		st.Close()
		return nil, err
	}

	uploader, err := storage.NewUploader(ctx, cfg.GCSBucket, cfg.Upload.Prefix, cfg.Upload.PublicBaseURL)
	if err != nil {
		st.Close()
		return nil, err
	}

	return &Pipeline{
		cfg:        cfg,
		store:      st,
		generator:  script.NewGenerator(client, p),
		speech:     tts.NewZaloClient(cfg.ZaloAPIKey, tts.Options{Endpoint: cfg.TTS.Endpoint, Speaker: cfg.TTS.Speaker, Speed: cfg.TTS.Speed}),
		processor:  video.NewProcessor(cfg.Video.TrimSeconds),
		downloader: video.NewDownloader(nil),
		uploader:   uploader,
	}, nil
}

// Close releases the pipeline's connections.
func (p *Pipeline) Close() {
	if s, ok := p.store.(*store.Store); ok {
		s.Close()
	}
	if u, ok := p.uploader.(*storage.Uploader); ok {
		_ = u.Close()
	}
}

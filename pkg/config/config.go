package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultConfigPath     = "config.yaml"
	defaultVideosDir      = "./videos"
	defaultOutputDir      = "./output"
	defaultScriptsDir     = "./scripts"
	defaultEndpoint       = "https://router.huggingface.co/v1/chat/completions"
	defaultModel          = "deepseek-ai/DeepSeek-V3.2-Exp"
	defaultProvider       = "huggingface"
	defaultCharsPerSecond = 15.0
	defaultTrimSeconds    = 2.0
	defaultZaloEndpoint   = "https://api.zalo.ai/v1/tts/synthesize"
	defaultZaloSpeaker    = "1"
	defaultZaloSpeed      = 1.0
	defaultUploadPrefix   = "merged_videos"
)

type Config struct {
	HuggingFaceAPIKey string
	GroqAPIKey        string
	ZaloAPIKey        string
	DatabaseURL       string
	GCSBucket         string

	// Taken verbatim from the environment and interpolated into the prompt
	// as-is; the pipeline sets them per product, operators may also export
	// them by hand for a one-off run.
	VideoDuration      string
	TargetScriptLength string

	LLM     LLMConfig     `yaml:"llm"`
	Content ContentConfig `yaml:"content"`
	Video   VideoConfig   `yaml:"video"`
	TTS     TTSConfig     `yaml:"tts"`
	Upload  UploadConfig  `yaml:"upload"`
}

type LLMConfig struct {
	Provider string `yaml:"provider"` // "huggingface" or "groq"
	Endpoint string `yaml:"endpoint"`
	Model    string `yaml:"model"`
}

type ContentConfig struct {
	CharsPerSecond float64 `yaml:"chars_per_second"`
}

type VideoConfig struct {
	VideosDir   string  `yaml:"videos_dir"`
	OutputDir   string  `yaml:"output_dir"`
	ScriptsDir  string  `yaml:"scripts_dir"`
	TrimSeconds float64 `yaml:"trim_seconds"`
}

type TTSConfig struct {
	Endpoint string  `yaml:"endpoint"`
	Speaker  string  `yaml:"speaker"`
	Speed    float64 `yaml:"speed"`
}

type UploadConfig struct {
	Prefix        string `yaml:"prefix"`
	PublicBaseURL string `yaml:"public_base_url"`
}

func Load(ctx context.Context) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		slog.Warn("No .env file found, relying on environment variables")
	}

	cfg := &Config{
		HuggingFaceAPIKey:  os.Getenv("HUGGINGFACE_API_KEY"),
		GroqAPIKey:         os.Getenv("GROQ_API_KEY"),
		ZaloAPIKey:         os.Getenv("ZALO_API_KEY"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		GCSBucket:          os.Getenv("GCS_BUCKET"),
		VideoDuration:      os.Getenv("VIDEO_DURATION"),
		TargetScriptLength: os.Getenv("TARGET_SCRIPT_LENGTH"),
	}

	loadYAMLConfig(cfg)
	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := resolveSecrets(ctx, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func loadYAMLConfig(cfg *Config) {
	data, err := os.ReadFile(defaultConfigPath)
	if err != nil {
		slog.Debug("No config.yaml found, using defaults")
		return
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		slog.Error("Failed to parse config.yaml", "error", err)
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HUGGINGFACE_ENDPOINT"); v != "" {
		cfg.LLM.Endpoint = v
	}
	if v := os.Getenv("HUGGINGFACE_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
}

func applyDefaults(cfg *Config) {
	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = defaultProvider
	}
	if cfg.LLM.Endpoint == "" {
		cfg.LLM.Endpoint = defaultEndpoint
	}
	if cfg.LLM.Model == "" {
		cfg.LLM.Model = defaultModel
	}
	if cfg.Content.CharsPerSecond == 0 {
		cfg.Content.CharsPerSecond = defaultCharsPerSecond
	}
	if cfg.Video.VideosDir == "" {
		cfg.Video.VideosDir = defaultVideosDir
	}
	if cfg.Video.OutputDir == "" {
		cfg.Video.OutputDir = defaultOutputDir
	}
	if cfg.Video.ScriptsDir == "" {
		cfg.Video.ScriptsDir = defaultScriptsDir
	}
	if cfg.Video.TrimSeconds == 0 {
		cfg.Video.TrimSeconds = defaultTrimSeconds
	}
	if cfg.TTS.Endpoint == "" {
		cfg.TTS.Endpoint = defaultZaloEndpoint
	}
	if cfg.TTS.Speaker == "" {
		cfg.TTS.Speaker = defaultZaloSpeaker
	}
	if cfg.TTS.Speed == 0 {
		cfg.TTS.Speed = defaultZaloSpeed
	}
	if cfg.Upload.Prefix == "" {
		cfg.Upload.Prefix = defaultUploadPrefix
	}
}

// resolveSecrets fills the LLM API key from Secret Manager when the
// environment points at a secret version instead of carrying the key itself.
func resolveSecrets(ctx context.Context, cfg *Config) error {
	secretName := os.Getenv("HUGGINGFACE_API_KEY_SECRET")
	if secretName == "" || cfg.HuggingFaceAPIKey != "" {
		return nil
	}

	client, err := secretmanager.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("create secret manager client: %w", err)
	}
	defer func() { _ = client.Close() }()

	resp, err := client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{
		Name: secretName,
	})
	if err != nil {
		return fmt.Errorf("access secret %s: %w", secretName, err)
	}

	cfg.HuggingFaceAPIKey = string(resp.Payload.Data)
	return nil
}

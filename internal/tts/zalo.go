package tts

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTimeout = 60 * time.Second

	// The synthesize call returns a URL before the audio file exists; the
	// download is polled until the CDN serves it.
	downloadAttempts = 10
	downloadDelay    = 2 * time.Second
)

// ZaloClient synthesizes Vietnamese speech through the Zalo AI TTS API.
type ZaloClient struct {
	apiKey     string
	endpoint   string
	speaker    string
	speed      float64
	httpClient *http.Client
	pollDelay  time.Duration
}

type Options struct {
	Endpoint string
	Speaker  string
	Speed    float64
}

type synthesizeResponse struct {
	ErrorCode    int    `json:"error_code"`
	ErrorMessage string `json:"error_message"`
	Data         struct {
		URL string `json:"url"`
	} `json:"data"`
}

func NewZaloClient(apiKey string, opts Options) *ZaloClient {
	return &ZaloClient{
		apiKey:   apiKey,
		endpoint: opts.Endpoint,
		speaker:  opts.Speaker,
		speed:    opts.Speed,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		pollDelay: downloadDelay,
	}
}

// Synthesize turns text into audio and returns the raw bytes.
func (c *ZaloClient) Synthesize(ctx context.Context, text string) ([]byte, error) {
	audioURL, err := c.requestSynthesis(ctx, text)
	if err != nil {
		return nil, err
	}

	return c.downloadAudio(ctx, audioURL)
}

func (c *ZaloClient) requestSynthesis(ctx context.Context, text string) (string, error) {
	form := url.Values{}
	form.Set("input", text)
	form.Set("speaker_id", c.speaker)
	form.Set("speed", strconv.FormatFloat(c.speed, 'f', -1, 64))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("apikey", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call tts api: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("tts api error: %s", string(body))
	}

	var parsed synthesizeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	if parsed.ErrorCode != 0 {
		return "", fmt.Errorf("tts error %d: %s", parsed.ErrorCode, parsed.ErrorMessage)
	}
	if parsed.Data.URL == "" {
		return "", fmt.Errorf("tts response missing audio url: %s", string(body))
	}

	return parsed.Data.URL, nil
}

func (c *ZaloClient) downloadAudio(ctx context.Context, audioURL string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt < downloadAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.pollDelay):
			}
		}

		data, err := c.fetch(ctx, audioURL)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("audio not ready after %d attempts: %w", downloadAttempts, lastErr)
}

func (c *ZaloClient) fetch(ctx context.Context, audioURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, audioURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty audio file")
	}

	return data, nil
}

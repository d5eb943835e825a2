package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultTimeout = 60 * time.Second
	roleUser       = "user"

	// Fixed generation parameters, identical for every request.
	maxTokens   = 1000
	temperature = 0.7
)

// HuggingFaceClient talks to an OpenAI-compatible chat-completions endpoint,
// by default the HuggingFace inference router.
type HuggingFaceClient struct {
	apiKey     string
	endpoint   string
	model      string
	httpClient *http.Client
}

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature float64   `json:"temperature"`
}

type response struct {
	Choices []choice  `json:"choices"`
	Error   *apiError `json:"error,omitempty"`
}

type choice struct {
	Message Message `json:"message"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func NewHuggingFaceClient(apiKey, endpoint, model string) *HuggingFaceClient {
	return &HuggingFaceClient{
		apiKey:   apiKey,
		endpoint: endpoint,
		model:    model,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
	}
}

func (c *HuggingFaceClient) Generate(ctx context.Context, prompt string) (string, error) {
	reqBody := request{
		Model:       c.model,
		Messages:    []Message{{Role: roleUser, Content: prompt}},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	body, err := c.doRequest(ctx, data)
	if err != nil {
		return "", err
	}

	return parseContent(body)
}

func (c *HuggingFaceClient) doRequest(ctx context.Context, data []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(data))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call api: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("api error: %s", string(body))
	}

	return body, nil
}

func parseContent(body []byte) (string, error) {
	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}

	if resp.Error != nil {
		return "", fmt.Errorf("api error: %s", resp.Error.Message)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		// Surface the raw body so the operator can see what came back.
		return "", fmt.Errorf("%w, raw response: %s", ErrNoContent, string(body))
	}

	return resp.Choices[0].Message.Content, nil
}

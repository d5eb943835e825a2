package llm

import (
	"context"
	"fmt"

	"github.com/conneroisu/groq-go"
)

// GroqClient is the alternate provider for runs where the HuggingFace router
// is unavailable. Same one-shot contract, same fixed parameters.
type GroqClient struct {
	client *groq.Client
	model  groq.ChatModel
}

func NewGroqClient(apiKey, model string) (*GroqClient, error) {
	client, err := groq.NewClient(apiKey)
	if err != nil {
		return nil, fmt.Errorf("create groq client: %w", err)
	}

	return &GroqClient{
		client: client,
		model:  groq.ChatModel(model),
	}, nil
}

func (c *GroqClient) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := c.client.ChatCompletion(ctx, groq.ChatCompletionRequest{
		Model: c.model,
		Messages: []groq.ChatCompletionMessage{
			{Role: groq.RoleUser, Content: prompt},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("call api: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", ErrNoContent
	}

	return resp.Choices[0].Message.Content, nil
}

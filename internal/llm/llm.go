package llm

import (
	"context"
	"errors"
)

// ErrNoContent means the endpoint answered but produced no usable text.
// Callers treat this as fatal and must not write any output.
var ErrNoContent = errors.New("no text generated")

// Client issues a single chat-completion call. Implementations do not retry:
// the generation step is one-shot and human-supervised.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

package ai

import (
	"context"
	"errors"
)

// ErrEmptyResponse indicates the model answered without any text.
var ErrEmptyResponse = errors.New("model returned empty response")

// ErrMissingAPIKey indicates the selected provider has no credentials configured.
var ErrMissingAPIKey = errors.New("model api key is required")

// Generator is a language model that turns a prompt into text. Implementations
// do not retry and do not validate the text they return.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Named is implemented by generators that can report the model they call.
type Named interface {
	Model() string
}

package summarizer

import (
	"context"
	"errors"
)

var (
	// ErrMissingToken is returned when a backend is built without a credential.
	ErrMissingToken = errors.New("API token is missing")
	// ErrEmptyInput is returned by backends that cannot send an empty prompt.
	ErrEmptyInput = errors.New("input is empty")
)

// Input describes the payload for a summary request.
type Input struct {
	// Text contains the original plain text to summarise.
	Text string
	// SourceURL is optional metadata that helps the model reference the origin.
	SourceURL string
}

// Summarizer produces a single summary for a given input text.
type Summarizer interface {
	Summarize(ctx context.Context, input Input) (string, error)
}

// Modeler is implemented by backends that can report which model they call.
type Modeler interface {
	Model() string
}

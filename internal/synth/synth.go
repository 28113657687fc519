// Package synth provides the speech synthesis backends used by the
// generation pipeline. Every backend returns raw 16-bit little-endian PCM,
// mono at 24 kHz, for one segment of text.
package synth

import (
	"context"
	"errors"
	"fmt"
)

// Request is one synthesis call.
type Request struct {
	Text  string
	Voice string // service voice identifier

	// Instruction steers delivery. Nil means no instruction at all, which is
	// not the same as an empty one.
	Instruction *string
}

// Synthesizer turns one segment of text into raw PCM.
type Synthesizer interface {
	Synthesize(ctx context.Context, req Request) ([]byte, error)
}

// SynthesizerFunc adapts a function to the Synthesizer interface.
type SynthesizerFunc func(ctx context.Context, req Request) ([]byte, error)

func (f SynthesizerFunc) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	return f(ctx, req)
}

var (
	// ErrNoAudio is returned when the service answers without an audio payload.
	ErrNoAudio = errors.New("no audio data returned from the model")

	// ErrMissingAPIKey is returned when a remote backend has no credentials.
	ErrMissingAPIKey = errors.New("missing API key")
)

// APIError is a non-2xx response from a remote synthesis service.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("synthesis service returned status %d: %s", e.StatusCode, e.Body)
}

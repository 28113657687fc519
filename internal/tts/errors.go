package tts

import (
	"errors"
	"fmt"
	"strings"

	"github.com/example/go-ttsr/internal/text"
)

var (
	// ErrValidation marks input rejected before any synthesis call.
	ErrValidation = errors.New("invalid generation request")

	// ErrService marks a synthesis call that failed or returned no audio.
	ErrService = errors.New("synthesis service failure")

	// ErrCancelled is the result of a generation that was cancelled or
	// superseded by a newer one. It is never shown to the user.
	ErrCancelled = errors.New("generation cancelled")
)

// SegmentError reports which segment aborted a generation.
type SegmentError struct {
	Index int // 1-based
	Total int
	Err   error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment %d/%d: %v", e.Index, e.Total, e.Err)
}

func (e *SegmentError) Unwrap() error { return e.Err }

// UserMessage turns a generation error into the text shown to the user.
// Cancellation yields an empty message.
func UserMessage(err error) string {
	switch {
	case err == nil, errors.Is(err, ErrCancelled):
		return ""
	case errors.Is(err, text.ErrEmptyText):
		return "Please enter some text to generate audio."
	case errors.Is(err, ErrValidation):
		return strings.TrimPrefix(err.Error(), ErrValidation.Error()+": ")
	}

	msg := err.Error()
	if strings.Contains(msg, "tokens") {
		return "Text is too complex for one segment. Try simpler text."
	}

	return "Failed to generate speech. " + msg
}

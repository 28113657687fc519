// Package progress delivers generation progress events to observers.
package progress

import (
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Event is one progress report from a generation.
type Event struct {
	GenerationID string    `json:"generation_id"`
	Epoch        uint64    `json:"epoch"`
	State        string    `json:"state"`
	Message      string    `json:"message,omitempty"`
	Segment      int       `json:"segment,omitempty"` // 1-based, 0 outside the segment loop
	Total        int       `json:"total,omitempty"`
	Time         time.Time `json:"time"`
}

// NewGenerationID returns a fresh identifier for a generation.
func NewGenerationID() string {
	return uuid.NewString()
}

// Sink receives progress events. Report must not block for long; it is
// called from the generation goroutine.
type Sink interface {
	Report(Event)
}

// Func adapts a function to the Sink interface.
type Func func(Event)

func (f Func) Report(e Event) { f(e) }

// Discard drops every event.
var Discard Sink = Func(func(Event) {})

// Multi fans events out to several sinks in order.
type Multi []Sink

func (m Multi) Report(e Event) {
	for _, s := range m {
		if s != nil {
			s.Report(e)
		}
	}
}

// LogSink writes events to a structured logger.
type LogSink struct {
	Logger *slog.Logger
}

// NewLogSink returns a LogSink tagged with the progress component.
func NewLogSink(logger *slog.Logger) *LogSink {
	if logger == nil {
		logger = slog.Default()
	}

	return &LogSink{Logger: logger.With("component", "progress")}
}

func (s *LogSink) Report(e Event) {
	attrs := []any{
		"generation_id", e.GenerationID,
		"epoch", e.Epoch,
		"state", e.State,
	}
	if e.Total > 0 {
		attrs = append(attrs, "segment", e.Segment, "total", e.Total)
	}

	msg := e.Message
	if msg == "" {
		msg = "generation " + e.State
	}

	s.Logger.Info(msg, attrs...)
}

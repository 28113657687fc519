// Package tts runs long-form generations: it segments text, synthesizes the
// segments one after another, and assembles a single recording.
//
// An Orchestrator owns a generation epoch. Every Start and Cancel bumps it,
// and a generation only publishes its recording or error while its epoch is
// still current, so superseded work can never overwrite newer results.
package tts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/go-ttsr/internal/audio"
	"github.com/example/go-ttsr/internal/progress"
	"github.com/example/go-ttsr/internal/synth"
	"github.com/example/go-ttsr/internal/text"
	"github.com/example/go-ttsr/internal/voice"
)

const (
	DefaultMaxTextChars        = 50000
	DefaultMaxDescriptionChars = 7000
)

// State is the lifecycle state of the orchestrator.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
	StateFailed    State = "failed"
)

// Stopper halts local playback. Starting a generation stops playback of the
// previous recording.
type Stopper interface {
	Stop()
}

// Request describes what to generate. A nil Voice uses the selected voice.
type Request struct {
	Voice voice.Voice
	Style voice.Style
}

// Recording is an assembled result together with the voice that spoke it.
type Recording struct {
	Buffer    *audio.SampleBuffer
	VoiceName string
	Epoch     uint64
	CreatedAt time.Time
}

// Status is a snapshot of the orchestrator.
type Status struct {
	State        State
	Message      string // progress text while running, user-facing error after a failure
	Err          error  // last generation error; nil after cancellation
	Epoch        uint64
	GenerationID string
	Segment      int
	Total        int
}

// Options configures an Orchestrator.
type Options struct {
	Synthesizer         synth.Synthesizer
	Sink                progress.Sink
	Stopper             Stopper
	Logger              *slog.Logger
	SegmentChars        int
	MaxTextChars        int
	MaxDescriptionChars int
}

// Orchestrator serializes generations. It is safe for concurrent use.
type Orchestrator struct {
	synth   synth.Synthesizer
	sink    progress.Sink
	stopper Stopper
	logger  *slog.Logger
	chunk   int
	maxText int
	maxDesc int
	now     func() time.Time

	// reportMu orders a generation's running events before its cancelled
	// event. It is never acquired while holding mu.
	reportMu sync.Mutex

	mu        sync.Mutex
	epoch     uint64
	state     State
	message   string
	err       error
	segment   int
	total     int
	current   *Generation
	recording *Recording
	selected  voice.Voice
}

// New returns an idle orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.Synthesizer == nil {
		return nil, errors.New("tts: synthesizer is required")
	}

	o := &Orchestrator{
		synth:    opts.Synthesizer,
		sink:     opts.Sink,
		stopper:  opts.Stopper,
		logger:   opts.Logger,
		chunk:    opts.SegmentChars,
		maxText:  opts.MaxTextChars,
		maxDesc:  opts.MaxDescriptionChars,
		now:      time.Now,
		state:    StateIdle,
		selected: voice.Default(),
	}
	if o.sink == nil {
		o.sink = progress.Discard
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	o.logger = o.logger.With("component", "orchestrator")
	if o.chunk == 0 {
		o.chunk = text.DefaultSegmentChars
	}
	if o.maxText == 0 {
		o.maxText = DefaultMaxTextChars
	}
	if o.maxDesc == 0 {
		o.maxDesc = DefaultMaxDescriptionChars
	}

	return o, nil
}

// Generation is one submitted request. Its result is delivered once.
type Generation struct {
	id     string
	epoch  uint64
	voice  string
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	recording *audio.SampleBuffer
	err       error
}

func (g *Generation) ID() string { return g.id }

func (g *Generation) Epoch() uint64 { return g.epoch }

// VoiceName is the display name of the voice the generation speaks with.
func (g *Generation) VoiceName() string { return g.voice }

// Done is closed when the generation has finished.
func (g *Generation) Done() <-chan struct{} { return g.done }

// Wait blocks until the generation finishes or ctx is done. Cancelled and
// superseded generations return ErrCancelled.
func (g *Generation) Wait(ctx context.Context) (*audio.SampleBuffer, error) {
	select {
	case <-g.done:
		return g.recording, g.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *Generation) finish(rec *audio.SampleBuffer, err error) {
	g.recording, g.err = rec, err
	g.cancel()
	close(g.done)
}

// Start validates input and begins a new generation, superseding any
// generation in flight. Validation failures return an error wrapping
// ErrValidation and leave the orchestrator untouched.
func (o *Orchestrator) Start(input string, req Request) (*Generation, error) {
	normalized, err := text.Normalize(input)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	err = text.CheckLength(normalized, o.maxText)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	err = text.CheckLength(req.Style.Description, o.maxDesc)
	if err != nil {
		return nil, fmt.Errorf("%w: description: %w", ErrValidation, err)
	}

	err = req.Style.Validate()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidation, err)
	}

	segments := text.SegmentBySentence(normalized, o.chunk)
	if len(segments) == 0 {
		return nil, fmt.Errorf("%w: %w", ErrValidation, text.ErrEmptyText)
	}

	o.mu.Lock()
	v := req.Voice
	if v == nil {
		v = o.selected
	}

	serviceVoice, clause := voice.Resolve(v)
	instruction := voice.BuildInstruction(req.Style, clause)

	o.epoch++
	ctx, cancel := context.WithCancel(context.Background())
	gen := &Generation{
		id:     progress.NewGenerationID(),
		epoch:  o.epoch,
		voice:  v.Name(),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}

	if o.current != nil {
		o.current.cancel()
	}
	o.current = gen
	o.recording = nil
	o.state = StateRunning
	o.message = "Initializing..."
	o.err = nil
	o.segment, o.total = 0, len(segments)
	o.mu.Unlock()

	if o.stopper != nil {
		o.stopper.Stop()
	}

	o.reportRunning(gen, "Initializing...", 0, len(segments))
	o.logger.Info("generation started",
		"epoch", gen.epoch,
		"generation_id", gen.id,
		"voice", serviceVoice,
		"segments", len(segments),
	)

	go o.run(gen, segments, serviceVoice, instruction)

	return gen, nil
}

func (o *Orchestrator) run(gen *Generation, segments []text.Segment, serviceVoice string, instruction *string) {
	start := time.Now()
	total := len(segments)
	buffers := make([]*audio.SampleBuffer, 0, total)

	for _, seg := range segments {
		msg := fmt.Sprintf("Generating part %d/%d...", seg.Index, total)
		if !o.advance(gen, msg, seg.Index) {
			gen.finish(nil, ErrCancelled)
			return
		}
		o.reportRunning(gen, msg, seg.Index, total)

		segStart := time.Now()

		pcm, err := o.synth.Synthesize(gen.ctx, synth.Request{
			Text:        seg.Text,
			Voice:       serviceVoice,
			Instruction: instruction,
		})
		if err == nil && len(pcm) == 0 {
			err = synth.ErrNoAudio
		}
		if err != nil {
			o.fail(gen, &SegmentError{Index: seg.Index, Total: total, Err: fmt.Errorf("%w: %w", ErrService, err)})
			return
		}

		buf, err := audio.DecodePCM16(pcm, audio.ServiceSampleRate, audio.ServiceChannels)
		if err != nil {
			o.fail(gen, &SegmentError{Index: seg.Index, Total: total, Err: err})
			return
		}
		buffers = append(buffers, buf)

		o.logger.Debug("segment done",
			"epoch", gen.epoch,
			"segment", seg.Index,
			"total", total,
			"duration_ms", time.Since(segStart).Milliseconds(),
		)
	}

	recording := audio.Concatenate(buffers)

	o.mu.Lock()
	if o.epoch != gen.epoch {
		o.mu.Unlock()
		gen.finish(nil, ErrCancelled)
		return
	}
	o.recording = &Recording{
		Buffer:    recording,
		VoiceName: gen.voice,
		Epoch:     gen.epoch,
		CreatedAt: o.now(),
	}
	o.state = StateCompleted
	o.message = ""
	o.current = nil
	o.mu.Unlock()

	o.report(gen, StateCompleted, "", total, total)
	o.logger.Info("generation completed",
		"epoch", gen.epoch,
		"segments", total,
		"audio_ms", recording.Duration().Milliseconds(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	gen.finish(recording, nil)
}

// advance records progress if gen is still current. It is the cancellation
// point checked before every segment.
func (o *Orchestrator) advance(gen *Generation, msg string, segment int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.epoch != gen.epoch {
		return false
	}
	o.message = msg
	o.segment = segment

	return true
}

// fail publishes err if gen is still current; stale failures are dropped.
func (o *Orchestrator) fail(gen *Generation, err error) {
	o.mu.Lock()
	if o.epoch != gen.epoch {
		o.mu.Unlock()
		gen.finish(nil, ErrCancelled)
		return
	}
	o.state = StateFailed
	o.err = err
	o.message = UserMessage(err)
	o.current = nil
	o.mu.Unlock()

	o.report(gen, StateFailed, UserMessage(err), 0, 0)
	o.logger.Error("generation failed", "epoch", gen.epoch, "error", err)

	gen.finish(nil, err)
}

// Cancel invalidates the generation in flight, if any, and returns the
// orchestrator to idle. Calling it while idle still bumps the epoch.
func (o *Orchestrator) Cancel() {
	o.mu.Lock()
	gen := o.cancelLocked()
	o.mu.Unlock()

	o.cancelled(gen)
}

// CancelGeneration cancels gen only if it is still the generation in flight.
// It reports whether gen was cancelled; a superseded or finished generation
// leaves the orchestrator untouched.
func (o *Orchestrator) CancelGeneration(gen *Generation) bool {
	if gen == nil {
		return false
	}

	o.mu.Lock()
	if o.current != gen {
		o.mu.Unlock()
		return false
	}
	o.cancelLocked()
	o.mu.Unlock()

	o.cancelled(gen)

	return true
}

// cancelLocked bumps the epoch and resets to idle. It returns the generation
// that was in flight, if any. o.mu must be held.
func (o *Orchestrator) cancelLocked() *Generation {
	o.epoch++
	gen := o.current
	o.current = nil
	o.state = StateIdle
	o.message = ""
	o.err = nil
	o.segment, o.total = 0, 0

	return gen
}

func (o *Orchestrator) cancelled(gen *Generation) {
	if gen == nil {
		return
	}

	gen.cancel()

	o.reportMu.Lock()
	o.report(gen, StateCancelled, "", 0, 0)
	o.reportMu.Unlock()

	o.logger.Info("generation cancelled", "epoch", gen.epoch)
}

// reportRunning reports a running event for gen unless gen has been
// superseded, so no running event follows its cancelled event.
func (o *Orchestrator) reportRunning(gen *Generation, msg string, segment, total int) {
	o.reportMu.Lock()
	defer o.reportMu.Unlock()

	if o.Epoch() != gen.epoch {
		return
	}
	o.report(gen, StateRunning, msg, segment, total)
}

// SelectVoice changes the voice used by requests without one. Like choosing
// a voice in the UI, it cancels a running generation and stops playback.
func (o *Orchestrator) SelectVoice(v voice.Voice) {
	if v == nil {
		return
	}

	var gen *Generation

	o.mu.Lock()
	o.selected = v
	if o.state == StateRunning {
		gen = o.cancelLocked()
	}
	o.mu.Unlock()

	o.cancelled(gen)
	if o.stopper != nil {
		o.stopper.Stop()
	}
}

// Selected returns the voice used by requests without one.
func (o *Orchestrator) Selected() voice.Voice {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.selected
}

// Status returns a snapshot of the current state.
func (o *Orchestrator) Status() Status {
	o.mu.Lock()
	defer o.mu.Unlock()

	st := Status{
		State:   o.state,
		Message: o.message,
		Err:     o.err,
		Epoch:   o.epoch,
		Segment: o.segment,
		Total:   o.total,
	}
	if o.current != nil {
		st.GenerationID = o.current.id
	}

	return st
}

// Epoch returns the current generation epoch.
func (o *Orchestrator) Epoch() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.epoch
}

// Recording returns the last assembled recording, or nil.
func (o *Orchestrator) Recording() *Recording {
	o.mu.Lock()
	defer o.mu.Unlock()

	return o.recording
}

// Discard drops the assembled recording and stops its playback.
func (o *Orchestrator) Discard() {
	o.mu.Lock()
	o.recording = nil
	if o.state == StateCompleted {
		o.state = StateIdle
	}
	o.mu.Unlock()

	if o.stopper != nil {
		o.stopper.Stop()
	}
}

// DismissError clears a failure so the status reads idle again.
func (o *Orchestrator) DismissError() {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.state == StateFailed {
		o.state = StateIdle
	}
	o.err = nil
	o.message = ""
}

func (o *Orchestrator) report(gen *Generation, state State, msg string, segment, total int) {
	o.sink.Report(progress.Event{
		GenerationID: gen.id,
		Epoch:        gen.epoch,
		State:        string(state),
		Message:      msg,
		Segment:      segment,
		Total:        total,
		Time:         o.now(),
	})
}

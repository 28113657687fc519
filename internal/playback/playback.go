// Package playback plays an assembled recording through an external audio
// command and exposes a pull-based playback clock.
package playback

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sync"
	"time"

	"github.com/mattn/go-shellwords"

	"github.com/example/go-ttsr/internal/audio"
)

// DefaultCommand reads a WAV stream on stdin and plays it without a window.
const DefaultCommand = "ffplay -nodisp -autoexit -loglevel quiet -"

// Player plays one recording at a time.
type Player interface {
	// Play starts playback of buf, replacing any current playback, and
	// returns once the player is running.
	Play(ctx context.Context, buf *audio.SampleBuffer) error
	// Stop halts playback. It is safe to call when nothing is playing.
	Stop()
	// Elapsed is the playback position, capped at the recording duration.
	Elapsed() time.Duration
	Playing() bool
}

// CommandPlayer pipes the recording as WAV into an external command.
type CommandPlayer struct {
	args   []string
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	cancel   context.CancelFunc
	done     chan struct{}
	started  time.Time
	duration time.Duration
	frozen   time.Duration // position once playback is no longer running
	playing  bool
}

// NewCommandPlayer parses command with shell quoting rules. An empty command
// selects DefaultCommand.
func NewCommandPlayer(command string, logger *slog.Logger) (*CommandPlayer, error) {
	if command == "" {
		command = DefaultCommand
	}
	if logger == nil {
		logger = slog.Default()
	}

	args, err := shellwords.NewParser().Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parse playback command: %w", err)
	}
	if len(args) == 0 {
		return nil, errors.New("playback command empty")
	}

	return &CommandPlayer{
		args:   args,
		logger: logger.With("component", "playback"),
		now:    time.Now,
	}, nil
}

func (p *CommandPlayer) Play(ctx context.Context, buf *audio.SampleBuffer) error {
	if buf == nil {
		return errors.New("nothing to play")
	}

	wavData, err := audio.EncodeWAV(buf)
	if err != nil {
		return fmt.Errorf("encode recording: %w", err)
	}

	p.Stop()

	runCtx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(runCtx, p.args[0], p.args[1:]...)
	cmd.Stdin = bytes.NewReader(wavData)

	err = cmd.Start()
	if err != nil {
		cancel()
		return fmt.Errorf("start playback command %q: %w", p.args[0], err)
	}

	done := make(chan struct{})

	p.mu.Lock()
	p.cancel = cancel
	p.done = done
	p.started = p.now()
	p.duration = buf.Duration()
	p.frozen = 0
	p.playing = true
	p.mu.Unlock()

	go func() {
		waitErr := cmd.Wait()

		p.mu.Lock()
		if p.done == done {
			if p.playing {
				p.frozen = p.duration
			}
			p.playing = false
			p.cancel = nil
		}
		p.mu.Unlock()

		cancel()
		if waitErr != nil && runCtx.Err() == nil {
			p.logger.Warn("playback command failed", "error", waitErr)
		}
		close(done)
	}()

	p.logger.Debug("playback started", "duration_ms", buf.Duration().Milliseconds())

	return nil
}

// Wait blocks until the current playback ends or ctx is done.
func (p *CommandPlayer) Wait(ctx context.Context) error {
	p.mu.Lock()
	done := p.done
	p.mu.Unlock()

	if done == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *CommandPlayer) Stop() {
	p.mu.Lock()
	cancel := p.cancel
	if p.playing {
		p.frozen = p.elapsedLocked()
	}
	p.playing = false
	p.cancel = nil
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

func (p *CommandPlayer) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.playing {
		return p.frozen
	}

	return p.elapsedLocked()
}

func (p *CommandPlayer) elapsedLocked() time.Duration {
	elapsed := p.now().Sub(p.started)
	if elapsed > p.duration {
		return p.duration
	}

	return elapsed
}

func (p *CommandPlayer) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.playing
}

// Program is the executable the player runs.
func (p *CommandPlayer) Program() string { return p.args[0] }

// FormatClock renders d as mm:ss, truncating fractional seconds.
func FormatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}

	total := int(d / time.Second)

	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

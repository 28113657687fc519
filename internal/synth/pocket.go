package synth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	pockettts "github.com/MeKo-Christian/go-call-pocket-tts"

	"github.com/example/go-ttsr/internal/audio"
)

// PocketConfig configures the local pocket-tts backend.
type PocketConfig struct {
	ExecutablePath string
	ConfigPath     string
	DefaultVoice   string            // pocket-tts voice used for unmapped service voices
	VoiceMap       map[string]string // service voice ID -> pocket-tts voice or .safetensors path
	Concurrency    int
	Quiet          bool
	LogWriter      io.Writer
}

// PocketClient synthesizes through the pocket-tts CLI. Instructions have no
// equivalent there and are ignored.
type PocketClient struct {
	cfg    PocketConfig
	logger *slog.Logger

	mu      sync.Mutex
	clients map[string]*pockettts.Client

	generate func(ctx context.Context, voice, text string) (*pockettts.WAVResult, error)
}

// NewPocketClient returns a backend that shells out to pocket-tts.
func NewPocketClient(cfg PocketConfig, logger *slog.Logger) *PocketClient {
	if logger == nil {
		logger = slog.Default()
	}

	p := &PocketClient{
		cfg:     cfg,
		logger:  logger.With("component", "pocket-tts"),
		clients: make(map[string]*pockettts.Client),
	}
	p.generate = p.generateCLI

	return p
}

// Preflight reports whether the pocket-tts executable can be located.
func (p *PocketClient) Preflight() error {
	return pockettts.Preflight(p.cfg.ExecutablePath)
}

func (p *PocketClient) voiceFor(serviceVoice string) string {
	if v, ok := p.cfg.VoiceMap[serviceVoice]; ok && v != "" {
		return v
	}

	return p.cfg.DefaultVoice
}

func (p *PocketClient) client(voice string) *pockettts.Client {
	p.mu.Lock()
	defer p.mu.Unlock()

	if c, ok := p.clients[voice]; ok {
		return c
	}

	c := pockettts.NewClient(pockettts.Options{
		Voice:          voice,
		Config:         p.cfg.ConfigPath,
		Quiet:          p.cfg.Quiet,
		ExecutablePath: p.cfg.ExecutablePath,
		LogWriter:      p.cfg.LogWriter,
		Concurrency:    p.cfg.Concurrency,
	})
	p.clients[voice] = c

	return c
}

func (p *PocketClient) generateCLI(ctx context.Context, voice, text string) (*pockettts.WAVResult, error) {
	return p.client(voice).Generate(ctx, text)
}

// Synthesize runs pocket-tts for one segment and strips the WAV container.
func (p *PocketClient) Synthesize(ctx context.Context, req Request) ([]byte, error) {
	if req.Instruction != nil {
		p.logger.Debug("instruction ignored by pocket-tts backend", "chars", len(*req.Instruction))
	}

	voice := p.voiceFor(req.Voice)

	res, err := p.generate(ctx, voice, req.Text)
	if err != nil {
		return nil, fmt.Errorf("pocket-tts generate: %w", err)
	}
	if res == nil || len(res.Data) == 0 {
		return nil, ErrNoAudio
	}

	pcm, rate, channels, err := audio.PCMFromWAV(res.Data)
	if err != nil {
		return nil, fmt.Errorf("pocket-tts output: %w", err)
	}

	if rate != audio.ServiceSampleRate || channels != audio.ServiceChannels {
		return nil, fmt.Errorf("%w: pocket-tts produced %d Hz / %d ch, want %d Hz / %d ch",
			audio.ErrFormatMismatch, rate, channels, audio.ServiceSampleRate, audio.ServiceChannels)
	}

	return pcm, nil
}

package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/example/go-ttsr/internal/config"
	"github.com/example/go-ttsr/internal/progress"
	"github.com/example/go-ttsr/internal/synth"
	"github.com/example/go-ttsr/internal/tts"
	"github.com/example/go-ttsr/internal/voice"
)

// newSynthesizer builds the synthesis backend; tests replace it.
var newSynthesizer = buildSynthesizer

// buildSynthesizer selects the backend and wraps it with the segment cache.
// Only the remote service is rate limited; the gemini.rpm quota does not
// apply to the local pocket-tts CLI.
func buildSynthesizer(cfg config.Config, logger *slog.Logger) (synth.Synthesizer, error) {
	backend, err := config.NormalizeBackend(cfg.TTS.Backend)
	if err != nil {
		return nil, err
	}

	var base synth.Synthesizer
	switch backend {
	case config.BackendGemini:
		var client *synth.GeminiClient
		client, err = synth.NewGeminiClient(cfg.Gemini.APIKey,
			synth.WithBaseURL(cfg.Gemini.BaseURL),
			synth.WithModel(cfg.Gemini.Model),
			synth.WithTimeout(time.Duration(cfg.Gemini.Timeout)*time.Second),
			synth.WithLogger(logger),
		)
		if err != nil {
			return nil, fmt.Errorf("%w (set TTSR_GEMINI_API_KEY or GEMINI_API_KEY)", err)
		}
		base = synth.NewRateLimited(client, cfg.Gemini.RequestsPerMinute, cfg.Gemini.Burst)
	case config.BackendPocketTTS:
		base = synth.NewPocketClient(synth.PocketConfig{
			ExecutablePath: cfg.TTS.CLIPath,
			ConfigPath:     cfg.TTS.CLIConfigPath,
			DefaultVoice:   cfg.TTS.CLIVoice,
			Concurrency:    cfg.TTS.Concurrency,
			Quiet:          cfg.TTS.Quiet,
			LogWriter:      os.Stderr,
		}, logger)
	default:
		return nil, fmt.Errorf("unsupported backend %q", backend)
	}

	if cfg.TTS.CacheSize <= 0 {
		return base, nil
	}

	return synth.NewCached(base, cfg.TTS.CacheSize)
}

// loadRegistry seeds the voice registry from the configured manifest. A
// missing manifest is only an error when it was set explicitly.
func loadRegistry(cfg config.Config) (*voice.Registry, error) {
	path := cfg.TTS.VoicesManifest
	explicit := path != ""
	if !explicit {
		path = defaultManifestPath
	}

	custom, err := voice.LoadManifest(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return voice.NewRegistry(), nil
		}
		return nil, err
	}

	return voice.NewRegistry(custom...), nil
}

const defaultManifestPath = "voices/manifest.json"

// progressSinks returns the log sink plus an optional NATS publisher. The
// returned func closes the broker connection.
func progressSinks(cfg config.Config, logger *slog.Logger) (progress.Sink, func()) {
	sinks := progress.Multi{progress.NewLogSink(logger)}
	if cfg.Progress.NATSURL == "" {
		return sinks, func() {}
	}

	nc, err := progress.ConnectNATS(progress.NATSConfig{
		URL:     cfg.Progress.NATSURL,
		Subject: cfg.Progress.NATSSubject,
	}, logger)
	if err != nil {
		logger.Warn("progress events will not be published", slog.String("error", err.Error()))
		return sinks, func() {}
	}

	return append(sinks, nc), nc.Close
}

// newOrchestrator wires the synthesizer, registry and sinks into an
// orchestrator with the configured default voice selected.
func newOrchestrator(cfg config.Config, s synth.Synthesizer, registry *voice.Registry, sink progress.Sink, stopper tts.Stopper, logger *slog.Logger) (*tts.Orchestrator, error) {
	orch, err := tts.New(tts.Options{
		Synthesizer:         s,
		Sink:                sink,
		Stopper:             stopper,
		Logger:              logger,
		SegmentChars:        cfg.TTS.SegmentChars,
		MaxTextChars:        cfg.TTS.MaxTextChars,
		MaxDescriptionChars: cfg.TTS.MaxDescriptionChars,
	})
	if err != nil {
		return nil, err
	}

	if cfg.TTS.Voice != "" {
		v, err := registry.Lookup(cfg.TTS.Voice)
		if err != nil {
			return nil, fmt.Errorf("default voice: %w", err)
		}
		orch.SelectVoice(v)
	}

	return orch, nil
}

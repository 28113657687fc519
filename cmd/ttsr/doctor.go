package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strings"

	pockettts "github.com/MeKo-Christian/go-call-pocket-tts"
	"github.com/spf13/cobra"

	"github.com/example/go-ttsr/internal/config"
	"github.com/example/go-ttsr/internal/doctor"
	"github.com/example/go-ttsr/internal/playback"
	"github.com/example/go-ttsr/internal/progress"
	"github.com/example/go-ttsr/internal/voice"
)

var (
	preflightPocketTTS = pockettts.Preflight
	lookPath           = exec.LookPath
	dialNATS           = func(url, subject string) error {
		s, err := progress.ConnectNATS(progress.NATSConfig{URL: url, Subject: subject}, slog.New(slog.DiscardHandler))
		if err != nil {
			return err
		}
		s.Close()
		return nil
	}
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check backend, player, voices and progress broker prerequisites",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			return runDoctor(cfg, cmd.OutOrStdout())
		},
	}
}

func runDoctor(cfg config.Config, out io.Writer) error {
	result := doctor.Run(doctorChecks(cfg), out)
	if result.Failed() {
		return fmt.Errorf("doctor: %d check(s) failed", len(result.Failures()))
	}
	return nil
}

func doctorChecks(cfg config.Config) []doctor.Check {
	backend, backendErr := config.NormalizeBackend(cfg.TTS.Backend)

	checks := []doctor.Check{
		{
			Name: "backend",
			Run: func() (string, error) {
				return backend, backendErr
			},
		},
		{
			Name: "gemini api key",
			Skip: skipUnless(backend == config.BackendGemini, "backend is "+backend),
			Run: func() (string, error) {
				if strings.TrimSpace(cfg.Gemini.APIKey) == "" {
					return "", errors.New("not set; set TTSR_GEMINI_API_KEY or GEMINI_API_KEY")
				}
				return "set", nil
			},
		},
		{
			Name: "pocket-tts binary",
			Skip: skipUnless(backend == config.BackendPocketTTS, "backend is "+backend),
			Run: func() (string, error) {
				if err := preflightPocketTTS(cfg.TTS.CLIPath); err != nil {
					return "", mapSynthError(err)
				}
				return "found", nil
			},
		},
		{
			Name: "player",
			Run: func() (string, error) {
				p, err := playback.NewCommandPlayer(cfg.Playback.Command, nil)
				if err != nil {
					return "", err
				}
				return lookPath(p.Program())
			},
		},
		{
			Name: "voices manifest",
			Skip: skipUnless(cfg.TTS.VoicesManifest != "", "none configured"),
			Run: func() (string, error) {
				voices, err := voice.LoadManifest(cfg.TTS.VoicesManifest)
				if err != nil {
					return "", err
				}
				return fmt.Sprintf("%d custom voice(s)", len(voices)), nil
			},
		},
		{
			Name: "nats",
			Skip: skipUnless(cfg.Progress.NATSURL != "", "no url configured"),
			Run: func() (string, error) {
				if err := dialNATS(cfg.Progress.NATSURL, cfg.Progress.NATSSubject); err != nil {
					return "", err
				}
				return cfg.Progress.NATSURL, nil
			},
		},
	}

	return checks
}

func skipUnless(cond bool, reason string) string {
	if cond {
		return ""
	}
	return reason
}

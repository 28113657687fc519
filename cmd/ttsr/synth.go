package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	pockettts "github.com/MeKo-Christian/go-call-pocket-tts"
	"github.com/spf13/cobra"

	"github.com/example/go-ttsr/internal/audio"
	"github.com/example/go-ttsr/internal/config"
	"github.com/example/go-ttsr/internal/playback"
	"github.com/example/go-ttsr/internal/tts"
	"github.com/example/go-ttsr/internal/voice"
)

type synthOptions struct {
	Text         string
	Voice        string
	Emotions     []string
	Speed        int
	Description  string
	OmitBaseline bool
	Out          string
	Play         bool
}

func newSynthCmd() *cobra.Command {
	var opts synthOptions

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Synthesize text to WAV",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}
			return runSynth(cmd.Context(), cfg, opts, cmd.InOrStdin(), cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&opts.Text, "text", "", "Text to synthesize (if empty, read from stdin)")
	cmd.Flags().StringVar(&opts.Voice, "voice", "", "Voice ID for this run (overrides the configured voice)")
	cmd.Flags().StringArrayVar(&opts.Emotions, "emotion", nil, "Emotion level in Name=0..100 form (repeatable, comma-separated)")
	cmd.Flags().IntVar(&opts.Speed, "speed", voice.DefaultSpeed, "Speaking pace 0..100 (50 is normal)")
	cmd.Flags().StringVar(&opts.Description, "description", "", "Free-form delivery notes")
	cmd.Flags().BoolVar(&opts.OmitBaseline, "no-baseline", false, "Omit the naturalism directive from the instruction")
	cmd.Flags().StringVar(&opts.Out, "out", "", "Output WAV path ('-' for stdout; empty for a generated name in --output-dir)")
	cmd.Flags().BoolVar(&opts.Play, "play", false, "Play the recording with the configured player once generated")

	return cmd
}

func runSynth(ctx context.Context, cfg config.Config, opts synthOptions, stdin io.Reader, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	logger := slog.Default()

	input, err := readSynthText(opts.Text, stdin)
	if err != nil {
		return err
	}

	emotions, err := voice.ParseEmotions(opts.Emotions)
	if err != nil {
		return err
	}

	registry, err := loadRegistry(cfg)
	if err != nil {
		return err
	}

	req := tts.Request{Style: voice.Style{
		Emotions:     emotions,
		Speed:        opts.Speed,
		Description:  opts.Description,
		OmitBaseline: opts.OmitBaseline,
	}}
	if opts.Voice != "" {
		req.Voice, err = registry.Lookup(opts.Voice)
		if err != nil {
			return err
		}
	}

	s, err := newSynthesizer(cfg, logger)
	if err != nil {
		return err
	}

	sink, closeSinks := progressSinks(cfg, logger)
	defer closeSinks()

	orch, err := newOrchestrator(cfg, s, registry, sink, nil, logger)
	if err != nil {
		return err
	}

	gen, err := orch.Start(input, req)
	if err != nil {
		if errors.Is(err, tts.ErrValidation) {
			return errors.New(tts.UserMessage(err))
		}
		return err
	}

	buf, err := gen.Wait(ctx)
	if err != nil {
		orch.Cancel()
		return mapSynthError(err)
	}

	wav, err := audio.EncodeWAV(buf)
	if err != nil {
		return err
	}

	out := opts.Out
	if out == "" {
		out = filepath.Join(cfg.Output.Dir, tts.DownloadName(cfg.Output.Prefix, gen.VoiceName(), time.Now()))
	}

	if err := writeSynthOutput(out, wav, stdout); err != nil {
		return err
	}

	if out != "-" {
		logger.Info("recording written",
			slog.String("path", out),
			slog.Int64("audio_ms", buf.Duration().Milliseconds()),
			slog.String("voice", gen.VoiceName()),
		)
	}

	if !opts.Play {
		return nil
	}

	return playRecording(ctx, cfg.Playback.Command, buf, logger)
}

func playRecording(ctx context.Context, command string, buf *audio.SampleBuffer, logger *slog.Logger) error {
	player, err := playback.NewCommandPlayer(command, logger)
	if err != nil {
		return err
	}

	if err := player.Play(ctx, buf); err != nil {
		return err
	}

	err = player.Wait(ctx)
	logger.Info("playback finished",
		slog.String("position", playback.FormatClock(player.Elapsed())),
		slog.String("duration", playback.FormatClock(buf.Duration())),
	)

	return err
}

func readSynthText(text string, stdin io.Reader) (string, error) {
	if text != "" {
		return text, nil
	}
	if stdin == nil {
		return "", errors.New("no input text: pass --text or pipe text on stdin")
	}

	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return "", errors.New("no input text: pass --text or pipe text on stdin")
	}

	return string(data), nil
}

func writeSynthOutput(outPath string, wavData []byte, stdout io.Writer) error {
	if outPath == "-" {
		_, err := stdout.Write(wavData)
		return err
	}

	if dir := filepath.Dir(outPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}

	return os.WriteFile(outPath, wavData, 0o644)
}

func mapSynthError(err error) error {
	var notFound *pockettts.ErrExecutableNotFound
	if errors.As(err, &notFound) || errors.Is(err, exec.ErrNotFound) {
		return fmt.Errorf("synth failed: pocket-tts executable not found; set --tts-cli-path or TTSR_TTS_CLI_PATH: %w", err)
	}

	return fmt.Errorf("synth failed: %w", err)
}

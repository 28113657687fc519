package main

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/example/go-ttsr/internal/config"
	"github.com/example/go-ttsr/internal/synth"
	"github.com/example/go-ttsr/internal/testutil"
	"github.com/example/go-ttsr/internal/voice"
)

// stubBackend replaces newSynthesizer for the duration of a test and records
// every request.
func stubBackend(t *testing.T, respond func(req synth.Request) ([]byte, error)) *[]synth.Request {
	t.Helper()

	var (
		mu   sync.Mutex
		reqs []synth.Request
	)

	orig := newSynthesizer
	t.Cleanup(func() { newSynthesizer = orig })

	newSynthesizer = func(config.Config, *slog.Logger) (synth.Synthesizer, error) {
		return synth.SynthesizerFunc(func(_ context.Context, req synth.Request) ([]byte, error) {
			mu.Lock()
			reqs = append(reqs, req)
			mu.Unlock()
			return respond(req)
		}), nil
	}

	return &reqs
}

func silencePCM(req synth.Request) ([]byte, error) {
	return make([]byte, 2*len([]rune(req.Text))), nil
}

func testConfig(t *testing.T) config.Config {
	t.Helper()

	cfg := config.DefaultConfig()
	cfg.Output.Dir = t.TempDir()
	cfg.TTS.VoicesManifest = ""

	return cfg
}

func TestRunSynth_StdinToStdout(t *testing.T) {
	t.Chdir(t.TempDir())
	reqs := stubBackend(t, silencePCM)

	cfg := testConfig(t)

	var stdout bytes.Buffer

	err := runSynth(context.Background(), cfg, synthOptions{Out: "-", Speed: voice.DefaultSpeed},
		strings.NewReader(" hello from stdin "), &stdout)
	if err != nil {
		t.Fatalf("runSynth returned error: %v", err)
	}

	if len(*reqs) != 1 || (*reqs)[0].Text != "hello from stdin" {
		t.Fatalf("unexpected synthesized segments: %+v", *reqs)
	}
	if (*reqs)[0].Voice != "Kore" {
		t.Errorf("voice = %q; want configured Kore", (*reqs)[0].Voice)
	}

	buf := testutil.AssertValidWAV(t, stdout.Bytes())
	if buf.Frames() != len("hello from stdin") {
		t.Errorf("frames = %d; want %d", buf.Frames(), len("hello from stdin"))
	}
}

func TestRunSynth_WritesGeneratedNameInOutputDir(t *testing.T) {
	t.Chdir(t.TempDir())
	reqs := stubBackend(t, silencePCM)

	cfg := testConfig(t)

	opts := synthOptions{
		Text:         "First sentence. Second sentence.",
		Voice:        "Titan",
		Emotions:     []string{"happy=80"},
		Speed:        90,
		Description:  "Like a movie trailer",
		OmitBaseline: true,
	}

	if err := runSynth(context.Background(), cfg, opts, nil, &bytes.Buffer{}); err != nil {
		t.Fatalf("runSynth returned error: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(cfg.Output.Dir, "tts-r-2.0-Titan-*.wav"))
	if err != nil || len(matches) != 1 {
		t.Fatalf("expected one generated file, got %v (err %v)", matches, err)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	testutil.AssertValidWAV(t, data)

	req := (*reqs)[0]
	if req.Voice != voice.FallbackServiceVoice {
		t.Errorf("service voice = %q; want fallback for Titan", req.Voice)
	}
	if req.Instruction == nil {
		t.Fatal("instruction is nil")
	}
	for _, want := range []string{"Happy", "Like a movie trailer", "Voice Character"} {
		if !strings.Contains(*req.Instruction, want) {
			t.Errorf("instruction %q missing %q", *req.Instruction, want)
		}
	}
	if strings.Contains(*req.Instruction, "Ultra-realistic") {
		t.Error("baseline directive present despite --no-baseline")
	}
}

func TestRunSynth_Errors(t *testing.T) {
	tests := []struct {
		name    string
		opts    synthOptions
		stdin   string
		respond func(synth.Request) ([]byte, error)
		wantErr string
	}{
		{
			name:    "whitespace text",
			opts:    synthOptions{Text: "   ", Out: "-", Speed: 50},
			wantErr: "Please enter some text to generate audio.",
		},
		{
			name:    "empty stdin",
			opts:    synthOptions{Out: "-", Speed: 50},
			wantErr: "no input text",
		},
		{
			name:    "unknown voice",
			opts:    synthOptions{Text: "Hi.", Voice: "Nobody", Out: "-", Speed: 50},
			wantErr: "unknown voice",
		},
		{
			name:    "bad emotion",
			opts:    synthOptions{Text: "Hi.", Emotions: []string{"smug=10"}, Out: "-", Speed: 50},
			wantErr: "unknown emotion",
		},
		{
			name: "backend failure",
			opts: synthOptions{Text: "Hi.", Out: "-", Speed: 50},
			respond: func(synth.Request) ([]byte, error) {
				return nil, errors.New("quota exhausted")
			},
			wantErr: "quota exhausted",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Chdir(t.TempDir())

			respond := tc.respond
			if respond == nil {
				respond = silencePCM
			}
			stubBackend(t, respond)

			err := runSynth(context.Background(), testConfig(t), tc.opts, strings.NewReader(tc.stdin), &bytes.Buffer{})
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("error = %q; want it to contain %q", err, tc.wantErr)
			}
		})
	}
}

func TestRunSynth_CustomVoiceFromManifest(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	manifest := filepath.Join(dir, "voices.json")
	if err := os.WriteFile(manifest, []byte(`{"voices":[{"id":"raihan","name":"R J Raihan","style":"Warm radio host"}]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	reqs := stubBackend(t, silencePCM)

	cfg := testConfig(t)
	cfg.TTS.VoicesManifest = manifest

	err := runSynth(context.Background(), cfg, synthOptions{Text: "Hello.", Voice: "raihan", Out: "-", Speed: 50}, nil, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("runSynth returned error: %v", err)
	}

	if got := *(*reqs)[0].Instruction; !strings.Contains(got, `Imitate the style of "R J Raihan"`) {
		t.Errorf("instruction = %q; want cloned identity", got)
	}
}

func TestMapSynthError(t *testing.T) {
	err := mapSynthError(exec.ErrNotFound)
	if !strings.Contains(err.Error(), "--tts-cli-path") {
		t.Errorf("expected executable hint, got %q", err)
	}
	if !errors.Is(err, exec.ErrNotFound) {
		t.Error("mapped error lost its cause")
	}

	other := errors.New("boom")
	if err := mapSynthError(other); !errors.Is(err, other) {
		t.Errorf("mapSynthError(%v) = %v; want wrapped", other, err)
	}
}

func TestReadSynthText(t *testing.T) {
	got, err := readSynthText("flag text", strings.NewReader("ignored"))
	if err != nil || got != "flag text" {
		t.Fatalf("readSynthText = %q, %v", got, err)
	}

	got, err = readSynthText("", strings.NewReader("piped"))
	if err != nil || got != "piped" {
		t.Fatalf("readSynthText(stdin) = %q, %v", got, err)
	}
}

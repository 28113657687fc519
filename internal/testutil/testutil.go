// Package testutil provides shared skip helpers and audio assertions for
// tests.
//
// The Require helpers call t.Skip with a clear reason when an external
// prerequisite is absent, so integration tests stay runnable in partial
// environments without failing noisily.
//
// Typical usage:
//
//	func TestMyIntegration(t *testing.T) {
//	    testutil.RequireGeminiKey(t)
//	    ...
//	}
package testutil

import (
	"os"
	"os/exec"
	"testing"
)

// RequirePocketTTS skips the test if the pocket-tts binary is not found in
// PATH or at the path given by TTSR_TTS_CLI_PATH. It returns the executable.
func RequirePocketTTS(tb testing.TB) string {
	tb.Helper()

	exe := os.Getenv("TTSR_TTS_CLI_PATH")
	if exe == "" {
		exe = "pocket-tts"
	}

	path, err := exec.LookPath(exe)
	if err != nil {
		tb.Skipf("pocket-tts binary not available (%q not in PATH); set TTSR_TTS_CLI_PATH to override", exe)
		return ""
	}

	return path
}

// RequireGeminiKey skips the test unless TTSR_GEMINI_API_KEY or
// GEMINI_API_KEY is set, and returns the key. Live tests also need
// TTSR_LIVE=1 so a developer key in the environment is not spent by accident.
func RequireGeminiKey(tb testing.TB) string {
	tb.Helper()

	if os.Getenv("TTSR_LIVE") != "1" {
		tb.Skip("live synthesis tests disabled; set TTSR_LIVE=1")
		return ""
	}

	for _, env := range []string{"TTSR_GEMINI_API_KEY", "GEMINI_API_KEY"} {
		if key := os.Getenv(env); key != "" {
			return key
		}
	}

	tb.Skip("no Gemini API key; set TTSR_GEMINI_API_KEY or GEMINI_API_KEY")
	return ""
}

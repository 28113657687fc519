package config

import (
	"fmt"
	"strings"
)

const (
	BackendGemini    = "gemini"
	BackendPocketTTS = "pocket-tts"
)

func NormalizeBackend(raw string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(raw))
	if backend == "" {
		backend = BackendGemini
	}
	switch backend {
	case BackendGemini, BackendPocketTTS:
		return backend, nil
	case "cli", "pocket", "pockettts":
		return BackendPocketTTS, nil
	default:
		return "", fmt.Errorf(
			"invalid backend %q (expected %s|%s|cli)",
			raw,
			BackendGemini,
			BackendPocketTTS,
		)
	}
}

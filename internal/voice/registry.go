package voice

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// DefaultCloneStyle is used when a custom voice is added without a style.
const DefaultCloneStyle = "Custom Cloned Style"

// ErrUnknownVoice is returned when an ID matches neither a catalog voice nor
// a registered custom voice.
var ErrUnknownVoice = errors.New("unknown voice id")

type manifestVoice struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Style string `json:"style"`
}

type voiceManifest struct {
	Voices []manifestVoice `json:"voices"`
}

// LoadManifest reads custom voice definitions from a JSON manifest of the form
// {"voices":[{"id":"...","name":"...","style":"..."}]}.
func LoadManifest(manifestPath string) ([]ClonedVoice, error) {
	if manifestPath == "" {
		return nil, errors.New("manifest path is required")
	}

	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("read voice manifest: %w", err)
	}

	var manifest voiceManifest

	err = json.Unmarshal(data, &manifest)
	if err != nil {
		return nil, fmt.Errorf("decode voice manifest: %w", err)
	}

	seen := make(map[string]bool, len(manifest.Voices))
	voices := make([]ClonedVoice, 0, len(manifest.Voices))

	for _, v := range manifest.Voices {
		if v.ID == "" {
			return nil, errors.New("voice manifest contains empty id")
		}

		if strings.TrimSpace(v.Name) == "" {
			return nil, fmt.Errorf("voice %q has empty name", v.ID)
		}

		if _, std := Lookup(v.ID); std || seen[v.ID] {
			return nil, fmt.Errorf("duplicate voice id %q", v.ID)
		}

		seen[v.ID] = true

		style := v.Style
		if style == "" {
			style = DefaultCloneStyle
		}
		voices = append(voices, ClonedVoice{ID: v.ID, DisplayName: v.Name, StyleText: style})
	}

	return voices, nil
}

// Registry combines the standard catalog with custom voices added at startup
// or at runtime. It is safe for concurrent use.
type Registry struct {
	mu     sync.RWMutex
	custom []ClonedVoice
	byID   map[string]ClonedVoice
	now    func() time.Time
}

// NewRegistry returns a registry seeded with the given custom voices.
func NewRegistry(custom ...ClonedVoice) *Registry {
	r := &Registry{
		byID: make(map[string]ClonedVoice, len(custom)),
		now:  time.Now,
	}
	for _, v := range custom {
		r.custom = append(r.custom, v)
		r.byID[v.ID] = v
	}

	return r
}

// List returns custom voices, newest first, followed by the standard catalog.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Info, 0, len(r.custom)+len(standardVoices))
	for i := len(r.custom) - 1; i >= 0; i-- {
		v := r.custom[i]
		out = append(out, Info{ID: v.ID, Name: v.DisplayName, Gender: GenderCustom, Style: v.StyleText, Custom: true})
	}

	return append(out, standardVoices...)
}

// Lookup resolves an ID to a catalog voice or a registered custom voice.
func (r *Registry) Lookup(id string) (Voice, error) {
	if _, ok := Lookup(id); ok {
		return StandardVoice{ID: id}, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if v, ok := r.byID[id]; ok {
		return v, nil
	}

	return nil, fmt.Errorf("%w %q", ErrUnknownVoice, id)
}

// AddCustom registers a cloned voice described by name and style and returns
// it. The ID is derived from the current time in milliseconds.
func (r *Registry) AddCustom(name, style string) (ClonedVoice, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return ClonedVoice{}, errors.New("custom voice needs a name")
	}

	style = strings.TrimSpace(style)
	if style == "" {
		style = DefaultCloneStyle
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	id := fmt.Sprintf("custom-%d", r.now().UnixMilli())
	for n := 1; ; n++ {
		if _, taken := r.byID[id]; !taken {
			break
		}
		id = fmt.Sprintf("custom-%d-%d", r.now().UnixMilli(), n)
	}

	v := ClonedVoice{ID: id, DisplayName: name, StyleText: style}
	r.custom = append(r.custom, v)
	r.byID[id] = v

	return v, nil
}

// Default returns the voice used when none is selected.
func Default() Voice {
	return StandardVoice{ID: DefaultVoiceID}
}

package voice

import "testing"

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		voice      Voice
		wantID     string
		wantClause string
	}{
		{
			name:   "service voice passes through",
			voice:  StandardVoice{ID: "Charon"},
			wantID: "Charon",
		},
		{
			name:       "catalog voice outside service set falls back with character clause",
			voice:      StandardVoice{ID: "Enceladus"},
			wantID:     FallbackServiceVoice,
			wantClause: "Voice Character: Enceladus (Resonant, Heroic)",
		},
		{
			name:       "unknown standard id still degrades",
			voice:      StandardVoice{ID: "Nobody"},
			wantID:     FallbackServiceVoice,
			wantClause: "Voice Character: Nobody",
		},
		{
			name:       "cloned voice imitates identity",
			voice:      ClonedVoice{ID: "custom-1", DisplayName: "R J Raihan", StyleText: "Deep, energetic, radio-host style"},
			wantID:     FallbackServiceVoice,
			wantClause: `Voice Identity: Imitate the style of "R J Raihan". Description: Deep, energetic, radio-host style.`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, clause := Resolve(tt.voice)
			if id != tt.wantID {
				t.Errorf("service id = %q, want %q", id, tt.wantID)
			}
			if clause != tt.wantClause {
				t.Errorf("clause = %q, want %q", clause, tt.wantClause)
			}
		})
	}
}

func TestServiceVoicesAreInCatalog(t *testing.T) {
	for id := range serviceVoices {
		if _, ok := Lookup(id); !ok {
			t.Errorf("service voice %q missing from catalog", id)
		}
	}

	if !IsServiceVoice(DefaultVoiceID) {
		t.Errorf("default voice %q is not a service voice", DefaultVoiceID)
	}
}

func TestVoiceNames(t *testing.T) {
	if got := (StandardVoice{ID: "Kore"}).Name(); got != "Kore" {
		t.Errorf("StandardVoice.Name() = %q, want Kore", got)
	}
	if got := (ClonedVoice{DisplayName: "Narrator"}).Name(); got != "Narrator" {
		t.Errorf("ClonedVoice.Name() = %q, want Narrator", got)
	}
	if got := Default().Name(); got != DefaultVoiceID {
		t.Errorf("Default().Name() = %q, want %q", got, DefaultVoiceID)
	}
}

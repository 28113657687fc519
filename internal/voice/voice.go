// Package voice models the selectable voices and the instruction text that
// steers the remote synthesis model.
//
// A voice is either a StandardVoice drawn from the fixed catalog or a
// ClonedVoice described by a display name and a style text. Resolve maps
// either variant to the identifier the service accepts plus an optional
// instruction clause.
package voice

import "fmt"

// Voice is a StandardVoice or a ClonedVoice.
type Voice interface {
	// Name is the human-readable voice name, used for display and file names.
	Name() string
	isVoice()
}

// StandardVoice is a prebuilt voice from the catalog.
type StandardVoice struct {
	ID string
}

func (v StandardVoice) Name() string {
	if info, ok := Lookup(v.ID); ok {
		return info.Name
	}

	return v.ID
}

func (StandardVoice) isVoice() {}

// ClonedVoice is a user-defined voice the model imitates from a description.
type ClonedVoice struct {
	ID          string
	DisplayName string
	StyleText   string
}

func (v ClonedVoice) Name() string { return v.DisplayName }

func (ClonedVoice) isVoice() {}

// Resolve maps v to the service voice identifier and an extra instruction
// clause. Cloned voices and catalog voices the service does not accept fall
// back to FallbackServiceVoice and describe the intended voice instead.
func Resolve(v Voice) (serviceVoiceID, clause string) {
	switch v := v.(type) {
	case ClonedVoice:
		return FallbackServiceVoice, fmt.Sprintf(
			"Voice Identity: Imitate the style of \"%s\". Description: %s.", v.DisplayName, v.StyleText)
	case StandardVoice:
		if IsServiceVoice(v.ID) {
			return v.ID, ""
		}
		info, ok := Lookup(v.ID)
		if !ok || info.Style == "" {
			return FallbackServiceVoice, fmt.Sprintf("Voice Character: %s", v.Name())
		}

		return FallbackServiceVoice, fmt.Sprintf("Voice Character: %s (%s)", info.Name, info.Style)
	default:
		return FallbackServiceVoice, ""
	}
}

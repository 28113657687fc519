package voice

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Emotion is one axis of the emotional equalizer.
type Emotion string

const (
	Happy   Emotion = "Happy"
	Sad     Emotion = "Sad"
	Angry   Emotion = "Angry"
	Fearful Emotion = "Fearful"
	Excited Emotion = "Excited"
	Crying  Emotion = "Crying"
)

// Emotions lists the equalizer axes in the order they appear in instructions.
var Emotions = []Emotion{Happy, Sad, Angry, Fearful, Excited, Crying}

// DefaultSpeed is the centre of the 0–100 pace scale; it adds no pace clause.
const DefaultSpeed = 50

// baselineDirective is always the first instruction clause.
const baselineDirective = "Style: Ultra-realistic, human-like, natural conversational tone with breathiness, " +
	"natural pauses, and varying intonation. Do not sound robotic."

// Style holds the delivery controls that become the instruction string.
type Style struct {
	Emotions    map[Emotion]int // 0–100 per axis; missing means 0
	Speed       int             // 0–100, DefaultSpeed is normal pace
	Description string          // free-form delivery notes

	// OmitBaseline drops the naturalism directive, leaving only the clauses
	// the caller asked for.
	OmitBaseline bool
}

// DefaultStyle returns a neutral style at normal pace.
func DefaultStyle() Style {
	return Style{Speed: DefaultSpeed}
}

// Validate checks that every control is within its range.
func (s Style) Validate() error {
	if s.Speed < 0 || s.Speed > 100 {
		return fmt.Errorf("speed %d out of range 0-100", s.Speed)
	}
	for e, v := range s.Emotions {
		if !knownEmotion(e) {
			return fmt.Errorf("unknown emotion %q", e)
		}
		if v < 0 || v > 100 {
			return fmt.Errorf("emotion %s intensity %d out of range 0-100", e, v)
		}
	}

	return nil
}

// BuildInstruction assembles the instruction clauses in fixed order: the
// baseline directive, emotional tone, speaking pace, the free-form
// description and the voice clause from Resolve. Empty clauses are skipped.
// It returns nil when there is nothing to say, which the service treats
// differently from an empty instruction.
func BuildInstruction(style Style, voiceClause string) *string {
	var parts []string
	if !style.OmitBaseline {
		parts = append(parts, baselineDirective)
	}

	if tone := emotionalTone(style.Emotions); tone != "" {
		parts = append(parts, "Emotional Tone: ["+tone+"]")
	}
	if pace := speakingPace(style.Speed); pace != "" {
		parts = append(parts, pace)
	}
	if desc := strings.TrimSpace(style.Description); desc != "" {
		parts = append(parts, desc)
	}
	if clause := strings.TrimSpace(voiceClause); clause != "" {
		parts = append(parts, clause)
	}

	instruction := strings.TrimSpace(strings.Join(parts, ". "))
	if instruction == "" {
		return nil
	}

	return &instruction
}

func emotionalTone(levels map[Emotion]int) string {
	var active []string
	for _, e := range Emotions {
		if v := levels[e]; v > 0 {
			active = append(active, fmt.Sprintf("%s: %d%%", e, v))
		}
	}

	return strings.Join(active, ", ")
}

// speakingPace maps the 0–100 speed scale to a pace clause. The band from
// 48 to 52 counts as normal pace and yields no clause.
func speakingPace(speed int) string {
	switch {
	case speed < 40:
		return "Speaking Pace: Very Slow"
	case speed < 48:
		return "Speaking Pace: Slow"
	case speed > 60:
		return "Speaking Pace: Very Fast"
	case speed > 52:
		return "Speaking Pace: Fast"
	default:
		return ""
	}
}

func knownEmotion(e Emotion) bool {
	for _, k := range Emotions {
		if k == e {
			return true
		}
	}

	return false
}

// ParseEmotions parses "Happy=40,Sad=10" into equalizer levels. Names are
// case-insensitive.
func ParseEmotions(items []string) (map[Emotion]int, error) {
	levels := make(map[Emotion]int, len(items))
	for _, item := range items {
		for _, pair := range strings.Split(item, ",") {
			pair = strings.TrimSpace(pair)
			if pair == "" {
				continue
			}

			name, value, ok := strings.Cut(pair, "=")
			if !ok {
				return nil, fmt.Errorf("invalid emotion %q: expected Name=Level", pair)
			}

			e, err := ParseEmotion(name)
			if err != nil {
				return nil, err
			}

			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("invalid level for %s: %w", e, err)
			}
			levels[e] = n
		}
	}

	return levels, nil
}

// ParseEmotion matches name case-insensitively against the known emotions.
func ParseEmotion(name string) (Emotion, error) {
	name = strings.TrimSpace(name)
	for _, e := range Emotions {
		if strings.EqualFold(string(e), name) {
			return e, nil
		}
	}

	known := make([]string, len(Emotions))
	for i, e := range Emotions {
		known[i] = string(e)
	}
	sort.Strings(known)

	return "", errors.New("unknown emotion " + strconv.Quote(name) + " (want one of " + strings.Join(known, ", ") + ")")
}

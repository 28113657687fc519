package voice

// Gender labels a catalog voice.
type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderCustom Gender = "Custom"
)

// Info describes a voice for listing.
type Info struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Gender Gender `json:"gender"`
	Style  string `json:"style"`
	Custom bool   `json:"custom,omitempty"`
}

const (
	// DefaultVoiceID is selected when no voice is configured.
	DefaultVoiceID = "Kore"
	// FallbackServiceVoice is sent when the chosen voice is not one the
	// service accepts.
	FallbackServiceVoice = "Puck"
)

// serviceVoices are the catalog IDs the synthesis service accepts directly.
var serviceVoices = map[string]bool{
	"Puck":   true,
	"Charon": true,
	"Kore":   true,
	"Fenrir": true,
	"Aoede":  true,
	"Zephyr": true,
}

var standardVoices = []Info{
	{ID: "Puck", Name: "Puck", Gender: GenderMale, Style: "Soft, Narrative"},
	{ID: "Charon", Name: "Charon", Gender: GenderMale, Style: "Deep, Authoritative"},
	{ID: "Kore", Name: "Kore", Gender: GenderFemale, Style: "Calm, Soothing"},
	{ID: "Fenrir", Name: "Fenrir", Gender: GenderMale, Style: "Energetic, Strong"},
	{ID: "Aoede", Name: "Aoede", Gender: GenderFemale, Style: "Expressive, Bright"},
	{ID: "Enceladus", Name: "Enceladus", Gender: GenderMale, Style: "Resonant, Heroic"},
	{ID: "Zephyr", Name: "Zephyr", Gender: GenderFemale, Style: "Gentle, Airy"},
	{ID: "Titan", Name: "Titan", Gender: GenderMale, Style: "Heavy, Powerful"},
	{ID: "Miranda", Name: "Miranda", Gender: GenderFemale, Style: "Young, Cheerful"},
	{ID: "Umbriel", Name: "Umbriel", Gender: GenderMale, Style: "Mysterious, Low"},
	{ID: "Ariel", Name: "Ariel", Gender: GenderFemale, Style: "Light, Melodic"},
	{ID: "Oberon", Name: "Oberon", Gender: GenderMale, Style: "Regal, Commanding"},
	{ID: "Callisto", Name: "Callisto", Gender: GenderFemale, Style: "Mature, Textured"},
	{ID: "Ganymede", Name: "Ganymede", Gender: GenderMale, Style: "Clear, Youthful"},
	{ID: "Europa", Name: "Europa", Gender: GenderFemale, Style: "Elegant, Smooth"},
	{ID: "Io", Name: "Io", Gender: GenderFemale, Style: "Intense, Sharp"},
	{ID: "Amalthea", Name: "Amalthea", Gender: GenderFemale, Style: "Warm, Motherly"},
	{ID: "Himalia", Name: "Himalia", Gender: GenderFemale, Style: "Distant, Ethereal"},
	{ID: "Elara", Name: "Elara", Gender: GenderFemale, Style: "Soft, Whispering"},
	{ID: "Pasiphae", Name: "Pasiphae", Gender: GenderFemale, Style: "Dark, Complex"},
	{ID: "Sinope", Name: "Sinope", Gender: GenderFemale, Style: "Direct, Bold"},
	{ID: "Lysithea", Name: "Lysithea", Gender: GenderFemale, Style: "Sweet, Light"},
	{ID: "Carme", Name: "Carme", Gender: GenderFemale, Style: "Rich, Deep"},
	{ID: "Ananke", Name: "Ananke", Gender: GenderFemale, Style: "Ancient, Slow"},
	{ID: "Leda", Name: "Leda", Gender: GenderFemale, Style: "Playful, Bright"},
	{ID: "Thebe", Name: "Thebe", Gender: GenderFemale, Style: "Fast, Energetic"},
	{ID: "Adrastea", Name: "Adrastea", Gender: GenderFemale, Style: "Small, Delicate"},
	{ID: "Metis", Name: "Metis", Gender: GenderFemale, Style: "Intellectual, Sharp"},
	{ID: "Mimas", Name: "Mimas", Gender: GenderMale, Style: "Small, Punchy"},
	{ID: "Tethys", Name: "Tethys", Gender: GenderFemale, Style: "Flowing, Watery"},
	{ID: "Dione", Name: "Dione", Gender: GenderFemale, Style: "Balanced, Neutral"},
	{ID: "Rhea", Name: "Rhea", Gender: GenderFemale, Style: "Grand, Operatic"},
	{ID: "Hyperion", Name: "Hyperion", Gender: GenderMale, Style: "Bright, Radiant"},
	{ID: "Iapetus", Name: "Iapetus", Gender: GenderMale, Style: "Dual, Contrast"},
	{ID: "Phoebe", Name: "Phoebe", Gender: GenderFemale, Style: "Quirky, Unique"},
}

var standardByID = func() map[string]Info {
	m := make(map[string]Info, len(standardVoices))
	for _, v := range standardVoices {
		m[v.ID] = v
	}
	return m
}()

// Standard returns the built-in catalog in display order.
func Standard() []Info {
	return append([]Info(nil), standardVoices...)
}

// Lookup returns the catalog entry for a standard voice ID.
func Lookup(id string) (Info, bool) {
	info, ok := standardByID[id]
	return info, ok
}

// IsServiceVoice reports whether the synthesis service accepts id as is.
func IsServiceVoice(id string) bool {
	return serviceVoices[id]
}

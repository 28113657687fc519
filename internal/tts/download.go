package tts

import (
	"fmt"
	"strings"
	"time"
)

// DefaultDownloadPrefix starts every downloaded file name.
const DefaultDownloadPrefix = "tts-r-2.0"

// DownloadName returns "<prefix>-<voice>-<unix ms>.wav". Path separators in
// the voice name are replaced so the result is always a bare file name.
func DownloadName(prefix, voiceName string, t time.Time) string {
	if prefix == "" {
		prefix = DefaultDownloadPrefix
	}

	voiceName = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', 0:
			return '_'
		}
		return r
	}, voiceName)

	return fmt.Sprintf("%s-%s-%d.wav", prefix, voiceName, t.UnixMilli())
}

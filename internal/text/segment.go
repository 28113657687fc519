package text

import (
	"strings"
	"unicode/utf8"
)

// DefaultSegmentChars keeps a single synthesis request comfortably below the
// remote model's input token limit.
const DefaultSegmentChars = 2500

// Segment is one bounded slice of the input text, synthesized as a unit.
type Segment struct {
	Index int // 1-based position in the sequence
	Text  string
}

// isTerminator reports whether r closes a sentence. The Bengali danda and
// newline count alongside the Latin terminators.
func isTerminator(r rune) bool {
	switch r {
	case '.', '?', '!', '।', '\n':
		return true
	}

	return false
}

// SegmentBySentence splits text into segments of at most limit characters,
// cutting only at sentence boundaries. Consecutive sentences are grouped while
// they fit. A sentence that alone exceeds limit becomes its own oversized
// segment rather than being cut. Segments are trimmed and never empty.
//
// If limit is 0 or negative, no splitting is performed.
// Empty or whitespace-only input yields no segments.
func SegmentBySentence(text string, limit int) []Segment {
	if limit <= 0 {
		return collect(nil, text)
	}

	var segments []Segment
	var current strings.Builder
	currentLen := 0

	for _, s := range SplitSentences(text) {
		n := utf8.RuneCountInString(s)
		if currentLen > 0 && currentLen+n > limit {
			segments = collect(segments, current.String())
			current.Reset()
			currentLen = 0
		}
		current.WriteString(s)
		currentLen += n
	}

	return collect(segments, current.String())
}

// SplitSentences splits text after every run of sentence terminators,
// keeping the run attached to the sentence it closes. The pieces are
// returned untrimmed so that joining them reproduces text exactly.
func SplitSentences(text string) []string {
	var sentences []string
	start := 0
	inRun := false

	for i, r := range text {
		if isTerminator(r) {
			inRun = true
			continue
		}
		if inRun {
			sentences = append(sentences, text[start:i])
			start = i
			inRun = false
		}
	}

	// Trailing text after the last terminator (if any).
	if start < len(text) {
		sentences = append(sentences, text[start:])
	}

	return sentences
}

func collect(segments []Segment, chunk string) []Segment {
	chunk = strings.TrimSpace(chunk)
	if chunk == "" {
		return segments
	}

	return append(segments, Segment{Index: len(segments) + 1, Text: chunk})
}

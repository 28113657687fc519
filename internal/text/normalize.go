package text

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

var (
	// ErrEmptyText is returned when the input text is empty or whitespace-only.
	ErrEmptyText = errors.New("text is empty")
	// ErrTooLong is returned when the input exceeds the configured character limit.
	ErrTooLong = errors.New("text is too long")
)

// Normalize prepares raw input text for segmentation.
// It normalizes line endings to \n, trims surrounding whitespace,
// and rejects empty or whitespace-only input.
func Normalize(s string) (string, error) {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")

	s = strings.TrimSpace(s)

	if s == "" {
		return "", ErrEmptyText
	}

	return s, nil
}

// CheckLength rejects s when it holds more than maxChars characters.
// Characters are counted as runes so Bengali and other multi-byte scripts
// get the same budget as ASCII. maxChars <= 0 disables the check.
func CheckLength(s string, maxChars int) error {
	if maxChars <= 0 {
		return nil
	}

	if n := utf8.RuneCountInString(s); n > maxChars {
		return fmt.Errorf("%w: %d characters, limit %d", ErrTooLong, n, maxChars)
	}

	return nil
}

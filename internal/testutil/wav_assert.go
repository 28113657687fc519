package testutil

import (
	"testing"
	"time"

	"github.com/example/go-ttsr/internal/audio"
)

// AssertValidWAV decodes data and checks it is 16-bit mono at the service
// sample rate with at least one frame. It returns the decoded buffer.
func AssertValidWAV(tb testing.TB, data []byte) *audio.SampleBuffer {
	tb.Helper()

	if len(data) < audio.WAVHeaderSize {
		tb.Fatalf("WAV data too short: %d bytes", len(data))
	}

	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		tb.Fatalf("WAV: missing RIFF/WAVE markers (got %q/%q)", data[0:4], data[8:12])
	}

	buf, err := audio.DecodeWAV(data)
	if err != nil {
		tb.Fatalf("WAV: decode: %v", err)
	}

	if buf.SampleRate() != audio.ServiceSampleRate {
		tb.Fatalf("WAV: expected sample rate %d, got %d", audio.ServiceSampleRate, buf.SampleRate())
	}

	if buf.ChannelCount() != audio.ServiceChannels {
		tb.Fatalf("WAV: expected %d channel(s), got %d", audio.ServiceChannels, buf.ChannelCount())
	}

	if buf.Frames() == 0 {
		tb.Fatal("WAV: data chunk contains zero frames")
	}

	return buf
}

// AssertWAVDurationApprox asserts that the decoded duration falls within
// [lo, hi].
func AssertWAVDurationApprox(tb testing.TB, data []byte, lo, hi time.Duration) {
	tb.Helper()

	buf := AssertValidWAV(tb, data)
	if d := buf.Duration(); d < lo || d > hi {
		tb.Fatalf("WAV duration %s out of expected range [%s, %s]", d, lo, hi)
	}
}

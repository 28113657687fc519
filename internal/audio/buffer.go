package audio

import (
	"fmt"
	"time"

	goaudio "github.com/go-audio/audio"
)

// Service output format: raw 16-bit little-endian PCM, mono, 24 kHz.
const (
	ServiceSampleRate = 24000
	ServiceChannels   = 1
	ServiceBitDepth   = 16
)

// SampleBuffer is a block of decoded audio held as per-channel normalized
// float samples. Every channel has the same number of frames. The sample rate
// and channel count are fixed at construction.
//
// A SampleBuffer is not copied as it moves through the pipeline; whoever holds
// it owns it.
type SampleBuffer struct {
	sampleRate int
	channels   [][]float32
}

// NewSampleBuffer wraps per-channel sample slices without copying them.
func NewSampleBuffer(sampleRate int, channels [][]float32) (*SampleBuffer, error) {
	if sampleRate < 1 {
		return nil, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}
	if len(channels) == 0 {
		return nil, fmt.Errorf("sample buffer needs at least one channel")
	}
	frames := len(channels[0])
	for i, ch := range channels[1:] {
		if len(ch) != frames {
			return nil, fmt.Errorf("channel %d has %d frames, channel 0 has %d", i+1, len(ch), frames)
		}
	}

	return &SampleBuffer{sampleRate: sampleRate, channels: channels}, nil
}

// NewSilentBuffer allocates a zero-filled buffer.
func NewSilentBuffer(sampleRate, channelCount, frames int) *SampleBuffer {
	channels := make([][]float32, channelCount)
	for i := range channels {
		channels[i] = make([]float32, frames)
	}

	return &SampleBuffer{sampleRate: sampleRate, channels: channels}
}

func (b *SampleBuffer) SampleRate() int   { return b.sampleRate }
func (b *SampleBuffer) ChannelCount() int { return len(b.channels) }

// Frames returns the number of samples per channel.
func (b *SampleBuffer) Frames() int {
	if len(b.channels) == 0 {
		return 0
	}

	return len(b.channels[0])
}

// Channel returns the samples of channel i. The slice is shared with the
// buffer, not copied.
func (b *SampleBuffer) Channel(i int) []float32 {
	return b.channels[i]
}

// Duration returns the playback length of the buffer.
func (b *SampleBuffer) Duration() time.Duration {
	if b.sampleRate == 0 {
		return 0
	}

	return time.Duration(b.Frames()) * time.Second / time.Duration(b.sampleRate)
}

// Format describes the buffer in go-audio terms.
func (b *SampleBuffer) Format() *goaudio.Format {
	return &goaudio.Format{SampleRate: b.sampleRate, NumChannels: len(b.channels)}
}

// Float32Buffer interleaves the channels into a go-audio buffer for consumers
// of that package. Unlike the other accessors this allocates.
func (b *SampleBuffer) Float32Buffer() *goaudio.Float32Buffer {
	nch := len(b.channels)
	frames := b.Frames()
	data := make([]float32, frames*nch)
	for ch, samples := range b.channels {
		for i, s := range samples {
			data[i*nch+ch] = s
		}
	}

	return &goaudio.Float32Buffer{
		Data:           data,
		Format:         b.Format(),
		SourceBitDepth: ServiceBitDepth,
	}
}

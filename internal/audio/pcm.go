package audio

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrMalformedAudio is returned when a payload cannot be decoded as PCM.
var ErrMalformedAudio = errors.New("malformed audio payload")

// DecodePCM16 interprets raw as interleaved little-endian signed 16-bit
// samples and deinterleaves them into a SampleBuffer, normalizing each
// sample by 1/32768.
func DecodePCM16(raw []byte, sampleRate, channelCount int) (*SampleBuffer, error) {
	if channelCount < 1 {
		return nil, fmt.Errorf("%w: channel count %d", ErrMalformedAudio, channelCount)
	}
	if sampleRate < 1 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrMalformedAudio, sampleRate)
	}

	frameSize := 2 * channelCount
	if len(raw)%frameSize != 0 {
		return nil, fmt.Errorf("%w: %d bytes is not a multiple of the %d-byte frame size",
			ErrMalformedAudio, len(raw), frameSize)
	}

	frames := len(raw) / frameSize
	buf := NewSilentBuffer(sampleRate, channelCount, frames)
	for i := range frames {
		for ch := range channelCount {
			off := i*frameSize + ch*2
			v := int16(binary.LittleEndian.Uint16(raw[off:]))
			buf.channels[ch][i] = float32(v) / 32768.0
		}
	}

	return buf, nil
}

// EncodePCM16 interleaves buf into little-endian signed 16-bit samples.
// Samples are clamped to [-1, 1]; negative values scale by 32768 and the rest
// by 32767, truncating toward zero.
func EncodePCM16(buf *SampleBuffer) []byte {
	nch := buf.ChannelCount()
	frames := buf.Frames()
	out := make([]byte, frames*nch*2)

	off := 0
	for i := range frames {
		for ch := range nch {
			binary.LittleEndian.PutUint16(out[off:], uint16(floatToPCM16(buf.channels[ch][i])))
			off += 2
		}
	}

	return out
}

func floatToPCM16(s float32) int16 {
	v := float64(s)
	switch {
	case v > 1:
		v = 1
	case v < -1:
		v = -1
	case math.IsNaN(v):
		v = 0
	}
	if v < 0 {
		return int16(v * 32768)
	}

	return int16(v * 32767)
}

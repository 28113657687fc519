package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cwbudde/wav"
)

// ErrFormatMismatch is returned when WAV audio is not in the format the
// pipeline expects.
var ErrFormatMismatch = errors.New("WAV format mismatch")

// DecodeWAV decodes a 16-bit PCM WAV file of any rate and channel count.
func DecodeWAV(data []byte) (*SampleBuffer, error) {
	dec, err := openWAV(data)
	if err != nil {
		return nil, err
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("reading PCM data: %w", err)
	}

	nch := int(dec.NumChans)
	frames := len(buf.Data) / nch
	out := NewSilentBuffer(int(dec.SampleRate), nch, frames)
	for i := range frames {
		for ch := range nch {
			out.channels[ch][i] = buf.Data[i*nch+ch]
		}
	}

	return out, nil
}

// PCMFromWAV validates a 16-bit PCM WAV file and returns the raw bytes of its
// data chunk with the sample rate and channel count from its header.
//
// Streaming writers emit 0xFFFFFFFF as the data size; the chunk then runs to
// the end of the file.
func PCMFromWAV(data []byte) (pcm []byte, sampleRate, channels int, err error) {
	dec, err := openWAV(data)
	if err != nil {
		return nil, 0, 0, err
	}

	sampleRate = int(dec.SampleRate)
	channels = int(dec.NumChans)

	// Walk the chunk list after the 12-byte RIFF/WAVE preamble.
	offset := 12
	for offset+8 <= len(data) {
		id := string(data[offset : offset+4])
		size := int64(binary.LittleEndian.Uint32(data[offset+4 : offset+8]))
		body := offset + 8

		if id == "data" {
			end := int64(body) + size
			if end > int64(len(data)) {
				end = int64(len(data))
			}
			frameSize := 2 * channels
			n := (int(end) - body) / frameSize * frameSize

			return data[body : body+n], sampleRate, channels, nil
		}

		offset = body + int(size)
		if size%2 != 0 {
			offset++
		}
	}

	return nil, 0, 0, fmt.Errorf("%w: data chunk not found", ErrMalformedAudio)
}

func openWAV(data []byte) (*wav.Decoder, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty WAV input", ErrMalformedAudio)
	}

	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return nil, fmt.Errorf("%w: invalid WAV file", ErrMalformedAudio)
	}

	if dec.BitDepth != ServiceBitDepth {
		return nil, fmt.Errorf("%w: bit depth %d, want %d", ErrFormatMismatch, dec.BitDepth, ServiceBitDepth)
	}
	if dec.NumChans < 1 {
		return nil, fmt.Errorf("%w: no channels", ErrFormatMismatch)
	}

	return dec, nil
}

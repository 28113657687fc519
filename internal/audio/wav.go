package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// WAVHeaderSize is the size of the canonical PCM WAV header written by WriteWAV.
const WAVHeaderSize = 44

// EncodeWAV serializes buf as a complete 16-bit PCM WAV file.
func EncodeWAV(buf *SampleBuffer) ([]byte, error) {
	if buf == nil {
		return nil, fmt.Errorf("encode WAV: nil buffer")
	}

	var out bytes.Buffer
	out.Grow(WAVHeaderSize + buf.Frames()*buf.ChannelCount()*2)

	if _, err := WriteWAV(&out, buf); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

// WriteWAV writes buf to w as a 16-bit PCM WAV file and returns the number of
// bytes written.
func WriteWAV(w io.Writer, buf *SampleBuffer) (int, error) {
	pcm := EncodePCM16(buf)

	hdr, err := wavHeader(buf.ChannelCount(), buf.SampleRate(), ServiceBitDepth, len(pcm))
	if err != nil {
		return 0, err
	}

	n, err := w.Write(hdr[:])
	if err != nil {
		return n, fmt.Errorf("write WAV header: %w", err)
	}

	m, err := w.Write(pcm)
	if err != nil {
		return n + m, fmt.Errorf("write PCM data: %w", err)
	}

	return n + m, nil
}

// wavHeader builds the 44-byte RIFF/WAVE header for a PCM data chunk of
// dataSize bytes. All multi-byte fields are little-endian.
func wavHeader(channels, sampleRate, bitDepth, dataSize int) ([WAVHeaderSize]byte, error) {
	var hdr [WAVHeaderSize]byte

	if bitDepth != 16 {
		return hdr, fmt.Errorf("unsupported bit depth %d (only 16-bit PCM)", bitDepth)
	}
	if channels < 1 {
		return hdr, fmt.Errorf("invalid channel count: %d", channels)
	}
	if sampleRate < 1 {
		return hdr, fmt.Errorf("invalid sample rate: %d", sampleRate)
	}

	blockAlign := channels * bitDepth / 8
	byteRate := sampleRate * blockAlign

	copy(hdr[0:4], "RIFF")
	binary.LittleEndian.PutUint32(hdr[4:8], uint32(WAVHeaderSize-8+dataSize))
	copy(hdr[8:12], "WAVE")
	copy(hdr[12:16], "fmt ")
	binary.LittleEndian.PutUint32(hdr[16:20], 16)
	binary.LittleEndian.PutUint16(hdr[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(hdr[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(hdr[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(hdr[28:32], uint32(byteRate))
	binary.LittleEndian.PutUint16(hdr[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(hdr[34:36], uint16(bitDepth))
	copy(hdr[36:40], "data")
	binary.LittleEndian.PutUint32(hdr[40:44], uint32(dataSize))

	return hdr, nil
}

package audio

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

// makeWAV builds a WAV file around the given interleaved PCM bytes.
// dataSize overrides the data chunk size field when non-zero.
func makeWAV(sampleRate uint32, numChannels, bitDepth uint16, pcm []byte, dataSize uint32) []byte {
	blockAlign := numChannels * bitDepth / 8
	byteRate := sampleRate * uint32(blockAlign)
	if dataSize == 0 {
		dataSize = uint32(len(pcm))
	}
	riffSize := 4 + (8 + 16) + (8 + uint32(len(pcm)))

	buf := &bytes.Buffer{}
	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, riffSize)
	buf.WriteString("WAVE")

	// fmt chunk
	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16)) // chunk size
	_ = binary.Write(buf, binary.LittleEndian, uint16(1))  // PCM
	_ = binary.Write(buf, binary.LittleEndian, numChannels)
	_ = binary.Write(buf, binary.LittleEndian, sampleRate)
	_ = binary.Write(buf, binary.LittleEndian, byteRate)
	_ = binary.Write(buf, binary.LittleEndian, blockAlign)
	_ = binary.Write(buf, binary.LittleEndian, bitDepth)

	// data chunk
	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, dataSize)
	buf.Write(pcm)

	return buf.Bytes()
}

func TestEncodeWAV_Header(t *testing.T) {
	buf := NewSilentBuffer(22050, 2, 10)

	data, err := EncodeWAV(buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	le := binary.LittleEndian
	checks := []struct {
		name string
		got  uint32
		want uint32
	}{
		{"riff size", le.Uint32(data[4:8]), uint32(len(data) - 8)},
		{"fmt chunk size", le.Uint32(data[16:20]), 16},
		{"format tag", uint32(le.Uint16(data[20:22])), 1},
		{"channels", uint32(le.Uint16(data[22:24])), 2},
		{"sample rate", le.Uint32(data[24:28]), 22050},
		{"byte rate", le.Uint32(data[28:32]), 22050 * 2 * 2},
		{"block align", uint32(le.Uint16(data[32:34])), 4},
		{"bit depth", uint32(le.Uint16(data[34:36])), 16},
		{"data size", le.Uint32(data[40:44]), 10 * 2 * 2},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}

	for off, marker := range map[int]string{0: "RIFF", 8: "WAVE", 12: "fmt ", 36: "data"} {
		if got := string(data[off : off+4]); got != marker {
			t.Errorf("marker at %d = %q, want %q", off, got, marker)
		}
	}
}

func TestEncodeWAV_SizeInvariant(t *testing.T) {
	for _, channels := range []int{1, 2, 3} {
		for _, frames := range []int{0, 1, 7, 2400} {
			buf := NewSilentBuffer(24000, channels, frames)

			data, err := EncodeWAV(buf)
			if err != nil {
				t.Fatalf("EncodeWAV(%d ch, %d frames): %v", channels, frames, err)
			}

			if want := 44 + frames*channels*2; len(data) != want {
				t.Errorf("EncodeWAV(%d ch, %d frames) length = %d, want %d", channels, frames, len(data), want)
			}
		}
	}
}

func TestEncodeWAV_PayloadMatchesEncodePCM16(t *testing.T) {
	buf, err := NewSampleBuffer(24000, [][]float32{{0.25, -0.75, 1.5}})
	if err != nil {
		t.Fatalf("NewSampleBuffer: %v", err)
	}

	data, err := EncodeWAV(buf)
	if err != nil {
		t.Fatalf("EncodeWAV: %v", err)
	}

	if !bytes.Equal(data[WAVHeaderSize:], EncodePCM16(buf)) {
		t.Error("WAV payload differs from EncodePCM16 output")
	}
}

func TestEncodeWAV_NilBuffer(t *testing.T) {
	if _, err := EncodeWAV(nil); err == nil {
		t.Fatal("expected error for nil buffer")
	}
}

func TestDecodeWAV_ReadsEncoderOutput(t *testing.T) {
	original, err := NewSampleBuffer(24000, [][]float32{{0.0, 0.5, -0.5, 1.0, -1.0}})
	if err != nil {
		t.Fatalf("NewSampleBuffer: %v", err)
	}

	encoded, err := EncodeWAV(original)
	if err != nil {
		t.Fatalf("encode error: %v", err)
	}

	decoded, err := DecodeWAV(encoded)
	if err != nil {
		t.Fatalf("decode error: %v", err)
	}

	if decoded.Frames() != original.Frames() || decoded.SampleRate() != 24000 || decoded.ChannelCount() != 1 {
		t.Fatalf("decoded %d frames / %d Hz / %d ch, want %d / 24000 / 1",
			decoded.Frames(), decoded.SampleRate(), decoded.ChannelCount(), original.Frames())
	}

	// 16-bit quantization introduces error up to ~1/32768.
	const tolerance = 1.0 / 32768.0 * 2
	for i, want := range original.Channel(0) {
		got := decoded.Channel(0)[i]
		if math.Abs(float64(got-want)) > tolerance {
			t.Errorf("sample[%d] = %f, want %f (tolerance %f)", i, got, want, tolerance)
		}
	}
}

func TestDecodeWAV_Rejects(t *testing.T) {
	t.Run("invalid data", func(t *testing.T) {
		if _, err := DecodeWAV([]byte("not a wav file")); err == nil {
			t.Fatal("expected error for invalid WAV")
		}
	})

	t.Run("empty input", func(t *testing.T) {
		if _, err := DecodeWAV(nil); err == nil {
			t.Fatal("expected error for nil input")
		}
	})

	t.Run("8-bit PCM", func(t *testing.T) {
		wav := makeWAV(24000, 1, 8, make([]byte, 10), 0)
		_, err := DecodeWAV(wav)
		if !errors.Is(err, ErrFormatMismatch) {
			t.Fatalf("expected ErrFormatMismatch, got %v", err)
		}
	})
}

func TestPCMFromWAV(t *testing.T) {
	pcm := pcmBytes(100, -200, 300, -400)

	t.Run("returns data chunk and format", func(t *testing.T) {
		got, rate, channels, err := PCMFromWAV(makeWAV(24000, 1, 16, pcm, 0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rate != 24000 || channels != 1 {
			t.Errorf("format = %d Hz / %d ch, want 24000 / 1", rate, channels)
		}
		if !bytes.Equal(got, pcm) {
			t.Errorf("pcm = %v, want %v", got, pcm)
		}
	})

	t.Run("streaming data size runs to end of file", func(t *testing.T) {
		got, _, _, err := PCMFromWAV(makeWAV(24000, 1, 16, pcm, 0xFFFFFFFF))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.Equal(got, pcm) {
			t.Errorf("pcm = %v, want %v", got, pcm)
		}
	})

	t.Run("drops trailing partial frame", func(t *testing.T) {
		got, _, channels, err := PCMFromWAV(makeWAV(24000, 2, 16, pcm[:6], 0))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if channels != 2 || len(got) != 4 {
			t.Errorf("got %d bytes / %d ch, want 4 / 2", len(got), channels)
		}
	})

	t.Run("rejects non-WAV input", func(t *testing.T) {
		if _, _, _, err := PCMFromWAV([]byte("RIFF")); err == nil {
			t.Fatal("expected error")
		}
	})
}

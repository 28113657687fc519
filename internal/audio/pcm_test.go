package audio

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"
)

func pcmBytes(values ...int16) []byte {
	out := make([]byte, len(values)*2)
	for i, v := range values {
		binary.LittleEndian.PutUint16(out[i*2:], uint16(v))
	}

	return out
}

func pcmValues(raw []byte) []int16 {
	out := make([]int16, len(raw)/2)
	for i := range out {
		out[i] = int16(binary.LittleEndian.Uint16(raw[i*2:]))
	}

	return out
}

func TestDecodePCM16(t *testing.T) {
	t.Run("normalizes by 32768", func(t *testing.T) {
		buf, err := DecodePCM16(pcmBytes(-32768, -16384, 0, 16384, 32767), 24000, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := []float32{-1.0, -0.5, 0, 0.5, 32767.0 / 32768.0}
		got := buf.Channel(0)
		if len(got) != len(want) {
			t.Fatalf("got %d samples, want %d", len(got), len(want))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("sample[%d] = %v, want %v", i, got[i], want[i])
			}
		}
	})

	t.Run("deinterleaves stereo", func(t *testing.T) {
		buf, err := DecodePCM16(pcmBytes(1, -1, 2, -2, 3, -3), 48000, 2)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if buf.ChannelCount() != 2 || buf.Frames() != 3 || buf.SampleRate() != 48000 {
			t.Fatalf("format = %d ch / %d frames / %d Hz, want 2 / 3 / 48000",
				buf.ChannelCount(), buf.Frames(), buf.SampleRate())
		}
		for i := range 3 {
			left := buf.Channel(0)[i] * 32768
			right := buf.Channel(1)[i] * 32768
			if left != float32(i+1) || right != -float32(i+1) {
				t.Errorf("frame %d = (%v, %v), want (%d, %d)", i, left, right, i+1, -(i + 1))
			}
		}
	})

	t.Run("empty payload yields zero frames", func(t *testing.T) {
		buf, err := DecodePCM16(nil, 24000, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if buf.Frames() != 0 {
			t.Errorf("frames = %d, want 0", buf.Frames())
		}
	})

	malformed := []struct {
		name     string
		raw      []byte
		rate     int
		channels int
	}{
		{name: "odd byte count", raw: []byte{1, 2, 3}, rate: 24000, channels: 1},
		{name: "partial stereo frame", raw: pcmBytes(1, 2, 3), rate: 24000, channels: 2},
		{name: "zero channels", raw: pcmBytes(1), rate: 24000, channels: 0},
		{name: "zero sample rate", raw: pcmBytes(1), rate: 0, channels: 1},
	}
	for _, tt := range malformed {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			_, err := DecodePCM16(tt.raw, tt.rate, tt.channels)
			if !errors.Is(err, ErrMalformedAudio) {
				t.Fatalf("expected ErrMalformedAudio, got %v", err)
			}
		})
	}
}

// Decoding divides by 32768 while encoding positive samples multiplies by
// 32767, so positive values come back one step lower. Zero and every negative
// value survive unchanged.
func TestEncodePCM16_RoundTripsBoundaryValues(t *testing.T) {
	tests := []struct {
		in   int16
		want int16
	}{
		{in: -32768, want: -32768},
		{in: -32767, want: -32767},
		{in: -1, want: -1},
		{in: 0, want: 0},
		{in: 1, want: 0},
		{in: 12345, want: 12344},
		{in: 32767, want: 32766},
	}

	for _, tt := range tests {
		buf, err := DecodePCM16(pcmBytes(tt.in), 24000, 1)
		if err != nil {
			t.Fatalf("decode %d: %v", tt.in, err)
		}
		if got := pcmValues(EncodePCM16(buf))[0]; got != tt.want {
			t.Errorf("round-trip of %d = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestEncodePCM16_NegativeValuesRoundTripExactly(t *testing.T) {
	for v := -32768; v < 0; v++ {
		buf, err := DecodePCM16(pcmBytes(int16(v)), 24000, 1)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if got := pcmValues(EncodePCM16(buf))[0]; int(got) != v {
			t.Fatalf("round-trip of %d = %d", v, got)
		}
	}
}

func TestEncodePCM16_Scaling(t *testing.T) {
	tests := []struct {
		name string
		in   float32
		want int16
	}{
		{name: "full positive", in: 1.0, want: 32767},
		{name: "full negative", in: -1.0, want: -32768},
		{name: "clamps above one", in: 2.0, want: 32767},
		{name: "clamps below minus one", in: -2.0, want: -32768},
		{name: "zero", in: 0, want: 0},
		{name: "half positive truncates", in: 0.5, want: 16383},
		{name: "half negative", in: -0.5, want: -16384},
		{name: "tiny negative truncates toward zero", in: -0.00001, want: 0},
		{name: "NaN becomes silence", in: float32(math.NaN()), want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf, err := NewSampleBuffer(24000, [][]float32{{tt.in}})
			if err != nil {
				t.Fatalf("NewSampleBuffer: %v", err)
			}
			if got := pcmValues(EncodePCM16(buf))[0]; got != tt.want {
				t.Errorf("EncodePCM16(%v) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}
}

func TestEncodePCM16_InterleavesChannels(t *testing.T) {
	buf, err := NewSampleBuffer(24000, [][]float32{{-1, 0}, {1, -0.5}})
	if err != nil {
		t.Fatalf("NewSampleBuffer: %v", err)
	}

	got := pcmValues(EncodePCM16(buf))
	want := []int16{-32768, 32767, 0, -16384}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

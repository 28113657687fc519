package audio

import "testing"

func ramp(start float32, n int) []float32 {
	out := make([]float32, n)
	for i := range out {
		out[i] = start + float32(i)/100
	}

	return out
}

func mustBuffer(t *testing.T, rate int, channels ...[]float32) *SampleBuffer {
	t.Helper()

	buf, err := NewSampleBuffer(rate, channels)
	if err != nil {
		t.Fatalf("NewSampleBuffer: %v", err)
	}

	return buf
}

func TestConcatenate_OrderAndLength(t *testing.T) {
	b1 := mustBuffer(t, 24000, ramp(0.1, 3), ramp(-0.1, 3))
	b2 := mustBuffer(t, 24000, ramp(0.5, 5), ramp(-0.5, 5))

	got := Concatenate([]*SampleBuffer{b1, b2})

	if got.Frames() != 8 {
		t.Fatalf("frames = %d, want 8", got.Frames())
	}
	if got.ChannelCount() != 2 || got.SampleRate() != 24000 {
		t.Fatalf("format = %d ch / %d Hz, want 2 / 24000", got.ChannelCount(), got.SampleRate())
	}

	for ch := range 2 {
		out := got.Channel(ch)
		for i := range 3 {
			if out[i] != b1.Channel(ch)[i] {
				t.Errorf("ch %d frame %d = %v, want %v (from B1)", ch, i, out[i], b1.Channel(ch)[i])
			}
		}
		for i := range 5 {
			if out[3+i] != b2.Channel(ch)[i] {
				t.Errorf("ch %d frame %d = %v, want %v (from B2)", ch, 3+i, out[3+i], b2.Channel(ch)[i])
			}
		}
	}
}

func TestConcatenate_Empty(t *testing.T) {
	got := Concatenate(nil)

	if got.Frames() != 0 {
		t.Errorf("frames = %d, want 0", got.Frames())
	}
	if got.SampleRate() != ServiceSampleRate {
		t.Errorf("sample rate = %d, want %d", got.SampleRate(), ServiceSampleRate)
	}
	if got.ChannelCount() != ServiceChannels {
		t.Errorf("channels = %d, want %d", got.ChannelCount(), ServiceChannels)
	}
}

func TestConcatenate_SingleReturnsSameBuffer(t *testing.T) {
	b := mustBuffer(t, 24000, ramp(0, 4))

	if got := Concatenate([]*SampleBuffer{b}); got != b {
		t.Error("single-buffer concatenate should return the input buffer")
	}
}

func TestConcatenate_PanicsOnMixedFormats(t *testing.T) {
	tests := []struct {
		name string
		bufs []*SampleBuffer
	}{
		{
			name: "sample rate",
			bufs: []*SampleBuffer{NewSilentBuffer(24000, 1, 2), NewSilentBuffer(44100, 1, 2)},
		},
		{
			name: "channel count",
			bufs: []*SampleBuffer{NewSilentBuffer(24000, 1, 2), NewSilentBuffer(24000, 2, 2)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Fatal("expected panic for mixed formats")
				}
			}()
			Concatenate(tt.bufs)
		})
	}
}

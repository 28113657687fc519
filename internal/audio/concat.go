package audio

import "fmt"

// Concatenate joins buffers end to end in slice order. All buffers must share
// one sample rate and channel count; mixing formats is a programming error
// and panics.
//
// No buffers yields an empty mono buffer at ServiceSampleRate. A single
// buffer is returned as is.
func Concatenate(buffers []*SampleBuffer) *SampleBuffer {
	switch len(buffers) {
	case 0:
		return NewSilentBuffer(ServiceSampleRate, ServiceChannels, 0)
	case 1:
		return buffers[0]
	}

	first := buffers[0]
	total := 0
	for i, b := range buffers {
		if b.sampleRate != first.sampleRate || b.ChannelCount() != first.ChannelCount() {
			panic(fmt.Sprintf("audio: concatenate buffer %d is %d Hz/%d ch, want %d Hz/%d ch",
				i, b.sampleRate, b.ChannelCount(), first.sampleRate, first.ChannelCount()))
		}
		total += b.Frames()
	}

	out := NewSilentBuffer(first.sampleRate, first.ChannelCount(), total)
	offset := 0
	for _, b := range buffers {
		for ch := range out.channels {
			copy(out.channels[ch][offset:], b.channels[ch])
		}
		offset += b.Frames()
	}

	return out
}

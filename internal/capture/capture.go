package capture

import (
	"context"
	"time"
)

// Frame is one read from the capture device: raw interleaved PCM.
type Frame struct {
	Data      []byte
	Timestamp time.Time
}

// Format describes the PCM layout of a Stream's frames.
type Format struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
}

// BytesPerFrame returns the size of one sample across all channels.
func (f Format) BytesPerFrame() int {
	return f.Channels * f.BitsPerSample / 8
}

// Stream is a live audio input. Frames is closed once the stream ends.
type Stream interface {
	Frames() <-chan Frame
	Format() Format
	// Release stops the device. Safe to call more than once.
	Release()
}

// Source hands out live streams. Acquire blocks until the device either
// produces audio or fails; failures are *AccessError.
type Source interface {
	Acquire(ctx context.Context) (Stream, error)
}

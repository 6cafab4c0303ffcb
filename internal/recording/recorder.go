package recording

import (
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leonardotrapani/voxnote/internal/capture"
)

// Tap receives every PCM frame as it is recorded, before fragmenting.
type Tap interface {
	Write(pcm []byte)
}

type Config struct {
	Timeslice time.Duration
}

func DefaultConfig() Config {
	return Config{Timeslice: 250 * time.Millisecond}
}

// Recorder turns a capture stream into WAV fragments, one per timeslice,
// and appends them to a Buffer.
type Recorder struct {
	config Config
	buffer *Buffer
	tap    Tap

	recording atomic.Bool
	ended     atomic.Bool
	emitted   atomic.Int64

	mu     sync.Mutex // guards stopCh and done
	stopCh chan struct{}
	done   chan struct{}
	wg     sync.WaitGroup
}

func NewRecorder(config Config, buffer *Buffer, tap Tap) *Recorder {
	return &Recorder{config: config, buffer: buffer, tap: tap}
}

func (r *Recorder) IsRecording() bool {
	return r.recording.Load()
}

// Done is closed when the recording loop exits, either through Stop or
// because the capture stream closed. It is nil before Start.
func (r *Recorder) Done() <-chan struct{} {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.done
}

// StreamEnded reports whether the loop exited because the device stopped
// delivering frames rather than because Stop was called.
func (r *Recorder) StreamEnded() bool {
	return r.ended.Load()
}

// Fragments returns how many fragments have been emitted, empty ones included.
func (r *Recorder) Fragments() int {
	return int(r.emitted.Load())
}

func (r *Recorder) Start(format capture.Format, frames <-chan capture.Frame) error {
	if r.recording.Load() {
		return fmt.Errorf("already recording")
	}
	if r.config.Timeslice <= 0 {
		return fmt.Errorf("invalid Timeslice: %v", r.config.Timeslice)
	}

	stopCh := make(chan struct{})
	done := make(chan struct{})
	r.mu.Lock()
	r.stopCh = stopCh
	r.done = done
	r.mu.Unlock()
	r.ended.Store(false)

	r.recording.Store(true)
	r.emit(streamingWAVHeader(format.SampleRate, format.Channels, format.BitsPerSample))

	r.wg.Add(1)
	go r.loop(frames, stopCh, done)
	return nil
}

// Stop emits the pending tail fragment and returns once nothing more will
// be appended.
func (r *Recorder) Stop() {
	r.mu.Lock()
	stopCh := r.stopCh
	r.stopCh = nil
	r.mu.Unlock()

	if stopCh != nil {
		close(stopCh)
	}
	r.wg.Wait()
}

func (r *Recorder) loop(frames <-chan capture.Frame, stopCh <-chan struct{}, done chan<- struct{}) {
	defer func() {
		r.recording.Store(false)
		close(done)
		r.wg.Done()
	}()

	ticker := time.NewTicker(r.config.Timeslice)
	defer ticker.Stop()

	var pending []byte
	for {
		select {
		case frame, ok := <-frames:
			if !ok {
				r.emit(pending)
				r.ended.Store(true)
				log.Printf("Recording: capture stream ended after %d fragments", r.Fragments())
				return
			}
			pending = r.take(pending, frame)

		case <-ticker.C:
			r.emit(pending)
			pending = nil

		case <-stopCh:
			// Keep whatever the device already delivered.
			for {
				select {
				case frame, ok := <-frames:
					if ok {
						pending = r.take(pending, frame)
						continue
					}
				default:
				}
				break
			}
			r.emit(pending)
			log.Printf("Recording: stopped after %d fragments", r.Fragments())
			return
		}
	}
}

func (r *Recorder) take(pending []byte, frame capture.Frame) []byte {
	if r.tap != nil {
		r.tap.Write(frame.Data)
	}
	return append(pending, frame.Data...)
}

func (r *Recorder) emit(fragment []byte) {
	r.emitted.Add(1)
	r.buffer.Append(fragment)
}

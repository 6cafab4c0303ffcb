package recording

import (
	"bytes"
	"errors"
	"io"
	"log"
	"sync"
)

// ErrAlreadyFinalized is returned when Finalize is called a second time.
var ErrAlreadyFinalized = errors.New("buffer already finalized")

// Artifact is the finished recording. It never changes after Finalize.
type Artifact struct {
	data        []byte
	contentType string
}

func (a *Artifact) ContentType() string { return a.contentType }
func (a *Artifact) Size() int           { return len(a.data) }

// Bytes returns a copy of the artifact contents.
func (a *Artifact) Bytes() []byte {
	out := make([]byte, len(a.data))
	copy(out, a.data)
	return out
}

// Reader returns a fresh reader over the artifact; each call starts at zero.
func (a *Artifact) Reader() io.Reader {
	return bytes.NewReader(a.data)
}

// Buffer accumulates recorder fragments in arrival order.
type Buffer struct {
	mu        sync.Mutex
	fragments [][]byte
	size      int
	artifact  *Artifact
}

func NewBuffer() *Buffer {
	return &Buffer{}
}

// Append stores a copy of fragment. Empty fragments are dropped; recorders
// emit them at timeslice boundaries when no audio arrived.
func (b *Buffer) Append(fragment []byte) {
	if len(fragment) == 0 {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.artifact != nil {
		log.Printf("Recording: dropping %d byte fragment after finalize", len(fragment))
		return
	}

	data := make([]byte, len(fragment))
	copy(data, fragment)
	b.fragments = append(b.fragments, data)
	b.size += len(data)
}

// Len returns the number of fragments held.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.fragments)
}

// Size returns the total number of bytes appended.
func (b *Buffer) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.size
}

// Finalize concatenates every fragment into one artifact. It may be
// called once.
func (b *Buffer) Finalize(contentType string) (*Artifact, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.artifact != nil {
		return nil, ErrAlreadyFinalized
	}

	data := make([]byte, 0, b.size)
	for _, f := range b.fragments {
		data = append(data, f...)
	}
	b.artifact = &Artifact{data: data, contentType: contentType}
	b.fragments = nil
	return b.artifact, nil
}

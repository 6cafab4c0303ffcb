package testutil

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/leonardotrapani/voxnote/internal/capture"
	"github.com/leonardotrapani/voxnote/internal/config"
	"github.com/leonardotrapani/voxnote/internal/gateway"
	"github.com/leonardotrapani/voxnote/internal/notify"
	"github.com/leonardotrapani/voxnote/internal/recording"
)

// TestConfig returns a valid configuration for testing
func TestConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			BaseURL: "http://127.0.0.1:5000",
			Timeout: 10 * time.Second,
		},
		Recording: config.RecordingConfig{
			SampleRate:        16000,
			Channels:          1,
			Format:            "s16",
			BufferSize:        8192,
			Device:            "",
			ChannelBufferSize: 30,
			Timeslice:         250 * time.Millisecond,
			AccessTimeout:     5 * time.Second,
		},
		Visualizer: config.VisualizerConfig{
			Enabled: false,
			FPS:     30,
			Width:   64,
			Height:  4,
		},
		Session: config.SessionConfig{
			DefaultTitle: "Voice Recording",
			HistorySize:  20,
			RetryDelay:   10 * time.Millisecond,
		},
		Navigation: config.NavigationConfig{
			Mode: "none",
		},
		Notifications: config.NotificationsConfig{
			Enabled: true,
			Type:    "log",
			Timeout: 5 * time.Second,
		},
	}
}

// WaitForCondition waits for a condition to be true or times out
func WaitForCondition(t *testing.T, condition func() bool, timeout time.Duration) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			t.Fatalf("Condition not met within %v", timeout)
		default:
			if condition() {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
}

// PCM returns n bytes of non-silent s16le test audio.
func PCM(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i % 256)
	}
	return data
}

// MockStream implements capture.Stream. Frames queued with Send are
// delivered in order; the channel closes on Release or End.
type MockStream struct {
	format capture.Format
	frames chan capture.Frame

	released  atomic.Bool
	closeOnce sync.Once
}

func NewMockStream(format capture.Format) *MockStream {
	return &MockStream{format: format, frames: make(chan capture.Frame, 64)}
}

func (m *MockStream) Frames() <-chan capture.Frame { return m.frames }
func (m *MockStream) Format() capture.Format       { return m.format }

func (m *MockStream) Send(data []byte) {
	m.frames <- capture.Frame{Data: data, Timestamp: time.Now()}
}

// End closes the stream as if the device went away.
func (m *MockStream) End() {
	m.closeOnce.Do(func() { close(m.frames) })
}

func (m *MockStream) Release() {
	m.released.Store(true)
	m.End()
}

func (m *MockStream) Released() bool {
	return m.released.Load()
}

// MockSource implements capture.Source. Each Acquire hands out a new
// MockStream unless AcquireError is set.
type MockSource struct {
	Format       capture.Format
	AcquireError error
	// Frames are queued on every new stream before Acquire returns.
	Frames [][]byte
	// Gate, when set, holds Acquire until it is closed, like a slow
	// permission prompt.
	Gate chan struct{}

	mu      sync.Mutex
	calls   int
	streams []*MockStream
}

func NewMockSource() *MockSource {
	return &MockSource{
		Format: capture.Format{SampleRate: 16000, Channels: 1, BitsPerSample: 16},
		Frames: [][]byte{PCM(640), PCM(640)},
	}
}

func (m *MockSource) Acquire(ctx context.Context) (capture.Stream, error) {
	if m.Gate != nil {
		select {
		case <-m.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.AcquireError != nil {
		return nil, m.AcquireError
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stream := NewMockStream(m.Format)
	for _, data := range m.Frames {
		stream.Send(data)
	}
	m.streams = append(m.streams, stream)
	return stream, nil
}

func (m *MockSource) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastStream returns the most recently acquired stream, or nil.
func (m *MockSource) LastStream() *MockStream {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.streams) == 0 {
		return nil
	}
	return m.streams[len(m.streams)-1]
}

// SubmitCall records one physical submission attempt.
type SubmitCall struct {
	Title     string
	RequestID int64
	Size      int
}

// SubmitReply is one scripted gateway answer.
type SubmitReply struct {
	Result gateway.Result
	Err    error
}

// MockGateway implements session.Submitter. Replies are consumed in order;
// the last one repeats. When Block is set every call waits for Release.
type MockGateway struct {
	Replies []SubmitReply
	Block   bool
	BaseURL string

	mu      sync.Mutex
	calls   []SubmitCall
	release chan struct{}
}

func NewMockGateway(replies ...SubmitReply) *MockGateway {
	return &MockGateway{
		Replies: replies,
		BaseURL: "http://notes.test",
		release: make(chan struct{}),
	}
}

func (m *MockGateway) Submit(ctx context.Context, artifact *recording.Artifact, title string, requestID int64) (gateway.Result, error) {
	m.mu.Lock()
	n := len(m.calls)
	m.calls = append(m.calls, SubmitCall{Title: title, RequestID: requestID, Size: artifact.Size()})
	block := m.Block
	m.mu.Unlock()

	if block {
		select {
		case <-m.release:
		case <-ctx.Done():
			return gateway.Result{}, ctx.Err()
		}
	}

	if len(m.Replies) == 0 {
		return gateway.Result{ID: "1"}, nil
	}
	if n >= len(m.Replies) {
		n = len(m.Replies) - 1
	}
	return m.Replies[n].Result, m.Replies[n].Err
}

func (m *MockGateway) ResultURL(id string) string {
	return m.BaseURL + "/transcription/" + id
}

func (m *MockGateway) EditURL(id string) string {
	return m.ResultURL(id) + "/edit"
}

func (m *MockGateway) PDFURL(id string) string {
	return m.ResultURL(id) + "/pdf"
}

// Release unblocks every pending and future Submit.
func (m *MockGateway) Release() {
	close(m.release)
}

func (m *MockGateway) Calls() []SubmitCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]SubmitCall, len(m.calls))
	copy(out, m.calls)
	return out
}

// Notification is one message seen by MockNotifier.
type Notification struct {
	Kind notify.Kind
	Msg  string
}

// MockNotifier implements notify.Notifier and records every message.
type MockNotifier struct {
	mu       sync.Mutex
	messages []Notification
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Notify(kind notify.Kind, msg string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, Notification{Kind: kind, Msg: msg})
}

func (m *MockNotifier) Messages() []Notification {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Notification, len(m.messages))
	copy(out, m.messages)
	return out
}

// Errors returns only the error notifications.
func (m *MockNotifier) Errors() []string {
	var out []string
	for _, n := range m.Messages() {
		if n.Kind == notify.Error {
			out = append(out, n.Msg)
		}
	}
	return out
}

// MockNavigator implements session.Navigator and records opened URLs.
type MockNavigator struct {
	OpenError error

	mu   sync.Mutex
	urls []string
}

func NewMockNavigator() *MockNavigator {
	return &MockNavigator{}
}

func (m *MockNavigator) Open(ctx context.Context, url string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urls = append(m.urls, url)
	return m.OpenError
}

func (m *MockNavigator) URLs() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.urls))
	copy(out, m.urls)
	return out
}

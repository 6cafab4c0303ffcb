package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/leonardotrapani/voxnote/internal/capture"
	"github.com/leonardotrapani/voxnote/internal/gateway"
	"github.com/leonardotrapani/voxnote/internal/notify"
	"github.com/leonardotrapani/voxnote/internal/recording"
	"github.com/leonardotrapani/voxnote/internal/visualizer"
)

// ErrInvalidTransition is returned when a gesture does not apply to the
// current state.
var ErrInvalidTransition = errors.New("invalid session transition")

// ErrClosed is returned by Start once Close has been called.
var ErrClosed = errors.New("session closed")

const captureEndedMessage = "The microphone stopped unexpectedly. The audio recorded so far was kept."

const DefaultRetryDelay = time.Second

// Submitter is the part of the gateway the controller needs.
type Submitter interface {
	Submit(ctx context.Context, artifact *recording.Artifact, title string, requestID int64) (gateway.Result, error)
	ResultURL(id string) string
	EditURL(id string) string
	PDFURL(id string) string
}

type Options struct {
	Source    capture.Source
	Gateway   Submitter
	Notifier  notify.Notifier
	Navigator Navigator

	// Renderer enables the live visualizer when set.
	Renderer   visualizer.Renderer
	Visualizer visualizer.Config
	Recording  recording.Config

	DefaultTitle string
	HistorySize  int
	RetryDelay   time.Duration
	Now          func() time.Time
}

// Snapshot is a point-in-time view of the session.
type Snapshot struct {
	State        State
	Status       string
	Title        string
	RequestID    int64
	ArtifactSize int
	ResultID     string
	ResultURL    string
	EditURL      string
	PDFURL       string
	Error        string
}

// Controller owns one recording session at a time: it acquires the device,
// records into a buffer, finalizes the artifact and submits it. All gestures
// are safe to call from multiple goroutines.
type Controller struct {
	opts    Options
	history *History

	mu        sync.Mutex
	state     State
	title     string
	requestID int64
	stream    capture.Stream
	buffer    *recording.Buffer
	recorder  *recording.Recorder
	vis       *visualizer.Visualizer
	artifact  *recording.Artifact
	resultID  string
	resultURL string
	editURL   string
	pdfURL    string
	lastErr   string
	closed    bool
	observers []func(Snapshot)

	recording atomic.Bool
}

func NewController(opts Options) *Controller {
	opts = withDefaults(opts)
	return &Controller{
		opts:    opts,
		history: NewHistory(opts.HistorySize),
	}
}

// Configure replaces the collaborators and settings used from the next
// gesture on. A submission in flight keeps the options it started with.
func (c *Controller) Configure(opts Options) {
	opts = withDefaults(opts)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.opts = opts
	c.history.SetMax(opts.HistorySize)
}

func withDefaults(opts Options) Options {
	if opts.Notifier == nil {
		opts.Notifier = notify.Nop{}
	}
	if opts.Navigator == nil {
		opts.Navigator = NopNavigator{}
	}
	if opts.Recording.Timeslice <= 0 {
		opts.Recording = recording.DefaultConfig()
	}
	if opts.DefaultTitle == "" {
		opts.DefaultTitle = gateway.DefaultTitle
	}
	if opts.RetryDelay < 0 {
		opts.RetryDelay = 0
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return opts
}

// OnChange registers fn to be called after every state change.
func (c *Controller) OnChange(fn func(Snapshot)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observers = append(c.observers, fn)
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	s := Snapshot{
		State:     c.state,
		Status:    c.state.StatusText(),
		Title:     c.title,
		RequestID: c.requestID,
		ResultID:  c.resultID,
		ResultURL: c.resultURL,
		EditURL:   c.editURL,
		PDFURL:    c.pdfURL,
		Error:     c.lastErr,
	}
	if c.artifact != nil {
		s.ArtifactSize = c.artifact.Size()
	}
	return s
}

// Artifact returns the finalized recording, or nil when none exists.
func (c *Controller) Artifact() *recording.Artifact {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.artifact
}

func (c *Controller) History() []HistoryEntry {
	return c.history.Entries()
}

// IsRecording is the flag the visualizer loop keys off.
func (c *Controller) IsRecording() bool {
	return c.recording.Load()
}

// Start begins a new session: it requests the capture device and, once it
// is granted, starts recording. A finished (succeeded) session is discarded.
func (c *Controller) Start(ctx context.Context, title string) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrClosed
	}
	if c.state != Idle && c.state != Succeeded {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot start while %s", ErrInvalidTransition, state)
	}
	opts := c.opts
	c.discardLocked()
	c.title = title
	c.setStateLocked(RequestingAccess)
	c.mu.Unlock()
	c.changed()

	stream, err := opts.Source.Acquire(ctx)
	if err != nil {
		log.Printf("Session: capture acquisition failed: %v", err)
		c.mu.Lock()
		c.title = ""
		c.lastErr = capture.Message(err)
		c.setStateLocked(Idle)
		c.mu.Unlock()
		c.changed()
		opts.Notifier.Notify(notify.Error, capture.Message(err))
		return err
	}

	format := stream.Format()
	buffer := recording.NewBuffer()

	var tap recording.Tap
	var analyser *visualizer.Analyser
	if opts.Renderer != nil {
		analyser = visualizer.NewAnalyser(format.Channels)
		tap = analyser
	}

	recorder := recording.NewRecorder(opts.Recording, buffer, tap)
	if err := recorder.Start(format, stream.Frames()); err != nil {
		stream.Release()
		log.Printf("Session: recorder failed to start: %v", err)
		c.mu.Lock()
		c.title = ""
		c.lastErr = err.Error()
		c.setStateLocked(Idle)
		c.mu.Unlock()
		c.changed()
		opts.Notifier.Notify(notify.Error, "Could not start recording: "+err.Error())
		return fmt.Errorf("start recorder: %w", err)
	}

	c.recording.Store(true)
	var vis *visualizer.Visualizer
	if analyser != nil {
		vis = visualizer.New(opts.Visualizer, opts.Renderer)
		vis.Start(analyser, c.recording.Load)
	}

	c.mu.Lock()
	c.stream = stream
	c.buffer = buffer
	c.recorder = recorder
	c.vis = vis
	if c.closed {
		// Close ran while the device was being requested.
		c.stopCaptureLocked()
		c.title = ""
		c.setStateLocked(Idle)
		c.mu.Unlock()
		c.changed()
		return ErrClosed
	}
	c.setStateLocked(Recording)
	c.mu.Unlock()
	c.changed()

	go c.watchCapture(recorder)

	log.Printf("Session: recording at %d Hz, %d channel(s)", format.SampleRate, format.Channels)
	return nil
}

// watchCapture stops the session when the device ends the stream on its own,
// keeping the audio captured so far as the artifact.
func (c *Controller) watchCapture(recorder *recording.Recorder) {
	<-recorder.Done()
	if !recorder.StreamEnded() {
		return
	}

	c.mu.Lock()
	if c.state != Recording || c.recorder != recorder {
		c.mu.Unlock()
		return
	}
	opts := c.opts
	artifact, err := c.stopCaptureLocked()
	if err != nil {
		c.lastErr = err.Error()
		c.setStateLocked(Idle)
		c.mu.Unlock()
		c.changed()
		opts.Notifier.Notify(notify.Error, captureEndedMessage)
		return
	}
	c.artifact = artifact
	c.lastErr = captureEndedMessage
	c.setStateLocked(Stopped)
	c.mu.Unlock()
	c.changed()

	log.Printf("Session: capture ended early, kept %d bytes", artifact.Size())
	opts.Notifier.Notify(notify.Error, captureEndedMessage)
}

// Stop ends the recording, finalizes the artifact and releases the device.
func (c *Controller) Stop() error {
	c.mu.Lock()
	if c.state != Recording {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot stop while %s", ErrInvalidTransition, state)
	}

	artifact, err := c.stopCaptureLocked()
	if err != nil {
		// Only reachable if the buffer was finalized elsewhere.
		c.lastErr = err.Error()
		c.setStateLocked(Idle)
		c.mu.Unlock()
		c.changed()
		return fmt.Errorf("finalize recording: %w", err)
	}

	c.artifact = artifact
	c.setStateLocked(Stopped)
	c.mu.Unlock()
	c.changed()

	log.Printf("Session: artifact ready, %d bytes (%s)", artifact.Size(), artifact.ContentType())
	return nil
}

// stopCaptureLocked stops the recorder and visualizer, finalizes the buffer
// and releases the device. The device is released whatever finalize returns.
func (c *Controller) stopCaptureLocked() (*recording.Artifact, error) {
	c.recording.Store(false)
	if c.recorder != nil {
		c.recorder.Stop()
	}
	if c.vis != nil {
		c.vis.Stop()
	}

	var artifact *recording.Artifact
	var err error
	if c.buffer != nil {
		artifact, err = c.buffer.Finalize(recording.ContentTypeWAV)
	}

	if c.stream != nil {
		c.stream.Release()
		log.Printf("Session: capture device released")
	}

	c.stream = nil
	c.buffer = nil
	c.recorder = nil
	c.vis = nil
	return artifact, err
}

// SetTitle changes the title used for the next submission.
func (c *Controller) SetTitle(title string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Submitting {
		return fmt.Errorf("%w: cannot change title while submitting", ErrInvalidTransition)
	}
	c.title = title
	return nil
}

// Submit sends the artifact. It returns accepted=false without error when a
// submission is already in flight. A NetworkUnreachable failure is retried
// once; the artifact is kept on failure so the user can submit again.
func (c *Controller) Submit(ctx context.Context) (bool, error) {
	c.mu.Lock()
	if c.state == Submitting {
		c.mu.Unlock()
		log.Printf("Session: submission already in flight, ignoring")
		return false, nil
	}
	if c.state != Stopped && c.state != Failed {
		state := c.state
		c.mu.Unlock()
		return false, fmt.Errorf("%w: nothing to submit while %s", ErrInvalidTransition, state)
	}

	opts := c.opts
	artifact := c.artifact
	title := c.title
	if strings.TrimSpace(title) == "" {
		title = opts.DefaultTitle
	}
	c.lastErr = ""
	c.setStateLocked(Submitting)
	c.mu.Unlock()
	c.changed()

	result, err := c.submitWithRetry(ctx, opts, artifact, title)
	if err != nil {
		msg := gateway.Message(err)
		c.mu.Lock()
		c.lastErr = msg
		c.setStateLocked(Failed)
		c.mu.Unlock()
		c.changed()
		opts.Notifier.Notify(notify.Error, msg)
		return true, err
	}

	url := opts.Gateway.ResultURL(result.ID)
	editURL := opts.Gateway.EditURL(result.ID)
	pdfURL := opts.Gateway.PDFURL(result.ID)
	c.history.Prepend(HistoryEntry{
		ID:        result.ID,
		Title:     title,
		CreatedAt: opts.Now(),
		URL:       url,
		EditURL:   editURL,
		PDFURL:    pdfURL,
	})

	c.mu.Lock()
	c.title = title
	c.resultID = result.ID
	c.resultURL = url
	c.editURL = editURL
	c.pdfURL = pdfURL
	c.setStateLocked(Succeeded)
	c.mu.Unlock()
	c.changed()

	opts.Notifier.Notify(notify.Success, "Transcription complete: "+title)
	if err := opts.Navigator.Open(ctx, url); err != nil {
		log.Printf("Session: failed to open result view %s: %v", url, err)
		opts.Notifier.Notify(notify.Info, "Transcription ready at "+url)
	}
	return true, nil
}

func (c *Controller) submitWithRetry(ctx context.Context, opts Options, artifact *recording.Artifact, title string) (gateway.Result, error) {
	for attempt := 1; ; attempt++ {
		requestID := c.nextRequestID()
		log.Printf("Session: submitting %d bytes as %q (request %d, attempt %d)",
			artifact.Size(), title, requestID, attempt)

		result, err := opts.Gateway.Submit(ctx, artifact, title, requestID)
		if err == nil {
			return result, nil
		}
		if attempt > 1 || !gateway.IsRetryable(err) {
			log.Printf("Session: request %d failed: %v", requestID, err)
			return gateway.Result{}, err
		}

		log.Printf("Session: request %d failed, retrying in %v: %v", requestID, opts.RetryDelay, err)
		if opts.RetryDelay > 0 {
			select {
			case <-ctx.Done():
				return gateway.Result{}, ctx.Err()
			case <-time.After(opts.RetryDelay):
			}
		}
	}
}

func (c *Controller) nextRequestID() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requestID++
	return c.requestID
}

// Reset discards the current session and returns to Idle. A recording in
// progress is abandoned and its device released.
func (c *Controller) Reset() error {
	c.mu.Lock()
	if c.state.Busy() {
		state := c.state
		c.mu.Unlock()
		return fmt.Errorf("%w: cannot reset while %s", ErrInvalidTransition, state)
	}
	if c.state == Idle {
		c.mu.Unlock()
		return nil
	}
	if c.state == Recording {
		c.stopCaptureLocked()
	}
	c.discardLocked()
	c.title = ""
	c.setStateLocked(Idle)
	c.mu.Unlock()
	c.changed()
	return nil
}

// Close abandons any recording in progress. Submissions are left to finish
// or fail through their own context.
//
// A Start still waiting on the device returns ErrClosed and releases it.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.state == Recording {
		c.stopCaptureLocked()
		c.discardLocked()
		c.setStateLocked(Idle)
	}
}

func (c *Controller) discardLocked() {
	c.artifact = nil
	c.resultID = ""
	c.resultURL = ""
	c.editURL = ""
	c.pdfURL = ""
	c.lastErr = ""
}

func (c *Controller) setStateLocked(s State) {
	if c.state == s {
		return
	}
	log.Printf("Session: %s -> %s", c.state, s)
	c.state = s
}

func (c *Controller) changed() {
	c.mu.Lock()
	snap := c.snapshotLocked()
	observers := make([]func(Snapshot), len(c.observers))
	copy(observers, c.observers)
	c.mu.Unlock()

	for _, fn := range observers {
		fn(snap)
	}
}

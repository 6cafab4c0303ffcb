package session

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/leonardotrapani/voxnote/internal/capture"
	"github.com/leonardotrapani/voxnote/internal/gateway"
	"github.com/leonardotrapani/voxnote/internal/notify"
	"github.com/leonardotrapani/voxnote/internal/recording"
	"github.com/leonardotrapani/voxnote/internal/testutil"
	"github.com/leonardotrapani/voxnote/internal/visualizer"
)

type fixture struct {
	source    *testutil.MockSource
	gateway   *testutil.MockGateway
	notifier  *testutil.MockNotifier
	navigator *testutil.MockNavigator
	ctrl      *Controller
}

func newFixture(t *testing.T, submitter Submitter, replies ...testutil.SubmitReply) *fixture {
	t.Helper()
	f := &fixture{
		source:    testutil.NewMockSource(),
		gateway:   testutil.NewMockGateway(replies...),
		notifier:  testutil.NewMockNotifier(),
		navigator: testutil.NewMockNavigator(),
	}
	if submitter == nil {
		submitter = f.gateway
	}
	f.ctrl = NewController(Options{
		Source:     f.source,
		Gateway:    submitter,
		Notifier:   f.notifier,
		Navigator:  f.navigator,
		Recording:  recording.Config{Timeslice: 10 * time.Millisecond},
		RetryDelay: time.Millisecond,
		Now:        func() time.Time { return time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC) },
	})
	t.Cleanup(f.ctrl.Close)
	return f
}

// record runs Start then Stop, leaving the controller in Stopped.
func (f *fixture) record(t *testing.T, title string) {
	t.Helper()
	if err := f.ctrl.Start(context.Background(), title); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(30 * time.Millisecond)
	if err := f.ctrl.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if got := f.ctrl.State(); got != Stopped {
		t.Fatalf("state after Stop = %v, want stopped", got)
	}
}

func checkArtifactInvariant(t *testing.T, c *Controller) {
	t.Helper()
	state := c.State()
	if has := c.Artifact() != nil; has != state.HasArtifact() {
		t.Errorf("state %v with artifact=%v", state, has)
	}
}

func TestScenario_SuccessNavigatesToResult(t *testing.T) {
	var mu sync.Mutex
	var gotTitle, gotRequestID string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("ParseMultipartForm: %v", err)
		}
		mu.Lock()
		defer mu.Unlock()
		gotTitle = r.FormValue("title")
		gotRequestID = r.FormValue("request_id")
		io.WriteString(w, `{"success": true, "id": 42}`)
	}))
	defer srv.Close()

	config := gateway.DefaultConfig()
	config.BaseURL = srv.URL
	f := newFixture(t, gateway.New(config))

	f.record(t, "")
	checkArtifactInvariant(t, f.ctrl)

	accepted, err := f.ctrl.Submit(context.Background())
	if !accepted || err != nil {
		t.Fatalf("Submit() = %v, %v", accepted, err)
	}

	if got := f.ctrl.State(); got != Succeeded {
		t.Fatalf("state = %v, want succeeded", got)
	}
	checkArtifactInvariant(t, f.ctrl)

	wantURL := srv.URL + "/transcription/42"
	if urls := f.navigator.URLs(); len(urls) != 1 || urls[0] != wantURL {
		t.Errorf("navigated to %v, want [%s]", urls, wantURL)
	}

	history := f.ctrl.History()
	if len(history) != 1 {
		t.Fatalf("history has %d entries, want 1", len(history))
	}
	if history[0].ID != "42" || history[0].Title != "Voice Recording" || history[0].URL != wantURL {
		t.Errorf("history entry = %+v", history[0])
	}
	if history[0].EditURL != wantURL+"/edit" || history[0].PDFURL != wantURL+"/pdf" {
		t.Errorf("history links = %q, %q", history[0].EditURL, history[0].PDFURL)
	}
	mu.Lock()
	if gotTitle != "Voice Recording" || gotRequestID != "1" {
		t.Errorf("server saw title=%q request_id=%q", gotTitle, gotRequestID)
	}
	mu.Unlock()

	snap := f.ctrl.Snapshot()
	if snap.ResultID != "42" || snap.Status != "Transcription complete" {
		t.Errorf("snapshot = %+v", snap)
	}
	if snap.EditURL != wantURL+"/edit" || snap.PDFURL != wantURL+"/pdf" {
		t.Errorf("snapshot links = %q, %q", snap.EditURL, snap.PDFURL)
	}
}

func TestScenario_PermissionDeniedReturnsToIdle(t *testing.T) {
	f := newFixture(t, nil)
	f.source.AcquireError = capture.NewAccessError(capture.PermissionDenied, errors.New("denied by user"))

	err := f.ctrl.Start(context.Background(), "Standup")
	if kind, ok := capture.KindOf(err); !ok || kind != capture.PermissionDenied {
		t.Fatalf("Start() error = %v, want PermissionDenied", err)
	}

	if got := f.ctrl.State(); got != Idle {
		t.Errorf("state = %v, want idle", got)
	}
	f.ctrl.mu.Lock()
	buffer := f.ctrl.buffer
	f.ctrl.mu.Unlock()
	if buffer != nil {
		t.Error("no buffer should exist after a denied acquisition")
	}
	checkArtifactInvariant(t, f.ctrl)

	errs := f.notifier.Errors()
	if len(errs) != 1 || !strings.Contains(errs[0], "denied") {
		t.Errorf("error notifications = %v", errs)
	}
	if f.ctrl.IsRecording() {
		t.Error("recording flag should be clear")
	}

	// The user can try again.
	f.source.AcquireError = nil
	if err := f.ctrl.Start(context.Background(), ""); err != nil {
		t.Errorf("retry Start() error = %v", err)
	}
}

func TestScenario_ServerErrorKeepsArtifact(t *testing.T) {
	var calls int
	var mu sync.Mutex
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		calls++
		mu.Unlock()
		w.WriteHeader(http.StatusInternalServerError)
		io.WriteString(w, "internal error")
	}))
	defer srv.Close()

	config := gateway.DefaultConfig()
	config.BaseURL = srv.URL
	f := newFixture(t, gateway.New(config))
	f.record(t, "Standup")
	before := f.ctrl.Artifact()

	accepted, err := f.ctrl.Submit(context.Background())
	if !accepted || err == nil {
		t.Fatalf("Submit() = %v, %v; want accepted with error", accepted, err)
	}

	if got := f.ctrl.State(); got != Failed {
		t.Fatalf("state = %v, want failed", got)
	}
	errs := f.notifier.Errors()
	if len(errs) != 1 || !strings.Contains(errs[0], "internal error") {
		t.Errorf("error notifications = %v", errs)
	}
	if after := f.ctrl.Artifact(); after == nil || after != before {
		t.Error("artifact should survive a failed submission")
	}
	mu.Lock()
	if calls != 1 {
		t.Errorf("server errors must not be retried, got %d calls", calls)
	}
	mu.Unlock()
	if len(f.navigator.URLs()) != 0 || len(f.ctrl.History()) != 0 {
		t.Error("failed submission must not navigate or add history")
	}
}

func TestArtifactIsDecodableWAV(t *testing.T) {
	f := newFixture(t, nil)
	f.record(t, "")

	a := f.ctrl.Artifact()
	if a.ContentType() != recording.ContentTypeWAV {
		t.Errorf("content type = %q", a.ContentType())
	}
	data := a.Bytes()
	if !strings.HasPrefix(string(data), "RIFF") {
		t.Error("artifact should start with a RIFF header")
	}
	if a.Size() != 44+2*640 {
		t.Errorf("artifact size = %d, want %d", a.Size(), 44+2*640)
	}
}

func TestSubmit_AtMostOneInFlight(t *testing.T) {
	f := newFixture(t, nil, testutil.SubmitReply{Result: gateway.Result{ID: "7"}})
	f.gateway.Block = true
	f.record(t, "")

	done := make(chan error, 1)
	go func() {
		_, err := f.ctrl.Submit(context.Background())
		done <- err
	}()
	testutil.WaitForCondition(t, func() bool { return len(f.gateway.Calls()) == 1 }, time.Second)

	accepted, err := f.ctrl.Submit(context.Background())
	if accepted || err != nil {
		t.Errorf("second Submit() = %v, %v; want ignored", accepted, err)
	}
	if n := len(f.gateway.Calls()); n != 1 {
		t.Errorf("gateway called %d times while in flight, want 1", n)
	}
	if err := f.ctrl.Reset(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Reset() while submitting = %v", err)
	}

	f.gateway.Release()
	if err := <-done; err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if n := len(f.gateway.Calls()); n != 1 {
		t.Errorf("gateway called %d times, want 1", n)
	}
	if got := f.ctrl.State(); got != Succeeded {
		t.Errorf("state = %v, want succeeded", got)
	}
}

func TestSubmit_RetryBound(t *testing.T) {
	unreachable := &gateway.TransportError{Kind: gateway.NetworkUnreachable, Err: errors.New("connection refused")}
	rejected := &gateway.ApplicationError{StatusCode: 400, Message: "No audio file provided."}

	tests := []struct {
		name      string
		replies   []testutil.SubmitReply
		wantCalls int
		wantState State
	}{
		{
			name:      "network failure retried once",
			replies:   []testutil.SubmitReply{{Err: unreachable}},
			wantCalls: 2,
			wantState: Failed,
		},
		{
			name:      "network failure then success",
			replies:   []testutil.SubmitReply{{Err: unreachable}, {Result: gateway.Result{ID: "9"}}},
			wantCalls: 2,
			wantState: Succeeded,
		},
		{
			name:      "application error not retried",
			replies:   []testutil.SubmitReply{{Err: rejected}},
			wantCalls: 1,
			wantState: Failed,
		},
		{
			name:      "malformed response not retried",
			replies:   []testutil.SubmitReply{{Err: &gateway.TransportError{Kind: gateway.MalformedResponse}}},
			wantCalls: 1,
			wantState: Failed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, nil, tt.replies...)
			f.record(t, "")

			f.ctrl.Submit(context.Background())

			calls := f.gateway.Calls()
			if len(calls) != tt.wantCalls {
				t.Fatalf("gateway called %d times, want %d", len(calls), tt.wantCalls)
			}
			for i, call := range calls {
				if call.RequestID != int64(i+1) {
					t.Errorf("attempt %d used request id %d", i, call.RequestID)
				}
			}
			if got := f.ctrl.State(); got != tt.wantState {
				t.Errorf("state = %v, want %v", got, tt.wantState)
			}
		})
	}
}

func TestSubmit_ApplicationErrorShownVerbatim(t *testing.T) {
	f := newFixture(t, nil, testutil.SubmitReply{Err: &gateway.ApplicationError{Message: "Audio too short"}})
	f.record(t, "")
	f.ctrl.Submit(context.Background())

	errs := f.notifier.Errors()
	if len(errs) != 1 || errs[0] != "Audio too short" {
		t.Errorf("error notifications = %v", errs)
	}
	if f.ctrl.Snapshot().Error != "Audio too short" {
		t.Errorf("snapshot error = %q", f.ctrl.Snapshot().Error)
	}
}

func TestSubmit_ManualRetryUsesFreshRequestID(t *testing.T) {
	f := newFixture(t, nil,
		testutil.SubmitReply{Err: &gateway.ApplicationError{Message: "busy"}},
		testutil.SubmitReply{Result: gateway.Result{ID: "5"}},
	)
	f.record(t, "Retro")

	f.ctrl.Submit(context.Background())
	if f.ctrl.State() != Failed {
		t.Fatalf("state = %v, want failed", f.ctrl.State())
	}
	if _, err := f.ctrl.Submit(context.Background()); err != nil {
		t.Fatalf("manual retry error = %v", err)
	}

	calls := f.gateway.Calls()
	if len(calls) != 2 || calls[0].RequestID != 1 || calls[1].RequestID != 2 {
		t.Errorf("calls = %+v", calls)
	}
	if calls[0].Size != calls[1].Size {
		t.Error("manual retry should resend the same artifact")
	}
	if h := f.ctrl.History(); len(h) != 1 || h[0].Title != "Retro" {
		t.Errorf("history = %+v", h)
	}
}

func TestStop_ReleasesDeviceBeforeSubmit(t *testing.T) {
	f := newFixture(t, nil)
	f.record(t, "")

	stream := f.source.LastStream()
	if !stream.Released() {
		t.Error("device should be released as soon as recording stops")
	}
	if n := len(f.gateway.Calls()); n != 0 {
		t.Errorf("no submission expected yet, got %d", n)
	}
	if f.ctrl.IsRecording() {
		t.Error("recording flag should be clear after Stop")
	}
}

func TestInvalidTransitions(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	if err := f.ctrl.Stop(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Stop() from idle = %v", err)
	}
	if _, err := f.ctrl.Submit(ctx); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Submit() from idle = %v", err)
	}

	if err := f.ctrl.Start(ctx, ""); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := f.ctrl.Start(ctx, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Start() while recording = %v", err)
	}
	if _, err := f.ctrl.Submit(ctx); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Submit() while recording = %v", err)
	}
	if err := f.ctrl.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	if err := f.ctrl.Stop(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("second Stop() = %v", err)
	}
	if err := f.ctrl.Start(ctx, ""); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Start() from stopped = %v", err)
	}
	if f.source.Calls() != 1 {
		t.Errorf("rejected Start must not acquire, got %d acquisitions", f.source.Calls())
	}
}

func TestReset(t *testing.T) {
	t.Run("discards stopped artifact", func(t *testing.T) {
		f := newFixture(t, nil)
		f.record(t, "Draft")

		if err := f.ctrl.Reset(); err != nil {
			t.Fatalf("Reset() error = %v", err)
		}
		if f.ctrl.State() != Idle || f.ctrl.Artifact() != nil || f.ctrl.Snapshot().Title != "" {
			t.Errorf("after Reset: %+v", f.ctrl.Snapshot())
		}
	})

	t.Run("abandons recording and releases device", func(t *testing.T) {
		f := newFixture(t, nil)
		if err := f.ctrl.Start(context.Background(), ""); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		if err := f.ctrl.Reset(); err != nil {
			t.Fatalf("Reset() error = %v", err)
		}
		if !f.source.LastStream().Released() {
			t.Error("abandoned recording should release the device")
		}
		checkArtifactInvariant(t, f.ctrl)
	})

	t.Run("idle is a no-op", func(t *testing.T) {
		f := newFixture(t, nil)
		if err := f.ctrl.Reset(); err != nil {
			t.Errorf("Reset() error = %v", err)
		}
	})
}

func TestStartAfterSuccessDiscardsSession(t *testing.T) {
	f := newFixture(t, nil, testutil.SubmitReply{Result: gateway.Result{ID: "1"}})
	f.record(t, "")
	f.ctrl.Submit(context.Background())

	if err := f.ctrl.Start(context.Background(), "Next"); err != nil {
		t.Fatalf("Start() after success error = %v", err)
	}
	snap := f.ctrl.Snapshot()
	if snap.ResultID != "" || f.ctrl.Artifact() != nil {
		t.Errorf("previous session should be discarded: %+v", snap)
	}
	if snap.Title != "Next" || snap.State != Recording {
		t.Errorf("snapshot = %+v", snap)
	}
	if len(f.ctrl.History()) != 1 {
		t.Error("history outlives the session")
	}
}

func TestNavigationFailureStillSucceeds(t *testing.T) {
	f := newFixture(t, nil, testutil.SubmitReply{Result: gateway.Result{ID: "3"}})
	f.navigator.OpenError = errors.New("xdg-open missing")
	f.record(t, "")

	if _, err := f.ctrl.Submit(context.Background()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if f.ctrl.State() != Succeeded {
		t.Errorf("state = %v, want succeeded", f.ctrl.State())
	}

	var sawURL bool
	for _, n := range f.notifier.Messages() {
		if n.Kind == notify.Info && strings.Contains(n.Msg, "/transcription/3") {
			sawURL = true
		}
	}
	if !sawURL {
		t.Errorf("the result URL should be surfaced when navigation fails: %+v", f.notifier.Messages())
	}
}

func TestSetTitle(t *testing.T) {
	f := newFixture(t, nil, testutil.SubmitReply{Result: gateway.Result{ID: "1"}})
	f.record(t, "")

	if err := f.ctrl.SetTitle("Renamed"); err != nil {
		t.Fatalf("SetTitle() error = %v", err)
	}
	f.ctrl.Submit(context.Background())
	if calls := f.gateway.Calls(); calls[0].Title != "Renamed" {
		t.Errorf("submitted title = %q", calls[0].Title)
	}
}

func TestOnChange(t *testing.T) {
	f := newFixture(t, nil, testutil.SubmitReply{Result: gateway.Result{ID: "1"}})

	var mu sync.Mutex
	var states []State
	f.ctrl.OnChange(func(s Snapshot) {
		mu.Lock()
		defer mu.Unlock()
		states = append(states, s.State)
	})

	f.record(t, "")
	f.ctrl.Submit(context.Background())

	want := []State{RequestingAccess, Recording, Stopped, Submitting, Succeeded}
	mu.Lock()
	defer mu.Unlock()
	if len(states) != len(want) {
		t.Fatalf("observed %v, want %v", states, want)
	}
	for i := range want {
		if states[i] != want[i] {
			t.Errorf("change %d = %v, want %v", i, states[i], want[i])
		}
	}
}

type countingRenderer struct {
	mu      sync.Mutex
	renders int
	cleared bool
}

func (r *countingRenderer) Render([]visualizer.Bar) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.renders++
}

func (r *countingRenderer) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleared = true
}

func (r *countingRenderer) counts() (int, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.renders, r.cleared
}

func TestVisualizerFollowsRecording(t *testing.T) {
	renderer := &countingRenderer{}
	source := testutil.NewMockSource()
	ctrl := NewController(Options{
		Source:     source,
		Gateway:    testutil.NewMockGateway(),
		Renderer:   renderer,
		Visualizer: visualizer.Config{FPS: 200, Width: 32, Height: 2, BarWidth: 1},
		Recording:  recording.Config{Timeslice: 10 * time.Millisecond},
	})
	defer ctrl.Close()

	if err := ctrl.Start(context.Background(), ""); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	testutil.WaitForCondition(t, func() bool {
		n, _ := renderer.counts()
		return n > 0
	}, time.Second)

	if err := ctrl.Stop(); err != nil {
		t.Fatalf("Stop() error = %v", err)
	}
	renders, cleared := renderer.counts()
	if !cleared {
		t.Error("visualizer should clear when recording stops")
	}
	time.Sleep(30 * time.Millisecond)
	if n, _ := renderer.counts(); n != renders {
		t.Errorf("frames drawn after Stop: %d -> %d", renders, n)
	}
}

func TestClose(t *testing.T) {
	f := newFixture(t, nil)
	if err := f.ctrl.Start(context.Background(), ""); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	f.ctrl.Close()

	if !f.source.LastStream().Released() {
		t.Error("Close should release the device")
	}
	if f.ctrl.State() != Idle {
		t.Errorf("state = %v, want idle", f.ctrl.State())
	}
}

func waitForState(t *testing.T, c *Controller, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for c.State() != want {
		if time.Now().After(deadline) {
			t.Fatalf("state = %v, want %v", c.State(), want)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCaptureEndedMidRecordingKeepsAudio(t *testing.T) {
	f := newFixture(t, nil, testutil.SubmitReply{Result: gateway.Result{ID: "9"}})
	if err := f.ctrl.Start(context.Background(), "Cut off"); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(30 * time.Millisecond)

	f.source.LastStream().End()
	waitForState(t, f.ctrl, Stopped)

	if !f.source.LastStream().Released() {
		t.Error("device should be released when the stream ends")
	}
	if f.ctrl.IsRecording() {
		t.Error("recording flag still set")
	}
	checkArtifactInvariant(t, f.ctrl)
	snap := f.ctrl.Snapshot()
	if snap.ArtifactSize <= 44 {
		t.Errorf("artifact size = %d, want the captured audio kept", snap.ArtifactSize)
	}
	if snap.Error == "" {
		t.Error("snapshot should explain why recording stopped")
	}
	deadline := time.Now().Add(2 * time.Second)
	for len(f.notifier.Errors()) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if errs := f.notifier.Errors(); len(errs) != 1 || !strings.Contains(errs[0], "stopped unexpectedly") {
		t.Errorf("error notifications = %v", errs)
	}

	if err := f.ctrl.Stop(); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Stop() after the stream ended = %v, want ErrInvalidTransition", err)
	}
	if accepted, err := f.ctrl.Submit(context.Background()); !accepted || err != nil {
		t.Fatalf("Submit() = %v, %v", accepted, err)
	}
	if f.ctrl.State() != Succeeded {
		t.Errorf("state = %v, want succeeded", f.ctrl.State())
	}
}

func TestStopDoesNotReportCaptureEnded(t *testing.T) {
	f := newFixture(t, nil)
	f.record(t, "")

	time.Sleep(20 * time.Millisecond)
	if errs := f.notifier.Errors(); len(errs) != 0 {
		t.Errorf("a user stop should not notify: %v", errs)
	}
	if snap := f.ctrl.Snapshot(); snap.State != Stopped || snap.Error != "" {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestCloseWhileRequestingAccess(t *testing.T) {
	f := newFixture(t, nil)
	f.source.Gate = make(chan struct{})

	errc := make(chan error, 1)
	go func() { errc <- f.ctrl.Start(context.Background(), "") }()
	waitForState(t, f.ctrl, RequestingAccess)

	f.ctrl.Close()
	close(f.source.Gate)

	select {
	case err := <-errc:
		if !errors.Is(err, ErrClosed) {
			t.Errorf("Start() = %v, want ErrClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Start() did not return after Close")
	}

	stream := f.source.LastStream()
	if stream == nil || !stream.Released() {
		t.Error("a device granted after Close should be released")
	}
	if f.ctrl.State() != Idle || f.ctrl.IsRecording() {
		t.Errorf("state = %v recording=%v, want idle", f.ctrl.State(), f.ctrl.IsRecording())
	}
	if err := f.ctrl.Start(context.Background(), ""); !errors.Is(err, ErrClosed) {
		t.Errorf("Start() after Close = %v, want ErrClosed", err)
	}
}

func TestConfigureAppliesToNextGesture(t *testing.T) {
	f := newFixture(t, nil)
	f.record(t, "")

	other := testutil.NewMockGateway(testutil.SubmitReply{Result: gateway.Result{ID: "77"}})
	f.ctrl.Configure(Options{
		Source:       f.source,
		Gateway:      other,
		Navigator:    f.navigator,
		DefaultTitle: "Memo",
		HistorySize:  1,
	})

	if _, err := f.ctrl.Submit(context.Background()); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if len(f.gateway.Calls()) != 0 || len(other.Calls()) != 1 {
		t.Fatal("submission should use the reconfigured gateway")
	}
	if other.Calls()[0].Title != "Memo" {
		t.Errorf("title = %q, want reconfigured default", other.Calls()[0].Title)
	}
	if urls := f.navigator.URLs(); len(urls) != 1 || !strings.HasSuffix(urls[0], "/transcription/77") {
		t.Errorf("navigated to %v", urls)
	}
}

package gateway

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

	"github.com/leonardotrapani/voxnote/internal/recording"
)

func testArtifact(t *testing.T, data string) *recording.Artifact {
	t.Helper()
	b := recording.NewBuffer()
	b.Append([]byte(data))
	a, err := b.Finalize(recording.ContentTypeWAV)
	if err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	return a
}

type captured struct {
	mu          sync.Mutex
	path        string
	title       string
	requestID   string
	fileName    string
	contentType string
	audio       string
	auth        string
	cookie      string
}

func newServer(t *testing.T, status int, body string) (*httptest.Server, *captured) {
	t.Helper()
	c := &captured{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.path = r.URL.Path
		c.auth = r.Header.Get("Authorization")
		c.cookie = r.Header.Get("Cookie")
		if err := r.ParseMultipartForm(1 << 20); err == nil {
			c.title = r.FormValue("title")
			c.requestID = r.FormValue("request_id")
			if f, hdr, err := r.FormFile("audio"); err == nil {
				data, _ := io.ReadAll(f)
				c.audio = string(data)
				c.fileName = hdr.Filename
				c.contentType = hdr.Header.Get("Content-Type")
				f.Close()
			}
		}
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func newClient(url string) *Client {
	config := DefaultConfig()
	config.BaseURL = url
	config.Timeout = 2 * time.Second
	return New(config)
}

func TestSubmit_Success(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{"success": true, "id": 42}`)
	client := newClient(srv.URL)

	result, err := client.Submit(context.Background(), testArtifact(t, "RIFFdata"), "Standup", 7)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.ID != "42" {
		t.Errorf("ID = %q, want 42", result.ID)
	}

	got.mu.Lock()
	defer got.mu.Unlock()
	if got.path != TranscribePath {
		t.Errorf("path = %q", got.path)
	}
	if got.title != "Standup" || got.requestID != "7" {
		t.Errorf("form fields title=%q request_id=%q", got.title, got.requestID)
	}
	if got.audio != "RIFFdata" {
		t.Errorf("audio = %q", got.audio)
	}
	if got.fileName != "recording.wav" || got.contentType != recording.ContentTypeWAV {
		t.Errorf("file part name=%q type=%q", got.fileName, got.contentType)
	}
}

func TestSubmit_BlankTitleDefaults(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{"success": true, "id": "abc"}`)

	result, err := newClient(srv.URL).Submit(context.Background(), testArtifact(t, "x"), "   ", 1)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if result.ID != "abc" {
		t.Errorf("string ids should pass through, got %q", result.ID)
	}
	got.mu.Lock()
	defer got.mu.Unlock()
	if got.title != "Voice Recording" {
		t.Errorf("title = %q, want default", got.title)
	}
}

func TestSubmit_Failures(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantApp    string
		wantKind   Kind
		wantInText string
	}{
		{
			name:       "server error with text body",
			status:     http.StatusInternalServerError,
			body:       "internal error",
			wantKind:   ServerError,
			wantInText: "internal error",
		},
		{
			name:    "rejected with json error",
			status:  http.StatusBadRequest,
			body:    `{"success": false, "error": "No audio file provided."}`,
			wantApp: "No audio file provided.",
		},
		{
			name:    "rejected with 200",
			status:  http.StatusOK,
			body:    `{"success": false, "error": "Transcription failed"}`,
			wantApp: "Transcription failed",
		},
		{
			name:     "not json",
			status:   http.StatusOK,
			body:     "<html>login</html>",
			wantKind: MalformedResponse,
		},
		{
			name:     "missing success",
			status:   http.StatusOK,
			body:     `{"id": 3}`,
			wantKind: MalformedResponse,
		},
		{
			name:     "success without id",
			status:   http.StatusOK,
			body:     `{"success": true}`,
			wantKind: MalformedResponse,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, _ := newServer(t, tt.status, tt.body)
			_, err := newClient(srv.URL).Submit(context.Background(), testArtifact(t, "x"), "", 1)
			if err == nil {
				t.Fatal("expected an error")
			}
			if IsRetryable(err) {
				t.Error("only network failures are retryable")
			}

			if tt.wantApp != "" {
				var ae *ApplicationError
				if !errors.As(err, &ae) {
					t.Fatalf("expected ApplicationError, got %T: %v", err, err)
				}
				if Message(err) != tt.wantApp {
					t.Errorf("Message() = %q, want %q", Message(err), tt.wantApp)
				}
				return
			}

			var te *TransportError
			if !errors.As(err, &te) {
				t.Fatalf("expected TransportError, got %T: %v", err, err)
			}
			if te.Kind != tt.wantKind {
				t.Errorf("kind = %v, want %v", te.Kind, tt.wantKind)
			}
			if tt.wantInText != "" && !strings.Contains(Message(err), tt.wantInText) {
				t.Errorf("Message() = %q, should contain %q", Message(err), tt.wantInText)
			}
		})
	}
}

func TestSubmit_NetworkUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newClient(url).Submit(context.Background(), testArtifact(t, "x"), "", 1)
	if !IsRetryable(err) {
		t.Fatalf("closed server should be NetworkUnreachable, got %v", err)
	}
}

func TestSubmit_Cancelled(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `{"success": true, "id": 1}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newClient(srv.URL).Submit(ctx, testArtifact(t, "x"), "", 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if IsRetryable(err) {
		t.Error("cancellation must not be retried")
	}
}

func TestSubmit_EmptyArtifact(t *testing.T) {
	b := recording.NewBuffer()
	empty, _ := b.Finalize(recording.ContentTypeWAV)

	_, err := newClient("http://127.0.0.1:1").Submit(context.Background(), empty, "", 1)
	if !errors.Is(err, ErrEmptyArtifact) {
		t.Fatalf("expected ErrEmptyArtifact, got %v", err)
	}
}

func TestSubmit_AuthHeaders(t *testing.T) {
	srv, got := newServer(t, http.StatusOK, `{"success": true, "id": 1}`)
	config := DefaultConfig()
	config.BaseURL = srv.URL
	config.Token = "secret"
	config.Cookie = "session=abc"

	if _, err := New(config).Submit(context.Background(), testArtifact(t, "x"), "", 1); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	got.mu.Lock()
	defer got.mu.Unlock()
	if got.auth != "Bearer secret" {
		t.Errorf("Authorization = %q", got.auth)
	}
	if got.cookie != "session=abc" {
		t.Errorf("Cookie = %q", got.cookie)
	}
}

func TestFileName(t *testing.T) {
	tests := map[string]string{
		"audio/wav":              "recording.wav",
		"audio/webm;codecs=opus": "recording.webm",
		"audio/ogg":              "recording.ogg",
		"audio/mpeg":             "recording.mp3",
		"audio/mp4":              "recording.m4a",
		"application/x-unknown":  "recording.bin",
		"":                       "recording.bin",
	}
	for contentType, want := range tests {
		if got := FileName(contentType); got != want {
			t.Errorf("FileName(%q) = %q, want %q", contentType, got, want)
		}
	}
}

func TestRoutes(t *testing.T) {
	client := newClient("https://notes.example.com/")

	if got := client.ResultURL("42"); got != "https://notes.example.com/transcription/42" {
		t.Errorf("ResultURL() = %q", got)
	}
	if got := client.EditURL("42"); got != "https://notes.example.com/transcription/42/edit" {
		t.Errorf("EditURL() = %q", got)
	}
	if got := client.PDFURL("42"); got != "https://notes.example.com/transcription/42/pdf" {
		t.Errorf("PDFURL() = %q", got)
	}
}

func TestMessage_Fallback(t *testing.T) {
	if Message(errors.New("weird")) == "" {
		t.Error("unclassified errors still need a message")
	}
	if Message(&ApplicationError{}) != "Failed to transcribe audio." {
		t.Error("empty server error should fall back to the generic text")
	}
}

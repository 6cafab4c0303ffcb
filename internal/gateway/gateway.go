package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/leonardotrapani/voxnote/internal/recording"
)

const (
	TranscribePath = "/transcribe_recording"
	DefaultTitle   = "Voice Recording"

	maxBodyInError = 512
)

var ErrEmptyArtifact = errors.New("artifact is empty")

type Config struct {
	BaseURL      string
	Timeout      time.Duration
	Cookie       string
	Token        string
	DefaultTitle string
}

func DefaultConfig() Config {
	return Config{
		BaseURL:      "http://127.0.0.1:5000",
		Timeout:      2 * time.Minute,
		DefaultTitle: DefaultTitle,
	}
}

// Result is a successful submission.
type Result struct {
	ID string
}

// Client posts finished recordings to the transcription server. It holds
// no per-submission state and may be called repeatedly.
type Client struct {
	config Config
	http   *resty.Client
}

func New(config Config) *Client {
	if config.DefaultTitle == "" {
		config.DefaultTitle = DefaultTitle
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	http := resty.New().
		SetBaseURL(config.BaseURL).
		SetTimeout(config.Timeout).
		SetHeader("Accept", "application/json")
	if config.Token != "" {
		http.SetAuthToken(config.Token)
	}
	if config.Cookie != "" {
		http.SetHeader("Cookie", config.Cookie)
	}

	return &Client{config: config, http: http}
}

// Submit sends one multipart request carrying the artifact, its title and
// the attempt's request id.
func (c *Client) Submit(ctx context.Context, artifact *recording.Artifact, title string, requestID int64) (Result, error) {
	if artifact == nil || artifact.Size() == 0 {
		return Result{}, ErrEmptyArtifact
	}
	if strings.TrimSpace(title) == "" {
		title = c.config.DefaultTitle
	}

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetMultipartField("audio", FileName(artifact.ContentType()), artifact.ContentType(), artifact.Reader()).
		SetMultipartFormData(map[string]string{
			"title":      title,
			"request_id": strconv.FormatInt(requestID, 10),
		}).
		Post(TranscribePath)
	duration := time.Since(start)

	if err != nil {
		log.Printf("Gateway: request %d failed after %v: %v", requestID, duration, err)
		if errors.Is(err, context.Canceled) {
			return Result{}, fmt.Errorf("submit: %w", err)
		}
		return Result{}, &TransportError{Kind: NetworkUnreachable, Err: err}
	}

	log.Printf("Gateway: request %d sent %d bytes in %v, status %d",
		requestID, artifact.Size(), duration, resp.StatusCode())
	return parseResponse(resp.StatusCode(), resp.Body())
}

type response struct {
	Success *bool           `json:"success"`
	ID      json.RawMessage `json:"id"`
	Error   string          `json:"error"`
}

func parseResponse(status int, body []byte) (Result, error) {
	var parsed response
	jsonErr := json.Unmarshal(body, &parsed)

	if status < 200 || status > 299 {
		if jsonErr == nil && parsed.Success != nil && !*parsed.Success {
			return Result{}, &ApplicationError{StatusCode: status, Message: parsed.Error}
		}
		return Result{}, &TransportError{Kind: ServerError, StatusCode: status, Body: trimBody(body)}
	}

	if jsonErr != nil {
		return Result{}, &TransportError{Kind: MalformedResponse, StatusCode: status, Err: jsonErr}
	}
	if parsed.Success == nil {
		return Result{}, &TransportError{Kind: MalformedResponse, StatusCode: status, Err: errors.New("missing success field")}
	}
	if !*parsed.Success {
		return Result{}, &ApplicationError{StatusCode: status, Message: parsed.Error}
	}

	id, err := parseID(parsed.ID)
	if err != nil {
		return Result{}, &TransportError{Kind: MalformedResponse, StatusCode: status, Err: err}
	}
	return Result{ID: id}, nil
}

// parseID accepts the identifier as a JSON string or number.
func parseID(raw json.RawMessage) (string, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", errors.New("missing id")
	}
	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", fmt.Errorf("decode id: %w", err)
		}
		if s == "" {
			return "", errors.New("empty id")
		}
		return s, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return "", fmt.Errorf("decode id: %w", err)
	}
	return n.String(), nil
}

func trimBody(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > maxBodyInError {
		s = s[:maxBodyInError] + "..."
	}
	return s
}

// FileName derives the upload file name from the artifact's content type.
func FileName(contentType string) string {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		mediaType = contentType
	}
	ext := "bin"
	switch mediaType {
	case "audio/wav", "audio/x-wav", "audio/wave":
		ext = "wav"
	case "audio/webm":
		ext = "webm"
	case "audio/ogg":
		ext = "ogg"
	case "audio/mpeg", "audio/mp3":
		ext = "mp3"
	case "audio/mp4", "audio/m4a", "audio/x-m4a":
		ext = "m4a"
	}
	return "recording." + ext
}

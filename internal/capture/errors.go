package capture

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies why a capture device could not be acquired.
type Kind int

const (
	PermissionDenied Kind = iota + 1
	DeviceNotFound
	DeviceBusy
	Unsupported
)

func (k Kind) String() string {
	switch k {
	case PermissionDenied:
		return "permission denied"
	case DeviceNotFound:
		return "device not found"
	case DeviceBusy:
		return "device busy"
	case Unsupported:
		return "unsupported"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// AccessError is returned by Source.Acquire.
type AccessError struct {
	Kind Kind
	Err  error
}

func (e *AccessError) Error() string {
	if e.Err == nil {
		return "capture: " + e.Kind.String()
	}
	return fmt.Sprintf("capture: %s: %v", e.Kind, e.Err)
}

func (e *AccessError) Unwrap() error {
	return e.Err
}

func NewAccessError(kind Kind, err error) error {
	return &AccessError{Kind: kind, Err: err}
}

// KindOf reports the access classification carried by err, if any.
func KindOf(err error) (Kind, bool) {
	var ae *AccessError
	if errors.As(err, &ae) {
		return ae.Kind, true
	}
	return 0, false
}

// Message returns the user-facing text for an acquisition failure.
func Message(err error) string {
	kind, ok := KindOf(err)
	if !ok {
		return "Error accessing microphone. Please try again."
	}
	switch kind {
	case PermissionDenied:
		return "Microphone access was denied. Please check your audio permissions."
	case DeviceNotFound:
		return "No microphone found. Connect an input device and try again."
	case DeviceBusy:
		return "The microphone is in use by another application."
	case Unsupported:
		return "Audio capture is not supported here (is PipeWire running?)."
	default:
		return "Error accessing microphone. Please try again."
	}
}

// classifyStderr maps pw-record diagnostics to an access kind.
func classifyStderr(stderr string) Kind {
	s := strings.ToLower(stderr)
	switch {
	case strings.Contains(s, "permission denied"), strings.Contains(s, "access denied"),
		strings.Contains(s, "not permitted"):
		return PermissionDenied
	case strings.Contains(s, "busy"):
		return DeviceBusy
	case strings.Contains(s, "connection refused"), strings.Contains(s, "can't connect"),
		strings.Contains(s, "failed to connect"), strings.Contains(s, "not supported"):
		return Unsupported
	default:
		return DeviceNotFound
	}
}

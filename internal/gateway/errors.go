package gateway

import (
	"errors"
	"fmt"
)

// Kind classifies a failed submission at the transport level.
type Kind int

const (
	NetworkUnreachable Kind = iota + 1
	ServerError
	MalformedResponse
)

func (k Kind) String() string {
	switch k {
	case NetworkUnreachable:
		return "network unreachable"
	case ServerError:
		return "server error"
	case MalformedResponse:
		return "malformed response"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// TransportError means the request did not produce a usable answer.
type TransportError struct {
	Kind       Kind
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	switch {
	case e.StatusCode != 0 && e.Body != "":
		return fmt.Sprintf("submit: %s (status %d): %s", e.Kind, e.StatusCode, e.Body)
	case e.StatusCode != 0:
		return fmt.Sprintf("submit: %s (status %d)", e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("submit: %s: %v", e.Kind, e.Err)
	default:
		return "submit: " + e.Kind.String()
	}
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// ApplicationError is a well-formed rejection from the server
// (success: false). It is never retried automatically.
type ApplicationError struct {
	StatusCode int
	Message    string
}

func (e *ApplicationError) Error() string {
	return "server rejected recording: " + e.Message
}

// IsRetryable reports whether err qualifies for the automatic retry.
func IsRetryable(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && te.Kind == NetworkUnreachable
}

// Message returns the user-facing text for a failed submission.
func Message(err error) string {
	var ae *ApplicationError
	if errors.As(err, &ae) {
		if ae.Message == "" {
			return "Failed to transcribe audio."
		}
		return ae.Message
	}

	var te *TransportError
	if errors.As(err, &te) {
		switch te.Kind {
		case NetworkUnreachable:
			return "Error submitting recording. Please check your connection and try again."
		case ServerError:
			if te.Body != "" {
				return fmt.Sprintf("Server error (%d): %s", te.StatusCode, te.Body)
			}
			return fmt.Sprintf("Server error (%d).", te.StatusCode)
		case MalformedResponse:
			return "Unexpected response from the server."
		}
	}

	return "Error submitting recording. Please try again."
}

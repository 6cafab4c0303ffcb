package session

import "fmt"

type State int

const (
	Idle State = iota
	RequestingAccess
	Recording
	Stopped
	Submitting
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case RequestingAccess:
		return "requesting-access"
	case Recording:
		return "recording"
	case Stopped:
		return "stopped"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// HasArtifact reports whether a session in state s holds a finalized
// recording.
func (s State) HasArtifact() bool {
	switch s {
	case Stopped, Submitting, Succeeded, Failed:
		return true
	}
	return false
}

// Busy reports whether the session is in the middle of a transition that
// only the environment can finish.
func (s State) Busy() bool {
	return s == RequestingAccess || s == Submitting
}

// StatusText is the line shown next to the recording controls.
func (s State) StatusText() string {
	switch s {
	case Idle:
		return "Ready to record"
	case RequestingAccess:
		return "Requesting microphone access..."
	case Recording:
		return "Recording... (press stop when finished)"
	case Stopped:
		return "Recording stopped, ready to submit"
	case Submitting:
		return "Processing audio..."
	case Succeeded:
		return "Transcription complete"
	case Failed:
		return "Submission failed, ready to retry"
	default:
		return s.String()
	}
}

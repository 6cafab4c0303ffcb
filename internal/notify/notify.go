package notify

import (
	"fmt"
	"log"
	"os/exec"
	"strconv"
	"time"
)

// Kind selects how a notification is presented.
type Kind int

const (
	Info Kind = iota
	Success
	Error
)

func (k Kind) String() string {
	switch k {
	case Info:
		return "info"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

const DefaultTimeout = 5 * time.Second

type Notifier interface {
	Notify(kind Kind, msg string)
}

// Desktop sends transient notifications through notify-send. The server
// dismisses them after Timeout.
type Desktop struct {
	Timeout time.Duration

	run func(name string, args ...string) error
}

func NewDesktop(timeout time.Duration) *Desktop {
	return &Desktop{Timeout: timeout}
}

func (d *Desktop) Notify(kind Kind, msg string) {
	run := d.run
	if run == nil {
		run = func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		}
	}
	if err := run("notify-send", d.args(kind, msg)...); err != nil {
		log.Printf("Failed to send notification: %v", err)
	}
}

func (d *Desktop) args(kind Kind, msg string) []string {
	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	args := []string{"-a", "Voxnote", "-t", strconv.FormatInt(timeout.Milliseconds(), 10)}
	if kind == Error {
		args = append(args, "-u", "critical")
	}
	return append(args, title(kind), msg)
}

func title(kind Kind) string {
	if kind == Error {
		return "Voxnote Error"
	}
	return "Voxnote"
}

// Log writes notifications to the standard logger.
type Log struct{}

func (Log) Notify(kind Kind, msg string) {
	log.Printf("%s (%s): %s", title(kind), kind, msg)
}

// Nop is a Notifier that does absolutely nothing.
// Useful in unit tests or headless builds.
type Nop struct{}

func (Nop) Notify(Kind, string) {}

// New builds the notifier named by typ ("desktop", "log" or "none").
func New(typ string, timeout time.Duration) (Notifier, error) {
	switch typ {
	case "desktop":
		return NewDesktop(timeout), nil
	case "log":
		return Log{}, nil
	case "none", "":
		return Nop{}, nil
	default:
		return nil, fmt.Errorf("unknown notification type %q", typ)
	}
}

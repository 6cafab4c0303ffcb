package session

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"time"
)

// Navigator takes the user to a result view once a submission succeeds.
type Navigator interface {
	Open(ctx context.Context, url string) error
}

const defaultOpenTimeout = 5 * time.Second

type runFunc func(ctx context.Context, stdin io.Reader, name string, args ...string) error

func runCommand(ctx context.Context, stdin io.Reader, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdin = stdin
	return cmd.Run()
}

// Browser opens the URL with xdg-open.
type Browser struct {
	Timeout time.Duration
	run     runFunc
}

func (b *Browser) Open(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, timeoutOr(b.Timeout))
	defer cancel()

	run := b.run
	if run == nil {
		run = runCommand
	}
	if err := run(ctx, nil, "xdg-open", url); err != nil {
		return fmt.Errorf("xdg-open failed: %w", err)
	}
	return nil
}

// Clipboard copies the URL with wl-copy so it can be pasted anywhere.
type Clipboard struct {
	Timeout time.Duration
	run     runFunc
}

func (c *Clipboard) Open(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, timeoutOr(c.Timeout))
	defer cancel()

	run := c.run
	if run == nil {
		run = runCommand
	}
	if err := run(ctx, strings.NewReader(url), "wl-copy"); err != nil {
		return fmt.Errorf("wl-copy failed: %w", err)
	}
	return nil
}

// Printer writes the URL on its own line.
type Printer struct {
	W io.Writer
}

func (p Printer) Open(_ context.Context, url string) error {
	_, err := fmt.Fprintln(p.W, url)
	return err
}

type NopNavigator struct{}

func (NopNavigator) Open(context.Context, string) error { return nil }

// NewNavigator builds the navigator for a navigation mode: browser,
// clipboard, print or none. Print writes to w.
func NewNavigator(mode string, w io.Writer) (Navigator, error) {
	switch mode {
	case "browser":
		return &Browser{}, nil
	case "clipboard":
		return &Clipboard{}, nil
	case "print":
		return Printer{W: w}, nil
	case "none", "":
		return NopNavigator{}, nil
	default:
		return nil, fmt.Errorf("unknown navigation mode %q", mode)
	}
}

func timeoutOr(d time.Duration) time.Duration {
	if d <= 0 {
		return defaultOpenTimeout
	}
	return d
}

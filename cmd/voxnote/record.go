package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/leonardotrapani/voxnote/internal/config"
	"github.com/leonardotrapani/voxnote/internal/daemon"
	"github.com/leonardotrapani/voxnote/internal/session"
	"github.com/leonardotrapani/voxnote/internal/tui"
	"github.com/leonardotrapani/voxnote/internal/visualizer"
	"github.com/spf13/cobra"
)

func recordCmd() *cobra.Command {
	var title string
	var noVisualizer bool

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record in this terminal, then submit",
		Long: `Record a voice note in the foreground without the daemon.
Press Enter to stop. The recording is then submitted and, on failure,
kept so it can be retried.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRecord(cmd.Context(), title, !cmd.Flags().Changed("title"), noVisualizer)
		},
	}

	cmd.Flags().StringVarP(&title, "title", "t", "", "recording title (prompted for when omitted)")
	cmd.Flags().BoolVar(&noVisualizer, "no-visualizer", false, "do not draw level bars while recording")
	return cmd
}

func runRecord(ctx context.Context, title string, promptTitle, noVisualizer bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	opts, err := daemon.SessionOptions(cfg, os.Stdout)
	if err != nil {
		return err
	}
	if cfg.Visualizer.Enabled && !noVisualizer {
		opts.Renderer = visualizer.NewTerminal(os.Stdout, cfg.Visualizer.Width, cfg.Visualizer.Height)
	}

	if promptTitle {
		title, err = tui.PromptTitle(cfg.Session.DefaultTitle)
		if err != nil {
			return err
		}
	}

	ctrl := session.NewController(opts)
	defer ctrl.Close()

	ended := make(chan struct{})
	var endOnce sync.Once
	ctrl.OnChange(func(s session.Snapshot) {
		if s.State == session.Stopped {
			endOnce.Do(func() { close(ended) })
		}
	})

	fmt.Println(tui.StyleMuted.Render(session.RequestingAccess.StatusText()))
	fmt.Println(tui.StyleHighlight.Render("Press Enter to stop recording"))

	// Nothing else may write to the terminal while the bars redraw in place.
	restoreEcho := func() {}
	if opts.Renderer != nil {
		log.SetOutput(io.Discard)
		defer log.SetOutput(os.Stderr)
		restoreEcho = suppressEcho(int(os.Stdin.Fd()))
		defer restoreEcho()
	}
	quiet := func() {
		restoreEcho()
		log.SetOutput(os.Stderr)
	}

	if err := ctrl.Start(ctx, title); err != nil {
		quiet()
		if msg := ctrl.Snapshot().Error; msg != "" {
			return errors.New(msg)
		}
		return err
	}

	pressed := readLine(os.Stdin)
	select {
	case <-pressed:
		if err := ctrl.Stop(); err != nil && ctrl.State() != session.Stopped {
			quiet()
			return err
		}
		quiet()
	case <-ended:
		quiet()
		fmt.Println(tui.RenderFailure(ctrl.Snapshot().Error, "Press Enter to submit what was recorded."))
		select {
		case <-pressed:
		case <-ctx.Done():
			ctrl.Reset()
			return ctx.Err()
		}
	case <-ctx.Done():
		ctrl.Reset()
		quiet()
		fmt.Println()
		fmt.Println(tui.StyleWarning.Render("Recording discarded."))
		return ctx.Err()
	}
	fmt.Println(tui.StyleMuted.Render(fmt.Sprintf("%s (%d bytes)", session.Stopped.StatusText(), ctrl.Snapshot().ArtifactSize)))

	for {
		fmt.Println(tui.StyleMuted.Render(session.Submitting.StatusText()))
		_, err := ctrl.Submit(ctx)
		snap := ctrl.Snapshot()
		if err == nil {
			fmt.Println(tui.RenderResult(snap.Title, snap.ResultURL, snap.EditURL, snap.PDFURL))
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		fmt.Println(tui.RenderFailure(snap.Error, session.Failed.StatusText()))
		retry, promptErr := tui.ConfirmRetry()
		if promptErr != nil || !retry {
			return err
		}
	}
}

// readLine returns a channel closed once a line has been read from r.
func readLine(r io.Reader) <-chan struct{} {
	pressed := make(chan struct{})
	go func() {
		bufio.NewReader(r).ReadString('\n')
		close(pressed)
	}()
	return pressed
}

package daemon

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/leonardotrapani/voxnote/internal/bus"
	"github.com/leonardotrapani/voxnote/internal/config"
	"github.com/leonardotrapani/voxnote/internal/session"
)

// Daemon serves control commands for a single recording session over the
// bus socket.
type Daemon struct {
	ctrl       *session.Controller
	mgr        *config.Manager
	autoSubmit atomic.Bool

	ctx    context.Context
	cancel context.CancelFunc

	// background gestures (start, submit) still running
	wg sync.WaitGroup
}

func New(ctrl *session.Controller, autoSubmit bool) *Daemon {
	ctx, cancel := context.WithCancel(context.Background())
	d := &Daemon{
		ctrl:   ctrl,
		ctx:    ctx,
		cancel: cancel,
	}
	d.autoSubmit.Store(autoSubmit)
	return d
}

// FromConfig builds a daemon from the manager's current configuration and
// follows later reloads.
func FromConfig(mgr *config.Manager) (*Daemon, error) {
	cfg := mgr.GetConfig()
	opts, err := SessionOptions(cfg, os.Stdout)
	if err != nil {
		return nil, err
	}

	d := New(session.NewController(opts), cfg.Session.AutoSubmit)
	d.mgr = mgr
	mgr.OnReload(d.Reconfigure)
	return d, nil
}

// Reconfigure applies cfg from the next gesture on.
func (d *Daemon) Reconfigure(cfg *config.Config) {
	opts, err := SessionOptions(cfg, os.Stdout)
	if err != nil {
		log.Printf("Daemon: ignoring reloaded config: %v", err)
		return
	}
	d.ctrl.Configure(opts)
	d.autoSubmit.Store(cfg.Session.AutoSubmit)
	log.Printf("Daemon: configuration applied")
}

func (d *Daemon) Controller() *session.Controller {
	return d.ctrl
}

func (d *Daemon) Run() error {
	if err := bus.CheckExistingDaemon(); err != nil {
		return err
	}

	ln, err := bus.Listen()
	if err != nil {
		return err
	}
	defer ln.Close()

	if err := bus.CreatePidFile(); err != nil {
		return fmt.Errorf("failed to create PID file: %w", err)
	}
	defer bus.RemovePidFile()

	if d.mgr != nil {
		if err := d.mgr.StartWatching(d.ctx); err != nil {
			log.Printf("Config watching disabled: %v", err)
		}
		defer d.mgr.Stop()
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			log.Printf("Received signal %v, shutting down gracefully", sig)
			d.cancel()
		case <-d.ctx.Done():
		}
	}()

	// Close the listener when context is done
	go func() {
		<-d.ctx.Done()
		ln.Close()
	}()

	log.Printf("Daemon started, listening on socket")

	for {
		c, err := ln.Accept()
		if err != nil {
			if d.ctx.Err() != nil {
				log.Printf("Shutdown requested")
				d.ctrl.Close()
				d.wg.Wait()
				return nil
			}
			log.Printf("Accept error: %v", err)
			return fmt.Errorf("accept failed: %w", err)
		}
		go d.handle(c)
	}
}

func (d *Daemon) handle(c net.Conn) {
	defer c.Close()

	line, err := bufio.NewReader(c).ReadString('\n')
	if err != nil {
		log.Printf("Client read error: %v", err)
		fmt.Fprintf(c, "ERR read_error: %v\n", err)
		return
	}
	cmd, arg, ok := bus.ParseCommand(line)
	if !ok {
		fmt.Fprint(c, "ERR empty\n")
		return
	}

	switch cmd {
	case bus.CmdToggle:
		fmt.Fprint(c, d.toggle())
	case bus.CmdStart:
		fmt.Fprint(c, d.start(arg))
	case bus.CmdStop:
		fmt.Fprint(c, d.stop())
	case bus.CmdSubmit:
		fmt.Fprint(c, d.submit(arg))
	case bus.CmdStatus:
		fmt.Fprint(c, formatStatus(d.ctrl.Snapshot()))
	case bus.CmdHistory:
		fmt.Fprint(c, formatHistory(d.ctrl.History()))
	case bus.CmdReset:
		if err := d.ctrl.Reset(); err != nil {
			fmt.Fprintf(c, "ERR %v\n", err)
			return
		}
		fmt.Fprint(c, "OK reset\n")
	case bus.CmdVersion:
		fmt.Fprintf(c, "STATUS proto=%s\n", bus.ProtoVer)
	case bus.CmdQuit:
		fmt.Fprint(c, "OK quitting\n")
		d.cancel()
	default:
		log.Printf("Unknown command: %c", cmd)
		fmt.Fprintf(c, "ERR unknown=%q\n", cmd)
	}
}

// toggle advances the session by one step, the way a single hotkey would.
func (d *Daemon) toggle() string {
	switch d.ctrl.State() {
	case session.Idle, session.Succeeded:
		return d.start("")
	case session.Recording:
		return d.stop()
	case session.Stopped, session.Failed:
		return d.submit("")
	default:
		return "OK busy\n"
	}
}

func (d *Daemon) start(title string) string {
	if s := d.ctrl.State(); s != session.Idle && s != session.Succeeded {
		return fmt.Sprintf("ERR cannot start while %s\n", s)
	}
	d.background(func(ctx context.Context) {
		if err := d.ctrl.Start(ctx, title); err != nil {
			log.Printf("Daemon: start failed: %v", err)
		}
	})
	return "OK starting\n"
}

func (d *Daemon) stop() string {
	if err := d.ctrl.Stop(); err != nil {
		return fmt.Sprintf("ERR %v\n", err)
	}
	size := d.ctrl.Snapshot().ArtifactSize
	if d.autoSubmit.Load() {
		d.submitAsync()
		return fmt.Sprintf("OK stopped size=%d submitting\n", size)
	}
	return fmt.Sprintf("OK stopped size=%d\n", size)
}

func (d *Daemon) submit(title string) string {
	switch d.ctrl.State() {
	case session.Submitting:
		return "OK busy\n"
	case session.Stopped, session.Failed:
	default:
		return fmt.Sprintf("ERR nothing to submit while %s\n", d.ctrl.State())
	}
	if title != "" {
		if err := d.ctrl.SetTitle(title); err != nil {
			return fmt.Sprintf("ERR %v\n", err)
		}
	}
	d.submitAsync()
	return "OK submitting\n"
}

func (d *Daemon) submitAsync() {
	d.background(func(ctx context.Context) {
		if _, err := d.ctrl.Submit(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("Daemon: submission failed: %v", err)
		}
	})
}

func (d *Daemon) background(fn func(ctx context.Context)) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		fn(d.ctx)
	}()
}

func formatStatus(s session.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "STATUS state=%s status=%q", s.State, s.Status)
	if s.Title != "" {
		fmt.Fprintf(&b, " title=%q", s.Title)
	}
	if s.RequestID > 0 {
		fmt.Fprintf(&b, " request_id=%d", s.RequestID)
	}
	if s.ArtifactSize > 0 {
		fmt.Fprintf(&b, " size=%d", s.ArtifactSize)
	}
	if s.ResultURL != "" {
		fmt.Fprintf(&b, " url=%s", s.ResultURL)
	}
	if s.EditURL != "" {
		fmt.Fprintf(&b, " edit=%s", s.EditURL)
	}
	if s.PDFURL != "" {
		fmt.Fprintf(&b, " pdf=%s", s.PDFURL)
	}
	if s.Error != "" {
		fmt.Fprintf(&b, " error=%q", s.Error)
	}
	b.WriteByte('\n')
	return b.String()
}

func formatHistory(entries []session.HistoryEntry) string {
	var b strings.Builder
	fmt.Fprintf(&b, "STATUS history=%d\n", len(entries))
	for _, e := range entries {
		fmt.Fprintf(&b, "%s\t%s\t%s\t%s\t%s\t%s\n", e.ID, e.CreatedAt.Format("2006-01-02 15:04"), e.Title, e.URL, e.EditURL, e.PDFURL)
	}
	return b.String()
}

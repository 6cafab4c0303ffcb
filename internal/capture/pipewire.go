package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/exec"
	"strconv"
	"sync"
	"time"
)

type Config struct {
	SampleRate        int
	Channels          int
	Format            string
	BufferSize        int
	Device            string
	ChannelBufferSize int
	AccessTimeout     time.Duration
}

func DefaultConfig() Config {
	return Config{
		SampleRate:        16000,
		Channels:          1,
		Format:            "s16",
		BufferSize:        8192,
		Device:            "",
		ChannelBufferSize: 30,
		AccessTimeout:     5 * time.Second,
	}
}

// PipeWire acquires microphone streams through pw-record.
type PipeWire struct {
	config Config

	lookPath       func(string) (string, error)
	checkAvailable func(context.Context) error
	command        func(ctx context.Context, args []string) *exec.Cmd
}

func NewPipeWire(config Config) *PipeWire {
	return &PipeWire{
		config:         config,
		lookPath:       exec.LookPath,
		checkAvailable: CheckPipeWireAvailable,
		command: func(ctx context.Context, args []string) *exec.Cmd {
			return exec.CommandContext(ctx, "pw-record", args...)
		},
	}
}

func (p *PipeWire) Acquire(ctx context.Context) (Stream, error) {
	if err := p.validateConfig(); err != nil {
		return nil, NewAccessError(Unsupported, err)
	}
	if _, err := p.lookPath("pw-record"); err != nil {
		return nil, NewAccessError(Unsupported, fmt.Errorf("pw-record not found: %w (install pipewire-tools)", err))
	}
	if err := p.checkAvailable(ctx); err != nil {
		return nil, NewAccessError(Unsupported, err)
	}

	// The stream outlives the acquisition call, so it gets its own context.
	streamCtx, cancel := context.WithCancel(context.Background())
	cmd := p.command(streamCtx, p.buildArgs())

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, NewAccessError(Unsupported, fmt.Errorf("create stdout pipe: %w", err))
	}
	stderr := &tailBuffer{limit: 4096}
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		cancel()
		kind := DeviceNotFound
		switch {
		case errors.Is(err, exec.ErrNotFound):
			kind = Unsupported
		case errors.Is(err, os.ErrPermission):
			kind = PermissionDenied
		}
		return nil, NewAccessError(kind, fmt.Errorf("start pw-record: %w", err))
	}

	s := &pipeWireStream{
		format: Format{
			SampleRate:    p.config.SampleRate,
			Channels:      p.config.Channels,
			BitsPerSample: 16,
		},
		cmd:    cmd,
		cancel: cancel,
		frames: make(chan Frame, p.config.ChannelBufferSize),
		ready:  make(chan struct{}),
		done:   make(chan struct{}),
	}
	go s.readLoop(streamCtx, stdout, p.config.BufferSize)

	timer := time.NewTimer(p.config.AccessTimeout)
	defer timer.Stop()

	exited := func() error {
		s.cancel()
		msg := stderr.String()
		log.Printf("Capture: pw-record exited during acquisition: %s", msg)
		return NewAccessError(classifyStderr(msg), fmt.Errorf("pw-record exited: %s", bytes.TrimSpace([]byte(msg))))
	}

	select {
	case <-s.ready:
		// A child that wrote a few bytes and died is not a usable device.
		select {
		case <-s.done:
			return nil, exited()
		default:
		}
		log.Printf("Capture: acquired pw-record stream (rate=%d channels=%d device=%q)",
			p.config.SampleRate, p.config.Channels, p.config.Device)
		return s, nil
	case <-s.done:
		return nil, exited()
	case <-timer.C:
		s.Release()
		return nil, NewAccessError(DeviceBusy, fmt.Errorf("no audio within %v", p.config.AccessTimeout))
	case <-ctx.Done():
		s.Release()
		return nil, ctx.Err()
	}
}

func (p *PipeWire) buildArgs() []string {
	args := []string{
		"--format", p.config.Format,
		"--rate", strconv.Itoa(p.config.SampleRate),
		"--channels", strconv.Itoa(p.config.Channels),
	}
	if p.config.Device != "" {
		args = append(args, "--target", p.config.Device)
	}
	return append(args, "-")
}

func (p *PipeWire) validateConfig() error {
	if p.config.SampleRate <= 0 {
		return fmt.Errorf("invalid SampleRate: %d", p.config.SampleRate)
	}
	if p.config.Channels <= 0 {
		return fmt.Errorf("invalid Channels: %d", p.config.Channels)
	}
	if p.config.BufferSize <= 0 {
		return fmt.Errorf("invalid BufferSize: %d", p.config.BufferSize)
	}
	if p.config.ChannelBufferSize <= 0 {
		return fmt.Errorf("invalid ChannelBufferSize: %d", p.config.ChannelBufferSize)
	}
	if p.config.Format != "s16" {
		return fmt.Errorf("invalid Format: %q (only s16 is supported)", p.config.Format)
	}
	if p.config.AccessTimeout <= 0 {
		return fmt.Errorf("invalid AccessTimeout: %v", p.config.AccessTimeout)
	}
	frameBytes := 2 * p.config.Channels
	if p.config.BufferSize%frameBytes != 0 {
		log.Printf("Capture: BufferSize %d not aligned to frame size %d; audio frames may split",
			p.config.BufferSize, frameBytes)
	}
	return nil
}

// CheckPipeWireAvailable verifies a PipeWire daemon answers.
func CheckPipeWireAvailable(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	cmd := exec.CommandContext(checkCtx, "pw-cli", "info")
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("PipeWire not running or accessible: %w", err)
	}
	return nil
}

type pipeWireStream struct {
	format Format
	cmd    *exec.Cmd
	cancel context.CancelFunc
	frames chan Frame

	readyOnce sync.Once
	ready     chan struct{}
	done      chan struct{}

	releaseOnce sync.Once
}

func (s *pipeWireStream) Frames() <-chan Frame { return s.frames }
func (s *pipeWireStream) Format() Format       { return s.format }

func (s *pipeWireStream) Release() {
	s.releaseOnce.Do(func() {
		s.cancel()
		<-s.done
		log.Printf("Capture: device released")
	})
}

func (s *pipeWireStream) readLoop(ctx context.Context, stdout io.Reader, bufferSize int) {
	defer func() {
		close(s.frames)
		// Ensure the child process is reaped.
		_ = s.cmd.Wait()
		close(s.done)
	}()

	buffer := make([]byte, bufferSize)
	for {
		n, readErr := stdout.Read(buffer)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buffer[:n])
			s.readyOnce.Do(func() { close(s.ready) })

			select {
			case s.frames <- Frame{Data: data, Timestamp: time.Now()}:
			case <-ctx.Done():
				return
			}
		}
		if readErr != nil {
			if !errors.Is(readErr, io.EOF) && ctx.Err() == nil {
				log.Printf("Capture: read audio: %v", readErr)
			}
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

// tailBuffer keeps the last limit bytes written to it.
type tailBuffer struct {
	mu    sync.Mutex
	buf   []byte
	limit int
}

func (t *tailBuffer) Write(p []byte) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.buf = append(t.buf, p...)
	if len(t.buf) > t.limit {
		t.buf = t.buf[len(t.buf)-t.limit:]
	}
	return len(p), nil
}

func (t *tailBuffer) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return string(t.buf)
}

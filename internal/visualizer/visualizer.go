package visualizer

import (
	"sync"
	"sync/atomic"
	"time"
)

// Source supplies frequency snapshots; *Analyser satisfies it.
type Source interface {
	BinCount() int
	FrequencyData(dst []uint8) int
}

type Config struct {
	FPS      int
	Width    int
	Height   int
	BarWidth int
}

func DefaultConfig() Config {
	return Config{FPS: 30, Width: 64, Height: 4, BarWidth: 1}
}

// Visualizer runs a render loop for as long as its owner reports it is
// still recording. The flag is checked after each draw, so at most one
// frame is drawn after the owner stops.
type Visualizer struct {
	config   Config
	renderer Renderer

	running atomic.Bool
	drawn   atomic.Int64
	wg      sync.WaitGroup
}

func New(config Config, renderer Renderer) *Visualizer {
	if renderer == nil {
		renderer = Nop{}
	}
	if config.FPS <= 0 {
		config.FPS = DefaultConfig().FPS
	}
	return &Visualizer{config: config, renderer: renderer}
}

// Start begins drawing. active is the owner's recording flag.
func (v *Visualizer) Start(source Source, active func() bool) {
	if !v.running.CompareAndSwap(false, true) {
		return
	}
	v.wg.Add(1)
	go v.loop(source, active)
}

// Stop waits for the loop to notice the owner's flag and exit. Callers
// clear the flag first.
func (v *Visualizer) Stop() {
	v.wg.Wait()
}

// Frames returns how many frames have been drawn.
func (v *Visualizer) Frames() int64 {
	return v.drawn.Load()
}

func (v *Visualizer) loop(source Source, active func() bool) {
	defer func() {
		v.renderer.Clear()
		v.running.Store(false)
		v.wg.Done()
	}()

	ticker := time.NewTicker(time.Second / time.Duration(v.config.FPS))
	defer ticker.Stop()

	bins := make([]uint8, source.BinCount())
	for active() {
		v.draw(source, bins)
		if !active() {
			return
		}
		<-ticker.C
	}
}

func (v *Visualizer) draw(source Source, bins []uint8) {
	n := source.FrequencyData(bins)
	if n <= 0 {
		return
	}
	v.renderer.Render(Layout(Frame{Bins: bins[:n]}, v.config.Width, v.config.BarWidth))
	v.drawn.Add(1)
}

package visualizer

import (
	"encoding/binary"
	"math"
	"math/cmplx"
	"sync"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	// FFTSize matches the analyser the web recorder used; it yields 128 bins.
	FFTSize = 256

	DefaultMinDecibels = -100.0
	DefaultMaxDecibels = -30.0
	DefaultSmoothing   = 0.8
)

// Analyser keeps the most recent FFTSize mono samples from a s16le PCM
// stream and reports byte-scaled frequency magnitudes.
type Analyser struct {
	mu       sync.Mutex
	channels int
	carry    []byte
	ring     []float64
	pos      int

	fft      *fourier.FFT
	window   []float64
	smoothed []float64

	MinDecibels float64
	MaxDecibels float64
	Smoothing   float64
}

func NewAnalyser(channels int) *Analyser {
	if channels <= 0 {
		channels = 1
	}
	return &Analyser{
		channels:    channels,
		ring:        make([]float64, FFTSize),
		fft:         fourier.NewFFT(FFTSize),
		window:      blackman(FFTSize),
		smoothed:    make([]float64, FFTSize/2),
		MinDecibels: DefaultMinDecibels,
		MaxDecibels: DefaultMaxDecibels,
		Smoothing:   DefaultSmoothing,
	}
}

func (a *Analyser) BinCount() int {
	return FFTSize / 2
}

// Write feeds interleaved s16le PCM. Channels are averaged to mono.
func (a *Analyser) Write(pcm []byte) {
	a.mu.Lock()
	defer a.mu.Unlock()

	frameBytes := 2 * a.channels
	data := pcm
	if len(a.carry) > 0 {
		data = append(a.carry, pcm...)
		a.carry = nil
	}

	n := len(data) / frameBytes * frameBytes
	for off := 0; off < n; off += frameBytes {
		var sum float64
		for ch := 0; ch < a.channels; ch++ {
			s := int16(binary.LittleEndian.Uint16(data[off+2*ch:]))
			sum += float64(s) / 32768
		}
		a.ring[a.pos] = sum / float64(a.channels)
		a.pos = (a.pos + 1) % FFTSize
	}
	if rest := data[n:]; len(rest) > 0 {
		a.carry = append([]byte(nil), rest...)
	}
}

// FrequencyData fills dst with magnitudes in 0..255 and returns the number
// of bins written.
func (a *Analyser) FrequencyData(dst []uint8) int {
	a.mu.Lock()
	defer a.mu.Unlock()

	seq := make([]float64, FFTSize)
	for i := range seq {
		seq[i] = a.ring[(a.pos+i)%FFTSize] * a.window[i]
	}
	coeff := a.fft.Coefficients(nil, seq)

	scale := 255 / (a.MaxDecibels - a.MinDecibels)
	n := len(dst)
	if n > len(a.smoothed) {
		n = len(a.smoothed)
	}
	for k := 0; k < len(a.smoothed); k++ {
		mag := cmplx.Abs(coeff[k]) / FFTSize
		a.smoothed[k] = a.Smoothing*a.smoothed[k] + (1-a.Smoothing)*mag
		if k >= n {
			continue
		}
		db := 20 * math.Log10(a.smoothed[k])
		v := math.Floor(scale * (db - a.MinDecibels))
		switch {
		case math.IsNaN(v) || v < 0:
			v = 0
		case v > 255:
			v = 255
		}
		dst[k] = uint8(v)
	}
	return n
}

func blackman(n int) []float64 {
	const alpha = 0.16
	a0, a1, a2 := (1-alpha)/2, 0.5, alpha/2
	w := make([]float64, n)
	for i := range w {
		x := 2 * math.Pi * float64(i) / float64(n)
		w[i] = a0 - a1*math.Cos(x) + a2*math.Cos(2*x)
	}
	return w
}

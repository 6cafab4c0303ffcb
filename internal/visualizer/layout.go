package visualizer

import "math"

// Frame is one snapshot of frequency-bin magnitudes, consumed by a single
// render and then discarded.
type Frame struct {
	Bins []uint8
}

// Saturation is the bar level at which height and opacity stop growing.
const Saturation = 60.0

// Bar is one column of the spectrum display.
type Bar struct {
	X         int
	Width     int
	Level     float64 // 0..1 of the render height
	Intensity uint8
	Opacity   float64
}

// Layout maps a frame to bars drawn left to right with fixed width and a
// one-cell gap, stopping at width.
func Layout(frame Frame, width, barWidth int) []Bar {
	if barWidth <= 0 {
		barWidth = 1
	}
	bars := make([]Bar, 0, len(frame.Bins))
	x := 0
	for _, v := range frame.Bins {
		if x+barWidth > width {
			break
		}
		level := float64(v) / 2
		clamped := math.Min(level, Saturation)
		bars = append(bars, Bar{
			X:         x,
			Width:     barWidth,
			Level:     clamped / Saturation,
			Intensity: uint8(math.Min(255, math.Floor(level*3))),
			Opacity:   clamped / Saturation,
		})
		x += barWidth + 1
	}
	return bars
}

// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"math"
	"strings"
)

// FilterMode selects a filter preset.
type FilterMode int

const (
	FilterNone FilterMode = iota
	FilterLow
	FilterHigh
	FilterBand
)

var filterModeNames = map[FilterMode]string{
	FilterNone: "none",
	FilterLow:  "low",
	FilterHigh: "high",
	FilterBand: "band",
}

// Cutoffs in Hz. Lower cutoffs give wider windows and stronger smoothing.
var filterCutoffs = map[FilterMode]float64{
	FilterLow:  400,
	FilterHigh: 2000,
	FilterBand: 5000,
}

func (m FilterMode) String() string {
	if name, ok := filterModeNames[m]; ok {
		return name
	}
	return "invalid"
}

// Valid reports whether m is one of the declared modes.
func (m FilterMode) Valid() bool {
	_, ok := filterModeNames[m]
	return ok
}

// Cutoff returns the preset cutoff frequency, or 0 for FilterNone.
func (m FilterMode) Cutoff() float64 { return filterCutoffs[m] }

// ParseFilterMode accepts the preset names plus "reset" and "" for FilterNone.
func ParseFilterMode(name string) (FilterMode, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "none", "reset":
		return FilterNone, true
	case "low":
		return FilterLow, true
	case "high":
		return FilterHigh, true
	case "band":
		return FilterBand, true
	}
	return FilterNone, false
}

// WindowSize is the moving-average width emulating a cutoff frequency:
// round(sqrt(0.196196 + r²) / r) with r = cutoff / sampleRate.
func WindowSize(cutoff float64, sampleRate int) int {
	if cutoff <= 0 || sampleRate <= 0 {
		return 1
	}
	r := cutoff / float64(sampleRate)
	return max(1, int(math.Round(math.Sqrt(0.196196+r*r)/r)))
}

// Filter colours its child with a causal moving average. The input history
// of every channel is carried across pulls, so block edges and mode switches
// do not click. FilterNone passes samples through untouched.
type Filter struct {
	src        Node
	sampleRate int
	mode       FilterMode
	window     int

	// tail holds the last `history` input frames, interleaved.
	history  int
	tail     []float64
	channels int

	work []float64
	out  []float64
}

func NewFilter(src Node, sampleRate int) *Filter {
	widest := 1
	for _, cutoff := range filterCutoffs {
		widest = max(widest, WindowSize(cutoff, sampleRate))
	}

	return &Filter{
		src:        src,
		sampleRate: sampleRate,
		window:     1,
		history:    widest - 1,
	}
}

func (f *Filter) Mode() FilterMode { return f.mode }

// Window returns the current averaging width in frames.
func (f *Filter) Window() int { return f.window }

// SetMode switches presets on the next pull. Unknown modes are ignored and
// reported with false.
func (f *Filter) SetMode(m FilterMode) bool {
	if !m.Valid() {
		return false
	}
	f.mode = m
	f.window = 1
	if m != FilterNone {
		f.window = WindowSize(m.Cutoff(), f.sampleRate)
	}
	return true
}

func (f *Filter) Release() { f.src.Release() }

func (f *Filter) Generate(frames, channels int) ([]float64, bool) {
	in, alive := f.src.Generate(frames, channels)
	f.out = ensure(f.out, frames*channels)

	if channels != f.channels {
		f.channels = channels
		f.tail = make([]float64, f.history*channels)
	}

	// work = tail ++ in, so every output frame sees `history` frames back.
	f.work = ensure(f.work, len(f.tail)+len(f.out))
	copy(f.work, f.tail)
	n := copy(f.work[len(f.tail):], in)
	zero(f.work[len(f.tail)+n:])

	if f.mode == FilterNone || f.window <= 1 {
		copy(f.out, f.work[len(f.tail):])
	} else {
		f.average(frames, channels)
	}

	copy(f.tail, f.work[len(f.work)-len(f.tail):])

	return f.out, alive
}

func (f *Filter) average(frames, channels int) {
	n := f.window
	scale := 1 / float64(n)
	base := f.history

	for c := range channels {
		sum := 0.0
		for k := base - n + 1; k <= base; k++ {
			sum += f.work[k*channels+c]
		}
		for i := range frames {
			cur := base + i
			if i > 0 {
				sum += f.work[cur*channels+c] - f.work[(cur-n)*channels+c]
			}
			f.out[i*channels+c] = sum * scale
		}
	}
}

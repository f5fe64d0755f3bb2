// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"time"

	vecmath "github.com/cwbudde/algo-vecmath"
)

// CrossfadePhase describes what a FilterMixer is doing.
type CrossfadePhase int

const (
	// PhaseIdle plays the regular branch at unity gain.
	PhaseIdle CrossfadePhase = iota
	// PhaseCrossfade blends toward the alternate branch.
	PhaseCrossfade
	// PhaseRecover ramps the regular branch back to unity after a reset.
	PhaseRecover
)

func (p CrossfadePhase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseCrossfade:
		return "crossfade"
	case PhaseRecover:
		return "recover"
	}
	return "invalid"
}

// FilterMixerState is a snapshot of the crossfade.
type FilterMixerState struct {
	Mode    FilterMode
	Phase   CrossfadePhase
	Onset   int // song frame at which the alternate branch started
	Elapsed int // output frames since the crossfade started
}

// FilterMixer blends a regular branch with a time-aligned alternate
// rendition of the same material. While a crossfade runs, the two gains sum
// to 1. After the hold time, or when the alternate branch ends, the mixer
// resets itself.
type FilterMixer struct {
	format   Format
	regular  Node
	envelope Envelope
	hold     int
	recover  int

	alt          Node
	state        FilterMixerState
	regularGain  float64
	filteredGain float64

	altGains []float64
	regGains []float64
	blend    []float64
	out      []float64
}

// DefaultCrossfade is both the fade length and the auto-reset hold time.
const DefaultCrossfade = 8 * time.Second

func NewFilterMixer(regular Node, f Format, fade, hold time.Duration) *FilterMixer {
	m := &FilterMixer{
		format:      f,
		regular:     regular,
		regularGain: 1,
	}
	m.SetTiming(DefaultCrossfade, DefaultCrossfade)
	m.SetTiming(fade, hold)

	return m
}

// SetTiming changes the crossfade length and the hold time used from the
// next crossfade on. Non-positive durations keep the current value.
func (m *FilterMixer) SetTiming(fade, hold time.Duration) {
	if fade > 0 {
		m.envelope = NewEnvelope(
			Keyframe{Time: 0, Value: 0},
			Keyframe{Time: fade.Seconds(), Value: 1},
		)
		m.recover = max(1, m.format.Frames(fade))
	}
	if hold > 0 {
		m.hold = m.format.Frames(hold)
	}
}

func (m *FilterMixer) State() FilterMixerState { return m.state }

// Gains returns the current regular and filtered branch gains.
func (m *FilterMixer) Gains() (regular, filtered float64) {
	return m.regularGain, m.filteredGain
}

// Active reports whether an alternate branch is attached.
func (m *FilterMixer) Active() bool { return m.alt != nil }

// SetFilter attaches alt as the alternate branch for mode and restarts the
// crossfade. onset is the song frame alt starts from. Any previous alternate
// branch is released.
func (m *FilterMixer) SetFilter(mode FilterMode, alt Node, onset int) bool {
	if alt == nil || !mode.Valid() || mode == FilterNone {
		return false
	}
	if m.alt != nil {
		m.alt.Release()
	}

	m.alt = alt
	m.state = FilterMixerState{Mode: mode, Phase: PhaseCrossfade, Onset: onset}
	m.regularGain, m.filteredGain = 1, 0

	return true
}

// Reset freezes the gains, detaches the alternate branch and hands its gain
// to the regular branch, which then recovers to unity.
func (m *FilterMixer) Reset() {
	if m.alt == nil {
		return
	}

	m.alt.Release()
	m.alt = nil
	m.regularGain = m.filteredGain
	m.filteredGain = 0
	m.state = FilterMixerState{Phase: PhaseRecover}
	if m.regularGain >= 1 {
		m.regularGain = 1
		m.state.Phase = PhaseIdle
	}
}

func (m *FilterMixer) Release() {
	m.regular.Release()
	if m.alt != nil {
		m.alt.Release()
	}
}

func (m *FilterMixer) Generate(frames, channels int) ([]float64, bool) {
	reg, alive := m.regular.Generate(frames, channels)
	n := frames * channels
	m.out = ensure(m.out, n)
	if n == 0 {
		return m.out, alive
	}

	switch {
	case m.alt != nil:
		m.crossfade(reg, frames, channels)
	case m.state.Phase == PhaseRecover:
		m.recoverGain(reg, frames, channels)
	default:
		copyPadded(m.out, reg)
	}

	return m.out, alive
}

func (m *FilterMixer) crossfade(reg []float64, frames, channels int) {
	alt, altAlive := m.alt.Generate(frames, channels)
	n := frames * channels

	m.altGains = ensure(m.altGains, n)
	m.regGains = ensure(m.regGains, n)
	m.blend = ensure(m.blend, n)

	rate := float64(m.format.SampleRate)
	for i := range frames {
		g := m.envelope.At(float64(m.state.Elapsed+i) / rate)
		for c := range channels {
			m.altGains[i*channels+c] = g
			m.regGains[i*channels+c] = 1 - g
		}
	}
	m.state.Elapsed += frames
	m.filteredGain = m.altGains[n-channels]
	m.regularGain = 1 - m.filteredGain

	copyPadded(m.out, reg)
	vecmath.MulBlockInPlace(m.out, m.regGains)
	copyPadded(m.blend, alt)
	vecmath.MulBlockInPlace(m.blend, m.altGains)
	vecmath.AddBlockInPlace(m.out, m.blend)

	if m.state.Elapsed >= m.hold || !altAlive {
		m.Reset()
	}
}

func (m *FilterMixer) recoverGain(reg []float64, frames, channels int) {
	step := 1 / float64(m.recover)
	g := m.regularGain
	for i := range frames {
		g = min(1, g+step)
		for c := range channels {
			idx := i*channels + c
			if idx < len(reg) {
				m.out[idx] = reg[idx] * g
			} else {
				m.out[idx] = 0
			}
		}
	}
	m.regularGain = g
	if g >= 1 {
		m.state.Phase = PhaseIdle
	}
}

// copyPadded copies src into dst and zeroes whatever src did not cover.
func copyPadded(dst, src []float64) {
	n := copy(dst, src)
	zero(dst[n:])
}

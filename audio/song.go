// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"math"

	vecmath "github.com/cwbudde/algo-vecmath"
)

type samplerPhase int

const (
	samplerIdle samplerPhase = iota
	samplerArmed
	samplerLooping
)

// sampler is the song's loop slot. Only the owning Song mutates it.
type sampler struct {
	phase samplerPhase
	on    int
	off   int
	// rearm is an on-frame recorded while a loop plays; it turns the next
	// off-frame into a toggle that clears the loop.
	rearm int
	loop  *SpeedModulator
}

func (s *sampler) clear() {
	if s.loop != nil {
		s.loop.Release()
	}
	*s = sampler{}
}

// Song is the playable unit: a decoded track behind speed, filter and
// crossfade stages, plus a sampler slot that can replace the track output
// with a loop captured from the unmodified source.
type Song struct {
	name       string
	source     *Buffer
	alternates map[FilterMode]*Buffer

	gen    *Generator
	speed  *SpeedModulator
	filter *Filter
	fader  *FilterMixer

	sampler  sampler
	gain     float64
	released bool
	out      []float64
}

// NewSong builds the playback chain for source. alternates maps filter modes
// to pre-rendered versions of the same track; modes without one fall back to
// the live Filter.
func NewSong(name string, source *Buffer, alternates map[FilterMode]*Buffer) *Song {
	f := source.Format()
	gen := NewGenerator(source, 0, source.Frames(), false)
	speed := NewSpeedModulator(gen, 1)
	filter := NewFilter(speed, f.SampleRate)

	return &Song{
		name:       name,
		source:     source,
		alternates: alternates,
		gen:        gen,
		speed:      speed,
		filter:     filter,
		fader:      NewFilterMixer(filter, f, DefaultCrossfade, DefaultCrossfade),
		gain:       1,
	}
}

func (s *Song) Name() string { return s.name }

// Frame returns the playback position of the main track in source frames.
func (s *Song) Frame() int { return s.gen.Frame() }

// Length returns the track length in frames.
func (s *Song) Length() int { return s.gen.Length() }

func (s *Song) Speed() float64 { return s.speed.Speed() }

// SetSpeed applies to the main track, the alternate branch and the loop.
func (s *Song) SetSpeed(speed float64) {
	s.speed.SetSpeed(speed)
	speed = s.speed.Speed()
	if alt, ok := s.fader.alt.(*SpeedModulator); ok {
		alt.SetSpeed(speed)
	}
	if s.sampler.loop != nil {
		s.sampler.loop.SetSpeed(speed)
	}
}

func (s *Song) Gain() float64 { return s.gain }

func (s *Song) SetGain(g float64) {
	if g < 0 || math.IsNaN(g) || math.IsInf(g, 0) {
		return
	}
	s.gain = g
}

// FilterMode returns the preset currently colouring the track.
func (s *Song) FilterMode() FilterMode {
	if s.fader.Active() {
		return s.fader.State().Mode
	}
	return s.filter.Mode()
}

// Fader exposes the crossfade stage for inspection.
func (s *Song) Fader() *FilterMixer { return s.fader }

// SetFilter applies a preset. A pre-rendered alternate is crossfaded in when
// one exists for mode; otherwise the live filter takes it. FilterNone resets.
func (s *Song) SetFilter(mode FilterMode) bool {
	if !mode.Valid() {
		return false
	}
	if mode == FilterNone {
		s.ResetFilter()
		return true
	}

	if buf, ok := s.alternates[mode]; ok {
		frame := s.Frame()
		gen := NewGenerator(buf, frame, buf.Frames()-frame, false)
		s.filter.SetMode(FilterNone)
		return s.fader.SetFilter(mode, NewSpeedModulator(gen, s.Speed()), frame)
	}

	s.fader.Reset()
	return s.filter.SetMode(mode)
}

func (s *Song) ResetFilter() {
	s.filter.SetMode(FilterNone)
	s.fader.Reset()
}

// SetSamplingOnFrame records a loop start. Non-positive frames are ignored.
func (s *Song) SetSamplingOnFrame(frame int) bool {
	if frame <= 0 {
		return false
	}

	switch s.sampler.phase {
	case samplerLooping:
		s.sampler.rearm = frame
	default:
		// A new window starts; the previous off-frame no longer belongs to it.
		s.sampler.phase = samplerArmed
		s.sampler.on = frame
		s.sampler.off = 0
	}
	return true
}

// SetSamplingOffFrame captures [on, frame) as a loop when armed. While a loop
// plays it clears the loop if a newer on-frame was recorded, and otherwise
// does nothing.
func (s *Song) SetSamplingOffFrame(frame int) bool {
	sm := &s.sampler

	switch sm.phase {
	case samplerArmed:
		if frame <= sm.on || sm.on >= s.source.Frames() {
			return false
		}
		gen := NewGenerator(s.source, sm.on, frame-sm.on, true)
		sm.loop = NewSpeedModulator(gen, s.Speed())
		sm.off = frame
		sm.phase = samplerLooping
		return true

	case samplerLooping:
		if sm.rearm == 0 {
			return false
		}
		sm.loop.Release()
		sm.loop = nil
		sm.rearm = 0
		sm.phase = samplerIdle
		return true
	}

	return false
}

// ResetSample drops the loop and any recorded frames.
func (s *Song) ResetSample() { s.sampler.clear() }

// Sampling returns the last captured window and whether its loop is playing.
// on is also set while armed.
func (s *Song) Sampling() (on, off int, active bool) {
	return s.sampler.on, s.sampler.off, s.sampler.phase == samplerLooping
}

// LoopLength returns the frame count of the playing loop, or 0.
func (s *Song) LoopLength() int {
	if s.sampler.phase != samplerLooping {
		return 0
	}
	return s.sampler.off - s.sampler.on
}

func (s *Song) Release() {
	s.released = true
	s.fader.Release()
	if s.sampler.loop != nil {
		s.sampler.loop.Release()
	}
}

// Generate always advances the main track, then substitutes the loop output
// while one plays.
func (s *Song) Generate(frames, channels int) ([]float64, bool) {
	main, alive := s.fader.Generate(frames, channels)
	s.out = ensure(s.out, frames*channels)

	src := main
	if s.sampler.phase == samplerLooping {
		src, _ = s.sampler.loop.Generate(frames, channels)
	}
	vecmath.ScaleBlock(s.out, src, s.gain)

	return s.out, alive && !s.released
}

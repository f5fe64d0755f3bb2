// SPDX-License-Identifier: EPL-2.0

package synth

import (
	"math"

	"github.com/rocarrillos/beatrunner/audio"
)

const (
	twoPi = math.Pi * 2

	// Channels is the number of MIDI-style channels an Instrument exposes.
	Channels = 16
	// Polyphony caps simultaneous voices; the oldest voice is stolen.
	Polyphony = 32
)

type envState int

const (
	envAttack envState = iota
	envDecay
	envSustain
	envRelease
	envOff
)

type voice struct {
	channel  int
	pitch    int
	velocity float64
	freq     float64
	patch    Patch

	carrier   float64
	modulator float64
	env       float64
	state     envState
	relStep   float64
}

// advance steps the envelope by one sample.
func (v *voice) advance(sampleRate float64) {
	p := &v.patch
	switch v.state {
	case envAttack:
		v.env += rate(1, p.Attack, sampleRate)
		if v.env >= 1 {
			v.env = 1
			v.state = envDecay
		}
	case envDecay:
		v.env -= rate(1-p.Sustain, p.Decay, sampleRate)
		if v.env <= p.Sustain {
			v.env = p.Sustain
			v.state = envSustain
			if p.Sustain <= 0 {
				v.state = envOff
			}
		}
	case envRelease:
		v.env -= v.relStep
		if v.env <= 0.0001 {
			v.env = 0
			v.state = envOff
		}
	case envOff:
		v.env = 0
	}
}

// release fades from the current level to silence over the patch release.
func (v *voice) release(sampleRate float64) {
	if v.state == envOff || v.state == envRelease {
		return
	}
	v.state = envRelease
	v.relStep = max(rate(v.env, v.patch.Release, sampleRate), 1e-6)
}

// rate is the per-sample step covering span in seconds; instant for zero time.
func rate(span, seconds, sampleRate float64) float64 {
	if seconds <= 0 {
		return 1
	}
	return span / (seconds * sampleRate)
}

// Instrument is a polyphonic two-operator FM synthesizer with sixteen
// channels, each bound to a Patch. It is a graph node: the same mono signal
// is written to every output channel.
type Instrument struct {
	sampleRate float64
	programs   [Channels]Patch
	voices     []*voice
	gain       float64
	released   bool
	out        []float64
}

func NewInstrument(f audio.Format) *Instrument {
	in := &Instrument{
		sampleRate: float64(f.SampleRate),
		gain:       1,
	}
	for ch := range in.programs {
		in.programs[ch] = DefaultPatch
	}
	return in
}

// Program binds a bank and patch to a channel. Voices already sounding keep
// their patch.
func (in *Instrument) Program(channel, bank, patch int) error {
	if channel < 0 || channel >= Channels {
		return ErrInvalidChannel
	}
	if bank < 0 || bank > 127 || patch < 0 || patch > 127 {
		return ErrInvalidProgram
	}
	in.programs[channel] = PatchFor(bank, patch)
	return nil
}

// NoteOn starts a voice. A zero velocity releases the note instead. Out of
// range arguments are ignored.
func (in *Instrument) NoteOn(channel, pitch, velocity int) {
	if channel < 0 || channel >= Channels || pitch < 0 || pitch > 127 {
		return
	}
	if velocity <= 0 {
		in.NoteOff(channel, pitch)
		return
	}

	if len(in.voices) >= Polyphony {
		in.voices[0] = nil
		in.voices = in.voices[1:]
	}
	in.voices = append(in.voices, &voice{
		channel:  channel,
		pitch:    pitch,
		velocity: float64(min(velocity, 127)) / 127,
		freq:     midiToFreq(pitch),
		patch:    in.programs[channel],
	})
}

// NoteOff releases every sounding voice of pitch on channel.
func (in *Instrument) NoteOff(channel, pitch int) {
	for _, v := range in.voices {
		if v.channel == channel && v.pitch == pitch {
			v.release(in.sampleRate)
		}
	}
}

// Voices returns the number of voices that have not finished.
func (in *Instrument) Voices() int { return len(in.voices) }

func (in *Instrument) Gain() float64 { return in.gain }

func (in *Instrument) SetGain(g float64) { in.gain = max(0, g) }

func (in *Instrument) Release() { in.released = true }

func (in *Instrument) Generate(frames, channels int) ([]float64, bool) {
	n := frames * channels
	if cap(in.out) < n {
		in.out = make([]float64, n)
	}
	in.out = in.out[:n]

	for f := range frames {
		s := 0.0
		for _, v := range in.voices {
			s += in.render(v)
		}
		s *= in.gain
		for c := range channels {
			in.out[f*channels+c] = s
		}
	}

	kept := in.voices[:0]
	for _, v := range in.voices {
		if v.state != envOff {
			kept = append(kept, v)
		}
	}
	for i := len(kept); i < len(in.voices); i++ {
		in.voices[i] = nil
	}
	in.voices = kept

	return in.out, !in.released || len(in.voices) > 0
}

func (in *Instrument) render(v *voice) float64 {
	if v.state == envOff {
		return 0
	}
	v.advance(in.sampleRate)

	p := &v.patch
	mod := math.Sin(v.modulator) * p.Index * v.env
	s := math.Sin(v.carrier+mod) * v.env * v.velocity * p.Gain

	v.carrier += twoPi * v.freq / in.sampleRate
	if v.carrier > twoPi {
		v.carrier -= twoPi
	}
	v.modulator += twoPi * v.freq * p.Ratio / in.sampleRate
	if v.modulator > twoPi {
		v.modulator -= twoPi
	}

	return s
}

// SPDX-License-Identifier: EPL-2.0

package synth

import "math"

// Patch holds the two-operator FM voice parameters selected by a program.
type Patch struct {
	Ratio   float64 // modulator frequency / carrier frequency
	Index   float64 // modulation depth at full envelope
	Attack  float64 // seconds
	Decay   float64 // seconds
	Sustain float64 // level 0..1
	Release float64 // seconds
	Gain    float64
}

// DefaultPatch is an electric piano used before any Program call.
var DefaultPatch = Patch{
	Ratio:   2,
	Index:   1.6,
	Attack:  0.005,
	Decay:   0.12,
	Sustain: 0.75,
	Release: 0.2,
	Gain:    0.45,
}

// General MIDI programs with hand-tuned FM approximations.
var gmPatches = map[int]Patch{
	0:   {Ratio: 1, Index: 1.2, Attack: 0.002, Decay: 0.6, Sustain: 0.2, Release: 0.3, Gain: 0.5},      // acoustic grand
	9:   {Ratio: 3.5, Index: 5.5, Attack: 0.003, Decay: 0.65, Sustain: 0.04, Release: 0.28, Gain: 0.4}, // glockenspiel
	11:  {Ratio: 4, Index: 2.5, Attack: 0.002, Decay: 0.9, Sustain: 0, Release: 0.4, Gain: 0.45},       // vibraphone
	14:  {Ratio: 1.4, Index: 4, Attack: 0.001, Decay: 1.5, Sustain: 0, Release: 0.8, Gain: 0.45},       // tubular bells
	29:  {Ratio: 1, Index: 6, Attack: 0.004, Decay: 0.2, Sustain: 0.6, Release: 0.15, Gain: 0.35},      // overdriven guitar
	38:  {Ratio: 0.5, Index: 3, Attack: 0.002, Decay: 0.25, Sustain: 0.5, Release: 0.1, Gain: 0.6},     // synth bass
	56:  {Ratio: 1, Index: 2.2, Attack: 0.03, Decay: 0.1, Sustain: 0.85, Release: 0.12, Gain: 0.4},     // trumpet
	80:  {Ratio: 1, Index: 0.8, Attack: 0.004, Decay: 0.05, Sustain: 0.9, Release: 0.05, Gain: 0.35},   // square lead
	98:  {Ratio: 2.76, Index: 3.2, Attack: 0.01, Decay: 1.2, Sustain: 0.1, Release: 0.6, Gain: 0.4},    // crystal
	127: {Ratio: 1.41, Index: 8, Attack: 0.001, Decay: 0.35, Sustain: 0, Release: 0.2, Gain: 0.5},      // gunshot
}

// PatchFor returns the patch for a bank and program. Programs without a
// dedicated entry in bank 0 derive their timbre from the program number and
// bank.
func PatchFor(bank, program int) Patch {
	if p, ok := gmPatches[program]; ok && bank == 0 {
		return p
	}

	p := DefaultPatch
	family := program / 8
	p.Ratio = 1 + float64(family%4)*0.5
	p.Index = 1 + float64(program%8)*0.4 + float64(bank)*0.05
	p.Decay = 0.1 + float64(family)*0.05
	return p
}

// midiToFreq converts a MIDI note number to Hz (A4 = 69 = 440 Hz).
func midiToFreq(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}

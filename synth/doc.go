// SPDX-License-Identifier: EPL-2.0

// Package synth provides the sound-effect instrument and procedural stingers.
//
// Instrument is a sixteen-channel, two-operator FM synthesizer driven with
// MIDI-style Program, NoteOn and NoteOff calls. It implements audio.Node, so
// it is attached to a mixer like any other source and keeps running while
// idle.
//
//	inst := synth.NewInstrument(audio.DefaultFormat)
//	_ = inst.Program(0, 0, 9) // glockenspiel
//	inst.NoteOn(0, 84, 110)
//
// Riser renders a deterministic sweep used as a transition build-up.
package synth

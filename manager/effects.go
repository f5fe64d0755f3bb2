// SPDX-License-Identifier: EPL-2.0

package manager

import (
	"github.com/rocarrillos/beatrunner/synth"
)

// Effect is a one-shot sound played on the effect instrument.
type Effect int

const (
	EffectError Effect = iota
	EffectPowerup
	EffectJump
	EffectLose
	EffectWin

	numEffects
)

// voicing is the instrument channel, General MIDI program and note an
// effect sounds with. Each effect owns its channel.
type voicing struct {
	name     string
	channel  int
	program  int
	pitch    int
	velocity int
}

var effectVoicings = [numEffects]voicing{
	EffectError:   {"error", 0, 29, 40, 120},
	EffectPowerup: {"powerup", 1, 9, 84, 110},
	EffectJump:    {"jump", 2, 80, 72, 100},
	EffectLose:    {"lose", 3, 56, 48, 110},
	EffectWin:     {"win", 4, 14, 79, 110},
}

func (e Effect) Valid() bool { return e >= 0 && e < numEffects }

func (e Effect) String() string {
	if !e.Valid() {
		return "invalid"
	}
	return effectVoicings[e].name
}

// programEffects assigns every effect channel its patch.
func programEffects(in *synth.Instrument) error {
	for _, v := range effectVoicings {
		if err := in.Program(v.channel, 0, v.program); err != nil {
			return err
		}
	}
	return nil
}

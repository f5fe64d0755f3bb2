// SPDX-License-Identifier: EPL-2.0

package manager

import (
	"strings"

	"github.com/rocarrillos/beatrunner/audio"
)

// Powerup is a collectible in the level annotations.
type Powerup int

const (
	PowerupNote Powerup = iota
	PowerupLowerVolume
	PowerupRaiseVolume
	PowerupError
	PowerupBassBoost
	PowerupVocalsBoost
	PowerupResetFilter
	PowerupUnderwater
	PowerupSpeedup
	PowerupSlowdown
	PowerupResetSpeed
	PowerupSampleOn
	PowerupSampleOff
	PowerupResetSample
	PowerupRiser
	PowerupTrophy
	PowerupDanger
	PowerupTransitionToken
	PowerupTransition

	numPowerups
)

var powerupNames = [numPowerups]string{
	PowerupNote:            "powerup_note",
	PowerupLowerVolume:     "lower_volume",
	PowerupRaiseVolume:     "raise_volume",
	PowerupError:           "error",
	PowerupBassBoost:       "bass_boost",
	PowerupVocalsBoost:     "vocals_boost",
	PowerupResetFilter:     "reset_filter",
	PowerupUnderwater:      "underwater",
	PowerupSpeedup:         "speedup",
	PowerupSlowdown:        "slowdown",
	PowerupResetSpeed:      "reset_speed",
	PowerupSampleOn:        "sample_on",
	PowerupSampleOff:       "sample_off",
	PowerupResetSample:     "reset_sample",
	PowerupRiser:           "riser",
	PowerupTrophy:          "trophy",
	PowerupDanger:          "danger",
	PowerupTransitionToken: "transition_token",
	PowerupTransition:      "transition",
}

func (p Powerup) String() string {
	if p < 0 || p >= numPowerups {
		return "invalid"
	}
	return powerupNames[p]
}

// ParsePowerup maps an annotation name to its powerup.
func ParsePowerup(name string) (Powerup, bool) {
	name = strings.ToLower(strings.TrimSpace(name))
	for p, n := range powerupNames {
		if n == name {
			return Powerup(p), true
		}
	}
	return 0, false
}

// Command is one step of a powerup's reaction. The set of commands is
// closed; Manager.Execute handles each of them.
type Command interface {
	command()
}

// TriggerEffect plays a one-shot effect.
type TriggerEffect struct{ Effect Effect }

// AdjustSpeed changes tempo by Steps semitones; zero resets to normal speed.
type AdjustSpeed struct{ Steps int }

// SetFilter applies a filter preset; audio.FilterNone clears it.
type SetFilter struct{ Mode audio.FilterMode }

// AdjustVolume halves or doubles the master gain.
type AdjustVolume struct{ Up bool }

type SampleMark int

const (
	SampleMarkOn SampleMark = iota
	SampleMarkOff
	SampleMarkReset
)

// MarkSample sets a loop boundary at the primary song's current frame, or
// drops the loop.
type MarkSample struct{ Mark SampleMark }

// SpawnRiser starts the riser stinger.
type SpawnRiser struct{}

// ToggleActive pauses or resumes playback.
type ToggleActive struct{}

// CollectToken adds a transition token.
type CollectToken struct{}

// AdvanceTransition starts the transition to the next playlist song once
// enough tokens are held, or completes a transition already under way.
type AdvanceTransition struct{}

func (TriggerEffect) command()     {}
func (AdjustSpeed) command()       {}
func (SetFilter) command()         {}
func (AdjustVolume) command()      {}
func (MarkSample) command()        {}
func (SpawnRiser) command()        {}
func (ToggleActive) command()      {}
func (CollectToken) command()      {}
func (AdvanceTransition) command() {}

var powerupCommands = [numPowerups][]Command{
	PowerupNote:            {TriggerEffect{EffectPowerup}},
	PowerupLowerVolume:     {AdjustVolume{Up: false}},
	PowerupRaiseVolume:     {AdjustVolume{Up: true}},
	PowerupError:           {TriggerEffect{EffectError}},
	PowerupBassBoost:       {SetFilter{PresetBassBoost}},
	PowerupVocalsBoost:     {SetFilter{PresetVocalsBoost}},
	PowerupResetFilter:     {SetFilter{audio.FilterNone}},
	PowerupUnderwater:      {SetFilter{PresetUnderwater}},
	PowerupSpeedup:         {AdjustSpeed{1}},
	PowerupSlowdown:        {AdjustSpeed{-1}},
	PowerupResetSpeed:      {AdjustSpeed{0}},
	PowerupSampleOn:        {MarkSample{SampleMarkOn}},
	PowerupSampleOff:       {MarkSample{SampleMarkOff}},
	PowerupResetSample:     {MarkSample{SampleMarkReset}},
	PowerupRiser:           {SpawnRiser{}},
	PowerupTrophy:          {ToggleActive{}},
	PowerupDanger:          {ToggleActive{}},
	PowerupTransitionToken: {CollectToken{}},
	PowerupTransition:      {AdvanceTransition{}},
}

// Commands returns the ordered reaction to p.
func Commands(p Powerup) []Command {
	if p < 0 || p >= numPowerups {
		return nil
	}
	return append([]Command(nil), powerupCommands[p]...)
}

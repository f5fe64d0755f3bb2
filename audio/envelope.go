// SPDX-License-Identifier: EPL-2.0

package audio

import "sort"

// Keyframe pins an envelope value at a time in seconds.
type Keyframe struct {
	Time  float64
	Value float64
}

// Envelope interpolates linearly between keyframes and holds the first and
// last values outside them.
type Envelope struct {
	keys []Keyframe
}

func NewEnvelope(keys ...Keyframe) Envelope {
	sorted := append([]Keyframe(nil), keys...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Time < sorted[j].Time })
	return Envelope{keys: sorted}
}

// Duration is the time of the last keyframe.
func (e Envelope) Duration() float64 {
	if len(e.keys) == 0 {
		return 0
	}
	return e.keys[len(e.keys)-1].Time
}

// At evaluates the envelope at t seconds.
func (e Envelope) At(t float64) float64 {
	switch {
	case len(e.keys) == 0:
		return 0
	case t <= e.keys[0].Time:
		return e.keys[0].Value
	case t >= e.keys[len(e.keys)-1].Time:
		return e.keys[len(e.keys)-1].Value
	}

	i := sort.Search(len(e.keys), func(i int) bool { return e.keys[i].Time > t })
	a, b := e.keys[i-1], e.keys[i]
	if b.Time == a.Time {
		return b.Value
	}
	return a.Value + (b.Value-a.Value)*(t-a.Time)/(b.Time-a.Time)
}

// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"math"

	"github.com/rocarrillos/beatrunner/utils"
)

// SpeedModulator changes the playback rate of its child by pulling
// ceil(frames*speed) frames and linearly interpolating them onto the requested
// frame count. Tempo and pitch move together.
type SpeedModulator struct {
	src   Node
	speed float64
	out   []float64
}

func NewSpeedModulator(src Node, speed float64) *SpeedModulator {
	s := &SpeedModulator{src: src, speed: 1}
	s.SetSpeed(speed)
	return s
}

func (s *SpeedModulator) Speed() float64 { return s.speed }

// SetSpeed takes effect on the next pull. Non-positive and non-finite values
// are ignored.
func (s *SpeedModulator) SetSpeed(speed float64) {
	if speed <= 0 || math.IsNaN(speed) || math.IsInf(speed, 0) {
		return
	}
	s.speed = speed
}

func (s *SpeedModulator) Release() { s.src.Release() }

func (s *SpeedModulator) Generate(frames, channels int) ([]float64, bool) {
	s.out = ensure(s.out, frames*channels)
	if frames == 0 {
		return s.out, true
	}

	need := max(1, int(math.Ceil(float64(frames)*s.speed)))
	in, alive := s.src.Generate(need, channels)

	got := len(in) / channels
	if got == 0 {
		zero(s.out)
		return s.out, alive
	}

	// Output frame i samples the pulled block at i*got/frames, so the
	// output spans [0, got) evenly whatever the child returned.
	step := float64(got) / float64(frames)
	last := got - 1
	for i := range frames {
		x := float64(i) * step
		j := int(x)
		frac := x - float64(j)
		k := min(j+1, last)
		if j > last {
			j, frac = last, 0
		}

		for c := range channels {
			s.out[i*channels+c] = utils.Lerp(in[j*channels+c], in[k*channels+c], frac)
		}
	}

	return s.out, alive
}

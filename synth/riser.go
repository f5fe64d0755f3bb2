// SPDX-License-Identifier: EPL-2.0

package synth

import (
	"math"
	"time"

	"github.com/rocarrillos/beatrunner/audio"
)

// Riser sweep range in Hz.
const (
	riserLow  = 110.0
	riserHigh = 1760.0
)

// Riser renders a build-up stinger: an exponential sine sweep with a band of
// noise that swells towards the end, followed by a short fade so the buffer
// ends in silence. The output is deterministic.
func Riser(f audio.Format, d time.Duration) *audio.Buffer {
	frames := max(1, f.Frames(d))
	fade := min(frames/10, f.SampleRate/20)
	data := make([]float64, frames*f.Channels)

	seed := uint64(0x2545f4914f6cdd1d)
	phase, lp := 0.0, 0.0
	ratio := riserHigh / riserLow

	for i := range frames {
		p := float64(i) / float64(frames)
		freq := riserLow * math.Pow(ratio, p)
		phase += twoPi * freq / float64(f.SampleRate)
		if phase > twoPi {
			phase -= twoPi
		}

		lp = lp*0.7 + lcg(&seed)*0.3
		tone := math.Sin(phase) * (0.15 + 0.35*p)
		noise := lp * p * p * 0.3
		s := softSat((tone + noise) * p)

		if tail := frames - i; tail <= fade {
			s *= float64(tail-1) / float64(fade)
		}
		for c := range f.Channels {
			data[i*f.Channels+c] = s
		}
	}

	return audio.NewBuffer(data, f)
}

// lcg advances an LCG seed and returns a noise sample in [-1,1].
func lcg(seed *uint64) float64 {
	*seed = *seed*6364136223846793005 + 1442695040888963407
	return float64(int64(*seed>>33)-int64(1<<30)) / float64(1<<30)
}

// softSat is a cubic soft clipper that never exceeds ±1.
func softSat(x float64) float64 {
	switch {
	case x > 1:
		return 1 - 0.5/x
	case x < -1:
		return -1 + 0.5/-x
	}
	return x - x*x*x/3
}

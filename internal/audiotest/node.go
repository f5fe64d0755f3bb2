// SPDX-License-Identifier: EPL-2.0

package audiotest

// RampNode is a graph node whose sample value equals its absolute frame
// index (plus a per-channel offset), which makes resampling and
// position arithmetic easy to assert.
type RampNode struct {
	// Frames limits the stream; zero or negative means endless.
	Frames int
	// ChannelOffset is added per channel index, so stereo frames differ.
	ChannelOffset float64

	pos      int
	released bool
	calls    int
	out      []float64
}

// Pos returns the number of frames produced so far.
func (r *RampNode) Pos() int { return r.pos }

// Calls returns how many times Generate ran.
func (r *RampNode) Calls() int { return r.calls }

// Released reports whether Release was called.
func (r *RampNode) Released() bool { return r.released }

func (r *RampNode) Release() { r.released = true }

func (r *RampNode) Generate(frames, channels int) ([]float64, bool) {
	r.calls++
	r.out = grow(r.out, frames*channels)

	for f := range frames {
		for ch := range channels {
			v := 0.0
			if r.Frames <= 0 || r.pos < r.Frames {
				v = float64(r.pos) + float64(ch)*r.ChannelOffset
			}
			r.out[f*channels+ch] = v
		}
		if r.Frames <= 0 || r.pos < r.Frames {
			r.pos++
		}
	}

	alive := !r.released && (r.Frames <= 0 || r.pos < r.Frames)
	return r.out, alive
}

// ConstNode outputs Value on every sample until Frames frames were produced.
type ConstNode struct {
	Value  float64
	Frames int

	pos      int
	released bool
	out      []float64
}

func (c *ConstNode) Release() { c.released = true }

func (c *ConstNode) Generate(frames, channels int) ([]float64, bool) {
	c.out = grow(c.out, frames*channels)

	for f := range frames {
		v := 0.0
		if c.Frames <= 0 || c.pos < c.Frames {
			v = c.Value
			c.pos++
		}
		for ch := range channels {
			c.out[f*channels+ch] = v
		}
	}

	return c.out, !c.released && (c.Frames <= 0 || c.pos < c.Frames)
}

// ShortNode returns at most Max frames per pull regardless of the request.
// It models a misbehaving child that truncates its output.
type ShortNode struct {
	Max int
	RampNode
}

func (s *ShortNode) Generate(frames, channels int) ([]float64, bool) {
	out, alive := s.RampNode.Generate(min(frames, s.Max), channels)
	return out, alive
}

func grow(buf []float64, n int) []float64 {
	if cap(buf) < n {
		return make([]float64, n)
	}
	return buf[:n]
}

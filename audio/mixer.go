// SPDX-License-Identifier: EPL-2.0

package audio

import (
	vecmath "github.com/cwbudde/algo-vecmath"
)

// Mixer sums its attached nodes and applies a master gain. Nodes that report
// alive=false are dropped after their last block is mixed in. The mixer does
// not own its children: Remove detaches without releasing.
type Mixer struct {
	children []Node
	gain     float64
	released bool

	sum []float64
	out []float64
}

func NewMixer() *Mixer {
	return &Mixer{gain: 1}
}

// Add attaches n; attaching the same node twice is a no-op.
func (m *Mixer) Add(n Node) {
	for _, c := range m.children {
		if c == n {
			return
		}
	}
	m.children = append(m.children, n)
}

// Remove detaches n and reports whether it was attached.
func (m *Mixer) Remove(n Node) bool {
	for i, c := range m.children {
		if c == n {
			m.children = append(m.children[:i], m.children[i+1:]...)
			return true
		}
	}
	return false
}

// Contains reports whether n is attached.
func (m *Mixer) Contains(n Node) bool {
	for _, c := range m.children {
		if c == n {
			return true
		}
	}
	return false
}

func (m *Mixer) Len() int { return len(m.children) }

func (m *Mixer) Gain() float64 { return m.gain }

// SetGain sets the master gain; negative values clamp to 0.
func (m *Mixer) SetGain(g float64) { m.gain = max(0, g) }

// Release marks the mixer for teardown once it has no children left.
func (m *Mixer) Release() { m.released = true }

func (m *Mixer) Generate(frames, channels int) ([]float64, bool) {
	n := frames * channels
	m.sum = ensure(m.sum, n)
	m.out = ensure(m.out, n)
	zero(m.sum)

	kept := m.children[:0]
	for _, c := range m.children {
		data, alive := c.Generate(frames, channels)
		if len(data) == n {
			vecmath.AddBlockInPlace(m.sum, data)
		} else {
			for i := range min(n, len(data)) {
				m.sum[i] += data[i]
			}
		}
		if alive {
			kept = append(kept, c)
		}
	}
	for i := len(kept); i < len(m.children); i++ {
		m.children[i] = nil
	}
	m.children = kept

	vecmath.ScaleBlock(m.out, m.sum, m.gain)

	return m.out, !(m.released && len(m.children) == 0)
}

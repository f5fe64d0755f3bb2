// SPDX-License-Identifier: EPL-2.0

package manager

import "math"

// riserContribution scores a riser by how close its lead before the end of
// a transition came to the target: full marks on target, falling linearly
// to zero at window away.
func riserContribution(lead, target, window, full float64) float64 {
	if window <= 0 {
		return 0
	}
	return full * max(0, 1-math.Abs(lead-target)/window)
}

// sampleContribution scores a loop by the ratio of its start to its end
// frame. A zero end frame contributes nothing.
func sampleContribution(on, off int, full float64) float64 {
	if off == 0 {
		return 0
	}
	return full * float64(on) / float64(off)
}

// transitionScore sums the riser and sample contributions at the current
// render clock, rounded to whole points. Callers hold the lock.
func (m *Manager) transitionScore() int {
	total := 0.0

	if at, ok := m.triggers.last(CategoryRiser); ok {
		lead := m.cfg.Format.Duration(m.clock - at).Seconds()
		total += riserContribution(lead, m.cfg.RiserTarget.Seconds(), m.cfg.RiserWindow.Seconds(), m.cfg.RiserScore)
	}

	if _, ok := m.triggers.last(CategorySample); ok {
		on, off, _ := m.song.Sampling()
		total += sampleContribution(on, off, m.cfg.SampleScore)
	}

	return int(math.Round(total))
}

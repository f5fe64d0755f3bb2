// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// ChannelMixer converts a Source to a different channel count. Mono sources
// are duplicated onto every output channel; wider sources are folded down by
// averaging the source channels that map onto each output channel.
type ChannelMixer struct {
	src      Source
	channels int
	tmp      []float32
}

func NewChannelMixer(src Source, channels int) *ChannelMixer {
	return &ChannelMixer{
		src:      src,
		channels: channels,
		tmp:      make([]float32, 4096),
	}
}

func (m *ChannelMixer) SampleRate() int { return m.src.SampleRate() }
func (m *ChannelMixer) Channels() int   { return m.channels }
func (m *ChannelMixer) BufSize() int    { return m.src.BufSize() }

func (m *ChannelMixer) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("closing channel mixer source: %w", err)
	}
	return nil
}

func (m *ChannelMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst)%m.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if len(dst) == 0 {
		return 0, nil
	}

	in := m.src.Channels()
	if in == m.channels {
		return m.src.ReadSamples(dst)
	}

	frames := len(dst) / m.channels
	need := frames * in
	if cap(m.tmp) < need {
		m.tmp = make([]float32, need)
	}
	m.tmp = m.tmp[:need]

	n, err := m.src.ReadSamples(m.tmp)
	got := n / in

	switch {
	case in == 1:
		for f := range got {
			v := m.tmp[f]
			for c := range m.channels {
				dst[f*m.channels+c] = v
			}
		}
	case in < m.channels:
		for f := range got {
			for c := range m.channels {
				dst[f*m.channels+c] = m.tmp[f*in+c%in]
			}
		}
	default:
		// Source channel s contributes to output channel s % m.channels.
		for f := range got {
			out := dst[f*m.channels : (f+1)*m.channels]
			for c := range out {
				out[c] = 0
			}
			for s := range in {
				out[s%m.channels] += m.tmp[f*in+s]
			}
			for c := range out {
				out[c] /= float32(contributors(in, m.channels, c))
			}
		}
	}

	return got * m.channels, err
}

// contributors counts source channels folded onto output channel c.
func contributors(in, out, c int) int {
	n := in / out
	if c < in%out {
		n++
	}
	return n
}

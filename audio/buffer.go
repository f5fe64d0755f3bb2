// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"fmt"
	"io"
)

// Buffer is fully decoded, interleaved audio. It is never modified after
// construction, so any number of Generators may read it concurrently.
type Buffer struct {
	data   []float64
	format Format
}

// NewBuffer wraps interleaved samples. Trailing samples that do not form a
// whole frame are dropped.
func NewBuffer(data []float64, f Format) *Buffer {
	whole := len(data) - len(data)%f.Channels
	return &Buffer{data: data[:whole], format: f}
}

// LoadBuffer drains src into a Buffer at format f, converting the sample
// rate and channel layout on the way when they differ.
func LoadBuffer(src Source, f Format) (*Buffer, error) {
	if !f.Valid() {
		return nil, ErrInvalidFormat
	}

	var s Source = src
	if s.SampleRate() != f.SampleRate {
		s = NewResampler(s, f.SampleRate)
	}
	if s.Channels() != f.Channels {
		s = NewChannelMixer(s, f.Channels)
	}

	tmp := make([]float32, 1024*f.Channels)
	data := make([]float64, 0, f.SampleRate*f.Channels)

	for {
		n, err := s.ReadSamples(tmp)
		for _, v := range tmp[:n] {
			data = append(data, float64(v))
		}

		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("loading buffer: %w", err)
		}
		if n == 0 {
			// Source made no progress without signalling EOF.
			break
		}
	}

	if len(data) == 0 {
		return nil, ErrEmptySource
	}

	return NewBuffer(data, f), nil
}

func (b *Buffer) Format() Format { return b.format }

// Frames returns the length in frames.
func (b *Buffer) Frames() int { return len(b.data) / b.format.Channels }

// At returns the sample of channel ch at frame i, or 0 out of range.
func (b *Buffer) At(i, ch int) float64 {
	if i < 0 || i >= b.Frames() || ch < 0 {
		return 0
	}
	return b.data[i*b.format.Channels+ch%b.format.Channels]
}

// Generator plays a window of a Buffer, optionally looping it. It is the
// leaf node of every song, sampler loop and one-shot stinger.
type Generator struct {
	buf      *Buffer
	start    int
	end      int
	pos      int
	loop     bool
	released bool
	out      []float64
}

// NewGenerator plays length frames of buf starting at start. The window is
// clipped to the buffer bounds.
func NewGenerator(buf *Buffer, start, length int, loop bool) *Generator {
	start = max(0, min(start, buf.Frames()))
	end := max(start, min(start+length, buf.Frames()))

	return &Generator{
		buf:   buf,
		start: start,
		end:   end,
		pos:   start,
		loop:  loop,
	}
}

// Frame returns the playback position relative to the window start.
func (g *Generator) Frame() int { return g.pos - g.start }

// Length returns the window length in frames.
func (g *Generator) Length() int { return g.end - g.start }

// Done reports whether a non-looping generator reached the window end.
func (g *Generator) Done() bool { return !g.loop && g.pos >= g.end }

func (g *Generator) Release() { g.released = true }

func (g *Generator) Generate(frames, channels int) ([]float64, bool) {
	g.out = ensure(g.out, frames*channels)

	bc := g.buf.format.Channels
	data := g.buf.data

	f := 0
	for f < frames {
		if g.pos >= g.end {
			if !g.loop || g.end == g.start {
				break
			}
			g.pos = g.start
		}

		// Copy the longest contiguous run before the window end.
		run := min(frames-f, g.end-g.pos)
		if bc == channels {
			copy(g.out[f*channels:(f+run)*channels], data[g.pos*bc:(g.pos+run)*bc])
		} else {
			for i := range run {
				src := (g.pos + i) * bc
				dst := (f + i) * channels
				for c := range channels {
					g.out[dst+c] = data[src+c%bc]
				}
			}
		}
		f += run
		g.pos += run
	}
	zero(g.out[f*channels:])

	alive := !g.released && (g.loop || g.pos < g.end)
	return g.out, alive
}

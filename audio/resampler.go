// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/rocarrillos/beatrunner/utils"
)

// Resampler converts a Source to another sample rate with Catmull-Rom
// interpolation. It is used when decoded files do not match the graph format,
// before the samples are stored in a Buffer. Channel count is preserved.
type Resampler struct {
	src      Source
	dstRate  int
	ratio    float64 // source frames per output frame
	channels int

	// window[1] and window[2] bracket the output position; window[0] and
	// window[3] are the outer neighbours of the spline.
	window [4][]float32
	valid  [4]bool
	primed bool

	pos    float64
	srcBuf []float32
	eof    bool

	// One-pole low-pass applied to incoming frames when downsampling.
	smooth      bool
	smoothAlpha float32
	smoothState []float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()
	ratio := float64(src.SampleRate()) / float64(dstRate)

	r := &Resampler{
		src:         src,
		dstRate:     dstRate,
		ratio:       ratio,
		channels:    channels,
		srcBuf:      make([]float32, channels),
		smooth:      ratio > 1,
		smoothAlpha: 0.5,
		smoothState: make([]float32, channels),
	}
	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) SampleRate() int { return r.dstRate }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("closing resampler source: %w", err)
	}
	return nil
}

// readFrame pulls a single frame into dst. It reports whether a frame was read.
func (r *Resampler) readFrame(dst []float32, first bool) (bool, error) {
	if r.eof {
		return false, nil
	}

	n, err := r.src.ReadSamples(r.srcBuf)
	got := n > 0
	if got {
		copy(dst, r.srcBuf[:n])
		if r.smooth {
			if first {
				copy(r.smoothState, dst)
			}
			for c := range r.channels {
				dst[c] = r.smoothAlpha*dst[c] + (1-r.smoothAlpha)*r.smoothState[c]
				r.smoothState[c] = dst[c]
			}
		}
	}

	switch {
	case err == io.EOF:
		r.eof = true
	case err != nil:
		return got, fmt.Errorf("reading resampler source: %w", err)
	}

	return got, nil
}

// prime fills the interpolation window so that the first output lands on
// the first source frame. Sources shorter than three frames repeat their
// last frame.
func (r *Resampler) prime() error {
	ok, err := r.readFrame(r.window[1], true)
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}
	copy(r.window[0], r.window[1])
	r.valid[0], r.valid[1] = false, true

	for i := 2; i < len(r.window); i++ {
		ok, err := r.readFrame(r.window[i], false)
		if err != nil {
			return err
		}
		if !ok {
			copy(r.window[i], r.window[i-1])
		}
		r.valid[i] = true
	}
	r.primed = true

	return nil
}

// advance shifts the window by one source frame.
func (r *Resampler) advance() error {
	if r.eof && !r.valid[3] {
		return io.EOF
	}

	first := r.window[0]
	copy(r.window[:3], r.window[1:])
	copy(r.valid[:3], r.valid[1:])
	r.window[3] = first

	ok, err := r.readFrame(r.window[3], false)
	if err != nil {
		return err
	}
	r.valid[3] = ok

	if !r.valid[1] || !r.valid[2] {
		return io.EOF
	}

	return nil
}

// ReadSamples produces interleaved samples at the destination rate.
// len(dst) must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	want := len(dst) / r.channels
	written := 0

	for written < want {
		for r.pos >= 1 {
			r.pos--
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}

		if !r.valid[1] || !r.valid[2] {
			return written * r.channels, io.EOF
		}

		alpha := float32(r.pos)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range r.channels {
			y0 := r.window[1][c]
			if r.valid[0] {
				y0 = r.window[0][c]
			}
			y3 := r.window[2][c]
			if r.valid[3] {
				y3 = r.window[3][c]
			}
			out[c] = utils.CubicInterpolate(y0, r.window[1][c], r.window[2][c], y3, alpha)
		}

		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}

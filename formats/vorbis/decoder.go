// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"
	"github.com/rocarrillos/beatrunner/audio"
)

type oggReader interface {
	SampleRate() int
	Channels() int
	// Read fills p with interleaved values, always a whole number of frames.
	Read(p []float32) (int, error)
}

type source struct {
	dec        oggReader
	sampleRate int
	channels   int
	lastRead   int
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int {
	if s.lastRead > 0 {
		return s.lastRead
	}
	return 4096
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if len(dst)%s.channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}
	if len(dst) == 0 {
		return 0, nil
	}
	s.lastRead = len(dst)

	n, err := s.dec.Read(dst)
	switch {
	case errors.Is(err, io.EOF):
		if n == 0 {
			return 0, io.EOF
		}
		return n, nil
	case err != nil:
		return n, fmt.Errorf("decoding vorbis: %w", err)
	case n == 0:
		return 0, io.EOF
	}

	return n, nil
}

// Decoder decodes Ogg Vorbis streams with github.com/jfreymuth/oggvorbis.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening ogg vorbis stream: %w", err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
	}, nil
}

// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/rocarrillos/beatrunner/audio"
)

// pcmReader is the part of wav.Decoder a source needs.
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

// source adapts a go-audio WAV decoder to audio.Source.
type source struct {
	dec        pcmReader
	sampleRate int
	channels   int
	scale      float32
	offset     int
	intBuf     *goaudio.IntBuffer
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int {
	if s.intBuf != nil {
		return cap(s.intBuf.Data)
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

	if s.intBuf == nil || cap(s.intBuf.Data) < len(dst) {
		s.intBuf = &goaudio.IntBuffer{Data: make([]int, len(dst))}
	}
	s.intBuf.Data = s.intBuf.Data[:len(dst)]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil {
		return 0, fmt.Errorf("reading wav samples: %w", err)
	}
	if n == 0 {
		return 0, io.EOF
	}

	for i, v := range s.intBuf.Data[:n] {
		dst[i] = float32(v-s.offset) / s.scale
	}

	return n, nil
}

// fullScale returns the divisor and zero offset mapping PCM integers of a
// bit depth onto [-1, 1]. 8-bit WAV data is unsigned.
func fullScale(bitDepth int) (scale float32, offset int, ok bool) {
	switch bitDepth {
	case 8:
		return 128, 128, true
	case 16:
		return 1 << 15, 0, true
	case 24:
		return 1 << 23, 0, true
	case 32:
		return 1 << 31, 0, true
	}
	return 0, 0, false
}

// Decoder decodes integer PCM WAV files of any chunk layout.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	dec := wav.NewDecoder(rs)
	if !dec.IsValidFile() {
		if err := dec.Err(); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrNotWavFile, err)
		}
		return nil, ErrNotWavFile
	}
	if dec.WavAudioFormat != wavFormatPCM {
		return nil, ErrUnsupportedWavLayout
	}

	scale, offset, ok := fullScale(int(dec.BitDepth))
	if !ok {
		return nil, ErrUnsupportedBitDepth
	}

	return &source{
		dec:        dec,
		sampleRate: int(dec.SampleRate),
		channels:   int(dec.NumChans),
		scale:      scale,
		offset:     offset,
	}, nil
}

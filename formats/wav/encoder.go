// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/rocarrillos/beatrunner/audio"
)

const wavFormatPCM = 1

// Encode writes interleaved 16-bit samples as a PCM WAV file at format f.
// w must be seekable so the chunk sizes can be patched on close.
func Encode(w io.WriteSeeker, f audio.Format, samples []int16) error {
	if !f.Valid() {
		return audio.ErrInvalidFormat
	}
	if len(samples)%f.Channels != 0 {
		return ErrInvalidChannels
	}

	enc := wav.NewEncoder(w, f.SampleRate, 16, f.Channels, wavFormatPCM)

	const chunk = 8192
	buf := &goaudio.IntBuffer{
		Format:         &goaudio.Format{NumChannels: f.Channels, SampleRate: f.SampleRate},
		Data:           make([]int, 0, min(len(samples), chunk)),
		SourceBitDepth: 16,
	}

	for i := 0; i < len(samples); i += chunk {
		end := min(i+chunk, len(samples))
		buf.Data = buf.Data[:0]
		for _, s := range samples[i:end] {
			buf.Data = append(buf.Data, int(s))
		}
		if err := enc.Write(buf); err != nil {
			return fmt.Errorf("writing wav samples: %w", err)
		}
	}

	if err := enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}

	return nil
}

// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes WAV files through github.com/go-audio/wav.
//
// Decoder accepts integer PCM data at 8, 16, 24 or 32 bits with any number
// of channels and any chunk layout. Samples are normalized to [-1, 1]; 8-bit
// data is treated as unsigned. Inputs that are not an io.ReadSeeker are
// buffered in memory first.
//
//	src, err := wav.Decoder{}.Decode(file)
//	if errors.Is(err, wav.ErrNotWavFile) {
//	    // not RIFF/WAVE
//	}
//
// Encode writes interleaved 16-bit samples as a PCM WAV file. It needs an
// io.WriteSeeker because the chunk sizes are written last.
package wav

// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile           = errors.New("not a WAV file")
	ErrUnsupportedWavLayout = errors.New("only integer PCM WAV is supported")
	ErrUnsupportedBitDepth  = errors.New("WAV bit depth must be 8, 16, 24 or 32")
	ErrInvalidChannels      = errors.New("sample count must be a multiple of the channel count")
)

// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes uncompressed AIFF files through github.com/go-audio/aiff.
//
// Signed PCM at 8, 16, 24 or 32 bits is supported. Inputs that are not an
// io.ReadSeeker are buffered in memory first.
//
//	src, err := aiff.Decoder{}.Decode(file)
//	if errors.Is(err, aiff.ErrNotAiffFile) {
//	    // not FORM/AIFF
//	}
package aiff

// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 files through github.com/hajimehoshi/go-mp3.
//
// The decoder always yields stereo at the stream's own sample rate; mono
// files are duplicated into both channels by go-mp3. Samples are normalized
// to [-1, 1]. Destination buffers must hold a whole number of frames.
package mp3

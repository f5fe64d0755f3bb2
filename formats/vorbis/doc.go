// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis files through github.com/jfreymuth/oggvorbis.
//
// Channel count and rate are taken from the stream header. Vorbis already
// produces floating point data, so samples pass through unscaled.
package vorbis

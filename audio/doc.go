// SPDX-License-Identifier: EPL-2.0

// Package audio implements the pull-based playback graph.
//
// Every element of the graph implements Node:
//
//	type Node interface {
//	    Generate(frames, channels int) ([]float64, bool)
//	    Release()
//	}
//
// A parent pulls its children before computing its own block, so data flows
// down and back up the tree once per pull. Generate always returns exactly
// frames*channels interleaved samples; the second result turns false when
// the node is exhausted, and the owner detaches it after mixing that block.
//
// # Loading
//
// Decoders produce a streaming Source of float32 samples. LoadBuffer drains
// one into a read-only Buffer at the graph Format, inserting a Resampler and a
// ChannelMixer when the file does not match:
//
//	buf, err := audio.LoadBuffer(src, audio.DefaultFormat)
//
// A Buffer is shared without copying by every Generator that plays it: the
// track itself, an alternate rendition, or a sampler loop.
//
// # Processing nodes
//
//   - SpeedModulator resamples its child linearly; tempo and pitch move together.
//   - Filter applies a causal moving average emulating a low, high or band preset.
//   - FilterMixer crossfades a track into a pre-rendered alternate version.
//   - Mixer sums any number of nodes under a master gain.
//
// # Songs
//
// Song wires a Buffer through the nodes above and adds a sampler slot:
//
//	song := audio.NewSong("level1", buf, nil)
//	song.SetSpeed(math.Pow(2, 1.0/12))
//	song.SetSamplingOnFrame(44100)
//	song.SetSamplingOffFrame(88200) // loops one second of the track
//
// None of the nodes lock. Callers that mutate a graph from another goroutine
// must serialize those changes with the pulls.
package audio

// SPDX-License-Identifier: EPL-2.0

// Package output connects a playback graph to the outside world.
//
// Reader turns the root node into a byte stream of float32 samples. Device
// plays that stream on the sound card through github.com/hajimehoshi/oto/v2,
// pulling the node from oto's own goroutine. Streamer offers the same node as
// a github.com/gopxl/beep/v2 Streamer.
//
//	dev, err := output.Open(mgr, audio.DefaultFormat, output.DefaultBlockFrames)
//	if err != nil {
//	    return err
//	}
//	defer dev.Close()
//	dev.Play()
package output

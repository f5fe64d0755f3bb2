// SPDX-License-Identifier: EPL-2.0

package beatrunner

import (
	"errors"
	"fmt"

	"github.com/rocarrillos/beatrunner/audio"
	"github.com/rocarrillos/beatrunner/utils"
)

// ErrInvalidBlock is returned when a render is asked for a non-positive block size.
var ErrInvalidBlock = errors.New("block size must be positive")

// Render pulls a playback graph offline and collects its output as 16-bit PCM.
//
// The node is pulled in blocks of blockFrames frames until frames frames were
// produced or the node reports itself exhausted. Before each block, tick (when
// non-nil) receives the frame position the block starts at; it is the hook for
// applying gameplay events at sample-accurate times. An error from tick stops
// the render and is returned together with the samples collected so far.
//
// Parameters:
//   - node: The graph root, usually a *manager.Manager
//   - channels: Interleaved channel count of the output
//   - frames: Upper bound on rendered frames
//   - blockFrames: Frames per pull (e.g., 512)
//   - tick: Optional per-block callback
//
// Example:
//
//	pcm, err := beatrunner.Render(m, 2, 44100*30, 512, nil)
//	if err != nil {
//	    panic(err)
//	}
//	wav.Encode(file, audio.DefaultFormat, pcm)
func Render(node audio.Node, channels, frames, blockFrames int, tick func(frame int) error) ([]int16, error) {
	if channels <= 0 {
		return nil, audio.ErrInvalidFormat
	}
	if blockFrames <= 0 {
		return nil, ErrInvalidBlock
	}

	pcm16 := make([]int16, 0, max(0, frames)*channels)

	for pos := 0; pos < frames; pos += blockFrames {
		if tick != nil {
			if err := tick(pos); err != nil {
				return pcm16, fmt.Errorf("frame %d: %w", pos, err)
			}
		}

		n := min(blockFrames, frames-pos)
		data, alive := node.Generate(n, channels)
		for _, x := range data[:n*channels] {
			pcm16 = append(pcm16, utils.Float64ToInt16(x))
		}

		if !alive {
			break
		}
	}

	return pcm16, nil
}

// SPDX-License-Identifier: EPL-2.0

package output

import (
	"fmt"

	"github.com/hajimehoshi/oto/v2"
	"github.com/rocarrillos/beatrunner/audio"
)

// Device plays a node on the system audio output through oto. oto allows a
// single context per process, so open at most one Device.
type Device struct {
	ctx    *oto.Context
	player oto.Player
	reader *Reader
}

// Open starts an output context at format f and attaches node to it. The
// device starts paused.
func Open(node audio.Node, f audio.Format, blockFrames int) (*Device, error) {
	if !f.Valid() {
		return nil, audio.ErrInvalidFormat
	}

	ctx, ready, err := oto.NewContext(f.SampleRate, f.Channels, oto.FormatFloat32LE)
	if err != nil {
		return nil, fmt.Errorf("opening audio output: %w", err)
	}
	<-ready

	reader := NewReader(node, f.Channels, blockFrames)
	return &Device{
		ctx:    ctx,
		player: ctx.NewPlayer(reader),
		reader: reader,
	}, nil
}

func (d *Device) Play()  { d.player.Play() }
func (d *Device) Pause() { d.player.Pause() }

// Playing reports whether the player is running. It turns false once the
// node has ended and the buffered audio has drained.
func (d *Device) Playing() bool { return d.player.IsPlaying() }

func (d *Device) SetVolume(v float64) { d.player.SetVolume(v) }

// Err returns the first error the player hit, if any.
func (d *Device) Err() error { return d.player.Err() }

func (d *Device) Close() error {
	if err := d.player.Close(); err != nil {
		return fmt.Errorf("closing player: %w", err)
	}
	return nil
}

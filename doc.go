// SPDX-License-Identifier: EPL-2.0

// Package beatrunner is the audio engine of a rhythm runner game.
//
// Gameplay collisions with powerups become live changes to the music: tempo
// shifts, filter presets, volume steps, loop sampling, sound effects, a
// synthesized riser and crossfaded transitions between the songs of a
// playlist. Every change is rendered through a pull-based graph of nodes so
// that audio is produced block by block by whoever drives the output.
//
// # Packages
//
//   - audio: the graph nodes (Buffer, Generator, Song, Mixer, filters,
//     speed modulation, resampling) and the streaming Source contract
//   - formats/wav, formats/mp3, formats/vorbis, formats/aiff: decoders, plus
//     a 16-bit WAV encoder
//   - synth: the note instrument used for effects and the riser sweep
//   - library: decoded and cached song buffers with filtered alternates
//   - manager: the session Manager, powerup dispatch and transition scoring
//   - output: adapters to an oto device and to beep streamers
//
// # Quick Start
//
//	lib := library.New(os.DirFS("songs"), audio.DefaultFormat)
//	m, err := manager.New(lib, manager.NewPlaylist("intro.wav", "level1.wav"))
//	if err != nil {
//	    panic(err)
//	}
//	m.Toggle()
//
//	dev, err := output.Open(m, audio.DefaultFormat, output.DefaultBlockFrames)
//	if err != nil {
//	    panic(err)
//	}
//	defer dev.Close()
//	dev.Play()
//
//	// From the game loop:
//	m.Collide(manager.PowerupSpeedup)
//
// # Offline Rendering
//
// Render pulls the graph without an audio device, which is how sessions are
// exported to WAV and how the engine is tested:
//
//	pcm, _ := beatrunner.Render(m, 2, 44100*10, 512, nil)
//	wav.Encode(file, audio.DefaultFormat, pcm)
//
// See the individual subpackages for more detailed documentation.
package beatrunner

// SPDX-License-Identifier: EPL-2.0

package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/rocarrillos/beatrunner"
	"github.com/rocarrillos/beatrunner/audio"
	"github.com/rocarrillos/beatrunner/formats/wav"
	"github.com/rocarrillos/beatrunner/library"
	"github.com/rocarrillos/beatrunner/manager"
	"github.com/rocarrillos/beatrunner/output"
)

func main() {
	var (
		dir        = flag.String("dir", ".", "directory holding the songs and their filtered alternates")
		songs      = flag.String("songs", "", "comma separated playlist, in level order")
		eventList  = flag.String("events", "", "powerups as seconds:name pairs, e.g. 2:speedup,4.5:bass_boost")
		seconds    = flag.Float64("seconds", 30, "session length in seconds")
		sampleRate = flag.Int("sample-rate", audio.DefaultFormat.SampleRate, "output sample rate")
		block      = flag.Int("block", output.DefaultBlockFrames, "frames per graph pull")
		render     = flag.String("render", "", "write the session to this WAV file instead of playing it")
		quorum     = flag.Int("quorum", 2, "active powerup categories needed for a transition")
	)
	flag.Parse()

	playlist := splitList(*songs)
	if len(playlist) == 0 {
		log.Fatal("-songs is required")
	}
	events, err := parseEvents(*eventList)
	if err != nil {
		log.Fatal(err)
	}

	format := audio.Format{SampleRate: *sampleRate, Channels: 2}
	lib := library.New(os.DirFS(*dir), format)
	m, err := manager.New(lib, manager.NewPlaylist(playlist...),
		manager.WithFormat(format),
		manager.WithQuorum(*quorum),
	)
	if err != nil {
		log.Fatal(err)
	}
	defer m.Release()
	m.Toggle()

	total := format.Frames(time.Duration(*seconds * float64(time.Second)))

	if *render != "" {
		if err := renderSession(m, format, total, *block, events, *render); err != nil {
			log.Fatal(err)
		}
		fmt.Printf("wrote %s, score %d\n", *render, m.Score())
		return
	}

	if err := playSession(m, format, total, *block, events); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("session ended, score %d\n", m.Score())
}

func renderSession(m *manager.Manager, f audio.Format, total, block int, events []event, path string) error {
	sched := newSchedule(events, f)
	pcm16, err := beatrunner.Render(m, f.Channels, total, block, func(frame int) error {
		return sched.fire(m, frame)
	})
	if err != nil {
		return err
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}
	defer out.Close()

	return wav.Encode(out, f, pcm16)
}

func playSession(m *manager.Manager, f audio.Format, total, block int, events []event) error {
	dev, err := output.Open(m, f, block)
	if err != nil {
		return err
	}
	defer dev.Close()
	dev.Play()

	sched := newSchedule(events, f)
	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	start := time.Now()
	for range ticker.C {
		elapsed := f.Frames(time.Since(start))
		if err := sched.fire(m, elapsed); err != nil {
			return err
		}
		if err := dev.Err(); err != nil {
			return err
		}
		if elapsed >= total {
			return nil
		}
	}

	return nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

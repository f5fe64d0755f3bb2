// SPDX-License-Identifier: EPL-2.0

package main

import (
	"cmp"
	"fmt"
	"log"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/rocarrillos/beatrunner/audio"
	"github.com/rocarrillos/beatrunner/manager"
)

// event is a powerup collision at a point of the session.
type event struct {
	at      time.Duration
	powerup manager.Powerup
}

// parseEvents reads a comma separated list of seconds:powerup pairs.
func parseEvents(s string) ([]event, error) {
	var events []event
	for _, item := range splitList(s) {
		at, name, ok := strings.Cut(item, ":")
		if !ok {
			return nil, fmt.Errorf("invalid event %q (expected seconds:powerup)", item)
		}
		secs, err := strconv.ParseFloat(strings.TrimSpace(at), 64)
		if err != nil || secs < 0 {
			return nil, fmt.Errorf("invalid event time %q", at)
		}
		p, ok := manager.ParsePowerup(name)
		if !ok {
			return nil, fmt.Errorf("unknown powerup %q", name)
		}
		events = append(events, event{at: time.Duration(secs * float64(time.Second)), powerup: p})
	}

	slices.SortStableFunc(events, func(a, b event) int {
		return cmp.Compare(a.at, b.at)
	})

	return events, nil
}

// schedule fires events in order as the session position passes them.
type schedule struct {
	frames []int
	events []event
	next   int
}

func newSchedule(events []event, f audio.Format) *schedule {
	s := &schedule{events: events, frames: make([]int, len(events))}
	for i, e := range events {
		s.frames[i] = f.Frames(e.at)
	}
	return s
}

// fire collides every event due at or before frame. Rejected collisions are
// logged and do not stop the session.
func (s *schedule) fire(m *manager.Manager, frame int) error {
	for s.next < len(s.events) && s.frames[s.next] <= frame {
		e := s.events[s.next]
		s.next++
		if err := m.Collide(e.powerup); err != nil {
			log.Printf("%v at %v: %v", e.powerup, e.at, err)
			continue
		}
		log.Printf("%v at %v, score %d", e.powerup, e.at, m.Score())
	}
	return nil
}

// SPDX-License-Identifier: EPL-2.0

package manager

import (
	"time"

	"github.com/rocarrillos/beatrunner/audio"
)

// Config holds the tunables of a Manager. Start from DefaultConfig and apply
// Options.
type Config struct {
	Format audio.Format

	// Expiry is how long a trigger counts as recent, per category.
	Expiry [numCategories]time.Duration
	// Quorum is the number of recently triggered categories that makes
	// EnoughPastPowerups true.
	Quorum int

	// TransitionGain is the level of an incoming song until promotion.
	TransitionGain float64
	// MaxTokens transition tokens unlock the transition powerup.
	MaxTokens int

	// Crossfade is the fade into a filtered rendition; FilterHold is how
	// long the rendition plays before the song resets itself.
	Crossfade  time.Duration
	FilterHold time.Duration

	RiserDuration time.Duration
	// RiserTarget is the ideal lead of a riser before a transition ends;
	// the score falls to zero RiserWindow away from it.
	RiserTarget time.Duration
	RiserWindow time.Duration

	TempoScore  int
	RiserScore  float64
	SampleScore float64
}

func DefaultConfig() Config {
	return Config{
		Format: audio.DefaultFormat,
		Expiry: [numCategories]time.Duration{
			CategoryRiser:  10 * time.Second,
			CategoryFilter: 8 * time.Second,
			CategoryVolume: 4 * time.Second,
			CategorySample: 10 * time.Second,
			CategorySpeed:  6 * time.Second,
		},
		Quorum:         2,
		TransitionGain: 0.5,
		MaxTokens:      5,
		Crossfade:      audio.DefaultCrossfade,
		FilterHold:     audio.DefaultCrossfade,
		RiserDuration:  8 * time.Second,
		RiserTarget:    8300 * time.Millisecond,
		RiserWindow:    4 * time.Second,
		TempoScore:     10,
		RiserScore:     100,
		SampleScore:    100,
	}
}

type Option func(*Config)

// WithFormat sets the graph format. Songs must be loaded at the same format.
func WithFormat(f audio.Format) Option {
	return func(c *Config) {
		if f.Valid() {
			c.Format = f
		}
	}
}

func WithExpiryWindow(cat Category, d time.Duration) Option {
	return func(c *Config) {
		if cat >= 0 && cat < numCategories && d >= 0 {
			c.Expiry[cat] = d
		}
	}
}

func WithQuorum(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.Quorum = n
		}
	}
}

func WithTransitionGain(g float64) Option {
	return func(c *Config) {
		if g >= 0 && g <= 1 {
			c.TransitionGain = g
		}
	}
}

func WithMaxTokens(n int) Option {
	return func(c *Config) {
		if n > 0 {
			c.MaxTokens = n
		}
	}
}

// WithCrossfade sets the filter crossfade length and hold time of every song
// the manager loads. A zero argument keeps the default.
func WithCrossfade(fade, hold time.Duration) Option {
	return func(c *Config) {
		if fade > 0 {
			c.Crossfade = fade
		}
		if hold > 0 {
			c.FilterHold = hold
		}
	}
}

// WithRiser sets the stinger length and the lead time that scores best.
func WithRiser(duration, target, window time.Duration) Option {
	return func(c *Config) {
		if duration > 0 {
			c.RiserDuration = duration
		}
		if target > 0 {
			c.RiserTarget = target
		}
		if window > 0 {
			c.RiserWindow = window
		}
	}
}

// WithScores sets the points of a tempo action and the full marks of the
// riser and sample contributions. Negative values keep the default.
func WithScores(tempo int, riser, sample float64) Option {
	return func(c *Config) {
		if tempo >= 0 {
			c.TempoScore = tempo
		}
		if riser >= 0 {
			c.RiserScore = riser
		}
		if sample >= 0 {
			c.SampleScore = sample
		}
	}
}

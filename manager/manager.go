// SPDX-License-Identifier: EPL-2.0

package manager

import (
	"fmt"
	"math"
	"sync"

	"github.com/rocarrillos/beatrunner/audio"
	"github.com/rocarrillos/beatrunner/synth"
	"github.com/rocarrillos/beatrunner/utils"
)

// Filter presets offered to the player.
const (
	PresetBassBoost   = audio.FilterLow
	PresetUnderwater  = audio.FilterHigh
	PresetVocalsBoost = audio.FilterBand
)

// semitone is the tempo ratio of one speed step.
var semitone = math.Pow(2, 1.0/12)

// SongLoader builds a fresh Song for a file name.
type SongLoader interface {
	LoadSong(name string) (*audio.Song, error)
}

// Manager owns the playback graph of a game session: the primary song, an
// incoming song during a transition, the effect instrument and risers, all
// summed by one mixer. It is itself the root node pulled by the output.
//
// Every method is safe to call from the gameplay side while the output
// pulls Generate. Files are loaded outside the lock and only complete songs
// are attached.
type Manager struct {
	cfg      Config
	loader   SongLoader
	playlist *Playlist

	mixer *audio.Mixer
	sfx   *synth.Instrument
	riser *audio.Buffer

	song     *audio.Song
	incoming *audio.Song
	pending  *audio.Song

	active   bool
	released bool
	clock    int
	score    int
	tokens   int
	triggers triggers

	silence []float64
	mtx     *sync.Mutex
}

// New loads the playlist's current song and returns an idle manager.
func New(loader SongLoader, playlist *Playlist, opts ...Option) (*Manager, error) {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	if playlist == nil || playlist.Len() == 0 {
		return nil, ErrEmptyPlaylist
	}

	song, err := loadSong(loader, cfg, playlist.Current())
	if err != nil {
		return nil, fmt.Errorf("loading first song: %w", err)
	}

	sfx := synth.NewInstrument(cfg.Format)
	if err := programEffects(sfx); err != nil {
		return nil, fmt.Errorf("programming effects: %w", err)
	}

	mixer := audio.NewMixer()
	mixer.Add(song)
	mixer.Add(sfx)

	return &Manager{
		cfg:      cfg,
		loader:   loader,
		playlist: playlist,
		mixer:    mixer,
		sfx:      sfx,
		riser:    synth.Riser(cfg.Format, cfg.RiserDuration),
		song:     song,
		mtx:      &sync.Mutex{},
	}, nil
}

// loadSong builds a song with the configured filter timing.
func loadSong(loader SongLoader, cfg Config, name string) (*audio.Song, error) {
	song, err := loader.LoadSong(name)
	if err != nil {
		return nil, err
	}
	song.Fader().SetTiming(cfg.Crossfade, cfg.FilterHold)

	return song, nil
}

func (m *Manager) Config() Config { return m.cfg }

// Toggle flips between idle and active and returns the new state.
func (m *Manager) Toggle() bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.active = !m.active
	return m.active
}

func (m *Manager) Active() bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.active
}

// Release stops the session; the next Generate reports alive=false.
func (m *Manager) Release() {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.released = true
	m.mixer.Release()
}

// Generate pulls one block from the graph. While idle it returns silence
// and the render clock does not move.
func (m *Manager) Generate(frames, channels int) ([]float64, bool) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if m.released || !m.active {
		n := frames * channels
		if cap(m.silence) < n {
			m.silence = make([]float64, n)
		}
		return m.silence[:n], !m.released
	}

	out, _ := m.mixer.Generate(frames, channels)
	m.clock += frames

	return out, true
}

// Clock returns the number of frames rendered while active. It keeps
// counting across transitions and is the time base of effect triggers.
func (m *Manager) Clock() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.clock
}

func (m *Manager) Score() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.score
}

// CurrentFrame returns the playback position of the primary song.
func (m *Manager) CurrentFrame() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.song.Frame()
}

// CurrentLength returns the length of the primary song in frames.
func (m *Manager) CurrentLength() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.song.Length()
}

// Song returns the primary song.
func (m *Manager) Song() *audio.Song {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.song
}

func (m *Manager) Volume() float64 {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.mixer.Gain()
}

// LowerVolume halves the master gain.
func (m *Manager) LowerVolume() {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.setVolume(m.mixer.Gain() / 2)
}

// RaiseVolume doubles the master gain, capped at 1.
func (m *Manager) RaiseVolume() {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.setVolume(m.mixer.Gain() * 2)
}

// SetVolume sets the master gain, clamped to [0, 1]. NaN is ignored.
func (m *Manager) SetVolume(v float64) {
	if math.IsNaN(v) {
		return
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.setVolume(v)
}

func (m *Manager) setVolume(v float64) {
	m.mixer.SetGain(utils.ClampUnit(v))
	m.triggers.record(CategoryVolume, m.clock)
}

// PlayEffect starts the note of e on the effect instrument.
func (m *Manager) PlayEffect(e Effect) error {
	if !e.Valid() {
		return ErrUnknownEffect
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()

	v := effectVoicings[e]
	m.sfx.NoteOn(v.channel, v.pitch, v.velocity)
	return nil
}

// StopEffect releases the note of e.
func (m *Manager) StopEffect(e Effect) error {
	if !e.Valid() {
		return ErrUnknownEffect
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()

	v := effectVoicings[e]
	m.sfx.NoteOff(v.channel, v.pitch)
	return nil
}

func (m *Manager) BassBoost()   { m.setFilter(PresetBassBoost) }
func (m *Manager) VocalsBoost() { m.setFilter(PresetVocalsBoost) }
func (m *Manager) Underwater()  { m.setFilter(PresetUnderwater) }
func (m *Manager) ResetFilter() { m.setFilter(audio.FilterNone) }

// FilterByName applies a preset by its mode name ("low", "high", "band",
// "none"). Unknown names leave the filter as it is.
func (m *Manager) FilterByName(name string) bool {
	mode, ok := audio.ParseFilterMode(name)
	if !ok {
		return false
	}
	m.setFilter(mode)
	return true
}

func (m *Manager) setFilter(mode audio.FilterMode) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if m.song.SetFilter(mode) {
		m.triggers.record(CategoryFilter, m.clock)
	}
}

func (m *Manager) Speed() float64 {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.song.Speed()
}

// Speedup raises the primary song by a semitone.
func (m *Manager) Speedup() { m.adjustSpeed(semitone) }

// Slowdown lowers the primary song by a semitone.
func (m *Manager) Slowdown() { m.adjustSpeed(1 / semitone) }

// ResetSpeed returns to normal speed.
func (m *Manager) ResetSpeed() { m.adjustSpeed(0) }

// adjustSpeed multiplies the speed by ratio; zero means reset.
func (m *Manager) adjustSpeed(ratio float64) {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	speed := 1.0
	if ratio != 0 {
		speed = m.song.Speed() * ratio
	}
	m.song.SetSpeed(speed)
	m.score += m.cfg.TempoScore
	m.triggers.record(CategorySpeed, m.clock)
}

// SampleOn marks a loop start at a primary song frame.
func (m *Manager) SampleOn(frame int) bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if !m.song.SetSamplingOnFrame(frame) {
		return false
	}
	m.triggers.record(CategorySample, m.clock)
	return true
}

// SampleOff marks a loop end, starting the loop. Without a pending start it
// does nothing.
func (m *Manager) SampleOff(frame int) bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	if !m.song.SetSamplingOffFrame(frame) {
		return false
	}
	m.triggers.record(CategorySample, m.clock)
	return true
}

// ResetSample drops the loop and its window.
func (m *Manager) ResetSample() {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.song.ResetSample()
}

// Riser mixes in the riser stinger. It detaches itself when finished.
func (m *Manager) Riser() {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.mixer.Add(audio.NewGenerator(m.riser, 0, m.riser.Frames(), false))
	m.triggers.record(CategoryRiser, m.clock)
}

// EnoughPastPowerups reports whether at least Quorum categories were
// triggered within their expiry windows of the render clock.
func (m *Manager) EnoughPastPowerups() bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.quorumMet()
}

// quorumMet counts the categories triggered within their expiry windows.
// Callers hold the lock.
func (m *Manager) quorumMet() bool {
	recent := 0
	for c := range numCategories {
		at, ok := m.triggers.last(c)
		if !ok {
			continue
		}
		if m.clock-at <= m.cfg.Format.Frames(m.cfg.Expiry[c]) {
			recent++
		}
	}
	return recent >= m.cfg.Quorum
}

// AddTransitionToken collects a token, up to MaxTokens, and returns the
// count held.
func (m *Manager) AddTransitionToken() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	m.tokens = min(m.tokens+1, m.cfg.MaxTokens)
	return m.tokens
}

func (m *Manager) Tokens() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.tokens
}

// Level returns the playlist position of the primary song.
func (m *Manager) Level() int {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.playlist.Level()
}

// InTransition reports whether an incoming song is playing alongside the
// primary one.
func (m *Manager) InTransition() bool {
	m.mtx.Lock()
	defer m.mtx.Unlock()

	return m.incoming != nil
}

// StartTransitionSong attaches the song for name at the transition gain. A
// song pre-loaded by EndTransitionSong under the same name is reused. A
// transition already under way has its incoming song replaced.
func (m *Manager) StartTransitionSong(name string) error {
	m.mtx.Lock()
	var song *audio.Song
	if m.pending != nil && m.pending.Name() == name {
		song, m.pending = m.pending, nil
	}
	m.mtx.Unlock()

	if song == nil {
		var err error
		if song, err = loadSong(m.loader, m.cfg, name); err != nil {
			return fmt.Errorf("starting transition: %w", err)
		}
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()

	if m.incoming != nil {
		m.mixer.Remove(m.incoming)
		m.incoming.Release()
	}
	song.SetGain(m.cfg.TransitionGain)
	m.mixer.Add(song)
	m.incoming = song

	return nil
}

// EndTransitionSong scores the transition, retires the primary song and
// promotes the incoming one. next, when not empty, is loaded ahead as the
// song of the following transition.
func (m *Manager) EndTransitionSong(next string) error {
	var pending *audio.Song
	if next != "" {
		var err error
		if pending, err = loadSong(m.loader, m.cfg, next); err != nil {
			return fmt.Errorf("preloading %s: %w", next, err)
		}
	}

	m.mtx.Lock()
	defer m.mtx.Unlock()

	if m.incoming == nil {
		if pending != nil {
			pending.Release()
		}
		return ErrNoTransition
	}

	m.score += m.transitionScore()
	m.triggers.clear(CategoryRiser)
	m.triggers.clear(CategorySample)

	m.mixer.Remove(m.song)
	m.song.Release()

	m.incoming.SetGain(1)
	m.song, m.incoming = m.incoming, nil

	if m.pending != nil {
		m.pending.Release()
	}
	m.pending = pending
	m.tokens = 0

	return nil
}

// Execute applies one powerup command.
func (m *Manager) Execute(cmd Command) error {
	switch c := cmd.(type) {
	case TriggerEffect:
		return m.PlayEffect(c.Effect)
	case AdjustSpeed:
		if c.Steps == 0 {
			m.ResetSpeed()
		} else {
			m.adjustSpeed(math.Pow(semitone, float64(c.Steps)))
		}
	case SetFilter:
		if !c.Mode.Valid() {
			return nil
		}
		m.setFilter(c.Mode)
	case AdjustVolume:
		if c.Up {
			m.RaiseVolume()
		} else {
			m.LowerVolume()
		}
	case MarkSample:
		switch c.Mark {
		case SampleMarkOn:
			m.SampleOn(m.CurrentFrame())
		case SampleMarkOff:
			m.SampleOff(m.CurrentFrame())
		case SampleMarkReset:
			m.ResetSample()
		}
	case SpawnRiser:
		m.Riser()
	case ToggleActive:
		m.Toggle()
	case CollectToken:
		m.AddTransitionToken()
	case AdvanceTransition:
		return m.advanceTransition()
	default:
		return fmt.Errorf("unhandled command %T", cmd)
	}
	return nil
}

// Collide runs the commands of p in order, stopping at the first error.
func (m *Manager) Collide(p Powerup) error {
	for _, cmd := range Commands(p) {
		if err := m.Execute(cmd); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// advanceTransition walks the playlist: with a full set of tokens it starts
// the next song, and with a transition under way and a quorum of recent
// categories it completes it.
func (m *Manager) advanceTransition() error {
	m.mtx.Lock()
	inProgress := m.incoming != nil
	ready := m.tokens >= m.cfg.MaxTokens
	completable := m.quorumMet()
	next, hasNext := m.playlist.Next()
	following, _ := m.playlist.After(2)
	m.mtx.Unlock()

	if !inProgress {
		if !ready || !hasNext {
			return nil
		}
		return m.StartTransitionSong(next)
	}
	if !completable {
		return nil
	}

	if err := m.EndTransitionSong(following); err != nil {
		return err
	}

	m.mtx.Lock()
	m.playlist.Advance()
	m.mtx.Unlock()

	return nil
}

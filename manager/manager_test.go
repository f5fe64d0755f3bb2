// SPDX-License-Identifier: EPL-2.0

package manager

import (
	"errors"
	"io/fs"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/rocarrillos/beatrunner/audio"
)

// fakeLoader builds constant-level songs of a fixed length.
type fakeLoader struct {
	frames int
	fail   map[string]error
	// lowAlt adds a pre-rendered low-pass alternate to every song.
	lowAlt bool

	mtx   sync.Mutex
	loads []string
}

func (l *fakeLoader) LoadSong(name string) (*audio.Song, error) {
	if err := l.fail[name]; err != nil {
		return nil, err
	}

	l.mtx.Lock()
	l.loads = append(l.loads, name)
	l.mtx.Unlock()

	data := make([]float64, l.frames*2)
	for i := range data {
		data[i] = 0.1
	}
	var alts map[audio.FilterMode]*audio.Buffer
	if l.lowAlt {
		alts = map[audio.FilterMode]*audio.Buffer{
			audio.FilterLow: audio.NewBuffer(make([]float64, l.frames*2), audio.DefaultFormat),
		}
	}
	return audio.NewSong(name, audio.NewBuffer(data, audio.DefaultFormat), alts), nil
}

func (l *fakeLoader) count(name string) int {
	l.mtx.Lock()
	defer l.mtx.Unlock()

	n := 0
	for _, s := range l.loads {
		if s == name {
			n++
		}
	}
	return n
}

func newTestManager(t *testing.T, opts ...Option) (*Manager, *fakeLoader) {
	t.Helper()

	loader := &fakeLoader{frames: 5 * 44100}
	opts = append([]Option{WithRiser(50*time.Millisecond, 0, 0)}, opts...)
	m, err := New(loader, NewPlaylist("a.wav", "b.wav", "c.wav"), opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return m, loader
}

// pull renders frames in blocks of 512.
func pull(m *Manager, frames int) {
	for frames > 0 {
		n := min(frames, 512)
		m.Generate(n, 2)
		frames -= n
	}
}

func TestNew_Errors(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{frames: 100, fail: map[string]error{"gone.wav": fs.ErrNotExist}}

	if _, err := New(loader, NewPlaylist()); !errors.Is(err, ErrEmptyPlaylist) {
		t.Errorf("New(empty) error = %v, want ErrEmptyPlaylist", err)
	}
	if _, err := New(loader, nil); !errors.Is(err, ErrEmptyPlaylist) {
		t.Errorf("New(nil) error = %v, want ErrEmptyPlaylist", err)
	}
	if _, err := New(loader, NewPlaylist("gone.wav")); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("New(missing) error = %v, want fs.ErrNotExist", err)
	}
}

func TestManager_StartsIdle(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)
	if m.Active() {
		t.Fatal("new manager is active")
	}

	out, alive := m.Generate(256, 2)
	if !alive || len(out) != 512 {
		t.Fatalf("Generate() = %d samples alive=%v", len(out), alive)
	}
	for i, v := range out {
		if v != 0 {
			t.Fatalf("idle sample %d = %v, want silence", i, v)
		}
	}
	if m.Clock() != 0 || m.CurrentFrame() != 0 {
		t.Errorf("idle pull advanced: clock %d frame %d", m.Clock(), m.CurrentFrame())
	}
}

func TestManager_Toggle(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)
	if !m.Toggle() {
		t.Fatal("Toggle() = false, want active")
	}

	out, _ := m.Generate(256, 2)
	if out[0] != 0.1 {
		t.Errorf("first sample = %v, want the song level", out[0])
	}
	if m.Clock() != 256 || m.CurrentFrame() != 256 {
		t.Errorf("clock %d frame %d, want 256", m.Clock(), m.CurrentFrame())
	}
	if m.CurrentLength() != 5*44100 {
		t.Errorf("CurrentLength() = %d", m.CurrentLength())
	}

	if m.Toggle() {
		t.Fatal("second Toggle() = true, want idle")
	}
	m.Generate(256, 2)
	if m.Clock() != 256 {
		t.Errorf("clock moved while idle: %d", m.Clock())
	}
}

func TestManager_Release(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)
	m.Toggle()
	m.Release()

	if _, alive := m.Generate(64, 2); alive {
		t.Error("released manager still alive")
	}
}

func TestManager_TwelveSpeedups(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)
	for range 12 {
		m.Speedup()
	}

	if math.Abs(m.Speed()-2) > 1e-9 {
		t.Errorf("Speed() = %v, want 2", m.Speed())
	}
	if m.Score() != 120 {
		t.Errorf("Score() = %d, want 120", m.Score())
	}

	m.Slowdown()
	if math.Abs(m.Speed()-2/semitone) > 1e-9 {
		t.Errorf("Speed() after Slowdown = %v", m.Speed())
	}
	m.ResetSpeed()
	if m.Speed() != 1 || m.Score() != 140 {
		t.Errorf("after ResetSpeed: speed %v score %d, want 1 and 140", m.Speed(), m.Score())
	}
}

func TestManager_Volume(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)

	m.RaiseVolume()
	if m.Volume() != 1 {
		t.Fatalf("Volume() = %v after raising at max, want 1", m.Volume())
	}

	m.LowerVolume()
	m.LowerVolume()
	if m.Volume() != 0.25 {
		t.Fatalf("Volume() = %v, want 0.25", m.Volume())
	}

	m.RaiseVolume()
	m.RaiseVolume()
	m.RaiseVolume()
	if m.Volume() != 1 {
		t.Errorf("Volume() = %v, want capped 1", m.Volume())
	}
}

func TestManager_SetVolume(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)

	tests := []struct {
		in, want float64
	}{
		{0.3, 0.3},
		{1.5, 1},
		{-2, 0},
		{math.NaN(), 0},
		{1, 1},
	}

	for _, tt := range tests {
		m.SetVolume(tt.in)
		if got := m.Volume(); got != tt.want {
			t.Errorf("SetVolume(%v): Volume() = %v, want %v", tt.in, got, tt.want)
		}
	}
	if _, ok := m.triggers.last(CategoryVolume); !ok {
		t.Error("SetVolume did not record a volume trigger")
	}
}

func TestManager_Filters(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)

	tests := []struct {
		apply func()
		want  audio.FilterMode
	}{
		{m.BassBoost, PresetBassBoost},
		{m.VocalsBoost, PresetVocalsBoost},
		{m.Underwater, PresetUnderwater},
		{m.ResetFilter, audio.FilterNone},
	}

	for _, tt := range tests {
		tt.apply()
		if got := m.Song().FilterMode(); got != tt.want {
			t.Errorf("FilterMode() = %v, want %v", got, tt.want)
		}
	}

	m.BassBoost()
	if m.FilterByName("telephone") {
		t.Error("FilterByName accepted an unknown preset")
	}
	if m.Song().FilterMode() != PresetBassBoost {
		t.Error("unknown preset changed the filter")
	}
	if !m.FilterByName("band") || m.Song().FilterMode() != audio.FilterBand {
		t.Error("FilterByName(band) not applied")
	}
}

func TestManager_CrossfadeTiming(t *testing.T) {
	t.Parallel()

	loader := &fakeLoader{frames: 44100, lowAlt: true}
	m, err := New(loader, NewPlaylist("a.wav"),
		WithRiser(50*time.Millisecond, 0, 0),
		WithCrossfade(100*time.Millisecond, 200*time.Millisecond),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	m.Toggle()

	m.BassBoost()
	if !m.Song().Fader().Active() {
		t.Fatal("low alternate not attached")
	}

	pull(m, 2205)
	if _, filt := m.Song().Fader().Gains(); math.Abs(filt-0.5) > 0.01 {
		t.Errorf("filtered gain = %v halfway through the fade, want 0.5", filt)
	}

	pull(m, 7000)
	if m.Song().Fader().Active() {
		t.Error("alternate still attached after the hold time")
	}
}

func TestManager_EnoughPastPowerups(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t,
		WithExpiryWindow(CategorySpeed, 100*time.Millisecond),
		WithExpiryWindow(CategoryFilter, 200*time.Millisecond),
	)
	m.Toggle()

	if m.EnoughPastPowerups() {
		t.Fatal("fresh session already has enough powerups")
	}

	m.Speedup()
	if m.EnoughPastPowerups() {
		t.Fatal("one category counted as enough")
	}
	m.Speedup()
	if m.EnoughPastPowerups() {
		t.Fatal("repeating a category counted twice")
	}

	m.BassBoost()
	if !m.EnoughPastPowerups() {
		t.Fatal("two recent categories not enough")
	}

	// Speed expires after 100 ms, filter after 200 ms.
	pull(m, 44100*150/1000)
	if m.EnoughPastPowerups() {
		t.Error("expired speed trigger still counted")
	}

	m.LowerVolume()
	if !m.EnoughPastPowerups() {
		t.Error("volume and filter not enough")
	}
}

func TestManager_Quorum(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t, WithQuorum(3))
	m.Toggle()
	m.Speedup()
	m.BassBoost()
	if m.EnoughPastPowerups() {
		t.Fatal("two categories met a quorum of three")
	}
	m.Riser()
	if !m.EnoughPastPowerups() {
		t.Error("three categories missed a quorum of three")
	}
}

func TestManager_Sampling(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)
	m.Toggle()

	if m.SampleOff(3000) {
		t.Error("SampleOff without SampleOn accepted")
	}

	if !m.SampleOn(1000) || !m.SampleOff(5000) {
		t.Fatal("sample window rejected")
	}
	if got := m.Song().LoopLength(); got != 4000 {
		t.Fatalf("LoopLength() = %d, want 4000", got)
	}

	if m.SampleOff(6000) {
		t.Error("second SampleOff accepted")
	}
	if got := m.Song().LoopLength(); got != 4000 {
		t.Errorf("LoopLength() = %d after repeated SampleOff, want 4000", got)
	}

	m.ResetSample()
	if m.Song().LoopLength() != 0 {
		t.Error("ResetSample kept the loop")
	}
}

func TestManager_RiserDetaches(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)
	m.Toggle()

	before := m.mixer.Len()
	m.Riser()
	if m.mixer.Len() != before+1 {
		t.Fatalf("mixer has %d nodes, want %d", m.mixer.Len(), before+1)
	}

	// The test riser lasts 50 ms.
	pull(m, 44100/10)
	if m.mixer.Len() != before {
		t.Errorf("finished riser still attached: %d nodes", m.mixer.Len())
	}
}

func TestManager_Effects(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)

	if err := m.PlayEffect(EffectWin); err != nil {
		t.Fatalf("PlayEffect() error = %v", err)
	}
	if m.sfx.Voices() != 1 {
		t.Errorf("Voices() = %d, want 1", m.sfx.Voices())
	}
	if err := m.StopEffect(EffectWin); err != nil {
		t.Fatalf("StopEffect() error = %v", err)
	}

	if err := m.PlayEffect(Effect(42)); !errors.Is(err, ErrUnknownEffect) {
		t.Errorf("PlayEffect(42) error = %v, want ErrUnknownEffect", err)
	}
	if err := m.StopEffect(-1); !errors.Is(err, ErrUnknownEffect) {
		t.Errorf("StopEffect(-1) error = %v, want ErrUnknownEffect", err)
	}
}

func TestManager_Transition(t *testing.T) {
	t.Parallel()

	m, loader := newTestManager(t)
	m.Toggle()
	pull(m, 1000)

	if err := m.StartTransitionSong("next.wav"); err != nil {
		t.Fatalf("StartTransitionSong() error = %v", err)
	}
	if !m.InTransition() || m.Song().Name() != "a.wav" {
		t.Fatal("start of transition swapped the primary song")
	}
	if g := m.incoming.Gain(); g != 0.5 {
		t.Errorf("incoming gain = %v, want 0.5", g)
	}

	pull(m, 300)
	if err := m.EndTransitionSong("following.wav"); err != nil {
		t.Fatalf("EndTransitionSong() error = %v", err)
	}

	if m.Song().Name() != "next.wav" || m.Song().Gain() != 1 {
		t.Errorf("primary = %q at gain %v, want next.wav at 1", m.Song().Name(), m.Song().Gain())
	}
	if m.CurrentFrame() != 300 {
		t.Errorf("CurrentFrame() = %d, want the new song's 300", m.CurrentFrame())
	}
	if m.InTransition() {
		t.Error("transition still in progress")
	}
	if m.pending == nil || m.pending.Name() != "following.wav" {
		t.Fatal("following song not pre-instantiated")
	}

	if err := m.StartTransitionSong("following.wav"); err != nil {
		t.Fatalf("StartTransitionSong() error = %v", err)
	}
	if n := loader.count("following.wav"); n != 1 {
		t.Errorf("following.wav loaded %d times, want 1", n)
	}
}

func TestManager_TransitionErrors(t *testing.T) {
	t.Parallel()

	m, loader := newTestManager(t)
	loader.fail = map[string]error{"gone.wav": fs.ErrNotExist}

	if err := m.EndTransitionSong(""); !errors.Is(err, ErrNoTransition) {
		t.Errorf("EndTransitionSong() error = %v, want ErrNoTransition", err)
	}
	if err := m.StartTransitionSong("gone.wav"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("StartTransitionSong() error = %v, want fs.ErrNotExist", err)
	}
	if m.InTransition() {
		t.Error("failed load left a transition in progress")
	}

	m.StartTransitionSong("b.wav")
	if err := m.EndTransitionSong("gone.wav"); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("EndTransitionSong() error = %v, want fs.ErrNotExist", err)
	}
	if m.Song().Name() != "a.wav" || !m.InTransition() {
		t.Error("failed preload changed the graph")
	}
}

func TestManager_TransitionScore(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t, WithRiser(10*time.Millisecond, 100*time.Millisecond, 100*time.Millisecond))
	m.Toggle()

	m.SampleOn(1000)
	m.SampleOff(5000)
	m.Riser()
	pull(m, 4410)

	m.StartTransitionSong("b.wav")
	if err := m.EndTransitionSong(""); err != nil {
		t.Fatalf("EndTransitionSong() error = %v", err)
	}

	// Riser on target: 100. Sample 1000/5000: 20.
	if m.Score() != 120 {
		t.Errorf("Score() = %d, want 120", m.Score())
	}

	// Consumed triggers do not score twice.
	m.StartTransitionSong("c.wav")
	m.EndTransitionSong("")
	if m.Score() != 120 {
		t.Errorf("Score() = %d after second transition, want 120", m.Score())
	}
}

func TestManager_TransitionScoreIgnoresClosedWindow(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)
	m.Toggle()

	m.SampleOn(1000)
	m.SampleOff(5000)
	m.SampleOn(9000)
	m.SampleOff(9500)
	m.SampleOn(20000)

	if on, off, active := m.Song().Sampling(); on != 20000 || off != 0 || active {
		t.Fatalf("Sampling() = (%d, %d, %v), want (20000, 0, false)", on, off, active)
	}

	m.StartTransitionSong("b.wav")
	if err := m.EndTransitionSong(""); err != nil {
		t.Fatalf("EndTransitionSong() error = %v", err)
	}
	if m.Score() != 0 {
		t.Errorf("Score() = %d, want 0 for an unclosed window", m.Score())
	}
}

func TestManager_Concurrent(t *testing.T) {
	t.Parallel()

	m, _ := newTestManager(t)
	m.Toggle()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		pull(m, 44100)
	}()

	for range 50 {
		m.Speedup()
		m.BassBoost()
		m.EnoughPastPowerups()
		m.CurrentFrame()
		m.ResetFilter()
	}
	wg.Wait()

	if m.Score() != 500 {
		t.Errorf("Score() = %d, want 500", m.Score())
	}
}

func BenchmarkManager_Generate(b *testing.B) {
	loader := &fakeLoader{frames: 60 * 44100}
	m, err := New(loader, NewPlaylist("a.wav"))
	if err != nil {
		b.Fatal(err)
	}
	m.Toggle()
	m.BassBoost()

	b.ReportAllocs()
	for b.Loop() {
		m.Generate(512, 2)
	}
}

// SPDX-License-Identifier: EPL-2.0

package synth

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/rocarrillos/beatrunner/audio"
)

func energy(buf []float64) float64 {
	e := 0.0
	for _, v := range buf {
		e += v * v
	}
	return e
}

func TestInstrument_NoteOnProducesSignal(t *testing.T) {
	t.Parallel()

	in := NewInstrument(audio.DefaultFormat)
	out, alive := in.Generate(256, 2)
	if !alive || energy(out) != 0 {
		t.Fatalf("idle instrument: alive = %v energy = %v, want alive silence", alive, energy(out))
	}

	in.NoteOn(0, 60, 100)
	if in.Voices() != 1 {
		t.Fatalf("Voices() = %d, want 1", in.Voices())
	}
	out, _ = in.Generate(1024, 2)
	if energy(out) == 0 {
		t.Fatal("note produced silence")
	}
	for f := range 1024 {
		if out[f*2] != out[f*2+1] {
			t.Fatalf("frame %d channels differ", f)
		}
	}
}

func TestInstrument_NoteOffFinishesVoice(t *testing.T) {
	t.Parallel()

	in := NewInstrument(audio.DefaultFormat)
	in.NoteOn(3, 72, 127)
	in.Generate(4410, 2)
	in.NoteOff(3, 72)

	// DefaultPatch releases in 0.2 s.
	in.Generate(44100/5+64, 2)
	if in.Voices() != 0 {
		t.Errorf("Voices() = %d after release, want 0", in.Voices())
	}
	out, _ := in.Generate(64, 2)
	if energy(out) != 0 {
		t.Error("finished voice still sounding")
	}
}

func TestInstrument_ZeroVelocityReleases(t *testing.T) {
	t.Parallel()

	in := NewInstrument(audio.DefaultFormat)
	in.NoteOn(0, 64, 90)
	in.Generate(100, 2)
	in.NoteOn(0, 64, 0)

	if in.Voices() != 1 {
		t.Fatalf("Voices() = %d, want the releasing voice", in.Voices())
	}
	if in.voices[0].state != envRelease {
		t.Errorf("state = %v, want release", in.voices[0].state)
	}
}

func TestInstrument_NoteOffMatchesChannel(t *testing.T) {
	t.Parallel()

	in := NewInstrument(audio.DefaultFormat)
	in.NoteOn(0, 60, 100)
	in.NoteOn(1, 60, 100)
	in.NoteOff(1, 60)

	if in.voices[0].state == envRelease || in.voices[1].state != envRelease {
		t.Error("NoteOff released the wrong channel")
	}
}

func TestInstrument_PercussivePatchEndsWithoutNoteOff(t *testing.T) {
	t.Parallel()

	in := NewInstrument(audio.DefaultFormat)
	if err := in.Program(9, 0, 127); err != nil {
		t.Fatalf("Program() error = %v", err)
	}
	in.NoteOn(9, 40, 127)
	in.Generate(44100, 2)

	if in.Voices() != 0 {
		t.Errorf("Voices() = %d, want the zero-sustain voice to end", in.Voices())
	}
}

func TestInstrument_Program(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                 string
		channel, bank, patch int
		wantErr              error
	}{
		{"valid", 0, 0, 9, nil},
		{"last channel", 15, 0, 127, nil},
		{"other bank", 2, 8, 40, nil},
		{"negative channel", -1, 0, 0, ErrInvalidChannel},
		{"channel 16", 16, 0, 0, ErrInvalidChannel},
		{"patch 128", 0, 0, 128, ErrInvalidProgram},
		{"negative bank", 0, -1, 0, ErrInvalidProgram},
	}

	for _, tt := range tests {
		in := NewInstrument(audio.DefaultFormat)
		if err := in.Program(tt.channel, tt.bank, tt.patch); !errors.Is(err, tt.wantErr) {
			t.Errorf("%s: Program() error = %v, want %v", tt.name, err, tt.wantErr)
		}
	}
}

func TestInstrument_ProgramSelectsPatch(t *testing.T) {
	t.Parallel()

	in := NewInstrument(audio.DefaultFormat)
	in.Program(4, 0, 38)
	in.NoteOn(4, 36, 100)

	if in.voices[0].patch != gmPatches[38] {
		t.Errorf("voice patch = %+v, want synth bass", in.voices[0].patch)
	}
}

func TestInstrument_PolyphonyStealsOldest(t *testing.T) {
	t.Parallel()

	in := NewInstrument(audio.DefaultFormat)
	for p := range Polyphony + 4 {
		in.NoteOn(0, 40+p, 100)
	}

	if in.Voices() != Polyphony {
		t.Fatalf("Voices() = %d, want %d", in.Voices(), Polyphony)
	}
	if in.voices[0].pitch != 44 {
		t.Errorf("oldest pitch = %d, want 44", in.voices[0].pitch)
	}
}

func TestInstrument_IgnoresInvalidNotes(t *testing.T) {
	t.Parallel()

	in := NewInstrument(audio.DefaultFormat)
	in.NoteOn(16, 60, 100)
	in.NoteOn(0, 128, 100)
	in.NoteOn(-1, 60, 100)

	if in.Voices() != 0 {
		t.Errorf("Voices() = %d, want 0", in.Voices())
	}
}

func TestInstrument_Release(t *testing.T) {
	t.Parallel()

	in := NewInstrument(audio.DefaultFormat)
	in.Release()
	if _, alive := in.Generate(16, 2); alive {
		t.Error("released idle instrument still alive")
	}
}

func TestMidiToFreq(t *testing.T) {
	t.Parallel()

	tests := []struct {
		note int
		want float64
	}{
		{69, 440},
		{81, 880},
		{57, 220},
		{60, 261.6256},
	}

	for _, tt := range tests {
		if got := midiToFreq(tt.note); math.Abs(got-tt.want) > 1e-3 {
			t.Errorf("midiToFreq(%d) = %v, want %v", tt.note, got, tt.want)
		}
	}
}

func TestRiser(t *testing.T) {
	t.Parallel()

	b := Riser(audio.DefaultFormat, 2*time.Second)
	if b.Frames() != 88200 {
		t.Fatalf("Frames() = %d, want 88200", b.Frames())
	}

	quarter := func(q int) float64 {
		e := 0.0
		for i := q * 22050; i < (q+1)*22050; i++ {
			e += b.At(i, 0) * b.At(i, 0)
		}
		return e
	}
	if quarter(0) >= quarter(2) {
		t.Errorf("energy does not rise: first %v third %v", quarter(0), quarter(2))
	}

	for i := range b.Frames() {
		if v := b.At(i, 0); math.Abs(v) > 1 || v != b.At(i, 1) {
			t.Fatalf("frame %d = (%v, %v)", i, v, b.At(i, 1))
		}
	}
	if last := b.At(b.Frames()-1, 0); last != 0 {
		t.Errorf("last frame = %v, want 0", last)
	}
}

func TestRiser_Deterministic(t *testing.T) {
	t.Parallel()

	a := Riser(audio.DefaultFormat, 100*time.Millisecond)
	b := Riser(audio.DefaultFormat, 100*time.Millisecond)
	for i := range a.Frames() {
		if a.At(i, 0) != b.At(i, 0) {
			t.Fatalf("frame %d differs", i)
		}
	}
}

func BenchmarkInstrument_EightVoices(b *testing.B) {
	in := NewInstrument(audio.DefaultFormat)
	for p := range 8 {
		in.NoteOn(0, 60+p, 100)
	}

	b.ReportAllocs()
	for b.Loop() {
		in.Generate(512, 2)
	}
}

// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"math"
	"testing"

	"github.com/rocarrillos/beatrunner/internal/audiotest"
)

func drain(t testing.TB, src Source, bufSize int) []float32 {
	t.Helper()

	buf := make([]float32, bufSize)
	var out []float32
	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if errors.Is(err, io.EOF) {
			return out
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
		if n == 0 {
			t.Fatal("ReadSamples() made no progress")
		}
	}
}

func TestResampler_Metadata(t *testing.T) {
	t.Parallel()

	src := audiotest.NewConstantSource(22050, 2, 1000, 0)
	r := NewResampler(src, 44100)

	if r.SampleRate() != 44100 {
		t.Errorf("SampleRate() = %d, want 44100", r.SampleRate())
	}
	if r.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", r.Channels())
	}
	if r.BufSize() != src.BufSize() {
		t.Errorf("BufSize() = %d, want %d", r.BufSize(), src.BufSize())
	}
}

func TestResampler_Length(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		from, to  int
		tolerance int
	}{
		{"upsample 22050 to 44100", 22050, 44100, 8},
		{"upsample 8000 to 48000", 8000, 48000, 12},
		{"downsample 48000 to 44100", 48000, 44100, 8},
		{"downsample 96000 to 44100", 96000, 44100, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src := audiotest.NewSineSource(tt.from, 1, tt.from, 440)
			got := len(drain(t, NewResampler(src, tt.to), 1024))

			if got < tt.to-tt.tolerance || got > tt.to+tt.tolerance {
				t.Errorf("resampled %d samples, want %d±%d", got, tt.to, tt.tolerance)
			}
		})
	}
}

func TestResampler_ConstantPreserved(t *testing.T) {
	t.Parallel()

	src := audiotest.NewMockSource(22050, 2, 2000, func(_, ch int) float32 {
		if ch == 0 {
			return 0.25
		}
		return -0.5
	})
	out := drain(t, NewResampler(src, 44100), 512)

	for i := 0; i+1 < len(out); i += 2 {
		if math.Abs(float64(out[i]-0.25)) > 1e-5 || math.Abs(float64(out[i+1]+0.5)) > 1e-5 {
			t.Fatalf("frame %d = (%v, %v), want (0.25, -0.5)", i/2, out[i], out[i+1])
		}
	}
}

func TestResampler_SineStaysBounded(t *testing.T) {
	t.Parallel()

	src := audiotest.NewSineSource(48000, 1, 48000, 440)
	for i, s := range drain(t, NewResampler(src, 44100), 1024) {
		if s < -1.1 || s > 1.1 {
			t.Fatalf("sample %d = %v, outside [-1.1, 1.1]", i, s)
		}
	}
}

func TestResampler_EOFIsSticky(t *testing.T) {
	t.Parallel()

	r := NewResampler(audiotest.NewConstantSource(44100, 1, 100, 0), 22050)
	if len(drain(t, r, 64)) == 0 {
		t.Fatal("no samples before EOF")
	}

	n, err := r.ReadSamples(make([]float32, 64))
	if !errors.Is(err, io.EOF) || n != 0 {
		t.Errorf("after EOF ReadSamples() = (%d, %v), want (0, EOF)", n, err)
	}
}

func TestResampler_VeryShortSource(t *testing.T) {
	t.Parallel()

	r := NewResampler(audiotest.NewConstantSource(44100, 1, 2, 0.5), 48000)
	for _, s := range drain(t, r, 16) {
		if math.Abs(float64(s-0.5)) > 1e-5 {
			t.Fatalf("sample = %v, want 0.5", s)
		}
	}
}

func TestResampler_InvalidDstSize(t *testing.T) {
	t.Parallel()

	r := NewResampler(audiotest.NewConstantSource(44100, 2, 100, 0), 22050)
	if _, err := r.ReadSamples(make([]float32, 7)); !errors.Is(err, ErrInvalidDstSize) {
		t.Errorf("ReadSamples() error = %v, want ErrInvalidDstSize", err)
	}
}

func TestResampler_CloseForwards(t *testing.T) {
	t.Parallel()

	src := audiotest.NewConstantSource(44100, 1, 10, 0)
	if err := NewResampler(src, 22050).Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !src.Closed() {
		t.Error("Close() did not close the source")
	}
}

func BenchmarkResampler_22050To44100(b *testing.B) {
	src := audiotest.NewSineSource(22050, 2, 1<<30, 440)
	r := NewResampler(src, 44100)
	buf := make([]float32, 4096)

	b.ReportAllocs()
	for b.Loop() {
		_, _ = r.ReadSamples(buf)
	}
}

// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"math"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Node is the contract every element of the playback graph implements.
//
// Generate returns exactly frames*channels interleaved samples. The returned
// slice belongs to the node and is only valid until its next Generate call.
// alive is false once the node is exhausted; the owner consumes that final
// block and then detaches the node.
//
// Release flags the node for teardown. It never stops output by itself: the
// node reports alive=false on its next Generate and the owner detaches it.
type Node interface {
	Generate(frames, channels int) ([]float64, bool)
	Release()
}

// Source is a streaming decoder output.
type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// Format describes the fixed rate and channel layout shared by a graph.
type Format struct {
	SampleRate int
	Channels   int
}

// DefaultFormat is 44.1 kHz stereo.
var DefaultFormat = Format{SampleRate: 44100, Channels: 2}

// Frames converts a duration to the nearest whole number of frames.
func (f Format) Frames(d time.Duration) int {
	return int(math.Round(d.Seconds() * float64(f.SampleRate)))
}

// Duration converts a frame count to wall time.
func (f Format) Duration(frames int) time.Duration {
	return time.Duration(float64(frames) / float64(f.SampleRate) * float64(time.Second))
}

// Valid reports whether both fields are positive.
func (f Format) Valid() bool {
	return f.SampleRate > 0 && f.Channels > 0
}

// Registry maps file extensions (lower case, no dot) to decoders.
type Registry struct {
	codecs map[string]Decoder

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
		mtx:    &sync.Mutex{},
	}
}

func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[normalizeFormat(format)] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[normalizeFormat(format)]
	return d, ok
}

// ForPath looks up the decoder registered for the extension of path.
func (r *Registry) ForPath(path string) (Decoder, bool) {
	return r.Get(filepath.Ext(path))
}

func normalizeFormat(format string) string {
	return strings.ToLower(strings.TrimPrefix(format, "."))
}

// ensure returns buf resized to n without shrinking its capacity.
func ensure(buf []float64, n int) []float64 {
	if cap(buf) < n {
		return make([]float64, n)
	}
	return buf[:n]
}

func zero(buf []float64) {
	for i := range buf {
		buf[i] = 0
	}
}

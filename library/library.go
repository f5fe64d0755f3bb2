// SPDX-License-Identifier: EPL-2.0

package library

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/rocarrillos/beatrunner/audio"
	"github.com/rocarrillos/beatrunner/formats/aiff"
	"github.com/rocarrillos/beatrunner/formats/mp3"
	"github.com/rocarrillos/beatrunner/formats/vorbis"
	"github.com/rocarrillos/beatrunner/formats/wav"
)

// alternateSuffixes names the pre-rendered filter renditions looked up next
// to a track: "song.wav" pairs with "song_low.wav" and so on.
var alternateSuffixes = map[audio.FilterMode]string{
	audio.FilterLow:  "low",
	audio.FilterHigh: "high",
	audio.FilterBand: "band",
}

// Library decodes audio files from a file system into buffers at one graph
// format. Each file is decoded once; songs built from the same file share
// the buffer read-only.
type Library struct {
	fsys   fs.FS
	format audio.Format
	codecs *audio.Registry

	cache map[string]*audio.Buffer
	mtx   *sync.Mutex
}

// New returns a library reading from fsys with the wav, mp3, ogg and aiff
// decoders registered.
func New(fsys fs.FS, f audio.Format) *Library {
	codecs := audio.NewRegistry()
	codecs.Register("wav", wav.Decoder{})
	codecs.Register("mp3", mp3.Decoder{})
	codecs.Register("ogg", vorbis.Decoder{})
	codecs.Register("aiff", aiff.Decoder{})
	codecs.Register("aif", aiff.Decoder{})

	return &Library{
		fsys:   fsys,
		format: f,
		codecs: codecs,
		cache:  make(map[string]*audio.Buffer),
		mtx:    &sync.Mutex{},
	}
}

func (l *Library) Format() audio.Format { return l.format }

// Register adds or replaces the decoder for a file extension.
func (l *Library) Register(ext string, d audio.Decoder) {
	l.codecs.Register(ext, d)
}

// Buffer returns the decoded contents of name, converted to the library
// format.
func (l *Library) Buffer(name string) (*audio.Buffer, error) {
	l.mtx.Lock()
	buf, ok := l.cache[name]
	l.mtx.Unlock()
	if ok {
		return buf, nil
	}

	buf, err := l.decode(name)
	if err != nil {
		return nil, err
	}

	l.mtx.Lock()
	defer l.mtx.Unlock()

	// Another caller may have finished first; keep a single shared copy.
	if cached, ok := l.cache[name]; ok {
		return cached, nil
	}
	l.cache[name] = buf

	return buf, nil
}

func (l *Library) decode(name string) (*audio.Buffer, error) {
	dec, ok := l.codecs.ForPath(name)
	if !ok {
		return nil, fmt.Errorf("%s: %w", name, ErrUnsupportedFormat)
	}

	f, err := l.fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	defer f.Close()

	src, err := dec.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}
	defer src.Close()

	buf, err := audio.LoadBuffer(src, l.format)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", name, err)
	}

	return buf, nil
}

// AlternateName returns the file name of the rendition of name for mode.
func AlternateName(name string, mode audio.FilterMode) string {
	suffix, ok := alternateSuffixes[mode]
	if !ok {
		return ""
	}
	ext := path.Ext(name)
	return strings.TrimSuffix(name, ext) + "_" + suffix + ext
}

// Alternates loads every filter rendition of name that exists. Missing
// renditions are skipped; any other failure is returned.
func (l *Library) Alternates(name string) (map[audio.FilterMode]*audio.Buffer, error) {
	alts := make(map[audio.FilterMode]*audio.Buffer)
	for mode := range alternateSuffixes {
		buf, err := l.Buffer(AlternateName(name, mode))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, err
		}
		alts[mode] = buf
	}
	return alts, nil
}

// LoadSong builds a fresh Song for name with whatever alternates exist.
func (l *Library) LoadSong(name string) (*audio.Song, error) {
	buf, err := l.Buffer(name)
	if err != nil {
		return nil, err
	}

	alts, err := l.Alternates(name)
	if err != nil {
		return nil, err
	}

	return audio.NewSong(name, buf, alts), nil
}

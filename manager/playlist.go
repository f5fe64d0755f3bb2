// SPDX-License-Identifier: EPL-2.0

package manager

// Playlist is the ordered list of level songs and the position of the one
// playing. It is not safe for concurrent use; a Manager guards its own.
type Playlist struct {
	songs []string
	level int
}

func NewPlaylist(songs ...string) *Playlist {
	return &Playlist{songs: append([]string(nil), songs...)}
}

func (p *Playlist) Len() int   { return len(p.songs) }
func (p *Playlist) Level() int { return p.level }

// Current returns the song of the current level, or "" for an empty list.
func (p *Playlist) Current() string {
	s, _ := p.After(0)
	return s
}

// Next returns the song following the current one.
func (p *Playlist) Next() (string, bool) { return p.After(1) }

// After returns the song n levels ahead of the current one.
func (p *Playlist) After(n int) (string, bool) {
	i := p.level + n
	if n < 0 || i >= len(p.songs) {
		return "", false
	}
	return p.songs[i], true
}

// Advance moves to the next level and reports whether there was one.
func (p *Playlist) Advance() bool {
	if p.level+1 >= len(p.songs) {
		return false
	}
	p.level++
	return true
}

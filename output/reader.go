// SPDX-License-Identifier: EPL-2.0

package output

import (
	"encoding/binary"
	"io"
	"math"
	"sync"

	"github.com/rocarrillos/beatrunner/audio"
)

const bytesPerSample = 4

// DefaultBlockFrames is the pull size used when none is given.
const DefaultBlockFrames = 512

// Reader exposes a node as a stream of interleaved float32 little-endian
// samples, the layout oto.FormatFloat32LE expects. The node is pulled one
// block at a time; the stream ends after the block the node reports dead.
type Reader struct {
	node        audio.Node
	channels    int
	blockFrames int

	pending []byte
	block   []byte
	done    bool
	mtx     *sync.Mutex
}

func NewReader(node audio.Node, channels, blockFrames int) *Reader {
	if blockFrames <= 0 {
		blockFrames = DefaultBlockFrames
	}
	return &Reader{
		node:        node,
		channels:    max(1, channels),
		blockFrames: blockFrames,
		block:       make([]byte, blockFrames*max(1, channels)*bytesPerSample),
		mtx:         &sync.Mutex{},
	}
}

func (r *Reader) Read(p []byte) (int, error) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	n := 0
	for n < len(p) {
		if len(r.pending) == 0 {
			if r.done {
				break
			}
			r.pull()
		}
		c := copy(p[n:], r.pending)
		r.pending = r.pending[c:]
		n += c
	}

	if n == 0 && r.done {
		return 0, io.EOF
	}
	return n, nil
}

// pull renders one block into pending.
func (r *Reader) pull() {
	data, alive := r.node.Generate(r.blockFrames, r.channels)
	if !alive {
		r.done = true
	}

	want := r.blockFrames * r.channels
	for i := range want {
		v := 0.0
		if i < len(data) {
			v = max(-1, min(1, data[i]))
		}
		binary.LittleEndian.PutUint32(r.block[i*bytesPerSample:], math.Float32bits(float32(v)))
	}
	r.pending = r.block[:want*bytesPerSample]
}

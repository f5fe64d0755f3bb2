// SPDX-License-Identifier: EPL-2.0

package output

import (
	"sync"

	"github.com/gopxl/beep/v2"
	"github.com/rocarrillos/beatrunner/audio"
)

// Streamer adapts a node to beep.Streamer so the graph can feed the beep
// speaker or any beep composition. beep streams are always stereo.
type Streamer struct {
	node   audio.Node
	format beep.Format
	done   bool
	mtx    *sync.Mutex
}

func NewStreamer(node audio.Node, sampleRate int) *Streamer {
	return &Streamer{
		node: node,
		format: beep.Format{
			SampleRate:  beep.SampleRate(sampleRate),
			NumChannels: 2,
			Precision:   bytesPerSample,
		},
		mtx: &sync.Mutex{},
	}
}

func (s *Streamer) Format() beep.Format { return s.format }

func (s *Streamer) Stream(samples [][2]float64) (int, bool) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.done {
		return 0, false
	}
	if len(samples) == 0 {
		return 0, true
	}

	data, alive := s.node.Generate(len(samples), 2)
	for i := range samples {
		if 2*i+1 < len(data) {
			samples[i] = [2]float64{data[2*i], data[2*i+1]}
		} else {
			samples[i] = [2]float64{}
		}
	}
	if !alive {
		s.done = true
	}

	return len(samples), true
}

func (s *Streamer) Err() error { return nil }

// SPDX-License-Identifier: GPL-2.0-or-later

package snd

import (
	"miu2d/conlog"
)

// playSound fires a short effect and forgets it. The node drops out
// of the mixer by itself when the buffer runs dry.
func (s *SndSys) playSound(fileID string) {
	id := normalizeID(fileID)
	if id == "" {
		return
	}
	go s.loadOneShot(id)
}

func (s *SndSys) loadOneShot(id string) {
	buf := s.loadBuffer(id)
	if buf == nil {
		conlog.Printf("snd: sound %q unavailable\n", id)
		return
	}
	if s.startOutput() != nil {
		return
	}
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	from, to := trimBounds(buf)
	env := newEnvelope(buf.Streamer(from, to), to-from)
	g := newGainNode(env, s.soundGainLocked())
	s.out.Lock()
	s.mixer.Add(g)
	s.out.Unlock()
	s.mu.Unlock()
}

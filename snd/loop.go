// SPDX-License-Identifier: GPL-2.0-or-later

package snd

import (
	"time"

	"miu2d/conlog"
)

// loopingState is the single persistent self-character loop, e.g.
// footsteps. gen grows on every command so a stale load discards
// itself.
type loopingState struct {
	trackID string
	gain    *gainNode
	gen     int
}

func (s *SndSys) playLoopingSound(fileID string) {
	id := normalizeID(fileID)
	if id == "" {
		return
	}
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	if id == s.loop.trackID {
		s.mu.Unlock()
		return
	}
	s.stopLoopingLocked()
	s.loop.trackID = id
	s.loop.gen++
	gen := s.loop.gen
	s.mu.Unlock()
	go s.loadLoopingSound(id, gen)
}

func (s *SndSys) loadLoopingSound(id string, gen int) {
	buf := s.loadBuffer(id)
	if buf == nil {
		conlog.Printf("snd: looping sound %q unavailable\n", id)
		s.mu.Lock()
		if gen == s.loop.gen {
			s.loop.trackID = ""
		}
		s.mu.Unlock()
		return
	}
	if s.startOutput() != nil {
		return
	}
	s.mu.Lock()
	if s.disposed || gen != s.loop.gen {
		s.mu.Unlock()
		return
	}
	from, to := trimBounds(buf)
	g := newGainNode(loopSection(buf, from, to), 0)
	g.RampTo(s.soundGainLocked()*loopingSoundBoost, fadeInDuration)
	s.loop.gain = g
	s.out.Lock()
	s.mixer.Add(g)
	s.out.Unlock()
	s.mu.Unlock()
}

func (s *SndSys) stopLoopingSound() {
	s.mu.Lock()
	s.loop.gen++
	s.stopLoopingLocked()
	s.mu.Unlock()
}

// stopLoopingLocked clears the loop slot immediately and fades the
// old node out. A replacement may start during the fade; the brief
// crossfade overlap is intended.
func (s *SndSys) stopLoopingLocked() {
	s.loop.trackID = ""
	g := s.loop.gain
	s.loop.gain = nil
	if g == nil {
		return
	}
	s.out.Lock()
	g.RampTo(0, stopFadeDuration)
	s.out.Unlock()
	time.AfterFunc(stopFadeDuration+detachSlack, func() {
		s.out.Lock()
		g.Detach()
		s.out.Unlock()
	})
}

func (s *SndSys) isLoopingSoundPlaying() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loop.gain != nil
}

// SPDX-License-Identifier: GPL-2.0-or-later

package snd

import (
	"miu2d/conlog"

	"github.com/gopxl/beep/v2"
)

// musicState is the single background music slot. requestID grows on
// every command that changes what should be playing; a finished load
// whose id went stale discards itself.
type musicState struct {
	currentID string
	paused    bool
	requestID int

	ctrl *beep.Ctrl
	gain *gainNode
}

func (s *SndSys) playMusic(trackID string) {
	id := normalizeID(trackID)
	if id == "" {
		return
	}
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	if !s.vol.music.enabled {
		// remembered so re-enabling picks it up
		s.music.currentID = id
		s.music.paused = false
		s.mu.Unlock()
		return
	}
	if id == s.music.currentID && s.music.gain != nil && !s.music.paused {
		s.mu.Unlock()
		return
	}
	s.stopMusicNodeLocked()
	s.music.currentID = id
	s.music.paused = false
	s.music.requestID++
	req := s.music.requestID
	s.mu.Unlock()
	go s.loadMusic(id, req)
}

func (s *SndSys) loadMusic(id string, req int) {
	buf := s.loadBuffer(id)
	if buf == nil {
		conlog.Printf("snd: music %q unavailable\n", id)
		return
	}
	if err := s.startOutput(); err != nil {
		// Playback is not allowed yet. The track stays remembered and
		// the next user interaction retries.
		conlog.Printf("snd: music %q blocked: %v\n", id, err)
		return
	}
	s.mu.Lock()
	if s.disposed || req != s.music.requestID || !s.vol.music.enabled {
		// a newer command superseded this load
		s.mu.Unlock()
		return
	}
	ctrl := &beep.Ctrl{
		Streamer: loopSection(buf, 0, buf.Len()),
		Paused:   s.music.paused,
	}
	g := newGainNode(ctrl, s.musicGainLocked())
	s.music.ctrl = ctrl
	s.music.gain = g
	s.gate.unlocked = true
	s.gate.blocked = false
	s.out.Lock()
	s.mixer.Add(g)
	s.out.Unlock()
	s.mu.Unlock()
}

func (s *SndSys) stopMusic() {
	s.mu.Lock()
	s.music.requestID++
	s.stopMusicNodeLocked()
	s.music.currentID = ""
	s.music.paused = false
	s.mu.Unlock()
}

func (s *SndSys) stopMusicNodeLocked() {
	if s.music.gain == nil {
		return
	}
	s.out.Lock()
	s.music.gain.Detach()
	s.out.Unlock()
	s.music.gain = nil
	s.music.ctrl = nil
}

func (s *SndSys) pauseMusic() {
	s.mu.Lock()
	if s.music.currentID != "" && !s.music.paused {
		s.music.paused = true
		if s.music.ctrl != nil {
			s.out.Lock()
			s.music.ctrl.Paused = true
			s.out.Unlock()
		}
	}
	s.mu.Unlock()
}

func (s *SndSys) resumeMusic() {
	s.mu.Lock()
	if !s.vol.music.enabled {
		// resume doubles as re-enable
		s.vol.music.enabled = true
		s.music.paused = false
		s.replayRememberedLocked()
		s.mu.Unlock()
		return
	}
	if s.music.paused {
		s.music.paused = false
		if s.music.ctrl != nil {
			s.out.Lock()
			s.music.ctrl.Paused = false
			s.out.Unlock()
		} else {
			s.replayRememberedLocked()
		}
	}
	s.mu.Unlock()
}

func (s *SndSys) setMusicEnabled(enabled bool) {
	s.mu.Lock()
	if enabled == s.vol.music.enabled {
		s.mu.Unlock()
		return
	}
	s.vol.music.enabled = enabled
	if !enabled {
		s.music.requestID++ // in-flight loads discard themselves
		s.stopMusicNodeLocked()
		s.music.paused = false
		// currentID stays remembered
	} else {
		s.replayRememberedLocked()
	}
	s.mu.Unlock()
}

// SPDX-License-Identifier: GPL-2.0-or-later

package snd

// gateState tracks whether platform autoplay policy lets us open the
// device. unlocked flips on the first user gesture or successful
// playback. blocked is set when the device refused to open; the next
// user interaction retries.
type gateState struct {
	unlocked bool
	blocked  bool
}

func (s *SndSys) isAutoplayAllowed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	// with music off nothing wants to autoplay
	return s.gate.unlocked || !s.vol.music.enabled
}

func (s *SndSys) notifyUserGesture() {
	s.mu.Lock()
	s.gate.unlocked = true
	if s.gate.blocked {
		s.replayRememberedLocked()
	}
	s.mu.Unlock()
}

// requestAutoplayPermission opens the device eagerly and force
// restarts the remembered track. Reports whether the device is up.
func (s *SndSys) requestAutoplayPermission() bool {
	if err := s.startOutput(); err != nil {
		return false
	}
	s.mu.Lock()
	s.gate.unlocked = true
	s.gate.blocked = false
	if id := s.music.currentID; id != "" && s.vol.music.enabled {
		s.stopMusicNodeLocked()
		s.music.paused = false
		s.music.requestID++
		go s.loadMusic(id, s.music.requestID)
	}
	s.mu.Unlock()
	return true
}

// replayRememberedLocked restarts the remembered track when music is
// enabled but nothing is audibly playing, recovering from an earlier
// playback block.
func (s *SndSys) replayRememberedLocked() {
	if !s.vol.music.enabled || s.music.currentID == "" || s.music.gain != nil {
		return
	}
	s.music.paused = false
	s.music.requestID++
	go s.loadMusic(s.music.currentID, s.music.requestID)
}

// SPDX-License-Identifier: GPL-2.0-or-later

package snd

import (
	qmath "miu2d/math"
)

// volumeBus is one logical volume channel. Effective gain is the bus
// scalar multiplied by the master scalar, zero when either side is
// disabled.
type volumeBus struct {
	scalar  float64
	enabled bool
}

type buses struct {
	master  volumeBus
	music   volumeBus
	sound   volumeBus
	ambient volumeBus
}

func defaultBuses() buses {
	on := volumeBus{scalar: 1, enabled: true}
	return buses{master: on, music: on, sound: on, ambient: on}
}

func (b *volumeBus) gain(master volumeBus) float64 {
	if !master.enabled || !b.enabled {
		return 0
	}
	return master.scalar * b.scalar
}

func (s *SndSys) musicGainLocked() float64   { return s.vol.music.gain(s.vol.master) }
func (s *SndSys) soundGainLocked() float64   { return s.vol.sound.gain(s.vol.master) }
func (s *SndSys) ambientGainLocked() float64 { return s.vol.ambient.gain(s.vol.master) }

// reapplyGainsLocked pushes the current bus gains into every live
// node. One-shots are short enough to finish at their old gain.
func (s *SndSys) reapplyGainsLocked() {
	musicGain := s.musicGainLocked()
	loopGain := s.soundGainLocked() * loopingSoundBoost
	ambientGain := s.ambientGainLocked()
	s.out.Lock()
	if s.music.gain != nil {
		s.music.gain.SetGain(musicGain)
	}
	if s.loop.gain != nil {
		s.loop.gain.SetGain(loopGain)
	}
	for _, inst := range s.spatial.instances {
		inst.gain.SetGain(ambientGain)
	}
	for _, g := range s.spatial.transients {
		g.SetGain(ambientGain)
	}
	s.out.Unlock()
}

func (s *SndSys) setMasterVolume(v float64) {
	s.mu.Lock()
	s.vol.master.scalar = qmath.Clamp(0.0, v, 1.0)
	s.reapplyGainsLocked()
	if s.gate.blocked {
		// a volume interaction counts as a user gesture
		s.replayRememberedLocked()
	}
	s.mu.Unlock()
}

func (s *SndSys) setMusicVolume(v float64) {
	s.mu.Lock()
	prev := s.vol.music.scalar
	s.vol.music.scalar = qmath.Clamp(0.0, v, 1.0)
	if s.music.gain != nil {
		gain := s.musicGainLocked()
		s.out.Lock()
		s.music.gain.SetGain(gain)
		s.out.Unlock()
	}
	// Raising the slider from zero, or touching it while playback is
	// blocked, restarts the remembered track if nothing is audible.
	if (prev == 0 && s.vol.music.scalar > 0) || s.gate.blocked {
		s.replayRememberedLocked()
	}
	s.mu.Unlock()
}

func (s *SndSys) setSoundVolume(v float64) {
	s.mu.Lock()
	s.vol.sound.scalar = qmath.Clamp(0.0, v, 1.0)
	if s.loop.gain != nil {
		gain := s.soundGainLocked() * loopingSoundBoost
		s.out.Lock()
		s.loop.gain.SetGain(gain)
		s.out.Unlock()
	}
	if s.gate.blocked {
		s.replayRememberedLocked()
	}
	s.mu.Unlock()
}

func (s *SndSys) setAmbientVolume(v float64) {
	s.mu.Lock()
	s.vol.ambient.scalar = qmath.Clamp(0.0, v, 1.0)
	gain := s.ambientGainLocked()
	s.out.Lock()
	for _, inst := range s.spatial.instances {
		inst.gain.SetGain(gain)
	}
	for _, g := range s.spatial.transients {
		g.SetGain(gain)
	}
	s.out.Unlock()
	if s.gate.blocked {
		s.replayRememberedLocked()
	}
	s.mu.Unlock()
}

func (s *SndSys) setAmbientEnabled(enabled bool) {
	s.mu.Lock()
	was := s.vol.ambient.enabled
	s.vol.ambient.enabled = enabled
	if was && !enabled {
		s.stopAll3DLocked()
	}
	s.mu.Unlock()
}

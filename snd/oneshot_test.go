// SPDX-License-Identifier: GPL-2.0-or-later

package snd

import (
	"testing"
	"time"
)

func TestPlaySoundSchedulesAndExpires(t *testing.T) {
	s, l, f := newTestSys(t)
	l.add("hit.ogg", 44100)
	s.PlaySound("hit")
	waitFor(t, "one-shot scheduled", func() bool { return s.mixerLen() == 1 })

	// play the whole buffer, then one more pass to reap the node
	f.pump(44100)
	f.pump(64)
	if got := s.mixerLen(); got != 0 {
		t.Errorf("finished one-shot still in the mixer: %d nodes", got)
	}
}

func TestPlaySoundConcurrentOverlap(t *testing.T) {
	s, l, _ := newTestSys(t)
	l.add("hit.ogg", 44100)
	s.PlaySound("hit")
	s.PlaySound("hit")
	s.PlaySound("hit")
	waitFor(t, "three overlapping one-shots", func() bool { return s.mixerLen() == 3 })
}

func TestPlaySoundMissingIsSilent(t *testing.T) {
	s, l, _ := newTestSys(t)
	s.PlaySound("nope")
	waitFor(t, "both formats probed", func() bool { return l.callCount("nope.mp3") == 1 })
	time.Sleep(10 * time.Millisecond)
	if got := s.mixerLen(); got != 0 {
		t.Errorf("missing sound scheduled %d nodes", got)
	}
}

func TestPlaySoundEmptyIDIgnored(t *testing.T) {
	s, _, _ := newTestSys(t)
	s.PlaySound("")
	s.PlaySound("   ")
	time.Sleep(10 * time.Millisecond)
	if got := s.mixerLen(); got != 0 {
		t.Errorf("empty id scheduled %d nodes", got)
	}
}

func TestPlaySoundBlockedDeviceStaysSilent(t *testing.T) {
	s, l, f := newTestSys(t)
	f.setInitErr(errTestRefused)
	l.add("hit.ogg", 44100)
	s.PlaySound("hit")
	waitFor(t, "blocked flag", s.isBlocked)
	if got := s.mixerLen(); got != 0 {
		t.Errorf("blocked device scheduled %d nodes", got)
	}
}

// SPDX-License-Identifier: GPL-2.0-or-later

package snd

import (
	"testing"
	"time"

	"miu2d/math/vec"
)

func TestPlay3DSoundOnceCulled(t *testing.T) {
	s, l, _ := newTestSys(t)
	l.add("bird.ogg", 4410)
	s.Play3DSoundOnce("bird", vec.Vec2{X: 2000})
	time.Sleep(20 * time.Millisecond)
	if n := l.callCount("bird.ogg"); n != 0 {
		t.Errorf("out-of-range sound hit the loader %d times", n)
	}

	s.Play3DSoundOnce("bird", vec.Vec2{X: 999})
	waitFor(t, "audible one-shot", func() bool { return s.mixerLen() == 1 })
}

func TestPlay3DSoundOnceFollowsListener(t *testing.T) {
	s, l, _ := newTestSys(t)
	l.add("bird.ogg", 4410)
	s.SetListenerPosition(vec.Vec2{X: 1800})
	s.Play3DSoundOnce("bird", vec.Vec2{X: 2000})
	waitFor(t, "one-shot near moved listener", func() bool { return s.mixerLen() == 1 })
}

func TestPlay3DSoundLoopIdempotentAndFollows(t *testing.T) {
	s, l, f := newTestSys(t)
	l.add("fire.ogg", 44100)
	s.Play3DSoundLoop("torch", "fire", vec.Vec2{X: 100})
	waitFor(t, "instance", func() bool { return s.instanceCount() == 1 })
	inst := s.instance("torch")
	left, right := pannerGains(f, inst.panner)
	if left >= right {
		t.Fatalf("emitter to the right not panned right: left=%v right=%v", left, right)
	}

	// second call with the same id only moves the emitter
	s.Play3DSoundLoop("torch", "fire", vec.Vec2{X: -100})
	if s.instanceCount() != 1 || s.instance("torch") != inst {
		t.Fatalf("same id spawned a second instance")
	}
	left, right = pannerGains(f, inst.panner)
	if left <= right {
		t.Errorf("emitter moved left still panned right: left=%v right=%v", left, right)
	}
	if n := l.callCount("fire.ogg"); n != 1 {
		t.Errorf("loop loaded %d times, want 1", n)
	}
}

func TestPlay3DSoundLoopSingleFlight(t *testing.T) {
	s, l, _ := newTestSys(t)
	l.add("fire.ogg", 44100)
	release := l.block("fire.ogg")

	s.Play3DSoundLoop("torch", "fire", vec.Vec2{X: 100})
	waitFor(t, "load started", func() bool { return l.callCount("fire.ogg") == 1 })
	s.Play3DSoundLoop("torch", "fire", vec.Vec2{X: 100})
	s.Play3DSoundLoop("torch", "fire", vec.Vec2{X: 100})

	close(release)
	waitFor(t, "instance", func() bool { return s.instanceCount() == 1 })
	if n := l.callCount("fire.ogg"); n != 1 {
		t.Errorf("loop loaded %d times, want 1", n)
	}
}

func TestStop3DSoundThenRestart(t *testing.T) {
	s, l, f := newTestSys(t)
	l.add("fire.ogg", 44100)
	s.Play3DSoundLoop("torch", "fire", vec.Vec2{X: 100})
	waitFor(t, "instance", func() bool { return s.instanceCount() == 1 })

	s.Stop3DSound("torch")
	if s.instanceCount() != 0 {
		t.Fatalf("stop left the instance registered")
	}

	// a restart inside the fade window is swallowed
	s.Play3DSoundLoop("torch", "fire", vec.Vec2{X: 100})
	time.Sleep(10 * time.Millisecond)
	if s.instanceCount() != 0 {
		t.Fatalf("restart during fade-out was not ignored")
	}

	waitFor(t, "fade window over", func() bool { return s.stoppingCount() == 0 })
	s.Play3DSoundLoop("torch", "fire", vec.Vec2{X: 100})
	waitFor(t, "restarted instance", func() bool { return s.instanceCount() == 1 })
	f.pump(64)
	if got := s.mixerLen(); got != 1 {
		t.Errorf("mixer holds %d nodes after restart, want 1", got)
	}
}

func TestStop3DSoundNeverStartedIsNoop(t *testing.T) {
	s, _, _ := newTestSys(t)
	s.Stop3DSound("ghost")
	if s.stoppingCount() != 0 {
		t.Errorf("stopping a never-started id left state behind")
	}
}

func TestStop3DSoundCancelsPendingLoad(t *testing.T) {
	s, l, _ := newTestSys(t)
	l.add("fire.ogg", 44100)
	release := l.block("fire.ogg")

	s.Play3DSoundLoop("torch", "fire", vec.Vec2{X: 100})
	waitFor(t, "load started", func() bool { return l.callCount("fire.ogg") == 1 })
	s.Stop3DSound("torch")
	close(release)
	time.Sleep(30 * time.Millisecond)
	if s.instanceCount() != 0 || s.mixerLen() != 0 {
		t.Errorf("stopped-while-loading loop still started")
	}
	waitFor(t, "fade window over", func() bool { return s.stoppingCount() == 0 })
}

func TestPlay3DSoundRandomSuppressesOverlap(t *testing.T) {
	s, l, f := newTestSys(t)
	l.add("croak.ogg", 4410)
	s.Play3DSoundRandom("frog", "croak", vec.Vec2{X: 100}, 1)
	waitFor(t, "random sound", func() bool { return s.randomPlayingCount() == 1 && s.mixerLen() == 1 })

	// retriggers are swallowed while the sound runs
	s.Play3DSoundRandom("frog", "croak", vec.Vec2{X: 100}, 1)
	time.Sleep(10 * time.Millisecond)
	if n := l.callCount("croak.ogg"); n != 1 {
		t.Fatalf("suppressed emitter loaded %d times, want 1", n)
	}

	// play it out, the key is released and the emitter can fire again
	f.pump(4410)
	f.pump(64)
	waitFor(t, "random key released", func() bool { return s.randomPlayingCount() == 0 })
	s.Play3DSoundRandom("frog", "croak", vec.Vec2{X: 100}, 1)
	waitFor(t, "second trigger", func() bool { return s.mixerLen() == 1 })
}

func TestPlay3DSoundRandomCulled(t *testing.T) {
	s, l, _ := newTestSys(t)
	l.add("croak.ogg", 4410)
	s.Play3DSoundRandom("frog", "croak", vec.Vec2{X: 2000}, 1)
	time.Sleep(10 * time.Millisecond)
	if l.callCount("croak.ogg") != 0 || s.randomPlayingCount() != 0 {
		t.Errorf("out-of-range random emitter triggered")
	}
}

func TestUpdate3DSoundPosition(t *testing.T) {
	s, l, f := newTestSys(t)
	l.add("fire.ogg", 44100)
	s.Play3DSoundLoop("torch", "fire", vec.Vec2{})
	waitFor(t, "instance", func() bool { return s.instanceCount() == 1 })
	inst := s.instance("torch")

	// emitter on the listener plays centered at full volume
	left, right := pannerGains(f, inst.panner)
	if left != 1 || right != 1 {
		t.Fatalf("centered emitter gains = %v,%v want 1,1", left, right)
	}

	// pushing it out of range silences without stopping
	s.Update3DSoundPosition("torch", vec.Vec2{X: 5000})
	left, right = pannerGains(f, inst.panner)
	if left != 0 || right != 0 {
		t.Errorf("out-of-range emitter gains = %v,%v want 0,0", left, right)
	}
	if s.instanceCount() != 1 {
		t.Errorf("out-of-range reposition stopped the instance")
	}

	// unknown ids are ignored
	s.Update3DSoundPosition("ghost", vec.Vec2{})
}

func TestStopAll3DSounds(t *testing.T) {
	s, l, f := newTestSys(t)
	l.add("fire.ogg", 44100)
	l.add("water.ogg", 44100)
	l.add("bird.ogg", 44100)
	s.Play3DSoundLoop("torch", "fire", vec.Vec2{X: 100})
	s.Play3DSoundLoop("river", "water", vec.Vec2{Y: 100})
	s.Play3DSoundOnce("bird", vec.Vec2{X: 50})
	waitFor(t, "all spatial sounds", func() bool {
		return s.instanceCount() == 2 && len(s.transientGains()) == 1
	})

	s.StopAll3DSounds()
	if s.instanceCount() != 0 || len(s.transientGains()) != 0 || s.randomPlayingCount() != 0 {
		t.Fatalf("spatial state survived StopAll3DSounds")
	}
	time.Sleep(stopFadeDuration + detachSlack + 30*time.Millisecond)
	f.pump(64)
	if got := s.mixerLen(); got != 0 {
		t.Errorf("mixer holds %d nodes after stop all, want 0", got)
	}
}

func TestStopAll3DSoundsCancelsLoads(t *testing.T) {
	s, l, _ := newTestSys(t)
	l.add("fire.ogg", 44100)
	release := l.block("fire.ogg")

	s.Play3DSoundLoop("torch", "fire", vec.Vec2{X: 100})
	waitFor(t, "load started", func() bool { return l.callCount("fire.ogg") == 1 })
	s.StopAll3DSounds()
	close(release)
	time.Sleep(30 * time.Millisecond)
	if s.instanceCount() != 0 || s.mixerLen() != 0 {
		t.Errorf("load in flight survived StopAll3DSounds")
	}
}

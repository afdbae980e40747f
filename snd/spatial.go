// SPDX-License-Identifier: GPL-2.0-or-later

package snd

import (
	"time"

	"miu2d/conlog"
	"miu2d/math/vec"

	"github.com/google/uuid"
)

// sound3DInstance is one addressable looping emitter in the world.
type sound3DInstance struct {
	id     string
	panner *pannerNode
	gain   *gainNode
}

// spatialState tracks positional playback. loading marks instance ids
// with a load in flight, stopping marks ids inside their fade-out
// window, randomPlaying suppresses retriggers of a random emitter
// until its sound finished, transients are anonymous one-shots kept
// reachable for volume changes and teardown.
type spatialState struct {
	instances     map[string]*sound3DInstance
	loading       map[string]struct{}
	stopping      map[string]struct{}
	randomPlaying map[string]struct{}
	transients    map[uuid.UUID]*gainNode
}

func newSpatialState() spatialState {
	return spatialState{
		instances:     make(map[string]*sound3DInstance),
		loading:       make(map[string]struct{}),
		stopping:      make(map[string]struct{}),
		randomPlaying: make(map[string]struct{}),
		transients:    make(map[uuid.UUID]*gainNode),
	}
}

// pannerPosLocked maps a world emitter to panner space around the
// current listener. audible is false beyond the culling radius; the
// position returned then parks the source out of earshot.
func (s *SndSys) pannerPosLocked(emitter vec.Vec2) (x, z float64, audible bool) {
	dir := vec.Sub(emitter, s.listener)
	dist := dir.Length()
	if dist > soundMaxDistance {
		return farAwayPos, farAwayPos, false
	}
	if dist == 0 {
		return 0, 0, true
	}
	// world x maps to panner x, world y lies flat on panner z
	p := dir.Normalize().Scale(dist / soundMaxDistance * sound3DMaxDistance)
	return float64(p.X), float64(p.Y), true
}

func (s *SndSys) play3DSoundOnce(fileID string, pos vec.Vec2) {
	id := normalizeID(fileID)
	if id == "" {
		return
	}
	s.mu.Lock()
	if s.disposed || !s.vol.ambient.enabled {
		s.mu.Unlock()
		return
	}
	_, _, audible := s.pannerPosLocked(pos)
	s.mu.Unlock()
	if !audible {
		// culled before any loading happens
		return
	}
	go s.loadSpatialOnce(id, pos, "")
}

// loadSpatialOnce plays one positional sound to completion. When
// randomKey is set the sound came from a random emitter and its key is
// released once the sound ends or fails.
func (s *SndSys) loadSpatialOnce(id string, pos vec.Vec2, randomKey string) {
	buf := s.loadBuffer(id)
	if buf == nil {
		conlog.Printf("snd: 3d sound %q unavailable\n", id)
		s.releaseRandom(randomKey)
		return
	}
	if s.startOutput() != nil {
		s.releaseRandom(randomKey)
		return
	}
	s.mu.Lock()
	if s.disposed || !s.vol.ambient.enabled {
		if randomKey != "" {
			delete(s.spatial.randomPlaying, randomKey)
		}
		s.mu.Unlock()
		return
	}
	x, z, _ := s.pannerPosLocked(pos)
	from, to := trimBounds(buf)
	env := newEnvelope(buf.Streamer(from, to), to-from)
	panner := newPannerNode(env, x, z)
	g := newGainNode(panner, s.ambientGainLocked())
	key := uuid.New()
	s.spatial.transients[key] = g
	// fires under the output lock, so hop to a goroutine before
	// touching engine state
	g.onEnd = func() {
		go s.finishTransient(key, randomKey)
	}
	s.out.Lock()
	s.mixer.Add(g)
	s.out.Unlock()
	s.mu.Unlock()
}

func (s *SndSys) releaseRandom(randomKey string) {
	if randomKey == "" {
		return
	}
	s.mu.Lock()
	delete(s.spatial.randomPlaying, randomKey)
	s.mu.Unlock()
}

func (s *SndSys) finishTransient(key uuid.UUID, randomKey string) {
	s.mu.Lock()
	delete(s.spatial.transients, key)
	if randomKey != "" {
		delete(s.spatial.randomPlaying, randomKey)
	}
	s.mu.Unlock()
}

func (s *SndSys) play3DSoundLoop(instanceID, soundID string, pos vec.Vec2) {
	if instanceID == "" {
		return
	}
	sid := normalizeID(soundID)
	if sid == "" {
		return
	}
	s.mu.Lock()
	if inst, ok := s.spatial.instances[instanceID]; ok {
		// already playing, only follow the emitter
		x, z, _ := s.pannerPosLocked(pos)
		s.out.Lock()
		inst.panner.SetPosition(x, z)
		s.out.Unlock()
		s.mu.Unlock()
		return
	}
	if _, ok := s.spatial.loading[instanceID]; ok {
		s.mu.Unlock()
		return
	}
	if _, ok := s.spatial.stopping[instanceID]; ok {
		// still fading out, the caller retries next frame
		s.mu.Unlock()
		return
	}
	if s.disposed || !s.vol.ambient.enabled {
		s.mu.Unlock()
		return
	}
	if _, _, audible := s.pannerPosLocked(pos); !audible {
		s.mu.Unlock()
		return
	}
	s.spatial.loading[instanceID] = struct{}{}
	s.mu.Unlock()
	go s.loadSpatialLoop(instanceID, sid, pos)
}

func (s *SndSys) loadSpatialLoop(instanceID, soundID string, pos vec.Vec2) {
	buf := s.loadBuffer(soundID)
	var outErr error
	if buf != nil {
		outErr = s.startOutput()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.spatial.loading[instanceID]; !ok {
		// cleared by a global stop or dispose while loading
		return
	}
	delete(s.spatial.loading, instanceID)
	if buf == nil {
		conlog.Printf("snd: 3d loop %q unavailable\n", soundID)
		return
	}
	if outErr != nil || s.disposed || !s.vol.ambient.enabled {
		return
	}
	if _, ok := s.spatial.stopping[instanceID]; ok {
		// stopped while the load was in flight
		return
	}
	if _, ok := s.spatial.instances[instanceID]; ok {
		return
	}
	x, z, _ := s.pannerPosLocked(pos)
	from, to := trimBounds(buf)
	panner := newPannerNode(loopSection(buf, from, to), x, z)
	g := newGainNode(panner, 0)
	s.spatial.instances[instanceID] = &sound3DInstance{
		id:     instanceID,
		panner: panner,
		gain:   g,
	}
	s.out.Lock()
	g.RampTo(s.ambientGainLocked(), fadeInDuration)
	s.mixer.Add(g)
	s.out.Unlock()
}

func (s *SndSys) play3DSoundRandom(id, soundID string, pos vec.Vec2, probability float32) {
	if id == "" {
		return
	}
	sid := normalizeID(soundID)
	if sid == "" {
		return
	}
	s.mu.Lock()
	if _, ok := s.spatial.randomPlaying[id]; ok {
		// still sounding, never overlap the same emitter
		s.mu.Unlock()
		return
	}
	if s.disposed || !s.vol.ambient.enabled {
		s.mu.Unlock()
		return
	}
	if _, _, audible := s.pannerPosLocked(pos); !audible {
		s.mu.Unlock()
		return
	}
	if probability <= 0 {
		probability = defaultAmbientChance
	}
	if !s.rng.Bernoulli(probability) {
		s.mu.Unlock()
		return
	}
	s.spatial.randomPlaying[id] = struct{}{}
	s.mu.Unlock()
	go s.loadSpatialOnce(sid, pos, id)
}

func (s *SndSys) update3DSoundPosition(instanceID string, pos vec.Vec2) {
	s.mu.Lock()
	inst, ok := s.spatial.instances[instanceID]
	if !ok {
		s.mu.Unlock()
		return
	}
	x, z, _ := s.pannerPosLocked(pos)
	s.out.Lock()
	inst.panner.SetPosition(x, z)
	s.out.Unlock()
	s.mu.Unlock()
}

// stop3DSound fades an instance out. The id is held in stopping for
// the fade window so an immediate restart of the same id is ignored
// instead of doubling the emitter.
func (s *SndSys) stop3DSound(instanceID string) {
	s.mu.Lock()
	if _, ok := s.spatial.stopping[instanceID]; ok {
		s.mu.Unlock()
		return
	}
	inst, live := s.spatial.instances[instanceID]
	_, loading := s.spatial.loading[instanceID]
	if !live && !loading {
		// never started, safe no-op
		s.mu.Unlock()
		return
	}
	delete(s.spatial.instances, instanceID)
	s.spatial.stopping[instanceID] = struct{}{}
	if live {
		s.out.Lock()
		inst.gain.RampTo(0, stopFadeDuration)
		s.out.Unlock()
	}
	s.mu.Unlock()
	time.AfterFunc(stopFadeDuration+detachSlack, func() {
		s.mu.Lock()
		delete(s.spatial.stopping, instanceID)
		s.mu.Unlock()
		if live {
			s.out.Lock()
			inst.gain.Detach()
			s.out.Unlock()
		}
	})
}

func (s *SndSys) stopAll3DSounds() {
	s.mu.Lock()
	s.stopAll3DLocked()
	s.mu.Unlock()
}

// stopAll3DLocked fades out every live instance and transient and
// resets all spatial bookkeeping, cancelling loads in flight.
func (s *SndSys) stopAll3DLocked() {
	faded := make([]*gainNode, 0, len(s.spatial.instances)+len(s.spatial.transients))
	s.out.Lock()
	for _, inst := range s.spatial.instances {
		inst.gain.RampTo(0, stopFadeDuration)
		faded = append(faded, inst.gain)
	}
	for _, g := range s.spatial.transients {
		g.RampTo(0, stopFadeDuration)
		faded = append(faded, g)
	}
	s.out.Unlock()
	s.spatial = newSpatialState()
	if len(faded) == 0 {
		return
	}
	time.AfterFunc(stopFadeDuration+detachSlack, func() {
		s.out.Lock()
		for _, g := range faded {
			g.Detach()
		}
		s.out.Unlock()
	})
}

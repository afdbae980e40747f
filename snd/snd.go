// SPDX-License-Identifier: GPL-2.0-or-later

// Package snd is the runtime audio engine of the game client. It
// plays looping background music, fire-and-forget effects, one
// persistent self-character loop and distance-attenuated positional
// ambient sounds, sharing a single hardware output. All loading is
// asynchronous and guarded so that the last logical command wins even
// when loads resolve out of order.
package snd

import (
	"path"
	"strings"
	"sync"
	"time"

	"miu2d/math/vec"
	"miu2d/rand"
	"miu2d/snd/speaker"

	"github.com/gopxl/beep/v2"
	"github.com/pkg/errors"
)

const (
	sampleRate = beep.SampleRate(44100)

	// culling radius in world units and the radius of the panner
	// space it maps onto
	soundMaxDistance   = 1000.0
	sound3DMaxDistance = 10.0
	refDistance        = 1.0

	// cut from both buffer ends to mask encoder padding artifacts
	trimStart = 20 * time.Millisecond
	trimEnd   = 40 * time.Millisecond

	fadeInDuration   = 30 * time.Millisecond
	fadeOutDuration  = 50 * time.Millisecond
	stopFadeDuration = 100 * time.Millisecond

	// grace period before a faded-out node is detached
	detachSlack = 20 * time.Millisecond

	// self-character sounds read louder than ambient ones
	loopingSoundBoost = 1.5

	// one trigger roughly every 200 per-frame calls
	defaultAmbientChance = 1.0 / 200

	// panner position for audible sounds pushed out of range
	farAwayPos = 1e9
)

// format preference order, best boundary behavior first
var soundFormats = [...]string{".ogg", ".mp3"}

var errDisposed = errors.New("snd: engine disposed")

// Loader resolves an audio path to a decoded sample buffer, or nil if
// the asset is missing or undecodable. Implementations cache both
// outcomes by path.
type Loader interface {
	LoadAudio(path string) *beep.Buffer
}

// output is the hardware playback device. The real implementation is
// the speaker package; tests substitute their own.
type output interface {
	Init(sr beep.SampleRate, bufferSize int) error
	Play(s ...beep.Streamer)
	Lock()
	Unlock()
	Suspend() error
	Resume() error
	Clear()
	Close()
}

type speakerOutput struct{}

func (speakerOutput) Init(sr beep.SampleRate, bufferSize int) error {
	return speaker.Init(sr, bufferSize)
}
func (speakerOutput) Play(s ...beep.Streamer) { speaker.Play(s...) }
func (speakerOutput) Lock()                   { speaker.Lock() }
func (speakerOutput) Unlock()                 { speaker.Unlock() }
func (speakerOutput) Suspend() error          { return speaker.Suspend() }
func (speakerOutput) Resume() error           { return speaker.Resume() }
func (speakerOutput) Clear()                  { speaker.Clear() }
func (speakerOutput) Close()                  { speaker.Close() }

// SndSys is the audio engine facade. One instance is owned by the
// game session and passed to every subsystem that triggers sound.
// All methods are safe on a nil receiver.
type SndSys struct {
	mu sync.Mutex

	loader Loader
	out    output
	mixer  *beep.Mixer

	started   bool
	suspended bool
	disposed  bool

	vol      buses
	gate     gateState
	music    musicState
	loop     loopingState
	listener vec.Vec2
	spatial  spatialState

	rng rand.Generator
}

func InitSoundSystem(loader Loader) *SndSys {
	if loader == nil {
		return nil
	}
	return newSndSys(loader, speakerOutput{})
}

func newSndSys(loader Loader, out output) *SndSys {
	return &SndSys{
		loader:  loader,
		out:     out,
		mixer:   &beep.Mixer{},
		vol:     defaultBuses(),
		spatial: newSpatialState(),
		rng:     rand.New(uint32(time.Now().UnixNano())),
	}
}

// startOutput brings up the device lazily and resumes it when it was
// suspended. Every playback path goes through here before scheduling.
func (s *SndSys) startOutput() error {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return errDisposed
	}
	if !s.started {
		if err := s.out.Init(sampleRate, speaker.BufferSize(sampleRate)); err != nil {
			s.gate.blocked = true
			s.mu.Unlock()
			return err
		}
		s.started = true
		s.out.Play(s.mixer)
	}
	resume := s.suspended
	s.suspended = false
	s.mu.Unlock()
	if resume {
		return s.out.Resume()
	}
	return nil
}

// loadBuffer resolves an id through the format preference list.
func (s *SndSys) loadBuffer(id string) *beep.Buffer {
	for _, ext := range soundFormats {
		if buf := s.loader.LoadAudio(id + ext); buf != nil {
			return buf
		}
	}
	return nil
}

// normalizeID case-folds an id and strips a trailing audio extension
// so "Fire.OGG" and "fire" address the same sound.
func normalizeID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	switch path.Ext(id) {
	case ".ogg", ".mp3", ".wav":
		id = strings.TrimSuffix(id, path.Ext(id))
	}
	return id
}

func (s *SndSys) block() {
	s.mu.Lock()
	if !s.started || s.suspended {
		s.mu.Unlock()
		return
	}
	s.suspended = true
	s.mu.Unlock()
	s.out.Suspend()
}

func (s *SndSys) unblock() {
	s.mu.Lock()
	if !s.started || !s.suspended {
		s.mu.Unlock()
		return
	}
	s.suspended = false
	s.mu.Unlock()
	s.out.Resume()
}

func (s *SndSys) dispose() {
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		return
	}
	s.disposed = true
	s.music.requestID++
	s.loop.gen++
	s.out.Lock()
	if s.music.gain != nil {
		s.music.gain.Detach()
	}
	if s.loop.gain != nil {
		s.loop.gain.Detach()
	}
	for _, inst := range s.spatial.instances {
		inst.gain.Detach()
	}
	for _, g := range s.spatial.transients {
		g.Detach()
	}
	s.out.Unlock()
	s.music.gain, s.music.ctrl = nil, nil
	s.music.currentID = ""
	s.music.paused = false
	s.loop.gain = nil
	s.loop.trackID = ""
	s.spatial = newSpatialState()
	started := s.started
	s.started = false
	s.mu.Unlock()
	if started {
		s.out.Clear()
		s.out.Close()
	}
}

// The API

func (s *SndSys) PlayMusic(trackID string) {
	if s == nil {
		return
	}
	s.playMusic(trackID)
}

func (s *SndSys) StopMusic() {
	if s == nil {
		return
	}
	s.stopMusic()
}

func (s *SndSys) PauseMusic() {
	if s == nil {
		return
	}
	s.pauseMusic()
}

func (s *SndSys) ResumeMusic() {
	if s == nil {
		return
	}
	s.resumeMusic()
}

func (s *SndSys) SetMusicEnabled(enabled bool) {
	if s == nil {
		return
	}
	s.setMusicEnabled(enabled)
}

func (s *SndSys) IsMusicEnabled() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vol.music.enabled
}

func (s *SndSys) IsAutoplayAllowed() bool {
	if s == nil {
		return false
	}
	return s.isAutoplayAllowed()
}

func (s *SndSys) RequestAutoplayPermission() bool {
	if s == nil {
		return false
	}
	return s.requestAutoplayPermission()
}

func (s *SndSys) NotifyUserGesture() {
	if s == nil {
		return
	}
	s.notifyUserGesture()
}

func (s *SndSys) SetMasterVolume(v float64) {
	if s == nil {
		return
	}
	s.setMasterVolume(v)
}

func (s *SndSys) GetMasterVolume() float64 {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vol.master.scalar
}

func (s *SndSys) SetMusicVolume(v float64) {
	if s == nil {
		return
	}
	s.setMusicVolume(v)
}

func (s *SndSys) GetMusicVolume() float64 {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vol.music.scalar
}

func (s *SndSys) SetSoundVolume(v float64) {
	if s == nil {
		return
	}
	s.setSoundVolume(v)
}

func (s *SndSys) GetSoundVolume() float64 {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vol.sound.scalar
}

func (s *SndSys) SetAmbientVolume(v float64) {
	if s == nil {
		return
	}
	s.setAmbientVolume(v)
}

func (s *SndSys) GetAmbientVolume() float64 {
	if s == nil {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vol.ambient.scalar
}

func (s *SndSys) SetAmbientEnabled(enabled bool) {
	if s == nil {
		return
	}
	s.setAmbientEnabled(enabled)
}

func (s *SndSys) IsAmbientEnabled() bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.vol.ambient.enabled
}

func (s *SndSys) PlaySound(fileID string) {
	if s == nil {
		return
	}
	s.playSound(fileID)
}

func (s *SndSys) PlayLoopingSound(fileID string) {
	if s == nil {
		return
	}
	s.playLoopingSound(fileID)
}

func (s *SndSys) StopLoopingSound() {
	if s == nil {
		return
	}
	s.stopLoopingSound()
}

func (s *SndSys) IsLoopingSoundPlaying() bool {
	if s == nil {
		return false
	}
	return s.isLoopingSoundPlaying()
}

func (s *SndSys) SetListenerPosition(pos vec.Vec2) {
	if s == nil {
		return
	}
	s.mu.Lock()
	s.listener = pos
	s.mu.Unlock()
}

func (s *SndSys) Play3DSoundOnce(fileID string, pos vec.Vec2) {
	if s == nil {
		return
	}
	s.play3DSoundOnce(fileID, pos)
}

func (s *SndSys) Play3DSoundLoop(instanceID, soundID string, pos vec.Vec2) {
	if s == nil {
		return
	}
	s.play3DSoundLoop(instanceID, soundID, pos)
}

func (s *SndSys) Play3DSoundRandom(id, soundID string, pos vec.Vec2, probability float32) {
	if s == nil {
		return
	}
	s.play3DSoundRandom(id, soundID, pos, probability)
}

func (s *SndSys) Update3DSoundPosition(instanceID string, pos vec.Vec2) {
	if s == nil {
		return
	}
	s.update3DSoundPosition(instanceID, pos)
}

func (s *SndSys) Stop3DSound(instanceID string) {
	if s == nil {
		return
	}
	s.stop3DSound(instanceID)
}

func (s *SndSys) StopAll3DSounds() {
	if s == nil {
		return
	}
	s.stopAll3DSounds()
}

// Block gets called when the window looses focus.
func (s *SndSys) Block() {
	if s == nil {
		return
	}
	s.block()
}

// Unblock gets called when the window gains focus.
func (s *SndSys) Unblock() {
	if s == nil {
		return
	}
	s.unblock()
}

func (s *SndSys) Dispose() {
	if s == nil {
		return
	}
	s.dispose()
}

// SPDX-License-Identifier: GPL-2.0-or-later

// Package speaker owns the single hardware playback device shared by
// every part of the audio engine.
package speaker

import (
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
)

// BufferSize returns the playback chunk size for a sample rate. Small
// enough to keep latency low, large enough to avoid underruns.
func BufferSize(sr beep.SampleRate) int {
	switch {
	case sr <= 11025:
		return 256
	case sr <= 22050:
		return 512
	case sr <= 44100:
		return 1024
	case sr <= 56000:
		return 2048 /* for 48 kHz */
	}
	return 4096 /* for 96 kHz */
}

func Init(sr beep.SampleRate, bufferSize int) error {
	return speaker.Init(sr, bufferSize)
}

func Play(s ...beep.Streamer) {
	speaker.Play(s...)
}

// Lock pauses the playback goroutine. Live streamer state may only be
// mutated between Lock and Unlock.
func Lock() {
	speaker.Lock()
}

func Unlock() {
	speaker.Unlock()
}

// Suspend stops the device without dropping playback state.
// Gets called when the window looses focus.
func Suspend() error {
	return speaker.Suspend()
}

// Resume restarts a suspended device.
func Resume() error {
	return speaker.Resume()
}

func Clear() {
	speaker.Clear()
}

func Close() {
	speaker.Close()
}

// SPDX-License-Identifier: GPL-2.0-or-later

package snd

import (
	"math"
	"time"

	qmath "miu2d/math"

	"github.com/gopxl/beep/v2"
)

// gainNode scales its source by a mutable gain and supports a
// sample-accurate linear ramp. All mutation happens under the output
// lock while the node is attached to the mixer.
type gainNode struct {
	src       beep.Streamer
	gain      float64
	step      float64
	remaining int
	onEnd     func()
	ended     bool
}

func newGainNode(src beep.Streamer, gain float64) *gainNode {
	return &gainNode{src: src, gain: gain}
}

func (g *gainNode) Gain() float64 { return g.gain }

// SetGain applies v immediately and cancels any running ramp.
func (g *gainNode) SetGain(v float64) {
	g.gain = v
	g.remaining = 0
}

// RampTo fades linearly from the current gain to target over d.
func (g *gainNode) RampTo(target float64, d time.Duration) {
	n := sampleRate.N(d)
	if n <= 0 {
		g.SetGain(target)
		return
	}
	g.step = (target - g.gain) / float64(n)
	g.remaining = n
}

// Detach drops the source. The mixer removes the node on its next
// streaming pass.
func (g *gainNode) Detach() { g.src = nil }

func (g *gainNode) Stream(samples [][2]float64) (int, bool) {
	if g.src == nil {
		g.finish()
		return 0, false
	}
	n, ok := g.src.Stream(samples)
	for i := range samples[:n] {
		if g.remaining > 0 {
			g.gain += g.step
			g.remaining--
		}
		samples[i][0] *= g.gain
		samples[i][1] *= g.gain
	}
	if !ok {
		g.finish()
	}
	return n, ok
}

// finish fires onEnd exactly once. Runs under the output lock, so the
// callback must not take it again.
func (g *gainNode) finish() {
	if g.ended {
		return
	}
	g.ended = true
	if g.onEnd != nil {
		g.onEnd()
	}
}

func (g *gainNode) Err() error {
	if g.src == nil {
		return nil
	}
	return g.src.Err()
}

// pannerNode places its source in the horizontal plane around the
// listener. The listener sits at the origin with +x to the right.
// Attenuation rolls off linearly between refDistance and
// sound3DMaxDistance.
type pannerNode struct {
	src         beep.Streamer
	left, right float64
}

func newPannerNode(src beep.Streamer, x, z float64) *pannerNode {
	p := &pannerNode{src: src}
	p.SetPosition(x, z)
	return p
}

// SetPosition moves the source to (x, z) in panner space. Call under
// the output lock while attached.
func (p *pannerNode) SetPosition(x, z float64) {
	dist := math.Hypot(x, z)
	att := 1.0
	if dist > refDistance {
		att = 1 - (dist-refDistance)/(sound3DMaxDistance-refDistance)
	}
	pan := 0.0
	if dist > 0 {
		pan = x / dist
	}
	p.left = qmath.Clamp(0, (1-pan)*att, 1)
	p.right = qmath.Clamp(0, (1+pan)*att, 1)
}

func (p *pannerNode) Stream(samples [][2]float64) (int, bool) {
	n, ok := p.src.Stream(samples)
	for i := range samples[:n] {
		samples[i][0] *= p.left
		samples[i][1] *= p.right
	}
	return n, ok
}

func (p *pannerNode) Err() error { return p.src.Err() }

// envelope shapes a finite source with linear fade-in and fade-out
// windows so decode artifacts at the buffer boundaries never reach
// the device as clicks. The fade-out ends exactly at the source end.
type envelope struct {
	src     beep.Streamer
	total   int
	fadeIn  int
	fadeOut int
	pos     int
}

func newEnvelope(src beep.Streamer, total int) *envelope {
	fi := sampleRate.N(fadeInDuration)
	fo := sampleRate.N(fadeOutDuration)
	if fi+fo > total {
		fi = total / 2
		fo = total - fi
	}
	return &envelope{src: src, total: total, fadeIn: fi, fadeOut: fo}
}

func (e *envelope) gainAt(pos int) float64 {
	if pos < e.fadeIn {
		return float64(pos) / float64(e.fadeIn)
	}
	if left := e.total - pos; left < e.fadeOut {
		return float64(left) / float64(e.fadeOut)
	}
	return 1
}

func (e *envelope) Stream(samples [][2]float64) (int, bool) {
	if e.src == nil || e.pos >= e.total {
		return 0, false
	}
	want := len(samples)
	if left := e.total - e.pos; left < want {
		want = left
	}
	n, ok := e.src.Stream(samples[:want])
	for i := range samples[:n] {
		v := e.gainAt(e.pos + i)
		samples[i][0] *= v
		samples[i][1] *= v
	}
	e.pos += n
	if !ok {
		e.pos = e.total
	}
	return n, n > 0
}

func (e *envelope) Err() error {
	if e.src == nil {
		return nil
	}
	return e.src.Err()
}

// trimBounds returns the playable sample range of buf with encoder
// padding cut from both ends. Buffers too short to trim play whole.
func trimBounds(buf *beep.Buffer) (from, to int) {
	n := buf.Len()
	sr := buf.Format().SampleRate
	from = sr.N(trimStart)
	cut := sr.N(trimEnd)
	if from+cut >= n {
		return 0, n
	}
	return from, n - cut
}

// loopSection loops buf between from and to forever with seamless
// loop points.
func loopSection(buf *beep.Buffer, from, to int) beep.Streamer {
	s, err := beep.Loop2(buf.Streamer(from, to))
	if err != nil {
		return buf.Streamer(from, to)
	}
	return s
}

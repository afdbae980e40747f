// SPDX-License-Identifier: GPL-2.0-or-later

package rand

import (
	"testing"
)

func TestFloat32Range(t *testing.T) {
	g := New(7)
	for i := 0; i < 1000; i++ {
		v := g.Float32()
		if v < 0 || v >= 1 {
			t.Fatalf("Float32() = %v outside [0,1)", v)
		}
	}
}

func TestBernoulliEdges(t *testing.T) {
	g := New(3)
	for i := 0; i < 100; i++ {
		if !g.Bernoulli(1) {
			t.Fatalf("Bernoulli(1) failed")
		}
		if g.Bernoulli(0) {
			t.Fatalf("Bernoulli(0) succeeded")
		}
	}
}

func TestDeterministic(t *testing.T) {
	a := New(42)
	b := New(42)
	for i := 0; i < 100; i++ {
		if a.Float32() != b.Float32() {
			t.Fatalf("same seed diverged at step %d", i)
		}
	}
}

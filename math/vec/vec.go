package vec

import (
	"github.com/chewxy/math32"
)

// Vec2 is a point or direction in 2D world space. The game world is
// a flat plane; the audio engine maps world X to panner X and world Y
// to panner Z.
type Vec2 struct {
	X, Y float32
}

func VFromA(a [2]float32) Vec2 {
	return Vec2{a[0], a[1]}
}

func (v *Vec2) Array() [2]float32 {
	return [2]float32{v.X, v.Y}
}

// Length returns the length of the vector
func (v *Vec2) Length() float32 {
	return math32.Sqrt(Dot(*v, *v))
}

// Add returns a + b
func Add(a, b Vec2) Vec2 {
	return Vec2{
		X: a.X + b.X,
		Y: a.Y + b.Y,
	}
}

// Sub returns a - b
func Sub(a, b Vec2) Vec2 {
	return Vec2{
		X: a.X - b.X,
		Y: a.Y - b.Y,
	}
}

// Scale returns the vector multiplied by the skalar s
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{
		X: v.X * s,
		Y: v.Y * s,
	}
}

// Normalize returns the normalized vector
func (v *Vec2) Normalize() Vec2 {
	l := v.Length()
	if l == 0 {
		return Vec2{}
	}
	return v.Scale(1 / l)
}

// Dot returns a dot b
func Dot(a Vec2, b Vec2) float32 {
	return a.X*b.X + a.Y*b.Y
}

// Lerp computes a weighted average between two points
func Lerp(a, b Vec2, frac float32) Vec2 {
	fi := 1 - frac
	return Vec2{
		fi*a.X + frac*b.X,
		fi*a.Y + frac*b.Y,
	}
}

// Equal returns a == b
func Equal(a Vec2, b Vec2) bool {
	return a.X == b.X && a.Y == b.Y
}

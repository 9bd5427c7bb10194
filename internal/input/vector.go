package input

import "math"

// Vec2 is a 2D analog value. +Y is up.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec3 is a 3D analog value used by virtual-button evaluation.
type Vec3 struct {
	X, Y, Z float64
}

// Vec3 widens v with a zero Z.
func (v Vec2) Vec3() Vec3 {
	return Vec3{X: v.X, Y: v.Y}
}

// IsZero reports whether both components are zero.
func (v Vec2) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Angle returns the direction of v in degrees, counter-clockwise from +X,
// in [0, 360).
func (v Vec2) Angle() float64 {
	deg := math.Atan2(v.Y, v.X) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

const analogThreshold = 0.01

func floatEqual(a, b float64) bool {
	return math.Abs(a-b) < analogThreshold
}

// analogChanged reports whether next differs enough from prev to publish.
// Crossing to or from exactly zero always counts.
func analogChanged(prev, next Vec2) bool {
	if prev.IsZero() != next.IsZero() {
		return true
	}
	return !floatEqual(prev.X, next.X) || !floatEqual(prev.Y, next.Y)
}

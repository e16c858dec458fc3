// Package core provides fundamental types and utilities shared by the
// simulation and the terminal renderers. It has no external dependencies
// so simulation code stays pure and testable.
package core

import "math"

// Vec is a point or displacement in world units.
type Vec struct {
	X, Y float64
}

// V is shorthand for Vec{X: x, Y: y}.
func V(x, y float64) Vec {
	return Vec{X: x, Y: y}
}

// Add returns v + o.
func (v Vec) Add(o Vec) Vec {
	return Vec{v.X + o.X, v.Y + o.Y}
}

// Sub returns v - o.
func (v Vec) Sub(o Vec) Vec {
	return Vec{v.X - o.X, v.Y - o.Y}
}

// Scale returns v * k.
func (v Vec) Scale(k float64) Vec {
	return Vec{v.X * k, v.Y * k}
}

// Len returns the Euclidean length of v.
func (v Vec) Len() float64 {
	return math.Hypot(v.X, v.Y)
}

// Dist returns the distance between v and o.
func (v Vec) Dist(o Vec) float64 {
	return math.Hypot(o.X-v.X, o.Y-v.Y)
}

// Toward returns a vector of length speed pointing from v to target.
// Returns the zero vector when v and target coincide.
func (v Vec) Toward(target Vec, speed float64) Vec {
	d := target.Sub(v)
	l := d.Len()
	if l == 0 {
		return Vec{}
	}
	return d.Scale(speed / l)
}

// IsZero reports whether both components are zero.
func (v Vec) IsZero() bool {
	return v.X == 0 && v.Y == 0
}

// Polar returns the point at the given angle (radians) and distance from v.
func (v Vec) Polar(angle, dist float64) Vec {
	return Vec{v.X + math.Cos(angle)*dist, v.Y + math.Sin(angle)*dist}
}

// SegmentDist returns the shortest distance from p to the segment a-b.
func SegmentDist(p, a, b Vec) float64 {
	ab := b.Sub(a)
	l2 := ab.X*ab.X + ab.Y*ab.Y
	if l2 == 0 {
		return p.Dist(a)
	}
	t := ((p.X-a.X)*ab.X + (p.Y-a.Y)*ab.Y) / l2
	t = ClampF(t, 0, 1)
	return p.Dist(a.Add(ab.Scale(t)))
}

// Clamp restricts a value to be within [min, max].
func Clamp(val, min, max int) int {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// ClampF restricts a float64 value to be within [min, max].
func ClampF(val, min, max float64) float64 {
	if val < min {
		return min
	}
	if val > max {
		return max
	}
	return val
}

// Round rounds half away from zero, the way scores and positions are reported.
func Round(f float64) int {
	return int(math.Round(f))
}

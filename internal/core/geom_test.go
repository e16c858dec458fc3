package core

import (
	"math"
	"testing"
)

const eps = 1e-9

func TestVecDist(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Vec
		expected float64
	}{
		{name: "same point", a: V(3, 4), b: V(3, 4), expected: 0},
		{name: "3-4-5 triangle", a: V(0, 0), b: V(3, 4), expected: 5},
		{name: "negative coords", a: V(-1, -1), b: V(2, 3), expected: 5},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Dist(tc.b); math.Abs(got-tc.expected) > eps {
				t.Errorf("Dist() = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestVecToward(t *testing.T) {
	v := V(0, 0).Toward(V(10, 0), 2)
	if math.Abs(v.X-2) > eps || math.Abs(v.Y) > eps {
		t.Errorf("Toward() = %+v, expected (2,0)", v)
	}

	if z := V(5, 5).Toward(V(5, 5), 3); !z.IsZero() {
		t.Errorf("Toward() onto itself = %+v, expected zero", z)
	}

	d := V(1, 1).Toward(V(4, 5), 10)
	if math.Abs(d.Len()-10) > eps {
		t.Errorf("Toward() length = %v, expected 10", d.Len())
	}
}

func TestSegmentDist(t *testing.T) {
	tests := []struct {
		name     string
		p, a, b  Vec
		expected float64
	}{
		{name: "perpendicular to middle", p: V(5, 3), a: V(0, 0), b: V(10, 0), expected: 3},
		{name: "beyond end", p: V(13, 4), a: V(0, 0), b: V(10, 0), expected: 5},
		{name: "before start", p: V(-3, 4), a: V(0, 0), b: V(10, 0), expected: 5},
		{name: "degenerate segment", p: V(3, 4), a: V(0, 0), b: V(0, 0), expected: 5},
		{name: "on segment", p: V(4, 0), a: V(0, 0), b: V(10, 0), expected: 0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SegmentDist(tc.p, tc.a, tc.b); math.Abs(got-tc.expected) > eps {
				t.Errorf("SegmentDist() = %v, expected %v", got, tc.expected)
			}
		})
	}
}

func TestClampF(t *testing.T) {
	tests := []struct {
		val, min, max, expected float64
	}{
		{5, 0, 10, 5},
		{-5, 0, 10, 0},
		{15, 0, 10, 10},
		{10, 10, 990, 10},
	}

	for _, tc := range tests {
		if got := ClampF(tc.val, tc.min, tc.max); got != tc.expected {
			t.Errorf("ClampF(%v, %v, %v) = %v, expected %v", tc.val, tc.min, tc.max, got, tc.expected)
		}
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		in       float64
		expected int
	}{
		{0.4, 0},
		{0.5, 1},
		{470.0, 470},
		{79.99, 80},
		{-0.5, -1},
	}

	for _, tc := range tests {
		if got := Round(tc.in); got != tc.expected {
			t.Errorf("Round(%v) = %d, expected %d", tc.in, got, tc.expected)
		}
	}
}

func TestPolar(t *testing.T) {
	p := V(100, 100).Polar(0, 50)
	if math.Abs(p.X-150) > eps || math.Abs(p.Y-100) > eps {
		t.Errorf("Polar(0, 50) = %+v, expected (150,100)", p)
	}
	if d := V(100, 100).Dist(V(100, 100).Polar(1.234, 120)); math.Abs(d-120) > 1e-6 {
		t.Errorf("Polar distance = %v, expected 120", d)
	}
}

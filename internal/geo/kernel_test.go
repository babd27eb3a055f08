package geo

import (
	"math"
	"testing"

	"github.com/sensorplan/engine/pkg/core"
)

var square = []core.Vec2{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}}

func TestPointInPolygon(t *testing.T) {
	tests := []struct {
		name string
		p    core.Vec2
		want bool
	}{
		{"center", core.Vec2{}, true},
		{"near corner", core.Vec2{X: 0.99, Y: 0.99}, true},
		{"outside right", core.Vec2{X: 1.5, Y: 0}, false},
		{"outside above", core.Vec2{X: 0, Y: 3}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PointInPolygon(tt.p, square); got != tt.want {
				t.Errorf("PointInPolygon(%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestPointInPolygon_Concave(t *testing.T) {
	// U shape open to +y
	u := []core.Vec2{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 3}, {X: 2, Y: 3}, {X: 2, Y: 1}, {X: 1, Y: 1}, {X: 1, Y: 3}, {X: 0, Y: 3}}
	if PointInPolygon(core.Vec2{X: 1.5, Y: 2}, u) {
		t.Error("point in the notch should be outside")
	}
	if !PointInPolygon(core.Vec2{X: 0.5, Y: 2}, u) {
		t.Error("point in the left arm should be inside")
	}
}

func TestNearestPointOnSegment(t *testing.T) {
	a := core.Vec2{X: 0, Y: 0}
	b := core.Vec2{X: 10, Y: 0}

	got := NearestPointOnSegment(core.Vec2{X: 5, Y: 3}, a, b)
	if got != (core.Vec2{X: 5, Y: 0}) {
		t.Errorf("expected projection (5,0), got %v", got)
	}
	got = NearestPointOnSegment(core.Vec2{X: -4, Y: 1}, a, b)
	if got != a {
		t.Errorf("expected clamp to a, got %v", got)
	}
	got = NearestPointOnSegment(core.Vec2{X: 14, Y: -1}, a, b)
	if got != b {
		t.Errorf("expected clamp to b, got %v", got)
	}
	got = NearestPointOnSegment(core.Vec2{X: 3, Y: 3}, a, a)
	if got != a {
		t.Errorf("degenerate segment should return a, got %v", got)
	}
}

func TestClampPointToPolygon_Inside(t *testing.T) {
	p := core.Vec2{X: 0.3, Y: -0.2}
	if got := ClampPointToPolygon(p, square); got != p {
		t.Errorf("inside point should be unchanged, got %v", got)
	}
}

func TestClampPointToPolygon_Corner(t *testing.T) {
	got := ClampPointToPolygon(core.Vec2{X: 10, Y: 10}, square)
	if math.Abs(got.X-1) > 1e-9 || math.Abs(got.Y-1) > 1e-9 {
		t.Errorf("expected (1,1), got %v", got)
	}
}

func TestClampPointToPolygon_IsNearestBoundaryPoint(t *testing.T) {
	outside := []core.Vec2{{X: 3, Y: 0.2}, {X: -2, Y: -5}, {X: 0.4, Y: 1.7}, {X: -1.3, Y: 0.9}}
	for _, p := range outside {
		got := ClampPointToPolygon(p, square)
		best := math.Inf(1)
		// brute force over a dense boundary sampling
		for i := range square {
			a, b := square[i], square[(i+1)%len(square)]
			for k := 0; k <= 1000; k++ {
				f := float64(k) / 1000
				q := core.Vec2{X: a.X + (b.X-a.X)*f, Y: a.Y + (b.Y-a.Y)*f}
				best = math.Min(best, Distance(p, q))
			}
		}
		if d := Distance(p, got); d > best+1e-9 {
			t.Errorf("clamp of %v gave distance %f, brute force found %f", p, d, best)
		}
	}
}

func TestWedgeTriangle(t *testing.T) {
	tri := WedgeTriangle(core.Vec2{X: 1, Y: 2}, 0, 90, 10)
	if tri[0] != (core.Vec2{X: 1, Y: 2}) {
		t.Errorf("origin mismatch: %v", tri[0])
	}
	h := 10 * math.Sqrt2 / 2
	if math.Abs(tri[1].X-(1+h)) > 1e-9 || math.Abs(tri[1].Y-(2-h)) > 1e-9 {
		t.Errorf("right edge mismatch: %v", tri[1])
	}
	if math.Abs(tri[2].X-(1+h)) > 1e-9 || math.Abs(tri[2].Y-(2+h)) > 1e-9 {
		t.Errorf("left edge mismatch: %v", tri[2])
	}
}

func TestPointInTriangle(t *testing.T) {
	tri := WedgeTriangle(core.Vec2{}, 0, 60, 10)
	if !PointInTriangle(core.Vec2{X: 5, Y: 0}, tri[0], tri[1], tri[2]) {
		t.Error("point on the axis should be inside")
	}
	if PointInTriangle(core.Vec2{X: 5, Y: 4}, tri[0], tri[1], tri[2]) {
		t.Error("point beyond half angle should be outside")
	}
	if PointInTriangle(core.Vec2{X: -1, Y: 0}, tri[0], tri[1], tri[2]) {
		t.Error("point behind the origin should be outside")
	}
}

func TestPolygonArea(t *testing.T) {
	if got := PolygonArea(square); got != 4 {
		t.Errorf("expected 4, got %f", got)
	}
	reversed := []core.Vec2{square[3], square[2], square[1], square[0]}
	if got := PolygonArea(reversed); got != 4 {
		t.Errorf("orientation should not matter, got %f", got)
	}
}

func TestIntersectionAreaConvex(t *testing.T) {
	shifted := []core.Vec2{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}
	if got := IntersectionAreaConvex(square, shifted); math.Abs(got-1) > 1e-9 {
		t.Errorf("expected overlap area 1, got %f", got)
	}

	far := []core.Vec2{{X: 5, Y: 5}, {X: 6, Y: 5}, {X: 6, Y: 6}, {X: 5, Y: 6}}
	if got := IntersectionAreaConvex(square, far); got != 0 {
		t.Errorf("expected no overlap, got %f", got)
	}

	if got := IntersectionAreaConvex(square, square); math.Abs(got-4) > 1e-9 {
		t.Errorf("self overlap should be the full area, got %f", got)
	}
}

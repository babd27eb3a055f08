// Package geo holds the planar geometry used by the placement engine, plus
// adapters to simplefeatures geometries and WGS84 coordinates.
package geo

import (
	"math"

	"github.com/sensorplan/engine/pkg/core"
)

// DegToRad converts degrees to radians.
func DegToRad(deg float64) float64 {
	return deg * math.Pi / 180
}

// RadToDeg converts radians to degrees.
func RadToDeg(rad float64) float64 {
	return rad * 180 / math.Pi
}

// Distance is the Euclidean distance between a and b.
func Distance(a, b core.Vec2) float64 {
	return math.Hypot(a.X-b.X, a.Y-b.Y)
}

// PointInPolygon tests p against polygon with the even-odd ray-casting rule.
func PointInPolygon(p core.Vec2, polygon []core.Vec2) bool {
	inside := false
	for i, j := 0, len(polygon)-1; i < len(polygon); j, i = i, i+1 {
		xi, yi := polygon[i].X, polygon[i].Y
		xj, yj := polygon[j].X, polygon[j].Y
		if (yi > p.Y) != (yj > p.Y) && p.X < (xj-xi)*(p.Y-yi)/(yj-yi)+xi {
			inside = !inside
		}
	}
	return inside
}

// NearestPointOnSegment projects p onto segment ab, clamped to the segment.
func NearestPointOnSegment(p, a, b core.Vec2) core.Vec2 {
	abx := b.X - a.X
	aby := b.Y - a.Y
	lenSq := abx*abx + aby*aby
	if lenSq == 0 {
		return a
	}
	t := ((p.X-a.X)*abx + (p.Y-a.Y)*aby) / lenSq
	t = math.Max(0, math.Min(1, t))
	return core.Vec2{X: a.X + abx*t, Y: a.Y + aby*t}
}

// ClampPointToPolygon returns p when it is inside polygon, otherwise the
// nearest point on the polygon boundary.
func ClampPointToPolygon(p core.Vec2, polygon []core.Vec2) core.Vec2 {
	if len(polygon) == 0 || PointInPolygon(p, polygon) {
		return p
	}
	nearest := polygon[0]
	minDist := math.Inf(1)
	for i := range polygon {
		a := polygon[i]
		b := polygon[(i+1)%len(polygon)]
		candidate := NearestPointOnSegment(p, a, b)
		if d := Distance(p, candidate); d < minDist {
			minDist = d
			nearest = candidate
		}
	}
	return nearest
}

// Triangle is a wedge approximation of a horizontal field of view:
// origin, right edge end (yaw - fov/2) and left edge end (yaw + fov/2).
type Triangle [3]core.Vec2

// Polygon returns the triangle vertices as a polygon.
func (t Triangle) Polygon() []core.Vec2 {
	return []core.Vec2{t[0], t[1], t[2]}
}

// WedgeTriangle builds the triangular field-of-view approximation. It is exact
// for fov below 180 degrees and degenerate above; callers treat fov >= 350 as
// full coverage instead.
func WedgeTriangle(origin core.Vec2, yawDeg, fovDeg, rangeM float64) Triangle {
	half := DegToRad(fovDeg / 2)
	yaw := DegToRad(yawDeg)
	right := core.Vec2{X: origin.X + rangeM*math.Cos(yaw-half), Y: origin.Y + rangeM*math.Sin(yaw-half)}
	left := core.Vec2{X: origin.X + rangeM*math.Cos(yaw+half), Y: origin.Y + rangeM*math.Sin(yaw+half)}
	return Triangle{origin, right, left}
}

// SensorWedge is the wedge triangle of a sensor's planar pose.
func SensorWedge(s core.Sensor) Triangle {
	return WedgeTriangle(s.Planar(), s.Pose.Orientation.YawDeg, s.FOV.HorizontalDeg, s.RangeM)
}

func sign(p, a, b core.Vec2) float64 {
	return (p.X-b.X)*(a.Y-b.Y) - (a.X-b.X)*(p.Y-b.Y)
}

// PointInTriangle reports whether p lies inside or on the edges of abc.
func PointInTriangle(p, a, b, c core.Vec2) bool {
	d1 := sign(p, a, b)
	d2 := sign(p, b, c)
	d3 := sign(p, c, a)
	hasNeg := d1 < 0 || d2 < 0 || d3 < 0
	hasPos := d1 > 0 || d2 > 0 || d3 > 0
	return !(hasNeg && hasPos)
}

// PolygonArea is the unsigned shoelace area.
func PolygonArea(poly []core.Vec2) float64 {
	area := 0.0
	for i := range poly {
		j := (i + 1) % len(poly)
		area += poly[i].X*poly[j].Y - poly[j].X*poly[i].Y
	}
	return math.Abs(area) / 2
}

func insideEdge(p, a, b core.Vec2) bool {
	return (b.X-a.X)*(p.Y-a.Y)-(b.Y-a.Y)*(p.X-a.X) >= 0
}

func lineIntersection(s, e, a, b core.Vec2) core.Vec2 {
	dc := core.Vec2{X: a.X - b.X, Y: a.Y - b.Y}
	dp := core.Vec2{X: s.X - e.X, Y: s.Y - e.Y}
	n1 := a.X*b.Y - a.Y*b.X
	n2 := s.X*e.Y - s.Y*e.X
	denom := dc.X*dp.Y - dc.Y*dp.X
	if denom == 0 {
		return s
	}
	return core.Vec2{
		X: (n1*dp.X - n2*dc.X) / denom,
		Y: (n1*dp.Y - n2*dc.Y) / denom,
	}
}

// IntersectionAreaConvex clips subject against each edge of clip
// (Sutherland-Hodgman) and returns the area of the result. It returns 0 as
// soon as a clip step leaves nothing.
func IntersectionAreaConvex(subject, clip []core.Vec2) float64 {
	output := append([]core.Vec2(nil), subject...)
	for i := range clip {
		a := clip[i]
		b := clip[(i+1)%len(clip)]
		input := output
		output = nil
		for j := range input {
			s := input[j]
			e := input[(j+1)%len(input)]
			if insideEdge(e, a, b) {
				if !insideEdge(s, a, b) {
					output = append(output, lineIntersection(s, e, a, b))
				}
				output = append(output, e)
			} else if insideEdge(s, a, b) {
				output = append(output, lineIntersection(s, e, a, b))
			}
		}
		if len(output) == 0 {
			return 0
		}
	}
	return PolygonArea(output)
}

// Package constraints relaxes sensor placements against the vehicle footprint
// and the symmetry rules. Every function returns a new slice and leaves its
// input untouched.
package constraints

import (
	"math"

	"github.com/sensorplan/engine/internal/geo"
	"github.com/sensorplan/engine/pkg/core"
)

// MirrorSuffix and MirrorLabelSuffix mark sensors synthesized by mirror placement.
const (
	MirrorSuffix      = "-mirror"
	MirrorLabelSuffix = " (Mirrored)"
)

// BoundaryClamp moves a sensor's planar position into the polygon.
func BoundaryClamp(s core.Sensor, polygon []core.Vec2) core.Sensor {
	return s.WithPlanar(geo.ClampPointToPolygon(s.Planar(), polygon))
}

func separatePair(a, b core.Sensor, minSpacing float64, polygon []core.Vec2, clamp bool) (core.Sensor, core.Sensor) {
	pa, pb := a.Planar(), b.Planar()
	d := geo.Distance(pa, pb)
	if d == 0 || d >= minSpacing {
		return a, b
	}
	push := (minSpacing - d) / 2
	dir := core.Vec2{X: (pa.X - pb.X) / d, Y: (pa.Y - pb.Y) / d}
	nextA := core.Vec2{X: pa.X + dir.X*push, Y: pa.Y + dir.Y*push}
	nextB := core.Vec2{X: pb.X - dir.X*push, Y: pb.Y - dir.Y*push}
	if clamp {
		nextA = geo.ClampPointToPolygon(nextA, polygon)
		nextB = geo.ClampPointToPolygon(nextB, polygon)
	}
	return a.WithPlanar(nextA), b.WithPlanar(nextB)
}

// MinSpacing visits each unordered pair once in index order and pushes pairs
// closer than minSpacing apart by half the shortfall each. Coincident sensors
// have no separating direction and are left in place. A single pass does not
// guarantee separation for clusters of three or more.
func MinSpacing(sensors []core.Sensor, polygon []core.Vec2, minSpacing float64, clamp bool) []core.Sensor {
	out := core.CloneSensors(sensors)
	for i := 0; i < len(out); i++ {
		for j := i + 1; j < len(out); j++ {
			out[i], out[j] = separatePair(out[i], out[j], minSpacing, polygon, clamp)
		}
	}
	return out
}

// mirrorGroups collects group members in input order, keyed by tag, and the
// order in which tags first appear.
func mirrorGroups(sensors []core.Sensor) (map[string][]int, []string) {
	groups := make(map[string][]int)
	var order []string
	for i, s := range sensors {
		if s.MirrorGroup == "" {
			continue
		}
		if _, ok := groups[s.MirrorGroup]; !ok {
			order = append(order, s.MirrorGroup)
		}
		groups[s.MirrorGroup] = append(groups[s.MirrorGroup], i)
	}
	return groups, order
}

// MirrorPlacement resolves mirror groups as pairs symmetric about the x axis.
// A lone member gets a synthesized mirror appended. In a pair, the member
// with the larger |y| is the source (the first member on ties) and the other
// takes the source's mirrored pose, field of view and range.
func MirrorPlacement(sensors []core.Sensor, enabled bool) []core.Sensor {
	out := core.CloneSensors(sensors)
	if !enabled {
		return out
	}
	groups, order := mirrorGroups(out)
	for _, tag := range order {
		members := groups[tag]
		if len(members) == 1 {
			src := out[members[0]]
			m := src.Mirrored()
			m.ID = src.ID + MirrorSuffix
			m.Label = src.Label + MirrorLabelSuffix
			out = append(out, m)
			continue
		}
		a, b := members[0], members[1]
		src, dst := a, b
		if math.Abs(out[b].Pose.Position.Y) > math.Abs(out[a].Pose.Position.Y) {
			src, dst = b, a
		}
		source := out[src].Mirrored()
		target := out[dst]
		target.Pose = source.Pose
		target.FOV = source.FOV
		target.RangeM = source.RangeM
		out[dst] = target
	}
	return out
}

// Enforce runs the fixed pipeline: clamp, minimum spacing, mirror placement,
// then re-clamp any sensor left outside the footprint.
func Enforce(sensors []core.Sensor, vehicle core.VehicleTemplate, c core.Constraints) []core.Sensor {
	polygon := vehicle.FootprintPolygon
	out := core.CloneSensors(sensors)
	if c.BoundaryClamp {
		for i := range out {
			out[i] = BoundaryClamp(out[i], polygon)
		}
	}
	out = MinSpacing(out, polygon, c.MinSpacingM, c.BoundaryClamp)
	out = MirrorPlacement(out, c.MirrorPlacement)
	if c.BoundaryClamp {
		for i := range out {
			if !geo.PointInPolygon(out[i].Planar(), polygon) {
				out[i] = BoundaryClamp(out[i], polygon)
			}
		}
	}
	return out
}

// OutsideFootprint lists the ids of sensors whose planar position is outside
// the vehicle outline.
func OutsideFootprint(sensors []core.Sensor, vehicle core.VehicleTemplate) []string {
	var ids []string
	for _, s := range sensors {
		if !geo.PointInPolygon(s.Planar(), vehicle.FootprintPolygon) {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

// SpacingViolation is a pair of sensors closer than the minimum spacing.
type SpacingViolation struct {
	A        string  `json:"a"`
	B        string  `json:"b"`
	Distance float64 `json:"distance"`
}

// SpacingViolations lists every pair closer than minSpacing, with a small
// tolerance for rounding.
func SpacingViolations(sensors []core.Sensor, minSpacing float64) []SpacingViolation {
	const eps = 1e-9
	var out []SpacingViolation
	for i := 0; i < len(sensors); i++ {
		for j := i + 1; j < len(sensors); j++ {
			d := geo.Distance(sensors[i].Planar(), sensors[j].Planar())
			if d < minSpacing-eps {
				out = append(out, SpacingViolation{A: sensors[i].ID, B: sensors[j].ID, Distance: d})
			}
		}
	}
	return out
}

// Package coverage samples a fixed ground region ahead of the vehicle and
// counts which samples fall inside sensor wedges.
package coverage

import (
	"math"

	"github.com/sensorplan/engine/internal/geo"
	"github.com/sensorplan/engine/pkg/core"
)

// Analysis rectangle in vehicle-local metres.
const (
	XMin = 0.0
	XMax = 50.0
	YMin = -10.0
	YMax = 10.0
)

// FullCircleDeg is the horizontal FOV from which a sensor is treated as
// panoramic and the wedge test is skipped.
const FullCircleDeg = 350.0

// Result summarises one coverage run.
type Result struct {
	Total         int                     `json:"total"`
	Covered       int                     `json:"covered"`
	ByType        map[core.SensorType]int `json:"byType"`
	Points        []core.Vec2             `json:"points"`
	CoveredPoints []core.Vec2             `json:"coveredPoints"`
}

// Ratio is the covered fraction of samples.
func (r Result) Ratio() float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.Covered) / float64(r.Total)
}

// TypeRatio is the fraction of samples covered by sensors of type t.
func (r Result) TypeRatio(t core.SensorType) float64 {
	if r.Total == 0 {
		return 0
	}
	return float64(r.ByType[t]) / float64(r.Total)
}

// SampleRegion lays a square grid of ceil(sqrt(count)) samples per axis over
// the analysis rectangle, starting at its minimum corner.
func SampleRegion(count int) []core.Vec2 {
	if count <= 0 {
		return nil
	}
	grid := int(math.Ceil(math.Sqrt(float64(count))))
	dx := (XMax - XMin) / float64(grid)
	dy := (YMax - YMin) / float64(grid)
	points := make([]core.Vec2, 0, grid*grid)
	for i := 0; i < grid; i++ {
		for j := 0; j < grid; j++ {
			points = append(points, core.Vec2{X: XMin + float64(i)*dx, Y: YMin + float64(j)*dy})
		}
	}
	return points
}

// CoveredBySensor applies the planar coverage test: in range, then either
// panoramic or inside the wedge triangle.
func CoveredBySensor(p core.Vec2, s core.Sensor) bool {
	if !s.Enabled {
		return false
	}
	origin := s.Planar()
	if math.Hypot(p.X-origin.X, p.Y-origin.Y) > s.RangeM {
		return false
	}
	if s.FOV.HorizontalDeg >= FullCircleDeg {
		return true
	}
	tri := geo.SensorWedge(s)
	return geo.PointInTriangle(p, tri[0], tri[1], tri[2])
}

// Compute samples the analysis region and tests every sample against every
// sensor whose layer is active.
func Compute(sensors []core.Sensor, layers core.Layers, sampleCount int) Result {
	points := SampleRegion(sampleCount)
	res := Result{
		Total:  len(points),
		ByType: make(map[core.SensorType]int, len(core.SensorTypes)),
		Points: points,
	}
	for _, t := range core.SensorTypes {
		res.ByType[t] = 0
	}

	typeCovered := make(map[core.SensorType]bool, len(core.SensorTypes))
	for _, p := range points {
		covered := false
		clear(typeCovered)
		for _, s := range sensors {
			if !layers.Active(s.Type) {
				continue
			}
			if CoveredBySensor(p, s) {
				covered = true
				typeCovered[s.Type] = true
			}
		}
		if covered {
			res.Covered++
			res.CoveredPoints = append(res.CoveredPoints, p)
		}
		for t, ok := range typeCovered {
			if ok {
				res.ByType[t]++
			}
		}
	}
	return res
}

// Package pointcloud approximates a range sensor's return pattern with a
// deterministic point set.
package pointcloud

import (
	"math"

	"github.com/sensorplan/engine/internal/geo"
	"github.com/sensorplan/engine/pkg/core"
)

// DefaultVerticalDeg is used when a sensor has no vertical field of view.
const DefaultVerticalDeg = 30.0

// Generate returns count points as a flat x,y,z buffer in the sensor frame.
// The same sensor id and count always produce the same buffer.
func Generate(s core.Sensor, count int) []float32 {
	if count <= 0 {
		return []float32{}
	}
	rnd := NewRand(Seed(s.ID))
	points := make([]float32, count*3)

	hDeg := s.FOV.HorizontalDeg
	hRad := geo.DegToRad(hDeg)
	vRad := geo.DegToRad(s.FOV.VerticalOr(DefaultVerticalDeg))

	for i := 0; i < count; i++ {
		var az float64
		if hDeg >= 360 {
			az = rnd.Float64() * math.Pi * 2
		} else {
			az = (rnd.Float64() - 0.5) * hRad
		}
		el := (rnd.Float64() - 0.5) * vRad
		r := s.RangeM * math.Sqrt(rnd.Float64())

		points[i*3] = float32(r * math.Cos(el) * math.Cos(az))
		points[i*3+1] = float32(r * math.Cos(el) * math.Sin(az))
		points[i*3+2] = float32(r * math.Sin(el))
	}
	return points
}

// MaxRadius is the largest distance from the sensor among the points.
func MaxRadius(points []float32) float64 {
	maxR := 0.0
	for i := 0; i+2 < len(points); i += 3 {
		x, y, z := float64(points[i]), float64(points[i+1]), float64(points[i+2])
		maxR = math.Max(maxR, math.Sqrt(x*x+y*y+z*z))
	}
	return maxR
}

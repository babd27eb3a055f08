// Package scenario builds the scripted probe geometry and tests probes
// against each sensor's oriented 3-D field of view.
package scenario

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/sensorplan/engine/internal/geo"
	"github.com/sensorplan/engine/pkg/core"
	"gonum.org/v1/gonum/mat"
)

// Kind names a scenario.
type Kind string

const (
	Pedestrian   Kind = "pedestrian"
	Intersection Kind = "intersection"
)

// Half widths of the crossing lines, metres.
const (
	pedestrianHalfWidth   = 6.0
	intersectionHalfWidth = 8.0
)

// DefaultVerticalDeg is used by the volume test when a sensor has no
// vertical field of view.
const DefaultVerticalDeg = 60.0

// horizontal FOV from which the horizontal angle check is skipped
const panoramicDeg = 350.0

// Path is a crossing line across the vehicle's heading plus a marker on the
// centreline.
type Path struct {
	Kind   Kind         `json:"kind"`
	Line   [2]core.Vec2 `json:"line"`
	Marker core.Vec3    `json:"marker"`
}

func crossing(kind Kind, distance, halfWidth float64) Path {
	return Path{
		Kind:   kind,
		Line:   [2]core.Vec2{{X: distance, Y: -halfWidth}, {X: distance, Y: halfWidth}},
		Marker: core.Vec3{X: distance},
	}
}

// PedestrianPath is a 12 m crossing at distance ahead of the vehicle origin.
func PedestrianPath(distance float64) Path {
	return crossing(Pedestrian, distance, pedestrianHalfWidth)
}

// IntersectionPath is a 16 m crossing at distance ahead of the vehicle origin.
func IntersectionPath(distance float64) Path {
	return crossing(Intersection, distance, intersectionHalfWidth)
}

// Markers returns the marker of both scenarios.
func Markers(s core.Scenarios) (pedestrian, intersection core.Vec3) {
	return PedestrianPath(s.Pedestrian.CrossingDistanceM).Marker,
		IntersectionPath(s.Intersection.CenterDistanceM).Marker
}

func toR3(v core.Vec3) r3.Vector {
	return r3.Vector{X: v.X, Y: v.Y, Z: v.Z}
}

// Rotation is the sensor-to-vehicle rotation for yaw, pitch and roll (radians),
// applied as Rz(yaw) * Ry(pitch) * Rx(roll).
func Rotation(yaw, pitch, roll float64) *mat.Dense {
	cy, sy := math.Cos(yaw), math.Sin(yaw)
	cp, sp := math.Cos(pitch), math.Sin(pitch)
	cr, sr := math.Cos(roll), math.Sin(roll)
	return mat.NewDense(3, 3, []float64{
		cy * cp, cy*sp*sr - sy*cr, cy*sp*cr + sy*sr,
		sy * cp, sy*sp*sr + cy*cr, sy*sp*cr - cy*sr,
		-sp, cp * sr, cp * cr,
	})
}

// ToSensorFrame expresses the vehicle-frame offset d in the sensor frame.
func ToSensorFrame(o core.Orientation, d r3.Vector) r3.Vector {
	r := Rotation(geo.DegToRad(o.YawDeg), geo.DegToRad(o.PitchDeg), geo.DegToRad(o.RollDeg))
	var local mat.VecDense
	local.MulVec(r.T(), mat.NewVecDense(3, []float64{d.X, d.Y, d.Z}))
	return r3.Vector{X: local.AtVec(0), Y: local.AtVec(1), Z: local.AtVec(2)}
}

// InSensorVolume reports whether target lies in the sensor's oriented field
// of view: within range, within half the horizontal FOV (unless panoramic),
// within half the vertical FOV and in front of the sensor.
func InSensorVolume(s core.Sensor, target core.Vec3) bool {
	if !s.Enabled {
		return false
	}
	d := toR3(target).Sub(toR3(s.Pose.Position))
	if d.Norm() > s.RangeM {
		return false
	}
	local := ToSensorFrame(s.Pose.Orientation, d)

	hDeg := s.FOV.HorizontalDeg
	vDeg := s.FOV.VerticalOr(DefaultVerticalDeg)
	h := math.Abs(geo.RadToDeg(math.Atan2(local.Y, local.X)))
	v := math.Abs(geo.RadToDeg(math.Atan2(local.Z, local.X)))
	if hDeg < panoramicDeg && h > hDeg/2 {
		return false
	}
	if vDeg != 0 && v > vDeg/2 {
		return false
	}
	return local.X >= 0
}

// Covered reports whether any sensor with an active layer contains target.
func Covered(sensors []core.Sensor, layers core.Layers, target core.Vec3) bool {
	for _, s := range sensors {
		if layers.Active(s.Type) && InSensorVolume(s, target) {
			return true
		}
	}
	return false
}

// Result is the outcome of one scenario.
type Result struct {
	Kind    Kind `json:"kind"`
	Enabled bool `json:"enabled"`
	Covered bool `json:"covered"`
	Path    Path `json:"path"`
}

// Evaluate runs both scenarios. A disabled scenario is reported as not covered.
func Evaluate(sensors []core.Sensor, layers core.Layers, s core.Scenarios) []Result {
	ped := PedestrianPath(s.Pedestrian.CrossingDistanceM)
	inter := IntersectionPath(s.Intersection.CenterDistanceM)
	return []Result{
		{Kind: Pedestrian, Enabled: s.Pedestrian.Enabled, Covered: s.Pedestrian.Enabled && Covered(sensors, layers, ped.Marker), Path: ped},
		{Kind: Intersection, Enabled: s.Intersection.Enabled, Covered: s.Intersection.Enabled && Covered(sensors, layers, inter.Marker), Path: inter},
	}
}

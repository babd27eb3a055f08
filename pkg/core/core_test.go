package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVehicle_BuiltIns(t *testing.T) {
	for _, vt := range VehicleTypes {
		v, err := Vehicle(vt)
		require.NoError(t, err)
		assert.Equal(t, vt, v.Type)
		assert.GreaterOrEqual(t, len(v.FootprintPolygon), 3)
	}

	_, err := Vehicle("truck")
	assert.Error(t, err)
}

func TestVehicle_ReturnsFreshCopy(t *testing.T) {
	a := MustVehicle(VehicleSedan)
	a.FootprintPolygon[0].X = 100

	b := MustVehicle(VehicleSedan)
	assert.Equal(t, -2.3, b.FootprintPolygon[0].X)
}

func TestSensor_CopyWith(t *testing.T) {
	s := Sensor{
		ID:   "cam",
		Type: SensorCamera,
		Pose: Pose{Position: Vec3{X: 1, Y: 0.5, Z: 1.3}, Orientation: Orientation{YawDeg: 30}},
	}

	moved := s.WithPlanar(Vec2{X: 2, Y: -1})
	assert.Equal(t, Vec3{X: 2, Y: -1, Z: 1.3}, moved.Pose.Position)
	assert.Equal(t, Vec3{X: 1, Y: 0.5, Z: 1.3}, s.Pose.Position)

	m := s.Mirrored()
	assert.Equal(t, -0.5, m.Pose.Position.Y)
	assert.Equal(t, -30.0, m.Pose.Orientation.YawDeg)
	assert.Equal(t, s.Pose.Position.X, m.Pose.Position.X)
}

func TestViewDrags(t *testing.T) {
	s := Sensor{Pose: Pose{Position: Vec3{X: 1, Y: 2, Z: 3}}}

	top := ApplyTopViewDrag(s, Vec2{X: 4, Y: 5})
	assert.Equal(t, Vec3{X: 4, Y: 5, Z: 3}, top.Pose.Position)

	side := ApplySideViewDrag(s, 6, 0.7)
	assert.Equal(t, Vec3{X: 6, Y: 2, Z: 0.7}, side.Pose.Position)
}

func TestSettings_PerformanceCaps(t *testing.T) {
	s := Settings{PointCount: 5000, CoverageSampleCount: 2000}
	assert.Equal(t, 2000, s.EffectiveCoverageSamples())
	assert.Equal(t, 5000, s.EffectivePointCount())

	s.PerformanceMode = true
	assert.Equal(t, PerformanceCoverageCap, s.EffectiveCoverageSamples())
	assert.Equal(t, PerformancePointCap, s.EffectivePointCount())

	s.CoverageSampleCount = 100
	assert.Equal(t, 100, s.EffectiveCoverageSamples())
}

func TestLayersAndVendors(t *testing.T) {
	l := Layers{Camera: true}
	assert.True(t, l.Active(SensorCamera))
	assert.False(t, l.Active(SensorLidar))
	assert.True(t, l.With(SensorLidar, true).Active(SensorLidar))

	v := VendorSelection{Camera: "onsemi", Radar: "continental"}
	w := v.With(SensorCamera, "mobileye")
	assert.Equal(t, "mobileye", w.For(SensorCamera))
	assert.Equal(t, []SensorType{SensorCamera}, v.Changed(w))
}

func TestConstraints_WithMinSpacing(t *testing.T) {
	c := Constraints{}
	assert.Equal(t, 0.1, c.WithMinSpacing(0.01).MinSpacingM)
	assert.Equal(t, 0.2, c.WithMinSpacing(3).MinSpacingM)
	assert.Equal(t, 0.15, c.WithMinSpacing(0.15).MinSpacingM)
}

package coverage

import (
	"testing"

	"github.com/sensorplan/engine/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allLayers = core.Layers{Camera: true, Radar: true, Ultrasonic: true, Lidar: true, OverlapHighlight: true}

func makeSensor(id string, typ core.SensorType, yaw, fov float64) core.Sensor {
	return core.Sensor{
		ID:    id,
		Type:  typ,
		Label: "S",
		Pose: core.Pose{
			Position:    core.Vec3{Z: 1},
			Orientation: core.Orientation{YawDeg: yaw},
		},
		FOV:     core.FOV{HorizontalDeg: fov, VerticalDeg: core.Float(60)},
		RangeM:  50,
		Enabled: true,
	}
}

func TestSampleRegion(t *testing.T) {
	pts := SampleRegion(400)
	require.Len(t, pts, 400)
	assert.Equal(t, core.Vec2{X: 0, Y: -10}, pts[0])
	assert.Equal(t, core.Vec2{X: 0, Y: -9}, pts[1])
	assert.Equal(t, core.Vec2{X: 2.5, Y: -10}, pts[20])

	// non-square counts round the grid up
	assert.Len(t, SampleRegion(10), 16)
	assert.Empty(t, SampleRegion(0))
}

func TestCompute_PanoramicSensor(t *testing.T) {
	res := Compute([]core.Sensor{makeSensor("lidar-1", core.SensorLidar, 0, 360)}, allLayers, 400)
	assert.Greater(t, res.Ratio(), 0.9)
	assert.Equal(t, res.Covered, res.ByType[core.SensorLidar])
	assert.Len(t, res.CoveredPoints, res.Covered)
}

func TestCompute_NarrowCamera(t *testing.T) {
	res := Compute([]core.Sensor{makeSensor("camera-1", core.SensorCamera, 0, 30)}, allLayers, 400)
	assert.Less(t, res.Ratio(), 0.7)
	assert.Greater(t, res.Covered, 0)
}

func TestCompute_UnionGrows(t *testing.T) {
	a := makeSensor("a", core.SensorCamera, 0, 60)
	b := makeSensor("b", core.SensorCamera, 90, 60)
	b.Pose.Position.X = 10

	single := Compute([]core.Sensor{a}, allLayers, 400)
	other := Compute([]core.Sensor{b}, allLayers, 400)
	combined := Compute([]core.Sensor{a, b}, allLayers, 400)

	assert.Greater(t, combined.Covered, single.Covered)
	assert.Greater(t, combined.Covered, other.Covered)
}

func TestCompute_ByTypeCountsIndependently(t *testing.T) {
	cam := makeSensor("cam", core.SensorCamera, 0, 60)
	radar := makeSensor("radar", core.SensorRadar, 0, 60)

	res := Compute([]core.Sensor{cam, radar}, allLayers, 400)
	assert.Equal(t, res.Covered, res.ByType[core.SensorCamera])
	assert.Equal(t, res.Covered, res.ByType[core.SensorRadar])
	assert.Equal(t, 0, res.ByType[core.SensorLidar])
}

func TestCompute_LayersAndEnabledFilter(t *testing.T) {
	cam := makeSensor("cam", core.SensorCamera, 0, 60)

	hidden := Compute([]core.Sensor{cam}, allLayers.With(core.SensorCamera, false), 400)
	assert.Equal(t, 0, hidden.Covered)

	disabled := Compute([]core.Sensor{cam.WithEnabled(false)}, allLayers, 400)
	assert.Equal(t, 0, disabled.Covered)
	assert.Equal(t, 400, disabled.Total)
}

func TestCoveredBySensor_Range(t *testing.T) {
	s := makeSensor("lidar", core.SensorLidar, 0, 360)
	s.RangeM = 5
	assert.True(t, CoveredBySensor(core.Vec2{X: 3, Y: 3}, s))
	assert.False(t, CoveredBySensor(core.Vec2{X: 10, Y: 0}, s))
}

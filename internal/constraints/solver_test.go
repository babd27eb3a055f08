package constraints

import (
	"testing"

	"github.com/sensorplan/engine/internal/geo"
	"github.com/sensorplan/engine/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	sedan  = core.MustVehicle(core.VehicleSedan)
	square = []core.Vec2{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}}
)

func sensorAt(id string, x, y, yaw float64) core.Sensor {
	return core.Sensor{
		ID:    id,
		Type:  core.SensorCamera,
		Label: id,
		Pose: core.Pose{
			Position:    core.Vec3{X: x, Y: y, Z: 1.3},
			Orientation: core.Orientation{YawDeg: yaw},
		},
		FOV:     core.FOV{HorizontalDeg: 120, VerticalDeg: core.Float(60)},
		RangeM:  120,
		Enabled: true,
	}
}

func TestBoundaryClamp_OutsideToCorner(t *testing.T) {
	s := sensorAt("outside", 10, 10, 0)
	clamped := BoundaryClamp(s, square)
	assert.InDelta(t, 1, clamped.Pose.Position.X, 1e-9)
	assert.InDelta(t, 1, clamped.Pose.Position.Y, 1e-9)
	assert.Equal(t, 1.3, clamped.Pose.Position.Z)
	assert.Equal(t, 10.0, s.Pose.Position.X, "input must not change")
}

func TestMinSpacing_SeparatesPair(t *testing.T) {
	a := sensorAt("a", 0, 0, 0)
	b := sensorAt("b", 0.05, 0.05, 0)

	out := MinSpacing([]core.Sensor{a, b}, sedan.FootprintPolygon, 0.2, true)
	require.Len(t, out, 2)
	assert.GreaterOrEqual(t, geo.Distance(out[0].Planar(), out[1].Planar()), 0.2-1e-9)
	assert.True(t, geo.PointInPolygon(out[0].Planar(), sedan.FootprintPolygon))
	assert.True(t, geo.PointInPolygon(out[1].Planar(), sedan.FootprintPolygon))
	assert.Equal(t, core.Vec2{}, a.Planar(), "input must not change")
}

func TestMinSpacing_NoChangeWhenFarOrCoincident(t *testing.T) {
	far := []core.Sensor{sensorAt("a", 0, 0, 0), sensorAt("b", 1, 0, 0)}
	assert.Equal(t, far, MinSpacing(far, sedan.FootprintPolygon, 0.15, true))

	same := []core.Sensor{sensorAt("a", 0.5, 0.5, 0), sensorAt("b", 0.5, 0.5, 0)}
	assert.Equal(t, same, MinSpacing(same, sedan.FootprintPolygon, 0.15, true))
}

func TestMinSpacing_ClampOnlyWhenEnabled(t *testing.T) {
	// pair straddling the front edge of the unit square
	a := sensorAt("a", 0.99, 0, 0)
	b := sensorAt("b", 0.95, 0, 0)

	free := MinSpacing([]core.Sensor{a, b}, square, 0.2, false)
	assert.Greater(t, free[0].Pose.Position.X, 1.0)

	clamped := MinSpacing([]core.Sensor{a, b}, square, 0.2, true)
	assert.LessOrEqual(t, clamped[0].Pose.Position.X, 1.0)
}

func TestMirrorPlacement_SynthesizesMirror(t *testing.T) {
	s := sensorAt("left", 0, 0.5, 30)
	s.MirrorGroup = "side"

	out := MirrorPlacement([]core.Sensor{s}, true)
	require.Len(t, out, 2)
	m := out[1]
	assert.Equal(t, "left-mirror", m.ID)
	assert.Equal(t, "left (Mirrored)", m.Label)
	assert.InDelta(t, -0.5, m.Pose.Position.Y, 1e-9)
	assert.Equal(t, -30.0, m.Pose.Orientation.YawDeg)
	assert.Equal(t, s.Pose.Position.X, m.Pose.Position.X)
	assert.Equal(t, s.Pose.Position.Z, m.Pose.Position.Z)
	assert.Equal(t, s.FOV, m.FOV)
	assert.Equal(t, s.RangeM, m.RangeM)
	assert.Equal(t, "side", m.MirrorGroup)
}

func TestMirrorPlacement_PairFollowsSource(t *testing.T) {
	src := sensorAt("left", 0.2, 0.4, 10)
	src.MirrorGroup = "side"
	dst := sensorAt("left-mirror", 0.2, -0.2, 0)
	dst.MirrorGroup = "side"
	dst.RangeM = 5
	dst.Label = "keep me"

	out := MirrorPlacement([]core.Sensor{src, dst}, true)
	require.Len(t, out, 2)
	right := out[1]
	assert.InDelta(t, -0.4, right.Pose.Position.Y, 1e-9)
	assert.Equal(t, -10.0, right.Pose.Orientation.YawDeg)
	assert.Equal(t, 120.0, right.RangeM)
	assert.Equal(t, "keep me", right.Label)
	assert.Equal(t, "left-mirror", right.ID)

	again := MirrorPlacement(out, true)
	assert.Equal(t, out, again)
}

func TestMirrorPlacement_LargerAbsYWins(t *testing.T) {
	a := sensorAt("a", 1, 0.1, 20)
	a.MirrorGroup = "g"
	b := sensorAt("b", 1, -0.7, -45)
	b.MirrorGroup = "g"

	out := MirrorPlacement([]core.Sensor{a, b}, true)
	assert.InDelta(t, 0.7, out[0].Pose.Position.Y, 1e-9)
	assert.Equal(t, 45.0, out[0].Pose.Orientation.YawDeg)
	assert.Equal(t, b, out[1])
}

func TestMirrorPlacement_Disabled(t *testing.T) {
	s := sensorAt("left", 0, 0.5, 30)
	s.MirrorGroup = "side"
	out := MirrorPlacement([]core.Sensor{s}, false)
	assert.Len(t, out, 1)
}

func TestEnforce_Pipeline(t *testing.T) {
	s := sensorAt("front", 9, 0.6, 15)
	s.MirrorGroup = "front"
	c := core.Constraints{BoundaryClamp: true, MinSpacingM: 0.15, MirrorPlacement: true}

	out := Enforce([]core.Sensor{s}, sedan, c)
	require.Len(t, out, 2)
	for _, o := range out {
		clamped := geo.ClampPointToPolygon(o.Planar(), sedan.FootprintPolygon)
		assert.InDelta(t, clamped.X, o.Pose.Position.X, 1e-9, o.ID)
		assert.InDelta(t, clamped.Y, o.Pose.Position.Y, 1e-9, o.ID)
	}
	assert.InDelta(t, -out[0].Pose.Position.Y, out[1].Pose.Position.Y, 1e-9)

	// a second pass keeps the pair stable
	assert.Equal(t, out, Enforce(out, sedan, c))
}

func TestEnforce_NoClamp(t *testing.T) {
	s := sensorAt("far", 9, 0, 0)
	out := Enforce([]core.Sensor{s}, sedan, core.Constraints{MinSpacingM: 0.15})
	assert.Equal(t, 9.0, out[0].Pose.Position.X)
	assert.Equal(t, []string{"far"}, OutsideFootprint(out, sedan))
}

func TestSpacingViolations(t *testing.T) {
	sensors := []core.Sensor{sensorAt("a", 0, 0, 0), sensorAt("b", 0.05, 0, 0), sensorAt("c", 1, 0, 0)}
	v := SpacingViolations(sensors, 0.15)
	require.Len(t, v, 1)
	assert.Equal(t, "a", v[0].A)
	assert.Equal(t, "b", v[0].B)
}

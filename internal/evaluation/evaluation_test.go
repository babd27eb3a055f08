package evaluation

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/sensorplan/engine/internal/geo"
	"github.com/sensorplan/engine/internal/preset"
	"github.com/sensorplan/engine/internal/state"
	"github.com/sensorplan/engine/pkg/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var anchor = geo.Anchor{Longitude: 13.4, Latitude: 52.5, HeadingDeg: 90}

func ncapState() state.State {
	return state.Reduce(state.New(time.Now()), state.ApplyPreset{Preset: preset.NCAP})
}

func TestEvaluate(t *testing.T) {
	s := ncapState()
	r := Evaluate(s)

	assert.Equal(t, "ncap", r.PresetID)
	assert.Equal(t, core.VehicleSedan, r.Vehicle)
	assert.Equal(t, 22, r.Sensors)
	assert.Equal(t, 22, r.EnabledSensors)
	assert.InDelta(t, 4.6*1.8+0.18, r.FootprintAreaM2, 1e-9)
	assert.Equal(t, 45*45, r.Coverage.Samples)
	assert.Greater(t, r.Coverage.Ratio, 0.0)
	assert.LessOrEqual(t, r.Coverage.ByType[core.SensorCamera], r.Coverage.Ratio)
	assert.NotEmpty(t, r.Overlaps)
	assert.Len(t, r.Scenarios, 2)
}

func TestEvaluate_PerformanceCap(t *testing.T) {
	s := ncapState()
	settings := s.Settings
	settings.PerformanceMode = true
	s = state.Reduce(s, state.SetSettings{Settings: settings})

	r := Evaluate(s)
	assert.Equal(t, 29*29, r.Coverage.Samples)
}

func TestEvaluate_SpacingViolations(t *testing.T) {
	s := state.New(time.Now())
	s.Constraints.MinSpacingM = 0.2
	s.Sensors = []core.Sensor{
		{ID: "a", Type: core.SensorRadar, Enabled: true, RangeM: 10, FOV: core.FOV{HorizontalDeg: 60}},
		{ID: "b", Type: core.SensorRadar, Enabled: false, RangeM: 10, FOV: core.FOV{HorizontalDeg: 60},
			Pose: core.Pose{Position: core.Vec3{X: 0.1}}},
		{ID: "c", Type: core.SensorRadar, Enabled: true, RangeM: 10, FOV: core.FOV{HorizontalDeg: 60},
			Pose: core.Pose{Position: core.Vec3{X: 10}}},
	}

	r := Evaluate(s)
	assert.Equal(t, 2, r.EnabledSensors)
	require.Len(t, r.SpacingViolations, 1)
	assert.Equal(t, "a", r.SpacingViolations[0].A)
	assert.Equal(t, "b", r.SpacingViolations[0].B)
	assert.Equal(t, []string{"c"}, r.OutsideFootprint)
}

func TestOverlay(t *testing.T) {
	s := ncapState()
	scenarios := s.Scenarios
	scenarios.Pedestrian.Enabled = true
	s = state.Reduce(s, state.SetScenarios{Scenarios: scenarios})
	s = state.Reduce(s, state.SetLayers{Layers: s.Layers.With(core.SensorUltrasonic, false)})

	fc := Overlay(s, anchor)
	// vehicle + 10 visible sensors + pedestrian line and marker
	require.Len(t, fc, 13)
	assert.Equal(t, "vehicle", fc[0].ID)
	assert.Equal(t, "scenario-pedestrian", fc[len(fc)-2].ID)
	assert.Equal(t, "scenario-pedestrian-marker", fc[len(fc)-1].ID)

	marker, ok := fc[len(fc)-1].Geometry.AsPoint()
	require.True(t, ok)
	want := anchor.PointLonLat(core.Vec2{X: s.Scenarios.Pedestrian.CrossingDistanceM})
	assert.True(t, geom.ExactEquals(marker.AsGeometry(), want.AsGeometry()))

	data, err := OverlayJSON(s, anchor)
	require.NoError(t, err)
	var doc struct {
		Type     string `json:"type"`
		Features []struct {
			ID       string `json:"id"`
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "FeatureCollection", doc.Type)
	assert.Equal(t, "Polygon", doc.Features[0].Geometry.Type)
	assert.Equal(t, "LineString", doc.Features[len(doc.Features)-2].Geometry.Type)
	assert.Equal(t, "Point", doc.Features[len(doc.Features)-1].Geometry.Type)
}

func TestOverlay_AnchorPlacement(t *testing.T) {
	s := state.New(time.Now())
	fc := Overlay(s, anchor)
	require.Len(t, fc, 1)

	center, ok := fc[0].Geometry.Centroid().XY()
	require.True(t, ok)
	assert.InDelta(t, 13.4, center.X, 1e-4)
	assert.InDelta(t, 52.5, center.Y, 1e-4)

	// heading east: the bumper lies east of the origin at the same latitude
	lon, lat := anchor.ToLonLat(core.Vec2{X: 2.4})
	assert.Greater(t, lon, 13.4)
	assert.InDelta(t, 52.5, lat, 1e-7)
}

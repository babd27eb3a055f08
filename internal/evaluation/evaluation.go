// Package evaluation runs every analysis over a state and renders the
// layout as a geo-referenced overlay.
package evaluation

import (
	"fmt"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/sensorplan/engine/internal/constraints"
	"github.com/sensorplan/engine/internal/coverage"
	"github.com/sensorplan/engine/internal/geo"
	"github.com/sensorplan/engine/internal/overlap"
	"github.com/sensorplan/engine/internal/scenario"
	"github.com/sensorplan/engine/internal/state"
	"github.com/sensorplan/engine/pkg/core"
)

// CoverageSummary is a coverage run without the sample points.
type CoverageSummary struct {
	Samples int                         `json:"samples"`
	Covered int                         `json:"covered"`
	Ratio   float64                     `json:"ratio"`
	ByType  map[core.SensorType]float64 `json:"byType"`
}

// Report is the outcome of all analyses for one state.
type Report struct {
	PresetID          string                         `json:"presetId"`
	Vehicle           core.VehicleType               `json:"vehicle"`
	FootprintAreaM2   float64                        `json:"footprintAreaM2"`
	Sensors           int                            `json:"sensors"`
	EnabledSensors    int                            `json:"enabledSensors"`
	Coverage          CoverageSummary                `json:"coverage"`
	Overlaps          []overlap.Pair                 `json:"overlaps"`
	Scenarios         []scenario.Result              `json:"scenarios"`
	OutsideFootprint  []string                       `json:"outsideFootprint"`
	SpacingViolations []constraints.SpacingViolation `json:"spacingViolations"`
}

func summarize(r coverage.Result) CoverageSummary {
	out := CoverageSummary{
		Samples: r.Total,
		Covered: r.Covered,
		Ratio:   r.Ratio(),
		ByType:  make(map[core.SensorType]float64, len(core.SensorTypes)),
	}
	for _, t := range core.SensorTypes {
		out.ByType[t] = r.TypeRatio(t)
	}
	return out
}

// Coverage runs the coverage sampler with the effective sample count.
func Coverage(s state.State) CoverageSummary {
	return summarize(coverage.Compute(s.Sensors, s.Layers, s.Settings.EffectiveCoverageSamples()))
}

// Evaluate runs coverage with the effective sample count, overlap
// detection, both scenarios and the placement diagnostics.
func Evaluate(s state.State) Report {
	enabled := 0
	for _, sensor := range s.Sensors {
		if sensor.Enabled {
			enabled++
		}
	}
	return Report{
		PresetID:          s.Meta.PresetID,
		Vehicle:           s.Vehicle.Type,
		FootprintAreaM2:   geo.PolygonArea(s.Vehicle.FootprintPolygon),
		Sensors:           len(s.Sensors),
		EnabledSensors:    enabled,
		Coverage:          Coverage(s),
		Overlaps:          overlap.Detect(s.Sensors),
		Scenarios:         scenario.Evaluate(s.Sensors, s.Layers, s.Scenarios),
		OutsideFootprint:  constraints.OutsideFootprint(s.Sensors, s.Vehicle),
		SpacingViolations: constraints.SpacingViolations(s.Sensors, s.Constraints.MinSpacingM),
	}
}

func feature(g geom.Geometry, id string, props map[string]any) geom.GeoJSONFeature {
	return geom.GeoJSONFeature{Geometry: g, ID: id, Properties: props}
}

// Overlay builds a GeoJSON feature collection of the vehicle outline, the
// wedge of every visible enabled sensor and the enabled scenario lines with
// their markers,
// placed on the globe at anchor.
func Overlay(s state.State, anchor geo.Anchor) geom.GeoJSONFeatureCollection {
	involved := map[string]bool{}
	if s.Layers.OverlapHighlight {
		involved = overlap.Involving(overlap.Detect(s.Sensors))
	}

	fc := geom.GeoJSONFeatureCollection{
		feature(anchor.PolygonLonLat(s.Vehicle.FootprintPolygon).AsGeometry(), "vehicle", map[string]any{
			"kind":        "vehicle",
			"vehicleType": string(s.Vehicle.Type),
		}),
	}
	for _, sensor := range s.Sensors {
		if !sensor.Enabled || !s.Layers.Active(sensor.Type) {
			continue
		}
		fc = append(fc, feature(anchor.PolygonLonLat(geo.SensorWedge(sensor).Polygon()).AsGeometry(), sensor.ID, map[string]any{
			"kind":          "sensor",
			"label":         sensor.Label,
			"sensorType":    string(sensor.Type),
			"rangeM":        sensor.RangeM,
			"horizontalDeg": sensor.FOV.HorizontalDeg,
			"overlapping":   involved[sensor.ID],
		}))
	}

	results := scenario.Evaluate(s.Sensors, s.Layers, s.Scenarios)
	for _, r := range results {
		if !r.Enabled {
			continue
		}
		lon0, lat0 := anchor.ToLonLat(r.Path.Line[0])
		lon1, lat1 := anchor.ToLonLat(r.Path.Line[1])
		line := geom.NewLineString(geom.NewSequence([]float64{lon0, lat0, lon1, lat1}, geom.DimXY))
		fc = append(fc, feature(line.AsGeometry(), fmt.Sprintf("scenario-%s", r.Kind), map[string]any{
			"kind":    "scenario",
			"covered": r.Covered,
		}))
		marker := core.Vec2{X: r.Path.Marker.X, Y: r.Path.Marker.Y}
		fc = append(fc, feature(anchor.PointLonLat(marker).AsGeometry(), fmt.Sprintf("scenario-%s-marker", r.Kind), map[string]any{
			"kind":    "marker",
			"covered": r.Covered,
		}))
	}
	return fc
}

// OverlayJSON encodes Overlay as GeoJSON.
func OverlayJSON(s state.State, anchor geo.Anchor) ([]byte, error) {
	data, err := Overlay(s, anchor).MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode overlay: %w", err)
	}
	return data, nil
}

// Package state holds the application snapshot and the single update
// function that moves it from one snapshot to the next.
package state

import (
	"time"

	"github.com/sensorplan/engine/internal/catalog"
	"github.com/sensorplan/engine/internal/constraints"
	"github.com/sensorplan/engine/internal/preset"
	"github.com/sensorplan/engine/pkg/core"
)

// Snapshot is the persisted part of the state.
type Snapshot struct {
	SchemaVersion string               `json:"schemaVersion"`
	Meta          core.Meta            `json:"meta"`
	Vehicle       core.VehicleTemplate `json:"vehicle"`
	Constraints   core.Constraints     `json:"constraints"`
	Layers        core.Layers          `json:"layers"`
	Settings      core.Settings        `json:"settings"`
	Scenarios     core.Scenarios       `json:"scenarios"`
	Vendors       core.VendorSelection `json:"vendors"`
	Sensors       []core.Sensor        `json:"sensors"`
}

// State is the full application state. SelectedSensorID and Error are
// transient and never persisted.
type State struct {
	Snapshot
	SelectedSensorID string
	Error            string
}

// DefaultConstraints are the constraints of a fresh state.
func DefaultConstraints() core.Constraints {
	return core.Constraints{BoundaryClamp: true, MinSpacingM: 0.15, MirrorPlacement: false}
}

// DefaultLayers shows every sensor type.
func DefaultLayers() core.Layers {
	return core.Layers{Camera: true, Radar: true, Ultrasonic: true, Lidar: true, OverlapHighlight: true}
}

// DefaultSettings are the analysis settings of a fresh state.
func DefaultSettings() core.Settings {
	return core.Settings{
		EnableViewEditing:   false,
		PerformanceMode:     false,
		PointCount:          5000,
		CoverageSampleCount: 2000,
		ShowCoverageHeatmap: false,
	}
}

// DefaultScenarios places both probes ahead of the vehicle, disabled.
func DefaultScenarios() core.Scenarios {
	return core.Scenarios{
		Pedestrian:   core.PedestrianScenario{Enabled: false, CrossingDistanceM: 20, SpeedMps: 1.4},
		Intersection: core.IntersectionScenario{Enabled: false, CenterDistanceM: 25, SpeedMps: 10},
	}
}

// New returns the initial state: a sedan with no sensors.
func New(now time.Time) State {
	return State{
		Snapshot: Snapshot{
			SchemaVersion: core.SchemaVersion,
			Meta:          core.Meta{CreatedAt: now.UTC().Format(time.RFC3339Nano)},
			Vehicle:       core.MustVehicle(core.VehicleSedan),
			Constraints:   DefaultConstraints(),
			Layers:        DefaultLayers(),
			Settings:      DefaultSettings(),
			Scenarios:     DefaultScenarios(),
			Vendors:       catalog.DefaultSelection(),
			Sensors:       []core.Sensor{},
		},
	}
}

// Action is one discrete user action.
type Action interface {
	isAction()
}

type (
	// SetVehicle swaps the vehicle template.
	SetVehicle struct{ Vehicle core.VehicleTemplate }
	// ApplyPreset replaces the layout with a preset and its vendors.
	ApplyPreset struct{ Preset preset.ID }
	// UpdateSensor replaces the sensor with the same id.
	UpdateSensor struct{ Sensor core.Sensor }
	// SelectSensor changes the selection; an empty id clears it.
	SelectSensor struct{ ID string }
	// SetConstraints replaces the solver settings.
	SetConstraints struct{ Constraints core.Constraints }
	// SetLayers replaces the display filter.
	SetLayers struct{ Layers core.Layers }
	// SetSettings replaces the analysis settings.
	SetSettings struct{ Settings core.Settings }
	// SetScenarios replaces the scenario settings.
	SetScenarios struct{ Scenarios core.Scenarios }
	// SetVendors changes vendor selection and rebinds affected sensors.
	SetVendors struct{ Vendors core.VendorSelection }
	// ImportState replaces the persisted part of the state.
	ImportState struct{ Snapshot Snapshot }
	// SetError records a user-facing error; an empty message clears it.
	SetError struct{ Message string }
)

func (SetVehicle) isAction()     {}
func (ApplyPreset) isAction()    {}
func (UpdateSensor) isAction()   {}
func (SelectSensor) isAction()   {}
func (SetConstraints) isAction() {}
func (SetLayers) isAction()      {}
func (SetSettings) isAction()    {}
func (SetScenarios) isAction()   {}
func (SetVendors) isAction()     {}
func (ImportState) isAction()    {}
func (SetError) isAction()       {}

func firstID(sensors []core.Sensor) string {
	if len(sensors) == 0 {
		return ""
	}
	return sensors[0].ID
}

// Reduce applies a to s and returns the next state. Every action that can
// move sensors re-runs the constraint solver. A preset that references a
// missing catalog entry is a programming error and panics.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case SetVehicle:
		s.Vehicle = a.Vehicle
		s.Sensors = constraints.Enforce(s.Sensors, s.Vehicle, s.Constraints)
	case ApplyPreset:
		vendors := preset.Vendors(a.Preset)
		sensors := preset.MustAssemble(catalog.Default(), a.Preset, s.Vehicle, vendors)
		s.Sensors = constraints.Enforce(sensors, s.Vehicle, s.Constraints)
		s.Vendors = vendors
		s.Meta.PresetID = string(a.Preset)
		s.SelectedSensorID = firstID(s.Sensors)
	case UpdateSensor:
		sensors := core.CloneSensors(s.Sensors)
		for i := range sensors {
			if sensors[i].ID == a.Sensor.ID {
				sensors[i] = a.Sensor
			}
		}
		s.Sensors = constraints.Enforce(sensors, s.Vehicle, s.Constraints)
	case SelectSensor:
		s.SelectedSensorID = a.ID
	case SetConstraints:
		s.Constraints = a.Constraints
		s.Sensors = constraints.Enforce(s.Sensors, s.Vehicle, s.Constraints)
	case SetLayers:
		s.Layers = a.Layers
	case SetSettings:
		s.Settings = a.Settings
	case SetScenarios:
		s.Scenarios = a.Scenarios
	case SetVendors:
		changed := s.Vendors.Changed(a.Vendors)
		s.Vendors = a.Vendors
		if len(changed) > 0 {
			sensors := catalog.ApplyVendorSpecs(s.Sensors, s.Vendors, changed...)
			s.Sensors = constraints.Enforce(sensors, s.Vehicle, s.Constraints)
		}
	case ImportState:
		s.Snapshot = a.Snapshot
		s.Sensors = constraints.Enforce(a.Snapshot.Sensors, a.Snapshot.Vehicle, a.Snapshot.Constraints)
		s.SelectedSensorID = firstID(s.Sensors)
		s.Error = ""
	case SetError:
		s.Error = a.Message
	}
	return s
}

// Selected returns the selected sensor, if any.
func (s State) Selected() (core.Sensor, bool) {
	if s.SelectedSensorID == "" {
		return core.Sensor{}, false
	}
	return core.FindSensor(s.Sensors, s.SelectedSensorID)
}

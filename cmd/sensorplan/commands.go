package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sensorplan/engine/internal/catalog"
	"github.com/sensorplan/engine/internal/config"
	"github.com/sensorplan/engine/internal/dispatcher"
	"github.com/sensorplan/engine/internal/evaluation"
	"github.com/sensorplan/engine/internal/geo"
	"github.com/sensorplan/engine/internal/overlap"
	"github.com/sensorplan/engine/internal/pointcloud"
	"github.com/sensorplan/engine/internal/preset"
	"github.com/sensorplan/engine/internal/scenario"
	"github.com/sensorplan/engine/internal/serialization"
	"github.com/sensorplan/engine/internal/state"
	"github.com/sensorplan/engine/internal/storage"
	"github.com/sensorplan/engine/internal/util"
	"github.com/sensorplan/engine/pkg/core"
)

// evaluationSink receives evaluation reports, see influx.Manager.
type evaluationSink interface {
	WriteEvaluation(layout string, r evaluation.Report, ts time.Time) error
}

// app holds the session state the command handlers work on.
type app struct {
	state   state.State
	store   storage.Backend
	metrics evaluationSink
	anchor  geo.Anchor
	now     func() time.Time

	// name of the layout last saved or loaded
	layout string

	usage map[string]string
}

// status is the result of the status command.
type status struct {
	PresetID  string               `json:"presetId"`
	Vehicle   core.VehicleType     `json:"vehicle"`
	Layout    string               `json:"layout,omitempty"`
	Selected  string               `json:"selected,omitempty"`
	Error     string               `json:"error,omitempty"`
	Vendors   core.VendorSelection `json:"vendors"`
	Overlaps  int                  `json:"overlaps"`
	Sensors   []sensorLine         `json:"sensors"`
	Selection *core.Sensor         `json:"selection,omitempty"`
}

type sensorLine struct {
	ID      string          `json:"id"`
	Type    core.SensorType `json:"type"`
	Enabled bool            `json:"enabled"`
	X       float64         `json:"x"`
	Y       float64         `json:"y"`
	Z       float64         `json:"z"`
	YawDeg  float64         `json:"yawDeg"`
}

// pointCloudSummary is the result of the pointcloud command.
type pointCloudSummary struct {
	Sensor     string  `json:"sensor"`
	Points     int     `json:"points"`
	RangeM     float64 `json:"rangeM"`
	MaxRadiusM float64 `json:"maxRadiusM"`
}

func (a *app) dispatch(act state.Action) {
	a.state = state.Reduce(a.state, act)
}

// applyAnalysisDefaults copies configured analysis settings into the state.
func (a *app) applyAnalysisDefaults(cfg config.AnalysisConfig) {
	settings := a.state.Settings
	if cfg.CoverageSampleCount > 0 {
		settings.CoverageSampleCount = cfg.CoverageSampleCount
	}
	if cfg.PointCount > 0 {
		settings.PointCount = cfg.PointCount
	}
	settings.PerformanceMode = cfg.PerformanceMode
	a.dispatch(state.SetSettings{Settings: settings})
}

type command struct {
	name    string
	usage   string
	handler dispatcher.HandlerFunc
}

// commands is the command table. usage doubles as the help text and as the
// message of argument count errors.
func (a *app) commands() []command {
	return []command{
		{"status", "", a.handleStatus},
		{"preset", "<tesla-fsd|ncap|robotaxi>", a.handlePreset},
		{"vehicle", "<sedan|hatchback|suv>", a.handleVehicle},
		{"vendor", "[type [vendor]]", a.handleVendor},
		{"constraints", "[clamp|spacing|mirror <value>]", a.handleConstraints},
		{"layer", "[camera|radar|ultrasonic|lidar|overlap <on|off>]", a.handleLayer},
		{"settings", "[viewediting|performance|heatmap|points|samples <value>]", a.handleSettings},
		{"move", "<sensor> <x,y,z>", a.handleMove},
		{"rotate", "<sensor> <yaw,pitch,roll>", a.handleRotate},
		{"drag", "<top|side> <sensor> <a,b>", a.handleDrag},
		{"enable", "<sensor>", a.handleEnable(true)},
		{"disable", "<sensor>", a.handleEnable(false)},
		{"select", "[sensor]", a.handleSelect},
		{"scenario", "[pedestrian|intersection <on|off> [distanceM] [speedMps]]", a.handleScenario},
		{"coverage", "", a.handleCoverage},
		{"overlaps", "", a.handleOverlaps},
		{"scenarios", "", a.handleScenarios},
		{"report", "[name]", a.handleReport},
		{"pointcloud", "[sensor]", a.handlePointCloud},
		{"export", "[file]", a.handleExport},
		{"import", "<file>", a.handleImport},
		{"save", "<name>", a.handleSave},
		{"load", "<name|id>", a.handleLoad},
		{"list", "[sensorType]", a.handleList},
		{"sensors", "<name|id>", a.handleStoredSensors},
		{"delete", "<name|id>", a.handleDelete},
		{"geojson", "[file]", a.handleGeoJSON},
		{"wkt", "[sensor]", a.handleWKT},
	}
}

// register wires every command to the dispatcher.
func (a *app) register(d *dispatcher.Dispatcher) {
	a.usage = make(map[string]string)
	for _, c := range a.commands() {
		a.usage[c.name] = c.usage
		d.Register(c.name, c.handler, dispatcher.Usage(c.usage), dispatcher.Logged())
	}
	d.Register("help", func(dispatcher.Event) (any, error) {
		var b strings.Builder
		for _, cmd := range d.Commands() {
			line, _ := d.Usage(cmd)
			b.WriteString(line)
			b.WriteByte('\n')
		}
		return strings.TrimSuffix(b.String(), "\n"), nil
	})
}

func (a *app) wantArgs(e dispatcher.Event, min int) error {
	if len(e.Args) < min {
		return fmt.Errorf("usage: %s %s", e.Command, a.usage[e.Command])
	}
	return nil
}

func (a *app) sensor(id string) (core.Sensor, error) {
	s, ok := core.FindSensor(a.state.Sensors, id)
	if !ok {
		return core.Sensor{}, fmt.Errorf("unknown sensor: %s", id)
	}
	return s, nil
}

func parseSensorType(v string) (core.SensorType, error) {
	t := core.SensorType(strings.ToLower(v))
	if !t.Valid() {
		return "", fmt.Errorf("unknown sensor type: %s", v)
	}
	return t, nil
}

func (a *app) handleStatus(dispatcher.Event) (any, error) {
	st := status{
		PresetID: a.state.Meta.PresetID,
		Vehicle:  a.state.Vehicle.Type,
		Layout:   a.layout,
		Selected: a.state.SelectedSensorID,
		Error:    a.state.Error,
		Vendors:  a.state.Vendors,
		Overlaps: len(overlap.Detect(a.state.Sensors)),
		Sensors:  make([]sensorLine, len(a.state.Sensors)),
	}
	for i, s := range a.state.Sensors {
		st.Sensors[i] = sensorLine{
			ID:      s.ID,
			Type:    s.Type,
			Enabled: s.Enabled,
			X:       s.Pose.Position.X,
			Y:       s.Pose.Position.Y,
			Z:       s.Pose.Position.Z,
			YawDeg:  s.Pose.Orientation.YawDeg,
		}
	}
	if sel, ok := a.state.Selected(); ok {
		st.Selection = &sel
	}
	return st, nil
}

func (a *app) handlePreset(e dispatcher.Event) (any, error) {
	if err := a.wantArgs(e, 1); err != nil {
		return nil, err
	}
	id, err := preset.ParseID(strings.ToLower(e.Args[0]))
	if err != nil {
		return nil, err
	}
	a.dispatch(state.ApplyPreset{Preset: id})
	return fmt.Sprintf("applied preset %s: %d sensors", id, len(a.state.Sensors)), nil
}

func (a *app) handleVehicle(e dispatcher.Event) (any, error) {
	if err := a.wantArgs(e, 1); err != nil {
		return nil, err
	}
	v, err := core.Vehicle(core.VehicleType(strings.ToLower(e.Args[0])))
	if err != nil {
		return nil, err
	}
	a.dispatch(state.SetVehicle{Vehicle: v})
	return fmt.Sprintf("vehicle %s (%.2f x %.2f m)", v.Type, v.Dimensions.Length, v.Dimensions.Width), nil
}

func (a *app) handleVendor(e dispatcher.Event) (any, error) {
	if len(e.Args) == 0 {
		return a.state.Vendors, nil
	}
	t, err := parseSensorType(e.Args[0])
	if err != nil {
		return nil, err
	}
	if len(e.Args) == 1 {
		return catalog.VendorOptions(t), nil
	}
	vendorID := strings.ToLower(e.Args[1])
	if !catalog.Default().HasVendor(t, vendorID) {
		return nil, fmt.Errorf("unknown %s vendor: %s", t, vendorID)
	}
	a.dispatch(state.SetVendors{Vendors: a.state.Vendors.With(t, vendorID)})
	return fmt.Sprintf("%s vendor set to %s", t, vendorID), nil
}

func (a *app) handleConstraints(e dispatcher.Event) (any, error) {
	if len(e.Args) == 0 {
		return a.state.Constraints, nil
	}
	if err := a.wantArgs(e, 2); err != nil {
		return nil, err
	}
	c := a.state.Constraints
	switch strings.ToLower(e.Args[0]) {
	case "clamp":
		on, err := util.ParseSwitch(e.Args[1])
		if err != nil {
			return nil, err
		}
		c.BoundaryClamp = on
	case "mirror":
		on, err := util.ParseSwitch(e.Args[1])
		if err != nil {
			return nil, err
		}
		c.MirrorPlacement = on
	case "spacing":
		m, err := strconv.ParseFloat(e.Args[1], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid spacing %q: %w", e.Args[1], err)
		}
		c = c.WithMinSpacing(m)
	default:
		return nil, fmt.Errorf("unknown constraint: %s", e.Args[0])
	}
	a.dispatch(state.SetConstraints{Constraints: c})
	return a.state.Constraints, nil
}

func (a *app) handleLayer(e dispatcher.Event) (any, error) {
	if len(e.Args) == 0 {
		return a.state.Layers, nil
	}
	if err := a.wantArgs(e, 2); err != nil {
		return nil, err
	}
	on, err := util.ParseSwitch(e.Args[1])
	if err != nil {
		return nil, err
	}
	layers := a.state.Layers
	if strings.EqualFold(e.Args[0], "overlap") {
		layers.OverlapHighlight = on
	} else {
		t, err := parseSensorType(e.Args[0])
		if err != nil {
			return nil, err
		}
		layers = layers.With(t, on)
	}
	a.dispatch(state.SetLayers{Layers: layers})
	return a.state.Layers, nil
}

func (a *app) handleSettings(e dispatcher.Event) (any, error) {
	if len(e.Args) == 0 {
		return a.state.Settings, nil
	}
	if err := a.wantArgs(e, 2); err != nil {
		return nil, err
	}
	s := a.state.Settings
	switch key := strings.ToLower(e.Args[0]); key {
	case "viewediting", "performance", "heatmap":
		on, err := util.ParseSwitch(e.Args[1])
		if err != nil {
			return nil, err
		}
		switch key {
		case "viewediting":
			s.EnableViewEditing = on
		case "performance":
			s.PerformanceMode = on
		default:
			s.ShowCoverageHeatmap = on
		}
	case "points", "samples":
		n, err := strconv.Atoi(e.Args[1])
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("expected a positive count, got %q", e.Args[1])
		}
		if key == "points" {
			s.PointCount = n
		} else {
			s.CoverageSampleCount = n
		}
	default:
		return nil, fmt.Errorf("unknown setting: %s", e.Args[0])
	}
	a.dispatch(state.SetSettings{Settings: s})
	return a.state.Settings, nil
}

func (a *app) updated(id string) (any, error) {
	s, _ := core.FindSensor(a.state.Sensors, id)
	return s, nil
}

func (a *app) handleMove(e dispatcher.Event) (any, error) {
	if err := a.wantArgs(e, 2); err != nil {
		return nil, err
	}
	s, err := a.sensor(e.Args[0])
	if err != nil {
		return nil, err
	}
	v, err := util.ParseFloats(e.Args[1], 3)
	if err != nil {
		return nil, err
	}
	a.dispatch(state.UpdateSensor{Sensor: s.WithPosition(core.Vec3{X: v[0], Y: v[1], Z: v[2]})})
	return a.updated(s.ID)
}

func (a *app) handleRotate(e dispatcher.Event) (any, error) {
	if err := a.wantArgs(e, 2); err != nil {
		return nil, err
	}
	s, err := a.sensor(e.Args[0])
	if err != nil {
		return nil, err
	}
	v, err := util.ParseFloats(e.Args[1], 3)
	if err != nil {
		return nil, err
	}
	o := core.Orientation{YawDeg: v[0], PitchDeg: v[1], RollDeg: v[2]}
	a.dispatch(state.UpdateSensor{Sensor: s.WithOrientation(o)})
	return a.updated(s.ID)
}

// handleDrag emulates dragging a sensor in the top (x,y) or side (x,z) view.
func (a *app) handleDrag(e dispatcher.Event) (any, error) {
	if err := a.wantArgs(e, 3); err != nil {
		return nil, err
	}
	if !a.state.Settings.EnableViewEditing {
		return nil, errors.New("view editing is disabled, enable it with: settings viewediting on")
	}
	s, err := a.sensor(e.Args[1])
	if err != nil {
		return nil, err
	}
	v, err := util.ParseFloats(e.Args[2], 2)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(e.Args[0]) {
	case "top":
		s = core.ApplyTopViewDrag(s, core.Vec2{X: v[0], Y: v[1]})
	case "side":
		s = core.ApplySideViewDrag(s, v[0], v[1])
	default:
		return nil, fmt.Errorf("unknown view: %s", e.Args[0])
	}
	a.dispatch(state.UpdateSensor{Sensor: s})
	return a.updated(s.ID)
}

func (a *app) handleEnable(enabled bool) dispatcher.HandlerFunc {
	return func(e dispatcher.Event) (any, error) {
		if err := a.wantArgs(e, 1); err != nil {
			return nil, err
		}
		s, err := a.sensor(e.Args[0])
		if err != nil {
			return nil, err
		}
		a.dispatch(state.UpdateSensor{Sensor: s.WithEnabled(enabled)})
		return a.updated(s.ID)
	}
}

func (a *app) handleSelect(e dispatcher.Event) (any, error) {
	if len(e.Args) == 0 {
		a.dispatch(state.SelectSensor{})
		return "selection cleared", nil
	}
	s, err := a.sensor(e.Args[0])
	if err != nil {
		return nil, err
	}
	a.dispatch(state.SelectSensor{ID: s.ID})
	return s, nil
}

func (a *app) handleScenario(e dispatcher.Event) (any, error) {
	if len(e.Args) == 0 {
		return a.state.Scenarios, nil
	}
	if err := a.wantArgs(e, 2); err != nil {
		return nil, err
	}
	on, err := util.ParseSwitch(e.Args[1])
	if err != nil {
		return nil, err
	}
	var extra []float64
	for _, arg := range e.Args[2:] {
		v, err := strconv.ParseFloat(arg, 64)
		if err != nil || v <= 0 {
			return nil, fmt.Errorf("expected a positive number, got %q", arg)
		}
		extra = append(extra, v)
	}

	sc := a.state.Scenarios
	switch scenario.Kind(strings.ToLower(e.Args[0])) {
	case scenario.Pedestrian:
		sc.Pedestrian.Enabled = on
		if len(extra) > 0 {
			sc.Pedestrian.CrossingDistanceM = extra[0]
		}
		if len(extra) > 1 {
			sc.Pedestrian.SpeedMps = extra[1]
		}
	case scenario.Intersection:
		sc.Intersection.Enabled = on
		if len(extra) > 0 {
			sc.Intersection.CenterDistanceM = extra[0]
		}
		if len(extra) > 1 {
			sc.Intersection.SpeedMps = extra[1]
		}
	default:
		return nil, fmt.Errorf("unknown scenario: %s", e.Args[0])
	}
	a.dispatch(state.SetScenarios{Scenarios: sc})
	return a.state.Scenarios, nil
}

func (a *app) handleCoverage(dispatcher.Event) (any, error) {
	return evaluation.Coverage(a.state), nil
}

func (a *app) handleOverlaps(dispatcher.Event) (any, error) {
	pairs := overlap.Detect(a.state.Sensors)
	if pairs == nil {
		pairs = []overlap.Pair{}
	}
	return pairs, nil
}

func (a *app) handleScenarios(dispatcher.Event) (any, error) {
	return scenario.Evaluate(a.state.Sensors, a.state.Layers, a.state.Scenarios), nil
}

func (a *app) handleReport(e dispatcher.Event) (any, error) {
	r := evaluation.Evaluate(a.state)
	if a.metrics != nil {
		name := a.layout
		if len(e.Args) > 0 {
			name = e.Args[0]
		}
		if err := a.metrics.WriteEvaluation(name, r, a.now()); err != nil {
			Logger.Error("Failed to record evaluation", "error", err)
		}
	}
	return r, nil
}

func (a *app) handlePointCloud(e dispatcher.Event) (any, error) {
	var s core.Sensor
	var ok bool
	if len(e.Args) > 0 {
		var err error
		if s, err = a.sensor(e.Args[0]); err != nil {
			return nil, err
		}
		ok = true
	} else {
		s, ok = a.state.Selected()
	}
	if !ok {
		return nil, errors.New("no sensor selected")
	}
	if s.Type != core.SensorLidar {
		return nil, fmt.Errorf("sensor %s is a %s, point clouds need a lidar", s.ID, s.Type)
	}

	points := pointcloud.Generate(s, a.state.Settings.EffectivePointCount())
	return pointCloudSummary{
		Sensor:     s.ID,
		Points:     len(points) / 3,
		RangeM:     s.RangeM,
		MaxRadiusM: pointcloud.MaxRadius(points),
	}, nil
}

func (a *app) handleExport(e dispatcher.Event) (any, error) {
	data, err := serialization.Marshal(a.state)
	if err != nil {
		return nil, fmt.Errorf("failed to export layout: %w", err)
	}
	if len(e.Args) == 0 {
		return data, nil
	}
	if err := os.WriteFile(e.Args[0], data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", e.Args[0], err)
	}
	return fmt.Sprintf("exported %d sensors to %s", len(a.state.Sensors), e.Args[0]), nil
}

// importDocument validates raw and replaces the state. A rejected document
// is recorded as the state error and leaves the layout untouched.
func (a *app) importDocument(raw []byte) error {
	snap, err := serialization.Import(raw)
	if err != nil {
		a.dispatch(state.SetError{Message: err.Error()})
		return err
	}
	a.dispatch(state.ImportState{Snapshot: snap})
	return nil
}

func (a *app) handleImport(e dispatcher.Event) (any, error) {
	if err := a.wantArgs(e, 1); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(e.Args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", e.Args[0], err)
	}
	if err := a.importDocument(raw); err != nil {
		return nil, err
	}
	return fmt.Sprintf("imported %d sensors", len(a.state.Sensors)), nil
}

func (a *app) handleSave(e dispatcher.Event) (any, error) {
	if err := a.wantArgs(e, 1); err != nil {
		return nil, err
	}
	data, err := serialization.Marshal(a.state)
	if err != nil {
		return nil, fmt.Errorf("failed to export layout: %w", err)
	}
	l := &core.Layout{
		LayoutSummary: core.LayoutSummary{
			Name:        e.Args[0],
			PresetID:    a.state.Meta.PresetID,
			VehicleType: a.state.Vehicle.Type,
			SensorCount: len(a.state.Sensors),
		},
		Document: data,
	}
	if err := a.store.SaveLayout(l); err != nil {
		return nil, err
	}
	a.layout = l.Name
	return l.LayoutSummary, nil
}

func (a *app) handleLoad(e dispatcher.Event) (any, error) {
	if err := a.wantArgs(e, 1); err != nil {
		return nil, err
	}
	l, err := a.store.LoadLayout(e.Args[0])
	if err != nil {
		return nil, err
	}
	if err := a.importDocument(l.Document); err != nil {
		return nil, fmt.Errorf("layout %s: %w", l.Name, err)
	}
	a.layout = l.Name
	return fmt.Sprintf("loaded %s: %d sensors", l.Name, len(a.state.Sensors)), nil
}

func (a *app) handleList(e dispatcher.Event) (any, error) {
	var (
		list []core.LayoutSummary
		err  error
	)
	if len(e.Args) > 0 {
		t, perr := parseSensorType(e.Args[0])
		if perr != nil {
			return nil, perr
		}
		q, ok := a.store.(storage.SensorQuerier)
		if !ok {
			return nil, errors.New("filtering by sensor type needs the sqlite or postgres storage")
		}
		list, err = q.LayoutsWithSensorType(t)
	} else {
		list, err = a.store.ListLayouts()
	}
	if err != nil {
		return nil, err
	}
	if list == nil {
		list = []core.LayoutSummary{}
	}
	return list, nil
}

func (a *app) handleStoredSensors(e dispatcher.Event) (any, error) {
	if err := a.wantArgs(e, 1); err != nil {
		return nil, err
	}
	q, ok := a.store.(storage.SensorQuerier)
	if !ok {
		return nil, errors.New("stored sensor rows need the sqlite or postgres storage")
	}
	sensors, err := q.LayoutSensors(e.Args[0])
	if err != nil {
		return nil, err
	}
	if sensors == nil {
		sensors = []core.Sensor{}
	}
	return sensors, nil
}

func (a *app) handleDelete(e dispatcher.Event) (any, error) {
	if err := a.wantArgs(e, 1); err != nil {
		return nil, err
	}
	if err := a.store.DeleteLayout(e.Args[0]); err != nil {
		return nil, err
	}
	return "deleted " + e.Args[0], nil
}

func (a *app) handleGeoJSON(e dispatcher.Event) (any, error) {
	data, err := evaluation.OverlayJSON(a.state, a.anchor)
	if err != nil {
		return nil, err
	}
	if len(e.Args) == 0 {
		return data, nil
	}
	if err := os.WriteFile(e.Args[0], data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", e.Args[0], err)
	}
	return "wrote overlay to " + e.Args[0], nil
}

// handleWKT prints the vehicle outline, or the wedge of one sensor, as WKT
// in vehicle-local metres.
func (a *app) handleWKT(e dispatcher.Event) (any, error) {
	if len(e.Args) == 0 {
		return geo.FootprintWKT(a.state.Vehicle), nil
	}
	s, err := a.sensor(e.Args[0])
	if err != nil {
		return nil, err
	}
	return geo.WedgeWKT(s), nil
}

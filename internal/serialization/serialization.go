// Package serialization converts application state to and from the
// versioned JSON layout format.
package serialization

import (
	"encoding/json"
	"errors"
	"math"
	"slices"

	"github.com/sensorplan/engine/internal/catalog"
	"github.com/sensorplan/engine/internal/geo"
	"github.com/sensorplan/engine/internal/state"
	"github.com/sensorplan/engine/pkg/core"
)

// Import failures. The messages are shown to users verbatim.
var (
	ErrSchemaVersion = errors.New("Unsupported or missing schemaVersion.")
	ErrVehicle       = errors.New("Invalid vehicle data.")
	ErrConstraints   = errors.New("Invalid constraints data.")
	ErrLayers        = errors.New("Invalid layers data.")
	ErrSettings      = errors.New("Invalid settings data.")
	ErrScenarios     = errors.New("Invalid scenarios data.")
	ErrSensors       = errors.New("Invalid sensor data.")
	ErrJSONFormat    = errors.New("Invalid JSON format.")
)

// Export returns the persisted part of s. Selection and error are dropped.
func Export(s state.State) state.Snapshot {
	snap := s.Snapshot
	snap.Sensors = core.CloneSensors(s.Sensors)
	if snap.Sensors == nil {
		snap.Sensors = []core.Sensor{}
	}
	return snap
}

// Marshal encodes the exported state as indented JSON.
func Marshal(s state.State) ([]byte, error) {
	return json.MarshalIndent(Export(s), "", "  ")
}

type object = map[string]any

func asObject(v any) (object, bool) {
	o, ok := v.(object)
	return o, ok
}

func isNumber(v any) bool {
	f, ok := v.(float64)
	return ok && !math.IsNaN(f) && !math.IsInf(f, 0)
}

func isBool(v any) bool {
	_, ok := v.(bool)
	return ok
}

func isString(v any) bool {
	_, ok := v.(string)
	return ok
}

// isCount reports whether v is a whole number that fits a sample or point
// count.
func isCount(v any) bool {
	f, ok := v.(float64)
	return ok && f >= 0 && f <= math.MaxInt32 && f == math.Trunc(f)
}

// optional reports whether key is absent, null or passes check.
func optional(o object, key string, check func(any) bool) bool {
	v, present := o[key]
	return !present || v == nil || check(v)
}

func numbers(o object, keys ...string) bool {
	for _, k := range keys {
		if !isNumber(o[k]) {
			return false
		}
	}
	return true
}

func bools(o object, keys ...string) bool {
	for _, k := range keys {
		if !isBool(o[k]) {
			return false
		}
	}
	return true
}

func validVehicle(v any) bool {
	o, ok := asObject(v)
	if !ok {
		return false
	}
	t, _ := o["type"].(string)
	if !core.VehicleType(t).Valid() {
		return false
	}
	dims, ok := asObject(o["dimensions"])
	if !ok || !numbers(dims, "length", "width", "wheelbase") {
		return false
	}
	raw, ok := o["footprintPolygon"].([]any)
	if !ok || len(raw) < 3 {
		return false
	}
	footprint := make([]core.Vec2, 0, len(raw))
	for _, p := range raw {
		po, ok := asObject(p)
		if !ok || !numbers(po, "x", "y") {
			return false
		}
		footprint = append(footprint, core.Vec2{X: po["x"].(float64), Y: po["y"].(float64)})
	}
	return geo.ValidateFootprint(footprint) == nil
}

func validConstraints(v any) bool {
	o, ok := asObject(v)
	return ok && bools(o, "boundaryClamp", "mirrorPlacement") && isNumber(o["minSpacingM"])
}

func validLayers(v any) bool {
	o, ok := asObject(v)
	return ok && bools(o, "camera", "radar", "ultrasonic", "lidar", "overlapHighlight")
}

func validSettings(v any) bool {
	o, ok := asObject(v)
	return ok &&
		bools(o, "enableViewEditing", "performanceMode", "showCoverageHeatmap") &&
		isCount(o["lidarPointCount"]) && isCount(o["coverageSampleCount"])
}

func validScenarios(v any) bool {
	o, ok := asObject(v)
	if !ok {
		return false
	}
	ped, ok := asObject(o["pedestrian"])
	if !ok || !isBool(ped["enabled"]) || !numbers(ped, "crossingDistanceM", "speedMps") {
		return false
	}
	inter, ok := asObject(o["intersection"])
	return ok && isBool(inter["enabled"]) && numbers(inter, "centerDistanceM", "speedMps")
}

func validSensor(v any) bool {
	o, ok := asObject(v)
	if !ok || !isString(o["id"]) || !isString(o["label"]) || !isBool(o["enabled"]) {
		return false
	}
	if !optional(o, "specCategory", isString) ||
		!optional(o, "mirrorGroup", isString) ||
		!optional(o, "specPointRateKpps", isNumber) {
		return false
	}
	t, _ := o["type"].(string)
	if !core.SensorType(t).Valid() {
		return false
	}
	pose, ok := asObject(o["pose"])
	if !ok {
		return false
	}
	pos, ok := asObject(pose["position"])
	if !ok || !numbers(pos, "x", "y", "z") {
		return false
	}
	orient, ok := asObject(pose["orientation"])
	if !ok || !numbers(orient, "yawDeg", "pitchDeg", "rollDeg") {
		return false
	}
	fov, ok := asObject(o["fov"])
	if !ok || !isNumber(fov["horizontalDeg"]) {
		return false
	}
	if h := fov["horizontalDeg"].(float64); h <= 0 || h > 360 {
		return false
	}
	if vd, present := fov["verticalDeg"]; !present || (vd != nil && !isNumber(vd)) {
		return false
	}
	return isNumber(o["rangeM"]) && o["rangeM"].(float64) > 0
}

func validSensors(v any) bool {
	list, ok := v.([]any)
	if !ok {
		return false
	}
	return !slices.ContainsFunc(list, func(s any) bool { return !validSensor(s) })
}

func validVendorShape(v any) bool {
	o, ok := asObject(v)
	if !ok {
		return false
	}
	for _, t := range core.SensorTypes {
		if x, present := o[string(t)]; present && !isString(x) {
			return false
		}
	}
	return true
}

// normalizeMeta keeps the string fields of a meta object and drops the rest.
// Meta is descriptive only, so a malformed one never fails an import.
func normalizeMeta(doc object) {
	m, ok := asObject(doc["meta"])
	if !ok {
		delete(doc, "meta")
		return
	}
	for k, v := range m {
		if !isString(v) {
			delete(m, k)
		}
	}
}

// vendorsOrDefault keeps each vendor that the catalog offers for its type and
// falls back to the default vendor otherwise.
func vendorsOrDefault(v core.VendorSelection) core.VendorSelection {
	c := catalog.Default()
	out := v
	for _, t := range core.SensorTypes {
		if !c.HasVendor(t, v.For(t)) {
			out = out.With(t, catalog.DefaultVendor(t))
		}
	}
	return out
}

// validate checks a decoded document in fixed order and returns the first
// failure.
func validate(doc object) error {
	if doc["schemaVersion"] != core.SchemaVersion {
		return ErrSchemaVersion
	}
	checks := []struct {
		key   string
		valid func(any) bool
		err   error
	}{
		{"vehicle", validVehicle, ErrVehicle},
		{"constraints", validConstraints, ErrConstraints},
		{"layers", validLayers, ErrLayers},
		{"settings", validSettings, ErrSettings},
		{"scenarios", validScenarios, ErrScenarios},
		{"sensors", validSensors, ErrSensors},
	}
	for _, c := range checks {
		if !c.valid(doc[c.key]) {
			return c.err
		}
	}
	return nil
}

// Import parses and validates a persisted layout. It never panics; every
// failure is one of the package's error values.
func Import(raw []byte) (state.Snapshot, error) {
	var generic any
	if err := json.Unmarshal(raw, &generic); err != nil {
		return state.Snapshot{}, ErrJSONFormat
	}
	doc, ok := asObject(generic)
	if !ok {
		return state.Snapshot{}, ErrSchemaVersion
	}
	if err := validate(doc); err != nil {
		return state.Snapshot{}, err
	}

	if !validVendorShape(doc["vendors"]) {
		delete(doc, "vendors")
	}
	normalizeMeta(doc)

	snap, err := decode(doc)
	if err != nil {
		return state.Snapshot{}, err
	}
	snap.Vendors = vendorsOrDefault(snap.Vendors)
	if snap.Sensors == nil {
		snap.Sensors = []core.Sensor{}
	}
	return snap, nil
}

// decode fills a snapshot from a validated document one section at a time.
// A section that still fails to decode reports its own validation error.
// Optional sections never fail the import.
func decode(doc object) (state.Snapshot, error) {
	snap := state.Snapshot{SchemaVersion: core.SchemaVersion}
	sections := []struct {
		key  string
		into any
		err  error
	}{
		{"meta", &snap.Meta, nil},
		{"vehicle", &snap.Vehicle, ErrVehicle},
		{"constraints", &snap.Constraints, ErrConstraints},
		{"layers", &snap.Layers, ErrLayers},
		{"settings", &snap.Settings, ErrSettings},
		{"scenarios", &snap.Scenarios, ErrScenarios},
		{"vendors", &snap.Vendors, nil},
		{"sensors", &snap.Sensors, ErrSensors},
	}
	for _, sec := range sections {
		v, present := doc[sec.key]
		if !present {
			continue
		}
		raw, err := json.Marshal(v)
		if err == nil {
			err = json.Unmarshal(raw, sec.into)
		}
		if err != nil && sec.err != nil {
			return state.Snapshot{}, sec.err
		}
	}
	return snap, nil
}

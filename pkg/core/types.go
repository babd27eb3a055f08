// pkg/core/types.go
package core

// SchemaVersion is the only accepted version of persisted layouts.
const SchemaVersion = "1.0.0"

// SensorType identifies the sensing modality of a sensor.
type SensorType string

const (
	SensorCamera     SensorType = "camera"
	SensorRadar      SensorType = "radar"
	SensorUltrasonic SensorType = "ultrasonic"
	SensorLidar      SensorType = "lidar"
)

// SensorTypes lists every sensor type in display order.
var SensorTypes = []SensorType{SensorCamera, SensorRadar, SensorUltrasonic, SensorLidar}

// Valid reports whether t is one of the known sensor types.
func (t SensorType) Valid() bool {
	switch t {
	case SensorCamera, SensorRadar, SensorUltrasonic, SensorLidar:
		return true
	}
	return false
}

// Vec2 is a point in the vehicle-local ground plane (x forward, y left), metres.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Vec3 is a point in vehicle-local coordinates with z up, metres.
type Vec3 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// XY drops the height component.
func (v Vec3) XY() Vec2 {
	return Vec2{X: v.X, Y: v.Y}
}

// Orientation of a sensor in degrees.
type Orientation struct {
	YawDeg   float64 `json:"yawDeg"`
	PitchDeg float64 `json:"pitchDeg"`
	RollDeg  float64 `json:"rollDeg"`
}

// Pose is a sensor mounting position and orientation.
type Pose struct {
	Position    Vec3        `json:"position"`
	Orientation Orientation `json:"orientation"`
}

// FOV is a field of view. VerticalDeg is nil when the vendor does not publish one.
type FOV struct {
	HorizontalDeg float64  `json:"horizontalDeg"`
	VerticalDeg   *float64 `json:"verticalDeg"`
}

// VerticalOr returns the vertical field of view or def when it is unset.
func (f FOV) VerticalOr(def float64) float64 {
	if f.VerticalDeg == nil {
		return def
	}
	return *f.VerticalDeg
}

// Float returns a pointer to v, for optional numeric fields.
func Float(v float64) *float64 {
	return &v
}

// Constraints configure the placement solver.
type Constraints struct {
	BoundaryClamp   bool    `json:"boundaryClamp"`
	MinSpacingM     float64 `json:"minSpacingM"`
	MirrorPlacement bool    `json:"mirrorPlacement"`
}

// Minimum spacing bounds accepted from user edits.
const (
	MinSpacingLowerM = 0.10
	MinSpacingUpperM = 0.20
)

// WithMinSpacing returns a copy with the spacing bounded to the practical range.
func (c Constraints) WithMinSpacing(m float64) Constraints {
	if m < MinSpacingLowerM {
		m = MinSpacingLowerM
	}
	if m > MinSpacingUpperM {
		m = MinSpacingUpperM
	}
	c.MinSpacingM = m
	return c
}

// Layers is the per-type display filter. A sensor takes part in coverage and
// scenario evaluation only when its type layer is on.
type Layers struct {
	Camera           bool `json:"camera"`
	Radar            bool `json:"radar"`
	Ultrasonic       bool `json:"ultrasonic"`
	Lidar            bool `json:"lidar"`
	OverlapHighlight bool `json:"overlapHighlight"`
}

// Active reports whether sensors of type t are visible.
func (l Layers) Active(t SensorType) bool {
	switch t {
	case SensorCamera:
		return l.Camera
	case SensorRadar:
		return l.Radar
	case SensorUltrasonic:
		return l.Ultrasonic
	case SensorLidar:
		return l.Lidar
	}
	return false
}

// With returns a copy with the layer for t switched on or off.
func (l Layers) With(t SensorType, on bool) Layers {
	switch t {
	case SensorCamera:
		l.Camera = on
	case SensorRadar:
		l.Radar = on
	case SensorUltrasonic:
		l.Ultrasonic = on
	case SensorLidar:
		l.Lidar = on
	}
	return l
}

// Caps applied to sample and point counts in performance mode.
const (
	PerformanceCoverageCap = 800
	PerformancePointCap    = 2000
)

// Settings hold analysis options persisted with a layout.
type Settings struct {
	EnableViewEditing   bool `json:"enableViewEditing"`
	PerformanceMode     bool `json:"performanceMode"`
	PointCount          int  `json:"lidarPointCount"`
	CoverageSampleCount int  `json:"coverageSampleCount"`
	ShowCoverageHeatmap bool `json:"showCoverageHeatmap"`
}

// EffectiveCoverageSamples is the coverage sample count after performance capping.
func (s Settings) EffectiveCoverageSamples() int {
	if s.PerformanceMode && s.CoverageSampleCount > PerformanceCoverageCap {
		return PerformanceCoverageCap
	}
	return s.CoverageSampleCount
}

// EffectivePointCount is the point-cloud size after performance capping.
func (s Settings) EffectivePointCount() int {
	if s.PerformanceMode && s.PointCount > PerformancePointCap {
		return PerformancePointCap
	}
	return s.PointCount
}

// PedestrianScenario places a pedestrian crossing ahead of the vehicle.
type PedestrianScenario struct {
	Enabled           bool    `json:"enabled"`
	CrossingDistanceM float64 `json:"crossingDistanceM"`
	SpeedMps          float64 `json:"speedMps"`
}

// IntersectionScenario places a crossing vehicle path ahead of the vehicle.
type IntersectionScenario struct {
	Enabled         bool    `json:"enabled"`
	CenterDistanceM float64 `json:"centerDistanceM"`
	SpeedMps        float64 `json:"speedMps"`
}

// Scenarios groups both scripted scenarios.
type Scenarios struct {
	Pedestrian   PedestrianScenario   `json:"pedestrian"`
	Intersection IntersectionScenario `json:"intersection"`
}

// VendorSelection maps each sensor type to the vendor whose catalog numbers apply.
type VendorSelection struct {
	Camera     string `json:"camera"`
	Radar      string `json:"radar"`
	Ultrasonic string `json:"ultrasonic"`
	Lidar      string `json:"lidar"`
}

// For returns the vendor selected for t.
func (v VendorSelection) For(t SensorType) string {
	switch t {
	case SensorCamera:
		return v.Camera
	case SensorRadar:
		return v.Radar
	case SensorUltrasonic:
		return v.Ultrasonic
	case SensorLidar:
		return v.Lidar
	}
	return ""
}

// With returns a copy with the vendor for t replaced.
func (v VendorSelection) With(t SensorType, vendorID string) VendorSelection {
	switch t {
	case SensorCamera:
		v.Camera = vendorID
	case SensorRadar:
		v.Radar = vendorID
	case SensorUltrasonic:
		v.Ultrasonic = vendorID
	case SensorLidar:
		v.Lidar = vendorID
	}
	return v
}

// Changed lists the sensor types whose vendor differs between v and other.
func (v VendorSelection) Changed(other VendorSelection) []SensorType {
	var out []SensorType
	for _, t := range SensorTypes {
		if v.For(t) != other.For(t) {
			out = append(out, t)
		}
	}
	return out
}

// Meta describes the origin of a layout.
type Meta struct {
	PresetID  string `json:"presetId"`
	CreatedAt string `json:"createdAt"`
	Notes     string `json:"notes"`
}

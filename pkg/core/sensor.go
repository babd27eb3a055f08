// pkg/core/sensor.go
package core

// Sensor is a single perception sensor mounted on the vehicle.
// Sensors are values: every update builds a new Sensor from an existing one.
type Sensor struct {
	ID                string     `json:"id"`
	Type              SensorType `json:"type"`
	Label             string     `json:"label"`
	SpecCategory      string     `json:"specCategory,omitempty"`
	SpecPointRateKpps *float64   `json:"specPointRateKpps,omitempty"`
	Pose              Pose       `json:"pose"`
	FOV               FOV        `json:"fov"`
	RangeM            float64    `json:"rangeM"`
	Enabled           bool       `json:"enabled"`
	MirrorGroup       string     `json:"mirrorGroup,omitempty"`
}

// Planar returns the ground-plane position of the sensor.
func (s Sensor) Planar() Vec2 {
	return s.Pose.Position.XY()
}

// WithPlanar returns a copy moved to p, keeping its height.
func (s Sensor) WithPlanar(p Vec2) Sensor {
	s.Pose.Position.X = p.X
	s.Pose.Position.Y = p.Y
	return s
}

// WithPosition returns a copy at position p.
func (s Sensor) WithPosition(p Vec3) Sensor {
	s.Pose.Position = p
	return s
}

// WithOrientation returns a copy with orientation o.
func (s Sensor) WithOrientation(o Orientation) Sensor {
	s.Pose.Orientation = o
	return s
}

// WithEnabled returns a copy with the enabled flag set.
func (s Sensor) WithEnabled(enabled bool) Sensor {
	s.Enabled = enabled
	return s
}

// WithFOV returns a copy with the given field of view and range.
func (s Sensor) WithFOV(fov FOV, rangeM float64) Sensor {
	s.FOV = fov
	s.RangeM = rangeM
	return s
}

// Mirrored returns the reflection of s about the vehicle's longitudinal axis.
// Only y and yaw change.
func (s Sensor) Mirrored() Sensor {
	s.Pose.Position.Y = -s.Pose.Position.Y
	s.Pose.Orientation.YawDeg = -s.Pose.Orientation.YawDeg
	return s
}

// ApplyTopViewDrag moves a sensor in the ground plane, as from a top-down view.
func ApplyTopViewDrag(s Sensor, p Vec2) Sensor {
	return s.WithPlanar(p)
}

// ApplySideViewDrag moves a sensor along x and z, as from a side view.
func ApplySideViewDrag(s Sensor, x, z float64) Sensor {
	s.Pose.Position.X = x
	s.Pose.Position.Z = z
	return s
}

// CloneSensors returns a shallow copy of the slice so callers can replace
// elements without touching the original.
func CloneSensors(sensors []Sensor) []Sensor {
	out := make([]Sensor, len(sensors))
	copy(out, sensors)
	return out
}

// FindSensor returns the sensor with the given id.
func FindSensor(sensors []Sensor, id string) (Sensor, bool) {
	for _, s := range sensors {
		if s.ID == id {
			return s, true
		}
	}
	return Sensor{}, false
}

// Package preset builds the named starting layouts and binds them to the
// vendor catalog.
package preset

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/sensorplan/engine/internal/catalog"
	"github.com/sensorplan/engine/pkg/core"
)

// ID names a preset layout.
type ID string

const (
	TeslaFSD ID = "tesla-fsd"
	NCAP     ID = "ncap"
	Robotaxi ID = "robotaxi"
)

// IDs lists the presets in display order.
var IDs = []ID{TeslaFSD, NCAP, Robotaxi}

var (
	// ErrUnknownPreset is returned for preset ids that are not defined.
	ErrUnknownPreset = errors.New("unknown preset")
	// ErrSpecNotFound is returned when a preset sensor's type, vendor and
	// category have no catalog entry. It is a defect in the preset table.
	ErrSpecNotFound = errors.New("vendor spec not found")
)

// Default mounting heights per sensor type, metres.
const (
	cameraZ     = 1.3
	radarZ      = 0.6
	ultrasonicZ = 0.4
	lidarZ      = 1.8

	// inset of the front and rear mounting line from the bumper
	endMargin = 0.2
)

// ParseID validates a preset name.
func ParseID(name string) (ID, error) {
	for _, id := range IDs {
		if string(id) == name {
			return id, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownPreset, name)
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(v string) string {
	return slugPattern.ReplaceAllString(strings.ToLower(v), "-")
}

// Vendors returns the vendor selection a preset starts with.
func Vendors(id ID) core.VendorSelection {
	v := catalog.DefaultSelection()
	switch id {
	case TeslaFSD:
		v.Camera = "onsemi"
	case NCAP:
		v.Radar = "continental"
	}
	return v
}

// mount is one row of a preset table.
type mount struct {
	typ      core.SensorType
	label    string
	category string
	x, y     float64
	yawDeg   float64
	group    string
}

func cam(label, category string, x, y, yaw float64, group string) mount {
	return mount{core.SensorCamera, label, category, x, y, yaw, group}
}

func radar(label, category string, x, y, yaw float64, group string) mount {
	return mount{core.SensorRadar, label, category, x, y, yaw, group}
}

func ultrasonic(label string, x, y, yaw float64, group string) mount {
	return mount{core.SensorUltrasonic, label, "parking", x, y, yaw, group}
}

func lidar(label string, x, y, yaw float64) mount {
	return mount{core.SensorLidar, label, "long", x, y, yaw, ""}
}

func heightFor(t core.SensorType) float64 {
	switch t {
	case core.SensorRadar:
		return radarZ
	case core.SensorUltrasonic:
		return ultrasonicZ
	case core.SensorLidar:
		return lidarZ
	}
	return cameraZ
}

// ncapRing is the camera, radar and ultrasonic ring shared by the regulatory
// and robotaxi layouts. sideYaw is the heading of the front side cameras.
func ncapRing(frontX, rearX, halfW, sideYaw float64) []mount {
	return []mount{
		cam("Front Wide", "wide", frontX, 0, 0, ""),
		cam("Front Narrow", "narrow", frontX, 0, 0, ""),
		cam("Front Side Left", "wide", frontX-0.2, halfW-0.05, sideYaw, "front-side"),
		cam("Front Side Right", "wide", frontX-0.2, -halfW+0.05, -sideYaw, "front-side"),
		cam("Rear Wide", "wide", rearX, 0, 180, ""),
		cam("Rear Corner Left", "wide", rearX+0.2, halfW-0.05, 135, "rear-corner"),
		cam("Rear Corner Right", "wide", rearX+0.2, -halfW+0.05, -135, "rear-corner"),
		radar("Front Radar", "lrr", frontX-0.1, 0, 0, ""),
		radar("Rear Radar", "mrr", rearX+0.1, 0, 180, ""),
		radar("Corner Radar", "srr", 0, halfW-0.1, 90, "corner-radar"),
		ultrasonic("Front Left", frontX-0.2, halfW-0.02, 15, "us-front"),
		ultrasonic("Front Right", frontX-0.2, -halfW+0.02, -15, "us-front"),
		ultrasonic("Front Mid Left", frontX-0.4, halfW-0.04, 15, "us-front-mid"),
		ultrasonic("Front Mid Right", frontX-0.4, -halfW+0.04, -15, "us-front-mid"),
		ultrasonic("Front Center Left", frontX-0.05, halfW-0.01, 0, "us-front-center"),
		ultrasonic("Front Center Right", frontX-0.05, -halfW+0.01, 0, "us-front-center"),
		ultrasonic("Rear Left", rearX+0.2, halfW-0.02, 165, "us-rear"),
		ultrasonic("Rear Right", rearX+0.2, -halfW+0.02, -165, "us-rear"),
		ultrasonic("Rear Mid Left", rearX+0.4, halfW-0.04, 165, "us-rear-mid"),
		ultrasonic("Rear Mid Right", rearX+0.4, -halfW+0.04, -165, "us-rear-mid"),
		ultrasonic("Rear Center Left", rearX+0.05, halfW-0.01, 180, "us-rear-center"),
		ultrasonic("Rear Center Right", rearX+0.05, -halfW+0.01, 180, "us-rear-center"),
	}
}

func mounts(id ID, v core.VehicleTemplate) ([]mount, error) {
	halfW := v.Dimensions.Width / 2
	frontX := v.Dimensions.Length/2 - endMargin
	rearX := -v.Dimensions.Length/2 + endMargin

	switch id {
	case TeslaFSD:
		return []mount{
			cam("Front Wide", "wide", frontX, 0, 0, ""),
			cam("Front Narrow", "narrow", frontX, 0, 0, ""),
			cam("Front Main", "main", frontX, 0, 0, ""),
			cam("Front Side Left", "wide", frontX-0.25, halfW-0.08, 55, "front-side"),
			cam("Front Side Right", "wide", frontX-0.25, -halfW+0.08, -55, "front-side"),
			cam("B-Pillar Left", "wide", 0, halfW-0.05, 100, "pillar"),
			cam("B-Pillar Right", "wide", 0, -halfW+0.05, -100, "pillar"),
			cam("Rear", "wide", rearX, 0, 180, ""),
		}, nil
	case NCAP:
		return ncapRing(frontX, rearX, halfW, 55), nil
	case Robotaxi:
		return append(ncapRing(frontX, rearX, halfW, 60), lidar("Roof Lidar", 0, 0, 0)), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownPreset, id)
}

// Assemble builds the preset's sensors for the vehicle, in a fixed order, and
// binds each to the catalog entry for its type, the selected vendor and its
// category. Any missing entry aborts assembly with ErrSpecNotFound.
func Assemble(c *catalog.Catalog, id ID, v core.VehicleTemplate, vendors core.VendorSelection) ([]core.Sensor, error) {
	rows, err := mounts(id, v)
	if err != nil {
		return nil, err
	}
	sensors := make([]core.Sensor, 0, len(rows))
	for _, m := range rows {
		vendorID := vendors.For(m.typ)
		spec, ok := c.FindSpec(m.typ, vendorID, m.category)
		if !ok {
			return nil, fmt.Errorf("%w: preset %s sensor %q (%s/%s/%s)", ErrSpecNotFound, id, m.label, m.typ, vendorID, m.category)
		}
		s := core.Sensor{
			ID:    string(id) + "-" + slugify(m.label),
			Type:  m.typ,
			Label: m.label,
			Pose: core.Pose{
				Position:    core.Vec3{X: m.x, Y: m.y, Z: heightFor(m.typ)},
				Orientation: core.Orientation{YawDeg: m.yawDeg},
			},
			Enabled:     true,
			MirrorGroup: m.group,
		}
		sensors = append(sensors, catalog.Bind(s, m.category, spec))
	}
	return sensors, nil
}

// MustAssemble is Assemble for callers that treat a broken preset table as fatal.
func MustAssemble(c *catalog.Catalog, id ID, v core.VehicleTemplate, vendors core.VendorSelection) []core.Sensor {
	sensors, err := Assemble(c, id, v, vendors)
	if err != nil {
		panic(err)
	}
	return sensors
}

package convert

import (
	"bytes"

	"github.com/sensorplan/engine/internal/model"
	"github.com/sensorplan/engine/pkg/core"
)

// LayoutToSummary converts a GORM Layout to a core.LayoutSummary.
// GORM Layout.LayoutID maps to core ID; the autoincrement key is not exposed.
func LayoutToSummary(m model.Layout) core.LayoutSummary {
	return core.LayoutSummary{
		ID:          m.LayoutID.String(),
		Name:        m.Name,
		PresetID:    m.PresetID,
		VehicleType: core.VehicleType(m.VehicleType),
		SensorCount: m.SensorCount,
		SavedAt:     m.SavedAt.UTC(),
	}
}

// LayoutToCore converts a GORM Layout to a core.Layout.
func LayoutToCore(m model.Layout) core.Layout {
	return core.Layout{
		LayoutSummary: LayoutToSummary(m),
		Document:      bytes.Clone(m.Document),
	}
}

// LayoutSensorToCore converts a sensor row back to a core.Sensor.
// Catalog-only fields such as the lidar point rate are not stored in rows.
func LayoutSensorToCore(r model.LayoutSensor) core.Sensor {
	var vfov *float64
	if r.VFovDeg != nil {
		v := *r.VFovDeg
		vfov = &v
	}
	return core.Sensor{
		ID:           r.SensorID,
		Type:         core.SensorType(r.Type),
		Label:        r.Label,
		SpecCategory: r.SpecCategory,
		MirrorGroup:  r.MirrorGroup,
		Enabled:      r.Enabled,
		Pose: core.Pose{
			Position: core.Vec3{X: r.X, Y: r.Y, Z: r.Z},
			Orientation: core.Orientation{
				YawDeg:   r.YawDeg,
				PitchDeg: r.PitchDeg,
				RollDeg:  r.RollDeg,
			},
		},
		FOV:    core.FOV{HorizontalDeg: r.HFovDeg, VerticalDeg: vfov},
		RangeM: r.RangeM,
	}
}

// Package convert provides functions to convert between GORM models and core models
package convert

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/sensorplan/engine/internal/model"
	"github.com/sensorplan/engine/pkg/core"
	"gorm.io/datatypes"
)

// layoutSensors is the part of a layout document the sensor rows are built from.
type layoutSensors struct {
	Sensors []core.Sensor `json:"sensors"`
}

// CoreToLayout converts a core.Layout to a GORM model.Layout with one
// LayoutSensor row per sensor in the document. l.ID must be a UUID.
func CoreToLayout(l core.Layout) (model.Layout, error) {
	id, err := uuid.Parse(l.ID)
	if err != nil {
		return model.Layout{}, fmt.Errorf("invalid layout id %q: %w", l.ID, err)
	}

	var doc layoutSensors
	if len(l.Document) > 0 {
		if err := json.Unmarshal(l.Document, &doc); err != nil {
			return model.Layout{}, fmt.Errorf("failed to decode layout document: %w", err)
		}
	}

	rows := make([]model.LayoutSensor, len(doc.Sensors))
	for i, s := range doc.Sensors {
		rows[i] = CoreToLayoutSensor(s)
	}

	return model.Layout{
		LayoutID:    id,
		Name:        l.Name,
		PresetID:    l.PresetID,
		VehicleType: string(l.VehicleType),
		SensorCount: l.SensorCount,
		SavedAt:     l.SavedAt,
		Document:    datatypes.JSON(l.Document),
		Sensors:     rows,
	}, nil
}

// CoreToLayoutSensor converts a core.Sensor to a GORM model.LayoutSensor.
// LayoutID is left for GORM to fill from the parent association.
func CoreToLayoutSensor(s core.Sensor) model.LayoutSensor {
	var vfov *float64
	if s.FOV.VerticalDeg != nil {
		v := *s.FOV.VerticalDeg
		vfov = &v
	}
	return model.LayoutSensor{
		SensorID:     s.ID,
		Type:         string(s.Type),
		Label:        s.Label,
		SpecCategory: s.SpecCategory,
		MirrorGroup:  s.MirrorGroup,
		Enabled:      s.Enabled,
		X:            s.Pose.Position.X,
		Y:            s.Pose.Position.Y,
		Z:            s.Pose.Position.Z,
		YawDeg:       s.Pose.Orientation.YawDeg,
		PitchDeg:     s.Pose.Orientation.PitchDeg,
		RollDeg:      s.Pose.Orientation.RollDeg,
		HFovDeg:      s.FOV.HorizontalDeg,
		VFovDeg:      vfov,
		RangeM:       s.RangeM,
	}
}

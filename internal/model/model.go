package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

////////////////////////
// DATABASE STRUCTURES //
////////////////////////

// DatabaseModels is a list of all the structs exported here which represent tables in the database schema
var DatabaseModels = []interface{}{
	&Layout{},
	&LayoutSensor{},
}

////////////////////////
// LAYOUT MODELS
////////////////////////

// Layout is a saved sensor layout. Document holds the full exported state;
// the other columns are denormalized for listing and querying.
type Layout struct {
	gorm.Model
	LayoutID    uuid.UUID      `json:"layoutId" gorm:"type:varchar(36);uniqueIndex"`
	Name        string         `json:"name" gorm:"size:128;uniqueIndex"`
	PresetID    string         `json:"presetId" gorm:"size:32"`
	VehicleType string         `json:"vehicleType" gorm:"size:32"`
	SensorCount int            `json:"sensorCount"`
	SavedAt     time.Time      `json:"savedAt" gorm:"index"`
	Document    datatypes.JSON `json:"document"`
	Sensors     []LayoutSensor `json:"sensors" gorm:"foreignKey:LayoutID;constraint:OnDelete:CASCADE"`
}

func (*Layout) TableName() string {
	return "layouts"
}

// LayoutSensor is one sensor of a saved layout, flattened for queries such
// as "all layouts with a roof lidar".
type LayoutSensor struct {
	ID           uint     `json:"id" gorm:"primarykey"`
	LayoutID     uint     `json:"layoutId" gorm:"index"`
	SensorID     string   `json:"sensorId" gorm:"size:128"`
	Type         string   `json:"type" gorm:"size:16;index"`
	Label        string   `json:"label" gorm:"size:128"`
	SpecCategory string   `json:"specCategory" gorm:"size:32"`
	MirrorGroup  string   `json:"mirrorGroup" gorm:"size:64"`
	Enabled      bool     `json:"enabled"`
	X            float64  `json:"x"`
	Y            float64  `json:"y"`
	Z            float64  `json:"z"`
	YawDeg       float64  `json:"yawDeg"`
	PitchDeg     float64  `json:"pitchDeg"`
	RollDeg      float64  `json:"rollDeg"`
	HFovDeg      float64  `json:"hfovDeg"`
	VFovDeg      *float64 `json:"vfovDeg"` // null when the vendor publishes none
	RangeM       float64  `json:"rangeM"`
}

func (*LayoutSensor) TableName() string {
	return "layout_sensors"
}

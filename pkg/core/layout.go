// pkg/core/layout.go
package core

import (
	"errors"
	"time"
)

// ErrLayoutNotFound is returned by storage backends for unknown layout names.
var ErrLayoutNotFound = errors.New("layout not found")

// LayoutSummary describes a saved layout without its document.
type LayoutSummary struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	PresetID    string      `json:"presetId"`
	VehicleType VehicleType `json:"vehicleType"`
	SensorCount int         `json:"sensorCount"`
	SavedAt     time.Time   `json:"savedAt"`
}

// Layout is a saved layout. Document holds the exported JSON state.
type Layout struct {
	LayoutSummary
	Document []byte `json:"document"`
}

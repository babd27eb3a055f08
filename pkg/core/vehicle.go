// pkg/core/vehicle.go
package core

import "fmt"

// VehicleType is the body style of a vehicle template.
type VehicleType string

const (
	VehicleSedan     VehicleType = "sedan"
	VehicleHatchback VehicleType = "hatchback"
	VehicleSUV       VehicleType = "suv"
)

// VehicleTypes lists the supported body styles.
var VehicleTypes = []VehicleType{VehicleSedan, VehicleHatchback, VehicleSUV}

// Valid reports whether t is a known body style.
func (t VehicleType) Valid() bool {
	switch t {
	case VehicleSedan, VehicleHatchback, VehicleSUV:
		return true
	}
	return false
}

// Dimensions of a vehicle body in metres.
type Dimensions struct {
	Length    float64 `json:"length"`
	Width     float64 `json:"width"`
	Wheelbase float64 `json:"wheelbase"`
}

// VehicleTemplate is an immutable vehicle outline. The footprint vertex order
// is fixed for the lifetime of the template.
type VehicleTemplate struct {
	Type             VehicleType `json:"type"`
	Dimensions       Dimensions  `json:"dimensions"`
	FootprintPolygon []Vec2      `json:"footprintPolygon"`
}

// Vehicle returns a fresh copy of the built-in template for t.
func Vehicle(t VehicleType) (VehicleTemplate, error) {
	switch t {
	case VehicleSedan:
		return VehicleTemplate{
			Type:       VehicleSedan,
			Dimensions: Dimensions{Length: 4.7, Width: 1.8, Wheelbase: 2.8},
			FootprintPolygon: []Vec2{
				{X: -2.3, Y: -0.9}, {X: 2.3, Y: -0.9}, {X: 2.4, Y: 0},
				{X: 2.3, Y: 0.9}, {X: -2.3, Y: 0.9}, {X: -2.4, Y: 0},
			},
		}, nil
	case VehicleHatchback:
		return VehicleTemplate{
			Type:       VehicleHatchback,
			Dimensions: Dimensions{Length: 4.2, Width: 1.75, Wheelbase: 2.6},
			FootprintPolygon: []Vec2{
				{X: -2.0, Y: -0.85}, {X: 2.0, Y: -0.85}, {X: 2.1, Y: 0},
				{X: 2.0, Y: 0.85}, {X: -2.0, Y: 0.85}, {X: -2.1, Y: 0},
			},
		}, nil
	case VehicleSUV:
		return VehicleTemplate{
			Type:       VehicleSUV,
			Dimensions: Dimensions{Length: 4.9, Width: 2.0, Wheelbase: 2.9},
			FootprintPolygon: []Vec2{
				{X: -2.4, Y: -1.0}, {X: 2.4, Y: -1.0}, {X: 2.5, Y: 0},
				{X: 2.4, Y: 1.0}, {X: -2.4, Y: 1.0}, {X: -2.5, Y: 0},
			},
		}, nil
	}
	return VehicleTemplate{}, fmt.Errorf("unknown vehicle type: %s", t)
}

// MustVehicle is Vehicle for the built-in body styles; it panics on unknown types.
func MustVehicle(t VehicleType) VehicleTemplate {
	v, err := Vehicle(t)
	if err != nil {
		panic(err)
	}
	return v
}

// Package catalog is the read-only vendor specification table. Sensors look up
// their angular and range figures by (sensor type, vendor, category).
package catalog

import (
	_ "embed"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/sensorplan/engine/pkg/core"
	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var catalogYAML []byte

// Figures are the numbers a catalog entry contributes to a sensor.
type Figures struct {
	HorizontalFOVDeg float64  `yaml:"horizontalFOVDeg" json:"horizontalFOVDeg"`
	VerticalFOVDeg   *float64 `yaml:"verticalFOVDeg" json:"verticalFOVDeg"`
	RangeM           float64  `yaml:"rangeM" json:"rangeM"`
	PointRateKpps    *float64 `yaml:"pointRateKpps,omitempty" json:"pointRateKpps,omitempty"`
}

// Source records where the figures came from.
type Source struct {
	URL        string `yaml:"url" json:"url"`
	AccessedAt string `yaml:"accessedAt" json:"accessedAt"`
	Note       string `yaml:"note" json:"note"`
}

// Spec is one catalog entry.
type Spec struct {
	VendorID   string          `yaml:"vendorId" json:"vendorId"`
	VendorName string          `yaml:"vendorName" json:"vendorName"`
	SensorType core.SensorType `yaml:"sensorType" json:"sensorType"`
	Category   string          `yaml:"category" json:"category"`
	ModelName  string          `yaml:"modelName" json:"modelName"`
	Specs      Figures         `yaml:"specs" json:"specs"`
	Source     Source          `yaml:"source" json:"source"`
}

// Vendor is a selectable vendor for a sensor type.
type Vendor struct {
	VendorID   string `json:"vendorId"`
	VendorName string `json:"vendorName"`
}

// Catalog is an ordered list of specs.
type Catalog struct {
	Specs []Spec `yaml:"specs"`
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	for i, s := range c.Specs {
		if !s.SensorType.Valid() {
			return nil, fmt.Errorf("catalog entry %d: unknown sensor type %q", i, s.SensorType)
		}
		if s.VendorID == "" || s.Category == "" {
			return nil, fmt.Errorf("catalog entry %d: vendorId and category are required", i)
		}
		if s.Specs.HorizontalFOVDeg <= 0 || s.Specs.HorizontalFOVDeg > 360 || s.Specs.RangeM <= 0 {
			return nil, fmt.Errorf("catalog entry %d (%s/%s/%s): invalid figures", i, s.SensorType, s.VendorID, s.Category)
		}
	}
	return &c, nil
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the embedded catalog. A malformed embedded catalog is a
// build defect and panics.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Parse(catalogYAML)
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// FindSpec looks up an entry; the category match is case-insensitive.
func (c *Catalog) FindSpec(t core.SensorType, vendorID, category string) (Spec, bool) {
	for _, s := range c.Specs {
		if s.SensorType == t && s.VendorID == vendorID && strings.EqualFold(s.Category, category) {
			return s, true
		}
	}
	return Spec{}, false
}

// VendorOptions lists the vendors offering sensors of type t, in catalog order.
func (c *Catalog) VendorOptions(t core.SensorType) []Vendor {
	seen := make(map[string]bool)
	var out []Vendor
	for _, s := range c.Specs {
		if s.SensorType != t || seen[s.VendorID] {
			continue
		}
		seen[s.VendorID] = true
		out = append(out, Vendor{VendorID: s.VendorID, VendorName: s.VendorName})
	}
	return out
}

// HasVendor reports whether vendorID offers any sensor of type t.
func (c *Catalog) HasVendor(t core.SensorType, vendorID string) bool {
	for _, v := range c.VendorOptions(t) {
		if v.VendorID == vendorID {
			return true
		}
	}
	return false
}

// FindSpec looks up an entry in the default catalog.
func FindSpec(t core.SensorType, vendorID, category string) (Spec, bool) {
	return Default().FindSpec(t, vendorID, category)
}

// VendorOptions lists the vendors for t in the default catalog.
func VendorOptions(t core.SensorType) []Vendor {
	return Default().VendorOptions(t)
}

// DefaultVendor is the vendor selected for t when nothing else is chosen.
func DefaultVendor(t core.SensorType) string {
	switch t {
	case core.SensorCamera:
		return "onsemi"
	case core.SensorRadar:
		return "continental"
	case core.SensorUltrasonic:
		return "bosch"
	case core.SensorLidar:
		return "luminar"
	}
	return ""
}

// DefaultCategory is the category used for sensors that do not name one.
func DefaultCategory(t core.SensorType) string {
	switch t {
	case core.SensorCamera:
		return "main"
	case core.SensorRadar:
		return "mrr"
	case core.SensorUltrasonic:
		return "parking"
	case core.SensorLidar:
		return "long"
	}
	return ""
}

// DefaultSelection is the default vendor for every sensor type.
func DefaultSelection() core.VendorSelection {
	return core.VendorSelection{
		Camera:     DefaultVendor(core.SensorCamera),
		Radar:      DefaultVendor(core.SensorRadar),
		Ultrasonic: DefaultVendor(core.SensorUltrasonic),
		Lidar:      DefaultVendor(core.SensorLidar),
	}
}

// ApplyVendorSpecs rebinds sensors to the figures of the selected vendor.
// When types are given only sensors of those types are touched. A sensor keeps
// its category (or takes its type default); sensors whose category and vendor
// have no entry are returned unchanged.
func (c *Catalog) ApplyVendorSpecs(sensors []core.Sensor, vendors core.VendorSelection, types ...core.SensorType) []core.Sensor {
	out := core.CloneSensors(sensors)
	for i, s := range out {
		if len(types) > 0 && !slices.Contains(types, s.Type) {
			continue
		}
		category := s.SpecCategory
		if category == "" {
			category = DefaultCategory(s.Type)
		}
		spec, ok := c.FindSpec(s.Type, vendors.For(s.Type), category)
		if !ok {
			continue
		}
		out[i] = Bind(s, category, spec)
	}
	return out
}

// ApplyVendorSpecs rebinds sensors against the default catalog.
func ApplyVendorSpecs(sensors []core.Sensor, vendors core.VendorSelection, types ...core.SensorType) []core.Sensor {
	return Default().ApplyVendorSpecs(sensors, vendors, types...)
}

// Bind copies a spec's figures onto a sensor.
func Bind(s core.Sensor, category string, spec Spec) core.Sensor {
	s.SpecCategory = category
	s.SpecPointRateKpps = copyFloat(spec.Specs.PointRateKpps)
	s.FOV = core.FOV{HorizontalDeg: spec.Specs.HorizontalFOVDeg, VerticalDeg: copyFloat(spec.Specs.VerticalFOVDeg)}
	s.RangeM = spec.Specs.RangeM
	return s
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	return core.Float(*p)
}

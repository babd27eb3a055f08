// Package overlap finds pairs of sensors whose planar wedges intersect.
package overlap

import (
	"github.com/sensorplan/engine/internal/geo"
	"github.com/sensorplan/engine/pkg/core"
)

// Pair is an overlapping pair of sensors, in input order.
type Pair struct {
	Pair [2]string `json:"pair"`
	Area float64   `json:"area"`
}

// Detect checks every unordered pair of enabled sensors, regardless of type,
// and reports those whose wedge intersection has positive area.
func Detect(sensors []core.Sensor) []Pair {
	wedges := make([][]core.Vec2, len(sensors))
	for i, s := range sensors {
		if s.Enabled {
			wedges[i] = geo.SensorWedge(s).Polygon()
		}
	}

	var out []Pair
	for i := 0; i < len(sensors); i++ {
		if !sensors[i].Enabled {
			continue
		}
		for j := i + 1; j < len(sensors); j++ {
			if !sensors[j].Enabled {
				continue
			}
			area := geo.IntersectionAreaConvex(wedges[i], wedges[j])
			if area > 0 {
				out = append(out, Pair{Pair: [2]string{sensors[i].ID, sensors[j].ID}, Area: area})
			}
		}
	}
	return out
}

// Involving returns the ids of every sensor that appears in at least one pair.
func Involving(pairs []Pair) map[string]bool {
	ids := make(map[string]bool, len(pairs)*2)
	for _, p := range pairs {
		ids[p.Pair[0]] = true
		ids[p.Pair[1]] = true
	}
	return ids
}

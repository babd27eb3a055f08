package geo

import (
	"errors"
	"fmt"
	"math"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/sensorplan/engine/pkg/core"
)

// ErrDegeneratePolygon is returned when a footprint has fewer than three
// vertices, no area, or a self-intersecting outline.
var ErrDegeneratePolygon = errors.New("degenerate footprint polygon")

// ringSequence builds a closed XY sequence from an open vertex list.
func ringSequence(poly []core.Vec2) geom.Sequence {
	flat := make([]float64, 0, (len(poly)+1)*2)
	for _, p := range poly {
		flat = append(flat, p.X, p.Y)
	}
	if len(poly) > 0 {
		flat = append(flat, poly[0].X, poly[0].Y)
	}
	return geom.NewSequence(flat, geom.DimXY)
}

// ToPolygon converts an open vertex list to a simplefeatures polygon.
func ToPolygon(poly []core.Vec2) geom.Polygon {
	ring := geom.NewLineString(ringSequence(poly))
	return geom.NewPolygon([]geom.LineString{ring})
}

// ValidateFootprint checks that poly is a usable vehicle outline: at least
// three finite vertices, a simple ring and a positive area.
func ValidateFootprint(poly []core.Vec2) error {
	if len(poly) < 3 {
		return fmt.Errorf("%w: %d vertices", ErrDegeneratePolygon, len(poly))
	}
	for i, p := range poly {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			return fmt.Errorf("%w: vertex %d is not finite", ErrDegeneratePolygon, i)
		}
	}
	pg := ToPolygon(poly)
	if err := pg.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrDegeneratePolygon, err)
	}
	if pg.Area() <= 0 {
		return fmt.Errorf("%w: zero area", ErrDegeneratePolygon)
	}
	return nil
}

// FootprintArea is the area of the vehicle outline in square metres.
func FootprintArea(v core.VehicleTemplate) float64 {
	return ToPolygon(v.FootprintPolygon).Area()
}

// WedgeWKT renders a sensor wedge as WKT, for logging and export.
func WedgeWKT(s core.Sensor) string {
	return ToPolygon(SensorWedge(s).Polygon()).AsText()
}

// FootprintWKT renders the vehicle outline as WKT.
func FootprintWKT(v core.VehicleTemplate) string {
	return ToPolygon(v.FootprintPolygon).AsText()
}

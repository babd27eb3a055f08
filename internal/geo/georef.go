package geo

import (
	"math"

	geom "github.com/peterstace/simplefeatures/geom"
	"github.com/sensorplan/engine/pkg/core"
	"github.com/wroge/wgs84"
)

// Anchor places the vehicle origin on the globe. HeadingDeg is the compass
// bearing of the vehicle's +x axis, clockwise from north.
type Anchor struct {
	Longitude  float64
	Latitude   float64
	HeadingDeg float64
}

// ToLonLat converts a vehicle-local point to WGS84 longitude and latitude.
// Offsets are applied in Web Mercator (EPSG:3857), scaled for the anchor
// latitude, which is accurate for the tens of metres a layout spans.
func (a Anchor) ToLonLat(p core.Vec2) (float64, float64) {
	epsg := wgs84.EPSG()
	toMercator := epsg.Transform(4326, 3857)
	toGeographic := epsg.Transform(3857, 4326)

	ox, oy, _ := toMercator(a.Longitude, a.Latitude, 0)

	h := DegToRad(a.HeadingDeg)
	east := p.X*math.Sin(h) - p.Y*math.Cos(h)
	north := p.X*math.Cos(h) + p.Y*math.Sin(h)

	scale := 1 / math.Cos(DegToRad(a.Latitude))
	lon, lat, _ := toGeographic(ox+east*scale, oy+north*scale, 0)
	return lon, lat
}

// PolygonLonLat converts a vehicle-local polygon to a WGS84 polygon.
func (a Anchor) PolygonLonLat(poly []core.Vec2) geom.Polygon {
	out := make([]core.Vec2, len(poly))
	for i, p := range poly {
		lon, lat := a.ToLonLat(p)
		out[i] = core.Vec2{X: lon, Y: lat}
	}
	return ToPolygon(out)
}

// PointLonLat converts a vehicle-local point to a WGS84 point.
func (a Anchor) PointLonLat(p core.Vec2) geom.Point {
	lon, lat := a.ToLonLat(p)
	return geom.NewPoint(geom.Coordinates{XY: geom.XY{X: lon, Y: lat}})
}

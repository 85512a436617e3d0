package geo

import (
	"math"

	"go.uber.org/zap"
)

const earthRadiusKm = 6371

// Point is a WGS84 coordinate in degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Valid reports whether p is a usable coordinate.
func (p Point) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

// Distance returns the great-circle distance between a and b in kilometres.
func Distance(a, b Point) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))
	return earthRadiusKm * c
}

// Toward moves from a toward b by fraction (0..1) of the straight-line offset.
func Toward(a, b Point, fraction float64) Point {
	if fraction <= 0 {
		return a
	}
	if fraction >= 1 {
		return b
	}
	return Point{
		Lat: a.Lat + (b.Lat-a.Lat)*fraction,
		Lon: a.Lon + (b.Lon-a.Lon)*fraction,
	}
}

type Source string

const (
	SourceClient   Source = "client"
	SourceFallback Source = "fallback"
)

// Locator resolves the caller's position, falling back to a fixed coordinate
// when the client did not share one.
type Locator struct {
	fallback Point
	logger   *zap.Logger
}

func NewLocator(fallback Point, logger *zap.Logger) *Locator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Locator{fallback: fallback, logger: logger}
}

func (l *Locator) Fallback() Point { return l.fallback }

// Resolve returns the client coordinate when both parts are present and valid,
// otherwise the fallback. A denied location is logged, never an error.
func (l *Locator) Resolve(lat, lon *float64) (Point, Source) {
	if lat == nil || lon == nil {
		l.logger.Warn("location unavailable, using default coordinates",
			zap.Float64("lat", l.fallback.Lat), zap.Float64("lon", l.fallback.Lon))
		return l.fallback, SourceFallback
	}
	p := Point{Lat: *lat, Lon: *lon}
	if !p.Valid() {
		l.logger.Warn("invalid client coordinates, using default",
			zap.Float64("lat", *lat), zap.Float64("lon", *lon))
		return l.fallback, SourceFallback
	}
	return p, SourceClient
}

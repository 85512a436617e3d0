package models

// GeoPoint represents a GeoJSON Point.
type GeoPoint struct {
	Type        string    `bson:"type" json:"type"`               // Always "Point"
	Coordinates []float64 `bson:"coordinates" json:"coordinates"` // [longitude, latitude]
}

// NewGeoPoint builds a GeoJSON point from a latitude/longitude pair.
func NewGeoPoint(lat, lon float64) GeoPoint {
	return GeoPoint{Type: "Point", Coordinates: []float64{lon, lat}}
}

func (p GeoPoint) Valid() bool {
	return len(p.Coordinates) >= 2
}

func (p GeoPoint) Lat() float64 {
	if !p.Valid() {
		return 0
	}
	return p.Coordinates[1]
}

func (p GeoPoint) Lon() float64 {
	if !p.Valid() {
		return 0
	}
	return p.Coordinates[0]
}

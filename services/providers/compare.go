package providers

import (
	"math"

	"homeserve/models"
	"homeserve/services/geo"
	"homeserve/services/listing"
)

// compareView lists professionals side by side with their distance to the caller.
var compareView = listing.View[models.ProfessionalComparison]{
	Fields: func(p models.ProfessionalComparison) []string {
		return []string{p.Name, p.Specialty}
	},
	Category: func(p models.ProfessionalComparison) string { return p.Category },
	Sorts: map[string]listing.Less[models.ProfessionalComparison]{
		"rating":     func(a, b models.ProfessionalComparison) bool { return a.Rating < b.Rating },
		"price":      func(a, b models.ProfessionalComparison) bool { return a.HourlyRate < b.HourlyRate },
		"experience": func(a, b models.ProfessionalComparison) bool { return a.ExperienceYears < b.ExperienceYears },
		"distance":   func(a, b models.ProfessionalComparison) bool { return a.DistanceKm < b.DistanceKm },
		"reviews":    func(a, b models.ProfessionalComparison) bool { return a.Reviews < b.Reviews },
	},
	DefaultSort:  "rating",
	DefaultOrder: listing.OrderDesc,
}

// CompareQuery narrows a comparison.
type CompareQuery struct {
	listing.Query
	ServiceID string   `form:"serviceId"`
	IDs       []string `form:"ids"`
}

// Compare ranks professionals for the caller at origin. IDs, when given,
// restrict the comparison to those professionals.
func (s *Service) Compare(origin geo.Point, q CompareQuery) ([]models.ProfessionalComparison, error) {
	pros := s.catalog.ProfessionalsFor(q.ServiceID)
	wanted := make(map[string]bool, len(q.IDs))
	for _, id := range q.IDs {
		wanted[id] = true
	}

	rows := make([]models.ProfessionalComparison, 0, len(pros))
	for _, p := range pros {
		if len(wanted) > 0 && !wanted[p.ID] {
			continue
		}
		rows = append(rows, models.ProfessionalComparison{
			Professional: p,
			DistanceKm:   round1(geo.Distance(origin, geo.Point{Lat: p.Location.Lat(), Lon: p.Location.Lon()})),
		})
	}
	return compareView.Apply(rows, q.Query)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

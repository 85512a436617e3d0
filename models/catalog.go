package models

// Service is a bookable service type, e.g. plumbing or deep cleaning.
type Service struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Category  string  `json:"category"`
	Icon      string  `json:"icon"`
	BasePrice float64 `json:"basePrice"`
	UnitType  string  `json:"unitType"`
	Emergency bool    `json:"emergency,omitempty"`
}

// Professional is a provider that can be selected in the wizard, compared and saved.
type Professional struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	ServiceIDs      []string `json:"serviceIds"`
	Category        string   `json:"category"`
	Specialty       string   `json:"specialty"`
	Rating          float64  `json:"rating"`
	Reviews         int      `json:"reviews"`
	ExperienceYears int      `json:"experienceYears"`
	HourlyRate      float64  `json:"hourlyRate"`
	Verified        bool     `json:"verified"`
	ResponseTime    string   `json:"responseTime"`
	Location        GeoPoint `json:"location"`
}

// Offers reports whether the professional provides the given service.
func (p Professional) Offers(serviceID string) bool {
	for _, id := range p.ServiceIDs {
		if id == serviceID {
			return true
		}
	}
	return false
}

// TimeSlot is a selectable appointment window. Start and End are minutes from midnight.
type TimeSlot struct {
	ID        string  `json:"id"`
	Date      string  `json:"date"` // YYYY-MM-DD
	Label     string  `json:"label"`
	Start     int     `json:"start"`
	End       int     `json:"end"`
	Surcharge float64 `json:"surcharge"`
}

// ProfessionalComparison is a professional annotated with the caller's distance to it.
type ProfessionalComparison struct {
	Professional
	DistanceKm float64 `json:"distanceKm"`
}

package models

import "time"

type TrackingStatus string

const (
	TrackingAssigned TrackingStatus = "assigned"
	TrackingEnRoute  TrackingStatus = "en_route"
	TrackingArrived  TrackingStatus = "arrived"
)

// TrackingState is the live position of the professional assigned to a booking.
type TrackingState struct {
	BookingID        string         `json:"bookingId"`
	UserID           string         `json:"userId"`
	ProfessionalName string         `json:"professionalName"`
	Status           TrackingStatus `json:"status"`
	ProviderLocation GeoPoint       `json:"providerLocation"`
	Destination      GeoPoint       `json:"destination"`
	DistanceKm       float64        `json:"distanceKm"`
	ETAMinutes       int            `json:"etaMinutes"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

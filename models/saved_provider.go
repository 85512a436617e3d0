package models

import "time"

// SavedProvider is a professional bookmarked by a user.
type SavedProvider struct {
	ID             string    `bson:"id" json:"id"`
	UserID         string    `bson:"userId" json:"userId"`
	ProfessionalID string    `bson:"professionalId" json:"professionalId"`
	Name           string    `bson:"name" json:"name"`
	Service        string    `bson:"service" json:"service"`
	Category       string    `bson:"category" json:"category"`
	Rating         float64   `bson:"rating" json:"rating"`
	Notes          string    `bson:"notes" json:"notes"`
	SavedAt        time.Time `bson:"savedAt" json:"savedAt"`
}

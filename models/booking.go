package models

import "time"

type BookingStatus string

const (
	BookingConfirmed  BookingStatus = "confirmed"
	BookingEnRoute    BookingStatus = "en_route"
	BookingInProgress BookingStatus = "in_progress"
	BookingCompleted  BookingStatus = "completed"
	BookingCancelled  BookingStatus = "cancelled"
)

// Booking represents a submitted booking record.
type Booking struct {
	ID               string        `bson:"id" json:"id"`
	UserID           string        `bson:"userId" json:"userId"`
	ServiceID        string        `bson:"serviceId" json:"serviceId"`
	ServiceName      string        `bson:"serviceName" json:"serviceName"`
	Category         string        `bson:"category" json:"category"`
	ProfessionalID   string        `bson:"professionalId,omitempty" json:"professionalId,omitempty"`
	ProfessionalName string        `bson:"professionalName,omitempty" json:"professionalName,omitempty"`
	TimeSlot         *TimeSlot     `bson:"timeSlot,omitempty" json:"timeSlot,omitempty"`
	Urgency          Urgency       `bson:"urgency" json:"urgency"`
	Address          string        `bson:"address" json:"address"`
	Total            float64       `bson:"total" json:"total"`
	Currency         string        `bson:"currency" json:"currency"`
	PaymentMethod    PaymentMethod `bson:"paymentMethod" json:"paymentMethod"`
	PaymentIntentID  string        `bson:"paymentIntentId,omitempty" json:"paymentIntentId,omitempty"`
	Status           BookingStatus `bson:"status" json:"status"`
	CreatedAt        time.Time     `bson:"createdAt" json:"createdAt"`
}

// PaymentIntent is what the client needs to complete a card payment.
type PaymentIntent struct {
	ID           string  `json:"id"`
	ClientSecret string  `json:"clientSecret"`
	Amount       int64   `json:"amount"`
	Currency     string  `json:"currency"`
	Status       string  `json:"status"`
	Total        float64 `json:"total"`
}

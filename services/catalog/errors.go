package catalog

import "errors"

var (
	ErrServiceNotFound      = errors.New("service not found")
	ErrProfessionalNotFound = errors.New("professional not found")
	ErrSlotNotFound         = errors.New("time slot not found")
	ErrProfessionalMismatch = errors.New("professional does not offer the selected service")
)

package repository

import (
	bookingRepo "homeserve/database/repository/bookings"
	notesRepo "homeserve/database/repository/notes"
	savedRepo "homeserve/database/repository/saved"
)

// Re-export the NoteRepository interface and constructor.
type NoteRepository = notesRepo.NoteRepository

var NewMongoNoteRepo = notesRepo.NewMongoNoteRepo

// Re-export the SavedProviderRepository interface and constructor.
type SavedProviderRepository = savedRepo.SavedProviderRepository

var NewMongoSavedProviderRepo = savedRepo.NewMongoSavedProviderRepo

// Re-export the BookingRepository interface and constructor.
type BookingRepository = bookingRepo.BookingRepository

var NewMongoBookingRepo = bookingRepo.NewMongoBookingRepo

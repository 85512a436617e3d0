package notification

import (
	"context"
	"errors"
	"fmt"
	"time"

	"homeserve/models"
	"homeserve/services/catalog"

	"go.uber.org/zap"
)

const reminderLead = time.Hour

// Reminder is the payload of a scheduled booking reminder.
type Reminder struct {
	BookingID   string    `json:"bookingId"`
	UserID      string    `json:"userId"`
	Email       string    `json:"email,omitempty"`
	Name        string    `json:"name,omitempty"`
	ServiceName string    `json:"serviceName"`
	SlotLabel   string    `json:"slotLabel,omitempty"`
	StartsAt    time.Time `json:"startsAt"`
}

// ReminderScheduler queues a reminder for delivery at a given time.
type ReminderScheduler interface {
	ScheduleReminder(ctx context.Context, r Reminder, at time.Time) error
}

// Service sends booking notifications according to the user's preferences.
type Service struct {
	email     EmailSender
	push      PushSender
	reminders ReminderScheduler
	location  *time.Location
	logger    *zap.Logger
	now       func() time.Time
}

func NewService(email EmailSender, push PushSender, reminders ReminderScheduler, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if email == nil {
		email = NewLogEmailSender(logger)
	}
	if push == nil {
		push = NewLogPushSender(logger)
	}
	return &Service{
		email:     email,
		push:      push,
		reminders: reminders,
		location:  time.Local,
		logger:    logger,
		now:       time.Now,
	}
}

// SetReminderScheduler wires the reminder queue once it exists.
func (s *Service) SetReminderScheduler(r ReminderScheduler) {
	s.reminders = r
}

// BookingSubmitted notifies the customer of a new booking. Delivery failures
// are logged and never reach the caller.
func (s *Service) BookingSubmitted(ctx context.Context, b models.Booking, c models.Confirmation) {
	prefs := c.Draft.Notifications
	info := c.Draft.PersonalInfo
	subject := fmt.Sprintf("Booking confirmed: %s", b.ServiceName)
	body := confirmationBody(b, c)

	if prefs.Email && info.Email != "" {
		if err := s.email.Send(ctx, EmailMessage{To: info.Email, ToName: info.Name, Subject: subject, Body: body}); err != nil {
			s.logger.Warn("failed to send confirmation email", zap.String("bookingId", b.ID), zap.Error(err))
		}
	}
	// Text alerts go to the user's phone as a push.
	if prefs.SMS {
		msg := PushMessage{
			Topic: UserTopic(b.UserID),
			Title: subject,
			Body:  body,
			Data:  map[string]string{"bookingId": b.ID, "type": "booking_confirmed"},
		}
		if err := s.push.Push(ctx, msg); err != nil {
			s.logger.Warn("failed to send confirmation push", zap.String("bookingId", b.ID), zap.Error(err))
		}
	}
	if prefs.Reminders && c.TimeSlot != nil {
		s.scheduleReminder(ctx, b, c)
	}
}

func (s *Service) scheduleReminder(ctx context.Context, b models.Booking, c models.Confirmation) {
	if s.reminders == nil {
		s.logger.Debug("reminders disabled", zap.String("bookingId", b.ID))
		return
	}
	start, err := catalog.SlotStart(*c.TimeSlot, s.location)
	if err != nil {
		s.logger.Warn("cannot schedule reminder", zap.String("bookingId", b.ID), zap.Error(err))
		return
	}
	at := start.Add(-reminderLead)
	if now := s.now(); at.Before(now) {
		at = now
	}
	r := Reminder{
		BookingID:   b.ID,
		UserID:      b.UserID,
		Email:       c.Draft.PersonalInfo.Email,
		Name:        c.Draft.PersonalInfo.Name,
		ServiceName: b.ServiceName,
		SlotLabel:   c.TimeSlot.Label,
		StartsAt:    start,
	}
	if err := s.reminders.ScheduleReminder(ctx, r, at); err != nil {
		s.logger.Warn("failed to schedule reminder", zap.String("bookingId", b.ID), zap.Error(err))
	}
}

// SendReminder delivers a due reminder on every available channel.
func (s *Service) SendReminder(ctx context.Context, r Reminder) error {
	title := fmt.Sprintf("Upcoming: %s", r.ServiceName)
	body := fmt.Sprintf("Your %s booking starts at %s.", r.ServiceName, r.StartsAt.Format("Mon 2 Jan 15:04"))

	var errs []error
	if err := s.push.Push(ctx, PushMessage{
		Topic: UserTopic(r.UserID),
		Title: title,
		Body:  body,
		Data:  map[string]string{"bookingId": r.BookingID, "type": "booking_reminder"},
	}); err != nil {
		errs = append(errs, err)
	}
	if r.Email != "" {
		if err := s.email.Send(ctx, EmailMessage{To: r.Email, ToName: r.Name, Subject: title, Body: body}); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func confirmationBody(b models.Booking, c models.Confirmation) string {
	body := fmt.Sprintf("Hi %s, your %s booking is confirmed. Total: %.2f %s.",
		c.Draft.PersonalInfo.Name, b.ServiceName, c.Quote.Total, c.Quote.Currency)
	if b.ProfessionalName != "" {
		body += fmt.Sprintf(" Your professional: %s.", b.ProfessionalName)
	}
	if c.TimeSlot != nil {
		body += fmt.Sprintf(" When: %s, %s.", c.TimeSlot.Date, c.TimeSlot.Label)
	}
	return body
}

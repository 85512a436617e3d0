package catalog

import (
	"fmt"
	"strings"
	"time"

	"homeserve/models"
)

const slotDateLayout = "2006-01-02"

// Catalog serves the fixed service, professional and time-slot data.
type Catalog struct {
	services      []models.Service
	professionals []models.Professional
	templates     []slotTemplate
}

// New returns the catalog backed by the built-in data.
func New() *Catalog {
	return &Catalog{
		services:      defaultServices,
		professionals: defaultProfessionals,
		templates:     defaultSlotTemplates,
	}
}

// Services returns every service. The returned slice is a copy.
func (c *Catalog) Services() []models.Service {
	return append([]models.Service(nil), c.services...)
}

func (c *Catalog) Service(id string) (models.Service, error) {
	for _, s := range c.services {
		if s.ID == id {
			return s, nil
		}
	}
	return models.Service{}, fmt.Errorf("%w: %s", ErrServiceNotFound, id)
}

// Professionals returns every professional. The returned slice is a copy.
func (c *Catalog) Professionals() []models.Professional {
	out := make([]models.Professional, len(c.professionals))
	copy(out, c.professionals)
	return out
}

func (c *Catalog) Professional(id string) (models.Professional, error) {
	for _, p := range c.professionals {
		if p.ID == id {
			return p, nil
		}
	}
	return models.Professional{}, fmt.Errorf("%w: %s", ErrProfessionalNotFound, id)
}

// ProfessionalsFor lists the professionals offering serviceID. An empty id lists all.
func (c *Catalog) ProfessionalsFor(serviceID string) []models.Professional {
	if serviceID == "" {
		return c.Professionals()
	}
	var out []models.Professional
	for _, p := range c.professionals {
		if p.Offers(serviceID) {
			out = append(out, p)
		}
	}
	return out
}

// Slots lists the appointment windows for `days` consecutive days starting at from.
func (c *Catalog) Slots(from time.Time, days int) []models.TimeSlot {
	if days <= 0 {
		days = 1
	}
	out := make([]models.TimeSlot, 0, days*len(c.templates))
	for d := 0; d < days; d++ {
		date := from.AddDate(0, 0, d).Format(slotDateLayout)
		for _, tpl := range c.templates {
			out = append(out, tpl.slot(date))
		}
	}
	return out
}

// Slot resolves a slot ID of the form "<YYYY-MM-DD>@<window>".
func (c *Catalog) Slot(id string) (models.TimeSlot, error) {
	date, key, ok := strings.Cut(id, "@")
	if !ok {
		return models.TimeSlot{}, fmt.Errorf("%w: %s", ErrSlotNotFound, id)
	}
	if _, err := time.Parse(slotDateLayout, date); err != nil {
		return models.TimeSlot{}, fmt.Errorf("%w: %s", ErrSlotNotFound, id)
	}
	for _, tpl := range c.templates {
		if tpl.key == key {
			return tpl.slot(date), nil
		}
	}
	return models.TimeSlot{}, fmt.Errorf("%w: %s", ErrSlotNotFound, id)
}

// ValidateSelection checks that the referenced ids exist and fit together.
// Empty ids are skipped.
func (c *Catalog) ValidateSelection(serviceID, professionalID, slotID string) error {
	if serviceID != "" {
		if _, err := c.Service(serviceID); err != nil {
			return err
		}
	}
	if professionalID != "" {
		p, err := c.Professional(professionalID)
		if err != nil {
			return err
		}
		if serviceID != "" && !p.Offers(serviceID) {
			return fmt.Errorf("%w: %s does not offer %s", ErrProfessionalMismatch, professionalID, serviceID)
		}
	}
	if slotID != "" {
		if _, err := c.Slot(slotID); err != nil {
			return err
		}
	}
	return nil
}

func (t slotTemplate) slot(date string) models.TimeSlot {
	return models.TimeSlot{
		ID:        date + "@" + t.key,
		Date:      date,
		Label:     t.label,
		Start:     t.start,
		End:       t.end,
		Surcharge: t.surcharge,
	}
}

// SlotStart returns the wall-clock start of a slot in loc.
func SlotStart(slot models.TimeSlot, loc *time.Location) (time.Time, error) {
	day, err := time.ParseInLocation(slotDateLayout, slot.Date, loc)
	if err != nil {
		return time.Time{}, err
	}
	return day.Add(time.Duration(slot.Start) * time.Minute), nil
}

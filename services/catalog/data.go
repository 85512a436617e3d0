package catalog

import "homeserve/models"

// Prices are in the configured currency.
var defaultServices = []models.Service{
	{ID: "plumbing", Name: "Plumbing Repair", Category: "Plumbing", Icon: "🔧", BasePrice: 800, UnitType: "visit"},
	{ID: "pipe-installation", Name: "Pipe Installation", Category: "Plumbing", Icon: "🚰", BasePrice: 1200, UnitType: "visit"},
	{ID: "electrical", Name: "Electrical Wiring", Category: "Electrical", Icon: "💡", BasePrice: 1500, UnitType: "visit"},
	{ID: "appliance-repair", Name: "Appliance Repair", Category: "Electrical", Icon: "🔌", BasePrice: 950, UnitType: "visit"},
	{ID: "home-cleaning", Name: "Home Cleaning", Category: "Cleaning", Icon: "🧹", BasePrice: 600, UnitType: "hours"},
	{ID: "deep-cleaning", Name: "Deep Cleaning", Category: "Cleaning", Icon: "🧽", BasePrice: 1800, UnitType: "visit"},
	{ID: "painting", Name: "Interior Painting", Category: "Painting", Icon: "🎨", BasePrice: 2500, UnitType: "room"},
	{ID: "carpentry", Name: "Carpentry", Category: "Carpentry", Icon: "🪚", BasePrice: 1000, UnitType: "visit"},
	{ID: "pest-control", Name: "Pest Control", Category: "Cleaning", Icon: "🐜", BasePrice: 1400, UnitType: "visit"},
	{ID: "emergency-plumbing", Name: "Emergency Plumbing", Category: "Emergency", Icon: "🚨", BasePrice: 2000, UnitType: "visit", Emergency: true},
	{ID: "emergency-electrical", Name: "Emergency Electrician", Category: "Emergency", Icon: "⚡", BasePrice: 2200, UnitType: "visit", Emergency: true},
}

var defaultProfessionals = []models.Professional{
	{
		ID: "pro-rajesh", Name: "Rajesh Kumar", Category: "Plumbing", Specialty: "Leak detection and pipe repair",
		ServiceIDs: []string{"plumbing", "pipe-installation", "emergency-plumbing"},
		Rating:     4.8, Reviews: 214, ExperienceYears: 12, HourlyRate: 450, Verified: true, ResponseTime: "15 min",
		Location: models.NewGeoPoint(-1.2921, 36.8219),
	},
	{
		ID: "pro-amina", Name: "Amina Wanjiru", Category: "Plumbing", Specialty: "Bathroom and kitchen fittings",
		ServiceIDs: []string{"plumbing", "pipe-installation"},
		Rating:     4.6, Reviews: 98, ExperienceYears: 7, HourlyRate: 380, Verified: true, ResponseTime: "30 min",
		Location: models.NewGeoPoint(-1.2640, 36.8030),
	},
	{
		ID: "pro-suresh", Name: "Suresh Patel", Category: "Electrical", Specialty: "Residential wiring and panels",
		ServiceIDs: []string{"electrical", "appliance-repair", "emergency-electrical"},
		Rating:     4.9, Reviews: 321, ExperienceYears: 15, HourlyRate: 600, Verified: true, ResponseTime: "20 min",
		Location: models.NewGeoPoint(-1.3000, 36.7800),
	},
	{
		ID: "pro-otieno", Name: "Brian Otieno", Category: "Electrical", Specialty: "Appliance diagnostics",
		ServiceIDs: []string{"appliance-repair", "electrical"},
		Rating:     4.3, Reviews: 57, ExperienceYears: 4, HourlyRate: 320, Verified: false, ResponseTime: "1 hour",
		Location: models.NewGeoPoint(-1.2200, 36.8900),
	},
	{
		ID: "pro-grace", Name: "Grace Muthoni", Category: "Cleaning", Specialty: "Deep and move-out cleaning",
		ServiceIDs: []string{"home-cleaning", "deep-cleaning"},
		Rating:     4.7, Reviews: 176, ExperienceYears: 6, HourlyRate: 250, Verified: true, ResponseTime: "45 min",
		Location: models.NewGeoPoint(-1.2833, 36.8167),
	},
	{
		ID: "pro-sparkle", Name: "Sparkle Crew", Category: "Cleaning", Specialty: "Eco-friendly home cleaning",
		ServiceIDs: []string{"home-cleaning", "deep-cleaning", "pest-control"},
		Rating:     4.4, Reviews: 143, ExperienceYears: 5, HourlyRate: 280, Verified: true, ResponseTime: "2 hours",
		Location: models.NewGeoPoint(-1.3100, 36.8400),
	},
	{
		ID: "pro-daniel", Name: "Daniel Kiptoo", Category: "Painting", Specialty: "Interior and accent walls",
		ServiceIDs: []string{"painting"},
		Rating:     4.5, Reviews: 64, ExperienceYears: 9, HourlyRate: 400, Verified: false, ResponseTime: "3 hours",
		Location: models.NewGeoPoint(-1.2500, 36.7500),
	},
	{
		ID: "pro-mohan", Name: "Mohan Singh", Category: "Carpentry", Specialty: "Custom furniture and repairs",
		ServiceIDs: []string{"carpentry"},
		Rating:     4.6, Reviews: 88, ExperienceYears: 18, HourlyRate: 500, Verified: true, ResponseTime: "1 hour",
		Location: models.NewGeoPoint(-1.2700, 36.8600),
	},
}

// slotTemplate is a daily appointment window. Evening and early windows carry a surcharge.
type slotTemplate struct {
	key       string
	label     string
	start     int
	end       int
	surcharge float64
}

var defaultSlotTemplates = []slotTemplate{
	{key: "early", label: "7:00 AM - 9:00 AM", start: 7 * 60, end: 9 * 60, surcharge: 150},
	{key: "morning", label: "9:00 AM - 12:00 PM", start: 9 * 60, end: 12 * 60},
	{key: "afternoon", label: "12:00 PM - 3:00 PM", start: 12 * 60, end: 15 * 60},
	{key: "late-afternoon", label: "3:00 PM - 6:00 PM", start: 15 * 60, end: 18 * 60},
	{key: "evening", label: "6:00 PM - 9:00 PM", start: 18 * 60, end: 21 * 60, surcharge: 200},
}

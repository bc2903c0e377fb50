// Package catalog holds the clinic's fixed booking data: the bookable
// services, the doctor roster with profiles, and the time-slot fixture.
package catalog

import "strings"

// Service is a bookable service label.
type Service string

const (
	TeethCleaning     Service = "Teeth Cleaning"
	ToothExtraction   Service = "Tooth Extraction"
	BracesAlignment   Service = "Braces & Alignment"
	CosmeticDentistry Service = "Cosmetic Dentistry"
)

// Doctor names on the roster.
const (
	DrAngelaCruz    = "Dr. Angela Cruz"
	DrMiguelSantos  = "Dr. Miguel Santos"
	DrPatriciaReyes = "Dr. Patricia Reyes"

	// AnyAvailableDoctor is chosen when no specialty mapping applies.
	AnyAvailableDoctor = "Any available doctor"
)

// Services returns the service catalog in display order.
func Services() []Service {
	return []Service{TeethCleaning, ToothExtraction, BracesAlignment, CosmeticDentistry}
}

// IsService reports whether s is an exact catalog label.
func IsService(s string) bool {
	for _, svc := range Services() {
		if string(svc) == s {
			return true
		}
	}
	return false
}

// Doctors returns the roster names in display order.
func Doctors() []string {
	return []string{DrAngelaCruz, DrMiguelSantos, DrPatriciaReyes}
}

// IsDoctor reports whether name is on the roster. The sentinel is not a
// roster member; see IsBookableDoctor.
func IsDoctor(name string) bool {
	for _, d := range Doctors() {
		if d == name {
			return true
		}
	}
	return false
}

// IsBookableDoctor accepts roster names and the any-available sentinel.
func IsBookableDoctor(name string) bool {
	return name == AnyAvailableDoctor || IsDoctor(name)
}

// DoctorProfile is the public profile shown before booking with a doctor.
type DoctorProfile struct {
	Name            string    `json:"name"`
	Role            string    `json:"role"`
	ExperienceYears int       `json:"experience_years"`
	Rating          float64   `json:"rating"`
	Location        string    `json:"location"`
	Schedule        string    `json:"schedule"`
	Bio             string    `json:"bio"`
	Specialties     []string  `json:"specialties"`
	Services        []Service `json:"services"`
}

// Profiles returns the doctor profiles in roster order.
func Profiles() []DoctorProfile {
	return []DoctorProfile{
		{
			Name:            DrAngelaCruz,
			Role:            "General Dentist",
			ExperienceYears: 12,
			Rating:          4.9,
			Location:        "SmileCare Main Clinic",
			Schedule:        "Mon - Fri, 9:00 AM - 5:00 PM",
			Bio:             "Focuses on preventive care, gentle cleanings and extractions for patients of every age.",
			Specialties:     []string{"Preventive care", "Gum health", "Extractions"},
			Services:        []Service{TeethCleaning, ToothExtraction},
		},
		{
			Name:            DrMiguelSantos,
			Role:            "Orthodontist",
			ExperienceYears: 10,
			Rating:          4.8,
			Location:        "SmileCare Main Clinic",
			Schedule:        "Tue - Sat, 10:00 AM - 6:00 PM",
			Bio:             "Plans braces and clear aligner treatment for teens and adults.",
			Specialties:     []string{"Braces", "Clear aligners", "Bite correction"},
			Services:        []Service{BracesAlignment},
		},
		{
			Name:            DrPatriciaReyes,
			Role:            "Cosmetic Dentist",
			ExperienceYears: 8,
			Rating:          4.9,
			Location:        "SmileCare Main Clinic",
			Schedule:        "Mon, Wed, Fri, 9:00 AM - 4:00 PM",
			Bio:             "Designs whitening, veneer and smile makeover plans.",
			Specialties:     []string{"Whitening", "Veneers", "Smile makeovers"},
			Services:        []Service{CosmeticDentistry},
		},
	}
}

// Profile looks up a doctor profile by name, ignoring case and surrounding space.
func Profile(name string) (DoctorProfile, bool) {
	key := strings.TrimSpace(name)
	for _, p := range Profiles() {
		if strings.EqualFold(p.Name, key) {
			return p, true
		}
	}
	return DoctorProfile{}, false
}

// defaultTimeSlots is the same for every date. It is a fixture, not an
// availability calendar.
var defaultTimeSlots = [...]string{
	"09:00 AM",
	"10:00 AM",
	"11:00 AM",
	"01:00 PM",
	"02:00 PM",
	"03:00 PM",
}

// TimeSlots returns a fresh copy of the slot fixture for date. The date is
// accepted for call-site clarity only; every date yields the same slots.
func TimeSlots(date string) []string {
	_ = date
	out := make([]string, len(defaultTimeSlots))
	copy(out, defaultTimeSlots[:])
	return out
}

// Package resolver maps a triage recommendation onto a bookable catalog
// service and a default doctor. Both mappings are static and ignore
// availability.
package resolver

import (
	"strings"

	"github.com/wolfman30/smilecare-booking/internal/catalog"
	"github.com/wolfman30/smilecare-booking/internal/triage"
)

// ServiceRule maps a service title to a catalog entry when any keyword
// appears in it (case-insensitive).
type ServiceRule struct {
	Keywords []string
	Service  catalog.Service
}

// Matches reports whether title contains one of the rule's keywords.
func (r ServiceRule) Matches(title string) bool {
	title = strings.ToLower(title)
	for _, kw := range r.Keywords {
		if strings.Contains(title, kw) {
			return true
		}
	}
	return false
}

var serviceRules = []ServiceRule{
	{Keywords: []string{"cosmetic"}, Service: catalog.CosmeticDentistry},
	{Keywords: []string{"braces", "alignment"}, Service: catalog.BracesAlignment},
	{Keywords: []string{"clean", "gum"}, Service: catalog.TeethCleaning},
	{Keywords: []string{"extraction", "emergency"}, Service: catalog.ToothExtraction},
	{Keywords: []string{"checkup", "assessment"}, Service: catalog.TeethCleaning},
}

// DefaultService is used when no keyword rule matches.
const DefaultService = catalog.TeethCleaning

// ServiceRules returns a copy of the ordered keyword rules.
func ServiceRules() []ServiceRule {
	out := make([]ServiceRule, len(serviceRules))
	copy(out, serviceRules)
	return out
}

// ResolveService picks the catalog service for a recommendation. The first
// matching rule wins; unmatched titles get DefaultService.
func ResolveService(rec triage.Recommendation) catalog.Service {
	return ServiceForTitle(rec.ServiceTitle)
}

// ServiceForTitle applies the keyword rules to a raw title.
func ServiceForTitle(title string) catalog.Service {
	for _, r := range serviceRules {
		if r.Matches(title) {
			return r.Service
		}
	}
	return DefaultService
}

var doctorBySpecialty = map[catalog.Service]string{
	catalog.BracesAlignment:   catalog.DrMiguelSantos,
	catalog.CosmeticDentistry: catalog.DrPatriciaReyes,
	catalog.ToothExtraction:   catalog.DrAngelaCruz,
	catalog.TeethCleaning:     catalog.DrAngelaCruz,
}

// ResolveDoctor returns the default doctor for an exact catalog label, or
// catalog.AnyAvailableDoctor for anything else.
func ResolveDoctor(service string) string {
	if doctor, ok := doctorBySpecialty[catalog.Service(service)]; ok {
		return doctor
	}
	return catalog.AnyAvailableDoctor
}

// Resolution is the service/doctor pair used to seed the appointment wizard.
type Resolution struct {
	Service catalog.Service `json:"service"`
	Doctor  string          `json:"doctor"`
}

// Resolve runs ResolveService then ResolveDoctor.
func Resolve(rec triage.Recommendation) Resolution {
	svc := ResolveService(rec)
	return Resolution{Service: svc, Doctor: ResolveDoctor(string(svc))}
}

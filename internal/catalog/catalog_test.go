package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServices(t *testing.T) {
	services := Services()
	require.Len(t, services, 4)
	assert.Equal(t, []Service{TeethCleaning, ToothExtraction, BracesAlignment, CosmeticDentistry}, services)

	assert.True(t, IsService("Braces & Alignment"))
	assert.False(t, IsService("braces & alignment"))
	assert.False(t, IsService("Emergency Consultation"))
	assert.False(t, IsService(""))
}

func TestDoctors(t *testing.T) {
	assert.Len(t, Doctors(), 3)
	assert.True(t, IsDoctor(DrMiguelSantos))
	assert.False(t, IsDoctor(AnyAvailableDoctor))
	assert.True(t, IsBookableDoctor(AnyAvailableDoctor))
	assert.False(t, IsBookableDoctor("Dr. Nobody"))
}

func TestProfiles(t *testing.T) {
	profiles := Profiles()
	require.Len(t, profiles, len(Doctors()))
	for i, p := range profiles {
		assert.Equal(t, Doctors()[i], p.Name)
		assert.NotEmpty(t, p.Role)
		assert.NotEmpty(t, p.Services)
		for _, svc := range p.Services {
			assert.True(t, IsService(string(svc)), "profile %s lists unknown service %s", p.Name, svc)
		}
	}

	p, ok := Profile("  dr. patricia reyes ")
	require.True(t, ok)
	assert.Equal(t, "Cosmetic Dentist", p.Role)

	_, ok = Profile(AnyAvailableDoctor)
	assert.False(t, ok)
}

func TestTimeSlotsFixture(t *testing.T) {
	a := TimeSlots("2025-06-01")
	b := TimeSlots("2025-12-24")
	require.Len(t, a, 6)
	assert.Equal(t, a, b, "slots do not vary by date")
	assert.Equal(t, "09:00 AM", a[0])
	assert.Equal(t, "03:00 PM", a[5])

	a[0] = "mutated"
	assert.Equal(t, "09:00 AM", TimeSlots("2025-06-01")[0], "callers receive a copy")
}

package model

import "strings"

const (
	SpecialtyFamilyMedicine = "Family Medicine"
	SpecialtyCardiology     = "Cardiology"
	SpecialtyDermatology    = "Dermatology"
	SpecialtyOrthopedics    = "Orthopedics"
	SpecialtyPediatrics     = "Pediatrics"
)

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

// Specialties lists every specialty a request can be classified into.
var Specialties = []string{
	SpecialtyFamilyMedicine,
	SpecialtyCardiology,
	SpecialtyDermatology,
	SpecialtyOrthopedics,
	SpecialtyPediatrics,
}

var priorities = []string{PriorityLow, PriorityMedium, PriorityHigh}

// CanonicalSpecialty maps s onto the spelling used in Specialties, ignoring case
// and surrounding whitespace.
func CanonicalSpecialty(s string) (string, bool) {
	return canonical(s, Specialties)
}

// CanonicalPriority maps p onto low, medium or high.
func CanonicalPriority(p string) (string, bool) {
	return canonical(p, priorities)
}

func canonical(value string, allowed []string) (string, bool) {
	value = strings.TrimSpace(value)
	for _, a := range allowed {
		if strings.EqualFold(a, value) {
			return a, true
		}
	}
	return "", false
}

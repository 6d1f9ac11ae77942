package model

import (
	"fmt"
	"math/rand/v2"
	"regexp"
	"time"
)

var appointmentCodePattern = regexp.MustCompile(`^APT-\d{4}-\d{6}$`)

// CodeGenerator produces a candidate human-facing appointment code.
type CodeGenerator func(now time.Time) string

// NewAppointmentCode returns APT-<year>-<6 digit random number>. Uniqueness is
// the caller's job; see the store's reserve loop.
func NewAppointmentCode(now time.Time) string {
	return fmt.Sprintf("APT-%04d-%06d", now.Year(), rand.IntN(1000000))
}

// IsAppointmentCode reports whether s has the appointment code shape.
func IsAppointmentCode(s string) bool {
	return appointmentCodePattern.MatchString(s)
}

package booking

import (
	"fmt"
	"strings"

	"github.com/ariebrainware/clinic-booking/store"
	"github.com/ariebrainware/clinic-booking/util"
)

// FieldError describes one violated constraint.
type FieldError struct {
	Field   string `json:"field"`
	Rule    string `json:"rule"`
	Message string `json:"message"`
}

// ValidationError lists every field that failed validation.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return fmt.Sprintf("invalid appointment data: %s", strings.Join(names, ", "))
}

func (e *ValidationError) Unwrap() error {
	return util.NewValidationError("invalid appointment data", nil)
}

// ConflictError reports that the requested slot is already booked.
type ConflictError struct {
	DoctorID       string
	Date           string
	Time           string
	AvailableSlots []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("slot %s %s is not available for doctor %s", e.Date, e.Time, e.DoctorID)
}

func (e *ConflictError) Unwrap() error {
	return util.NewConflictError("The requested time slot is not available. Please choose a different time.", store.ErrSlotTaken)
}

func newConflict(doctorID, date, clock string) *ConflictError {
	return &ConflictError{DoctorID: doctorID, Date: date, Time: clock, AvailableSlots: []string{}}
}

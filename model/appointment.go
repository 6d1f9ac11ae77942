package model

import "time"

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusConfirmed AppointmentStatus = "confirmed"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusCompleted AppointmentStatus = "completed"
)

// Valid reports whether s is a known status.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// AppointmentRequest is the payload a patient submits to book an appointment
// @Description Appointment request
type AppointmentRequest struct {
	PatientName      string `json:"patient_name" validate:"required,min=2,max=100" example:"Jane Doe"`
	Email            string `json:"email" validate:"required,email,max=254" example:"jane@example.com"`
	Phone            string `json:"phone" validate:"required,min=10,max=20" example:"5551234567"`
	PreferredDate    string `json:"preferred_date" validate:"required,datetime=2006-01-02" example:"2025-06-01"`
	PreferredTime    string `json:"preferred_time" validate:"required,datetime=15:04" example:"09:00"`
	DoctorPreference string `json:"doctor_preference" validate:"max=100" example:"Dr. Sarah Johnson"`
	ReasonForVisit   string `json:"reason_for_visit" validate:"required,min=10,max=1000" example:"Annual check-up, no prior issues"`
}

// Appointment is a persisted booking
// @Description Appointment information
type Appointment struct {
	ID               string            `json:"id" gorm:"primaryKey;size:36"`
	AppointmentCode  string            `json:"appointment_code" gorm:"column:appointment_code;uniqueIndex;size:32;not null" example:"APT-2025-004217"`
	PatientName      string            `json:"patient_name" gorm:"column:patient_name;size:100;not null" example:"Jane Doe"`
	Email            string            `json:"email" gorm:"column:email;size:254;not null" example:"jane@example.com"`
	Phone            string            `json:"phone" gorm:"column:phone;size:20;not null" example:"5551234567"`
	PreferredDate    string            `json:"preferred_date" gorm:"column:preferred_date;size:10;not null" example:"2025-06-01"`
	PreferredTime    string            `json:"preferred_time" gorm:"column:preferred_time;size:5;not null" example:"09:00"`
	DoctorID         string            `json:"doctor_id" gorm:"column:doctor_id;size:36;index;not null"`
	DoctorPreference string            `json:"doctor_preference" gorm:"column:doctor_preference;size:100"`
	ReasonForVisit   string            `json:"reason_for_visit" gorm:"column:reason_for_visit;type:text;not null"`
	Status           AppointmentStatus `json:"status" gorm:"column:status;size:16;not null;default:'confirmed'" example:"confirmed"`
	ConfirmedDate    string            `json:"confirmed_date" gorm:"column:confirmed_date;size:10" example:"2025-06-01"`
	ConfirmedTime    string            `json:"confirmed_time" gorm:"column:confirmed_time;size:5" example:"09:00"`
	// SlotKey is set only while the appointment is confirmed; NULLs do not collide
	// in the unique index, so cancelled rows release their slot.
	SlotKey   *string   `json:"-" gorm:"column:slot_key;uniqueIndex;size:128"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// AppointmentUpdate carries a partial update; nil fields are left untouched.
type AppointmentUpdate struct {
	Status         *AppointmentStatus `json:"status,omitempty" validate:"omitempty,oneof=confirmed cancelled completed"`
	ConfirmedDate  *string            `json:"confirmed_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	ConfirmedTime  *string            `json:"confirmed_time,omitempty" validate:"omitempty,datetime=15:04"`
	ReasonForVisit *string            `json:"reason_for_visit,omitempty" validate:"omitempty,min=10,max=1000"`
}

// Empty reports whether the update changes nothing.
func (u AppointmentUpdate) Empty() bool {
	return u.Status == nil && u.ConfirmedDate == nil && u.ConfirmedTime == nil && u.ReasonForVisit == nil
}

// Apply merges the non-nil fields of u into a and refreshes the slot key.
func (u AppointmentUpdate) Apply(a *Appointment) {
	if u.Status != nil {
		a.Status = *u.Status
	}
	if u.ConfirmedDate != nil {
		a.ConfirmedDate = *u.ConfirmedDate
	}
	if u.ConfirmedTime != nil {
		a.ConfirmedTime = *u.ConfirmedTime
	}
	if u.ReasonForVisit != nil {
		a.ReasonForVisit = *u.ReasonForVisit
	}
	a.RefreshSlotKey()
}

// SlotKey identifies a (doctor, date, time) triple.
func SlotKey(doctorID, date, clock string) string {
	return doctorID + "|" + date + "|" + clock
}

// OccupiesSlot reports whether the appointment holds its doctor's slot.
func (a *Appointment) OccupiesSlot() bool {
	return a.Status == StatusConfirmed
}

// RefreshSlotKey recomputes SlotKey from status, doctor and confirmed date/time.
func (a *Appointment) RefreshSlotKey() {
	if !a.OccupiesSlot() {
		a.SlotKey = nil
		return
	}
	key := SlotKey(a.DoctorID, a.ConfirmedDate, a.ConfirmedTime)
	a.SlotKey = &key
}

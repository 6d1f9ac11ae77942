package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confirmedAppointment(id, code, doctorID, date, clock string) Appointment {
	a := Appointment{
		ID:              id,
		AppointmentCode: code,
		PatientName:     "Jane Doe",
		Email:           "jane@example.com",
		Phone:           "5551234567",
		PreferredDate:   date,
		PreferredTime:   clock,
		DoctorID:        doctorID,
		ReasonForVisit:  "Annual check-up, no prior issues",
		Status:          StatusConfirmed,
		ConfirmedDate:   date,
		ConfirmedTime:   clock,
	}
	a.RefreshSlotKey()
	return a
}

func TestAppointmentStatus_Valid(t *testing.T) {
	assert.True(t, StatusConfirmed.Valid())
	assert.True(t, StatusCancelled.Valid())
	assert.True(t, StatusCompleted.Valid())
	assert.False(t, AppointmentStatus("pending").Valid())
	assert.False(t, AppointmentStatus("").Valid())
}

func TestAppointment_RefreshSlotKey(t *testing.T) {
	a := confirmedAppointment("a1", "APT-2025-000001", "doc-1", "2025-06-01", "09:00")
	require.NotNil(t, a.SlotKey)
	assert.Equal(t, "doc-1|2025-06-01|09:00", *a.SlotKey)

	a.Status = StatusCancelled
	a.RefreshSlotKey()
	assert.Nil(t, a.SlotKey)
}

func TestAppointmentUpdate_Apply(t *testing.T) {
	a := confirmedAppointment("a1", "APT-2025-000001", "doc-1", "2025-06-01", "09:00")

	newTime := "10:30"
	AppointmentUpdate{ConfirmedTime: &newTime}.Apply(&a)
	assert.Equal(t, "10:30", a.ConfirmedTime)
	assert.Equal(t, "2025-06-01", a.ConfirmedDate)
	require.NotNil(t, a.SlotKey)
	assert.Equal(t, "doc-1|2025-06-01|10:30", *a.SlotKey)

	cancelled := StatusCancelled
	AppointmentUpdate{Status: &cancelled}.Apply(&a)
	assert.Equal(t, StatusCancelled, a.Status)
	assert.Nil(t, a.SlotKey)
}

func TestAppointmentUpdate_Empty(t *testing.T) {
	assert.True(t, AppointmentUpdate{}.Empty())
	reason := "Follow-up on blood pressure"
	assert.False(t, AppointmentUpdate{ReasonForVisit: &reason}.Empty())
}

func TestAppointmentModel_SlotKeyUniqueIndex(t *testing.T) {
	db := setupTestDB(t, "appointment", &Appointment{})

	first := confirmedAppointment("a1", "APT-2025-000001", "doc-1", "2025-06-01", "09:00")
	require.NoError(t, db.Create(&first).Error)

	clash := confirmedAppointment("a2", "APT-2025-000002", "doc-1", "2025-06-01", "09:00")
	assert.Error(t, db.Create(&clash).Error, "second confirmed appointment in the same slot must be rejected")

	otherDoctor := confirmedAppointment("a3", "APT-2025-000003", "doc-2", "2025-06-01", "09:00")
	assert.NoError(t, db.Create(&otherDoctor).Error)
}

func TestAppointmentModel_CancelledRowsDoNotHoldSlot(t *testing.T) {
	db := setupTestDB(t, "appointment_cancelled", &Appointment{})

	for i, code := range []string{"APT-2025-000010", "APT-2025-000011"} {
		a := confirmedAppointment(code, code, "doc-1", "2025-06-01", "09:00")
		a.Status = StatusCancelled
		a.RefreshSlotKey()
		require.NoError(t, db.Create(&a).Error, "cancelled row %d", i)
	}

	active := confirmedAppointment("a3", "APT-2025-000012", "doc-1", "2025-06-01", "09:00")
	assert.NoError(t, db.Create(&active).Error)

	var count int64
	db.Model(&Appointment{}).Where("doctor_id = ?", "doc-1").Count(&count)
	assert.Equal(t, int64(3), count)
}

func TestAppointmentModel_CodeIsUnique(t *testing.T) {
	db := setupTestDB(t, "appointment_code", &Appointment{})

	a := confirmedAppointment("a1", "APT-2025-123456", "doc-1", "2025-06-01", "09:00")
	require.NoError(t, db.Create(&a).Error)

	b := confirmedAppointment("a2", "APT-2025-123456", "doc-1", "2025-06-02", "09:00")
	assert.Error(t, db.Create(&b).Error)
}

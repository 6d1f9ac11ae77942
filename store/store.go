// Package store persists users, doctors and appointments. The booking flow only
// depends on the Store interface; MemoryStore is the default backend and
// GormStore serves MySQL (and SQLite in tests).
package store

import (
	"context"
	"errors"
	"time"

	"github.com/ariebrainware/clinic-booking/model"
	"github.com/google/uuid"
)

var (
	ErrNotFound      = errors.New("store: record not found")
	ErrDuplicate     = errors.New("store: duplicate record")
	ErrSlotTaken     = errors.New("store: slot already booked")
	ErrCodeExhausted = errors.New("store: could not allocate a unique appointment code")
)

// maxCodeAttempts bounds the regenerate loop for appointment codes.
const maxCodeAttempts = 10

type UserStore interface {
	CreateUser(ctx context.Context, u model.User) (model.User, error)
	GetUser(ctx context.Context, id string) (model.User, error)
	GetUserByUsername(ctx context.Context, username string) (model.User, error)
}

type DoctorStore interface {
	CreateDoctor(ctx context.Context, d model.Doctor) (model.Doctor, error)
	GetDoctor(ctx context.Context, id string) (model.Doctor, error)
	GetDoctorByName(ctx context.Context, name string) (model.Doctor, error)
	// ListDoctors returns doctors in creation order.
	ListDoctors(ctx context.Context) ([]model.Doctor, error)
}

type AppointmentStore interface {
	// ReserveAppointment assigns an id and a unique appointment code and inserts a,
	// failing with ErrSlotTaken when its doctor already has a confirmed appointment
	// at the same date and time. The check and the insert are atomic.
	ReserveAppointment(ctx context.Context, a model.Appointment) (model.Appointment, error)
	GetAppointment(ctx context.Context, id string) (model.Appointment, error)
	GetAppointmentByCode(ctx context.Context, code string) (model.Appointment, error)
	ListAppointments(ctx context.Context) ([]model.Appointment, error)
	UpdateAppointment(ctx context.Context, id string, upd model.AppointmentUpdate) (model.Appointment, error)
	IsSlotAvailable(ctx context.Context, doctorID, date, clock string) (bool, error)
}

// Store is the full persistence contract.
type Store interface {
	UserStore
	DoctorStore
	AppointmentStore
}

type options struct {
	newCode model.CodeGenerator
	now     func() time.Time
}

// Option customizes a store.
type Option func(*options)

// WithCodeGenerator overrides appointment code generation.
func WithCodeGenerator(gen model.CodeGenerator) Option {
	return func(o *options) { o.newCode = gen }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

func buildOptions(opts []Option) options {
	o := options{newCode: model.NewAppointmentCode, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// prepareAppointment fills the fields every new appointment gets regardless of backend.
func prepareAppointment(a *model.Appointment, now time.Time) {
	a.ID = uuid.NewString()
	if a.Status == "" {
		a.Status = model.StatusConfirmed
	}
	if a.ConfirmedDate == "" {
		a.ConfirmedDate = a.PreferredDate
	}
	if a.ConfirmedTime == "" {
		a.ConfirmedTime = a.PreferredTime
	}
	a.CreatedAt = now
	a.UpdatedAt = now
	a.RefreshSlotKey()
}

// allocateCode draws codes until taken reports one as free.
func allocateCode(gen model.CodeGenerator, now time.Time, taken func(code string) (bool, error)) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code := gen(now)
		used, err := taken(code)
		if err != nil {
			return "", err
		}
		if !used {
			return code, nil
		}
	}
	return "", ErrCodeExhausted
}

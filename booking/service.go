// Package booking runs the appointment flow: validate, classify, pick a doctor,
// reserve the slot and report the result.
package booking

import (
	"context"
	"errors"
	"strings"

	"github.com/ariebrainware/clinic-booking/classifier"
	"github.com/ariebrainware/clinic-booking/metrics"
	"github.com/ariebrainware/clinic-booking/model"
	"github.com/ariebrainware/clinic-booking/store"
	"github.com/ariebrainware/clinic-booking/util"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("clinic-booking/booking")

// Classifier normalizes a request. Implementations must not fail.
type Classifier interface {
	Classify(ctx context.Context, req model.AppointmentRequest) classifier.Result
}

// AIProcessing is what the classifier contributed to a booking.
type AIProcessing struct {
	SuggestedSpecialty string `json:"suggested_specialty"`
	Priority           string `json:"priority"`
}

// Confirmation is returned for a successful booking.
type Confirmation struct {
	model.Appointment
	Doctor       model.Doctor `json:"doctor"`
	AIProcessing AIProcessing `json:"ai_processing"`
}

// AppointmentDetails is an appointment with its doctor attached.
type AppointmentDetails struct {
	model.Appointment
	Doctor *model.Doctor `json:"doctor"`
}

type Service struct {
	store      store.Store
	classifier Classifier
	metrics    *metrics.Metrics
	validate   *validator.Validate
}

func NewService(s store.Store, c Classifier, m *metrics.Metrics) *Service {
	return &Service{
		store:      s,
		classifier: c,
		metrics:    m,
		validate:   newValidator(),
	}
}

// Validate checks req and returns a *ValidationError listing every violation.
func (s *Service) Validate(req model.AppointmentRequest) error {
	return validateStruct(s.validate, req)
}

// Book runs the full booking flow for req.
func (s *Service) Book(ctx context.Context, req model.AppointmentRequest) (*Confirmation, error) {
	ctx, span := tracer.Start(ctx, "booking.book")
	defer span.End()
	logger := util.LoggerFromContext(ctx)
	client := util.ClientInfoFromContext(ctx)

	if err := s.Validate(req); err != nil {
		s.metrics.ObserveBooking(metrics.OutcomeInvalid)
		span.SetStatus(codes.Error, "invalid request")
		s.logEvent(client, util.BookingEvent{
			EventType: util.EventValidationFailed,
			Message:   "appointment request failed validation",
			Details:   validationDetails(err),
		})
		return nil, err
	}

	result := s.classifier.Classify(ctx, req)
	span.SetAttributes(
		attribute.String("clinic.booking.specialty", result.SuggestedSpecialty),
		attribute.Bool("clinic.booking.classifier_fallback", result.Fallback),
	)

	doctor, err := s.selectDoctor(ctx, req.DoctorPreference, result.SuggestedSpecialty)
	if err != nil {
		if util.ErrorTypeOf(err) == util.ErrorTypeNotFound {
			s.metrics.ObserveBooking(metrics.OutcomeNoDoctor)
		} else {
			s.metrics.ObserveBooking(metrics.OutcomeError)
		}
		span.RecordError(err)
		logger.Error().Err(err).Msg("doctor selection failed")
		return nil, err
	}

	appointment := model.Appointment{
		PatientName:      req.PatientName,
		Email:            req.Email,
		Phone:            req.Phone,
		PreferredDate:    result.RequestedDate,
		PreferredTime:    result.RequestedTime,
		DoctorID:         doctor.ID,
		DoctorPreference: req.DoctorPreference,
		ReasonForVisit:   result.ReasonForVisit,
		Status:           model.StatusConfirmed,
		ConfirmedDate:    result.RequestedDate,
		ConfirmedTime:    result.RequestedTime,
	}

	saved, err := s.store.ReserveAppointment(ctx, appointment)
	if errors.Is(err, store.ErrSlotTaken) {
		s.metrics.ObserveBooking(metrics.OutcomeConflict)
		span.SetStatus(codes.Error, "slot taken")
		s.logEvent(client, util.BookingEvent{
			EventType: util.EventSlotConflict,
			DoctorID:  doctor.ID,
			Message:   "requested slot is already booked",
			Details:   map[string]interface{}{"date": result.RequestedDate, "time": result.RequestedTime},
		})
		return nil, newConflict(doctor.ID, result.RequestedDate, result.RequestedTime)
	}
	if err != nil {
		s.metrics.ObserveBooking(metrics.OutcomeError)
		span.RecordError(err)
		logger.Error().Err(err).Str("doctor_id", doctor.ID).Msg("failed to reserve appointment")
		return nil, util.NewInternalError("failed to create appointment", err)
	}

	s.metrics.ObserveBooking(metrics.OutcomeCreated)
	span.SetAttributes(attribute.String("clinic.booking.appointment_code", saved.AppointmentCode))
	s.logEvent(client, util.BookingEvent{
		EventType:       util.EventAppointmentCreated,
		AppointmentCode: saved.AppointmentCode,
		DoctorID:        doctor.ID,
		Message:         "appointment booked",
		Details: map[string]interface{}{
			"specialty":           result.SuggestedSpecialty,
			"priority":            result.Priority,
			"classifier_fallback": result.Fallback,
		},
	})

	return &Confirmation{
		Appointment: saved,
		Doctor:      doctor,
		AIProcessing: AIProcessing{
			SuggestedSpecialty: result.SuggestedSpecialty,
			Priority:           result.Priority,
		},
	}, nil
}

// selectDoctor picks, in order: a doctor matching the preference by name or the
// suggested specialty, a doctor of the suggested specialty, the first doctor.
func (s *Service) selectDoctor(ctx context.Context, preference, specialty string) (model.Doctor, error) {
	doctors, err := s.store.ListDoctors(ctx)
	if err != nil {
		return model.Doctor{}, util.NewInternalError("failed to list doctors", err)
	}
	if len(doctors) == 0 {
		return model.Doctor{}, util.NewNotFoundError("no doctors available", store.ErrNotFound)
	}

	if pref := strings.ToLower(util.NormalizeName(preference)); pref != "" {
		for _, d := range doctors {
			if strings.Contains(strings.ToLower(util.NormalizeName(d.Name)), pref) || strings.EqualFold(d.Specialty, specialty) {
				return d, nil
			}
		}
	}
	for _, d := range doctors {
		if strings.EqualFold(d.Specialty, specialty) {
			return d, nil
		}
	}
	return doctors[0], nil
}

// ListDoctors returns every doctor in enumeration order.
func (s *Service) ListDoctors(ctx context.Context) ([]model.Doctor, error) {
	doctors, err := s.store.ListDoctors(ctx)
	if err != nil {
		return nil, util.NewInternalError("failed to fetch doctors", err)
	}
	return doctors, nil
}

// CheckAvailability reports whether doctorID is free at date and clock.
func (s *Service) CheckAvailability(ctx context.Context, doctorID, date, clock string) (bool, error) {
	if _, err := s.store.GetDoctor(ctx, doctorID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return false, util.NewNotFoundError("doctor not found", err)
		}
		return false, util.NewInternalError("failed to fetch doctor", err)
	}
	available, err := s.store.IsSlotAvailable(ctx, doctorID, date, clock)
	if err != nil {
		return false, util.NewInternalError("failed to check availability", err)
	}
	return available, nil
}

// GetByCode returns the appointment with the given code and its doctor.
func (s *Service) GetByCode(ctx context.Context, code string) (*AppointmentDetails, error) {
	appointment, err := s.store.GetAppointmentByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, util.NewNotFoundError("appointment not found", err)
		}
		return nil, util.NewInternalError("failed to fetch appointment", err)
	}
	return s.enrich(ctx, appointment), nil
}

// List returns every appointment with its doctor.
func (s *Service) List(ctx context.Context) ([]AppointmentDetails, error) {
	appointments, err := s.store.ListAppointments(ctx)
	if err != nil {
		return nil, util.NewInternalError("failed to fetch appointments", err)
	}
	doctors, err := s.store.ListDoctors(ctx)
	if err != nil {
		return nil, util.NewInternalError("failed to fetch doctors", err)
	}
	byID := make(map[string]model.Doctor, len(doctors))
	for _, d := range doctors {
		byID[d.ID] = d
	}

	out := make([]AppointmentDetails, 0, len(appointments))
	for _, a := range appointments {
		details := AppointmentDetails{Appointment: a}
		if d, ok := byID[a.DoctorID]; ok {
			details.Doctor = &d
		}
		out = append(out, details)
	}
	return out, nil
}

// Update applies upd to the appointment with the given code.
func (s *Service) Update(ctx context.Context, code string, upd model.AppointmentUpdate) (*AppointmentDetails, error) {
	ctx, span := tracer.Start(ctx, "booking.update")
	defer span.End()

	if upd.Empty() {
		return nil, &ValidationError{Fields: []FieldError{{
			Field:   "status",
			Rule:    "required",
			Message: "at least one field must be provided",
		}}}
	}
	if err := validateStruct(s.validate, upd); err != nil {
		return nil, err
	}

	current, err := s.store.GetAppointmentByCode(ctx, code)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, util.NewNotFoundError("appointment not found", err)
		}
		return nil, util.NewInternalError("failed to fetch appointment", err)
	}

	updated, err := s.store.UpdateAppointment(ctx, current.ID, upd)
	if errors.Is(err, store.ErrSlotTaken) {
		preview := current
		upd.Apply(&preview)
		return nil, newConflict(current.DoctorID, preview.ConfirmedDate, preview.ConfirmedTime)
	}
	if err != nil {
		span.RecordError(err)
		return nil, util.NewInternalError("failed to update appointment", err)
	}

	s.logEvent(util.ClientInfoFromContext(ctx), util.BookingEvent{
		EventType:       util.EventAppointmentUpdated,
		AppointmentCode: updated.AppointmentCode,
		DoctorID:        updated.DoctorID,
		Message:         "appointment updated",
		Details:         map[string]interface{}{"status": string(updated.Status)},
	})
	return s.enrich(ctx, updated), nil
}

func (s *Service) enrich(ctx context.Context, a model.Appointment) *AppointmentDetails {
	details := &AppointmentDetails{Appointment: a}
	if d, err := s.store.GetDoctor(ctx, a.DoctorID); err == nil {
		details.Doctor = &d
	} else {
		util.LoggerFromContext(ctx).Warn().Err(err).Str("doctor_id", a.DoctorID).Msg("appointment doctor lookup failed")
	}
	return details
}

func (s *Service) logEvent(client util.ClientInfo, event util.BookingEvent) {
	event.IP = client.IP
	event.UserAgent = client.UserAgent
	util.LogBookingEvent(event)
}

func validationDetails(err error) map[string]interface{} {
	var verr *ValidationError
	if !errors.As(err, &verr) {
		return nil
	}
	fields := make([]string, 0, len(verr.Fields))
	for _, f := range verr.Fields {
		fields = append(fields, f.Field)
	}
	return map[string]interface{}{"fields": fields}
}

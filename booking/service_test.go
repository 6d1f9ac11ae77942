package booking

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ariebrainware/clinic-booking/classifier"
	"github.com/ariebrainware/clinic-booking/metrics"
	"github.com/ariebrainware/clinic-booking/model"
	"github.com/ariebrainware/clinic-booking/store"
	"github.com/ariebrainware/clinic-booking/util"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubClassifier returns the fallback result with overrides applied.
type stubClassifier struct {
	specialty string
	priority  string
	date      string
	clock     string
}

func (s stubClassifier) Classify(_ context.Context, req model.AppointmentRequest) classifier.Result {
	res := classifier.Fallback(req)
	res.Fallback = false
	if s.specialty != "" {
		res.SuggestedSpecialty = s.specialty
	}
	if s.priority != "" {
		res.Priority = s.priority
	}
	if s.date != "" {
		res.RequestedDate = s.date
	}
	if s.clock != "" {
		res.RequestedTime = s.clock
	}
	return res
}

func newTestService(t *testing.T, c Classifier) (*Service, store.Store, *metrics.Metrics) {
	t.Helper()
	s := store.NewMemoryStore()
	require.NoError(t, store.SeedDoctors(context.Background(), s))
	m := metrics.New(prometheus.NewRegistry())
	return NewService(s, c, m), s, m
}

func janeDoe() model.AppointmentRequest {
	return model.AppointmentRequest{
		PatientName:    "Jane Doe",
		Email:          "jane@example.com",
		Phone:          "5551234567",
		PreferredDate:  "2025-06-01",
		PreferredTime:  "09:00",
		ReasonForVisit: "Annual check-up, no prior issues",
	}
}

func TestBook_JaneDoeWithFallback(t *testing.T) {
	svc, s, m := newTestService(t, classifier.New(nil, classifier.Options{}))

	conf, err := svc.Book(context.Background(), janeDoe())
	require.NoError(t, err)

	assert.Equal(t, "Dr. Sarah Johnson", conf.Doctor.Name)
	assert.Equal(t, model.StatusConfirmed, conf.Status)
	assert.True(t, model.IsAppointmentCode(conf.AppointmentCode))
	assert.Equal(t, "2025-06-01", conf.ConfirmedDate)
	assert.Equal(t, "09:00", conf.ConfirmedTime)
	assert.Equal(t, model.SpecialtyFamilyMedicine, conf.AIProcessing.SuggestedSpecialty)
	assert.Equal(t, model.PriorityMedium, conf.AIProcessing.Priority)

	stored, err := s.GetAppointment(context.Background(), conf.ID)
	require.NoError(t, err)
	assert.Equal(t, conf.AppointmentCode, stored.AppointmentCode)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingsTotal.WithLabelValues(metrics.OutcomeCreated)))
}

func TestBook_UsesNormalizedDateAndTime(t *testing.T) {
	svc, _, _ := newTestService(t, stubClassifier{date: "2025-06-02", clock: "10:30"})

	conf, err := svc.Book(context.Background(), janeDoe())
	require.NoError(t, err)

	assert.Equal(t, "2025-06-02", conf.PreferredDate)
	assert.Equal(t, "10:30", conf.PreferredTime)
	assert.Equal(t, "2025-06-02", conf.ConfirmedDate)
	assert.Equal(t, "10:30", conf.ConfirmedTime)
}

func TestSelectDoctor(t *testing.T) {
	tests := []struct {
		name       string
		preference string
		specialty  string
		want       string
	}{
		{"preference by name wins", "Dr. Sarah Johnson", model.SpecialtyCardiology, "Dr. Sarah Johnson"},
		{"preference whitespace is collapsed", "  dr.  Lisa   Martinez ", "Neurology", "Dr. Lisa Martinez"},
		{"earlier specialty match precedes later name match", "chen", model.SpecialtyFamilyMedicine, "Dr. Sarah Johnson"},
		{"partial name without specialty match", "wilson", model.SpecialtyPediatrics, "Dr. James Wilson"},
		{"no preference uses specialty", "", model.SpecialtyDermatology, "Dr. Emily Rodriguez"},
		{"unmatched preference uses specialty", "Dr. House", model.SpecialtyOrthopedics, "Dr. James Wilson"},
		{"nothing matches picks first", "", "Neurology", "Dr. Sarah Johnson"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newTestService(t, stubClassifier{})
			d, err := svc.selectDoctor(context.Background(), tt.preference, tt.specialty)
			require.NoError(t, err)
			assert.Equal(t, tt.want, d.Name)
		})
	}
}

func TestBook_PreferenceBeatsSuggestedSpecialty(t *testing.T) {
	svc, _, _ := newTestService(t, stubClassifier{specialty: model.SpecialtyCardiology})
	req := janeDoe()
	req.DoctorPreference = "Dr. Sarah Johnson"

	conf, err := svc.Book(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Dr. Sarah Johnson", conf.Doctor.Name)
	assert.Equal(t, "Dr. Sarah Johnson", conf.DoctorPreference)
	assert.Equal(t, model.SpecialtyCardiology, conf.AIProcessing.SuggestedSpecialty)
}

func TestBook_NoDoctors(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	svc := NewService(store.NewMemoryStore(), stubClassifier{}, m)

	_, err := svc.Book(context.Background(), janeDoe())
	require.Error(t, err)
	assert.Equal(t, util.ErrorTypeNotFound, util.ErrorTypeOf(err))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingsTotal.WithLabelValues(metrics.OutcomeNoDoctor)))
}

func TestBook_ConflictPersistsNothing(t *testing.T) {
	svc, s, m := newTestService(t, stubClassifier{})

	_, err := svc.Book(context.Background(), janeDoe())
	require.NoError(t, err)

	second := janeDoe()
	second.PatientName = "John Roe"
	_, err = svc.Book(context.Background(), second)

	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, util.ErrorTypeConflict, util.ErrorTypeOf(err))
	assert.ErrorIs(t, err, store.ErrSlotTaken)
	assert.NotNil(t, conflict.AvailableSlots)
	assert.Empty(t, conflict.AvailableSlots)

	all, err := s.ListAppointments(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingsTotal.WithLabelValues(metrics.OutcomeConflict)))
}

func TestBook_ConcurrentSameSlot(t *testing.T) {
	svc, s, _ := newTestService(t, stubClassifier{})

	var wg sync.WaitGroup
	results := make([]error, 2)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = svc.Book(context.Background(), janeDoe())
		}(i)
	}
	wg.Wait()

	var succeeded, conflicted int
	for _, err := range results {
		var conflict *ConflictError
		switch {
		case err == nil:
			succeeded++
		case errors.As(err, &conflict):
			conflicted++
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, conflicted)

	all, err := s.ListAppointments(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestBook_FallbackIsDeterministic(t *testing.T) {
	svc, _, _ := newTestService(t, classifier.New(nil, classifier.Options{}))

	first := janeDoe()
	second := janeDoe()
	second.PreferredTime = "10:00"

	a, err := svc.Book(context.Background(), first)
	require.NoError(t, err)
	b, err := svc.Book(context.Background(), second)
	require.NoError(t, err)

	assert.Equal(t, a.Doctor.ID, b.Doctor.ID)
	assert.Equal(t, a.AIProcessing, b.AIProcessing)
	assert.NotEqual(t, a.AppointmentCode, b.AppointmentCode)
}

func TestBook_ValidationListsEveryField(t *testing.T) {
	svc, s, m := newTestService(t, stubClassifier{})

	_, err := svc.Book(context.Background(), model.AppointmentRequest{
		PatientName:      "J",
		Email:            "not-an-email",
		Phone:            "123",
		PreferredDate:    "06/01/2025",
		PreferredTime:    "9am",
		DoctorPreference: "",
		ReasonForVisit:   "short",
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, util.ErrorTypeValidation, util.ErrorTypeOf(err))

	rules := map[string]string{}
	for _, f := range verr.Fields {
		rules[f.Field] = f.Rule
		assert.NotEmpty(t, f.Message)
	}
	assert.Equal(t, map[string]string{
		"patient_name":     "min",
		"email":            "email",
		"phone":            "min",
		"preferred_date":   "datetime",
		"preferred_time":   "datetime",
		"reason_for_visit": "min",
	}, rules)

	all, err := s.ListAppointments(context.Background())
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.BookingsTotal.WithLabelValues(metrics.OutcomeInvalid)))
}

func TestValidate_RequiredFields(t *testing.T) {
	svc, _, _ := newTestService(t, stubClassifier{})

	err := svc.Validate(model.AppointmentRequest{})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Len(t, verr.Fields, 6)
	for _, f := range verr.Fields {
		assert.Equal(t, "required", f.Rule)
		assert.Contains(t, f.Message, "is required")
	}
	assert.NoError(t, svc.Validate(janeDoe()))
}

func TestCheckAvailability(t *testing.T) {
	svc, s, _ := newTestService(t, stubClassifier{})
	conf, err := svc.Book(context.Background(), janeDoe())
	require.NoError(t, err)

	available, err := svc.CheckAvailability(context.Background(), conf.DoctorID, "2025-06-01", "09:00")
	require.NoError(t, err)
	assert.False(t, available)

	doctors, err := s.ListDoctors(context.Background())
	require.NoError(t, err)
	available, err = svc.CheckAvailability(context.Background(), doctors[1].ID, "2025-06-01", "09:00")
	require.NoError(t, err)
	assert.True(t, available)

	_, err = svc.CheckAvailability(context.Background(), "missing", "2025-06-01", "09:00")
	assert.Equal(t, util.ErrorTypeNotFound, util.ErrorTypeOf(err))
}

func TestGetByCodeAndList(t *testing.T) {
	svc, _, _ := newTestService(t, stubClassifier{})
	conf, err := svc.Book(context.Background(), janeDoe())
	require.NoError(t, err)

	details, err := svc.GetByCode(context.Background(), conf.AppointmentCode)
	require.NoError(t, err)
	assert.Equal(t, conf.ID, details.ID)
	require.NotNil(t, details.Doctor)
	assert.Equal(t, conf.Doctor.Name, details.Doctor.Name)

	_, err = svc.GetByCode(context.Background(), "APT-2025-999999")
	assert.Equal(t, util.ErrorTypeNotFound, util.ErrorTypeOf(err))

	list, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	require.NotNil(t, list[0].Doctor)
	assert.Equal(t, conf.DoctorID, list[0].Doctor.ID)
}

func TestUpdate(t *testing.T) {
	svc, _, _ := newTestService(t, stubClassifier{})
	ctx := context.Background()

	first, err := svc.Book(ctx, janeDoe())
	require.NoError(t, err)

	cancelled := model.StatusCancelled
	updated, err := svc.Update(ctx, first.AppointmentCode, model.AppointmentUpdate{Status: &cancelled})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, updated.Status)

	// the freed slot can be booked again
	second, err := svc.Book(ctx, janeDoe())
	require.NoError(t, err)

	// reconfirming the first one now clashes
	confirmed := model.StatusConfirmed
	_, err = svc.Update(ctx, first.AppointmentCode, model.AppointmentUpdate{Status: &confirmed})
	var conflict *ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, second.DoctorID, conflict.DoctorID)

	_, err = svc.Update(ctx, first.AppointmentCode, model.AppointmentUpdate{})
	assert.Equal(t, util.ErrorTypeValidation, util.ErrorTypeOf(err))

	bogus := model.AppointmentStatus("pending")
	_, err = svc.Update(ctx, first.AppointmentCode, model.AppointmentUpdate{Status: &bogus})
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "oneof", verr.Fields[0].Rule)

	_, err = svc.Update(ctx, "APT-2025-999999", model.AppointmentUpdate{Status: &cancelled})
	assert.Equal(t, util.ErrorTypeNotFound, util.ErrorTypeOf(err))
}

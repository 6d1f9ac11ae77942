package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/ariebrainware/clinic-booking/model"
	"github.com/google/uuid"
)

// MemoryStore keeps everything in process memory. The write lock is held across
// the slot check and the insert, which makes reservations atomic.
type MemoryStore struct {
	mu   sync.RWMutex
	opts options

	users       map[string]model.User
	usernames   map[string]string
	doctors     map[string]model.Doctor
	doctorOrder []string

	appointments     map[string]model.Appointment
	appointmentOrder []string
	codes            map[string]string // appointment code -> id
	slots            map[string]string // slot key -> id
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		opts:         buildOptions(opts),
		users:        make(map[string]model.User),
		usernames:    make(map[string]string),
		doctors:      make(map[string]model.Doctor),
		appointments: make(map[string]model.Appointment),
		codes:        make(map[string]string),
		slots:        make(map[string]string),
	}
}

func (s *MemoryStore) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	if err := ctx.Err(); err != nil {
		return model.User{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.usernames[u.Username]; ok {
		return model.User{}, fmt.Errorf("%w: username %q", ErrDuplicate, u.Username)
	}
	u.ID = uuid.NewString()
	u.CreatedAt = s.opts.now()
	s.users[u.ID] = u
	s.usernames[u.Username] = u.ID
	return u, nil
}

func (s *MemoryStore) GetUser(ctx context.Context, id string) (model.User, error) {
	if err := ctx.Err(); err != nil {
		return model.User{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return u, nil
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	if err := ctx.Err(); err != nil {
		return model.User{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.usernames[username]
	if !ok {
		return model.User{}, ErrNotFound
	}
	return s.users[id], nil
}

func (s *MemoryStore) CreateDoctor(ctx context.Context, d model.Doctor) (model.Doctor, error) {
	if err := ctx.Err(); err != nil {
		return model.Doctor{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	if _, ok := s.doctors[d.ID]; ok {
		return model.Doctor{}, fmt.Errorf("%w: doctor %s", ErrDuplicate, d.ID)
	}
	d.CreatedAt = s.opts.now()
	d.Position = len(s.doctorOrder) + 1
	s.doctors[d.ID] = d
	s.doctorOrder = append(s.doctorOrder, d.ID)
	return d, nil
}

func (s *MemoryStore) GetDoctor(ctx context.Context, id string) (model.Doctor, error) {
	if err := ctx.Err(); err != nil {
		return model.Doctor{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.doctors[id]
	if !ok {
		return model.Doctor{}, ErrNotFound
	}
	return d, nil
}

func (s *MemoryStore) GetDoctorByName(ctx context.Context, name string) (model.Doctor, error) {
	if err := ctx.Err(); err != nil {
		return model.Doctor{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, id := range s.doctorOrder {
		if d := s.doctors[id]; d.Name == name {
			return d, nil
		}
	}
	return model.Doctor{}, ErrNotFound
}

func (s *MemoryStore) ListDoctors(ctx context.Context) ([]model.Doctor, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Doctor, 0, len(s.doctorOrder))
	for _, id := range s.doctorOrder {
		out = append(out, s.doctors[id])
	}
	return out, nil
}

func (s *MemoryStore) ReserveAppointment(ctx context.Context, a model.Appointment) (model.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return model.Appointment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.doctors[a.DoctorID]; !ok {
		return model.Appointment{}, fmt.Errorf("%w: doctor %s", ErrNotFound, a.DoctorID)
	}

	now := s.opts.now()
	prepareAppointment(&a, now)
	if a.SlotKey != nil {
		if _, taken := s.slots[*a.SlotKey]; taken {
			return model.Appointment{}, ErrSlotTaken
		}
	}

	code, err := allocateCode(s.opts.newCode, now, func(code string) (bool, error) {
		_, used := s.codes[code]
		return used, nil
	})
	if err != nil {
		return model.Appointment{}, err
	}
	a.AppointmentCode = code

	s.appointments[a.ID] = a
	s.appointmentOrder = append(s.appointmentOrder, a.ID)
	s.codes[code] = a.ID
	if a.SlotKey != nil {
		s.slots[*a.SlotKey] = a.ID
	}
	return a, nil
}

func (s *MemoryStore) GetAppointment(ctx context.Context, id string) (model.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return model.Appointment{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.appointments[id]
	if !ok {
		return model.Appointment{}, ErrNotFound
	}
	return a, nil
}

func (s *MemoryStore) GetAppointmentByCode(ctx context.Context, code string) (model.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return model.Appointment{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.codes[code]
	if !ok {
		return model.Appointment{}, ErrNotFound
	}
	return s.appointments[id], nil
}

func (s *MemoryStore) ListAppointments(ctx context.Context) ([]model.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Appointment, 0, len(s.appointmentOrder))
	for _, id := range s.appointmentOrder {
		out = append(out, s.appointments[id])
	}
	return out, nil
}

func (s *MemoryStore) UpdateAppointment(ctx context.Context, id string, upd model.AppointmentUpdate) (model.Appointment, error) {
	if err := ctx.Err(); err != nil {
		return model.Appointment{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.appointments[id]
	if !ok {
		return model.Appointment{}, ErrNotFound
	}
	updated := current
	upd.Apply(&updated)
	if updated.SlotKey != nil {
		if holder, taken := s.slots[*updated.SlotKey]; taken && holder != id {
			return model.Appointment{}, ErrSlotTaken
		}
	}

	if current.SlotKey != nil {
		delete(s.slots, *current.SlotKey)
	}
	if updated.SlotKey != nil {
		s.slots[*updated.SlotKey] = id
	}
	updated.UpdatedAt = s.opts.now()
	s.appointments[id] = updated
	return updated, nil
}

func (s *MemoryStore) IsSlotAvailable(ctx context.Context, doctorID, date, clock string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, taken := s.slots[model.SlotKey(doctorID, date, clock)]
	return !taken, nil
}

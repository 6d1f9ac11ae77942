package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ariebrainware/clinic-booking/model"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"
)

const (
	doctorCacheTTL     = 5 * time.Minute
	doctorCacheCleanup = 10 * time.Minute
)

// GormStore persists to a relational database. Reservations for the same doctor
// are serialized in-process, and the unique slot_key index rejects double
// bookings coming from other processes.
type GormStore struct {
	db      *gorm.DB
	opts    options
	locks   *keyedMutex
	doctors *cache.Cache
}

var _ Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB, opts ...Option) *GormStore {
	return &GormStore{
		db:      db,
		opts:    buildOptions(opts),
		locks:   newKeyedMutex(),
		doctors: cache.New(doctorCacheTTL, doctorCacheCleanup),
	}
}

// Migrate creates or updates the tables the store and the event logger need.
func (s *GormStore) Migrate() error {
	return s.db.AutoMigrate(&model.User{}, &model.Doctor{}, &model.Appointment{}, &model.EventLog{})
}

// DB exposes the underlying handle, e.g. for the event logger.
func (s *GormStore) DB() *gorm.DB {
	return s.db
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (s *GormStore) CreateUser(ctx context.Context, u model.User) (model.User, error) {
	u.ID = uuid.NewString()
	u.CreatedAt = s.opts.now()
	if err := s.db.WithContext(ctx).Create(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.User{}, fmt.Errorf("%w: username %q", ErrDuplicate, u.Username)
		}
		return model.User{}, err
	}
	return u, nil
}

func (s *GormStore) GetUser(ctx context.Context, id string) (model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&u).Error; err != nil {
		return model.User{}, notFound(err)
	}
	return u, nil
}

func (s *GormStore) GetUserByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return model.User{}, notFound(err)
	}
	return u, nil
}

// doctorRosterLock serializes position assignment for new doctors.
const doctorRosterLock = "doctor-roster"

func (s *GormStore) CreateDoctor(ctx context.Context, d model.Doctor) (model.Doctor, error) {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.CreatedAt = s.opts.now()

	unlock := s.locks.Lock(doctorRosterLock)
	defer unlock()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var last int
		if err := tx.Model(&model.Doctor{}).Select("COALESCE(MAX(position), 0)").Scan(&last).Error; err != nil {
			return err
		}
		d.Position = last + 1
		return tx.Create(&d).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return model.Doctor{}, fmt.Errorf("%w: doctor %s", ErrDuplicate, d.ID)
		}
		return model.Doctor{}, err
	}
	s.doctors.Set(d.ID, d, cache.DefaultExpiration)
	return d, nil
}

func (s *GormStore) GetDoctor(ctx context.Context, id string) (model.Doctor, error) {
	if cached, ok := s.doctors.Get(id); ok {
		return cached.(model.Doctor), nil
	}
	var d model.Doctor
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&d).Error; err != nil {
		return model.Doctor{}, notFound(err)
	}
	s.doctors.Set(d.ID, d, cache.DefaultExpiration)
	return d, nil
}

func (s *GormStore) GetDoctorByName(ctx context.Context, name string) (model.Doctor, error) {
	var d model.Doctor
	if err := s.db.WithContext(ctx).Where("name = ?", name).Order("position, created_at, name").First(&d).Error; err != nil {
		return model.Doctor{}, notFound(err)
	}
	return d, nil
}

// ListDoctors returns doctors in insertion order.
func (s *GormStore) ListDoctors(ctx context.Context) ([]model.Doctor, error) {
	var doctors []model.Doctor
	if err := s.db.WithContext(ctx).Order("position, created_at, name").Find(&doctors).Error; err != nil {
		return nil, err
	}
	return doctors, nil
}

func (s *GormStore) slotHeld(tx *gorm.DB, key, exceptID string) (bool, error) {
	q := tx.Model(&model.Appointment{}).Where("slot_key = ?", key)
	if exceptID != "" {
		q = q.Where("id <> ?", exceptID)
	}
	var n int64
	if err := q.Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *GormStore) ReserveAppointment(ctx context.Context, a model.Appointment) (model.Appointment, error) {
	unlock := s.locks.Lock(a.DoctorID)
	defer unlock()

	now := s.opts.now()
	prepareAppointment(&a, now)

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var doctors int64
		if err := tx.Model(&model.Doctor{}).Where("id = ?", a.DoctorID).Count(&doctors).Error; err != nil {
			return err
		}
		if doctors == 0 {
			return fmt.Errorf("%w: doctor %s", ErrNotFound, a.DoctorID)
		}

		if a.SlotKey != nil {
			held, err := s.slotHeld(tx, *a.SlotKey, "")
			if err != nil {
				return err
			}
			if held {
				return ErrSlotTaken
			}
		}

		code, err := allocateCode(s.opts.newCode, now, func(code string) (bool, error) {
			var n int64
			err := tx.Model(&model.Appointment{}).Where("appointment_code = ?", code).Count(&n).Error
			return n > 0, err
		})
		if err != nil {
			return err
		}
		a.AppointmentCode = code

		return tx.Create(&a).Error
	})
	if err != nil {
		return model.Appointment{}, s.translateWriteError(ctx, err, a.SlotKey, a.ID)
	}
	return a, nil
}

// translateWriteError maps a unique violation to ErrSlotTaken when another
// process grabbed the slot between our check and insert.
func (s *GormStore) translateWriteError(ctx context.Context, err error, slotKey *string, id string) error {
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return err
	}
	if slotKey != nil {
		if held, checkErr := s.slotHeld(s.db.WithContext(ctx), *slotKey, id); checkErr == nil && held {
			return ErrSlotTaken
		}
	}
	return fmt.Errorf("%w: %v", ErrDuplicate, err)
}

func (s *GormStore) GetAppointment(ctx context.Context, id string) (model.Appointment, error) {
	var a model.Appointment
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&a).Error; err != nil {
		return model.Appointment{}, notFound(err)
	}
	return a, nil
}

func (s *GormStore) GetAppointmentByCode(ctx context.Context, code string) (model.Appointment, error) {
	var a model.Appointment
	if err := s.db.WithContext(ctx).Where("appointment_code = ?", code).First(&a).Error; err != nil {
		return model.Appointment{}, notFound(err)
	}
	return a, nil
}

func (s *GormStore) ListAppointments(ctx context.Context) ([]model.Appointment, error) {
	var appointments []model.Appointment
	if err := s.db.WithContext(ctx).Order("created_at, appointment_code").Find(&appointments).Error; err != nil {
		return nil, err
	}
	return appointments, nil
}

func (s *GormStore) UpdateAppointment(ctx context.Context, id string, upd model.AppointmentUpdate) (model.Appointment, error) {
	current, err := s.GetAppointment(ctx, id)
	if err != nil {
		return model.Appointment{}, err
	}
	unlock := s.locks.Lock(current.DoctorID)
	defer unlock()

	var updated model.Appointment
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&updated).Error; err != nil {
			return notFound(err)
		}
		upd.Apply(&updated)
		if updated.SlotKey != nil {
			held, err := s.slotHeld(tx, *updated.SlotKey, id)
			if err != nil {
				return err
			}
			if held {
				return ErrSlotTaken
			}
		}
		updated.UpdatedAt = s.opts.now()
		return tx.Save(&updated).Error
	})
	if err != nil {
		return model.Appointment{}, s.translateWriteError(ctx, err, updated.SlotKey, id)
	}
	return updated, nil
}

func (s *GormStore) IsSlotAvailable(ctx context.Context, doctorID, date, clock string) (bool, error) {
	held, err := s.slotHeld(s.db.WithContext(ctx), model.SlotKey(doctorID, date, clock), "")
	if err != nil {
		return false, err
	}
	return !held, nil
}

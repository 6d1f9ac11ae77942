package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/ariebrainware/clinic-booking/model"
	"github.com/ariebrainware/clinic-booking/util"
)

// SeedDoctors inserts model.DefaultDoctors, skipping names that already exist.
func SeedDoctors(ctx context.Context, s DoctorStore) error {
	for _, doctor := range model.DefaultDoctors {
		_, err := s.GetDoctorByName(ctx, doctor.Name)
		if err == nil {
			continue
		}
		if !errors.Is(err, ErrNotFound) {
			return err
		}
		if _, err := s.CreateDoctor(ctx, doctor); err != nil {
			return fmt.Errorf("failed to seed doctor %s: %w", doctor.Name, err)
		}
	}
	return nil
}

// SeedAdmin creates the back-office account when both credentials are set and
// the username is not taken yet.
func SeedAdmin(ctx context.Context, s UserStore, username, password string) error {
	if username == "" || password == "" {
		return nil
	}
	_, err := s.GetUserByUsername(ctx, username)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrNotFound) {
		return err
	}
	hashed, err := util.HashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}
	if _, err := s.CreateUser(ctx, model.User{Username: username, Password: hashed}); err != nil {
		return fmt.Errorf("failed to seed admin %s: %w", username, err)
	}
	return nil
}

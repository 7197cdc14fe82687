package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"condoflow/internal/core"
	"condoflow/internal/store"
)

// ErrRegistrationClosed is returned when a request that was already
// reviewed is edited or reviewed again.
var ErrRegistrationClosed = errors.New("registration already reviewed")

// RegistrationService runs the resident registration workflow: public
// intake, profile edits while pending, and the administrative review
// that copies an approved profile onto the unit.
type RegistrationService struct {
	store store.Store
}

func NewRegistrationService(st store.Store) *RegistrationService {
	return &RegistrationService{store: st}
}

// Submit validates and files a new request. Status is always PENDENTE
// regardless of what the caller sent.
func (s *RegistrationService) Submit(ctx context.Context, reg core.RegistrationRequest) (core.RegistrationRequest, error) {
	if err := reg.Validate(); err != nil {
		return core.RegistrationRequest{}, err
	}
	if _, err := s.store.GetUnit(ctx, reg.UnitID); err != nil {
		return core.RegistrationRequest{}, fmt.Errorf("resolve unit: %w", err)
	}

	reg.ID = ""
	reg.Status = core.RegistrationPending
	return s.store.CreateRegistration(ctx, reg)
}

// Update edits the profile of a still-pending request.
func (s *RegistrationService) Update(ctx context.Context, reg core.RegistrationRequest) error {
	existing, err := s.store.GetRegistration(ctx, reg.ID)
	if err != nil {
		return err
	}
	if existing.Status != core.RegistrationPending {
		return ErrRegistrationClosed
	}
	if err := reg.Validate(); err != nil {
		return err
	}
	return s.store.UpdateRegistration(ctx, reg)
}

// Approve marks the request APROVADO and applies the profile to its
// unit: the registered name becomes the unit's resident and the declared
// role replaces the unit's role.
func (s *RegistrationService) Approve(ctx context.Context, id string) error {
	reg, err := s.store.GetRegistration(ctx, id)
	if err != nil {
		return err
	}
	if reg.Status != core.RegistrationPending {
		return ErrRegistrationClosed
	}

	unit, err := s.store.GetUnit(ctx, reg.UnitID)
	if err != nil {
		return fmt.Errorf("resolve unit: %w", err)
	}
	unit.ResidentName = reg.FullName
	unit.ResidentRole = reg.ResidentRole
	if err := s.store.SaveUnit(ctx, unit); err != nil {
		return fmt.Errorf("apply registration to unit: %w", err)
	}

	if err := s.store.UpdateRegistrationStatus(ctx, id, core.RegistrationApproved); err != nil {
		return err
	}

	slog.InfoContext(ctx, "Registration approved",
		"id", id,
		"unit_id", reg.UnitID,
		"resident", reg.FullName)
	return nil
}

// Reject marks the request REJEITADO without touching the unit.
func (s *RegistrationService) Reject(ctx context.Context, id string) error {
	reg, err := s.store.GetRegistration(ctx, id)
	if err != nil {
		return err
	}
	if reg.Status != core.RegistrationPending {
		return ErrRegistrationClosed
	}
	return s.store.UpdateRegistrationStatus(ctx, id, core.RegistrationRejected)
}

func (s *RegistrationService) List(ctx context.Context) ([]core.RegistrationRequest, error) {
	return s.store.ListRegistrations(ctx)
}

func (s *RegistrationService) Get(ctx context.Context, id string) (core.RegistrationRequest, error) {
	return s.store.GetRegistration(ctx, id)
}

package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"condoflow/internal/core"
	"condoflow/internal/store"
)

// UnitService manages the unit roster.
type UnitService struct {
	store store.Store
}

func NewUnitService(st store.Store) *UnitService {
	return &UnitService{store: st}
}

// List returns all units in canonical display order.
func (s *UnitService) List(ctx context.Context) ([]core.Unit, error) {
	units, err := s.store.ListUnits(ctx)
	if err != nil {
		return nil, err
	}
	core.SortUnits(units)
	return units, nil
}

func (s *UnitService) Get(ctx context.Context, id string) (core.Unit, error) {
	return s.store.GetUnit(ctx, id)
}

func (s *UnitService) Create(ctx context.Context, u core.Unit) (core.Unit, error) {
	if err := u.Validate(); err != nil {
		return core.Unit{}, err
	}
	u.ID = uuid.NewString()
	if err := s.store.SaveUnit(ctx, u); err != nil {
		return core.Unit{}, err
	}
	return u, nil
}

func (s *UnitService) Update(ctx context.Context, u core.Unit) error {
	if err := u.Validate(); err != nil {
		return err
	}
	if _, err := s.store.GetUnit(ctx, u.ID); err != nil {
		return err
	}
	return s.store.SaveUnit(ctx, u)
}

// Delete removes the unit along with its readings and registrations.
func (s *UnitService) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteUnit(ctx, id); err != nil {
		return fmt.Errorf("delete unit: %w", err)
	}
	slog.InfoContext(ctx, "Unit removed with its readings", "id", id)
	return nil
}

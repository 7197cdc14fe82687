// Package services orchestrates the domain operations across storage,
// the job queue and the insight provider.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"condoflow/internal/core"
	"condoflow/internal/store"
)

// ReadingService handles meter entry: previous-value suggestion, the
// two-phase save guard and the one-reading-per-month upsert.
type ReadingService struct {
	store store.Store
}

func NewReadingService(st store.Store) *ReadingService {
	return &ReadingService{store: st}
}

// SaveReadingInput carries one meter entry. A nil Previous asks the
// service to suggest it from the unit's history; Confirmed acknowledges
// a SaveWarning returned by an earlier attempt.
type SaveReadingInput struct {
	UnitID    string
	Type      core.UtilityType
	Previous  *core.Volume
	Current   *core.Volume
	Date      time.Time
	Confirmed bool
}

// Save validates and persists one reading. When the current value is
// lower than the previous one and the caller has not confirmed, nothing
// is saved and the warning is returned for a second attempt.
func (s *ReadingService) Save(ctx context.Context, in SaveReadingInput) (core.Reading, *core.SaveWarning, error) {
	if err := in.Type.Validate(); err != nil {
		return core.Reading{}, nil, err
	}
	if _, err := s.store.GetUnit(ctx, in.UnitID); err != nil {
		return core.Reading{}, nil, fmt.Errorf("resolve unit: %w", err)
	}

	previous := core.Volume{}
	if in.Previous != nil {
		previous = *in.Previous
	} else {
		suggested, err := s.store.PreviousValue(ctx, in.UnitID, in.Type)
		if err != nil {
			return core.Reading{}, nil, fmt.Errorf("suggest previous value: %w", err)
		}
		previous = suggested
	}

	if in.Current != nil && !in.Confirmed {
		if warning := core.ValidateReadingValue(previous, *in.Current); warning != nil {
			slog.InfoContext(ctx, "Reading save held for confirmation",
				"unit_id", in.UnitID,
				"type", in.Type)
			return core.Reading{}, warning, nil
		}
	}

	date := in.Date
	if date.IsZero() {
		date = time.Now().UTC()
	}
	status := core.ReadingPending
	if in.Current != nil {
		status = core.ReadingRead
	}

	reading := core.Reading{
		UnitID:   in.UnitID,
		Type:     in.Type,
		Previous: previous,
		Current:  in.Current,
		Date:     date,
		Status:   status,
	}
	if err := reading.Validate(); err != nil {
		return core.Reading{}, nil, err
	}

	saved, err := s.store.UpsertReading(ctx, reading)
	if err != nil {
		return core.Reading{}, nil, fmt.Errorf("save reading: %w", err)
	}
	return saved, nil, nil
}

// PreviousValue suggests the starting value for a new entry.
func (s *ReadingService) PreviousValue(ctx context.Context, unitID string, t core.UtilityType) (core.Volume, error) {
	if err := t.Validate(); err != nil {
		return core.Volume{}, err
	}
	return s.store.PreviousValue(ctx, unitID, t)
}

func (s *ReadingService) List(ctx context.Context, f store.ReadingFilter) ([]core.Reading, error) {
	return s.store.ListReadings(ctx, f)
}

func (s *ReadingService) Delete(ctx context.Context, id string) error {
	return s.store.DeleteReading(ctx, id)
}

// Prune removes a month's readings, optionally limited to some units.
func (s *ReadingService) Prune(ctx context.Context, month core.ReferenceMonth, unitIDs []string) (int, error) {
	return s.store.DeleteReadingsForMonth(ctx, month, unitIDs)
}

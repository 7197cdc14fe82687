// Package store defines the persistence ports the services depend on.
// Backends live in internal/storage (SQLite) and internal/storage/memory.
package store

import (
	"context"
	"errors"
	"time"

	"condoflow/internal/core"
)

// ErrNotFound is returned by lookups when no row matches.
var ErrNotFound = errors.New("not found")

// ReadingFilter narrows ListReadings. Zero values leave a dimension
// unbounded; To is inclusive.
type ReadingFilter struct {
	UnitID string
	Type   core.UtilityType
	From   time.Time
	To     time.Time
}

// UnitStore persists condominium units.
type UnitStore interface {
	ListUnits(ctx context.Context) ([]core.Unit, error)
	GetUnit(ctx context.Context, id string) (core.Unit, error)
	// SaveUnit inserts or fully replaces the unit by ID.
	SaveUnit(ctx context.Context, u core.Unit) error
	// DeleteUnit removes the unit and all of its readings.
	DeleteUnit(ctx context.Context, id string) error
}

// ReadingStore persists meter readings.
type ReadingStore interface {
	ListReadings(ctx context.Context, f ReadingFilter) ([]core.Reading, error)
	// FindReadingForMonth returns the single reading of the unit and type
	// within the month, or ErrNotFound.
	FindReadingForMonth(ctx context.Context, unitID string, t core.UtilityType, month core.ReferenceMonth) (core.Reading, error)
	// UpsertReading replaces the reading for the same unit, type and
	// reference month, inserting when none exists.
	UpsertReading(ctx context.Context, r core.Reading) (core.Reading, error)
	DeleteReading(ctx context.Context, id string) error
	DeleteReadingsForMonth(ctx context.Context, month core.ReferenceMonth, unitIDs []string) (int, error)
	// LatestReadingDate returns the date of the most recent reading, or
	// the zero time when the ledger is empty.
	LatestReadingDate(ctx context.Context) (time.Time, error)
	// PreviousValue suggests the starting value for a new reading: the
	// latest prior reading's current value, falling back to its previous
	// value, or zero with no history.
	PreviousValue(ctx context.Context, unitID string, t core.UtilityType) (core.Volume, error)
}

// RegistrationStore persists resident registration requests.
type RegistrationStore interface {
	ListRegistrations(ctx context.Context) ([]core.RegistrationRequest, error)
	GetRegistration(ctx context.Context, id string) (core.RegistrationRequest, error)
	CreateRegistration(ctx context.Context, reg core.RegistrationRequest) (core.RegistrationRequest, error)
	// UpdateRegistration replaces the profile fields of a pending request.
	UpdateRegistration(ctx context.Context, reg core.RegistrationRequest) error
	UpdateRegistrationStatus(ctx context.Context, id string, status core.RegistrationStatus) error
}

// Store is the full persistence surface a backend provides.
type Store interface {
	UnitStore
	ReadingStore
	RegistrationStore
	Close() error
}

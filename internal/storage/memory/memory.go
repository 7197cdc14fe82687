// Package memory is an in-process Store used for demos and tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"condoflow/internal/core"
	"condoflow/internal/store"
)

type Store struct {
	mu            sync.Mutex
	units         []core.Unit
	readings      []core.Reading
	registrations []core.RegistrationRequest
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{}
}

// Seed pre-loads units, e.g. for the demo backend.
func (s *Store) Seed(units []core.Unit) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range units {
		if u.ID == "" {
			u.ID = uuid.NewString()
		}
		s.units = append(s.units, u)
	}
}

func (s *Store) Close() error { return nil }

func (s *Store) ListUnits(_ context.Context) ([]core.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Unit(nil), s.units...), nil
}

func (s *Store) GetUnit(_ context.Context, id string) (core.Unit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.units {
		if u.ID == id {
			return u, nil
		}
	}
	return core.Unit{}, store.ErrNotFound
}

func (s *Store) SaveUnit(_ context.Context, u core.Unit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.units {
		if existing.ID == u.ID {
			s.units[i] = u
			return nil
		}
	}
	s.units = append(s.units, u)
	return nil
}

func (s *Store) DeleteUnit(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := -1
	for i, u := range s.units {
		if u.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return store.ErrNotFound
	}
	s.units = append(s.units[:idx], s.units[idx+1:]...)

	// Cascade, matching the SQLite foreign keys.
	kept := s.readings[:0]
	for _, r := range s.readings {
		if r.UnitID != id {
			kept = append(kept, r)
		}
	}
	s.readings = kept

	keptRegs := s.registrations[:0]
	for _, reg := range s.registrations {
		if reg.UnitID != id {
			keptRegs = append(keptRegs, reg)
		}
	}
	s.registrations = keptRegs
	return nil
}

func (s *Store) ListReadings(_ context.Context, f store.ReadingFilter) ([]core.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []core.Reading
	for _, r := range s.readings {
		if f.UnitID != "" && r.UnitID != f.UnitID {
			continue
		}
		if f.Type != "" && r.Type != f.Type {
			continue
		}
		if !f.From.IsZero() && r.Date.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && r.Date.After(f.To) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

func (s *Store) FindReadingForMonth(_ context.Context, unitID string, t core.UtilityType, month core.ReferenceMonth) (core.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r, i := s.findForMonth(unitID, t, month); i >= 0 {
		return r, nil
	}
	return core.Reading{}, store.ErrNotFound
}

func (s *Store) findForMonth(unitID string, t core.UtilityType, month core.ReferenceMonth) (core.Reading, int) {
	for i := len(s.readings) - 1; i >= 0; i-- {
		r := s.readings[i]
		if r.UnitID == unitID && r.Type == t && month.Contains(r.Date) {
			return r, i
		}
	}
	return core.Reading{}, -1
}

func (s *Store) UpsertReading(_ context.Context, r core.Reading) (core.Reading, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, i := s.findForMonth(r.UnitID, r.Type, core.MonthOf(r.Date)); i >= 0 {
		r.ID = existing.ID
		s.readings[i] = r
		return r, nil
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	s.readings = append(s.readings, r)
	return r, nil
}

func (s *Store) DeleteReading(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.readings {
		if r.ID == id {
			s.readings = append(s.readings[:i], s.readings[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) DeleteReadingsForMonth(_ context.Context, month core.ReferenceMonth, unitIDs []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wanted := make(map[string]struct{}, len(unitIDs))
	for _, id := range unitIDs {
		wanted[id] = struct{}{}
	}

	deleted := 0
	kept := s.readings[:0]
	for _, r := range s.readings {
		inScope := month.Contains(r.Date)
		if inScope && len(wanted) > 0 {
			_, inScope = wanted[r.UnitID]
		}
		if inScope {
			deleted++
			continue
		}
		kept = append(kept, r)
	}
	s.readings = kept
	return deleted, nil
}

func (s *Store) LatestReadingDate(_ context.Context) (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var latest time.Time
	for _, r := range s.readings {
		if r.Date.After(latest) {
			latest = r.Date
		}
	}
	return latest, nil
}

func (s *Store) PreviousValue(_ context.Context, unitID string, t core.UtilityType) (core.Volume, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var (
		found  bool
		latest core.Reading
	)
	for _, r := range s.readings {
		if r.UnitID != unitID || r.Type != t {
			continue
		}
		if !found || r.Date.After(latest.Date) {
			found = true
			latest = r
		}
	}
	if !found {
		return core.Volume{}, nil
	}
	if latest.Current != nil {
		return *latest.Current, nil
	}
	return latest.Previous, nil
}

func (s *Store) ListRegistrations(_ context.Context) ([]core.RegistrationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.RegistrationRequest(nil), s.registrations...), nil
}

func (s *Store) GetRegistration(_ context.Context, id string) (core.RegistrationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, reg := range s.registrations {
		if reg.ID == id {
			return reg, nil
		}
	}
	return core.RegistrationRequest{}, store.ErrNotFound
}

func (s *Store) CreateRegistration(_ context.Context, reg core.RegistrationRequest) (core.RegistrationRequest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if reg.ID == "" {
		reg.ID = uuid.NewString()
	}
	if reg.CreatedAt.IsZero() {
		reg.CreatedAt = time.Now().UTC()
	}
	s.registrations = append(s.registrations, reg)
	return reg, nil
}

func (s *Store) UpdateRegistration(_ context.Context, reg core.RegistrationRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, existing := range s.registrations {
		if existing.ID == reg.ID {
			reg.Status = existing.Status
			reg.CreatedAt = existing.CreatedAt
			s.registrations[i] = reg
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) UpdateRegistrationStatus(_ context.Context, id string, status core.RegistrationStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, reg := range s.registrations {
		if reg.ID == id {
			s.registrations[i].Status = status
			return nil
		}
	}
	return store.ErrNotFound
}

package services

import (
	"context"
	"fmt"
	"time"

	"condoflow/internal/core"
	"condoflow/internal/insight"
	"condoflow/internal/store"
)

// UnitStatusEntry pairs a unit with its completion state for the month.
type UnitStatusEntry struct {
	UnitID string
	Label  string
	Status core.UnitStatus
}

// Dashboard is everything the overview screen shows for one month.
type Dashboard struct {
	Month             core.ReferenceMonth
	Summary           core.MonthSummary
	CompletionPercent float64
	Units             []UnitStatusEntry
	TopWater          []core.RankEntry
	TopGas            []core.RankEntry
	Insight           string
}

// DashboardService reconciles the ledger into the overview numbers and
// attaches the generated insight line.
type DashboardService struct {
	store      store.Store
	summarizer insight.Summarizer
}

func NewDashboardService(st store.Store, summarizer insight.Summarizer) *DashboardService {
	if summarizer == nil {
		summarizer = insight.Static{}
	}
	return &DashboardService{store: st, summarizer: summarizer}
}

// Overview computes the dashboard for the month, defaulting to the month
// of the most recent reading.
func (s *DashboardService) Overview(ctx context.Context, month *core.ReferenceMonth) (Dashboard, error) {
	m, err := s.resolveMonth(ctx, month)
	if err != nil {
		return Dashboard{}, err
	}

	units, err := s.store.ListUnits(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("list units: %w", err)
	}
	// The reconciler needs the previous month too for the change rates,
	// so the full ledger is loaded.
	readings, err := s.store.ListReadings(ctx, store.ReadingFilter{})
	if err != nil {
		return Dashboard{}, fmt.Errorf("list readings: %w", err)
	}

	rc := core.NewReconciler(units, readings)
	summary := rc.Summarize(m)

	core.SortUnits(units)
	entries := make([]UnitStatusEntry, 0, len(units))
	for _, u := range units {
		entries = append(entries, UnitStatusEntry{
			UnitID: u.ID,
			Label:  u.DisplayLabel(),
			Status: rc.Status(u.ID, m),
		})
	}

	return Dashboard{
		Month:             m,
		Summary:           summary,
		CompletionPercent: rc.CompletionPercent(m),
		Units:             entries,
		TopWater:          rc.TopConsumers(core.Water, m, 3),
		TopGas:            rc.TopConsumers(core.Gas, m, 3),
		Insight:           s.summarizer.Summarize(ctx, summary),
	}, nil
}

func (s *DashboardService) resolveMonth(ctx context.Context, month *core.ReferenceMonth) (core.ReferenceMonth, error) {
	if month != nil {
		return *month, nil
	}
	latest, err := s.store.LatestReadingDate(ctx)
	if err != nil {
		return core.ReferenceMonth{}, fmt.Errorf("latest reading date: %w", err)
	}
	if latest.IsZero() {
		return core.MonthOf(time.Now().UTC()), nil
	}
	return core.MonthOf(latest), nil
}

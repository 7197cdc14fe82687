package core

import "sort"

// UnitStatus is the per-month completion state of a unit. It is always
// derived live from the ledger, never stored.
type UnitStatus string

const (
	StatusPending  UnitStatus = "pending"
	StatusPartial  UnitStatus = "partial"
	StatusComplete UnitStatus = "complete"
)

// RankEntry is one row of a consumption ranking.
type RankEntry struct {
	UnitID      string
	Label       string
	Consumption Volume
}

// MonthSummary aggregates a reference month for the dashboard and the
// insight service.
type MonthSummary struct {
	Month       ReferenceMonth
	TotalWater  Volume
	TotalGas    Volume
	WaterChange float64
	GasChange   float64
}

// Reconciler computes per-unit status and consumption aggregates for a
// reference month. It operates on already-fetched collections and holds
// no state of its own; each call is a pure function of its inputs.
type Reconciler struct {
	readings []Reading
	units    map[string]Unit
}

func NewReconciler(units []Unit, readings []Reading) *Reconciler {
	byID := make(map[string]Unit, len(units))
	for _, u := range units {
		byID[u.ID] = u
	}
	return &Reconciler{readings: readings, units: byID}
}

// hasEntry reports whether the unit has a reading of the given type
// inside the month. A value-pending reading still counts: existence is
// about the entry, not the entered value.
func (rc *Reconciler) hasEntry(unitID string, t UtilityType, m ReferenceMonth) bool {
	for _, r := range rc.readings {
		if r.UnitID == unitID && r.Type == t && m.Contains(r.Date) {
			return true
		}
	}
	return false
}

// Status returns the unit's completion state for the month: complete when
// both water and gas readings exist, partial when exactly one does,
// pending otherwise.
func (rc *Reconciler) Status(unitID string, m ReferenceMonth) UnitStatus {
	hasWater := rc.hasEntry(unitID, Water, m)
	hasGas := rc.hasEntry(unitID, Gas, m)
	switch {
	case hasWater && hasGas:
		return StatusComplete
	case hasWater || hasGas:
		return StatusPartial
	default:
		return StatusPending
	}
}

// CompletionPercent is the share of units with complete status for the
// month, 0 when there are no units.
func (rc *Reconciler) CompletionPercent(m ReferenceMonth) float64 {
	if len(rc.units) == 0 {
		return 0
	}
	complete := 0
	for id := range rc.units {
		if rc.Status(id, m) == StatusComplete {
			complete++
		}
	}
	return float64(complete) / float64(len(rc.units)) * 100
}

// TotalConsumption sums current−previous over the month's readings of the
// given type. A reading whose current value is missing or zero is skipped
// entirely: a true zero reading therefore never contributes to totals.
// This mirrors the historical behavior and is preserved on purpose.
func (rc *Reconciler) TotalConsumption(t UtilityType, m ReferenceMonth) Volume {
	var total int64
	for _, r := range rc.readings {
		if r.Type != t || !m.Contains(r.Date) {
			continue
		}
		if r.Current == nil || r.Current.Milli == 0 {
			continue
		}
		total += r.Current.Milli - r.Previous.Milli
	}
	return Volume{Milli: total}
}

// ChangePercent is the month-over-month variation. A zero previous total
// yields exactly 0, masking growth from a zero baseline; the division
// guard is an intentional simplification.
func ChangePercent(current, previous Volume) float64 {
	if previous.Milli == 0 {
		return 0
	}
	return float64(current.Milli-previous.Milli) / float64(previous.Milli) * 100
}

// Summarize computes the month's totals and their variation against the
// immediately preceding month.
func (rc *Reconciler) Summarize(m ReferenceMonth) MonthSummary {
	prev := m.Prev()
	curWater := rc.TotalConsumption(Water, m)
	curGas := rc.TotalConsumption(Gas, m)
	return MonthSummary{
		Month:       m,
		TotalWater:  curWater,
		TotalGas:    curGas,
		WaterChange: ChangePercent(curWater, rc.TotalConsumption(Water, prev)),
		GasChange:   ChangePercent(curGas, rc.TotalConsumption(Gas, prev)),
	}
}

// TopConsumers ranks units by consumption of the given type in the month,
// highest first, truncated to limit entries. Only units with an entered,
// non-zero current value that month appear. The sort is stable, so ties
// keep ledger order.
func (rc *Reconciler) TopConsumers(t UtilityType, m ReferenceMonth, limit int) []RankEntry {
	var entries []RankEntry
	for _, r := range rc.readings {
		if r.Type != t || !m.Contains(r.Date) {
			continue
		}
		if r.Current == nil || r.Current.Milli == 0 {
			continue
		}
		label := "?"
		if u, ok := rc.units[r.UnitID]; ok {
			label = u.DisplayLabel()
		}
		entries = append(entries, RankEntry{
			UnitID:      r.UnitID,
			Label:       label,
			Consumption: r.Consumption(),
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Consumption.Milli > entries[j].Consumption.Milli
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries
}

// Package report turns filtered reading sets into row-oriented tables and
// renders them as PDF or spreadsheet exports.
package report

import (
	"errors"
	"sort"

	"condoflow/internal/core"
)

// ErrNoRecords is returned before any rendering when a monthly request
// matches no readings. Callers surface it as a "no records for the
// selected period" notice, not as a generation failure.
var ErrNoRecords = errors.New("no records for selected period")

// Columns of the monthly tables, in render order.
var monthlyColumns = []string{"UNIDADE", "MORADOR", "ANTERIOR", "ATUAL", "CONSUMO"}

// Columns of the individual report.
var individualColumns = []string{"DATA", "TIPO", "ANTERIOR", "ATUAL", "CONSUMO"}

type (
	// Row is one rendered line of a monthly table. All values are already
	// formatted to the utility's precision.
	Row struct {
		Unit        string
		Resident    string
		Previous    string
		Current     string
		Consumption string
	}

	// Table groups the rows of one utility type.
	Table struct {
		Type core.UtilityType
		Rows []Row
	}

	// Monthly is the assembled dataset for a monthly export.
	Monthly struct {
		CondoName string
		Month     core.ReferenceMonth
		Water     Table
		Gas       Table
	}

	// IndividualRow is one line of a single-unit report.
	IndividualRow struct {
		Date        string
		Type        string
		Previous    string
		Current     string
		Consumption string
	}

	// Individual is the assembled dataset for a single-unit export.
	Individual struct {
		CondoName string
		Unit      core.Unit
		Period    string // optional subtitle, empty for the default month wording
		Rows      []IndividualRow
	}
)

// AssembleMonthly builds the water and gas tables for readings already
// filtered to one reference month (and optionally to a single type).
// Rows follow the canonical unit ordering; consumptionSep is the decimal
// separator of the CONSUMO column ('.' for PDF, ',' for spreadsheets).
func AssembleMonthly(condoName string, month core.ReferenceMonth, units []core.Unit, readings []core.Reading, consumptionSep byte) (Monthly, error) {
	if len(readings) == 0 {
		return Monthly{}, ErrNoRecords
	}

	byID := make(map[string]core.Unit, len(units))
	for _, u := range units {
		byID[u.ID] = u
	}

	rep := Monthly{CondoName: condoName, Month: month}
	rep.Water = assembleTable(core.Water, readings, byID, consumptionSep)
	rep.Gas = assembleTable(core.Gas, readings, byID, consumptionSep)
	return rep, nil
}

func assembleTable(t core.UtilityType, readings []core.Reading, units map[string]core.Unit, consumptionSep byte) Table {
	var filtered []core.Reading
	for _, r := range readings {
		if r.Type == t {
			filtered = append(filtered, r)
		}
	}

	// Resolve each reading through its unit for the canonical ordering;
	// readings of unknown units keep their relative position.
	sort.SliceStable(filtered, func(i, j int) bool {
		ua, oka := units[filtered[i].UnitID]
		ub, okb := units[filtered[j].UnitID]
		if !oka || !okb {
			return false
		}
		return core.CompareUnits(ua, ub) < 0
	})

	decimals := t.Decimals()
	table := Table{Type: t}
	for _, r := range filtered {
		unitLabel, resident := "-", "-"
		if u, ok := units[r.UnitID]; ok {
			unitLabel = u.DisplayLabel()
			if u.ResidentName != "" {
				resident = u.ResidentName
			}
		}
		var current core.Volume
		if r.Current != nil {
			current = *r.Current
		}
		table.Rows = append(table.Rows, Row{
			Unit:        unitLabel,
			Resident:    resident,
			Previous:    r.Previous.Format(decimals, '.'),
			Current:     current.Format(decimals, '.'),
			Consumption: core.Volume{Milli: current.Milli - r.Previous.Milli}.Format(decimals, consumptionSep),
		})
	}
	return table
}

// AssembleIndividual builds the per-reading rows for one unit. Readings
// are emitted in ledger fetch order; the caller applies any date-range
// bound before calling.
func AssembleIndividual(condoName string, unit core.Unit, readings []core.Reading, period string) Individual {
	rep := Individual{CondoName: condoName, Unit: unit, Period: period}
	for _, r := range readings {
		decimals := r.Type.Decimals()
		var current core.Volume
		if r.Current != nil {
			current = *r.Current
		}
		rep.Rows = append(rep.Rows, IndividualRow{
			Date:        r.Date.Format("02/01/2006"),
			Type:        r.Type.Label(),
			Previous:    r.Previous.Format(decimals, '.'),
			Current:     current.Format(decimals, '.'),
			Consumption: core.Volume{Milli: current.Milli - r.Previous.Milli}.Format(decimals, '.'),
		})
	}
	return rep
}

// headerText is the shared report title line.
func headerText(condoName string, month core.ReferenceMonth) string {
	return "Condomínio " + condoName + " referente ao mês " + month.Label()
}

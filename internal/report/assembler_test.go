package report

import (
	"errors"
	"testing"
	"time"

	"condoflow/internal/core"
)

func vol(milli int64) core.Volume { return core.Volume{Milli: milli} }

func volPtr(milli int64) *core.Volume {
	v := core.Volume{Milli: milli}
	return &v
}

func sampleUnits() []core.Unit {
	return []core.Unit{
		{ID: "u-201", Number: "201", Block: "A", ResidentName: "Maria Souza", ResidentRole: core.RoleOwner},
		{ID: "u-101", Number: "101", Block: "A", ResidentName: "João Lima", ResidentRole: core.RoleTenant},
		{ID: "u-cond", Number: "COND", ResidentName: "Administração", ResidentRole: core.RoleOwner},
	}
}

func TestAssembleMonthlyNoRecords(t *testing.T) {
	month := core.ReferenceMonth{Year: 2023, Month: time.September}
	_, err := AssembleMonthly("Teste", month, sampleUnits(), nil, '.')
	if !errors.Is(err, ErrNoRecords) {
		t.Fatalf("expected ErrNoRecords, got %v", err)
	}
}

func TestAssembleMonthlyOrderingAndPrecision(t *testing.T) {
	month := core.ReferenceMonth{Year: 2023, Month: time.September}
	date := time.Date(2023, time.September, 10, 0, 0, 0, 0, time.UTC)
	readings := []core.Reading{
		{UnitID: "u-201", Type: core.Water, Previous: vol(20000), Current: volPtr(23450), Date: date},
		{UnitID: "u-101", Type: core.Water, Previous: vol(10000), Current: volPtr(12500), Date: date},
		{UnitID: "u-cond", Type: core.Water, Previous: vol(5000), Current: volPtr(6000), Date: date},
		{UnitID: "u-101", Type: core.Gas, Previous: vol(3000), Current: volPtr(4250), Date: date},
	}

	rep, err := AssembleMonthly("Luci Berkembrock", month, sampleUnits(), readings, '.')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := len(rep.Water.Rows); got != 3 {
		t.Fatalf("expected 3 water rows, got %d", got)
	}
	// Non-numeric unit first, then numeric ascending.
	wantOrder := []string{"COND", "101 A", "201 A"}
	for i, want := range wantOrder {
		if rep.Water.Rows[i].Unit != want {
			t.Errorf("water row %d: expected unit %q, got %q", i, want, rep.Water.Rows[i].Unit)
		}
	}

	row := rep.Water.Rows[1]
	if row.Resident != "João Lima" {
		t.Errorf("expected resident João Lima, got %q", row.Resident)
	}
	if row.Previous != "10.00" || row.Current != "12.50" || row.Consumption != "2.50" {
		t.Errorf("unexpected water formatting: %+v", row)
	}

	if got := len(rep.Gas.Rows); got != 1 {
		t.Fatalf("expected 1 gas row, got %d", got)
	}
	gas := rep.Gas.Rows[0]
	if gas.Previous != "3.000" || gas.Current != "4.250" || gas.Consumption != "1.250" {
		t.Errorf("unexpected gas formatting: %+v", gas)
	}
}

func TestAssembleMonthlySpreadsheetSeparator(t *testing.T) {
	month := core.ReferenceMonth{Year: 2023, Month: time.September}
	date := time.Date(2023, time.September, 10, 0, 0, 0, 0, time.UTC)
	readings := []core.Reading{
		{UnitID: "u-101", Type: core.Water, Previous: vol(10000), Current: volPtr(12500), Date: date},
	}

	rep, err := AssembleMonthly("Teste", month, sampleUnits(), readings, ',')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	row := rep.Water.Rows[0]
	if row.Consumption != "2,50" {
		t.Errorf("expected comma separator in consumption, got %q", row.Consumption)
	}
	// Only the consumption column switches separator.
	if row.Previous != "10.00" || row.Current != "12.50" {
		t.Errorf("previous/current must keep dot separator: %+v", row)
	}
}

func TestAssembleMonthlyUnknownUnit(t *testing.T) {
	month := core.ReferenceMonth{Year: 2023, Month: time.September}
	date := time.Date(2023, time.September, 10, 0, 0, 0, 0, time.UTC)
	readings := []core.Reading{
		{UnitID: "missing", Type: core.Water, Previous: vol(1000), Current: volPtr(2000), Date: date},
	}

	rep, err := AssembleMonthly("Teste", month, sampleUnits(), readings, '.')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	row := rep.Water.Rows[0]
	if row.Unit != "-" || row.Resident != "-" {
		t.Errorf("expected placeholder cells for unknown unit, got %+v", row)
	}
}

func TestAssembleMonthlyNilCurrent(t *testing.T) {
	month := core.ReferenceMonth{Year: 2023, Month: time.September}
	date := time.Date(2023, time.September, 10, 0, 0, 0, 0, time.UTC)
	readings := []core.Reading{
		{UnitID: "u-101", Type: core.Water, Previous: vol(10000), Date: date},
	}

	rep, err := AssembleMonthly("Teste", month, sampleUnits(), readings, '.')
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	row := rep.Water.Rows[0]
	if row.Current != "0.00" {
		t.Errorf("expected zero current for pending reading, got %q", row.Current)
	}
	if row.Consumption != "-10.00" {
		t.Errorf("expected negative consumption against zero current, got %q", row.Consumption)
	}
}

func TestAssembleIndividualPreservesOrder(t *testing.T) {
	unit := core.Unit{ID: "u-101", Number: "101", Block: "A", ResidentName: "João Lima", ResidentRole: core.RoleTenant}
	readings := []core.Reading{
		{UnitID: "u-101", Type: core.Gas, Previous: vol(3000), Current: volPtr(4250), Date: time.Date(2023, time.October, 5, 0, 0, 0, 0, time.UTC)},
		{UnitID: "u-101", Type: core.Water, Previous: vol(10000), Current: volPtr(12500), Date: time.Date(2023, time.September, 10, 0, 0, 0, 0, time.UTC)},
	}

	rep := AssembleIndividual("Teste", unit, readings, "")
	if len(rep.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rep.Rows))
	}
	if rep.Rows[0].Date != "05/10/2023" || rep.Rows[0].Type != "Gás" {
		t.Errorf("rows must keep fetch order: %+v", rep.Rows[0])
	}
	if rep.Rows[0].Consumption != "1.250" {
		t.Errorf("gas row must use three decimals, got %q", rep.Rows[0].Consumption)
	}
	if rep.Rows[1].Consumption != "2.50" {
		t.Errorf("water row must use two decimals, got %q", rep.Rows[1].Consumption)
	}
}

func TestRenderMonthlyPDFEmpty(t *testing.T) {
	rep := Monthly{CondoName: "Teste", Month: core.ReferenceMonth{Year: 2023, Month: time.September}}
	if _, err := RenderMonthlyPDF(rep); !errors.Is(err, ErrNoRecords) {
		t.Fatalf("expected ErrNoRecords for empty report, got %v", err)
	}
}

func TestRenderMonthlyPDF(t *testing.T) {
	rep := Monthly{
		CondoName: "Luci Berkembrock",
		Month:     core.ReferenceMonth{Year: 2023, Month: time.September},
		Water: Table{Type: core.Water, Rows: []Row{
			{Unit: "101 A", Resident: "João Lima", Previous: "10.00", Current: "12.50", Consumption: "2.50"},
		}},
	}
	out, err := RenderMonthlyPDF(rep)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("expected PDF bytes")
	}
}

func TestRenderMonthlyXLSX(t *testing.T) {
	rep := Monthly{
		CondoName: "Luci Berkembrock",
		Month:     core.ReferenceMonth{Year: 2023, Month: time.September},
		Water: Table{Type: core.Water, Rows: []Row{
			{Unit: "101 A", Resident: "João Lima", Previous: "10.00", Current: "12.50", Consumption: "2,50"},
		}},
	}
	out, err := RenderMonthlyXLSX(rep)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("expected workbook bytes")
	}
}

func TestRenderIndividualPDF(t *testing.T) {
	rep := Individual{
		CondoName: "Teste",
		Unit:      core.Unit{Number: "101", Block: "A", ResidentName: "João Lima"},
		Period:    "01/09/2023 a 31/10/2023",
		Rows: []IndividualRow{
			{Date: "10/09/2023", Type: "Água", Previous: "10.00", Current: "12.50", Consumption: "2.50"},
		},
	}
	out, err := RenderIndividualPDF(rep)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(out) == 0 {
		t.Fatal("expected PDF bytes")
	}
}

package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"condoflow/internal/amqp"
	"condoflow/internal/core"
	"condoflow/internal/report"
	"condoflow/internal/storage/memory"
)

func seedLedger(t *testing.T, mem *memory.Store) {
	t.Helper()
	ctx := context.Background()
	seedUnit(t, mem, "u-1", "101")
	seedUnit(t, mem, "u-2", "201")

	sep := time.Date(2023, time.September, 10, 0, 0, 0, 0, time.UTC)
	readings := []core.Reading{
		{UnitID: "u-1", Type: core.Water, Previous: core.Volume{Milli: 10000}, Current: volPtr(12500), Date: sep, Status: core.ReadingRead},
		{UnitID: "u-1", Type: core.Gas, Previous: core.Volume{Milli: 3000}, Current: volPtr(4250), Date: sep, Status: core.ReadingRead},
		{UnitID: "u-2", Type: core.Water, Previous: core.Volume{Milli: 20000}, Current: volPtr(21000), Date: sep, Status: core.ReadingRead},
	}
	for _, r := range readings {
		if _, err := mem.UpsertReading(ctx, r); err != nil {
			t.Fatalf("seed reading: %v", err)
		}
	}
}

func TestMonthlyReportPDF(t *testing.T) {
	mem := memory.New()
	seedLedger(t, mem)
	svc := NewReportService(mem, nil, "Luci Berkembrock")

	month := core.ReferenceMonth{Year: 2023, Month: time.September}
	out, name, err := svc.Monthly(context.Background(), month, amqp.FormatPDF, "")
	if err != nil {
		t.Fatalf("monthly: %v", err)
	}
	if len(out) == 0 {
		t.Error("expected PDF bytes")
	}
	if name != "relatorio_consumo_2023-09.pdf" {
		t.Errorf("unexpected filename: %q", name)
	}
}

func TestMonthlyReportFilteredByUtility(t *testing.T) {
	mem := memory.New()
	seedLedger(t, mem)
	svc := NewReportService(mem, nil, "Teste")

	month := core.ReferenceMonth{Year: 2023, Month: time.September}
	out, name, err := svc.Monthly(context.Background(), month, amqp.FormatPDF, core.Water)
	if err != nil {
		t.Fatalf("monthly water: %v", err)
	}
	if len(out) == 0 {
		t.Error("expected PDF bytes")
	}
	if name != "relatorio_consumo_agua_2023-09.pdf" {
		t.Errorf("unexpected filename: %q", name)
	}

	_, name, err = svc.Monthly(context.Background(), month, amqp.FormatXLSX, core.Gas)
	if err != nil {
		t.Fatalf("monthly gas: %v", err)
	}
	if name != "relatorio_consumo_gas_2023-09.xlsx" {
		t.Errorf("unexpected filename: %q", name)
	}
}

func TestMonthlyReportFilterExcludesOtherUtility(t *testing.T) {
	mem := memory.New()
	ctx := context.Background()
	seedUnit(t, mem, "u-1", "101")

	sep := time.Date(2023, time.September, 10, 0, 0, 0, 0, time.UTC)
	r := core.Reading{UnitID: "u-1", Type: core.Water, Previous: core.Volume{Milli: 10000}, Current: volPtr(12500), Date: sep, Status: core.ReadingRead}
	if _, err := mem.UpsertReading(ctx, r); err != nil {
		t.Fatalf("seed reading: %v", err)
	}
	svc := NewReportService(mem, nil, "Teste")

	// Only water was read; a gas-only report has nothing to show.
	month := core.ReferenceMonth{Year: 2023, Month: time.September}
	if _, _, err := svc.Monthly(ctx, month, amqp.FormatPDF, core.Gas); !errors.Is(err, report.ErrNoRecords) {
		t.Fatalf("expected ErrNoRecords, got %v", err)
	}
}

func TestMonthlyReportXLSX(t *testing.T) {
	mem := memory.New()
	seedLedger(t, mem)
	svc := NewReportService(mem, nil, "Luci Berkembrock")

	month := core.ReferenceMonth{Year: 2023, Month: time.September}
	out, name, err := svc.Monthly(context.Background(), month, amqp.FormatXLSX, "")
	if err != nil {
		t.Fatalf("monthly: %v", err)
	}
	if len(out) == 0 {
		t.Error("expected workbook bytes")
	}
	if name != "relatorio_consumo_2023-09.xlsx" {
		t.Errorf("unexpected filename: %q", name)
	}
}

func TestMonthlyReportNoRecords(t *testing.T) {
	mem := memory.New()
	seedLedger(t, mem)
	svc := NewReportService(mem, nil, "Teste")

	// December has no readings; the precondition fires before rendering.
	month := core.ReferenceMonth{Year: 2023, Month: time.December}
	if _, _, err := svc.Monthly(context.Background(), month, amqp.FormatPDF, ""); !errors.Is(err, report.ErrNoRecords) {
		t.Fatalf("expected ErrNoRecords, got %v", err)
	}
}

func TestIndividualReport(t *testing.T) {
	mem := memory.New()
	seedLedger(t, mem)
	svc := NewReportService(mem, nil, "Teste")

	out, name, err := svc.Individual(context.Background(), "u-1", nil, nil)
	if err != nil {
		t.Fatalf("individual: %v", err)
	}
	if len(out) == 0 {
		t.Error("expected PDF bytes")
	}
	if name != "relatorio_unidade_101.pdf" {
		t.Errorf("unexpected filename: %q", name)
	}
}

func TestIndividualReportRangeNoRecords(t *testing.T) {
	mem := memory.New()
	seedLedger(t, mem)
	svc := NewReportService(mem, nil, "Teste")

	from := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
	if _, _, err := svc.Individual(context.Background(), "u-1", &from, &to); !errors.Is(err, report.ErrNoRecords) {
		t.Fatalf("expected ErrNoRecords, got %v", err)
	}
}

func TestDefaultMonth(t *testing.T) {
	mem := memory.New()
	svc := NewReportService(mem, nil, "Teste")

	// Empty ledger falls back to the current month.
	month, err := svc.DefaultMonth(context.Background())
	if err != nil {
		t.Fatalf("default month: %v", err)
	}
	now := time.Now().UTC()
	if month.Year != now.Year() || month.Month != now.Month() {
		t.Errorf("expected current month, got %+v", month)
	}

	seedLedger(t, mem)
	month, err = svc.DefaultMonth(context.Background())
	if err != nil {
		t.Fatalf("default month: %v", err)
	}
	if month.Year != 2023 || month.Month != time.September {
		t.Errorf("expected latest reading month, got %+v", month)
	}
}

func TestEnqueueWithoutClientIsNoop(t *testing.T) {
	svc := NewReportService(memory.New(), nil, "Teste")
	month := core.ReferenceMonth{Year: 2023, Month: time.September}
	if err := svc.EnqueueMonthly(context.Background(), month, amqp.FormatPDF, ""); err != nil {
		t.Fatalf("enqueue without client must be a no-op, got %v", err)
	}
}

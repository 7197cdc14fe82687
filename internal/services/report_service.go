package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"condoflow/internal/amqp"
	"condoflow/internal/core"
	"condoflow/internal/report"
	"condoflow/internal/store"
)

// ReportService assembles and renders exports, and queues render jobs
// for the background worker when one is connected.
type ReportService struct {
	store      store.Store
	amqpClient *amqp.Client
	condoName  string
}

func NewReportService(st store.Store, amqpClient *amqp.Client, condoName string) *ReportService {
	return &ReportService{store: st, amqpClient: amqpClient, condoName: condoName}
}

// DefaultMonth is the month a report request falls back to: the month of
// the most recent reading, or the current month with an empty ledger.
func (s *ReportService) DefaultMonth(ctx context.Context) (core.ReferenceMonth, error) {
	latest, err := s.store.LatestReadingDate(ctx)
	if err != nil {
		return core.ReferenceMonth{}, fmt.Errorf("latest reading date: %w", err)
	}
	if latest.IsZero() {
		return core.MonthOf(time.Now().UTC()), nil
	}
	return core.MonthOf(latest), nil
}

// Monthly renders the month's consumption tables in the requested
// format and returns the document with its download filename. A
// non-empty utility restricts the export to that type's table; empty
// means both. A month with no matching readings yields
// report.ErrNoRecords before any rendering.
func (s *ReportService) Monthly(ctx context.Context, month core.ReferenceMonth, format string, utility core.UtilityType) ([]byte, string, error) {
	readings, err := s.monthReadings(ctx, month, utility)
	if err != nil {
		return nil, "", err
	}
	units, err := s.store.ListUnits(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("list units: %w", err)
	}

	sep := byte('.')
	if format == amqp.FormatXLSX {
		sep = ','
	}
	rep, err := report.AssembleMonthly(s.condoName, month, units, readings, sep)
	if err != nil {
		return nil, "", err
	}

	var out []byte
	switch format {
	case amqp.FormatPDF:
		out, err = report.RenderMonthlyPDF(rep)
	case amqp.FormatXLSX:
		out, err = report.RenderMonthlyXLSX(rep)
	default:
		return nil, "", fmt.Errorf("unknown report format: %q", format)
	}
	if err != nil {
		return nil, "", err
	}

	name := fmt.Sprintf("relatorio_consumo%s_%04d-%02d.%s", utilitySuffix(utility), month.Year, int(month.Month), format)
	slog.InfoContext(ctx, "Monthly report rendered",
		"year", month.Year,
		"month", int(month.Month),
		"format", format,
		"utility_type", string(utility),
		"bytes", len(out))
	return out, name, nil
}

func utilitySuffix(utility core.UtilityType) string {
	switch utility {
	case core.Water:
		return "_agua"
	case core.Gas:
		return "_gas"
	default:
		return ""
	}
}

// Individual renders the reading history of one unit as PDF. from/to
// bound the period when non-nil; rows keep ledger fetch order.
func (s *ReportService) Individual(ctx context.Context, unitID string, from, to *time.Time) ([]byte, string, error) {
	unit, err := s.store.GetUnit(ctx, unitID)
	if err != nil {
		return nil, "", fmt.Errorf("resolve unit: %w", err)
	}

	filter := store.ReadingFilter{UnitID: unitID}
	if from != nil {
		filter.From = *from
	}
	if to != nil {
		filter.To = *to
	}
	readings, err := s.store.ListReadings(ctx, filter)
	if err != nil {
		return nil, "", fmt.Errorf("list readings: %w", err)
	}
	if len(readings) == 0 {
		return nil, "", report.ErrNoRecords
	}

	var period string
	if from != nil && to != nil {
		period = from.Format("02/01/2006") + " a " + to.Format("02/01/2006")
	}

	rep := report.AssembleIndividual(s.condoName, unit, readings, period)
	out, err := report.RenderIndividualPDF(rep)
	if err != nil {
		return nil, "", err
	}

	name := fmt.Sprintf("relatorio_unidade_%s.pdf", unit.Number)
	return out, name, nil
}

// EnqueueMonthly queues a monthly render for the background worker.
func (s *ReportService) EnqueueMonthly(ctx context.Context, month core.ReferenceMonth, format string, utility core.UtilityType) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping report job")
		return nil
	}
	return s.amqpClient.PublishReportJob(ctx, amqp.NewMonthlyReportJob(format, month.Year, int(month.Month), string(utility)))
}

// EnqueueIndividual queues an individual render for the worker.
func (s *ReportService) EnqueueIndividual(ctx context.Context, unitID string, from, to *time.Time) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping report job")
		return nil
	}
	return s.amqpClient.PublishReportJob(ctx, amqp.NewIndividualReportJob(unitID, from, to))
}

func (s *ReportService) monthReadings(ctx context.Context, month core.ReferenceMonth, utility core.UtilityType) ([]core.Reading, error) {
	start := time.Date(month.Year, month.Month, 1, 0, 0, 0, 0, time.UTC)
	readings, err := s.store.ListReadings(ctx, store.ReadingFilter{
		Type: utility,
		From: start,
		To:   start.AddDate(0, 1, 0).Add(-time.Nanosecond),
	})
	if err != nil {
		return nil, fmt.Errorf("list readings: %w", err)
	}
	if len(readings) == 0 {
		return nil, report.ErrNoRecords
	}
	return readings, nil
}

// Package worker renders queued report jobs in the background and
// writes the resulting files to disk.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"condoflow/internal/amqp"
	"condoflow/internal/core"
	"condoflow/internal/services"
)

// ReportWorker consumes report jobs from AMQP and renders them through
// the report service. Finished files land in outputDir.
type ReportWorker struct {
	reports   *services.ReportService
	outputDir string
}

func NewReportWorker(reports *services.ReportService, outputDir string) *ReportWorker {
	return &ReportWorker{
		reports:   reports,
		outputDir: outputDir,
	}
}

// HandleReportJob processes a single report job message from AMQP
func (w *ReportWorker) HandleReportJob(ctx context.Context, msg *amqp.ReportJobMessage) error {
	slog.InfoContext(ctx, "Processing report job",
		"kind", msg.Kind,
		"format", msg.Format,
		"year", msg.Year,
		"month", msg.Month,
		"unit_id", msg.UnitID)

	var (
		data     []byte
		filename string
		err      error
	)
	switch msg.Kind {
	case amqp.JobMonthly:
		month := core.ReferenceMonth{Year: msg.Year, Month: time.Month(msg.Month)}
		data, filename, err = w.reports.Monthly(ctx, month, msg.Format, core.UtilityType(msg.Utility))
	case amqp.JobIndividual:
		data, filename, err = w.reports.Individual(ctx, msg.UnitID, msg.From, msg.To)
	default:
		return fmt.Errorf("unknown job kind: %q", msg.Kind)
	}
	if err != nil {
		return fmt.Errorf("render %s report: %w", msg.Kind, err)
	}

	if err := os.MkdirAll(w.outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	path := filepath.Join(w.outputDir, filename)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report file: %w", err)
	}

	slog.InfoContext(ctx, "Report rendered",
		"kind", msg.Kind,
		"path", path,
		"size_bytes", len(data))
	return nil
}

// Run consumes jobs until the context is cancelled.
func (w *ReportWorker) Run(ctx context.Context, client *amqp.Client) error {
	return client.ConsumeReportJobs(ctx, func(msg *amqp.ReportJobMessage) error {
		return w.HandleReportJob(ctx, msg)
	})
}

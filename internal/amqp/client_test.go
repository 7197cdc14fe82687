package amqp

import (
	"testing"
	"time"
)

func TestReportJobMessageValidate(t *testing.T) {
	from := time.Date(2023, time.September, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		job     *ReportJobMessage
		wantErr bool
	}{
		{
			name: "valid monthly pdf",
			job:  NewMonthlyReportJob(FormatPDF, 2023, 9, ""),
		},
		{
			name: "valid monthly xlsx",
			job:  NewMonthlyReportJob(FormatXLSX, 2023, 12, ""),
		},
		{
			name: "valid monthly filtered by utility",
			job:  NewMonthlyReportJob(FormatPDF, 2023, 9, "water"),
		},
		{
			name:    "monthly unknown utility",
			job:     NewMonthlyReportJob(FormatPDF, 2023, 9, "electricity"),
			wantErr: true,
		},
		{
			name: "valid individual",
			job:  NewIndividualReportJob("u-1", &from, nil),
		},
		{
			name:    "monthly without year",
			job:     &ReportJobMessage{Kind: JobMonthly, Format: FormatPDF, Month: 9},
			wantErr: true,
		},
		{
			name:    "monthly month out of range",
			job:     &ReportJobMessage{Kind: JobMonthly, Format: FormatPDF, Year: 2023, Month: 13},
			wantErr: true,
		},
		{
			name:    "individual without unit",
			job:     &ReportJobMessage{Kind: JobIndividual, Format: FormatPDF},
			wantErr: true,
		},
		{
			name:    "unknown kind",
			job:     &ReportJobMessage{Kind: "weekly", Format: FormatPDF, Year: 2023, Month: 9},
			wantErr: true,
		},
		{
			name:    "unknown format",
			job:     &ReportJobMessage{Kind: JobMonthly, Format: "csv", Year: 2023, Month: 9},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.job.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestReportJobMessageJSON(t *testing.T) {
	from := time.Date(2023, time.September, 1, 12, 0, 0, 0, time.UTC)
	msg := NewIndividualReportJob("u-42", &from, nil)

	body, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() error = %v", err)
	}

	parsed, err := ReportJobMessageFromJSON(body)
	if err != nil {
		t.Fatalf("ReportJobMessageFromJSON() error = %v", err)
	}
	if parsed.Kind != JobIndividual || parsed.UnitID != "u-42" {
		t.Errorf("unexpected round trip: %+v", parsed)
	}
	if parsed.From == nil || !parsed.From.Equal(from) {
		t.Errorf("expected from %v, got %v", from, parsed.From)
	}
	if parsed.To != nil {
		t.Errorf("expected nil to, got %v", parsed.To)
	}
}

func TestReportJobMessageInvalidJSON(t *testing.T) {
	if _, err := ReportJobMessageFromJSON([]byte(`{"year": "not_a_number"}`)); err == nil {
		t.Error("ReportJobMessageFromJSON() should fail with invalid JSON")
	}
}

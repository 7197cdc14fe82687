package amqp

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	JobMonthly    = "monthly"
	JobIndividual = "individual"

	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

// ReportJobMessage asks the worker to render one report. Monthly jobs
// carry year/month and an optional utility restriction; individual jobs
// carry the unit and an optional date range. The worker fetches
// everything else from the database.
type ReportJobMessage struct {
	Kind      string     `json:"kind"`
	Format    string     `json:"format"`
	Year      int        `json:"year,omitempty"`
	Month     int        `json:"month,omitempty"`
	Utility   string     `json:"utility_type,omitempty"`
	UnitID    string     `json:"unit_id,omitempty"`
	From      *time.Time `json:"from,omitempty"`
	To        *time.Time `json:"to,omitempty"`
	Timestamp time.Time  `json:"timestamp"`
}

func NewMonthlyReportJob(format string, year int, month int, utility string) *ReportJobMessage {
	return &ReportJobMessage{
		Kind:      JobMonthly,
		Format:    format,
		Year:      year,
		Month:     month,
		Utility:   utility,
		Timestamp: time.Now(),
	}
}

func NewIndividualReportJob(unitID string, from, to *time.Time) *ReportJobMessage {
	return &ReportJobMessage{
		Kind:      JobIndividual,
		Format:    FormatPDF,
		UnitID:    unitID,
		From:      from,
		To:        to,
		Timestamp: time.Now(),
	}
}

func (m *ReportJobMessage) Validate() error {
	switch m.Kind {
	case JobMonthly:
		if m.Year == 0 || m.Month < 1 || m.Month > 12 {
			return fmt.Errorf("monthly job needs a valid year and month: %d/%d", m.Year, m.Month)
		}
		switch m.Utility {
		case "", "water", "gas":
		default:
			return fmt.Errorf("unknown utility type: %q", m.Utility)
		}
	case JobIndividual:
		if m.UnitID == "" {
			return fmt.Errorf("individual job needs a unit id")
		}
	default:
		return fmt.Errorf("unknown job kind: %q", m.Kind)
	}
	switch m.Format {
	case FormatPDF, FormatXLSX:
		return nil
	}
	return fmt.Errorf("unknown report format: %q", m.Format)
}

func (m *ReportJobMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ReportJobMessageFromJSON(data []byte) (*ReportJobMessage, error) {
	var msg ReportJobMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

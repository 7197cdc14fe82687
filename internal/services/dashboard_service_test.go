package services

import (
	"context"
	"testing"
	"time"

	"condoflow/internal/core"
	"condoflow/internal/insight"
	"condoflow/internal/storage/memory"
)

func TestDashboardOverview(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	seedLedger(t, mem)
	svc := NewDashboardService(mem, insight.Static{})

	month := core.ReferenceMonth{Year: 2023, Month: time.September}
	dash, err := svc.Overview(ctx, &month)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}

	// u-1 has both readings, u-2 only water.
	if dash.CompletionPercent != 50 {
		t.Errorf("expected 50%% completion, got %v", dash.CompletionPercent)
	}
	if len(dash.Units) != 2 {
		t.Fatalf("expected 2 unit entries, got %d", len(dash.Units))
	}
	byLabel := map[string]core.UnitStatus{}
	for _, u := range dash.Units {
		byLabel[u.Label] = u.Status
	}
	if byLabel["101 A"] != core.StatusComplete {
		t.Errorf("unit 101 should be complete, got %s", byLabel["101 A"])
	}
	if byLabel["201 A"] != core.StatusPartial {
		t.Errorf("unit 201 should be partial, got %s", byLabel["201 A"])
	}

	if dash.Summary.TotalWater.Milli != 3500 {
		t.Errorf("expected water total 3500, got %d", dash.Summary.TotalWater.Milli)
	}
	if dash.Summary.TotalGas.Milli != 1250 {
		t.Errorf("expected gas total 1250, got %d", dash.Summary.TotalGas.Milli)
	}

	if len(dash.TopWater) != 2 {
		t.Fatalf("expected 2 water rank entries, got %d", len(dash.TopWater))
	}
	if dash.TopWater[0].Label != "101 A" {
		t.Errorf("highest water consumer should lead, got %q", dash.TopWater[0].Label)
	}

	if dash.Insight != insight.Fallback {
		t.Errorf("static summarizer must yield fallback, got %q", dash.Insight)
	}
}

func TestDashboardDefaultsToLatestMonth(t *testing.T) {
	ctx := context.Background()
	mem := memory.New()
	seedLedger(t, mem)
	svc := NewDashboardService(mem, nil)

	dash, err := svc.Overview(ctx, nil)
	if err != nil {
		t.Fatalf("overview: %v", err)
	}
	if dash.Month.Year != 2023 || dash.Month.Month != time.September {
		t.Errorf("expected September 2023, got %+v", dash.Month)
	}
}

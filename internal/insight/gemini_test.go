package insight

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/generative-ai-go/genai"

	"condoflow/internal/core"
)

func TestStaticReturnsFallback(t *testing.T) {
	got := Static{}.Summarize(context.Background(), core.MonthSummary{})
	if got != Fallback {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestBuildPrompt(t *testing.T) {
	s := core.MonthSummary{
		Month:       core.ReferenceMonth{Year: 2023, Month: time.September},
		TotalWater:  core.Volume{Milli: 123450},
		TotalGas:    core.Volume{Milli: 45678},
		WaterChange: 12.5,
		GasChange:   -3.2,
	}
	prompt := buildPrompt(s)

	for _, want := range []string{"Setembro 2023", "123.45", "45.678", "+12.5%", "-3.2%", "150 caracteres"} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q:\n%s", want, prompt)
		}
	}
}

func TestFirstCandidateText(t *testing.T) {
	tests := []struct {
		name string
		resp *genai.GenerateContentResponse
		want string
	}{
		{"nil response", nil, ""},
		{"no candidates", &genai.GenerateContentResponse{}, ""},
		{
			"empty content",
			&genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{}},
			},
			"",
		},
		{
			"blank text",
			&genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content: &genai.Content{Parts: []genai.Part{genai.Text("   ")}},
				}},
			},
			"",
		},
		{
			"first non-blank part wins",
			&genai.GenerateContentResponse{
				Candidates: []*genai.Candidate{{
					Content: &genai.Content{Parts: []genai.Part{
						genai.Text(""),
						genai.Text(" Reduza o consumo noturno. "),
					}},
				}},
			},
			"Reduza o consumo noturno.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := firstCandidateText(tt.resp); got != tt.want {
				t.Errorf("firstCandidateText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSummaryKey(t *testing.T) {
	a := core.MonthSummary{
		Month:      core.ReferenceMonth{Year: 2023, Month: time.September},
		TotalWater: core.Volume{Milli: 123450},
		TotalGas:   core.Volume{Milli: 45678},
	}
	b := a
	if summaryKey(a) != summaryKey(b) {
		t.Error("identical summaries produced different keys")
	}

	b.TotalWater.Milli++
	if summaryKey(a) == summaryKey(b) {
		t.Error("different totals produced the same key")
	}
}

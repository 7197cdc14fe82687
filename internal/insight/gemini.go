// Package insight produces the one-line consumption tip shown on the
// dashboard. Generation goes through Gemini; any failure falls back to a
// fixed message so the dashboard never depends on the external service.
package insight

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"condoflow/internal/cache"
	"condoflow/internal/core"
)

// Fallback is shown whenever generation fails or returns nothing.
const Fallback = "Mantenha o monitoramento para otimizar gastos."

const requestTimeout = 10 * time.Second

// Summarizer turns a month summary into a short tip. Implementations
// never fail; they degrade to Fallback instead.
type Summarizer interface {
	Summarize(ctx context.Context, s core.MonthSummary) string
}

// Static always answers with Fallback. It backs deployments without an
// API key.
type Static struct{}

func (Static) Summarize(context.Context, core.MonthSummary) string { return Fallback }

// Gemini generates the tip through the Generative Language API. Answers
// are cached by summary so unchanged months do not repeat the call.
type Gemini struct {
	client *genai.Client
	model  string
	recent *cache.LRU[string]
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &Gemini{
		client: client,
		model:  model,
		recent: cache.NewLRU[string](32, time.Hour),
	}, nil
}

// Close releases the underlying API connection.
func (g *Gemini) Close() error {
	return g.client.Close()
}

func (g *Gemini) Summarize(ctx context.Context, s core.MonthSummary) string {
	key := summaryKey(s)
	if tip, ok := g.recent.Get(key); ok {
		return tip
	}

	ctx, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	resp, err := g.client.GenerativeModel(g.model).GenerateContent(ctx, genai.Text(buildPrompt(s)))
	if err != nil {
		slog.WarnContext(ctx, "Insight generation failed, using fallback", "error", err)
		return Fallback
	}

	text := firstCandidateText(resp)
	if text == "" {
		slog.WarnContext(ctx, "Insight generation returned no text, using fallback")
		return Fallback
	}

	g.recent.Set(key, text)
	return text
}

func summaryKey(s core.MonthSummary) string {
	return fmt.Sprintf("%04d-%02d:%d:%d", s.Month.Year, s.Month.Month, s.TotalWater.Milli, s.TotalGas.Milli)
}

func buildPrompt(s core.MonthSummary) string {
	return fmt.Sprintf(
		"Você é um assistente de gestão condominial. Consumo de %s: água %s m³ (%+.1f%% vs mês anterior), gás %s m³ (%+.1f%%). "+
			"Escreva uma única dica de economia em português com no máximo 150 caracteres, sem aspas.",
		s.Month.Label(),
		s.TotalWater.Format(2, '.'), s.WaterChange,
		s.TotalGas.Format(3, '.'), s.GasChange,
	)
}

func firstCandidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand == nil || cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			text, ok := part.(genai.Text)
			if !ok {
				continue
			}
			if s := strings.TrimSpace(string(text)); s != "" {
				return s
			}
		}
	}
	return ""
}

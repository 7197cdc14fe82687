package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"condoflow/internal/core"
	"condoflow/internal/store"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeServiceError maps service-layer errors onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "Registro não encontrado.")
	case errors.Is(err, core.ErrInvalidValue),
		errors.Is(err, core.ErrInvalidType),
		errors.Is(err, core.ErrEmptyNumber),
		errors.Is(err, core.ErrEmptyResidentName),
		errors.Is(err, core.ErrInvalidRole),
		errors.Is(err, core.ErrInvalidCPF),
		errors.Is(err, core.ErrInvalidPhone),
		errors.Is(err, core.ErrNoUnitSelected),
		errors.Is(err, core.ErrFinancialResponsibleRequired),
		errors.Is(err, core.ErrEmptyCoResidentName):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		slog.ErrorContext(r.Context(), "Request failed", "error", err, "url", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "Erro interno do servidor.")
	}
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Corpo da requisição inválido: %v", err))
		return false
	}
	return true
}

// parseMonthQuery reads optional year/month query parameters. A missing
// pair returns nil so callers can fall back to the default month.
func parseMonthQuery(r *http.Request) (*core.ReferenceMonth, error) {
	yearStr := r.URL.Query().Get("year")
	monthStr := r.URL.Query().Get("month")
	if yearStr == "" && monthStr == "" {
		return nil, nil
	}
	if yearStr == "" || monthStr == "" {
		return nil, errors.New("informe ano e mês juntos")
	}
	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 2000 || year > 2200 {
		return nil, fmt.Errorf("ano inválido: %q", yearStr)
	}
	month, err := strconv.Atoi(monthStr)
	if err != nil || month < 1 || month > 12 {
		return nil, fmt.Errorf("mês inválido: %q", monthStr)
	}
	return &core.ReferenceMonth{Year: year, Month: time.Month(month)}, nil
}

// parseDateQuery reads an optional date parameter in 2006-01-02 form.
func parseDateQuery(r *http.Request, key string) (*time.Time, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return nil, fmt.Errorf("data inválida em %s: %q", key, raw)
	}
	return &t, nil
}

func serveDownload(w http.ResponseWriter, contentType, filename string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

package http

import (
	"net/http"
	"time"

	"condoflow/internal/core"
	"condoflow/internal/services"
	"condoflow/internal/store"
)

type readingRequest struct {
	UnitID    string `json:"unit_id"`
	Type      string `json:"type"`
	Previous  string `json:"previous,omitempty"`
	Current   string `json:"current,omitempty"`
	Date      string `json:"date,omitempty"`
	Confirmed bool   `json:"confirmed,omitempty"`
}

type readingResponse struct {
	ID       string `json:"id"`
	UnitID   string `json:"unit_id"`
	Type     string `json:"type"`
	Previous string `json:"previous"`
	Current  string `json:"current,omitempty"`
	Date     string `json:"date"`
	Status   string `json:"status"`
}

func toReadingResponse(rd core.Reading) readingResponse {
	decimals := rd.Type.Decimals()
	resp := readingResponse{
		ID:       rd.ID,
		UnitID:   rd.UnitID,
		Type:     string(rd.Type),
		Previous: rd.Previous.Format(decimals, '.'),
		Date:     rd.Date.Format("2006-01-02"),
		Status:   string(rd.Status),
	}
	if rd.Current != nil {
		resp.Current = rd.Current.Format(decimals, '.')
	}
	return resp
}

// parseOptionalVolume accepts meter values as decimal strings, with
// either ',' or '.' as the separator.
func parseOptionalVolume(raw string) (*core.Volume, error) {
	if raw == "" {
		return nil, nil
	}
	milli, err := core.ParseDecimalToMilli(raw)
	if err != nil {
		return nil, err
	}
	return &core.Volume{Milli: milli}, nil
}

func (s *Server) handleListReadings(w http.ResponseWriter, r *http.Request) {
	filter := store.ReadingFilter{
		UnitID: r.URL.Query().Get("unit_id"),
		Type:   core.UtilityType(r.URL.Query().Get("type")),
	}
	from, err := parseDateQuery(r, "from")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	to, err := parseDateQuery(r, "to")
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if from != nil {
		filter.From = *from
	}
	if to != nil {
		filter.To = *to
	}

	readings, err := s.readings.List(r.Context(), filter)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := make([]readingResponse, 0, len(readings))
	for _, rd := range readings {
		resp = append(resp, toReadingResponse(rd))
	}
	writeJSON(w, http.StatusOK, resp)
}

// handlePreviousValue suggests the previous field for the entry form.
func (s *Server) handlePreviousValue(w http.ResponseWriter, r *http.Request) {
	utility := core.UtilityType(r.URL.Query().Get("type"))
	if err := utility.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Tipo de consumo inválido.")
		return
	}
	unitID := r.URL.Query().Get("unit_id")
	if unitID == "" {
		writeError(w, http.StatusBadRequest, "Informe a unidade.")
		return
	}

	previous, err := s.readings.PreviousValue(r.Context(), unitID, utility)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"previous": previous.Format(utility.Decimals(), '.'),
	})
}

func (s *Server) handleSaveReading(w http.ResponseWriter, r *http.Request) {
	var payload readingRequest
	if !decodeBody(w, r, &payload) {
		return
	}

	previous, err := parseOptionalVolume(payload.Previous)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Valor anterior inválido.")
		return
	}
	current, err := parseOptionalVolume(payload.Current)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Valor atual inválido.")
		return
	}

	var date time.Time
	if payload.Date != "" {
		date, err = time.Parse("2006-01-02", payload.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Data inválida.")
			return
		}
	}

	reading, warning, err := s.readings.Save(r.Context(), services.SaveReadingInput{
		UnitID:    payload.UnitID,
		Type:      core.UtilityType(payload.Type),
		Previous:  previous,
		Current:   current,
		Date:      date,
		Confirmed: payload.Confirmed,
	})
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	if warning != nil {
		writeJSON(w, http.StatusConflict, map[string]string{"warning": warning.Message})
		return
	}

	var milli int64
	if reading.Current != nil {
		milli = reading.Current.Milli
	}
	s.log.LogReadingSaved(r.Context(), reading.UnitID, string(reading.Type), milli)

	s.invalidateDashboard()
	writeJSON(w, http.StatusCreated, toReadingResponse(reading))
}

func (s *Server) handleDeleteReading(w http.ResponseWriter, r *http.Request) {
	if err := s.readings.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.invalidateDashboard()
	w.WriteHeader(http.StatusNoContent)
}

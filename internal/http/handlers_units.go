package http

import (
	"net/http"

	"condoflow/internal/core"
)

type unitPayload struct {
	Number       string `json:"number"`
	Block        string `json:"block"`
	ResidentName string `json:"resident_name"`
	ResidentRole string `json:"resident_role"`
}

type unitResponse struct {
	ID           string `json:"id"`
	Number       string `json:"number"`
	Block        string `json:"block"`
	Label        string `json:"label"`
	ResidentName string `json:"resident_name"`
	ResidentRole string `json:"resident_role"`
}

func toUnitResponse(u core.Unit) unitResponse {
	return unitResponse{
		ID:           u.ID,
		Number:       u.Number,
		Block:        u.Block,
		Label:        u.DisplayLabel(),
		ResidentName: u.ResidentName,
		ResidentRole: string(u.ResidentRole),
	}
}

func (s *Server) handleListUnits(w http.ResponseWriter, r *http.Request) {
	units, err := s.units.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := make([]unitResponse, 0, len(units))
	for _, u := range units {
		resp = append(resp, toUnitResponse(u))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetUnit(w http.ResponseWriter, r *http.Request) {
	unit, err := s.units.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toUnitResponse(unit))
}

func (s *Server) handleCreateUnit(w http.ResponseWriter, r *http.Request) {
	var payload unitPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	unit, err := s.units.Create(r.Context(), core.Unit{
		Number:       payload.Number,
		Block:        payload.Block,
		ResidentName: payload.ResidentName,
		ResidentRole: core.ResidentRole(payload.ResidentRole),
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	s.invalidateDashboard()
	writeJSON(w, http.StatusCreated, toUnitResponse(unit))
}

func (s *Server) handleUpdateUnit(w http.ResponseWriter, r *http.Request) {
	var payload unitPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	unit := core.Unit{
		ID:           r.PathValue("id"),
		Number:       payload.Number,
		Block:        payload.Block,
		ResidentName: payload.ResidentName,
		ResidentRole: core.ResidentRole(payload.ResidentRole),
	}
	if err := unit.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.units.Update(r.Context(), unit); err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.invalidateDashboard()
	writeJSON(w, http.StatusOK, toUnitResponse(unit))
}

func (s *Server) handleDeleteUnit(w http.ResponseWriter, r *http.Request) {
	if err := s.units.Delete(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, r, err)
		return
	}
	s.invalidateDashboard()
	w.WriteHeader(http.StatusNoContent)
}

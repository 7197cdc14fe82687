package http

import (
	"context"
	"errors"
	"net/http"

	"condoflow/internal/core"
	"condoflow/internal/services"
)

type coResidentPayload struct {
	Name      string `json:"name"`
	CPF       string `json:"cpf"`
	BirthDate string `json:"birth_date"`
	Phone     string `json:"phone"`
}

type registrationPayload struct {
	UnitID                   string              `json:"unit_id"`
	FullName                 string              `json:"full_name"`
	CPF                      string              `json:"cpf"`
	BirthDate                string              `json:"birth_date"`
	Phone                    string              `json:"phone"`
	ResidentRole             string              `json:"resident_role"`
	GarageSpot               string              `json:"garage_spot"`
	IsFinancialResponsible   bool                `json:"is_financial_responsible"`
	FinancialResponsibleName string              `json:"financial_responsible_name"`
	FinancialResponsibleCPF  string              `json:"financial_responsible_cpf"`
	OwnerName                string              `json:"owner_name"`
	OwnerPhone               string              `json:"owner_phone"`
	CoResidents              []coResidentPayload `json:"co_residents"`
}

type registrationResponse struct {
	ID        string              `json:"id"`
	Status    string              `json:"status"`
	CreatedAt string              `json:"created_at"`
	Payload   registrationPayload `json:"profile"`
}

func (p registrationPayload) toDomain() core.RegistrationRequest {
	coResidents := make([]core.CoResident, 0, len(p.CoResidents))
	for _, c := range p.CoResidents {
		coResidents = append(coResidents, core.CoResident{
			Name:      c.Name,
			CPF:       c.CPF,
			BirthDate: c.BirthDate,
			Phone:     c.Phone,
		})
	}
	return core.RegistrationRequest{
		UnitID:                   p.UnitID,
		FullName:                 p.FullName,
		CPF:                      p.CPF,
		BirthDate:                p.BirthDate,
		Phone:                    p.Phone,
		ResidentRole:             core.ResidentRole(p.ResidentRole),
		GarageSpot:               p.GarageSpot,
		IsFinancialResponsible:   p.IsFinancialResponsible,
		FinancialResponsibleName: p.FinancialResponsibleName,
		FinancialResponsibleCPF:  p.FinancialResponsibleCPF,
		OwnerName:                p.OwnerName,
		OwnerPhone:               p.OwnerPhone,
		CoResidents:              coResidents,
	}
}

func toRegistrationResponse(reg core.RegistrationRequest) registrationResponse {
	coResidents := make([]coResidentPayload, 0, len(reg.CoResidents))
	for _, c := range reg.CoResidents {
		coResidents = append(coResidents, coResidentPayload{
			Name:      c.Name,
			CPF:       c.CPF,
			BirthDate: c.BirthDate,
			Phone:     c.Phone,
		})
	}
	return registrationResponse{
		ID:        reg.ID,
		Status:    string(reg.Status),
		CreatedAt: reg.CreatedAt.Format("2006-01-02"),
		Payload: registrationPayload{
			UnitID:                   reg.UnitID,
			FullName:                 reg.FullName,
			CPF:                      reg.CPF,
			BirthDate:                reg.BirthDate,
			Phone:                    reg.Phone,
			ResidentRole:             string(reg.ResidentRole),
			GarageSpot:               reg.GarageSpot,
			IsFinancialResponsible:   reg.IsFinancialResponsible,
			FinancialResponsibleName: reg.FinancialResponsibleName,
			FinancialResponsibleCPF:  reg.FinancialResponsibleCPF,
			OwnerName:                reg.OwnerName,
			OwnerPhone:               reg.OwnerPhone,
			CoResidents:              coResidents,
		},
	}
}

func (s *Server) handleSubmitRegistration(w http.ResponseWriter, r *http.Request) {
	var payload registrationPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	reg, err := s.registrations.Submit(r.Context(), payload.toDomain())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRegistrationResponse(reg))
}

func (s *Server) handleListRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := s.registrations.List(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	resp := make([]registrationResponse, 0, len(regs))
	for _, reg := range regs {
		resp = append(resp, toRegistrationResponse(reg))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetRegistration(w http.ResponseWriter, r *http.Request) {
	reg, err := s.registrations.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, toRegistrationResponse(reg))
}

func (s *Server) handleUpdateRegistration(w http.ResponseWriter, r *http.Request) {
	var payload registrationPayload
	if !decodeBody(w, r, &payload) {
		return
	}

	reg := payload.toDomain()
	reg.ID = r.PathValue("id")
	if err := s.registrations.Update(r.Context(), reg); err != nil {
		if errors.Is(err, services.ErrRegistrationClosed) {
			writeError(w, http.StatusConflict, "Cadastro já avaliado.")
			return
		}
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleApproveRegistration(w http.ResponseWriter, r *http.Request) {
	s.reviewRegistration(w, r, s.registrations.Approve)
}

func (s *Server) handleRejectRegistration(w http.ResponseWriter, r *http.Request) {
	s.reviewRegistration(w, r, s.registrations.Reject)
}

func (s *Server) reviewRegistration(w http.ResponseWriter, r *http.Request, decide func(ctx context.Context, id string) error) {
	if err := decide(r.Context(), r.PathValue("id")); err != nil {
		if errors.Is(err, services.ErrRegistrationClosed) {
			writeError(w, http.StatusConflict, "Cadastro já avaliado.")
			return
		}
		writeServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

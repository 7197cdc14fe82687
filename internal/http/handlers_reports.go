package http

import (
	"errors"
	"net/http"

	"condoflow/internal/amqp"
	"condoflow/internal/core"
	"condoflow/internal/report"
)

const noRecordsMessage = "Não há registros para o período selecionado."

func contentTypeFor(format string) string {
	if format == amqp.FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "application/pdf"
}

func reportFormat(r *http.Request) (string, bool) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = amqp.FormatPDF
	}
	if format != amqp.FormatPDF && format != amqp.FormatXLSX {
		return "", false
	}
	return format, true
}

// reportUtility reads the optional type restriction; empty exports both.
func reportUtility(r *http.Request) (core.UtilityType, bool) {
	utility := core.UtilityType(r.URL.Query().Get("type"))
	if utility == "" {
		return "", true
	}
	if err := utility.Validate(); err != nil {
		return "", false
	}
	return utility, true
}

func (s *Server) handleMonthlyReport(w http.ResponseWriter, r *http.Request) {
	format, ok := reportFormat(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Formato inválido. Use pdf ou xlsx.")
		return
	}
	utility, ok := reportUtility(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Tipo de consumo inválido. Use water ou gas.")
		return
	}

	month, err := parseMonthQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if month == nil {
		resolved, err := s.reports.DefaultMonth(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		month = &resolved
	}

	data, filename, err := s.reports.Monthly(r.Context(), *month, format, utility)
	if err != nil {
		if errors.Is(err, report.ErrNoRecords) {
			writeError(w, http.StatusNotFound, noRecordsMessage)
			return
		}
		writeServiceError(w, r, err)
		return
	}
	serveDownload(w, contentTypeFor(format), filename, data)
}

func (s *Server) handleEnqueueMonthlyReport(w http.ResponseWriter, r *http.Request) {
	format, ok := reportFormat(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Formato inválido. Use pdf ou xlsx.")
		return
	}
	utility, ok := reportUtility(r)
	if !ok {
		writeError(w, http.StatusBadRequest, "Tipo de consumo inválido. Use water ou gas.")
		return
	}

	month, err := parseMonthQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if month == nil {
		resolved, err := s.reports.DefaultMonth(r.Context())
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		month = &resolved
	}

	if err := s.reports.EnqueueMonthly(r.Context(), *month, format, utility); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "enfileirado"})
}

func (s *Server) handleIndividualReport(w http.ResponseWriter, r *http.Request) {
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

	data, filename, err := s.reports.Individual(r.Context(), r.PathValue("id"), from, to)
	if err != nil {
		if errors.Is(err, report.ErrNoRecords) {
			writeError(w, http.StatusNotFound, noRecordsMessage)
			return
		}
		writeServiceError(w, r, err)
		return
	}
	serveDownload(w, contentTypeFor(amqp.FormatPDF), filename, data)
}

func (s *Server) handleEnqueueIndividualReport(w http.ResponseWriter, r *http.Request) {
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

	if err := s.reports.EnqueueIndividual(r.Context(), r.PathValue("id"), from, to); err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusAccepted, map[string]string{"status": "enfileirado"})
}

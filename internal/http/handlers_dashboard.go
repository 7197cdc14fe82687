package http

import (
	"fmt"
	"net/http"

	"condoflow/internal/core"
	"condoflow/internal/services"
)

type rankEntryResponse struct {
	UnitID      string `json:"unit_id"`
	Label       string `json:"label"`
	Consumption string `json:"consumption"`
}

type unitStatusResponse struct {
	UnitID string `json:"unit_id"`
	Label  string `json:"label"`
	Status string `json:"status"`
}

type dashboardResponse struct {
	Year              int                  `json:"year"`
	Month             int                  `json:"month"`
	MonthLabel        string               `json:"month_label"`
	TotalWater        string               `json:"total_water"`
	TotalGas          string               `json:"total_gas"`
	WaterChange       string               `json:"water_change"`
	GasChange         string               `json:"gas_change"`
	CompletionPercent float64              `json:"completion_percent"`
	Units             []unitStatusResponse `json:"units"`
	TopWater          []rankEntryResponse  `json:"top_water"`
	TopGas            []rankEntryResponse  `json:"top_gas"`
	Insight           string               `json:"insight"`
}

func toRanking(entries []core.RankEntry, utility core.UtilityType) []rankEntryResponse {
	resp := make([]rankEntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, rankEntryResponse{
			UnitID:      e.UnitID,
			Label:       e.Label,
			Consumption: e.Consumption.Format(utility.Decimals(), '.'),
		})
	}
	return resp
}

func toDashboardResponse(d services.Dashboard) dashboardResponse {
	units := make([]unitStatusResponse, 0, len(d.Units))
	for _, u := range d.Units {
		units = append(units, unitStatusResponse{
			UnitID: u.UnitID,
			Label:  u.Label,
			Status: string(u.Status),
		})
	}
	return dashboardResponse{
		Year:              d.Month.Year,
		Month:             int(d.Month.Month),
		MonthLabel:        d.Month.Label(),
		TotalWater:        d.Summary.TotalWater.Format(core.Water.Decimals(), '.'),
		TotalGas:          d.Summary.TotalGas.Format(core.Gas.Decimals(), '.'),
		WaterChange:       fmt.Sprintf("%+.1f%%", d.Summary.WaterChange),
		GasChange:         fmt.Sprintf("%+.1f%%", d.Summary.GasChange),
		CompletionPercent: d.CompletionPercent,
		Units:             units,
		TopWater:          toRanking(d.TopWater, core.Water),
		TopGas:            toRanking(d.TopGas, core.Gas),
		Insight:           d.Insight,
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	month, err := parseMonthQuery(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if month != nil {
		key := s.dashCacheKey(month.Year, int(month.Month))
		if cached, ok := s.dashCache.Get(key); ok {
			writeJSON(w, http.StatusOK, toDashboardResponse(cached))
			return
		}
	}

	dash, err := s.dashboard.Overview(r.Context(), month)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}

	s.dashCache.Set(s.dashCacheKey(dash.Month.Year, int(dash.Month.Month)), dash)
	writeJSON(w, http.StatusOK, toDashboardResponse(dash))
}

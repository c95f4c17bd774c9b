package http

import (
	"net/http"

	"signaldesk/internal/core"
)

// Totals mix currencies; they are displayed in dollars like the summary cards.
const summaryDisplayCurrency = "USD"

type summaryResponse struct {
	core.TransactionSummary
	TotalVolumeDisplay string `json:"total_volume_display"`
}

type overviewResponse struct {
	core.Overview
	TotalVolumeDisplay string `json:"total_volume_display"`
}

type activityResponse struct {
	Items []core.ChangeEvent `json:"items"`
	Count int                `json:"count"`
}

// handleTransactionSummary aggregates the transactions selected by the
// same filters the list accepts.
func (s *Server) handleTransactionSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.app.Dashboard.TransactionSummary(ParseListQuery(r.URL.Query()))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaryResponse{
		TransactionSummary: sum,
		TotalVolumeDisplay: core.FormatMoney(sum.TotalVolume, summaryDisplayCurrency),
	})
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	o, err := s.app.Dashboard.Overview(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overviewResponse{
		Overview:           o,
		TotalVolumeDisplay: core.FormatMoney(o.TotalVolume, summaryDisplayCurrency),
	})
}

func (s *Server) handleActivity(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query(), "limit", s.opts.ActivityLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	events := s.app.Activity.Recent(limit)
	writeJSON(w, http.StatusOK, activityResponse{Items: events, Count: len(events)})
}

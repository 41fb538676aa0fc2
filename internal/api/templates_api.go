package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"washbay/internal/db"
	"washbay/internal/recurrence"
	"washbay/internal/report"
)

// ExpandTemplateRequest is the request body for POST /api/templates/expand.
type ExpandTemplateRequest struct {
	TemplateID int64 `json:"template_id"`
	DaysAhead  int   `json:"days_ahead,omitempty"`
}

// CreatedEntry is one materialized reservation in the response.
type CreatedEntry struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// SkippedEntry is one candidate the expansion passed over.
type SkippedEntry struct {
	Date   string `json:"date"`
	Reason string `json:"reason"`
}

// ExpandTemplateResponse is the response for POST /api/templates/expand.
type ExpandTemplateResponse struct {
	RunID   string         `json:"run_id"`
	Created []CreatedEntry `json:"created"`
	Skipped []SkippedEntry `json:"skipped"`
	Count   int            `json:"count"`
}

// handleExpandTemplate materializes a recurring template over its horizon.
// POST /api/templates/expand
func (s *HTTPServer) handleExpandTemplate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use POST")
		return
	}

	var req ExpandTemplateRequest
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.TemplateID <= 0 {
		writeError(w, http.StatusBadRequest, "template_id is required")
		return
	}

	ctx := r.Context()
	tpl, err := s.db.GetTemplate(ctx, req.TemplateID)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("template_id", req.TemplateID).Msg("load template")
		writeError(w, http.StatusInternalServerError, "failed to load template")
		return
	}

	run, err := s.expander.Expand(ctx, tpl, req.DaysAhead)
	if errors.Is(err, recurrence.ErrTemplateInactive) || errors.Is(err, recurrence.ErrExpansionInProgress) {
		writeError(w, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		s.logger.Error().Err(err).Int64("template_id", req.TemplateID).Msg("template expansion failed")
		writeError(w, http.StatusInternalServerError, "template expansion failed")
		return
	}

	s.writeRunReport(run)

	resp := ExpandTemplateResponse{
		RunID:   run.ID,
		Created: make([]CreatedEntry, 0, len(run.Created)),
		Skipped: make([]SkippedEntry, 0, len(run.Skipped)),
		Count:   len(run.Created),
	}
	for _, res := range run.Created {
		resp.Created = append(resp.Created, CreatedEntry{
			Date: res.Date.Format("2006-01-02"),
			Time: res.Interval.Start.Format("15:04"),
		})
	}
	for _, skip := range run.Skipped {
		resp.Skipped = append(resp.Skipped, SkippedEntry{
			Date:   skip.Date.Format("2006-01-02"),
			Reason: skip.Reason,
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// writeRunReport exports the run as XLSX when a report directory is
// configured. Report failures are logged, never surfaced to the caller.
func (s *HTTPServer) writeRunReport(run *recurrence.Run) {
	if s.reportDir == "" {
		return
	}

	rep := report.NewExpansionReport()
	if err := rep.Fill(run); err != nil {
		s.logger.Error().Err(err).Str("run_id", run.ID).Msg("build expansion report")
		return
	}
	path := filepath.Join(s.reportDir, fmt.Sprintf("expansion-%s.xlsx", run.ID))
	if err := rep.SaveAs(path); err != nil {
		s.logger.Error().Err(err).Str("path", path).Msg("save expansion report")
		return
	}
	s.logger.Info().Str("path", path).Msg("expansion report written")
}

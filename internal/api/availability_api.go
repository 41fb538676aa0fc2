package api

import (
	"net/http"
	"strconv"
	"time"

	"washbay/internal/availability"
	"washbay/internal/metrics"
)

// handleAvailableTimes answers "what times are free" for the booking UI.
// GET /api/available-times?date=YYYY-MM-DD&duration=NN
//
// The empty-times, closed-day and oversized-duration outcomes are all HTTP
// 200 with distinguishing flags; they are normal answers, not errors.
func (s *HTTPServer) handleAvailableTimes(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed; use GET")
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}
	date, err := time.ParseInLocation("2006-01-02", dateStr, s.loc)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date format; expected YYYY-MM-DD")
		return
	}

	durationStr := r.URL.Query().Get("duration")
	if durationStr == "" {
		writeError(w, http.StatusBadRequest, "duration is required")
		return
	}
	duration, err := strconv.Atoi(durationStr)
	if err != nil || duration <= 0 {
		writeError(w, http.StatusBadRequest, "duration must be a positive number of minutes")
		return
	}

	ctx := r.Context()

	// Settings are read fresh on every request, never cached in the process.
	settings, err := s.db.GetScheduleSettings(ctx)
	if err != nil {
		s.logger.Error().Err(err).Msg("load schedule settings")
		writeError(w, http.StatusInternalServerError, "failed to load schedule settings")
		return
	}

	reservations, err := s.db.ActiveForDate(ctx, date)
	if err != nil {
		s.logger.Error().Err(err).Msg("load reservations")
		writeError(w, http.StatusInternalServerError, "failed to load reservations")
		return
	}

	slots, err := s.db.SlotsForDate(ctx, date)
	if err != nil {
		s.logger.Error().Err(err).Msg("load explicit slots")
		writeError(w, http.StatusInternalServerError, "failed to load slots")
		return
	}

	result, err := s.calculator.ComputeAvailableStarts(ctx, availability.Request{
		Date:            date,
		DurationMinutes: duration,
		Reservations:    reservations,
		Hours:           settings.Hours,
		ExplicitSlots:   slots,
		MinAdvanceHours: settings.MinAdvanceHours,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("date", dateStr).Msg("availability calculation failed")
		writeError(w, http.StatusInternalServerError, "availability calculation failed")
		return
	}

	metrics.IncAvailability(outcomeLabel(result))
	writeJSON(w, http.StatusOK, result)
}

func outcomeLabel(result availability.Result) string {
	switch {
	case result.Closed:
		return "closed"
	case result.Rejected:
		return "rejected"
	case len(result.Times) == 0:
		return "empty"
	default:
		return "open"
	}
}

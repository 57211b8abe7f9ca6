package api

import (
	"fmt"
	"net/http"

	"klinik/internal/metrics"
	"klinik/internal/report"
)

// handleRevenueReport streams an xlsx revenue report for a date range.
// GET /api/v1/reports/revenue?from=YYYY-MM-DD&to=YYYY-MM-DD
// The range is half-open: sessions on `to` itself are excluded.
func (s *Server) handleRevenueReport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("reports_revenue")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	q := r.URL.Query()
	from, err := parseDate(q.Get("from"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid from date; expected YYYY-MM-DD")
		return
	}
	to, err := parseDate(q.Get("to"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid to date; expected YYYY-MM-DD")
		return
	}
	if !from.Before(to) {
		writeError(w, http.StatusBadRequest, "from must be before to")
		return
	}

	payments, err := s.store.PaymentsBetween(r.Context(), from, to)
	if err != nil {
		s.logger.Error().Err(err).Msg("payments query failed")
		writeError(w, http.StatusInternalServerError, "failed to load payments")
		return
	}

	filename := fmt.Sprintf("revenue_%s_%s.xlsx",
		from.Format("2006-01-02"), to.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := report.RevenueWorkbook(payments, w); err != nil {
		s.logger.Error().Err(err).Msg("revenue workbook failed")
	}
	s.logger.Info().
		Time("from", from).
		Time("to", to).
		Int("payments", len(payments)).
		Msg("revenue report generated")
}

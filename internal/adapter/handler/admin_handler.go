package handler

import (
	"net/http"
	"strconv"
)

const defaultSyncLimit = 100

// runCleanup triggers one reconciliation pass on demand. The report is
// returned even when the pass was skipped or failed.
func (h *Handler) runCleanup(w http.ResponseWriter, r *http.Request) {
	timeout := 0
	if v := r.URL.Query().Get("timeout_minutes"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeBadRequest(w, "timeout_minutes must be a positive integer")
			return
		}
		timeout = n
	}

	report := h.reconcile.RunCleanupJob(r.Context(), timeout)
	status := http.StatusOK
	if !report.Success {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, report)
}

func (h *Handler) syncPayments(w http.ResponseWriter, r *http.Request) {
	limit := defaultSyncLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeBadRequest(w, "limit must be a positive integer")
			return
		}
		limit = n
	}

	report, err := h.payments.SyncPendingPayments(r.Context(), limit)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

package handlers

import (
	"net/http"
	"strconv"
)

// WorkerStatus serves the worker stats snapshot.
func (a *App) WorkerStatus(w http.ResponseWriter, r *http.Request) {
	if a.Status == nil {
		a.errorJSON(w, http.StatusServiceUnavailable, "worker not running")
		return
	}
	a.json(w, http.StatusOK, a.Status.Snapshot())
}

// RecentRuns lists the latest journal entries, newest first.
func (a *App) RecentRuns(w http.ResponseWriter, r *http.Request) {
	if a.Runs == nil {
		a.errorJSON(w, http.StatusNotFound, "journal disabled")
		return
	}
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			a.errorJSON(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}
	entries, err := a.Runs.Recent(r.Context(), limit)
	if err != nil {
		a.errorJSON(w, http.StatusInternalServerError, "failed to read journal")
		return
	}
	a.json(w, http.StatusOK, map[string]any{"items": entries})
}

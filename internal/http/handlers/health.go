package handlers

import "net/http"

type healthResponse struct {
	Status string `json:"status"`
	// Worker is false when the status API runs without a polling worker.
	Worker bool `json:"worker"`
}

// Health answers liveness checks. It never inspects the queues.
func (a *App) Health(w http.ResponseWriter, _ *http.Request) {
	a.json(w, http.StatusOK, healthResponse{Status: "ok", Worker: a.Status != nil})
}

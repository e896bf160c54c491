package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/redmarwoest/cp-automation-script/internal/journal"
	"github.com/redmarwoest/cp-automation-script/internal/worker"
)

// StatusSource provides the worker state.
type StatusSource interface {
	Snapshot() worker.Stats
}

// RunLister reads finished jobs from the journal.
type RunLister interface {
	Recent(ctx context.Context, limit int) ([]journal.Entry, error)
}

type App struct {
	Status StatusSource
	// Runs is nil when no journal is configured.
	Runs RunLister
}

func NewApp(status StatusSource, runs RunLister) *App {
	return &App{Status: status, Runs: runs}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) errorJSON(w http.ResponseWriter, code int, msg string) {
	a.json(w, code, map[string]string{"error": msg})
}

package httpapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/redmarwoest/cp-automation-script/internal/http/handlers"
	"github.com/redmarwoest/cp-automation-script/internal/infra"
	"github.com/redmarwoest/cp-automation-script/internal/middleware"
)

// NewRouter builds the read-only status API. origins may be empty.
func NewRouter(app *handlers.App, logger *infra.Logger, origins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.RequestID,
		chimw.Recoverer,
		middleware.Logger(logger),
		middleware.CORS(origins),
	)

	r.Get("/v1/healthz", app.Health)
	r.Get("/v1/status", app.WorkerStatus)
	r.Get("/v1/runs", app.RecentRuns)

	return r
}

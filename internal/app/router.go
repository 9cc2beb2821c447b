package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/solara-pms/solara/internal/booking"
	"github.com/solara-pms/solara/internal/ledger"
	"github.com/solara-pms/solara/internal/nightaudit"
	"github.com/solara-pms/solara/internal/observability"
	"github.com/solara-pms/solara/internal/orders"
	"github.com/solara-pms/solara/internal/rooms"
	"github.com/solara-pms/solara/internal/staff"
	"github.com/solara-pms/solara/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger         *slog.Logger
	Config         *Config
	BookingHandler *booking.Handler
	OrdersHandler  *orders.Handler
	RoomsHandler   *rooms.Handler
	LedgerHandler  *ledger.Handler
	AuditHandler   *nightaudit.Handler
	JobHandler     *jobs.Handler
	StaffAuth      staff.Middleware
	Pool           *pgxpool.Pool
	Metrics        *observability.Metrics
}

// NewRouter constructs the chi.Router with Solara defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:  params.Logger,
		Config:  params.Config,
		Metrics: params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	if params.Metrics != nil {
		r.Get("/metrics", params.Metrics.Handler().ServeHTTP)
	}

	r.Route("/api", func(api chi.Router) {
		api.Use(params.StaffAuth.Require)

		if params.BookingHandler != nil {
			api.Route("/bookings", params.BookingHandler.MountRoutes)
		}
		if params.OrdersHandler != nil {
			api.Route("/orders", params.OrdersHandler.MountRoutes)
		}
		if params.RoomsHandler != nil {
			api.Route("/rooms", params.RoomsHandler.MountRoutes)
		}
		if params.LedgerHandler != nil {
			api.Route("/ledger", params.LedgerHandler.MountRoutes)
		}
		if params.AuditHandler != nil {
			api.Route("/audit", params.AuditHandler.MountRoutes)
		}
		if params.JobHandler != nil {
			api.Route("/jobs", params.JobHandler.MountTriggerRoutes)
		}
	})

	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}

	return r
}

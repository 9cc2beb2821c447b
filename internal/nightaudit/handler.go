package nightaudit

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/solara-pms/solara/internal/businessday"
	"github.com/solara-pms/solara/internal/platform/httpx"
	"github.com/solara-pms/solara/internal/staff"
)

type auditService interface {
	Run(ctx context.Context, staffID int64, staffName string) (RunResult, error)
	Get(ctx context.Context, id int64) (AuditRun, error)
	Recent(ctx context.Context, limit int) ([]AuditRun, error)
	BusinessDay(ctx context.Context) (businessday.BusinessDay, error)
}

// Handler wires HTTP endpoints for the night audit.
type Handler struct {
	logger  *slog.Logger
	service auditService
}

// NewHandler constructs the audit HTTP handler.
func NewHandler(logger *slog.Logger, service auditService) *Handler {
	return &Handler{logger: logger, service: service}
}

// MountRoutes registers HTTP routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Post("/night-runs", h.runAudit)
	r.Get("/night-runs", h.listRuns)
	r.Get("/night-runs/{id}", h.getRun)
	r.Get("/business-day", h.businessDay)
}

type runView struct {
	ID            int64    `json:"id"`
	BusinessDate  string   `json:"businessDate"`
	Status        string   `json:"status"`
	Steps         Steps    `json:"steps"`
	TotalRevenue  string   `json:"totalRevenue"`
	OccupiedRooms int      `json:"occupiedRooms"`
	Arrivals      int      `json:"arrivals"`
	Departures    int      `json:"departures"`
	CheckedOut    int      `json:"checkedOut"`
	EntriesPosted int      `json:"entriesPosted"`
	ErrorMessage  string   `json:"errorMessage,omitempty"`
	Warnings      []string `json:"warnings,omitempty"`
	RunBy         string   `json:"runBy"`
	StartedAt     string   `json:"startedAt"`
	FinishedAt    string   `json:"finishedAt,omitempty"`
}

func (h *Handler) runAudit(w http.ResponseWriter, r *http.Request) {
	member, ok := staff.MemberFromContext(r.Context())
	var staffID int64
	staffName := "system"
	if ok {
		staffID = member.ID
		staffName = member.DisplayName
	}
	result, err := h.service.Run(r.Context(), staffID, staffName)
	if err != nil {
		switch {
		case errors.Is(err, ErrAlreadyAudited):
			httpx.Problem(w, http.StatusConflict, "Already Audited", "the current business date has already been closed")
		case errors.Is(err, ErrAuditInProgress):
			httpx.Problem(w, http.StatusConflict, "Audit In Progress", "another night audit run is currently executing")
		default:
			h.logger.Error("night audit run", slog.Any("error", err))
			httpx.Problem(w, http.StatusInternalServerError, "Audit Failed", err.Error())
		}
		return
	}
	httpx.JSON(w, http.StatusCreated, toRunView(result.Run, result.Warnings))
}

func (h *Handler) listRuns(w http.ResponseWriter, r *http.Request) {
	limit := 30
	if raw := r.URL.Query().Get("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	runs, err := h.service.Recent(r.Context(), limit)
	if err != nil {
		h.logger.Error("list audit runs", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]runView, 0, len(runs))
	for _, run := range runs {
		views = append(views, toRunView(run, nil))
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) getRun(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "id must be an integer")
		return
	}
	run, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrRunNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "no audit run with that id")
			return
		}
		h.logger.Error("get audit run", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toRunView(run, nil))
}

func (h *Handler) businessDay(w http.ResponseWriter, r *http.Request) {
	day, err := h.service.BusinessDay(r.Context())
	if err != nil {
		h.logger.Error("load business day", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	view := map[string]any{
		"date":   day.DateString(),
		"status": string(day.Status),
	}
	if day.LastAuditDate != nil {
		view["lastAuditDate"] = day.LastAuditDate.Format("2006-01-02")
	}
	httpx.JSON(w, http.StatusOK, view)
}

func toRunView(run AuditRun, warnings []string) runView {
	view := runView{
		ID:            run.ID,
		BusinessDate:  run.BusinessDate.Format("2006-01-02"),
		Status:        string(run.Status),
		Steps:         run.Steps,
		TotalRevenue:  run.Summary.TotalRevenue.String(),
		OccupiedRooms: run.Summary.OccupiedRooms,
		Arrivals:      run.Summary.Arrivals,
		Departures:    run.Summary.Departures,
		CheckedOut:    run.Summary.CheckedOut,
		EntriesPosted: run.Summary.EntriesPosted,
		ErrorMessage:  run.ErrorMessage,
		Warnings:      warnings,
		RunBy:         run.RunBy,
		StartedAt:     run.StartedAt.Format(time.RFC3339),
	}
	if run.FinishedAt != nil {
		view.FinishedAt = run.FinishedAt.Format(time.RFC3339)
	}
	return view
}

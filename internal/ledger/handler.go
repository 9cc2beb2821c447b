package ledger

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/solara-pms/solara/internal/platform/httpx"
	"github.com/solara-pms/solara/internal/staff"
)

type ledgerService interface {
	Append(ctx context.Context, in EntryInput) (Entry, error)
	ListByDate(ctx context.Context, day time.Time) ([]Entry, error)
	TotalsForDate(ctx context.Context, day time.Time) (DayTotals, error)
}

// Handler wires HTTP endpoints for the financial ledger.
type Handler struct {
	logger   *slog.Logger
	service  ledgerService
	validate *validator.Validate
}

// NewHandler constructs a ledger HTTP handler.
func NewHandler(logger *slog.Logger, service ledgerService) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers HTTP routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/entries", h.listEntries)
	r.Get("/totals", h.totals)
	r.Post("/entries", h.createEntry)
}

type createEntryRequest struct {
	EntryDate          string `json:"entryDate" validate:"required,datetime=2006-01-02"`
	EntryType          string `json:"entryType" validate:"required,oneof=INCOME EXPENSE"`
	Category           string `json:"category" validate:"required"`
	Description        string `json:"description"`
	Amount             string `json:"amount" validate:"required"`
	PaymentMethod      string `json:"paymentMethod"`
	ReferenceID        string `json:"referenceId"`
	AccountsReceivable bool   `json:"accountsReceivable"`
}

type entryView struct {
	ID                 int64  `json:"id"`
	EntryDate          string `json:"entryDate"`
	EntryType          string `json:"entryType"`
	Category           string `json:"category"`
	Description        string `json:"description,omitempty"`
	Amount             string `json:"amount"`
	PaymentMethod      string `json:"paymentMethod,omitempty"`
	ReferenceID        string `json:"referenceId,omitempty"`
	CreatedBy          string `json:"createdBy,omitempty"`
	AccountsReceivable bool   `json:"accountsReceivable"`
}

func (h *Handler) createEntry(w http.ResponseWriter, r *http.Request) {
	var req createEntryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "amount must be a decimal number")
		return
	}
	day, _ := time.Parse("2006-01-02", req.EntryDate)
	in := EntryInput{
		EntryDate:          day,
		EntryType:          EntryType(req.EntryType),
		Category:           req.Category,
		Description:        req.Description,
		Amount:             amount,
		PaymentMethod:      req.PaymentMethod,
		ReferenceID:        req.ReferenceID,
		CreatedBy:          staff.NameFromContext(r.Context()),
		AccountsReceivable: req.AccountsReceivable,
	}
	entry, err := h.service.Append(r.Context(), in)
	if err != nil {
		h.logger.Warn("append ledger entry", slog.Any("error", err))
		httpx.Problem(w, http.StatusUnprocessableEntity, "Cannot Post Entry", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, toEntryView(entry))
}

func (h *Handler) listEntries(w http.ResponseWriter, r *http.Request) {
	day, err := parseDateParam(r.URL.Query().Get("date"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
		return
	}
	entries, err := h.service.ListByDate(r.Context(), day)
	if err != nil {
		h.logger.Error("list ledger entries", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]entryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, toEntryView(e))
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) totals(w http.ResponseWriter, r *http.Request) {
	day, err := parseDateParam(r.URL.Query().Get("date"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
		return
	}
	totals, err := h.service.TotalsForDate(r.Context(), day)
	if err != nil {
		h.logger.Error("ledger totals", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{
		"income":  totals.Income.String(),
		"expense": totals.Expense.String(),
	})
}

func parseDateParam(raw string) (time.Time, error) {
	if raw == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Parse("2006-01-02", raw)
}

func toEntryView(e Entry) entryView {
	return entryView{
		ID:                 e.ID,
		EntryDate:          e.EntryDate.Format("2006-01-02"),
		EntryType:          string(e.EntryType),
		Category:           e.Category,
		Description:        e.Description,
		Amount:             e.Amount.String(),
		PaymentMethod:      e.PaymentMethod,
		ReferenceID:        e.ReferenceID,
		CreatedBy:          e.CreatedBy,
		AccountsReceivable: e.AccountsReceivable,
	}
}

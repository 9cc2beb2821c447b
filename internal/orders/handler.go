package orders

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/solara-pms/solara/internal/platform/httpx"
	"github.com/solara-pms/solara/internal/staff"
)

type ordersService interface {
	Create(ctx context.Context, in CreateInput) (Order, error)
	Get(ctx context.Context, id int64) (Order, error)
	CreatedOn(ctx context.Context, day time.Time) ([]Order, error)
}

// ReceiptEnqueuer submits receipt generation work to the queue.
type ReceiptEnqueuer interface {
	EnqueueReceipt(ctx context.Context, orderID int64) error
}

// Handler wires HTTP endpoints for food and bar orders.
type Handler struct {
	logger   *slog.Logger
	service  ordersService
	receipts ReceiptEnqueuer
	validate *validator.Validate
}

// NewHandler constructs an orders HTTP handler.
func NewHandler(logger *slog.Logger, service ordersService, receipts ReceiptEnqueuer) *Handler {
	return &Handler{logger: logger, service: service, receipts: receipts, validate: validator.New()}
}

// MountRoutes registers HTTP routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Post("/{id}/receipt", h.generateReceipt)
}

type createOrderRequest struct {
	MenuType    string           `json:"menuType" validate:"required,oneof=RESTAURANT BAR ROOM_SERVICE"`
	RoomNumber  string           `json:"roomNumber"`
	TableNumber string           `json:"tableNumber"`
	TaxRate     string           `json:"taxRate"`
	Items       []orderLineInput `json:"items" validate:"required,min=1,dive"`
}

type orderLineInput struct {
	Name      string `json:"name" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	UnitPrice string `json:"unitPrice" validate:"required"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	taxRate := decimal.Zero
	if req.TaxRate != "" {
		var err error
		taxRate, err = decimal.NewFromString(req.TaxRate)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "taxRate must be a decimal number")
			return
		}
	}
	in := CreateInput{
		MenuType:    MenuType(req.MenuType),
		RoomNumber:  req.RoomNumber,
		TableNumber: req.TableNumber,
		TaxRate:     taxRate,
		CreatedBy:   staff.NameFromContext(r.Context()),
	}
	for _, line := range req.Items {
		price, err := decimal.NewFromString(line.UnitPrice)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unitPrice must be a decimal number")
			return
		}
		in.Items = append(in.Items, Line{Name: line.Name, Quantity: line.Quantity, UnitPrice: price})
	}
	order, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.logger.Warn("create order", slog.Any("error", err))
		httpx.Problem(w, http.StatusUnprocessableEntity, "Cannot Create Order", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, order)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	day := time.Now()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}
	list, err := h.service.CreatedOn(r.Context(), day)
	if err != nil {
		h.logger.Error("list orders", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, list)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		h.logger.Error("get order", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, order)
}

func (h *Handler) generateReceipt(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	if _, err := h.service.Get(r.Context(), id); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		h.logger.Error("load order for receipt", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	if h.receipts == nil {
		httpx.Problem(w, http.StatusServiceUnavailable, "Receipts Unavailable", "receipt queue not configured")
		return
	}
	if err := h.receipts.EnqueueReceipt(r.Context(), id); err != nil {
		h.logger.Error("enqueue receipt", slog.Int64("order_id", id), slog.Any("error", err))
		httpx.Problem(w, http.StatusBadGateway, "Queue Error", "could not enqueue receipt generation")
		return
	}
	httpx.JSON(w, http.StatusAccepted, map[string]string{"status": "queued"})
}

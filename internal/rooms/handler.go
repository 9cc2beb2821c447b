package rooms

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/solara-pms/solara/internal/platform/httpx"
)

type roomsService interface {
	CreateRoom(ctx context.Context, in CreateRoomInput) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	ListStatuses(ctx context.Context) ([]RoomStatus, error)
	UpdateStatus(ctx context.Context, roomNumber string, status HousekeepingStatus, notes string) error
}

// Handler wires HTTP endpoints for rooms and housekeeping.
type Handler struct {
	logger   *slog.Logger
	service  roomsService
	validate *validator.Validate
}

// NewHandler constructs a rooms HTTP handler.
func NewHandler(logger *slog.Logger, service roomsService) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers HTTP routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listRooms)
	r.Post("/", h.createRoom)
	r.Get("/statuses", h.listStatuses)
	r.Put("/statuses/{number}", h.updateStatus)
}

type createRoomRequest struct {
	Number   string `json:"number" validate:"required"`
	Type     string `json:"type" validate:"required"`
	BaseRate string `json:"baseRate" validate:"required"`
}

type updateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=CLEAN DIRTY INSPECTED OUT_OF_ORDER"`
	Notes  string `json:"notes"`
}

func (h *Handler) createRoom(w http.ResponseWriter, r *http.Request) {
	var req createRoomRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	rate, err := decimal.NewFromString(req.BaseRate)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "baseRate must be a decimal number")
		return
	}
	room, err := h.service.CreateRoom(r.Context(), CreateRoomInput{Number: req.Number, Type: req.Type, BaseRate: rate})
	if err != nil {
		if errors.Is(err, ErrDuplicateNumber) {
			httpx.Problem(w, http.StatusConflict, "Duplicate", err.Error())
			return
		}
		h.logger.Warn("create room", slog.Any("error", err))
		httpx.Problem(w, http.StatusUnprocessableEntity, "Cannot Create Room", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, room)
}

func (h *Handler) listRooms(w http.ResponseWriter, r *http.Request) {
	roomsList, err := h.service.ListRooms(r.Context())
	if err != nil {
		h.logger.Error("list rooms", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, roomsList)
}

func (h *Handler) listStatuses(w http.ResponseWriter, r *http.Request) {
	statuses, err := h.service.ListStatuses(r.Context())
	if err != nil {
		h.logger.Error("list room statuses", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, statuses)
}

func (h *Handler) updateStatus(w http.ResponseWriter, r *http.Request) {
	number := chi.URLParam(r, "number")
	var req updateStatusRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	if err := h.service.UpdateStatus(r.Context(), number, HousekeepingStatus(req.Status), req.Notes); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		h.logger.Error("update room status", slog.String("room", number), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

package booking

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
)

type bookingService interface {
	Create(ctx context.Context, in CreateInput) (Booking, error)
	Get(ctx context.Context, id int64) (Booking, error)
	ListByStatus(ctx context.Context, status Status) ([]Booking, error)
	CheckIn(ctx context.Context, id int64) error
	CheckOut(ctx context.Context, id int64) error
	Cancel(ctx context.Context, id int64) error
}

// Handler wires HTTP endpoints for front-desk booking operations.
type Handler struct {
	logger   *slog.Logger
	service  bookingService
	validate *validator.Validate
}

// NewHandler constructs a booking HTTP handler.
func NewHandler(logger *slog.Logger, service bookingService) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers HTTP routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.list)
	r.Post("/", h.create)
	r.Get("/{id}", h.get)
	r.Post("/{id}/check-in", h.checkIn)
	r.Post("/{id}/check-out", h.checkOut)
	r.Post("/{id}/cancel", h.cancel)
}

type createRequest struct {
	GuestName  string        `json:"guestName" validate:"required"`
	GuestEmail string        `json:"guestEmail" validate:"omitempty,email"`
	GuestPhone string        `json:"guestPhone"`
	CheckIn    string        `json:"checkIn" validate:"required,datetime=2006-01-02"`
	CheckOut   string        `json:"checkOut" validate:"required,datetime=2006-01-02"`
	Rooms      []roomRequest `json:"rooms" validate:"required,min=1,dive"`
}

type roomRequest struct {
	RoomNumber  string `json:"roomNumber" validate:"required"`
	NightlyRate string `json:"nightlyRate" validate:"required"`
}

type bookingView struct {
	ID         int64      `json:"id"`
	Reference  string     `json:"reference"`
	GuestName  string     `json:"guestName"`
	GuestEmail string     `json:"guestEmail,omitempty"`
	GuestPhone string     `json:"guestPhone,omitempty"`
	Status     string     `json:"status"`
	CheckIn    string     `json:"checkIn"`
	CheckOut   string     `json:"checkOut"`
	Rooms      []roomView `json:"rooms"`
}

type roomView struct {
	RoomNumber  string `json:"roomNumber"`
	NightlyRate string `json:"nightlyRate"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Invalid JSON", err.Error())
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	in, err := req.toInput()
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	b, err := h.service.Create(r.Context(), in)
	if err != nil {
		h.logger.Warn("create booking", slog.Any("error", err))
		httpx.Problem(w, http.StatusUnprocessableEntity, "Cannot Create Booking", err.Error())
		return
	}
	httpx.JSON(w, http.StatusCreated, toBookingView(b))
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	status := Status(r.URL.Query().Get("status"))
	if status == "" {
		status = StatusCheckedIn
	}
	switch status {
	case StatusConfirmed, StatusCheckedIn, StatusCheckedOut, StatusCancelled:
	default:
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "unknown status")
		return
	}
	bookings, err := h.service.ListByStatus(r.Context(), status)
	if err != nil {
		h.logger.Error("list bookings", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	views := make([]bookingView, 0, len(bookings))
	for _, b := range bookings {
		views = append(views, toBookingView(b))
	}
	httpx.JSON(w, http.StatusOK, views)
}

func (h *Handler) get(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	b, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", err.Error())
			return
		}
		h.logger.Error("get booking", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toBookingView(b))
}

func (h *Handler) checkIn(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.CheckIn)
}

func (h *Handler) checkOut(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.CheckOut)
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Cancel)
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(context.Context, int64) error) {
	id, err := idParam(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid id")
		return
	}
	if err := fn(r.Context(), id); err != nil {
		if errors.Is(err, ErrInvalidTransition) {
			httpx.Problem(w, http.StatusConflict, "Conflict", err.Error())
			return
		}
		h.logger.Error("booking transition", slog.Int64("id", id), slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (req createRequest) toInput() (CreateInput, error) {
	checkIn, err := time.Parse("2006-01-02", req.CheckIn)
	if err != nil {
		return CreateInput{}, err
	}
	checkOut, err := time.Parse("2006-01-02", req.CheckOut)
	if err != nil {
		return CreateInput{}, err
	}
	in := CreateInput{
		GuestName:  req.GuestName,
		GuestEmail: req.GuestEmail,
		GuestPhone: req.GuestPhone,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
	}
	for _, room := range req.Rooms {
		rate, err := decimal.NewFromString(room.NightlyRate)
		if err != nil {
			return CreateInput{}, errors.New("nightly rate must be a decimal number")
		}
		in.Rooms = append(in.Rooms, RoomInput{RoomNumber: room.RoomNumber, NightlyRate: rate})
	}
	return in, nil
}

func idParam(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func toBookingView(b Booking) bookingView {
	view := bookingView{
		ID:         b.ID,
		Reference:  b.Reference,
		GuestName:  b.GuestName,
		GuestEmail: b.GuestEmail,
		GuestPhone: b.GuestPhone,
		Status:     string(b.Status),
		CheckIn:    b.CheckIn.Format("2006-01-02"),
		CheckOut:   b.CheckOut.Format("2006-01-02"),
		Rooms:      make([]roomView, 0, len(b.Rooms)),
	}
	for _, room := range b.Rooms {
		view.Rooms = append(view.Rooms, roomView{RoomNumber: room.RoomNumber, NightlyRate: room.NightlyRate.String()})
	}
	return view
}

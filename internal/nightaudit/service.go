package nightaudit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/solara-pms/solara/internal/booking"
	"github.com/solara-pms/solara/internal/businessday"
	"github.com/solara-pms/solara/internal/ledger"
	"github.com/solara-pms/solara/internal/mail"
	"github.com/solara-pms/solara/internal/orders"
	"github.com/solara-pms/solara/internal/rooms"
	"github.com/solara-pms/solara/internal/shared"
)

// BookingPort exposes the booking operations the audit needs.
type BookingPort interface {
	ListByStatus(ctx context.Context, status booking.Status) ([]booking.Booking, error)
	CountArrivals(ctx context.Context, day time.Time) (int, error)
	CountDepartures(ctx context.Context, day time.Time) (int, error)
	CountCheckedOutOn(ctx context.Context, day time.Time) (int, error)
}

// LedgerPort exposes the ledger operations the audit needs.
type LedgerPort interface {
	AppendBatch(ctx context.Context, inputs []ledger.EntryInput) ([]ledger.Entry, error)
	TotalsForDate(ctx context.Context, day time.Time) (ledger.DayTotals, error)
}

// OrdersPort exposes the order snapshot used on the report.
type OrdersPort interface {
	CreatedOn(ctx context.Context, day time.Time) ([]orders.Order, error)
}

// RoomsPort exposes the housekeeping snapshot used on the report.
type RoomsPort interface {
	ListStatuses(ctx context.Context) ([]rooms.RoomStatus, error)
}

// BusinessDayPort exposes the business date operations the audit needs.
type BusinessDayPort interface {
	CurrentOrInit(ctx context.Context) (businessday.BusinessDay, error)
	Roll(ctx context.Context, day businessday.BusinessDay) error
}

// RunRepository persists audit runs.
type RunRepository interface {
	Create(ctx context.Context, run AuditRun) (AuditRun, error)
	UpdateProgress(ctx context.Context, id int64, steps Steps, summary Summary) error
	Finalize(ctx context.Context, run AuditRun) error
	Get(ctx context.Context, id int64) (AuditRun, error)
	Recent(ctx context.Context, limit int) ([]AuditRun, error)
}

// LockPort acquires the per-date advisory lock.
type LockPort interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error)
}

// IdempotencyPort guards each business date against double posting.
type IdempotencyPort interface {
	CheckAndInsert(ctx context.Context, key, module string) error
	Delete(ctx context.Context, key string) error
}

// Mailer delivers the rendered report.
type Mailer interface {
	Send(msg mail.Message) error
}

// ActivityRecorder appends entries to the activity log.
type ActivityRecorder interface {
	Record(ctx context.Context, entry shared.ActivityEntry) error
}

// Service runs the night audit.
type Service struct {
	logger      *slog.Logger
	runs        RunRepository
	days        BusinessDayPort
	bookings    BookingPort
	entries     LedgerPort
	orders      OrdersPort
	rooms       RoomsPort
	locks       LockPort
	idempotency IdempotencyPort
	renderer    *Renderer
	mailer      Mailer
	activity    ActivityRecorder

	reportRecipient string
	lockTTL         time.Duration
	now             func() time.Time
}

// ServiceConfig collects the service dependencies.
type ServiceConfig struct {
	Logger          *slog.Logger
	Runs            RunRepository
	Days            BusinessDayPort
	Bookings        BookingPort
	Ledger          LedgerPort
	Orders          OrdersPort
	Rooms           RoomsPort
	Locks           LockPort
	Idempotency     IdempotencyPort
	Renderer        *Renderer
	Mailer          Mailer
	Activity        ActivityRecorder
	ReportRecipient string
	LockTTL         time.Duration
}

// NewService constructs the night audit service.
func NewService(cfg ServiceConfig) *Service {
	ttl := cfg.LockTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Service{
		logger:          cfg.Logger,
		runs:            cfg.Runs,
		days:            cfg.Days,
		bookings:        cfg.Bookings,
		entries:         cfg.Ledger,
		orders:          cfg.Orders,
		rooms:           cfg.Rooms,
		locks:           cfg.Locks,
		idempotency:     cfg.Idempotency,
		renderer:        cfg.Renderer,
		mailer:          cfg.Mailer,
		activity:        cfg.Activity,
		reportRecipient: cfg.ReportRecipient,
		lockTTL:         ttl,
		now:             time.Now,
	}
}

// WithNow overrides the clock, for tests.
func (s *Service) WithNow(now func() time.Time) {
	s.now = now
}

// BusinessDay returns the current business day record.
func (s *Service) BusinessDay(ctx context.Context) (businessday.BusinessDay, error) {
	return s.days.CurrentOrInit(ctx)
}

// Get loads a single audit run.
func (s *Service) Get(ctx context.Context, id int64) (AuditRun, error) {
	return s.runs.Get(ctx, id)
}

// Recent lists recent audit runs.
func (s *Service) Recent(ctx context.Context, limit int) ([]AuditRun, error) {
	return s.runs.Recent(ctx, limit)
}

// Run executes the night audit for the current business date. Exactly one
// run can close a given date: a Redis lock rejects concurrent attempts and
// an idempotency key rejects repeats after a successful close. Report
// rendering or delivery failures degrade the run to a warning; everything
// before the business date roll is fatal.
func (s *Service) Run(ctx context.Context, staffID int64, staffName string) (RunResult, error) {
	if staffName == "" {
		staffName = "system"
	}

	day, err := s.days.CurrentOrInit(ctx)
	if err != nil {
		return RunResult{}, fmt.Errorf("nightaudit: load business day: %w", err)
	}
	date := day.DateString()
	logger := s.logger.With(slog.String("business_date", date))

	release, err := s.locks.Acquire(ctx, shared.AuditLockKey(date), s.lockTTL)
	if err != nil {
		if errors.Is(err, shared.ErrLockHeld) {
			return RunResult{}, ErrAuditInProgress
		}
		return RunResult{}, fmt.Errorf("nightaudit: acquire lock: %w", err)
	}
	defer release()

	idemKey := shared.AuditKey(date)
	if err := s.idempotency.CheckAndInsert(ctx, idemKey, "nightaudit"); err != nil {
		if errors.Is(err, shared.ErrIdempotencyConflict) {
			return RunResult{}, ErrAlreadyAudited
		}
		return RunResult{}, fmt.Errorf("nightaudit: idempotency check: %w", err)
	}

	run, err := s.runs.Create(ctx, AuditRun{
		BusinessDate: day.Date,
		Status:       StatusInProgress,
		RunByID:      staffID,
		RunBy:        staffName,
		StartedAt:    s.now().UTC(),
	})
	if err != nil {
		s.releaseIdempotency(ctx, idemKey)
		return RunResult{}, fmt.Errorf("nightaudit: create run: %w", err)
	}
	logger.Info("night audit started", slog.Int64("run_id", run.ID), slog.String("run_by", staffName))

	checkedIn, err := s.bookings.ListByStatus(ctx, booking.StatusCheckedIn)
	if err != nil {
		return s.fail(ctx, run, idemKey, fmt.Errorf("list checked-in bookings: %w", err))
	}

	charges, inputs := buildRoomCharges(day.Date, staffName, checkedIn)
	if len(inputs) > 0 {
		posted, err := s.entries.AppendBatch(ctx, inputs)
		if err != nil {
			return s.fail(ctx, run, idemKey, fmt.Errorf("post room charges: %w", err))
		}
		run.Summary.EntriesPosted = len(posted)
	}
	run.Steps.RoomChargesPosted = true
	run.Summary.OccupiedRooms = len(checkedIn)
	run.Summary.TotalRevenue = chargeTotal(inputs)

	var (
		totals       ledger.DayTotals
		arrivals     int
		departures   int
		checkedOut   int
		dayOrders    []orders.Order
		roomStatuses []rooms.RoomStatus
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		totals, err = s.entries.TotalsForDate(gctx, day.Date)
		return err
	})
	nextDate := day.Date.AddDate(0, 0, 1)
	g.Go(func() error {
		var err error
		arrivals, err = s.bookings.CountArrivals(gctx, nextDate)
		return err
	})
	g.Go(func() error {
		var err error
		departures, err = s.bookings.CountDepartures(gctx, nextDate)
		return err
	})
	g.Go(func() error {
		var err error
		checkedOut, err = s.bookings.CountCheckedOutOn(gctx, day.Date)
		return err
	})
	g.Go(func() error {
		var err error
		dayOrders, err = s.orders.CreatedOn(gctx, day.Date)
		return err
	})
	g.Go(func() error {
		var err error
		roomStatuses, err = s.rooms.ListStatuses(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return s.fail(ctx, run, idemKey, fmt.Errorf("collect day snapshot: %w", err))
	}
	run.Summary.Arrivals = arrivals
	run.Summary.Departures = departures
	run.Summary.CheckedOut = checkedOut

	if err := s.runs.UpdateProgress(ctx, run.ID, run.Steps, run.Summary); err != nil {
		logger.Warn("persist run progress", slog.Any("error", err))
	}

	if err := s.days.Roll(ctx, day); err != nil {
		return s.fail(ctx, run, idemKey, fmt.Errorf("roll business date: %w", err))
	}
	run.Steps.BusinessDateRolled = true

	result := RunResult{Outcome: OutcomeOK}
	if warn := s.deliverReport(ctx, &run, day, totals, charges, dayOrders, roomStatuses); warn != "" {
		result.Outcome = OutcomeWarning
		result.Warnings = append(result.Warnings, warn)
		run.ErrorMessage = warn
	}

	run.Status = StatusCompleted
	if result.Outcome == OutcomeWarning {
		run.Status = StatusCompletedWithWarnings
	}
	finished := s.now().UTC()
	run.FinishedAt = &finished
	if err := s.runs.Finalize(ctx, run); err != nil {
		return RunResult{Run: run}, fmt.Errorf("nightaudit: finalize run: %w", err)
	}
	s.record(ctx, staffID, run)
	logger.Info("night audit finished",
		slog.Int64("run_id", run.ID),
		slog.String("status", string(run.Status)),
		slog.String("total_revenue", run.Summary.TotalRevenue.StringFixed(2)))

	result.Run = run
	return result, nil
}

// deliverReport renders and emails the audit report. It returns a warning
// message instead of an error because the close itself already succeeded.
func (s *Service) deliverReport(ctx context.Context, run *AuditRun, day businessday.BusinessDay, totals ledger.DayTotals, charges []ChargeLine, dayOrders []orders.Order, roomStatuses []rooms.RoomStatus) string {
	if s.renderer == nil || s.mailer == nil || s.reportRecipient == "" {
		return "report delivery not configured"
	}
	data := ReportData{
		BusinessDate:     day.DateString(),
		NextBusinessDate: day.Next().Format("2006-01-02"),
		RunID:            run.ID,
		RunBy:            run.RunBy,
		GeneratedAt:      s.now().UTC(),
		Summary:          run.Summary,
		Totals:           totals,
		RoomCharges:      charges,
		Orders:           OrderRows(dayOrders),
		RoomStatuses:     RoomStatusRows(roomStatuses),
	}
	pdf, err := s.renderer.Render(ctx, data)
	if err != nil {
		s.logger.Warn("render audit report", slog.Int64("run_id", run.ID), slog.Any("error", err))
		return fmt.Sprintf("report generation failed: %v", err)
	}
	run.Steps.ReportGenerated = true

	msg := mail.Message{
		To:      []string{s.reportRecipient},
		Subject: fmt.Sprintf("Night Audit Report %s", data.BusinessDate),
		Body: fmt.Sprintf("<p>The night audit for %s completed. Total revenue %s, %d occupied rooms.</p>",
			data.BusinessDate, run.Summary.TotalRevenue.StringFixed(2), run.Summary.OccupiedRooms),
		Attachments: []mail.Attachment{{
			Filename:    fmt.Sprintf("night-audit-%s.pdf", data.BusinessDate),
			ContentType: "application/pdf",
			Data:        pdf,
		}},
	}
	if err := s.mailer.Send(msg); err != nil {
		s.logger.Warn("email audit report", slog.Int64("run_id", run.ID), slog.Any("error", err))
		return fmt.Sprintf("report email failed: %v", err)
	}
	run.Steps.EmailSent = true
	return ""
}

// fail finalises the run as FAILED and releases the idempotency key so a
// corrected rerun can close the date.
func (s *Service) fail(ctx context.Context, run AuditRun, idemKey string, cause error) (RunResult, error) {
	run.Status = StatusFailed
	run.ErrorMessage = cause.Error()
	finished := s.now().UTC()
	run.FinishedAt = &finished
	if err := s.runs.Finalize(ctx, run); err != nil {
		s.logger.Error("finalize failed run", slog.Int64("run_id", run.ID), slog.Any("error", err))
	}
	s.releaseIdempotency(ctx, idemKey)
	s.logger.Error("night audit failed", slog.Int64("run_id", run.ID), slog.Any("error", cause))
	return RunResult{Run: run}, fmt.Errorf("nightaudit: %w", cause)
}

func (s *Service) releaseIdempotency(ctx context.Context, key string) {
	if err := s.idempotency.Delete(ctx, key); err != nil {
		s.logger.Warn("release idempotency key", slog.String("key", key), slog.Any("error", err))
	}
}

func (s *Service) record(ctx context.Context, staffID int64, run AuditRun) {
	if s.activity == nil {
		return
	}
	err := s.activity.Record(ctx, shared.ActivityEntry{
		ActorID:  staffID,
		Action:   "nightaudit.run",
		Entity:   "night_audit_run",
		EntityID: fmt.Sprintf("%d", run.ID),
		Meta: map[string]any{
			"business_date": run.BusinessDate.Format("2006-01-02"),
			"status":        string(run.Status),
			"total_revenue": run.Summary.TotalRevenue.StringFixed(2),
		},
		At: s.now().UTC(),
	})
	if err != nil {
		s.logger.Warn("record audit activity", slog.Any("error", err))
	}
}

// buildRoomCharges produces one income entry per checked-in booking with a
// positive nightly total, plus the matching report lines.
func buildRoomCharges(businessDate time.Time, createdBy string, checkedIn []booking.Booking) ([]ChargeLine, []ledger.EntryInput) {
	charges := make([]ChargeLine, 0, len(checkedIn))
	inputs := make([]ledger.EntryInput, 0, len(checkedIn))
	for _, b := range checkedIn {
		total := b.NightlyTotal()
		if !total.IsPositive() {
			continue
		}
		numbers := make([]string, 0, len(b.Rooms))
		for _, room := range b.Rooms {
			numbers = append(numbers, room.RoomNumber)
		}
		charges = append(charges, ChargeLine{
			Reference: b.Reference,
			GuestName: b.GuestName,
			Rooms:     strings.Join(numbers, ", "),
			Amount:    total,
		})
		inputs = append(inputs, ledger.EntryInput{
			EntryDate:     businessDate,
			EntryType:     ledger.EntryIncome,
			Category:      ledger.CategoryRoomCharge,
			Description:   fmt.Sprintf("Room charge %s (%s)", b.Reference, strings.Join(numbers, ", ")),
			Amount:        total,
			PaymentMethod: "ROOM_ACCOUNT",
			ReferenceID:   b.Reference,
			CreatedBy:     createdBy,
		})
	}
	return charges, inputs
}

func chargeTotal(inputs []ledger.EntryInput) decimal.Decimal {
	total := decimal.Zero
	for _, in := range inputs {
		total = total.Add(in.Amount)
	}
	return total
}

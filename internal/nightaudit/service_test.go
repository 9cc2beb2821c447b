package nightaudit

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solara-pms/solara/internal/booking"
	"github.com/solara-pms/solara/internal/businessday"
	"github.com/solara-pms/solara/internal/ledger"
	"github.com/solara-pms/solara/internal/mail"
	"github.com/solara-pms/solara/internal/orders"
	"github.com/solara-pms/solara/internal/rooms"
	"github.com/solara-pms/solara/internal/shared"
)

// ============================================================================
// FAKES
// ============================================================================

type fakeBookings struct {
	checkedIn     []booking.Booking
	arrivals      int
	departures    int
	checkedOut    int
	listErr       error
	arrivalsDay   time.Time
	departuresDay time.Time
	checkedOutDay time.Time
}

func (f *fakeBookings) ListByStatus(ctx context.Context, status booking.Status) ([]booking.Booking, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	if status != booking.StatusCheckedIn {
		return nil, nil
	}
	return f.checkedIn, nil
}

func (f *fakeBookings) CountArrivals(ctx context.Context, day time.Time) (int, error) {
	f.arrivalsDay = day
	return f.arrivals, nil
}

func (f *fakeBookings) CountDepartures(ctx context.Context, day time.Time) (int, error) {
	f.departuresDay = day
	return f.departures, nil
}

func (f *fakeBookings) CountCheckedOutOn(ctx context.Context, day time.Time) (int, error) {
	f.checkedOutDay = day
	return f.checkedOut, nil
}

type fakeLedger struct {
	batches     [][]ledger.EntryInput
	batchErr    error
	nextID      int64
	priorIncome decimal.Decimal
}

func (f *fakeLedger) AppendBatch(ctx context.Context, inputs []ledger.EntryInput) ([]ledger.Entry, error) {
	if f.batchErr != nil {
		return nil, f.batchErr
	}
	f.batches = append(f.batches, inputs)
	entries := make([]ledger.Entry, 0, len(inputs))
	for _, in := range inputs {
		f.nextID++
		entries = append(entries, ledger.Entry{
			ID:        f.nextID,
			EntryDate: in.EntryDate,
			EntryType: in.EntryType,
			Category:  in.Category,
			Amount:    in.Amount,
		})
	}
	return entries, nil
}

func (f *fakeLedger) TotalsForDate(ctx context.Context, day time.Time) (ledger.DayTotals, error) {
	income := f.priorIncome
	for _, batch := range f.batches {
		for _, in := range batch {
			if in.EntryType == ledger.EntryIncome && in.EntryDate.Equal(day) {
				income = income.Add(in.Amount)
			}
		}
	}
	return ledger.DayTotals{Income: income, Expense: decimal.Zero}, nil
}

type fakeOrders struct {
	orders []orders.Order
}

func (f *fakeOrders) CreatedOn(ctx context.Context, day time.Time) ([]orders.Order, error) {
	return f.orders, nil
}

type fakeRooms struct {
	statuses []rooms.RoomStatus
}

func (f *fakeRooms) ListStatuses(ctx context.Context) ([]rooms.RoomStatus, error) {
	return f.statuses, nil
}

type fakeDays struct {
	day     businessday.BusinessDay
	rolled  bool
	rollErr error
}

func (f *fakeDays) CurrentOrInit(ctx context.Context) (businessday.BusinessDay, error) {
	return f.day, nil
}

func (f *fakeDays) Roll(ctx context.Context, day businessday.BusinessDay) error {
	if f.rollErr != nil {
		return f.rollErr
	}
	f.rolled = true
	audited := f.day.Date
	f.day.Date = f.day.Next()
	f.day.LastAuditDate = &audited
	f.day.Seq++
	return nil
}

type fakeRuns struct {
	nextID int64
	runs   map[int64]AuditRun
}

func newFakeRuns() *fakeRuns {
	return &fakeRuns{runs: map[int64]AuditRun{}}
}

func (f *fakeRuns) Create(ctx context.Context, run AuditRun) (AuditRun, error) {
	f.nextID++
	run.ID = f.nextID
	f.runs[run.ID] = run
	return run, nil
}

func (f *fakeRuns) UpdateProgress(ctx context.Context, id int64, steps Steps, summary Summary) error {
	run := f.runs[id]
	run.Steps = steps
	run.Summary = summary
	f.runs[id] = run
	return nil
}

func (f *fakeRuns) Finalize(ctx context.Context, run AuditRun) error {
	f.runs[run.ID] = run
	return nil
}

func (f *fakeRuns) Get(ctx context.Context, id int64) (AuditRun, error) {
	run, ok := f.runs[id]
	if !ok {
		return AuditRun{}, ErrRunNotFound
	}
	return run, nil
}

func (f *fakeRuns) Recent(ctx context.Context, limit int) ([]AuditRun, error) {
	out := make([]AuditRun, 0, len(f.runs))
	for _, run := range f.runs {
		out = append(out, run)
	}
	return out, nil
}

type fakeLocks struct {
	held     bool
	acquired []string
}

func (f *fakeLocks) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	if f.held {
		return nil, shared.ErrLockHeld
	}
	f.acquired = append(f.acquired, key)
	return func() {}, nil
}

type fakeIdempotency struct {
	keys     map[string]bool
	conflict bool
}

func newFakeIdempotency() *fakeIdempotency {
	return &fakeIdempotency{keys: map[string]bool{}}
}

func (f *fakeIdempotency) CheckAndInsert(ctx context.Context, key, module string) error {
	if f.conflict || f.keys[key] {
		return shared.ErrIdempotencyConflict
	}
	f.keys[key] = true
	return nil
}

func (f *fakeIdempotency) Delete(ctx context.Context, key string) error {
	delete(f.keys, key)
	return nil
}

type fakeMailer struct {
	sent []mail.Message
	err  error
}

func (f *fakeMailer) Send(msg mail.Message) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, msg)
	return nil
}

type fakeActivity struct {
	entries []shared.ActivityEntry
}

func (f *fakeActivity) Record(ctx context.Context, entry shared.ActivityEntry) error {
	f.entries = append(f.entries, entry)
	return nil
}

type stubPDF struct {
	err error
}

func (s stubPDF) RenderHTML(ctx context.Context, html string) ([]byte, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []byte("%PDF-1.4 stub"), nil
}

// ============================================================================
// HARNESS
// ============================================================================

type harness struct {
	service     *Service
	bookings    *fakeBookings
	entries     *fakeLedger
	days        *fakeDays
	runs        *fakeRuns
	locks       *fakeLocks
	idempotency *fakeIdempotency
	mailer      *fakeMailer
	activity    *fakeActivity
}

func newHarness(t *testing.T, pdfErr error) *harness {
	t.Helper()
	h := &harness{
		bookings:    &fakeBookings{},
		entries:     &fakeLedger{},
		days: &fakeDays{day: businessday.BusinessDay{
			Date:   time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
			Status: businessday.StatusOpen,
			Seq:    3,
		}},
		runs:        newFakeRuns(),
		locks:       &fakeLocks{},
		idempotency: newFakeIdempotency(),
		mailer:      &fakeMailer{},
		activity:    &fakeActivity{},
	}
	renderer, err := NewRenderer(stubPDF{err: pdfErr})
	require.NoError(t, err)
	h.service = NewService(ServiceConfig{
		Logger:          slog.New(slog.NewTextHandler(io.Discard, nil)),
		Runs:            h.runs,
		Days:            h.days,
		Bookings:        h.bookings,
		Ledger:          h.entries,
		Orders:          &fakeOrders{},
		Rooms:           &fakeRooms{},
		Locks:           h.locks,
		Idempotency:     h.idempotency,
		Renderer:        renderer,
		Mailer:          h.mailer,
		Activity:        h.activity,
		ReportRecipient: "reservations@example.com",
		LockTTL:         time.Minute,
	})
	return h
}

func checkedInBooking(ref string, rates ...string) booking.Booking {
	b := booking.Booking{
		Reference: ref,
		GuestName: "Guest " + ref,
		Status:    booking.StatusCheckedIn,
	}
	for i, rate := range rates {
		b.Rooms = append(b.Rooms, booking.Room{
			RoomNumber:  string(rune('1'+i)) + "01",
			NightlyRate: decimal.RequireFromString(rate),
		})
	}
	return b
}

// ============================================================================
// TESTS
// ============================================================================

func TestRunPostsRoomChargesAndRollsDate(t *testing.T) {
	h := newHarness(t, nil)
	h.bookings.checkedIn = []booking.Booking{checkedInBooking("BK-A1", "100.00")}
	h.bookings.arrivals = 2
	h.bookings.departures = 1
	h.bookings.checkedOut = 1

	result, err := h.service.Run(context.Background(), 7, "Night Auditor")
	require.NoError(t, err)

	assert.Equal(t, OutcomeOK, result.Outcome)
	assert.Empty(t, result.Warnings)
	assert.Equal(t, StatusCompleted, result.Run.Status)
	assert.True(t, result.Run.Steps.RoomChargesPosted)
	assert.True(t, result.Run.Steps.BusinessDateRolled)
	assert.True(t, result.Run.Steps.ReportGenerated)
	assert.True(t, result.Run.Steps.EmailSent)

	require.Len(t, h.entries.batches, 1)
	require.Len(t, h.entries.batches[0], 1)
	entry := h.entries.batches[0][0]
	assert.Equal(t, ledger.EntryIncome, entry.EntryType)
	assert.Equal(t, ledger.CategoryRoomCharge, entry.Category)
	assert.Equal(t, "BK-A1", entry.ReferenceID)
	assert.True(t, entry.Amount.Equal(decimal.RequireFromString("100.00")))
	assert.Equal(t, "Night Auditor", entry.CreatedBy)

	assert.True(t, result.Run.Summary.TotalRevenue.Equal(decimal.RequireFromString("100.00")))
	assert.Equal(t, 1, result.Run.Summary.OccupiedRooms)
	assert.Equal(t, 2, result.Run.Summary.Arrivals)
	assert.Equal(t, 1, result.Run.Summary.Departures)
	assert.Equal(t, 1, result.Run.Summary.CheckedOut)
	assert.Equal(t, "2024-03-02", h.bookings.arrivalsDay.Format("2006-01-02"))
	assert.Equal(t, "2024-03-02", h.bookings.departuresDay.Format("2006-01-02"))
	assert.Equal(t, "2024-03-01", h.bookings.checkedOutDay.Format("2006-01-02"))
	assert.Equal(t, 1, result.Run.Summary.EntriesPosted)

	assert.True(t, h.days.rolled)
	assert.Equal(t, "2024-03-02", h.days.day.DateString())
	require.NotNil(t, h.days.day.LastAuditDate)
	assert.Equal(t, "2024-03-01", h.days.day.LastAuditDate.Format("2006-01-02"))

	require.Len(t, h.mailer.sent, 1)
	assert.Contains(t, h.mailer.sent[0].Subject, "2024-03-01")
	require.Len(t, h.mailer.sent[0].Attachments, 1)
	assert.Equal(t, "application/pdf", h.mailer.sent[0].Attachments[0].ContentType)

	require.Len(t, h.activity.entries, 1)
	assert.Equal(t, "nightaudit.run", h.activity.entries[0].Action)
}

func TestRunMultiRoomBookingPostsSingleEntry(t *testing.T) {
	h := newHarness(t, nil)
	h.bookings.checkedIn = []booking.Booking{checkedInBooking("BK-B2", "100.00", "140.00")}

	result, err := h.service.Run(context.Background(), 0, "")
	require.NoError(t, err)

	require.Len(t, h.entries.batches, 1)
	require.Len(t, h.entries.batches[0], 1)
	assert.True(t, h.entries.batches[0][0].Amount.Equal(decimal.RequireFromString("240.00")))
	assert.Equal(t, 1, result.Run.Summary.OccupiedRooms)
	assert.Equal(t, "system", result.Run.RunBy)
}

func TestRunCountsBookingsNotRooms(t *testing.T) {
	h := newHarness(t, nil)
	h.bookings.checkedIn = []booking.Booking{
		checkedInBooking("BK-F6", "100.00", "140.00"),
		checkedInBooking("BK-G7", "95.00"),
	}

	result, err := h.service.Run(context.Background(), 1, "Auditor")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Run.Summary.OccupiedRooms)
}

func TestRunRevenueExcludesUnrelatedIncome(t *testing.T) {
	h := newHarness(t, nil)
	h.bookings.checkedIn = []booking.Booking{checkedInBooking("BK-H8", "100.00")}
	h.entries.priorIncome = decimal.RequireFromString("55.00")

	result, err := h.service.Run(context.Background(), 1, "Auditor")
	require.NoError(t, err)

	assert.True(t, result.Run.Summary.TotalRevenue.Equal(decimal.RequireFromString("100.00")),
		"summary revenue is the posted room charges, got %s", result.Run.Summary.TotalRevenue)
}

func TestRunSkipsZeroRateBookings(t *testing.T) {
	h := newHarness(t, nil)
	h.bookings.checkedIn = []booking.Booking{
		checkedInBooking("BK-C3", "0.00"),
		checkedInBooking("BK-D4", "95.00"),
	}

	result, err := h.service.Run(context.Background(), 1, "Auditor")
	require.NoError(t, err)

	require.Len(t, h.entries.batches, 1)
	require.Len(t, h.entries.batches[0], 1)
	assert.Equal(t, "BK-D4", h.entries.batches[0][0].ReferenceID)
	assert.Equal(t, 1, result.Run.Summary.EntriesPosted)
}

func TestRunWithNoOccupancyStillRollsDate(t *testing.T) {
	h := newHarness(t, nil)

	result, err := h.service.Run(context.Background(), 1, "Auditor")
	require.NoError(t, err)

	assert.Equal(t, StatusCompleted, result.Run.Status)
	assert.Empty(t, h.entries.batches)
	assert.True(t, result.Run.Summary.TotalRevenue.IsZero())
	assert.Equal(t, 0, result.Run.Summary.EntriesPosted)
	assert.True(t, h.days.rolled)
}

func TestRunReportFailureDegradesToWarning(t *testing.T) {
	h := newHarness(t, errors.New("gotenberg unavailable"))
	h.bookings.checkedIn = []booking.Booking{checkedInBooking("BK-E5", "100.00")}

	result, err := h.service.Run(context.Background(), 1, "Auditor")
	require.NoError(t, err)

	assert.Equal(t, OutcomeWarning, result.Outcome)
	require.Len(t, result.Warnings, 1)
	assert.Contains(t, result.Warnings[0], "report generation failed")
	assert.Equal(t, StatusCompletedWithWarnings, result.Run.Status)
	assert.False(t, result.Run.Steps.ReportGenerated)
	assert.False(t, result.Run.Steps.EmailSent)
	assert.True(t, result.Run.Steps.BusinessDateRolled)
	assert.True(t, h.days.rolled)
	assert.Empty(t, h.mailer.sent)
}

func TestRunEmailFailureDegradesToWarning(t *testing.T) {
	h := newHarness(t, nil)
	h.mailer.err = errors.New("smtp refused")

	result, err := h.service.Run(context.Background(), 1, "Auditor")
	require.NoError(t, err)

	assert.Equal(t, OutcomeWarning, result.Outcome)
	assert.Equal(t, StatusCompletedWithWarnings, result.Run.Status)
	assert.True(t, result.Run.Steps.ReportGenerated)
	assert.False(t, result.Run.Steps.EmailSent)
	assert.True(t, result.Run.Steps.BusinessDateRolled)
}

func TestRunRejectsAlreadyAuditedDate(t *testing.T) {
	h := newHarness(t, nil)
	h.idempotency.conflict = true

	_, err := h.service.Run(context.Background(), 1, "Auditor")
	require.ErrorIs(t, err, ErrAlreadyAudited)
	assert.Empty(t, h.runs.runs)
	assert.False(t, h.days.rolled)
}

func TestRunRejectsConcurrentAudit(t *testing.T) {
	h := newHarness(t, nil)
	h.locks.held = true

	_, err := h.service.Run(context.Background(), 1, "Auditor")
	require.ErrorIs(t, err, ErrAuditInProgress)
	assert.Empty(t, h.runs.runs)
}

func TestRunLedgerFailureMarksRunFailed(t *testing.T) {
	h := newHarness(t, nil)
	h.bookings.checkedIn = []booking.Booking{checkedInBooking("BK-F6", "100.00")}
	h.entries.batchErr = errors.New("constraint violation")

	result, err := h.service.Run(context.Background(), 1, "Auditor")
	require.Error(t, err)

	assert.Equal(t, StatusFailed, result.Run.Status)
	assert.Contains(t, result.Run.ErrorMessage, "post room charges")
	assert.False(t, h.days.rolled)

	stored, getErr := h.runs.Get(context.Background(), result.Run.ID)
	require.NoError(t, getErr)
	assert.Equal(t, StatusFailed, stored.Status)
	require.NotNil(t, stored.FinishedAt)

	// A corrected rerun must be able to close the date.
	assert.Empty(t, h.idempotency.keys)
}

func TestRunRollConflictMarksRunFailed(t *testing.T) {
	h := newHarness(t, nil)
	h.days.rollErr = businessday.ErrSeqConflict

	result, err := h.service.Run(context.Background(), 1, "Auditor")
	require.Error(t, err)
	require.ErrorIs(t, err, businessday.ErrSeqConflict)

	assert.Equal(t, StatusFailed, result.Run.Status)
	assert.False(t, result.Run.Steps.BusinessDateRolled)
}

func TestRunSecondCallRejected(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.service.Run(context.Background(), 1, "Auditor")
	require.NoError(t, err)

	// Rewind the calendar so the second attempt targets the same date. The
	// idempotency key must reject the repeat.
	h.days.day.Date = time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err = h.service.Run(context.Background(), 1, "Auditor")
	require.ErrorIs(t, err, ErrAlreadyAudited)
}

func TestRunUsesPerDateLockKey(t *testing.T) {
	h := newHarness(t, nil)

	_, err := h.service.Run(context.Background(), 1, "Auditor")
	require.NoError(t, err)

	require.Len(t, h.locks.acquired, 1)
	assert.Equal(t, shared.AuditLockKey("2024-03-01"), h.locks.acquired[0])
}

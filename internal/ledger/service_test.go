package ledger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/solara-pms/solara/internal/shared"
)

type mockRepository struct {
	entries  []Entry
	nextID   int64
	batchErr error
}

func (m *mockRepository) Append(ctx context.Context, in EntryInput) (Entry, error) {
	m.nextID++
	entry := Entry{
		ID:        m.nextID,
		EntryDate: in.EntryDate,
		EntryType: in.EntryType,
		Category:  in.Category,
		Amount:    in.Amount,
		CreatedAt: time.Now(),
	}
	m.entries = append(m.entries, entry)
	return entry, nil
}

func (m *mockRepository) AppendBatch(ctx context.Context, inputs []EntryInput) ([]Entry, error) {
	if m.batchErr != nil {
		return nil, m.batchErr
	}
	out := make([]Entry, 0, len(inputs))
	for _, in := range inputs {
		entry, _ := m.Append(ctx, in)
		out = append(out, entry)
	}
	return out, nil
}

func (m *mockRepository) ListByDate(ctx context.Context, day time.Time) ([]Entry, error) {
	out := []Entry{}
	for _, e := range m.entries {
		if e.EntryDate.Equal(day) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (m *mockRepository) TotalsForDate(ctx context.Context, day time.Time) (DayTotals, error) {
	totals := DayTotals{Income: decimal.Zero, Expense: decimal.Zero}
	for _, e := range m.entries {
		if !e.EntryDate.Equal(day) {
			continue
		}
		if e.EntryType == EntryIncome {
			totals.Income = totals.Income.Add(e.Amount)
		} else {
			totals.Expense = totals.Expense.Add(e.Amount)
		}
	}
	return totals, nil
}

type recorderSpy struct {
	entries []shared.ActivityEntry
}

func (r *recorderSpy) Record(ctx context.Context, entry shared.ActivityEntry) error {
	r.entries = append(r.entries, entry)
	return nil
}

func validInput(amount string) EntryInput {
	return EntryInput{
		EntryDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
		EntryType: EntryIncome,
		Category:  CategoryRoomCharge,
		Amount:    decimal.RequireFromString(amount),
		CreatedBy: "auditor",
	}
}

func TestAppendRecordsActivity(t *testing.T) {
	repo := &mockRepository{}
	spy := &recorderSpy{}
	svc := NewService(repo, spy)

	entry, err := svc.Append(context.Background(), validInput("120.50"))
	require.NoError(t, err)

	assert.Equal(t, int64(1), entry.ID)
	require.Len(t, spy.entries, 1)
	assert.Equal(t, "ledger.append", spy.entries[0].Action)
	assert.Equal(t, "1", spy.entries[0].EntityID)
}

func TestAppendRejectsInvalidInput(t *testing.T) {
	svc := NewService(&mockRepository{}, nil)

	cases := []struct {
		name   string
		mutate func(*EntryInput)
		want   error
	}{
		{"zero amount", func(in *EntryInput) { in.Amount = decimal.Zero }, ErrNonPositiveAmount},
		{"negative amount", func(in *EntryInput) { in.Amount = decimal.RequireFromString("-5") }, ErrNonPositiveAmount},
		{"bad type", func(in *EntryInput) { in.EntryType = "TRANSFER" }, ErrInvalidEntryType},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			in := validInput("10.00")
			tc.mutate(&in)
			_, err := svc.Append(context.Background(), in)
			require.ErrorIs(t, err, tc.want)
		})
	}
}

func TestAppendBatchValidatesBeforePosting(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo, nil)

	bad := validInput("10.00")
	bad.Amount = decimal.Zero
	_, err := svc.AppendBatch(context.Background(), []EntryInput{validInput("10.00"), bad})
	require.ErrorIs(t, err, ErrNonPositiveAmount)
	assert.Empty(t, repo.entries)
}

func TestTotalsForDateSplitsByType(t *testing.T) {
	repo := &mockRepository{}
	svc := NewService(repo, nil)
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := svc.Append(context.Background(), validInput("100.00"))
	require.NoError(t, err)
	expense := validInput("40.00")
	expense.EntryType = EntryExpense
	expense.Category = CategoryMaintenance
	_, err = svc.Append(context.Background(), expense)
	require.NoError(t, err)

	totals, err := svc.TotalsForDate(context.Background(), day)
	require.NoError(t, err)
	assert.True(t, totals.Income.Equal(decimal.RequireFromString("100.00")))
	assert.True(t, totals.Expense.Equal(decimal.RequireFromString("40.00")))
}

func TestAppendBatchPropagatesRepoError(t *testing.T) {
	repo := &mockRepository{batchErr: errors.New("deadlock")}
	svc := NewService(repo, nil)

	_, err := svc.AppendBatch(context.Background(), []EntryInput{validInput("10.00")})
	require.Error(t, err)
}

package shared

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOccurredAtDefaultsToNow(t *testing.T) {
	entry := ActivityEntry{Action: "booking.create", Entity: "booking", EntityID: "1"}

	got := entry.occurredAt()

	assert.WithinDuration(t, time.Now(), got, 2*time.Second)
	assert.False(t, got.IsZero())
}

func TestOccurredAtKeepsExplicitTimestamp(t *testing.T) {
	at := time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC)
	entry := ActivityEntry{Action: "nightaudit.run", Entity: "audit_run", EntityID: "9", At: at}

	assert.True(t, entry.occurredAt().Equal(at))
}

func TestRecordValidatesEntry(t *testing.T) {
	logger := NewActivityLogger(nil)

	err := logger.Record(context.Background(), ActivityEntry{Entity: "booking", EntityID: "1"})
	require.Error(t, err)

	err = logger.Record(context.Background(), ActivityEntry{Action: "booking.create", EntityID: "1"})
	require.Error(t, err)
}

func TestRecordNilLogger(t *testing.T) {
	var logger *ActivityLogger

	err := logger.Record(context.Background(), ActivityEntry{Action: "a", Entity: "b", EntityID: "c"})
	require.Error(t, err)
}

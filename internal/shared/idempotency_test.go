package shared

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuditKeyFormat(t *testing.T) {
	assert.Equal(t, "nightaudit:2024-03-01", AuditKey("2024-03-01"))
}

func TestCheckAndInsertValidatesArguments(t *testing.T) {
	store := NewIdempotencyStore(nil)

	err := store.CheckAndInsert(context.Background(), "", "nightaudit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "key required")

	err = store.CheckAndInsert(context.Background(), AuditKey("2024-03-01"), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "scope required")
}

func TestNilStoreIsSafe(t *testing.T) {
	var store *IdempotencyStore

	require.Error(t, store.CheckAndInsert(context.Background(), "k", "s"))
	require.NoError(t, store.Delete(context.Background(), "k"))

	pruned, err := store.Cleanup(context.Background(), 0)
	require.NoError(t, err)
	assert.Zero(t, pruned)
}

func TestDeleteRequiresKey(t *testing.T) {
	store := NewIdempotencyStore(nil)

	require.Error(t, store.Delete(context.Background(), ""))
}

package storage

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/groupify/backend/pkg/auth"
)

func TestMemoryBlacklist_InsertAndLookup(t *testing.T) {
	store := NewMemoryBlacklist()
	ctx := context.Background()

	require.NoError(t, store.Insert(ctx, auth.Entry{Token: "tok-1", UserID: "user-1", RevokedAt: time.Now()}))

	entry, err := store.Lookup(ctx, "tok-1")
	require.NoError(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "user-1", entry.UserID)

	miss, err := store.Lookup(ctx, "other")
	require.NoError(t, err)
	assert.Nil(t, miss)
}

func TestMemoryBlacklist_ConcurrentInserts(t *testing.T) {
	store := NewMemoryBlacklist()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, store.Insert(ctx, auth.Entry{Token: "tok-1", UserID: "user-1", RevokedAt: time.Now()}))
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, store.Len())
}

func TestMemoryBlacklist_CancelledContext(t *testing.T) {
	store := NewMemoryBlacklist()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Error(t, store.Insert(ctx, auth.Entry{Token: "tok-1"}))
	_, err := store.Lookup(ctx, "tok-1")
	assert.Error(t, err)
}

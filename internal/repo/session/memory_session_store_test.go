package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkrupp/volunteerlog/internal/domain"
)

func TestMemorySessionStore_PutGetDelete(t *testing.T) {
	t.Parallel()

	store := NewMemorySessionStore()
	ctx := context.Background()

	now := time.Now()
	sess := &domain.Session{
		Token:     "tok-1",
		UserID:    1,
		CreatedAt: now.Unix(),
		ExpiresAt: now.Add(time.Hour).Unix(),
	}

	require.NoError(t, store.Put(ctx, sess))

	got, ok, err := store.Get(ctx, "tok-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, sess, got)

	require.NoError(t, store.Delete(ctx, "tok-1"))

	_, ok, err = store.Get(ctx, "tok-1")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting an unknown token is a no-op.
	require.NoError(t, store.Delete(ctx, "tok-1"))
}

func TestMemorySessionStore_ExpiredSessionsEvicted(t *testing.T) {
	t.Parallel()

	store := NewMemorySessionStore()
	ctx := context.Background()

	created := time.Now()
	store.now = func() time.Time { return created }

	sess := &domain.Session{
		Token:     "tok-2",
		UserID:    2,
		CreatedAt: created.Unix(),
		ExpiresAt: created.Add(time.Hour).Unix(),
	}
	require.NoError(t, store.Put(ctx, sess))

	_, ok, err := store.Get(ctx, "tok-2")
	require.NoError(t, err)
	require.True(t, ok)

	// Jump past expiry.
	store.now = func() time.Time { return created.Add(2 * time.Hour) }

	_, ok, err = store.Get(ctx, "tok-2")
	require.NoError(t, err)
	assert.False(t, ok)

	// The expired entry is gone even if the clock moves back.
	store.now = func() time.Time { return created }

	_, ok, err = store.Get(ctx, "tok-2")
	require.NoError(t, err)
	assert.False(t, ok)
}

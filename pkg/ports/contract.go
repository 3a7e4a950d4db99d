package ports

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/architect/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore implementation
// adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	userID := "contract-user-" + time.Now().Format("20060102150405.000000000")
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("Save and Load", func(t *testing.T) {
		session := domain.NewSession(userID, now)
		require.NoError(t, session.Set(domain.StepPlatform, "RealRender", now))
		require.NoError(t, session.Set(domain.StepInterior, "ModernLoft", now))

		err := store.Save(ctx, userID, session)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, userID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, userID, loaded.UserID)
		assert.Equal(t, "RealRender", loaded.Platform)
		assert.Equal(t, "ModernLoft", loaded.Interior)
		assert.Equal(t, domain.StateAwaitingPhotographer, loaded.Pending())
		assert.True(t, now.Equal(loaded.StartedAt))
	})

	t.Run("Loaded Copy Is Isolated", func(t *testing.T) {
		loaded, err := store.Load(ctx, userID)
		require.NoError(t, err)
		loaded.Platform = "mutated"

		again, err := store.Load(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, "RealRender", again.Platform)
	})

	t.Run("Overwrite", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, userID, domain.NewSession(userID, now)))

		loaded, err := store.Load(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, domain.StateAwaitingPlatform, loaded.Pending())
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+userID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, userID, domain.NewSession(userID, now)))

		err := store.Delete(ctx, userID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, userID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, userID), "Deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := userID + "-1"
		id2 := userID + "-2"
		_ = store.Save(ctx, id1, domain.NewSession(id1, now))
		_ = store.Save(ctx, id2, domain.NewSession(id2, now))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}

// RunHistoryStoreContract runs a suite of tests to verify that a HistoryStore implementation
// adheres to the defined interface contract.
func RunHistoryStoreContract(t *testing.T, store HistoryStore) {
	ctx := context.Background()
	prefix := "contract-user-" + time.Now().Format("20060102150405.000000000")

	t.Run("Empty User", func(t *testing.T) {
		records, err := store.Recent(ctx, prefix+"-empty", 5)
		require.NoError(t, err)
		assert.Empty(t, records)

		records, err = store.All(ctx, prefix+"-empty")
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("Append Assigns ID And Time", func(t *testing.T) {
		user := prefix + "-append"
		before := time.Now().Add(-time.Second)

		rec, err := store.Append(ctx, user, "alice", "Photo of a loft.")
		require.NoError(t, err)
		assert.NotZero(t, rec.ID)
		assert.Equal(t, user, rec.UserID)
		assert.Equal(t, "alice", rec.DisplayName)
		assert.Equal(t, "Photo of a loft.", rec.Prompt)
		assert.True(t, rec.CreatedAt.After(before), "CreatedAt must be assigned at insert")

		records, err := store.Recent(ctx, user, 1)
		require.NoError(t, err)
		require.Len(t, records, 1, "record must be visible right after Append returns")
		assert.Equal(t, rec.ID, records[0].ID)
		assert.Equal(t, rec.Prompt, records[0].Prompt)
	})

	t.Run("Recent Returns Newest First", func(t *testing.T) {
		user := prefix + "-recent"
		var ids []uint64
		for i := 0; i < 7; i++ {
			rec, err := store.Append(ctx, user, "", fmt.Sprintf("prompt %d", i))
			require.NoError(t, err)
			ids = append(ids, rec.ID)
		}
		for i := 1; i < len(ids); i++ {
			assert.Greater(t, ids[i], ids[i-1], "IDs must increase monotonically")
		}

		records, err := store.Recent(ctx, user, 5)
		require.NoError(t, err)
		require.Len(t, records, 5)
		for i, rec := range records {
			assert.Equal(t, fmt.Sprintf("prompt %d", 6-i), rec.Prompt)
			assert.Equal(t, ids[6-i], rec.ID)
		}

		all, err := store.All(ctx, user)
		require.NoError(t, err)
		require.Len(t, all, 7)
		assert.Equal(t, "prompt 6", all[0].Prompt)
		assert.Equal(t, "prompt 0", all[6].Prompt)

		none, err := store.Recent(ctx, user, 0)
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("Users Are Isolated", func(t *testing.T) {
		a, b := prefix+"-a", prefix+"-b"
		_, err := store.Append(ctx, a, "", "for a")
		require.NoError(t, err)

		records, err := store.All(ctx, b)
		require.NoError(t, err)
		assert.Empty(t, records)
	})

	t.Run("Concurrent Appends", func(t *testing.T) {
		var (
			wg  sync.WaitGroup
			mu  sync.Mutex
			ids = make(map[uint64]bool)
		)
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				rec, err := store.Append(ctx, fmt.Sprintf("%s-c%d", prefix, i%3), "", "concurrent")
				if !assert.NoError(t, err) {
					return
				}
				mu.Lock()
				ids[rec.ID] = true
				mu.Unlock()
			}(i)
		}
		wg.Wait()
		assert.Len(t, ids, 8, "IDs must be unique across users")
	})
}

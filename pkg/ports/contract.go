package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/scripter/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunRunStoreContract runs a suite of tests to verify that a RunStore implementation
// adheres to the defined interface contract.
func RunRunStoreContract(t *testing.T, store RunStore) {
	ctx := context.Background()
	runID := "contract-test-run-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		rec := domain.NewRunRecord(runID, "contract")
		rec.Status = domain.RunCompleted
		rec.EndedAt = rec.StartedAt.Add(time.Second)
		rec.Stats.Timers = 3
		rec.Stats.Visited = 42

		err := store.Save(ctx, rec)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, rec.ID, loaded.ID)
		assert.Equal(t, rec.Script, loaded.Script)
		assert.Equal(t, domain.RunCompleted, loaded.Status)
		assert.Equal(t, 3, loaded.Stats.Timers)
		assert.Equal(t, 42, loaded.Stats.Visited)
		assert.True(t, rec.StartedAt.Equal(loaded.StartedAt), "StartedAt should round-trip")
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		rec := domain.NewRunRecord(runID, "contract")
		require.NoError(t, store.Save(ctx, rec))

		rec.Status = domain.RunCanceled
		rec.Error = "canceled by user"
		require.NoError(t, store.Save(ctx, rec))

		loaded, err := store.Load(ctx, runID)
		require.NoError(t, err)
		assert.Equal(t, domain.RunCanceled, loaded.Status)
		assert.Equal(t, "canceled by user", loaded.Error)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, domain.NewRunRecord(runID, "contract"))
		require.NoError(t, err)

		err = store.Delete(ctx, runID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, runID)
		assert.ErrorIs(t, err, domain.ErrRunNotFound, "Load after Delete should return ErrRunNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := runID + "-1"
		id2 := runID + "-2"
		_ = store.Save(ctx, domain.NewRunRecord(id1, "contract"))
		_ = store.Save(ctx, domain.NewRunRecord(id2, "contract"))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		runs, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, runs, id1)
		assert.Contains(t, runs, id2)
	})
}

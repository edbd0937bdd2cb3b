package storage

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"priorityflow/internal/domain"
)

func openStores(t *testing.T) map[string]domain.Repository {
	t.Helper()

	sqlite, err := OpenSQLite(filepath.Join(t.TempDir(), "planner.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]domain.Repository{
		"memory": NewMemoryStorage(),
		"sqlite": sqlite,
	}
}

func sampleTask() *domain.Task {
	task := domain.NewTask("Preparar presentación")
	task.Category = domain.CategorySchool
	task.DueDate = "2025-08-20"
	task.RequiredInfo = []string{"datos", "fechas"}
	task.ReceivedInfo = []string{"datos"}
	task.BusinessImpact = domain.ImpactHigh
	task.Effort = 4
	task.Dependencies = []int64{7}
	task.Tags = []string{"reporte"}
	return task
}

func TestRepositoryRoundTrip(t *testing.T) {
	for name, repo := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			task := sampleTask()
			id, err := repo.Upsert(task)
			require.NoError(t, err)
			assert.Greater(t, id, int64(0))
			assert.Equal(t, id, task.ID, "upsert writes the assigned id back")

			got, err := repo.Get(id)
			require.NoError(t, err)
			assert.Equal(t, task.Title, got.Title)
			assert.Equal(t, domain.CategorySchool, got.Category)
			assert.Equal(t, "2025-08-20", got.DueDate)
			assert.Equal(t, []string{"datos", "fechas"}, got.RequiredInfo)
			assert.Equal(t, []string{"datos"}, got.ReceivedInfo)
			assert.Equal(t, []int64{7}, got.Dependencies)
			assert.Equal(t, []string{"reporte"}, got.Tags)
			assert.Equal(t, 4, got.Effort)
		})
	}
}

func TestRepositoryUpdateExisting(t *testing.T) {
	for name, repo := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			task := sampleTask()
			id, err := repo.Upsert(task)
			require.NoError(t, err)

			task.Status = domain.StatusInProgress
			task.PriorityScore = 72.5
			task.PriorityLabel = domain.LabelP2
			updatedID, err := repo.Upsert(task)
			require.NoError(t, err)
			assert.Equal(t, id, updatedID)

			got, err := repo.Get(id)
			require.NoError(t, err)
			assert.Equal(t, domain.StatusInProgress, got.Status)
			assert.Equal(t, domain.LabelP2, got.PriorityLabel)
			assert.InDelta(t, 72.5, got.PriorityScore, 0.001)

			all, err := repo.List()
			require.NoError(t, err)
			assert.Len(t, all, 1, "update must not create a second row")
		})
	}
}

func TestRepositoryListOrderedByID(t *testing.T) {
	for name, repo := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, title := range []string{"a", "b", "c"} {
				_, err := repo.Upsert(domain.NewTask(title))
				require.NoError(t, err)
			}

			all, err := repo.List()
			require.NoError(t, err)
			require.Len(t, all, 3)
			assert.True(t, all[0].ID < all[1].ID && all[1].ID < all[2].ID)
		})
	}
}

func TestRepositoryDelete(t *testing.T) {
	for name, repo := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			task := sampleTask()
			id, err := repo.Upsert(task)
			require.NoError(t, err)

			require.NoError(t, repo.Delete(id))

			_, err = repo.Get(id)
			assert.ErrorIs(t, err, ErrNotFound)
			assert.ErrorIs(t, repo.Delete(id), ErrNotFound)
		})
	}
}

func TestRepositoryGetMissing(t *testing.T) {
	for name, repo := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := repo.Get(999)
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestSQLiteReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "planner.db")

	store, err := OpenSQLite(path)
	require.NoError(t, err)
	id, err := store.Upsert(sampleTask())
	require.NoError(t, err)
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Preparar presentación", got.Title)
}

func TestMemoryUpsertDoesNotAliasCaller(t *testing.T) {
	repo := NewMemoryStorage()
	task := sampleTask()
	id, err := repo.Upsert(task)
	require.NoError(t, err)

	task.Title = "mutated after store"
	task.RequiredInfo[0] = "mutated"

	got, err := repo.Get(id)
	require.NoError(t, err)
	assert.Equal(t, "Preparar presentación", got.Title)
	assert.Equal(t, "datos", got.RequiredInfo[0])
}

package storage

import (
	"fmt"
	"sort"
	"sync"

	"priorityflow/internal/domain"
)

// MemoryStorage is a mutex-guarded in-memory task repository. It backs tests
// and the ephemeral mode; semantics mirror the SQLite store.
type MemoryStorage struct {
	mu     sync.RWMutex
	tasks  map[int64]*domain.Task
	nextID int64
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		tasks:  make(map[int64]*domain.Task),
		nextID: 1,
	}
}

func (ms *MemoryStorage) Upsert(task *domain.Task) (int64, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if task.ID == domain.NewTaskID || task.ID == 0 {
		task.ID = ms.nextID
		ms.nextID++
	} else if task.ID >= ms.nextID {
		ms.nextID = task.ID + 1
	}

	stored := cloneTask(task)
	ms.tasks[stored.ID] = stored
	return stored.ID, nil
}

func (ms *MemoryStorage) Get(id int64) (*domain.Task, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	task, exists := ms.tasks[id]
	if !exists {
		return nil, fmt.Errorf("task %d: %w", id, ErrNotFound)
	}

	return cloneTask(task), nil
}

func (ms *MemoryStorage) List() ([]*domain.Task, error) {
	ms.mu.RLock()
	defer ms.mu.RUnlock()

	result := make([]*domain.Task, 0, len(ms.tasks))
	for _, task := range ms.tasks {
		result = append(result, cloneTask(task))
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (ms *MemoryStorage) Delete(id int64) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	if _, exists := ms.tasks[id]; !exists {
		return fmt.Errorf("task %d: %w", id, ErrNotFound)
	}

	delete(ms.tasks, id)
	return nil
}

func cloneTask(task *domain.Task) *domain.Task {
	copied := *task
	copied.RequiredInfo = append([]string(nil), task.RequiredInfo...)
	copied.ReceivedInfo = append([]string(nil), task.ReceivedInfo...)
	copied.Dependencies = append([]int64(nil), task.Dependencies...)
	copied.Tags = append([]string(nil), task.Tags...)
	return &copied
}

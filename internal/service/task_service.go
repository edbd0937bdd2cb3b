package service

import (
	"fmt"

	"priorityflow/internal/domain"
	"priorityflow/internal/parser"
	"priorityflow/internal/priority"
	"priorityflow/internal/search"
)

// TaskService owns every mutation path: it rescores through the priority
// engine before anything is persisted, so stored score/label/status never
// drift from the other task fields.
type TaskService struct {
	repo   domain.Repository
	engine *priority.Engine
	topN   int
}

func NewTaskService(repo domain.Repository, engine *priority.Engine, topN int) *TaskService {
	if topN <= 0 {
		topN = priority.DefaultTopN
	}
	return &TaskService{repo: repo, engine: engine, topN: topN}
}

// Save rescores the task against the current collection and persists it.
// A task with a fresh id is created; an existing id is overwritten.
func (s *TaskService) Save(task *domain.Task) (*domain.Task, error) {
	if task.Title == "" {
		return nil, fmt.Errorf("task title must not be empty")
	}

	all, err := s.repo.List()
	if err != nil {
		return nil, fmt.Errorf("list tasks for scoring: %w", err)
	}

	s.engine.Apply(task, all)
	task.Touch()

	if _, err := s.repo.Upsert(task); err != nil {
		return nil, fmt.Errorf("persist task: %w", err)
	}
	return task, nil
}

// CreateFromPayload builds a task from a parsed chat payload and saves it.
// Absent payload fields keep the task defaults; the engine tolerates whatever
// the parser produced.
func (s *TaskService) CreateFromPayload(p parser.Payload) (*domain.Task, error) {
	task := domain.NewTask(p.Title)
	if p.Category != "" {
		task.Category = domain.ParseCategory(p.Category)
	}
	if p.Impact != "" {
		task.BusinessImpact = domain.ParseImpact(p.Impact)
	}
	if p.DueDate != "" {
		task.DueDate = p.DueDate
	}
	if p.Effort != 0 {
		task.Effort = p.Effort
	}
	if len(p.RequiredInfo) > 0 {
		task.RequiredInfo = p.RequiredInfo
	}
	if len(p.Tags) > 0 {
		task.Tags = p.Tags
	}
	return s.Save(task)
}

// ReceiveInfo records one received-information item on a task and rescores it.
// Duplicate items (case-insensitive) are ignored.
func (s *TaskService) ReceiveInfo(id int64, item string) (*domain.Task, error) {
	task, err := s.repo.Get(id)
	if err != nil {
		return nil, err
	}

	exists := false
	for _, have := range task.ReceivedInfo {
		if parser.Normalize(have) == parser.Normalize(item) {
			exists = true
			break
		}
	}
	if !exists {
		task.ReceivedInfo = append(task.ReceivedInfo, item)
	}

	return s.Save(task)
}

// SetStatus is the caller-driven status change path; it is the only way a
// stored Blocked task gets released once its dependencies finish.
func (s *TaskService) SetStatus(id int64, status domain.Status) (*domain.Task, error) {
	task, err := s.repo.Get(id)
	if err != nil {
		return nil, err
	}
	task.Status = status
	return s.Save(task)
}

func (s *TaskService) Get(id int64) (*domain.Task, error) {
	return s.repo.Get(id)
}

// List returns tasks matching the filter, ordered by id.
func (s *TaskService) List(filter domain.TaskFilter) ([]*domain.Task, error) {
	all, err := s.repo.List()
	if err != nil {
		return nil, err
	}
	return search.Filter(all, filter), nil
}

// Top returns the highest-priority pending tasks, label first then score.
func (s *TaskService) Top() ([]*domain.Task, error) {
	all, err := s.repo.List()
	if err != nil {
		return nil, err
	}
	return priority.TopN(priority.Pending(all), s.topN), nil
}

// Delete removes the task. Other tasks keep any dependency reference to the
// deleted id; the engine treats those as open from then on.
func (s *TaskService) Delete(id int64) error {
	return s.repo.Delete(id)
}

// RescoreAll recomputes every task against the current snapshot and persists
// the results. The daily digest runs this first so urgency reflects the
// current date rather than the date of the last edit.
func (s *TaskService) RescoreAll() error {
	all, err := s.repo.List()
	if err != nil {
		return fmt.Errorf("list tasks for rescore: %w", err)
	}
	for _, task := range all {
		s.engine.Apply(task, all)
		task.Touch()
		if _, err := s.repo.Upsert(task); err != nil {
			return fmt.Errorf("persist rescored task %d: %w", task.ID, err)
		}
	}
	return nil
}

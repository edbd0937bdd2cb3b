package search

import (
	"strings"

	"priorityflow/internal/domain"
)

// Filter applies the view filters to a task list: status/label/category set
// membership plus a case-insensitive substring match over title and tags. An
// empty filter passes everything through.
func Filter(tasks []*domain.Task, filter domain.TaskFilter) []*domain.Task {
	result := make([]*domain.Task, 0, len(tasks))
	query := strings.ToLower(strings.TrimSpace(filter.Search))

	for _, task := range tasks {
		if task == nil {
			continue
		}
		if !statusMatches(task, filter.Statuses) {
			continue
		}
		if !labelMatches(task, filter.Labels) {
			continue
		}
		if !categoryMatches(task, filter.Categories) {
			continue
		}
		if query != "" && !textMatches(task, query) {
			continue
		}
		result = append(result, task)
	}
	return result
}

func statusMatches(task *domain.Task, statuses []domain.Status) bool {
	if len(statuses) == 0 {
		return true
	}
	for _, s := range statuses {
		if task.Status == s {
			return true
		}
	}
	return false
}

func labelMatches(task *domain.Task, labels []domain.Label) bool {
	if len(labels) == 0 {
		return true
	}
	for _, l := range labels {
		if task.PriorityLabel == l {
			return true
		}
	}
	return false
}

func categoryMatches(task *domain.Task, categories []domain.Category) bool {
	if len(categories) == 0 {
		return true
	}
	for _, c := range categories {
		if task.Category == c {
			return true
		}
	}
	return false
}

func textMatches(task *domain.Task, query string) bool {
	if strings.Contains(strings.ToLower(task.Title), query) {
		return true
	}
	for _, tag := range task.Tags {
		if strings.Contains(strings.ToLower(tag), query) {
			return true
		}
	}
	return false
}

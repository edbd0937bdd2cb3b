package service

import (
	"context"
	"fmt"
	"strings"

	"priorityflow/internal/domain"
)

// Notifier delivers a rendered digest to the user's channel.
type Notifier interface {
	Send(ctx context.Context, body string) error
}

// DigestService builds and dispatches the daily top-priority summary.
type DigestService struct {
	tasks    *TaskService
	notifier Notifier
}

func NewDigestService(tasks *TaskService, notifier Notifier) *DigestService {
	return &DigestService{tasks: tasks, notifier: notifier}
}

// Build renders the digest text without sending it.
func (ds *DigestService) Build() (string, error) {
	top, err := ds.tasks.Top()
	if err != nil {
		return "", fmt.Errorf("collect top tasks: %w", err)
	}
	return FormatDigest(top), nil
}

// Send rescores everything, then delivers the digest. Rescoring first keeps
// day-boundary urgency shifts out of the stale stored scores.
func (ds *DigestService) Send(ctx context.Context) error {
	if err := ds.tasks.RescoreAll(); err != nil {
		return err
	}
	body, err := ds.Build()
	if err != nil {
		return err
	}
	return ds.notifier.Send(ctx, body)
}

// FormatDigest renders the top-N tasks as the plain-text reminder message.
func FormatDigest(tasks []*domain.Task) string {
	if len(tasks) == 0 {
		return "No hay tareas pendientes por ahora. 🎉"
	}
	lines := make([]string, 0, len(tasks))
	for _, t := range tasks {
		lines = append(lines, FormatTaskLine(t))
	}
	return "Plan del día (Top " + fmt.Sprint(len(tasks)) + "):\n" + strings.Join(lines, "\n")
}

// FormatTaskLine is the one-line task rendering shared by the digest and the
// webhook reminder reply.
func FormatTaskLine(t *domain.Task) string {
	due := t.DueDate
	if due == "" {
		due = "-"
	}
	return fmt.Sprintf("#%d %s · %s · %s (%d) · due %s",
		t.ID, t.Title, t.Category, t.PriorityLabel, int(t.PriorityScore), due)
}

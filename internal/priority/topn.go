package priority

import (
	"sort"

	"priorityflow/internal/domain"
)

// DefaultTopN is the digest size used by the daily reminder.
const DefaultTopN = 5

// TopN orders tasks by priority label (P1 first) and, within a label, by score
// descending, then returns the first n. Label always dominates score.
func TopN(tasks []*domain.Task, n int) []*domain.Task {
	if n <= 0 {
		n = DefaultTopN
	}
	ordered := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t != nil {
			ordered = append(ordered, t)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].PriorityLabel != ordered[j].PriorityLabel {
			return labelRank(ordered[i].PriorityLabel) < labelRank(ordered[j].PriorityLabel)
		}
		return ordered[i].PriorityScore > ordered[j].PriorityScore
	})
	if len(ordered) > n {
		ordered = ordered[:n]
	}
	return ordered
}

// Pending filters out Done tasks; digests only report actionable work.
func Pending(tasks []*domain.Task) []*domain.Task {
	pending := make([]*domain.Task, 0, len(tasks))
	for _, t := range tasks {
		if t != nil && t.Status != domain.StatusDone {
			pending = append(pending, t)
		}
	}
	return pending
}

func labelRank(label domain.Label) int {
	switch label {
	case domain.LabelP1:
		return 1
	case domain.LabelP2:
		return 2
	case domain.LabelP3:
		return 3
	default:
		return 4
	}
}

package domain

import (
	"strings"
	"time"
)

type Status string

const (
	StatusBacklog     Status = "Backlog"
	StatusWaitingInfo Status = "Waiting Info"
	StatusInProgress  Status = "In Progress"
	StatusBlocked     Status = "Blocked"
	StatusDone        Status = "Done"
)

type Category string

const (
	CategorySchool Category = "Escuela"
	CategoryWork   Category = "Trabajo"
)

type Impact string

const (
	ImpactLow      Impact = "Low"
	ImpactMedium   Impact = "Medium"
	ImpactHigh     Impact = "High"
	ImpactCritical Impact = "Critical"
)

type Label string

const (
	LabelP1 Label = "P1"
	LabelP2 Label = "P2"
	LabelP3 Label = "P3"
	LabelP4 Label = "P4"
)

// NewTaskID marks a task that has not been persisted yet. The engine treats it
// like any other id: it simply never matches a dependency lookup.
const NewTaskID int64 = -1

type Task struct {
	ID             int64    `json:"id"`
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Status         Status   `json:"status"`
	Category       Category `json:"category"`
	DueDate        string   `json:"dueDate,omitempty"` // ISO YYYY-MM-DD
	RequiredInfo   []string `json:"requiredInfo"`
	ReceivedInfo   []string `json:"receivedInfo"`
	BusinessImpact Impact   `json:"businessImpact"`
	Effort         int      `json:"effort"`
	Dependencies   []int64  `json:"dependencies"`
	PriorityScore  float64  `json:"priorityScore"`
	PriorityLabel  Label    `json:"priorityLabel"`
	Tags           []string `json:"tags"`
	LastUpdated    string   `json:"lastUpdated,omitempty"`
}

func NewTask(title string) *Task {
	return &Task{
		ID:             NewTaskID,
		Title:          title,
		Status:         StatusBacklog,
		Category:       CategoryWork,
		RequiredInfo:   make([]string, 0),
		ReceivedInfo:   make([]string, 0),
		BusinessImpact: ImpactMedium,
		Effort:         3,
		Dependencies:   make([]int64, 0),
		PriorityScore:  0,
		PriorityLabel:  LabelP4,
		Tags:           make([]string, 0),
	}
}

func (t *Task) Touch() {
	t.LastUpdated = time.Now().Format(time.RFC3339)
}

// ParseStatus maps stored or user-supplied text to a Status, defaulting to
// Backlog for anything unrecognized.
func ParseStatus(s string) Status {
	switch normalizeEnum(s) {
	case "backlog":
		return StatusBacklog
	case "waiting info", "waitinginfo", "waiting":
		return StatusWaitingInfo
	case "in progress", "inprogress":
		return StatusInProgress
	case "blocked":
		return StatusBlocked
	case "done":
		return StatusDone
	default:
		return StatusBacklog
	}
}

func ParseCategory(s string) Category {
	switch normalizeEnum(s) {
	case "escuela", "school":
		return CategorySchool
	default:
		return CategoryWork
	}
}

func ParseImpact(s string) Impact {
	switch normalizeEnum(s) {
	case "low", "bajo":
		return ImpactLow
	case "medium", "medio":
		return ImpactMedium
	case "high", "alto":
		return ImpactHigh
	case "critical", "critico":
		return ImpactCritical
	default:
		return ImpactMedium
	}
}

func ParseLabel(s string) Label {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "P1":
		return LabelP1
	case "P2":
		return LabelP2
	case "P3":
		return LabelP3
	default:
		return LabelP4
	}
}

func normalizeEnum(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	replacer := strings.NewReplacer("á", "a", "é", "e", "í", "i", "ó", "o", "ú", "u", "ñ", "n")
	return replacer.Replace(s)
}

type TaskFilter struct {
	Statuses   []Status
	Labels     []Label
	Categories []Category
	Search     string
}

type Repository interface {
	Upsert(task *Task) (int64, error)
	Get(id int64) (*Task, error)
	List() ([]*Task, error)
	Delete(id int64) error
}

package priority

import (
	"math"
	"strings"
	"time"

	"priorityflow/internal/domain"
)

// DefaultDaysWindow controls how far out a due date still contributes urgency.
const DefaultDaysWindow = 14

const (
	maxUrgencyPoints = 30.0
	maxInfoPoints    = 40.0
	effortPenaltyPer = 1.5
	blockedPenalty   = 25.0
)

// Result carries everything a caller persists after rescoring a task.
type Result struct {
	Score     float64
	Label     domain.Label
	Status    domain.Status
	Escalated bool
}

// Engine computes priority scores. It is stateless and safe for concurrent use.
type Engine struct {
	daysWindow int
	now        func() time.Time
}

type Option func(*Engine)

// WithDaysWindow overrides the urgency ramp width.
func WithDaysWindow(days int) Option {
	return func(e *Engine) {
		if days > 0 {
			e.daysWindow = days
		}
	}
}

// WithClock fixes the engine's notion of "today". Tests use this.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		daysWindow: DefaultDaysWindow,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Score recomputes the priority of task against the current task set. The task
// set is only consulted to resolve dependency status; a dependency id with no
// matching record counts as open. Malformed optional fields never fail, they
// contribute nothing.
func (e *Engine) Score(task *domain.Task, all []*domain.Task) Result {
	depsOpen := e.anyDependencyOpen(task, all)

	score := impactPoints(task.BusinessImpact)
	score += e.urgencyPoints(task.DueDate)
	score += infoPoints(task.RequiredInfo, task.ReceivedInfo)
	score += effortPenalty(task.Effort)
	if task.Status == domain.StatusBlocked || depsOpen {
		score -= blockedPenalty
	}
	score = clamp(score, 0, 100)

	label := labelForScore(score)
	ratio := infoRatio(task.RequiredInfo, task.ReceivedInfo)

	// Status transitions run after scoring and never feed back into the score.
	status := task.Status
	if status == domain.StatusWaitingInfo && ratio >= 1.0 {
		status = domain.StatusBacklog
	}
	if depsOpen && status != domain.StatusDone && status != domain.StatusBlocked {
		status = domain.StatusBlocked
	}

	return Result{
		Score:     score,
		Label:     label,
		Status:    status,
		Escalated: label == domain.LabelP1 && ratio >= 1.0,
	}
}

// Apply rescores task in place, writing the derived fields back onto it.
func (e *Engine) Apply(task *domain.Task, all []*domain.Task) Result {
	res := e.Score(task, all)
	task.PriorityScore = res.Score
	task.PriorityLabel = res.Label
	task.Status = res.Status
	return res
}

func impactPoints(impact domain.Impact) float64 {
	switch impact {
	case domain.ImpactLow:
		return 5
	case domain.ImpactHigh:
		return 30
	case domain.ImpactCritical:
		return 40
	default:
		return 15
	}
}

func (e *Engine) urgencyPoints(due string) float64 {
	if strings.TrimSpace(due) == "" {
		return 0
	}
	dueDate, err := time.ParseInLocation("2006-01-02", strings.TrimSpace(due), time.Local)
	if err != nil {
		return 0
	}
	today := e.today()
	// Rounding keeps day arithmetic stable across DST boundaries.
	daysLeft := int(math.Round(dueDate.Sub(today).Hours() / 24))
	if daysLeft <= 0 {
		return maxUrgencyPoints
	}
	points := maxUrgencyPoints * (1 - float64(daysLeft)/float64(e.daysWindow))
	return clamp(points, 0, maxUrgencyPoints)
}

func (e *Engine) today() time.Time {
	now := e.now()
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
}

func infoPoints(required, received []string) float64 {
	if len(required) == 0 {
		return 0
	}
	return maxInfoPoints * infoRatio(required, received)
}

// infoRatio is the fraction of required items present in received, compared
// case-insensitively after trimming. Empty required means fully ready.
func infoRatio(required, received []string) float64 {
	if len(required) == 0 {
		return 1.0
	}
	have := make(map[string]bool, len(received))
	for _, item := range received {
		have[normalizeInfo(item)] = true
	}
	got := 0
	seen := make(map[string]bool, len(required))
	for _, item := range required {
		key := normalizeInfo(item)
		if seen[key] {
			continue
		}
		seen[key] = true
		if have[key] {
			got++
		}
	}
	ratio := float64(got) / float64(len(seen))
	if ratio > 1.0 {
		ratio = 1.0
	}
	return ratio
}

func normalizeInfo(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func effortPenalty(effort int) float64 {
	if effort < 1 {
		effort = 1
	}
	if effort > 8 {
		effort = 8
	}
	return -effortPenaltyPer * float64(effort-1)
}

func (e *Engine) anyDependencyOpen(task *domain.Task, all []*domain.Task) bool {
	if len(task.Dependencies) == 0 {
		return false
	}
	done := make(map[int64]bool, len(all))
	for _, t := range all {
		if t == nil {
			continue
		}
		if t.Status == domain.StatusDone {
			done[t.ID] = true
		}
	}
	for _, dep := range task.Dependencies {
		if !done[dep] {
			return true
		}
	}
	return false
}

func labelForScore(score float64) domain.Label {
	switch {
	case score >= 80:
		return domain.LabelP1
	case score >= 60:
		return domain.LabelP2
	case score >= 40:
		return domain.LabelP3
	default:
		return domain.LabelP4
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

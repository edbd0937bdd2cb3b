package priority

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"priorityflow/internal/domain"
)

func fixedClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, 8, 15, 10, 30, 0, 0, time.Local)
	}
}

func testEngine(opts ...Option) *Engine {
	opts = append([]Option{WithClock(fixedClock())}, opts...)
	return NewEngine(opts...)
}

func dueIn(days int) string {
	return fixedClock()().AddDate(0, 0, days).Format("2006-01-02")
}

func TestScoreExampleFromModel(t *testing.T) {
	// Critical (40) + due today (30) + half the info (20) - effort 3 (3) = 87.
	engine := testEngine()
	task := domain.NewTask("Quarterly report")
	task.BusinessImpact = domain.ImpactCritical
	task.DueDate = dueIn(0)
	task.RequiredInfo = []string{"x", "y"}
	task.ReceivedInfo = []string{"x"}
	task.Effort = 3

	res := engine.Score(task, nil)

	assert.InDelta(t, 87.0, res.Score, 0.001)
	assert.Equal(t, domain.LabelP1, res.Label)
	assert.Equal(t, domain.StatusBacklog, res.Status)
	assert.False(t, res.Escalated, "half-ready task must not escalate")
}

func TestScoreClampsAtHundredAndEscalates(t *testing.T) {
	engine := testEngine()
	task := domain.NewTask("Quarterly report")
	task.BusinessImpact = domain.ImpactCritical
	task.DueDate = dueIn(0)
	task.RequiredInfo = []string{"x", "y"}
	task.ReceivedInfo = []string{"x", "y"}
	task.Effort = 3

	res := engine.Score(task, nil)

	assert.InDelta(t, 100.0, res.Score, 0.001)
	assert.Equal(t, domain.LabelP1, res.Label)
	assert.True(t, res.Escalated)
}

func TestImpactMonotonicity(t *testing.T) {
	engine := testEngine()
	impacts := []domain.Impact{domain.ImpactLow, domain.ImpactMedium, domain.ImpactHigh, domain.ImpactCritical}

	prev := -1.0
	for _, impact := range impacts {
		task := domain.NewTask("t")
		task.BusinessImpact = impact
		res := engine.Score(task, nil)
		assert.Greater(t, res.Score, prev, "score must rise with impact %s", impact)
		prev = res.Score
	}
}

func TestUnknownImpactDefaultsToMedium(t *testing.T) {
	engine := testEngine()
	task := domain.NewTask("t")
	task.BusinessImpact = domain.Impact("Extreme")
	unknown := engine.Score(task, nil)

	task.BusinessImpact = domain.ImpactMedium
	medium := engine.Score(task, nil)

	assert.Equal(t, medium.Score, unknown.Score)
}

func TestUrgencyRamp(t *testing.T) {
	engine := testEngine()

	cases := []struct {
		name     string
		daysOut  int
		expected float64
	}{
		{"overdue", -3, 30},
		{"due today", 0, 30},
		{"one week out", 7, 15},
		{"at window edge", 14, 0},
		{"beyond window", 30, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			task := domain.NewTask("t")
			task.BusinessImpact = domain.ImpactLow
			task.Effort = 1
			task.DueDate = dueIn(tc.daysOut)
			res := engine.Score(task, nil)
			assert.InDelta(t, 5.0+tc.expected, res.Score, 0.001)
		})
	}
}

func TestUrgencyDecreasesWithDistance(t *testing.T) {
	engine := testEngine()
	prev := 100.0
	for days := 0; days <= 16; days++ {
		task := domain.NewTask("t")
		task.BusinessImpact = domain.ImpactLow
		task.Effort = 1
		task.DueDate = dueIn(days)
		res := engine.Score(task, nil)
		assert.LessOrEqual(t, res.Score, prev)
		prev = res.Score
	}
}

func TestUnparseableDueDateContributesNothing(t *testing.T) {
	engine := testEngine()
	task := domain.NewTask("t")
	task.DueDate = "next tuesday-ish"
	res := engine.Score(task, nil)

	task.DueDate = ""
	blank := engine.Score(task, nil)
	assert.Equal(t, blank.Score, res.Score)
}

func TestCustomDaysWindow(t *testing.T) {
	engine := testEngine(WithDaysWindow(7))
	task := domain.NewTask("t")
	task.BusinessImpact = domain.ImpactLow
	task.Effort = 1
	task.DueDate = dueIn(7)

	res := engine.Score(task, nil)
	assert.InDelta(t, 5.0, res.Score, 0.001, "due at window edge carries zero urgency")
}

func TestInfoPoints(t *testing.T) {
	engine := testEngine()

	task := domain.NewTask("t")
	task.BusinessImpact = domain.ImpactLow
	task.Effort = 1
	base := engine.Score(task, nil).Score

	task.RequiredInfo = []string{"Budget", "Approval"}
	task.ReceivedInfo = []string{"  budget  ", "APPROVAL"}
	full := engine.Score(task, nil).Score
	assert.InDelta(t, base+40, full, 0.001, "case and whitespace must not matter")

	task.ReceivedInfo = []string{"budget"}
	half := engine.Score(task, nil).Score
	assert.InDelta(t, base+20, half, 0.001)

	task.ReceivedInfo = nil
	none := engine.Score(task, nil).Score
	assert.InDelta(t, base, none, 0.001)
}

func TestEffortPenaltyBounds(t *testing.T) {
	engine := testEngine()

	score := func(effort int) float64 {
		task := domain.NewTask("t")
		task.BusinessImpact = domain.ImpactMedium
		task.Effort = effort
		return engine.Score(task, nil).Score
	}

	assert.InDelta(t, 15.0, score(1), 0.001)
	assert.InDelta(t, 15.0-10.5, score(8), 0.001)
	assert.Equal(t, score(1), score(0), "effort below range clamps to 1")
	assert.Equal(t, score(8), score(20), "effort above range clamps to 8")
}

func TestOpenDependencyBlocksAndPenalizes(t *testing.T) {
	engine := testEngine()

	dep := domain.NewTask("prerequisite")
	dep.ID = 1
	dep.Status = domain.StatusInProgress

	task := domain.NewTask("t")
	task.ID = 2
	task.BusinessImpact = domain.ImpactHigh
	task.Effort = 1
	task.Dependencies = []int64{1}

	res := engine.Score(task, []*domain.Task{dep, task})
	assert.InDelta(t, 5.0, res.Score, 0.001, "30 impact - 25 blocked penalty")
	assert.Equal(t, domain.StatusBlocked, res.Status)

	dep.Status = domain.StatusDone
	res = engine.Score(task, []*domain.Task{dep, task})
	assert.InDelta(t, 30.0, res.Score, 0.001)
	assert.Equal(t, domain.StatusBacklog, res.Status)
}

func TestDanglingDependencyCountsAsOpen(t *testing.T) {
	engine := testEngine()
	task := domain.NewTask("t")
	task.ID = 7
	task.Dependencies = []int64{999}

	res := engine.Score(task, []*domain.Task{task})
	assert.Equal(t, domain.StatusBlocked, res.Status)
}

func TestDoneTaskNeverRevertsToBlocked(t *testing.T) {
	engine := testEngine()
	task := domain.NewTask("t")
	task.ID = 7
	task.Status = domain.StatusDone
	task.Dependencies = []int64{999}

	res := engine.Score(task, []*domain.Task{task})
	assert.Equal(t, domain.StatusDone, res.Status)
}

func TestStoredBlockedStaysBlockedWhenDepsComplete(t *testing.T) {
	// A task whose stored status is Blocked keeps both the penalty and the
	// status even after its dependencies finish; only a caller-driven status
	// change releases it.
	engine := testEngine()

	dep := domain.NewTask("prerequisite")
	dep.ID = 1
	dep.Status = domain.StatusDone

	task := domain.NewTask("t")
	task.ID = 2
	task.Status = domain.StatusBlocked
	task.BusinessImpact = domain.ImpactHigh
	task.Effort = 1
	task.Dependencies = []int64{1}

	res := engine.Score(task, []*domain.Task{dep, task})
	assert.Equal(t, domain.StatusBlocked, res.Status)
	assert.InDelta(t, 5.0, res.Score, 0.001)
}

func TestWaitingInfoReleasesWhenInfoComplete(t *testing.T) {
	engine := testEngine()
	task := domain.NewTask("t")
	task.Status = domain.StatusWaitingInfo
	task.RequiredInfo = []string{"z"}
	task.ReceivedInfo = []string{"z"}

	res := engine.Score(task, nil)
	assert.Equal(t, domain.StatusBacklog, res.Status)

	task.ReceivedInfo = nil
	res = engine.Score(task, nil)
	assert.Equal(t, domain.StatusWaitingInfo, res.Status)
}

func TestLabelThresholds(t *testing.T) {
	assert.Equal(t, domain.LabelP1, labelForScore(80))
	assert.Equal(t, domain.LabelP2, labelForScore(79.999))
	assert.Equal(t, domain.LabelP2, labelForScore(60))
	assert.Equal(t, domain.LabelP3, labelForScore(59.999))
	assert.Equal(t, domain.LabelP3, labelForScore(40))
	assert.Equal(t, domain.LabelP4, labelForScore(39.999))
	assert.Equal(t, domain.LabelP4, labelForScore(0))
}

func TestScoreNeverLeavesRange(t *testing.T) {
	engine := testEngine()

	floor := domain.NewTask("t")
	floor.BusinessImpact = domain.ImpactLow
	floor.Effort = 8
	floor.Status = domain.StatusBlocked
	res := engine.Score(floor, nil)
	assert.Equal(t, 0.0, res.Score)
	assert.Equal(t, domain.LabelP4, res.Label)
}

func TestApplyWritesDerivedFields(t *testing.T) {
	engine := testEngine()
	task := domain.NewTask("t")
	task.BusinessImpact = domain.ImpactCritical
	task.DueDate = dueIn(0)
	task.Effort = 1

	engine.Apply(task, nil)

	assert.InDelta(t, 70.0, task.PriorityScore, 0.001)
	assert.Equal(t, domain.LabelP2, task.PriorityLabel)
	assert.Equal(t, domain.StatusBacklog, task.Status)
}

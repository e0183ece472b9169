package workflow

import (
	"testing"

	"HospitalMS/models"

	"github.com/stretchr/testify/assert"
)

func TestStepPointerStaysInRange(t *testing.T) {
	assert.Equal(t, 1, Clamp(-3))
	assert.Equal(t, 1, Clamp(0))
	assert.Equal(t, 3, Clamp(3))
	assert.Equal(t, 5, Clamp(9))

	assert.Equal(t, 5, Next(5))
	assert.Equal(t, 1, Prev(1))
	assert.Equal(t, 4, Next(3))
	assert.Equal(t, 2, Prev(3))
	assert.Equal(t, 2, Next(0))
}

func TestWalkingTheWizard(t *testing.T) {
	step := FirstStep
	var seen []string
	for i := 0; i < 10; i++ {
		seen = append(seen, Title(step))
		step = Next(step)
	}
	assert.Equal(t, LastStep, step)
	assert.Equal(t, []string{"basics", "location", "tests", "diseases", "treatments"}, seen[:5])
}

func TestStatusMachine(t *testing.T) {
	cases := []struct {
		from, to models.VisitStatus
		ok       bool
	}{
		{models.VisitDraft, models.VisitDraft, true},
		{models.VisitDraft, models.VisitCompleted, true},
		{"", models.VisitScheduled, true},
		{models.VisitScheduled, models.VisitInProgress, true},
		{models.VisitScheduled, models.VisitDraft, false},
		{models.VisitInProgress, models.VisitCompleted, true},
		{models.VisitCompleted, models.VisitCompleted, true},
		{models.VisitCompleted, models.VisitCancelled, true},
		{models.VisitCompleted, models.VisitInProgress, false},
		{models.VisitCancelled, models.VisitScheduled, false},
		{models.VisitDraft, "ARCHIVED", false},
	}
	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			assert.Equal(t, tc.ok, CanTransition(tc.from, tc.to))
			if tc.ok {
				assert.NoError(t, Transition(tc.from, tc.to))
			} else {
				assert.ErrorIs(t, Transition(tc.from, tc.to), models.ErrInvalidTransition)
			}
		})
	}
}

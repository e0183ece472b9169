// Package workflow holds the pure rules of the visit wizard: the step pointer and the
// status machine. Nothing in here touches storage.
package workflow

import (
	"HospitalMS/models"
)

// Wizard steps.
const (
	StepBasics    = 1
	StepLocation  = 2
	StepTests     = 3
	StepDiseases  = 4
	StepTreatment = 5

	FirstStep = StepBasics
	LastStep  = StepTreatment
)

var stepTitles = map[int]string{
	StepBasics:    "basics",
	StepLocation:  "location",
	StepTests:     "tests",
	StepDiseases:  "diseases",
	StepTreatment: "treatments",
}

// Clamp keeps a step pointer inside 1..5.
func Clamp(step int) int {
	if step < FirstStep {
		return FirstStep
	}
	if step > LastStep {
		return LastStep
	}
	return step
}

// Next moves one step forward, staying on the last step.
func Next(step int) int {
	return Clamp(Clamp(step) + 1)
}

// Prev moves one step back, staying on the first step.
func Prev(step int) int {
	return Clamp(Clamp(step) - 1)
}

// Title names a step.
func Title(step int) string {
	return stepTitles[Clamp(step)]
}

// CanTransition reports whether a visit may move from one status to another.
func CanTransition(from, to models.VisitStatus) bool {
	if !to.Valid() {
		return false
	}
	switch from {
	case "", models.VisitDraft:
		return true
	case models.VisitScheduled, models.VisitInProgress:
		return to != models.VisitDraft
	case models.VisitCompleted:
		return to == models.VisitCompleted || to == models.VisitCancelled
	default:
		return false
	}
}

// Transition returns models.ErrInvalidTransition when the move is not allowed.
func Transition(from, to models.VisitStatus) error {
	if !CanTransition(from, to) {
		return models.ErrInvalidTransition
	}
	return nil
}

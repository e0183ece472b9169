package services

import (
	"context"
	"errors"
	"testing"

	"HospitalMS/models"
	"HospitalMS/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSaveDraftRoundTripsAtStepThree(t *testing.T) {
	e := newEnv(t)
	c := e.clinic(t)
	ctx := context.Background()

	form := &models.VisitForm{
		PatientID:   c.patient.ID,
		HospitalID:  c.hospital.ID,
		ScheduledAt: "2024-05-01T10:00:00Z",
		Status:      models.VisitDraft,
		CurrentStep: 3,
		Symptoms:    "سعال",
		VisitRecords: models.VisitRecords{
			Tests: []models.TestInput{
				{Name: "تحليل دم شامل"},
				{Name: "أشعة الصدر", ScheduledAt: "2024-05-02", Notes: "صباحاً"},
			},
		},
	}

	visit, err := e.svc.Visits.SaveDraft(ctx, form)
	require.NoError(t, err)
	assert.Equal(t, models.VisitDraft, visit.Status)
	assert.Empty(t, visit.Tests, "draft records must not be materialized")

	got, err := e.svc.Visits.Form(ctx, visit.ID)
	require.NoError(t, err)

	expected := *form
	expected.ID = visit.ID
	assert.Equal(t, expected, *got)
	assert.Zero(t, e.count(t, &models.Test{}, ""))
}

func TestSaveDraftClampsStepAndDefaultsDate(t *testing.T) {
	e := newEnv(t)
	c := e.clinic(t)

	visit, err := e.svc.Visits.SaveDraft(context.Background(), &models.VisitForm{PatientID: c.patient.ID, CurrentStep: 9})
	require.NoError(t, err)
	assert.Equal(t, 5, visit.CurrentStep)
	assert.False(t, visit.ScheduledAt.IsZero())
}

func TestSaveDraftRequiresPatient(t *testing.T) {
	e := newEnv(t)
	_, err := e.svc.Visits.SaveDraft(context.Background(), &models.VisitForm{CurrentStep: 2})
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestFinalizeWithoutAssignmentCreatesNothing(t *testing.T) {
	e := newEnv(t)
	c := e.clinic(t)

	_, err := e.svc.Visits.Finalize(context.Background(), &models.VisitForm{
		PatientID:    c.patient.ID,
		ScheduledAt:  "2024-05-01T10:00:00Z",
		VisitRecords: models.VisitRecords{Tests: []models.TestInput{{Name: "سكر الدم"}}},
	})
	assert.ErrorIs(t, err, models.ErrMissingAssignment)
	assert.Zero(t, e.count(t, &models.Test{}, ""))
	assert.Zero(t, e.count(t, &models.Visit{}, ""))
}

func TestFinalizeMaterializesRecords(t *testing.T) {
	e := newEnv(t)
	c := e.clinic(t)
	ctx := context.Background()

	visit, err := e.svc.Visits.Finalize(ctx, &models.VisitForm{
		PatientID:   c.patient.ID,
		DoctorID:    c.doctor.ID,
		HospitalID:  c.hospital.ID,
		ScheduledAt: "2024-05-01T10:00:00Z",
		VisitRecords: models.VisitRecords{
			Tests:       []models.TestInput{{Name: "سكر الدم"}, {Name: "وظائف الكلى"}},
			Diseases:    []models.DiseaseInput{{Name: "السكري النوع الثاني", Severity: models.SeverityModerate}},
			Treatments:  []models.ProcedureInput{{Name: "حقن وريدي"}},
			Medications: []models.MedicationInput{{Medication: "ميتفورمين", Dosage: "850mg"}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, models.VisitCompleted, visit.Status)
	assert.Equal(t, 5, visit.CurrentStep)
	assert.Empty(t, visit.DraftData)
	require.Len(t, visit.Tests, 2)
	assert.Len(t, visit.Diseases, 1)
	assert.Len(t, visit.Treatments, 1)
	assert.Len(t, visit.Prescriptions, 1)
	assert.Empty(t, visit.Operations)

	test := visit.Tests[0]
	assert.Equal(t, c.patient.ID, test.PatientID)
	assert.Equal(t, c.doctor.ID, test.DoctorID)
	assert.Equal(t, c.hospital.ID, test.HospitalID)
	assert.Equal(t, models.OrderPending, test.Status)
	require.NotNil(t, test.ScheduledAt)
	assert.True(t, test.ScheduledAt.Equal(visit.ScheduledAt))

	require.Len(t, e.events.events, 1)
	assert.Equal(t, visit.ID, e.events.events[0].VisitID)
	assert.Equal(t, 2, e.events.events[0].Tests)
	assert.Equal(t, 1, e.events.events[0].Prescriptions)
}

func TestRefinalizeReplacesRecords(t *testing.T) {
	e := newEnv(t)
	c := e.clinic(t)
	ctx := context.Background()

	form := &models.VisitForm{
		PatientID: c.patient.ID, DoctorID: c.doctor.ID, HospitalID: c.hospital.ID,
		ScheduledAt:  "2024-05-01T10:00:00Z",
		VisitRecords: models.VisitRecords{Tests: []models.TestInput{{Name: "أ"}, {Name: "ب"}}},
	}
	visit, err := e.svc.Visits.Finalize(ctx, form)
	require.NoError(t, err)

	form.ID = visit.ID
	form.Tests = []models.TestInput{{Name: "ج"}}
	visit, err = e.svc.Visits.Finalize(ctx, form)
	require.NoError(t, err)

	require.Len(t, visit.Tests, 1)
	assert.Equal(t, "ج", visit.Tests[0].Name)
	assert.Equal(t, int64(1), e.count(t, &models.Test{}, "visit_id = ?", visit.ID))
}

func TestFinalizeRollsBackOnFailure(t *testing.T) {
	e := newEnv(t)
	c := e.clinic(t)
	ctx := context.Background()

	draft, err := e.svc.Visits.SaveDraft(ctx, &models.VisitForm{
		PatientID: c.patient.ID, DoctorID: c.doctor.ID, HospitalID: c.hospital.ID,
		ScheduledAt: "2024-05-01T10:00:00Z", CurrentStep: 5,
		VisitRecords: models.VisitRecords{
			Tests:       []models.TestInput{{Name: "سكر الدم"}},
			Medications: []models.MedicationInput{{Medication: "أموكسيسيلين"}},
		},
	})
	require.NoError(t, err)

	require.NoError(t, e.db.Callback().Create().Before("gorm:create").Register("test:fail_prescriptions", func(tx *gorm.DB) {
		if tx.Statement.Table == "prescriptions" {
			_ = tx.AddError(errors.New("disk full"))
		}
	}))

	form, err := e.svc.Visits.Form(ctx, draft.ID)
	require.NoError(t, err)
	_, err = e.svc.Visits.Finalize(ctx, form)
	require.Error(t, err)

	assert.Zero(t, e.count(t, &models.Test{}, ""), "tests created before the failure must be rolled back")
	assert.Zero(t, e.count(t, &models.Prescription{}, ""))

	stored, err := e.svc.Visits.Get(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, models.VisitDraft, stored.Status)
	assert.NotEmpty(t, stored.DraftData)
	assert.Empty(t, e.events.events)
}

func TestVisitStatusMachine(t *testing.T) {
	e := newEnv(t)
	c := e.clinic(t)
	ctx := context.Background()

	visit, err := e.svc.Visits.Submit(ctx, &models.VisitForm{
		PatientID: c.patient.ID, HospitalID: c.hospital.ID,
		ScheduledAt: "2024-06-01T09:00", Status: models.VisitScheduled,
	})
	require.NoError(t, err)
	assert.Equal(t, models.VisitScheduled, visit.Status)

	visit, err = e.svc.Visits.SetStatus(ctx, visit.ID, models.VisitInProgress)
	require.NoError(t, err)
	assert.Equal(t, models.VisitInProgress, visit.Status)

	_, err = e.svc.Visits.SetStatus(ctx, visit.ID, models.VisitDraft)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = e.svc.Visits.SetStatus(ctx, visit.ID, models.VisitCancelled)
	require.NoError(t, err)

	_, err = e.svc.Visits.SetStatus(ctx, visit.ID, models.VisitScheduled)
	assert.ErrorIs(t, err, models.ErrInvalidTransition)

	_, err = e.svc.Visits.SetStatus(ctx, "missing", models.VisitCancelled)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestSetStatusCompletedFinalizesDraft(t *testing.T) {
	e := newEnv(t)
	c := e.clinic(t)
	ctx := context.Background()

	draft, err := e.svc.Visits.SaveDraft(ctx, &models.VisitForm{
		PatientID: c.patient.ID, DoctorID: c.doctor.ID, HospitalID: c.hospital.ID,
		ScheduledAt:  "2024-05-01T10:00:00Z",
		VisitRecords: models.VisitRecords{Tests: []models.TestInput{{Name: "تحليل البول"}}},
	})
	require.NoError(t, err)

	visit, err := e.svc.Visits.SetStatus(ctx, draft.ID, models.VisitCompleted)
	require.NoError(t, err)
	assert.Equal(t, models.VisitCompleted, visit.Status)
	assert.Len(t, visit.Tests, 1)
}

func TestVisitListFiltersByPatientWithNestedRecords(t *testing.T) {
	e := newEnv(t)
	c := e.clinic(t)
	ctx := context.Background()

	other := &models.Patient{HospitalID: c.hospital.ID, FirstName: "كرار", LastName: "الموسوي"}
	require.NoError(t, e.svc.Patients.Create(ctx, other))

	for _, p := range []string{c.patient.ID, other.ID} {
		_, err := e.svc.Visits.Finalize(ctx, &models.VisitForm{
			PatientID: p, DoctorID: c.doctor.ID, HospitalID: c.hospital.ID,
			ScheduledAt:  "2024-05-01T10:00:00Z",
			VisitRecords: models.VisitRecords{Tests: []models.TestInput{{Name: "سكر الدم"}}},
		})
		require.NoError(t, err)
	}

	q := repositories.ListQuery{Filters: map[string]string{"patientId": c.patient.ID}}
	q.Params.Page, q.Params.Limit = 1, 10
	visits, meta, err := e.svc.Visits.List(ctx, q)
	require.NoError(t, err)
	require.Len(t, visits, 1)
	assert.Equal(t, int64(1), meta.Total)
	assert.Len(t, visits[0].Tests, 1)
	require.NotNil(t, visits[0].Patient)
	assert.Equal(t, "زينب", visits[0].Patient.FirstName)
}

func TestDeleteVisitRemovesRecords(t *testing.T) {
	e := newEnv(t)
	c := e.clinic(t)
	ctx := context.Background()

	visit, err := e.svc.Visits.Finalize(ctx, &models.VisitForm{
		PatientID: c.patient.ID, DoctorID: c.doctor.ID, HospitalID: c.hospital.ID,
		ScheduledAt:  "2024-05-01T10:00:00Z",
		VisitRecords: models.VisitRecords{Tests: []models.TestInput{{Name: "سكر الدم"}}},
	})
	require.NoError(t, err)

	require.NoError(t, e.svc.Visits.Delete(ctx, visit.ID))
	assert.Zero(t, e.count(t, &models.Test{}, ""))
	_, err = e.svc.Visits.Get(ctx, visit.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}

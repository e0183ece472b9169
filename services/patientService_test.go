package services

import (
	"context"
	"testing"

	"HospitalMS/models"
	"HospitalMS/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPatientCreateDefaultsCityAndNumbers(t *testing.T) {
	e := newEnv(t)
	c := e.clinic(t)
	ctx := context.Background()

	assert.Equal(t, c.city.ID, c.patient.CityID)
	assert.Equal(t, models.FormatPatientNumber(c.hospital.ID, 1), c.patient.PatientNumber)

	next := &models.Patient{HospitalID: c.hospital.ID, FirstName: "حيدر", LastName: "الساعدي"}
	require.NoError(t, e.svc.Patients.Create(ctx, next))
	assert.Equal(t, models.FormatPatientNumber(c.hospital.ID, 2), next.PatientNumber)
}

func TestPatientUpdateKeepsImmutableFields(t *testing.T) {
	e := newEnv(t)
	c := e.clinic(t)
	ctx := context.Background()

	other := &models.Hospital{Name: "مستشفى اليرموك", CityID: c.city.ID}
	require.NoError(t, e.svc.Hospitals.Create(ctx, other))

	update := &models.Patient{HospitalID: other.ID, FirstName: "زينب", LastName: "العبيدي", PatientNumber: "HACKED"}
	require.NoError(t, e.svc.Patients.Update(ctx, c.patient.ID, update))

	stored, err := e.svc.Patients.Get(ctx, c.patient.ID)
	require.NoError(t, err)
	assert.Equal(t, "العبيدي", stored.LastName)
	assert.Equal(t, c.hospital.ID, stored.HospitalID)
	assert.Equal(t, c.patient.PatientNumber, stored.PatientNumber)
}

func TestPatientValidationAndMissingRefs(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	err := e.svc.Patients.Create(ctx, &models.Patient{FirstName: "بلا", LastName: "مستشفى"})
	assert.ErrorIs(t, err, models.ErrValidation)

	err = e.svc.Patients.Create(ctx, &models.Patient{HospitalID: "missing", FirstName: "أ", LastName: "ب"})
	assert.ErrorIs(t, err, models.ErrValidation)

	err = e.svc.Patients.Update(ctx, "missing", &models.Patient{FirstName: "أ", LastName: "ب"})
	assert.ErrorIs(t, err, models.ErrNotFound)
}

func TestPatientDeleteCascades(t *testing.T) {
	e := newEnv(t)
	c := e.clinic(t)
	ctx := context.Background()

	_, err := e.svc.Visits.Finalize(ctx, &models.VisitForm{
		PatientID: c.patient.ID, DoctorID: c.doctor.ID, HospitalID: c.hospital.ID,
		ScheduledAt:  "2024-05-01T10:00:00Z",
		VisitRecords: models.VisitRecords{Tests: []models.TestInput{{Name: "سكر الدم"}}},
	})
	require.NoError(t, err)

	require.NoError(t, e.svc.Patients.Delete(ctx, c.patient.ID))
	assert.Zero(t, e.count(t, &models.Visit{}, ""))
	assert.Zero(t, e.count(t, &models.Test{}, ""))
}

func TestCityNamesAreUnique(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	require.NoError(t, e.svc.Cities.Create(ctx, &models.City{Name: "النجف"}))
	err := e.svc.Cities.Create(ctx, &models.City{Name: "النجف"})
	assert.ErrorIs(t, err, models.ErrConflict)
}

func TestCatalogListSearchesCachedRows(t *testing.T) {
	e := newEnv(t)
	c := e.clinic(t)
	ctx := context.Background()

	for _, name := range []string{"تحليل دم شامل", "سكر الدم", "أشعة الصدر"} {
		require.NoError(t, e.svc.HospitalTests.Create(ctx, &models.HospitalTest{HospitalID: c.hospital.ID, Name: name, Category: "مختبر", IsActive: true}))
	}

	q := repositories.ListQuery{Search: "الدم", Filters: map[string]string{"hospitalId": c.hospital.ID}}
	q.Params.Page, q.Params.Limit = 1, 10
	rows, meta, err := e.svc.HospitalTests.List(ctx, q)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
	assert.Equal(t, int64(2), meta.Total)

	// a create invalidates the cached catalog
	require.NoError(t, e.svc.HospitalTests.Create(ctx, &models.HospitalTest{HospitalID: c.hospital.ID, Name: "الدم الخفي", IsActive: true}))
	rows, _, err = e.svc.HospitalTests.List(ctx, q)
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}

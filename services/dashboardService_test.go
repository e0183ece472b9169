package services

import (
	"context"
	"testing"

	"HospitalMS/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardFollowsWrites(t *testing.T) {
	e := newEnv(t)
	c := e.clinic(t)
	ctx := context.Background()

	before, err := e.svc.Dashboard.Stats(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), before.Hospitals)
	assert.Equal(t, int64(1), before.Patients)
	assert.Zero(t, before.Tests)
	assert.Zero(t, before.ActivePrescriptions)
	scopedBefore, err := e.svc.Dashboard.Stats(ctx, c.hospital.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), scopedBefore.Patients)

	other := &models.Hospital{Name: "مستشفى اليرموك", CityID: c.city.ID}
	require.NoError(t, e.svc.Hospitals.Create(ctx, other))
	require.NoError(t, e.svc.Patients.Create(ctx, &models.Patient{HospitalID: c.hospital.ID, FirstName: "حيدر", LastName: "الساعدي"}))
	test := &models.Test{PatientID: c.patient.ID, DoctorID: c.doctor.ID, HospitalID: c.hospital.ID, Name: "CBC"}
	require.NoError(t, e.svc.Tests.Create(ctx, test))
	require.NoError(t, e.svc.Prescriptions.Create(ctx, &models.Prescription{
		PatientID: c.patient.ID, DoctorID: c.doctor.ID, HospitalID: c.hospital.ID, Medication: "Amoxicillin",
	}))

	after, err := e.svc.Dashboard.Stats(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), after.Hospitals)
	assert.Equal(t, int64(2), after.Patients)
	assert.Equal(t, int64(1), after.Tests)
	assert.Equal(t, int64(1), after.ActivePrescriptions)
	scopedAfter, err := e.svc.Dashboard.Stats(ctx, c.hospital.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), scopedAfter.Patients)

	test.Status = models.OrderCompleted
	require.NoError(t, e.svc.Tests.Update(ctx, test.ID, test))
	require.NoError(t, e.svc.Tests.Delete(ctx, test.ID))
	require.NoError(t, e.svc.Hospitals.Delete(ctx, other.ID))

	final, err := e.svc.Dashboard.Stats(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), final.Hospitals)
	assert.Zero(t, final.Tests)
}

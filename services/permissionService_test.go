package services

import (
	"context"
	"testing"

	"HospitalMS/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionGuard(t *testing.T) {
	e := newEnv(t)
	c := e.clinic(t)
	ctx := context.Background()

	var doctorUser models.User
	require.NoError(t, e.db.First(&doctorUser, "id = ?", c.doctor.UserID).Error)
	doctor := doctorUser.Principal()
	require.NotNil(t, doctor.HospitalID)

	cases := []struct {
		name     string
		p        models.Principal
		resource string
		action   string
		hospital string
		allowed  bool
	}{
		{"doctor writes visits in own hospital", doctor, models.ResourceVisits, models.ActionCreate, c.hospital.ID, true},
		{"doctor reads catalogs", doctor, models.ResourceHospitalTests, models.ActionRead, "", true},
		{"doctor cannot write catalogs", doctor, models.ResourceHospitalTests, models.ActionCreate, "", false},
		{"doctor cannot manage roles", doctor, models.ResourceRoles, models.ActionRead, "", false},
		{"doctor bound to another hospital", doctor, models.ResourceVisits, models.ActionRead, "other-hospital", false},
		{"admin may do anything anywhere", models.Principal{Role: models.RoleAdmin}, models.ResourceRoles, models.ActionDelete, "other-hospital", true},
		{"staff creates patients", models.Principal{Role: models.RoleStaff}, models.ResourcePatients, models.ActionCreate, "", true},
		{"staff cannot write tests", models.Principal{Role: models.RoleStaff}, models.ResourceTests, models.ActionCreate, "", false},
		{"unknown role", models.Principal{Role: "JANITOR"}, models.ResourcePatients, models.ActionRead, "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			allowed, err := e.svc.Permissions.Allowed(ctx, tc.p, tc.resource, tc.action, tc.hospital)
			require.NoError(t, err)
			assert.Equal(t, tc.allowed, allowed)
		})
	}
}

func TestPermissionGuardUsesExplicitRole(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	role, err := e.svc.Users.CreateRole(ctx, &models.RoleRequest{Name: "AUDITOR", Permissions: []string{"dashboard:read"}})
	require.NoError(t, err)

	p := models.Principal{Role: models.RoleStaff, RoleID: &role.ID}
	allowed, err := e.svc.Permissions.Allowed(ctx, p, models.ResourceDashboard, models.ActionRead, "")
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = e.svc.Permissions.Allowed(ctx, p, models.ResourcePatients, models.ActionCreate, "")
	require.NoError(t, err)
	assert.False(t, allowed, "an explicit role replaces the built-in grants")
}

func TestHospitalOfResolvesStoredRows(t *testing.T) {
	e := newEnv(t)
	c := e.clinic(t)
	ctx := context.Background()

	draft, err := e.svc.Visits.SaveDraft(ctx, &models.VisitForm{PatientID: c.patient.ID})
	require.NoError(t, err)
	require.Nil(t, draft.HospitalID)

	cases := []struct {
		resource string
		id       string
		want     string
	}{
		{models.ResourcePatients, c.patient.ID, c.hospital.ID},
		{models.ResourceDoctors, c.doctor.ID, c.hospital.ID},
		{models.ResourceUsers, c.doctor.UserID, c.hospital.ID},
		{models.ResourceHospitals, c.hospital.ID, c.hospital.ID},
		{models.ResourceVisits, draft.ID, c.hospital.ID},
		{models.ResourceCities, c.city.ID, ""},
		{models.ResourcePatients, "missing", ""},
	}
	for _, tc := range cases {
		t.Run(tc.resource, func(t *testing.T) {
			got, err := e.svc.Permissions.HospitalOf(ctx, tc.resource, tc.id)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

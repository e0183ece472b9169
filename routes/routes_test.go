package routes

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"HospitalMS/logger"
	"HospitalMS/middlewares"
	"HospitalMS/models"
	"HospitalMS/services"
	"HospitalMS/testutil"
	"HospitalMS/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type apiClient struct {
	t      *testing.T
	router *gin.Engine
	token  string
}

func (a *apiClient) do(method, path string, body interface{}) *httptest.ResponseRecorder {
	a.t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if a.token != "" {
		req.Header.Set("Authorization", "Bearer "+a.token)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

// data decodes the "data" member of an envelope into dst.
func (a *apiClient) data(w *httptest.ResponseRecorder, dst interface{}) {
	a.t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(a.t, json.Unmarshal(w.Body.Bytes(), &envelope), w.Body.String())
	require.NoError(a.t, json.Unmarshal(envelope.Data, dst))
}

func (a *apiClient) create(path string, body interface{}) string {
	a.t.Helper()
	w := a.do(http.MethodPost, path, body)
	require.Equal(a.t, http.StatusCreated, w.Code, w.Body.String())
	var created struct {
		ID string `json:"id"`
	}
	a.data(w, &created)
	require.NotEmpty(a.t, created.ID)
	return created.ID
}

func newAPI(t *testing.T) (*apiClient, *services.Services) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	c, _ := testutil.NewCache(t)
	tokens, err := utils.NewTokenMaker(testutil.TestSymmetricKey)
	require.NoError(t, err)

	svc := services.New(services.Dependencies{DB: db, Cache: c, Log: logger.Nop(), Tokens: tokens})
	router := SetupRoutes(Dependencies{DB: db, Log: logger.Nop(), Tokens: tokens, Registry: prometheus.NewRegistry()}, svc)
	return &apiClient{t: t, router: router}, svc
}

func login(a *apiClient, email, password string) string {
	a.t.Helper()
	w := a.do(http.MethodPost, "/auth/login", models.LoginRequest{Email: email, Password: password})
	require.Equal(a.t, http.StatusOK, w.Code, w.Body.String())
	var session struct {
		AccessToken string `json:"accessToken"`
	}
	a.data(w, &session)
	require.NotEmpty(a.t, session.AccessToken)
	return session.AccessToken
}

func TestCompletedVisitFlow(t *testing.T) {
	api, svc := newAPI(t)
	_, err := svc.Users.Create(context.Background(), &models.UserRequest{
		Email: "admin@hospital.iq", Name: "المدير", Password: "Admin@12345", Role: models.RoleAdmin,
	})
	require.NoError(t, err)

	w := api.do(http.MethodGet, "/api/cities", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	api.token = login(api, "admin@hospital.iq", "Admin@12345")

	cityID := api.create("/api/cities", map[string]string{"name": "بغداد"})
	w = api.do(http.MethodPost, "/api/cities", map[string]string{"name": "بغداد"})
	assert.Equal(t, http.StatusConflict, w.Code)

	hospitalID := api.create("/api/hospitals", map[string]string{"name": "مستشفى الكندي", "cityId": cityID})
	doctorID := api.create("/api/doctors", map[string]string{
		"name": "علي حسين", "email": "ali@hospital.iq", "password": "Doctor@12345",
		"hospitalId": hospitalID, "specialization": "باطنية",
	})
	patientID := api.create("/api/patients", map[string]string{
		"hospitalId": hospitalID, "firstName": "زينب", "lastName": "الربيعي",
	})

	visitID := api.create("/api/visits", map[string]interface{}{
		"patientId":   patientID,
		"doctorId":    doctorID,
		"hospitalId":  hospitalID,
		"scheduledAt": "2024-05-01T10:00:00Z",
		"status":      models.VisitCompleted,
		"tests":       []map[string]string{{"name": "تحليل دم شامل"}},
	})

	w = api.do(http.MethodGet, "/api/visits?patientId="+patientID, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var list struct {
		Data []struct {
			ID     string `json:"id"`
			Status string `json:"status"`
			Tests  []struct {
				Name      string `json:"name"`
				PatientID string `json:"patientId"`
			} `json:"tests"`
		} `json:"data"`
		Pagination struct {
			Total int64 `json:"total"`
		} `json:"pagination"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, int64(1), list.Pagination.Total)
	assert.Equal(t, visitID, list.Data[0].ID)
	assert.Equal(t, string(models.VisitCompleted), list.Data[0].Status)
	require.Len(t, list.Data[0].Tests, 1)
	assert.Equal(t, "تحليل دم شامل", list.Data[0].Tests[0].Name)
	assert.Equal(t, patientID, list.Data[0].Tests[0].PatientID)

	w = api.do(http.MethodPatch, "/api/visits/"+visitID+"/status", map[string]string{"status": string(models.VisitScheduled)})
	assert.Equal(t, http.StatusConflict, w.Code, "completed visits cannot go back to scheduled")
}

func TestMissingAssignmentIsBadRequest(t *testing.T) {
	api, svc := newAPI(t)
	_, err := svc.Users.Create(context.Background(), &models.UserRequest{Email: "admin@hospital.iq", Password: "Admin@12345", Role: models.RoleAdmin})
	require.NoError(t, err)
	api.token = login(api, "admin@hospital.iq", "Admin@12345")

	cityID := api.create("/api/cities", map[string]string{"name": "البصرة"})
	hospitalID := api.create("/api/hospitals", map[string]string{"name": "مستشفى البصرة العام", "cityId": cityID})
	patientID := api.create("/api/patients", map[string]string{"hospitalId": hospitalID, "firstName": "حسن", "lastName": "علي"})

	w := api.do(http.MethodPost, "/api/visits", map[string]interface{}{
		"patientId": patientID,
		"status":    models.VisitCompleted,
		"tests":     []map[string]string{{"name": "سكر الدم"}},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body middlewares.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, middlewares.MsgMissingAssign, body.Message)
}

func TestDoctorIsScopedToOwnHospital(t *testing.T) {
	api, svc := newAPI(t)
	ctx := context.Background()

	city := &models.City{Name: "أربيل"}
	require.NoError(t, svc.Cities.Create(ctx, city))
	own := &models.Hospital{Name: "مستشفى رزكاري", CityID: city.ID}
	other := &models.Hospital{Name: "مستشفى الطوارئ", CityID: city.ID}
	require.NoError(t, svc.Hospitals.Create(ctx, own))
	require.NoError(t, svc.Hospitals.Create(ctx, other))
	for _, h := range []*models.Hospital{own, other} {
		require.NoError(t, svc.Patients.Create(ctx, &models.Patient{HospitalID: h.ID, FirstName: "آزاد", LastName: "كريم"}))
	}
	_, err := svc.Doctors.Create(ctx, &models.DoctorRequest{
		AccountFields:  models.AccountFields{Name: "دلشاد", Email: "dilshad@hospital.iq", Password: "Doctor@12345", HospitalID: own.ID},
		Specialization: "جراحة",
	})
	require.NoError(t, err)

	api.token = login(api, "dilshad@hospital.iq", "Doctor@12345")

	w := api.do(http.MethodGet, "/api/patients", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var list struct {
		Data []models.Patient `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	require.Len(t, list.Data, 1)
	assert.Equal(t, own.ID, list.Data[0].HospitalID)

	w = api.do(http.MethodPost, "/api/patients", map[string]string{"hospitalId": other.ID, "firstName": "x", "lastName": "y"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, "/admin/roles", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHealthAndMetrics(t *testing.T) {
	api, _ := newAPI(t)

	w := api.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = api.do(http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "http_requests_total")
}

func TestHospitalScopeAppliesToStoredRows(t *testing.T) {
	api, svc := newAPI(t)
	ctx := context.Background()

	city := &models.City{Name: "الموصل"}
	require.NoError(t, svc.Cities.Create(ctx, city))
	own := &models.Hospital{Name: "مستشفى السلام", CityID: city.ID}
	other := &models.Hospital{Name: "مستشفى الجمهوري", CityID: city.ID}
	require.NoError(t, svc.Hospitals.Create(ctx, own))
	require.NoError(t, svc.Hospitals.Create(ctx, other))

	ownPatient := &models.Patient{HospitalID: own.ID, FirstName: "عمر", LastName: "يونس"}
	otherPatient := &models.Patient{HospitalID: other.ID, FirstName: "نور", LastName: "حازم"}
	require.NoError(t, svc.Patients.Create(ctx, ownPatient))
	require.NoError(t, svc.Patients.Create(ctx, otherPatient))

	ownVisit, err := svc.Visits.SaveDraft(ctx, &models.VisitForm{PatientID: ownPatient.ID})
	require.NoError(t, err)
	// no hospital on the draft, it belongs to the patient's hospital
	otherVisit, err := svc.Visits.SaveDraft(ctx, &models.VisitForm{PatientID: otherPatient.ID})
	require.NoError(t, err)

	_, err = svc.Doctors.Create(ctx, &models.DoctorRequest{
		AccountFields:  models.AccountFields{Name: "سعد", Email: "saad@hospital.iq", Password: "Doctor@12345", HospitalID: own.ID},
		Specialization: "أطفال",
	})
	require.NoError(t, err)
	api.token = login(api, "saad@hospital.iq", "Doctor@12345")

	w := api.do(http.MethodGet, "/api/patients/"+ownPatient.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code)
	w = api.do(http.MethodGet, "/api/patients/"+otherPatient.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = api.do(http.MethodGet, "/api/visits/"+otherVisit.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(http.MethodPatch, "/api/visits/"+otherVisit.ID+"/status", map[string]string{"status": string(models.VisitCancelled)})
	assert.Equal(t, http.StatusForbidden, w.Code)
	w = api.do(http.MethodPut, "/api/visits/"+otherVisit.ID, map[string]string{"patientId": otherPatient.ID, "hospitalId": own.ID})
	assert.Equal(t, http.StatusForbidden, w.Code, "claiming the caller's hospital does not unlock a foreign row")
	w = api.do(http.MethodPost, "/api/visits", map[string]string{"patientId": otherPatient.ID})
	assert.Equal(t, http.StatusForbidden, w.Code, "a visit for a foreign patient")

	w = api.do(http.MethodPatch, "/api/visits/"+ownVisit.ID+"/status", map[string]string{"status": string(models.VisitCancelled)})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	role, err := svc.Users.CreateRole(ctx, &models.RoleRequest{Name: "RECORDS", Permissions: []string{"visits:read", "visits:delete"}})
	require.NoError(t, err)
	_, err = svc.Users.Create(ctx, &models.UserRequest{
		Email: "records@hospital.iq", Password: "Records@123", Role: models.RoleStaff, RoleID: role.ID, HospitalID: own.ID,
	})
	require.NoError(t, err)
	api.token = login(api, "records@hospital.iq", "Records@123")

	w = api.do(http.MethodDelete, "/api/visits/"+otherVisit.ID, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	_, err = svc.Visits.Get(ctx, otherVisit.ID)
	assert.NoError(t, err, "the foreign visit is untouched")

	w = api.do(http.MethodDelete, "/api/visits/"+ownVisit.ID, nil)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

package middlewares

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"HospitalMS/models"
	"HospitalMS/utils"

	"github.com/gin-gonic/gin"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestHttpErrorMapping(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"missing assignment", models.ErrMissingAssignment, http.StatusBadRequest, MsgMissingAssign},
		{"validation", fmt.Errorf("%w: %w", models.ErrValidation, validation.Errors{"name": errors.New("cannot be blank")}), http.StatusBadRequest, MsgInvalidInput},
		{"unauthorized", models.ErrUnauthorized, http.StatusUnauthorized, MsgUnauthorized},
		{"forbidden", models.ErrForbidden, http.StatusForbidden, MsgForbidden},
		{"not found", fmt.Errorf("load: %w", models.ErrNotFound), http.StatusNotFound, MsgNotFound},
		{"transition", models.ErrInvalidTransition, http.StatusConflict, MsgTransition},
		{"conflict", models.ErrConflict, http.StatusConflict, MsgConflict},
		{"internal", errors.New("pq: connection refused"), http.StatusInternalServerError, MsgInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

			HttpError(c, tt.err)

			assert.Equal(t, tt.status, w.Code)
			var body Envelope
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.False(t, body.Success)
			assert.Equal(t, tt.message, body.Message)
			assert.NotContains(t, w.Body.String(), "connection refused")
		})
	}
}

func TestValidationErrorsAreFlattened(t *testing.T) {
	err := fmt.Errorf("%w: %w", models.ErrValidation, validation.Errors{
		"name":  errors.New("cannot be blank"),
		"tests": validation.Errors{"0": validation.Errors{"name": errors.New("cannot be blank")}},
	})
	_, body := errorBody(err)
	assert.Equal(t, map[string]string{
		"name":         "cannot be blank",
		"tests.0.name": "cannot be blank",
	}, body.Errors)
}

func TestRateLimiter(t *testing.T) {
	r := gin.New()
	r.Use(NewRateLimiterMiddleware(RateLimiterConfig{RequestsPerSecond: 1, Burst: 2}))
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code, "limits are per client")
}

type stubAuthorizer struct {
	allowed  bool
	hospital string
	// stored maps "resource/id" to the hospital of the row.
	stored map[string]string
}

func (s *stubAuthorizer) Allowed(_ context.Context, p models.Principal, _, _, hospitalID string) (bool, error) {
	s.hospital = hospitalID
	if p.HospitalID != nil && hospitalID != "" && *p.HospitalID != hospitalID {
		return false, nil
	}
	return s.allowed, nil
}

func (s *stubAuthorizer) HospitalOf(_ context.Context, resource, id string) (string, error) {
	return s.stored[resource+"/"+id], nil
}

func authRouter(t *testing.T, auth Authorizer) (*gin.Engine, *utils.TokenMaker) {
	t.Helper()
	tokens, err := utils.NewTokenMaker("0123456789abcdef0123456789abcdef")
	require.NoError(t, err)

	r := gin.New()
	g := r.Group("/", TokenAuthMiddleware(tokens))
	g.POST("/patients", RequirePermission(auth, models.ResourcePatients, models.ActionCreate), func(c *gin.Context) {
		var body map[string]interface{}
		require.NoError(t, c.ShouldBindJSON(&body))
		c.JSON(http.StatusCreated, body)
	})
	g.PUT("/visits/:id", RequirePermission(auth, models.ResourceVisits, models.ActionUpdate), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	g.GET("/me", func(c *gin.Context) {
		p, _ := CurrentPrincipal(c)
		c.JSON(http.StatusOK, gin.H{"email": p.Email, "scope": ScopedHospital(c)})
	})
	return r, tokens
}

func TestTokenAuthMiddleware(t *testing.T) {
	r, tokens := authRouter(t, &stubAuthorizer{allowed: true})
	hospital := "h-1"
	access, refresh, err := tokens.GenerateTokens(models.Principal{UserID: "u", Email: "d@hospital.iq", Role: models.RoleDoctor, HospitalID: &hospital})
	require.NoError(t, err)

	cases := []struct {
		name   string
		header string
		cookie string
		status int
	}{
		{"missing token", "", "", http.StatusUnauthorized},
		{"garbage token", "Bearer nope", "", http.StatusUnauthorized},
		{"refresh token is not an access token", "Bearer " + refresh, "", http.StatusUnauthorized},
		{"basic scheme", "Basic " + access, "", http.StatusUnauthorized},
		{"bearer header", "Bearer " + access, "", http.StatusOK},
		{"cookie", "", access, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			if tc.cookie != "" {
				req.AddCookie(&http.Cookie{Name: utils.AccessTokenCookie, Value: tc.cookie})
			}
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
			if tc.status == http.StatusOK {
				assert.JSONEq(t, `{"email":"d@hospital.iq","scope":"h-1"}`, w.Body.String())
			}
		})
	}
}

func TestRequirePermissionReadsHospitalFromBody(t *testing.T) {
	auth := &stubAuthorizer{allowed: true}
	r, tokens := authRouter(t, auth)
	access, _, err := tokens.GenerateTokens(models.Principal{UserID: "u", Role: models.RoleStaff})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/patients", strings.NewReader(`{"hospitalId":"h-9","firstName":"زينب"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+access)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "h-9", auth.hospital)
	assert.Contains(t, w.Body.String(), "زينب", "the body is still readable by the handler")

	auth.allowed = false
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/patients?hospitalId=h-3", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+access)
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "h-3", auth.hospital)
}

func TestRequirePermissionChecksStoredRow(t *testing.T) {
	auth := &stubAuthorizer{allowed: true, stored: map[string]string{
		"visits/own":     "h-1",
		"visits/foreign": "h-2",
		"patients/p-2":   "h-2",
	}}
	r, tokens := authRouter(t, auth)
	hospital := "h-1"
	access, _, err := tokens.GenerateTokens(models.Principal{UserID: "u", Role: models.RoleDoctor, HospitalID: &hospital})
	require.NoError(t, err)

	cases := []struct {
		name   string
		id     string
		body   string
		status int
	}{
		{"own visit", "own", `{}`, http.StatusOK},
		{"foreign visit without hospital in body", "foreign", `{}`, http.StatusForbidden},
		{"foreign visit claiming own hospital", "foreign", `{"hospitalId":"h-1"}`, http.StatusForbidden},
		{"own visit moved to another hospital", "own", `{"hospitalId":"h-2"}`, http.StatusForbidden},
		{"own visit pointed at a foreign patient", "own", `{"patientId":"p-2"}`, http.StatusForbidden},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPut, "/visits/"+tc.id, strings.NewReader(tc.body))
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Authorization", "Bearer "+access)
			r.ServeHTTP(w, req)
			assert.Equal(t, tc.status, w.Code)
		})
	}
}

func TestRequestIDAndRecovery(t *testing.T) {
	r := gin.New()
	r.Use(Recovery(zerolog.Nop()), RequestLogger(zerolog.Nop()))
	r.GET("/panic", func(c *gin.Context) { panic("boom") })
	r.GET("/ok", func(c *gin.Context) { c.String(http.StatusOK, RequestID(c)) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ok", nil)
	req.Header.Set(RequestIDHeader, "req-42")
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Body.String())
	assert.Equal(t, "req-42", w.Header().Get(RequestIDHeader))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), MsgInternal)
}

func TestMetricsUseRouteTemplates(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	r := gin.New()
	r.Use(m.Handler())
	r.GET("/api/patients/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	for _, id := range []string{"a", "b"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/patients/"+id, nil))
	}
	assert.Equal(t, 1, testutil.CollectAndCount(m.requests))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.requests.WithLabelValues(http.MethodGet, "/api/patients/:id", "204")))
}

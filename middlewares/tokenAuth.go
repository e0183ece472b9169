package middlewares

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"HospitalMS/models"
	"HospitalMS/utils"

	"github.com/gin-gonic/gin"
)

const principalKey = "principal"

// Authorizer decides whether a principal may act on a resource.
type Authorizer interface {
	Allowed(ctx context.Context, p models.Principal, resource, action, hospitalID string) (bool, error)
	// HospitalOf resolves the hospital a stored row of resource belongs to.
	HospitalOf(ctx context.Context, resource, id string) (string, error)
}

// TokenAuthMiddleware validates the access token and stores the caller in the context.
// The token is read from the Authorization header, falling back to the access cookie.
func TokenAuthMiddleware(tokens *utils.TokenMaker) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Envelope{Message: MsgUnauthorized})
			return
		}

		claims, err := tokens.ValidateToken(token, utils.TokenKindAccess)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Envelope{Message: MsgUnauthorized})
			return
		}

		c.Set(principalKey, claims.Principal())
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if token, ok := strings.CutPrefix(header, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	token, _ := c.Cookie(utils.AccessTokenCookie)
	return token
}

// RequirePermission rejects callers whose role lacks resource:action, or who are
// bound to another hospital than any the request touches: the stored row addressed
// by :id, the hospitalId of the path, query or body, and the patient of the body.
func RequirePermission(auth Authorizer, resource, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := CurrentPrincipal(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, Envelope{Message: MsgUnauthorized})
			return
		}

		hospitals, err := targetHospitals(c, auth, resource)
		if err != nil {
			HttpError(c, err)
			return
		}
		for _, hospitalID := range hospitals {
			allowed, err := auth.Allowed(c.Request.Context(), p, resource, action, hospitalID)
			if err != nil {
				HttpError(c, err)
				return
			}
			if !allowed {
				c.AbortWithStatusJSON(http.StatusForbidden, Envelope{Message: MsgForbidden})
				return
			}
		}
		c.Next()
	}
}

// targetHospitals lists the distinct hospitals a request addresses. It always holds at
// least one entry, "" when nothing names a hospital.
func targetHospitals(c *gin.Context, auth Authorizer, resource string) ([]string, error) {
	ctx := c.Request.Context()
	var found []string
	add := func(id string) {
		if id == "" {
			return
		}
		for _, h := range found {
			if h == id {
				return
			}
		}
		found = append(found, id)
	}

	if id := c.Param("id"); id != "" {
		stored, err := auth.HospitalOf(ctx, resource, id)
		if err != nil {
			return nil, err
		}
		add(stored)
	}
	add(c.Param("hospitalId"))
	add(c.Query("hospitalId"))

	body := bodyRefs(c)
	add(body.HospitalID)
	if body.PatientID != "" && resource != models.ResourcePatients {
		patientHospital, err := auth.HospitalOf(ctx, models.ResourcePatients, body.PatientID)
		if err != nil {
			return nil, err
		}
		add(patientHospital)
	}

	if len(found) == 0 {
		found = append(found, "")
	}
	return found, nil
}

type bodyReferences struct {
	HospitalID string `json:"hospitalId"`
	PatientID  string `json:"patientId"`
}

// bodyRefs peeks at a JSON body and restores it for the handler.
func bodyRefs(c *gin.Context) bodyReferences {
	var refs bodyReferences
	if c.Request.Body == nil || !strings.HasPrefix(c.ContentType(), "application/json") {
		return refs
	}

	body, err := io.ReadAll(c.Request.Body)
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if err != nil || len(body) == 0 {
		return refs
	}
	_ = json.Unmarshal(body, &refs)
	return refs
}

// CurrentPrincipal returns the authenticated caller.
func CurrentPrincipal(c *gin.Context) (models.Principal, bool) {
	v, ok := c.Get(principalKey)
	if !ok {
		return models.Principal{}, false
	}
	p, ok := v.(models.Principal)
	return p, ok
}

// ScopedHospital is the hospital a non-admin caller is bound to, or "".
func ScopedHospital(c *gin.Context) string {
	p, ok := CurrentPrincipal(c)
	if !ok || p.Role == models.RoleAdmin || p.HospitalID == nil {
		return ""
	}
	return *p.HospitalID
}

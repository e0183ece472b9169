package handlers

import (
	"context"
	"net/http"
	"time"

	"HospitalMS/middlewares"
	"HospitalMS/models"
	"HospitalMS/services"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	dashboard   *services.DashboardService
	permissions *services.PermissionService
}

func NewDashboardHandler(dashboard *services.DashboardService, permissions *services.PermissionService) *DashboardHandler {
	return &DashboardHandler{dashboard: dashboard, permissions: permissions}
}

// Stats answers for the requested hospital; hospital bound callers always get their own.
func (h *DashboardHandler) Stats(c *gin.Context) {
	hospitalID := c.Query("hospitalId")
	if scoped := middlewares.ScopedHospital(c); scoped != "" {
		hospitalID = scoped
	}

	stats, err := h.dashboard.Stats(c.Request.Context(), hospitalID)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondData(c, http.StatusOK, "", stats)
}

// CheckPermission reports whether the caller may perform an action, for UI affordances.
func (h *DashboardHandler) CheckPermission(c *gin.Context) {
	p, ok := middlewares.CurrentPrincipal(c)
	if !ok {
		middlewares.HttpError(c, models.ErrUnauthorized)
		return
	}

	allowed, err := h.permissions.Allowed(c.Request.Context(), p, c.Query("resource"), c.Query("action"), c.Query("hospitalId"))
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondData(c, http.StatusOK, "", gin.H{"allowed": allowed})
}

// HealthHandler reports liveness including the database connection.
type HealthHandler struct {
	ping func(ctx context.Context) error
}

func NewHealthHandler(ping func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{ping: ping}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.ping(ctx); err != nil {
		middlewares.Logger(c).Error().Err(err).Msg("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "down"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "up"})
}

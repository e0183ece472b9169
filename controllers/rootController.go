package controllers

import (
	"net/http"

	"HospitalMS/handlers"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// rootHandler handles requests to the root path
func rootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"service": "hms", "message": "Hospital management API"})
}

// SetupRootRoute sets up the unauthenticated service routes
func SetupRootRoute(router *gin.Engine, health *handlers.HealthHandler, gatherer prometheus.Gatherer) {
	router.GET("/", rootHandler)
	router.GET("/health", health.Health)
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

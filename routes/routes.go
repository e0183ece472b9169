package routes

import (
	"context"

	"HospitalMS/controllers"
	"HospitalMS/database"
	"HospitalMS/handlers"
	"HospitalMS/middlewares"
	"HospitalMS/models"
	"HospitalMS/services"
	"HospitalMS/utils"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Dependencies are the HTTP level settings the router is built from.
type Dependencies struct {
	DB        *gorm.DB
	Log       zerolog.Logger
	Tokens    *utils.TokenMaker
	Registry  *prometheus.Registry
	Cors      *middlewares.CorsConfig
	RateLimit middlewares.RateLimiterConfig
	Release   bool
}

// SetupRoutes initializes the routes and middleware for the server
func SetupRoutes(deps Dependencies, svc *services.Services) *gin.Engine {
	if deps.Release {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middlewares.Recovery(deps.Log))
	router.Use(middlewares.RequestLogger(deps.Log))
	if deps.Registry != nil {
		router.Use(middlewares.NewMetrics(deps.Registry).Handler())
	}
	if deps.Cors != nil {
		router.Use(middlewares.CorsMiddleware(deps.Cors))
	}
	router.Use(middlewares.SecurityHeaders())
	if deps.RateLimit.RequestsPerSecond > 0 {
		router.Use(middlewares.NewRateLimiterMiddleware(deps.RateLimit))
	}

	health := handlers.NewHealthHandler(func(ctx context.Context) error { return database.Ping(ctx, deps.DB) })
	gatherer := prometheus.Gatherer(prometheus.DefaultGatherer)
	if deps.Registry != nil {
		gatherer = deps.Registry
	}
	controllers.SetupRootRoute(router, health, gatherer)

	authController := controllers.NewAuthController(handlers.NewAuthHandler(svc.Auth), deps.Tokens)
	authController.RegisterRoutes(router)

	dashboard := handlers.NewDashboardHandler(svc.Dashboard, svc.Permissions)
	auth := middlewares.TokenAuthMiddleware(deps.Tokens)

	api := router.Group("/api", auth)
	api.GET("/permissions/check", dashboard.CheckPermission)
	controllers.Register(api, svc.Permissions, controllers.APIRoutes(controllers.APIHandlers{
		Cities:             handlers.NewCrudHandler[models.City](svc.Cities),
		Hospitals:          handlers.NewCrudHandler[models.Hospital](svc.Hospitals),
		Doctors:            handlers.NewAccountHandler[models.Doctor, models.DoctorRequest](svc.Doctors),
		Staff:              handlers.NewAccountHandler[models.Staff, models.StaffRequest](svc.Staff),
		Patients:           handlers.NewCrudHandler[models.Patient](svc.Patients),
		Tests:              handlers.NewCrudHandler[models.Test](svc.Tests),
		Treatments:         handlers.NewCrudHandler[models.Treatment](svc.Treatments),
		Operations:         handlers.NewCrudHandler[models.Operation](svc.Operations),
		Diseases:           handlers.NewCrudHandler[models.Disease](svc.Diseases),
		Prescriptions:      handlers.NewCrudHandler[models.Prescription](svc.Prescriptions),
		HospitalTests:      handlers.NewCrudHandler[models.HospitalTest](svc.HospitalTests),
		HospitalTreatments: handlers.NewCrudHandler[models.HospitalTreatment](svc.HospitalTreatments),
		HospitalOperations: handlers.NewCrudHandler[models.HospitalOperation](svc.HospitalOperations),
		HospitalDiseases:   handlers.NewCrudHandler[models.HospitalDisease](svc.HospitalDiseases),
		Visits:             handlers.NewVisitHandler(svc.Visits),
		Dashboard:          dashboard,
	}))

	admin := router.Group("/admin", auth)
	controllers.Register(admin, svc.Permissions, controllers.AdminRoutes(controllers.AdminHandlers{
		Users: handlers.NewAccountHandler[models.User, models.UserRequest](svc.Users),
		Roles: handlers.NewRoleHandler(svc.Users),
	}))

	return router
}

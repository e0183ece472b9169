package controllers

import (
	"net/http"

	"HospitalMS/handlers"
	"HospitalMS/middlewares"
	"HospitalMS/models"

	"github.com/gin-gonic/gin"
)

// Route is one protected endpoint and the permission it requires.
type Route struct {
	Method   string
	Path     string
	Handler  gin.HandlerFunc
	Resource string
	Action   string
}

// crudEndpoints is the handler set every resource exposes.
type crudEndpoints interface {
	List(c *gin.Context)
	Get(c *gin.Context)
	Create(c *gin.Context)
	Update(c *gin.Context)
	Delete(c *gin.Context)
}

// CrudRoutes maps the five standard endpoints of a resource under /<resource>.
func CrudRoutes(resource string, h crudEndpoints) []Route {
	base := "/" + resource
	return []Route{
		{http.MethodGet, base, h.List, resource, models.ActionRead},
		{http.MethodGet, base + "/:id", h.Get, resource, models.ActionRead},
		{http.MethodPost, base, h.Create, resource, models.ActionCreate},
		{http.MethodPut, base + "/:id", h.Update, resource, models.ActionUpdate},
		{http.MethodDelete, base + "/:id", h.Delete, resource, models.ActionDelete},
	}
}

// APIHandlers groups the handlers mounted under /api.
type APIHandlers struct {
	Cities             crudEndpoints
	Hospitals          crudEndpoints
	Doctors            crudEndpoints
	Staff              crudEndpoints
	Patients           crudEndpoints
	Tests              crudEndpoints
	Treatments         crudEndpoints
	Operations         crudEndpoints
	Diseases           crudEndpoints
	Prescriptions      crudEndpoints
	HospitalTests      crudEndpoints
	HospitalTreatments crudEndpoints
	HospitalOperations crudEndpoints
	HospitalDiseases   crudEndpoints
	Visits             *handlers.VisitHandler
	Dashboard          *handlers.DashboardHandler
}

// APIRoutes is the full /api route table.
func APIRoutes(h APIHandlers) []Route {
	var routes []Route
	for _, r := range []struct {
		resource string
		handler  crudEndpoints
	}{
		{models.ResourceCities, h.Cities},
		{models.ResourceHospitals, h.Hospitals},
		{models.ResourceDoctors, h.Doctors},
		{models.ResourceStaff, h.Staff},
		{models.ResourcePatients, h.Patients},
		{models.ResourceTests, h.Tests},
		{models.ResourceTreatments, h.Treatments},
		{models.ResourceOperations, h.Operations},
		{models.ResourceDiseases, h.Diseases},
		{models.ResourcePrescriptions, h.Prescriptions},
		{models.ResourceHospitalTests, h.HospitalTests},
		{models.ResourceHospitalTreatments, h.HospitalTreatments},
		{models.ResourceHospitalOperations, h.HospitalOperations},
		{models.ResourceHospitalDiseases, h.HospitalDiseases},
	} {
		routes = append(routes, CrudRoutes(r.resource, r.handler)...)
	}

	visits := "/" + models.ResourceVisits
	routes = append(routes, CrudRoutes(models.ResourceVisits, h.Visits)...)
	routes = append(routes,
		Route{http.MethodGet, visits + "/:id/form", h.Visits.Form, models.ResourceVisits, models.ActionRead},
		Route{http.MethodPatch, visits + "/:id/status", h.Visits.SetStatus, models.ResourceVisits, models.ActionUpdate},
		Route{http.MethodGet, "/dashboard/stats", h.Dashboard.Stats, models.ResourceDashboard, models.ActionRead},
	)
	return routes
}

// AdminHandlers groups the handlers mounted under /admin.
type AdminHandlers struct {
	Users crudEndpoints
	Roles *handlers.RoleHandler
}

func AdminRoutes(h AdminHandlers) []Route {
	routes := CrudRoutes(models.ResourceUsers, h.Users)
	routes = append(routes,
		Route{http.MethodGet, "/roles", h.Roles.List, models.ResourceRoles, models.ActionRead},
		Route{http.MethodPost, "/roles", h.Roles.Create, models.ResourceRoles, models.ActionCreate},
		Route{http.MethodPut, "/roles/:id", h.Roles.Update, models.ResourceRoles, models.ActionUpdate},
		Route{http.MethodDelete, "/roles/:id", h.Roles.Delete, models.ResourceRoles, models.ActionDelete},
		Route{http.MethodGet, "/permissions", h.Roles.Permissions, models.ResourceRoles, models.ActionRead},
	)
	return routes
}

// Register mounts every route on group behind the permission it names.
func Register(group *gin.RouterGroup, auth middlewares.Authorizer, routes []Route) {
	for _, r := range routes {
		group.Handle(r.Method, r.Path, middlewares.RequirePermission(auth, r.Resource, r.Action), r.Handler)
	}
}

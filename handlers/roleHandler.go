package handlers

import (
	"net/http"

	"HospitalMS/middlewares"
	"HospitalMS/models"
	"HospitalMS/repositories"
	"HospitalMS/services"

	"github.com/gin-gonic/gin"
)

// RoleHandler manages roles and lists the permission catalog.
type RoleHandler struct {
	service *services.UserService
}

func NewRoleHandler(service *services.UserService) *RoleHandler {
	return &RoleHandler{service: service}
}

func (h *RoleHandler) List(c *gin.Context) {
	roles, meta, err := h.service.ListRoles(c.Request.Context(), ListQuery(c, repositories.RoleSpec))
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondList(c, roles, meta)
}

func (h *RoleHandler) Create(c *gin.Context) {
	var req models.RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.BadRequest(c, err)
		return
	}
	role, err := h.service.CreateRole(c.Request.Context(), &req)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondData(c, http.StatusCreated, middlewares.MsgCreated, role)
}

func (h *RoleHandler) Update(c *gin.Context) {
	var req models.RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.BadRequest(c, err)
		return
	}
	role, err := h.service.UpdateRole(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondData(c, http.StatusOK, middlewares.MsgUpdated, role)
}

func (h *RoleHandler) Delete(c *gin.Context) {
	if err := h.service.DeleteRole(c.Request.Context(), c.Param("id")); err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondData(c, http.StatusOK, middlewares.MsgDeleted, nil)
}

func (h *RoleHandler) Permissions(c *gin.Context) {
	perms, err := h.service.ListPermissions(c.Request.Context())
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondData(c, http.StatusOK, "", perms)
}

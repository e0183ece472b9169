package handlers

import (
	"net/http"

	"HospitalMS/middlewares"
	"HospitalMS/models"
	"HospitalMS/services"

	"github.com/gin-gonic/gin"
)

type VisitHandler struct {
	service *services.VisitService
}

func NewVisitHandler(service *services.VisitService) *VisitHandler {
	return &VisitHandler{service: service}
}

func (h *VisitHandler) List(c *gin.Context) {
	visits, meta, err := h.service.List(c.Request.Context(), ListQuery(c, h.service.Spec()))
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondList(c, visits, meta)
}

func (h *VisitHandler) Get(c *gin.Context) {
	visit, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondData(c, http.StatusOK, "", visit)
}

// Form returns the wizard state of a visit, drafts included.
func (h *VisitHandler) Form(c *gin.Context) {
	form, err := h.service.Form(c.Request.Context(), c.Param("id"))
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondData(c, http.StatusOK, "", form)
}

func (h *VisitHandler) Create(c *gin.Context) {
	h.submit(c, "", http.StatusCreated, "تم حفظ الزيارة بنجاح")
}

func (h *VisitHandler) Update(c *gin.Context) {
	h.submit(c, c.Param("id"), http.StatusOK, "تم تحديث الزيارة بنجاح")
}

func (h *VisitHandler) submit(c *gin.Context, id string, status int, message string) {
	var form models.VisitForm
	if err := c.ShouldBindJSON(&form); err != nil {
		middlewares.BadRequest(c, err)
		return
	}
	if id != "" {
		form.ID = id
	}

	visit, err := h.service.Submit(c.Request.Context(), &form)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondData(c, status, message, visit)
}

func (h *VisitHandler) SetStatus(c *gin.Context) {
	var req struct {
		Status models.VisitStatus `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.BadRequest(c, err)
		return
	}

	visit, err := h.service.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondData(c, http.StatusOK, middlewares.MsgUpdated, visit)
}

func (h *VisitHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondData(c, http.StatusOK, middlewares.MsgDeleted, nil)
}

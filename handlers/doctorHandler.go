package handlers

import (
	"context"
	"net/http"

	"HospitalMS/middlewares"
	"HospitalMS/pagination"
	"HospitalMS/repositories"

	"github.com/gin-gonic/gin"
)

// AccountStore is the service surface of resources created from a request payload
// that owns a login account: doctors, staff and admin users.
type AccountStore[T, R any] interface {
	Spec() repositories.QuerySpec
	List(ctx context.Context, q repositories.ListQuery) ([]T, pagination.Meta, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, req *R) (*T, error)
	Update(ctx context.Context, id string, req *R) (*T, error)
	Delete(ctx context.Context, id string) error
}

type AccountHandler[T, R any] struct {
	service AccountStore[T, R]
}

func NewAccountHandler[T, R any](service AccountStore[T, R]) *AccountHandler[T, R] {
	return &AccountHandler[T, R]{service: service}
}

func (h *AccountHandler[T, R]) List(c *gin.Context) {
	rows, meta, err := h.service.List(c.Request.Context(), ListQuery(c, h.service.Spec()))
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondList(c, rows, meta)
}

func (h *AccountHandler[T, R]) Get(c *gin.Context) {
	entity, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondData(c, http.StatusOK, "", entity)
}

func (h *AccountHandler[T, R]) Create(c *gin.Context) {
	var req R
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.BadRequest(c, err)
		return
	}
	entity, err := h.service.Create(c.Request.Context(), &req)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondData(c, http.StatusCreated, middlewares.MsgCreated, entity)
}

func (h *AccountHandler[T, R]) Update(c *gin.Context) {
	var req R
	if err := c.ShouldBindJSON(&req); err != nil {
		middlewares.BadRequest(c, err)
		return
	}
	entity, err := h.service.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondData(c, http.StatusOK, middlewares.MsgUpdated, entity)
}

func (h *AccountHandler[T, R]) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondData(c, http.StatusOK, middlewares.MsgDeleted, nil)
}

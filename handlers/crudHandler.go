package handlers

import (
	"context"
	"net/http"
	"strings"

	"HospitalMS/middlewares"
	"HospitalMS/pagination"
	"HospitalMS/repositories"

	"github.com/gin-gonic/gin"
)

// CrudStore is the service surface behind a plain resource endpoint.
type CrudStore[T any] interface {
	Spec() repositories.QuerySpec
	List(ctx context.Context, q repositories.ListQuery) ([]T, pagination.Meta, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, entity *T) error
	Update(ctx context.Context, id string, entity *T) error
	Delete(ctx context.Context, id string) error
}

// CrudHandler serves list, get, create, update and delete for one resource.
type CrudHandler[T any] struct {
	service CrudStore[T]
}

func NewCrudHandler[T any](service CrudStore[T]) *CrudHandler[T] {
	return &CrudHandler[T]{service: service}
}

func (h *CrudHandler[T]) List(c *gin.Context) {
	rows, meta, err := h.service.List(c.Request.Context(), ListQuery(c, h.service.Spec()))
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondList(c, rows, meta)
}

func (h *CrudHandler[T]) Get(c *gin.Context) {
	entity, err := h.service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondData(c, http.StatusOK, "", entity)
}

func (h *CrudHandler[T]) Create(c *gin.Context) {
	var entity T
	if err := c.ShouldBindJSON(&entity); err != nil {
		middlewares.BadRequest(c, err)
		return
	}
	if err := h.service.Create(c.Request.Context(), &entity); err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondData(c, http.StatusCreated, middlewares.MsgCreated, entity)
}

func (h *CrudHandler[T]) Update(c *gin.Context) {
	var entity T
	if err := c.ShouldBindJSON(&entity); err != nil {
		middlewares.BadRequest(c, err)
		return
	}
	if err := h.service.Update(c.Request.Context(), c.Param("id"), &entity); err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondData(c, http.StatusOK, middlewares.MsgUpdated, entity)
}

func (h *CrudHandler[T]) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("id")); err != nil {
		middlewares.HttpError(c, err)
		return
	}
	middlewares.RespondData(c, http.StatusOK, middlewares.MsgDeleted, nil)
}

// ListQuery reads paging, search, whitelisted filters and ordering from the query
// string. Callers bound to a hospital only ever see that hospital's rows.
func ListQuery(c *gin.Context, spec repositories.QuerySpec) repositories.ListQuery {
	q := repositories.ListQuery{
		Params:    pagination.FromContext(c),
		Search:    strings.TrimSpace(c.Query("search")),
		Filters:   map[string]string{},
		SortBy:    c.Query("sortBy"),
		SortOrder: strings.ToLower(c.Query("sortOrder")),
	}
	for _, key := range spec.FilterKeys() {
		if v := strings.TrimSpace(c.Query(key)); v != "" {
			q.Filters[key] = v
		}
	}
	if hospital := middlewares.ScopedHospital(c); hospital != "" {
		if _, ok := spec.FilterColumns["hospitalId"]; ok {
			q.Filters["hospitalId"] = hospital
		}
	}
	return q
}

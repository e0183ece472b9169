package services

import (
	"context"
	"fmt"

	"HospitalMS/models"
	"HospitalMS/pagination"
	"HospitalMS/repositories"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Store is the persistence a CrudService needs.
type Store[T any] interface {
	List(ctx context.Context, q repositories.ListQuery) ([]T, int64, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, entity *T) error
	Update(ctx context.Context, entity *T) error
	Delete(ctx context.Context, id string) error
	Spec() repositories.QuerySpec
}

// PrepareFunc fills derived fields and checks references before validation.
// existing is nil on create. Missing ids are left for validation to report.
type PrepareFunc[T any] func(ctx context.Context, entity, existing *T) error

// CrudService validates entities with ozzo-validation and delegates to a Store.
type CrudService[T any] struct {
	store   Store[T]
	prepare PrepareFunc[T]
}

func NewCrudService[T any](store Store[T], prepare PrepareFunc[T]) *CrudService[T] {
	return &CrudService[T]{store: store, prepare: prepare}
}

// Spec exposes the list whitelist for handlers.
func (s *CrudService[T]) Spec() repositories.QuerySpec {
	return s.store.Spec()
}

// List returns one page and its pagination block.
func (s *CrudService[T]) List(ctx context.Context, q repositories.ListQuery) ([]T, pagination.Meta, error) {
	rows, total, err := s.store.List(ctx, q)
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return rows, q.Params.Meta(total), nil
}

func (s *CrudService[T]) Get(ctx context.Context, id string) (*T, error) {
	return s.store.Get(ctx, id)
}

func (s *CrudService[T]) Create(ctx context.Context, entity *T) error {
	if s.prepare != nil {
		if err := s.prepare(ctx, entity, nil); err != nil {
			return err
		}
	}
	if err := validate(entity); err != nil {
		return err
	}
	return s.store.Create(ctx, entity)
}

// Update replaces the row identified by id with entity.
func (s *CrudService[T]) Update(ctx context.Context, id string, entity *T) error {
	existing, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	setID(entity, id)
	if s.prepare != nil {
		if err := s.prepare(ctx, entity, existing); err != nil {
			return err
		}
	}
	if err := validate(entity); err != nil {
		return err
	}
	return s.store.Update(ctx, entity)
}

func (s *CrudService[T]) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

func setID(entity interface{}, id string) {
	if e, ok := entity.(models.Entity); ok {
		e.SetID(id)
	}
}

// validate runs ozzo-validation and wraps failures in models.ErrValidation.
func validate(v interface{}) error {
	if err := validation.Validate(v); err != nil {
		return invalid(err)
	}
	return nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %w", models.ErrValidation, err)
}

// invalidField reports a single bad field.
func invalidField(field, message string) error {
	return invalid(validation.Errors{field: validation.NewError("validation_"+field, message)})
}

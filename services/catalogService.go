package services

import (
	"context"

	"HospitalMS/datatable"
	"HospitalMS/models"
	"HospitalMS/pagination"
	"HospitalMS/repositories"
)

// CatalogService serves per-hospital catalogs. Lists are derived in memory from the
// cached catalog with a datatable.
type CatalogService[T repositories.CatalogItem] struct {
	*CrudService[T]
	repository *repositories.CatalogRepository[T]
	table      *datatable.Table[T]
}

type catalogFields struct {
	hospitalID, name, category, description string
	cost                                    float64
	active                                  bool
	createdAt                               interface{}
}

func catalogTable[T repositories.CatalogItem](fields func(T) catalogFields) *datatable.Table[T] {
	return datatable.New(map[string]datatable.Accessor[T]{
		"hospitalId":  func(r T) any { return fields(r).hospitalID },
		"name":        func(r T) any { return fields(r).name },
		"category":    func(r T) any { return fields(r).category },
		"description": func(r T) any { return fields(r).description },
		"cost":        func(r T) any { return fields(r).cost },
		"isActive":    func(r T) any { return fields(r).active },
		"createdAt":   func(r T) any { return fields(r).createdAt },
	}, "name", "category", "description")
}

func newCatalogService[T repositories.CatalogItem](repo *repositories.CatalogRepository[T], refs *References, hospitalOf func(*T) string, fields func(T) catalogFields) *CatalogService[T] {
	prepare := func(ctx context.Context, item, _ *T) error {
		return refs.Require(ctx, &models.Hospital{}, "hospitalId", hospitalOf(item))
	}
	return &CatalogService[T]{
		CrudService: NewCrudService[T](repo, prepare),
		repository:  repo,
		table:       catalogTable(fields),
	}
}

func NewHospitalTestService(repo *repositories.CatalogRepository[models.HospitalTest], refs *References) *CatalogService[models.HospitalTest] {
	return newCatalogService(repo, refs,
		func(t *models.HospitalTest) string { return t.HospitalID },
		func(t models.HospitalTest) catalogFields {
			return catalogFields{t.HospitalID, t.Name, t.Category, t.Description, t.Cost, t.IsActive, t.CreatedAt}
		})
}

func NewHospitalTreatmentService(repo *repositories.CatalogRepository[models.HospitalTreatment], refs *References) *CatalogService[models.HospitalTreatment] {
	return newCatalogService(repo, refs,
		func(t *models.HospitalTreatment) string { return t.HospitalID },
		func(t models.HospitalTreatment) catalogFields {
			return catalogFields{t.HospitalID, t.Name, t.Category, t.Description, t.Cost, t.IsActive, t.CreatedAt}
		})
}

func NewHospitalOperationService(repo *repositories.CatalogRepository[models.HospitalOperation], refs *References) *CatalogService[models.HospitalOperation] {
	return newCatalogService(repo, refs,
		func(o *models.HospitalOperation) string { return o.HospitalID },
		func(o models.HospitalOperation) catalogFields {
			return catalogFields{o.HospitalID, o.Name, o.Category, o.Description, o.Cost, o.IsActive, o.CreatedAt}
		})
}

func NewHospitalDiseaseService(repo *repositories.CatalogRepository[models.HospitalDisease], refs *References) *CatalogService[models.HospitalDisease] {
	return newCatalogService(repo, refs,
		func(d *models.HospitalDisease) string { return d.HospitalID },
		func(d models.HospitalDisease) catalogFields {
			return catalogFields{d.HospitalID, d.Name, d.Category, d.Description, d.Cost, d.IsActive, d.CreatedAt}
		})
}

// List reads the cached hospital catalog and derives the requested page from it.
func (s *CatalogService[T]) List(ctx context.Context, q repositories.ListQuery) ([]T, pagination.Meta, error) {
	rows, err := s.repository.AllForHospital(ctx, q.Filters["hospitalId"])
	if err != nil {
		return nil, pagination.Meta{}, err
	}

	query := datatable.Query{
		Search:       q.Search,
		SortKey:      q.SortBy,
		SortDesc:     q.SortOrder == "desc",
		Page:         q.Page,
		ItemsPerPage: q.Limit,
	}
	if !s.table.HasColumn(query.SortKey) {
		query.SortKey = ""
	}
	for _, key := range []string{"category", "isActive"} {
		if value := q.Filters[key]; value != "" {
			query.Filters = append(query.Filters, datatable.Filter{Key: key, Value: value})
		}
	}

	res := s.table.Apply(rows, query)
	return res.Rows, res.Meta, nil
}

package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"HospitalMS/cache"
	"HospitalMS/models"
	"HospitalMS/pagination"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const queryTimeout = 5 * time.Second

// ListQuery is the normalized form of a list request.
type ListQuery struct {
	pagination.Params
	Search    string
	Filters   map[string]string
	SortBy    string
	SortOrder string
}

// QuerySpec whitelists what a resource may be searched, filtered and sorted by.
// Filter and sort keys are the public (camelCase) names, values are columns.
type QuerySpec struct {
	SearchColumns []string
	FilterColumns map[string]string
	SortColumns   map[string]string
	DefaultSort   string
	Preloads      []string
}

// FilterKeys lists the accepted filter query parameters.
func (s QuerySpec) FilterKeys() []string {
	keys := make([]string, 0, len(s.FilterColumns))
	for k := range s.FilterColumns {
		keys = append(keys, k)
	}
	return keys
}

// Repository is the gorm CRUD shared by every resource table.
type Repository[T any] struct {
	db   *gorm.DB
	spec QuerySpec

	cache    *cache.Cache
	patterns []string
}

func NewRepository[T any](db *gorm.DB, spec QuerySpec) *Repository[T] {
	if spec.DefaultSort == "" {
		spec.DefaultSort = "created_at DESC"
	}
	return &Repository[T]{db: db, spec: spec}
}

// Spec returns the query whitelist.
func (r *Repository[T]) Spec() QuerySpec {
	return r.spec
}

// DB returns the handle bound to ctx.
func (r *Repository[T]) DB(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx)
}

// WithTx returns a copy of the repository that runs inside tx.
// The copy never invalidates, the caller does so once the tx commits.
func (r *Repository[T]) WithTx(tx *gorm.DB) *Repository[T] {
	return &Repository[T]{db: tx, spec: r.spec}
}

// InvalidateOn clears the cache keys matching patterns after every
// successful Create, Update and Delete.
func (r *Repository[T]) InvalidateOn(c *cache.Cache, patterns ...string) *Repository[T] {
	r.cache = c
	r.patterns = patterns
	return r
}

func (r *Repository[T]) afterWrite(ctx context.Context) {
	if r.cache == nil || len(r.patterns) == 0 {
		return
	}
	r.cache.Invalidate(ctx, nil, r.patterns...)
}

func (r *Repository[T]) preload(db *gorm.DB) *gorm.DB {
	for _, p := range r.spec.Preloads {
		db = db.Preload(p)
	}
	return db
}

// likeEscaper makes user input match literally inside a LIKE pattern.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// Scope applies search and filters without ordering or paging.
func (r *Repository[T]) Scope(db *gorm.DB, q ListQuery) *gorm.DB {
	if search := strings.TrimSpace(q.Search); search != "" && len(r.spec.SearchColumns) > 0 {
		like := "%" + likeEscaper.Replace(strings.ToLower(search)) + "%"
		conds := make([]string, 0, len(r.spec.SearchColumns))
		args := make([]interface{}, 0, len(r.spec.SearchColumns))
		for _, col := range r.spec.SearchColumns {
			conds = append(conds, fmt.Sprintf(`LOWER(%s) LIKE ? ESCAPE '\'`, col))
			args = append(args, like)
		}
		db = db.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
	for key, value := range q.Filters {
		col, ok := r.spec.FilterColumns[key]
		if !ok || value == "" {
			continue
		}
		db = db.Where(col+" = ?", value)
	}
	return db
}

func (r *Repository[T]) order(q ListQuery) string {
	col, ok := r.spec.SortColumns[q.SortBy]
	if !ok {
		return r.spec.DefaultSort
	}
	if strings.EqualFold(q.SortOrder, "desc") {
		return col + " DESC"
	}
	return col + " ASC"
}

// List returns one page of rows and the total row count.
func (r *Repository[T]) List(ctx context.Context, q ListQuery) ([]T, int64, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var total int64
	if err := r.Scope(r.DB(ctx).Model(new(T)), q).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count: %w", translate(err))
	}

	rows := make([]T, 0)
	err := r.preload(r.Scope(r.DB(ctx), q)).
		Order(r.order(q)).
		Limit(q.Limit).
		Offset(q.Offset()).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list: %w", translate(err))
	}
	return rows, total, nil
}

// Get loads a row with its preloads.
func (r *Repository[T]) Get(ctx context.Context, id string) (*T, error) {
	var entity T
	if err := r.preload(r.DB(ctx)).First(&entity, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &entity, nil
}

// Create inserts the row only, associations are never cascaded.
func (r *Repository[T]) Create(ctx context.Context, entity *T) error {
	if err := r.DB(ctx).Omit(clause.Associations).Create(entity).Error; err != nil {
		return translate(err)
	}
	r.afterWrite(ctx)
	return nil
}

// Update overwrites every column of an existing row.
func (r *Repository[T]) Update(ctx context.Context, entity *T) error {
	res := r.DB(ctx).Model(entity).Select("*").Omit(clause.Associations, "id", "created_at").Updates(entity)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	r.afterWrite(ctx)
	return nil
}

// Delete removes a row by id.
func (r *Repository[T]) Delete(ctx context.Context, id string) error {
	res := r.DB(ctx).Delete(new(T), "id = ?", id)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	r.afterWrite(ctx)
	return nil
}

// Exists reports whether a row with id exists.
func (r *Repository[T]) Exists(ctx context.Context, id string) (bool, error) {
	var count int64
	if err := r.DB(ctx).Model(new(T)).Where("id = ?", id).Count(&count).Error; err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

// translate maps driver errors onto the model sentinels.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return models.ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%w: %v", models.ErrConflict, err)
	default:
		return err
	}
}

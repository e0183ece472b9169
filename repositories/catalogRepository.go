package repositories

import (
	"context"
	"time"

	"HospitalMS/cache"
	"HospitalMS/models"

	"gorm.io/gorm"
)

const CatalogCacheExpiry = 24 * time.Hour

// CatalogItem is a per-hospital offering list entry.
type CatalogItem interface {
	models.HospitalTest | models.HospitalTreatment | models.HospitalOperation | models.HospitalDisease
}

// CatalogRepository keeps each hospital's catalog cached as a whole list; listing, search
// and paging happen in memory on top of it.
type CatalogRepository[T CatalogItem] struct {
	*Repository[T]
	cache *cache.Cache
	name  string
}

func NewCatalogRepository[T CatalogItem](db *gorm.DB, cache *cache.Cache, name string) *CatalogRepository[T] {
	spec := QuerySpec{
		SearchColumns: []string{"name", "category"},
		FilterColumns: map[string]string{"hospitalId": "hospital_id", "category": "category", "isActive": "is_active"},
		SortColumns:   map[string]string{"name": "name", "cost": "cost", "createdAt": "created_at"},
		DefaultSort:   "name ASC",
	}
	return &CatalogRepository[T]{Repository: NewRepository[T](db, spec), cache: cache, name: name}
}

func (r *CatalogRepository[T]) cacheKey(hospitalID string) string {
	if hospitalID == "" {
		hospitalID = "all"
	}
	return "catalog:" + r.name + ":" + hospitalID
}

// AllForHospital returns the full catalog of a hospital, or of every hospital when empty.
func (r *CatalogRepository[T]) AllForHospital(ctx context.Context, hospitalID string) ([]T, error) {
	key := r.cacheKey(hospitalID)
	rows := make([]T, 0)
	if r.cache.GetJSON(ctx, key, &rows) {
		return rows, nil
	}

	db := r.DB(ctx).Order("name ASC")
	if hospitalID != "" {
		db = db.Where("hospital_id = ?", hospitalID)
	}
	if err := db.Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	_ = r.cache.SetJSON(ctx, key, rows, CatalogCacheExpiry)
	return rows, nil
}

func (r *CatalogRepository[T]) invalidate(ctx context.Context) {
	r.cache.Invalidate(ctx, nil, "catalog:"+r.name+":*")
}

func (r *CatalogRepository[T]) Create(ctx context.Context, entity *T) error {
	if err := r.Repository.Create(ctx, entity); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CatalogRepository[T]) Update(ctx context.Context, entity *T) error {
	if err := r.Repository.Update(ctx, entity); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CatalogRepository[T]) Delete(ctx context.Context, id string) error {
	if err := r.Repository.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

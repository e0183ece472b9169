package repositories

import (
	"context"
	"time"

	"HospitalMS/cache"
	"HospitalMS/models"

	"gorm.io/gorm"
)

const (
	citiesCacheKey    = "cities:all"
	CitiesCacheExpiry = 24 * time.Hour
)

type CityRepository struct {
	*Repository[models.City]
	cache *cache.Cache
}

func NewCityRepository(db *gorm.DB, cache *cache.Cache) *CityRepository {
	return &CityRepository{Repository: NewRepository[models.City](db, CitySpec), cache: cache}
}

// All returns every city ordered by name, served from Redis when possible.
func (r *CityRepository) All(ctx context.Context) ([]models.City, error) {
	cities := make([]models.City, 0)
	if r.cache.GetJSON(ctx, citiesCacheKey, &cities) {
		return cities, nil
	}
	if err := r.DB(ctx).Order("name ASC").Find(&cities).Error; err != nil {
		return nil, translate(err)
	}
	_ = r.cache.SetJSON(ctx, citiesCacheKey, cities, CitiesCacheExpiry)
	return cities, nil
}

// FindByName returns the city with an exact name.
func (r *CityRepository) FindByName(ctx context.Context, name string) (*models.City, error) {
	var city models.City
	if err := r.DB(ctx).Where("name = ?", name).First(&city).Error; err != nil {
		return nil, translate(err)
	}
	return &city, nil
}

func (r *CityRepository) invalidate(ctx context.Context) {
	r.cache.Invalidate(ctx, []string{citiesCacheKey}, "dashboard:*")
}

func (r *CityRepository) Create(ctx context.Context, city *models.City) error {
	if err := r.Repository.Create(ctx, city); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

func (r *CityRepository) Update(ctx context.Context, city *models.City) error {
	if err := r.Repository.Update(ctx, city); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

// Delete refuses to remove a city that still has hospitals.
func (r *CityRepository) Delete(ctx context.Context, id string) error {
	var count int64
	if err := r.DB(ctx).Model(&models.Hospital{}).Where("city_id = ?", id).Count(&count).Error; err != nil {
		return translate(err)
	}
	if count > 0 {
		return models.ErrConflict
	}
	if err := r.Repository.Delete(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx)
	return nil
}

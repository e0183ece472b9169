package repositories

import (
	"context"

	"HospitalMS/cache"
	"HospitalMS/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Personnel is a profile that owns a login account.
type Personnel interface {
	models.Doctor | models.Staff
}

// PersonnelRepository stores doctors or staff together with their User rows.
type PersonnelRepository[T Personnel] struct {
	*Repository[T]
	cache *cache.Cache
}

func NewDoctorRepository(db *gorm.DB, cache *cache.Cache) *PersonnelRepository[models.Doctor] {
	return &PersonnelRepository[models.Doctor]{Repository: NewRepository[models.Doctor](db, DoctorSpec), cache: cache}
}

func NewStaffRepository(db *gorm.DB, cache *cache.Cache) *PersonnelRepository[models.Staff] {
	return &PersonnelRepository[models.Staff]{Repository: NewRepository[models.Staff](db, StaffSpec), cache: cache}
}

func userIDOf[T Personnel](profile *T) *string {
	switch p := any(profile).(type) {
	case *models.Doctor:
		return &p.UserID
	case *models.Staff:
		return &p.UserID
	}
	return nil
}

// CreateWithUser inserts the account and the profile in one transaction.
func (r *PersonnelRepository[T]) CreateWithUser(ctx context.Context, user *models.User, profile *T) error {
	err := r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return err
		}
		*userIDOf(profile) = user.ID
		return tx.Omit(clause.Associations).Create(profile).Error
	})
	if err != nil {
		return translate(err)
	}
	r.cache.Invalidate(ctx, nil, "dashboard:*")
	return nil
}

// UpdateWithUser updates the account columns and the profile together.
func (r *PersonnelRepository[T]) UpdateWithUser(ctx context.Context, user *models.User, profile *T) error {
	err := r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(user).Select("name", "email", "hospital_id", "password_hash", "updated_at").Updates(user)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return models.ErrNotFound
		}
		return r.WithTx(tx).Update(ctx, profile)
	})
	if err != nil {
		return translate(err)
	}
	r.cache.Invalidate(ctx, []string{userCacheKey(user.Email)}, "dashboard:*")
	return nil
}

// DeleteWithUser removes the profile and its account.
func (r *PersonnelRepository[T]) DeleteWithUser(ctx context.Context, id string) error {
	var email string
	err := r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		var profile T
		if err := tx.First(&profile, "id = ?", id).Error; err != nil {
			return err
		}
		userID := *userIDOf(&profile)
		if err := tx.Delete(&profile).Error; err != nil {
			return err
		}
		var user models.User
		if err := tx.First(&user, "id = ?", userID).Error; err != nil {
			return err
		}
		email = user.Email
		return tx.Delete(&user).Error
	})
	if err != nil {
		return translate(err)
	}
	r.cache.Invalidate(ctx, []string{userCacheKey(email)}, "dashboard:*")
	return nil
}

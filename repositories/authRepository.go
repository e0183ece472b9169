package repositories

import (
	"context"
	"fmt"
	"time"

	"HospitalMS/cache"
	"HospitalMS/models"

	"gorm.io/gorm"
)

const (
	UserCacheExpiry = time.Hour
	RoleCacheExpiry = 10 * time.Minute
)

// UserRepository loads accounts and their roles. Lookups by email and role grants are
// cached; every write drops the cached entries.
type UserRepository struct {
	*Repository[models.User]
	roles *Repository[models.Role]
	cache *cache.Cache
}

func NewUserRepository(db *gorm.DB, cache *cache.Cache) *UserRepository {
	return &UserRepository{
		Repository: NewRepository[models.User](db, UserSpec),
		roles:      NewRepository[models.Role](db, RoleSpec),
		cache:      cache,
	}
}

func userCacheKey(email string) string {
	return "user:email:" + email
}

func roleCacheKey(name string) string {
	return "role:" + name
}

// EmailExists reports whether an account uses email.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var count int64
	if err := r.DB(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return count > 0, nil
}

// GetUserByEmail returns the account including its password hash.
func (r *UserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, queryTimeout)
	defer cancel()

	var cached struct {
		models.User
		PasswordHash string `json:"passwordHash"`
	}
	if r.cache.GetJSON(ctx, userCacheKey(email), &cached) {
		user := cached.User
		user.PasswordHash = cached.PasswordHash
		return &user, nil
	}

	var user models.User
	if err := r.DB(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, translate(err)
	}

	cached.User = user
	cached.PasswordHash = user.PasswordHash
	_ = r.cache.SetJSON(ctx, userCacheKey(email), cached, UserCacheExpiry)
	return &user, nil
}

// UpdatePassword stores a new bcrypt hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, user *models.User, hash string) error {
	res := r.DB(ctx).Model(&models.User{}).Where("id = ?", user.ID).Update("password_hash", hash)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	r.InvalidateUser(ctx, user.Email)
	return nil
}

// InvalidateUser drops the cached lookup for email.
func (r *UserRepository) InvalidateUser(ctx context.Context, email string) {
	r.cache.Invalidate(ctx, []string{userCacheKey(email)})
}

// RoleForPrincipal resolves the explicit role when one is assigned, else the built-in role
// named by the user's role column.
func (r *UserRepository) RoleForPrincipal(ctx context.Context, p models.Principal) (*models.Role, error) {
	if p.RoleID != nil && *p.RoleID != "" {
		return r.roleBy(ctx, "id", *p.RoleID)
	}
	return r.roleBy(ctx, "name", p.Role)
}

func (r *UserRepository) roleBy(ctx context.Context, column, value string) (*models.Role, error) {
	key := roleCacheKey(column + ":" + value)
	var role models.Role
	if r.cache.GetJSON(ctx, key, &role) {
		return &role, nil
	}
	if err := r.DB(ctx).Preload("Permissions").Where(column+" = ?", value).First(&role).Error; err != nil {
		return nil, translate(err)
	}
	_ = r.cache.SetJSON(ctx, key, role, RoleCacheExpiry)
	return &role, nil
}

// Roles exposes the role table.
func (r *UserRepository) Roles() *Repository[models.Role] {
	return r.roles
}

// ListPermissions returns the whole permission catalog.
func (r *UserRepository) ListPermissions(ctx context.Context) ([]models.Permission, error) {
	var permissions []models.Permission
	if err := r.DB(ctx).Order("resource ASC, action ASC").Find(&permissions).Error; err != nil {
		return nil, translate(err)
	}
	return permissions, nil
}

// SaveRole creates or updates a role and replaces its permission set in one transaction.
func (r *UserRepository) SaveRole(ctx context.Context, role *models.Role, permissionNames []string) error {
	err := r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		var permissions []models.Permission
		if len(permissionNames) > 0 {
			if err := tx.Where("name IN ?", permissionNames).Find(&permissions).Error; err != nil {
				return err
			}
			if len(permissions) != len(permissionNames) {
				return fmt.Errorf("%w: unknown permission in %v", models.ErrValidation, permissionNames)
			}
		}

		repo := r.roles.WithTx(tx)
		if role.ID == "" {
			if err := repo.Create(ctx, role); err != nil {
				return err
			}
		} else if err := repo.Update(ctx, role); err != nil {
			return err
		}
		if err := tx.Model(role).Association("Permissions").Replace(permissions); err != nil {
			return err
		}
		role.Permissions = permissions
		return nil
	})
	if err != nil {
		return translate(err)
	}
	r.cache.Invalidate(ctx, nil, "role:*")
	return nil
}

// DeleteRole removes a non-system role, detaching users that referenced it.
func (r *UserRepository) DeleteRole(ctx context.Context, id string) error {
	err := r.DB(ctx).Transaction(func(tx *gorm.DB) error {
		var role models.Role
		if err := tx.First(&role, "id = ?", id).Error; err != nil {
			return err
		}
		if role.IsSystem {
			return fmt.Errorf("%w: system roles cannot be deleted", models.ErrConflict)
		}
		if err := tx.Model(&models.User{}).Where("role_id = ?", id).Update("role_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(&role).Association("Permissions").Clear(); err != nil {
			return err
		}
		return tx.Delete(&role).Error
	})
	if err != nil {
		return translate(err)
	}
	r.cache.Invalidate(ctx, nil, "role:*", "user:email:*")
	return nil
}

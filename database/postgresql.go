package database

import (
	"context"
	"time"

	"HospitalMS/models"
	"HospitalMS/utils"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Options configure the connection pool and ORM logging.
type Options struct {
	MaxOpenConns int
	MaxIdleConns int
	Debug        bool
}

// InitDB opens the Postgres connection, configures the pool and pings it.
func InitDB(ctx context.Context, dsn string, opts Options, log zerolog.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), GormConfig(opts.Debug))
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database connection")
	}

	if err := configureConnectionPool(db, opts); err != nil {
		return nil, err
	}

	if err := Ping(ctx, db); err != nil {
		return nil, err
	}

	log.Info().Int("max_open_conns", opts.MaxOpenConns).Msg("database initialized")
	return db, nil
}

// GormConfig is shared by the Postgres connection and the SQLite test databases.
func GormConfig(debug bool) *gorm.Config {
	logMode := logger.Silent
	if debug {
		logMode = logger.Info
	}
	return &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: false,
		TranslateError:                           true,
		Logger:                                   logger.Default.LogMode(logMode),
	}
}

func configureConnectionPool(db *gorm.DB, opts Options) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql.DB from GORM")
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
	return nil
}

// Ping verifies that the database connection is functional.
func Ping(ctx context.Context, db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql.DB from GORM")
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		return errors.Wrap(err, "failed to ping database")
	}
	return nil
}

// Close releases the pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get sql.DB from GORM")
	}
	return sqlDB.Close()
}

// Migrate performs database schema migrations.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.City{},
		&models.Hospital{},
		&models.Permission{},
		&models.Role{},
		&models.User{},
		&models.Doctor{},
		&models.Staff{},
		&models.Patient{},
		&models.Visit{},
		&models.Test{},
		&models.Disease{},
		&models.Treatment{},
		&models.Operation{},
		&models.Prescription{},
		&models.HospitalTest{},
		&models.HospitalTreatment{},
		&models.HospitalOperation{},
		&models.HospitalDisease{},
	)
	return errors.Wrap(err, "failed to migrate schema")
}

// SeedCatalog populates the permission catalog, the built-in roles and the first admin.
func SeedCatalog(db *gorm.DB, adminEmail, adminPassword string, log zerolog.Logger) error {
	if err := models.SeedPermissions(db); err != nil {
		return errors.Wrap(err, "failed to seed permissions")
	}
	if err := models.SeedRoles(db); err != nil {
		return errors.Wrap(err, "failed to seed roles")
	}
	if adminEmail == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("role = ?", models.RoleAdmin).Count(&count).Error; err != nil {
		return errors.Wrap(err, "failed to count admins")
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword(adminPassword)
	if err != nil {
		return err
	}
	var role models.Role
	if err := db.Where("name = ?", models.RoleAdmin).First(&role).Error; err != nil {
		return errors.Wrap(err, "failed to load admin role")
	}
	admin := models.User{
		Email:        adminEmail,
		Name:         "Administrator",
		PasswordHash: hash,
		Role:         models.RoleAdmin,
		RoleID:       &role.ID,
		IsActive:     true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return errors.Wrap(err, "failed to create admin user")
	}
	log.Info().Str("email", adminEmail).Msg("default admin created")
	return nil
}

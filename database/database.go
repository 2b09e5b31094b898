package database

import (
	"errors"
	"fmt"

	"github.com/glebarez/sqlite"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"curio-server/config"
	"curio-server/internal/domain/gallery"
	"curio-server/internal/domain/users"
)

// Open connects, migrates, and returns the handle. The handle is passed
// down to handlers explicitly; nothing in this codebase holds it as a
// package global.
func Open(cfg config.DatabaseConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "sqlite", "":
		// Cascades are enforced at the FK level, so sqlite needs the
		// pragma switched on.
		dsn := cfg.DSN
		if dsn == "" {
			dsn = "curio.db"
		}
		dialector = sqlite.Open(dsn + "?_pragma=foreign_keys(1)")
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&users.User{},
		&users.PasswordResetToken{},
		&gallery.Collection{},
		&gallery.Item{},
	); err != nil {
		return fmt.Errorf("automigrate: %w", err)
	}
	return nil
}

// Seed ensures the first superuser and a default public "Favorites"
// collection exist. Both are idempotent lookups by natural key, matching
// what the ops seed scripts do by hand.
func Seed(db *gorm.DB, cfg config.SeedConfig, log zerolog.Logger) error {
	if cfg.SuperuserEmail == "" || cfg.SuperuserPassword == "" {
		log.Warn().Msg("seed superuser not configured, skipping")
		return nil
	}

	var admin users.User
	err := db.Where("email = ?", cfg.SuperuserEmail).First(&admin).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		hashed, hashErr := bcrypt.GenerateFromPassword([]byte(cfg.SuperuserPassword), bcrypt.DefaultCost)
		if hashErr != nil {
			return fmt.Errorf("hash superuser password: %w", hashErr)
		}
		pw := string(hashed)
		admin = users.User{
			Email:          cfg.SuperuserEmail,
			HashedPassword: &pw,
			IsActive:       true,
			IsSuperuser:    true,
			AuthProvider:   users.ProviderLocal,
		}
		if err := db.Create(&admin).Error; err != nil {
			return fmt.Errorf("create superuser: %w", err)
		}
		log.Info().Str("email", admin.Email).Msg("seeded first superuser")
	case err != nil:
		return fmt.Errorf("lookup superuser: %w", err)
	}

	var count int64
	if err := db.Model(&gallery.Collection{}).Where("name = ?", "Favorites").Count(&count).Error; err != nil {
		return fmt.Errorf("lookup favorites collection: %w", err)
	}
	if count == 0 {
		desc := "Default collection for favorite pieces"
		fav := gallery.Collection{
			Name:        "Favorites",
			Description: &desc,
			IsPublic:    true,
			CreatedBy:   admin.ID,
		}
		if err := db.Create(&fav).Error; err != nil {
			return fmt.Errorf("create favorites collection: %w", err)
		}
		log.Info().Msg("seeded Favorites collection")
	}

	return nil
}

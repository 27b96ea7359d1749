package database

import (
	"fmt"

	"github.com/waylog/core/internal/config"
	"github.com/waylog/core/internal/models"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB is the global database instance.
var DB *gorm.DB

// Connect opens a MySQL connection and optionally runs auto-migration.
func Connect(cfg *config.AppConfig, autoMigrate bool) (*gorm.DB, error) {
	db, err := openDB(cfg, resolveLogLevel(cfg))
	if err != nil {
		return nil, err
	}

	if autoMigrate {
		if err := Migrate(db); err != nil {
			return nil, fmt.Errorf("migration failed: %w", err)
		}
	}

	DB = db
	return db, nil
}

func resolveLogLevel(cfg *config.AppConfig) logger.LogLevel {
	if cfg.IsDev() {
		return logger.Info
	}
	return logger.Warn
}

func openDB(cfg *config.AppConfig, logLevel logger.LogLevel) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.New(mysql.Config{
		DSN:               cfg.DSN,
		DefaultStringSize: 191,
	}), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	return db, nil
}

// Migrate runs GORM auto-migration for all models. Reference geography comes
// first, then users, then owned entities in dependency order so foreign keys
// resolve on a fresh database.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.CountryModel{},
		&models.RegionModel{},
		&models.CityModel{},
		&models.UserModel{},
		&models.CategoryModel{},
		&models.CollectionModel{},
		&models.LocationModel{},
		&models.VisitModel{},
		&models.TrailModel{},
		&models.ActivityModel{},
		&models.TransportationModel{},
		&models.NoteModel{},
		&models.ChecklistModel{},
		&models.ChecklistItemModel{},
		&models.LodgingModel{},
		&models.ContentImageModel{},
		&models.ContentAttachmentModel{},
		&models.VisitedRegionModel{},
		&models.VisitedCityModel{},
	)
}

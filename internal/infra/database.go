package infra

import (
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"packhouse/internal/model"
	"packhouse/internal/repository"
)

// NewDatabase establishes a GORM connection backed by pgx. TranslateError is
// enabled so unique-constraint violations surface as gorm.ErrDuplicatedKey,
// which the repositories translate into the Conflict taxonomy.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	return db, nil
}

// RunMigrations creates or updates all tables. Also used by the repository
// integration tests against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Warehouse{},
		&model.Inventory{},
		&model.StockMovement{},
		&model.PickPack{},
		&model.PickPackItem{},
		repository.PackCounterModel(),
	)
}

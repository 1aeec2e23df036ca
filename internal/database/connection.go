// internal/database/connection.go
package database

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/magazyn/inventory-backend/internal/config"
	"github.com/magazyn/inventory-backend/internal/models"
)

// Initialize opens the database and configures the connection pool. The
// returned handle is the only one; callers pass it down explicitly and close
// it on shutdown.
func Initialize(cfg config.DatabaseConfig) (*gorm.DB, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	}
	if cfg.LogLevel == "info" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info)
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.MaxLifetime) * time.Second)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.Info("Database connection established")
	return db, nil
}

func Close(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		logrus.WithError(err).Error("Error getting underlying sql.DB")
		return
	}

	if err := sqlDB.Close(); err != nil {
		logrus.WithError(err).Error("Error closing database connection")
	} else {
		logrus.Info("Database connection closed")
	}
}

func RunMigrations(db *gorm.DB) error {
	logrus.Info("Running database migrations...")

	if err := db.AutoMigrate(
		&models.Product{},
		&models.Photo{},
	); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	if err := createIndexes(db); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}

	logrus.Info("Database migrations completed")
	return nil
}

func createIndexes(db *gorm.DB) error {
	indexes := []string{
		"CREATE INDEX IF NOT EXISTS idx_products_status ON products(status)",
		"CREATE INDEX IF NOT EXISTS idx_products_brand_size ON products(brand, size)",
		"CREATE INDEX IF NOT EXISTS idx_products_created_at ON products(created_at DESC)",
		"CREATE INDEX IF NOT EXISTS idx_products_price ON products(price_cents)",

		"CREATE INDEX IF NOT EXISTS idx_photos_product ON photos(product_id)",
		"CREATE INDEX IF NOT EXISTS idx_photos_product_front ON photos(product_id, is_front)",
		"CREATE INDEX IF NOT EXISTS idx_photos_product_order ON photos(product_id, sort_order)",
	}

	for _, index := range indexes {
		if err := db.Exec(index).Error; err != nil {
			logrus.WithError(err).Warnf("Failed to create index: %s", index)
			// Continue with other indexes instead of failing completely
		}
	}

	return nil
}

// SeedDevData inserts sample products for local development. It is a no-op
// when any product already exists.
func SeedDevData(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Product{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	logrus.Info("Seeding development data...")

	brands := []string{"Zara", "H&M", "Reserved", "House", "Cropp", "Only", "New Look"}
	sizes := []string{"XS", "S", "M", "L", "XL", "XXL"}
	conditions := []string{"new", "very_good", "good", "fair"}
	statuses := models.ProductStatuses

	for i := 0; i < 8; i++ {
		sku := fmt.Sprintf("SKU-%d", 1000+i)
		product := models.Product{
			Title:      fmt.Sprintf("Product #%d", i+1),
			Brand:      brands[i%len(brands)],
			Size:       sizes[i%len(sizes)],
			Condition:  conditions[i%len(conditions)],
			Status:     statuses[i%len(statuses)],
			PriceCents: int64((50 + i*37) * 100),
			SKU:        &sku,
		}
		if err := db.Create(&product).Error; err != nil {
			return fmt.Errorf("failed to seed product: %w", err)
		}
	}

	logrus.Info("Development data seeded")
	return nil
}

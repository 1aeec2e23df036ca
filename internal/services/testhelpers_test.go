// internal/services/testhelpers_test.go
package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/magazyn/inventory-backend/internal/config"
	"github.com/magazyn/inventory-backend/internal/models"
)

// newTestDB opens an in-memory sqlite database with the full schema. A
// single connection keeps the in-memory database alive for the test's
// lifetime.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Photo{}))
	return db
}

func testStorageConfig(t *testing.T, maxBytes int64) config.StorageConfig {
	t.Helper()

	return config.StorageConfig{
		Driver:         "local",
		UploadDir:      t.TempDir(),
		BaseURL:        "/uploads",
		MaxUploadBytes: maxBytes,
	}
}

func newTestStorage(t *testing.T) *StorageService {
	t.Helper()

	storage, err := NewStorageService(testStorageConfig(t, 10*1024*1024))
	require.NoError(t, err)
	return storage
}

func createTestProduct(t *testing.T, db *gorm.DB, title string) *models.Product {
	t.Helper()

	product := &models.Product{
		Title:      title,
		Brand:      "Zara",
		Size:       "M",
		Condition:  "good",
		Status:     models.ProductStatusInStock,
		PriceCents: 4500,
	}
	require.NoError(t, db.Create(product).Error)
	return product
}

// pngBytes returns a payload that passes the PNG signature check.
func pngBytes(pad int) []byte {
	data := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
	return append(data, make([]byte, pad)...)
}

func uploadTestPhoto(t *testing.T, svc *PhotoService, product *models.Product, name string) models.Photo {
	t.Helper()

	photos, err := svc.Upload(product.ID, []UploadPhotoInput{{
		Data:         pngBytes(16),
		OriginalName: name,
		ContentType:  "image/png",
	}})
	require.NoError(t, err)
	require.Len(t, photos, 1)
	return photos[0]
}

func frontCount(t *testing.T, db *gorm.DB, product *models.Product) int64 {
	t.Helper()

	var count int64
	require.NoError(t, db.Model(&models.Photo{}).
		Where("product_id = ? AND is_front = ?", product.ID, true).
		Count(&count).Error)
	return count
}

// seedPhoto inserts a photo row directly, with explicit rank and timestamp
// for deterministic ordering assertions.
func seedPhoto(t *testing.T, db *gorm.DB, product *models.Product, order int, isFront bool, createdAt time.Time) models.Photo {
	t.Helper()

	photo := models.Photo{
		ProductID: product.ID,
		URL:       fmt.Sprintf("/uploads/seed-%d.png", order),
		Role:      models.PhotoRoleExtra,
		IsFront:   isFront,
		SortOrder: order,
		SizeBytes: 128,
	}
	require.NoError(t, db.Create(&photo).Error)
	// Create hooks stamp CreatedAt; pin it explicitly for tie-break tests.
	require.NoError(t, db.Model(&models.Photo{}).
		Where("id = ?", photo.ID).
		Update("created_at", createdAt).Error)
	photo.CreatedAt = createdAt
	return photo
}

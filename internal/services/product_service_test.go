// internal/services/product_service_test.go
package services

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magazyn/inventory-backend/internal/apperrors"
	"github.com/magazyn/inventory-backend/internal/models"
)

func newProductService(t *testing.T) (*ProductService, *StorageService) {
	t.Helper()
	db := newTestDB(t)
	storage := newTestStorage(t)
	return NewProductService(db, storage), storage
}

func TestCreateProductDefaults(t *testing.T) {
	svc, _ := newProductService(t)

	product, err := svc.Create(&CreateProductRequest{Title: "Linen shirt"})
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, product.ID)
	assert.Equal(t, models.ProductStatusInStock, product.Status)
	assert.EqualValues(t, 0, product.PriceCents)
	assert.NotNil(t, product.Photos)
	assert.Empty(t, product.Photos)
	assert.Nil(t, product.SKU)
}

func TestCreateProductValidation(t *testing.T) {
	svc, _ := newProductService(t)

	_, err := svc.Create(&CreateProductRequest{})
	require.Error(t, err)
	assert.True(t, apperrors.IsValidation(err))
	assert.Contains(t, err.Error(), "title")

	negative := int64(-100)
	_, err = svc.Create(&CreateProductRequest{Title: "Shirt", PriceCents: &negative})
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Create(&CreateProductRequest{Title: "Shirt", Status: "lost"})
	assert.True(t, apperrors.IsValidation(err))
}

func TestGetProductNotFound(t *testing.T) {
	svc, _ := newProductService(t)

	_, err := svc.Get(uuid.New())
	assert.True(t, apperrors.IsNotFound(err))
}

func TestUpdateProductAppliesOnlySuppliedFields(t *testing.T) {
	svc, _ := newProductService(t)

	sku := "SKU-77"
	notes := "small stain on sleeve"
	created, err := svc.Create(&CreateProductRequest{
		Title:     "Denim jacket",
		Brand:     "Levi's",
		Size:      "L",
		Condition: "good",
		SKU:       &sku,
		Notes:     &notes,
	})
	require.NoError(t, err)

	price := int64(12900)
	updated, err := svc.Update(created.ID, &UpdateProductRequest{PriceCents: &price})
	require.NoError(t, err)

	// Only the price changed; everything omitted keeps its stored value.
	assert.EqualValues(t, 12900, updated.PriceCents)
	assert.Equal(t, "Denim jacket", updated.Title)
	assert.Equal(t, "Levi's", updated.Brand)
	assert.Equal(t, "L", updated.Size)
	require.NotNil(t, updated.SKU)
	assert.Equal(t, sku, *updated.SKU)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, notes, *updated.Notes)

	status := models.ProductStatusSold
	updated, err = svc.Update(created.ID, &UpdateProductRequest{Status: &status})
	require.NoError(t, err)
	assert.Equal(t, models.ProductStatusSold, updated.Status)
	assert.EqualValues(t, 12900, updated.PriceCents)
}

func TestUpdateProductValidation(t *testing.T) {
	svc, _ := newProductService(t)
	created, err := svc.Create(&CreateProductRequest{Title: "Skirt"})
	require.NoError(t, err)

	bad := models.ProductStatus("misplaced")
	_, err = svc.Update(created.ID, &UpdateProductRequest{Status: &bad})
	assert.True(t, apperrors.IsValidation(err))

	negative := int64(-1)
	_, err = svc.Update(created.ID, &UpdateProductRequest{PriceCents: &negative})
	assert.True(t, apperrors.IsValidation(err))

	empty := ""
	_, err = svc.Update(created.ID, &UpdateProductRequest{Title: &empty})
	assert.True(t, apperrors.IsValidation(err))

	_, err = svc.Update(uuid.New(), &UpdateProductRequest{})
	assert.True(t, apperrors.IsNotFound(err))
}

func TestDeleteProductCascades(t *testing.T) {
	db := newTestDB(t)
	storage := newTestStorage(t)
	productSvc := NewProductService(db, storage)
	photoSvc := NewPhotoService(db, storage)

	product := createTestProduct(t, db, "Cascade")
	a := uploadTestPhoto(t, photoSvc, product, "a.png")
	b := uploadTestPhoto(t, photoSvc, product, "b.png")

	pathA := filepath.Join(storage.cfg.UploadDir, storage.KeyFromURL(a.URL))
	pathB := filepath.Join(storage.cfg.UploadDir, storage.KeyFromURL(b.URL))

	require.NoError(t, productSvc.Delete(product.ID))

	var photoCount int64
	require.NoError(t, db.Model(&models.Photo{}).
		Where("product_id = ?", product.ID).Count(&photoCount).Error)
	assert.EqualValues(t, 0, photoCount)

	_, err := os.Stat(pathA)
	assert.True(t, os.IsNotExist(err))
	_, err = os.Stat(pathB)
	assert.True(t, os.IsNotExist(err))

	err = productSvc.Delete(product.ID)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestGetProductPhotosInCanonicalOrder(t *testing.T) {
	db := newTestDB(t)
	storage := newTestStorage(t)
	productSvc := NewProductService(db, storage)
	photoSvc := NewPhotoService(db, storage)

	product := createTestProduct(t, db, "Ordered")
	a := uploadTestPhoto(t, photoSvc, product, "a.png")
	b := uploadTestPhoto(t, photoSvc, product, "b.png")

	_, err := photoSvc.SetFront(product.ID, b.ID)
	require.NoError(t, err)

	got, err := productSvc.Get(product.ID)
	require.NoError(t, err)
	require.Len(t, got.Photos, 2)
	assert.Equal(t, b.ID, got.Photos[0].ID)
	assert.Equal(t, a.ID, got.Photos[1].ID)
}

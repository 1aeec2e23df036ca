// internal/services/product_service.go
package services

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/magazyn/inventory-backend/internal/apperrors"
	"github.com/magazyn/inventory-backend/internal/models"
	"github.com/magazyn/inventory-backend/internal/utils"
)

type ProductService struct {
	db      *gorm.DB
	storage *StorageService
}

type CreateProductRequest struct {
	Title      string               `json:"title" validate:"required,min=1,max=255"`
	Brand      string               `json:"brand" validate:"max=100"`
	Size       string               `json:"size" validate:"max=50"`
	Condition  string               `json:"condition" validate:"max=50"`
	Status     models.ProductStatus `json:"status"`
	PriceCents *int64               `json:"price_cents" validate:"omitempty,min=0"`
	DimA       *float64             `json:"dim_a"`
	DimB       *float64             `json:"dim_b"`
	DimC       *float64             `json:"dim_c"`
	Notes      *string              `json:"notes"`
	SKU        *string              `json:"sku" validate:"omitempty,max=100"`
}

// UpdateProductRequest carries only the fields the caller explicitly sent.
// Every field is a pointer so an omitted field is distinguishable from a
// zero value and never overwrites stored data.
type UpdateProductRequest struct {
	Title      *string               `json:"title" validate:"omitempty,min=1,max=255"`
	Brand      *string               `json:"brand" validate:"omitempty,max=100"`
	Size       *string               `json:"size" validate:"omitempty,max=50"`
	Condition  *string               `json:"condition" validate:"omitempty,max=50"`
	Status     *models.ProductStatus `json:"status"`
	PriceCents *int64                `json:"price_cents" validate:"omitempty,min=0"`
	DimA       *float64              `json:"dim_a"`
	DimB       *float64              `json:"dim_b"`
	DimC       *float64              `json:"dim_c"`
	Notes      *string               `json:"notes"`
	SKU        *string               `json:"sku" validate:"omitempty,max=100"`
}

func NewProductService(db *gorm.DB, storage *StorageService) *ProductService {
	return &ProductService{db: db, storage: storage}
}

func (s *ProductService) Create(req *CreateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("%s", utils.ValidationMessage(err))
	}

	status := req.Status
	if status == "" {
		status = models.ProductStatusInStock
	}
	if !status.Valid() {
		return nil, apperrors.Validation("unknown status %q", status)
	}

	var price int64
	if req.PriceCents != nil {
		price = *req.PriceCents
	}

	product := &models.Product{
		Title:      req.Title,
		Brand:      req.Brand,
		Size:       req.Size,
		Condition:  req.Condition,
		Status:     status,
		PriceCents: price,
		DimA:       req.DimA,
		DimB:       req.DimB,
		DimC:       req.DimC,
		Notes:      req.Notes,
		SKU:        req.SKU,
	}

	if err := s.db.Create(product).Error; err != nil {
		return nil, apperrors.Storage(err)
	}

	product.Photos = []models.Photo{}
	return product, nil
}

func (s *ProductService) Get(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := s.db.Preload("Photos", func(db *gorm.DB) *gorm.DB {
		return db.Order(canonicalOrder)
	}).First(&product, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("product", id.String())
	}
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	if product.Photos == nil {
		product.Photos = []models.Photo{}
	}
	return &product, nil
}

func (s *ProductService) Update(id uuid.UUID, req *UpdateProductRequest) (*models.Product, error) {
	if err := utils.ValidateStruct(req); err != nil {
		return nil, apperrors.Validation("%s", utils.ValidationMessage(err))
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFound("product", id.String())
		}
		return nil, apperrors.Storage(err)
	}

	updates := make(map[string]interface{})
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return nil, apperrors.Validation("title must not be empty")
		}
		updates["title"] = *req.Title
	}
	if req.Brand != nil {
		updates["brand"] = *req.Brand
	}
	if req.Size != nil {
		updates["size"] = *req.Size
	}
	if req.Condition != nil {
		updates["condition"] = *req.Condition
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, apperrors.Validation("unknown status %q", *req.Status)
		}
		updates["status"] = *req.Status
	}
	if req.PriceCents != nil {
		updates["price_cents"] = *req.PriceCents
	}
	if req.DimA != nil {
		updates["dim_a"] = req.DimA
	}
	if req.DimB != nil {
		updates["dim_b"] = req.DimB
	}
	if req.DimC != nil {
		updates["dim_c"] = req.DimC
	}
	if req.Notes != nil {
		updates["notes"] = req.Notes
	}
	if req.SKU != nil {
		updates["sku"] = req.SKU
	}

	if len(updates) > 0 {
		if err := s.db.Model(&product).Updates(updates).Error; err != nil {
			return nil, apperrors.Storage(err)
		}
	}

	return s.Get(id)
}

// Delete removes the product and all of its photos in one transaction, then
// best-effort deletes the backing assets. A dangling file never fails the
// operation.
func (s *ProductService) Delete(id uuid.UUID) error {
	var photos []models.Photo

	err := s.db.Transaction(func(tx *gorm.DB) error {
		var product models.Product
		if err := tx.First(&product, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperrors.NotFound("product", id.String())
			}
			return err
		}

		if err := tx.Where("product_id = ?", id).Find(&photos).Error; err != nil {
			return err
		}

		if err := tx.Where("product_id = ?", id).Delete(&models.Photo{}).Error; err != nil {
			return err
		}

		return tx.Delete(&product).Error
	})
	if err != nil {
		return wrapStoreErr(err)
	}

	for _, photo := range photos {
		key := s.storage.KeyFromURL(photo.URL)
		if key == "" {
			continue
		}
		if err := s.storage.Delete(key); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"product_id": id,
				"photo_id":   photo.ID,
				"key":        key,
			}).Warn("Failed to delete photo asset")
		}
	}

	return nil
}

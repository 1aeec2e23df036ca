// internal/services/photo_service.go
package services

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/magazyn/inventory-backend/internal/apperrors"
	"github.com/magazyn/inventory-backend/internal/models"
)

// PhotoService owns the photo collection of a product and maintains two
// invariants across all mutations:
//
//   - at most one photo per product has is_front set, and exactly one as soon
//     as the product has any photo at all;
//   - an explicit reorder always leaves sort_order as a dense 0-based
//     sequence.
//
// Every multi-statement write runs inside one transaction so concurrent
// readers never observe two fronts or a half-applied reorder.
type PhotoService struct {
	db      *gorm.DB
	storage *StorageService
}

func NewPhotoService(db *gorm.DB, storage *StorageService) *PhotoService {
	return &PhotoService{db: db, storage: storage}
}

// canonicalOrder is the single display ordering used by every read path:
// front first, then manual rank, then upload time.
const canonicalOrder = "is_front DESC, sort_order ASC, created_at ASC"

type UploadPhotoInput struct {
	Data         []byte
	OriginalName string
	ContentType  string
	Role         string // optional; inferred from the filename when empty
}

// GuessRole infers a role tag from the original filename. The substrings
// cover both English and Polish naming habits of the stock photos. Best
// effort only; an explicit role always wins.
func GuessRole(fileName string) string {
	lower := strings.ToLower(fileName)
	switch {
	case strings.Contains(lower, "front") || strings.Contains(lower, "prz"):
		return models.PhotoRoleFront
	case strings.Contains(lower, "back") || strings.Contains(lower, "tyl") || strings.Contains(lower, "tył"):
		return models.PhotoRoleBack
	case strings.Contains(lower, "measure1") || strings.Contains(lower, "ab"):
		return models.PhotoRoleMeasure1
	case strings.Contains(lower, "measure2") || strings.Contains(lower, "c"):
		return models.PhotoRoleMeasure2
	default:
		return models.PhotoRoleExtra
	}
}

// Upload stores one or more assets and appends their photo records to the
// product. The first photo a product ever receives becomes the front photo;
// later uploads never steal that designation. Assets are written to storage
// before their metadata row is committed.
func (s *PhotoService) Upload(productID uuid.UUID, inputs []UploadPhotoInput) ([]models.Photo, error) {
	if len(inputs) == 0 {
		return nil, apperrors.Validation("no files provided")
	}

	if err := s.ensureProductExists(s.db, productID); err != nil {
		return nil, err
	}

	for _, in := range inputs {
		if len(in.Data) == 0 {
			return nil, apperrors.Validation("file %q is empty", in.OriginalName)
		}
		if max := s.storage.MaxUploadBytes(); max > 0 && int64(len(in.Data)) > max {
			return nil, apperrors.Validation("file %q exceeds the %d byte upload limit", in.OriginalName, max)
		}
		if err := s.storage.ValidateImage(in.Data); err != nil {
			return nil, apperrors.Validation("file %q is not a supported image", in.OriginalName)
		}
	}

	created := make([]models.Photo, 0, len(inputs))

	for _, in := range inputs {
		asset, err := s.storage.Store(in.Data, in.OriginalName, in.ContentType)
		if err != nil {
			return nil, apperrors.Storage(err)
		}

		role := in.Role
		if role == "" {
			role = GuessRole(in.OriginalName)
		}

		var photo models.Photo
		err = s.db.Transaction(func(tx *gorm.DB) error {
			var count int64
			if err := tx.Model(&models.Photo{}).
				Where("product_id = ?", productID).
				Count(&count).Error; err != nil {
				return err
			}

			var maxOrder int
			if count > 0 {
				if err := tx.Model(&models.Photo{}).
					Where("product_id = ?", productID).
					Select("COALESCE(MAX(sort_order), -1)").
					Scan(&maxOrder).Error; err != nil {
					return err
				}
			} else {
				maxOrder = -1
			}

			photo = models.Photo{
				ProductID: productID,
				URL:       asset.URL,
				Role:      role,
				IsFront:   count == 0,
				SortOrder: maxOrder + 1,
				SizeBytes: asset.SizeBytes,
			}
			return tx.Create(&photo).Error
		})
		if err != nil {
			// The asset is already durable; clean it up so a failed upload
			// leaves nothing behind.
			if delErr := s.storage.Delete(asset.Key); delErr != nil {
				logrus.WithError(delErr).WithField("key", asset.Key).
					Warn("Failed to remove asset after aborted upload")
			}
			return nil, apperrors.Storage(err)
		}

		created = append(created, photo)
	}

	return created, nil
}

// SetFront designates the given photo as the product's front photo. The
// clear-and-set pair runs in one transaction: a failure leaves the previous
// designation intact, never zero or two fronts.
func (s *PhotoService) SetFront(productID, photoID uuid.UUID) (*models.Product, error) {
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.findOwnedPhoto(tx, productID, photoID, &models.Photo{}); err != nil {
			return err
		}

		if err := tx.Model(&models.Photo{}).
			Where("product_id = ? AND id <> ?", productID, photoID).
			Update("is_front", false).Error; err != nil {
			return err
		}

		return tx.Model(&models.Photo{}).
			Where("id = ?", photoID).
			Updates(map[string]interface{}{
				"is_front": true,
				"role":     models.PhotoRoleFront,
			}).Error
	})
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	return s.productWithPhotos(productID)
}

// UpdateRole changes a photo's role tag without touching the front flag.
func (s *PhotoService) UpdateRole(productID, photoID uuid.UUID, role string) (*models.Product, error) {
	if strings.TrimSpace(role) == "" {
		return nil, apperrors.Validation("role must not be empty")
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.findOwnedPhoto(tx, productID, photoID, &models.Photo{}); err != nil {
			return err
		}
		return tx.Model(&models.Photo{}).
			Where("id = ?", photoID).
			Update("role", role).Error
	})
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	return s.productWithPhotos(productID)
}

// Reorder assigns sort_order = position for the given id sequence. The input
// must be an exact permutation of the product's current photo ids; a partial
// reorder would leave some photos ranked and others untouched with no
// deterministic recovery, so any mismatch is rejected outright.
func (s *PhotoService) Reorder(productID uuid.UUID, orderedIDs []uuid.UUID) (*models.Product, error) {
	// The id set is read and validated inside the same transaction as the
	// rank updates, so a concurrent upload or delete cannot slip a photo in
	// between the permutation check and the writes.
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.ensureProductExists(tx, productID); err != nil {
			return err
		}

		var current []models.Photo
		if err := tx.Select("id").
			Where("product_id = ?", productID).
			Find(&current).Error; err != nil {
			return err
		}

		currentSet := make(map[uuid.UUID]bool, len(current))
		for _, p := range current {
			currentSet[p.ID] = true
		}

		seen := make(map[uuid.UUID]bool, len(orderedIDs))
		var duplicates, extras []string
		for _, id := range orderedIDs {
			if seen[id] {
				duplicates = append(duplicates, id.String())
				continue
			}
			seen[id] = true
			if !currentSet[id] {
				extras = append(extras, id.String())
			}
		}

		var missing []string
		for _, p := range current {
			if !seen[p.ID] {
				missing = append(missing, p.ID.String())
			}
		}

		if len(duplicates) > 0 || len(extras) > 0 || len(missing) > 0 {
			var parts []string
			if len(missing) > 0 {
				parts = append(parts, fmt.Sprintf("missing ids: %s", strings.Join(missing, ", ")))
			}
			if len(duplicates) > 0 {
				parts = append(parts, fmt.Sprintf("duplicate ids: %s", strings.Join(duplicates, ", ")))
			}
			if len(extras) > 0 {
				parts = append(parts, fmt.Sprintf("unknown ids: %s", strings.Join(extras, ", ")))
			}
			return apperrors.Validation("reorder list is not a permutation of the product's photos (%s)", strings.Join(parts, "; "))
		}

		for idx, id := range orderedIDs {
			if err := tx.Model(&models.Photo{}).
				Where("id = ? AND product_id = ?", id, productID).
				Update("sort_order", idx).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	return s.productWithPhotos(productID)
}

// Remove deletes a photo record and, when the removed photo was the front,
// promotes the remaining photo with the lowest sort_order (ties broken by
// earliest created_at) inside the same transaction. The backing asset is
// deleted best-effort after commit; the metadata row is authoritative.
func (s *PhotoService) Remove(productID, photoID uuid.UUID) (*models.Product, error) {
	var removed models.Photo

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := s.findOwnedPhoto(tx, productID, photoID, &removed); err != nil {
			return err
		}

		if err := tx.Delete(&models.Photo{}, "id = ?", photoID).Error; err != nil {
			return err
		}

		if !removed.IsFront {
			return nil
		}

		var successor models.Photo
		err := tx.Where("product_id = ?", productID).
			Order("sort_order ASC, created_at ASC").
			First(&successor).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Last photo removed; nothing to promote.
			return nil
		}
		if err != nil {
			return err
		}

		return tx.Model(&models.Photo{}).
			Where("id = ?", successor.ID).
			Update("is_front", true).Error
	})
	if err != nil {
		return nil, wrapStoreErr(err)
	}

	if key := s.storage.KeyFromURL(removed.URL); key != "" {
		if err := s.storage.Delete(key); err != nil {
			logrus.WithError(err).WithFields(logrus.Fields{
				"photo_id": photoID,
				"key":      key,
			}).Warn("Failed to delete photo asset")
		}
	}

	return s.productWithPhotos(productID)
}

// List returns the product's photos in canonical display order.
func (s *PhotoService) List(productID uuid.UUID) ([]models.Photo, error) {
	if err := s.ensureProductExists(s.db, productID); err != nil {
		return nil, err
	}

	var photos []models.Photo
	if err := s.db.Where("product_id = ?", productID).
		Order(canonicalOrder).
		Find(&photos).Error; err != nil {
		return nil, apperrors.Storage(err)
	}
	return photos, nil
}

// Helper methods

func (s *PhotoService) ensureProductExists(tx *gorm.DB, productID uuid.UUID) error {
	var product models.Product
	if err := tx.Select("id").First(&product, "id = ?", productID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFound("product", productID.String())
		}
		return apperrors.Storage(err)
	}
	return nil
}

func (s *PhotoService) findOwnedPhoto(tx *gorm.DB, productID, photoID uuid.UUID, dst *models.Photo) error {
	err := tx.Where("id = ? AND product_id = ?", photoID, productID).First(dst).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound("photo", photoID.String())
	}
	return err
}

func (s *PhotoService) productWithPhotos(productID uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := s.db.Preload("Photos", func(db *gorm.DB) *gorm.DB {
		return db.Order(canonicalOrder)
	}).First(&product, "id = ?", productID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFound("product", productID.String())
	}
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return &product, nil
}

// wrapStoreErr keeps typed errors intact and classifies everything else as a
// storage failure.
func wrapStoreErr(err error) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return apperrors.Storage(err)
}

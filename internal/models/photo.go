// internal/models/photo.go
package models

import "github.com/google/uuid"

// Photo is one stored image of a product. At most one photo per product
// carries IsFront; SortOrder is the manual display rank. Both are maintained
// by the photo service, not by database constraints.
type Photo struct {
	BaseModel
	ProductID uuid.UUID `json:"product_id" gorm:"type:uuid;not null;index"`
	URL       string    `json:"url" gorm:"size:512;not null"`
	Role      string    `json:"role" gorm:"size:50;default:'extra'"`
	IsFront   bool      `json:"is_front" gorm:"not null;default:false"`
	SortOrder int       `json:"order" gorm:"column:sort_order;not null;default:0"`
	Width     *int      `json:"width"`
	Height    *int      `json:"height"`
	SizeBytes int64     `json:"size_bytes" gorm:"not null;default:0"`
}

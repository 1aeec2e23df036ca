// internal/models/common.go
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate assigns the primary key when the caller has not set one.
// Generating it in the application keeps the schema portable between
// Postgres and the sqlite driver the tests run on.
func (m *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Enums
type ProductStatus string

const (
	ProductStatusInStock   ProductStatus = "in_stock"
	ProductStatusReserved  ProductStatus = "reserved"
	ProductStatusSold      ProductStatus = "sold"
	ProductStatusWithdrawn ProductStatus = "withdrawn"
)

// ProductStatuses lists every status accepted on create/update.
var ProductStatuses = []ProductStatus{
	ProductStatusInStock,
	ProductStatusReserved,
	ProductStatusSold,
	ProductStatusWithdrawn,
}

func (s ProductStatus) Valid() bool {
	for _, known := range ProductStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Photo roles are a loose tag, not an enum; these are the values the
// filename heuristic produces. Anything else is accepted as-is.
const (
	PhotoRoleFront    = "front"
	PhotoRoleBack     = "back"
	PhotoRoleMeasure1 = "measure1"
	PhotoRoleMeasure2 = "measure2"
	PhotoRoleExtra    = "extra"
)

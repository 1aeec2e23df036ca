// internal/models/product.go
package models

type Product struct {
	BaseModel
	Title      string        `json:"title" gorm:"size:255;not null"`
	Brand      string        `json:"brand" gorm:"size:100;index"`
	Size       string        `json:"size" gorm:"size:50;index"`
	Condition  string        `json:"condition" gorm:"size:50"`
	Status     ProductStatus `json:"status" gorm:"type:varchar(20);default:'in_stock';index"`
	PriceCents int64         `json:"price_cents" gorm:"not null;default:0"`
	DimA       *float64      `json:"dim_a"`
	DimB       *float64      `json:"dim_b"`
	DimC       *float64      `json:"dim_c"`
	Notes      *string       `json:"notes" gorm:"type:text"`
	SKU        *string       `json:"sku" gorm:"size:100;index"`

	// Relationships
	Photos []Photo `json:"photos" gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE"`
}

// internal/services/export_service.go
package services

import (
	"encoding/csv"
	"io"
	"strconv"
	"time"

	"github.com/magazyn/inventory-backend/internal/apperrors"
	"github.com/magazyn/inventory-backend/internal/models"
)

// ExportService renders a filtered product snapshot as CSV. It shares filter
// and sort semantics with the catalog listing but is unpaginated up to the
// configured row cap.
type ExportService struct {
	catalog *CatalogService
}

// exportHeader is the fixed column set; front_url resolves to the front
// photo, falling back to the first photo in canonical order.
var exportHeader = []string{
	"id",
	"title",
	"brand",
	"size",
	"condition",
	"status",
	"price_cents",
	"dim_a",
	"dim_b",
	"dim_c",
	"sku",
	"created_at",
	"updated_at",
	"front_url",
}

func NewExportService(catalog *CatalogService) *ExportService {
	return &ExportService{catalog: catalog}
}

// Write streams the export to w. The csv writer applies standard quoting:
// fields containing the delimiter, quotes, or newlines are quoted with
// embedded quotes doubled.
func (s *ExportService) Write(w io.Writer, params ListParams) error {
	products, err := s.catalog.All(params, s.catalog.ExportMaxRows())
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(exportHeader); err != nil {
		return apperrors.Storage(err)
	}

	for _, p := range products {
		if err := cw.Write(exportRow(&p)); err != nil {
			return apperrors.Storage(err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return apperrors.Storage(err)
	}
	return nil
}

func exportRow(p *models.Product) []string {
	return []string{
		p.ID.String(),
		p.Title,
		p.Brand,
		p.Size,
		p.Condition,
		string(p.Status),
		strconv.FormatInt(p.PriceCents, 10),
		formatDim(p.DimA),
		formatDim(p.DimB),
		formatDim(p.DimC),
		stringOrEmpty(p.SKU),
		p.CreatedAt.UTC().Format(time.RFC3339),
		p.UpdatedAt.UTC().Format(time.RFC3339),
		FrontURL(p),
	}
}

// FrontURL returns the product's cover image URL: the designated front
// photo, else the first photo in canonical order, else empty.
func FrontURL(p *models.Product) string {
	for _, photo := range p.Photos {
		if photo.IsFront {
			return photo.URL
		}
	}
	if len(p.Photos) > 0 {
		return p.Photos[0].URL
	}
	return ""
}

func formatDim(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

func stringOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

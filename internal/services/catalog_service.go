// internal/services/catalog_service.go
package services

import (
	"sort"
	"strings"

	"gorm.io/gorm"

	"github.com/magazyn/inventory-backend/internal/apperrors"
	"github.com/magazyn/inventory-backend/internal/config"
	"github.com/magazyn/inventory-backend/internal/models"
)

// CatalogService builds filtered, sorted, paginated views over products and
// derives the distinct-value facets that back the filter dropdowns.
type CatalogService struct {
	db  *gorm.DB
	cfg config.CatalogConfig
}

// ListParams is a conjunction of optional predicates plus sort/page state.
type ListParams struct {
	Query     string
	Brands    []string
	Sizes     []string
	Condition string
	Status    string
	SKU       string
	Sort      string
	Order     string
	Page      int
	Limit     int
}

type Facets struct {
	Brands     []string `json:"brands"`
	Sizes      []string `json:"sizes"`
	Conditions []string `json:"conditions"`
	Statuses   []string `json:"statuses"`
}

type BrandCount struct {
	Brand string `json:"brand"`
	Count int64  `json:"count"`
}

type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type BrandAvgPrice struct {
	Brand         string  `json:"brand"`
	AvgPriceCents float64 `json:"avg_price_cents"`
}

type Stats struct {
	CountsByBrand   []BrandCount    `json:"counts_by_brand"`
	CountsByStatus  []StatusCount   `json:"counts_by_status"`
	AvgPriceByBrand []BrandAvgPrice `json:"avg_price_by_brand"`
	TotalInStock    int64           `json:"total_in_stock"`
}

var listSortFields = map[string]string{
	"created_at":  "created_at",
	"price_cents": "price_cents",
}

func NewCatalogService(db *gorm.DB, cfg config.CatalogConfig) *CatalogService {
	return &CatalogService{db: db, cfg: cfg}
}

// Normalize clamps pagination and falls back to the default sort for
// anything the allow-list does not know.
func (p *ListParams) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.Limit < 1 {
		p.Limit = 30
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	if _, ok := listSortFields[p.Sort]; !ok {
		p.Sort = "created_at"
	}
	if p.Order != "asc" && p.Order != "desc" {
		p.Order = "desc"
	}
}

// List returns one page of the filtered, sorted product set and the total
// match count.
func (s *CatalogService) List(params ListParams) ([]models.Product, int64, error) {
	params.Normalize()

	query := s.applyFilter(s.db.Model(&models.Product{}), params)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.Storage(err)
	}

	var products []models.Product
	err := query.Order(orderClause(params)).
		Offset((params.Page - 1) * params.Limit).
		Limit(params.Limit).
		Preload("Photos", func(db *gorm.DB) *gorm.DB {
			return db.Order(canonicalOrder)
		}).
		Find(&products).Error
	if err != nil {
		return nil, 0, apperrors.Storage(err)
	}

	for i := range products {
		if products[i].Photos == nil {
			products[i].Photos = []models.Photo{}
		}
	}

	return products, total, nil
}

// All returns every match up to cap, for export. Same filter and sort
// semantics as List, no pagination.
func (s *CatalogService) All(params ListParams, cap int) ([]models.Product, error) {
	params.Normalize()

	var products []models.Product
	err := s.applyFilter(s.db.Model(&models.Product{}), params).
		Order(orderClause(params)).
		Limit(cap).
		Preload("Photos", func(db *gorm.DB) *gorm.DB {
			return db.Order(canonicalOrder)
		}).
		Find(&products).Error
	if err != nil {
		return nil, apperrors.Storage(err)
	}
	return products, nil
}

// Facets returns the sorted distinct non-empty values currently in use.
// Brand/size/condition facets follow the configured scope; statuses always
// cover all products so the UI can filter to sold/withdrawn stock.
func (s *CatalogService) Facets() (*Facets, error) {
	scoped := s.db.Model(&models.Product{})
	if s.cfg.FacetScope == config.FacetScopeInStock {
		scoped = scoped.Where("status = ?", models.ProductStatusInStock)
	}

	facets := &Facets{}

	columns := []struct {
		name string
		dst  *[]string
	}{
		{"brand", &facets.Brands},
		{"size", &facets.Sizes},
		{"condition", &facets.Conditions},
	}
	for _, col := range columns {
		var values []string
		if err := scoped.Session(&gorm.Session{}).
			Distinct(col.name).
			Where(col.name + " <> ''").
			Pluck(col.name, &values).Error; err != nil {
			return nil, apperrors.Storage(err)
		}
		sort.Strings(values)
		*col.dst = values
	}

	var statuses []string
	if err := s.db.Model(&models.Product{}).
		Distinct("status").
		Pluck("status", &statuses).Error; err != nil {
		return nil, apperrors.Storage(err)
	}
	sort.Strings(statuses)
	facets.Statuses = statuses

	return facets, nil
}

// Stats returns the aggregate counts shown on the dashboard.
func (s *CatalogService) Stats() (*Stats, error) {
	stats := &Stats{}

	if err := s.db.Model(&models.Product{}).
		Select("brand, COUNT(*) AS count").
		Where("brand <> ''").
		Group("brand").
		Order("brand ASC").
		Scan(&stats.CountsByBrand).Error; err != nil {
		return nil, apperrors.Storage(err)
	}

	if err := s.db.Model(&models.Product{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status ASC").
		Scan(&stats.CountsByStatus).Error; err != nil {
		return nil, apperrors.Storage(err)
	}

	if err := s.db.Model(&models.Product{}).
		Select("brand, AVG(price_cents) AS avg_price_cents").
		Where("brand <> ''").
		Group("brand").
		Order("brand ASC").
		Scan(&stats.AvgPriceByBrand).Error; err != nil {
		return nil, apperrors.Storage(err)
	}

	if err := s.db.Model(&models.Product{}).
		Where("status = ?", models.ProductStatusInStock).
		Count(&stats.TotalInStock).Error; err != nil {
		return nil, apperrors.Storage(err)
	}

	return stats, nil
}

func (s *CatalogService) ExportMaxRows() int {
	return s.cfg.ExportMaxRows
}

func (s *CatalogService) applyFilter(query *gorm.DB, params ListParams) *gorm.DB {
	if params.Query != "" {
		term := "%" + strings.ToLower(strings.TrimSpace(params.Query)) + "%"
		query = query.Where("LOWER(title) LIKE ? OR LOWER(COALESCE(sku, '')) LIKE ?", term, term)
	}
	if len(params.Brands) > 0 {
		query = query.Where("brand IN ?", params.Brands)
	}
	if len(params.Sizes) > 0 {
		query = query.Where("size IN ?", params.Sizes)
	}
	if params.Condition != "" {
		query = query.Where("condition = ?", params.Condition)
	}
	if params.Status != "" {
		query = query.Where("status = ?", params.Status)
	}
	if params.SKU != "" {
		query = query.Where("sku = ?", params.SKU)
	}
	return query
}

func orderClause(params ListParams) string {
	clause := listSortFields[params.Sort] + " " + params.Order
	// Price sorts get a stable secondary key so equal prices keep a
	// deterministic page order.
	if params.Sort == "price_cents" {
		clause += ", created_at DESC"
	}
	return clause
}

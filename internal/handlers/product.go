// internal/handlers/product.go
package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/magazyn/inventory-backend/internal/services"
	"github.com/magazyn/inventory-backend/internal/utils"
)

type ProductHandler struct {
	productService *services.ProductService
	catalogService *services.CatalogService
	exportService  *services.ExportService
}

func NewProductHandler(productService *services.ProductService, catalogService *services.CatalogService, exportService *services.ExportService) *ProductHandler {
	return &ProductHandler{
		productService: productService,
		catalogService: catalogService,
		exportService:  exportService,
	}
}

// listParamsFromQuery maps query parameters onto the catalog filter. Brand
// and size accept CSV multi-selects.
func listParamsFromQuery(c *gin.Context) services.ListParams {
	pagination := utils.GetPaginationParams(c)

	return services.ListParams{
		Query:     strings.TrimSpace(c.Query("query")),
		Brands:    splitCSV(c.Query("brands")),
		Sizes:     splitCSV(c.Query("sizes")),
		Condition: strings.TrimSpace(c.Query("condition")),
		Status:    strings.TrimSpace(c.Query("status")),
		SKU:       strings.TrimSpace(c.Query("sku")),
		Sort:      pagination.Sort,
		Order:     pagination.Order,
		Page:      pagination.Page,
		Limit:     pagination.Limit,
	}
}

func splitCSV(raw string) []string {
	if raw == "" {
		return nil
	}
	var values []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			values = append(values, trimmed)
		}
	}
	return values
}

// GET /products
func (h *ProductHandler) GetProducts(c *gin.Context) {
	params := listParamsFromQuery(c)

	products, total, err := h.catalogService.List(params)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	result := utils.CreatePaginationResult(products, total, utils.PaginationParams{
		Page:  params.Page,
		Limit: params.Limit,
		Sort:  params.Sort,
		Order: params.Order,
	})
	utils.PaginatedResponse(c, result)
}

// POST /products
func (h *ProductHandler) CreateProduct(c *gin.Context) {
	var req services.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	product, err := h.productService.Create(&req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"product": product,
	})
}

// GET /products/:id
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	product, err := h.productService.Get(id)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"product": product,
	})
}

// PATCH /products/:id
func (h *ProductHandler) UpdateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	var req services.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	product, err := h.productService.Update(id, &req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"product": product,
	})
}

// DELETE /products/:id
func (h *ProductHandler) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	if err := h.productService.Delete(id); err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"deleted": true,
	})
}

// GET /products/facets
func (h *ProductHandler) GetFacets(c *gin.Context) {
	facets, err := h.catalogService.Facets()
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"facets": facets,
	})
}

// GET /products/stats
func (h *ProductHandler) GetStats(c *gin.Context) {
	stats, err := h.catalogService.Stats()
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"stats": stats,
	})
}

// GET /products/export
func (h *ProductHandler) ExportProducts(c *gin.Context) {
	params := listParamsFromQuery(c)

	c.Header("Content-Disposition", `attachment; filename="products_export.csv"`)
	c.Header("Content-Type", "text/csv; charset=utf-8")

	if err := h.exportService.Write(c.Writer, params); err != nil {
		if c.Writer.Written() {
			// Rows already went out; the envelope can no longer be
			// sent, so just record the failure.
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Header("Content-Disposition", "")
		c.Header("Content-Type", "")
		utils.RespondError(c, err)
	}
}

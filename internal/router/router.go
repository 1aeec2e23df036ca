// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/magazyn/inventory-backend/internal/config"
	"github.com/magazyn/inventory-backend/internal/handlers"
	"github.com/magazyn/inventory-backend/internal/middleware"
	"github.com/magazyn/inventory-backend/internal/services"
)

func Initialize(db *gorm.DB, cfg *config.Config) (*gin.Engine, error) {
	// Initialize services
	storageService, err := services.NewStorageService(cfg.Storage)
	if err != nil {
		return nil, err
	}

	productService := services.NewProductService(db, storageService)
	photoService := services.NewPhotoService(db, storageService)
	catalogService := services.NewCatalogService(db, cfg.Catalog)
	exportService := services.NewExportService(catalogService)

	// Initialize handlers
	productHandler := handlers.NewProductHandler(productService, catalogService, exportService)
	photoHandler := handlers.NewPhotoHandler(photoService)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("", productHandler.GetProducts)
			products.POST("", productHandler.CreateProduct)
			products.GET("/facets", productHandler.GetFacets)
			products.GET("/stats", productHandler.GetStats)
			products.GET("/export", productHandler.ExportProducts)

			products.GET("/:id", productHandler.GetProduct)
			products.PATCH("/:id", productHandler.UpdateProduct)
			products.DELETE("/:id", productHandler.DeleteProduct)

			photos := products.Group("/:id/photos")
			{
				photos.GET("", photoHandler.GetPhotos)
				photos.POST("", middleware.UploadRateLimit(), photoHandler.UploadPhotos)
				photos.PATCH("/reorder", photoHandler.ReorderPhotos)
				photos.PATCH("/:photoId", photoHandler.UpdatePhoto)
				photos.DELETE("/:photoId", photoHandler.DeletePhoto)
			}
		}
	}

	// Static file serving for locally stored assets (development)
	if cfg.Environment == "development" && cfg.Storage.Driver == "local" {
		r.Static(cfg.Storage.BaseURL, cfg.Storage.UploadDir)
	}

	return r, nil
}

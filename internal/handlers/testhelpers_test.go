// internal/handlers/testhelpers_test.go
package handlers

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/magazyn/inventory-backend/internal/config"
	"github.com/magazyn/inventory-backend/internal/models"
	"github.com/magazyn/inventory-backend/internal/services"
)

type testEnv struct {
	router  *gin.Engine
	db      *gorm.DB
	storage *services.StorageService
}

// newTestEnv wires the full handler stack against an in-memory database and
// a temp-dir storage backend, with the same routes the server registers.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Photo{}))

	storage, err := services.NewStorageService(config.StorageConfig{
		Driver:         "local",
		UploadDir:      t.TempDir(),
		BaseURL:        "/uploads",
		MaxUploadBytes: 10 * 1024 * 1024,
	})
	require.NoError(t, err)

	productService := services.NewProductService(db, storage)
	photoService := services.NewPhotoService(db, storage)
	catalogService := services.NewCatalogService(db, config.CatalogConfig{
		FacetScope:    config.FacetScopeInStock,
		ExportMaxRows: 10000,
	})
	exportService := services.NewExportService(catalogService)

	productHandler := NewProductHandler(productService, catalogService, exportService)
	photoHandler := NewPhotoHandler(photoService)

	r := gin.New()
	v1 := r.Group("/v1")
	products := v1.Group("/products")
	products.GET("", productHandler.GetProducts)
	products.POST("", productHandler.CreateProduct)
	products.GET("/facets", productHandler.GetFacets)
	products.GET("/stats", productHandler.GetStats)
	products.GET("/export", productHandler.ExportProducts)
	products.GET("/:id", productHandler.GetProduct)
	products.PATCH("/:id", productHandler.UpdateProduct)
	products.DELETE("/:id", productHandler.DeleteProduct)

	photos := products.Group("/:id/photos")
	photos.GET("", photoHandler.GetPhotos)
	photos.POST("", photoHandler.UploadPhotos)
	photos.PATCH("/reorder", photoHandler.ReorderPhotos)
	photos.PATCH("/:photoId", photoHandler.UpdatePhoto)
	photos.DELETE("/:photoId", photoHandler.DeletePhoto)

	return &testEnv{router: r, db: db, storage: storage}
}

func (e *testEnv) do(t *testing.T, method, path string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doJSON(t *testing.T, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	}
	return e.do(t, method, path, body, "application/json")
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
	Meta json.RawMessage `json:"meta"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

func decodeData(t *testing.T, w *httptest.ResponseRecorder, dst interface{}) envelope {
	t.Helper()

	env := decodeEnvelope(t, w)
	require.NotNil(t, env.Data, "expected a data payload, got: %s", w.Body.String())
	require.NoError(t, json.Unmarshal(env.Data, dst))
	return env
}

func pngUpload(t *testing.T, fileNames ...string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for _, name := range fileNames {
		part, err := mw.CreateFormFile("files", name)
		require.NoError(t, err)
		payload := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A}
		payload = append(payload, make([]byte, 16)...)
		_, err = part.Write(payload)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func createProductViaAPI(t *testing.T, env *testEnv, title string) models.Product {
	t.Helper()

	w := env.doJSON(t, http.MethodPost, "/v1/products", gin.H{"title": title})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		Product models.Product `json:"product"`
	}
	decodeData(t, w, &data)
	return data.Product
}

func uploadPhotoViaAPI(t *testing.T, env *testEnv, productID, fileName string) models.Photo {
	t.Helper()

	body, contentType := pngUpload(t, fileName)
	w := env.do(t, http.MethodPost, "/v1/products/"+productID+"/photos", body, contentType)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var data struct {
		Photos []models.Photo `json:"photos"`
	}
	decodeData(t, w, &data)
	require.Len(t, data.Photos, 1)
	return data.Photos[0]
}

// internal/handlers/photo.go
package handlers

import (
	"io"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/magazyn/inventory-backend/internal/services"
	"github.com/magazyn/inventory-backend/internal/utils"
)

type PhotoHandler struct {
	photoService *services.PhotoService
}

func NewPhotoHandler(photoService *services.PhotoService) *PhotoHandler {
	return &PhotoHandler{photoService: photoService}
}

type reorderRequest struct {
	Order []uuid.UUID `json:"order" binding:"required"`
}

// updatePhotoRequest is the single-photo PATCH body. Setting is_front to
// true promotes the photo; a role value retags it. is_front=false is not a
// supported operation (a product never voluntarily gives up its front).
type updatePhotoRequest struct {
	IsFront *bool   `json:"is_front"`
	Role    *string `json:"role"`
}

// GET /products/:id/photos
func (h *PhotoHandler) GetPhotos(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	photos, err := h.photoService.List(productID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"photos": photos,
	})
}

// POST /products/:id/photos
func (h *PhotoHandler) UploadPhotos(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		utils.BadRequestResponse(c, "Invalid multipart form", err.Error())
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		utils.BadRequestResponse(c, "No files uploaded", nil)
		return
	}

	role := c.PostForm("role")

	inputs := make([]services.UploadPhotoInput, 0, len(files))
	for _, fileHeader := range files {
		file, err := fileHeader.Open()
		if err != nil {
			utils.BadRequestResponse(c, "Unreadable file "+fileHeader.Filename, nil)
			return
		}
		data, err := io.ReadAll(file)
		file.Close()
		if err != nil {
			utils.BadRequestResponse(c, "Unreadable file "+fileHeader.Filename, nil)
			return
		}

		inputs = append(inputs, services.UploadPhotoInput{
			Data:         data,
			OriginalName: fileHeader.Filename,
			ContentType:  fileHeader.Header.Get("Content-Type"),
			Role:         role,
		})
	}

	photos, err := h.photoService.Upload(productID, inputs)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.CreatedResponse(c, gin.H{
		"photos": photos,
	})
}

// PATCH /products/:id/photos/reorder
func (h *PhotoHandler) ReorderPhotos(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}

	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	product, err := h.photoService.Reorder(productID, req.Order)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{
		"product": product,
	})
}

// PATCH /products/:id/photos/:photoId
func (h *PhotoHandler) UpdatePhoto(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}
	photoID, err := uuid.Parse(c.Param("photoId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid photo ID", nil)
		return
	}

	var req updatePhotoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequestResponse(c, "Invalid request body", err.Error())
		return
	}

	switch {
	case req.IsFront != nil && *req.IsFront:
		product, err := h.photoService.SetFront(productID, photoID)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.SuccessResponse(c, gin.H{"product": product})

	case req.Role != nil:
		product, err := h.photoService.UpdateRole(productID, photoID, *req.Role)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		utils.SuccessResponse(c, gin.H{"product": product})

	default:
		utils.BadRequestResponse(c, "Missing or invalid body", nil)
	}
}

// DELETE /products/:id/photos/:photoId
func (h *PhotoHandler) DeletePhoto(c *gin.Context) {
	productID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid product ID", nil)
		return
	}
	photoID, err := uuid.Parse(c.Param("photoId"))
	if err != nil {
		utils.BadRequestResponse(c, "Invalid photo ID", nil)
		return
	}

	product, err := h.photoService.Remove(productID, photoID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	utils.SuccessResponse(c, gin.H{"product": product})
}

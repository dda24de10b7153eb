package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jabinweb/church-manager-sub003/internal/model"
	"github.com/jabinweb/church-manager-sub003/pkg/storage"
)

// Max upload size: 25MB
const maxUploadSize = 25 << 20

var allowedTypes = map[string]bool{
	"image/jpeg":         true,
	"image/png":          true,
	"image/gif":          true,
	"image/webp":         true,
	"video/mp4":          true,
	"video/webm":         true,
	"audio/mpeg":         true,
	"audio/ogg":          true,
	"application/pdf":    true,
	"application/msword": true,
	"application/zip":    true,
}

// UploadHandler stores message attachments. The resulting URL goes
// into message metadata; the messaging core never touches file bytes.
type UploadHandler struct {
	store *storage.AttachmentStore
}

func NewUploadHandler(store *storage.AttachmentStore) *UploadHandler {
	return &UploadHandler{store: store}
}

// Upload godoc
// @Summary Upload a message attachment
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "File to upload"
// @Success 200 {object} storage.UploadResult
// @Router /upload [post]
func (h *UploadHandler) Upload(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{Error: "File upload is not available"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		if err.Error() == "http: request body too large" {
			c.JSON(http.StatusRequestEntityTooLarge, model.ErrorResponse{Error: "File too large (max 25MB)"})
			return
		}
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "File is required", Message: err.Error()})
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !allowedTypes[contentType] {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Unsupported file type: " + contentType})
		return
	}

	result, err := h.store.Upload(c.Request.Context(), file, header, "attachments")
	if err != nil {
		c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Upload failed"})
		return
	}
	c.JSON(http.StatusOK, result)
}

// UploadMultiple godoc
// @Summary Upload several attachments at once
// @Tags Upload
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param files formData file true "Files to upload"
// @Success 200 {array} storage.UploadResult
// @Router /upload/multiple [post]
func (h *UploadHandler) UploadMultiple(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusServiceUnavailable, model.ErrorResponse{Error: "File upload is not available"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize*4)

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Invalid multipart form", Message: err.Error()})
		return
	}

	files := form.File["files"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "At least one file is required"})
		return
	}
	if len(files) > 10 {
		c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Too many files (max 10)"})
		return
	}

	results := make([]*storage.UploadResult, 0, len(files))
	for _, header := range files {
		contentType := header.Header.Get("Content-Type")
		if !allowedTypes[contentType] {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Unsupported file type: " + contentType})
			return
		}

		f, err := header.Open()
		if err != nil {
			c.JSON(http.StatusBadRequest, model.ErrorResponse{Error: "Could not read file " + header.Filename})
			return
		}

		result, err := h.store.Upload(c.Request.Context(), f, header, "attachments")
		f.Close()
		if err != nil {
			c.JSON(http.StatusInternalServerError, model.ErrorResponse{Error: "Upload failed for " + header.Filename})
			return
		}
		results = append(results, result)
	}

	c.JSON(http.StatusOK, results)
}

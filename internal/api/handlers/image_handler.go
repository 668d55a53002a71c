package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"swappy/backend/internal/storage"
)

// ImageScheduler queues post-upload processing of an image.
type ImageScheduler interface {
	ImageUploaded(ctx context.Context, key string) error
}

// ImageHandler accepts image uploads and stores them in the blob store.
type ImageHandler struct {
	storage       storage.IS3Storage
	scheduler     ImageScheduler
	maxUploadSize int64
}

// NewImageHandler creates an ImageHandler. A nil scheduler skips
// post-upload processing.
func NewImageHandler(storageService storage.IS3Storage, scheduler ImageScheduler, maxUploadSizeMB int) *ImageHandler {
	return &ImageHandler{
		storage:       storageService,
		scheduler:     scheduler,
		maxUploadSize: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// Upload handles POST /api/images/upload with a multipart "file" field.
func (h *ImageHandler) Upload(c *gin.Context) {
	if h.maxUploadSize > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadSize)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondBadRequest(c, "No file uploaded")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondBadRequest(c, "Uploaded file could not be read")
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	url, key, err := h.storage.Upload(c.Request.Context(), fileHeader.Filename, contentType, file)
	if err != nil {
		respondError(c, err)
		return
	}

	if h.scheduler != nil {
		if err := h.scheduler.ImageUploaded(c.Request.Context(), key); err != nil {
			log.Printf("Warning: failed to schedule processing for image %s: %v", key, err)
		}
	}

	c.JSON(http.StatusOK, gin.H{"url": url, "key": key})
}

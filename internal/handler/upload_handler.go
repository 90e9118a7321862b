package handler

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"kiosk-service/pkg/logger"
	"kiosk-service/prometheus"
)

// UploadHandler stores product images on local disk and returns the path
// reference the catalog keeps.
type UploadHandler struct {
	dir string
}

// NewUploadHandler creates an upload handler writing into dir
func NewUploadHandler(dir string) *UploadHandler {
	return &UploadHandler{dir: dir}
}

// Upload accepts a multipart "image" file and writes it under the upload
// directory with a timestamp-based name.
func (h *UploadHandler) Upload(c echo.Context) error {
	log := logger.FromContext(c)

	fileHeader, err := c.FormFile("image")
	if err != nil {
		log.Warn("No image file in upload request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no file uploaded"})
	}

	src, err := fileHeader.Open()
	if err != nil {
		log.Error("Failed to open uploaded file", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
	}
	defer src.Close()

	if err := os.MkdirAll(h.dir, 0o755); err != nil {
		log.Error("Failed to create upload directory", zap.String("dir", h.dir), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
	}

	filename := fmt.Sprintf("%d%s", time.Now().UnixMilli(), filepath.Ext(fileHeader.Filename))
	dst, err := os.Create(filepath.Join(h.dir, filename))
	if err != nil {
		log.Error("Failed to create upload file", zap.String("filename", filename), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		log.Error("Failed to write upload file", zap.String("filename", filename), zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
	}

	prometheus.UploadsCounter.Inc()
	log.Info("Image uploaded",
		zap.String("filename", filename),
		zap.Int64("size", fileHeader.Size))
	return c.JSON(http.StatusCreated, echo.Map{"imageUrl": "/uploads/" + filename})
}

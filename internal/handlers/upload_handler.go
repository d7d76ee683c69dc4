package handlers

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/arixen/socialite/internal/services"
	"github.com/arixen/socialite/pkg/response"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const maxUploadSize = 10 << 20 // 10 MiB

var allowedImageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// UploadHandler stores post images on disk and hands back their public URLs.
type UploadHandler struct {
	uploadDir string
	publicURL string
}

// NewUploadHandler creates a new UploadHandler. The upload directory is
// created if missing.
func NewUploadHandler(uploadDir, publicURL string) (*UploadHandler, error) {
	if err := os.MkdirAll(uploadDir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &UploadHandler{uploadDir: uploadDir, publicURL: strings.TrimRight(publicURL, "/")}, nil
}

// RegisterUploadRoutes registers the upload route and the static file serving
// for previously uploaded images.
func (h *UploadHandler) RegisterUploadRoutes(priv *echo.Group, e *echo.Echo) {
	priv.POST("/uploads", h.UploadImage)
	e.Static("/uploads", h.uploadDir)
}

// UploadImage accepts one multipart image under the "image" field and returns
// the URL to reference from a post.
func (h *UploadHandler) UploadImage(c echo.Context) error {
	if getUserIDFromContext(c) == 0 {
		return services.ErrUnauthenticated
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image file is required")
	}
	if fileHeader.Size > maxUploadSize {
		return echo.NewHTTPError(http.StatusRequestEntityTooLarge, "image exceeds the 10MB limit")
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if !allowedImageExtensions[ext] {
		return echo.NewHTTPError(http.StatusBadRequest, "unsupported image type")
	}

	src, err := fileHeader.Open()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read uploaded file")
	}
	defer src.Close()

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(h.uploadDir, name))
	if err != nil {
		return fmt.Errorf("create upload file: %w", err)
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("store upload: %w", err)
	}

	return response.OK(c, http.StatusCreated, "image uploaded", echo.Map{
		"url": fmt.Sprintf("%s/uploads/%s", h.publicURL, name),
	})
}

package http

import (
	"encoding/base64"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/utafrali/storefront/pkg/httputil"
)

const (
	// MaxImageSize is the largest product image accepted.
	MaxImageSize = 2 << 20

	imageField = "image"
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/png":  true,
	"image/gif":  true,
}

// UploadResponse carries the stored image as a data URL.
type UploadResponse struct {
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
}

// UploadHandler turns an uploaded image into a data URL the admin form can
// store in a product's image_url.
type UploadHandler struct {
	logger *slog.Logger
}

// NewUploadHandler creates a new upload HTTP handler.
func NewUploadHandler(logger *slog.Logger) *UploadHandler {
	return &UploadHandler{logger: logger}
}

// Upload handles POST /api/v1/admin/uploads (multipart, field "image").
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	// Leave room for the multipart framing around the file.
	r.Body = http.MaxBytesReader(w, r.Body, MaxImageSize+64<<10)

	file, _, err := r.FormFile(imageField)
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeUploadError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "image must be at most 2 MB")
			return
		}
		writeUploadError(w, http.StatusBadRequest, "INVALID_INPUT", "multipart field \"image\" is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, MaxImageSize+1))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if len(data) == 0 {
		writeUploadError(w, http.StatusBadRequest, "INVALID_INPUT", "image is empty")
		return
	}
	if len(data) > MaxImageSize {
		writeUploadError(w, http.StatusRequestEntityTooLarge, "PAYLOAD_TOO_LARGE", "image must be at most 2 MB")
		return
	}

	contentType := http.DetectContentType(data)
	if !allowedImageTypes[contentType] {
		writeUploadError(w, http.StatusUnsupportedMediaType, "UNSUPPORTED_MEDIA_TYPE", "image must be a JPEG, PNG or GIF")
		return
	}

	h.logger.InfoContext(r.Context(), "image uploaded",
		slog.String("content_type", contentType),
		slog.Int("size", len(data)),
	)

	httputil.WriteData(w, http.StatusCreated, UploadResponse{
		URL:         "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data),
		ContentType: contentType,
		Size:        len(data),
	})
}

func writeUploadError(w http.ResponseWriter, status int, code, msg string) {
	httputil.WriteJSON(w, status, httputil.Response{
		Error: &httputil.ErrorResponse{Code: code, Message: msg},
	})
}

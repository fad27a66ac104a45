package handlers

import (
	"net/http"

	"github.com/isdelr/tripscribe-be/internal/services"
	"github.com/rs/zerolog/log"
)

// maxUploadBytes caps a single image upload at 10 MB.
const maxUploadBytes = 10 << 20

// ImageHandler handles HTTP requests for uploaded story images.
type ImageHandler struct {
	service services.AssetServiceProvider
}

// NewImageHandler creates a new ImageHandler.
func NewImageHandler(service services.AssetServiceProvider) *ImageHandler {
	return &ImageHandler{service: service}
}

// Upload stores one multipart image and returns its public URL. The upload
// happens before the story create/update that references it; an upload the
// client abandons is not reclaimed here.
func (h *ImageHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form")
		return
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		writeError(w, http.StatusBadRequest, "An image file is required")
		return
	}
	defer file.Close()

	name, err := h.service.Save(file, header.Filename, header.Header.Get("Content-Type"))
	if err != nil {
		log.Warn().Err(err).Str("filename", header.Filename).Msg("Failed to store uploaded image")
		writeError(w, statusFor(err), clientMessage(err, "Failed to store image"))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"error":    false,
		"imageUrl": h.service.PublicURL(r, name),
		"message":  "Image uploaded successfully.",
	})
}

// Delete removes one stored image by its public reference.
func (h *ImageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	imageURL := r.URL.Query().Get("imageUrl")
	if imageURL == "" {
		writeError(w, http.StatusBadRequest, "The imageUrl parameter is required")
		return
	}
	if services.IsPlaceholder(imageURL) {
		writeError(w, http.StatusBadRequest, services.ErrReservedAsset.Error())
		return
	}

	if err := h.service.Remove(services.AssetNameFromURL(imageURL)); err != nil {
		log.Warn().Err(err).Str("image_url", imageURL).Msg("Failed to delete image")
		writeError(w, statusFor(err), clientMessage(err, "Failed to delete image"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"error":   false,
		"message": "Image deleted successfully.",
	})
}

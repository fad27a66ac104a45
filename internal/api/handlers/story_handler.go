package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/tripscribe-be/internal/auth"
	"github.com/isdelr/tripscribe-be/internal/services"
	"github.com/rs/zerolog/log"
)

// StoryHandler handles HTTP requests for travel stories.
type StoryHandler struct {
	service services.StoryServiceProvider
	assets  services.AssetServiceProvider
}

// NewStoryHandler creates a new StoryHandler.
func NewStoryHandler(service services.StoryServiceProvider, assets services.AssetServiceProvider) *StoryHandler {
	return &StoryHandler{service: service, assets: assets}
}

// Add handles the creation of a new travel story for the caller.
func (h *StoryHandler) Add(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Could not resolve caller identity")
		return
	}

	var in services.StoryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.ImageURL == "" {
		in.ImageURL = h.assets.PlaceholderURL(r)
	}

	story, err := h.service.Create(claims.UserID, in)
	if err != nil {
		log.Warn().Err(err).Str("user_id", claims.UserID).Msg("Failed to add travel story")
		writeError(w, statusFor(err), clientMessage(err, "Failed to add travel story"))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"error":   false,
		"story":   story,
		"message": "Travel story added successfully.",
	})
}

// GetAll returns every story owned by the caller, most recent visit first.
func (h *StoryHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Could not resolve caller identity")
		return
	}

	stories, err := h.service.ListByOwner(claims.UserID)
	if err != nil {
		log.Error().Err(err).Str("user_id", claims.UserID).Msg("Failed to list travel stories")
		writeError(w, http.StatusInternalServerError, "Failed to retrieve travel stories")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"error":   false,
		"stories": stories,
	})
}

// Edit handles updating an existing story owned by the caller.
func (h *StoryHandler) Edit(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Could not resolve caller identity")
		return
	}
	id := chi.URLParam(r, "id")

	var in services.StoryInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.ImageURL == "" {
		in.ImageURL = h.assets.PlaceholderURL(r)
	}

	story, err := h.service.Update(claims.UserID, id, in)
	if err != nil {
		log.Warn().Err(err).Str("user_id", claims.UserID).Str("story_id", id).Msg("Failed to update travel story")
		writeError(w, statusFor(err), clientMessage(err, "Failed to update travel story"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"error":   false,
		"story":   story,
		"message": "Travel story updated successfully.",
	})
}

// Delete handles removing a story owned by the caller. The associated image
// is reclaimed by the service best-effort.
func (h *StoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Could not resolve caller identity")
		return
	}
	id := chi.URLParam(r, "id")

	if err := h.service.Delete(claims.UserID, id); err != nil {
		log.Warn().Err(err).Str("user_id", claims.UserID).Str("story_id", id).Msg("Failed to delete travel story")
		writeError(w, statusFor(err), clientMessage(err, "Failed to delete travel story"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"error":   false,
		"message": "Travel story deleted successfully.",
	})
}

// UpdateIsFavourite flips the favourite flag on a story owned by the caller.
func (h *StoryHandler) UpdateIsFavourite(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Could not resolve caller identity")
		return
	}
	id := chi.URLParam(r, "id")

	var payload struct {
		IsFavourite bool `json:"isFavourite"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	story, err := h.service.SetFavourite(claims.UserID, id, payload.IsFavourite)
	if err != nil {
		log.Warn().Err(err).Str("user_id", claims.UserID).Str("story_id", id).Msg("Failed to update favourite flag")
		writeError(w, statusFor(err), clientMessage(err, "Failed to update favourite flag"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"error":   false,
		"story":   story,
		"message": "Favourite updated successfully.",
	})
}

// Search returns the caller's stories matching a free-text query.
func (h *StoryHandler) Search(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Could not resolve caller identity")
		return
	}

	stories, err := h.service.Search(claims.UserID, r.URL.Query().Get("query"))
	if err != nil {
		log.Warn().Err(err).Str("user_id", claims.UserID).Msg("Failed to search travel stories")
		writeError(w, statusFor(err), clientMessage(err, "Failed to search travel stories"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"error":   false,
		"stories": stories,
	})
}

// Filter returns the caller's stories visited within an inclusive date
// window given as epoch-millisecond query parameters.
func (h *StoryHandler) Filter(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Could not resolve caller identity")
		return
	}

	stories, err := h.service.FilterByDateRange(claims.UserID,
		r.URL.Query().Get("startDate"), r.URL.Query().Get("endDate"))
	if err != nil {
		log.Warn().Err(err).Str("user_id", claims.UserID).Msg("Failed to filter travel stories")
		writeError(w, statusFor(err), clientMessage(err, "Failed to filter travel stories"))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"error":   false,
		"stories": stories,
	})
}

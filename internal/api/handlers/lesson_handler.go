package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/lessonlab/lessonlab-be/internal/api/respond"
	"github.com/lessonlab/lessonlab-be/internal/auth"
	"github.com/lessonlab/lessonlab-be/internal/models"
	"github.com/lessonlab/lessonlab-be/internal/services"
	"github.com/rs/zerolog/log"
)

// LessonHandler handles HTTP requests related to lessons.
type LessonHandler struct {
	service services.LessonServiceProvider
}

// NewLessonHandler creates a new LessonHandler.
func NewLessonHandler(service services.LessonServiceProvider) *LessonHandler {
	return &LessonHandler{service: service}
}

// LessonUpdatePayload is the body of a lesson update: the target id plus the
// patched fields.
type LessonUpdatePayload struct {
	ID string `json:"id"`
	models.LessonPatch
}

// GetAll lists lessons. Anonymous callers see published lessons only;
// authenticated callers additionally see their own drafts.
func (h *LessonHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	viewerID := ""
	if claims, ok := auth.SessionFromContext(r.Context()); ok {
		viewerID = claims.UserID
	}

	lessons, err := h.service.GetAllLessons(viewerID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list lessons")
		respond.Error(w, http.StatusInternalServerError, "Something went wrong.")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"lessons": lessons})
}

// Create publishes or drafts a new lesson owned by the caller.
func (h *LessonHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.SessionFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "You must be logged in for this operation.")
		return
	}

	var payload models.LessonCreate
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	lesson, err := h.service.CreateLesson(claims.UserID, payload)
	if err != nil {
		status, message := errorStatus(err)
		log.Warn().Err(err).Str("author_id", claims.UserID).Msg("Failed to create lesson")
		respond.Error(w, status, message)
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"lesson": lesson})
}

// Update patches an existing lesson. Only its author gets past the ownership
// check in the service.
func (h *LessonHandler) Update(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.SessionFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "You must be logged in for this operation.")
		return
	}

	var payload LessonUpdatePayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if payload.ID == "" {
		respond.Error(w, http.StatusBadRequest, "Missing lesson id.")
		return
	}

	updated, err := h.service.UpdateLesson(claims.UserID, payload.ID, payload.LessonPatch)
	if err != nil {
		status, message := errorStatus(err)
		log.Warn().Err(err).Str("user_id", claims.UserID).Str("lesson_id", payload.ID).Msg("Failed to update lesson")
		respond.Error(w, status, message)
		return
	}
	if !updated {
		respond.Error(w, http.StatusBadRequest, "Nothing to update.")
		return
	}
	respond.JSON(w, http.StatusOK, nil)
}

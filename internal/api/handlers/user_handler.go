package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/lessonlab/lessonlab-be/internal/api/respond"
	"github.com/lessonlab/lessonlab-be/internal/auth"
	"github.com/lessonlab/lessonlab-be/internal/models"
	"github.com/lessonlab/lessonlab-be/internal/services"
	"github.com/rs/zerolog/log"
)

// UserHandler handles HTTP requests for accounts, sessions and bookmarks.
type UserHandler struct {
	service  services.UserServiceProvider
	sessions *auth.Manager
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(service services.UserServiceProvider, sessions *auth.Manager) *UserHandler {
	return &UserHandler{service: service, sessions: sessions}
}

// SignupPayload defines the structure for registration requests.
type SignupPayload struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
}

// LoginPayload defines the structure for login requests.
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup handles new user registration and starts a session on success.
func (h *UserHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var payload SignupPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if payload.Password != payload.ConfirmPassword {
		respond.Error(w, http.StatusBadRequest, "Passwords do not match.")
		return
	}

	user, err := h.service.CreateUser(payload.Email, payload.Password, payload.FirstName, payload.LastName)
	if err != nil {
		status, message := errorStatus(err)
		log.Warn().Err(err).Str("email", payload.Email).Msg("Failed to register user")
		respond.Error(w, status, message)
		return
	}

	if err := h.sessions.Issue(w, user); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue session")
		respond.Error(w, http.StatusInternalServerError, "Something went wrong.")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"user": user})
}

// Login authenticates a user and starts a session. The failure response is
// the same whether the email is unknown or the password is wrong.
func (h *UserHandler) Login(w http.ResponseWriter, r *http.Request) {
	var payload LoginPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if payload.Email == "" || payload.Password == "" {
		respond.Error(w, http.StatusBadRequest, "Missing credentials.")
		return
	}

	user, err := h.service.AuthenticateUser(payload.Email, payload.Password)
	if err != nil {
		log.Warn().Str("email", payload.Email).Msg("Failed authentication attempt")
		respond.Error(w, http.StatusBadRequest, "Invalid email or password.")
		return
	}

	if err := h.sessions.Issue(w, user); err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to issue session")
		respond.Error(w, http.StatusInternalServerError, "Something went wrong.")
		return
	}
	log.Info().Str("user_id", user.ID).Msg("Started session")
	respond.JSON(w, http.StatusOK, map[string]any{"user": user})
}

// AutoLogin resolves the current session without asking for credentials.
func (h *UserHandler) AutoLogin(w http.ResponseWriter, r *http.Request) {
	claims := h.sessions.Decode(r)
	if claims == nil {
		respond.Error(w, http.StatusUnauthorized, "You must be logged in for this operation.")
		return
	}

	user, err := h.service.GetUserByID(claims.UserID)
	if err != nil {
		// The session outlived the account; drop it.
		h.sessions.Destroy(w)
		respond.Error(w, http.StatusUnauthorized, "You must be logged in for this operation.")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"user": user})
}

// Logout ends the session. It succeeds even when no session existed.
func (h *UserHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.sessions.Destroy(w)
	respond.JSON(w, http.StatusOK, nil)
}

// GetAll lists the public projection of every user.
func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.service.GetAllUsers()
	if err != nil {
		log.Error().Err(err).Msg("Failed to list users")
		respond.Error(w, http.StatusInternalServerError, "Something went wrong.")
		return
	}
	respond.JSON(w, http.StatusOK, map[string]any{"users": users})
}

// UpdateProfile patches the caller's own profile. The target id always comes
// from the session, never from the request body.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	claims, ok := auth.SessionFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "You must be logged in for this operation.")
		return
	}

	var patch models.ProfilePatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		respond.Error(w, http.StatusBadRequest, "Invalid request body.")
		return
	}

	updated, err := h.service.UpdateProfile(claims.UserID, patch)
	if err != nil {
		status, message := errorStatus(err)
		log.Warn().Err(err).Str("user_id", claims.UserID).Msg("Failed to update profile")
		respond.Error(w, status, message)
		return
	}
	if !updated {
		respond.Error(w, http.StatusBadRequest, "Nothing to update.")
		return
	}
	log.Info().Str("user_id", claims.UserID).Msg("Updated profile")
	respond.JSON(w, http.StatusOK, nil)
}

// AddBookmark adds the lesson to the caller's bookmarks. Repeating the call
// changes nothing.
func (h *UserHandler) AddBookmark(w http.ResponseWriter, r *http.Request) {
	h.toggleBookmark(w, r, h.service.AddBookmark)
}

// RemoveBookmark removes the lesson from the caller's bookmarks.
func (h *UserHandler) RemoveBookmark(w http.ResponseWriter, r *http.Request) {
	h.toggleBookmark(w, r, h.service.RemoveBookmark)
}

func (h *UserHandler) toggleBookmark(w http.ResponseWriter, r *http.Request, op func(userID, lessonID string) error) {
	claims, ok := auth.SessionFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "You must be logged in for this operation.")
		return
	}

	lessonID := chi.URLParam(r, "id")
	if err := op(claims.UserID, lessonID); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "Lesson not found.")
			return
		}
		log.Error().Err(err).Str("user_id", claims.UserID).Str("lesson_id", lessonID).Msg("Bookmark operation failed")
		respond.Error(w, http.StatusInternalServerError, "Something went wrong.")
		return
	}
	respond.JSON(w, http.StatusOK, nil)
}

// errorStatus maps service errors onto HTTP statuses without leaking
// anything the taxonomy does not already say.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, services.ErrConflict):
		return http.StatusBadRequest, services.ErrConflict.Error()
	case errors.Is(err, services.ErrBadCredentials):
		return http.StatusBadRequest, "Invalid email or password."
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, "You are not allowed to do this."
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound, "Not found."
	default:
		return http.StatusInternalServerError, "Something went wrong."
	}
}

package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"

	"github.com/fitstack/apiserver/internal/services"
	"github.com/fitstack/apiserver/internal/storage"
	"github.com/fitstack/apiserver/internal/store"
	"github.com/fitstack/apiserver/types"
)

const (
	maxAvatarBytes  = 5 << 20
	formFieldAvatar = "avatar"
	avatarRoute     = "/profile/avatar"
)

var avatarContentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// ProfileHandler provides HTTP handlers for the caller's own profile.
// Profile routes never take a user id: the subject is always the
// authenticated caller.
type ProfileHandler struct {
	userService *services.UserService
	avatars     *storage.AvatarStore
	logger      *slog.Logger
}

// NewProfileHandler constructs a handler with the provided
// dependencies. avatars may be nil when no object storage is
// configured; avatar routes are then not registered.
func NewProfileHandler(userService *services.UserService, avatars *storage.AvatarStore, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		userService: userService,
		avatars:     avatars,
		logger:      logger,
	}
}

// ProfileRouter registers profile routes on the given router.
func ProfileRouter(r chi.Router, handler *ProfileHandler, authMiddleware func(http.Handler) http.Handler) {
	r.Use(authMiddleware)
	r.Get("/", handler.GetProfile)
	r.Put("/", handler.UpdateProfile)
	if handler.avatars != nil {
		r.Post("/avatar", handler.UploadAvatar)
		r.Get("/avatar", handler.GetAvatar)
	}
}

// ProfileResponse is the public profile shape.
type ProfileResponse struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	FullName  string `json:"full_name"`
	Bio       string `json:"bio"`
	Gender    string `json:"gender"`
	City      string `json:"city"`
	BirthDate string `json:"birth_date"`
	AvatarURL string `json:"avatar_url"`
}

func profileResponse(user types.User) ProfileResponse {
	resp := ProfileResponse{
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		Bio:       user.Bio,
		Gender:    user.Gender,
		City:      user.City,
		BirthDate: user.BirthDate,
	}
	if user.AvatarKey != "" {
		resp.AvatarURL = avatarRoute
	}
	return resp
}

// UpdateProfileRequest is the JSON payload for profile updates. Blank
// optional fields keep their current values.
type UpdateProfileRequest struct {
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	Bio       string `json:"bio"`
	Gender    string `json:"gender"`
	City      string `json:"city"`
	BirthDate string `json:"birth_date"`
}

func (r UpdateProfileRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(1, 100)),
	)
}

func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, profileResponse(user))
}

func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}
	req.Username = strings.TrimSpace(req.Username)
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user.Username = req.Username
	if req.FullName != "" {
		user.FullName = req.FullName
	}
	if req.Bio != "" {
		user.Bio = req.Bio
	}
	if req.Gender != "" {
		user.Gender = req.Gender
	}
	if req.City != "" {
		user.City = req.City
	}
	if req.BirthDate != "" {
		user.BirthDate = req.BirthDate
	}

	updated, err := h.userService.Update(r.Context(), user)
	if err != nil {
		h.logger.Error("update profile failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to update profile")
		return
	}

	writeJSON(w, http.StatusOK, profileResponse(updated))
}

func (h *ProfileHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxAvatarBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile(formFieldAvatar)
	if err != nil {
		writeError(w, http.StatusBadRequest, "avatar file is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	contentType, ok := avatarContentTypes[ext]
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid file type: only jpeg and png are allowed")
		return
	}
	if header.Size > maxAvatarBytes {
		writeError(w, http.StatusBadRequest, "avatar file too large")
		return
	}

	key, err := h.avatars.Save(r.Context(), user.ID, ext, file, header.Size, contentType)
	if err != nil {
		h.logger.Error("avatar upload failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to upload avatar")
		return
	}

	oldKey := user.AvatarKey
	user.AvatarKey = key
	updated, err := h.userService.Update(r.Context(), user)
	if err != nil {
		h.logger.Error("avatar key update failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to upload avatar")
		return
	}

	// Best-effort cleanup of the replaced object.
	if oldKey != "" {
		if err := h.avatars.Remove(r.Context(), oldKey); err != nil {
			h.logger.Warn("old avatar cleanup failed", "key", oldKey, "error", err)
		}
	}

	writeJSON(w, http.StatusOK, profileResponse(updated))
}

func (h *ProfileHandler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	user, ok := h.currentUser(w, r)
	if !ok {
		return
	}

	if user.AvatarKey == "" {
		writeError(w, http.StatusNotFound, "no avatar uploaded")
		return
	}

	reader, err := h.avatars.Open(r.Context(), user.AvatarKey)
	if err != nil {
		h.logger.Error("avatar fetch failed", "key", user.AvatarKey, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch avatar")
		return
	}
	defer reader.Close()

	if contentType, ok := avatarContentTypes[strings.ToLower(filepath.Ext(user.AvatarKey))]; ok {
		w.Header().Set("Content-Type", contentType)
	}
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, reader)
}

// currentUser resolves the authenticated caller's account. Writes the
// error response itself when resolution fails.
func (h *ProfileHandler) currentUser(w http.ResponseWriter, r *http.Request) (types.User, bool) {
	userID, err := userIDFromContext(r.Context())
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return types.User{}, false
	}

	user, err := h.userService.GetByID(r.Context(), userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "user not found")
			return types.User{}, false
		}
		h.logger.Error("profile lookup failed", "error", err)
		writeError(w, http.StatusInternalServerError, "failed to fetch profile data")
		return types.User{}, false
	}
	return user, true
}

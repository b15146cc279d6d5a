package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"loopr-backend/internal/auth"
	"loopr-backend/internal/mailer"
	"loopr-backend/internal/middleware"
	"loopr-backend/internal/models"
	"loopr-backend/internal/repository"
)

// MaxAvatarSize caps uploaded avatar images.
const MaxAvatarSize = 2 << 20

type UserHandler struct {
	users  UserStore
	mailer mailer.Mailer
}

func NewUserHandler(users UserStore, m mailer.Mailer) *UserHandler {
	return &UserHandler{
		users:  users,
		mailer: m,
	}
}

type UpdateProfileRequest struct {
	Username  *string `json:"username"`
	Email     *string `json:"email"`
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Role      *string `json:"role"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

// --- GET /api/users/profile ---

func (h *UserHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	respondOK(w, http.StatusOK, "", user)
}

// --- PUT /api/users/profile ---

// UpdateProfile changes only the fields present in the body.
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	p := models.ProfileUpdate{
		Username:  user.Username,
		Email:     user.Email,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Role:      user.Role,
	}
	if req.Username != nil {
		p.Username = *req.Username
	}
	if req.Email != nil {
		p.Email = *req.Email
	}
	if req.FirstName != nil {
		p.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		p.LastName = *req.LastName
	}
	if req.Role != nil && models.Role(*req.Role) != user.Role {
		if user.Role != models.RoleAdmin {
			respondError(w, http.StatusForbidden, "Only admins can change roles")
			return
		}
		p.Role = models.Role(*req.Role)
	}
	p.Normalize()
	if err := p.Validate(); err != nil {
		respondValidation(w, err)
		return
	}

	updated, err := h.users.UpdateProfile(r.Context(), user.ID, p)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			respondError(w, http.StatusConflict, "Username or email already in use")
			return
		}
		respondInternal(w, r, "update profile", err)
		return
	}
	if updated == nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	respondOK(w, http.StatusOK, "Profile updated successfully", updated)
}

// --- PUT /api/users/change-password ---

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.CurrentPassword == "" || req.NewPassword == "" {
		respondError(w, http.StatusBadRequest, "Missing password fields")
		return
	}
	if !auth.CheckPassword(user.PasswordHash, req.CurrentPassword) {
		respondError(w, http.StatusBadRequest, "Current password is incorrect")
		return
	}
	if err := models.ValidatePassword(req.NewPassword); err != nil {
		respondValidation(w, err)
		return
	}

	hash, err := auth.HashPassword(req.NewPassword)
	if err != nil {
		respondInternal(w, r, "change password: hash", err)
		return
	}
	if err := h.users.UpdatePassword(r.Context(), user.ID, hash); err != nil {
		respondInternal(w, r, "change password: update", err)
		return
	}

	sendInBackground(r, h.mailer, mailer.PasswordChangedMessage(user.Email, user.FirstName, user.Username))
	respondOK(w, http.StatusOK, "Password changed successfully", nil)
}

// --- PUT /api/users/avatar ---

func (h *UserHandler) UploadAvatar(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MaxAvatarSize+64<<10)
	file, header, err := r.FormFile("avatar")
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			respondError(w, http.StatusRequestEntityTooLarge, "Avatar must be at most 2 MB")
			return
		}
		respondError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, MaxAvatarSize+1))
	if err != nil {
		respondError(w, http.StatusBadRequest, "Could not read uploaded file")
		return
	}
	if len(data) == 0 {
		respondError(w, http.StatusBadRequest, "No file uploaded")
		return
	}
	if len(data) > MaxAvatarSize {
		respondError(w, http.StatusRequestEntityTooLarge, "Avatar must be at most 2 MB")
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(data)
	}
	if !strings.HasPrefix(contentType, "image/") {
		respondError(w, http.StatusBadRequest, "Avatar must be an image")
		return
	}

	updated, err := h.users.UpdateAvatar(r.Context(), user.ID, models.Avatar{Data: data, ContentType: contentType})
	if err != nil {
		respondInternal(w, r, "upload avatar", err)
		return
	}
	if updated == nil {
		respondError(w, http.StatusNotFound, "User not found")
		return
	}
	respondOK(w, http.StatusOK, "Avatar updated successfully", updated)
}

// --- GET /api/users/avatar ---

func (h *UserHandler) GetAvatar(w http.ResponseWriter, r *http.Request) {
	user := middleware.CurrentUser(r.Context())
	if user == nil {
		respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if !user.HasAvatar() {
		respondError(w, http.StatusNotFound, "Avatar not found")
		return
	}

	contentType := user.Avatar.ContentType
	if contentType == "" {
		contentType = "image/png"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(user.Avatar.Data)))
	w.Header().Set("Cache-Control", "private, max-age=300")
	w.WriteHeader(http.StatusOK)
	w.Write(user.Avatar.Data)
}

package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"loopr-backend/internal/auth"
	"loopr-backend/internal/logging"
	"loopr-backend/internal/mailer"
	"loopr-backend/internal/models"
	"loopr-backend/internal/repository"
)

type AuthHandler struct {
	users  UserStore
	tokens TokenIssuer
	mailer mailer.Mailer
}

func NewAuthHandler(users UserStore, tokens TokenIssuer, m mailer.Mailer) *AuthHandler {
	return &AuthHandler{
		users:  users,
		tokens: tokens,
		mailer: m,
	}
}

// --- Request / Response types ---

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username  string `json:"username"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      string `json:"role"`
}

type SessionResponse struct {
	Token string            `json:"token"`
	User  models.PublicUser `json:"user"`
}

// --- POST /api/auth/login ---

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.users.FindByEmail(r.Context(), email)
	if err != nil {
		respondInternal(w, r, "login: find user", err)
		return
	}
	if user == nil || !user.IsActive || !auth.CheckPassword(user.PasswordHash, req.Password) {
		respondError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}

	now := time.Now().UTC()
	if err := h.users.UpdateLastLogin(r.Context(), user.ID, now); err != nil {
		respondInternal(w, r, "login: update last login", err)
		return
	}
	user.LastLogin = &now

	h.respondSession(w, r, http.StatusOK, "Login successful", user)
}

// --- POST /api/auth/register ---

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Username == "" || req.Email == "" || req.Password == "" || req.FirstName == "" || req.LastName == "" {
		respondError(w, http.StatusBadRequest, "All fields are required")
		return
	}

	profile := models.ProfileUpdate{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      models.Role(req.Role),
	}
	if profile.Role == "" {
		profile.Role = models.RoleAnalyst
	}
	profile.Normalize()
	if err := profile.Validate(); err != nil {
		respondValidation(w, err)
		return
	}
	// Admins are created by the seed or promoted by another admin.
	if profile.Role == models.RoleAdmin {
		respondError(w, http.StatusForbidden, "Cannot register as admin")
		return
	}
	if err := models.ValidatePassword(req.Password); err != nil {
		respondValidation(w, err)
		return
	}

	exists, err := h.users.ExistsByEmailOrUsername(r.Context(), profile.Email, profile.Username)
	if err != nil {
		respondInternal(w, r, "register: check existing", err)
		return
	}
	if exists {
		respondError(w, http.StatusConflict, "User with this email or username already exists")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		respondInternal(w, r, "register: hash password", err)
		return
	}

	user := &models.User{
		Username:     profile.Username,
		Email:        profile.Email,
		PasswordHash: hash,
		FirstName:    profile.FirstName,
		LastName:     profile.LastName,
		Role:         profile.Role,
		IsActive:     true,
	}
	if err := h.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			respondError(w, http.StatusConflict, "User with this email or username already exists")
			return
		}
		respondInternal(w, r, "register: create user", err)
		return
	}

	sendInBackground(r, h.mailer, mailer.WelcomeMessage(user.Email, user.FirstName, user.Username))
	h.respondSession(w, r, http.StatusCreated, "User registered successfully", user)
}

// --- POST /api/auth/logout ---

// Logout is stateless: the client discards its token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	respondOK(w, http.StatusOK, "Logout successful", nil)
}

func (h *AuthHandler) respondSession(w http.ResponseWriter, r *http.Request, status int, message string, user *models.User) {
	token, err := h.tokens.Issue(user.ID.Hex())
	if err != nil {
		respondInternal(w, r, "issue token", err)
		return
	}
	respondOK(w, status, message, SessionResponse{Token: token, User: user.Public()})
}

// --- Helpers ---

const mailTimeout = 15 * time.Second

// sendInBackground delivers msg without holding up the response. The
// request's values (logger) are kept; its cancellation is not.
func sendInBackground(r *http.Request, m mailer.Mailer, msg mailer.Message) {
	if m == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), mailTimeout)
	go func() {
		defer cancel()
		if err := m.Send(ctx, msg); err != nil {
			logging.FromContext(ctx).Warn("send email", "error", err, "subject", msg.Subject)
		}
	}()
}

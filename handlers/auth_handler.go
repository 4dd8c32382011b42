package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/shalevclinic/backend/auth"
	"github.com/shalevclinic/backend/middleware"
	"github.com/shalevclinic/backend/models"
	"github.com/shalevclinic/backend/repositories"
	"github.com/shalevclinic/backend/services"
	"github.com/shalevclinic/backend/utils"
	"go.uber.org/zap"
)

// RegisterRequest is the payload for account creation
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
}

// LoginRequest is the payload for credential verification
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// ChangePasswordRequest is the payload for password rotation
type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=6"`
}

// UserResponse is the public projection of a user account
type UserResponse struct {
	ID        string     `json:"id"`
	Username  string     `json:"username"`
	Role      string     `json:"role"`
	LastLogin *time.Time `json:"lastLogin,omitempty"`
}

// LoginResponse carries the issued token and the signed-in user
type LoginResponse struct {
	Message string       `json:"message"`
	Token   string       `json:"token"`
	User    UserResponse `json:"user"`
}

func userToResponse(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID.Hex(),
		Username:  u.Username,
		Role:      u.Role,
		LastLogin: u.LastLogin,
	}
}

// AuthHandler handles account and session endpoints
type AuthHandler struct {
	users      repositories.UserRepository
	tokens     *auth.TokenService
	bcryptCost int
	logger     *zap.Logger
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(users repositories.UserRepository, tokens *auth.TokenService, bcryptCost int, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		users:      users,
		tokens:     tokens,
		bcryptCost: bcryptCost,
		logger:     logger,
	}
}

// HandleRegister handles POST /api/auth/register
func (h *AuthHandler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	hash, err := auth.HashPassword(req.Password, h.bcryptCost)
	if err != nil {
		h.logger.Error("failed to hash password",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	user := &models.User{
		Username: req.Username,
		Password: hash,
		Role:     models.RoleEditor,
	}

	if err := h.users.Create(ctx, user); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("user registered",
		zap.String("request_id", requestID),
		zap.String("username", user.Username))

	_ = utils.WriteCreated(w, map[string]interface{}{
		"message": "User created successfully",
		"user":    userToResponse(user),
	})
}

// HandleLogin handles POST /api/auth/login
func (h *AuthHandler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	user, err := h.users.FindByUsername(ctx, req.Username)
	if err != nil {
		if services.IsNotFoundError(err) {
			// Same response for unknown user and wrong password
			_ = utils.WriteUnauthorized(w, services.ErrBadCredentials.Message)
			return
		}
		HandleServiceError(w, err, h.logger)
		return
	}

	if !auth.CheckPassword(user.Password, req.Password) {
		h.logger.Warn("failed login attempt",
			zap.String("request_id", requestID),
			zap.String("username", req.Username))
		_ = utils.WriteUnauthorized(w, services.ErrBadCredentials.Message)
		return
	}

	now := time.Now()
	if err := h.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		h.logger.Error("failed to update last login",
			zap.String("request_id", requestID),
			zap.Error(err))
	}
	user.LastLogin = &now

	token, err := h.tokens.Issue(user.ID.Hex(), user.Username, user.Role)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("user logged in",
		zap.String("request_id", requestID),
		zap.String("username", user.Username))

	_ = utils.WriteOK(w, LoginResponse{
		Message: "Login successfully",
		Token:   token,
		User:    userToResponse(user),
	})
}

// HandleMe handles GET /api/auth/me
func (h *AuthHandler) HandleMe(w http.ResponseWriter, r *http.Request) {
	principal := middleware.GetPrincipalFromContext(r.Context())
	if principal == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	_ = utils.WriteOK(w, map[string]interface{}{
		"user": userToResponse(principal),
	})
}

// HandleChangePassword handles PUT /api/auth/change-password
func (h *AuthHandler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestIDFromContext(ctx)

	principal := middleware.GetPrincipalFromContext(ctx)
	if principal == nil {
		_ = utils.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = utils.WriteBadRequest(w, "Invalid request body", nil)
		return
	}

	if err := utils.ValidateStruct(&req); err != nil {
		HandleValidationError(w, err, h.logger)
		return
	}

	user, err := h.users.FindCredentials(ctx, principal.ID)
	if err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	if !auth.CheckPassword(user.Password, req.CurrentPassword) {
		_ = utils.WriteBadRequest(w, "Current password is incorrect", nil)
		return
	}

	hash, err := auth.HashPassword(req.NewPassword, h.bcryptCost)
	if err != nil {
		h.logger.Error("failed to hash password",
			zap.String("request_id", requestID),
			zap.Error(err))
		_ = utils.WriteInternalServerError(w, "")
		return
	}

	if err := h.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		HandleServiceError(w, err, h.logger)
		return
	}

	h.logger.Info("password changed",
		zap.String("request_id", requestID),
		zap.String("username", user.Username))

	_ = utils.WriteOK(w, map[string]string{"message": "Password updated successfully"})
}

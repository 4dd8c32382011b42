package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/shalevclinic/backend/auth"
	"github.com/shalevclinic/backend/models"
	"github.com/shalevclinic/backend/services"
	"github.com/shalevclinic/backend/utils"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// TokenValidator verifies a bearer token and returns its claims
type TokenValidator interface {
	Validate(tokenString string) (*auth.Claims, error)
}

// PrincipalResolver resolves a token subject to a live user record with the
// password hash excluded
type PrincipalResolver interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// AuthMiddleware is the authentication gate: it extracts a bearer token,
// verifies it, resolves the subject to a live user record and attaches the
// principal to the request context. A token referencing a deleted user is
// rejected even when cryptographically valid.
type AuthMiddleware struct {
	validator TokenValidator
	resolver  PrincipalResolver
	logger    *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(validator TokenValidator, resolver PrincipalResolver, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		validator: validator,
		resolver:  resolver,
		logger:    logger,
	}
}

// Authenticate requires a valid bearer token resolving to an existing user.
// Failures are terminal for the request; the client must resubmit with a
// valid token.
func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		token := extractBearerToken(r)
		if token == "" {
			m.logger.Warn("missing token", zap.String("request_id", requestID))
			_ = utils.WriteUnauthorized(w, services.ErrMissingToken.Message)
			return
		}

		claims, err := m.validator.Validate(token)
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("request_id", requestID),
				zap.Error(err))
			m.writeAuthError(w, err)
			return
		}

		userID, err := primitive.ObjectIDFromHex(claims.Subject)
		if err != nil {
			m.logger.Warn("malformed subject in token",
				zap.String("request_id", requestID),
				zap.String("subject", claims.Subject))
			_ = utils.WriteForbidden(w, services.ErrInvalidToken.Message)
			return
		}

		principal, err := m.resolver.FindByID(ctx, userID)
		if err != nil {
			if services.IsNotFoundError(err) {
				m.logger.Warn("token subject no longer exists",
					zap.String("request_id", requestID),
					zap.String("user_id", claims.Subject))
				_ = utils.WriteUnauthorized(w, services.ErrPrincipalNotFound.Message)
				return
			}
			m.logger.Error("failed to resolve principal",
				zap.String("request_id", requestID),
				zap.Error(err))
			_ = utils.WriteInternalServerError(w, "")
			return
		}

		m.logger.Debug("authentication successful",
			zap.String("request_id", requestID),
			zap.String("user_id", principal.ID.Hex()),
			zap.String("username", principal.Username))

		next.ServeHTTP(w, r.WithContext(WithPrincipal(ctx, principal)))
	})
}

// RequireAdmin requires an authenticated principal with the admin role.
// It runs only after Authenticate has populated the principal; it is not a
// standalone credential check.
func (m *AuthMiddleware) RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		principal := GetPrincipalFromContext(ctx)
		if principal == nil {
			m.logger.Error("principal not found in context",
				zap.String("request_id", requestID))
			_ = utils.WriteUnauthorized(w, "Authentication required")
			return
		}

		if !principal.IsAdmin() {
			m.logger.Warn("insufficient role",
				zap.String("request_id", requestID),
				zap.String("username", principal.Username),
				zap.String("role", principal.Role))
			_ = utils.WriteForbidden(w, services.ErrInsufficientRole.Message)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// writeAuthError maps a token verification failure to its response status
func (m *AuthMiddleware) writeAuthError(w http.ResponseWriter, err error) {
	switch {
	case services.IsForbiddenError(err):
		_ = utils.WriteForbidden(w, err.Error())
	case services.IsUnauthorizedError(err):
		_ = utils.WriteUnauthorized(w, err.Error())
	default:
		_ = utils.WriteInternalServerError(w, "")
	}
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return ""
	}

	return strings.TrimSpace(parts[1])
}

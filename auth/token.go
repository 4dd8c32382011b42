package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/shalevclinic/backend/config"
	"github.com/shalevclinic/backend/services"
)

// Claims carries the identity encoded into a bearer token: the subject user
// ID plus username and role. Expiry is set at issuance and never extended.
type Claims struct {
	jwt.RegisteredClaims
	Username string `json:"username"`
	Role     string `json:"role"`
}

// TokenService issues and verifies signed bearer tokens. The signing secret
// is injected once at construction; issuance and verification share it.
type TokenService struct {
	secret []byte
	ttl    time.Duration
}

// NewTokenService creates a TokenService from the auth configuration
func NewTokenService(cfg config.AuthConfig) *TokenService {
	return &TokenService{
		secret: []byte(cfg.JWTSecret),
		ttl:    cfg.TokenTTL,
	}
}

// Issue signs a new token for the given user. Reissuing for the same user
// produces a new token that coexists with any prior unexpired one; there is
// no revocation list.
func (s *TokenService) Issue(userID, username, role string) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.ttl)),
		},
		Username: username,
		Role:     role,
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", services.WrapInternal("failed to sign token", err)
	}

	return signed, nil
}

// Validate verifies the signature and expiry of a token and returns its
// claims. Expired tokens and malformed or mis-signed tokens map to distinct
// domain errors so the boundary can answer 403 with the right reason.
func (s *TokenService) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, services.ErrInvalidToken
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, services.ErrExpiredToken
		}
		return nil, services.NewDomainError(services.ErrorTypeForbidden, "INVALID_TOKEN", "incorrect token", err)
	}

	if !token.Valid {
		return nil, services.ErrInvalidToken
	}

	return claims, nil
}

// Package service — AuthService guards the admin surface (product
// registration) with a single bcrypt-verified credential and short-lived
// JWT access tokens.
package service

import (
	"fmt"
	"time"

	"github.com/3dstuff/store-bff-go/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// AuthService issues and validates admin access tokens.
type AuthService struct {
	jwtSecret    []byte
	accessTTL    time.Duration
	adminUser    string
	passwordHash string // bcrypt; empty disables login entirely
	logger       *zap.Logger
}

// NewAuth creates the admin auth service.
func NewAuth(jwtSecret string, accessTTL time.Duration, adminUser, passwordHash string, logger *zap.Logger) *AuthService {
	return &AuthService{
		jwtSecret:    []byte(jwtSecret),
		accessTTL:    accessTTL,
		adminUser:    adminUser,
		passwordHash: passwordHash,
		logger:       logger,
	}
}

// Enabled reports whether an admin credential is configured at all.
func (s *AuthService) Enabled() bool {
	return s.passwordHash != ""
}

// Login verifies the admin credential and returns a signed access token.
func (s *AuthService) Login(req *domain.LoginRequest) (*domain.LoginResponse, error) {
	if !s.Enabled() {
		return nil, &domain.ErrConfig{Setting: "ADMIN_PASSWORD_HASH", Action: "login administrativo"}
	}
	if req.Username != s.adminUser {
		s.logger.Warn("admin login failed: unknown user", zap.String("username", req.Username))
		return nil, &domain.ErrUnauthorized{Message: "Credenciais inválidas"}
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("admin login failed: bad password", zap.String("username", req.Username))
		return nil, &domain.ErrUnauthorized{Message: "Credenciais inválidas"}
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": s.adminUser,
		"iat": now.Unix(),
		"exp": now.Add(s.accessTTL).Unix(),
		"iss": "store-bff",
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	s.logger.Info("admin login", zap.String("username", req.Username))
	return &domain.LoginResponse{
		AccessToken: token,
		ExpiresIn:   int(s.accessTTL.Seconds()),
	}, nil
}

// ValidateAccessToken parses and verifies a bearer token, returning the
// subject on success.
func (s *AuthService) ValidateAccessToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil || !token.Valid {
		return "", &domain.ErrUnauthorized{Message: "Token inválido ou expirado"}
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", &domain.ErrUnauthorized{Message: "Token inválido ou expirado"}
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", &domain.ErrUnauthorized{Message: "Token inválido ou expirado"}
	}
	return sub, nil
}

package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/3dstuff/store-bff-go/internal/service"

	"go.uber.org/zap"
)

type contextKey string

const adminUserKey contextKey = "adminUser"

// JWTAuthMiddleware validates Bearer tokens on admin routes and injects
// the authenticated subject into the request context.
func JWTAuthMiddleware(authSvc *service.AuthService, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.Warn("auth: missing token",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "Token de autenticação não fornecido")
				return
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.Warn("auth: invalid token format",
					zap.String("path", r.URL.Path),
					zap.String("remote_addr", r.RemoteAddr),
				)
				writeError(w, http.StatusUnauthorized, "Formato de token inválido")
				return
			}

			subject, err := authSvc.ValidateAccessToken(parts[1])
			if err != nil {
				logger.Warn("auth: invalid or expired token",
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				writeError(w, http.StatusUnauthorized, err.Error())
				return
			}

			ctx := context.WithValue(r.Context(), adminUserKey, subject)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminUserFromContext extracts the authenticated admin user from context.
func AdminUserFromContext(ctx context.Context) string {
	v, _ := ctx.Value(adminUserKey).(string)
	return v
}

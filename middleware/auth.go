// Package middleware, HTTP request pipeline'ına eklenen ara katmanları barındırır.
//
// Go'da middleware bir fonksiyondur:
//
//	func(next http.Handler) http.Handler
//
// Zincir: RequestID → RateLimit → Auth → (WriteScope) → Handler.
// Bir middleware hata bulursa next'i çağırmaz, request orada durur.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/HuyaneMatsu/hata-sub016/handlers"
	"github.com/HuyaneMatsu/hata-sub016/models"
	"github.com/HuyaneMatsu/hata-sub016/pkg"
)

// TokenValidator, bearer token'ı doğrulayan servis.
// services.TokenService bunu implicit olarak karşılar.
type TokenValidator interface {
	ValidateToken(tokenString string) (*models.APIClaims, error)
}

// AuthMiddleware, JWT token doğrulama middleware'ı.
type AuthMiddleware struct {
	tokens TokenValidator
}

// NewAuthMiddleware, constructor.
func NewAuthMiddleware(tokens TokenValidator) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens}
}

// Require, geçerli bir bearer token zorunlu kılar.
// Token yoksa veya geçersizse → 401. Geçerliyse claim'ler context'e eklenir.
//
// Header formatı: Authorization: Bearer <token>
func (m *AuthMiddleware) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "authorization header required")
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "invalid authorization format, use: Bearer <token>")
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := m.tokens.ValidateToken(tokenString)
		if err != nil {
			pkg.Error(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), handlers.ClaimsContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

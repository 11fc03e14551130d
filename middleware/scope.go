package middleware

import (
	"net/http"

	"github.com/HuyaneMatsu/hata-sub016/handlers"
	"github.com/HuyaneMatsu/hata-sub016/models"
	"github.com/HuyaneMatsu/hata-sub016/pkg"
)

// RequireWrite, token'ın "write" scope'u taşımasını zorunlu kılar.
//
// AuthMiddleware'den SONRA çalışır: context'te claim'ler mevcuttur.
// Ingest ve overwrite endpoint'leri bununla sarılır; okuma endpoint'leri "read" ile yetinir.
//
// Kullanım:
//
//	authMw.Require(middleware.RequireWrite(http.HandlerFunc(overwriteHandler.Set)))
func RequireWrite(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := r.Context().Value(handlers.ClaimsContextKey).(*models.APIClaims)
		if !ok {
			pkg.ErrorWithMessage(w, http.StatusUnauthorized, "token claims not found in context")
			return
		}

		if !claims.CanWrite() {
			pkg.ErrorWithMessage(w, http.StatusForbidden, "write scope required")
			return
		}

		next.ServeHTTP(w, r)
	})
}

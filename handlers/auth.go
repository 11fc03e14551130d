// Package handlers, HTTP request handler'larını içerir.
//
// Handler'lar sadece HTTP'yi bilir: path/body parse eder, service'i çağırır,
// sonucu pkg.JSON / pkg.Error ile yazar. İş mantığı service katmanındadır.
package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/HuyaneMatsu/hata-sub016/models"
	"github.com/HuyaneMatsu/hata-sub016/pkg"
)

// contextKey, context'te değer taşımak için kullanılan key tipi.
// String key kullanmak başka paketlerle çakışabilir.
type contextKey string

// ClaimsContextKey, AuthMiddleware'in doğruladığı *models.APIClaims'i taşır.
const ClaimsContextKey contextKey = "claims"

// RequestIDContextKey, RequestID middleware'inin atadığı ID'yi taşır.
const RequestIDContextKey contextKey = "request_id"

// ClaimsFromContext, context'teki token claim'lerini döner.
func ClaimsFromContext(r *http.Request) (*models.APIClaims, bool) {
	claims, ok := r.Context().Value(ClaimsContextKey).(*models.APIClaims)
	return claims, ok
}

// pathSnowflake, URL path parametresini Snowflake olarak parse eder.
// Geçersizse ErrBadRequest döner.
func pathSnowflake(r *http.Request, name string) (models.Snowflake, error) {
	raw := r.PathValue(name)
	id, err := models.ParseSnowflake(raw)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%w: invalid %s %q", pkg.ErrBadRequest, name, raw)
	}
	return id, nil
}

// decodeBody, JSON body'yi dst'ye okur. Bilinmeyen alanlar reddedilir.
func decodeBody(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", pkg.ErrBadRequest, err)
	}
	return nil
}

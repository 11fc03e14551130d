package models

import "github.com/golang-jwt/jwt/v5"

// APIClaims, inspection API'nin JWT token'ı içindeki veriler (payload).
//
// Token'lar `hata token` komutuyla üretilir ve HS256 ile imzalanır.
// Subject: token'ın kime verildiği (ör: "dashboard", "ops-script").
// Scope: "read" veya "write": write, ingest ve overwrite endpoint'leri için gerekir.
type APIClaims struct {
	Scope string `json:"scope"`
	jwt.RegisteredClaims
}

// Token scope'ları.
const (
	ScopeRead  = "read"
	ScopeWrite = "write"
)

// CanWrite, token'ın yazma yetkisi olup olmadığını döner.
func (c *APIClaims) CanWrite() bool {
	return c.Scope == ScopeWrite
}

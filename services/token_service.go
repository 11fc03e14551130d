// Package services, iş mantığı katmanıdır.
//
// Handler'lar HTTP'yi, repository'ler SQLite'ı bilir; service'ler ikisinin arasında
// registry'yi, permission cache'ini ve WS broadcast'lerini koordine eder.
package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/HuyaneMatsu/hata-sub016/models"
	"github.com/HuyaneMatsu/hata-sub016/pkg"
)

// TokenService, inspection API token'larını üretir ve doğrular.
//
// ws.TokenValidator ve middleware.TokenValidator bu interface'in
// ValidateToken metodunu implicit olarak karşılar.
type TokenService interface {
	// Issue, subject ve scope için HS256 imzalı bir token üretir.
	Issue(subject, scope string, ttl time.Duration) (string, error)

	// ValidateToken, imza, issuer, süre ve scope kontrolü yapar.
	ValidateToken(tokenString string) (*models.APIClaims, error)
}

type tokenService struct {
	secret []byte
	issuer string
	now    func() time.Time
}

// NewTokenService, constructor.
func NewTokenService(secret, issuer string) TokenService {
	return &tokenService{
		secret: []byte(secret),
		issuer: issuer,
		now:    time.Now,
	}
}

func (s *tokenService) Issue(subject, scope string, ttl time.Duration) (string, error) {
	if subject == "" {
		return "", fmt.Errorf("%w: subject is required", pkg.ErrBadRequest)
	}
	if scope != models.ScopeRead && scope != models.ScopeWrite {
		return "", fmt.Errorf("%w: unknown scope %q", pkg.ErrBadRequest, scope)
	}
	if ttl <= 0 {
		return "", fmt.Errorf("%w: token lifetime must be positive", pkg.ErrBadRequest)
	}

	now := s.now()
	claims := &models.APIClaims{
		Scope: scope,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *tokenService) ValidateToken(tokenString string) (*models.APIClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &models.APIClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(s.issuer), jwt.WithExpirationRequired(), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid token", pkg.ErrUnauthorized)
	}

	claims, ok := token.Claims.(*models.APIClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("%w: invalid token claims", pkg.ErrUnauthorized)
	}

	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: token has no subject", pkg.ErrUnauthorized)
	}
	if claims.Scope != models.ScopeRead && claims.Scope != models.ScopeWrite {
		return nil, fmt.Errorf("%w: token has unknown scope", pkg.ErrUnauthorized)
	}

	return claims, nil
}

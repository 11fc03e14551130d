// Package config, uygulamanın tüm konfigürasyonunu merkezi olarak yönetir.
// Environment variable'lardan okur, .env dosyasını da destekler.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config, uygulamanın tüm konfigürasyon değerlerini taşır.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Cache     CacheConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

// ServerConfig, HTTP server ayarları.
type ServerConfig struct {
	Host string
	Port int
}

// DatabaseConfig, SQLite database ayarları.
type DatabaseConfig struct {
	Path string // SQLite dosya yolu (ör: ./data/hata.db) veya ":memory:"
}

// JWTConfig, inspection API token ayarları.
type JWTConfig struct {
	Secret      string        // HS256 imzalama anahtarı: GİZLİ TUTULMALI
	Issuer      string        // Token'lara yazılan ve doğrulanan "iss"
	TokenExpiry time.Duration // `hata token` komutunun varsayılan token ömrü
}

// CacheConfig, permission cache ayarları.
type CacheConfig struct {
	PermissionTTL   time.Duration // 0 → kayıtlar sadece invalidation ile silinir
	CleanupInterval time.Duration
}

// RateLimitConfig, IP başına API rate limit ayarları.
type RateLimitConfig struct {
	Requests int // Pencere başına izin verilen istek sayısı (0 → kapalı)
	Window   time.Duration
}

// CORSConfig, izin verilen origin listesi.
type CORSConfig struct {
	AllowedOrigins []string
}

// Load, environment variable'lardan Config oluşturur.
// .env dosyası varsa önce onu yükler; yoksa sessizce devam eder.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return fromEnv()
}

// fromEnv, .env yüklemeden sadece process environment'ından okur (testler bunu kullanır).
func fromEnv() (*Config, error) {
	port, err := strconv.Atoi(getEnv("SERVER_PORT", "9090"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}

	tokenExpiryHours, err := strconv.Atoi(getEnv("JWT_TOKEN_EXPIRY_HOURS", "720"))
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_TOKEN_EXPIRY_HOURS: %w", err)
	}

	cacheTTL, err := strconv.Atoi(getEnv("PERMISSION_CACHE_TTL_SECONDS", "300"))
	if err != nil || cacheTTL < 0 {
		return nil, fmt.Errorf("invalid PERMISSION_CACHE_TTL_SECONDS: %q", os.Getenv("PERMISSION_CACHE_TTL_SECONDS"))
	}

	cleanup, err := strconv.Atoi(getEnv("PERMISSION_CACHE_CLEANUP_SECONDS", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid PERMISSION_CACHE_CLEANUP_SECONDS: %w", err)
	}

	rateRequests, err := strconv.Atoi(getEnv("RATE_LIMIT_REQUESTS", "120"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_REQUESTS: %w", err)
	}

	rateWindow, err := strconv.Atoi(getEnv("RATE_LIMIT_WINDOW_SECONDS", "60"))
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_WINDOW_SECONDS: %w", err)
	}

	jwtSecret := getEnv("JWT_SECRET", "")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET environment variable is required")
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "0.0.0.0"),
			Port: port,
		},
		Database: DatabaseConfig{
			Path: getEnv("DATABASE_PATH", "./data/hata.db"),
		},
		JWT: JWTConfig{
			Secret:      jwtSecret,
			Issuer:      getEnv("JWT_ISSUER", "hata"),
			TokenExpiry: time.Duration(tokenExpiryHours) * time.Hour,
		},
		Cache: CacheConfig{
			PermissionTTL:   time.Duration(cacheTTL) * time.Second,
			CleanupInterval: time.Duration(cleanup) * time.Second,
		},
		RateLimit: RateLimitConfig{
			Requests: rateRequests,
			Window:   time.Duration(rateWindow) * time.Second,
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3030")),
		},
	}

	return cfg, nil
}

// Addr, HTTP server'ın dinleyeceği adresi döner (ör: "0.0.0.0:9090").
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// getEnv, environment variable'ı okur, yoksa fallback değeri döner.
func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

// splitList, virgülle ayrılmış listeyi parse eder; boş elemanlar atlanır.
func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

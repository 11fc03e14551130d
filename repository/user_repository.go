package repository

import (
	"context"

	"github.com/HuyaneMatsu/hata-sub016/models"
)

// UserRepository, principal (user/client/webhook) veritabanı işlemleri.
type UserRepository interface {
	Upsert(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id models.Snowflake) error
	GetAll(ctx context.Context) ([]models.User, error)
}

// MemberRepository, guild üyelikleri (GuildProfile) ve üye rolleri.
type MemberRepository interface {
	// Upsert, üyeliği yazar ve rol listesini değiştirir. Transaction içinde çağrılmalıdır.
	Upsert(ctx context.Context, profile *models.GuildProfile) error

	// Delete, tek bir üyeliği siler. Yoksa pkg.ErrNotFound.
	Delete(ctx context.Context, guildID, userID models.Snowflake) error

	// DeleteAllByUser, kullanıcının tüm üyeliklerini siler (webhook'a dönüşen kullanıcılar için).
	DeleteAllByUser(ctx context.Context, userID models.Snowflake) error

	// GetAll, tüm üyelikleri rolleriyle birlikte döner.
	GetAll(ctx context.Context) ([]models.GuildProfile, error)
}

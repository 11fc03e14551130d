// Package repository, registry'nin kalıcı kopyası için veritabanı soyutlamaları.
//
// Her entity için bir interface + SQLite implementasyonu vardır. Implementasyonlar
// database.TxQuerier alır: normal yazmalarda *sql.DB, çok tablolu yazmalarda *sql.Tx.
package repository

import (
	"context"

	"github.com/HuyaneMatsu/hata-sub016/models"
)

// GuildRepository, guild veritabanı işlemleri.
type GuildRepository interface {
	// Upsert, guild'in ad/owner bilgisini yazar (yoksa oluşturur).
	Upsert(ctx context.Context, guild *models.Guild) error

	// Delete, guild'i siler. Roller, kanallar ve üyelikler CASCADE ile gider.
	Delete(ctx context.Context, id models.Snowflake) error

	// GetAll, tüm guild'leri döner (startup'ta registry'yi doldurmak için).
	GetAll(ctx context.Context) ([]models.Guild, error)
}

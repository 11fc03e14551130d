package repository

import (
	"context"

	"github.com/HuyaneMatsu/hata-sub016/models"
)

// OverwriteRepository, kanal permission overwrite'ları veritabanı işlemleri.
//
// Her (channel_id, target_id) çifti için tek bir allow/deny kaydı tutulur.
// target_id bir rol, bir kullanıcı veya @everyone için guild ID'sidir.
type OverwriteRepository interface {
	// GetByChannel, bir kanalın tüm overwrite'larını döner.
	GetByChannel(ctx context.Context, channelID models.Snowflake) ([]models.PermissionOverwrite, error)

	// GetAll, tüm kanalların overwrite'larını döner (startup yüklemesi için).
	GetAll(ctx context.Context) ([]models.ChannelOverwrite, error)

	// Set, overwrite'ı oluşturur veya günceller (UPSERT).
	Set(ctx context.Context, channelID models.Snowflake, overwrite *models.PermissionOverwrite) error

	// Delete, tek bir overwrite'ı siler. Yoksa pkg.ErrNotFound.
	Delete(ctx context.Context, channelID, targetID models.Snowflake) error

	// ReplaceAll, kanalın tüm overwrite'larını verilen listeyle değiştirir.
	// Kanal payload'ı ingest edilirken kullanılır; transaction içinde çağrılmalıdır.
	ReplaceAll(ctx context.Context, channelID models.Snowflake, overwrites []models.PermissionOverwrite) error
}

package repository

import (
	"context"

	"github.com/HuyaneMatsu/hata-sub016/models"
)

// ChannelRepository, kanal ve private kanal katılımcıları veritabanı işlemleri.
// Overwrite'lar ayrı tabloda tutulur, bkz. OverwriteRepository.
type ChannelRepository interface {
	// Upsert, kanal satırını yazar ve recipient listesini değiştirir.
	// İki tabloya yazdığı için transaction içinde çağrılmalıdır.
	Upsert(ctx context.Context, channel *models.Channel) error

	// Delete, kanalı ve parent'ı bu kanal olan thread'leri siler.
	Delete(ctx context.Context, id models.Snowflake) error

	// GetAll, tüm kanalları recipient listeleriyle birlikte döner. Overwrites boş gelir.
	GetAll(ctx context.Context) ([]models.Channel, error)
}

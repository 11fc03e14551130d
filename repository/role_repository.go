package repository

import (
	"context"

	"github.com/HuyaneMatsu/hata-sub016/models"
)

// RoleRepository, rol veritabanı işlemleri.
type RoleRepository interface {
	// Upsert, rolü yazar. Guild yoksa pkg.ErrNotFound.
	Upsert(ctx context.Context, role *models.Role) error

	// Delete, rolü siler. Rolün kanal overwrite'ları da silinir,
	// member_roles kayıtları CASCADE ile gider.
	Delete(ctx context.Context, guildID, roleID models.Snowflake) error

	// GetAll, tüm guild'lerin rollerini döner.
	GetAll(ctx context.Context) ([]models.Role, error)
}

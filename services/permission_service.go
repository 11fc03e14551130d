package services

import (
	"fmt"
	"time"

	"github.com/HuyaneMatsu/hata-sub016/models"
	"github.com/HuyaneMatsu/hata-sub016/pkg"
	"github.com/HuyaneMatsu/hata-sub016/pkg/cache"
	"github.com/HuyaneMatsu/hata-sub016/registry"
	"github.com/HuyaneMatsu/hata-sub016/resolver"
)

// PermissionService, registry üzerinde permission hesaplar ve client principal'ları
// için sonuçları cache'ler.
//
// Resolver kendisi hata dönmez (bilinmeyen bağlam → PermissionNone). Service ise
// API'nin 404 dönebilmesi için registry'de olmayan kanal/kullanıcıyı pkg.ErrNotFound
// ile bildirir.
type PermissionService interface {
	// PermissionsFor, kullanıcının kanaldaki effective permission'ını hesaplar.
	PermissionsFor(channelID, userID models.Snowflake) (models.Permission, error)

	// PermissionsForRoles, sadece verilen rolleri taşıyan hayali bir principal için hesaplar.
	PermissionsForRoles(channelID models.Snowflake, req *models.ResolveRolesRequest) (models.Permission, error)

	// CachedPermissionsFor, PermissionsFor'un memoize edilmiş hali.
	// Sadece cacheable (client) principal'ların sonucu saklanır.
	CachedPermissionsFor(channelID, userID models.Snowflake) (models.Permission, error)

	// InvalidateChannel, kanalların cache'lenmiş tüm sonuçlarını siler.
	InvalidateChannel(channelIDs ...models.Snowflake)

	// CacheLen, cache'teki kayıt sayısı (health endpoint'i için).
	CacheLen() int

	// Close, cache'in temizleme goroutine'ini durdurur.
	Close()
}

type permissionService struct {
	registry *registry.Registry
	cache    *cache.GroupedTTLCache[models.Snowflake, models.Snowflake, models.Permission]
}

// NewPermissionService, constructor.
//
// Registry'ye bir invalidation hook'u kaydeder: overwrite değişikliği, kanal silme
// veya rol/üyelik değişikliği etkilenen kanalların cache grubunu temizler.
//
// ttl <= 0 → kayıtlar süresiz tutulur, sadece invalidation ile silinir.
func NewPermissionService(reg *registry.Registry, ttl, cleanupInterval time.Duration) PermissionService {
	s := &permissionService{
		registry: reg,
		cache:    cache.New[models.Snowflake, models.Snowflake, models.Permission](ttl, cleanupInterval),
	}
	reg.OnInvalidate(func(channelIDs []models.Snowflake) {
		s.InvalidateChannel(channelIDs...)
	})
	return s
}

func (s *permissionService) PermissionsFor(channelID, userID models.Snowflake) (models.Permission, error) {
	return s.resolve(channelID, userID, false)
}

func (s *permissionService) PermissionsForRoles(channelID models.Snowflake, req *models.ResolveRolesRequest) (models.Permission, error) {
	if err := req.Validate(); err != nil {
		return models.PermissionNone, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}

	var (
		perm  models.Permission
		found bool
	)
	s.registry.View(func(v registry.View) {
		channel, ok := v.Channel(channelID)
		if !ok {
			return
		}
		found = true
		perm = resolver.ResolveRoles(v, channel, req.RoleIDs)
	})

	if !found {
		return models.PermissionNone, fmt.Errorf("%w: channel %s", pkg.ErrNotFound, channelID)
	}
	return perm, nil
}

func (s *permissionService) CachedPermissionsFor(channelID, userID models.Snowflake) (models.Permission, error) {
	return s.resolve(channelID, userID, true)
}

// resolve, hesaplamayı tek bir View içinde yapar. cached=true ve principal cacheable
// ise cache aynı read lock altında okunur/yazılır; böylece eşzamanlı bir mutasyonun
// invalidation'ı her zaman bu yazmadan SONRA çalışır.
//
// Kanal ve kullanıcı cache'ten önce kontrol edilir: üyeliği olmayan bir client
// silindiğinde invalidation seti boştur, kalan kayıt burada düşürülür.
func (s *permissionService) resolve(channelID, userID models.Snowflake, cached bool) (models.Permission, error) {
	var (
		perm     models.Permission
		notFound error
	)

	s.registry.View(func(v registry.View) {
		channel, ok := v.Channel(channelID)
		if !ok {
			notFound = fmt.Errorf("%w: channel %s", pkg.ErrNotFound, channelID)
			return
		}
		user, ok := v.User(userID)
		if !ok {
			if cached {
				s.cache.Delete(channelID, userID)
			}
			notFound = fmt.Errorf("%w: user %s", pkg.ErrNotFound, userID)
			return
		}

		store := cached && user.IsCacheable()
		if store {
			if hit, ok := s.cache.Get(channelID, userID); ok {
				perm = hit
				return
			}
		}

		perm = resolver.Resolve(v, user, channel)

		if store {
			s.cache.Set(channelID, userID, perm)
		}
	})

	if notFound != nil {
		return models.PermissionNone, notFound
	}
	return perm, nil
}

func (s *permissionService) InvalidateChannel(channelIDs ...models.Snowflake) {
	s.cache.InvalidateGroup(channelIDs...)
}

func (s *permissionService) CacheLen() int {
	return s.cache.Len()
}

func (s *permissionService) Close() {
	s.cache.Close()
}

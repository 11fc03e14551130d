package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/HuyaneMatsu/hata-sub016/models"
	"github.com/HuyaneMatsu/hata-sub016/pkg"
	"github.com/HuyaneMatsu/hata-sub016/registry"
	"github.com/HuyaneMatsu/hata-sub016/repository"
	"github.com/HuyaneMatsu/hata-sub016/ws"
)

// OverwriteService, kanal permission overwrite'larının yönetimi.
//
// Her (channel_id, target_id) çifti için allow/deny bit'leri saklanır. Hedef bir rol
// (@everyone için guild ID'si) veya kullanıcı olabilir. Yazma sırası: SQLite → registry
// → WS broadcast. Registry mutasyonu invalidation hook'larını tetikler, böylece permission
// cache'i de temizlenir.
type OverwriteService interface {
	// List, kanalın overwrite'larını target ID'ye göre sıralı döner.
	List(ctx context.Context, channelID models.Snowflake) ([]models.PermissionOverwrite, error)

	// Set, overwrite oluşturur veya günceller.
	// allow=0, deny=0 ise overwrite silinir (inherit'e döner).
	Set(ctx context.Context, channelID, targetID models.Snowflake, req *models.SetOverwriteRequest) (*models.PermissionOverwrite, error)

	// Delete, overwrite'ı kaldırır.
	Delete(ctx context.Context, channelID, targetID models.Snowflake) error
}

type overwriteService struct {
	overwriteRepo repository.OverwriteRepository
	registry      *registry.Registry
	hub           ws.EventPublisher
}

// NewOverwriteService, constructor.
func NewOverwriteService(
	overwriteRepo repository.OverwriteRepository,
	reg *registry.Registry,
	hub ws.EventPublisher,
) OverwriteService {
	return &overwriteService{
		overwriteRepo: overwriteRepo,
		registry:      reg,
		hub:           hub,
	}
}

func (s *overwriteService) List(ctx context.Context, channelID models.Snowflake) ([]models.PermissionOverwrite, error) {
	channel, ok := s.registry.ChannelSnapshot(channelID)
	if !ok {
		return nil, fmt.Errorf("%w: channel %s", pkg.ErrNotFound, channelID)
	}

	// nil yerine boş slice: JSON'da [] olarak serialize olur, null değil
	list := channel.OverwriteList()
	sort.Slice(list, func(i, j int) bool { return list[i].TargetID < list[j].TargetID })
	return list, nil
}

func (s *overwriteService) Set(ctx context.Context, channelID, targetID models.Snowflake, req *models.SetOverwriteRequest) (*models.PermissionOverwrite, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}

	warnDeprecatedFlags(req.Flags)

	overwrite, err := req.ToOverwrite(targetID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}

	if err := s.checkTarget(channelID, overwrite); err != nil {
		return nil, err
	}

	// allow=0, deny=0 → overwrite'ın anlamı yok (inherit ile aynı), sil
	if overwrite.Allow == 0 && overwrite.Deny == 0 {
		if err := s.Delete(ctx, channelID, targetID); err != nil && !errors.Is(err, pkg.ErrNotFound) {
			return nil, err
		}
		return &overwrite, nil
	}

	if err := s.overwriteRepo.Set(ctx, channelID, &overwrite); err != nil {
		return nil, fmt.Errorf("failed to set overwrite: %w", err)
	}
	if err := s.registry.SetOverwrite(channelID, overwrite); err != nil {
		return nil, fmt.Errorf("failed to apply overwrite: %w", err)
	}

	s.hub.BroadcastToAll(ws.Event{
		Op:   ws.OpOverwriteUpdate,
		Data: models.ChannelOverwrite{ChannelID: channelID, PermissionOverwrite: overwrite},
	})

	return &overwrite, nil
}

func (s *overwriteService) Delete(ctx context.Context, channelID, targetID models.Snowflake) error {
	if err := s.overwriteRepo.Delete(ctx, channelID, targetID); err != nil {
		return fmt.Errorf("failed to delete overwrite: %w", err)
	}
	if err := s.registry.DeleteOverwrite(channelID, targetID); err != nil && !errors.Is(err, pkg.ErrNotFound) {
		return fmt.Errorf("failed to remove overwrite: %w", err)
	}

	s.hub.BroadcastToAll(ws.Event{
		Op:   ws.OpOverwriteDelete,
		Data: ws.OverwriteDeleteData{ChannelID: channelID, TargetID: targetID},
	})

	return nil
}

// checkTarget, kanalın overwrite alabilir olduğunu ve rol hedefinin guild'de
// bulunduğunu kontrol eder.
//
// Thread'lerin kendi overwrite'ı yoktur (parent'ınkiler geçerlidir), private
// kanalların hiç yoktur.
func (s *overwriteService) checkTarget(channelID models.Snowflake, o models.PermissionOverwrite) error {
	var err error

	s.registry.View(func(v registry.View) {
		channel, ok := v.Channel(channelID)
		if !ok {
			err = fmt.Errorf("%w: channel %s", pkg.ErrNotFound, channelID)
			return
		}

		switch {
		case channel.Kind.IsPrivate():
			err = fmt.Errorf("%w: private channels cannot have overwrites", pkg.ErrBadRequest)
			return
		case channel.Kind.IsThread():
			err = fmt.Errorf("%w: threads use their parent's overwrites", pkg.ErrBadRequest)
			return
		}

		if o.TargetType != models.OverwriteTargetRole {
			return
		}
		guild, ok := v.Guild(channel.GuildID)
		if !ok {
			err = fmt.Errorf("%w: guild %s", pkg.ErrNotFound, channel.GuildID)
			return
		}
		if _, ok := guild.Roles[o.TargetID]; !ok && o.TargetID != guild.ID {
			err = fmt.Errorf("%w: role %s in guild %s", pkg.ErrNotFound, o.TargetID, guild.ID)
		}
	})

	return err
}

// warnDeprecatedFlags, eski permission isimleri için uyarı log'lar.
func warnDeprecatedFlags(flags map[string]models.OverwriteFlag) {
	if len(flags) == 0 {
		return
	}

	aliases := models.DeprecatedPermissionAliases()
	for name := range flags {
		if canonical, ok := aliases[name]; ok {
			log.Printf("[overwrite] permission name %q is deprecated, use %q", name, canonical)
		}
	}
}

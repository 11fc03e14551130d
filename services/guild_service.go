package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/HuyaneMatsu/hata-sub016/database"
	"github.com/HuyaneMatsu/hata-sub016/models"
	"github.com/HuyaneMatsu/hata-sub016/pkg"
	"github.com/HuyaneMatsu/hata-sub016/registry"
	"github.com/HuyaneMatsu/hata-sub016/repository"
	"github.com/HuyaneMatsu/hata-sub016/ws"
)

// GuildService, Discord entity'lerinin (guild, rol, kanal, kullanıcı, üyelik) ingest'i.
//
// Her yazma aynı sırayı izler:
//  1. Request validate edilir
//  2. SQLite'a yazılır (birden fazla tabloya dokunan yazmalar WithTx ile atomik)
//  3. Registry güncellenir: invalidation hook'ları permission cache'ini temizler
//  4. WS event'i broadcast edilir
//
// Load, startup'ta SQLite'taki her şeyi registry'ye yükler.
type GuildService interface {
	UpsertGuild(ctx context.Context, guildID models.Snowflake, req *models.UpsertGuildRequest) (*models.Guild, error)
	GetGuild(ctx context.Context, guildID models.Snowflake) (*models.GuildDetail, error)
	DeleteGuild(ctx context.Context, guildID models.Snowflake) error

	UpsertRole(ctx context.Context, guildID, roleID models.Snowflake, req *models.UpsertRoleRequest) (*models.Role, error)
	DeleteRole(ctx context.Context, guildID, roleID models.Snowflake) error

	UpsertChannel(ctx context.Context, channelID models.Snowflake, req *models.UpsertChannelRequest) (*models.ChannelDetail, error)
	GetChannel(ctx context.Context, channelID models.Snowflake) (*models.ChannelDetail, error)
	DeleteChannel(ctx context.Context, channelID models.Snowflake) error

	UpsertUser(ctx context.Context, userID models.Snowflake, req *models.UpsertUserRequest) (*models.User, error)
	DeleteUser(ctx context.Context, userID models.Snowflake) error

	UpsertMember(ctx context.Context, guildID, userID models.Snowflake, req *models.UpsertMemberRequest) (*models.GuildProfile, error)
	RemoveMember(ctx context.Context, guildID, userID models.Snowflake) error

	// Load, registry'yi SQLite'tan doldurur.
	Load(ctx context.Context) error
}

type guildService struct {
	db            *sql.DB // Transaction desteği (WithTx) için
	guildRepo     repository.GuildRepository
	roleRepo      repository.RoleRepository
	channelRepo   repository.ChannelRepository
	overwriteRepo repository.OverwriteRepository
	userRepo      repository.UserRepository
	memberRepo    repository.MemberRepository
	registry      *registry.Registry
	hub           ws.EventPublisher
}

// NewGuildService, constructor.
//
// db: kanal + overwrite'lar ve kullanıcı + üyelik silme gibi çok tablolu yazmalarda
// WithTx için doğrudan *sql.DB gerekir. Transaction içinde tx-bound repo'lar oluşturulur.
func NewGuildService(
	db *sql.DB,
	guildRepo repository.GuildRepository,
	roleRepo repository.RoleRepository,
	channelRepo repository.ChannelRepository,
	overwriteRepo repository.OverwriteRepository,
	userRepo repository.UserRepository,
	memberRepo repository.MemberRepository,
	reg *registry.Registry,
	hub ws.EventPublisher,
) GuildService {
	return &guildService{
		db:            db,
		guildRepo:     guildRepo,
		roleRepo:      roleRepo,
		channelRepo:   channelRepo,
		overwriteRepo: overwriteRepo,
		userRepo:      userRepo,
		memberRepo:    memberRepo,
		registry:      reg,
		hub:           hub,
	}
}

// ─── Guild ───

func (s *guildService) UpsertGuild(ctx context.Context, guildID models.Snowflake, req *models.UpsertGuildRequest) (*models.Guild, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}

	guild := &models.Guild{ID: guildID, Name: req.Name, OwnerID: req.OwnerID}
	if err := s.guildRepo.Upsert(ctx, guild); err != nil {
		return nil, fmt.Errorf("failed to upsert guild: %w", err)
	}
	s.registry.PutGuild(*guild)

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpGuildUpdate, Data: guild})
	return guild, nil
}

func (s *guildService) GetGuild(ctx context.Context, guildID models.Snowflake) (*models.GuildDetail, error) {
	detail, ok := s.registry.GuildDetail(guildID)
	if !ok {
		return nil, fmt.Errorf("%w: guild %s", pkg.ErrNotFound, guildID)
	}
	return detail, nil
}

func (s *guildService) DeleteGuild(ctx context.Context, guildID models.Snowflake) error {
	if err := s.guildRepo.Delete(ctx, guildID); err != nil {
		return fmt.Errorf("failed to delete guild: %w", err)
	}
	if err := s.registry.DeleteGuild(guildID); err != nil && !errors.Is(err, pkg.ErrNotFound) {
		return fmt.Errorf("failed to remove guild: %w", err)
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpGuildDelete, Data: ws.GuildDeleteData{GuildID: guildID}})
	return nil
}

// requireGuild, guild registry'de yoksa ErrNotFound döner.
// Rol ve kanal yazmaları SQLite FK hatasına düşmeden önce burada reddedilir.
func (s *guildService) requireGuild(guildID models.Snowflake) error {
	var ok bool
	s.registry.View(func(v registry.View) {
		_, ok = v.Guild(guildID)
	})
	if !ok {
		return fmt.Errorf("%w: guild %s", pkg.ErrNotFound, guildID)
	}
	return nil
}

// ─── Role ───

func (s *guildService) UpsertRole(ctx context.Context, guildID, roleID models.Snowflake, req *models.UpsertRoleRequest) (*models.Role, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}

	if err := s.requireGuild(guildID); err != nil {
		return nil, err
	}
	// roles.id tablo genelinde unique; bir rol ID'si guild değiştiremez.
	if owner, ok := s.registry.RoleGuildID(roleID); ok && owner != guildID {
		return nil, fmt.Errorf("%w: role %s belongs to guild %s", pkg.ErrBadRequest, roleID, owner)
	}

	role := &models.Role{
		ID:          roleID,
		GuildID:     guildID,
		Name:        req.Name,
		Color:       req.Color,
		Position:    req.Position,
		Permissions: req.Permissions,
		Managed:     req.Managed,
		Mentionable: req.Mentionable,
	}
	if err := s.roleRepo.Upsert(ctx, role); err != nil {
		return nil, fmt.Errorf("failed to upsert role: %w", err)
	}
	if err := s.registry.PutRole(*role); err != nil {
		return nil, fmt.Errorf("failed to apply role: %w", err)
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpRoleUpdate, Data: role})
	return role, nil
}

func (s *guildService) DeleteRole(ctx context.Context, guildID, roleID models.Snowflake) error {
	if guildID == roleID {
		return fmt.Errorf("%w: the @everyone role cannot be deleted", pkg.ErrBadRequest)
	}

	if err := s.roleRepo.Delete(ctx, guildID, roleID); err != nil {
		return fmt.Errorf("failed to delete role: %w", err)
	}
	if err := s.registry.DeleteRole(guildID, roleID); err != nil && !errors.Is(err, pkg.ErrNotFound) {
		return fmt.Errorf("failed to remove role: %w", err)
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpRoleDelete, Data: ws.RoleDeleteData{GuildID: guildID, RoleID: roleID}})
	return nil
}

// ─── Channel ───

// UpsertChannel, kanalı overwrite'larıyla birlikte tek transaction'da yazar.
// Kanal payload'ı Discord'daki gibi overwrite listesinin TAMAMINI taşır.
func (s *guildService) UpsertChannel(ctx context.Context, channelID models.Snowflake, req *models.UpsertChannelRequest) (*models.ChannelDetail, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}

	channel := req.ToChannel(channelID)
	if prev, ok := s.registry.ChannelSnapshot(channelID); ok && prev.Kind.IsPrivate() != channel.Kind.IsPrivate() {
		return nil, fmt.Errorf("%w: channel %s cannot change between private and guild types", pkg.ErrBadRequest, channelID)
	}
	if !channel.Kind.IsPrivate() {
		if err := s.requireGuild(channel.GuildID); err != nil {
			return nil, err
		}
	}
	if err := s.checkParent(channel); err != nil {
		return nil, err
	}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := repository.NewSQLiteChannelRepo(tx).Upsert(ctx, channel); err != nil {
			return fmt.Errorf("failed to upsert channel: %w", err)
		}
		if channel.Kind.IsPrivate() {
			return nil
		}
		if err := repository.NewSQLiteOverwriteRepo(tx).ReplaceAll(ctx, channel.ID, req.PermissionOverwrites); err != nil {
			return fmt.Errorf("failed to replace overwrites: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.registry.PutChannel(*channel); err != nil {
		return nil, fmt.Errorf("failed to apply channel: %w", err)
	}

	detail := channel.Detail()
	s.hub.BroadcastToAll(ws.Event{Op: ws.OpChannelUpdate, Data: detail})
	return &detail, nil
}

// checkParent, thread'in parent'ının aynı guild'de, thread veya private olmayan
// bir kanal olduğunu kontrol eder.
func (s *guildService) checkParent(channel *models.Channel) error {
	if !channel.Kind.IsThread() {
		return nil
	}

	parent, ok := s.registry.ChannelSnapshot(channel.ParentID)
	if !ok {
		return fmt.Errorf("%w: parent channel %s", pkg.ErrNotFound, channel.ParentID)
	}
	if parent.GuildID != channel.GuildID {
		return fmt.Errorf("%w: parent channel belongs to another guild", pkg.ErrBadRequest)
	}
	if parent.Kind.IsThread() || parent.Kind.IsPrivate() {
		return fmt.Errorf("%w: parent channel cannot be a %s channel", pkg.ErrBadRequest, parent.Kind)
	}
	return nil
}

func (s *guildService) GetChannel(ctx context.Context, channelID models.Snowflake) (*models.ChannelDetail, error) {
	channel, ok := s.registry.ChannelSnapshot(channelID)
	if !ok {
		return nil, fmt.Errorf("%w: channel %s", pkg.ErrNotFound, channelID)
	}
	detail := channel.Detail()
	return &detail, nil
}

func (s *guildService) DeleteChannel(ctx context.Context, channelID models.Snowflake) error {
	if err := s.channelRepo.Delete(ctx, channelID); err != nil {
		return fmt.Errorf("failed to delete channel: %w", err)
	}
	if err := s.registry.DeleteChannel(channelID); err != nil && !errors.Is(err, pkg.ErrNotFound) {
		return fmt.Errorf("failed to remove channel: %w", err)
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpChannelDelete, Data: ws.ChannelDeleteData{ChannelID: channelID}})
	return nil
}

// ─── User ───

// UpsertUser, kullanıcıyı yazar. Webhook'a dönüşen kullanıcının üyelikleri
// aynı transaction'da silinir.
func (s *guildService) UpsertUser(ctx context.Context, userID models.Snowflake, req *models.UpsertUserRequest) (*models.User, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}

	user := &models.User{ID: userID, Name: req.Name, Kind: req.Kind, ChannelID: req.ChannelID}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := repository.NewSQLiteUserRepo(tx).Upsert(ctx, user); err != nil {
			return fmt.Errorf("failed to upsert user: %w", err)
		}
		if user.IsMemberCapable() {
			return nil
		}
		if err := repository.NewSQLiteMemberRepo(tx).DeleteAllByUser(ctx, user.ID); err != nil {
			return fmt.Errorf("failed to drop webhook memberships: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.registry.PutUser(*user)

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpUserUpdate, Data: user})
	return user, nil
}

func (s *guildService) DeleteUser(ctx context.Context, userID models.Snowflake) error {
	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if err := s.registry.DeleteUser(userID); err != nil && !errors.Is(err, pkg.ErrNotFound) {
		return fmt.Errorf("failed to remove user: %w", err)
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpUserDelete, Data: ws.UserDeleteData{UserID: userID}})
	return nil
}

// ─── Member ───

func (s *guildService) UpsertMember(ctx context.Context, guildID, userID models.Snowflake, req *models.UpsertMemberRequest) (*models.GuildProfile, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}

	if err := s.checkMember(guildID, userID, req.RoleIDs); err != nil {
		return nil, err
	}

	joinedAt := req.JoinedAt
	if joinedAt.IsZero() {
		joinedAt = time.Now().UTC()
	}

	profile := &models.GuildProfile{
		GuildID:  guildID,
		UserID:   userID,
		Nick:     req.Nick,
		RoleIDs:  req.RoleIDs,
		JoinedAt: joinedAt,
	}
	if profile.RoleIDs == nil {
		profile.RoleIDs = []models.Snowflake{}
	}

	err := database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := repository.NewSQLiteMemberRepo(tx).Upsert(ctx, profile); err != nil {
			return fmt.Errorf("failed to upsert member: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.registry.PutGuildProfile(*profile); err != nil {
		return nil, fmt.Errorf("failed to apply member: %w", err)
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpMemberUpdate, Data: profile})
	return profile, nil
}

// checkMember, üyeliğin registry'ye göre geçerli olduğunu kontrol eder:
// guild ve kullanıcı kayıtlı, kullanıcı webhook değil, roller bu guild'in rolleri.
// @everyone rolü listede olamaz: her üye onu implicit taşır.
func (s *guildService) checkMember(guildID, userID models.Snowflake, roleIDs []models.Snowflake) error {
	var err error

	s.registry.View(func(v registry.View) {
		guild, ok := v.Guild(guildID)
		if !ok {
			err = fmt.Errorf("%w: guild %s", pkg.ErrNotFound, guildID)
			return
		}
		user, ok := v.User(userID)
		if !ok {
			err = fmt.Errorf("%w: user %s", pkg.ErrNotFound, userID)
			return
		}
		if !user.IsMemberCapable() {
			err = fmt.Errorf("%w: %s principals cannot be guild members", pkg.ErrBadRequest, user.Kind)
			return
		}

		for _, roleID := range roleIDs {
			if roleID == guildID {
				err = fmt.Errorf("%w: the @everyone role is implicit and cannot be assigned", pkg.ErrBadRequest)
				return
			}
			if _, ok := guild.Roles[roleID]; !ok {
				err = fmt.Errorf("%w: role %s does not belong to guild %s", pkg.ErrBadRequest, roleID, guildID)
				return
			}
		}
	})

	return err
}

func (s *guildService) RemoveMember(ctx context.Context, guildID, userID models.Snowflake) error {
	if err := s.memberRepo.Delete(ctx, guildID, userID); err != nil {
		return fmt.Errorf("failed to remove member: %w", err)
	}
	if err := s.registry.DeleteGuildProfile(guildID, userID); err != nil && !errors.Is(err, pkg.ErrNotFound) {
		return fmt.Errorf("failed to remove member profile: %w", err)
	}

	s.hub.BroadcastToAll(ws.Event{Op: ws.OpMemberRemove, Data: ws.MemberRemoveData{GuildID: guildID, UserID: userID}})
	return nil
}

// ─── Startup ───

// Load, SQLite'taki tüm kayıtları registry'ye yükler.
//
// Sıra önemlidir: guild → rol → kanal (overwrite'larıyla) → kullanıcı → üyelik.
// Registry her adımda bir önceki adımın kayıtlarını arar.
func (s *guildService) Load(ctx context.Context) error {
	guilds, err := s.guildRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load guilds: %w", err)
	}
	for _, g := range guilds {
		s.registry.PutGuild(g)
	}

	roles, err := s.roleRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load roles: %w", err)
	}
	for _, r := range roles {
		if err := s.registry.PutRole(r); err != nil {
			return fmt.Errorf("failed to load role %s: %w", r.ID, err)
		}
	}

	channels, err := s.channelRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load channels: %w", err)
	}
	overwrites, err := s.overwriteRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load overwrites: %w", err)
	}

	byChannel := make(map[models.Snowflake]map[models.Snowflake]models.PermissionOverwrite)
	for _, row := range overwrites {
		if byChannel[row.ChannelID] == nil {
			byChannel[row.ChannelID] = make(map[models.Snowflake]models.PermissionOverwrite)
		}
		byChannel[row.ChannelID][row.TargetID] = row.PermissionOverwrite
	}
	for _, ch := range channels {
		ch.Overwrites = byChannel[ch.ID]
		if err := s.registry.PutChannel(ch); err != nil {
			return fmt.Errorf("failed to load channel %s: %w", ch.ID, err)
		}
	}

	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load users: %w", err)
	}
	for _, u := range users {
		s.registry.PutUser(u)
	}

	profiles, err := s.memberRepo.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load members: %w", err)
	}
	for _, p := range profiles {
		if err := s.registry.PutGuildProfile(p); err != nil {
			return fmt.Errorf("failed to load member %s/%s: %w", p.GuildID, p.UserID, err)
		}
	}

	log.Printf("[guild] registry loaded: %d guilds, %d roles, %d channels, %d overwrites, %d users, %d members",
		len(guilds), len(roles), len(channels), len(overwrites), len(users), len(profiles))
	return nil
}

package services

import (
	"context"
	"fmt"
	"io"
	"log"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/HuyaneMatsu/hata-sub016/models"
	"github.com/HuyaneMatsu/hata-sub016/pkg"
)

// Fixture, `hata seed` komutunun okuduğu YAML dosyasının kök yapısı.
//
//	guilds:
//	  - id: 1
//	    name: test
//	    owner_id: 100
//	    roles:
//	      - {id: 1, name: "@everyone", permissions: [view_channel]}
//	      - {id: 10, name: mod, permissions: [manage_messages]}
//	    channels:
//	      - id: 1000
//	        type: text
//	        name: general
//	        overwrites:
//	          - {target: 10, type: role, allow: [send_messages]}
//	users:
//	  - id: 200
//	    name: alice
//	    members:
//	      - {guild: 1, roles: [10]}
//	private_channels:
//	  - {id: 5000, type: group, owner_id: 200, recipients: [200, 300]}
type Fixture struct {
	Guilds          []FixtureGuild   `yaml:"guilds"`
	Users           []FixtureUser    `yaml:"users"`
	PrivateChannels []FixtureChannel `yaml:"private_channels"`
}

// FixtureGuild, guild + rolleri + kanalları.
type FixtureGuild struct {
	ID       models.Snowflake `yaml:"id"`
	Name     string           `yaml:"name"`
	OwnerID  models.Snowflake `yaml:"owner_id"`
	Roles    []FixtureRole    `yaml:"roles"`
	Channels []FixtureChannel `yaml:"channels"`
}

// FixtureRole, permission'ları isim listesi olarak taşır.
type FixtureRole struct {
	ID          models.Snowflake `yaml:"id"`
	Name        string           `yaml:"name"`
	Position    int              `yaml:"position"`
	Permissions []string         `yaml:"permissions"`
}

// FixtureChannel, type tablo adıdır ("text", "voice", "public_thread" ...).
type FixtureChannel struct {
	ID         models.Snowflake   `yaml:"id"`
	Type       string             `yaml:"type"`
	Name       string             `yaml:"name"`
	ParentID   models.Snowflake   `yaml:"parent_id"`
	OwnerID    models.Snowflake   `yaml:"owner_id"`
	Recipients []models.Snowflake `yaml:"recipients"`
	Overwrites []FixtureOverwrite `yaml:"overwrites"`
}

// FixtureOverwrite, type "role" veya "user".
type FixtureOverwrite struct {
	Target models.Snowflake `yaml:"target"`
	Type   string           `yaml:"type"`
	Allow  []string         `yaml:"allow"`
	Deny   []string         `yaml:"deny"`
}

// FixtureUser, kind boşsa "user".
type FixtureUser struct {
	ID        models.Snowflake `yaml:"id"`
	Name      string           `yaml:"name"`
	Kind      models.UserKind  `yaml:"kind"`
	ChannelID models.Snowflake `yaml:"channel_id"`
	Members   []FixtureMember  `yaml:"members"`
}

// FixtureMember, kullanıcının bir guild'deki üyeliği.
type FixtureMember struct {
	Guild    models.Snowflake   `yaml:"guild"`
	Nick     *string            `yaml:"nick"`
	Roles    []models.Snowflake `yaml:"roles"`
	JoinedAt time.Time          `yaml:"joined_at"`
}

// FixtureStats, uygulanan kayıtların sayısı.
type FixtureStats struct {
	Guilds   int `json:"guilds"`
	Roles    int `json:"roles"`
	Channels int `json:"channels"`
	Users    int `json:"users"`
	Members  int `json:"members"`
}

// FixtureService, YAML fixture'larını GuildService üzerinden uygular.
// Her kayıt normal ingest yolundan geçer: validate → SQLite → registry → broadcast.
type FixtureService interface {
	Apply(ctx context.Context, r io.Reader) (*FixtureStats, error)
}

type fixtureService struct {
	guilds GuildService
}

// NewFixtureService, constructor.
func NewFixtureService(guilds GuildService) FixtureService {
	return &fixtureService{guilds: guilds}
}

// Apply, fixture'ı parse edip sırayla uygular.
//
// Sıra: guild'ler (roller, guild kanalları) → kullanıcılar → private kanallar → üyelikler.
// Üyelikler en son uygulanır çünkü hem guild'in rollerini hem kullanıcıyı gerektirir.
// Thread'ler dosyada parent kanallarından sonra listelenmelidir.
func (s *fixtureService) Apply(ctx context.Context, r io.Reader) (*FixtureStats, error) {
	var fixture Fixture
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&fixture); err != nil {
		return nil, fmt.Errorf("%w: invalid fixture: %v", pkg.ErrBadRequest, err)
	}

	stats := &FixtureStats{}

	for _, g := range fixture.Guilds {
		if _, err := s.guilds.UpsertGuild(ctx, g.ID, &models.UpsertGuildRequest{Name: g.Name, OwnerID: g.OwnerID}); err != nil {
			return stats, fmt.Errorf("guild %s: %w", g.ID, err)
		}
		stats.Guilds++

		for _, fr := range g.Roles {
			perms, err := permissionsFromNames(fr.Permissions)
			if err != nil {
				return stats, fmt.Errorf("role %s: %w", fr.ID, err)
			}
			req := &models.UpsertRoleRequest{Name: fr.Name, Position: fr.Position, Permissions: perms}
			if _, err := s.guilds.UpsertRole(ctx, g.ID, fr.ID, req); err != nil {
				return stats, fmt.Errorf("role %s: %w", fr.ID, err)
			}
			stats.Roles++
		}

		for _, fc := range g.Channels {
			if err := s.applyChannel(ctx, g.ID, fc); err != nil {
				return stats, err
			}
			stats.Channels++
		}
	}

	for _, fu := range fixture.Users {
		req := &models.UpsertUserRequest{Name: fu.Name, Kind: fu.Kind, ChannelID: fu.ChannelID}
		if _, err := s.guilds.UpsertUser(ctx, fu.ID, req); err != nil {
			return stats, fmt.Errorf("user %s: %w", fu.ID, err)
		}
		stats.Users++
	}

	for _, fc := range fixture.PrivateChannels {
		if err := s.applyChannel(ctx, 0, fc); err != nil {
			return stats, err
		}
		stats.Channels++
	}

	for _, fu := range fixture.Users {
		for _, fm := range fu.Members {
			req := &models.UpsertMemberRequest{Nick: fm.Nick, RoleIDs: fm.Roles, JoinedAt: fm.JoinedAt}
			if _, err := s.guilds.UpsertMember(ctx, fm.Guild, fu.ID, req); err != nil {
				return stats, fmt.Errorf("member %s in guild %s: %w", fu.ID, fm.Guild, err)
			}
			stats.Members++
		}
	}

	log.Printf("[fixture] applied %d guilds, %d roles, %d channels, %d users, %d members",
		stats.Guilds, stats.Roles, stats.Channels, stats.Users, stats.Members)
	return stats, nil
}

func (s *fixtureService) applyChannel(ctx context.Context, guildID models.Snowflake, fc FixtureChannel) error {
	kind, err := channelKindFromFixture(fc.Type)
	if err != nil {
		return fmt.Errorf("channel %s: %w", fc.ID, err)
	}

	req := &models.UpsertChannelRequest{
		GuildID:    guildID,
		Type:       kind,
		ParentID:   fc.ParentID,
		Name:       fc.Name,
		Recipients: fc.Recipients,
		OwnerID:    fc.OwnerID,
	}

	for _, fo := range fc.Overwrites {
		o, err := overwriteFromFixture(fo)
		if err != nil {
			return fmt.Errorf("channel %s overwrite %s: %w", fc.ID, fo.Target, err)
		}
		req.PermissionOverwrites = append(req.PermissionOverwrites, o)
	}

	if _, err := s.guilds.UpsertChannel(ctx, fc.ID, req); err != nil {
		return fmt.Errorf("channel %s: %w", fc.ID, err)
	}
	return nil
}

// channelKindFromFixture, tablo adını veya Discord type integer'ını kabul eder.
func channelKindFromFixture(name string) (models.ChannelKind, error) {
	if kind, ok := models.ChannelKindByName(name); ok {
		return kind, nil
	}
	if n, err := strconv.Atoi(name); err == nil {
		return models.ChannelKind(n), nil
	}
	return 0, fmt.Errorf("%w: unknown channel type %q", pkg.ErrBadRequest, name)
}

func overwriteFromFixture(fo FixtureOverwrite) (models.PermissionOverwrite, error) {
	flags := make(map[string]models.OverwriteFlag, len(fo.Allow)+len(fo.Deny))
	for _, name := range fo.Allow {
		flags[name] = models.OverwriteAllow
	}
	for _, name := range fo.Deny {
		if _, dup := flags[name]; dup {
			return models.PermissionOverwrite{}, fmt.Errorf("%w: %q is both allowed and denied", pkg.ErrBadRequest, name)
		}
		flags[name] = models.OverwriteDeny
	}
	warnDeprecatedFlags(flags)

	var targetType models.OverwriteTargetType
	switch fo.Type {
	case "role", "":
		targetType = models.OverwriteTargetRole
	case "user", "member":
		targetType = models.OverwriteTargetUser
	default:
		return models.PermissionOverwrite{}, fmt.Errorf("%w: unknown overwrite type %q", pkg.ErrBadRequest, fo.Type)
	}

	o, err := models.NewPermissionOverwriteFromFlags(fo.Target, targetType, flags)
	if err != nil {
		return models.PermissionOverwrite{}, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}
	return o, nil
}

// permissionsFromNames, isim listesini Permission'a çevirir.
func permissionsFromNames(names []string) (models.Permission, error) {
	keys := make(map[string]bool, len(names))
	aliases := models.DeprecatedPermissionAliases()
	for _, name := range names {
		if canonical, ok := aliases[name]; ok {
			log.Printf("[fixture] permission name %q is deprecated, use %q", name, canonical)
		}
		keys[name] = true
	}

	perms, err := models.PermissionNone.UpdateByKeys(keys)
	if err != nil {
		return models.PermissionNone, fmt.Errorf("%w: %v", pkg.ErrBadRequest, err)
	}
	return perms, nil
}

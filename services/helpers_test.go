package services

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/HuyaneMatsu/hata-sub016/database"
	"github.com/HuyaneMatsu/hata-sub016/models"
	"github.com/HuyaneMatsu/hata-sub016/registry"
	"github.com/HuyaneMatsu/hata-sub016/repository"
	"github.com/HuyaneMatsu/hata-sub016/ws"
)

// recordingHub, broadcast edilen event'leri kaydeden ws.EventPublisher.
type recordingHub struct {
	mu     sync.Mutex
	events []ws.Event
}

func (h *recordingHub) BroadcastToAll(event ws.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.events = append(h.events, event)
}

func (h *recordingHub) BroadcastToChannels(_ []models.Snowflake, event ws.Event) {
	h.BroadcastToAll(event)
}

func (h *recordingHub) ops() []string {
	h.mu.Lock()
	defer h.mu.Unlock()

	ops := make([]string, len(h.events))
	for i, e := range h.events {
		ops[i] = e.Op
	}
	return ops
}

func (h *recordingHub) last() ws.Event {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.events[len(h.events)-1]
}

// testEnv, gerçek bir SQLite dosyası + registry + kayıt tutan hub.
type testEnv struct {
	db        *database.DB
	registry  *registry.Registry
	hub       *recordingHub
	guilds    GuildService
	overwrite OverwriteService
	perms     PermissionService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "test.db"), database.Migrations())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	reg := registry.New()
	hub := &recordingHub{}

	env := &testEnv{
		db:       db,
		registry: reg,
		hub:      hub,
		guilds: NewGuildService(
			db.Conn,
			repository.NewSQLiteGuildRepo(db.Conn),
			repository.NewSQLiteRoleRepo(db.Conn),
			repository.NewSQLiteChannelRepo(db.Conn),
			repository.NewSQLiteOverwriteRepo(db.Conn),
			repository.NewSQLiteUserRepo(db.Conn),
			repository.NewSQLiteMemberRepo(db.Conn),
			reg, hub,
		),
		overwrite: NewOverwriteService(repository.NewSQLiteOverwriteRepo(db.Conn), reg, hub),
		perms:     NewPermissionService(reg, 0, 0),
	}
	t.Cleanup(env.perms.Close)
	return env
}

// seed: guild 1 (owner 100), @everyone = view_channel, rol 10 = send_messages,
// text kanal 1000, thread 1001, kullanıcı 200 (rol 10), client 300 (sadece @everyone).
func (e *testEnv) seed(t *testing.T) {
	t.Helper()
	ctx := context.Background()

	_, err := e.guilds.UpsertGuild(ctx, 1, &models.UpsertGuildRequest{Name: "guild", OwnerID: 100})
	require.NoError(t, err)
	_, err = e.guilds.UpsertRole(ctx, 1, 1, &models.UpsertRoleRequest{Name: "@everyone", Permissions: models.PermViewChannel})
	require.NoError(t, err)
	_, err = e.guilds.UpsertRole(ctx, 1, 10, &models.UpsertRoleRequest{Name: "writer", Permissions: models.PermSendMessages})
	require.NoError(t, err)

	_, err = e.guilds.UpsertChannel(ctx, 1000, &models.UpsertChannelRequest{GuildID: 1, Type: models.ChannelKindText, Name: "general"})
	require.NoError(t, err)
	_, err = e.guilds.UpsertChannel(ctx, 1001, &models.UpsertChannelRequest{GuildID: 1, Type: models.ChannelKindPublicThread, ParentID: 1000, Name: "thread"})
	require.NoError(t, err)

	_, err = e.guilds.UpsertUser(ctx, 200, &models.UpsertUserRequest{Name: "member"})
	require.NoError(t, err)
	_, err = e.guilds.UpsertUser(ctx, 300, &models.UpsertUserRequest{Name: "bot", Kind: models.UserKindClient})
	require.NoError(t, err)

	_, err = e.guilds.UpsertMember(ctx, 1, 200, &models.UpsertMemberRequest{RoleIDs: []models.Snowflake{10}})
	require.NoError(t, err)
	_, err = e.guilds.UpsertMember(ctx, 1, 300, &models.UpsertMemberRequest{})
	require.NoError(t, err)
}

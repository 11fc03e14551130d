package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HuyaneMatsu/hata-sub016/models"
	"github.com/HuyaneMatsu/hata-sub016/pkg"
	"github.com/HuyaneMatsu/hata-sub016/repository"
	"github.com/HuyaneMatsu/hata-sub016/ws"
)

func TestOverwriteService_SetPersistsAndBroadcasts(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	ctx := context.Background()

	o, err := env.overwrite.Set(ctx, 1000, 10, &models.SetOverwriteRequest{
		Type: models.OverwriteTargetRole,
		Deny: models.PermSendMessages,
	})
	require.NoError(t, err)
	assert.Equal(t, models.Snowflake(10), o.TargetID)

	event := env.hub.last()
	assert.Equal(t, ws.OpOverwriteUpdate, event.Op)
	assert.Equal(t, models.ChannelOverwrite{ChannelID: 1000, PermissionOverwrite: *o}, event.Data)

	stored, err := repository.NewSQLiteOverwriteRepo(env.db.Conn).GetByChannel(ctx, 1000)
	require.NoError(t, err)
	assert.Equal(t, []models.PermissionOverwrite{*o}, stored)

	list, err := env.overwrite.List(ctx, 1000)
	require.NoError(t, err)
	assert.Equal(t, []models.PermissionOverwrite{*o}, list)

	// Rol overwrite'ı send_messages'ı kaldırır
	perm, err := env.perms.PermissionsFor(1000, 200)
	require.NoError(t, err)
	assert.False(t, perm.Has(models.PermSendMessages))
	assert.True(t, perm.Has(models.PermViewChannel))

	// Kullanıcı overwrite'ı geri verir
	_, err = env.overwrite.Set(ctx, 1000, 200, &models.SetOverwriteRequest{
		Type:  models.OverwriteTargetUser,
		Flags: map[string]models.OverwriteFlag{"send_messages": models.OverwriteAllow},
	})
	require.NoError(t, err)

	perm, err = env.perms.PermissionsFor(1000, 200)
	require.NoError(t, err)
	assert.True(t, perm.Has(models.PermSendMessages))
}

func TestOverwriteService_ZeroBitsDeletes(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	ctx := context.Background()

	_, err := env.overwrite.Set(ctx, 1000, 10, &models.SetOverwriteRequest{Type: models.OverwriteTargetRole, Allow: models.PermAttachFiles})
	require.NoError(t, err)

	_, err = env.overwrite.Set(ctx, 1000, 10, &models.SetOverwriteRequest{Type: models.OverwriteTargetRole})
	require.NoError(t, err)
	assert.Equal(t, ws.OpOverwriteDelete, env.hub.last().Op)

	list, err := env.overwrite.List(ctx, 1000)
	require.NoError(t, err)
	assert.Empty(t, list)

	// Olmayan overwrite için tekrar sıfır yazmak hata değildir
	_, err = env.overwrite.Set(ctx, 1000, 10, &models.SetOverwriteRequest{Type: models.OverwriteTargetRole})
	assert.NoError(t, err)
}

func TestOverwriteService_Errors(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	ctx := context.Background()

	_, err := env.guilds.UpsertChannel(ctx, 5000, &models.UpsertChannelRequest{
		Type: models.ChannelKindPrivate, Recipients: []models.Snowflake{200, 300},
	})
	require.NoError(t, err)

	tests := []struct {
		name      string
		channelID models.Snowflake
		targetID  models.Snowflake
		req       models.SetOverwriteRequest
		want      error
	}{
		{"overlap", 1000, 10, models.SetOverwriteRequest{Allow: models.PermSpeak, Deny: models.PermSpeak}, pkg.ErrBadRequest},
		{"unknown flag", 1000, 10, models.SetOverwriteRequest{Flags: map[string]models.OverwriteFlag{"teleport": models.OverwriteAllow}}, pkg.ErrBadRequest},
		{"unknown channel", 9999, 10, models.SetOverwriteRequest{Allow: models.PermSpeak}, pkg.ErrNotFound},
		{"unknown role", 1000, 77, models.SetOverwriteRequest{Allow: models.PermSpeak}, pkg.ErrNotFound},
		{"thread", 1001, 10, models.SetOverwriteRequest{Allow: models.PermSpeak}, pkg.ErrBadRequest},
		{"private", 5000, 200, models.SetOverwriteRequest{Type: models.OverwriteTargetUser, Allow: models.PermSpeak}, pkg.ErrBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.req
			_, err := env.overwrite.Set(ctx, tt.channelID, tt.targetID, &req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	assert.ErrorIs(t, env.overwrite.Delete(ctx, 1000, 10), pkg.ErrNotFound)

	_, err = env.overwrite.List(ctx, 9999)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestOverwriteService_DeprecatedFlagAlias(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	o, err := env.overwrite.Set(context.Background(), 1000, 10, &models.SetOverwriteRequest{
		Type:  models.OverwriteTargetRole,
		Flags: map[string]models.OverwriteFlag{"use_public_threads": models.OverwriteAllow},
	})
	require.NoError(t, err)
	assert.Equal(t, models.PermCreatePublicThreads, o.Allow)
}

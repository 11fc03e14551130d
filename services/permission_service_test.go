package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HuyaneMatsu/hata-sub016/models"
	"github.com/HuyaneMatsu/hata-sub016/pkg"
)

func TestPermissionService_PermissionsFor(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	perm, err := env.perms.PermissionsFor(1000, 200)
	require.NoError(t, err)
	assert.True(t, perm.Has(models.PermViewChannel))
	assert.True(t, perm.Has(models.PermSendMessages))

	_, err = env.perms.PermissionsFor(9999, 200)
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	_, err = env.perms.PermissionsFor(1000, 9999)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestPermissionService_PermissionsForRoles(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	perm, err := env.perms.PermissionsForRoles(1000, &models.ResolveRolesRequest{})
	require.NoError(t, err)
	assert.Equal(t, models.PermViewChannel, perm)

	perm, err = env.perms.PermissionsForRoles(1000, &models.ResolveRolesRequest{RoleIDs: []models.Snowflake{10, 777}})
	require.NoError(t, err)
	assert.Equal(t, models.PermViewChannel|models.PermSendMessages, perm)

	tooMany := &models.ResolveRolesRequest{RoleIDs: make([]models.Snowflake, 251)}
	_, err = env.perms.PermissionsForRoles(1000, tooMany)
	assert.ErrorIs(t, err, pkg.ErrBadRequest)

	_, err = env.perms.PermissionsForRoles(9999, &models.ResolveRolesRequest{})
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestPermissionService_CachesOnlyClients(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	_, err := env.perms.CachedPermissionsFor(1000, 200)
	require.NoError(t, err)
	assert.Zero(t, env.perms.CacheLen(), "plain users are never stored")

	perm, err := env.perms.CachedPermissionsFor(1000, 300)
	require.NoError(t, err)
	assert.Equal(t, models.PermViewChannel, perm)
	assert.Equal(t, 1, env.perms.CacheLen())

	again, err := env.perms.CachedPermissionsFor(1000, 300)
	require.NoError(t, err)
	assert.Equal(t, perm, again)
}

func TestPermissionService_OverwriteInvalidatesCache(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	ctx := context.Background()

	_, err := env.perms.CachedPermissionsFor(1000, 300)
	require.NoError(t, err)
	_, err = env.perms.CachedPermissionsFor(1001, 300)
	require.NoError(t, err)
	require.Equal(t, 2, env.perms.CacheLen())

	// @everyone overwrite'ı send_messages verir → hem kanal hem thread invalidate olur
	_, err = env.overwrite.Set(ctx, 1000, 1, &models.SetOverwriteRequest{Type: models.OverwriteTargetRole, Allow: models.PermSendMessages})
	require.NoError(t, err)
	assert.Zero(t, env.perms.CacheLen())

	perm, err := env.perms.CachedPermissionsFor(1000, 300)
	require.NoError(t, err)
	assert.True(t, perm.Has(models.PermSendMessages))
}

func TestPermissionService_RoleChangeInvalidatesGuildChannels(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	ctx := context.Background()

	_, err := env.perms.CachedPermissionsFor(1000, 300)
	require.NoError(t, err)
	require.Equal(t, 1, env.perms.CacheLen())

	_, err = env.guilds.UpsertRole(ctx, 1, 1, &models.UpsertRoleRequest{Name: "@everyone", Permissions: models.PermissionNone})
	require.NoError(t, err)
	assert.Zero(t, env.perms.CacheLen())

	perm, err := env.perms.CachedPermissionsFor(1000, 300)
	require.NoError(t, err)
	assert.Equal(t, models.PermissionNone, perm)
}

func TestPermissionService_InvalidateChannel(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)

	_, err := env.perms.CachedPermissionsFor(1000, 300)
	require.NoError(t, err)

	env.perms.InvalidateChannel(1001)
	assert.Equal(t, 1, env.perms.CacheLen())

	env.perms.InvalidateChannel(1000)
	assert.Zero(t, env.perms.CacheLen())
}

func TestPermissionService_CachedLookupOfDeletedClient(t *testing.T) {
	env := newTestEnv(t)
	env.seed(t)
	ctx := context.Background()

	// Üyeliği olmayan client: silinmesi hiçbir kanalı invalidate etmez.
	_, err := env.guilds.UpsertUser(ctx, 777, &models.UpsertUserRequest{Name: "loner", Kind: models.UserKindClient})
	require.NoError(t, err)

	perm, err := env.perms.CachedPermissionsFor(1000, 777)
	require.NoError(t, err)
	assert.Equal(t, models.PermissionNone, perm)
	assert.Equal(t, 1, env.perms.CacheLen())

	require.NoError(t, env.guilds.DeleteUser(ctx, 777))

	_, err = env.perms.CachedPermissionsFor(1000, 777)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
	_, err = env.perms.PermissionsFor(1000, 777)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
	assert.Zero(t, env.perms.CacheLen())
}

package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HuyaneMatsu/hata-sub016/models"
	"github.com/HuyaneMatsu/hata-sub016/registry"
)

const (
	guildID   models.Snowflake = 1
	roleR1    models.Snowflake = 10
	roleR2    models.Snowflake = 11
	ownerID   models.Snowflake = 100
	memberID  models.Snowflake = 200
	webhookID models.Snowflake = 300
	textID    models.Snowflake = 1000
	voiceID   models.Snowflake = 1001
	forumID   models.Snowflake = 1002
	newsID    models.Snowflake = 1003
	threadID  models.Snowflake = 1004
)

// fixture: @everyone = view_channel, R1 = send_messages, üye R1'i taşır.
func newFixture(t *testing.T) *registry.Registry {
	t.Helper()
	reg := registry.New()

	reg.PutGuild(models.Guild{ID: guildID, Name: "g", OwnerID: ownerID})
	require.NoError(t, reg.PutRole(models.Role{ID: guildID, GuildID: guildID, Name: "@everyone", Permissions: models.PermViewChannel}))
	require.NoError(t, reg.PutRole(models.Role{ID: roleR1, GuildID: guildID, Name: "R1", Permissions: models.PermSendMessages}))
	require.NoError(t, reg.PutRole(models.Role{ID: roleR2, GuildID: guildID, Name: "R2"}))

	for id, kind := range map[models.Snowflake]models.ChannelKind{
		textID:  models.ChannelKindText,
		voiceID: models.ChannelKindVoice,
		forumID: models.ChannelKindForum,
		newsID:  models.ChannelKindAnnouncements,
	} {
		require.NoError(t, reg.PutChannel(models.Channel{ID: id, GuildID: guildID, Kind: kind}))
	}
	require.NoError(t, reg.PutChannel(models.Channel{ID: threadID, GuildID: guildID, Kind: models.ChannelKindPublicThread, ParentID: textID}))

	reg.PutUser(models.User{ID: ownerID, Name: "owner", Kind: models.UserKindUser})
	reg.PutUser(models.User{ID: memberID, Name: "member", Kind: models.UserKindUser})
	reg.PutUser(models.User{ID: webhookID, Name: "hook", Kind: models.UserKindWebhook, ChannelID: textID})
	require.NoError(t, reg.PutGuildProfile(models.GuildProfile{GuildID: guildID, UserID: memberID, RoleIDs: []models.Snowflake{roleR1}}))

	return reg
}

func resolve(reg *registry.Registry, userID, channelID models.Snowflake) models.Permission {
	var p models.Permission
	reg.View(func(v registry.View) {
		p = ResolveByID(v, userID, channelID)
	})
	return p
}

func resolveRoles(reg *registry.Registry, channelID models.Snowflake, roleIDs ...models.Snowflake) models.Permission {
	var p models.Permission
	reg.View(func(v registry.View) {
		ch, _ := v.Channel(channelID)
		p = ResolveRoles(v, ch, roleIDs)
	})
	return p
}

func setRole(t *testing.T, reg *registry.Registry, id models.Snowflake, perms models.Permission) {
	t.Helper()
	require.NoError(t, reg.PutRole(models.Role{ID: id, GuildID: guildID, Permissions: perms}))
}

func setOverwrite(t *testing.T, reg *registry.Registry, channelID, target models.Snowflake, targetType models.OverwriteTargetType, allow, deny models.Permission) {
	t.Helper()
	require.NoError(t, reg.SetOverwrite(channelID, models.PermissionOverwrite{
		TargetID: target, TargetType: targetType, Allow: allow, Deny: deny,
	}))
}

func TestResolve_Owner(t *testing.T) {
	reg := newFixture(t)
	// Owner deny overwrite'lardan etkilenmez
	setOverwrite(t, reg, textID, guildID, models.OverwriteTargetRole, 0, models.PermViewChannel)
	setOverwrite(t, reg, textID, ownerID, models.OverwriteTargetUser, 0, models.PermSendMessages)

	tests := []struct {
		name     string
		channel  models.Snowflake
		expected models.Permission
	}{
		{"text channel strips voice bits only", textID, models.PermissionVoiceDeny},
		{"voice channel keeps everything", voiceID, models.PermissionAll},
		{"forum strips thread and voice bits", forumID, models.PermissionThreadAndVoiceDeny},
		{"announcement channel", newsID, models.PermissionVoiceDeny},
		// Thread clipping owner'a da uygulanır: manage_messages + send_messages → send_messages düşer.
		{"thread clears send_messages", threadID, models.PermissionVoiceDeny &^ models.PermSendMessages},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, resolve(reg, ownerID, tt.channel))
		})
	}
}

func TestResolve_RoleOverwriteDenyWinsOverRoleGrant(t *testing.T) {
	reg := newFixture(t)
	setOverwrite(t, reg, textID, roleR1, models.OverwriteTargetRole, 0, models.PermSendMessages)

	p := resolve(reg, memberID, textID)
	assert.True(t, p.Has(models.PermViewChannel))
	assert.False(t, p.Has(models.PermSendMessages))
	assert.Equal(t, models.PermViewChannel, p)
}

func TestResolve_UserOverwriteWinsOverRoleOverwrite(t *testing.T) {
	reg := newFixture(t)
	setOverwrite(t, reg, textID, roleR1, models.OverwriteTargetRole, 0, models.PermSendMessages)
	setOverwrite(t, reg, textID, memberID, models.OverwriteTargetUser, models.PermSendMessages, 0)

	p := resolve(reg, memberID, textID)
	assert.Equal(t, models.PermViewChannel|models.PermSendMessages, p)
}

func TestResolve_RoleOverwritesAreAccumulated(t *testing.T) {
	reg := newFixture(t)
	require.NoError(t, reg.PutGuildProfile(models.GuildProfile{
		GuildID: guildID, UserID: memberID, RoleIDs: []models.Snowflake{roleR1, roleR2},
	}))
	// Aynı bit bir rolde allow, diğerinde deny: allow'lar deny'lardan sonra uygulanır
	setOverwrite(t, reg, textID, roleR1, models.OverwriteTargetRole, models.PermEmbedLinks, 0)
	setOverwrite(t, reg, textID, roleR2, models.OverwriteTargetRole, 0, models.PermEmbedLinks)

	p := resolve(reg, memberID, textID)
	assert.True(t, p.Has(models.PermEmbedLinks))
}

func TestResolve_EveryoneOverwriteAppliedBeforeRoleOverwrites(t *testing.T) {
	reg := newFixture(t)
	setOverwrite(t, reg, textID, guildID, models.OverwriteTargetRole, 0, models.PermSendMessages)

	assert.Equal(t, models.PermViewChannel, resolve(reg, memberID, textID))

	setOverwrite(t, reg, textID, roleR1, models.OverwriteTargetRole, models.PermSendMessages, 0)
	assert.Equal(t, models.PermViewChannel|models.PermSendMessages, resolve(reg, memberID, textID))
}

func TestResolve_NoViewChannelMeansNone(t *testing.T) {
	reg := newFixture(t)
	setOverwrite(t, reg, textID, guildID, models.OverwriteTargetRole, 0, models.PermViewChannel)

	for _, id := range []models.Snowflake{textID, threadID} {
		assert.Equal(t, models.PermissionNone, resolve(reg, memberID, id))
	}
}

func TestResolve_Idempotent(t *testing.T) {
	reg := newFixture(t)
	setOverwrite(t, reg, textID, roleR1, models.OverwriteTargetRole, models.PermAttachFiles, models.PermMentionEveryone)

	first := resolve(reg, memberID, textID)
	second := resolve(reg, memberID, textID)
	assert.Equal(t, first, second)
}

func TestResolve_Administrator(t *testing.T) {
	reg := newFixture(t)
	setRole(t, reg, roleR1, models.PermAdministrator)
	// Administrator overwrite'ları da ezer
	setOverwrite(t, reg, voiceID, guildID, models.OverwriteTargetRole, 0, models.PermViewChannel|models.PermConnect)

	assert.Equal(t, models.PermissionAll, resolve(reg, memberID, voiceID))
	assert.Equal(t, models.PermissionVoiceDeny, resolve(reg, memberID, textID))
}

func TestResolve_VoiceWithoutConnect(t *testing.T) {
	reg := newFixture(t)
	setRole(t, reg, roleR1, models.PermSendMessages|models.PermSpeak|models.PermStream)

	p := resolve(reg, memberID, voiceID)
	assert.Equal(t, models.PermViewChannel|models.PermSendMessages, p)

	setRole(t, reg, roleR1, models.PermConnect|models.PermSpeak)
	p = resolve(reg, memberID, voiceID)
	assert.Equal(t, models.PermViewChannel|models.PermConnect|models.PermSpeak, p)
}

func TestResolve_ForumClearsThreadAndVoiceBits(t *testing.T) {
	reg := newFixture(t)
	setRole(t, reg, roleR1, models.PermSendMessages|models.PermCreatePublicThreads|models.PermConnect|models.PermSpeak)
	setOverwrite(t, reg, forumID, memberID, models.OverwriteTargetUser, models.PermManageThreads|models.PermSendMessagesInThreads, 0)

	p := resolve(reg, memberID, forumID)
	assert.Zero(t, p&(models.PermissionThreadAll|models.PermissionVoiceAll))
	assert.Equal(t, models.PermViewChannel|models.PermSendMessages, p)
}

func TestResolve_Announcement(t *testing.T) {
	reg := newFixture(t)

	assert.Equal(t, models.PermViewChannel, resolve(reg, memberID, newsID))

	setRole(t, reg, roleR1, models.PermSendMessages|models.PermManageMessages)
	assert.Equal(t, models.PermViewChannel|models.PermSendMessages|models.PermManageMessages, resolve(reg, memberID, newsID))
}

func TestResolve_TextWithoutSendMessages(t *testing.T) {
	reg := newFixture(t)
	setRole(t, reg, roleR1, models.PermEmbedLinks|models.PermAttachFiles|models.PermReadMessageHistory)

	p := resolve(reg, memberID, textID)
	assert.Equal(t, models.PermViewChannel|models.PermReadMessageHistory, p)
}

func TestResolve_Thread(t *testing.T) {
	tests := []struct {
		name     string
		role     models.Permission
		expected models.Permission
	}{
		{
			name:     "no manage_messages clips text capabilities",
			role:     models.PermSendMessages | models.PermSendMessagesInThreads | models.PermEmbedLinks,
			expected: models.PermViewChannel | models.PermSendMessagesInThreads,
		},
		{
			name:     "manage_messages with send_messages clears only send_messages",
			role:     models.PermSendMessages | models.PermManageMessages | models.PermEmbedLinks,
			expected: models.PermViewChannel | models.PermManageMessages | models.PermEmbedLinks,
		},
		{
			name:     "manage_messages without send_messages clips text capabilities",
			role:     models.PermManageMessages | models.PermEmbedLinks,
			expected: models.PermViewChannel | models.PermManageMessages,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg := newFixture(t)
			setRole(t, reg, roleR1, tt.role)
			assert.Equal(t, tt.expected, resolve(reg, memberID, threadID))
		})
	}
}

func TestResolve_ThreadUsesParentOverwrites(t *testing.T) {
	reg := newFixture(t)
	setOverwrite(t, reg, textID, memberID, models.OverwriteTargetUser, 0, models.PermViewChannel)

	assert.Equal(t, models.PermissionNone, resolve(reg, memberID, threadID))
}

func TestResolve_ThreadWithoutParent(t *testing.T) {
	reg := newFixture(t)
	require.NoError(t, reg.PutChannel(models.Channel{ID: 5000, GuildID: guildID, Kind: models.ChannelKindPrivateThread, ParentID: 4999}))

	assert.Equal(t, models.PermissionNone, resolve(reg, memberID, 5000))
}

func TestResolve_Webhook(t *testing.T) {
	reg := newFixture(t)

	// Sadece @everyone: send_messages yok → text clipping
	assert.Equal(t, models.PermViewChannel, resolve(reg, webhookID, textID))

	setOverwrite(t, reg, textID, guildID, models.OverwriteTargetRole, models.PermSendMessages, 0)
	assert.Equal(t, models.PermViewChannel|models.PermSendMessages, resolve(reg, webhookID, textID))

	// Rol overwrite'ları webhook'a uygulanmaz
	setOverwrite(t, reg, textID, roleR1, models.OverwriteTargetRole, models.PermAttachFiles, 0)
	assert.False(t, resolve(reg, webhookID, textID).Has(models.PermAttachFiles))
}

func TestResolve_WebhookOutsideGuild(t *testing.T) {
	reg := newFixture(t)
	reg.PutUser(models.User{ID: webhookID, Name: "hook", Kind: models.UserKindWebhook, ChannelID: 9999})

	assert.Equal(t, models.PermissionNone, resolve(reg, webhookID, textID))
}

func TestResolve_NonMember(t *testing.T) {
	reg := newFixture(t)
	reg.PutUser(models.User{ID: 201, Name: "stranger", Kind: models.UserKindUser})

	assert.Equal(t, models.PermissionNone, resolve(reg, 201, textID))

	// Ayrılan üye @everyone'a düşmez
	require.NoError(t, reg.DeleteGuildProfile(guildID, memberID))
	assert.Equal(t, models.PermissionNone, resolve(reg, memberID, textID))
}

func TestResolve_UnknownRolesIgnored(t *testing.T) {
	reg := newFixture(t)
	require.NoError(t, reg.PutGuildProfile(models.GuildProfile{
		GuildID: guildID, UserID: memberID, RoleIDs: []models.Snowflake{roleR1, 999},
	}))

	assert.Equal(t, models.PermViewChannel|models.PermSendMessages, resolve(reg, memberID, textID))
}

func TestResolve_MissingEveryoneRole(t *testing.T) {
	reg := registry.New()
	reg.PutGuild(models.Guild{ID: guildID, OwnerID: ownerID})
	require.NoError(t, reg.PutRole(models.Role{ID: roleR1, GuildID: guildID, Permissions: models.PermViewChannel}))
	require.NoError(t, reg.PutChannel(models.Channel{ID: textID, GuildID: guildID, Kind: models.ChannelKindText}))
	reg.PutUser(models.User{ID: memberID, Kind: models.UserKindUser})
	require.NoError(t, reg.PutGuildProfile(models.GuildProfile{GuildID: guildID, UserID: memberID, RoleIDs: []models.Snowflake{roleR1}}))

	assert.Equal(t, models.PermViewChannel, resolve(reg, memberID, textID))
}

func TestResolve_UnknownChannelKind(t *testing.T) {
	reg := newFixture(t)
	require.NoError(t, reg.PutChannel(models.Channel{ID: 6000, GuildID: guildID, Kind: models.ChannelKind(99)}))

	assert.Equal(t, models.PermissionNone, resolve(reg, ownerID, 6000))
	assert.Equal(t, models.PermissionNone, resolve(reg, memberID, 6000))
}

func TestResolve_UnknownGuild(t *testing.T) {
	v := fakeView{
		channels: map[models.Snowflake]*models.Channel{
			textID: {ID: textID, GuildID: 77, Kind: models.ChannelKindText},
		},
	}
	user := &models.User{ID: ownerID, Kind: models.UserKindUser}

	ch, _ := v.Channel(textID)
	assert.Equal(t, models.PermissionNone, Resolve(v, user, ch))
	assert.Equal(t, models.PermissionNone, ResolveRoles(v, ch, nil))
}

func TestResolve_PrivateChannels(t *testing.T) {
	reg := newFixture(t)
	require.NoError(t, reg.PutChannel(models.Channel{ID: 7000, Kind: models.ChannelKindPrivate, Recipients: []models.Snowflake{memberID, ownerID}}))
	require.NoError(t, reg.PutChannel(models.Channel{ID: 7001, Kind: models.ChannelKindGroup, Recipients: []models.Snowflake{memberID, ownerID}, OwnerID: ownerID}))

	assert.Equal(t, models.PermissionPrivate, resolve(reg, memberID, 7000))
	assert.Equal(t, models.PermissionNone, resolve(reg, webhookID, 7000))
	assert.Equal(t, models.PermissionGroup, resolve(reg, memberID, 7001))
	assert.Equal(t, models.PermissionGroupOwner, resolve(reg, ownerID, 7001))
}

func TestResolveRoles(t *testing.T) {
	reg := newFixture(t)
	setOverwrite(t, reg, textID, roleR1, models.OverwriteTargetRole, 0, models.PermSendMessages)
	setOverwrite(t, reg, textID, memberID, models.OverwriteTargetUser, models.PermSendMessages, 0)

	// Kullanıcı overwrite'ı uygulanmaz
	assert.Equal(t, models.PermViewChannel, resolveRoles(reg, textID, roleR1))
	assert.Equal(t, models.PermViewChannel|models.PermSendMessages, resolveRoles(reg, voiceID, roleR1))
}

func TestResolveRoles_ForeignRolesIgnored(t *testing.T) {
	reg := newFixture(t)
	reg.PutGuild(models.Guild{ID: 2, Name: "other", OwnerID: ownerID})
	require.NoError(t, reg.PutRole(models.Role{ID: 20, GuildID: 2, Permissions: models.PermAdministrator}))

	assert.Equal(t, models.PermViewChannel, resolveRoles(reg, textID, 20))
}

func TestResolveRoles_EveryoneOnly(t *testing.T) {
	reg := newFixture(t)
	assert.Equal(t, models.PermViewChannel, resolveRoles(reg, textID))
	assert.Equal(t, models.PermViewChannel, resolveRoles(reg, threadID))
}

type fakeView struct {
	guilds   map[models.Snowflake]*models.Guild
	channels map[models.Snowflake]*models.Channel
	users    map[models.Snowflake]*models.User
}

func (f fakeView) Guild(id models.Snowflake) (*models.Guild, bool) {
	g, ok := f.guilds[id]
	return g, ok
}

func (f fakeView) Channel(id models.Snowflake) (*models.Channel, bool) {
	ch, ok := f.channels[id]
	return ch, ok
}

func (f fakeView) User(id models.Snowflake) (*models.User, bool) {
	u, ok := f.users[id]
	return u, ok
}

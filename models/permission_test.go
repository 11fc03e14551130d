package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionBitPositions(t *testing.T) {
	tests := []struct {
		name string
		bit  uint
	}{
		{"create_instant_invite", 0},
		{"administrator", 3},
		{"view_channel", 10},
		{"send_messages", 11},
		{"manage_messages", 13},
		{"connect", 20},
		{"manage_roles", 28},
		{"manage_emojis_and_stickers", 30},
		{"request_to_speak", 32},
		{"manage_threads", 34},
		{"send_messages_in_threads", 38},
		{"moderate_users", 40},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bit, deprecated, ok := PermissionBitByName(tt.name)
			require.True(t, ok)
			assert.False(t, deprecated)
			assert.Equal(t, Permission(1)<<tt.bit, bit)
		})
	}
}

func TestPermissionBitsAreUniqueAndComplete(t *testing.T) {
	var union Permission
	for _, pb := range permissionBits {
		assert.Zero(t, union&pb.bit, "bit reused by %s", pb.name)
		union |= pb.bit
	}
	assert.Equal(t, PermissionAll, union)
	assert.Len(t, permissionBits, 41)
}

func TestDeprecatedAliases(t *testing.T) {
	for alias, canonical := range DeprecatedPermissionAliases() {
		t.Run(alias, func(t *testing.T) {
			aliasBit, deprecated, ok := PermissionBitByName(alias)
			require.True(t, ok)
			assert.True(t, deprecated)

			canonicalBit, _, _ := PermissionBitByName(canonical)
			assert.Equal(t, canonicalBit, aliasBit)
		})
	}

	bit, _, _ := PermissionBitByName("use_public_threads")
	assert.Equal(t, PermCreatePublicThreads, bit)
}

func TestMasksStayWithinAll(t *testing.T) {
	masks := map[string]Permission{
		"text_all":                PermissionTextAll,
		"voice_all":               PermissionVoiceAll,
		"thread_all":              PermissionThreadAll,
		"text_deny":               PermissionTextDeny,
		"voice_deny":              PermissionVoiceDeny,
		"thread_and_voice_deny":   PermissionThreadAndVoiceDeny,
		"text_and_voice_deny":     PermissionTextAndVoiceDeny,
		"deny_send_messages_only": PermissionDenySendMessagesOnly,
		"private":                 PermissionPrivate,
		"group_owner":             PermissionGroupOwner,
	}

	for name, mask := range masks {
		assert.Zero(t, mask&^PermissionAll, name)
	}

	assert.False(t, PermissionVoiceDeny.Has(PermConnect))
	assert.True(t, PermissionVoiceDeny.Has(PermSendMessages))
	assert.False(t, PermissionTextDeny.Has(PermEmbedLinks))
	assert.True(t, PermissionTextDeny.Has(PermReadMessageHistory))
	assert.Equal(t, PermissionAll&^PermSendMessages, PermissionDenySendMessagesOnly)
	assert.True(t, PermissionGroupOwner.Has(PermKickUsers))
	assert.False(t, PermissionGroup.Has(PermKickUsers))
}

func TestPermissionAllowDeny(t *testing.T) {
	p := PermissionNone.Allow(PermViewChannel | PermSendMessages)
	assert.True(t, p.CanViewChannel())
	assert.True(t, p.CanSendMessages())
	assert.True(t, p.Has(PermViewChannel|PermSendMessages))
	assert.False(t, p.Has(PermViewChannel|PermConnect))

	q := p.Deny(PermSendMessages)
	assert.False(t, q.CanSendMessages())
	assert.True(t, p.CanSendMessages(), "Deny must not mutate the receiver")

	// Administrator bit'i Has'i kısa devre etmez
	assert.False(t, PermAdministrator.Has(PermSendMessages))
}

func TestPermissionNamesAndString(t *testing.T) {
	p := PermSendMessages | PermViewChannel | PermCreateInstantInvite
	assert.Equal(t, []string{"create_instant_invite", "view_channel", "send_messages"}, p.Names())
	assert.Equal(t, "Permission(create_instant_invite|view_channel|send_messages)", p.String())
	assert.Equal(t, "Permission(none)", PermissionNone.String())
	assert.Empty(t, PermissionNone.Names())
}

func TestPermissionUpdateByKeys(t *testing.T) {
	p, err := PermViewChannel.UpdateByKeys(map[string]bool{
		"send_messages": true,
		"view_channel":  false,
		"manage_emojis": true,
	})
	require.NoError(t, err)
	assert.Equal(t, PermSendMessages|PermManageEmojisAndStickers, p)

	p, err = PermViewChannel.UpdateByKeys(map[string]bool{"fly": true})
	assert.Error(t, err)
	assert.Equal(t, PermViewChannel, p)
}

func TestPermissionUpdateByKeys_CanonicalNameWinsOverAlias(t *testing.T) {
	// Map sırası rastgele; sonuç her seferinde aynı olmalı.
	for i := 0; i < 100; i++ {
		p, err := PermissionNone.UpdateByKeys(map[string]bool{
			"manage_emojis":              true,
			"manage_emojis_and_stickers": false,
		})
		require.NoError(t, err)
		require.Equal(t, PermissionNone, p)

		p, err = PermManageEmojisAndStickers.UpdateByKeys(map[string]bool{
			"manage_emojis":              false,
			"manage_emojis_and_stickers": true,
		})
		require.NoError(t, err)
		require.Equal(t, PermManageEmojisAndStickers, p)
	}
}

func TestPermissionJSON(t *testing.T) {
	data, err := json.Marshal(PermViewChannel | PermSendMessages)
	require.NoError(t, err)
	assert.Equal(t, `"3072"`, string(data))

	var p Permission
	require.NoError(t, json.Unmarshal([]byte(`"1024"`), &p))
	assert.Equal(t, PermViewChannel, p)

	require.NoError(t, json.Unmarshal([]byte(`8`), &p))
	assert.Equal(t, PermAdministrator, p)

	assert.Error(t, json.Unmarshal([]byte(`"abc"`), &p))
}

func TestPermissionScan(t *testing.T) {
	var p Permission
	require.NoError(t, p.Scan(int64(2048)))
	assert.Equal(t, PermSendMessages, p)

	require.NoError(t, p.Scan(nil))
	assert.Equal(t, PermissionNone, p)

	assert.Error(t, p.Scan(3.14))

	v, err := PermissionAll.Value()
	require.NoError(t, err)
	assert.Equal(t, int64(PermissionAll), v)
}

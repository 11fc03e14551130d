package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HuyaneMatsu/hata-sub016/models"
	"github.com/HuyaneMatsu/hata-sub016/registry"
	"github.com/HuyaneMatsu/hata-sub016/ws"
)

type channelBroadcast struct {
	channelIDs []models.Snowflake
	event      ws.Event
}

type recordingPublisher struct {
	sent []channelBroadcast
}

func (p *recordingPublisher) BroadcastToAll(event ws.Event) {
	p.sent = append(p.sent, channelBroadcast{event: event})
}

func (p *recordingPublisher) BroadcastToChannels(channelIDs []models.Snowflake, event ws.Event) {
	p.sent = append(p.sent, channelBroadcast{channelIDs: channelIDs, event: event})
}

func TestRegisterInvalidationCallbacks(t *testing.T) {
	reg := registry.New()
	pub := &recordingPublisher{}
	registerInvalidationCallbacks(reg, pub)

	reg.PutGuild(models.Guild{ID: 1, Name: "guild", OwnerID: 100})
	require.NoError(t, reg.PutChannel(models.Channel{ID: 1000, GuildID: 1, Kind: models.ChannelKindText}))
	require.NoError(t, reg.PutChannel(models.Channel{ID: 1001, GuildID: 1, Kind: models.ChannelKindPublicThread, ParentID: 1000}))
	pub.sent = nil

	require.NoError(t, reg.SetOverwrite(1000, models.PermissionOverwrite{TargetID: 1, Deny: models.PermSendMessages}))

	require.Len(t, pub.sent, 1)
	sent := pub.sent[0]
	assert.ElementsMatch(t, []models.Snowflake{1000, 1001}, sent.channelIDs)
	assert.Equal(t, ws.OpPermissionsInvalidate, sent.event.Op)

	data, ok := sent.event.Data.(ws.InvalidateData)
	require.True(t, ok)
	assert.ElementsMatch(t, []models.Snowflake{1000, 1001}, data.ChannelIDs)
}

func TestOriginChecker(t *testing.T) {
	tests := []struct {
		name    string
		allowed []string
		origin  string
		want    bool
	}{
		{"no origin header", []string{"https://dash.example"}, "", true},
		{"listed origin", []string{"https://dash.example"}, "https://dash.example", true},
		{"unlisted origin", []string{"https://dash.example"}, "https://evil.example", false},
		{"wildcard", []string{"*"}, "https://anything.example", true},
		{"same host", nil, "http://api.example:8080", true},
		{"garbage origin", nil, "://", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "http://api.example:8080/ws", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			assert.Equal(t, tt.want, originChecker(tt.allowed)(req))
		})
	}
}

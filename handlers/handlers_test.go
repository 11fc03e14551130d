package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HuyaneMatsu/hata-sub016/database"
	"github.com/HuyaneMatsu/hata-sub016/models"
	"github.com/HuyaneMatsu/hata-sub016/registry"
	"github.com/HuyaneMatsu/hata-sub016/repository"
	"github.com/HuyaneMatsu/hata-sub016/services"
	"github.com/HuyaneMatsu/hata-sub016/ws"
)

// newTestMux, gerçek service'ler + temp SQLite ile auth'suz bir mux kurar.
func newTestMux(t *testing.T) (*http.ServeMux, services.PermissionService) {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "handlers.db"), database.Migrations())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	reg := registry.New()
	hub := ws.NewHub()
	overwriteRepo := repository.NewSQLiteOverwriteRepo(db.Conn)

	guilds := services.NewGuildService(
		db.Conn,
		repository.NewSQLiteGuildRepo(db.Conn),
		repository.NewSQLiteRoleRepo(db.Conn),
		repository.NewSQLiteChannelRepo(db.Conn),
		overwriteRepo,
		repository.NewSQLiteUserRepo(db.Conn),
		repository.NewSQLiteMemberRepo(db.Conn),
		reg, hub,
	)
	perms := services.NewPermissionService(reg, 0, 0)
	t.Cleanup(perms.Close)

	guildHandler := NewGuildHandler(guilds)
	roleHandler := NewRoleHandler(guilds)
	channelHandler := NewChannelHandler(guilds)
	memberHandler := NewMemberHandler(guilds)
	overwriteHandler := NewOverwriteHandler(services.NewOverwriteService(overwriteRepo, reg, hub))
	permissionHandler := NewPermissionHandler(perms)
	healthHandler := NewHealthHandler(StatsSource{Registry: reg.Stats, CacheLen: perms.CacheLen})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/health", healthHandler.Get)
	mux.HandleFunc("GET /api/channels/{channelId}/permissions/{userId}", permissionHandler.ForUser)
	mux.HandleFunc("POST /api/channels/{channelId}/permissions/roles", permissionHandler.ForRoles)
	mux.HandleFunc("GET /api/channels/{channelId}/overwrites", overwriteHandler.List)
	mux.HandleFunc("PUT /api/channels/{channelId}/overwrites/{targetId}", overwriteHandler.Set)
	mux.HandleFunc("DELETE /api/channels/{channelId}/overwrites/{targetId}", overwriteHandler.Delete)
	mux.HandleFunc("GET /api/guilds/{guildId}", guildHandler.Get)
	mux.HandleFunc("PUT /api/guilds/{guildId}", guildHandler.Upsert)
	mux.HandleFunc("DELETE /api/guilds/{guildId}", guildHandler.Delete)
	mux.HandleFunc("PUT /api/guilds/{guildId}/roles/{roleId}", roleHandler.Upsert)
	mux.HandleFunc("DELETE /api/guilds/{guildId}/roles/{roleId}", roleHandler.Delete)
	mux.HandleFunc("PUT /api/guilds/{guildId}/members/{userId}", memberHandler.Upsert)
	mux.HandleFunc("DELETE /api/guilds/{guildId}/members/{userId}", memberHandler.Remove)
	mux.HandleFunc("GET /api/channels/{channelId}", channelHandler.Get)
	mux.HandleFunc("PUT /api/channels/{channelId}", channelHandler.Upsert)
	mux.HandleFunc("DELETE /api/channels/{channelId}", channelHandler.Delete)
	mux.HandleFunc("PUT /api/users/{userId}", memberHandler.UpsertUser)
	mux.HandleFunc("DELETE /api/users/{userId}", memberHandler.DeleteUser)

	return mux, perms
}

type apiResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func do(t *testing.T, mux http.Handler, method, path, body string) (int, apiResponse) {
	t.Helper()

	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	var resp apiResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

// ingest: guild 1, @everyone = view_channel (1024), rol 10 = send_messages (2048),
// text kanal 1000, kullanıcı 200 (rol 10).
func ingest(t *testing.T, mux http.Handler) {
	t.Helper()

	steps := []struct{ method, path, body string }{
		{http.MethodPut, "/api/guilds/1", `{"name":"guild","owner_id":"100"}`},
		{http.MethodPut, "/api/guilds/1/roles/1", `{"name":"@everyone","permissions":"1024"}`},
		{http.MethodPut, "/api/guilds/1/roles/10", `{"name":"writer","position":1,"permissions":"2048"}`},
		{http.MethodPut, "/api/channels/1000", `{"guild_id":"1","type":0,"name":"general"}`},
		{http.MethodPut, "/api/users/200", `{"name":"alice"}`},
		{http.MethodPut, "/api/guilds/1/members/200", `{"roles":["10"]}`},
	}
	for _, s := range steps {
		status, resp := do(t, mux, s.method, s.path, s.body)
		require.Equal(t, http.StatusOK, status, "%s %s: %s", s.method, s.path, resp.Error)
	}
}

func TestPermissionHandler_ForUser(t *testing.T) {
	mux, _ := newTestMux(t)
	ingest(t, mux)

	status, resp := do(t, mux, http.MethodGet, "/api/channels/1000/permissions/200", "")
	require.Equal(t, http.StatusOK, status)

	var result models.PermissionResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, models.Snowflake(1000), result.ChannelID)
	assert.Equal(t, models.PermViewChannel|models.PermSendMessages, result.Permissions)
	assert.Equal(t, []string{"view_channel", "send_messages"}, result.Names)
}

func TestPermissionHandler_ForUserErrors(t *testing.T) {
	mux, _ := newTestMux(t)
	ingest(t, mux)

	tests := []struct {
		path   string
		status int
	}{
		{"/api/channels/abc/permissions/200", http.StatusBadRequest},
		{"/api/channels/1000/permissions/0", http.StatusBadRequest},
		{"/api/channels/1000/permissions/200?cached=maybe", http.StatusBadRequest},
		{"/api/channels/9999/permissions/200", http.StatusNotFound},
		{"/api/channels/1000/permissions/9999", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			status, resp := do(t, mux, http.MethodGet, tt.path, "")
			assert.Equal(t, tt.status, status)
			assert.False(t, resp.Success)
		})
	}
}

func TestPermissionHandler_Cached(t *testing.T) {
	mux, perms := newTestMux(t)
	ingest(t, mux)

	status, _ := do(t, mux, http.MethodPut, "/api/users/300", `{"name":"bot","kind":"client"}`)
	require.Equal(t, http.StatusOK, status)
	status, _ = do(t, mux, http.MethodPut, "/api/guilds/1/members/300", `{}`)
	require.Equal(t, http.StatusOK, status)

	status, _ = do(t, mux, http.MethodGet, "/api/channels/1000/permissions/300?cached=true", "")
	require.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, perms.CacheLen())

	status, resp := do(t, mux, http.MethodGet, "/api/health", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t,
		`{"status":"ok","registry":{"guilds":1,"channels":1,"users":2},"cached_entries":1,"ws_connections":0}`,
		string(resp.Data))
}

func TestPermissionHandler_ForRoles(t *testing.T) {
	mux, _ := newTestMux(t)
	ingest(t, mux)

	status, resp := do(t, mux, http.MethodPost, "/api/channels/1000/permissions/roles", `{"role_ids":["10"]}`)
	require.Equal(t, http.StatusOK, status)

	var result models.PermissionResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, models.PermViewChannel|models.PermSendMessages, result.Permissions)
	assert.Zero(t, result.UserID)

	status, _ = do(t, mux, http.MethodPost, "/api/channels/1000/permissions/roles", `{"roles":["10"]}`)
	assert.Equal(t, http.StatusBadRequest, status, "unknown fields are rejected")
}

func TestOverwriteHandler_Lifecycle(t *testing.T) {
	mux, _ := newTestMux(t)
	ingest(t, mux)

	status, resp := do(t, mux, http.MethodPut, "/api/channels/1000/overwrites/10",
		`{"type":0,"flags":{"send_messages":"deny"}}`)
	require.Equal(t, http.StatusOK, status, resp.Error)

	status, resp = do(t, mux, http.MethodGet, "/api/channels/1000/overwrites", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[{"id":"10","type":0,"allow":"0","deny":"2048"}]`, string(resp.Data))

	status, resp = do(t, mux, http.MethodGet, "/api/channels/1000/permissions/200", "")
	require.Equal(t, http.StatusOK, status)
	var result models.PermissionResult
	require.NoError(t, json.Unmarshal(resp.Data, &result))
	assert.Equal(t, models.PermViewChannel, result.Permissions)

	status, _ = do(t, mux, http.MethodPut, "/api/channels/1000/overwrites/10", `{"allow":"1024","deny":"1024"}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, mux, http.MethodDelete, "/api/channels/1000/overwrites/10", "")
	require.Equal(t, http.StatusOK, status)

	status, _ = do(t, mux, http.MethodDelete, "/api/channels/1000/overwrites/10", "")
	assert.Equal(t, http.StatusNotFound, status)

	status, resp = do(t, mux, http.MethodGet, "/api/channels/1000/overwrites", "")
	require.Equal(t, http.StatusOK, status)
	assert.JSONEq(t, `[]`, string(resp.Data))
}

func TestIngestHandlers(t *testing.T) {
	mux, _ := newTestMux(t)
	ingest(t, mux)

	status, resp := do(t, mux, http.MethodGet, "/api/guilds/1", "")
	require.Equal(t, http.StatusOK, status)
	var detail models.GuildDetail
	require.NoError(t, json.Unmarshal(resp.Data, &detail))
	assert.Len(t, detail.Roles, 2)
	assert.Equal(t, []models.Snowflake{1000}, detail.ChannelIDs)

	status, resp = do(t, mux, http.MethodGet, "/api/channels/1000", "")
	require.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(resp.Data), `"permission_overwrites":[]`)

	status, _ = do(t, mux, http.MethodPut, "/api/guilds/1", `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, mux, http.MethodPut, "/api/guilds/1", `not json`)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, mux, http.MethodDelete, "/api/guilds/1/roles/1", "")
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = do(t, mux, http.MethodDelete, "/api/guilds/1/members/200", "")
	require.Equal(t, http.StatusOK, status)

	status, _ = do(t, mux, http.MethodDelete, "/api/users/200", "")
	require.Equal(t, http.StatusOK, status)

	status, _ = do(t, mux, http.MethodDelete, "/api/channels/1000", "")
	require.Equal(t, http.StatusOK, status)

	status, _ = do(t, mux, http.MethodDelete, "/api/guilds/1", "")
	require.Equal(t, http.StatusOK, status)

	status, _ = do(t, mux, http.MethodGet, "/api/guilds/1", "")
	assert.Equal(t, http.StatusNotFound, status)
}

// Package main: HTTP route registration.
//
// Middleware chain helper'ları:
//   - auth:      bearer token doğrulaması ("read" veya "write" scope)
//   - authWrite: auth + "write" scope
package main

import (
	"net/http"

	"github.com/HuyaneMatsu/hata-sub016/middleware"
)

// initRoutes, tüm endpoint'leri mux'a bağlar.
//
// Route sıralama kuralı: literal path'ler parametrik path'lerle çakışmamalı.
// "/api/channels/{channelId}/permissions/roles" POST, "/permissions/{userId}" GET
// olduğu için method pattern'leri ayırır.
func initRoutes(mux *http.ServeMux, h *Handlers, tokens middleware.TokenValidator) {
	authMw := middleware.NewAuthMiddleware(tokens)

	auth := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(handler)
	}
	authWrite := func(handler http.HandlerFunc) http.Handler {
		return authMw.Require(middleware.RequireWrite(handler))
	}

	// Health: public
	mux.HandleFunc("GET /api/health", h.Health.Get)

	// Permissions: salt okuma; roles endpoint'i POST olsa da state değiştirmez
	mux.Handle("GET /api/channels/{channelId}/permissions/{userId}", auth(h.Permission.ForUser))
	mux.Handle("POST /api/channels/{channelId}/permissions/roles", auth(h.Permission.ForRoles))

	// Overwrites
	mux.Handle("GET /api/channels/{channelId}/overwrites", auth(h.Overwrite.List))
	mux.Handle("PUT /api/channels/{channelId}/overwrites/{targetId}", authWrite(h.Overwrite.Set))
	mux.Handle("DELETE /api/channels/{channelId}/overwrites/{targetId}", authWrite(h.Overwrite.Delete))

	// Guilds
	mux.Handle("GET /api/guilds/{guildId}", auth(h.Guild.Get))
	mux.Handle("PUT /api/guilds/{guildId}", authWrite(h.Guild.Upsert))
	mux.Handle("DELETE /api/guilds/{guildId}", authWrite(h.Guild.Delete))

	// Roles
	mux.Handle("PUT /api/guilds/{guildId}/roles/{roleId}", authWrite(h.Role.Upsert))
	mux.Handle("DELETE /api/guilds/{guildId}/roles/{roleId}", authWrite(h.Role.Delete))

	// Members
	mux.Handle("PUT /api/guilds/{guildId}/members/{userId}", authWrite(h.Member.Upsert))
	mux.Handle("DELETE /api/guilds/{guildId}/members/{userId}", authWrite(h.Member.Remove))

	// Channels
	mux.Handle("GET /api/channels/{channelId}", auth(h.Channel.Get))
	mux.Handle("PUT /api/channels/{channelId}", authWrite(h.Channel.Upsert))
	mux.Handle("DELETE /api/channels/{channelId}", authWrite(h.Channel.Delete))

	// Users
	mux.Handle("PUT /api/users/{userId}", authWrite(h.Member.UpsertUser))
	mux.Handle("DELETE /api/users/{userId}", authWrite(h.Member.DeleteUser))

	// WebSocket: tarayıcılar upgrade sırasında header gönderemez,
	// token query parameter ile gelir ve handler kendisi doğrular:
	//   ws://host/ws?token=JWT
	mux.HandleFunc("GET /ws", h.WS.HandleConnection)
}

// Package main: Handler katmanı başlatma.
package main

import (
	"net/http"
	"net/url"

	"github.com/HuyaneMatsu/hata-sub016/config"
	"github.com/HuyaneMatsu/hata-sub016/handlers"
	"github.com/HuyaneMatsu/hata-sub016/registry"
	"github.com/HuyaneMatsu/hata-sub016/ws"
)

// Handlers, tüm handler instance'larını tutan container struct.
type Handlers struct {
	Health     *handlers.HealthHandler
	Permission *handlers.PermissionHandler
	Overwrite  *handlers.OverwriteHandler
	Guild      *handlers.GuildHandler
	Role       *handlers.RoleHandler
	Channel    *handlers.ChannelHandler
	Member     *handlers.MemberHandler
	WS         *ws.Handler
}

// initHandlers, tüm handler'ları service dependency'leri ile oluşturur.
func initHandlers(svcs *Services, reg *registry.Registry, hub *ws.Hub, cfg *config.Config) *Handlers {
	return &Handlers{
		Health: handlers.NewHealthHandler(handlers.StatsSource{
			Registry:    reg.Stats,
			CacheLen:    svcs.Permission.CacheLen,
			Connections: hub.ConnectionCount,
		}),
		Permission: handlers.NewPermissionHandler(svcs.Permission),
		Overwrite:  handlers.NewOverwriteHandler(svcs.Overwrite),
		Guild:      handlers.NewGuildHandler(svcs.Guild),
		Role:       handlers.NewRoleHandler(svcs.Guild),
		Channel:    handlers.NewChannelHandler(svcs.Guild),
		Member:     handlers.NewMemberHandler(svcs.Guild),
		WS:         ws.NewHandler(hub, svcs.Token, reg, originChecker(cfg.CORS.AllowedOrigins)),
	}
}

// originChecker, WebSocket upgrade'inde Origin header'ını CORS listesine göre kontrol eder.
// Origin header'ı olmayan istemciler (CLI, servisler) kabul edilir. "*" her şeye izin verir.
func originChecker(allowed []string) func(r *http.Request) bool {
	set := make(map[string]bool, len(allowed))
	for _, origin := range allowed {
		set[origin] = true
	}

	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" || set["*"] {
			return true
		}
		if set[origin] {
			return true
		}
		// Aynı host'tan gelen bağlantılar (dashboard API ile aynı yerde servis edildiğinde)
		u, err := url.Parse(origin)
		return err == nil && u.Host == r.Host
	}
}

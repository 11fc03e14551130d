// Package main: Service katmanı başlatma.
//
// Sıralama kuralları:
//  1. PermissionService registry'den ÖNCE Load edilmemeli: invalidation hook'u
//     NewPermissionService içinde register edilir, Load sırasında cache zaten boştur.
//  2. Hub callback'leri (registerInvalidationCallbacks) Load'dan SONRA register edilir,
//     startup'ta bağlı client olmadığı için Load event üretmez.
package main

import (
	"context"
	"fmt"
	"log"

	"github.com/HuyaneMatsu/hata-sub016/config"
	"github.com/HuyaneMatsu/hata-sub016/database"
	"github.com/HuyaneMatsu/hata-sub016/registry"
	"github.com/HuyaneMatsu/hata-sub016/services"
	"github.com/HuyaneMatsu/hata-sub016/ws"
)

// Services, tüm service instance'larını tutan container struct.
type Services struct {
	Token      services.TokenService
	Permission services.PermissionService
	Overwrite  services.OverwriteService
	Guild      services.GuildService
	Fixture    services.FixtureService
}

// app, bir komutun ihtiyaç duyduğu tüm dependency'ler.
type app struct {
	cfg      *config.Config
	db       *database.DB
	repos    *Repositories
	registry *registry.Registry
	hub      *ws.Hub
	svcs     *Services
}

// initServices, tüm service'leri oluşturur.
func initServices(db *database.DB, repos *Repositories, reg *registry.Registry, hub ws.EventPublisher, cfg *config.Config) *Services {
	guildService := services.NewGuildService(
		db.Conn,
		repos.Guild,
		repos.Role,
		repos.Channel,
		repos.Overwrite,
		repos.User,
		repos.Member,
		reg,
		hub,
	)

	return &Services{
		Token:      services.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer),
		Permission: services.NewPermissionService(reg, cfg.Cache.PermissionTTL, cfg.Cache.CleanupInterval),
		Overwrite:  services.NewOverwriteService(repos.Overwrite, reg, hub),
		Guild:      guildService,
		Fixture:    services.NewFixtureService(guildService),
	}
}

// bootstrap: config → database → repository'ler → registry + hub → service'ler → Load.
//
// Hub burada çalıştırılmaz; sadece serve komutu `go hub.Run()` çağırır. Çalışmayan
// bir hub'a broadcast güvenlidir (bağlı client yoktur).
func bootstrap(ctx context.Context) (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	db, err := database.New(cfg.Database.Path, database.Migrations())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	repos := initRepositories(db.Conn)
	reg := registry.New()
	hub := ws.NewHub()
	svcs := initServices(db, repos, reg, hub, cfg)

	if err := svcs.Guild.Load(ctx); err != nil {
		svcs.Permission.Close()
		db.Close()
		return nil, fmt.Errorf("failed to load registry: %w", err)
	}

	stats := reg.Stats()
	log.Printf("[main] registry ready (guilds=%d channels=%d users=%d)", stats.Guilds, stats.Channels, stats.Users)

	return &app{
		cfg:      cfg,
		db:       db,
		repos:    repos,
		registry: reg,
		hub:      hub,
		svcs:     svcs,
	}, nil
}

// Close, bootstrap'in açtığı kaynakları kapatır.
func (a *app) Close() {
	a.svcs.Permission.Close()
	if err := a.db.Close(); err != nil {
		log.Printf("[main] failed to close database: %v", err)
	}
}

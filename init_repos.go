// Package main: Repository katmanı başlatma.
package main

import (
	"database/sql"

	"github.com/HuyaneMatsu/hata-sub016/repository"
)

// Repositories, tüm repository instance'larını tutan container struct.
type Repositories struct {
	Guild     repository.GuildRepository
	Role      repository.RoleRepository
	Channel   repository.ChannelRepository
	Overwrite repository.OverwriteRepository
	User      repository.UserRepository
	Member    repository.MemberRepository
}

// initRepositories, veritabanı bağlantısından tüm repository'leri oluşturur.
// *sql.DB thread-safe bir connection pool'dur, hepsi aynısını paylaşır.
func initRepositories(conn *sql.DB) *Repositories {
	return &Repositories{
		Guild:     repository.NewSQLiteGuildRepo(conn),
		Role:      repository.NewSQLiteRoleRepo(conn),
		Channel:   repository.NewSQLiteChannelRepo(conn),
		Overwrite: repository.NewSQLiteOverwriteRepo(conn),
		User:      repository.NewSQLiteUserRepo(conn),
		Member:    repository.NewSQLiteMemberRepo(conn),
	}
}

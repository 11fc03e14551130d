// Package models, uygulamanın domain modellerini (veri yapıları) tanımlar.
//
// Model nedir?
// Discord API'den gelen bir entity'nin (guild, kanal, rol, kullanıcı) Go karşılığıdır.
// Aynı zamanda SQLite tablolarının ve inspection API'nin veri şeklini belirler.
//
// Go'da `json:"guild_id"` gibi tag'ler, struct field'larının JSON'a
// nasıl serialize/deserialize edileceğini belirler.
package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// UserKind, principal'in türünü belirtir.
//
// Permission resolution açısından üç tür vardır:
//   - user: normal kullanıcı, guild üyeliği (GuildProfile) taşıyabilir
//   - client: bu process'in yönettiği kullanıcı (bot hesabı): permission cache sadece bunlar için tutulur
//   - webhook: üyelik taşıyamayan basit principal: sadece @everyone olarak değerlendirilir
type UserKind string

const (
	UserKindUser    UserKind = "user"
	UserKindClient  UserKind = "client"
	UserKindWebhook UserKind = "webhook"
)

// IsValid, kind'in bilinen bir değer olup olmadığını döner.
func (k UserKind) IsValid() bool {
	return k == UserKindUser || k == UserKindClient || k == UserKindWebhook
}

// User, bir principal'i temsil eder.
//
// GuildProfiles: guild_id → GuildProfile. Sadece üyelik taşıyabilen
// principal'lerde (user, client) dolu olur. Webhook'larda her zaman boştur.
// ChannelID: sadece webhook'lar için: webhook'un bağlı olduğu kanal.
type User struct {
	ID            Snowflake                   `json:"id"`
	Name          string                      `json:"name"`
	Kind          UserKind                    `json:"kind"`
	ChannelID     Snowflake                   `json:"channel_id,omitempty"`
	GuildProfiles map[Snowflake]*GuildProfile `json:"-"`
}

// IsMemberCapable, principal'in guild üyeliği taşıyabilip taşıyamayacağını döner.
func (u *User) IsMemberCapable() bool {
	return u.Kind != UserKindWebhook
}

// IsCacheable, principal'in permission cache'e alınıp alınmayacağını döner.
// Sadece bu process'in yönettiği kullanıcılar (client) cache'lenir:
// böylece cache boyutu aktif olarak yönetilen principal sayısıyla sınırlı kalır.
func (u *User) IsCacheable() bool {
	return u.Kind == UserKindClient
}

// GuildProfile, bir kullanıcının belirli bir guild'deki üyelik bilgisidir.
//
// RoleIDs @everyone rolünü içermez: @everyone her üye için implicit'tir.
type GuildProfile struct {
	GuildID  Snowflake   `json:"guild_id"`
	UserID   Snowflake   `json:"user_id"`
	Nick     *string     `json:"nick"` // *string = nullable
	RoleIDs  []Snowflake `json:"roles"`
	JoinedAt time.Time   `json:"joined_at"`
}

// HasRole, profilin verilen rolü taşıyıp taşımadığını döner.
func (p *GuildProfile) HasRole(roleID Snowflake) bool {
	for _, id := range p.RoleIDs {
		if id == roleID {
			return true
		}
	}
	return false
}

// UpsertUserRequest, kullanıcı oluşturma/güncelleme isteği.
type UpsertUserRequest struct {
	Name      string    `json:"name"`
	Kind      UserKind  `json:"kind"`
	ChannelID Snowflake `json:"channel_id"`
}

// Validate, UpsertUserRequest'in geçerli olup olmadığını kontrol eder.
func (r *UpsertUserRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	nameLen := utf8.RuneCountInString(r.Name)
	if nameLen < 1 || nameLen > 80 {
		return fmt.Errorf("user name must be between 1 and 80 characters")
	}

	if r.Kind == "" {
		r.Kind = UserKindUser
	}
	if !r.Kind.IsValid() {
		return fmt.Errorf("unknown user kind %q", r.Kind)
	}

	if r.Kind == UserKindWebhook && r.ChannelID == 0 {
		return fmt.Errorf("webhooks require channel_id")
	}
	if r.Kind != UserKindWebhook && r.ChannelID != 0 {
		return fmt.Errorf("only webhooks can have channel_id")
	}

	return nil
}

// UpsertMemberRequest, guild üyeliği oluşturma/güncelleme isteği.
type UpsertMemberRequest struct {
	Nick     *string     `json:"nick"`
	RoleIDs  []Snowflake `json:"roles"`
	JoinedAt time.Time   `json:"joined_at"`
}

// Validate, UpsertMemberRequest'in geçerli olup olmadığını kontrol eder.
func (r *UpsertMemberRequest) Validate() error {
	if r.Nick != nil {
		*r.Nick = strings.TrimSpace(*r.Nick)
		if utf8.RuneCountInString(*r.Nick) > 32 {
			return fmt.Errorf("nick must be at most 32 characters")
		}
	}

	seen := make(map[Snowflake]bool, len(r.RoleIDs))
	for _, id := range r.RoleIDs {
		if seen[id] {
			return fmt.Errorf("duplicate role id: %s", id)
		}
		seen[id] = true
	}

	return nil
}

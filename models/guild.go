package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Guild, bir Discord sunucusunu temsil eder.
//
// Roles: role_id → Role. @everyone rolü de buradadır (key = guild ID).
// ChannelIDs: guild'e ait kanalların ID set'i. Kanal kayıtlarının kendisi
// registry'nin channel arena'sında tutulur, guild sadece ID'leri bilir.
type Guild struct {
	ID         Snowflake              `json:"id"`
	Name       string                 `json:"name"`
	OwnerID    Snowflake              `json:"owner_id"`
	Roles      map[Snowflake]*Role    `json:"-"`
	ChannelIDs map[Snowflake]struct{} `json:"-"`
}

// EveryoneRole, guild'in @everyone rolünü döner. Kayıt yoksa nil.
func (g *Guild) EveryoneRole() *Role {
	return g.Roles[g.ID]
}

// HasChannel, kanalın bu guild'e ait olup olmadığını döner.
func (g *Guild) HasChannel(channelID Snowflake) bool {
	_, ok := g.ChannelIDs[channelID]
	return ok
}

// RoleList, rolleri liste olarak döner (API response için).
func (g *Guild) RoleList() []Role {
	list := make([]Role, 0, len(g.Roles))
	for _, r := range g.Roles {
		list = append(list, *r)
	}
	return list
}

// GuildDetail, GET /api/guilds/{id} response'u: guild + rolleri + kanal ID'leri.
type GuildDetail struct {
	Guild      Guild       `json:"guild"`
	Roles      []Role      `json:"roles"`
	ChannelIDs []Snowflake `json:"channel_ids"`
}

// UpsertGuildRequest, guild oluşturma/güncelleme isteği.
type UpsertGuildRequest struct {
	Name    string    `json:"name"`
	OwnerID Snowflake `json:"owner_id"`
}

// Validate, UpsertGuildRequest'in geçerli olup olmadığını kontrol eder.
func (r *UpsertGuildRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	nameLen := utf8.RuneCountInString(r.Name)
	if nameLen < 1 || nameLen > 100 {
		return fmt.Errorf("guild name must be between 1 and 100 characters")
	}
	if r.OwnerID == 0 {
		return fmt.Errorf("owner_id is required")
	}
	return nil
}

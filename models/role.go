package models

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Role, bir guild rolünü temsil eder.
//
// @everyone rolü özeldir: ID'si guild'in ID'sine eşittir ve her üye onu
// implicit olarak taşır. GuildProfile.RoleIDs listesinde yer almaz.
//
// Position sadece sıralama içindir: base permission hesabında rol önceliği
// YOKTUR, üyenin tüm rollerinin permission'ları düz OR'lanır.
type Role struct {
	ID          Snowflake  `json:"id"`
	GuildID     Snowflake  `json:"guild_id"`
	Name        string     `json:"name"`
	Color       int        `json:"color"`
	Position    int        `json:"position"`
	Permissions Permission `json:"permissions"`
	Managed     bool       `json:"managed"`
	Mentionable bool       `json:"mentionable"`
}

// IsEveryone, rolün guild'in @everyone rolü olup olmadığını döner.
func (r *Role) IsEveryone() bool {
	return r.ID == r.GuildID
}

// UpsertRoleRequest, rol oluşturma/güncelleme isteği (Discord role payload'ı).
type UpsertRoleRequest struct {
	Name        string     `json:"name"`
	Color       int        `json:"color"`
	Position    int        `json:"position"`
	Permissions Permission `json:"permissions"`
	Managed     bool       `json:"managed"`
	Mentionable bool       `json:"mentionable"`
}

// Validate, UpsertRoleRequest'in geçerli olup olmadığını kontrol eder.
func (r *UpsertRoleRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if utf8.RuneCountInString(r.Name) > 100 {
		return fmt.Errorf("role name must be at most 100 characters")
	}
	if r.Position < 0 {
		return fmt.Errorf("role position cannot be negative")
	}
	if r.Permissions&^PermissionAll != 0 {
		return fmt.Errorf("permissions contain undefined bits")
	}
	return nil
}

package models

import "fmt"

// ResolveRolesRequest, hayali bir principal için permission hesaplama isteği.
type ResolveRolesRequest struct {
	RoleIDs []Snowflake `json:"role_ids"`
}

// Validate, ResolveRolesRequest'in geçerli olup olmadığını kontrol eder.
// Boş liste geçerlidir: sadece @everyone taşıyan bir principal demektir.
func (r *ResolveRolesRequest) Validate() error {
	if len(r.RoleIDs) > 250 {
		return fmt.Errorf("at most 250 role ids can be resolved at once")
	}
	return nil
}

// PermissionResult, permission endpoint'lerinin response'u.
type PermissionResult struct {
	ChannelID   Snowflake  `json:"channel_id"`
	UserID      Snowflake  `json:"user_id,omitempty"`
	Permissions Permission `json:"permissions"`
	Names       []string   `json:"names"`
}

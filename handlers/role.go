// RoleHandler: rol ingest HTTP endpoint'leri.
//
// Rol değişikliği guild'in tüm kanallarının permission cache'ini invalidate eder.
// @everyone rolü (ID = guild ID) güncellenebilir ama silinemez.
package handlers

import (
	"net/http"

	"github.com/HuyaneMatsu/hata-sub016/models"
	"github.com/HuyaneMatsu/hata-sub016/pkg"
	"github.com/HuyaneMatsu/hata-sub016/services"
)

// RoleHandler, rol endpoint'lerini yöneten struct.
type RoleHandler struct {
	guildService services.GuildService
}

// NewRoleHandler, constructor.
func NewRoleHandler(guildService services.GuildService) *RoleHandler {
	return &RoleHandler{guildService: guildService}
}

// Upsert godoc
// PUT /api/guilds/{guildId}/roles/{roleId}
// Body: { "name": "mod", "position": 1, "permissions": "8192" }
func (h *RoleHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	guildID, err := pathSnowflake(r, "guildId")
	if err != nil {
		pkg.Error(w, err)
		return
	}
	roleID, err := pathSnowflake(r, "roleId")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	var req models.UpsertRoleRequest
	if err := decodeBody(r, &req); err != nil {
		pkg.Error(w, err)
		return
	}

	role, err := h.guildService.UpsertRole(r.Context(), guildID, roleID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, role)
}

// Delete godoc
// DELETE /api/guilds/{guildId}/roles/{roleId}
func (h *RoleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	guildID, err := pathSnowflake(r, "guildId")
	if err != nil {
		pkg.Error(w, err)
		return
	}
	roleID, err := pathSnowflake(r, "roleId")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	if err := h.guildService.DeleteRole(r.Context(), guildID, roleID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "role deleted"})
}

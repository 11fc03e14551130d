// GuildHandler: guild ingest HTTP endpoint'leri.
//
// Thin handler prensibi: Parse → Service → Response.
// Okuma "read", yazma "write" scope'u ister (route seviyesinde).
package handlers

import (
	"net/http"

	"github.com/HuyaneMatsu/hata-sub016/models"
	"github.com/HuyaneMatsu/hata-sub016/pkg"
	"github.com/HuyaneMatsu/hata-sub016/services"
)

// GuildHandler, guild endpoint'lerini yönetir.
type GuildHandler struct {
	guildService services.GuildService
}

// NewGuildHandler, constructor.
func NewGuildHandler(guildService services.GuildService) *GuildHandler {
	return &GuildHandler{guildService: guildService}
}

// Get godoc
// GET /api/guilds/{guildId}
// Guild'i rolleri ve kanal ID'leriyle döner.
func (h *GuildHandler) Get(w http.ResponseWriter, r *http.Request) {
	guildID, err := pathSnowflake(r, "guildId")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	detail, err := h.guildService.GetGuild(r.Context(), guildID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, detail)
}

// Upsert godoc
// PUT /api/guilds/{guildId}
// Body: { "name": "guild", "owner_id": "100" }
func (h *GuildHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	guildID, err := pathSnowflake(r, "guildId")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	var req models.UpsertGuildRequest
	if err := decodeBody(r, &req); err != nil {
		pkg.Error(w, err)
		return
	}

	guild, err := h.guildService.UpsertGuild(r.Context(), guildID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, guild)
}

// Delete godoc
// DELETE /api/guilds/{guildId}
// Guild'in kanalları, rolleri ve üyelikleri de silinir.
func (h *GuildHandler) Delete(w http.ResponseWriter, r *http.Request) {
	guildID, err := pathSnowflake(r, "guildId")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	if err := h.guildService.DeleteGuild(r.Context(), guildID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "guild deleted"})
}

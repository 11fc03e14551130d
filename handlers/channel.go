// ChannelHandler: kanal ingest HTTP endpoint'leri.
package handlers

import (
	"net/http"

	"github.com/HuyaneMatsu/hata-sub016/models"
	"github.com/HuyaneMatsu/hata-sub016/pkg"
	"github.com/HuyaneMatsu/hata-sub016/services"
)

// ChannelHandler, kanal endpoint'lerini yöneten struct.
type ChannelHandler struct {
	guildService services.GuildService
}

// NewChannelHandler, constructor.
func NewChannelHandler(guildService services.GuildService) *ChannelHandler {
	return &ChannelHandler{guildService: guildService}
}

// Get godoc
// GET /api/channels/{channelId}
// Kanalı overwrite listesiyle birlikte döner.
func (h *ChannelHandler) Get(w http.ResponseWriter, r *http.Request) {
	channelID, err := pathSnowflake(r, "channelId")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	channel, err := h.guildService.GetChannel(r.Context(), channelID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, channel)
}

// Upsert godoc
// PUT /api/channels/{channelId}
// Body: { "guild_id": "1", "type": 0, "name": "general", "permission_overwrites": [...] }
//
// Payload overwrite listesinin tamamını taşır; listede olmayan overwrite'lar silinir.
func (h *ChannelHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	channelID, err := pathSnowflake(r, "channelId")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	var req models.UpsertChannelRequest
	if err := decodeBody(r, &req); err != nil {
		pkg.Error(w, err)
		return
	}

	channel, err := h.guildService.UpsertChannel(r.Context(), channelID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, channel)
}

// Delete godoc
// DELETE /api/channels/{channelId}
// Child thread'ler de silinir.
func (h *ChannelHandler) Delete(w http.ResponseWriter, r *http.Request) {
	channelID, err := pathSnowflake(r, "channelId")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	if err := h.guildService.DeleteChannel(r.Context(), channelID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "channel deleted"})
}

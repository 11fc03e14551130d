// OverwriteHandler: kanal permission overwrite HTTP endpoint'leri.
//
// Endpoint'ler:
//   - GET    /api/channels/{channelId}/overwrites            → List
//   - PUT    /api/channels/{channelId}/overwrites/{targetId} → Set (UPSERT)
//   - DELETE /api/channels/{channelId}/overwrites/{targetId} → Delete
//
// Set ve Delete "write" scope gerektirir (route seviyesinde).
package handlers

import (
	"net/http"

	"github.com/HuyaneMatsu/hata-sub016/models"
	"github.com/HuyaneMatsu/hata-sub016/pkg"
	"github.com/HuyaneMatsu/hata-sub016/services"
)

// OverwriteHandler, overwrite endpoint'lerini yöneten struct.
type OverwriteHandler struct {
	service services.OverwriteService
}

// NewOverwriteHandler, constructor.
func NewOverwriteHandler(service services.OverwriteService) *OverwriteHandler {
	return &OverwriteHandler{service: service}
}

// List godoc
// GET /api/channels/{channelId}/overwrites
//
// Response: []PermissionOverwrite, target ID'ye göre sıralı (boş olabilir)
func (h *OverwriteHandler) List(w http.ResponseWriter, r *http.Request) {
	channelID, err := pathSnowflake(r, "channelId")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	overwrites, err := h.service.List(r.Context(), channelID)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, overwrites)
}

// Set godoc
// PUT /api/channels/{channelId}/overwrites/{targetId}
// Body: { "type": 0, "allow": "2048", "deny": "0" }
// veya: { "type": 1, "flags": { "send_messages": "allow", "speak": "deny" } }
//
// allow=0, deny=0 → overwrite silinir (inherit'e döner).
func (h *OverwriteHandler) Set(w http.ResponseWriter, r *http.Request) {
	channelID, err := pathSnowflake(r, "channelId")
	if err != nil {
		pkg.Error(w, err)
		return
	}
	targetID, err := pathSnowflake(r, "targetId")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	var req models.SetOverwriteRequest
	if err := decodeBody(r, &req); err != nil {
		pkg.Error(w, err)
		return
	}

	overwrite, err := h.service.Set(r.Context(), channelID, targetID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, overwrite)
}

// Delete godoc
// DELETE /api/channels/{channelId}/overwrites/{targetId}
func (h *OverwriteHandler) Delete(w http.ResponseWriter, r *http.Request) {
	channelID, err := pathSnowflake(r, "channelId")
	if err != nil {
		pkg.Error(w, err)
		return
	}
	targetID, err := pathSnowflake(r, "targetId")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), channelID, targetID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "overwrite deleted"})
}

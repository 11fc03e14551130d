package handlers

import (
	"net/http"
	"strconv"

	"github.com/HuyaneMatsu/hata-sub016/models"
	"github.com/HuyaneMatsu/hata-sub016/pkg"
	"github.com/HuyaneMatsu/hata-sub016/services"
)

// PermissionHandler, permission hesaplama endpoint'leri. İkisi de salt okumadır.
type PermissionHandler struct {
	service services.PermissionService
}

// NewPermissionHandler, constructor.
func NewPermissionHandler(service services.PermissionService) *PermissionHandler {
	return &PermissionHandler{service: service}
}

// ForUser godoc
// GET /api/channels/{channelId}/permissions/{userId}[?cached=true]
//
// cached=true → client principal'lar için cache'ten okunur/cache'e yazılır.
func (h *PermissionHandler) ForUser(w http.ResponseWriter, r *http.Request) {
	channelID, err := pathSnowflake(r, "channelId")
	if err != nil {
		pkg.Error(w, err)
		return
	}
	userID, err := pathSnowflake(r, "userId")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	cached := false
	if raw := r.URL.Query().Get("cached"); raw != "" {
		cached, err = strconv.ParseBool(raw)
		if err != nil {
			pkg.ErrorWithMessage(w, http.StatusBadRequest, "cached must be a boolean")
			return
		}
	}

	var perm models.Permission
	if cached {
		perm, err = h.service.CachedPermissionsFor(channelID, userID)
	} else {
		perm, err = h.service.PermissionsFor(channelID, userID)
	}
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, models.PermissionResult{
		ChannelID:   channelID,
		UserID:      userID,
		Permissions: perm,
		Names:       perm.Names(),
	})
}

// ForRoles godoc
// POST /api/channels/{channelId}/permissions/roles
// Body: { "role_ids": ["10", "11"] }
//
// Sadece bu rollere (ve @everyone'a) sahip hayali bir üyenin yetkileri.
func (h *PermissionHandler) ForRoles(w http.ResponseWriter, r *http.Request) {
	channelID, err := pathSnowflake(r, "channelId")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	var req models.ResolveRolesRequest
	if err := decodeBody(r, &req); err != nil {
		pkg.Error(w, err)
		return
	}

	perm, err := h.service.PermissionsForRoles(channelID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, models.PermissionResult{
		ChannelID:   channelID,
		Permissions: perm,
		Names:       perm.Names(),
	})
}

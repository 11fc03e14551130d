// MemberHandler: kullanıcı ve guild üyeliği ingest HTTP endpoint'leri.
package handlers

import (
	"net/http"

	"github.com/HuyaneMatsu/hata-sub016/models"
	"github.com/HuyaneMatsu/hata-sub016/pkg"
	"github.com/HuyaneMatsu/hata-sub016/services"
)

// MemberHandler, kullanıcı ve üyelik endpoint'lerini yöneten struct.
type MemberHandler struct {
	guildService services.GuildService
}

// NewMemberHandler, constructor.
func NewMemberHandler(guildService services.GuildService) *MemberHandler {
	return &MemberHandler{guildService: guildService}
}

// UpsertUser godoc
// PUT /api/users/{userId}
// Body: { "name": "alice", "kind": "user" }: webhook için "channel_id" zorunlu.
func (h *MemberHandler) UpsertUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathSnowflake(r, "userId")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	var req models.UpsertUserRequest
	if err := decodeBody(r, &req); err != nil {
		pkg.Error(w, err)
		return
	}

	user, err := h.guildService.UpsertUser(r.Context(), userID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, user)
}

// DeleteUser godoc
// DELETE /api/users/{userId}
func (h *MemberHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := pathSnowflake(r, "userId")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	if err := h.guildService.DeleteUser(r.Context(), userID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "user deleted"})
}

// Upsert godoc
// PUT /api/guilds/{guildId}/members/{userId}
// Body: { "nick": "bob", "roles": ["10"], "joined_at": "2021-01-01T00:00:00Z" }
func (h *MemberHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	guildID, err := pathSnowflake(r, "guildId")
	if err != nil {
		pkg.Error(w, err)
		return
	}
	userID, err := pathSnowflake(r, "userId")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	var req models.UpsertMemberRequest
	if err := decodeBody(r, &req); err != nil {
		pkg.Error(w, err)
		return
	}

	profile, err := h.guildService.UpsertMember(r.Context(), guildID, userID, &req)
	if err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, profile)
}

// Remove godoc
// DELETE /api/guilds/{guildId}/members/{userId}
func (h *MemberHandler) Remove(w http.ResponseWriter, r *http.Request) {
	guildID, err := pathSnowflake(r, "guildId")
	if err != nil {
		pkg.Error(w, err)
		return
	}
	userID, err := pathSnowflake(r, "userId")
	if err != nil {
		pkg.Error(w, err)
		return
	}

	if err := h.guildService.RemoveMember(r.Context(), guildID, userID); err != nil {
		pkg.Error(w, err)
		return
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"message": "member removed"})
}

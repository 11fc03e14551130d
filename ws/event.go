// Package ws, WebSocket bağlantı yönetimi ve gerçek zamanlı event dağıtımını sağlar.
//
// Mimari:
// - Hub: Tüm bağlantıları yöneten merkezi yapı (Observer pattern)
// - Client: Her WebSocket bağlantısını temsil eder
// - Event: Client-server arası iletilen mesaj formatı
//
// Event akışı:
// 1. Ingest API'ye guild/kanal/overwrite değişikliği gelir → Service → DB + registry
// 2. Service, Hub'ın BroadcastToAll metodunu çağırır
// 3. Registry invalidation hook'u permissions_invalidate event'ini kanala abone client'lara iletir
// 4. Her client'ın WritePump'ı event'i WebSocket'e yazar
package ws

import "github.com/HuyaneMatsu/hata-sub016/models"

// Event, WebSocket üzerinden iletilen bir mesajı temsil eder.
//
// Op (operation): Event türü: "overwrite_update", "heartbeat" vb.
// Data: Event'e özgü payload: overwrite, kanal, rol vb.
// Seq (sequence number): Her outbound event'e verilen artan sayı.
// Client eksik event tespit etmek için seq'i takip eder.
type Event struct {
	Op   string `json:"op"`
	Data any    `json:"d,omitempty"`
	Seq  int64  `json:"seq,omitempty"`
}

// ────────────────────────────────────────────
// Operation sabitleri
// ────────────────────────────────────────────

// Client → Server operasyonları
const (
	OpHeartbeat = "heartbeat" // Client her 30sn'de gönderir
	OpSubscribe = "subscribe" // Sadece belirli kanalların invalidation event'lerini almak için
)

// Server → Client operasyonları
const (
	OpReady        = "ready"
	OpHeartbeatAck = "heartbeat_ack"

	OpGuildUpdate = "guild_update"
	OpGuildDelete = "guild_delete"

	OpRoleUpdate = "role_update"
	OpRoleDelete = "role_delete"

	OpChannelUpdate = "channel_update"
	OpChannelDelete = "channel_delete"

	OpUserUpdate = "user_update"
	OpUserDelete = "user_delete"

	OpMemberUpdate = "member_update"
	OpMemberRemove = "member_remove"

	OpOverwriteUpdate = "overwrite_update"
	OpOverwriteDelete = "overwrite_delete"

	// Registry bir kanalın permission sonucunu etkileyen bir değişiklik gördü:
	// client elindeki hesaplanmış permission'ları atmalı.
	OpPermissionsInvalidate = "permissions_invalidate"
)

// ReadyData, bağlantı kurulduğunda client'a gönderilen ilk event'in payload'ı.
type ReadyData struct {
	ConnectionID string `json:"connection_id"`
	Subject      string `json:"subject"`
	Guilds       int    `json:"guilds"`
	Channels     int    `json:"channels"`
	Users        int    `json:"users"`
}

// SubscribeData, subscribe event'inin payload'ı (Client → Server).
// Boş liste aboneliği kaldırır: client tekrar tüm kanalları alır.
type SubscribeData struct {
	ChannelIDs []models.Snowflake `json:"channel_ids"`
}

// InvalidateData, permissions_invalidate event'inin payload'ı.
type InvalidateData struct {
	ChannelIDs []models.Snowflake `json:"channel_ids"`
}

// ─── Silme event'lerinin payload'ları ───

// GuildDeleteData, guild_delete payload'ı.
type GuildDeleteData struct {
	GuildID models.Snowflake `json:"guild_id"`
}

// RoleDeleteData, role_delete payload'ı.
type RoleDeleteData struct {
	GuildID models.Snowflake `json:"guild_id"`
	RoleID  models.Snowflake `json:"role_id"`
}

// ChannelDeleteData, channel_delete payload'ı.
type ChannelDeleteData struct {
	ChannelID models.Snowflake `json:"channel_id"`
}

// UserDeleteData, user_delete payload'ı.
type UserDeleteData struct {
	UserID models.Snowflake `json:"user_id"`
}

// MemberRemoveData, member_remove payload'ı.
type MemberRemoveData struct {
	GuildID models.Snowflake `json:"guild_id"`
	UserID  models.Snowflake `json:"user_id"`
}

// OverwriteDeleteData, overwrite_delete payload'ı.
type OverwriteDeleteData struct {
	ChannelID models.Snowflake `json:"channel_id"`
	TargetID  models.Snowflake `json:"target_id"`
}

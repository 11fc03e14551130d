package models

import (
	"database/sql/driver"
	"fmt"
	"math/bits"
	"strconv"
	"strings"
)

// Permission, Discord yetkilerini 64-bit bit flag olarak temsil eder.
//
// Her capability sabit bir bit pozisyonuna sahiptir. Bu pozisyonlar Discord'un
// protokolüyle birebir aynıdır ve ASLA yeniden numaralandırılmaz:
// yeni yetkiler yeni bit alır, deprecated isimler yerine geçen yetkinin bit'ini kullanır.
//
// Permission immutable bir value type'tır: Allow/Deny yeni değer döner:
//
//	p := PermissionNone.Allow(PermViewChannel | PermSendMessages)
//	p.Has(PermSendMessages)  // true
//	p = p.Deny(PermSendMessages)
type Permission uint64

const (
	PermCreateInstantInvite     Permission = 1 << 0
	PermKickUsers               Permission = 1 << 1
	PermBanUsers                Permission = 1 << 2
	PermAdministrator           Permission = 1 << 3
	PermManageChannels          Permission = 1 << 4
	PermManageGuild             Permission = 1 << 5
	PermAddReactions            Permission = 1 << 6
	PermViewAuditLogs           Permission = 1 << 7
	PermPrioritySpeaker         Permission = 1 << 8
	PermStream                  Permission = 1 << 9
	PermViewChannel             Permission = 1 << 10
	PermSendMessages            Permission = 1 << 11
	PermSendTTSMessages         Permission = 1 << 12
	PermManageMessages          Permission = 1 << 13
	PermEmbedLinks              Permission = 1 << 14
	PermAttachFiles             Permission = 1 << 15
	PermReadMessageHistory      Permission = 1 << 16
	PermMentionEveryone         Permission = 1 << 17
	PermUseExternalEmojis       Permission = 1 << 18
	PermViewGuildInsights       Permission = 1 << 19
	PermConnect                 Permission = 1 << 20
	PermSpeak                   Permission = 1 << 21
	PermMuteUsers               Permission = 1 << 22
	PermDeafenUsers             Permission = 1 << 23
	PermMoveUsers               Permission = 1 << 24
	PermUseVoiceActivation      Permission = 1 << 25
	PermChangeNickname          Permission = 1 << 26
	PermManageNicknames         Permission = 1 << 27
	PermManageRoles             Permission = 1 << 28
	PermManageWebhooks          Permission = 1 << 29
	PermManageEmojisAndStickers Permission = 1 << 30
	PermUseApplicationCommands  Permission = 1 << 31
	PermRequestToSpeak          Permission = 1 << 32
	PermManageEvents            Permission = 1 << 33
	PermManageThreads           Permission = 1 << 34
	PermCreatePublicThreads     Permission = 1 << 35
	PermCreatePrivateThreads    Permission = 1 << 36
	PermUseExternalStickers     Permission = 1 << 37
	PermSendMessagesInThreads   Permission = 1 << 38
	PermUseEmbeddedActivities   Permission = 1 << 39
	PermModerateUsers           Permission = 1 << 40
)

// permissionBit, bir capability'nin canonical adı ve bit'i.
type permissionBit struct {
	name string
	bit  Permission
}

// permissionBits, tüm capability'lerin bit sırasına göre listesi.
// Names() ve String() bu sırayı kullanır, map iteration sırası rastgele olduğu için slice.
var permissionBits = []permissionBit{
	{"create_instant_invite", PermCreateInstantInvite},
	{"kick_users", PermKickUsers},
	{"ban_users", PermBanUsers},
	{"administrator", PermAdministrator},
	{"manage_channels", PermManageChannels},
	{"manage_guild", PermManageGuild},
	{"add_reactions", PermAddReactions},
	{"view_audit_logs", PermViewAuditLogs},
	{"priority_speaker", PermPrioritySpeaker},
	{"stream", PermStream},
	{"view_channel", PermViewChannel},
	{"send_messages", PermSendMessages},
	{"send_tts_messages", PermSendTTSMessages},
	{"manage_messages", PermManageMessages},
	{"embed_links", PermEmbedLinks},
	{"attach_files", PermAttachFiles},
	{"read_message_history", PermReadMessageHistory},
	{"mention_everyone", PermMentionEveryone},
	{"use_external_emojis", PermUseExternalEmojis},
	{"view_guild_insights", PermViewGuildInsights},
	{"connect", PermConnect},
	{"speak", PermSpeak},
	{"mute_users", PermMuteUsers},
	{"deafen_users", PermDeafenUsers},
	{"move_users", PermMoveUsers},
	{"use_voice_activation", PermUseVoiceActivation},
	{"change_nickname", PermChangeNickname},
	{"manage_nicknames", PermManageNicknames},
	{"manage_roles", PermManageRoles},
	{"manage_webhooks", PermManageWebhooks},
	{"manage_emojis_and_stickers", PermManageEmojisAndStickers},
	{"use_application_commands", PermUseApplicationCommands},
	{"request_to_speak", PermRequestToSpeak},
	{"manage_events", PermManageEvents},
	{"manage_threads", PermManageThreads},
	{"create_public_threads", PermCreatePublicThreads},
	{"create_private_threads", PermCreatePrivateThreads},
	{"use_external_stickers", PermUseExternalStickers},
	{"send_messages_in_threads", PermSendMessagesInThreads},
	{"use_embedded_activities", PermUseEmbeddedActivities},
	{"moderate_users", PermModerateUsers},
}

// deprecatedPermissionAliases, eski isim → yerine geçen canonical isim.
//
// Bu alias'lar kalıcıdır: eski payload'lar ve eski kod bu isimleri kullanmaya devam eder.
// Lookup sırasında deprecated=true döner, çağıran taraf uyarı log'lar.
var deprecatedPermissionAliases = map[string]string{
	"manage_emojis":       "manage_emojis_and_stickers",
	"use_public_threads":  "create_public_threads",
	"use_private_threads": "create_private_threads",
}

// permissionByName, canonical isim → bit lookup tablosu (init'te doldurulur).
var permissionByName = func() map[string]Permission {
	m := make(map[string]Permission, len(permissionBits))
	for _, pb := range permissionBits {
		m[pb.name] = pb.bit
	}
	return m
}()

// ─── Named mask'ler ───

const (
	// PermissionNone, hiçbir yetki yok. Fail-closed sonuçların tamamı bu değerdir.
	PermissionNone Permission = 0

	// PermissionAll, tanımlı tüm capability bit'lerinin birleşimi (bit 0..40).
	PermissionAll Permission = 1<<41 - 1

	// PermissionTextAll, send_messages'a bağlı text capability'leri.
	// send_messages yoksa bunların hiçbiri anlamlı değildir.
	PermissionTextAll = PermSendMessages | PermSendTTSMessages | PermEmbedLinks |
		PermAttachFiles | PermMentionEveryone

	// PermissionVoiceAll, sadece ses kanallarında anlamlı capability'ler.
	PermissionVoiceAll = PermPrioritySpeaker | PermStream | PermConnect | PermSpeak |
		PermMuteUsers | PermDeafenUsers | PermMoveUsers | PermUseVoiceActivation |
		PermRequestToSpeak | PermUseEmbeddedActivities

	// PermissionThreadAll, thread oluşturma ve thread içi capability'ler.
	PermissionThreadAll = PermManageThreads | PermCreatePublicThreads |
		PermCreatePrivateThreads | PermSendMessagesInThreads
)

// Deny mask'leri: "bu kanal tipinde uygulanabilir olmayan" bit'leri temizlemek için.
// Hepsi PermissionAll &^ X formundadır: PermissionAll dışında hiçbir bit set olamaz.
const (
	PermissionTextDeny             = PermissionAll &^ PermissionTextAll
	PermissionVoiceDeny            = PermissionAll &^ PermissionVoiceAll
	PermissionThreadAndVoiceDeny   = PermissionAll &^ (PermissionThreadAll | PermissionVoiceAll)
	PermissionTextAndVoiceDeny     = PermissionAll &^ (PermissionTextAll | PermissionVoiceAll)
	PermissionDenySendMessagesOnly = PermissionAll &^ PermSendMessages
)

// Private (DM) ve group kanalları için sabit yetkiler.
// Bu kanallarda rol/overwrite yoktur, katılımcı olmak yeterlidir.
const (
	PermissionPrivate = PermAddReactions | PermStream | PermViewChannel | PermSendMessages |
		PermSendTTSMessages | PermEmbedLinks | PermAttachFiles | PermReadMessageHistory |
		PermMentionEveryone | PermUseExternalEmojis | PermConnect | PermSpeak |
		PermUseVoiceActivation | PermUseApplicationCommands | PermUseExternalStickers |
		PermUseEmbeddedActivities

	PermissionGroup      = PermissionPrivate | PermCreateInstantInvite
	PermissionGroupOwner = PermissionGroup | PermKickUsers
)

// Has, verilen bit'lerin TAMAMININ set olup olmadığını kontrol eder.
//
// Administrator burada kısa devre YAPMAZ: o kural resolver'a aittir,
// değer tipine değil.
func (p Permission) Has(perm Permission) bool {
	return p&perm == perm
}

// Allow, verilen bit'ler eklenmiş yeni bir Permission döner.
func (p Permission) Allow(perm Permission) Permission {
	return p | perm
}

// Deny, verilen bit'ler temizlenmiş yeni bir Permission döner.
func (p Permission) Deny(perm Permission) Permission {
	return p &^ perm
}

// CanViewChannel, CanSendMessages ... resolver'ın en sık kullandığı accessor'lar.
func (p Permission) CanViewChannel() bool    { return p.Has(PermViewChannel) }
func (p Permission) CanSendMessages() bool   { return p.Has(PermSendMessages) }
func (p Permission) CanManageMessages() bool { return p.Has(PermManageMessages) }
func (p Permission) CanConnect() bool        { return p.Has(PermConnect) }
func (p Permission) CanAdministrator() bool  { return p.Has(PermAdministrator) }

// Names, set olan capability'lerin canonical isimlerini bit sırasıyla döner.
func (p Permission) Names() []string {
	names := make([]string, 0, bits.OnesCount64(uint64(p&PermissionAll)))
	for _, pb := range permissionBits {
		if p&pb.bit != 0 {
			names = append(names, pb.name)
		}
	}
	return names
}

// String, debug ve log çıktısı için okunabilir format.
func (p Permission) String() string {
	if p == PermissionNone {
		return "Permission(none)"
	}
	return "Permission(" + strings.Join(p.Names(), "|") + ")"
}

// PermissionBitByName, isimden bit'e lookup yapar.
//
// Deprecated alias'lar (manage_emojis, use_public_threads, use_private_threads)
// yerine geçen yetkinin bit'ini döner ve deprecated=true işaretler.
func PermissionBitByName(name string) (bit Permission, deprecated bool, ok bool) {
	if canonical, isAlias := deprecatedPermissionAliases[name]; isAlias {
		return permissionByName[canonical], true, true
	}
	bit, ok = permissionByName[name]
	return bit, false, ok
}

// DeprecatedPermissionAliases, alias → canonical isim tablosunun kopyasını döner.
func DeprecatedPermissionAliases() map[string]string {
	out := make(map[string]string, len(deprecatedPermissionAliases))
	for k, v := range deprecatedPermissionAliases {
		out[k] = v
	}
	return out
}

// UpdateByKeys, isim → bool map'ine göre yeni bir Permission döner.
// true → bit set, false → bit temizle. Bilinmeyen isim hata döner.
// Deprecated alias ve canonical isim birlikte verilirse canonical olan kazanır.
//
//	p, err := PermissionNone.UpdateByKeys(map[string]bool{"view_channel": true})
func (p Permission) UpdateByKeys(keys map[string]bool) (Permission, error) {
	var set, clear, canonicalSet, canonicalClear Permission
	for name, value := range keys {
		bit, deprecated, ok := PermissionBitByName(name)
		if !ok {
			return p, fmt.Errorf("unknown permission name %q", name)
		}
		switch {
		case deprecated && value:
			set |= bit
		case deprecated:
			clear |= bit
		case value:
			canonicalSet |= bit
		default:
			canonicalClear |= bit
		}
	}

	result := (p &^ clear) | set
	return (result &^ canonicalClear) | canonicalSet, nil
}

// MarshalJSON, Discord formatında string-encoded integer yazar ("1024").
func (p Permission) MarshalJSON() ([]byte, error) {
	return []byte(strconv.Quote(strconv.FormatUint(uint64(p), 10))), nil
}

// UnmarshalJSON, "1024" veya 1024 formatını kabul eder.
func (p *Permission) UnmarshalJSON(data []byte) error {
	v, err := unmarshalUint64(data)
	if err != nil {
		return fmt.Errorf("invalid permission value: %w", err)
	}
	*p = Permission(v)
	return nil
}

// Value, SQLite INTEGER olarak saklar.
func (p Permission) Value() (driver.Value, error) {
	return int64(p), nil
}

// Scan, SQLite'tan okunan değeri Permission'a çevirir.
func (p *Permission) Scan(src any) error {
	v, err := scanUint64(src)
	if err != nil {
		return fmt.Errorf("failed to scan permission: %w", err)
	}
	*p = Permission(v)
	return nil
}

// Package resolver, bir principal'in bir kanaldaki efektif yetkisini hesaplar.
//
// Tüm kanal tipleri için TEK bir algoritma vardır; tipler arasındaki farklar
// models.ChannelKindInfo tablosundaki mask ve flag'lerden gelir.
//
// Hesaplama sırası (guild kanalları):
//  1. Guild bilinmiyorsa → PermissionNone
//  2. Guild owner → PermissionAll (overwrite'lar bypass edilir, kanal tipi mask'i uygulanır)
//  3. Webhook → sadece @everyone base + @everyone overwrite'ı (webhook'un kanalı guild'deyse)
//  4. GuildProfile yoksa → PermissionNone
//  5. Base = @everyone rolü | üyenin tüm rolleri (düz OR, pozisyon önemsiz)
//  6. @everyone overwrite'ı
//  7. Rol overwrite'ları: tüm allow'lar ve deny'lar toplanıp BİRLİKTE uygulanır
//  8. Kullanıcı overwrite'ı (en son, en yüksek öncelik)
//  9. Administrator → PermissionAll
//
// Ardından kanal tipi clipping'i uygulanır (bkz. clip).
//
// Resolution hata dönmez: bağlam kurulamayan her dal PermissionNone'a düşer.
// I/O yapmaz, bloklamaz; registry.View callback'i içinden çağrılmalıdır.
package resolver

import (
	"log"

	"github.com/HuyaneMatsu/hata-sub016/models"
	"github.com/HuyaneMatsu/hata-sub016/registry"
)

// Resolve, user'ın channel'daki efektif yetkisini hesaplar.
func Resolve(v registry.View, user *models.User, channel *models.Channel) models.Permission {
	if user == nil || channel == nil {
		return models.PermissionNone
	}

	info, ok := channel.Kind.Info()
	if !ok {
		return models.PermissionNone
	}

	if info.Private {
		return resolvePrivate(user, channel)
	}

	base, ok := baseChannel(v, channel, info)
	if !ok {
		return models.PermissionNone
	}

	guild, ok := v.Guild(base.GuildID)
	if !ok {
		return models.PermissionNone
	}

	return clip(info, memberPermissions(guild, base, user))
}

// ResolveByID, ID'lerden lookup yaparak Resolve'u çağırır.
// Kullanıcı veya kanal bilinmiyorsa PermissionNone.
func ResolveByID(v registry.View, userID, channelID models.Snowflake) models.Permission {
	user, ok := v.User(userID)
	if !ok {
		return models.PermissionNone
	}
	channel, ok := v.Channel(channelID)
	if !ok {
		return models.PermissionNone
	}
	return Resolve(v, user, channel)
}

// ResolveRoles, tam olarak verilen rolleri taşıyan hayali bir principal'in yetkisini hesaplar.
//
// Owner kontrolü ve kullanıcı overwrite'ı yoktur (gerçek bir kullanıcı yok).
// Başka guild'e ait veya bilinmeyen roller sessizce yok sayılır.
func ResolveRoles(v registry.View, channel *models.Channel, roleIDs []models.Snowflake) models.Permission {
	if channel == nil {
		return models.PermissionNone
	}

	info, ok := channel.Kind.Info()
	if !ok || info.Private {
		return models.PermissionNone
	}

	base, ok := baseChannel(v, channel, info)
	if !ok {
		return models.PermissionNone
	}

	guild, ok := v.Guild(base.GuildID)
	if !ok {
		return models.PermissionNone
	}

	held := make([]models.Snowflake, 0, len(roleIDs))
	for _, id := range roleIDs {
		if role, ok := guild.Roles[id]; ok && role.GuildID == guild.ID {
			held = append(held, id)
		}
	}

	return clip(info, layered(guild, base, held, 0))
}

// baseChannel, overwrite'ların okunacağı kanalı döner: thread'ler için parent, diğerleri için kendisi.
func baseChannel(v registry.View, channel *models.Channel, info models.ChannelKindInfo) (*models.Channel, bool) {
	if !info.Thread {
		return channel, true
	}

	parent, ok := v.Channel(channel.ParentID)
	if !ok {
		return nil, false
	}
	// Parent bir guild kanalı olmalı: thread'in parent'ı thread veya DM olamaz
	if parent.Kind.IsThread() || parent.Kind.IsPrivate() {
		return nil, false
	}
	return parent, true
}

// memberPermissions, owner/webhook/üye ayrımını yapıp overwrite katmanlarını uygular.
func memberPermissions(guild *models.Guild, channel *models.Channel, user *models.User) models.Permission {
	if user.ID == guild.OwnerID {
		return models.PermissionAll
	}

	if !user.IsMemberCapable() {
		if !guild.HasChannel(user.ChannelID) {
			return models.PermissionNone
		}
		return layered(guild, channel, nil, 0)
	}

	profile, ok := user.GuildProfiles[guild.ID]
	if !ok {
		return models.PermissionNone
	}

	return layered(guild, channel, profile.RoleIDs, user.ID)
}

// layered, base + overwrite katmanlarını uygular.
// userID 0 ise kullanıcı overwrite'ı atlanır.
func layered(guild *models.Guild, channel *models.Channel, roleIDs []models.Snowflake, userID models.Snowflake) models.Permission {
	var permissions models.Permission
	if everyone := guild.EveryoneRole(); everyone != nil {
		permissions = everyone.Permissions
	}

	for _, id := range roleIDs {
		if role, ok := guild.Roles[id]; ok {
			permissions |= role.Permissions
		}
	}

	if o, ok := channel.Overwrites[guild.ID]; ok {
		checkOverwrite(channel, o)
		permissions = o.Apply(permissions)
	}

	var allow, deny models.Permission
	for _, id := range roleIDs {
		if id == guild.ID {
			continue
		}
		o, ok := channel.Overwrites[id]
		if !ok || o.TargetType != models.OverwriteTargetRole {
			continue
		}
		checkOverwrite(channel, o)
		allow |= o.Allow
		deny |= o.Deny
	}
	permissions = (permissions &^ deny) | allow

	if userID != 0 {
		if o, ok := channel.Overwrites[userID]; ok && o.TargetType == models.OverwriteTargetUser {
			checkOverwrite(channel, o)
			permissions = o.Apply(permissions)
		}
	}

	if permissions.CanAdministrator() {
		return models.PermissionAll
	}
	return permissions
}

// clip, kanal tipinin tablo kaydına göre son sonucu kırpar.
func clip(info models.ChannelKindInfo, p models.Permission) models.Permission {
	if !p.CanViewChannel() {
		return models.PermissionNone
	}

	p &= info.Mask

	if info.Thread {
		switch {
		case !p.CanManageMessages():
			return p & models.PermissionTextDeny
		case p.CanSendMessages():
			return p & models.PermissionDenySendMessagesOnly
		default:
			return p & models.PermissionTextDeny
		}
	}

	if info.ConnectClipping && !p.CanConnect() {
		p &= models.PermissionVoiceDeny
	}

	if info.AnnouncementClipping && !p.CanManageMessages() {
		return p & models.PermissionTextDeny
	}

	if info.SendClipping && !p.CanSendMessages() {
		p &= models.PermissionTextDeny
	}

	return p
}

// resolvePrivate, DM ve group kanalları: katılımcılar sabit yetki alır, diğerleri hiçbir şey.
func resolvePrivate(user *models.User, channel *models.Channel) models.Permission {
	isGroup := channel.Kind == models.ChannelKindGroup
	if isGroup && channel.OwnerID != 0 && user.ID == channel.OwnerID {
		return models.PermissionGroupOwner
	}

	if !channel.HasRecipient(user.ID) {
		return models.PermissionNone
	}
	if isGroup {
		return models.PermissionGroup
	}
	return models.PermissionPrivate
}

// checkOverwrite, allow/deny overlap'i log'lar. Deny önce, allow sonra uygulandığı için
// çakışan bit'lerde allow kazanır.
func checkOverwrite(channel *models.Channel, o models.PermissionOverwrite) {
	if o.Allow&o.Deny != 0 {
		log.Printf("[resolver] overwrite %s on channel %s has overlapping allow/deny bits: %s",
			o.TargetID, channel.ID, o.Allow&o.Deny)
	}
}

// Package registry, guild/kanal/kullanıcı kayıtlarının in-memory arena'sıdır.
//
// Global map'ler yerine tek bir Registry instance'ı main'de oluşturulur ve
// ihtiyaç duyan service'lere explicit olarak verilir.
//
// Sahiplik kuralları:
//   - Registry'ye verilen değerler kopyalanır; çağıranın sonradan yaptığı değişiklik registry'yi etkilemez.
//   - View içinde okunan pointer'lar callback dışına TAŞINMAMALIDIR: lock bırakıldıktan sonra
//     başka bir goroutine aynı kaydı değiştirebilir.
//
// Invalidation:
// Bir kanalın permission sonucunu değiştirebilecek her mutasyon (overwrite, kanal silme,
// rol/üyelik/owner değişikliği) OnInvalidate ile kayıtlı hook'ları etkilenen kanal ID'leriyle çağırır.
// Hook'lar lock DIŞINDA çağrılır, böylece hook içinden registry okunabilir.
package registry

import (
	"fmt"
	"sync"

	"github.com/HuyaneMatsu/hata-sub016/models"
	"github.com/HuyaneMatsu/hata-sub016/pkg"
)

// InvalidateFunc, etkilenen kanal ID'leriyle çağrılan hook.
type InvalidateFunc func(channelIDs []models.Snowflake)

// Registry, tüm cache'lenmiş entity'lerin sahibidir.
//
// sync.RWMutex: permission resolution okuma ağırlıklıdır: birden fazla resolver
// aynı anda RLock alabilir, mutasyonlar Lock ile serileşir.
type Registry struct {
	mu       sync.RWMutex
	guilds   map[models.Snowflake]*models.Guild
	channels map[models.Snowflake]*models.Channel
	users    map[models.Snowflake]*models.User

	hooksMu sync.RWMutex
	hooks   []InvalidateFunc
}

// New, boş bir Registry oluşturur.
func New() *Registry {
	return &Registry{
		guilds:   make(map[models.Snowflake]*models.Guild),
		channels: make(map[models.Snowflake]*models.Channel),
		users:    make(map[models.Snowflake]*models.User),
	}
}

// OnInvalidate, invalidation hook'u kaydeder.
func (r *Registry) OnInvalidate(fn InvalidateFunc) {
	r.hooksMu.Lock()
	defer r.hooksMu.Unlock()
	r.hooks = append(r.hooks, fn)
}

// invalidate, hook'ları çağırır. Lock tutulurken ÇAĞRILMAMALIDIR.
func (r *Registry) invalidate(channelIDs []models.Snowflake) {
	if len(channelIDs) == 0 {
		return
	}

	r.hooksMu.RLock()
	hooks := make([]InvalidateFunc, len(r.hooks))
	copy(hooks, r.hooks)
	r.hooksMu.RUnlock()

	for _, fn := range hooks {
		fn(channelIDs)
	}
}

// ─── Guild ───

// PutGuild, guild'i ekler veya ad/owner bilgisini günceller.
// Mevcut roller ve kanal ID'leri korunur. Owner değişirse guild'in tüm kanalları invalidate edilir.
func (r *Registry) PutGuild(guild models.Guild) {
	r.mu.Lock()
	var affected []models.Snowflake

	existing, ok := r.guilds[guild.ID]
	if !ok {
		stored := &models.Guild{
			ID:         guild.ID,
			Name:       guild.Name,
			OwnerID:    guild.OwnerID,
			Roles:      make(map[models.Snowflake]*models.Role, len(guild.Roles)),
			ChannelIDs: make(map[models.Snowflake]struct{}),
		}
		for id, role := range guild.Roles {
			roleCopy := *role
			stored.Roles[id] = &roleCopy
		}
		r.guilds[guild.ID] = stored
	} else {
		if existing.OwnerID != guild.OwnerID {
			affected = guildChannelIDs(existing)
		}
		existing.Name = guild.Name
		existing.OwnerID = guild.OwnerID
	}
	r.mu.Unlock()

	r.invalidate(affected)
}

// DeleteGuild, guild'i, kanallarını ve kullanıcıların bu guild'deki profillerini siler.
func (r *Registry) DeleteGuild(guildID models.Snowflake) error {
	r.mu.Lock()
	guild, ok := r.guilds[guildID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: guild %s", pkg.ErrNotFound, guildID)
	}

	affected := guildChannelIDs(guild)
	for _, id := range affected {
		delete(r.channels, id)
	}
	for _, user := range r.users {
		delete(user.GuildProfiles, guildID)
	}
	delete(r.guilds, guildID)
	r.mu.Unlock()

	r.invalidate(affected)
	return nil
}

// ─── Role ───

// PutRole, rolü guild'e ekler veya günceller. Guild'in tüm kanalları invalidate edilir.
func (r *Registry) PutRole(role models.Role) error {
	r.mu.Lock()
	guild, ok := r.guilds[role.GuildID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: guild %s", pkg.ErrNotFound, role.GuildID)
	}

	roleCopy := role
	guild.Roles[role.ID] = &roleCopy
	affected := guildChannelIDs(guild)
	r.mu.Unlock()

	r.invalidate(affected)
	return nil
}

// DeleteRole, rolü siler; rolün overwrite'larını ve üye profillerindeki referanslarını temizler.
// @everyone rolü silinemez.
func (r *Registry) DeleteRole(guildID, roleID models.Snowflake) error {
	if guildID == roleID {
		return fmt.Errorf("%w: the @everyone role cannot be deleted", pkg.ErrBadRequest)
	}

	r.mu.Lock()
	guild, ok := r.guilds[guildID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: guild %s", pkg.ErrNotFound, guildID)
	}
	if _, ok := guild.Roles[roleID]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: role %s", pkg.ErrNotFound, roleID)
	}

	delete(guild.Roles, roleID)
	affected := guildChannelIDs(guild)
	for _, id := range affected {
		if ch, ok := r.channels[id]; ok {
			if o, ok := ch.Overwrites[roleID]; ok && o.TargetType == models.OverwriteTargetRole {
				delete(ch.Overwrites, roleID)
			}
		}
	}
	for _, user := range r.users {
		if profile, ok := user.GuildProfiles[guildID]; ok {
			profile.RoleIDs = removeID(profile.RoleIDs, roleID)
		}
	}
	r.mu.Unlock()

	r.invalidate(affected)
	return nil
}

// ─── Channel ───

// PutChannel, kanalı ekler veya günceller.
// Guild kanalları için guild kayıtlı olmalıdır. Kanal ve child thread'leri invalidate edilir.
func (r *Registry) PutChannel(channel models.Channel) error {
	stored := copyChannel(&channel)

	r.mu.Lock()
	var guild *models.Guild
	if !channel.Kind.IsPrivate() {
		var ok bool
		guild, ok = r.guilds[channel.GuildID]
		if !ok {
			r.mu.Unlock()
			return fmt.Errorf("%w: guild %s", pkg.ErrNotFound, channel.GuildID)
		}
	}

	// Kanal başka bir guild'den taşınıyor veya private'a dönüyorsa eski guild'den çıkar.
	// Private kanalların GuildID'si 0 olduğundan ikisi de aynı kontrole düşer.
	if prev, ok := r.channels[channel.ID]; ok && prev.GuildID != channel.GuildID {
		if prevGuild, ok := r.guilds[prev.GuildID]; ok {
			delete(prevGuild.ChannelIDs, channel.ID)
		}
	}
	if guild != nil {
		guild.ChannelIDs[channel.ID] = struct{}{}
	}

	r.channels[channel.ID] = stored
	affected := r.withChildren(channel.ID)
	r.mu.Unlock()

	r.invalidate(affected)
	return nil
}

// DeleteChannel, kanalı ve child thread'lerini siler.
func (r *Registry) DeleteChannel(channelID models.Snowflake) error {
	r.mu.Lock()
	channel, ok := r.channels[channelID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: channel %s", pkg.ErrNotFound, channelID)
	}

	affected := r.withChildren(channelID)
	guild := r.guilds[channel.GuildID]
	for _, id := range affected {
		delete(r.channels, id)
		if guild != nil {
			delete(guild.ChannelIDs, id)
		}
	}
	r.mu.Unlock()

	r.invalidate(affected)
	return nil
}

// SetOverwrite, kanala overwrite ekler veya mevcut olanı değiştirir.
func (r *Registry) SetOverwrite(channelID models.Snowflake, overwrite models.PermissionOverwrite) error {
	r.mu.Lock()
	channel, ok := r.channels[channelID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: channel %s", pkg.ErrNotFound, channelID)
	}
	if channel.Kind.IsPrivate() {
		r.mu.Unlock()
		return fmt.Errorf("%w: private channels cannot have overwrites", pkg.ErrBadRequest)
	}

	if channel.Overwrites == nil {
		channel.Overwrites = make(map[models.Snowflake]models.PermissionOverwrite)
	}
	channel.Overwrites[overwrite.TargetID] = overwrite
	affected := r.withChildren(channelID)
	r.mu.Unlock()

	r.invalidate(affected)
	return nil
}

// DeleteOverwrite, kanaldan overwrite'ı kaldırır.
func (r *Registry) DeleteOverwrite(channelID, targetID models.Snowflake) error {
	r.mu.Lock()
	channel, ok := r.channels[channelID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: channel %s", pkg.ErrNotFound, channelID)
	}
	if _, ok := channel.Overwrites[targetID]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: overwrite %s on channel %s", pkg.ErrNotFound, targetID, channelID)
	}

	delete(channel.Overwrites, targetID)
	affected := r.withChildren(channelID)
	r.mu.Unlock()

	r.invalidate(affected)
	return nil
}

// ─── User ───

// PutUser, kullanıcıyı ekler veya ad/tür bilgisini günceller. Mevcut profiller korunur.
// Webhook'a dönüşen kullanıcının profilleri silinir (webhook üyelik taşıyamaz).
func (r *Registry) PutUser(user models.User) {
	r.mu.Lock()
	var affected []models.Snowflake

	existing, ok := r.users[user.ID]
	if !ok {
		existing = &models.User{ID: user.ID, GuildProfiles: make(map[models.Snowflake]*models.GuildProfile)}
		r.users[user.ID] = existing
	}
	existing.Name = user.Name
	existing.Kind = user.Kind
	existing.ChannelID = user.ChannelID

	for guildID, profile := range user.GuildProfiles {
		profileCopy := copyProfile(profile)
		existing.GuildProfiles[guildID] = profileCopy
	}

	if !existing.IsMemberCapable() && len(existing.GuildProfiles) > 0 {
		for guildID := range existing.GuildProfiles {
			if guild, ok := r.guilds[guildID]; ok {
				affected = append(affected, guildChannelIDs(guild)...)
			}
		}
		existing.GuildProfiles = make(map[models.Snowflake]*models.GuildProfile)
	}
	r.mu.Unlock()

	r.invalidate(affected)
}

// DeleteUser, kullanıcıyı registry'den siler.
func (r *Registry) DeleteUser(userID models.Snowflake) error {
	r.mu.Lock()
	user, ok := r.users[userID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: user %s", pkg.ErrNotFound, userID)
	}

	var affected []models.Snowflake
	for guildID := range user.GuildProfiles {
		if guild, ok := r.guilds[guildID]; ok {
			affected = append(affected, guildChannelIDs(guild)...)
		}
	}
	delete(r.users, userID)
	r.mu.Unlock()

	r.invalidate(affected)
	return nil
}

// PutGuildProfile, kullanıcının guild üyeliğini ekler veya günceller.
// Guild ve kullanıcı kayıtlı olmalı, kullanıcı üyelik taşıyabilmelidir.
func (r *Registry) PutGuildProfile(profile models.GuildProfile) error {
	r.mu.Lock()
	guild, ok := r.guilds[profile.GuildID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: guild %s", pkg.ErrNotFound, profile.GuildID)
	}
	user, ok := r.users[profile.UserID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: user %s", pkg.ErrNotFound, profile.UserID)
	}
	if !user.IsMemberCapable() {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s principals cannot be guild members", pkg.ErrBadRequest, user.Kind)
	}

	user.GuildProfiles[profile.GuildID] = copyProfile(&profile)
	affected := guildChannelIDs(guild)
	r.mu.Unlock()

	r.invalidate(affected)
	return nil
}

// DeleteGuildProfile, kullanıcının guild üyeliğini siler.
func (r *Registry) DeleteGuildProfile(guildID, userID models.Snowflake) error {
	r.mu.Lock()
	user, ok := r.users[userID]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: user %s", pkg.ErrNotFound, userID)
	}
	if _, ok := user.GuildProfiles[guildID]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: user %s is not a member of guild %s", pkg.ErrNotFound, userID, guildID)
	}

	delete(user.GuildProfiles, guildID)
	var affected []models.Snowflake
	if guild, ok := r.guilds[guildID]; ok {
		affected = guildChannelIDs(guild)
	}
	r.mu.Unlock()

	r.invalidate(affected)
	return nil
}

// Stats, registry'deki kayıt sayılarını döner (health endpoint için).
func (r *Registry) Stats() Stats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return Stats{
		Guilds:   len(r.guilds),
		Channels: len(r.channels),
		Users:    len(r.users),
	}
}

// Stats, registry boyut bilgisi.
type Stats struct {
	Guilds   int `json:"guilds"`
	Channels int `json:"channels"`
	Users    int `json:"users"`
}

// ─── Yardımcı fonksiyonlar (lock tutulurken çağrılır) ───

// withChildren, kanal ID'si + parent'ı bu kanal olan thread'lerin ID'leri.
func (r *Registry) withChildren(channelID models.Snowflake) []models.Snowflake {
	ids := []models.Snowflake{channelID}
	for id, ch := range r.channels {
		if ch.ParentID == channelID && ch.Kind.IsThread() {
			ids = append(ids, id)
		}
	}
	return ids
}

func guildChannelIDs(guild *models.Guild) []models.Snowflake {
	ids := make([]models.Snowflake, 0, len(guild.ChannelIDs))
	for id := range guild.ChannelIDs {
		ids = append(ids, id)
	}
	return ids
}

func copyChannel(ch *models.Channel) *models.Channel {
	out := *ch
	out.Overwrites = make(map[models.Snowflake]models.PermissionOverwrite, len(ch.Overwrites))
	for id, o := range ch.Overwrites {
		out.Overwrites[id] = o
	}
	if ch.Recipients != nil {
		out.Recipients = append([]models.Snowflake(nil), ch.Recipients...)
	}
	return &out
}

func copyProfile(p *models.GuildProfile) *models.GuildProfile {
	out := *p
	out.RoleIDs = append([]models.Snowflake(nil), p.RoleIDs...)
	if p.Nick != nil {
		nick := *p.Nick
		out.Nick = &nick
	}
	return &out
}

func removeID(ids []models.Snowflake, target models.Snowflake) []models.Snowflake {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

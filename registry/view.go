package registry

import "github.com/HuyaneMatsu/hata-sub016/models"

// View, registry'nin read-only görünümüdür. Sadece View callback'i içinde geçerlidir.
//
// Resolver bu interface'i kullanır: arena'nın kendisini değil, bir lookup yüzeyini bilir.
// Testlerde map tabanlı sahte bir View ile beslenebilir.
type View interface {
	Guild(id models.Snowflake) (*models.Guild, bool)
	Channel(id models.Snowflake) (*models.Channel, bool)
	User(id models.Snowflake) (*models.User, bool)
}

// state, Registry'nin lock altındaki map'lerini View olarak sunar.
type state struct {
	r *Registry
}

func (s state) Guild(id models.Snowflake) (*models.Guild, bool) {
	g, ok := s.r.guilds[id]
	return g, ok
}

func (s state) Channel(id models.Snowflake) (*models.Channel, bool) {
	ch, ok := s.r.channels[id]
	return ch, ok
}

func (s state) User(id models.Snowflake) (*models.User, bool) {
	u, ok := s.r.users[id]
	return u, ok
}

// View, fn'i read lock altında çağırır. fn içinde mutasyon metodu ÇAĞRILMAMALIDIR (deadlock).
func (r *Registry) View(fn func(v View)) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fn(state{r: r})
}

// ─── Snapshot'lar (API response'ları için, lock dışına güvenle taşınabilir kopyalar) ───

// GuildDetail, guild'in rolleri ve kanal ID'leriyle birlikte kopyasını döner.
func (r *Registry) GuildDetail(guildID models.Snowflake) (*models.GuildDetail, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.guilds[guildID]
	if !ok {
		return nil, false
	}

	return &models.GuildDetail{
		Guild:      models.Guild{ID: g.ID, Name: g.Name, OwnerID: g.OwnerID},
		Roles:      g.RoleList(),
		ChannelIDs: guildChannelIDs(g),
	}, true
}

// ChannelSnapshot, kanalın kopyasını döner.
func (r *Registry) ChannelSnapshot(channelID models.Snowflake) (*models.Channel, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ch, ok := r.channels[channelID]
	if !ok {
		return nil, false
	}
	return copyChannel(ch), true
}

// UserSnapshot, kullanıcının profilleriyle birlikte kopyasını döner.
func (r *Registry) UserSnapshot(userID models.Snowflake) (*models.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, false
	}

	out := *u
	out.GuildProfiles = make(map[models.Snowflake]*models.GuildProfile, len(u.GuildProfiles))
	for id, p := range u.GuildProfiles {
		out.GuildProfiles[id] = copyProfile(p)
	}
	return &out, true
}

// RoleGuildID, rolün kayıtlı olduğu guild'i döner.
func (r *Registry) RoleGuildID(roleID models.Snowflake) (models.Snowflake, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for id, g := range r.guilds {
		if _, ok := g.Roles[roleID]; ok {
			return id, true
		}
	}
	return 0, false
}

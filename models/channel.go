package models

import (
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"
)

// ChannelKind, kanalın türünü temsil eder.
// Değerler Discord'un channel type integer'larıyla aynıdır.
type ChannelKind int

const (
	ChannelKindText               ChannelKind = 0
	ChannelKindPrivate            ChannelKind = 1
	ChannelKindVoice              ChannelKind = 2
	ChannelKindGroup              ChannelKind = 3
	ChannelKindCategory           ChannelKind = 4
	ChannelKindAnnouncements      ChannelKind = 5
	ChannelKindStore              ChannelKind = 6
	ChannelKindAnnouncementThread ChannelKind = 10
	ChannelKindPublicThread       ChannelKind = 11
	ChannelKindPrivateThread      ChannelKind = 12
	ChannelKindStage              ChannelKind = 13
	ChannelKindDirectory          ChannelKind = 14
	ChannelKindForum              ChannelKind = 15
)

// ChannelKindInfo, bir kanal tipinin permission davranışını veri olarak tanımlar.
//
// Her kanal tipi için ayrı bir permissionsFor metodu yazmak yerine, tek bir
// resolution fonksiyonu bu tabloyu okur. Kanal tipleri arasındaki farklar
// bir mask + birkaç boolean flag'e indirgenmiştir.
type ChannelKindInfo struct {
	Name string

	// Mask: bu tipte uygulanabilir capability'ler. Sonuç her zaman bununla AND'lenir.
	Mask Permission

	// Private: DM veya group kanalı: guild/rol/overwrite yok, katılımcılık yeterli.
	Private bool

	// Thread: base hesabı parent kanaldan yapılır, sonra thread clipping uygulanır.
	Thread bool

	// AnnouncementClipping: manage_messages yoksa text capability'leri kesilir.
	AnnouncementClipping bool

	// SendClipping: send_messages yoksa ona bağlı capability'ler kesilir.
	SendClipping bool

	// ConnectClipping: connect yoksa ses capability'leri kesilir.
	ConnectClipping bool
}

// channelKinds, bilinen tüm kanal tiplerinin tablosu.
// Tabloda olmayan bir tip için resolver PermissionNone döner (fail-closed).
var channelKinds = map[ChannelKind]ChannelKindInfo{
	ChannelKindText: {
		Name: "text", Mask: PermissionVoiceDeny, SendClipping: true,
	},
	ChannelKindPrivate: {
		Name: "private", Mask: PermissionAll, Private: true,
	},
	ChannelKindVoice: {
		Name: "voice", Mask: PermissionAll, ConnectClipping: true,
	},
	ChannelKindGroup: {
		Name: "group", Mask: PermissionAll, Private: true,
	},
	ChannelKindCategory: {
		Name: "category", Mask: PermissionAll,
	},
	ChannelKindAnnouncements: {
		Name: "announcements", Mask: PermissionVoiceDeny, AnnouncementClipping: true, SendClipping: true,
	},
	ChannelKindStore: {
		Name: "store", Mask: PermissionTextAndVoiceDeny,
	},
	ChannelKindAnnouncementThread: {
		Name: "announcement_thread", Mask: PermissionVoiceDeny, Thread: true,
	},
	ChannelKindPublicThread: {
		Name: "public_thread", Mask: PermissionVoiceDeny, Thread: true,
	},
	ChannelKindPrivateThread: {
		Name: "private_thread", Mask: PermissionVoiceDeny, Thread: true,
	},
	ChannelKindStage: {
		Name: "stage", Mask: PermissionAll, ConnectClipping: true,
	},
	ChannelKindDirectory: {
		Name: "directory", Mask: PermissionTextAndVoiceDeny,
	},
	ChannelKindForum: {
		Name: "forum", Mask: PermissionThreadAndVoiceDeny,
	},
}

// Info, kanal tipinin tablo kaydını döner. Bilinmeyen tip için ok=false.
func (k ChannelKind) Info() (ChannelKindInfo, bool) {
	info, ok := channelKinds[k]
	return info, ok
}

// String, tipin okunabilir adı.
func (k ChannelKind) String() string {
	if info, ok := channelKinds[k]; ok {
		return info.Name
	}
	return fmt.Sprintf("ChannelKind(%d)", int(k))
}

// ChannelKindByName, tablo adından ("text", "public_thread" ...) tipi bulur.
func ChannelKindByName(name string) (ChannelKind, bool) {
	for kind, info := range channelKinds {
		if info.Name == name {
			return kind, true
		}
	}
	return 0, false
}

// IsThread, kanal tipinin bir thread olup olmadığını döner.
func (k ChannelKind) IsThread() bool {
	info, ok := channelKinds[k]
	return ok && info.Thread
}

// IsPrivate, kanal tipinin DM veya group olup olmadığını döner.
func (k ChannelKind) IsPrivate() bool {
	info, ok := channelKinds[k]
	return ok && info.Private
}

// Channel, bir Discord kanalını temsil eder.
//
// Guild kanalları GuildID ve Overwrites taşır. Thread'ler ParentID ile parent
// kanala bağlanır: thread'in kendi overwrite'ı yoktur, parent'ınkiler geçerlidir.
// Private kanallar (DM/group) guild'siz'dir; Recipients ve (group için) OwnerID taşır.
type Channel struct {
	ID         Snowflake                         `json:"id"`
	GuildID    Snowflake                         `json:"guild_id,omitempty"`
	Kind       ChannelKind                       `json:"type"`
	ParentID   Snowflake                         `json:"parent_id,omitempty"`
	Name       string                            `json:"name"`
	Position   int                               `json:"position"`
	Overwrites map[Snowflake]PermissionOverwrite `json:"-"`
	Recipients []Snowflake                       `json:"recipients,omitempty"`
	OwnerID    Snowflake                         `json:"owner_id,omitempty"`
}

// OverwriteList, overwrite map'ini Discord'un liste formatına çevirir.
func (c *Channel) OverwriteList() []PermissionOverwrite {
	list := make([]PermissionOverwrite, 0, len(c.Overwrites))
	for _, o := range c.Overwrites {
		list = append(list, o)
	}
	return list
}

// Detail, kanalı overwrite listesiyle birlikte döner (API response ve WS event'i için).
// Liste target ID'ye göre sıralıdır.
func (c *Channel) Detail() ChannelDetail {
	list := c.OverwriteList()
	sort.Slice(list, func(i, j int) bool { return list[i].TargetID < list[j].TargetID })
	return ChannelDetail{Channel: *c, PermissionOverwrites: list}
}

// ChannelDetail, kanal + Discord formatında permission_overwrites listesi.
type ChannelDetail struct {
	Channel
	PermissionOverwrites []PermissionOverwrite `json:"permission_overwrites"`
}

// HasRecipient, private kanalda kullanıcının katılımcı olup olmadığını döner.
func (c *Channel) HasRecipient(userID Snowflake) bool {
	for _, id := range c.Recipients {
		if id == userID {
			return true
		}
	}
	return false
}

// UpsertChannelRequest, kanal oluşturma/güncelleme isteği (Discord channel payload'ı).
// permission_overwrites Discord'daki gibi liste olarak gelir.
type UpsertChannelRequest struct {
	GuildID              Snowflake             `json:"guild_id"`
	Type                 ChannelKind           `json:"type"`
	ParentID             Snowflake             `json:"parent_id"`
	Name                 string                `json:"name"`
	Position             int                   `json:"position"`
	PermissionOverwrites []PermissionOverwrite `json:"permission_overwrites"`
	Recipients           []Snowflake           `json:"recipients"`
	OwnerID              Snowflake             `json:"owner_id"`
}

// Validate, UpsertChannelRequest'in geçerli olup olmadığını kontrol eder.
func (r *UpsertChannelRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	if utf8.RuneCountInString(r.Name) > 100 {
		return fmt.Errorf("channel name must be at most 100 characters")
	}

	info, ok := r.Type.Info()
	if !ok {
		return fmt.Errorf("unknown channel type %d", int(r.Type))
	}

	if info.Private {
		if r.GuildID != 0 {
			return fmt.Errorf("private channels cannot belong to a guild")
		}
		if len(r.PermissionOverwrites) > 0 {
			return fmt.Errorf("private channels cannot have permission overwrites")
		}
	} else if r.GuildID == 0 {
		return fmt.Errorf("guild channels require guild_id")
	}

	if info.Thread {
		if r.ParentID == 0 {
			return fmt.Errorf("threads require parent_id")
		}
		if len(r.PermissionOverwrites) > 0 {
			return fmt.Errorf("threads cannot have permission overwrites")
		}
	}

	seen := make(map[Snowflake]bool, len(r.PermissionOverwrites))
	for i := range r.PermissionOverwrites {
		o := &r.PermissionOverwrites[i]
		if seen[o.TargetID] {
			return fmt.Errorf("duplicate overwrite target: %s", o.TargetID)
		}
		seen[o.TargetID] = true
		if err := o.Validate(); err != nil {
			return fmt.Errorf("overwrite %s: %w", o.TargetID, err)
		}
	}

	return nil
}

// ToChannel, request'i verilen ID ile Channel'a çevirir.
func (r *UpsertChannelRequest) ToChannel(id Snowflake) *Channel {
	ch := &Channel{
		ID:         id,
		GuildID:    r.GuildID,
		Kind:       r.Type,
		ParentID:   r.ParentID,
		Name:       r.Name,
		Position:   r.Position,
		Overwrites: make(map[Snowflake]PermissionOverwrite, len(r.PermissionOverwrites)),
		Recipients: r.Recipients,
		OwnerID:    r.OwnerID,
	}
	for _, o := range r.PermissionOverwrites {
		ch.Overwrites[o.TargetID] = o
	}
	return ch
}

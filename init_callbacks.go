// Package main: registry → WebSocket invalidation wire-up.
//
// Registry ws paketini, hub registry mutasyonlarını bilmez. main package ikisini
// birbirine bağlar: bir registry mutasyonu bazı kanalların permission'larını
// geçersiz kıldığında, o kanallara abone client'lara bir invalidation event'i gider.
package main

import (
	"github.com/HuyaneMatsu/hata-sub016/models"
	"github.com/HuyaneMatsu/hata-sub016/registry"
	"github.com/HuyaneMatsu/hata-sub016/ws"
)

// registerInvalidationCallbacks, registry invalidation hook'unu hub'a bağlar.
//
// Hook registry lock'u bırakıldıktan sonra çağrılır, hub'ın kendi lock'uyla çakışmaz.
func registerInvalidationCallbacks(reg *registry.Registry, hub ws.EventPublisher) {
	reg.OnInvalidate(func(channelIDs []models.Snowflake) {
		if len(channelIDs) == 0 {
			return
		}

		hub.BroadcastToChannels(channelIDs, ws.Event{
			Op:   ws.OpPermissionsInvalidate,
			Data: ws.InvalidateData{ChannelIDs: channelIDs},
		})
	})
}

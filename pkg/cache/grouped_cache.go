// Package cache, iki seviyeli (group → key) generic in-memory TTL cache.
//
// Permission cache için kullanılır: group = kanal ID'si, key = kullanıcı ID'si.
// Bir kanalın overwrite'ları değiştiğinde o kanala ait TÜM kayıtlar tek
// bir InvalidateGroup çağrısıyla silinir; diğer kanalların kayıtları etkilenmez.
//
// TTL (Time To Live):
// Her kayıt bir son kullanma zamanı taşır. Süresi dolan kayıt okunamaz (cache miss).
// Fiziksel silme periyodik cleanup goroutine'i ile yapılır. ttl <= 0 ise kayıtlar
// sadece invalidation ile silinir.
//
// Thread safety:
// sync.RWMutex ile korunur. Aynı key'i iki goroutine aynı anda doldurabilir:
// ikisi de aynı değeri hesapladığı için zararsızdır.
package cache

import (
	"sync"
	"time"
)

// entry, cache'teki tek bir kayıttır.
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

func (e entry[V]) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// GroupedTTLCache, group'lara ayrılmış generic TTL cache.
//
//	c := cache.New[models.Snowflake, models.Snowflake, models.Permission](5*time.Minute, time.Minute)
//	c.Set(channelID, userID, perms)
//	p, ok := c.Get(channelID, userID)
//	c.InvalidateGroup(channelID)
type GroupedTTLCache[G comparable, K comparable, V any] struct {
	mu     sync.RWMutex
	groups map[G]map[K]entry[V]
	ttl    time.Duration

	// stopCleanup: Close() ile kapatılır, cleanup goroutine'ini durdurur.
	stopCleanup chan struct{}
	closeOnce   sync.Once
}

// New, yeni bir cache oluşturur.
// cleanupInterval > 0 ise süresi dolan kayıtları silen goroutine başlatılır.
func New[G comparable, K comparable, V any](ttl, cleanupInterval time.Duration) *GroupedTTLCache[G, K, V] {
	c := &GroupedTTLCache[G, K, V]{
		groups:      make(map[G]map[K]entry[V]),
		ttl:         ttl,
		stopCleanup: make(chan struct{}),
	}

	if cleanupInterval > 0 {
		go func() {
			ticker := time.NewTicker(cleanupInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ticker.C:
					c.evictExpired()
				case <-c.stopCleanup:
					return
				}
			}
		}()
	}

	return c
}

// Get, (group, key) kaydını okur. Kayıt yoksa veya süresi dolmuşsa ok=false.
func (c *GroupedTTLCache[G, K, V]) Get(group G, key K) (V, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.groups[group][key]
	if !ok || e.expired(time.Now()) {
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set, (group, key) kaydını yazar.
func (c *GroupedTTLCache[G, K, V]) Set(group G, key K, value V) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entries, ok := c.groups[group]
	if !ok {
		entries = make(map[K]entry[V])
		c.groups[group] = entries
	}

	e := entry[V]{value: value}
	if c.ttl > 0 {
		e.expiresAt = time.Now().Add(c.ttl)
	}
	entries[key] = e
}

// Delete, tek bir kaydı siler.
func (c *GroupedTTLCache[G, K, V]) Delete(group G, key K) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entries, ok := c.groups[group]; ok {
		delete(entries, key)
		if len(entries) == 0 {
			delete(c.groups, group)
		}
	}
}

// InvalidateGroup, verilen group'ların tüm kayıtlarını siler.
func (c *GroupedTTLCache[G, K, V]) InvalidateGroup(groups ...G) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, g := range groups {
		delete(c.groups, g)
	}
}

// Clear, tüm cache'i boşaltır.
func (c *GroupedTTLCache[G, K, V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.groups = make(map[G]map[K]entry[V])
}

// Len, toplam kayıt sayısını döner (süresi dolmuşlar dahil).
func (c *GroupedTTLCache[G, K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	n := 0
	for _, entries := range c.groups {
		n += len(entries)
	}
	return n
}

// GroupLen, bir group'taki kayıt sayısını döner.
func (c *GroupedTTLCache[G, K, V]) GroupLen(group G) int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.groups[group])
}

// Close, cleanup goroutine'ini durdurur. Birden fazla çağrılabilir.
func (c *GroupedTTLCache[G, K, V]) Close() {
	c.closeOnce.Do(func() {
		close(c.stopCleanup)
	})
}

// evictExpired, süresi dolan kayıtları ve boş kalan group'ları siler.
func (c *GroupedTTLCache[G, K, V]) evictExpired() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for g, entries := range c.groups {
		for key, e := range entries {
			if e.expired(now) {
				delete(entries, key)
			}
		}
		if len(entries) == 0 {
			delete(c.groups, g)
		}
	}
}

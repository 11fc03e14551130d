package handlers

import (
	"net/http"

	"github.com/HuyaneMatsu/hata-sub016/pkg"
	"github.com/HuyaneMatsu/hata-sub016/registry"
)

// HealthResponse, health endpoint'inin response formatı.
type HealthResponse struct {
	Status        string         `json:"status"`
	Registry      registry.Stats `json:"registry"`
	CachedEntries int            `json:"cached_entries"`
	Connections   int            `json:"ws_connections"`
}

// StatsSource, health'in okuduğu sayaçlar. main.go'da registry, permission
// service ve hub'dan oluşturulur.
type StatsSource struct {
	Registry    func() registry.Stats
	CacheLen    func() int
	Connections func() int
}

// HealthHandler, public (auth gerektirmeyen) health endpoint'i.
type HealthHandler struct {
	stats StatsSource
}

// NewHealthHandler, constructor.
func NewHealthHandler(stats StatsSource) *HealthHandler {
	return &HealthHandler{stats: stats}
}

// Get godoc
// GET /api/health
//
// Response: { "success": true, "data": { "status": "ok", "registry": {...}, ... } }
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{Status: "ok"}
	if h.stats.Registry != nil {
		resp.Registry = h.stats.Registry()
	}
	if h.stats.CacheLen != nil {
		resp.CachedEntries = h.stats.CacheLen()
	}
	if h.stats.Connections != nil {
		resp.Connections = h.stats.Connections()
	}

	pkg.JSON(w, http.StatusOK, resp)
}

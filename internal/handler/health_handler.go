package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/internal/channel"
	"github.com/MohammedReshid1/spring-of-knowledge-hub-sub002/pkg/cache"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db       *gorm.DB
	cache    *cache.Cache
	adapters map[string]channel.Adapter
}

func NewHealthHandler(db *gorm.DB, c *cache.Cache, adapters map[string]channel.Adapter) *HealthHandler {
	return &HealthHandler{db: db, cache: c, adapters: adapters}
}

func (h *HealthHandler) Health(c *gin.Context) {
	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "down", "error": "database unreachable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"cache":  h.cache.Ping(c.Request.Context()) == nil,
	})
}

// Channels runs each adapter's settings check so a misconfigured provider is
// caught before real traffic hits it.
func (h *HealthHandler) Channels(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 10*time.Second)
	defer cancel()

	out := make(map[string]gin.H, len(h.adapters))
	healthy := true
	for name, adapter := range h.adapters {
		if err := adapter.ValidateSettings(ctx); err != nil {
			out[name] = gin.H{"ok": false, "error": err.Error()}
			healthy = false
			continue
		}
		out[name] = gin.H{"ok": true}
	}
	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"channels": out})
}

package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type HealthHandler struct {
	db  *gorm.DB
	rdb *redis.Client
}

func NewHealthHandler(db *gorm.DB, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{db: db, rdb: rdb}
}

// Check reports readiness of the database and redis connections.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx := c.Request.Context()

	status := http.StatusOK
	overall := "ok"
	deps := gin.H{"database": "ok", "redis": "ok"}

	sqlDB, err := h.db.DB()
	if err != nil || sqlDB.PingContext(ctx) != nil {
		deps["database"] = "unreachable"
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}
	if err := h.rdb.Ping(ctx).Err(); err != nil {
		deps["redis"] = "unreachable"
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}

	c.JSON(status, gin.H{
		"status": overall,
		"time":   time.Now().UTC().Format(time.RFC3339),
		"deps":   deps,
	})
}

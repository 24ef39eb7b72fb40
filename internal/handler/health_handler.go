package handler

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/faculty-backend/internal/response"
)

const healthTimeout = 2 * time.Second

// HealthHandler reports liveness plus the state of the store and cache.
type HealthHandler struct {
	db        *sqlx.DB
	rdb       *redis.Client // nil when the stats cache is disabled
	startTime time.Time
	log       zerolog.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db *sqlx.DB, rdb *redis.Client, log zerolog.Logger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		rdb:       rdb,
		startTime: time.Now(),
		log:       log.With().Str("component", "health_handler").Logger(),
	}
}

type healthStatus struct {
	Status     string `json:"status"`
	Database   string `json:"database"`
	Cache      string `json:"cache"`
	Uptime     string `json:"uptime"`
	GoVersion  string `json:"go_version"`
	Goroutines int    `json:"goroutines"`
}

// Health godoc
// GET /health
// 200 while the database answers; 503 otherwise. A failing cache only
// degrades the report since aggregations fall back to the database.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthTimeout)
	defer cancel()

	st := healthStatus{
		Status:     "ok",
		Database:   "ok",
		Cache:      "disabled",
		Uptime:     time.Since(h.startTime).Truncate(time.Second).String(),
		GoVersion:  runtime.Version(),
		Goroutines: runtime.NumGoroutine(),
	}

	if err := h.db.PingContext(ctx); err != nil {
		h.log.Error().Err(err).Msg("Database ping failed")
		st.Status = "unavailable"
		st.Database = "down"
	}
	if h.rdb != nil {
		st.Cache = "ok"
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			h.log.Warn().Err(err).Msg("Redis ping failed")
			st.Cache = "down"
			if st.Status == "ok" {
				st.Status = "degraded"
			}
		}
	}

	code := http.StatusOK
	if st.Database != "ok" {
		code = http.StatusServiceUnavailable
	}
	response.Success(c, code, st)
}

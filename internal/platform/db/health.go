package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats is the connection pool snapshot reported by the health check.
type PoolStats struct {
	TotalConns      int32  `json:"total_conns"`
	IdleConns       int32  `json:"idle_conns"`
	AcquiredConns   int32  `json:"acquired_conns"`
	MaxConns        int32  `json:"max_conns"`
	AcquireCount    int64  `json:"acquire_count"`
	AcquireDuration string `json:"acquire_duration"`
}

func GetPoolStats(pool *pgxpool.Pool) PoolStats {
	stat := pool.Stat()
	return PoolStats{
		TotalConns:      stat.TotalConns(),
		IdleConns:       stat.IdleConns(),
		AcquiredConns:   stat.AcquiredConns(),
		MaxConns:        stat.MaxConns(),
		AcquireCount:    stat.AcquireCount(),
		AcquireDuration: stat.AcquireDuration().String(),
	}
}

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
)

// HealthResponse is the body of GET /health/db.
type HealthResponse struct {
	Status   string     `json:"status"`
	Storage  string     `json:"storage"`
	Migrated *bool      `json:"migrated,omitempty"`
	Error    string     `json:"error,omitempty"`
	Pool     *PoolStats `json:"pool,omitempty"`
}

// HealthHandler pings the database and checks that the share table exists.
// A nil pool means the service runs on in-memory storage, which is always
// healthy.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		if pool == nil {
			return c.JSON(http.StatusOK, HealthResponse{Status: "healthy", Storage: StorageMemory})
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		resp := HealthResponse{Status: "healthy", Storage: StoragePostgres}
		var migrated bool
		err := pool.QueryRow(ctx, `SELECT to_regclass('emergency_share') IS NOT NULL`).Scan(&migrated)
		stats := GetPoolStats(pool)
		resp.Pool = &stats
		if err != nil {
			resp.Status, resp.Error = "unhealthy", err.Error()
			return c.JSON(http.StatusServiceUnavailable, resp)
		}
		resp.Migrated = &migrated
		if !migrated {
			resp.Status = "degraded"
		}
		return c.JSON(http.StatusOK, resp)
	}
}

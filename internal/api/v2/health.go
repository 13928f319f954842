package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v3/disk"

	"github.com/wastenet/wastenet-go/internal/logger"
)

// DiskInfo describes the filesystem holding the prediction log.
type DiskInfo struct {
	Path        string  `json:"path"`
	Total       uint64  `json:"total"`
	Free        uint64  `json:"free"`
	UsedPercent float64 `json:"used_percent"`
}

// HealthResponse is the body returned by GET /api/health.
type HealthResponse struct {
	Status        string    `json:"status"`
	Version       string    `json:"version,omitempty"`
	Uptime        string    `json:"uptime"`
	UptimeSeconds float64   `json:"uptime_seconds"`
	Timestamp     string    `json:"timestamp"`
	Disk          *DiskInfo `json:"disk,omitempty"`
}

// HealthCheck handles GET /api/health.
func (c *Controller) HealthCheck(ctx echo.Context) error {
	uptime := time.Since(c.startTime)

	resp := HealthResponse{
		Status:        "healthy",
		Version:       c.version,
		Uptime:        uptime.Round(time.Second).String(),
		UptimeSeconds: uptime.Seconds(),
		Timestamp:     time.Now().Format(time.RFC3339),
	}

	usage, err := disk.UsageWithContext(ctx.Request().Context(), c.diskPath)
	if err != nil {
		c.logger.Warn("disk usage unavailable", logger.String("path", c.diskPath), logger.Error(err))
	} else {
		resp.Disk = &DiskInfo{
			Path:        c.diskPath,
			Total:       usage.Total,
			Free:        usage.Free,
			UsedPercent: usage.UsedPercent,
		}
	}

	return ctx.JSON(http.StatusOK, resp)
}

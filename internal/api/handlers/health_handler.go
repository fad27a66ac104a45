package handlers

import (
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/shirou/gopsutil/v3/disk"
)

// HealthHandler reports service liveness and capacity of the uploads volume.
type HealthHandler struct {
	uploadsDir string
	startedAt  time.Time
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(uploadsDir string) *HealthHandler {
	return &HealthHandler{uploadsDir: uploadsDir, startedAt: time.Now()}
}

// Status returns uptime and disk usage of the volume backing the uploads
// directory.
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status": "ok",
		"uptime": time.Since(h.startedAt).Round(time.Second).String(),
	}

	if usage, err := disk.Usage(h.uploadsDir); err == nil {
		resp["uploadsDisk"] = map[string]interface{}{
			"totalBytes":  usage.Total,
			"freeBytes":   usage.Free,
			"usedPercent": usage.UsedPercent,
		}
	} else {
		log.Warn().Err(err).Str("dir", h.uploadsDir).Msg("Could not read uploads disk usage")
	}

	writeJSON(w, http.StatusOK, resp)
}

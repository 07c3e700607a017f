package handler

import (
	"net/http"

	"crypto-oracle/pkg/tracing"

	"github.com/gin-gonic/gin"
)

// Health godoc
// @Summary      Health check
// @Description  Reports service version, optional backends and the number of override coins
// @Tags         health
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Router       /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":         "ok",
		"service":        tracing.ServiceName,
		"version":        tracing.ServiceVersion,
		"backends":       h.backends,
		"override_coins": len(h.table.Listings()),
	})
}

func enabled(on bool) string {
	if on {
		return "enabled"
	}
	return "disabled"
}

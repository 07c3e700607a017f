package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"crypto-oracle/internal/dashboard"
	"crypto-oracle/internal/domain"
	"crypto-oracle/internal/forecast"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetForecast godoc
// @Summary      Generate a forecast
// @Description  Builds a fresh 7 day, 4 week and 12 month projection for a coin
// @Tags         forecast
// @Produce      json
// @Param        id  path  string  true  "Coin id (e.g., bitcoin)"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/coins/{id}/forecast [get]
func (h *Handler) GetForecast(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-forecast")
	defer span.End()

	coinID := strings.ToLower(strings.TrimSpace(c.Param("id")))
	span.SetAttributes(attribute.String("coin_id", coinID))

	coin, ok := h.lookupCoin(c, coinID)
	if !ok {
		return
	}

	f, err := h.forecasts.Generate(ctx, coin)
	if err != nil {
		log.Printf("forecast for %s: %v", coinID, err)
		status := http.StatusInternalServerError
		if errors.Is(err, domain.ErrPredictionUnavailable) {
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": dashboard.UserMessage(dashboard.OpSelect, err)})
		return
	}

	resp := gin.H{
		"forecast":  f,
		"summaries": forecast.Summarize(f),
	}
	if note := h.table.Note(coinID); note != "" {
		resp["note"] = note
	}
	c.JSON(http.StatusOK, resp)
}

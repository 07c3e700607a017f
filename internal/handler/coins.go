package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"crypto-oracle/internal/dashboard"
	"crypto-oracle/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

const (
	defaultHistoryDays = 30
	maxHistoryDays     = 365
)

// ListCoins godoc
// @Summary      List coins
// @Description  Returns the tracked coins (override listings first) and the coin selected by default
// @Tags         coins
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      502  {object}  map[string]string
// @Router       /api/coins [get]
func (h *Handler) ListCoins(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.list-coins")
	defer span.End()

	coins, err := h.market.ListCoins(ctx)
	if err != nil {
		log.Printf("list coins: %v", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": dashboard.UserMessage(dashboard.OpListing, err)})
		return
	}

	resp := gin.H{"coins": coins, "default_coin_id": nil}
	if coin, ok := dashboard.SelectDefault(coins, h.preferred...); ok {
		resp["default_coin_id"] = coin.ID
	}
	c.JSON(http.StatusOK, resp)
}

// GetHistory godoc
// @Summary      Get price history
// @Description  Returns daily prices for a coin
// @Tags         coins
// @Produce      json
// @Param        id    path   string  true   "Coin id (e.g., bitcoin)"
// @Param        days  query  int     false  "Days of history (1-365)"  default(30)
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/coins/{id}/history [get]
func (h *Handler) GetHistory(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-history")
	defer span.End()

	coinID := strings.ToLower(strings.TrimSpace(c.Param("id")))
	days := defaultHistoryDays
	if v := c.Query("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxHistoryDays {
			c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 1 and 365"})
			return
		}
		days = n
	}
	span.SetAttributes(attribute.String("coin_id", coinID), attribute.Int("days", days))

	points, err := h.market.GetHistory(ctx, coinID, days)
	if err != nil {
		log.Printf("history for %s: %v", coinID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "price history is unavailable"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"coin_id": coinID, "days": days, "prices": points})
}

func (h *Handler) lookupCoin(c *gin.Context, coinID string) (domain.Coin, bool) {
	coin, err := h.market.GetCoin(c.Request.Context(), coinID)
	switch {
	case err == nil:
		return coin, true
	case errors.Is(err, domain.ErrUnknownCoin):
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown coin: " + coinID})
	default:
		log.Printf("lookup %s: %v", coinID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": dashboard.UserMessage(dashboard.OpListing, err)})
	}
	return domain.Coin{}, false
}

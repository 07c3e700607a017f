package handler

import (
	"log"
	"net/http"
	"strings"

	"crypto-oracle/internal/dashboard"
	"crypto-oracle/internal/sentiment"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

// GetNews godoc
// @Summary      Get coin news
// @Description  Returns recent headlines with sentiment labels and the aggregate score
// @Tags         news
// @Produce      json
// @Param        id  path  string  true  "Coin id (e.g., bitcoin)"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /api/coins/{id}/news [get]
func (h *Handler) GetNews(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-news")
	defer span.End()

	coinID := strings.ToLower(strings.TrimSpace(c.Param("id")))
	span.SetAttributes(attribute.String("coin_id", coinID))

	if _, ok := h.lookupCoin(c, coinID); !ok {
		return
	}

	items, err := h.news.GetNews(ctx, coinID)
	if err != nil {
		log.Printf("news for %s: %v", coinID, err)
		c.JSON(http.StatusBadGateway, gin.H{"error": dashboard.UserMessage(dashboard.OpNews, err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"coin_id":         coinID,
		"news":            items,
		"sentiment_score": sentiment.Score(items),
		"counts":          sentiment.Counts(items),
	})
}

package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

const (
	defaultRecommendations = 5
	noStrongBuy            = "No strong BUY recommendations."
	noStrongSell           = "No strong SELL recommendations."
)

// GetRecommendations godoc
// @Summary      Strong buy and sell recommendations
// @Description  Lists HIGH confidence BUY and SELL results of the latest batch, strongest first
// @Tags         analysis
// @Produce      json
// @Param        limit  query  int  false  "Entries per list (default 5)"  default(5)
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Security     ApiKeyAuth
// @Router       /api/recommendations [get]
func (h *Handler) GetRecommendations(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-recommendations")
	defer span.End()

	limit := defaultRecommendations
	if l := c.Query("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = n
		}
	}

	batch, ok := h.latest(c, ctx)
	if !ok {
		return
	}
	rec := batch.Recommendations.Top(limit)

	body := gin.H{
		"run_id":      batch.RunID,
		"strong_buy":  rec.StrongBuy,
		"strong_sell": rec.StrongSell,
	}
	var messages []string
	if len(rec.StrongBuy) == 0 {
		messages = append(messages, noStrongBuy)
	}
	if len(rec.StrongSell) == 0 {
		messages = append(messages, noStrongSell)
	}
	if len(messages) > 0 {
		body["messages"] = messages
	}
	c.JSON(http.StatusOK, body)
}

package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"alpha-signal/internal/domain"
	"alpha-signal/internal/service"
	"alpha-signal/internal/signal"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/attribute"
)

const detailHotNews = 3

type runRequest struct {
	Symbols   []string              `json:"symbols"`
	Top       int                   `json:"top"`
	Threshold float64               `json:"threshold"`
	Futures   []signal.FuturesEntry `json:"futures"`
}

// RunAnalysis godoc
// @Summary      Run an analysis batch
// @Description  Scores the requested symbols, the top-N market-cap universe, or the symbols present in the futures payload
// @Tags         analysis
// @Accept       json
// @Produce      json
// @Param        request  body  runRequest  false  "Symbols, top-N, threshold and futures records"
// @Success      200  {object}  domain.Batch
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Security     ApiKeyAuth
// @Router       /api/analysis/run [post]
func (h *Handler) RunAnalysis(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.run-analysis")
	defer span.End()

	var req runRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body: " + err.Error()})
		return
	}
	if req.Top < 0 || req.Threshold < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "top and threshold must not be negative"})
		return
	}
	span.SetAttributes(
		attribute.Int("request.symbols", len(req.Symbols)),
		attribute.Int("request.top", req.Top),
		attribute.Int("request.futures", len(req.Futures)),
	)

	batch, err := h.analyzer.Run(ctx, service.AnalysisRequest{
		Symbols:   req.Symbols,
		Top:       req.Top,
		Futures:   signal.ParseFuturesPayload(req.Futures),
		Threshold: req.Threshold,
	})
	if errors.Is(err, signal.ErrNoSymbols) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		span.RecordError(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, batch)
}

// GetLatest godoc
// @Summary      Latest analysis batch
// @Tags         analysis
// @Produce      json
// @Success      200  {object}  domain.Batch
// @Failure      404  {object}  map[string]string
// @Security     ApiKeyAuth
// @Router       /api/analysis/latest [get]
func (h *Handler) GetLatest(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-latest")
	defer span.End()

	batch, ok := h.latest(c, ctx)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, batch)
}

// GetStats godoc
// @Summary      Statistics of the latest batch
// @Description  Returns signal and confidence counts, the score correlation matrix and a net-score histogram
// @Tags         analysis
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Security     ApiKeyAuth
// @Router       /api/analysis/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-stats")
	defer span.End()

	batch, ok := h.latest(c, ctx)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"run_id":      batch.RunID,
		"finished_at": batch.FinishedAt,
		"stats":       signal.Summarize(batch.Results),
	})
}

// GetSymbol godoc
// @Summary      Detail for one symbol
// @Description  Returns the symbol's record from the latest batch, or scores it on demand when the batch has none. fresh=true always scores on demand.
// @Tags         analysis
// @Produce      json
// @Param        symbol   path   string  true   "Asset symbol (e.g., BTC, ETH)"
// @Param        fresh    query  bool    false  "Score on demand instead of reading the latest batch"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      500  {object}  map[string]string
// @Security     ApiKeyAuth
// @Router       /api/analysis/{symbol} [get]
func (h *Handler) GetSymbol(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-symbol")
	defer span.End()

	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	span.SetAttributes(attribute.String("symbol", symbol))
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}
	fresh := c.DefaultQuery("fresh", "false")
	if fresh != "true" && fresh != "false" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fresh must be true or false"})
		return
	}

	body := gin.H{"symbol": symbol}
	var (
		result domain.ScoringResult
		found  bool
	)
	if fresh != "true" {
		if batch, err := h.analyzer.Latest(ctx); err == nil {
			if result, found = batch.Result(symbol); found {
				body["run_id"] = batch.RunID
				body["finished_at"] = batch.FinishedAt
			}
		}
	}
	if !found {
		var err error
		result, err = h.analyzer.Analyze(ctx, symbol, signal.FuturesSet{}, 0)
		if err != nil {
			span.RecordError(err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		body["on_demand"] = true
	}
	body["result"] = result
	body["hot_news"] = hotNews(result, detailHotNews)

	c.JSON(http.StatusOK, body)
}

// latest writes the error response itself and reports whether a batch was found.
func (h *Handler) latest(c *gin.Context, ctx context.Context) (domain.Batch, bool) {
	batch, err := h.analyzer.Latest(ctx)
	if errors.Is(err, service.ErrNoBatch) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no analysis has run yet"})
		return domain.Batch{}, false
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return domain.Batch{}, false
	}
	return batch, true
}

// hotNews reads the news component, which is a NewsImpact for fresh results
// and a decoded JSON object for results loaded from the cache or the store.
func hotNews(res domain.ScoringResult, n int) []domain.HotNewsItem {
	var impact domain.NewsImpact
	switch v := res.Components[domain.ComponentNews].(type) {
	case nil:
		return []domain.HotNewsItem{}
	case domain.NewsImpact:
		impact = v
	default:
		data, err := json.Marshal(v)
		if err != nil || json.Unmarshal(data, &impact) != nil {
			return []domain.HotNewsItem{}
		}
	}
	items := impact.TopHotNews(n)
	if items == nil {
		return []domain.HotNewsItem{}
	}
	return items
}

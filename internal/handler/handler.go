package handler

import (
	"context"

	"alpha-signal/internal/domain"
	"alpha-signal/internal/service"
	"alpha-signal/internal/signal"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// Analyzer is the part of the analysis service the API depends on.
type Analyzer interface {
	Run(ctx context.Context, req service.AnalysisRequest) (domain.Batch, error)
	Latest(ctx context.Context) (domain.Batch, error)
	Analyze(ctx context.Context, symbol string, futures signal.FuturesSet, threshold float64) (domain.ScoringResult, error)
	Sources() map[string]string
}

type Handler struct {
	tracer   trace.Tracer
	analyzer Analyzer
}

func New(tracer trace.Tracer, analyzer Analyzer) *Handler {
	return &Handler{
		tracer:   tracer,
		analyzer: analyzer,
	}
}

// RegisterRoutes mounts the public health route and the API group. The API
// group is guarded by apiKey when it is non-empty.
func (h *Handler) RegisterRoutes(r *gin.Engine, apiKey string) {
	r.GET("/health", h.Health)

	api := r.Group("/api", APIKeyAuth(apiKey))
	api.POST("/analysis/run", h.RunAnalysis)
	api.GET("/analysis/latest", h.GetLatest)
	api.GET("/analysis/stats", h.GetStats)
	api.GET("/analysis/:symbol", h.GetSymbol)
	api.GET("/recommendations", h.GetRecommendations)
}

// Command mcp exposes the analysis service as Model Context Protocol tools
// over stdio or streamable HTTP.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"alpha-signal/internal/cache"
	"alpha-signal/internal/config"
	"alpha-signal/internal/logger"
	"alpha-signal/internal/repository"
	"alpha-signal/internal/service"
	"alpha-signal/internal/source"
	"alpha-signal/pkg/tracing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rs/zerolog/log"
)

const serverVersion = "1.0.0"

var (
	loadConfigFunc   = config.Load
	initTracerFunc   = tracing.InitTracer
	buildSourcesFunc = source.Build
	runStdioFunc     = func(ctx context.Context, server *mcp.Server) error { return server.Run(ctx, &mcp.StdioTransport{}) }
	listenHTTPFunc   = func(srv *http.Server) error { return srv.ListenAndServe() }
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("mcp server failed")
	}
}

func run() error {
	cfg, err := loadConfigFunc()
	if err != nil {
		return err
	}
	// stdout carries the protocol on stdio, so logs always go to stderr.
	logger.Init(cfg.App.LogLevel, cfg.App.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, tracer, err := initTracerFunc(ctx, cfg.App.Name+"-mcp")
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() { _ = tp.Shutdown(context.Background()) }()

	sources, err := buildSourcesFunc(cfg, tracer)
	if err != nil {
		return fmt.Errorf("build sources: %w", err)
	}

	var (
		store service.ResultStore
		rdb   service.RedisClient
	)
	if cfg.Storage.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			log.Warn().Err(err).Msg("postgres unavailable, results will not be persisted")
		} else {
			defer pool.Close()
			store = repository.NewResultRepository(pool, tracer)
		}
	}
	if client, err := cache.Connect(ctx, cfg.Storage.RedisURL); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, latest batch kept in memory")
	} else {
		defer client.Close()
		rdb = client
	}

	analysis := service.NewAnalysisService(tracer, sources, store, rdb, nil, service.AnalysisConfig{
		Workers:       cfg.Analysis.Workers,
		SymbolTimeout: cfg.Analysis.SymbolTimeout,
		Threshold:     cfg.Analysis.MinNetScore,
		CacheTTL:      cfg.Storage.ResultCacheTTL,
	})
	server := newServer(analysis, cfg.MCP.RequestTimeout)

	if cfg.MCP.Transport == "http" {
		return serveHTTP(ctx, server, cfg.MCP)
	}
	log.Info().Msg("mcp server running on stdio")
	return runStdioFunc(ctx, server)
}

func newServer(analyzer Analyzer, timeout time.Duration) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{Name: "alpha-signal", Version: serverVersion}, nil)
	registerTools(server, &toolset{analyzer: analyzer, timeout: timeout})
	return server
}

func serveHTTP(ctx context.Context, server *mcp.Server, cfg config.MCPConfig) error {
	if cfg.AuthToken == "" {
		log.Warn().Msg("MCP_AUTH_TOKEN not set, HTTP transport is unauthenticated")
	}
	handler := mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server { return server }, nil)

	srv := &http.Server{
		Addr:              cfg.HTTPBind + ":" + strconv.Itoa(cfg.HTTPPort),
		Handler:           withAuth(cfg.AuthToken, withRateLimit(cfg.RateLimitPerMin, handler)),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info().Str("addr", srv.Addr).Msg("mcp server listening")
	if err := listenHTTPFunc(srv); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("listen: %w", err)
	}
	return nil
}

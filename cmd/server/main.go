package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"alpha-signal/internal/bot"
	"alpha-signal/internal/cache"
	"alpha-signal/internal/config"
	"alpha-signal/internal/handler"
	"alpha-signal/internal/job"
	"alpha-signal/internal/logger"
	"alpha-signal/internal/metrics"
	"alpha-signal/internal/publish"
	"alpha-signal/internal/repository"
	"alpha-signal/internal/service"
	"alpha-signal/internal/source"
	"alpha-signal/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	_ "alpha-signal/docs"
)

var (
	loadConfigFunc         = config.Load
	initTracerFunc         = tracing.InitTracer
	openPoolFunc           = openPool
	connectRedisFunc       = connectRedis
	buildSourcesFunc       = source.Build
	newPublisherFunc       = newPublisher
	startJobFunc           = func(j *job.AnalysisJob, ctx context.Context) { go j.Start(ctx) }
	startTelegramBotFunc   = bot.StartTelegramBot
	newRouterFunc          = gin.New
	setupSignalNotify      = signal.Notify
	waitForSignalFunc      = func(quit <-chan os.Signal) { <-quit }
	startHTTPServerFunc    = func(srv *http.Server) error { return srv.ListenAndServe() }
	shutdownHTTPServerFunc = func(srv *http.Server, ctx context.Context) error { return srv.Shutdown(ctx) }
)

// @title           Alpha Signal API
// @version         1.0
// @description     Scores crypto assets into BUY/SELL signals from social, news, futures flow and macro data.

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey  ApiKeyAuth
// @in                          header
// @name                        X-API-Key
func main() {
	cfg, err := loadConfigFunc()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	logger.Init(cfg.App.LogLevel, cfg.App.LogFormat)
	cfg.WarnMissing()
	metrics.Init()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tp, tracer, err := initTracerFunc(ctx, cfg.App.Name)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize tracer")
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Error().Err(err).Msg("error shutting down tracer provider")
		}
	}()

	sources, err := buildSourcesFunc(cfg, tracer)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to build data sources")
	}

	var (
		store   service.ResultStore
		repo    *repository.ResultRepository
		pool    *pgxpool.Pool
		rdb     service.RedisClient
		pub     service.Publisher
		closers []func()
	)
	if cfg.Storage.DatabaseURL != "" {
		pool, err = openPoolFunc(ctx, cfg.Storage.DatabaseURL)
		if err != nil {
			log.Error().Err(err).Msg("postgres unavailable, results will not be persisted")
		} else {
			closers = append(closers, pool.Close)
			repo = repository.NewResultRepository(pool, tracer)
			store = repo
		}
	}
	if client, err := connectRedisFunc(ctx, cfg.Storage.RedisURL); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, latest batch served from memory")
	} else {
		rdb = client
		if c, ok := client.(*redis.Client); ok {
			closers = append(closers, func() { _ = c.Close() })
		}
	}
	if len(cfg.Kafka.Brokers) > 0 {
		pub = newPublisherFunc(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if p, ok := pub.(*publish.KafkaPublisher); ok {
			closers = append(closers, func() { _ = p.Close() })
		}
	}
	defer func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}()

	analysis := service.NewAnalysisService(tracer, sources, store, rdb, pub, service.AnalysisConfig{
		Workers:       cfg.Analysis.Workers,
		SymbolTimeout: cfg.Analysis.SymbolTimeout,
		Threshold:     cfg.Analysis.MinNetScore,
		CacheTTL:      cfg.Storage.ResultCacheTTL,
	})

	if cfg.Analysis.JobEnabled {
		startJobFunc(job.NewAnalysisJob(tracer, analysis, job.AnalysisJobConfig{
			PollInterval: cfg.Analysis.PollInterval,
			TopN:         cfg.Analysis.TopN,
			FuturesFile:  cfg.Analysis.FuturesFile,
		}), ctx)
	}

	tgBot, err := startTelegramBotFunc(cfg.Telegram.BotToken, analysis)
	if err != nil {
		log.Error().Err(err).Msg("telegram bot disabled")
	}
	if tgBot != nil {
		defer tgBot.Stop()
	}

	h := handler.New(tracer, analysis)

	r := newRouterFunc()
	r.Use(gin.Recovery(), handler.RequestLogger(), otelgin.Middleware(cfg.App.Name))
	h.RegisterRoutes(r, cfg.HTTP.APIKey)
	r.GET("/metrics", gin.WrapH(metrics.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Interface("sources", sources.Modes).Msg("http server listening")
		if err := startHTTPServerFunc(srv); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("listen")
		}
	}()

	quit := make(chan os.Signal, 1)
	setupSignalNotify(quit, syscall.SIGINT, syscall.SIGTERM)
	waitForSignalFunc(quit)
	log.Info().Msg("Shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := shutdownHTTPServerFunc(srv, shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("Server exiting")
}

func openPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	log.Info().Msg("connected to postgres")
	return pool, nil
}

func connectRedis(ctx context.Context, addr string) (service.RedisClient, error) {
	client, err := cache.Connect(ctx, addr)
	if err != nil {
		return nil, err
	}
	return client, nil
}

func newPublisher(brokers []string, topic string) service.Publisher {
	return publish.NewKafkaPublisher(brokers, topic)
}

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/gaiachat/internal/app"
	"github.com/kailas-cloud/gaiachat/internal/config"
	logpkg "github.com/kailas-cloud/gaiachat/internal/logger"
	"github.com/kailas-cloud/gaiachat/internal/metrics"
	sessionrepo "github.com/kailas-cloud/gaiachat/internal/repository/session"
	"github.com/kailas-cloud/gaiachat/internal/tracing"
	chiTransport "github.com/kailas-cloud/gaiachat/internal/transport/chi"
	openaiChat "github.com/kailas-cloud/gaiachat/internal/transport/openai"
	agentuc "github.com/kailas-cloud/gaiachat/internal/usecase/agent"
	healthuc "github.com/kailas-cloud/gaiachat/internal/usecase/health"
	sessionuc "github.com/kailas-cloud/gaiachat/internal/usecase/session"
	"github.com/kailas-cloud/gaiachat/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting gaiachat API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("tap_url", cfg.Archive.TAPURL),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Bool("chat_enabled", cfg.ChatEnabled()),
	)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, tracing.Config{
		Enabled:     cfg.Tracing.Enabled,
		Protocol:    cfg.Tracing.Protocol,
		Endpoint:    cfg.Tracing.Endpoint,
		Insecure:    cfg.Tracing.Insecure,
		SampleRatio: cfg.Tracing.SampleRatio,
		ServiceName: "gaiachat",
	}, logger)
	if err != nil {
		logger.Fatal("Failed to init tracing", zap.Error(err))
	}

	// Register metrics explicitly (no init())
	metrics.RegisterHTTPMetrics()
	metrics.RegisterCatalogMetrics()
	metrics.RegisterLLMMetrics()

	store, err := app.OpenStore(ctx, &cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open session store", zap.Error(err))
	}
	defer store.Close()
	logger.Info("Connected to database")

	// Repositories and use cases
	sessionRepo := sessionrepo.New(store, cfg.Session.KeyPrefix,
		time.Duration(cfg.Session.TTLSec)*time.Second, metrics.SessionCacheTotal)
	sessionSvc := sessionuc.New(sessionRepo)

	archive := app.NewArchive(&cfg, logger)
	catalogSvc := app.NewCatalog(&cfg, archive, logger)

	// Pass nil interfaces (not typed nil pointers) when chat is off:
	// (*agentuc.Service)(nil) wrapped in ChatService != nil.
	var (
		chatSvc    chiTransport.ChatService
		llmChecker healthuc.Checker
	)
	if cfg.ChatEnabled() {
		model := openaiChat.NewChat(&openaiChat.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
			MaxTokens:   cfg.LLM.MaxTokens,
			Logger:      logger,
		})
		agent, err := agentuc.New(model, catalogSvc, sessionSvc, agentuc.Config{
			HistoryWindow:  cfg.LLM.HistoryWindow,
			FollowupWindow: cfg.LLM.FollowupWindow,
		}, metrics.AgentToolCallsTotal)
		if err != nil {
			logger.Fatal("Failed to create chat agent", zap.Error(err))
		}
		chatSvc = agent
		llmChecker = model
		logger.Info("Chat agent ready",
			zap.String("model", cfg.LLM.Model),
			zap.Int("tools", len(agent.Tools())),
		)
	} else {
		logger.Warn("No LLM API key configured, chat endpoint disabled")
	}

	healthSvc := healthuc.New(store, archive, llmChecker)

	// Create chi server
	server := chiTransport.NewServer(catalogSvc, sessionSvc, chatSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	chiTransport.HandlerWithOptions(server, chiTransport.ServerOptions{
		BaseRouter: r,
		ErrorHandlerFunc: func(w http.ResponseWriter, _ *http.Request, err error) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusBadRequest)
			_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
				Code:    chiTransport.ErrorCodeBadRequest,
				Message: err.Error(),
			})
		},
	})

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}
	stop()
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("Error flushing traces", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/diero-hl/agentclaw/config"
	"github.com/diero-hl/agentclaw/internal/api/handlers"
	"github.com/diero-hl/agentclaw/internal/api/middleware"
	"github.com/diero-hl/agentclaw/internal/api/routes"
	"github.com/diero-hl/agentclaw/internal/cache"
	"github.com/diero-hl/agentclaw/internal/logger"
	"github.com/diero-hl/agentclaw/internal/providers/llm"
	pgrepo "github.com/diero-hl/agentclaw/internal/repositories/postgres"
	"github.com/diero-hl/agentclaw/internal/services"
	"github.com/diero-hl/agentclaw/internal/storage"
)

func main() {
	_ = godotenv.Load()
	log := logger.New()
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Init PostgreSQL
	if err := config.InitPostgres(cfg.PostgresURI); err != nil {
		log.Fatalf("PostgreSQL init error: %v", err)
	}
	if err := pgrepo.AutoMigrate(config.PostgresDB); err != nil {
		log.Fatalf("PostgreSQL migrate error: %v", err)
	}
	log.Info("PostgreSQL connected")

	// Redis is optional; without it the trending listing is not cached
	var agentCache cache.Cache = cache.Noop{}
	if cfg.RedisAddr != "" {
		if err := config.InitRedis(cfg.RedisAddr); err != nil {
			log.WithError(err).Warn("Redis unavailable, caching disabled")
		} else {
			agentCache = cache.NewRedisCache(config.RedisClient, "agentclaw:")
			log.Info("Redis connected")
		}
	}

	provider, err := newProvider(ctx, cfg)
	if err != nil {
		log.Fatalf("LLM provider init error: %v", err)
	}
	defer provider.Close()
	log.WithField("model", provider.Model()).Info("LLM provider ready")

	var uploader storage.Uploader
	if cfg.GCSBucket != "" {
		gcs, err := storage.NewGCSUploader(ctx, cfg.GCSBucket, cfg.GCSPublicRead)
		if err != nil {
			log.Fatalf("GCS init error: %v", err)
		}
		defer gcs.Close()
		uploader = gcs
	}

	if cfg.JWTSecret == "" {
		if cfg.AuthRequired {
			log.Fatal("AUTH_JWT_SECRET is required when AUTH_REQUIRED=true")
		}
		log.Warn("AUTH_JWT_SECRET not set, login and admin routes will reject every token")
	}

	agentRepo := pgrepo.NewAgentRepo(config.PostgresDB)
	reviewRepo := pgrepo.NewReviewRepo(config.PostgresDB)
	convoRepo := pgrepo.NewConversationRepo(config.PostgresDB)
	userRepo := pgrepo.NewUserRepo(config.PostgresDB)

	agentSvc := services.NewAgentService(agentRepo, agentCache, cfg.AgentCacheTTL)
	reviewSvc := services.NewReviewService(agentRepo, reviewRepo, agentCache)
	chatSvc := services.NewChatService(agentRepo, convoRepo, provider, services.ChatOptions{
		MaxTokens:            cfg.ChatMaxTokens,
		FallbackSystemPrompt: cfg.ChatFallbackSystemPrompt,
	})
	convoSvc := services.NewConversationService(convoRepo)
	userSvc := services.NewUserService(userRepo, cfg.JWTSecret, cfg.TokenTTL)
	uploadSvc := services.NewUploadService(uploader)

	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))

	routes.RegisterRoutes(r, routes.Deps{
		Agents:        handlers.NewAgentHandler(agentSvc),
		Reviews:       handlers.NewReviewHandler(reviewSvc),
		Chat:          handlers.NewChatHandler(chatSvc),
		WS:            handlers.NewWSHandler(chatSvc, log, cfg.WSAllowedOrigins),
		Conversations: handlers.NewConversationHandler(convoSvc),
		Auth:          handlers.NewAuthHandler(userSvc),
		Uploads:       handlers.NewUploadHandler(uploadSvc),
		JWTSecret:     cfg.JWTSecret,
		AuthRequired:  cfg.AuthRequired,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithField("port", cfg.Port).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
	closeStores(log)
}

func newProvider(ctx context.Context, cfg config.Config) (llm.Provider, error) {
	switch cfg.LLMProvider {
	case "vertex":
		return llm.NewVertexGemini(ctx, cfg.VertexProject, cfg.VertexLocation, cfg.LLMModel)
	case "anthropic", "":
		return llm.NewAnthropic(cfg.AnthropicKey, cfg.LLMModel)
	}
	return nil, errors.New("LLM_PROVIDER must be anthropic or vertex")
}

func closeStores(log logrus.FieldLogger) {
	if config.RedisClient != nil {
		if err := config.RedisClient.Close(); err != nil {
			log.WithError(err).Warn("redis close")
		}
	}
	if sqlDB, err := config.PostgresDB.DB(); err == nil {
		if err := sqlDB.Close(); err != nil {
			log.WithError(err).Warn("postgres close")
		}
	}
}

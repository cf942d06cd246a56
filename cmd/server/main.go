package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"docextract/internal/config"
	"docextract/internal/handler"
	"docextract/internal/llm"
	"docextract/internal/llm/openrouter"
	"docextract/internal/logger"
	"docextract/internal/port"
	"docextract/internal/repository/postgres"
	redisrepo "docextract/internal/repository/redis"
	"docextract/internal/router"
	"docextract/internal/service"
	s3storage "docextract/internal/storage/s3"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	// A missing .env is fine outside local development.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	zl := logger.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = zl.Sync() }()
	zap.ReplaceGlobals(zl)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Initialize conversation store
	repo, closeStore, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer closeStore()

	// Initialize storage
	var storage port.ObjectStorage
	if cfg.S3.Bucket != "" {
		storage, err = s3storage.NewS3Client(ctx, &cfg.S3)
		if err != nil {
			return fmt.Errorf("failed to initialize S3 client: %w", err)
		}
	} else {
		zl.Info("s3 bucket not configured, uploads will not be stored")
	}

	// Initialize model client
	model, err := buildChatClient(&cfg.LLM, zl)
	if err != nil {
		return err
	}

	// Initialize services
	chatSvc := service.NewChatService(repo, model, storage, service.ChatSettings{
		HistoryWindow:  cfg.Chat.HistoryWindow,
		MaxUploadBytes: cfg.Upload.MaxBytes(),
	}, zl)

	// Initialize handlers
	chatH := handler.NewChatHandler(chatSvc, cfg.Upload.MaxBytes())
	interpretH := handler.NewInterpretHandler()
	healthH := handler.NewHealthHandler(repo)

	// Setup router
	r := router.Setup(zl, cfg.CORS.AllowedOrigins, chatH, interpretH, healthH)

	srv := &http.Server{
		Addr:         cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		zl.Info("server starting",
			zap.String("addr", cfg.Server.Port),
			zap.String("environment", cfg.Server.Environment),
			zap.String("store", cfg.Store.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	zl.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

func openStore(cfg *config.Config) (port.ConversationRepository, func(), error) {
	switch cfg.Store.Driver {
	case config.StoreDriverRedis:
		client := redisrepo.NewClient(&cfg.Redis)
		return redisrepo.NewConversationRepo(client, cfg.Redis.KeyPrefix), func() { _ = client.Close() }, nil
	default:
		db, err := postgres.NewDB(&cfg.DB)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		return postgres.NewConversationRepo(db), func() { _ = db.Close() }, nil
	}
}

// buildChatClient returns the primary provider client, wrapped in a
// FallbackClient when a secondary provider is configured.
func buildChatClient(cfg *config.LLMConfig, zl *zap.Logger) (port.ChatClient, error) {
	openrouter.Register()

	primaryCfg := cfg.PrimaryConfig()
	primary, err := llm.NewClient(primaryCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize primary llm client: %w", err)
	}

	secondaryCfg := cfg.SecondaryConfig()
	if secondaryCfg == nil {
		return primary, nil
	}
	secondary, err := llm.NewClient(secondaryCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize secondary llm client: %w", err)
	}

	zl.Info("llm fallback enabled",
		zap.String("primary", primaryCfg.Provider),
		zap.String("secondary", secondaryCfg.Provider),
	)
	return llm.NewFallbackClient(
		[]port.ChatClient{primary, secondary},
		[]string{primaryCfg.Provider, secondaryCfg.Provider},
		zl,
	), nil
}

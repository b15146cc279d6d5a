package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"loopr-backend/internal/auth"
	"loopr-backend/internal/config"
	"loopr-backend/internal/database"
	"loopr-backend/internal/handlers"
	"loopr-backend/internal/logging"
	"loopr-backend/internal/mailer"
	customMiddleware "loopr-backend/internal/middleware"
	"loopr-backend/internal/repository"
	"loopr-backend/internal/server"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env (ignore error in production, env vars set directly)
	_ = godotenv.Load()

	cfg := config.Load()
	logger := logging.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Connect to MongoDB
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := database.Connect(ctx, cfg.MongoURI, cfg.DBName); err != nil {
		cancel()
		logger.Error("failed to connect to MongoDB", "error", err)
		os.Exit(1)
	}
	cancel()

	// Initialize repositories
	counterRepo := repository.NewCounterRepo()
	userRepo := repository.NewUserRepo()
	txRepo := repository.NewTransactionRepo(counterRepo)

	// Ensure indexes and the id sequence
	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	if err := userRepo.EnsureIndexes(ctx); err != nil {
		logger.Warn("failed to create user indexes", "error", err)
	}
	if err := txRepo.EnsureIndexes(ctx); err != nil {
		logger.Warn("failed to create transaction indexes", "error", err)
	}
	if err := txRepo.SyncSequence(ctx); err != nil {
		logger.Warn("failed to sync transaction id sequence", "error", err)
	}
	cancel()

	authLimiter := customMiddleware.NewRateLimiter(cfg.AuthRateLimit)
	defer authLimiter.Stop()

	router := server.NewRouter(server.Deps{
		Logger:         logger,
		Transactions:   txRepo,
		Users:          userRepo,
		Tokens:         auth.NewTokenManager(cfg.JWTSecret, cfg.TokenTTL()),
		Mailer:         mailer.New(cfg.ResendAPIKey, cfg.FromEmail),
		Health:         handlers.NewHealthHandler(database.Ping),
		AuthLimiter:    authLimiter,
		CORSOrigins:    cfg.CORSOrigins,
		RequestTimeout: cfg.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("loopr backend starting", "port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", "error", err)
	}
	if err := database.Disconnect(shutdownCtx); err != nil {
		logger.Error("failed to disconnect from MongoDB", "error", err)
	}
}

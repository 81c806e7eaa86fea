package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"ledgerly/internal/config"
	"ledgerly/internal/database"
	"ledgerly/internal/logger"
	"ledgerly/internal/oauth"
	"ledgerly/internal/router"
	"ledgerly/internal/tokenstore"
)

// @title           Ledgerly API
// @version         1.0
// @description     Ledgerly tracks income and expenses across personal and shared spaces.

// @host      localhost:8080
// @BasePath  /api

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	dbManager, err := database.NewManager(database.NewConfig(appConfig))
	if err != nil {
		return fmt.Errorf("failed to create database manager: %w", err)
	}
	defer func() {
		if err := dbManager.Close(); err != nil {
			log.Warnf("database close error: %v", err)
		}
	}()

	if err := dbManager.RunMigrations(); err != nil {
		return fmt.Errorf("failed to run database migrations: %w", err)
	}

	var blacklist tokenstore.Blacklist = tokenstore.Noop{}
	if appConfig.RedisAddr != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		client, err := tokenstore.Connect(ctx, appConfig.RedisAddr, appConfig.RedisPassword, appConfig.RedisDB)
		cancel()
		if err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		defer client.Close()
		blacklist = tokenstore.NewRedisBlacklist(client, appConfig.BlacklistFailClosed)
	} else {
		log.Warn("REDIS_ADDR not set, access token revocation is disabled")
	}

	var google oauth.Provider
	if appConfig.GoogleEnabled() {
		google = oauth.NewGoogleProvider(appConfig.GoogleClientID, appConfig.GoogleClientSecret, appConfig.GoogleRedirectURL)
	}

	engine := router.New(router.Deps{
		Config:    appConfig,
		DB:        dbManager.DB(),
		Blacklist: blacklist,
		Google:    google,
	})

	srv := &http.Server{
		Addr:              ":" + appConfig.Port,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Starting Ledgerly server on port %s", appConfig.Port)
		log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		log.Infof("Received %s, shutting down", sig)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

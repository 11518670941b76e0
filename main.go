// Package main is the entry point for the returns desk edge server.
// It initializes all dependencies and starts the HTTP server.
package main

import (
	"context"
	"log"
	"os"

	"returnsdesk/src/app/server"
	"returnsdesk/src/core/ports"
	"returnsdesk/src/core/usecase"
	"returnsdesk/src/infra/cache"
	"returnsdesk/src/infra/config"
	"returnsdesk/src/infra/identity"
	"returnsdesk/src/infra/logger"
)

func main() {
	if err := run(); err != nil {
		log.Printf("fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration from .env files and environment variables
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log := logger.New(cfg.Log)
	log.Info("starting application",
		"port", cfg.Server.Port,
		"env", cfg.App.Env,
		"log_level", cfg.Log.Level,
	)

	idp, err := identity.NewClient(identity.Config{
		URL:     cfg.Identity.URL,
		AnonKey: cfg.Identity.AnonKey,
		Timeout: cfg.Identity.Timeout,
	}, logger.WithComponent(log, "identity"))
	if err != nil {
		return err
	}

	cookieName := cfg.Identity.CookieName
	if cookieName == "" {
		if cookieName, err = identity.CookieName(cfg.Identity.URL); err != nil {
			return err
		}
	}

	health := map[string]ports.ExternalService{"identity": idp}

	// The session cache is optional; without Redis every request asks the provider.
	var sessionCache ports.SessionCache
	if cfg.Cache.RedisURL != "" {
		client, err := cache.Connect(context.Background(), cfg.Cache.RedisURL)
		if err != nil {
			return err
		}
		redisCache := cache.NewRedisSessionCache(client)
		defer redisCache.Close()

		sessionCache = redisCache
		health["session_cache"] = redisCache
		log.Info("session cache enabled", "ttl", cfg.Cache.TTL)
	}

	sessions := usecase.NewSessionService(
		idp,
		identity.NewCookieStore(cookieName, cfg.Identity.CookieSecure),
		identity.NewJWTInspector(),
		sessionCache,
		usecase.SessionConfig{
			RefreshMargin: cfg.Identity.RefreshMargin,
			CacheTTL:      cfg.Cache.TTL,
		},
		logger.WithComponent(log, "session"),
	)

	srv, err := server.New(cfg, log, server.Dependencies{
		Refresher: sessions,
		Health:    health,
	})
	if err != nil {
		return err
	}

	// Run blocks until shutdown signal is received
	return srv.Run()
}

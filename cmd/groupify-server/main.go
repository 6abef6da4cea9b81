package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"

	"github.com/go-redis/redis/v8"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/groupify/backend/pkg/ai"
	"github.com/groupify/backend/pkg/api"
	"github.com/groupify/backend/pkg/auth"
	"github.com/groupify/backend/pkg/chat"
	"github.com/groupify/backend/pkg/config"
	"github.com/groupify/backend/pkg/identity"
	"github.com/groupify/backend/pkg/observability"
	"github.com/groupify/backend/pkg/profile"
	"github.com/groupify/backend/pkg/storage"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel)
	log := logger.WithField("service", "groupify")

	shutdown := observability.NewShutdownManager(cfg.Server.ShutdownTimeout, log)

	// Blacklist store
	blacklist, healthDB, healthRedis, err := buildBlacklist(cfg, shutdown)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize blacklist store")
	}
	log.WithField("type", cfg.Blacklist.Type).Info("blacklist store ready")

	// Identity provider client
	provider, err := identity.NewClient(identity.Config{
		BaseURL:        cfg.Provider.URL,
		AnonKey:        cfg.Provider.AnonKey,
		ServiceRoleKey: cfg.Provider.ServiceRoleKey,
		Timeout:        cfg.Provider.Timeout,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to initialize identity provider client")
	}

	authenticator := auth.NewAuthenticator(provider, blacklist, cfg.Provider.Timeout, log)

	// AI assistant
	var generator chat.Generator
	if cfg.Ollama.Endpoint != "" {
		aiClient, err := ai.NewClient(ai.Config{
			Endpoint: cfg.Ollama.Endpoint,
			Model:    cfg.Ollama.DefaultModel,
			Timeout:  cfg.Ollama.Timeout,
		})
		if err != nil {
			log.WithError(err).Fatal("failed to initialize AI client")
		}
		generator = aiClient
	}

	var metrics *observability.Metrics
	if cfg.Observability.MetricsEnabled {
		metrics = observability.NewMetrics(nil)
	}

	server := api.NewServer(api.Options{
		Authenticator:    authenticator,
		Provider:         provider,
		Profiles:         profile.NewService(provider),
		Chats:            chat.NewService(provider, generator),
		Log:              log,
		Metrics:          metrics,
		CORSOrigins:      cfg.CORSOrigins,
		ResetRedirectURL: cfg.Provider.ResetRedirectURL,
		OAuthRedirectURL: cfg.Provider.OAuthRedirectURL,
		DefaultModel:     cfg.Ollama.DefaultModel,
	})

	apiServer := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      server.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Health and metrics on a separate listener for probes.
	healthMux := http.NewServeMux()
	healthMux.HandleFunc("/health", observability.NewHealthChecker(healthDB, healthRedis).Handler())
	if metrics != nil {
		healthMux.Handle("/metrics", metrics.Handler())
	}
	healthServer := &http.Server{
		Addr:    cfg.Server.Host + ":" + cfg.Server.HealthPort,
		Handler: healthMux,
	}

	shutdown.Register("api server", apiServer.Shutdown)
	shutdown.Register("health server", healthServer.Shutdown)

	var group errgroup.Group
	group.Go(func() error {
		log.WithField("addr", apiServer.Addr).Info("starting API server")
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		log.WithField("addr", healthServer.Addr).Info("starting health/metrics server")
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		shutdown.Wait()
		return nil
	})

	if err := group.Wait(); err != nil {
		log.WithError(err).Error("server exited with error")
		os.Exit(1)
	}
	log.Info("shutdown complete")
}

// buildBlacklist creates the configured blacklist store and registers its
// cleanup. The returned db/redis handles feed the health checker; either may
// be nil.
func buildBlacklist(cfg *config.Config, shutdown *observability.ShutdownManager) (auth.BlacklistStore, *sql.DB, *redis.Client, error) {
	switch cfg.Blacklist.Type {
	case "memory":
		return storage.NewMemoryBlacklist(), nil, nil, nil

	case "redis":
		store, err := storage.NewRedisBlacklist(storage.RedisConfig{
			URL:      cfg.Blacklist.RedisURL,
			Password: cfg.Blacklist.RedisPassword,
			DB:       cfg.Blacklist.RedisDB,
			TTL:      cfg.Blacklist.TTL,
		})
		if err != nil {
			return nil, nil, nil, err
		}
		shutdown.Register("redis blacklist", func(ctx context.Context) error {
			return store.Close()
		})
		return store, nil, store.Client(), nil

	case "postgres":
		store, err := storage.NewPostgresBlacklist(cfg.Blacklist.PostgresURL)
		if err != nil {
			return nil, nil, nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Provider.Timeout)
		defer cancel()
		if err := store.EnsureSchema(ctx); err != nil {
			return nil, nil, nil, err
		}
		shutdown.Register("postgres blacklist", func(ctx context.Context) error {
			return store.Close()
		})
		return store, store.DB(), nil, nil
	}
	return nil, nil, nil, errors.New("unknown blacklist type: " + cfg.Blacklist.Type)
}

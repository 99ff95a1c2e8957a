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

	"github.com/smartcampus/smartcampus/internal/api"
	"github.com/smartcampus/smartcampus/internal/api/uistatic"
	"github.com/smartcampus/smartcampus/internal/archive"
	"github.com/smartcampus/smartcampus/internal/assistant"
	"github.com/smartcampus/smartcampus/internal/auth"
	"github.com/smartcampus/smartcampus/internal/config"
	"github.com/smartcampus/smartcampus/internal/faq"
	"github.com/smartcampus/smartcampus/internal/nl2sql"
	"github.com/smartcampus/smartcampus/internal/observability"
	"github.com/smartcampus/smartcampus/internal/query/sqlexec"
	"github.com/smartcampus/smartcampus/internal/session"
	"github.com/smartcampus/smartcampus/internal/storage/s3"
	"github.com/smartcampus/smartcampus/internal/store/postgres"
)

func main() {
	cfg, err := config.LoadFromEnv("smartcampus-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)
	campusDB, err := postgres.Open(context.Background(), postgres.DBConfig{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Error("failed to open campus db", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = campusDB.Close() }()

	repo := postgres.NewRepository(campusDB)
	engine := sqlexec.NewEngine(campusDB)

	generator, err := nl2sql.NewOpenAIGenerator(nl2sql.OpenAIConfig{
		BaseURL:     cfg.AI.BaseURL,
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
		Timeout:     cfg.AI.Timeout,
		Referer:     cfg.AI.Referer,
		Title:       cfg.AI.Title,
	})
	if err != nil {
		logger.Error("failed to initialize generator", slog.Any("error", err))
		os.Exit(1)
	}

	retriever := faq.NewRetriever()
	loadCtx, cancelLoad := context.WithTimeout(context.Background(), 10*time.Second)
	loaded, err := retriever.LoadFrom(loadCtx, repo)
	cancelLoad()
	if err != nil {
		// The assistant still answers sql and chat routes without FAQs.
		logger.Warn("failed to load faqs", slog.Any("error", err))
	} else {
		logger.Info("faqs loaded", slog.Int("count", loaded))
	}

	readiness := []api.ReadinessCheck{repo.HealthCheck}
	var sessions session.Store
	switch cfg.Session.Backend {
	case config.SessionBackendRedis:
		redisStore, err := session.NewRedisStore(session.RedisConfig{
			Addr:      cfg.Session.RedisAddr,
			Password:  cfg.Session.RedisPassword,
			DB:        cfg.Session.RedisDB,
			KeyPrefix: cfg.Session.KeyPrefix,
			TTL:       cfg.Session.TTL,
		})
		if err != nil {
			logger.Error("failed to initialize redis session store", slog.Any("error", err))
			os.Exit(1)
		}
		defer func() { _ = redisStore.Close() }()
		sessions = redisStore
		readiness = append(readiness, redisStore.Ping)
	default:
		sessions = session.NewMemStore()
	}

	svc, err := assistant.NewService(assistant.Dependencies{
		Logger:       logger,
		Generator:    generator,
		Schema:       nl2sql.SchemaDescriber{Reader: repo},
		Engine:       engine,
		FAQ:          retriever,
		Sessions:     sessions,
		FAQTopK:      cfg.FAQ.TopK,
		ScopeBinding: cfg.SQL.ScopeBinding,
		Dialect:      nl2sql.DialectForDriver(cfg.Database.Driver),
	})
	if err != nil {
		logger.Error("failed to initialize assistant", slog.Any("error", err))
		os.Exit(1)
	}

	var archiver api.Archiver
	if cfg.Archive.Enabled {
		archiveCtx, cancelArchive := context.WithTimeout(context.Background(), 10*time.Second)
		bucket, err := s3.New(archiveCtx, cfg.Archive)
		cancelArchive()
		if err != nil {
			logger.Error("failed to initialize transcript archive", slog.Any("error", err))
			os.Exit(1)
		}
		archiveSvc, err := archive.NewService(sessions, bucket, logger)
		if err != nil {
			logger.Error("failed to initialize transcript archive", slog.Any("error", err))
			os.Exit(1)
		}
		archiver = archiveSvc
		readiness = append(readiness, bucket.Ping)
	}

	deps := api.Dependencies{
		Logger:            logger,
		Readiness:         api.CombineReadinessChecks(readiness...),
		DependencyTimeout: time.Second,
		Assistant:         svc,
		Sessions:          sessions,
		Authenticator:     auth.NewAuthenticator(repo),
		Dashboard:         postgres.NewDashboard(engine),
		Archiver:          archiver,
		UI:                uistatic.Handler(),
	}
	if cfg.Auth.Required {
		validator, err := auth.NewStaticAPIKeyValidator(cfg.Auth.StaticKeys)
		if err != nil {
			logger.Error("failed to parse static auth keys", slog.Any("error", err))
			os.Exit(1)
		}
		deps.AuthMiddleware = auth.Middleware(logger, validator)
	}

	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server",
			slog.String("addr", cfg.HTTP.Address),
			slog.String("db_driver", cfg.Database.Driver),
			slog.String("session_backend", cfg.Session.Backend),
			slog.Bool("archive_enabled", cfg.Archive.Enabled),
			slog.String("model", generator.Model()),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}

// Package main is the entry point for the School Merit Hub API server.
//
// The architecture follows Clean Architecture and DDD:
// - Domain: scoring, periods, rankings, users, audit
// - Application: command and query handlers
// - Infrastructure: PostgreSQL, Redis, in-process messaging, Excel export
// - Interface: HTTP API
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/thidua-hub/school-merit-hub/config"
	"github.com/thidua-hub/school-merit-hub/internal/application/command"
	"github.com/thidua-hub/school-merit-hub/internal/application/query"
	"github.com/thidua-hub/school-merit-hub/internal/domain/audit"
	"github.com/thidua-hub/school-merit-hub/internal/domain/period"
	"github.com/thidua-hub/school-merit-hub/internal/domain/ranking"
	"github.com/thidua-hub/school-merit-hub/internal/domain/scoring"
	"github.com/thidua-hub/school-merit-hub/internal/domain/user"
	"github.com/thidua-hub/school-merit-hub/internal/infrastructure/export"
	"github.com/thidua-hub/school-merit-hub/internal/infrastructure/messaging"
	"github.com/thidua-hub/school-merit-hub/internal/infrastructure/persistence/memory"
	"github.com/thidua-hub/school-merit-hub/internal/infrastructure/persistence/postgres"
	"github.com/thidua-hub/school-merit-hub/internal/infrastructure/persistence/redis"
	httpserver "github.com/thidua-hub/school-merit-hub/internal/interface/http"
	"github.com/thidua-hub/school-merit-hub/pkg/logger"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "fatal error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	// ─────────────────────────────────────────────────────────────────────────
	// 1. CONFIGURATION
	// ─────────────────────────────────────────────────────────────────────────
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 2. LOGGING
	// ─────────────────────────────────────────────────────────────────────────
	log := logger.New(logger.Options{
		Output:    os.Stdout,
		Level:     logger.ParseLevel(cfg.Observability.LogLevel),
		AddCaller: cfg.App.Debug,
	})
	log.Info("starting School Merit Hub",
		logger.String("env", string(cfg.App.Environment)),
		logger.String("version", cfg.App.Version),
		logger.Bool("debug", cfg.App.Debug),
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 3. STORAGE
	// Production runs on PostgreSQL; without DATABASE_URL the server falls
	// back to the seeded in-memory store for local development.
	// ─────────────────────────────────────────────────────────────────────────
	var (
		users      user.Repository
		periods    period.Repository
		settings   period.SettingsRepository
		classes    scoring.ClassRepository
		violations scoring.ViolationRepository
		entries    scoring.EntryRepository
		auditLog   audit.Repository
		atomic     command.Atomic
		snapshots  query.SnapshotReader
	)

	if cfg.Database.URL != "" {
		log.Info("connecting to database...")
		pgCfg := postgres.DefaultConfig()
		pgCfg.URL = cfg.Database.URL
		pgCfg.MaxConns = int32(cfg.Database.MaxOpenConns)
		pgCfg.MinConns = int32(cfg.Database.MaxIdleConns)
		pgCfg.MaxConnLifetime = cfg.Database.ConnMaxLifetime
		pgCfg.MaxConnIdleTime = cfg.Database.ConnMaxIdleTime

		conn, err := postgres.NewConnection(ctx, pgCfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer func() {
			log.Info("closing database connection...")
			conn.Close()
		}()

		log.Info("running database migrations...")
		migrator := postgres.NewMigrator(conn)
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}

		periodRepo := postgres.NewPeriodRepository(conn)
		scoringRepo := postgres.NewScoringRepository(conn)

		users = postgres.NewUserRepository(conn)
		periods = periodRepo
		settings = periodRepo
		classes = scoringRepo
		violations = scoringRepo
		entries = scoringRepo
		auditLog = postgres.NewAuditRepository(conn)
		atomic = conn
		snapshots = postgres.NewSnapshotReader(conn)
		log.Info("database connection established")
	} else {
		log.Warn("DATABASE_URL not set, using in-memory storage with seed data")
		store := memory.Fixture()
		users = store
		periods = store
		settings = store
		classes = store
		violations = store
		entries = store
		auditLog = store
		atomic = store
		snapshots = store
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 4. EVENT DISPATCHER
	// ─────────────────────────────────────────────────────────────────────────
	dispatcher := messaging.NewDispatcher(log)
	defer func() { _ = dispatcher.Close() }()

	// ─────────────────────────────────────────────────────────────────────────
	// 5. CACHE (optional)
	// ─────────────────────────────────────────────────────────────────────────
	var cache query.Cache = query.NewNoopCache()
	if !cfg.Redis.Disabled {
		log.Info("connecting to Redis...")
		redisCfg := redis.DefaultConfig()
		redisCfg.Host = cfg.Redis.Host
		redisCfg.Port = cfg.Redis.Port
		redisCfg.Password = cfg.Redis.Password
		redisCfg.DB = cfg.Redis.DB
		redisCfg.TTL = cfg.Redis.RankingsTTL

		rankingsCache, err := redis.NewRankingsCache(ctx, redisCfg)
		if err != nil {
			log.Warn("failed to connect to Redis, caching disabled", logger.Err(err))
		} else {
			defer func() { _ = rankingsCache.Close() }()
			cache = rankingsCache
			if err := messaging.RegisterCacheInvalidation(dispatcher, rankingsCache, log); err != nil {
				return fmt.Errorf("failed to register cache invalidation: %w", err)
			}
			log.Info("Redis connection established")
		}
	}

	// ─────────────────────────────────────────────────────────────────────────
	// 6. APPLICATION LAYER
	// ─────────────────────────────────────────────────────────────────────────
	resolver := period.NewResolver(periods)
	calculator := ranking.NewCalculator()

	authenticateCmd := command.NewAuthenticateHandler(users, log)
	createEntryCmd := command.NewCreateScoreEntryHandler(users, classes, violations, entries, auditLog, resolver, atomic, dispatcher, log)
	deleteEntryCmd := command.NewDeleteScoreEntryHandler(users, classes, entries, auditLog, resolver, atomic, dispatcher, log)
	setLockCmd := command.NewSetLockStatusHandler(users, periods, auditLog, atomic, dispatcher, log)
	overrideCoordinator := command.NewOverrideCoordinator(createEntryCmd, deleteEntryCmd, setLockCmd, log)
	catalogCmd := command.NewCatalogHandler(users, periods, settings, classes, violations, auditLog, atomic, log)
	userAdminCmd := command.NewUserAdminHandler(users, auditLog, atomic, log)

	rankingsQuery := query.NewGetRankingsHandler(snapshots, calculator, cache, log)
	statsQuery := query.NewGetViolationStatsHandler(snapshots, calculator, cache, log)
	auditQuery := query.NewGetAuditLogHandler(auditLog)
	exportQuery := query.NewExportReportHandler(
		rankingsQuery,
		statsQuery,
		auditQuery,
		export.NewExcelExporter(),
		cfg.Export.SheetName,
		cfg.Export.MaxRows,
	)

	// ─────────────────────────────────────────────────────────────────────────
	// 7. HTTP SERVER
	// ─────────────────────────────────────────────────────────────────────────
	serverCfg := httpserver.DefaultConfig()
	serverCfg.Host = cfg.HTTP.Host
	serverCfg.Port = cfg.HTTP.Port
	serverCfg.ReadTimeout = cfg.HTTP.ReadTimeout
	serverCfg.WriteTimeout = cfg.HTTP.WriteTimeout
	serverCfg.IdleTimeout = cfg.HTTP.IdleTimeout
	serverCfg.AllowedOrigins = cfg.HTTP.AllowedOrigins
	serverCfg.RateLimitPerMinute = cfg.HTTP.RateLimit

	server := httpserver.NewServer(serverCfg, httpserver.Dependencies{
		Authenticate: authenticateCmd,
		CreateEntry:  createEntryCmd,
		DeleteEntry:  deleteEntryCmd,
		SetLock:      setLockCmd,
		Override:     overrideCoordinator,
		Catalog:      catalogCmd,
		UserAdmin:    userAdminCmd,

		Rankings:       rankingsQuery,
		ViolationStats: statsQuery,
		AuditLog:       auditQuery,
		Export:         exportQuery,

		Periods:    periods,
		Settings:   settings,
		Classes:    classes,
		Violations: violations,
		Users:      users,

		Logger: log,
	})

	errCh := server.StartAsync()
	log.Info("HTTP server started", logger.String("address", serverCfg.Address()))

	// ─────────────────────────────────────────────────────────────────────────
	// 8. GRACEFUL SHUTDOWN
	// ─────────────────────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Info("shutdown signal received", logger.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.App.ShutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}

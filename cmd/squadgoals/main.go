package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	_ "github.com/lib/pq"

	"github.com/squagol/squadgoals/internal/core/config"
	"github.com/squagol/squadgoals/internal/core/storage/postgres"
	"github.com/squagol/squadgoals/internal/entries"
	"github.com/squagol/squadgoals/internal/goals"
	"github.com/squagol/squadgoals/internal/history"
	"github.com/squagol/squadgoals/internal/janitor"
	"github.com/squagol/squadgoals/internal/migrations"
	"github.com/squagol/squadgoals/internal/profile"
	"github.com/squagol/squadgoals/internal/server"
	"github.com/squagol/squadgoals/internal/squad"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	// 0. Initialize Logger
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// 1. Load Configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	// 2. Run Database Migrations
	// Migrations run on a short-lived pool so the adapter's schema check
	// below sees the migrated state.
	if err := runMigrations(cfg.Database.DSN, cfg.Database.AutoMigrate); err != nil {
		slog.Error("Failed to run database migrations", "error", err)
		os.Exit(1)
	}

	// 2.1. Initialize Storage (PostgreSQL)
	dbAdapter, err := postgres.NewAdapter(
		cfg.Database.DSN,
		cfg.Database.MaxOpenConns,
		cfg.Database.MaxIdleConns,
	)
	if err != nil {
		slog.Error("Failed to initialize database", "error", err)
		os.Exit(1)
	}
	defer dbAdapter.Close()

	// 3. Load Goal Templates
	templates, err := goals.NewFileSystemTemplateRepository(cfg.Templates.ConfigDir)
	if err != nil {
		slog.Error("Failed to load goal templates", "error", err, "dir", cfg.Templates.ConfigDir)
		os.Exit(1)
	}
	if cfg.Templates.Require && len(templates.List()) == 0 {
		slog.Error("No goal templates found but templates.require is set", "dir", cfg.Templates.ConfigDir)
		os.Exit(1)
	}
	slog.Info("Goal templates loaded", "count", len(templates.List()))

	// 4. Initialize Services
	squadSvc := squad.NewService(dbAdapter)
	goalsSvc := goals.NewService(dbAdapter, templates)
	entriesSvc := entries.NewService(dbAdapter, dbAdapter, cfg.Server.MaxBodySizeMB)
	historySvc := history.NewService(dbAdapter, dbAdapter, cfg.History.DefaultPageSize)
	profileSvc := profile.NewService(dbAdapter)

	// 5. Initialize Server and Routes
	identity := server.Identity(dbAdapter)
	member := squadSvc.RequireMember()
	admin := squadSvc.RequireAdmin()

	srv := server.New(fmtAddr(cfg.Server.Host, cfg.Server.Port), dbAdapter, cfg.Server.Mode)
	squadSvc.RegisterRoutes(srv.Engine, identity)
	profileSvc.RegisterRoutes(srv.Engine, identity)
	goalsSvc.RegisterRoutes(srv.Engine,
		gin.HandlersChain{identity, member},
		gin.HandlersChain{identity, admin},
	)
	entriesSvc.RegisterRoutes(srv.Engine, identity, member)
	historySvc.RegisterRoutes(srv.Engine, identity, member)

	// 6. Start Services
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Invite janitor runs in the background if enabled.
	if cfg.Janitor.Enabled {
		interval, err := time.ParseDuration(cfg.Janitor.EffectiveInterval())
		if err != nil {
			slog.Error("Invalid janitor interval", "value", cfg.Janitor.EffectiveInterval(), "error", err)
			os.Exit(1)
		}
		go func() {
			if err := janitor.NewScheduler(interval, dbAdapter).Start(ctx); err != nil {
				slog.Error("Janitor stopped with error", "error", err)
			}
		}()
	} else {
		slog.Info("Invite janitor disabled by config")
	}

	// Signal handler triggers the shutdown sequence below.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		slog.Info("Signal received, shutting down...")
		cancel()
	}()

	// HTTP server blocks until ctx is cancelled.
	if err := srv.Run(ctx); err != nil {
		slog.Error("Server stopped with error", "error", err)
	}

	slog.Info("Shutdown complete")
}

func runMigrations(dsn string, autoMigrate bool) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("failed to open migration connection: %w", err)
	}
	defer db.Close()
	return migrations.Run(db, autoMigrate)
}

func fmtAddr(host string, port int) string {
	return fmt.Sprintf("%s:%d", host, port)
}

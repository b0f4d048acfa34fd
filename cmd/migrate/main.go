// Package main is the database migration tool for School Merit Hub.
//
// Usage:
//
//	migrate up        apply all pending migrations
//	migrate rollback  roll back the most recent migration
//	migrate status    show which migrations are applied
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/thidua-hub/school-merit-hub/config"
	"github.com/thidua-hub/school-merit-hub/internal/infrastructure/persistence/postgres"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if len(os.Args) < 2 {
		usage()
		return fmt.Errorf("missing command")
	}
	cmd := os.Args[1]

	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	pgCfg := postgres.DefaultConfig()
	pgCfg.URL = cfg.Database.URL

	conn, err := postgres.NewConnection(ctx, pgCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close()

	migrator := postgres.NewMigrator(conn)

	switch cmd {
	case "up":
		if err := migrator.Migrate(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("migrations applied")
		return nil

	case "rollback":
		if err := migrator.Rollback(ctx); err != nil {
			return fmt.Errorf("rollback failed: %w", err)
		}
		fmt.Println("last migration rolled back")
		return nil

	case "status":
		status, err := migrator.Status(ctx)
		if err != nil {
			return fmt.Errorf("failed to read status: %w", err)
		}
		for _, m := range status {
			state := "pending"
			if m.IsApplied {
				state = "applied " + m.AppliedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Printf("%3d  %-40s %s\n", m.Version, m.Name, state)
		}
		return nil

	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: migrate <up|rollback|status>")
}

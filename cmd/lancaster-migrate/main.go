// Package main is the entry point for the Lancaster Identity database
// migration tool. It applies the embedded schema migrations for the
// configured backend (SQLite or PostgreSQL).
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog"

	"github.com/prn-tf/lancaster-identity/internal/config"
	"github.com/prn-tf/lancaster-identity/internal/repository/postgres"
	"github.com/prn-tf/lancaster-identity/internal/repository/sqlite"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// migrator is implemented by both database wrappers.
type migrator interface {
	Migrate(ctx context.Context) error
	MigrationVersion(ctx context.Context) (int, error)
	Close() error
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	var err error
	switch command {
	case "version":
		fmt.Printf("Lancaster Identity Migration Tool\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "up":
		err = runMigrate(os.Args[2:], func(ctx context.Context, db migrator) error {
			if err := db.Migrate(ctx); err != nil {
				return err
			}
			fmt.Println("Migrations applied")
			return nil
		})

	case "status":
		err = runMigrate(os.Args[2:], func(ctx context.Context, db migrator) error {
			version, err := db.MigrationVersion(ctx)
			if err != nil {
				return err
			}
			fmt.Printf("Current schema version: %d\n", version)
			return nil
		})

	case "help", "-h", "--help":
		printUsage()

	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runMigrate(args []string, fn func(ctx context.Context, db migrator) error) error {
	fs := flag.NewFlagSet("migrate", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	ctx := context.Background()

	var db migrator
	if cfg.Database.IsEmbedded() {
		sqliteDB, err := sqlite.NewDB(ctx, sqlite.DefaultConfig(cfg.Database.Path), logger)
		if err != nil {
			return err
		}
		db = sqliteDB
	} else {
		pgDB, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		db = pgDB
	}
	defer db.Close()

	return fn(ctx, db)
}

func printUsage() {
	fmt.Println(`Lancaster Identity Migration Tool

Usage:
  lancaster-migrate <command> [arguments]

Commands:
  up          Apply all pending migrations
  status      Show the current schema version
  version     Print version information
  help        Show this help message

Examples:
  lancaster-migrate up -config configs/config.yaml
  lancaster-migrate status`)
}

// Package main is the entry point for the Lancaster Identity admin CLI.
// This tool provides administrative commands for managing user accounts
// directly against the configured database, bypassing the HTTP API.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/rs/zerolog"

	"github.com/prn-tf/lancaster-identity/internal/config"
	"github.com/prn-tf/lancaster-identity/internal/repository"
	"github.com/prn-tf/lancaster-identity/internal/repository/postgres"
	"github.com/prn-tf/lancaster-identity/internal/repository/sqlite"
	"github.com/prn-tf/lancaster-identity/internal/service"
	"github.com/prn-tf/lancaster-identity/internal/session"
)

// Version information (set at build time)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]

	var err error
	switch command {
	case "version":
		fmt.Printf("Lancaster Identity Admin CLI\n")
		fmt.Printf("Version: %s\n", Version)
		fmt.Printf("Build Time: %s\n", BuildTime)
		fmt.Printf("Git Commit: %s\n", GitCommit)

	case "user":
		err = runUserCommand(os.Args[2:])

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

func runUserCommand(args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("missing user subcommand (create, list, delete)")
	}

	switch args[0] {
	case "create":
		return runUserCreate(args[1:])
	case "list":
		return runUserList(args[1:])
	case "delete":
		return runUserDelete(args[1:])
	default:
		return fmt.Errorf("unknown user subcommand: %s", args[0])
	}
}

func runUserCreate(args []string) error {
	fs := flag.NewFlagSet("user create", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	name := fs.String("name", "", "display name (required)")
	email := fs.String("email", "", "email address (required)")
	username := fs.String("username", "", "unique handle (optional)")
	password := fs.String("password", "", "password (required, min 8 characters)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	userService, cleanup, err := buildUserService(ctx, *configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	user, err := userService.Create(ctx, service.CreateUserInput{
		Name:     *name,
		Email:    *email,
		Username: *username,
		Password: *password,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Created user %d (%s)\n", user.ID, user.Email)
	return nil
}

func runUserList(args []string) error {
	fs := flag.NewFlagSet("user list", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	userService, cleanup, err := buildUserService(ctx, *configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	users, err := userService.List(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tEMAIL\tUSERNAME\tCREATED")
	for _, u := range users {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", u.ID, u.Name, u.Email, u.Username, u.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return w.Flush()
}

func runUserDelete(args []string) error {
	fs := flag.NewFlagSet("user delete", flag.ExitOnError)
	configPath := fs.String("config", "", "path to config file")
	id := fs.Int64("id", 0, "user ID (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == 0 {
		return fmt.Errorf("-id is required")
	}

	ctx := context.Background()
	userService, cleanup, err := buildUserService(ctx, *configPath)
	if err != nil {
		return err
	}
	defer cleanup()

	user, err := userService.Delete(ctx, *id)
	if err != nil {
		return err
	}

	fmt.Printf("User '%s' has been deleted\n", user.Name)
	return nil
}

// buildUserService opens the configured database and wires a UserService.
// Sessions are in-memory: the CLI never establishes sessions, and user
// deletion only needs a store to revoke against.
func buildUserService(ctx context.Context, configPath string) (*service.UserService, func(), error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := zerolog.New(os.Stderr).Level(zerolog.WarnLevel).With().Timestamp().Logger()

	var userRepo repository.UserRepository
	var cleanup func()

	if cfg.Database.IsEmbedded() {
		db, err := sqlite.NewDB(ctx, sqlite.Config{
			Path:            cfg.Database.Path,
			MaxOpenConns:    1,
			MaxIdleConns:    1,
			ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
			JournalMode:     cfg.Database.JournalMode,
			BusyTimeout:     cfg.Database.BusyTimeout,
			SynchronousMode: cfg.Database.SynchronousMode,
		}, logger)
		if err != nil {
			return nil, nil, err
		}
		if err := db.Migrate(ctx); err != nil {
			db.Close()
			return nil, nil, err
		}
		userRepo = sqlite.NewUserRepository(db)
		cleanup = func() { _ = db.Close() }
	} else {
		db, err := postgres.NewDB(ctx, cfg.Database, logger)
		if err != nil {
			return nil, nil, err
		}
		userRepo = postgres.NewUserRepository(db)
		cleanup = func() { _ = db.Close() }
	}

	return service.NewUserService(userRepo, session.NewMemoryStore(), logger), cleanup, nil
}

func printUsage() {
	fmt.Println(`Lancaster Identity Admin CLI

Usage:
  lancaster-admin <command> [arguments]

Commands:
  user        Manage users (create, list, delete)
  version     Print version information
  help        Show this help message

Examples:
  lancaster-admin user create -name "Ana" -email ana@example.com -username ana -password secret123
  lancaster-admin user list
  lancaster-admin user delete -id 42

Use "lancaster-admin user <subcommand> -h" for flag details.`)
}

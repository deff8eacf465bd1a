package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/frontdesk/backend/internal/infrastructure/config"
	"github.com/frontdesk/backend/internal/infrastructure/logger"
	"github.com/frontdesk/backend/internal/infrastructure/migration"
	"github.com/frontdesk/backend/migrations"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const defaultMigrationsPath = "migrations"

func main() {
	var (
		migrationsPath string
		logLevel       string
	)

	flag.StringVar(&migrationsPath, "path", "", "Read migrations from a directory instead of the embedded set")
	flag.StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(1)
	}
	command := args[0]

	logCfg := logger.DefaultConfig()
	logCfg.Level = logLevel
	logCfg.TimeFormat = "2006-01-02 15:04:05"
	log, err := logger.New(logCfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = log.Sync()
	}()

	// create and list work on a directory and need no database
	switch command {
	case "create":
		if len(args) < 2 {
			log.Fatal("Migration name required. Usage: migrate create <name> [description]")
		}
		description := ""
		if len(args) > 2 {
			description = args[2]
		}
		mf, err := migration.CreateMigration(dirOrDefault(migrationsPath), args[1], description)
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created",
			zap.Uint("version", mf.Version),
			zap.String("up_file", mf.UpPath),
			zap.String("down_file", mf.DownPath),
		)
		return

	case "list":
		files, err := migration.ListMigrations(dirOrDefault(migrationsPath))
		if err != nil {
			log.Fatal("Failed to list migrations", zap.Error(err))
		}
		if len(files) == 0 {
			log.Info("No migrations found")
			return
		}
		for _, mf := range files {
			fmt.Printf("  %06d  %s\n", mf.Version, mf.Name)
		}
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}
	if cfg.Database.Driver != "postgres" {
		log.Fatal("SQL migrations target postgres only", zap.String("driver", cfg.Database.Driver))
	}

	m, err := openMigrator(cfg, migrationsPath, log)
	if err != nil {
		log.Fatal("Failed to create migrator", zap.Error(err))
	}
	defer func() {
		if err := m.Close(); err != nil {
			log.Warn("Failed to close migrator", zap.Error(err))
		}
	}()

	log.Info("Migration CLI started", zap.String("command", command))

	switch command {
	case "up":
		if err := m.Up(); err != nil {
			log.Fatal("Migration up failed", zap.Error(err))
		}

	case "down":
		if err := m.Down(); err != nil {
			log.Fatal("Migration down failed", zap.Error(err))
		}

	case "step":
		if len(args) < 2 {
			log.Fatal("Step count required. Usage: migrate step <n>")
		}
		n, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("Invalid step count", zap.String("value", args[1]))
		}
		if err := m.Steps(n); err != nil {
			log.Fatal("Migration step failed", zap.Error(err))
		}

	case "goto":
		if len(args) < 2 {
			log.Fatal("Version required. Usage: migrate goto <version>")
		}
		version, err := strconv.ParseUint(args[1], 10, 32)
		if err != nil {
			log.Fatal("Invalid version number", zap.String("value", args[1]))
		}
		if err := m.GoTo(uint(version)); err != nil {
			log.Fatal("Migration goto failed", zap.Error(err))
		}

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			log.Fatal("Failed to get version", zap.Error(err))
		}
		if version == 0 {
			log.Info("No migrations applied")
		} else {
			log.Info("Current migration version",
				zap.Uint("version", version),
				zap.Bool("dirty", dirty),
			)
		}

	case "force":
		if len(args) < 2 {
			log.Fatal("Version required. Usage: migrate force <version>")
		}
		version, err := strconv.Atoi(args[1])
		if err != nil {
			log.Fatal("Invalid version number", zap.String("value", args[1]))
		}
		if err := m.Force(version); err != nil {
			log.Fatal("Force version failed", zap.Error(err))
		}

	default:
		log.Error("Unknown command", zap.String("command", command))
		printUsage()
		os.Exit(1)
	}
}

// openMigrator uses the embedded migrations unless a directory was given
func openMigrator(cfg *config.Config, path string, log *zap.Logger) (*migration.Migrator, error) {
	if path != "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			return nil, err
		}
		return migration.NewFromURL(cfg.Database.DSN(), abs, log)
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	m, err := migration.NewEmbedded(db, migrations.FS, log)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return m, nil
}

func dirOrDefault(path string) string {
	if path == "" {
		return defaultMigrationsPath
	}
	return path
}

func printUsage() {
	fmt.Println(`Front desk database migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up                    Apply all pending migrations
  down                  Roll back all migrations
  step <n>              Apply n migrations (positive=up, negative=down)
  goto <version>        Migrate to a specific version
  version               Show current migration version
  force <version>       Force set migration version (use with caution)
  create <name> [desc]  Create a new migration file pair
  list                  List migrations in the directory

Flags:
  -path string          Migrations directory (default: embedded set; ./migrations for create/list)
  -log-level string     Log level: debug, info, warn, error (default: info)

Environment Variables:
  FRONTDESK_DATABASE_HOST, FRONTDESK_DATABASE_PORT, FRONTDESK_DATABASE_USER,
  FRONTDESK_DATABASE_PASSWORD, FRONTDESK_DATABASE_DBNAME, FRONTDESK_DATABASE_SSLMODE

Examples:
  migrate up
  migrate step -1
  migrate create add_room_notes "Add notes column to rooms"`)
}

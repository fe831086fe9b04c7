package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"

	"github.com/glimrhq/glimr/internal/config"
	"github.com/glimrhq/glimr/internal/database"
	"github.com/glimrhq/glimr/internal/migrate"
	"github.com/glimrhq/glimr/internal/utils"
)

const version = "v0.1.0"

func main() {
	// Parse command line flags
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to configuration file")
	flag.Usage = printUsage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		printUsage()
		os.Exit(2)
	}

	// Load configuration
	cfg, err := loadConfiguration(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Set up logging
	logger := setupLogging(cfg)
	logger.Debug().Str("version", version).Msg("Starting glimr")

	// Connect to database
	db, err := connectToDatabase(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error().Err(err).Msg("Failed to close database connection")
		}
	}()

	runner := migrate.NewRunner(db.Executor(), cfg.Migrations.Dir, logger)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := runCommand(ctx, runner, args, logger); err != nil {
		logger.Fatal().Err(err).Msg("Command failed")
	}
}

// runCommand dispatches one CLI verb against the migration runner.
func runCommand(ctx context.Context, runner *migrate.Runner, args []string, logger zerolog.Logger) error {
	switch args[0] {
	case "migrate":
		applied, err := runner.Migrate(ctx)
		if err != nil {
			return err
		}
		if len(applied) == 0 {
			logger.Info().Msg("Database is up to date")
			return nil
		}
		logger.Info().
			Int("count", len(applied)).
			Strs("versions", applied).
			Msg("Migrations applied")
		return nil

	case "status":
		statuses, err := runner.Status(ctx)
		if err != nil {
			return err
		}
		printStatus(statuses)
		return nil

	case "rollback":
		if len(args) < 2 {
			return fmt.Errorf("rollback requires a version argument")
		}
		return runner.Rollback(ctx, args[1])

	default:
		printUsage()
		return fmt.Errorf("unknown command: %s", args[0])
	}
}

// printStatus writes a human readable migration listing to stdout.
func printStatus(statuses []migrate.Status) {
	if len(statuses) == 0 {
		fmt.Println("No migrations found")
		return
	}
	for _, s := range statuses {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		fmt.Printf("%s  %-8s %s\n", s.Version, state, s.Name)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, "Usage: glimr [-config path] <command>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  migrate             Apply pending migrations")
	fmt.Fprintln(os.Stderr, "  status              Show the state of every migration file")
	fmt.Fprintln(os.Stderr, "  rollback <version>  Forget an applied version without reversing its DDL")
}

// loadConfiguration loads the application configuration
func loadConfiguration(configPath string) (*config.Config, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		// If we can't load config, try with defaults
		cfg = config.NewDefault()

		// Validate the default configuration
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// setupLogging configures the application logger
func setupLogging(cfg *config.Config) zerolog.Logger {
	logConfig := utils.LoggerConfig{
		Level:      cfg.Server.LogLevel,
		Pretty:     true,
		CallerInfo: cfg.Server.Debug,
		LogFile:    os.Getenv("LOG_FILE"),
	}

	// Set up global logger
	utils.SetupGlobalLogger(logConfig)

	// Create and return logger for main
	return utils.NewLogger(logConfig)
}

// connectToDatabase establishes the database connection
func connectToDatabase(cfg *config.Config, logger zerolog.Logger) (*database.Database, error) {
	logger.Debug().Str("driver", cfg.Database.Driver).Msg("Connecting to database")

	// Convert config to map for database package
	dbConfig := cfg.DatabaseMap()
	dbConfig["log_level"] = "silent" // GORM output would interleave with CLI output

	db := database.NewDatabase(dbConfig)

	// Connect with retries
	if err := db.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection health
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.Health(ctx); err != nil {
		return nil, fmt.Errorf("database health check failed: %w", err)
	}

	event := logger.Debug().Str("driver", cfg.Database.Driver)
	if cfg.Driver() == database.Sqlite {
		event = event.Str("path", cfg.Database.Path)
	} else {
		event = event.Str("host", cfg.Database.Host).Str("database", cfg.Database.DBName)
	}
	event.Msg("Connected to database")

	return db, nil
}

package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/craveless/lesscoach/internal/api"
	"github.com/craveless/lesscoach/internal/coach"
	"github.com/craveless/lesscoach/internal/genai"
	"github.com/craveless/lesscoach/internal/store"
	"github.com/craveless/lesscoach/internal/util"
)

// Default configuration constants
const (
	// DefaultStateDir is the default directory for lesscoach state data
	DefaultStateDir = "/var/lib/lesscoach"
	// DefaultDBFileName is the default SQLite database filename
	DefaultDBFileName = "lesscoach.db"
)

// Config holds environment configuration
type Config struct {
	DBDriver  string
	DBDSN     string
	StateDir  string
	OpenAIKey string
	APIAddr   string
}

func main() {
	initializeLogger()

	config := loadEnvironmentConfig()

	dbDriver := flag.String("db-driver", config.DBDriver, "database driver: sqlite3 or postgres (overrides $LESSCOACH_DB_DRIVER)")
	dbDSN := flag.String("db-dsn", config.DBDSN, "database DSN (overrides $LESSCOACH_DB_DSN or $DATABASE_URL)")
	stateDir := flag.String("state-dir", config.StateDir, "state directory for lesscoach data (overrides $LESSCOACH_STATE_DIR)")
	openaiKey := flag.String("openai-api-key", config.OpenAIKey, "OpenAI API key (overrides $OPENAI_API_KEY)")
	apiAddr := flag.String("api-addr", config.APIAddr, "API server address (overrides $API_ADDR)")
	flag.Parse()

	st, err := openStore(*dbDriver, *dbDSN, *stateDir)
	if err != nil {
		slog.Error("Failed to initialize store", "error", err)
		os.Exit(1)
	}
	defer st.Close()

	if *openaiKey == "" {
		slog.Error("OpenAI API key not configured")
		os.Exit(1)
	}
	genaiClient := genai.NewClientWithKey(*openaiKey)
	coachSvc := coach.NewService(genaiClient)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(st, coachSvc)
	slog.Info("Bootstrapping lesscoach", "db_driver", *dbDriver, "api_addr", *apiAddr)
	if err := server.Run(ctx, *apiAddr); err != nil {
		slog.Error("lesscoach failed to run", "error", err)
		os.Exit(1)
	}
	slog.Info("lesscoach exited successfully")
}

// initializeLogger sets up structured logging; debug level when
// LESSCOACH_DEBUG is enabled.
func initializeLogger() {
	level := slog.LevelInfo
	if util.ParseBoolEnv("LESSCOACH_DEBUG", false) {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

// loadEnvironmentConfig loads configuration from environment variables and .env file
func loadEnvironmentConfig() Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("failed to load .env file", "error", err)
	}
	cfg := Config{
		DBDriver:  os.Getenv("LESSCOACH_DB_DRIVER"),
		DBDSN:     os.Getenv("LESSCOACH_DB_DSN"),
		StateDir:  os.Getenv("LESSCOACH_STATE_DIR"),
		OpenAIKey: os.Getenv("OPENAI_API_KEY"),
		APIAddr:   os.Getenv("API_ADDR"),
	}
	if cfg.DBDSN == "" {
		cfg.DBDSN = os.Getenv("DATABASE_URL")
	}
	if cfg.StateDir == "" {
		cfg.StateDir = DefaultStateDir
	}
	return cfg
}

// openStore selects a storage backend from the configured driver and DSN.
// With no driver configured, a postgres:// DSN selects Postgres and
// anything else falls back to a SQLite file under the state directory.
func openStore(driver, dsn, stateDir string) (store.Store, error) {
	switch {
	case driver == "postgres" || (driver == "" && strings.HasPrefix(dsn, "postgres")):
		return store.NewPostgresStore(store.WithDSN(dsn))
	default:
		if dsn == "" {
			dsn = filepath.Join(stateDir, DefaultDBFileName)
		}
		return store.NewSQLiteStore(store.WithDSN(dsn))
	}
}

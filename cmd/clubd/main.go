package main

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/MarkoPoloResearchLab/clubdesk/internal/auth"
	"github.com/MarkoPoloResearchLab/clubdesk/internal/events"
	"github.com/MarkoPoloResearchLab/clubdesk/internal/httpserver"
	"github.com/MarkoPoloResearchLab/clubdesk/internal/oplog"
	"github.com/MarkoPoloResearchLab/clubdesk/internal/seed"
	"github.com/MarkoPoloResearchLab/clubdesk/internal/store/gormstore"
	"github.com/MarkoPoloResearchLab/clubdesk/pkg/club"
)

const (
	flagDatabaseURL    = "database-url"
	flagListenAddr     = "listen-addr"
	flagSigningKey     = "signing-key"
	flagTokenTTL       = "token-ttl"
	flagAllowedOrigins = "allowed-origins"
	flagAMQPURL        = "amqp-url"
	flagSkipSeed       = "skip-seed"

	configKeyDatabaseURL    = "database_url"
	configKeyListenAddr     = "listen_addr"
	configKeySigningKey     = "signing_key"
	configKeyTokenTTL       = "token_ttl"
	configKeyAllowedOrigins = "allowed_origins"
	configKeyAMQPURL        = "amqp_url"
	configKeySkipSeed       = "skip_seed"

	// The in-memory default mirrors the demo behavior: all state resets on
	// restart.
	defaultDatabaseURL = "sqlite://:memory:"
	defaultListenAddr  = ":8080"
	defaultSigningKey  = "clubdesk-dev-key"
	defaultTokenTTL    = 12 * time.Hour
)

type runtimeConfig struct {
	DatabaseURL    string
	ListenAddr     string
	SigningKey     string
	TokenTTL       time.Duration
	AllowedOrigins string
	AMQPURL        string
	SkipSeed       bool
}

func main() {
	cmd := newRootCommand()
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "clubd: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	cfg := &runtimeConfig{}
	cmd := &cobra.Command{
		Use:           "clubd",
		Short:         "KTV club booking and customer management server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd, cfg)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runServer(ctx, cfg)
		},
	}

	cmd.Flags().String(flagDatabaseURL, defaultDatabaseURL, "database connection string (sqlite:// or postgres://)")
	cmd.Flags().String(flagListenAddr, defaultListenAddr, "HTTP listen address")
	cmd.Flags().String(flagSigningKey, defaultSigningKey, "session token signing key")
	cmd.Flags().Duration(flagTokenTTL, defaultTokenTTL, "session token lifetime")
	cmd.Flags().String(flagAllowedOrigins, "", "comma-delimited CORS origins")
	cmd.Flags().String(flagAMQPURL, "", "RabbitMQ URL for operation events (empty disables publishing)")
	cmd.Flags().Bool(flagSkipSeed, false, "skip loading the demo fixture data")

	return cmd
}

func loadConfig(cmd *cobra.Command, cfg *runtimeConfig) error {
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	bindings := map[string]string{
		configKeyDatabaseURL:    "DATABASE_URL",
		configKeyListenAddr:     "LISTEN_ADDR",
		configKeySigningKey:     "SIGNING_KEY",
		configKeyTokenTTL:       "TOKEN_TTL",
		configKeyAllowedOrigins: "ALLOWED_ORIGINS",
		configKeyAMQPURL:        "AMQP_URL",
		configKeySkipSeed:       "SKIP_SEED",
	}
	for configKey, envName := range bindings {
		if err := viper.BindEnv(configKey, envName); err != nil {
			return err
		}
	}

	flagsByKey := map[string]string{
		configKeyDatabaseURL:    flagDatabaseURL,
		configKeyListenAddr:     flagListenAddr,
		configKeySigningKey:     flagSigningKey,
		configKeyTokenTTL:       flagTokenTTL,
		configKeyAllowedOrigins: flagAllowedOrigins,
		configKeyAMQPURL:        flagAMQPURL,
		configKeySkipSeed:       flagSkipSeed,
	}
	for configKey, flagName := range flagsByKey {
		if err := viper.BindPFlag(configKey, cmd.Flags().Lookup(flagName)); err != nil {
			return err
		}
	}

	cfg.DatabaseURL = viper.GetString(configKeyDatabaseURL)
	cfg.ListenAddr = viper.GetString(configKeyListenAddr)
	cfg.SigningKey = viper.GetString(configKeySigningKey)
	cfg.TokenTTL = viper.GetDuration(configKeyTokenTTL)
	cfg.AllowedOrigins = viper.GetString(configKeyAllowedOrigins)
	cfg.AMQPURL = viper.GetString(configKeyAMQPURL)
	cfg.SkipSeed = viper.GetBool(configKeySkipSeed)

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = defaultDatabaseURL
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}
	if cfg.SigningKey == "" {
		return fmt.Errorf("signing key is required")
	}
	return nil
}

func runServer(ctx context.Context, cfg *runtimeConfig) error {
	logger, err := zap.NewProduction()
	if err != nil {
		return fmt.Errorf("logger init: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	gormDB, cleanup, driver, err := openDatabase(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database open: %w", err)
	}
	defer func() { _ = cleanup() }()

	store := gormstore.New(gormDB)
	if driver == "sqlite" {
		if err := store.Migrate(); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
	}
	if !cfg.SkipSeed {
		if err := seed.Apply(ctx, store, logger); err != nil {
			return fmt.Errorf("seed: %w", err)
		}
	}

	operationLoggers := []club.OperationLogger{oplog.NewZapLogger(logger)}
	if cfg.AMQPURL != "" {
		publisher, err := events.NewPublisher(cfg.AMQPURL, logger)
		if err != nil {
			return fmt.Errorf("events publisher: %w", err)
		}
		defer publisher.Close()
		operationLoggers = append(operationLoggers, publisher)
	}

	clock := func() int64 { return time.Now().UTC().Unix() }
	clubService, err := club.NewService(store, clock, club.WithOperationLogger(oplog.Tee(operationLoggers...)))
	if err != nil {
		return fmt.Errorf("club service init: %w", err)
	}

	sessions, err := auth.NewSessions(store, auth.Config{
		SigningKey: []byte(cfg.SigningKey),
		Issuer:     "clubdesk",
		TokenTTL:   cfg.TokenTTL,
	})
	if err != nil {
		return fmt.Errorf("sessions init: %w", err)
	}

	server, err := httpserver.New(httpserver.Config{
		ListenAddr:        cfg.ListenAddr,
		AllowedOrigins:    httpserver.ParseAllowedOrigins(cfg.AllowedOrigins),
		SessionSigningKey: cfg.SigningKey,
		TokenTTL:          cfg.TokenTTL,
	}, clubService, sessions, logger)
	if err != nil {
		return fmt.Errorf("http server init: %w", err)
	}
	return server.Run(ctx)
}

func openDatabase(ctx context.Context, dsn string) (*gorm.DB, func() error, string, error) {
	driver, sqlitePath, err := resolveDriver(dsn)
	if err != nil {
		return nil, nil, "", err
	}

	var db *gorm.DB
	gormConfig := &gorm.Config{}
	switch driver {
	case "postgres":
		db, err = gorm.Open(postgres.Open(dsn), gormConfig)
	case "sqlite":
		db, err = gorm.Open(sqlite.Open(sqlitePath), gormConfig)
	default:
		return nil, nil, "", fmt.Errorf("unsupported database scheme %q", driver)
	}
	if err != nil {
		return nil, nil, "", err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, "", err
	}
	if driver == "sqlite" && sqlitePath == ":memory:" {
		// A pooled in-memory sqlite hands each connection its own empty
		// database; pin the pool to one connection.
		sqlDB.SetMaxOpenConns(1)
	}
	cleanup := func() error { return sqlDB.Close() }
	return db.WithContext(ctx), cleanup, driver, nil
}

func resolveDriver(dsn string) (string, string, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		return "postgres", "", nil
	}
	if strings.HasPrefix(dsn, "sqlite://") {
		if strings.TrimPrefix(dsn, "sqlite://") == ":memory:" {
			return "sqlite", ":memory:", nil
		}
		u, err := url.Parse(dsn)
		if err != nil {
			return "", "", fmt.Errorf("parse sqlite url: %w", err)
		}
		path := u.Path
		if path == "" {
			path = u.Host
		}
		if path == "" || path == "/" {
			path = "clubdesk.db"
		}
		sqlitePath, err := normalizeSQLitePath(path)
		return "sqlite", sqlitePath, err
	}
	// Treat everything else as a direct sqlite path.
	sqlitePath, err := normalizeSQLitePath(dsn)
	return "sqlite", sqlitePath, err
}

func normalizeSQLitePath(path string) (string, error) {
	if path == ":memory:" {
		return path, nil
	}
	if strings.HasPrefix(path, "/") {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return "", err
		}
		return path, nil
	}
	abs := filepath.Join(".", path)
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return "", err
	}
	return abs, nil
}

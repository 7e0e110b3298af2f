// Command reflect-server serves the Reflect HTTP API.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/TariqKichawele/Reflect/internal/auth"
	"github.com/TariqKichawele/Reflect/internal/config"
	"github.com/TariqKichawele/Reflect/internal/image"
	"github.com/TariqKichawele/Reflect/internal/invalidate"
	"github.com/TariqKichawele/Reflect/internal/limiter"
	"github.com/TariqKichawele/Reflect/internal/migrate"
	"github.com/TariqKichawele/Reflect/internal/quote"
	"github.com/TariqKichawele/Reflect/internal/repository/postgres"
	httpserver "github.com/TariqKichawele/Reflect/internal/server/http"
	"github.com/TariqKichawele/Reflect/internal/service"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "reflect-server",
	Short: "Reflect journaling API server",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
		cfg = c
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error { return serve() },
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database migrations and exit",
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Database.DSN == "" {
			return errors.New("database.dsn is required")
		}
		logger, _ := zap.NewProduction()
		defer func() { _ = logger.Sync() }()
		return migrate.Up(cmd.Context(), cfg.Database.DSN, logger)
	},
}

var (
	tokenSubject string
	tokenEmail   string
	tokenName    string
)

// tokenCmd mints a development token signed with auth.hs256_secret.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a development access token",
	Example: `  reflect-server token --sub user_123 --email me@example.com
  reflect login --token "$(reflect-server token --sub user_123)"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Auth.HS256Secret == "" {
			return errors.New("auth.hs256_secret is required to issue tokens")
		}
		if tokenSubject == "" {
			return errors.New("need --sub")
		}
		iss := auth.NewIssuer([]byte(cfg.Auth.HS256Secret), cfg.Auth.Issuer, cfg.Auth.DevTokenTTL)
		tok, exp, err := iss.Issue(auth.Identity{Subject: tokenSubject, Email: tokenEmail, Name: tokenName})
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", exp.UTC().Format(time.RFC3339))
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "reflect-server %s (%s)\n", version, buildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	tokenCmd.Flags().StringVar(&tokenSubject, "sub", "", "subject (external user id)")
	tokenCmd.Flags().StringVar(&tokenEmail, "email", "", "email claim")
	tokenCmd.Flags().StringVar(&tokenName, "name", "", "name claim")
	rootCmd.AddCommand(migrateCmd, tokenCmd, versionCmd)
	rootCmd.SilenceUsage = true
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newVerifier() (*auth.Verifier, error) {
	if cfg.Auth.RS256PublicKeyFile != "" {
		pem, err := os.ReadFile(cfg.Auth.RS256PublicKeyFile)
		if err != nil {
			return nil, fmt.Errorf("read public key: %w", err)
		}
		return auth.NewRS256(pem, cfg.Auth.Issuer)
	}
	return auth.NewHS256([]byte(cfg.Auth.HS256Secret), cfg.Auth.Issuer), nil
}

func newRedis() (*redis.Client, error) {
	if cfg.Redis.URL == "" {
		return nil, nil
	}
	opts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return nil, fmt.Errorf("redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

// serve parses configuration, runs migrations, and starts the HTTP server.
func serve() error {
	if err := cfg.ValidateServer(); err != nil {
		return err
	}

	logger, _ := zap.NewProduction()
	defer func() { _ = logger.Sync() }()
	logger.Info("starting",
		zap.String("version", version),
		zap.String("buildDate", buildDate),
		zap.String("addr", cfg.HTTP.Addr),
	)

	verifier, err := newVerifier()
	if err != nil {
		logger.Fatal("auth verifier", zap.Error(err))
	}

	// Context with OS signals
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := migrate.Up(ctx, cfg.Database.DSN, logger); err != nil {
		logger.Fatal("migrate up", zap.Error(err))
	}

	pool, err := pgxpool.New(ctx, cfg.Database.DSN)
	if err != nil {
		logger.Fatal("pgxpool.New", zap.Error(err))
	}
	defer pool.Close()

	rdb, err := newRedis()
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	if rdb != nil {
		defer func() { _ = rdb.Close() }()
	}

	// Repositories
	db := &postgres.DB{Pool: pool}
	userRepo := postgres.NewUserRepo(db)
	collectionRepo := postgres.NewCollectionRepo(db)
	entryRepo := postgres.NewEntryRepo(db)
	draftRepo := postgres.NewDraftRepo(db)

	policy := limiter.Policy{
		Window:     cfg.Limiter.Window,
		Max:        cfg.Limiter.Max,
		BlockAfter: cfg.Limiter.BlockAfter,
		BlockFor:   cfg.Limiter.BlockFor,
	}
	var lim limiter.Limiter = limiter.NewPG(pool, policy)
	if cfg.Limiter.Backend == "redis" {
		lim = limiter.NewRedis(rdb, policy)
	}

	var inv invalidate.Invalidator = invalidate.NewLog(logger)
	if rdb != nil {
		inv = invalidate.Multi{inv, invalidate.NewRedis(rdb, cfg.Invalidate.Channel)}
	}

	hc := &http.Client{Timeout: 10 * time.Second}
	images := image.NewPixabay(cfg.Pixabay.BaseURL, cfg.Pixabay.APIKey, hc)
	quotes := quote.NewProvider(quote.NewAdviceSlip(cfg.Quote.URL, hc), cfg.Quote.TTL, logger)

	// Services
	guard := service.NewGuard(userRepo, lim, logger)
	journalSvc := service.NewJournalService(guard, entryRepo, draftRepo, collectionRepo, images, inv, logger)
	collectionSvc := service.NewCollectionService(guard, collectionRepo, inv, logger)
	userSvc := service.NewUserService(guard, userRepo, logger)

	app := httpserver.New(journalSvc, collectionSvc, userSvc, quotes, verifier, cfg.CORS.AllowedOrigins, logger)
	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           app.Routes(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.HTTP.Addr))
		errCh <- srv.ListenAndServe()
	}()

	// Wait for stop
	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("graceful shutdown timed out", zap.Error(err))
			_ = srv.Close()
		}
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			return err
		}
	}

	logger.Info("shutdown complete")
	return nil
}

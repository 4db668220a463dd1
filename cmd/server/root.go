package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"

	"github.com/iliyamo/leisure-tvshows/internal/config"
	"github.com/iliyamo/leisure-tvshows/internal/database"
	"github.com/iliyamo/leisure-tvshows/internal/handler"
	"github.com/iliyamo/leisure-tvshows/internal/logger"
	"github.com/iliyamo/leisure-tvshows/internal/middleware"
	"github.com/iliyamo/leisure-tvshows/internal/router"
	"github.com/iliyamo/leisure-tvshows/internal/view"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tvshows [port]",
	Short: "Browse the leisure.tv_shows table over HTTP",
	Long: `Serves a list, a name search and per-show detail pages (HTML or JSON)
from the tv_shows table. The port comes from the first argument, then PORT,
then defaults to 3000.`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runServer,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Flags().String("env-file", ".env", "dotenv file to load before reading the environment (missing file is ignored)")
}

func runServer(cmd *cobra.Command, args []string) error {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", envFile, err)
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if len(args) > 0 {
		cfg.ApplyPortArg(args[0])
	}
	log := logger.New(cfg.LogLevel, cmd.OutOrStdout())

	pool, err := database.Open(cfg.DB)
	if err != nil {
		return err
	}
	defer pool.Close()

	// Startup gate: no traffic is accepted until the database answers.
	log.Info("pinging database", "host", cfg.DB.Host, "port", cfg.DB.Port, "db", cfg.DB.Name)
	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	err = database.Verify(pingCtx, pool)
	cancel()
	if err != nil {
		return fmt.Errorf("cannot ping database: %w", err)
	}

	e, err := newServer(cfg, pool, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := ":" + strconv.Itoa(cfg.Port)
	log.Info("application started", "addr", addr, "env", cfg.Env, "at", time.Now().Format(time.RFC1123))
	return serve(ctx, e, addr)
}

// serve runs e on addr until ctx is done, then shuts it down.  A listener
// that fails to start is returned as an error, so the process exits non-zero.
func serve(ctx context.Context, e *echo.Echo, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("listen %s: %w", addr, err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Shutdown(shutdownCtx)
}

// newServer wires the echo instance: renderer, shared middleware, health
// check, and one show group per mount.
func newServer(cfg config.Config, pool database.Pool, log *slog.Logger) (*echo.Echo, error) {
	renderer, err := view.New()
	if err != nil {
		return nil, err
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	router.Configure(e, log)
	router.RegisterRoutes(e, &handler.HealthHandler{Pool: pool})

	rdb := config.NewRedisClient(cfg.Redis)
	if cfg.Redis.Addr != "" && rdb == nil {
		log.Warn("redis unreachable; cache and rate limit disabled", "addr", cfg.Redis.Addr)
	}
	mws := []echo.MiddlewareFunc{
		middleware.NewTokenBucket(cfg.RateLimit, rdb),
		middleware.NewRedisCache(cfg.Cache, rdb),
	}

	errs := handler.NewErrorFormatter(cfg.Production(), log)
	base := handler.NewShowHandler(pool, errs, log, cfg.DB.QueryTimeout)
	for _, m := range router.DefaultMounts() {
		router.RegisterShows(e, base, m, mws...)
	}
	return e, nil
}

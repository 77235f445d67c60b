package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/clinica/dashboard/internal/devapi"
	"github.com/clinica/dashboard/internal/platform/auth"
	"github.com/clinica/dashboard/internal/platform/db"
	"github.com/clinica/dashboard/internal/platform/middleware"
	"github.com/clinica/dashboard/migrations"
)

func (a *app) apiCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "api",
		Short: "Run and manage the reference clinic API",
	}
	cmd.AddCommand(a.serveCmd(), a.tokenCmd(), a.migrateCmd())
	return cmd
}

func (a *app) jwtConfig() auth.JWTConfig {
	return auth.JWTConfig{Issuer: a.cfg.JWTIssuer, SigningKey: []byte(a.cfg.JWTSecret)}
}

func (a *app) serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the reference API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			limit, _ := cmd.Flags().GetString("body-limit")
			timeout, _ := cmd.Flags().GetDuration("handler-timeout")
			rps, _ := cmd.Flags().GetFloat64("rate")
			burst, _ := cmd.Flags().GetInt("burst")
			return a.runServer(devapi.ServerConfig{
				BodyLimit:      limit,
				HandlerTimeout: timeout,
				RateLimit:      middleware.RateLimitConfig{RequestsPerSecond: rps, BurstSize: burst},
			})
		},
	}
	defaults := middleware.DefaultRateLimitConfig()
	cmd.Flags().String("body-limit", "1M", "Maximum request body size")
	cmd.Flags().Duration("handler-timeout", 30*time.Second, "Per-request time limit, 0 for none")
	cmd.Flags().Float64("rate", defaults.RequestsPerSecond, "Requests per second allowed per caller, 0 for no limit")
	cmd.Flags().Int("burst", defaults.BurstSize, "Burst size of the per-caller rate limit")
	return cmd
}

func (a *app) runServer(srvCfg devapi.ServerConfig) error {
	if err := a.cfg.ValidateServer(); err != nil {
		return err
	}
	logger := a.logger

	var store devapi.Store = devapi.NewMemoryStore()
	storeName := "memory"
	if a.cfg.DatabaseURL != "" {
		pool, err := db.NewPool(context.Background(), a.cfg.DatabaseURL, a.cfg.DBMaxConns, a.cfg.DBMinConns)
		if err != nil {
			return err
		}
		defer pool.Close()
		store, storeName = devapi.NewPGStore(pool), "postgres"
		logger.Info().Msg("connected to database")
	} else {
		logger.Warn().Msg("DATABASE_URL not set, records are kept in memory")
	}

	srvCfg.JWT = a.jwtConfig()
	srvCfg.CORSOrigins = a.cfg.CORSOrigins
	srvCfg.StoreName = storeName
	e := devapi.NewServer(srvCfg, store, logger)

	go func() {
		addr := ":" + a.cfg.Port
		logger.Info().Str("addr", addr).Str("store", storeName).Msg("starting server")
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	logger.Info().Msg("server stopped")
	return nil
}

func (a *app) tokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue a session token signed with JWT_SECRET",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.ValidateServer(); err != nil {
				return err
			}
			subject, _ := cmd.Flags().GetString("subject")
			name, _ := cmd.Flags().GetString("name")
			roles, _ := cmd.Flags().GetStringSlice("role")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			token, err := auth.IssueToken(a.jwtConfig(), subject, name, roles, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(a.stdout, token)
			return nil
		},
	}
	cmd.Flags().String("subject", "", "Token subject (user id)")
	cmd.Flags().String("name", "", "Display name")
	cmd.Flags().StringSlice("role", nil, "Role claim (repeatable)")
	cmd.Flags().Duration("ttl", 12*time.Hour, "Token lifetime, 0 for no expiry")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func (a *app) migrator(ctx context.Context, schema string) (*db.Migrator, func(), error) {
	if a.cfg.DatabaseURL == "" {
		return nil, nil, fmt.Errorf("DATABASE_URL is required")
	}
	pool, err := db.NewPool(ctx, a.cfg.DatabaseURL, a.cfg.DBMaxConns, a.cfg.DBMinConns)
	if err != nil {
		return nil, nil, err
	}
	return db.NewMigrator(pool, migrations.FS, schema), pool.Close, nil
}

func (a *app) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	upCmd := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")
			target, _ := cmd.Flags().GetInt("to")

			ctx := cmd.Context()
			m, closePool, err := a.migrator(ctx, schema)
			if err != nil {
				return err
			}
			defer closePool()

			fmt.Fprintf(a.stdout, "Running migrations on schema: %s\n", schema)
			count, err := m.UpTo(ctx, target)
			if err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Fprintf(a.stdout, "Applied %d migration(s) successfully.\n", count)
			return nil
		},
	}
	upCmd.Flags().String("schema", db.DefaultSchema, "Target schema for migrations")
	upCmd.Flags().Int("to", 0, "Stop after this version (0 applies all)")
	cmd.AddCommand(upCmd)

	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			schema, _ := cmd.Flags().GetString("schema")

			ctx := cmd.Context()
			m, closePool, err := a.migrator(ctx, schema)
			if err != nil {
				return err
			}
			defer closePool()

			statuses, err := m.Status(ctx)
			if err != nil {
				return fmt.Errorf("failed to get migration status: %w", err)
			}
			fmt.Fprintf(a.stdout, "Migration status for schema: %s\n", schema)
			renderMigrations(a.stdout, statuses)
			return nil
		},
	}
	statusCmd.Flags().String("schema", db.DefaultSchema, "Target schema for migrations")
	cmd.AddCommand(statusCmd)

	return cmd
}

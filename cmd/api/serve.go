package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/vaughan-dsouza/postsvc/internal/db"
	"github.com/vaughan-dsouza/postsvc/internal/handlers"
	"github.com/vaughan-dsouza/postsvc/internal/logger"
	"github.com/vaughan-dsouza/postsvc/internal/middleware"
	"github.com/vaughan-dsouza/postsvc/internal/store"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Connect to the database, apply migrations and serve HTTP",
		RunE:  runServe,
	}
	cmd.Flags().Int("port", 0, "listen port (overrides PORT)")
	cmd.Flags().Bool("migrate", true, "apply pending migrations before listening (overrides AUTO_MIGRATE)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("port") {
		if cfg.Server.Port, err = cmd.Flags().GetInt("port"); err != nil {
			return err
		}
	}
	if cmd.Flags().Changed("migrate") {
		if cfg.AutoMigrate, err = cmd.Flags().GetBool("migrate"); err != nil {
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	log := logger.GetDefault()
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("testing the database connection", "driver", cfg.Database.Driver)
	dbConn, err := db.Connect(ctx, cfg.Database)
	if err != nil {
		log.Error("unable to connect to the database", "error", err)
		return err
	}
	defer dbConn.Close()
	log.Info("connection has been established successfully")

	if cfg.AutoMigrate {
		if err := db.Migrate(ctx, dbConn); err != nil {
			log.Error("schema migration failed", "error", err)
			return err
		}
		log.Info("schema is up to date")
	}

	h := handlers.NewHandler(store.NewPostStore(dbConn))

	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Server.Port),
		Handler: h.Routes(log, middleware.NewMetrics()),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server is up and running", "addr", fmt.Sprintf("http://localhost%s", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info("server exited")
	return nil
}

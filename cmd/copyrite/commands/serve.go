package commands

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/alimgiray/copyrite/cmd/copyrite/internal/clierr"
	"github.com/alimgiray/copyrite/internal/handlers"
	"github.com/alimgiray/copyrite/internal/services"
	"github.com/alimgiray/copyrite/pkg/config"
	"github.com/alimgiray/copyrite/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the alias API over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, _ := cmd.Flags().GetString("db")
			return runServe(cmd.Context(), dbPath)
		},
	}

	cmd.Flags().String("db", "", "database path (defaults to DB_PATH)")
	return cmd
}

func runServe(ctx context.Context, dbPath string) error {
	gin.SetMode(config.AppConfig.Server.Mode)

	aliasService, db, err := openAliasService(dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	router := handlers.NewRouter(aliasService, services.NewReportService())

	server := &http.Server{
		Addr:         ":" + config.AppConfig.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(config.AppConfig.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(config.AppConfig.Server.WriteTimeout) * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Infof("Server starting on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return clierr.Wrap(clierr.ExitFailure, "server failed", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return clierr.Wrap(clierr.ExitFailure, "shutdown failed", err)
	}

	logger.Info("Server stopped")
	return nil
}

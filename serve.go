package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"classroom-notes-go/auth"
	"classroom-notes-go/handlers"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Provision storage and serve the notes API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("Application starting", zap.String("environment", cfg.App.Environment))
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	// Storage must be ready before the listener accepts traffic.
	notes, closeStore, err := openNotesRepository(ctx, cfg, log)
	if err != nil {
		log.Error("Startup failed", zap.Error(err))
		return err
	}
	defer closeStore()

	httpLog := log.Named("http")
	router := handlers.NewRouter(
		handlers.NewAPIHandler(notes, httpLog),
		handlers.NewAuthHandler(auth.AcceptAny{}, httpLog),
		httpLog,
		handlers.RouterOptions{
			SessionSecret:  cfg.App.SessionSecret,
			AllowedOrigins: cfg.App.CorsAllowedOrigins,
		},
	)

	srv := &http.Server{
		Addr:              ":" + cfg.App.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Starting server", zap.String("addr", srv.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

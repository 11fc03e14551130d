package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/cors"
	"github.com/spf13/cobra"

	"github.com/HuyaneMatsu/hata-sub016/middleware"
	"github.com/HuyaneMatsu/hata-sub016/pkg/ratelimit"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP and WebSocket API",
	Long: `Start the inspection/ingest HTTP API and the WebSocket event stream.

The registry is restored from SQLite before the listener opens.

Example:
  hata serve`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// runServe: bootstrap → hub → route'lar → middleware → CORS → HTTP server → graceful shutdown.
func runServe(ctx context.Context) error {
	log.Println("[main] hata server starting...")

	a, err := bootstrap(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	registerInvalidationCallbacks(a.registry, a.hub)
	go a.hub.Run()

	h := initHandlers(a.svcs, a.registry, a.hub, a.cfg)

	mux := http.NewServeMux()
	initRoutes(mux, h, a.svcs.Token)

	limiter := ratelimit.New(a.cfg.RateLimit.Requests, a.cfg.RateLimit.Window)
	defer limiter.Close()

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   a.cfg.CORS.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader, "Retry-After"},
		AllowCredentials: true,
	})

	handler := middleware.RequestID(middleware.RateLimit(limiter)(corsHandler.Handler(mux)))

	srv := &http.Server{
		Addr:              a.cfg.Server.Addr(),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)

	serveErr := make(chan error, 1)
	go func() {
		log.Printf("[main] server listening on %s", a.cfg.Server.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-done:
	case err := <-serveErr:
		a.hub.Shutdown()
		return err
	}
	log.Println("[main] shutting down...")

	// Önce WebSocket bağlantıları kapanır, sonra HTTP server yeni request kabul
	// etmeyi durdurur ve mevcutların bitmesini bekler (5sn timeout).
	a.hub.Shutdown()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	log.Println("[main] server stopped gracefully")
	return nil
}

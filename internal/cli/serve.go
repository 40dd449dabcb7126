package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/spf13/cobra"

	"per-app-volume/internal/app"
	"per-app-volume/internal/mixer"
	"per-app-volume/internal/pactl"
	"per-app-volume/internal/platform/logger"
	"per-app-volume/internal/platform/metrics"
)

const shutdownTimeout = 10 * time.Second

func NewServeCmd(deps *Dependencies) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Watch the audio server and serve the mixer API",
		RunE: func(cmd *cobra.Command, args []string) error {
			addr := deps.Config.ListenAddr
			if listen != "" {
				addr = listen
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, deps.App, addr)
		},
	}

	cmd.Flags().StringVar(&listen, "listen", "", "control API address (overrides LISTEN_ADDR)")
	return cmd
}

// NewRouter mounts the mixer API and /metrics behind the request logging
// and metrics middleware.
func NewRouter(a *app.App) *chi.Mux {
	h := mixer.NewHandler(a.Service, a.Log)

	r := chi.NewRouter()
	r.Use(logger.RequestLogger(a.Log))
	r.Use(metrics.RequestMiddleware(a.Metrics))
	r.Get("/metrics", func(w http.ResponseWriter, r *http.Request) {
		a.Metrics.Handler(func() { a.Metrics.SetRememberedKeys(a.Memory.Len()) }).ServeHTTP(w, r)
	})
	h.Routes(r)
	return r
}

func serve(ctx context.Context, a *app.App, addr string) error {
	log := a.Log

	if err := a.Index.Rebuild(); err != nil {
		log.Warn("icon index unavailable", slog.String("error", err.Error()))
	}

	go a.Service.Run(ctx)

	watcher := pactl.NewWatcher(a.Runner, a.Service.RequestRefresh, log, a.Metrics)
	if err := watcher.Start(ctx); err != nil {
		log.Warn("event watcher not started, use POST /mixer/refresh", slog.String("error", err.Error()))
	}
	defer watcher.Stop()
	a.Service.RequestRefresh()

	srv := &http.Server{Addr: addr, Handler: NewRouter(a), ReadHeaderTimeout: 5 * time.Second}

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	log.Info("server starting",
		slog.String("addr", addr),
		slog.Int("indexed_apps", a.Index.Len()),
		slog.String("watcher", watcher.State().String()),
	)

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, draining connections")
	case err := <-errCh:
		return fmt.Errorf("serving %s: %w", addr, err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}

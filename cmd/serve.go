package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/spf13/cobra"

	"techrank/internal/bootstrap"
	"techrank/internal/bootstrap/logging"
	"techrank/internal/errs"
	"techrank/internal/infrastructure/filewatch"
	"techrank/internal/infrastructure/scheduler"
	"techrank/internal/usecase/performance"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run housekeeping jobs and expose /metrics until interrupted",
	RunE: withApp(func(cmd *cobra.Command, app *bootstrap.App, svc *performance.Service) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		ctx = logging.WithComponent(ctx, "cmd.serve")

		sched, err := scheduler.New(ctx)
		if err != nil {
			return err
		}
		if err := sched.Every("notification-sweep", app.Config.Notifications.SweepInterval, func(jobCtx context.Context) error {
			n, err := svc.SweepNotifications(jobCtx)
			if err != nil {
				return err
			}
			logging.Info(jobCtx, "notification sweep finished", slog.Int64("deleted", n))
			return nil
		}); err != nil {
			return err
		}

		if policyFile := strings.TrimSpace(app.Config.Points.PolicyFile); policyFile != "" {
			go func() {
				if err := filewatch.Watch(ctx, policyFile, 0, svc.ReloadAwardPolicy); err != nil {
					logging.Warn(ctx, "award policy watch stopped", slog.Any("err", errs.Loggable(err)))
				}
			}()
		}

		server := &http.Server{
			Addr:              app.Config.Metrics.Addr,
			Handler:           newOpsRouter(app),
			ReadHeaderTimeout: 5 * time.Second,
		}

		serveErr := make(chan error, 1)
		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				serveErr <- err
			}
			close(serveErr)
		}()

		sched.Start()
		logging.Info(ctx, "serving", slog.String("metrics_addr", app.Config.Metrics.Addr))

		var runErr error
		select {
		case <-ctx.Done():
			logging.Info(ctx, "shutdown requested")
		case err := <-serveErr:
			if err != nil {
				runErr = errs.Wrap(err, "serve metrics")
			}
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logging.Warn(ctx, "metrics server shutdown failed", slog.Any("err", errs.Loggable(err)))
		}
		if err := sched.Shutdown(); err != nil {
			logging.Warn(ctx, "scheduler shutdown failed", slog.Any("err", errs.Loggable(err)))
		}
		return runErr
	}),
}

// newOpsRouter exposes the operational endpoints: prometheus metrics and a
// database-backed health check.
func newOpsRouter(app *bootstrap.App) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Method(http.MethodGet, "/metrics", app.Metrics.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, req *http.Request) {
		sqlDB, err := app.DB.DB()
		if err == nil {
			err = sqlDB.PingContext(req.Context())
		}
		if err != nil {
			logging.Warn(req.Context(), "health check failed", slog.Any("err", errs.Loggable(err)))
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok\n"))
	})
	return r
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

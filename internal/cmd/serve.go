package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"

	"brigade/internal/analytics"
	"brigade/internal/api"
	"brigade/internal/database"
	"brigade/internal/evaluation"
	"brigade/internal/monitoring"
	"brigade/internal/notify"
	"brigade/internal/store"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the insights API and metrics servers",
	Long: `Start the Brigade server which provides:
- JWT-protected insight endpoints under /api/v1/ai
- a websocket dashboard feed at /ws/dashboard
- prometheus metrics on the metrics port`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	if cfg.LogLevel == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := openDatabase(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	if err := database.Migrate(db); err != nil {
		return err
	}

	st := store.New(db, cfg.Analytics.LookbackDays, logger)
	metrics := evaluation.NewMetricsCollector()
	monitor := monitoring.NewMonitor()

	opts := []analytics.Option{
		analytics.WithLogger(logger),
		analytics.WithRecorder(metrics),
		analytics.WithRecorder(monitor),
	}
	if cfg.RabbitMQ.Enabled {
		conn, err := notify.Connect(cfg.RabbitMQ.URL)
		if err != nil {
			return err
		}
		defer conn.Close()

		publisher, err := notify.NewPublisher(conn, cfg.RabbitMQ.Exchange, logger)
		if err != nil {
			return err
		}
		defer publisher.Close()
		opts = append(opts, analytics.WithRecorder(publisher))
		logger.Info("alert publishing enabled", "component", "cmd", "exchange", cfg.RabbitMQ.Exchange)
	}

	engine := analytics.NewEngine(st, cfg.Analytics.Policy, opts...)
	insights := api.NewInsightsAPI(engine, st, monitor, api.Options{
		JWTSecret:    cfg.Auth.JWTSecret,
		PushInterval: cfg.Dashboard.PushInterval,
		Logger:       logger,
	})

	metricsRouter := gin.New()
	metricsRouter.GET("/metrics", gin.WrapH(metrics.Handler()))

	servers := []*http.Server{
		{Addr: fmt.Sprintf(":%d", cfg.Server.Port), Handler: insights.Router},
		{Addr: fmt.Sprintf(":%d", cfg.Server.MetricsPort), Handler: metricsRouter},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, len(servers))
	var wg conc.WaitGroup
	for _, srv := range servers {
		srv := srv
		wg.Go(func() {
			logger.Info("starting server", "component", "cmd", "addr", srv.Addr)
			if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("server %s: %w", srv.Addr, err)
				stop()
			}
		})
	}

	<-ctx.Done()
	logger.Info("shutting down servers", "component", "cmd")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	for _, srv := range servers {
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server shutdown error", "component", "cmd", "addr", srv.Addr, "error", err)
		}
	}
	wg.Wait()

	select {
	case err := <-errCh:
		return err
	default:
		return nil
	}
}

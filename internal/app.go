package internal

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"gamatrix/internal/controllers"
	"gamatrix/internal/providers"
	"gamatrix/internal/services"
	"gamatrix/internal/storage/interfaces"
	"gamatrix/internal/structures"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type App struct {
	WebServer *http.Server

	catalog   services.CatalogServiceInterface
	scheduler interfaces.SchedulerInterface
	logger    providers.Logger
	conf      *structures.Config
}

func NewApp(healthController *controllers.HealthController, catalog services.CatalogServiceInterface, scheduler interfaces.SchedulerInterface, conf *structures.Config, logger providers.Logger, router providers.RouterProviderInterface, metrics providers.MetricsProviderInterface) *App {
	// API routes go through the metrics middleware; health and metrics don't.
	instrumentedAPI := providers.MetricsMiddleware(metrics, logger, router.Mux())

	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthController.Health)
	if conf.Metrics.Enabled {
		mux.Handle("/metrics", promhttp.Handler())
	}
	mux.Handle("/", instrumentedAPI)

	return &App{
		WebServer: &http.Server{
			Addr:         conf.WebServer.Host + ":" + strconv.Itoa(conf.WebServer.Port),
			Handler:      mux,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		catalog:   catalog,
		scheduler: scheduler,
		logger:    logger,
		conf:      conf,
	}
}

// Run restores the data store, serves HTTP until SIGINT or SIGTERM and then
// shuts down. Every mutation is saved as it happens, so nothing is flushed
// on the way out.
func (app *App) Run() error {
	app.logger.Infof(providers.TypeApp, "Starting %s", app.conf.AppName)
	if !app.catalog.Restore() {
		app.logger.Warnf(providers.TypeApp, "No usable data store, comparisons will read the source databases directly")
	}

	app.scheduler.Init()

	serverErr := make(chan error, 1)
	go func() {
		app.logger.Infof(providers.TypeApp, "Listening HTTP clients on %s", app.WebServer.Addr)
		if err := app.WebServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		app.logger.Infof(providers.TypeApp, "Shutdown signal received")
	case err := <-serverErr:
		app.scheduler.Stop()
		return fmt.Errorf("server error: %w", err)
	}

	// Stop waits for an in-flight rescan so its save completes.
	app.scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.WebServer.Shutdown(ctx); err != nil {
		return err
	}
	app.logger.Infof(providers.TypeApp, "gracefully stopped")
	return nil
}

package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"OeeForecast/internal/handler/ws"
	mid "OeeForecast/internal/middleware"
	"OeeForecast/pkg/config"
	xhttp "OeeForecast/pkg/http"
	pkgkafka "OeeForecast/pkg/kafka"
	applogger "OeeForecast/pkg/logger"
	"OeeForecast/pkg/queue"
)

type closer struct {
	name string
	fn   func() error
}

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	log        *applogger.Logger
	httpServer *xhttp.Server
	pipeline   *mid.AlertPipeline
	hub        *ws.AlertHub
	queue      *queue.RedisQueue
	consumer   *pkgkafka.Consumer
	closers    []closer
}

// New creates a new App instance with all dependencies.
func New(cfg *config.Config, l *applogger.Logger, httpServer *xhttp.Server, pipeline *mid.AlertPipeline, hub *ws.AlertHub) *App {
	return &App{
		cfg:        cfg,
		log:        l,
		httpServer: httpServer,
		pipeline:   pipeline,
		hub:        hub,
	}
}

// SetQueue enables the background evaluation workers.
func (a *App) SetQueue(q *queue.RedisQueue) { a.queue = q }

// SetConsumer enables Kafka consumption.
func (a *App) SetConsumer(c *pkgkafka.Consumer) { a.consumer = c }

// AddCloser registers a resource released on shutdown, after everything else has stopped.
func (a *App) AddCloser(name string, fn func() error) {
	a.closers = append(a.closers, closer{name: name, fn: fn})
}

// Run starts the application and blocks until interrupted.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.Start(ctx); err != nil {
		_ = a.Shutdown(context.Background())
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	sig := <-sigCh

	a.log.Info("shutdown signal received", applogger.String("signal", sig.String()))
	return a.Shutdown(ctx)
}

// Start launches the pipeline, the workers, the consumer and the HTTP server.
func (a *App) Start(ctx context.Context) error {
	a.pipeline.Start(ctx)

	if a.queue != nil {
		if err := a.queue.Start(); err != nil {
			return err
		}
		a.log.Info("evaluation queue started", applogger.Int("workers", a.cfg.Queue.Workers))
	}

	if a.consumer != nil {
		if err := a.consumer.Start(); err != nil {
			return err
		}
		a.log.Info("kafka consumer started", applogger.String("topic", a.cfg.Kafka.Topics.Thresholds))
	}

	return a.httpServer.Start()
}

// Shutdown stops intake first, then drains the workers and releases the clients.
func (a *App) Shutdown(ctx context.Context) error {
	a.log.Info("shutting down")
	var errs []error

	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.log.Error("http shutdown error", applogger.Error(err))
		errs = append(errs, err)
	}
	a.hub.Close()

	if a.consumer != nil {
		if err := a.consumer.Stop(shutdownCtx); err != nil {
			a.log.Warn("kafka consumer stop error", applogger.Error(err))
			errs = append(errs, err)
		}
	}
	if a.queue != nil {
		if err := a.queue.Stop(shutdownCtx); err != nil {
			a.log.Warn("queue stop error", applogger.Error(err))
			errs = append(errs, err)
		}
	}

	a.pipeline.Stop()
	if n := a.pipeline.Pending(); n > 0 {
		a.log.Warn("undelivered alert batches dropped", applogger.Int("batches", n))
	}

	for _, c := range a.closers {
		if err := c.fn(); err != nil {
			a.log.Warn(c.name+" close error", applogger.Error(err))
		}
	}

	a.log.Info("shutdown complete")
	return errors.Join(errs...)
}

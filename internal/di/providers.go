package di

import (
	"context"
	"fmt"
	"time"

	"OeeForecast/internal/domain/models"
	domrepo "OeeForecast/internal/domain/repository"
	"OeeForecast/internal/handler/api"
	"OeeForecast/internal/handler/ws"
	mid "OeeForecast/internal/middleware"
	"OeeForecast/internal/repository"
	"OeeForecast/internal/service/notify"
	"OeeForecast/internal/service/ratelimit"
	"OeeForecast/internal/services/alerting"
	"OeeForecast/internal/services/forecast"
	"OeeForecast/internal/services/threshold"
	"OeeForecast/internal/usecase"
	"OeeForecast/pkg/cache"
	pkgch "OeeForecast/pkg/clickhouse"
	"OeeForecast/pkg/config"
	xhttp "OeeForecast/pkg/http"
	pkgkafka "OeeForecast/pkg/kafka"
	applogger "OeeForecast/pkg/logger"
	"OeeForecast/pkg/metrics"
	pkgpg "OeeForecast/pkg/postgres"
	"OeeForecast/pkg/queue"
	"OeeForecast/pkg/server"

	"github.com/redis/go-redis/v9"
)

// ProvideLogger creates the application logger.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	return applogger.New(&applogger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
}

// ProvideMetrics creates a Prometheus metrics recorder.
func ProvideMetrics() domrepo.Metrics {
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client and optionally the oee_records table.
func ProvideClickHouseClient(cfg *config.Config) (*pkgch.Client, error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(10, 5),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, fmt.Errorf("clickhouse client: %w", err)
	}
	if !cfg.ClickHouse.InitSchema {
		return client, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.InitSchema(ctx, []string{repository.OeeRecordsDDL}); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("clickhouse schema: %w", err)
	}
	return client, nil
}

// ProvideOeeSource reads daily OEE from ClickHouse.
func ProvideOeeSource(ch *pkgch.Client, l *applogger.Logger) domrepo.OeeSource {
	return repository.NewClickHouseOeeSource(ch.DB(), repository.WithSourceLogger(l))
}

// ProvidePostgresClient opens the pool holding thresholds and prediction configs.
func ProvidePostgresClient(cfg *config.Config) (*pkgpg.Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := pkgpg.NewClient(ctx,
		pkgpg.WithDSN(cfg.Postgres.DSN),
		pkgpg.WithPoolSize(cfg.Postgres.MaxConns, cfg.Postgres.MinConns),
		pkgpg.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
		pkgpg.WithConnectTimeout(cfg.Postgres.ConnectTimeout),
	)
	if err != nil {
		return nil, fmt.Errorf("postgres client: %w", err)
	}
	if err := client.InitSchema(ctx, repository.PostgresSchema); err != nil {
		client.Close()
		return nil, fmt.Errorf("postgres schema: %w", err)
	}
	return client, nil
}

// ProvideRedisClient returns nil when Redis is disabled.
func ProvideRedisClient(cfg *config.Config) (*redis.Client, error) {
	if !cfg.Redis.Enabled {
		return nil, nil
	}
	client, err := cache.NewRedisClient(
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
	)
	if err != nil {
		return nil, fmt.Errorf("redis client: %w", err)
	}
	return client, nil
}

// ProvideCache layers process memory over Redis, or uses memory alone without Redis.
func ProvideCache(cfg *config.Config, rc *redis.Client) cache.Service {
	if rc == nil {
		return cache.NewMemoryCache()
	}
	return cache.NewLayeredCache(cache.NewRedisCache(rc, cfg.Redis.Prefix))
}

// ProvideKafkaProducer returns nil when no brokers are configured.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
	}
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(cfg.Kafka.Compression),
		pkgkafka.WithRequiredAcks(cfg.Kafka.RequiredAcks),
		pkgkafka.WithBatchSize(cfg.Kafka.Producer.BatchSize),
		pkgkafka.WithBatchBytes(cfg.Kafka.Producer.BatchBytes),
		pkgkafka.WithBatchTimeout(cfg.Kafka.Producer.Linger),
		pkgkafka.WithTimeouts(cfg.Kafka.Producer.WriteTimeout, cfg.Kafka.Producer.ReadTimeout),
		pkgkafka.WithMaxAttempts(cfg.Kafka.Producer.MaxAttempts),
		pkgkafka.WithAsync(cfg.Kafka.Producer.Async),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideKafkaConsumer returns nil when consumption is disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	if !cfg.Kafka.Consumer.Enabled || len(cfg.Kafka.Brokers) == 0 {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(l,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(cfg.Kafka.Consumer.GroupID),
		pkgkafka.WithConsumerWorkers(cfg.Kafka.Consumer.Workers),
		pkgkafka.WithConsumerBufferSize(cfg.Kafka.Consumer.BufferSize),
		pkgkafka.WithConsumerRetry(cfg.Kafka.Consumer.RetryMax, cfg.Kafka.Consumer.BackoffMin, cfg.Kafka.Consumer.BackoffMax),
		pkgkafka.WithConsumerDLQ(cfg.Kafka.Consumer.DLQTopic),
		pkgkafka.WithConsumerFetch(cfg.Kafka.Consumer.MinBytes, cfg.Kafka.Consumer.MaxBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	return consumer, nil
}

// ProvideThresholdStore puts the cache in front of the Postgres threshold table.
func ProvideThresholdStore(pg *pkgpg.Client, c cache.Service, cfg *config.Config, l *applogger.Logger) *repository.CachedThresholdStore {
	return repository.NewCachedThresholdStore(repository.NewPostgresThresholdStore(pg.Pool()), c, cfg.Redis.CacheTTL, l)
}

// ProvideThresholdResolver reports lookup failures as metrics; resolution itself never fails.
func ProvideThresholdResolver(store *repository.CachedThresholdStore, m domrepo.Metrics, l *applogger.Logger) *threshold.Resolver {
	return threshold.NewResolver(store, threshold.WithErrorHook(func(err error) {
		m.RecordError("threshold_lookup")
		l.Warn("threshold lookup failed, falling back", applogger.Error(err))
	}))
}

func ProvidePredictionConfigStore(pg *pkgpg.Client) domrepo.PredictionConfigStore {
	return repository.NewPostgresPredictionConfigStore(pg.Pool())
}

func ProvideAlertHub(cfg *config.Config, l *applogger.Logger) *ws.AlertHub {
	return ws.NewAlertHub(l, cfg.Server.AllowedOrigins)
}

// ProvideEmailNotifier returns nil when e-mail is disabled.
func ProvideEmailNotifier(cfg *config.Config) (*notify.EmailNotifier, error) {
	e := cfg.Notify.Email
	if !e.Enabled {
		return nil, nil
	}
	return notify.NewEmailNotifier(notify.EmailConfig{
		Host:       e.Host,
		Port:       e.Port,
		Username:   e.Username,
		Password:   e.Password,
		From:       e.From,
		Recipients: e.Recipients,
	})
}

// ProvideNotifier fans alerts out to every configured channel.
func ProvideNotifier(cfg *config.Config, producer *pkgkafka.Producer, hub *ws.AlertHub, email *notify.EmailNotifier, l *applogger.Logger) domrepo.Notifier {
	targets := []domrepo.Notifier{hub}
	if producer != nil {
		targets = append(targets, repository.NewKafkaAlertPublisher(producer, cfg.Kafka.Topics.Alerts))
	}
	if email != nil {
		targets = append(targets, email)
	}
	if wh := cfg.Notify.Webhook; wh.Enabled {
		client := xhttp.NewClient(xhttp.WithTimeout(wh.Timeout))
		targets = append(targets, notify.NewWebhookNotifier(client, wh.URL, wh.Retries))
	}
	return notify.NewFanout(l, targets...)
}

// ProvideAlertPipeline applies the cooldown and buffering in front of the notifiers.
func ProvideAlertPipeline(sink domrepo.Notifier, c cache.Service, m domrepo.Metrics, cfg *config.Config, l *applogger.Logger) *mid.AlertPipeline {
	return mid.NewAlertPipeline(sink, c, m,
		mid.WithCooldown(cfg.Notify.Cooldown),
		mid.WithBufferSize(cfg.Notify.BufferSize),
		mid.WithBackoff(cfg.Notify.FlushInterval/20, cfg.Notify.FlushInterval*5),
		mid.WithPipelineLogger(l),
	)
}

// ProvideQueue returns nil when background evaluation is disabled.
func ProvideQueue(cfg *config.Config, rc *redis.Client, l *applogger.Logger) *queue.RedisQueue {
	if !cfg.Queue.Enabled || rc == nil {
		return nil
	}
	return queue.NewRedisQueue(l, &queue.Config{
		Workers:      cfg.Queue.Workers,
		RetryLimit:   cfg.Queue.MaxRetries,
		PollInterval: cfg.Queue.PollInterval,
	}, rc, queue.WithKeyPrefix(cfg.Redis.Prefix+":queue"))
}

// ProvideForecastDefaults turns the forecast section into a request template.
func ProvideForecastDefaults(cfg *config.Config) models.ForecastRequest {
	f := cfg.Forecast
	return models.ForecastRequest{
		PredictionDays:  f.PredictionDays,
		Algorithm:       models.Algorithm(f.Algorithm),
		ConfidenceLevel: f.ConfidenceLevel,
		AlertThreshold:  f.AlertThreshold,
		MovingAvgWindow: f.MovingAvgWindow,
		SmoothingFactor: f.SmoothingFactor,
	}
}

func ProvidePredictionUseCase(
	source domrepo.OeeSource,
	configs domrepo.PredictionConfigStore,
	resolver *threshold.Resolver,
	m domrepo.Metrics,
	cfg *config.Config,
	l *applogger.Logger,
) *usecase.PredictionUseCase {
	return usecase.NewPredictionUseCase(source, configs, forecast.NewEngine(), resolver, alerting.NewGenerator(), m, l,
		usecase.WithConcurrency(cfg.Forecast.FleetConcurrency),
	)
}

func ProvideAnalysisUseCase(source domrepo.OeeSource, m domrepo.Metrics, l *applogger.Logger) *usecase.AnalysisUseCase {
	return usecase.NewAnalysisUseCase(source, forecast.NewComparator(), m, l)
}

// ProvideThresholdUseCase publishes threshold changes only when Kafka is configured.
func ProvideThresholdUseCase(store *repository.CachedThresholdStore, resolver *threshold.Resolver, producer *pkgkafka.Producer, cfg *config.Config, l *applogger.Logger) *usecase.ThresholdUseCase {
	var events usecase.ThresholdEventPublisher
	if producer != nil {
		events = repository.NewKafkaThresholdEvents(producer, cfg.Kafka.Topics.Thresholds)
	}
	return usecase.NewThresholdUseCase(store, resolver, events, l)
}

func ProvidePredictionConfigUseCase(store domrepo.PredictionConfigStore) *usecase.PredictionConfigUseCase {
	return usecase.NewPredictionConfigUseCase(store)
}

func ProvideEvaluationUseCase(q *queue.RedisQueue) *usecase.EvaluationUseCase {
	if q == nil {
		return usecase.NewEvaluationUseCase(nil)
	}
	return usecase.NewEvaluationUseCase(q)
}

func ProvideAlertUseCase(email *notify.EmailNotifier, l *applogger.Logger) *usecase.AlertUseCase {
	if email == nil {
		return usecase.NewAlertUseCase(nil, l)
	}
	return usecase.NewAlertUseCase(email, l)
}

func ProvideEvaluateFleetJob(
	predictions *usecase.PredictionUseCase,
	configs domrepo.PredictionConfigStore,
	pipeline *mid.AlertPipeline,
	defaults models.ForecastRequest,
	l *applogger.Logger,
) *usecase.EvaluateFleetJob {
	return usecase.NewEvaluateFleetJob(predictions, configs, pipeline, defaults, l)
}

func ProvideThresholdEventsHandler(cfg *config.Config, store *repository.CachedThresholdStore, l *applogger.Logger) *usecase.ThresholdEventsHandler {
	return usecase.NewThresholdEventsHandler(cfg.Kafka.Topics.Thresholds, store, l)
}

// ProvideHandlers builds every HTTP route group.
func ProvideHandlers(
	l *applogger.Logger,
	c cache.Service,
	cfg *config.Config,
	predictions *usecase.PredictionUseCase,
	analysis *usecase.AnalysisUseCase,
	thresholds *usecase.ThresholdUseCase,
	configs *usecase.PredictionConfigUseCase,
	alerts *usecase.AlertUseCase,
	evaluations *usecase.EvaluationUseCase,
	hub *ws.AlertHub,
	ch *pkgch.Client,
	pg *pkgpg.Client,
	rc *redis.Client,
) []xhttp.Handler {
	oee := api.NewOeeHandler(l, predictions, analysis)
	oee.SetCache(c, cfg.Redis.CacheTTL)

	checks := map[string]api.HealthCheck{
		"clickhouse": ch.Health,
		"postgres":   pg.Health,
	}
	if rc != nil {
		checks["redis"] = func(ctx context.Context) error { return rc.Ping(ctx).Err() }
	}

	return []xhttp.Handler{
		api.NewHealthHandler(checks),
		oee,
		api.NewThresholdHandler(l, thresholds),
		api.NewPredictionConfigHandler(l, configs),
		api.NewAlertHandler(l, alerts, evaluations),
		hub,
	}
}

// ProvideHTTPServer creates the Echo server with rate limiting on the API routes.
func ProvideHTTPServer(cfg *config.Config, l *applogger.Logger, handlers []xhttp.Handler) *xhttp.Server {
	opts := []xhttp.ServerOption{
		xhttp.WithPort(cfg.Server.Port),
		xhttp.WithTimeouts(cfg.Server.ReadTimeout, cfg.Server.WriteTimeout, cfg.Server.ShutdownTimeout),
		xhttp.WithAllowOrigins(cfg.Server.AllowedOrigins),
	}
	if cfg.Metrics.Enabled {
		opts = append(opts, xhttp.WithMetricsPath(cfg.Metrics.Path))
	}
	if rl := cfg.RateLimit; rl.Enabled {
		limiter := ratelimit.New(rl.RPS, rl.Burst, ratelimit.WithTTL(rl.TTL))
		opts = append(opts, xhttp.WithMiddleware(limiter.Middleware("/healthz", cfg.Metrics.Path, "/ws/alerts")))
	}
	return xhttp.NewServer(l, handlers, opts...)
}

// ProvideApp assembles the application lifecycle.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	httpServer *xhttp.Server,
	pipeline *mid.AlertPipeline,
	hub *ws.AlertHub,
	q *queue.RedisQueue,
	job *usecase.EvaluateFleetJob,
	consumer *pkgkafka.Consumer,
	thresholdEvents *usecase.ThresholdEventsHandler,
	producer *pkgkafka.Producer,
	c cache.Service,
	ch *pkgch.Client,
	pg *pkgpg.Client,
	rc *redis.Client,
) *server.App {
	app := server.New(cfg, l, httpServer, pipeline, hub)
	if q != nil {
		q.RegisterJob(job)
		app.SetQueue(q)
	}
	if consumer != nil {
		consumer.WithConsumerHook(pkgkafka.NoopHook{})
		consumer.RegisterHandler(thresholdEvents)
		app.SetConsumer(consumer)
	}
	if producer != nil {
		app.AddCloser("kafka producer", producer.Close)
	}
	app.AddCloser("cache", c.Close)
	if rc != nil {
		app.AddCloser("redis", rc.Close)
	}
	app.AddCloser("postgres", func() error { pg.Close(); return nil })
	app.AddCloser("clickhouse", ch.Close)
	return app
}

//go:build wireinject
// +build wireinject

package di

import (
	"OeeForecast/pkg/config"
	"OeeForecast/pkg/server"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
func InitializeApp(cfg *config.Config) (*server.App, error) {
	wire.Build(
		ProvideLogger,
		ProvideMetrics,

		// Infrastructure clients
		ProvideClickHouseClient,
		ProvidePostgresClient,
		ProvideRedisClient,
		ProvideCache,
		ProvideKafkaProducer,
		ProvideKafkaConsumer,
		ProvideQueue,

		// Repositories
		ProvideOeeSource,
		ProvideThresholdStore,
		ProvideThresholdResolver,
		ProvidePredictionConfigStore,

		// Alert delivery
		ProvideAlertHub,
		ProvideEmailNotifier,
		ProvideNotifier,
		ProvideAlertPipeline,

		// Use cases
		ProvideForecastDefaults,
		ProvidePredictionUseCase,
		ProvideAnalysisUseCase,
		ProvideThresholdUseCase,
		ProvidePredictionConfigUseCase,
		ProvideEvaluationUseCase,
		ProvideAlertUseCase,
		ProvideEvaluateFleetJob,
		ProvideThresholdEventsHandler,

		// HTTP
		ProvideHandlers,
		ProvideHTTPServer,

		ProvideApp,
	)
	return &server.App{}, nil
}

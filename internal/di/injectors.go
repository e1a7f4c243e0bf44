//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"gamatrix/internal"
	"gamatrix/internal/controllers"
	"gamatrix/internal/enrichment"
	"gamatrix/internal/ingestion"
	"gamatrix/internal/providers"
	"gamatrix/internal/query"
	"gamatrix/internal/services"
	"gamatrix/internal/storage"
	"gamatrix/internal/storage/interfaces"
	"gamatrix/internal/structures"
)

var catalogSet = wire.NewSet(
	enrichment.NewSource,
	ingestion.NewExtractor,
	storage.NewZstdCompressor,
	storage.NewFileManager,
	query.NewEngine,
	services.NewCatalogService,
	wire.Bind(new(services.Extractor), new(*ingestion.Extractor)),
	wire.Bind(new(services.Persister), new(*storage.FileManager)),
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		catalogSet,
		wire.Bind(new(services.CatalogServiceInterface), new(*services.CatalogService)),
		wire.Bind(new(interfaces.RescannerInterface), new(*services.CatalogService)),
		storage.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}

func InitTooling(cfg *structures.CliFlags) (*internal.Tooling, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewCliLogProvider,
		providers.NewMetricsProvider,

		catalogSet,
		internal.NewTooling,
	)

	return nil, nil
}

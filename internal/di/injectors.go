//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"trainlog/internal"
	"trainlog/internal/controllers"
	"trainlog/internal/persistence"
	"trainlog/internal/providers"
	"trainlog/internal/services"
	"trainlog/internal/storage"
	"trainlog/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, func(), error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,

		storage.NewRecordStore,
		persistence.NewZstdCompressor,
		persistence.NewScheduler,
		services.NewDashboardService,
		services.NewJournalService,
		controllers.NewDashboardController,
		controllers.NewJournalController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil, nil
}

// Package di provides dependency injection configuration for the HabitLoop server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/habitloop/habitloop-server/internal/auth"
	"github.com/habitloop/habitloop-server/internal/config"
	"github.com/habitloop/habitloop-server/internal/di/providers"
	"github.com/habitloop/habitloop-server/internal/logger"
	"github.com/habitloop/habitloop-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Storage layer
	do.Provide(injector, providers.ProvideSSEManager)
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideLedger)

	// Search layer
	do.Provide(injector, providers.ProvideSearchIndex)

	// Challenge catalog
	do.Provide(injector, providers.ProvideCatalog)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideUserService)
	do.Provide(injector, providers.ProvidePointsService)
	do.Provide(injector, providers.ProvideChallengeService)
	do.Provide(injector, providers.ProvideHabitService)
	do.Provide(injector, providers.ProvideLeaderboardService)
	do.Provide(injector, providers.ProvideInsightsService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	// Invoke core services to trigger initialization
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.SSEManagerHandle](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*providers.LedgerHandle](injector)
	_ = do.MustInvoke[*providers.SearchIndexHandle](injector)
	_ = do.MustInvoke[*providers.CatalogHandle](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.UserService](injector)
	_ = do.MustInvoke[*service.PointsService](injector)
	_ = do.MustInvoke[*service.ChallengeService](injector)
	_ = do.MustInvoke[*service.HabitService](injector)
	_ = do.MustInvoke[*service.LeaderboardService](injector)
	_ = do.MustInvoke[*service.InsightsService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	// Trigger search reindex if needed
	providers.TriggerSearchReindexIfNeeded(injector)

	return nil
}

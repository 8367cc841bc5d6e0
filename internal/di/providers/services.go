package providers

import (
	"github.com/samber/do/v2"

	"github.com/habitloop/habitloop-server/internal/auth"
	"github.com/habitloop/habitloop-server/internal/logger"
	"github.com/habitloop/habitloop-server/internal/service"
)

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideUserService provides the user profile and friends service.
func ProvideUserService(i do.Injector) (*service.UserService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewUserService(storeHandle.Store, log.Logger), nil
}

// ProvidePointsService provides the points service.
func ProvidePointsService(i do.Injector) (*service.PointsService, error) {
	ledgerHandle := do.MustInvoke[*LedgerHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewPointsService(ledgerHandle.Store, sseHandle.Manager, log.Logger), nil
}

// ProvideChallengeService provides the challenge service and wires it to the
// points service so earned points trigger challenge re-evaluation.
func ProvideChallengeService(i do.Injector) (*service.ChallengeService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	catalogHandle := do.MustInvoke[*CatalogHandle](i)
	ledgerHandle := do.MustInvoke[*LedgerHandle](i)
	pointsService := do.MustInvoke[*service.PointsService](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	svc := service.NewChallengeService(
		storeHandle.Store,
		catalogHandle.Catalog,
		ledgerHandle.Store,
		pointsService,
		sseHandle.Manager,
		log.Logger,
	)
	pointsService.SetChallengeRecorder(svc)

	return svc, nil
}

// ProvideHabitService provides the habit service.
func ProvideHabitService(i do.Injector) (*service.HabitService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	pointsService := do.MustInvoke[*service.PointsService](i)
	challengeService := do.MustInvoke[*service.ChallengeService](i)
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewHabitService(
		storeHandle.Store,
		pointsService,
		challengeService,
		indexHandle.SearchIndex,
		sseHandle.Manager,
		log.Logger,
	), nil
}

// ProvideLeaderboardService provides the leaderboard service.
func ProvideLeaderboardService(i do.Injector) (*service.LeaderboardService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	ledgerHandle := do.MustInvoke[*LedgerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewLeaderboardService(storeHandle.Store, ledgerHandle.Store, log.Logger), nil
}

// ProvideInsightsService provides the insights service.
func ProvideInsightsService(i do.Injector) (*service.InsightsService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewInsightsService(storeHandle.Store, log.Logger), nil
}

package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/habitloop/habitloop-server/internal/api"
	"github.com/habitloop/habitloop-server/internal/config"
	"github.com/habitloop/habitloop-server/internal/logger"
	"github.com/habitloop/habitloop-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Auth:        do.MustInvoke[*service.AuthService](i),
		User:        do.MustInvoke[*service.UserService](i),
		Habit:       do.MustInvoke[*service.HabitService](i),
		Points:      do.MustInvoke[*service.PointsService](i),
		Challenge:   do.MustInvoke[*service.ChallengeService](i),
		Leaderboard: do.MustInvoke[*service.LeaderboardService](i),
		Insights:    do.MustInvoke[*service.InsightsService](i),
	}

	server := api.NewServer(storeHandle.Store, services, sseHandle.Manager, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      server,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr, "name", cfg.Server.Name)

	return &HTTPServerHandle{Server: srv}, nil
}

package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/habitloop/habitloop-server/internal/catalog"
	"github.com/habitloop/habitloop-server/internal/config"
	"github.com/habitloop/habitloop-server/internal/logger"
)

// CatalogHandle wraps the challenge catalog with its watcher lifecycle.
type CatalogHandle struct {
	*catalog.Catalog
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *CatalogHandle) Shutdown() error {
	h.cancel()
	return nil
}

// ProvideCatalog provides the challenge catalog. When a catalog file is
// configured it is watched for changes in the background.
func ProvideCatalog(i do.Injector) (*CatalogHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	cat, err := catalog.New(cfg.Challenges.CatalogPath, log.Logger)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithCancel(context.Background())
	if cfg.Challenges.CatalogPath != "" {
		go func() {
			if err := cat.Watch(ctx); err != nil {
				log.Error("Challenge catalog watcher stopped", "error", err)
			}
		}()
	}

	log.Info("Challenge catalog loaded",
		"path", cfg.Challenges.CatalogPath,
		"challenges", len(cat.All()),
	)

	return &CatalogHandle{Catalog: cat, cancel: cancel}, nil
}

package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/habitloop/habitloop-server/internal/config"
	"github.com/habitloop/habitloop-server/internal/logger"
	"github.com/habitloop/habitloop-server/internal/search"
	"github.com/habitloop/habitloop-server/internal/service"
)

// SearchIndexHandle wraps the search index with shutdown capability.
type SearchIndexHandle struct {
	*search.SearchIndex
}

// Shutdown implements do.Shutdownable.
func (h *SearchIndexHandle) Shutdown() error {
	return h.Close()
}

// ProvideSearchIndex provides the Bleve habit search index and wires it to
// the store for automatic indexing.
func ProvideSearchIndex(i do.Injector) (*SearchIndexHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)

	index, err := search.NewSearchIndex(search.Options{
		DataPath: cfg.Data.BasePath,
		Logger:   log.Logger,
	})
	if err != nil {
		return nil, err
	}

	storeHandle.SetSearchIndexer(index)

	docCount, _ := index.DocumentCount()
	log.Info("Search index initialized", "documents", docCount)

	return &SearchIndexHandle{SearchIndex: index}, nil
}

// TriggerSearchReindexIfNeeded rebuilds the search index when it is empty
// but habits exist. Should be called after all services are wired.
func TriggerSearchReindexIfNeeded(i do.Injector) {
	indexHandle := do.MustInvoke[*SearchIndexHandle](i)
	habitService := do.MustInvoke[*service.HabitService](i)
	log := do.MustInvoke[*logger.Logger](i)

	docCount, _ := indexHandle.DocumentCount()
	if docCount > 0 {
		return
	}

	go func() {
		if err := habitService.ReindexAll(context.Background()); err != nil {
			log.Error("Initial search reindex failed", "error", err)
			return
		}
		count, _ := indexHandle.DocumentCount()
		log.Info("Initial search reindex completed", "documents", count)
	}()
}

package providers

import (
	"context"
	"path/filepath"

	"github.com/samber/do/v2"

	"github.com/habitloop/habitloop-server/internal/config"
	"github.com/habitloop/habitloop-server/internal/logger"
	"github.com/habitloop/habitloop-server/internal/sse"
	"github.com/habitloop/habitloop-server/internal/store"
	"github.com/habitloop/habitloop-server/internal/store/sqlite"
)

// SSEManagerHandle wraps the SSE manager with its context for lifecycle management.
type SSEManagerHandle struct {
	*sse.Manager
	cancel context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *SSEManagerHandle) Shutdown() error {
	h.cancel()
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Manager.Shutdown(ctx)
}

// ProvideSSEManager provides the server-sent events manager.
func ProvideSSEManager(i do.Injector) (*SSEManagerHandle, error) {
	log := do.MustInvoke[*logger.Logger](i)

	manager := sse.NewManager(log.Logger)

	// Start in background
	ctx, cancel := context.WithCancel(context.Background())
	go manager.Start(ctx)

	log.Info("SSE manager started")

	return &SSEManagerHandle{
		Manager: manager,
		cancel:  cancel,
	}, nil
}

// StoreHandle wraps the store with shutdown capability.
type StoreHandle struct {
	*store.Store
}

// Shutdown implements do.Shutdownable.
func (h *StoreHandle) Shutdown() error {
	return h.Close()
}

// ProvideStore provides the badger document store.
func ProvideStore(i do.Injector) (*StoreHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)

	dbPath := filepath.Join(cfg.Data.BasePath, "db")
	db, err := store.New(dbPath, log.Logger, sseHandle.Manager)
	if err != nil {
		return nil, err
	}

	log.Info("Database initialized", "path", dbPath)

	return &StoreHandle{Store: db}, nil
}

// LedgerHandle wraps the points ledger with shutdown capability.
type LedgerHandle struct {
	*sqlite.Store
}

// Shutdown implements do.Shutdownable.
func (h *LedgerHandle) Shutdown() error {
	return h.Close()
}

// ProvideLedger provides the SQLite points ledger.
func ProvideLedger(i do.Injector) (*LedgerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	ledgerPath := filepath.Join(cfg.Data.BasePath, "points.db")
	ledger, err := sqlite.Open(ledgerPath, log.Logger)
	if err != nil {
		return nil, err
	}

	log.Info("Points ledger initialized", "path", ledgerPath)

	return &LedgerHandle{Store: ledger}, nil
}

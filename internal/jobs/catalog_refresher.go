package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/forgo/hungry/internal/metrics"
)

// Reloader is the catalog operation the refresher drives
type Reloader interface {
	Reload(ctx context.Context) error
	Count() int
}

// DefaultReloadTimeout bounds a single reload
const DefaultReloadTimeout = 2 * time.Minute

// CatalogRefresher periodically reloads the restaurant catalog so dataset
// updates show up without a restart. A zero interval disables the loop.
type CatalogRefresher struct {
	catalog  Reloader
	interval time.Duration
	timeout  time.Duration
	logger   *slog.Logger

	stopCh  chan struct{}
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

// NewCatalogRefresher creates a new catalog refresher job
func NewCatalogRefresher(catalog Reloader, interval time.Duration, logger *slog.Logger) *CatalogRefresher {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogRefresher{
		catalog:  catalog,
		interval: interval,
		timeout:  DefaultReloadTimeout,
		logger:   logger,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the refresh loop. It is a no-op when the interval is zero
// or the job is already running.
func (p *CatalogRefresher) Start() {
	if p.interval <= 0 {
		p.logger.Info("catalog refresh disabled")
		return
	}

	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return
	}
	p.running = true
	p.mu.Unlock()

	p.wg.Add(1)
	go p.run()
	p.logger.Info("catalog refresher started", slog.Duration("interval", p.interval))
}

// Stop gracefully stops the refresh loop
func (p *CatalogRefresher) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	p.running = false
	p.mu.Unlock()

	close(p.stopCh)
	p.wg.Wait()
	p.logger.Info("catalog refresher stopped")
}

func (p *CatalogRefresher) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
			_ = p.RunOnce(ctx)
			cancel()
		case <-p.stopCh:
			return
		}
	}
}

// RunOnce reloads the catalog once and records the outcome. The server
// also uses it for the initial load.
func (p *CatalogRefresher) RunOnce(ctx context.Context) error {
	err := p.catalog.Reload(ctx)
	metrics.RecordCatalogReload(err == nil, p.catalog.Count())
	if err != nil {
		p.logger.Warn("catalog refresh failed, keeping previous data",
			slog.String("error", err.Error()))
	}
	return err
}

// IsRunning returns whether the refresh loop is running
func (p *CatalogRefresher) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

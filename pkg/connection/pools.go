package connection

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/leapdb/pkg/core"
)

// Pools owns the named pools of a process. It replaces implicit,
// first-use pool creation with explicit startup and teardown.
type Pools struct {
	mu     sync.Mutex
	pools  map[string]Pool
	logger *slog.Logger
}

// NewPools creates an empty pool set. A nil logger discards output.
func NewPools(logger *slog.Logger) *Pools {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Pools{pools: make(map[string]Pool), logger: logger}
}

// Start opens and starts a pool for cfg under name.
func (p *Pools) Start(ctx context.Context, name string, cfg core.ConnectionConfig) (Pool, error) {
	pool, err := Open(cfg, p.logger.With(slog.String("pool", name)))
	if err != nil {
		return nil, err
	}
	if err := p.Add(ctx, name, pool); err != nil {
		return nil, err
	}
	return pool, nil
}

// Add starts pool and registers it under name.
func (p *Pools) Add(ctx context.Context, name string, pool Pool) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, exists := p.pools[name]; exists {
		return fmt.Errorf("pool %q already started", name)
	}
	if err := pool.Startup(ctx); err != nil {
		return err
	}
	p.pools[name] = pool
	return nil
}

// Get returns the pool registered under name.
func (p *Pools) Get(name string) (Pool, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	pool, ok := p.pools[name]
	return pool, ok
}

// Names returns the registered pool names (sorted).
func (p *Pools) Names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.pools))
	for name := range p.pools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Connect returns a connected connection from the named pool.
func (p *Pools) Connect(ctx context.Context, name string) (Connection, error) {
	pool, ok := p.Get(name)
	if !ok {
		return nil, fmt.Errorf("pool %q is not started", name)
	}
	conn := pool.NewConnection()
	if err := conn.Connect(ctx); err != nil {
		return nil, err
	}
	return conn, nil
}

// Shutdown stops every pool concurrently and forgets them. It returns the
// first failure; every pool is stopped regardless.
func (p *Pools) Shutdown() error {
	p.mu.Lock()
	pools := p.pools
	p.pools = make(map[string]Pool)
	p.mu.Unlock()

	var g errgroup.Group
	for name, pool := range pools {
		g.Go(func() error {
			if err := pool.Shutdown(); err != nil {
				p.logger.Error("pool shutdown failed", slog.String("pool", name), slog.String("error", err.Error()))
				return fmt.Errorf("pool %q: %w", name, err)
			}
			return nil
		})
	}
	return g.Wait()
}

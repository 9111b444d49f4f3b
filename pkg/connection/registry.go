package connection

import (
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/leapstack-labs/leapdb/pkg/core"
)

// Driver builds a stopped pool from configuration.
type Driver func(cfg core.ConnectionConfig, logger *slog.Logger) (Pool, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Driver)
)

// Register adds a driver to the registry.
// Called by driver implementations in their init() functions.
func Register(name string, driver Driver) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[name] = driver
}

// Get retrieves a driver by name.
func Get(name string) (Driver, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	d, ok := registry[name]
	return d, ok
}

// Open builds a pool for cfg.Driver. The pool still has to be started.
// The logger is passed to the driver (nil uses discard logger).
func Open(cfg core.ConnectionConfig, logger *slog.Logger) (Pool, error) {
	if cfg.Driver == "" {
		return nil, fmt.Errorf("connection driver not specified")
	}

	driver, ok := Get(cfg.Driver)
	if !ok {
		return nil, &UnknownDriverError{
			Driver:    cfg.Driver,
			Available: ListDrivers(),
		}
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return driver(cfg, logger)
}

// ListDrivers returns all registered driver names (sorted).
func ListDrivers() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a driver is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := registry[name]
	return ok
}

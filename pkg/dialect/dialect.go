// Package dialect binds a dialect name to its query grammar and DDL rules.
//
// Dialect packages register themselves from init, so importing
// pkg/dialects/postgres (or any sibling) is enough to make it available.
package dialect

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/leapstack-labs/leapdb/pkg/query"
	"github.com/leapstack-labs/leapdb/pkg/schema"
)

// Dialect is a registered SQL dialect.
type Dialect struct {
	Name    string
	Aliases []string

	// Query compiles query builders. Grammars hold no per-call state and are
	// shared by every connection of the dialect.
	Query query.Grammar

	// Schema supplies DDL type mapping and layout.
	Schema schema.Dialect
}

// SchemaGrammar returns a DDL grammar for the dialect.
func (d *Dialect) SchemaGrammar(opts ...schema.Option) *schema.Grammar {
	return schema.NewGrammar(d.Schema, opts...)
}

// Dialect registry
var (
	dialectsMu sync.RWMutex
	dialects   = make(map[string]*Dialect)
)

// ErrDialectRequired is returned when a dialect is required but not provided.
var ErrDialectRequired = errors.New("dialect is required")

// Register registers a dialect under its name and aliases.
// Called by dialect implementations in their init() functions.
func Register(d *Dialect) {
	dialectsMu.Lock()
	defer dialectsMu.Unlock()
	dialects[strings.ToLower(d.Name)] = d
	for _, alias := range d.Aliases {
		dialects[strings.ToLower(alias)] = d
	}
}

// Get returns a dialect by name or alias.
func Get(name string) (*Dialect, bool) {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	d, ok := dialects[strings.ToLower(name)]
	return d, ok
}

// Lookup is Get with descriptive errors.
func Lookup(name string) (*Dialect, error) {
	if name == "" {
		return nil, ErrDialectRequired
	}
	d, ok := Get(name)
	if !ok {
		return nil, &UnknownDialectError{Name: name, Available: List()}
	}
	return d, nil
}

// List returns all registered dialect names, without aliases (sorted).
func List() []string {
	dialectsMu.RLock()
	defer dialectsMu.RUnlock()
	seen := make(map[string]bool, len(dialects))
	names := make([]string, 0, len(dialects))
	for _, d := range dialects {
		if !seen[d.Name] {
			seen[d.Name] = true
			names = append(names, d.Name)
		}
	}
	sort.Strings(names)
	return names
}

// UnknownDialectError is returned when an unregistered dialect is requested.
type UnknownDialectError struct {
	Name      string
	Available []string
}

func (e *UnknownDialectError) Error() string {
	return fmt.Sprintf("unknown dialect %q (available: %s)", e.Name, strings.Join(e.Available, ", "))
}

package provider

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Factory builds a configured Provider. Factories run lazily on Get so
// a missing credential surfaces when the provider is first used rather
// than at import time.
type Factory func() (Provider, error)

var (
	factoriesMu sync.RWMutex
	factories   = map[string]Factory{}
)

// Register makes a provider available under the given name,
// overwriting any previous registration. Provider packages call this
// from init(), so a blank import is enough to wire one in.
func Register(name string, factory Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	factories[name] = factory
}

// Get builds the provider registered under name.
func Get(name string) (Provider, error) {
	factoriesMu.RLock()
	factory, ok := factories[name]
	factoriesMu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown provider %q, registered: %s",
			name, strings.Join(Available(), ", "))
	}
	return factory()
}

// Available lists the registered provider names, sorted.
func Available() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()

	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether a provider is registered under name.
func IsRegistered(name string) bool {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	_, ok := factories[name]
	return ok
}

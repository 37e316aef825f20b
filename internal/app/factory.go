// Package app holds the named application factories and assembles the process from one of them.
package app

import (
	"errors"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"sync"

	"github.com/janisto/hola-starter/internal/config"
)

// ErrUnknownFactory is returned by Lookup when no factory is registered under the name.
var ErrUnknownFactory = errors.New("unknown application factory")

// Factory builds the HTTP handler for one application variant.
type Factory func(cfg config.Config) (http.Handler, error)

var (
	factoriesMu sync.RWMutex
	factories   = make(map[string]Factory)
)

func init() {
	Register(config.DefaultFactory, NewRouter)
	Register("minimal", NewMinimalRouter)
}

// Register makes a factory available under name. It panics if name is empty, f is nil,
// or the name is already taken.
func Register(name string, f Factory) {
	factoriesMu.Lock()
	defer factoriesMu.Unlock()
	if name == "" {
		panic("app: Register with empty name")
	}
	if f == nil {
		panic("app: Register factory is nil")
	}
	if _, dup := factories[name]; dup {
		panic("app: Register called twice for factory " + name)
	}
	factories[name] = f
}

// Lookup returns the factory registered under name.
func Lookup(name string) (Factory, error) {
	factoriesMu.RLock()
	f, ok := factories[name]
	factoriesMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (registered: %s)", ErrUnknownFactory, name, strings.Join(Names(), ", "))
	}
	return f, nil
}

// Names returns the registered factory names in sorted order.
func Names() []string {
	factoriesMu.RLock()
	defer factoriesMu.RUnlock()
	names := make([]string, 0, len(factories))
	for name := range factories {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

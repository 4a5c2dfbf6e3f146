// Package game provides the mini-games a session can enter.
package game

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// ErrUnknownGame is returned when no game is registered under a name.
var ErrUnknownGame = errors.New("unknown game")

// Game is one running instance attached to a session.
type Game interface {
	// Start returns the opening text. An error means the game cannot run
	// and must be closed.
	Start() (string, error)
	// Handle processes one line of input. done reports that the game ended.
	Handle(input string) (reply string, done bool)
	// Close releases any resources. It is safe to call more than once.
	Close()
}

// Factory creates a fresh game instance.
type Factory func() (Game, error)

// Info describes a registered game.
type Info struct {
	Name        string
	Description string
}

type entry struct {
	info    Info
	factory Factory
}

// Registry maps game names to factories. Names are case-insensitive.
type Registry struct {
	mu    sync.RWMutex
	games map[string]entry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{games: make(map[string]entry)}
}

// Register adds a game under name.
func (r *Registry) Register(name, description string, f Factory) error {
	key := strings.ToUpper(strings.TrimSpace(name))
	if key == "" {
		return fmt.Errorf("game name is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.games[key]; ok {
		return fmt.Errorf("game %s already registered", key)
	}
	r.games[key] = entry{info: Info{Name: key, Description: description}, factory: f}
	return nil
}

// New starts a fresh instance of the named game.
func (r *Registry) New(name string) (Game, error) {
	r.mu.RLock()
	e, ok := r.games[strings.ToUpper(name)]
	r.mu.RUnlock()
	if !ok {
		return nil, ErrUnknownGame
	}
	return e.factory()
}

// List returns every registered game sorted by name.
func (r *Registry) List() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Info, 0, len(r.games))
	for _, e := range r.games {
		out = append(out, e.info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

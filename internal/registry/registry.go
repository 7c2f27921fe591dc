// Package registry keeps the table of playable game modes.
// Modes register a factory from init(), so the CLI, the SSH server and the
// HTTP API can all look modes up by ID without importing them directly.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/blockfall/internal/core"
)

// Game is what the platform drives on every tick.
// Implementations hold pure game logic: no terminal, no clock, no storage.
type Game interface {
	// ID is the stable mode identifier ("tetris", "tetris_marathon").
	// Scores are stored under it.
	ID() string

	// Title is the display name shown in menus and tables.
	Title() string

	// Reset starts a new session. Called once before the first Step.
	Reset(cfg core.RuntimeConfig)

	// Step advances the simulation by one fixed tick.
	Step(in core.InputFrame) core.StepResult

	// Render draws the current state into dst, sized to the terminal.
	// dst is cleared before the call.
	Render(dst *core.Screen)

	// State returns the score summary.
	State() core.GameState
}

// GameInfo describes a registered mode.
type GameInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// Factory creates a fresh, un-Reset game.
type Factory func() Game

var (
	factories = make(map[string]Factory)
	titles    = make(map[string]string)
	mu        sync.RWMutex
)

// Register adds a mode. It panics on a duplicate ID.
func Register(id string, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := factories[id]; exists {
		panic(fmt.Sprintf("registry: game %q already registered", id))
	}

	factories[id] = f
	titles[id] = f().Title()
}

// List returns all registered modes sorted by ID.
func List() []GameInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]GameInfo, 0, len(factories))
	for id := range factories {
		result = append(result, GameInfo{ID: id, Title: titles[id]})
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ID < result[j].ID
	})

	return result
}

// Lookup returns the info for id.
func Lookup(id string) (GameInfo, bool) {
	mu.RLock()
	defer mu.RUnlock()

	t, ok := titles[id]
	return GameInfo{ID: id, Title: t}, ok
}

// Create instantiates the mode registered under id.
func Create(id string) (Game, error) {
	mu.RLock()
	defer mu.RUnlock()

	f, ok := factories[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown game %q", id)
	}

	return f(), nil
}

// Exists reports whether id is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := factories[id]
	return ok
}

// Package tetris adapts the falling-block engine to the platform's
// fixed-tick game loop.
package tetris

import (
	"math/rand"
	"time"

	"github.com/vovakirdan/blockfall/internal/config"
	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/games/tetris/engine"
	"github.com/vovakirdan/blockfall/internal/registry"
)

// Mode selects how gravity behaves.
type Mode string

const (
	ModeClassic  Mode = "classic"  // Constant fall speed
	ModeMarathon Mode = "marathon" // Fall speed rises with score
)

// Game IDs used for registration and score storage.
const (
	IDClassic  = "tetris"
	IDMarathon = "tetris_marathon"
)

// configPath stores the custom config path set via CLI
var configPath string

// difficultyPreset stores the difficulty preset set via CLI
var difficultyPreset config.DifficultyPreset

// SetConfigPath sets the custom config path for loading.
func SetConfigPath(path string) {
	configPath = path
}

// SetDifficultyPreset sets the difficulty preset. Unknown names clear it.
func SetDifficultyPreset(preset string) {
	p, err := config.ParsePreset(preset)
	if err != nil {
		difficultyPreset = ""
		return
	}
	difficultyPreset = p
}

// Game implements registry.Game on top of engine.GameState.
type Game struct {
	mode       Mode
	cfg        config.TetrisConfig
	difficulty *config.DifficultyManager

	state *engine.GameState
	rng   *rand.Rand

	tickRate      int
	tick          uint64
	playTicks     uint64 // Ticks spent running, for the clock
	gravityTicker int

	pending []core.Event
}

// New creates a classic mode game.
func New() *Game {
	return &Game{mode: ModeClassic}
}

// NewMarathon creates a marathon mode game.
func NewMarathon() *Game {
	return &Game{mode: ModeMarathon}
}

func init() {
	registry.Register(IDClassic, func() registry.Game {
		return New()
	})
	registry.Register(IDMarathon, func() registry.Game {
		return NewMarathon()
	})
}

// ID returns the game identifier.
func (g *Game) ID() string {
	if g.mode == ModeMarathon {
		return IDMarathon
	}
	return IDClassic
}

// Title returns the display name.
func (g *Game) Title() string {
	if g.mode == ModeMarathon {
		return "Blockfall Marathon"
	}
	return "Blockfall"
}

// Mode returns the gravity mode.
func (g *Game) Mode() Mode {
	return g.mode
}

// Reset loads configuration and starts a new session. Difficulty presets
// only apply to marathon; classic keeps the configured interval.
func (g *Game) Reset(runtime core.RuntimeConfig) {
	cfg, err := config.LoadTetris(configPath)
	if err != nil {
		cfg = config.DefaultTetrisConfig()
	}
	if difficultyPreset != "" && g.mode == ModeMarathon {
		config.ApplyTetrisPreset(&cfg, difficultyPreset)
	}
	g.ResetWithConfig(runtime, cfg)
}

// ResetWithConfig starts a new session with an explicit configuration.
func (g *Game) ResetWithConfig(runtime core.RuntimeConfig, cfg config.TetrisConfig) {
	g.cfg = cfg
	g.difficulty = config.NewDifficultyManager(cfg.Difficulty)

	g.tickRate = runtime.TickRate
	if g.tickRate <= 0 {
		g.tickRate = core.DefaultConfig().TickRate
	}

	g.rng = rand.New(rand.NewSource(runtime.Seed))
	g.state = engine.New(g.rng)
	g.state.Subscribe(g.onEvent)

	g.tick = 0
	g.playTicks = 0
	g.gravityTicker = 0
	g.pending = nil
}

// onEvent queues engine notifications for the current StepResult.
func (g *Game) onEvent(e engine.Event) {
	switch e.Kind {
	case engine.EventLinesCleared:
		g.pending = append(g.pending, core.Event{Kind: core.EventLinesCleared, Count: e.Count, Score: e.Score})
	case engine.EventGameOver:
		g.pending = append(g.pending, core.Event{Kind: core.EventGameOver})
	}
}

// Step advances the game by one tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.tick++

	if in.Has(core.ActionRestart) && g.state.Status() == engine.StatusGameOver {
		g.restart()
		return g.result()
	}

	if in.Has(core.ActionPause) {
		g.state.TogglePause()
	}

	if g.state.Status() != engine.StatusRunning {
		return g.result()
	}

	g.playTicks++
	g.applyInput(in)

	// Gravity
	if g.state.Status() == engine.StatusRunning {
		g.gravityTicker++
		if g.gravityTicker >= g.GravityTicks() {
			g.gravityTicker = 0
			g.state.SoftDrop()
		}
	}

	return g.result()
}

// applyInput feeds the frame's actions to the engine in a fixed order so
// that replays are deterministic.
func (g *Game) applyInput(in core.InputFrame) {
	for range in.Count(core.ActionRotateCW) {
		g.state.RotateClockwise()
	}
	for range in.Count(core.ActionRotateCCW) {
		g.state.RotateCounterClockwise()
	}
	for range in.Count(core.ActionLeft) {
		g.state.MoveLeft()
	}
	for range in.Count(core.ActionRight) {
		g.state.MoveRight()
	}
	for range in.Count(core.ActionSoftDrop) {
		g.state.SoftDrop()
	}
	if in.Has(core.ActionHardDrop) {
		g.state.HardDrop()
		// The next piece gets a full gravity period.
		g.gravityTicker = 0
	}
}

// restart begins a fresh session with a new seed drawn from the old RNG.
func (g *Game) restart() {
	g.ResetWithConfig(core.RuntimeConfig{
		TickRate: g.tickRate,
		Seed:     g.rng.Int63(),
	}, g.cfg)
}

func (g *Game) result() core.StepResult {
	events := g.pending
	g.pending = nil
	return core.StepResult{State: g.State(), Events: events}
}

// GravityInterval returns the current time between gravity steps.
func (g *Game) GravityInterval() time.Duration {
	base := g.cfg.Gravity.Interval()
	if g.mode != ModeMarathon {
		return base
	}
	return g.difficulty.GravityInterval(base, g.cfg.Gravity.MinInterval(), g.state.Score(), int(g.playTicks))
}

// GravityTicks converts the gravity interval to whole ticks, at least one.
func (g *Game) GravityTicks() int {
	ticks := int((g.GravityInterval()*time.Duration(g.tickRate) + time.Second/2) / time.Second)
	return max(1, ticks)
}

// Elapsed returns the play time of the current session. The clock stops
// while paused and after game over.
func (g *Game) Elapsed() time.Duration {
	return time.Duration(g.playTicks) * time.Second / time.Duration(g.tickRate)
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	if g.state == nil {
		return core.GameState{}
	}
	return core.GameState{
		Score:    g.state.Score(),
		Lines:    g.state.Lines(),
		GameOver: g.state.Status() == engine.StatusGameOver,
		Paused:   g.state.Status() == engine.StatusPaused,
	}
}

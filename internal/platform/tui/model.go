package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/vovakirdan/blockfall/internal/core"
	"github.com/vovakirdan/blockfall/internal/registry"
	"github.com/vovakirdan/blockfall/internal/storage"
)

// Sounds receives gameplay cues from the loop. *audio.SoundManager
// satisfies it; a nil Sounds plays nothing.
type Sounds interface {
	StartMusic()
	StopMusic()
	SetPaused(paused bool)
	HandleEvent(e core.Event)
}

// Options carries the services a game model may use. Every field is optional.
type Options struct {
	Store  *storage.Store
	Sounds Sounds
	Player string

	// Embedded models hand control back to a session on Back instead of
	// quitting the program.
	Embedded bool
}

// clocked is implemented by games that track their own play time.
type clocked interface {
	Elapsed() time.Duration
}

// Model runs one game mode in the Bubble Tea loop.
type Model struct {
	game       registry.Game
	screen     *core.Screen
	opts       Options
	config     core.RuntimeConfig
	keys       *KeyMapper
	inputFrame core.InputFrame
	gameState  core.GameState
	loop       uint64
	sessionID  string // Identifies the current round in the score table
	scoreSaved bool   // Whether the current round's score has been saved
	quitting   bool
	backToMenu bool
}

// NewModel creates a model for game and starts its first round.
func NewModel(game registry.Game, cfg core.RuntimeConfig, opts Options) Model {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if cfg.TickRate <= 0 {
		cfg.TickRate = core.DefaultConfig().TickRate
	}
	if opts.Player == "" {
		opts.Player = defaultPlayer()
	}

	game.Reset(cfg)

	return Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		opts:       opts,
		config:     cfg,
		keys:       NewKeyMapper(),
		inputFrame: core.NewInputFrame(),
		gameState:  game.State(),
		loop:       nextLoop(),
		sessionID:  uuid.NewString(),
	}
}

// defaultPlayer names local players after their OS account.
func defaultPlayer() string {
	if u := os.Getenv("USER"); u != "" {
		return u
	}
	return "player"
}

// Init starts the tick loop and the music.
func (m Model) Init() tea.Cmd {
	if m.opts.Sounds != nil {
		m.opts.Sounds.StartMusic()
	}
	return tickCmd(m.config.TickRate, m.loop)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		return m.handleResize(msg)

	case TickMsg:
		if msg.Loop != m.loop {
			return m, nil
		}
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		//nolint:errcheck // Best-effort, the game continues regardless
		m.saveScreenshot()
		return m, nil
	}

	action, isQuit := m.keys.MapKey(msg)
	switch {
	case isQuit:
		m.leave()
		m.quitting = true
		return m, tea.Quit

	case action == core.ActionBack:
		// Only leave a round that is not in progress.
		if !m.gameState.GameOver && !m.gameState.Paused {
			return m, nil
		}
		m.leave()
		if !m.opts.Embedded {
			m.quitting = true
			return m, tea.Quit
		}
		m.backToMenu = true
		return m, nil

	case action != core.ActionNone:
		m.inputFrame.Set(action)
	}

	return m, nil
}

// handleResize adapts the screen buffer. The round keeps running; games
// lay themselves out from the buffer size on every frame.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)
	return m, nil
}

// handleTick runs one simulation step.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	prev := m.gameState
	result := m.game.Step(m.inputFrame)
	m.gameState = result.State
	m.inputFrame.Clear()

	if m.opts.Sounds != nil {
		for _, e := range result.Events {
			m.opts.Sounds.HandleEvent(e)
		}
		if prev.Paused != m.gameState.Paused {
			m.opts.Sounds.SetPaused(m.gameState.Paused)
		}
	}

	// A restart starts a new round.
	if prev.GameOver && !m.gameState.GameOver {
		m.sessionID = uuid.NewString()
		m.scoreSaved = false
		if m.opts.Sounds != nil {
			m.opts.Sounds.StartMusic()
		}
	}

	if m.gameState.GameOver && !m.scoreSaved {
		m.saveScore()
		if m.opts.Sounds != nil {
			m.opts.Sounds.StopMusic()
		}
	}

	return m, tickCmd(m.config.TickRate, m.loop)
}

// saveScore records the finished round once.
func (m *Model) saveScore() {
	m.scoreSaved = true
	if m.opts.Store == nil || m.gameState.Score == 0 {
		return
	}

	var played time.Duration
	if c, ok := m.game.(clocked); ok {
		played = c.Elapsed()
	}

	//nolint:errcheck // Best-effort save, game continues regardless
	m.opts.Store.SaveScore(storage.Result{
		SessionID: m.sessionID,
		GameID:    m.game.ID(),
		Player:    m.opts.Player,
		Score:     m.gameState.Score,
		Lines:     m.gameState.Lines,
		Duration:  played,
	})
}

// leave stops the tick loop and the music.
func (m *Model) leave() {
	m.loop = 0
	if m.opts.Sounds != nil {
		m.opts.Sounds.StopMusic()
	}
}

// saveScreenshot writes the current frame as plain text under
// ~/.blockfall/screenshots and returns the file path.
func (m *Model) saveScreenshot() (string, error) {
	m.screen.Clear()
	m.game.Render(m.screen)

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	dir := filepath.Join(home, ".blockfall", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	return path, nil
}

// View renders the current frame.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	m.screen.Clear()
	m.game.Render(m.screen)
	return RenderScreen(m.screen)
}

// BackToMenu reports whether the player asked to return to the menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// IsQuitting reports whether the player asked to quit.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// State returns the last observed game state.
func (m Model) State() core.GameState {
	return m.gameState
}

// Config returns the runtime config, updated by resizes.
func (m Model) Config() core.RuntimeConfig {
	return m.config
}

// Run plays game in the local terminal until the player quits.
func Run(game registry.Game, cfg core.RuntimeConfig, opts Options) error {
	opts.Embedded = false
	model := NewModel(game, cfg, opts)

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}

package main

import (
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockfall/internal/audio"
	"github.com/vovakirdan/blockfall/internal/config"
	"github.com/vovakirdan/blockfall/internal/games/tetris"
	"github.com/vovakirdan/blockfall/internal/platform/tui"
	"github.com/vovakirdan/blockfall/internal/registry"
	"github.com/vovakirdan/blockfall/internal/storage"
)

var (
	flagConfig     string
	flagDifficulty string
	flagPlayer     string
)

var playCmd = &cobra.Command{
	Use:   "play [mode]",
	Short: "Play a mode",
	Long: `Start playing the specified mode, "tetris" if none is given.

Modes:
  tetris           - Classic, constant gravity
  tetris_marathon  - Gravity speeds up with score and time

Controls:
  Left/Right, A/D  - Move
  Up/X             - Rotate clockwise
  Z                - Rotate counterclockwise
  Down/S           - Soft drop
  Space            - Hard drop
  P                - Pause
  R                - Restart (after game over)
  Ctrl+S           - Save a screenshot
  Q/Ctrl+C         - Quit

Difficulty options (marathon):
  easy   - Start at lowest speed, progresses to max
  normal - Start at 30% speed, progresses to max
  hard   - Start at 70% speed, progresses to max
  fixed  - No progression, stays at config's initial level

Examples:
  blockfall play
  blockfall play tetris_marathon --difficulty hard
  blockfall play --config ./my-tetris.yaml --sound`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPlay,
}

func init() {
	addModeFlags(playCmd)
}

// addModeFlags registers the flags that configure a mode before it starts.
func addModeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&flagConfig, "config", "", "Path to custom game config YAML")
	cmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
	cmd.Flags().StringVar(&flagPlayer, "player", "", "Name recorded with your scores (default: $USER)")
}

// applyModeFlags validates the mode flags and hands them to the game package.
func applyModeFlags() (config.TetrisConfig, error) {
	if flagDifficulty != "" {
		if _, err := config.ParsePreset(flagDifficulty); err != nil {
			return config.TetrisConfig{}, err
		}
	}

	cfg, err := config.LoadTetris(flagConfig)
	if err != nil {
		return cfg, err
	}

	tetris.SetConfigPath(flagConfig)
	tetris.SetDifficultyPreset(flagDifficulty)
	return cfg, nil
}

// openStore opens the score database. Play continues without one.
func openStore(logger *log.Logger) *storage.Store {
	store, err := storage.Open(flagDBPath)
	if err != nil {
		logger.Warn("could not open scores database, scores will not be saved", "error", err)
		return nil
	}
	return store
}

// openSounds starts audio when --sound is set. The returned manager may
// be nil and is safe to use either way.
func openSounds(cfg config.AudioConfig, logger *log.Logger) *audio.SoundManager {
	if !flagSound {
		return nil
	}
	sm := audio.NewSoundManager(cfg, logger)
	if err := sm.Initialize(); err != nil {
		logger.Warn("sound disabled", "error", err)
		return nil
	}
	return sm
}

// gameOptions builds the options shared by play and menu.
func gameOptions(store *storage.Store, sm *audio.SoundManager) tui.Options {
	opts := tui.Options{Store: store, Player: flagPlayer}
	if sm != nil {
		opts.Sounds = sm
	}
	return opts
}

func runPlay(cmd *cobra.Command, args []string) error {
	gameID := tetris.IDClassic
	if len(args) == 1 {
		gameID = args[0]
	}

	// Check if mode exists
	if !registry.Exists(gameID) {
		return fmt.Errorf("unknown mode %q, run 'blockfall list' to see available modes", gameID)
	}

	logger := newLogger("blockfall")

	gameCfg, err := applyModeFlags()
	if err != nil {
		return err
	}

	// Create game instance
	game, err := registry.Create(gameID)
	if err != nil {
		return fmt.Errorf("error creating game: %w", err)
	}

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	sm := openSounds(gameCfg.Audio, logger)
	defer sm.Cleanup()

	if err := tui.Run(game, runtimeConfig(), gameOptions(store, sm)); err != nil {
		return fmt.Errorf("error running game: %w", err)
	}
	return nil
}

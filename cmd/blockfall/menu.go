package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockfall/internal/platform/tui"
	"github.com/vovakirdan/blockfall/internal/registry"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start blockfall with a mode picker menu",
	Long: `Start blockfall in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to select a mode.
After a game ends, you return to the menu to play again.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Select mode
  Tab          - High scores
  Q            - Quit

Examples:
  blockfall menu
  blockfall menu --fps 30
  blockfall menu --db ./scores.db --sound`,
	Args: cobra.NoArgs,
	RunE: runMenu,
}

func init() {
	addModeFlags(menuCmd)
}

func runMenu(_ *cobra.Command, _ []string) error {
	logger := newLogger("blockfall")

	gameCfg, err := applyModeFlags()
	if err != nil {
		return err
	}

	store := openStore(logger)
	if store != nil {
		defer store.Close()
	}

	sm := openSounds(gameCfg.Audio, logger)
	defer sm.Cleanup()

	cfg := runtimeConfig()
	fixedSeed := cfg.Seed != 0

	// Menu loop
	for {
		menuResult, err := tui.RunMenu(store, cfg, flagPlayer)
		if err != nil {
			return err
		}

		// Update config with any size changes
		cfg = menuResult.Config

		if menuResult.Quit {
			return nil
		}

		if menuResult.WantsScoreboard {
			goBack, sbErr := tui.RunScoreboard(store, cfg.ScreenW, cfg.ScreenH)
			if sbErr != nil {
				logger.Error("scoreboard failed", "error", sbErr)
			}
			if goBack {
				continue
			}
			return nil
		}

		if menuResult.GameID == "" {
			return nil
		}

		game, err := registry.Create(menuResult.GameID)
		if err != nil {
			logger.Error("cannot create game", "mode", menuResult.GameID, "error", err)
			continue
		}

		// A fresh seed per round unless --seed pins it
		if !fixedSeed {
			cfg.Seed = time.Now().UnixNano()
		}

		if err := tui.Run(game, cfg, gameOptions(store, sm)); err != nil {
			return fmt.Errorf("error running game: %w", err)
		}
	}
}

package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/blockfall/internal/registry"
	"github.com/vovakirdan/blockfall/internal/storage"
)

var (
	flagScoresLimit int
	flagAll         bool
	flagClear       bool
	flagYes         bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [mode]",
	Short: "Show high scores",
	Long: `Display the top scores for the specified mode. Without a mode,
shows a summary of every mode that has been played.

Examples:
  blockfall scores
  blockfall scores tetris
  blockfall scores tetris_marathon --limit 25
  blockfall scores tetris --all
  blockfall scores tetris --clear --yes`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScores,
}

func init() {
	scoresCmd.Flags().IntVarP(&flagScoresLimit, "limit", "n", storage.DefaultLimit, "Number of scores to show")
	scoresCmd.Flags().BoolVarP(&flagAll, "all", "a", false, "Show every recorded score instead of the top --limit")
	scoresCmd.Flags().BoolVar(&flagClear, "clear", false, "Delete every score recorded for the mode")
	scoresCmd.Flags().BoolVarP(&flagYes, "yes", "y", false, "Confirm --clear")
}

var (
	emph = color.New(color.FgBlue, color.Bold).SprintFunc()
	warn = color.New(color.FgYellow, color.Bold).SprintFunc()
)

func runScores(cmd *cobra.Command, args []string) error {
	var info registry.GameInfo
	if len(args) == 1 {
		var ok bool
		if info, ok = registry.Lookup(args[0]); !ok {
			return fmt.Errorf("unknown mode %q, run 'blockfall list' to see available modes", args[0])
		}
	}

	if flagClear {
		switch {
		case info.ID == "":
			return errors.New("--clear needs a mode")
		case !flagYes:
			return fmt.Errorf("refusing to clear %s scores without --yes", info.ID)
		}
	}

	store, err := storage.Open(flagDBPath)
	if err != nil {
		return fmt.Errorf("error opening scores database: %w", err)
	}
	defer store.Close()

	switch {
	case flagClear:
		if err := store.ClearScores(info.ID); err != nil {
			return err
		}
		fmt.Printf("Cleared all %s scores.\n", emph(info.Title))
		return nil
	case info.ID == "":
		return printSummary(store)
	default:
		return printTopScores(store, info)
	}
}

func printTopScores(store *storage.Store, info registry.GameInfo) error {
	var scores []storage.ScoreEntry
	var err error
	if flagAll {
		scores, err = store.AllScores(info.ID)
	} else {
		scores, err = store.TopScores(info.ID, flagScoresLimit)
	}
	if err != nil {
		return fmt.Errorf("error retrieving scores: %w", err)
	}

	fmt.Printf("High Scores - %s\n", emph(info.Title))
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'blockfall play %s' to set the first high score!\n", info.ID)
		return nil
	}

	data := make([][]string, 0, len(scores))
	for i, entry := range scores {
		data = append(data, []string{
			strconv.Itoa(i + 1),
			entry.Player,
			humanize.Comma(int64(entry.Score)),
			strconv.Itoa(entry.Lines),
			entry.Duration.Round(time.Second).String(),
			humanize.Time(entry.CreatedAt),
		})
	}
	printTable([]string{"Rank", "Player", "Score", "Lines", "Time", "When"}, data)

	fmt.Println()
	fmt.Printf("Best: %s\n", warn(humanize.Comma(int64(scores[0].Score))))
	return nil
}

func printSummary(store *storage.Store) error {
	stats, err := store.GetAllGamesStats()
	if err != nil {
		return fmt.Errorf("error retrieving stats: %w", err)
	}

	if len(stats) == 0 {
		fmt.Println("No games played yet. Run 'blockfall play' to start.")
		return nil
	}

	var data [][]string
	for _, g := range registry.List() {
		st, ok := stats[g.ID]
		if !ok {
			continue
		}
		data = append(data, []string{
			g.Title,
			humanize.Comma(int64(st.GamesCount)),
			humanize.Comma(int64(st.HighScore)),
			humanize.Comma(int64(st.AvgScore)),
			humanize.Comma(st.TotalLines),
			st.TotalTime.Round(time.Second).String(),
			humanize.Time(st.LastPlayed),
		})
	}
	printTable([]string{"Mode", "Games", "Best", "Average", "Lines", "Played", "Last"}, data)
	return nil
}

func printTable(header []string, data [][]string) {
	table := tablewriter.NewWriter(os.Stdout)

	table.SetHeader(header)
	table.SetHeaderLine(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(true)

	table.SetBorder(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetColumnSeparator("  ")
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("     ")

	table.AppendBulk(data)

	table.Render()
}

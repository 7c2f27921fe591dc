// Package tui runs blockfall modes inside Bubble Tea, locally or over SSH.
// It owns the tick loop, key bindings, rendering and score saving; games
// only see core.InputFrame and core.Screen.
package tui

import (
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg triggers one simulation step of the loop identified by Loop.
// Ticks from a loop that has been left (back to menu) are dropped, so a
// new game never runs two tick chains at once.
type TickMsg struct {
	At   time.Time
	Loop uint64
}

var loopSeq atomic.Uint64

// nextLoop returns a fresh tick loop identifier.
func nextLoop() uint64 {
	return loopSeq.Add(1)
}

// tickCmd schedules the next TickMsg at the given rate.
func tickCmd(tickRate int, loop uint64) tea.Cmd {
	if tickRate <= 0 {
		tickRate = 60
	}
	interval := time.Second / time.Duration(tickRate)
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{At: t, Loop: loop}
	})
}

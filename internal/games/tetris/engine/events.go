package engine

// EventKind identifies a notification emitted by the engine.
type EventKind int

const (
	// EventLinesCleared fires after a clear pass removed at least one row.
	EventLinesCleared EventKind = iota + 1
	// EventGameOver fires when a freshly spawned piece cannot be placed.
	EventGameOver
)

// String returns a short name for the event kind.
func (k EventKind) String() string {
	switch k {
	case EventLinesCleared:
		return "lines_cleared"
	case EventGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// Event is delivered synchronously to listeners.
// Count and Score are set for EventLinesCleared only.
type Event struct {
	Kind  EventKind
	Count int // Rows removed by this clear pass
	Score int // Score after the clear
}

// Listener receives engine events. It is called from inside the
// operation that produced the event and must not call back into the
// engine.
type Listener func(Event)

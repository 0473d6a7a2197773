package tetris

// EventKind identifies something that happened inside the game. Front ends use
// events for sound and animations.
type EventKind int

const (
	EventStart EventKind = iota + 1
	EventPause
	EventResume
	EventMove
	EventRotate
	EventLock
	EventLineClear
	EventTetris // four lines cleared by a single lock.
	EventLevelUp
	EventGameOver
)

var eventNames = map[EventKind]string{
	EventStart:     "start",
	EventPause:     "pause",
	EventResume:    "resume",
	EventMove:      "move",
	EventRotate:    "rotate",
	EventLock:      "lock",
	EventLineClear: "line_clear",
	EventTetris:    "tetris",
	EventLevelUp:   "level_up",
	EventGameOver:  "game_over",
}

func (k EventKind) String() string { return eventNames[k] }

// Event is a value copy of what happened, listeners can't reach the game through it.
type Event struct {
	Kind  EventKind
	Lines int   // lines cleared, for EventLineClear and EventTetris.
	Rows  []int // rows that were complete before clearing.
	Level int
	Score int
}

// Listener is called synchronously from within the game, it must not call back
// into it. Slow work like playing a sound belongs in its own goroutine.
type Listener func(Event)

// Package tetris contains the logic of the game: the stack, the tetrominoes,
// the scoring and the Ready > Playing <> Paused > GameOver state machine.
//
// The game has no timer of its own. Whoever embeds it calls Tick with the current
// time and the game decides whether the tetromino has to fall.
package tetris

import "time"

type State int

const (
	Ready State = iota
	Playing
	Paused
	GameOver
)

var stateNames = [...]string{Ready: "ready", Playing: "playing", Paused: "paused", GameOver: "game_over"}

func (s State) String() string {
	if s < Ready || s > GameOver {
		return ""
	}
	return stateNames[s]
}

// ParseState is the inverse of State.String. Unknown names return Ready and false.
func ParseState(name string) (State, bool) {
	for i, n := range stateNames {
		if n == name {
			return State(i), true
		}
	}
	return Ready, false
}

type Game struct {
	board     *Board
	current   *Tetromino
	next      *Tetromino
	state     State
	score     int
	level     int
	lines     int
	delay     time.Duration
	generator Generator
	listener  Listener

	softDrop bool
	dueAt    time.Time // zero when the descent deadline isn't armed.
}

type Option func(*Game)

// WithSeed makes the sequence of tetrominoes reproducible.
func WithSeed(seed uint64) Option {
	return func(g *Game) { g.generator = newRandomGenerator(seed) }
}

func WithGenerator(gen Generator) Option {
	return func(g *Game) { g.generator = gen }
}

func WithListener(l Listener) Option {
	return func(g *Game) { g.listener = l }
}

// New returns a game in the Ready state.
func New(opts ...Option) *Game {
	g := &Game{
		board: NewBoard(),
		state: Ready,
	}
	for _, o := range opts {
		o(g)
	}
	if g.generator == nil {
		g.generator = newRandomGenerator(0)
	}
	g.resetStats()
	return g
}

func (g *Game) resetStats() {
	g.score = 0
	g.level = 1
	g.lines = 0
	g.delay = InitialDelay
}

func (g *Game) emit(e Event) {
	if g.listener == nil {
		return
	}
	e.Level = g.level
	e.Score = g.score
	g.listener(e)
}

// Start resets the stack and the stats and starts playing. It does nothing while
// a game is being played.
func (g *Game) Start() {
	if g.state == Playing {
		return
	}
	g.board.Clear()
	g.resetStats()
	g.current = nil
	g.next = g.draw()
	g.state = Playing
	g.dueAt = time.Time{}
	g.softDrop = false
	g.emit(Event{Kind: EventStart})
	g.spawn()
}

// TogglePause pauses a game being played or resumes a paused one.
func (g *Game) TogglePause() {
	switch g.state {
	case Playing:
		g.state = Paused
		g.dueAt = time.Time{}
		g.emit(Event{Kind: EventPause})
	case Paused:
		g.state = Playing
		g.emit(Event{Kind: EventResume})
	}
}

// Stop ends the game from any state.
func (g *Game) Stop() {
	g.dueAt = time.Time{}
	g.softDrop = false
	if g.state == GameOver {
		return
	}
	g.state = GameOver
	g.emit(Event{Kind: EventGameOver})
}

// SetSoftDrop speeds up the descent to SoftDropDelay while on.
func (g *Game) SetSoftDrop(on bool) {
	if g.softDrop == on {
		return
	}
	g.softDrop = on
	// re-arm so switching on takes effect at the next tick.
	g.dueAt = time.Time{}
}

func (g *Game) interval() time.Duration {
	if g.softDrop {
		return min(g.delay, SoftDropDelay)
	}
	return g.delay
}

// Tick moves the tetromino down once its descent interval has elapsed. It returns
// true if the game changed. The first tick after starting or resuming only arms
// the interval, late ticks don't accumulate missed steps.
func (g *Game) Tick(now time.Time) bool {
	if g.state != Playing {
		return false
	}
	if g.dueAt.IsZero() {
		g.dueAt = now.Add(g.interval())
		return false
	}
	if now.Before(g.dueAt) {
		return false
	}
	g.MoveDown()
	if g.state == Playing {
		g.dueAt = now.Add(g.interval())
	}
	return true
}

func (g *Game) playable() bool {
	return g.current != nil && g.state == Playing
}

// MoveDown moves the tetromino one row down, locking it if it can't.
func (g *Game) MoveDown() {
	if !g.playable() {
		return
	}
	g.current.MoveDown()
	if !g.board.CanPlace(g.current) {
		g.current.MoveUp()
		g.lock()
	}
}

func (g *Game) MoveLeft() {
	if !g.playable() {
		return
	}
	g.current.MoveLeft()
	if !g.board.CanPlace(g.current) {
		g.current.MoveRight()
		return
	}
	g.emit(Event{Kind: EventMove})
}

func (g *Game) MoveRight() {
	if !g.playable() {
		return
	}
	g.current.MoveRight()
	if !g.board.CanPlace(g.current) {
		g.current.MoveLeft()
		return
	}
	g.emit(Event{Kind: EventMove})
}

// Rotate rotates the tetromino clockwise. There are no wall kicks, a blocked
// rotation is undone.
func (g *Game) Rotate() {
	if !g.playable() {
		return
	}
	g.current.RotateClockwise()
	if !g.board.CanPlace(g.current) {
		g.current.RotateCounterClockwise()
		return
	}
	g.emit(Event{Kind: EventRotate})
}

// HardDrop drops the tetromino down the stack and locks it without waiting for
// the next tick.
func (g *Game) HardDrop() {
	if !g.playable() {
		return
	}
	g.current.y += g.dropDownDelta(g.current)
	g.lock()
}

// dropDownDelta returns how many rows t can fall before colliding.
func (g *Game) dropDownDelta(t *Tetromino) int {
	test := t.Copy()
	var d int
	for {
		test.MoveDown()
		if !g.board.CanPlace(test) {
			return d
		}
		d++
	}
}

// lock moves the current tetromino to the stack and sets up the next round.
func (g *Game) lock() {
	g.board.Place(g.current)
	g.emit(Event{Kind: EventLock})

	rows := g.board.FullLines()
	if cleared := g.board.ClearCompleteLines(); cleared > 0 {
		g.addLines(cleared)
		kind := EventLineClear
		if cleared == 4 {
			kind = EventTetris
		}
		g.emit(Event{Kind: kind, Lines: cleared, Rows: rows})
		g.setLevel()
	}

	if g.board.IsGameOver() {
		g.Stop()
		return
	}
	g.spawn()
}

func (g *Game) addLines(cleared int) {
	g.lines += cleared
	g.score += LineScores[cleared] * g.level
}

func (g *Game) setLevel() {
	level := g.lines/LinesPerLevel + 1
	if level == g.level {
		return
	}
	g.level = level
	g.delay = delayFor(level)
	g.emit(Event{Kind: EventLevelUp})
}

// spawn promotes the next tetromino to current and draws a new next. A current
// tetromino that doesn't fit ends the game before it's ever played.
func (g *Game) spawn() {
	g.current = g.next
	g.next = g.draw()
	if !g.board.CanPlace(g.current) {
		g.Stop()
	}
}

func (g *Game) draw() *Tetromino {
	return NewTetromino(g.generator.Next())
}

// Grid returns a copy of the stack, without the current tetromino.
func (g *Game) Grid() [][]Shape { return g.board.Grid() }

// Current returns a copy of the tetromino being played, nil before the first start.
func (g *Game) Current() *Tetromino { return g.current.Copy() }

// Next returns a copy of the upcoming tetromino, nil before the first start.
func (g *Game) Next() *Tetromino { return g.next.Copy() }

// Ghost returns where the current tetromino would land if dropped now, nil when
// there's no tetromino in play or it overlaps the stack.
func (g *Game) Ghost() *Tetromino {
	if g.current == nil || (g.state != Playing && g.state != Paused) || !g.board.CanPlace(g.current) {
		return nil
	}
	ghost := g.current.Copy()
	ghost.y += g.dropDownDelta(ghost)
	return ghost
}

func (g *Game) State() State { return g.state }
func (g *Game) Score() int   { return g.score }
func (g *Game) Level() int   { return g.level }
func (g *Game) Lines() int   { return g.lines }

// Delay is the automatic descent interval for the current level. It changes on
// level up so it has to be read again after every lock.
func (g *Game) Delay() time.Duration { return g.delay }

// Snapshot is a copy of everything a front end needs to draw the game.
type Snapshot struct {
	State   State
	Score   int
	Level   int
	Lines   int
	Delay   time.Duration
	Stack   [][]Shape
	Current *Tetromino
	Next    *Tetromino
	Ghost   *Tetromino
}

func (g *Game) Snapshot() Snapshot {
	return Snapshot{
		State:   g.state,
		Score:   g.score,
		Level:   g.level,
		Lines:   g.lines,
		Delay:   g.delay,
		Stack:   g.board.Grid(),
		Current: g.Current(),
		Next:    g.Next(),
		Ghost:   g.Ghost(),
	}
}

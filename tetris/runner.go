package tetris

import (
	"sync"
	"time"
)

type Action string

const (
	StartGame       Action = "start"            // Starts a new game unless one is being played.
	TogglePause     Action = "pause"            // Pauses or resumes the game.
	StopGame        Action = "stop"             // Ends the game.
	MoveLeft        Action = "left"             // Moves the Tetromino one step to the left.
	MoveRight       Action = "right"            // Moves the Tetromino one step to the right.
	MoveDown        Action = "down"             // Moves the Tetromino one step down.
	DropDown        Action = "drop"             // Drops the Tetromino down the stack.
	Rotate          Action = "rotate"           // Rotates the Tetromino clockwise.
	SoftDrop        Action = "softdrop"         // Speeds up the descent until released.
	SoftDropRelease Action = "softdrop_release" // Back to the level's descent speed.
)

var actions = []Action{StartGame, TogglePause, StopGame, MoveLeft, MoveRight, MoveDown, DropDown, Rotate, SoftDrop, SoftDropRelease}

// ParseAction returns the action named s.
func ParseAction(s string) (Action, bool) {
	for _, a := range actions {
		if string(a) == s {
			return a, true
		}
	}
	return "", false
}

// frameInterval is how often the runner ticks the game.
const frameInterval = 10 * time.Millisecond

type Ticker interface {
	C() <-chan time.Time
	Reset(time.Duration)
	Stop()
}

type wrappedTicker struct {
	ticker *time.Ticker
}

func newWrappedTicker(d time.Duration) *wrappedTicker {
	return &wrappedTicker{ticker: time.NewTicker(d)}
}

func (t *wrappedTicker) C() <-chan time.Time   { return t.ticker.C }
func (t *wrappedTicker) Stop()                 { t.ticker.Stop() }
func (t *wrappedTicker) Reset(d time.Duration) { t.ticker.Reset(d) }

// Runner drives a Game from a single goroutine: ticker frames and actions are
// applied one at a time so the game is never seen half way through a move.
type Runner struct {
	game     *Game
	ticker   Ticker
	actionCh chan Action
	updateCh chan Snapshot
	doneCh   chan struct{}
	stopOnce sync.Once
	loop     sync.WaitGroup
	mu       sync.RWMutex
}

// NewRunner returns a runner for a new game ticking every few milliseconds.
func NewRunner(opts ...Option) *Runner {
	t := newWrappedTicker(time.Hour)
	t.Stop()
	return NewConfigurableRunner(New(opts...), t)
}

func NewConfigurableRunner(g *Game, t Ticker) *Runner {
	return &Runner{
		game:     g,
		ticker:   t,
		actionCh: make(chan Action),
		updateCh: make(chan Snapshot, 1),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the loop in its own goroutine. The game itself starts with the
// StartGame action.
func (r *Runner) Start() {
	r.ticker.Reset(frameInterval)
	r.publish()
	r.loop.Add(1)
	go r.listen()
}

// Stop ends the loop and returns once it has exited, so the listener is never
// called after Stop. The game keeps its last state.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() {
		r.ticker.Stop()
		close(r.doneCh)
	})
	r.loop.Wait()
}

// Action queues a for the loop. It returns without effect once stopped.
func (r *Runner) Action(a Action) {
	select {
	case r.actionCh <- a:
	case <-r.doneCh:
	}
}

// Updates delivers a snapshot every time the game changes. Only the latest
// snapshot is kept when the reader falls behind.
func (r *Runner) Updates() <-chan Snapshot { return r.updateCh }

// Done is closed when the runner stops.
func (r *Runner) Done() <-chan struct{} { return r.doneCh }

// Read returns a copy of the current game that's safe to read concurrently.
func (r *Runner) Read() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.game.Snapshot()
}

func (r *Runner) listen() {
	defer r.loop.Done()
	for {
		select {
		case now := <-r.ticker.C():
			r.mu.Lock()
			changed := r.game.Tick(now)
			r.mu.Unlock()
			if !changed {
				continue
			}
		case a := <-r.actionCh:
			r.mu.Lock()
			r.apply(a)
			r.mu.Unlock()
		case <-r.doneCh:
			return
		}
		r.publish()
	}
}

func (r *Runner) apply(a Action) {
	switch a {
	case StartGame:
		r.game.Start()
	case TogglePause:
		r.game.TogglePause()
	case StopGame:
		r.game.Stop()
	case MoveLeft:
		r.game.MoveLeft()
	case MoveRight:
		r.game.MoveRight()
	case MoveDown:
		r.game.MoveDown()
	case DropDown:
		r.game.HardDrop()
	case Rotate:
		r.game.Rotate()
	case SoftDrop:
		r.game.SetSoftDrop(true)
	case SoftDropRelease:
		r.game.SetSoftDrop(false)
	}
}

// publish replaces whatever snapshot is waiting with the current one. The loop is
// the only sender so the second send can't block.
func (r *Runner) publish() {
	s := r.Read()
	select {
	case r.updateCh <- s:
	default:
		select {
		case <-r.updateCh:
		default:
		}
		r.updateCh <- s
	}
}

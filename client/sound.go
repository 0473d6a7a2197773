package client

import (
	"sync"

	"classictetris/tetris"
)

type ringer interface {
	bell(n int)
}

// rings is how many times the bell rings for each event.
var rings = map[tetris.EventKind]int{
	tetris.EventLineClear: 1,
	tetris.EventTetris:    2,
	tetris.EventLevelUp:   2,
	tetris.EventGameOver:  3,
}

// sound rings the terminal bell on game events. The bell is written from its own
// goroutine so the game loop never waits on the terminal.
type sound struct {
	enabled bool
	out     ringer
	wg      sync.WaitGroup
	mu      sync.Mutex
	closed  bool
}

func newSound(enabled bool, out ringer) *sound {
	return &sound{enabled: enabled, out: out}
}

func (s *sound) play(k tetris.EventKind) {
	n := rings[k]
	if !s.enabled || n == 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.out.bell(n)
	}()
}

// listener plays the events of a local game.
func (s *sound) listener() tetris.Listener {
	return func(e tetris.Event) { s.play(e.Kind) }
}

// compare plays what happened between two snapshots of a remote game, which
// doesn't deliver its events.
func (s *sound) compare(prev, cur tetris.Snapshot) {
	switch cleared := cur.Lines - prev.Lines; {
	case cleared == 4:
		s.play(tetris.EventTetris)
	case cleared > 0:
		s.play(tetris.EventLineClear)
	}
	if cur.Level > prev.Level && prev.Level > 0 {
		s.play(tetris.EventLevelUp)
	}
	if cur.State == tetris.GameOver && prev.State != tetris.GameOver {
		s.play(tetris.EventGameOver)
	}
}

// wait blocks until the bells being rung are done. Nothing rings afterwards.
func (s *sound) wait() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.wg.Wait()
}

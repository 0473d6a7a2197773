package tetris

import (
	"sync"
	"time"
)

// MockTicker is a mock implementation of the ticker interface.
type MockTicker struct {
	ch          chan time.Time
	stop, reset bool
	mu          sync.Mutex
}

func NewMockTicker() *MockTicker { return &MockTicker{ch: make(chan time.Time)} }

func (m *MockTicker) C() <-chan time.Time { return m.ch }

// Tick sends a frame at the given time.
func (m *MockTicker) Tick(now time.Time) { m.ch <- now }

func (m *MockTicker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stop = true
}

func (m *MockTicker) Reset(time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reset = true
}

func (m *MockTicker) IsReset() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.reset
}

func (m *MockTicker) IsStop() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stop
}

// NewTestGame returns a game being played where every tetromino has the given shape.
// The current one is at the spawn location.
func NewTestGame(shape Shape, opts ...Option) *Game {
	g := New(append([]Option{WithGenerator(Sequence(shape))}, opts...)...)
	g.Start()
	return g
}

// SetCell sets a stack cell, for tests that need a pre-built stack.
func (g *Game) SetCell(x, y int, s Shape) {
	if inBounds(x, y) {
		g.board.stack[y][x] = s
	}
}

// SetPosition moves the current tetromino without checking for collisions.
func (g *Game) SetPosition(x, y int) {
	if g.current != nil {
		g.current.x, g.current.y = x, y
	}
}

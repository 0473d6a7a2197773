// Package client is the terminal front end: it reads the keyboard, drives a local
// or remote game and draws it.
package client

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"
	"unicode"

	"classictetris/tetris"

	"github.com/eiannone/keyboard"
)

const connectTimeout = 10 * time.Second

type clientState int

const (
	lobby clientState = iota
	waiting
	playing
	quitting
)

// state is shared between the keyboard loop and the goroutine following the game.
type state struct {
	current clientState
	game    tetrisGame
	cancel  context.CancelFunc
	best    int
	mu      sync.Mutex
}

func (s *state) get() (clientState, tetrisGame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current, s.game
}

func (s *state) set(c clientState, g tetrisGame) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = c
	s.game = g
}

// wait moves to the waiting state while a connection is being made.
func (s *state) wait(cancel context.CancelFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = waiting
	s.cancel = cancel
}

// connected moves from waiting to playing g. It returns false when the wait was
// cancelled in the meantime.
func (s *state) connected(g tetrisGame) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current != waiting {
		return false
	}
	s.current = playing
	s.game = g
	s.cancel = nil
	return true
}

// abort cancels a pending connection and goes back to the lobby.
func (s *state) abort() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.current = lobby
}

// finish goes back to the lobby if g is still the game being played.
func (s *state) finish(g tetrisGame, score int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.best = max(s.best, score)
	if s.game != g || s.current != playing {
		return false
	}
	s.current = lobby
	s.game = nil
	return true
}

type tetrisGame interface {
	Start()
	Action(tetris.Action)
	Updates() <-chan tetris.Snapshot
	Done() <-chan struct{}
	Stop()
}

type renderer interface {
	game(tetris.Snapshot)
	lobby(lobbyMessage)
	reset()
}

type Client struct {
	render  renderer
	sound   *sound
	options *Options
	logger  *slog.Logger
	kbCh    <-chan keyboard.KeyEvent
	state   *state

	newLocal func(tetris.Listener) tetrisGame
	dial     func(ctx context.Context, addr string) (tetrisGame, error)
}

type Options struct {
	Writer  io.Writer
	NoGhost bool
	Sound   bool
	Seed    uint64
	// Address of the engine server used to play online.
	Address string
	Name    string
}

func New(l *slog.Logger, o *Options) (*Client, error) {
	var w io.Writer = os.Stdout
	if o.Writer != nil {
		w = o.Writer
	}
	r, err := newRender(w, l, o.NoGhost, o.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to load renderer: %w", err)
	}
	kb, err := keyboard.GetKeys(20)
	if err != nil {
		return nil, fmt.Errorf("failed to open keyboard: %w", err)
	}
	c := &Client{
		render:  r,
		sound:   newSound(o.Sound, r),
		options: o,
		logger:  l,
		kbCh:    kb,
		state:   &state{current: lobby},
	}
	c.newLocal = func(listener tetris.Listener) tetrisGame {
		opts := []tetris.Option{tetris.WithListener(listener)}
		if o.Seed != 0 {
			opts = append(opts, tetris.WithSeed(o.Seed))
		}
		return tetris.NewRunner(opts...)
	}
	c.dial = func(ctx context.Context, addr string) (tetrisGame, error) {
		g, err := dialRemote(ctx, addr, l)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	return c, nil
}

// Start shows the lobby and blocks until the player quits. It returns the best
// score of the session.
func (c *Client) Start() int {
	c.render.game(tetris.New().Snapshot())
	c.render.lobby(defaultLobby())
	var wg sync.WaitGroup
	wg.Add(1)
	go c.listenKB(&wg)
	wg.Wait()

	c.state.abort()
	_, g := c.state.get()
	c.state.set(quitting, nil)
	if g != nil {
		g.Stop()
	}
	c.sound.wait()

	c.state.mu.Lock()
	defer c.state.mu.Unlock()
	return c.state.best
}

// Close releases the keyboard.
func (c *Client) Close() error {
	return keyboard.Close()
}

func (c *Client) listenKB(wg *sync.WaitGroup) {
	defer wg.Done()
	softDrop := false
	for {
		event, ok := <-c.kbCh
		if !ok {
			c.logger.Error("Keyboard events channel closed unexpectedly")
			return
		}
		if event.Err != nil {
			c.logger.Error("keysEvents error", slog.String("error", event.Err.Error()))
			return
		}
		if event.Key == keyboard.KeyCtrlC {
			return
		}
		r := unicode.ToLower(event.Rune)
		current, g := c.state.get()
		switch current {
		case lobby:
			switch {
			case r == 'p' || event.Key == keyboard.KeyEnter:
				softDrop = false
				c.play(c.newLocal(c.sound.listener()))
			case r == 'o':
				softDrop = false
				c.online()
			case r == 'q' || event.Key == keyboard.KeyEsc:
				return
			}
		case waiting:
			if r == 'c' || event.Key == keyboard.KeyEsc {
				c.state.abort()
				c.render.reset()
				c.render.lobby(defaultLobby())
			}
		case playing:
			var a tetris.Action
			switch {
			case event.Key == keyboard.KeyArrowDown || r == 's':
				a = tetris.MoveDown
			case event.Key == keyboard.KeyArrowLeft || r == 'a':
				a = tetris.MoveLeft
			case event.Key == keyboard.KeyArrowRight || r == 'd':
				a = tetris.MoveRight
			case event.Key == keyboard.KeyArrowUp || r == 'e':
				a = tetris.Rotate
			case event.Key == keyboard.KeySpace:
				a = tetris.DropDown
			case r == 'x':
				// the keyboard doesn't report key releases so soft drop is a toggle.
				softDrop = !softDrop
				a = tetris.SoftDropRelease
				if softDrop {
					a = tetris.SoftDrop
				}
			case r == 'p':
				a = tetris.TogglePause
			case event.Key == keyboard.KeyEsc:
				a = tetris.StopGame
			default:
				continue
			}
			g.Action(a)
		}
	}
}

func (c *Client) play(g tetrisGame) {
	c.state.set(playing, g)
	c.start(g, false)
}

// start starts a new game on g and follows it until it's over.
func (c *Client) start(g tetrisGame, remote bool) {
	c.render.reset()
	go c.listenGame(g, remote)
	g.Start()
	g.Action(tetris.StartGame)
}

func (c *Client) online() {
	if c.options.Address == "" {
		c.render.lobby(errorMessage("no server, use --address"))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	c.state.wait(cancel)
	c.render.lobby(connecting(c.options.Address))
	go func() {
		defer cancel()
		g, err := c.dial(ctx, c.options.Address)
		if err != nil {
			c.logger.Error("unable to connect to the engine server", slog.String("address", c.options.Address), slog.String("error", err.Error()))
			if current, _ := c.state.get(); current == waiting {
				c.state.abort()
				c.render.lobby(errorMessage("something went wrong :("))
			}
			return
		}
		if !c.state.connected(g) {
			g.Stop()
			return
		}
		c.start(g, true)
	}()
}

func (c *Client) listenGame(g tetrisGame, remote bool) {
	var prev tetris.Snapshot
	for {
		select {
		case s := <-g.Updates():
			c.render.game(s)
			if remote {
				c.sound.compare(prev, s)
			}
			prev = s
			if s.State == tetris.GameOver {
				g.Stop()
				if c.state.finish(g, s.Score) {
					c.render.lobby(gameOver(s.Score))
				}
				return
			}
		case <-g.Done():
			if c.state.finish(g, prev.Score) {
				c.logger.Error("game finished unexpectedly")
				c.render.lobby(errorMessage("connection lost :("))
			}
			return
		}
	}
}

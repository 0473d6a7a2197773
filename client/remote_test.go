package client

import (
	"context"
	"log/slog"
	"net"
	"testing"
	"time"

	"classictetris/rpc"
	"classictetris/server"
	"classictetris/tetris"

	"github.com/eiannone/keyboard"
	"google.golang.org/grpc"
	"google.golang.org/grpc/test/bufconn"
)

// testEngine serves an engine server over bufconn and returns a dial func that
// connects remote games to it.
func testEngine(t *testing.T) func(context.Context, string) (tetrisGame, error) {
	t.Helper()
	lis := bufconn.Listen(1024 * 1024)

	s := grpc.NewServer()
	rpc.RegisterEngineServer(s, server.New(&server.Options{Logger: slog.New(slog.DiscardHandler), Seed: 7}))
	go func() {
		if err := s.Serve(lis); err != nil {
			t.Logf("unable to serve: %v", err)
		}
	}()
	t.Cleanup(s.Stop)

	return func(ctx context.Context, _ string) (tetrisGame, error) {
		g, err := dialRemote(ctx, "passthrough:///bufnet", slog.New(slog.DiscardHandler), grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
		if err != nil {
			return nil, err
		}
		return g, nil
	}
}

// waitUpdate reads snapshots from g until ok returns true.
func waitUpdate(t *testing.T, g tetrisGame, ok func(tetris.Snapshot) bool) tetris.Snapshot {
	t.Helper()
	deadline := time.After(time.Second)
	for {
		select {
		case s := <-g.Updates():
			if ok(s) {
				return s
			}
		case <-g.Done():
			t.Fatal("the stream ended")
		case <-deadline:
			t.Fatal("timed out waiting for a snapshot")
		}
	}
}

func TestClientOnlineWithServer(t *testing.T) {
	cl, render, kCh := testClient(&Options{Address: "bufnet"}, nil, testEngine(t))
	done := make(chan struct{})
	go func() { cl.Start(); close(done) }()

	kCh <- keyboard.KeyEvent{Rune: 'o'}
	eventually(t, "the remote game to start", func() bool {
		s := render.lastGame()
		return cl.currentState() == playing && s.State == tetris.Playing && s.Current != nil
	})

	x := render.lastGame().Current.X()
	kCh <- keyboard.KeyEvent{Rune: 'a'}
	eventually(t, "the tetromino to move left", func() bool {
		s := render.lastGame()
		return s.Current != nil && s.Current.X() == x-1
	})

	// the game keeps going once the connection is made.
	time.Sleep(300 * time.Millisecond)
	if got := cl.currentState(); got != playing {
		t.Errorf("wanted playing state, got %v", got)
	}
	if got := render.lastLobby(); got == errorMessage("connection lost :(") {
		t.Error("wanted the connection to stay open")
	}
	if s := render.lastGame(); s.State != tetris.Playing {
		t.Errorf("wanted the remote game to be playing, got %v", s.State)
	}

	kCh <- keyboard.KeyEvent{Key: keyboard.KeyCtrlC}
	select {
	case <-time.After(time.Second):
		t.Errorf("timeout waiting for quit")
	case <-done:
	}
}

func TestDialRemoteOutlivesTheConnectContext(t *testing.T) {
	dial := testEngine(t)
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	g, err := dial(ctx, "bufnet")
	cancel()
	if err != nil {
		t.Fatal(err)
	}
	defer g.Stop()

	if s := waitUpdate(t, g, func(tetris.Snapshot) bool { return true }); s.State != tetris.Ready {
		t.Errorf("wanted the first snapshot to be %v, got %v", tetris.Ready, s.State)
	}
	g.Start()
	g.Action(tetris.StartGame)
	s := waitUpdate(t, g, func(s tetris.Snapshot) bool { return s.State == tetris.Playing && s.Current != nil })
	g.Action(tetris.MoveRight)
	waitUpdate(t, g, func(n tetris.Snapshot) bool { return n.Current != nil && n.Current.X() == s.Current.X()+1 })
}

func TestDialRemoteCancel(t *testing.T) {
	// nothing serves the listener so the stream waits for a server forever.
	lis := bufconn.Listen(1024)
	defer lis.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	errCh := make(chan error, 1)
	go func() {
		g, err := dialRemote(ctx, "passthrough:///bufnet", slog.New(slog.DiscardHandler), grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}))
		if g != nil {
			g.Stop()
		}
		errCh <- err
	}()
	select {
	case err := <-errCh:
		if err == nil {
			t.Error("wanted an error once the connect context is done")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("wanted the connect context to abort the dial")
	}
}

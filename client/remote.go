package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"classictetris/rpc"
	"classictetris/tetris"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// remoteGame plays a game hosted by an engine server. It behaves like a local
// tetris.Runner: actions go up the Play stream and snapshots come back down.
type remoteGame struct {
	session  string
	conn     *grpc.ClientConn
	stream   rpc.PlayClient
	cancel   context.CancelFunc
	logger   *slog.Logger
	updateCh chan tetris.Snapshot
	doneCh   chan struct{}
	stopOnce sync.Once
	sendMu   sync.Mutex
}

// dialRemote opens a Play stream and waits for the first snapshot, so a server that
// can't be reached fails here and not in the middle of the game.
func dialRemote(ctx context.Context, addr string, l *slog.Logger, opts ...grpc.DialOption) (*remoteGame, error) {
	conn, err := rpc.Dial(addr, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create gRPC client: %w", err)
	}
	// the stream outlives ctx, which only bounds the wait for the first snapshot.
	streamCtx, cancel := context.WithCancel(context.Background())
	abort := context.AfterFunc(ctx, cancel)
	stream, err := rpc.NewEngineClient(conn).Play(streamCtx, grpc.WaitForReady(true))
	if err != nil {
		abort()
		cancel()
		conn.Close()
		return nil, fmt.Errorf("unable to create gRPC Play stream: %w", err)
	}
	first, err := stream.Recv()
	if !abort() {
		err = errors.Join(err, ctx.Err())
	}
	if err != nil {
		cancel()
		conn.Close()
		return nil, fmt.Errorf("unable to receive the first snapshot: %w", err)
	}
	session, snap, err := rpc.DecodeSnapshot(first)
	if err != nil {
		cancel()
		conn.Close()
		return nil, err
	}

	g := &remoteGame{
		session:  session,
		conn:     conn,
		stream:   stream,
		cancel:   cancel,
		logger:   l.With(slog.String("session", session)),
		updateCh: make(chan tetris.Snapshot, 1),
		doneCh:   make(chan struct{}),
	}
	g.updateCh <- snap
	g.logger.Info("connected to engine server", slog.String("address", addr))
	return g, nil
}

// Start receives snapshots until the stream ends.
func (g *remoteGame) Start() {
	go g.listen()
}

func (g *remoteGame) listen() {
	defer g.Stop()
	for {
		rcv, err := g.stream.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				g.logger.Debug("stream.Recv() closed with EOF", slog.String("msg", err.Error()))
				return
			}
			st, ok := status.FromError(err)
			if ok && st.Code() == codes.Canceled {
				g.logger.Debug("stream.Recv() closed with Cancel", slog.String("msg", st.Message()))
			} else {
				g.logger.Error("stream.Recv() unable to receive message", slog.String("error", err.Error()))
			}
			return
		}
		_, snap, err := rpc.DecodeSnapshot(rcv)
		if err != nil {
			g.logger.Error("unable to decode snapshot", slog.String("error", err.Error()))
			return
		}
		g.publish(snap)
	}
}

// publish keeps only the latest snapshot, like the local runner.
func (g *remoteGame) publish(s tetris.Snapshot) {
	select {
	case g.updateCh <- s:
	default:
		select {
		case <-g.updateCh:
		default:
		}
		g.updateCh <- s
	}
}

func (g *remoteGame) Action(a tetris.Action) {
	g.sendMu.Lock()
	defer g.sendMu.Unlock()
	select {
	case <-g.doneCh:
		return
	default:
	}
	if err := g.stream.Send(rpc.Command(a)); err != nil {
		g.logger.Error("send() unable to send action", slog.String("action", string(a)), slog.String("error", err.Error()))
	}
}

func (g *remoteGame) Updates() <-chan tetris.Snapshot { return g.updateCh }
func (g *remoteGame) Done() <-chan struct{}         { return g.doneCh }

func (g *remoteGame) Stop() {
	g.stopOnce.Do(func() {
		g.sendMu.Lock()
		if err := g.stream.CloseSend(); err != nil {
			g.logger.Debug("unable to close the Play stream", slog.String("error", err.Error()))
		}
		close(g.doneCh)
		g.sendMu.Unlock()
		g.cancel()
		if err := g.conn.Close(); err != nil {
			g.logger.Error("unable to close gRPC client", slog.String("error", err.Error()))
		}
	})
}

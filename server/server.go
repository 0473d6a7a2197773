// Package server hosts headless games for remote front ends. Every Play stream gets
// its own game, identified by a random session id.
package server

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"

	"classictetris/rpc"
	"classictetris/tetris"

	"github.com/google/uuid"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
)

type Options struct {
	Logger *slog.Logger
	// Seed makes every hosted game draw the same sequence of tetrominoes. Zero
	// picks a random sequence per game.
	Seed uint64
}

type session struct {
	id     string
	runner *tetris.Runner
}

type engineServer struct {
	logger   *slog.Logger
	seed     uint64
	sessions map[string]*session
	mu       sync.Mutex
}

func New(o *Options) rpc.EngineServer {
	l := o.Logger
	if l == nil {
		l = slog.Default()
	}
	return &engineServer{
		logger:   l,
		seed:     o.Seed,
		sessions: make(map[string]*session),
	}
}

func (e *engineServer) newSession() *session {
	var opts []tetris.Option
	if e.seed != 0 {
		opts = append(opts, tetris.WithSeed(e.seed))
	}
	s := &session{id: uuid.New().String(), runner: tetris.NewRunner(opts...)}

	e.mu.Lock()
	e.sessions[s.id] = s
	e.mu.Unlock()
	return s
}

func (e *engineServer) closeSession(s *session) {
	s.runner.Stop()
	e.mu.Lock()
	delete(e.sessions, s.id)
	e.mu.Unlock()
}

func (e *engineServer) Play(stream rpc.PlayServer) error {
	s := e.newSession()
	defer e.closeSession(s)
	logger := e.logger.With(slog.String("session", s.id))
	logger.Info("session started")
	s.runner.Start()

	errCh := make(chan error, 1)
	go func() {
		for {
			in, err := stream.Recv()
			if err != nil {
				if errors.Is(err, io.EOF) {
					errCh <- nil
					return
				}
				errCh <- fmt.Errorf("failed to receive action: %w", err)
				return
			}
			a, err := rpc.ParseCommand(in)
			if err != nil {
				logger.Warn("invalid action", slog.String("error", err.Error()))
				errCh <- err
				return
			}
			logger.Debug("action", slog.String("action", string(a)))
			s.runner.Action(a)
		}
	}()

	ctx := stream.Context()
	for {
		select {
		case snap := <-s.runner.Updates():
			if err := stream.Send(rpc.EncodeSnapshot(s.id, snap)); err != nil {
				return fmt.Errorf("failed to send snapshot: %w", err)
			}
			if snap.State == tetris.GameOver {
				logger.Info("game over", slog.Int("score", snap.Score), slog.Int("lines", snap.Lines))
			}
		case err := <-errCh:
			logger.Info("session finished")
			return err
		case <-ctx.Done():
			logger.Debug("session context done", slog.String("reason", ctx.Err().Error()))
			return status.FromContextError(ctx.Err()).Err()
		}
	}
}

func (e *engineServer) Sessions(context.Context, *emptypb.Empty) (*structpb.Struct, error) {
	e.mu.Lock()
	infos := make([]rpc.SessionInfo, 0, len(e.sessions))
	for _, s := range e.sessions {
		snap := s.runner.Read()
		infos = append(infos, rpc.SessionInfo{
			ID:    s.id,
			State: snap.State,
			Score: snap.Score,
			Level: snap.Level,
			Lines: snap.Lines,
		})
	}
	e.mu.Unlock()

	slices.SortFunc(infos, func(a, b rpc.SessionInfo) int { return cmp.Compare(a.ID, b.ID) })
	return rpc.EncodeSessions(infos), nil
}

package server

import (
	"context"
	"io"
	"log/slog"
	"net"
	"testing"
	"time"

	"classictetris/rpc"
	"classictetris/tetris"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

func testServer(t *testing.T) *rpc.EngineClient {
	t.Helper()
	buffer := 1024 * 1024
	lis := bufconn.Listen(buffer)

	s := grpc.NewServer()
	rpc.RegisterEngineServer(s, New(&Options{Logger: slog.New(slog.DiscardHandler), Seed: 7}))
	go func() {
		if err := s.Serve(lis); err != nil {
			t.Logf("unable to serve: %v", err)
		}
	}()

	conn, err := rpc.Dial("passthrough:///bufnet", grpc.WithContextDialer(func(context.Context, string) (net.Conn, error) {
		return lis.Dial()
	}))
	require.NoError(t, err)
	t.Cleanup(func() {
		if err := conn.Close(); err != nil {
			t.Logf("error closing connection: %v", err)
		}
		s.Stop()
	})
	return rpc.NewEngineClient(conn)
}

// recvUntil reads snapshots until ok returns true.
func recvUntil(t *testing.T, stream rpc.PlayClient, ok func(tetris.Snapshot) bool) (string, tetris.Snapshot) {
	t.Helper()
	for {
		st, err := stream.Recv()
		require.NoError(t, err)
		id, s, err := rpc.DecodeSnapshot(st)
		require.NoError(t, err)
		if ok(s) {
			return id, s
		}
	}
}

func sessions(t *testing.T, c *rpc.EngineClient) []rpc.SessionInfo {
	t.Helper()
	st, err := c.Sessions(context.Background())
	require.NoError(t, err)
	infos, err := rpc.DecodeSessions(st)
	require.NoError(t, err)
	return infos
}

func TestPlay(t *testing.T) {
	c := testServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := c.Play(ctx)
	require.NoError(t, err)

	id, s := recvUntil(t, stream, func(tetris.Snapshot) bool { return true })
	_, err = uuid.Parse(id)
	assert.NoError(t, err, "session id should be a uuid")
	assert.Equal(t, tetris.Ready, s.State)

	require.NoError(t, stream.Send(rpc.Command(tetris.StartGame)))
	_, s = recvUntil(t, stream, func(s tetris.Snapshot) bool { return s.State == tetris.Playing })
	require.NotNil(t, s.Current)
	x := s.Current.X()

	require.NoError(t, stream.Send(rpc.Command(tetris.MoveLeft)))
	recvUntil(t, stream, func(s tetris.Snapshot) bool { return s.Current != nil && s.Current.X() == x-1 })

	require.NoError(t, stream.Send(rpc.Command(tetris.TogglePause)))
	recvUntil(t, stream, func(s tetris.Snapshot) bool { return s.State == tetris.Paused })

	infos := sessions(t, c)
	require.Len(t, infos, 1)
	assert.Equal(t, id, infos[0].ID)
	assert.Equal(t, tetris.Paused, infos[0].State)

	require.NoError(t, stream.Send(rpc.Command(tetris.StopGame)))
	recvUntil(t, stream, func(s tetris.Snapshot) bool { return s.State == tetris.GameOver })

	require.NoError(t, stream.CloseSend())
	for {
		if _, err := stream.Recv(); err != nil {
			assert.ErrorIs(t, err, io.EOF)
			break
		}
	}
	assert.Empty(t, sessions(t, c), "a finished stream should close its session")
}

func TestPlayInvalidAction(t *testing.T) {
	c := testServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	stream, err := c.Play(ctx)
	require.NoError(t, err)
	require.NoError(t, stream.Send(wrapperspb.String("hold")))
	for {
		if _, err = stream.Recv(); err != nil {
			break
		}
	}
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestSessionsAreIndependent(t *testing.T) {
	c := testServer(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var ids []string
	for range 2 {
		stream, err := c.Play(ctx)
		require.NoError(t, err)
		id, _ := recvUntil(t, stream, func(tetris.Snapshot) bool { return true })
		ids = append(ids, id)
	}
	assert.NotEqual(t, ids[0], ids[1])

	infos := sessions(t, c)
	require.Len(t, infos, 2)
	for _, info := range infos {
		assert.Contains(t, ids, info.ID)
		assert.Equal(t, tetris.Ready, info.State)
	}
}

package rpc

import (
	"fmt"
	"strings"
	"time"

	"classictetris/tetris"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// Command wraps an action for the Play stream.
func Command(a tetris.Action) *wrapperspb.StringValue {
	return wrapperspb.String(string(a))
}

// ParseCommand returns the action carried by v. Unknown actions are an
// InvalidArgument error.
func ParseCommand(v *wrapperspb.StringValue) (tetris.Action, error) {
	a, ok := tetris.ParseAction(v.GetValue())
	if !ok {
		return "", status.Errorf(codes.InvalidArgument, "unknown action %q", v.GetValue())
	}
	return a, nil
}

/*
EncodeSnapshot turns a game into a Struct:

	{
	  "session": "5f0c...", "state": "playing",
	  "score": 300, "level": 1, "lines": 2, "delay_ms": 800,
	  "grid": ["0000000000", ..., "1111006000"],
	  "current": {"type": "T", "rotation": 0, "x": 3, "y": 4},
	  "next": {...}, "ghost": {...}
	}

grid has one string per row, top row first, and one digit per cell with the color
index of the shape that filled it. Missing tetrominoes are null.
*/
func EncodeSnapshot(session string, s tetris.Snapshot) *structpb.Struct {
	grid := make([]*structpb.Value, len(s.Stack))
	for y, row := range s.Stack {
		var b strings.Builder
		for _, c := range row {
			b.WriteByte('0' + byte(c))
		}
		grid[y] = structpb.NewStringValue(b.String())
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"session":  structpb.NewStringValue(session),
		"state":    structpb.NewStringValue(s.State.String()),
		"score":    structpb.NewNumberValue(float64(s.Score)),
		"level":    structpb.NewNumberValue(float64(s.Level)),
		"lines":    structpb.NewNumberValue(float64(s.Lines)),
		"delay_ms": structpb.NewNumberValue(float64(s.Delay.Milliseconds())),
		"grid":     structpb.NewListValue(&structpb.ListValue{Values: grid}),
		"current":  encodeTetromino(s.Current),
		"next":     encodeTetromino(s.Next),
		"ghost":    encodeTetromino(s.Ghost),
	}}
}

func encodeTetromino(t *tetris.Tetromino) *structpb.Value {
	if t == nil {
		return structpb.NewNullValue()
	}
	return structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
		"type":     structpb.NewStringValue(t.Shape().String()),
		"rotation": structpb.NewNumberValue(float64(t.Rotation())),
		"x":        structpb.NewNumberValue(float64(t.X())),
		"y":        structpb.NewNumberValue(float64(t.Y())),
	}})
}

// DecodeSnapshot is the inverse of EncodeSnapshot. It returns the session id and
// the game.
func DecodeSnapshot(st *structpb.Struct) (string, tetris.Snapshot, error) {
	f := st.GetFields()
	state, ok := tetris.ParseState(f["state"].GetStringValue())
	if !ok {
		return "", tetris.Snapshot{}, fmt.Errorf("unknown state %q", f["state"].GetStringValue())
	}
	stack, err := decodeGrid(f["grid"].GetListValue())
	if err != nil {
		return "", tetris.Snapshot{}, err
	}
	s := tetris.Snapshot{
		State: state,
		Score: int(f["score"].GetNumberValue()),
		Level: int(f["level"].GetNumberValue()),
		Lines: int(f["lines"].GetNumberValue()),
		Delay: time.Duration(f["delay_ms"].GetNumberValue()) * time.Millisecond,
		Stack: stack,
	}
	for name, dst := range map[string]**tetris.Tetromino{"current": &s.Current, "next": &s.Next, "ghost": &s.Ghost} {
		t, err := decodeTetromino(f[name])
		if err != nil {
			return "", tetris.Snapshot{}, fmt.Errorf("invalid %s tetromino: %w", name, err)
		}
		*dst = t
	}
	return f["session"].GetStringValue(), s, nil
}

func decodeGrid(l *structpb.ListValue) ([][]tetris.Shape, error) {
	rows := l.GetValues()
	if len(rows) != tetris.BoardHeight {
		return nil, fmt.Errorf("want %d grid rows, got %d", tetris.BoardHeight, len(rows))
	}
	stack := make([][]tetris.Shape, tetris.BoardHeight)
	for y, v := range rows {
		row := v.GetStringValue()
		if len(row) != tetris.BoardWidth {
			return nil, fmt.Errorf("want %d cells in grid row %d, got %d", tetris.BoardWidth, y, len(row))
		}
		stack[y] = make([]tetris.Shape, tetris.BoardWidth)
		for x := range tetris.BoardWidth {
			c := tetris.Shape(row[x] - '0')
			if row[x] < '0' || c > tetris.L {
				return nil, fmt.Errorf("invalid cell %q at %d,%d", row[x], x, y)
			}
			stack[y][x] = c
		}
	}
	return stack, nil
}

func decodeTetromino(v *structpb.Value) (*tetris.Tetromino, error) {
	if v == nil {
		return nil, nil
	}
	if _, ok := v.GetKind().(*structpb.Value_NullValue); ok {
		return nil, nil
	}
	f := v.GetStructValue().GetFields()
	shape := tetris.ParseShape(f["type"].GetStringValue())
	if shape == 0 {
		return nil, fmt.Errorf("unknown type %q", f["type"].GetStringValue())
	}
	return tetris.NewTetrominoAt(
		shape,
		int(f["rotation"].GetNumberValue()),
		int(f["x"].GetNumberValue()),
		int(f["y"].GetNumberValue()),
	), nil
}

// SessionInfo summarises a hosted game.
type SessionInfo struct {
	ID    string
	State tetris.State
	Score int
	Level int
	Lines int
}

// EncodeSessions returns {"sessions": [{"id", "state", "score", "level", "lines"}, ...]}.
func EncodeSessions(sessions []SessionInfo) *structpb.Struct {
	list := make([]*structpb.Value, len(sessions))
	for i, s := range sessions {
		list[i] = structpb.NewStructValue(&structpb.Struct{Fields: map[string]*structpb.Value{
			"id":    structpb.NewStringValue(s.ID),
			"state": structpb.NewStringValue(s.State.String()),
			"score": structpb.NewNumberValue(float64(s.Score)),
			"level": structpb.NewNumberValue(float64(s.Level)),
			"lines": structpb.NewNumberValue(float64(s.Lines)),
		}})
	}
	return &structpb.Struct{Fields: map[string]*structpb.Value{
		"sessions": structpb.NewListValue(&structpb.ListValue{Values: list}),
	}}
}

func DecodeSessions(st *structpb.Struct) ([]SessionInfo, error) {
	values := st.GetFields()["sessions"].GetListValue().GetValues()
	sessions := make([]SessionInfo, 0, len(values))
	for _, v := range values {
		f := v.GetStructValue().GetFields()
		state, ok := tetris.ParseState(f["state"].GetStringValue())
		if !ok {
			return nil, fmt.Errorf("unknown state %q for session %q", f["state"].GetStringValue(), f["id"].GetStringValue())
		}
		sessions = append(sessions, SessionInfo{
			ID:    f["id"].GetStringValue(),
			State: state,
			Score: int(f["score"].GetNumberValue()),
			Level: int(f["level"].GetNumberValue()),
			Lines: int(f["lines"].GetNumberValue()),
		})
	}
	return sessions, nil
}

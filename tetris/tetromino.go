package tetris

// Shape is one of the seven tetromino kinds. Its numeric value is the color index
// the kind leaves on the stack once locked, so valid shapes are 1 to 7 and 0 is an
// empty cell.
type Shape int

const (
	I Shape = iota + 1
	O
	T
	S
	Z
	J
	L
)

// Shapes lists every kind in color index order.
var Shapes = [7]Shape{I, O, T, S, Z, J, L}

var shapeNames = [...]string{I: "I", O: "O", T: "T", S: "S", Z: "Z", J: "J", L: "L"}

func (s Shape) String() string {
	if !s.valid() {
		return ""
	}
	return shapeNames[s]
}

func (s Shape) valid() bool { return s >= I && s <= L }

// ParseShape returns the shape named by s, or 0 if there is none.
func ParseShape(s string) Shape {
	for _, v := range Shapes {
		if shapeNames[v] == s {
			return v
		}
	}
	return 0
}

// Grid is the 4x4 occupancy box of a tetromino. Rows go top to bottom.
type Grid [4][4]bool

// grids maps shape and rotation to its occupancy box. The rotations follow the classic
// layout: no offset correction between states and the four O entries are the same.
var grids = [7][4]Grid{
	// I
	{
		{{false, false, false, false}, {true, true, true, true}, {false, false, false, false}, {false, false, false, false}},
		{{false, false, true, false}, {false, false, true, false}, {false, false, true, false}, {false, false, true, false}},
		{{false, false, false, false}, {false, false, false, false}, {true, true, true, true}, {false, false, false, false}},
		{{false, true, false, false}, {false, true, false, false}, {false, true, false, false}, {false, true, false, false}},
	},
	// O
	{
		{{false, true, true, false}, {false, true, true, false}, {false, false, false, false}, {false, false, false, false}},
		{{false, true, true, false}, {false, true, true, false}, {false, false, false, false}, {false, false, false, false}},
		{{false, true, true, false}, {false, true, true, false}, {false, false, false, false}, {false, false, false, false}},
		{{false, true, true, false}, {false, true, true, false}, {false, false, false, false}, {false, false, false, false}},
	},
	// T
	{
		{{false, true, false, false}, {true, true, true, false}, {false, false, false, false}, {false, false, false, false}},
		{{false, true, false, false}, {false, true, true, false}, {false, true, false, false}, {false, false, false, false}},
		{{false, false, false, false}, {true, true, true, false}, {false, true, false, false}, {false, false, false, false}},
		{{false, true, false, false}, {true, true, false, false}, {false, true, false, false}, {false, false, false, false}},
	},
	// S
	{
		{{false, true, true, false}, {true, true, false, false}, {false, false, false, false}, {false, false, false, false}},
		{{false, true, false, false}, {false, true, true, false}, {false, false, true, false}, {false, false, false, false}},
		{{false, false, false, false}, {false, true, true, false}, {true, true, false, false}, {false, false, false, false}},
		{{true, false, false, false}, {true, true, false, false}, {false, true, false, false}, {false, false, false, false}},
	},
	// Z
	{
		{{true, true, false, false}, {false, true, true, false}, {false, false, false, false}, {false, false, false, false}},
		{{false, false, true, false}, {false, true, true, false}, {false, true, false, false}, {false, false, false, false}},
		{{false, false, false, false}, {true, true, false, false}, {false, true, true, false}, {false, false, false, false}},
		{{false, true, false, false}, {true, true, false, false}, {true, false, false, false}, {false, false, false, false}},
	},
	// J
	{
		{{true, false, false, false}, {true, true, true, false}, {false, false, false, false}, {false, false, false, false}},
		{{false, true, true, false}, {false, true, false, false}, {false, true, false, false}, {false, false, false, false}},
		{{false, false, false, false}, {true, true, true, false}, {false, false, true, false}, {false, false, false, false}},
		{{false, true, false, false}, {false, true, false, false}, {true, true, false, false}, {false, false, false, false}},
	},
	// L
	{
		{{false, false, true, false}, {true, true, true, false}, {false, false, false, false}, {false, false, false, false}},
		{{false, true, false, false}, {false, true, false, false}, {false, true, true, false}, {false, false, false, false}},
		{{false, false, false, false}, {true, true, true, false}, {true, false, false, false}, {false, false, false, false}},
		{{true, true, false, false}, {false, true, false, false}, {false, true, false, false}, {false, false, false, false}},
	},
}

/*
A Tetromino is a shape with a position and a rotation. X and Y are the top-left
corner of its 4x4 box on the stack, Y grows downwards.

.	Spawn Location (J)			.	Grid

.	0 1 2 3 4 5 6 7 8 9		.	0 1 2 3

0	. . . O . . . . . .		0	O X X X

1	. . . O O O . . . .		1	O O O X

2	. . . . . . . . . .		2	X X X X
*/
type Tetromino struct {
	shape    Shape
	rotation int
	x, y     int
}

// NewTetromino returns a tetromino of the given shape at the spawn location.
func NewTetromino(s Shape) *Tetromino {
	return &Tetromino{shape: s, x: SpawnX, y: SpawnY}
}

// NewTetrominoAt returns a tetromino with the given rotation and position, for front
// ends rebuilding a game they received over the wire. It returns nil for an invalid
// shape.
func NewTetrominoAt(s Shape, rotation, x, y int) *Tetromino {
	if !s.valid() {
		return nil
	}
	return &Tetromino{shape: s, rotation: (rotation%4 + 4) % 4, x: x, y: y}
}

func (t *Tetromino) Shape() Shape  { return t.shape }
func (t *Tetromino) Rotation() int { return t.rotation }
func (t *Tetromino) X() int        { return t.x }
func (t *Tetromino) Y() int        { return t.y }

// Grid returns the occupancy box for the current rotation.
func (t *Tetromino) Grid() Grid {
	return grids[t.shape-1][t.rotation]
}

// Cells returns the stack coordinates (x, y) of every filled cell.
func (t *Tetromino) Cells() [][2]int {
	cells := make([][2]int, 0, 4)
	for iy, row := range t.Grid() {
		for ix, filled := range row {
			if filled {
				cells = append(cells, [2]int{t.x + ix, t.y + iy})
			}
		}
	}
	return cells
}

// The movement and rotation methods are unconditional, legality is checked
// against the stack by the caller.

func (t *Tetromino) RotateClockwise()        { t.rotation = (t.rotation + 1) % 4 }
func (t *Tetromino) RotateCounterClockwise() { t.rotation = (t.rotation + 3) % 4 }
func (t *Tetromino) MoveLeft()               { t.x-- }
func (t *Tetromino) MoveRight()              { t.x++ }
func (t *Tetromino) MoveDown()               { t.y++ }
func (t *Tetromino) MoveUp()                 { t.y-- }

// Copy returns a tetromino that shares no state with t. It returns nil for nil.
func (t *Tetromino) Copy() *Tetromino {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

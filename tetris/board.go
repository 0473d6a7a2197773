package tetris

import "slices"

// Board is the stack of locked cells. Columns are 0 > 9 left to right (X axis),
// rows are 0 > 19 top to bottom (Y axis). A zero cell is empty, otherwise it holds
// the shape that was locked there.
type Board struct {
	stack [][]Shape
}

func NewBoard() *Board {
	b := &Board{}
	b.Clear()
	return b
}

func emptyStack() [][]Shape {
	s := make([][]Shape, BoardHeight)
	for i := range s {
		s[i] = make([]Shape, BoardWidth)
	}
	return s
}

// Clear empties every cell.
func (b *Board) Clear() {
	b.stack = emptyStack()
}

func inBounds(x, y int) bool {
	return x >= 0 && x < BoardWidth && y >= 0 && y < BoardHeight
}

// Cell returns the content of a cell, or -1 if x, y is outside the stack.
func (b *Board) Cell(x, y int) Shape {
	if !inBounds(x, y) {
		return -1
	}
	return b.stack[y][x]
}

// CanPlace reports whether every filled cell of t is inside the stack and empty.
//
// 		0 1 2 3 4 5 6 7 8 9			0 1 2 3
// 0	. . . O . . . . . .		0	O . . .
// 1	. . . O O C . . . .		1	O O O .
// 2	. . . . . . . . . .		2	. . . .
//
// With C locked at (5, 1) the J above collides.
func (b *Board) CanPlace(t *Tetromino) bool {
	for _, c := range t.Cells() {
		if !inBounds(c[0], c[1]) || b.stack[c[1]][c[0]] != 0 {
			return false
		}
	}
	return true
}

// Place locks t into the stack. It doesn't check for collisions, cells outside the
// stack are dropped.
func (b *Board) Place(t *Tetromino) {
	for _, c := range t.Cells() {
		if inBounds(c[0], c[1]) {
			b.stack[c[1]][c[0]] = t.shape
		}
	}
}

// FullLines returns the index of every complete row, top to bottom.
func (b *Board) FullLines() []int {
	var l []int
	for i, row := range b.stack {
		if !slices.Contains(row, 0) {
			l = append(l, i)
		}
	}
	return l
}

// ClearCompleteLines removes every complete row and returns how many were removed.
// Rows are removed one at a time in the order they were found: everything above the
// row moves down one and the top row is emptied. Rows below a removed row keep their
// index so the remaining complete rows are still where FullLines found them.
func (b *Board) ClearCompleteLines() int {
	lines := b.FullLines()
	for _, l := range lines {
		b.removeLine(l)
	}
	return len(lines)
}

func (b *Board) removeLine(line int) {
	for y := line; y > 0; y-- {
		copy(b.stack[y], b.stack[y-1])
	}
	clear(b.stack[0])
}

// IsGameOver reports whether anything is locked in the two top rows.
// Row 0 is the hidden overflow row, row 1 the spawn row.
func (b *Board) IsGameOver() bool {
	for _, y := range []int{0, 1} {
		if slices.ContainsFunc(b.stack[y], func(s Shape) bool { return s != 0 }) {
			return true
		}
	}
	return false
}

// Grid returns a copy of the stack.
func (b *Board) Grid() [][]Shape {
	g := make([][]Shape, len(b.stack))
	for i := range b.stack {
		g[i] = slices.Clone(b.stack[i])
	}
	return g
}

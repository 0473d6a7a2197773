// Package terminal puts the console in raw mode and paints the stack with ANSI
// escape codes.
package terminal

import (
	"fmt"
	"io"
	"os"

	"classictetris/tetris"

	"golang.org/x/term"
)

const (
	// ASCII colors.
	Cyan    = "36"
	Blue    = "34"
	Orange  = "38;5;214"
	Yellow  = "33"
	Green   = "32"
	Red     = "31"
	Magenta = "35"

	ClearScreen = "\033[2J"
	HideCursor  = "\033[?25l"
	ShowCursor  = "\033[?25h"
	ResetPos    = "\033[H" // Reset cursor position to 0,0
	EraseLine   = "\033[K" // Erase from the cursor to the end of the line
	Bell        = "\a"

	// Ghost is how the landing preview of the current tetromino is drawn.
	Ghost = "[]"
	Empty = "  "
)

var colorMap = map[tetris.Shape]string{
	tetris.I: Cyan,
	tetris.J: Blue,
	tetris.L: Orange,
	tetris.O: Yellow,
	tetris.S: Green,
	tetris.Z: Red,
	tetris.T: Magenta,
}

// Color returns the ANSI color of s and false for empty cells.
func Color(s tetris.Shape) (string, bool) {
	c, ok := colorMap[s]
	return c, ok
}

// Block returns a two character wide cell painted with the color of s, or blank
// space when s isn't a shape.
func Block(s tetris.Shape) string {
	c, ok := colorMap[s]
	if !ok {
		return Empty
	}
	return fmt.Sprintf("\x1b[7m\x1b[%sm[]\x1b[0m", c)
}

func Bold(s string) string { return "\033[1m" + s + "\033[0m" }

// MoveTo places the cursor at row and col, both starting at 1.
func MoveTo(row, col int) string { return fmt.Sprintf("\033[%d;%dH", row, col) }

// MinCols and MinRows are the smallest console the game fits in.
const (
	MinCols = 48
	MinRows = 24
)

// Console is a terminal switched to raw mode so key presses are delivered as they
// happen and nothing is echoed.
type Console struct {
	fd       int
	out      io.Writer
	oldState *term.State
}

func NewConsole(in *os.File, out io.Writer) *Console {
	return &Console{fd: int(in.Fd()), out: out}
}

// Raw clears the screen, hides the cursor and puts the console in raw mode.
func (c *Console) Raw() error {
	if !term.IsTerminal(c.fd) {
		return fmt.Errorf("file descriptor %d is not a terminal", c.fd)
	}
	oldState, err := term.MakeRaw(c.fd)
	if err != nil {
		return fmt.Errorf("unable to set the terminal to raw mode: %w", err)
	}
	c.oldState = oldState
	fmt.Fprint(c.out, ClearScreen+HideCursor)
	return nil
}

// Restore brings the console back to the state it had before Raw and leaves the
// cursor below the game.
func (c *Console) Restore() error {
	fmt.Fprint(c.out, MoveTo(MinRows, 1)+"\n\r"+ShowCursor)
	if c.oldState == nil {
		return nil
	}
	if err := term.Restore(c.fd, c.oldState); err != nil {
		return fmt.Errorf("unable to restore the terminal original state: %w", err)
	}
	c.oldState = nil
	return nil
}

// Size returns the console width and height in characters.
func (c *Console) Size() (int, int, error) {
	return term.GetSize(c.fd)
}

// Fits returns an error when the console is smaller than the game.
func (c *Console) Fits() error {
	w, h, err := c.Size()
	if err != nil {
		return fmt.Errorf("unable to get the terminal size: %w", err)
	}
	return fits(w, h)
}

func fits(w, h int) error {
	if w < MinCols || h < MinRows {
		return fmt.Errorf("the terminal is %dx%d, the game needs at least %dx%d", w, h, MinCols, MinRows)
	}
	return nil
}

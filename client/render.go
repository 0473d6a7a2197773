package client

import (
	_ "embed"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"text/template"

	"classictetris/terminal"
	"classictetris/tetris"

	"github.com/dustin/go-humanize"
)

//go:embed "layout.tmpl"
var layout string

const (
	// where the lobby box is drawn over the board.
	lobbyRow   = 9
	lobbyCol   = 2
	lobbyWidth = 34
)

type templateData struct {
	Game    tetris.Snapshot
	Name    string
	NoGhost bool
}

type render struct {
	writer   io.Writer
	logger   *slog.Logger
	template *template.Template
	mu       sync.Mutex
	*templateData
}

func newRender(w io.Writer, l *slog.Logger, noGhost bool, name string) (*render, error) {
	tmp, err := loadTemplate()
	if err != nil {
		return nil, fmt.Errorf("failed to load template: %w", err)
	}
	return &render{
		writer:   w,
		logger:   l,
		template: tmp,
		templateData: &templateData{
			Name:    name,
			NoGhost: noGhost,
		},
	}, nil
}

func (r *render) game(s tetris.Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.templateData.Game = s
	fmt.Fprint(r.writer, terminal.ResetPos)
	if err := r.template.Execute(r.writer, r.templateData); err != nil {
		r.logger.Error("unable to execute template in game()", slog.String("error", err.Error()))
	}
}

// lobbyMessage is the text of the three lines inside the lobby box.
type lobbyMessage [3]string

const lobbyKeys = "(p)lay   (o)nline   (q)uit"

func defaultLobby() lobbyMessage {
	return lobbyMessage{"Welcome to Classic Tetris", "", lobbyKeys}
}

func gameOver(score int) lobbyMessage {
	return lobbyMessage{"Game Over :)", "score " + humanize.Comma(int64(score)), lobbyKeys}
}

func connecting(addr string) lobbyMessage {
	return lobbyMessage{"connecting to " + addr, "", "(c)ancel"}
}

func errorMessage(msg string) lobbyMessage {
	return lobbyMessage{msg, "", lobbyKeys}
}

func (r *render) lobby(m lobbyMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	border := "+" + strings.Repeat("-", lobbyWidth) + "+"
	lines := []string{border}
	for _, l := range m {
		lines = append(lines, "|"+center(l, lobbyWidth)+"|")
	}
	lines = append(lines, border)
	for i, l := range lines {
		fmt.Fprint(r.writer, terminal.MoveTo(lobbyRow+i, lobbyCol)+l)
	}
}

func center(s string, width int) string {
	if len(s) > width {
		return s[:width]
	}
	left := (width - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-len(s)-left)
}

// reset clears the screen, e.g. to remove the lobby box.
func (r *render) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprint(r.writer, terminal.ClearScreen+terminal.ResetPos)
}

// bell rings the terminal bell n times. It shares the writer with the screen so it
// can't be written in the middle of an escape sequence.
func (r *render) bell(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprint(r.writer, strings.Repeat(terminal.Bell, n))
}

func loadTemplate() (*template.Template, error) {
	funcMap := template.FuncMap{
		"stack": stack,
		"panel": panel,
		"eol":   func() string { return terminal.EraseLine },
	}

	// we use the console raw so new lines don't automatically transform into carriage return
	// to fix that we add a carriage return to every new line in the layout.
	return template.New("layout").Funcs(funcMap).Parse(strings.ReplaceAll(layout, "\n", "\r\n"))
}

// stack returns the cells of the board, top row first, with the ghost and the
// current tetromino drawn over the locked cells.
func stack(t *templateData) [tetris.BoardHeight][tetris.BoardWidth]string {
	rendered := [tetris.BoardHeight][tetris.BoardWidth]string{}
	for y := range tetris.BoardHeight {
		for x := range tetris.BoardWidth {
			rendered[y][x] = terminal.Empty
		}
	}
	if t == nil {
		return rendered
	}

	for y, row := range t.Game.Stack {
		for x, c := range row {
			if y < tetris.BoardHeight && x < tetris.BoardWidth {
				rendered[y][x] = terminal.Block(c)
			}
		}
	}

	if !t.NoGhost {
		drawTetromino(&rendered, t.Game.Ghost, terminal.Ghost)
	}
	if t.Game.Current != nil {
		drawTetromino(&rendered, t.Game.Current, terminal.Block(t.Game.Current.Shape()))
	}
	return rendered
}

func drawTetromino(rendered *[tetris.BoardHeight][tetris.BoardWidth]string, tt *tetris.Tetromino, cell string) {
	if tt == nil {
		return
	}
	for _, c := range tt.Cells() {
		x, y := c[0], c[1]
		if x >= 0 && x < tetris.BoardWidth && y >= 0 && y < tetris.BoardHeight {
			rendered[y][x] = cell
		}
	}
}

// nextPiece returns the two top rows of the upcoming tetromino, which is all the
// spawn rotation of every shape uses.
func nextPiece(t *templateData) []string {
	rendered := []string{strings.Repeat(terminal.Empty, 4), strings.Repeat(terminal.Empty, 4)}
	if t == nil || t.Game.Next == nil {
		return rendered
	}
	grid := t.Game.Next.Grid()
	for i := range 2 {
		row := []string{terminal.Empty, terminal.Empty, terminal.Empty, terminal.Empty}
		for iv, v := range grid[i] {
			if v {
				row[iv] = terminal.Block(t.Game.Next.Shape())
			}
		}
		rendered[i] = strings.Join(row, "")
	}
	return rendered
}

// panel returns the text printed to the right of every board row.
func panel(t *templateData) [tetris.BoardHeight]string {
	next := nextPiece(t)
	p := [tetris.BoardHeight]string{}
	p[0] = terminal.Bold("Classic Tetris")
	p[2] = "Next"
	p[3] = next[0]
	p[4] = next[1]
	if t == nil {
		return p
	}
	p[6] = fmt.Sprintf("Score  %s", humanize.Comma(int64(t.Game.Score)))
	p[7] = fmt.Sprintf("Level  %d", t.Game.Level)
	p[8] = fmt.Sprintf("Lines  %s", humanize.Comma(int64(t.Game.Lines)))
	if t.Name != "" {
		p[10] = "Player " + t.Name
	}
	switch t.Game.State {
	case tetris.Paused:
		p[12] = terminal.Bold("PAUSED")
	case tetris.GameOver:
		p[12] = terminal.Bold("GAME OVER")
	}
	p[14] = "a d / arrows   move"
	p[15] = "e / up         rotate"
	p[16] = "s / down       down"
	p[17] = "space          drop"
	p[18] = "x              soft drop"
	p[19] = "p pause    esc stop"
	return p
}

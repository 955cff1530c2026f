package domain

import "errors"

// Canonical board dimensions.
const (
	DefaultWidth  = 7
	DefaultHeight = 6
)

// Errors returned by domain operations.
var (
	ErrInvalidDimensions = errors.New("invalid board dimensions")
	ErrColumnOutOfRange  = errors.New("column out of range")
	ErrColumnFull        = errors.New("column full")
	ErrGameAlreadyOver   = errors.New("game already over")
)

// Phase is the lifecycle stage of a game.
type Phase uint8

const (
	InProgress Phase = iota
	Won
	Draw
)

func (p Phase) String() string {
	switch p {
	case Won:
		return "won"
	case Draw:
		return "draw"
	default:
		return "in progress"
	}
}

// Outcome is the result of an accepted move. Player is the next player to move
// while the game continues and the winner once Phase is Won; it is zero on a Draw.
type Outcome struct {
	Phase  Phase
	Player Player
	Row    int
	Col    int
}

// Game holds the board and turn state of one Connect Four match.
// A Game is not safe for concurrent use.
type Game struct {
	board   *Board
	current Player
	phase   Phase
	winner  Player
	line    []Point
	moves   int
	last    Point
}

// NewGame returns a new game on an empty width x height board with One to move.
func NewGame(width, height int) (*Game, error) {
	b, err := NewBoard(width, height)
	if err != nil {
		return nil, err
	}
	return &Game{board: b, current: One, last: Point{-1, -1}}, nil
}

// New returns a game on the canonical 7x6 board.
func New() *Game {
	g, _ := NewGame(DefaultWidth, DefaultHeight)
	return g
}

// Drop plays the current player's piece into col.
// On error nothing has changed.
func (g *Game) Drop(col int) (Outcome, error) {
	if g.phase != InProgress {
		return Outcome{}, ErrGameAlreadyOver
	}
	row, ok, err := g.board.LandingRow(col)
	if err != nil {
		return Outcome{}, err
	}
	if !ok {
		return Outcome{}, ErrColumnFull
	}

	// Place the piece
	g.board.Place(row, col, g.current)
	g.moves++
	g.last = Point{Row: row, Col: col}

	// Check for a win
	if line := winningLine(g.board, row, col, g.current); line != nil {
		g.phase = Won
		g.winner = g.current
		g.line = line
		return Outcome{Phase: Won, Player: g.current, Row: row, Col: col}, nil
	}

	// Check for draw
	if g.board.IsFull() {
		g.phase = Draw
		return Outcome{Phase: Draw, Row: row, Col: col}, nil
	}

	// Flip turn
	g.current = g.current.Other()
	return Outcome{Phase: InProgress, Player: g.current, Row: row, Col: col}, nil
}

// CellAt returns the state of (row, col).
func (g *Game) CellAt(row, col int) Cell { return g.board.CellAt(row, col) }

// Current returns the player to move. After a win it stays the winner.
func (g *Game) Current() Player { return g.current }

// Over reports whether the game reached a terminal phase.
func (g *Game) Over() bool { return g.phase != InProgress }

func (g *Game) Phase() Phase { return g.phase }

// Winner returns the winning player; ok is false unless Phase is Won.
func (g *Game) Winner() (Player, bool) {
	return g.winner, g.phase == Won
}

// WinningLine returns the cells of the winning run, nil unless the game is won.
func (g *Game) WinningLine() []Point {
	if g.line == nil {
		return nil
	}
	out := make([]Point, len(g.line))
	copy(out, g.line)
	return out
}

// Moves is the number of pieces played.
func (g *Game) Moves() int { return g.moves }

// LastMove returns the cell of the most recent piece; ok is false before the first move.
func (g *Game) LastMove() (Point, bool) {
	return g.last, g.moves > 0
}

func (g *Game) Width() int { return g.board.Width() }
func (g *Game) Height() int { return g.board.Height() }

// Clone returns an independent copy of the game.
func (g *Game) Clone() *Game {
	cp := *g
	cp.board = g.board.Clone()
	cp.line = g.WinningLine()
	return &cp
}

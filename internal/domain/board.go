package domain

// Player identifies one of the two sides.
type Player uint8

const (
	One Player = iota + 1
	Two
)

// Other returns the opposing player.
func (p Player) Other() Player {
	if p == One {
		return Two
	}
	return One
}

func (p Player) String() string {
	switch p {
	case One:
		return "Player 1"
	case Two:
		return "Player 2"
	default:
		return "nobody"
	}
}

// Cell represents a board cell state: Empty or occupied by a player.
type Cell uint8

const Empty Cell = 0

// Occupied returns the cell state for a piece owned by p.
func Occupied(p Player) Cell { return Cell(p) }

// Occupant reports the player owning the cell, if any.
func (c Cell) Occupant() (Player, bool) {
	if c == Empty {
		return 0, false
	}
	return Player(c), true
}

// Board is a width x height grid indexed [row][col], row 0 at the top.
type Board struct {
	width  int
	height int
	grid   [][]Cell
}

// NewBoard returns an empty board of the given dimensions.
func NewBoard(width, height int) (*Board, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}
	grid := make([][]Cell, height)
	for r := range grid {
		grid[r] = make([]Cell, width)
	}
	return &Board{width: width, height: height, grid: grid}, nil
}

func (b *Board) Width() int { return b.width }
func (b *Board) Height() int { return b.height }

// LandingRow returns the lowest empty row of col. ok is false when the column is full.
func (b *Board) LandingRow(col int) (row int, ok bool, err error) {
	if col < 0 || col >= b.width {
		return -1, false, ErrColumnOutOfRange
	}
	// columns fill bottom-up, so the first empty cell from the bottom is the landing spot
	for r := b.height - 1; r >= 0; r-- {
		if b.grid[r][col] == Empty {
			return r, true, nil
		}
	}
	return -1, false, nil
}

// Place puts p's piece at (row, col). The cell must be empty and row must come
// from LandingRow in the same turn.
func (b *Board) Place(row, col int, p Player) {
	b.grid[row][col] = Occupied(p)
}

// CellAt returns the state of (row, col). Coordinates outside the board read as Empty.
func (b *Board) CellAt(row, col int) Cell {
	if !b.inBounds(row, col) {
		return Empty
	}
	return b.grid[row][col]
}

// IsFull reports whether no column can take another piece.
func (b *Board) IsFull() bool {
	for c := 0; c < b.width; c++ {
		if _, ok, _ := b.LandingRow(c); ok {
			return false
		}
	}
	return true
}

// Clone returns a deep copy of the board.
func (b *Board) Clone() *Board {
	grid := make([][]Cell, b.height)
	for r := range b.grid {
		grid[r] = make([]Cell, b.width)
		copy(grid[r], b.grid[r])
	}
	return &Board{width: b.width, height: b.height, grid: grid}
}

func (b *Board) inBounds(row, col int) bool {
	return row >= 0 && row < b.height && col >= 0 && col < b.width
}

package domain

// WinLength is the number of aligned pieces that wins the game.
const WinLength = 4

// Point is a (row, col) board coordinate.
type Point struct {
	Row int
	Col int
}

// axes lists one direction per line through a cell: horizontal, vertical,
// down-right diagonal and down-left diagonal. The opposite direction is the negation.
var axes = [4]Point{{0, 1}, {1, 0}, {1, 1}, {1, -1}}

// winningLine returns the longest run of p's pieces through (row, col) that
// reaches WinLength, or nil when no axis does.
func winningLine(b *Board, row, col int, p Player) []Point {
	var best []Point
	for _, d := range axes {
		back := countRun(b, row, col, -d.Row, -d.Col, p)
		fwd := countRun(b, row, col, d.Row, d.Col, p)
		if back+1+fwd < WinLength || back+1+fwd <= len(best) {
			continue
		}
		best = best[:0]
		for i := -back; i <= fwd; i++ {
			best = append(best, Point{Row: row + i*d.Row, Col: col + i*d.Col})
		}
	}
	return best
}

// countRun counts p's pieces walking from (row, col) in direction (dr, dc),
// excluding the start cell. It stops at the edge, an empty cell or an opposing piece.
func countRun(b *Board, row, col, dr, dc int, p Player) int {
	want := Occupied(p)
	count := 0
	r, c := row+dr, col+dc
	for b.inBounds(r, c) && b.grid[r][c] == want {
		count++
		r += dr
		c += dc
	}
	return count
}

// HasWin reports whether the piece at (row, col) completes a line of
// WinLength or more for p.
func HasWin(b *Board, row, col int, p Player) bool {
	return len(winningLine(b, row, col, p)) > 0
}

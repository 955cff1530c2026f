package web

import (
	"errors"
	"strconv"
	"strings"

	"github.com/jaminalder/codex-connect-four/internal/domain"
)

// ErrBadColumn is returned for column identifiers that are not integers.
var ErrBadColumn = errors.New("column is not a number")

// ParseColumn turns a column identifier from a form field or socket frame into
// a column index on a board of the given width.
func ParseColumn(raw string, width int) (int, error) {
	col, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return -1, ErrBadColumn
	}
	if col < 0 || col >= width {
		return -1, domain.ErrColumnOutOfRange
	}
	return col, nil
}

// errorMessage maps a rejected move to the text shown to the player.
func errorMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrBadColumn):
		return "Pick a column"
	case errors.Is(err, domain.ErrColumnOutOfRange):
		return "No such column"
	case errors.Is(err, domain.ErrColumnFull):
		return "That column is full"
	case errors.Is(err, domain.ErrGameAlreadyOver):
		return "Game is over"
	default:
		return "Invalid move"
	}
}

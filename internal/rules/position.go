package rules

import (
	"errors"
	"sort"
	"strings"
)

// BoardSize is the number of columns and rows on the board.
const BoardSize = 8

var (
	// ErrOutOfBounds is returned when a coordinate falls outside the 8x8 grid.
	ErrOutOfBounds = errors.New("position out of bounds")
	// ErrInvalidNotation is returned for malformed square names such as "z9".
	ErrInvalidNotation = errors.New("invalid square notation")
)

// Position is a board square. Column 0 is file "a"; row 0 is the FIRST side's home rank.
// The zero value is a1.
type Position struct {
	col int8
	row int8
}

func NewPosition(col, row int) (Position, error) {
	if !onBoard(col) || !onBoard(row) {
		return Position{}, ErrOutOfBounds
	}
	return Position{col: int8(col), row: int8(row)}, nil
}

// MustPosition is NewPosition for coordinates known to be valid.
func MustPosition(col, row int) Position {
	p, err := NewPosition(col, row)
	if err != nil {
		panic(err)
	}
	return p
}

// ParsePosition reads algebraic notation ("e2").
func ParsePosition(n string) (Position, error) {
	n = strings.ToLower(strings.TrimSpace(n))
	if len(n) != 2 {
		return Position{}, ErrInvalidNotation
	}
	col := int(n[0]) - 'a'
	row := int(n[1]) - '1'
	if !onBoard(col) || !onBoard(row) {
		return Position{}, ErrInvalidNotation
	}
	return Position{col: int8(col), row: int8(row)}, nil
}

// MustParse is ParsePosition for literals.
func MustParse(n string) Position {
	p, err := ParsePosition(n)
	if err != nil {
		panic(err)
	}
	return p
}

func (p Position) Col() int { return int(p.col) }
func (p Position) Row() int { return int(p.row) }

func (p Position) String() string {
	return string(rune('a'+p.col)) + string(rune('1'+p.row))
}

// IsOffsetValid reports whether p shifted by (dx, dy) stays on the board.
func (p Position) IsOffsetValid(dx, dy int) bool {
	return onBoard(int(p.col)+dx) && onBoard(int(p.row)+dy)
}

// Offset returns p shifted by (dx, dy), or ErrOutOfBounds.
func (p Position) Offset(dx, dy int) (Position, error) {
	if !p.IsOffsetValid(dx, dy) {
		return Position{}, ErrOutOfBounds
	}
	return p.shift(dx, dy), nil
}

// shift skips the range check; callers guard with IsOffsetValid.
func (p Position) shift(dx, dy int) Position {
	return Position{col: p.col + int8(dx), row: p.row + int8(dy)}
}

func onBoard(v int) bool { return v >= 0 && v < BoardSize }

// PositionSet is an unordered set of squares.
type PositionSet map[Position]struct{}

func NewPositionSet(ps ...Position) PositionSet {
	s := make(PositionSet, len(ps))
	for _, p := range ps {
		s.Add(p)
	}
	return s
}

func (s PositionSet) Add(p Position) { s[p] = struct{}{} }

func (s PositionSet) Has(p Position) bool {
	_, ok := s[p]
	return ok
}

func (s PositionSet) Len() int { return len(s) }

// Sorted returns the squares ordered by row, then column.
func (s PositionSet) Sorted() []Position {
	out := make([]Position, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].row != out[j].row {
			return out[i].row < out[j].row
		}
		return out[i].col < out[j].col
	})
	return out
}

func (s PositionSet) Clone() PositionSet {
	c := make(PositionSet, len(s))
	for p := range s {
		c[p] = struct{}{}
	}
	return c
}

package rules

import "errors"

// ErrOccupied is returned when placing a piece on a square that already holds one.
var ErrOccupied = errors.New("square already occupied")

// Board is the occupancy ledger: each side's live pieces. It does no legality checking.
type Board struct {
	pieces [2][]*Piece
}

func NewBoard() *Board { return &Board{} }

// Place adds a piece to its side's collection.
func (b *Board) Place(p *Piece) error {
	if b.PieceAt(p.pos) != nil {
		return ErrOccupied
	}
	b.pieces[p.Side()] = append(b.pieces[p.Side()], p)
	return nil
}

// Pieces returns a copy of the side's collection.
func (b *Board) Pieces(side Side) []*Piece {
	return append([]*Piece(nil), b.pieces[side]...)
}

func (b *Board) PositionsOf(side Side) PositionSet {
	set := make(PositionSet, len(b.pieces[side]))
	for _, p := range b.pieces[side] {
		set.Add(p.pos)
	}
	return set
}

// PieceAt searches both sides; nil means the square is empty.
func (b *Board) PieceAt(pos Position) *Piece {
	for _, list := range b.pieces {
		for _, p := range list {
			if p.pos == pos {
				return p
			}
		}
	}
	return nil
}

// Remove drops p from its owner's collection and reports whether it was present.
func (b *Board) Remove(p *Piece) bool {
	list := b.pieces[p.Side()]
	for i, q := range list {
		if q == p {
			b.pieces[p.Side()] = append(list[:i], list[i+1:]...)
			return true
		}
	}
	return false
}

func (b *Board) Relocate(p *Piece, to Position) {
	p.pos = to
}

package rules

import (
	"fmt"
	"strings"
)

// Side identifies one of the two players.
type Side uint8

const (
	First Side = iota
	Second
)

func (s Side) String() string {
	if s == Second {
		return "black"
	}
	return "white"
}

func (s Side) Opponent() Side {
	if s == First {
		return Second
	}
	return First
}

func (s Side) forward() int {
	if s == First {
		return 1
	}
	return -1
}

func (s Side) homeRow() int {
	if s == First {
		return 0
	}
	return BoardSize - 1
}

func (s Side) pawnRow() int { return s.homeRow() + s.forward() }

func ParseSide(v string) (Side, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "white", "w", "first":
		return First, nil
	case "black", "b", "second":
		return Second, nil
	default:
		return First, fmt.Errorf("unknown side %q", v)
	}
}

func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Side) UnmarshalText(b []byte) error {
	v, err := ParseSide(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Kind is the piece type.
type Kind uint8

const (
	Pawn Kind = iota
	Knight
	Bishop
	Rook
	Queen
	King
)

var kindNames = [...]string{"pawn", "knight", "bishop", "rook", "queen", "king"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Letter is the notation letter; pawns have none.
func (k Kind) Letter() string {
	switch k {
	case Knight:
		return "N"
	case Bishop:
		return "B"
	case Rook:
		return "R"
	case Queen:
		return "Q"
	case King:
		return "K"
	default:
		return ""
	}
}

func ParseKind(v string) (Kind, error) {
	v = strings.ToLower(strings.TrimSpace(v))
	for i, n := range kindNames {
		if n == v {
			return Kind(i), nil
		}
	}
	return Pawn, fmt.Errorf("unknown piece kind %q", v)
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// Piece is a live piece. Side and kind are fixed at creation; its square changes only
// through Board.Relocate.
type Piece struct {
	side Side
	kind Kind
	pos  Position
}

func NewPiece(side Side, kind Kind, pos Position) *Piece {
	return &Piece{side: side, kind: kind, pos: pos}
}

func (p *Piece) Side() Side { return p.side }

func (p *Piece) Kind() Kind { return p.kind }

func (p *Piece) Position() Position { return p.pos }

func (p *Piece) String() string { return p.kind.Letter() + p.pos.String() }

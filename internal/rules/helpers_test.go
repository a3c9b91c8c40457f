package rules

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func names(ps []Position) []string {
	out := make([]string, 0, len(ps))
	for _, p := range ps {
		out = append(out, p.String())
	}
	return out
}

func set(squares ...string) PositionSet {
	s := PositionSet{}
	for _, sq := range squares {
		s.Add(MustParse(sq))
	}
	return s
}

func assertSquares(t *testing.T, got PositionSet, want ...string) {
	t.Helper()
	if diff := cmp.Diff(names(set(want...).Sorted()), names(got.Sorted())); diff != "" {
		t.Fatalf("targets mismatch (-want +got):\n%s", diff)
	}
}

func mustSetup(t *testing.T, turn Side, pieces ...PieceRecord) *Game {
	t.Helper()
	g := NewEmptyGame(turn)
	for _, p := range pieces {
		if err := g.Place(p.Side, p.Kind, MustParse(p.Square)); err != nil {
			t.Fatalf("place %v: %v", p, err)
		}
	}
	return g
}

func selectAll(t *testing.T, g *Game, squares ...string) Outcome {
	t.Helper()
	var out Outcome
	for _, sq := range squares {
		out = g.Select(MustParse(sq))
	}
	return out
}

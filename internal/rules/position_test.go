package rules

import (
	"errors"
	"testing"
)

func TestOffsetMatchesIsOffsetValid(t *testing.T) {
	for col := 0; col < BoardSize; col++ {
		for row := 0; row < BoardSize; row++ {
			p := MustPosition(col, row)
			for dx := -BoardSize; dx <= BoardSize; dx++ {
				for dy := -BoardSize; dy <= BoardSize; dy++ {
					got, err := p.Offset(dx, dy)
					valid := p.IsOffsetValid(dx, dy)
					if valid != (err == nil) {
						t.Fatalf("%s%+d%+d: IsOffsetValid=%v err=%v", p, dx, dy, valid, err)
					}
					if !valid {
						if !errors.Is(err, ErrOutOfBounds) {
							t.Fatalf("%s%+d%+d: want ErrOutOfBounds, got %v", p, dx, dy, err)
						}
						continue
					}
					if got.Col() != col+dx || got.Row() != row+dy {
						t.Fatalf("%s%+d%+d = %s", p, dx, dy, got)
					}
				}
			}
		}
	}
}

func TestNewPositionRange(t *testing.T) {
	if _, err := NewPosition(8, 0); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("col 8: %v", err)
	}
	if _, err := NewPosition(0, -1); !errors.Is(err, ErrOutOfBounds) {
		t.Fatalf("row -1: %v", err)
	}
	p, err := NewPosition(7, 7)
	if err != nil || p.String() != "h8" {
		t.Fatalf("NewPosition(7,7) = %s, %v", p, err)
	}
}

func TestParsePosition(t *testing.T) {
	cases := []struct {
		in      string
		col     int
		row     int
		wantErr bool
	}{
		{in: "a1", col: 0, row: 0},
		{in: "e2", col: 4, row: 1},
		{in: " H8 ", col: 7, row: 7},
		{in: "i1", wantErr: true},
		{in: "a9", wantErr: true},
		{in: "a0", wantErr: true},
		{in: "e", wantErr: true},
		{in: "e22", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tc := range cases {
		p, err := ParsePosition(tc.in)
		if tc.wantErr {
			if !errors.Is(err, ErrInvalidNotation) {
				t.Fatalf("%q: want ErrInvalidNotation, got %v", tc.in, err)
			}
			continue
		}
		if err != nil {
			t.Fatalf("%q: %v", tc.in, err)
		}
		if p.Col() != tc.col || p.Row() != tc.row {
			t.Fatalf("%q = (%d,%d)", tc.in, p.Col(), p.Row())
		}
	}
}

func TestPositionStringRoundTrip(t *testing.T) {
	for col := 0; col < BoardSize; col++ {
		for row := 0; row < BoardSize; row++ {
			p := MustPosition(col, row)
			if MustParse(p.String()) != p {
				t.Fatalf("round trip failed for %s", p)
			}
		}
	}
}

func TestPositionSetSorted(t *testing.T) {
	s := set("h1", "a2", "b1", "a1")
	got := names(s.Sorted())
	want := []string{"a1", "b1", "h1", "a2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Sorted = %v, want %v", got, want)
		}
	}
	c := s.Clone()
	c.Add(MustParse("d4"))
	if s.Has(MustParse("d4")) || c.Len() != 5 {
		t.Fatalf("Clone shares storage")
	}
}

package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/park285/cheese-duel/internal/rules"
)

func init() { color.NoColor = true }

func TestDrawStartingBoard(t *testing.T) {
	lines := strings.Split(draw(rules.NewGame(), nil, false), "\n")
	if len(lines) != 9 {
		t.Fatalf("lines = %d, want 9", len(lines))
	}
	if !strings.HasPrefix(lines[0], " 8 ") || !strings.Contains(lines[0], "♚") {
		t.Fatalf("top rank %q", lines[0])
	}
	if !strings.Contains(lines[7], "♔") || !strings.HasPrefix(lines[7], " 1 ") {
		t.Fatalf("bottom rank %q", lines[7])
	}
	// black's back rank is mirrored, so its king sits on d8
	if top := strings.Fields(lines[0]); top[4] != "♚" || top[5] != "♛" {
		t.Fatalf("unexpected black back rank %v", top)
	}
	if bottom := strings.Fields(lines[7]); bottom[4] != "♕" || bottom[5] != "♔" {
		t.Fatalf("unexpected white back rank %v", bottom)
	}
	flipped := strings.Split(draw(rules.NewGame(), nil, true), "\n")
	if !strings.HasPrefix(flipped[0], " 1 ") || !strings.Contains(flipped[8], " h ") {
		t.Fatalf("flipped board %q / %q", flipped[0], flipped[8])
	}
}

func TestDrawMarksTargets(t *testing.T) {
	g := rules.NewGame()
	g.Select(rules.MustParse("e2"))
	out := draw(g, nil, false)
	if strings.Count(out, "·") != 2 {
		t.Fatalf("expected two empty target markers:\n%s", out)
	}
}

func TestPlayScript(t *testing.T) {
	in := strings.NewReader("e2\ne4\nz9\nd7\nd5\nquit\n")
	var out bytes.Buffer
	if err := play(in, &out, false); err != nil {
		t.Fatalf("play: %v", err)
	}
	text := out.String()
	for _, want := range []string{"e2 selected, 2 target(s)", "white: e2-e4 (moved)", `"z9" is not a square`, "black: d7-d5 (moved)"} {
		if !strings.Contains(text, want) {
			t.Fatalf("missing %q in output:\n%s", want, text)
		}
	}
}

func TestPlayUntilKingCapture(t *testing.T) {
	script := []string{
		"e2", "e4", "a7", "a6",
		"d1", "h5", "a6", "a5",
		"h5", "f7", "a5", "a4",
		"f7", "e8", "a4", "a3",
		"e8", "d8",
	}
	var out bytes.Buffer
	if err := play(strings.NewReader(strings.Join(script, "\n")+"\n"), &out, false); err != nil {
		t.Fatalf("play: %v", err)
	}
	if !strings.Contains(out.String(), "white wins by capturing the king.") {
		t.Fatalf("king capture not reported:\n%s", out.String())
	}
}

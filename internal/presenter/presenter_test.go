package presenter

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/park285/cheese-duel/internal/duel"
	"github.com/park285/cheese-duel/internal/lobby"
	"github.com/park285/cheese-duel/internal/msgcat"
	"github.com/park285/cheese-duel/internal/rules"
	"github.com/park285/cheese-duel/pkg/dueldto"
)

type sent struct {
	kind, room, body string
}

func recorder(out *[]sent) (func(string, string) error, func(string, string) error) {
	return func(room, msg string) error {
			*out = append(*out, sent{"text", room, msg})
			return nil
		}, func(room, img string) error {
			*out = append(*out, sent{"image", room, img})
			return nil
		}
}

func TestBoardSendsTextThenImage(t *testing.T) {
	var out []sent
	p := New(recorder(&out))
	state := &dueldto.SessionState{BoardImage: []byte{1, 2, 3}}
	if err := p.Board("r1", "hello", state); err != nil {
		t.Fatalf("Board: %v", err)
	}
	want := []sent{
		{"text", "r1", "hello"},
		{"image", "r1", base64.StdEncoding.EncodeToString([]byte{1, 2, 3})},
	}
	if diff := cmp.Diff(want, out, cmp.AllowUnexported(sent{})); diff != "" {
		t.Fatalf("sent mismatch (-want +got):\n%s", diff)
	}
}

func TestBroadcastSkipsDuplicateRooms(t *testing.T) {
	var out []sent
	p := New(recorder(&out))
	if err := p.Broadcast([]string{"a", "a", "", "b"}, "hi", nil); err != nil {
		t.Fatalf("Broadcast: %v", err)
	}
	if len(out) != 2 || out[0].room != "a" || out[1].room != "b" {
		t.Fatalf("unexpected sends: %+v", out)
	}
}

func TestBoardStopsOnTextError(t *testing.T) {
	boom := errors.New("boom")
	images := 0
	p := New(func(string, string) error { return boom }, func(string, string) error { images++; return nil })
	err := p.Board("r", "x", &dueldto.SessionState{BoardImage: []byte{1}})
	if !errors.Is(err, boom) || images != 0 {
		t.Fatalf("err=%v images=%d", err, images)
	}
}

func newFormatter(t *testing.T) *Formatter {
	t.Helper()
	cat, err := msgcat.New("")
	if err != nil {
		t.Fatalf("msgcat: %v", err)
	}
	return NewFormatter(cat, "!duel")
}

func TestFormatterMoves(t *testing.T) {
	f := newFormatter(t)
	g := &duel.Game{WhiteName: "Alice", BlackName: "Bob", State: rules.NewGame().Snapshot()}

	from, _ := rules.ParsePosition("e2")
	to, _ := rules.ParsePosition("e4")
	if got := f.Move(g, &rules.Move{Side: rules.First, Kind: rules.Pawn, From: from, To: to}); got != "Alice: e2-e4" {
		t.Fatalf("moved text %q", got)
	}

	victim := rules.NewPiece(rules.Second, rules.King, to)
	got := f.Move(g, &rules.Move{Side: rules.First, Kind: rules.Queen, From: from, To: to, Effect: rules.GameOver, Captured: victim})
	if !strings.Contains(got, "Alice wins") {
		t.Fatalf("game over text %q", got)
	}
}

func TestFormatterSelected(t *testing.T) {
	f := newFormatter(t)
	e3, _ := rules.ParsePosition("e3")
	e4, _ := rules.ParsePosition("e4")
	if got := f.Selected("e2", []rules.Position{e3, e4}); !strings.Contains(got, "e3, e4") {
		t.Fatalf("selected text %q", got)
	}
	if got := f.Selected("a1", nil); !strings.Contains(got, "no legal moves") {
		t.Fatalf("selected_none text %q", got)
	}
}

func TestFormatterErrors(t *testing.T) {
	f := newFormatter(t)
	cases := []struct {
		err  error
		want string
	}{
		{fmt.Errorf("wrap: %w", duel.ErrNotYourTurn), "It is not your turn."},
		{lobby.ErrFull, "That lobby already has two players."},
		{duel.ErrAlreadyStarted, "The duel already has moves. Use `!duel resign` instead."},
		{errors.New("redis down"), "Something went wrong. Please try again later."},
		{dueldto.DomainError{Code: "errors.game_over"}, "This duel has already ended."},
		{dueldto.DomainError{Code: "nope", Message: "raw"}, "raw"},
	}
	for _, tc := range cases {
		if got := f.Error(tc.err); got != tc.want {
			t.Fatalf("Error(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}

func TestFormatterLobbyList(t *testing.T) {
	f := newFormatter(t)
	if got := f.LobbyList(nil); got != "No open lobbies." {
		t.Fatalf("empty list %q", got)
	}
	got := f.LobbyList([]*lobby.Channel{{Code: "CH-ABCDEF", CreatorName: "Alice"}})
	if got != "Open lobbies:\n- CH-ABCDEF by Alice" {
		t.Fatalf("list %q", got)
	}
}

func TestFoldPadsAfterFirstLine(t *testing.T) {
	got := fold("Recent duels:\n- a\n- b")
	header, rest, _ := strings.Cut(got, "\n")
	if !strings.HasPrefix(header, "Recent duels:") || strings.Count(header, zeroWidthSpace) != seeMorePadding {
		t.Fatalf("header not padded: %d spaces", strings.Count(header, zeroWidthSpace))
	}
	if rest != "- a\n- b" {
		t.Fatalf("body %q", rest)
	}
	if Unfold(got) != "Recent duels:\n- a\n- b" {
		t.Fatalf("Unfold did not restore the text")
	}
	if fold("single line") != "single line" {
		t.Fatalf("single lines must not be padded")
	}
}

func TestHelpIsFolded(t *testing.T) {
	f := newFormatter(t)
	help := f.Help()
	if !strings.Contains(help, zeroWidthSpace) || !strings.Contains(Unfold(help), "!duel resign") {
		t.Fatalf("help %q", Unfold(help))
	}
}

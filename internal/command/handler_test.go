package command

import (
	"context"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/park285/cheese-duel/internal/challenge"
	"github.com/park285/cheese-duel/internal/duel"
	"github.com/park285/cheese-duel/internal/lobby"
	"github.com/park285/cheese-duel/internal/msgcat"
	"github.com/park285/cheese-duel/internal/presenter"
)

const prefix = "!duel"

type outbox struct {
	texts  map[string][]string
	images map[string]int
}

func (o *outbox) last(room string) string {
	list := o.texts[room]
	if len(list) == 0 {
		return ""
	}
	return list[len(list)-1]
}

type fakeHistory struct {
	results []duel.Result
	asked   string
}

func (f *fakeHistory) RecentResults(_ context.Context, userID string, _ int) ([]duel.Result, error) {
	f.asked = userID
	return f.results, nil
}

type fixture struct {
	h     *Handler
	out   *outbox
	duels *duel.Manager
}

func newFixture(t *testing.T, opts ...challenge.Option) *fixture {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(func() { mr.Close() })
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	cat, err := msgcat.New("")
	if err != nil {
		t.Fatalf("msgcat: %v", err)
	}
	out := &outbox{texts: map[string][]string{}, images: map[string]int{}}
	pres := presenter.New(
		func(room, msg string) error { out.texts[room] = append(out.texts[room], msg); return nil },
		func(room, _ string) error { out.images[room]++; return nil },
	)
	duels := duel.NewManagerWithClient(rdb, 0)
	h := New(Deps{
		Prefix:      prefix,
		Duels:       duels,
		Lobbies:     lobby.NewManager(rdb, duels),
		Challenges:  challenge.NewManager(opts...),
		Presenter:   pres,
		Formatter:   presenter.NewFormatter(cat, prefix),
		RoomAllowed: func(room string) bool { return room != "blocked" },
	})
	return &fixture{h: h, out: out, duels: duels}
}

func (f *fixture) send(t *testing.T, room, user, name, text string) {
	t.Helper()
	if err := f.h.Handle(context.Background(), Message{Room: room, UserID: user, UserName: name, Text: text}); err != nil {
		t.Fatalf("Handle(%q): %v", text, err)
	}
}

func TestHelpAndIgnoredMessages(t *testing.T) {
	f := newFixture(t, challenge.WithAutoAccept())
	f.send(t, "r", "u1", "Alice", "hello there")
	f.send(t, "blocked", "u1", "Alice", prefix+" help")
	f.send(t, "r", "", "", prefix+" help")
	if len(f.out.texts) != 0 {
		t.Fatalf("unexpected replies: %v", f.out.texts)
	}

	f.send(t, "r", "u1", "Alice", prefix)
	if !strings.Contains(f.out.last("r"), "Duel commands") {
		t.Fatalf("help not shown: %q", f.out.last("r"))
	}
}

// startDuel has alice challenge bob as white in room r.
func startDuel(t *testing.T, f *fixture) {
	t.Helper()
	f.send(t, "r", "alice", "Alice", prefix+" @bob white")
	if !strings.Contains(f.out.last("r"), "Alice (white) vs bob (black)") {
		t.Fatalf("start text %q", f.out.last("r"))
	}
	if f.out.images["r"] != 1 {
		t.Fatalf("start board not sent")
	}
}

func TestChallengeSelectAndMove(t *testing.T) {
	f := newFixture(t, challenge.WithAutoAccept())
	startDuel(t, f)

	f.send(t, "r", "bob", "Bob", prefix+" e7")
	if f.out.last("r") != "It is not your turn." {
		t.Fatalf("turn check: %q", f.out.last("r"))
	}

	f.send(t, "r", "alice", "Alice", prefix+" z9")
	if !strings.Contains(f.out.last("r"), `"z9" is not a square`) {
		t.Fatalf("invalid square: %q", f.out.last("r"))
	}

	f.send(t, "r", "alice", "Alice", prefix+" select e2")
	if got := f.out.last("r"); !strings.Contains(got, "e2 selected") || !strings.Contains(got, "e3, e4") {
		t.Fatalf("select text %q", got)
	}

	f.send(t, "r", "alice", "Alice", prefix+" E4")
	if got := f.out.last("r"); !strings.Contains(got, "e2-e4") {
		t.Fatalf("move text %q", got)
	}
	if f.out.images["r"] != 3 {
		t.Fatalf("images = %d, want 3", f.out.images["r"])
	}

	f.send(t, "r", "bob", "Bob", prefix+" a1")
	if !strings.Contains(f.out.last("r"), "Selection cleared") {
		t.Fatalf("deselect text %q", f.out.last("r"))
	}

	f.send(t, "r", "bob", "Bob", prefix+" status")
	if !strings.Contains(f.out.last("r"), "bob (black) to move, move 2") {
		t.Fatalf("status text %q", f.out.last("r"))
	}
}

func TestAbortThenResign(t *testing.T) {
	f := newFixture(t, challenge.WithAutoAccept())
	startDuel(t, f)
	f.send(t, "r", "alice", "Alice", prefix+" abort")
	if f.out.last("r") != "Duel aborted before the first move." {
		t.Fatalf("abort text %q", f.out.last("r"))
	}
	f.send(t, "r", "alice", "Alice", prefix+" resign")
	if f.out.last("r") != "You have no active duel in this room." {
		t.Fatalf("resign after abort %q", f.out.last("r"))
	}

	f.send(t, "r", "alice", "Alice", prefix+" @bob black")
	f.send(t, "r", "bob", "Bob", prefix+" e2")
	f.send(t, "r", "bob", "Bob", prefix+" e4")
	f.send(t, "r", "alice", "Alice", prefix+" abort")
	if !strings.Contains(f.out.last("r"), "already has moves") {
		t.Fatalf("abort after move %q", f.out.last("r"))
	}
	f.send(t, "r", "alice", "Alice", prefix+" resign")
	if f.out.last("r") != "Alice resigned. bob wins." {
		t.Fatalf("resign text %q", f.out.last("r"))
	}
}

func TestChallengeErrors(t *testing.T) {
	f := newFixture(t, challenge.WithAutoAccept())
	f.send(t, "r", "alice", "Alice", prefix+" @alice")
	if f.out.last("r") != "You cannot challenge yourself." {
		t.Fatalf("self challenge %q", f.out.last("r"))
	}
	f.send(t, "r", "alice", "Alice", prefix+" @")
	if !strings.HasPrefix(f.out.last("r"), "Usage:") {
		t.Fatalf("usage %q", f.out.last("r"))
	}
	startDuel(t, f)
	f.send(t, "r", "alice", "Alice", prefix+" @carol")
	if f.out.last("r") != "You already have an active duel in this room." {
		t.Fatalf("busy %q", f.out.last("r"))
	}
}

func TestAcceptAndDecline(t *testing.T) {
	f := newFixture(t)
	f.send(t, "r", "alice", "Alice", prefix+" @bob")
	if !strings.Contains(f.out.last("r"), "Alice challenged bob") {
		t.Fatalf("challenge text %q", f.out.last("r"))
	}
	f.send(t, "r", "bob", "Bob", prefix+" decline")
	if !strings.Contains(f.out.last("r"), "bob declined") {
		t.Fatalf("decline text %q", f.out.last("r"))
	}
	f.send(t, "r", "bob", "Bob", prefix+" accept")
	if f.out.last("r") != "You have no pending challenge." {
		t.Fatalf("accept without challenge %q", f.out.last("r"))
	}

	f.send(t, "r", "alice", "Alice", prefix+" @bob")
	f.send(t, "r2", "bob", "Bob", prefix+" accept")
	g, err := f.duels.GetActiveGameByUserInRoom(context.Background(), "bob", "r2")
	if err != nil || g == nil {
		t.Fatalf("no duel after accept: %v", err)
	}
	if g.OriginRoom != "r" || g.ResolveRoom != "r2" {
		t.Fatalf("rooms %q/%q", g.OriginRoom, g.ResolveRoom)
	}
	if f.out.images["r"] != 1 || f.out.images["r2"] != 1 {
		t.Fatalf("start board should reach both rooms: %v", f.out.images)
	}
}

func TestLobbyAcrossRooms(t *testing.T) {
	f := newFixture(t, challenge.WithAutoAccept())
	f.send(t, "roomA", "alice", "Alice", prefix+" lobby make")
	made := f.out.last("roomA")
	if !strings.HasPrefix(made, "Lobby CH-") {
		t.Fatalf("make text %q", made)
	}
	code := strings.Fields(made)[1]

	f.send(t, "roomB", "bob", "Bob", prefix+" lobby list")
	if !strings.Contains(f.out.last("roomB"), code+" by Alice") {
		t.Fatalf("list text %q", f.out.last("roomB"))
	}

	f.send(t, "roomB", "bob", "Bob", prefix+" lobby join "+strings.ToLower(code))
	for _, room := range []string{"roomA", "roomB"} {
		if !strings.Contains(f.out.last(room), "Lobby "+code+":") || f.out.images[room] != 1 {
			t.Fatalf("%s did not get the start: %q images=%d", room, f.out.last(room), f.out.images[room])
		}
	}

	f.send(t, "roomB", "bob", "Bob", prefix+" lobby join "+code)
	if f.out.last("roomB") != "That lobby has already started." {
		t.Fatalf("rejoin text %q", f.out.last("roomB"))
	}

	f.send(t, "roomA", "alice", "Alice", prefix+" lobby cancel")
	if f.out.last("roomA") != "You have no open lobby." {
		t.Fatalf("cancel text %q", f.out.last("roomA"))
	}
	f.send(t, "roomA", "alice", "Alice", prefix+" lobby")
	if !strings.HasPrefix(f.out.last("roomA"), "Usage:") {
		t.Fatalf("usage text %q", f.out.last("roomA"))
	}
}

func TestLobbyCancel(t *testing.T) {
	f := newFixture(t, challenge.WithAutoAccept())
	f.send(t, "roomA", "alice", "Alice", prefix+" lobby make")
	code := strings.Fields(f.out.last("roomA"))[1]
	f.send(t, "roomA", "alice", "Alice", prefix+" lobby cancel")
	if f.out.last("roomA") != "Lobby "+code+" cancelled." {
		t.Fatalf("cancel text %q", f.out.last("roomA"))
	}
}

func TestHistory(t *testing.T) {
	f := newFixture(t, challenge.WithAutoAccept())
	f.send(t, "r", "alice", "Alice", prefix+" history")
	if f.out.last("r") != "Result history is not enabled." {
		t.Fatalf("disabled text %q", f.out.last("r"))
	}

	hist := &fakeHistory{results: []duel.Result{{WhiteName: "Alice", BlackName: "Bob", Result: "1-0", Method: "king_capture", MoveCount: 17}}}
	f.h.History = hist
	f.send(t, "r", "alice", "Alice", prefix+" history")
	want := "Recent duels:\n- Alice vs Bob: 1-0 (king_capture, 17 moves)"
	if presenter.Unfold(f.out.last("r")) != want || hist.asked != "alice" {
		t.Fatalf("history text %q asked=%q", f.out.last("r"), hist.asked)
	}
}

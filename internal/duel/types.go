package duel

import (
	"errors"
	"strings"
	"time"

	"github.com/park285/cheese-duel/internal/rules"
)

// Status represents a duel lifecycle state.
type Status string

const (
	StatusActive   Status = "ACTIVE"
	StatusFinished Status = "FINISHED"
	StatusResigned Status = "RESIGNED"
	StatusAborted  Status = "ABORTED"
)

// ColorChoice is the challenger's colour preference.
type ColorChoice string

const (
	ColorWhite  ColorChoice = "white"
	ColorBlack  ColorChoice = "black"
	ColorRandom ColorChoice = "random"
)

func ParseColorChoice(s string) ColorChoice {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "white", "w":
		return ColorWhite
	case "black", "b":
		return ColorBlack
	default:
		return ColorRandom
	}
}

var (
	ErrInvalidArgs      = errors.New("invalid arguments")
	ErrGameNotFound     = errors.New("duel not found")
	ErrNotInGame        = errors.New("user is not a player in this duel")
	ErrNotYourTurn      = errors.New("not your turn")
	ErrGameOver         = errors.New("duel is no longer active")
	ErrInvalidSquare    = errors.New("invalid square")
	ErrConcurrentUpdate = errors.New("duel was updated concurrently")
	ErrAlreadyStarted   = errors.New("duel already has moves and cannot be aborted")
	ErrPlayerBusy       = errors.New("player already has an active duel in this room")
)

// Participants describes who plays and where the duel was arranged.
type Participants struct {
	OriginRoom     string
	ResolveRoom    string
	ChallengerID   string
	ChallengerName string
	TargetID       string
	TargetName     string
	Color          ColorChoice
}

// LastMove is kept only for board highlighting; full move history is not stored.
type LastMove struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Effect string `json:"effect"`
	Text   string `json:"text"`
}

// Game is the persisted state of a duel.
type Game struct {
	ID          string         `json:"id"`
	State       rules.Snapshot `json:"state"`
	Status      Status         `json:"status"`
	WhiteID     string         `json:"white_id"`
	WhiteName   string         `json:"white_name"`
	BlackID     string         `json:"black_id"`
	BlackName   string         `json:"black_name"`
	OriginRoom  string         `json:"origin_room"`
	ResolveRoom string         `json:"resolve_room"`
	LastMove    *LastMove      `json:"last_move,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	Winner      string         `json:"winner,omitempty"`
	Outcome     string         `json:"outcome,omitempty"`
}

func (g *Game) Turn() rules.Side { return g.State.Turn }

func (g *Game) MoveCount() int { return g.State.Moves }

// SideOf reports which side userID plays.
func (g *Game) SideOf(userID string) (rules.Side, bool) {
	switch strings.TrimSpace(userID) {
	case "":
		return rules.First, false
	case g.WhiteID:
		return rules.First, true
	case g.BlackID:
		return rules.Second, true
	}
	return rules.First, false
}

func (g *Game) PlayerID(side rules.Side) string {
	if side == rules.Second {
		return g.BlackID
	}
	return g.WhiteID
}

func (g *Game) PlayerName(side rules.Side) string {
	if side == rules.Second {
		return g.BlackName
	}
	return g.WhiteName
}

func (g *Game) OpponentID(userID string) string {
	side, ok := g.SideOf(userID)
	if !ok {
		return ""
	}
	return g.PlayerID(side.Opponent())
}

// InRoom reports whether the duel is visible from room.
func (g *Game) InRoom(room string) bool {
	room = strings.TrimSpace(room)
	return room != "" && (g.OriginRoom == room || g.ResolveRoom == room)
}

// Rooms lists the distinct rooms that follow this duel.
func (g *Game) Rooms() []string {
	if g.ResolveRoom == "" || g.ResolveRoom == g.OriginRoom {
		return []string{g.OriginRoom}
	}
	return []string{g.OriginRoom, g.ResolveRoom}
}

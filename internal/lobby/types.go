package lobby

import (
	"errors"
	"time"
)

// State is the lifecycle of a lobby channel.
type State string

const (
	StateLobby   State = "LOBBY"
	StateActive  State = "ACTIVE"
	StateAborted State = "ABORTED"
)

// Channel is stored as JSON under lobby:<code>.
type Channel struct {
	Code      string    `json:"code"`
	State     State     `json:"state"`
	CreatedAt time.Time `json:"created_at"`

	CreatorID   string `json:"creator_id"`
	CreatorName string `json:"creator_name"`
	CreatorRoom string `json:"creator_room"`

	WhiteID   string `json:"white_id,omitempty"`
	WhiteName string `json:"white_name,omitempty"`
	BlackID   string `json:"black_id,omitempty"`
	BlackName string `json:"black_name,omitempty"`

	GameID string `json:"game_id,omitempty"`
}

type JoinResult struct {
	Started bool
	GameID  string
	Channel *Channel
}

var (
	ErrInvalidArgs      = errors.New("invalid arguments")
	ErrChannelGone      = errors.New("channel not found or expired")
	ErrChannelActive    = errors.New("channel already active")
	ErrFull             = errors.New("channel already has two participants")
	ErrAlreadyJoined    = errors.New("already in this channel")
	ErrPlayerBusyInRoom = errors.New("player has an active duel in this room")
	ErrCreatorHasLobby  = errors.New("user already has an open lobby")
	ErrNotCreator       = errors.New("only the creator can cancel a lobby")
)

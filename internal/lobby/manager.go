package lobby

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/cheese-duel/internal/duel"
	"github.com/park285/cheese-duel/internal/obslog"
)

// Duels is the part of duel.Manager the lobby needs.
type Duels interface {
	GetActiveGameByUserInRoom(ctx context.Context, userID, room string) (*duel.Game, error)
	CreateGame(ctx context.Context, p duel.Participants) (*duel.Game, error)
}

// Manager pairs two players through a shared join code, possibly across rooms.
type Manager struct {
	rdb   *redis.Client
	store *store
	duels Duels
}

func NewManager(rdb *redis.Client, duels Duels) *Manager {
	return &Manager{rdb: rdb, store: &store{rdb: rdb}, duels: duels}
}

// Make opens a lobby owned by userID and returns it with a fresh code.
func (m *Manager) Make(ctx context.Context, room, userID, userName string) (*Channel, error) {
	room, userID = strings.TrimSpace(room), strings.TrimSpace(userID)
	if room == "" || userID == "" {
		return nil, ErrInvalidArgs
	}
	if g, _ := m.duels.GetActiveGameByUserInRoom(ctx, userID, room); g != nil {
		return nil, ErrPlayerBusyInRoom
	}
	if open, err := m.openLobbyOf(ctx, userID); err != nil {
		return nil, err
	} else if open != nil {
		return nil, fmt.Errorf("%w: %s", ErrCreatorHasLobby, open.Code)
	}

	for i := 0; i < 5; i++ {
		code, err := newCode()
		if err != nil {
			return nil, err
		}
		ok, err := m.store.reserve(ctx, code)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		ch := &Channel{
			Code:        code,
			State:       StateLobby,
			CreatedAt:   time.Now(),
			CreatorID:   userID,
			CreatorName: nameOr(userName, userID),
			CreatorRoom: room,
		}
		if err := m.store.save(ctx, ch); err != nil {
			return nil, err
		}
		if err := m.store.addMember(ctx, code, room, userID); err != nil {
			return nil, err
		}
		if err := m.store.open(ctx, code); err != nil {
			return nil, err
		}
		obslog.L().Info("lobby_make", zap.String("code", code), zap.String("room", room), zap.String("creator_id", userID))
		return ch, nil
	}
	return nil, fmt.Errorf("failed to allocate lobby code")
}

func (m *Manager) openLobbyOf(ctx context.Context, userID string) (*Channel, error) {
	codes, err := m.store.codesByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	for _, c := range codes {
		ch, _ := m.store.load(ctx, c)
		if ch != nil && ch.State == StateLobby && ch.CreatorID == userID {
			return ch, nil
		}
	}
	return nil, nil
}

// Join adds userID to the lobby. The second participant starts the duel; colours are
// always random.
func (m *Manager) Join(ctx context.Context, room, code, userID, userName string) (*JoinResult, error) {
	room, code, userID = strings.TrimSpace(room), strings.ToUpper(strings.TrimSpace(code)), strings.TrimSpace(userID)
	if room == "" || code == "" || userID == "" {
		return nil, ErrInvalidArgs
	}
	ch, err := m.store.load(ctx, code)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrChannelGone
	}
	if ch.State != StateLobby {
		return nil, ErrChannelActive
	}
	if busy, _ := m.duels.GetActiveGameByUserInRoom(ctx, userID, room); busy != nil {
		return nil, ErrPlayerBusyInRoom
	}

	partKey := keyParticipants(code)
	err = m.rdb.Watch(ctx, func(tx *redis.Tx) error {
		members, err := tx.SMembers(ctx, partKey).Result()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if slices.Contains(members, userID) {
			return ErrAlreadyJoined
		}
		if len(members) >= 2 {
			return ErrFull
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			addMember(ctx, pipe, code, room, userID)
			return nil
		})
		return err
	}, partKey)
	if errors.Is(err, redis.TxFailedErr) {
		err = ErrFull
	}
	if err != nil {
		obslog.L().Warn("lobby_join_error", zap.String("code", code), zap.String("room", room), zap.String("user_id", userID), zap.Error(err))
		return nil, err
	}

	members, err := m.store.participants(ctx, code)
	if err != nil {
		return nil, err
	}
	if len(members) < 2 {
		obslog.L().Info("lobby_join", zap.String("code", code), zap.String("room", room), zap.String("user_id", userID), zap.String("reason", "queued"))
		return &JoinResult{Channel: ch}, nil
	}

	g, err := m.duels.CreateGame(ctx, duel.Participants{
		OriginRoom:     ch.CreatorRoom,
		ResolveRoom:    room,
		ChallengerID:   ch.CreatorID,
		ChallengerName: ch.CreatorName,
		TargetID:       userID,
		TargetName:     nameOr(userName, userID),
		Color:          duel.ColorRandom,
	})
	if err != nil {
		// free the seat so someone else can join
		if rbErr := m.store.dropMember(ctx, code, room, userID, ch.CreatorRoom); rbErr != nil {
			obslog.L().Warn("lobby_join_rollback_error", zap.String("code", code), zap.String("user_id", userID), zap.Error(rbErr))
		}
		if errors.Is(err, duel.ErrPlayerBusy) {
			return nil, ErrPlayerBusyInRoom
		}
		return nil, err
	}

	ch.State = StateActive
	ch.GameID = g.ID
	ch.WhiteID, ch.WhiteName = g.WhiteID, g.WhiteName
	ch.BlackID, ch.BlackName = g.BlackID, g.BlackName
	if err := m.store.save(ctx, ch); err != nil {
		return nil, err
	}
	_ = m.store.close(ctx, code)
	obslog.L().Info("lobby_start_game", zap.String("code", code), zap.String("game_id", g.ID), zap.String("white_id", g.WhiteID), zap.String("black_id", g.BlackID))
	return &JoinResult{Started: true, GameID: g.ID, Channel: ch}, nil
}

// Cancel closes a lobby that has not started yet. Only its creator may do so.
func (m *Manager) Cancel(ctx context.Context, code, userID string) (*Channel, error) {
	ch, err := m.store.load(ctx, code)
	if err != nil {
		return nil, err
	}
	if ch == nil {
		return nil, ErrChannelGone
	}
	if ch.CreatorID != strings.TrimSpace(userID) {
		return nil, ErrNotCreator
	}
	if ch.State != StateLobby {
		return nil, ErrChannelActive
	}
	ch.State = StateAborted
	if err := m.store.save(ctx, ch); err != nil {
		return nil, err
	}
	_ = m.store.close(ctx, ch.Code)
	obslog.L().Info("lobby_cancel", zap.String("code", ch.Code), zap.String("creator_id", ch.CreatorID))
	return ch, nil
}

// OpenLobbyOf returns the lobby userID created and is still waiting in, or nil.
func (m *Manager) OpenLobbyOf(ctx context.Context, userID string) (*Channel, error) {
	return m.openLobbyOf(ctx, strings.TrimSpace(userID))
}

// Rooms lists the rooms bound to the lobby with code.
func (m *Manager) Rooms(ctx context.Context, code string) ([]string, error) {
	return m.store.rooms(ctx, strings.ToUpper(strings.TrimSpace(code)))
}

// ListLobby returns channels still waiting for a second player.
func (m *Manager) ListLobby(ctx context.Context) ([]*Channel, error) {
	return m.store.listOpen(ctx)
}

func nameOr(name, fallback string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return fallback
}

package duel

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/park285/cheese-duel/internal/obslog"
	"github.com/park285/cheese-duel/internal/render"
	"github.com/park285/cheese-duel/internal/rules"
)

// DefaultTTL is how long an idle duel survives in Redis.
const DefaultTTL = 24 * time.Hour

// ResultStore persists finished duels.
type ResultStore interface {
	SaveResult(ctx context.Context, g *Game, method string) error
}

type Manager struct {
	rdb      *redis.Client
	ttl      time.Duration
	renderer render.BoardRenderer
	repo     ResultStore
	now      func() time.Time
}

// NewManager connects to redisURL (redis:// or rediss://) and pings it.
func NewManager(redisURL string) (*Manager, error) {
	if strings.TrimSpace(redisURL) == "" {
		return nil, fmt.Errorf("REDIS_URL required for duel manager")
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewManagerWithClient(rdb, DefaultTTL), nil
}

// NewManagerWithClient shares an existing client; ttl <= 0 means DefaultTTL.
func NewManagerWithClient(rdb *redis.Client, ttl time.Duration) *Manager {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Manager{rdb: rdb, ttl: ttl, renderer: render.NewSVGBoardRenderer(), now: time.Now}
}

func (m *Manager) Close() error {
	if m == nil || m.rdb == nil {
		return nil
	}
	return m.rdb.Close()
}

// AttachRepository wires a store for finished duel results.
func (m *Manager) AttachRepository(r ResultStore) {
	if m != nil {
		m.repo = r
	}
}

// CreateGame starts a duel from the standard layout.
func (m *Manager) CreateGame(ctx context.Context, p Participants) (*Game, error) {
	if m == nil || m.rdb == nil {
		return nil, fmt.Errorf("duel manager not initialized")
	}
	challenger, target := strings.TrimSpace(p.ChallengerID), strings.TrimSpace(p.TargetID)
	if challenger == "" || target == "" || strings.TrimSpace(p.OriginRoom) == "" {
		return nil, ErrInvalidArgs
	}
	if challenger == target {
		return nil, fmt.Errorf("%w: self duel", ErrInvalidArgs)
	}
	resolveRoom := strings.TrimSpace(p.ResolveRoom)
	if resolveRoom == "" {
		resolveRoom = strings.TrimSpace(p.OriginRoom)
	}
	for _, u := range []struct{ id, room string }{{challenger, p.OriginRoom}, {target, resolveRoom}} {
		busy, err := m.GetActiveGameByUserInRoom(ctx, u.id, u.room)
		if err != nil {
			return nil, err
		}
		if busy != nil {
			return nil, fmt.Errorf("%w: %s", ErrPlayerBusy, u.id)
		}
	}

	whiteID, whiteName := challenger, nameOr(p.ChallengerName, challenger)
	blackID, blackName := target, nameOr(p.TargetName, target)
	swap := false
	switch p.Color {
	case ColorWhite:
	case ColorBlack:
		swap = true
	default:
		if n, err := rand.Int(rand.Reader, big.NewInt(2)); err == nil && n.Int64() == 0 {
			swap = true
		}
	}
	if swap {
		whiteID, whiteName, blackID, blackName = blackID, blackName, whiteID, whiteName
	}

	now := m.now()
	g := &Game{
		ID:          "duel-" + uuid.NewString(),
		State:       rules.NewGame().Snapshot(),
		Status:      StatusActive,
		WhiteID:     whiteID,
		WhiteName:   whiteName,
		BlackID:     blackID,
		BlackName:   blackName,
		OriginRoom:  strings.TrimSpace(p.OriginRoom),
		ResolveRoom: resolveRoom,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := m.save(ctx, g); err != nil {
		return nil, err
	}
	if err := m.indexParticipants(ctx, g.ID, g.WhiteID, g.BlackID); err != nil {
		return nil, err
	}
	obslog.L().Info("duel_create",
		zap.String("game_id", g.ID),
		zap.String("origin_room", g.OriginRoom),
		zap.String("resolve_room", g.ResolveRoom),
		zap.String("white_id", g.WhiteID),
		zap.String("black_id", g.BlackID),
	)
	return g, nil
}

func nameOr(name, fallback string) string {
	if n := strings.TrimSpace(name); n != "" {
		return n
	}
	return fallback
}

// GetActiveGameByUserInRoom returns the most recently updated active duel of userID
// visible from room, or nil. A user may play in several rooms at once.
func (m *Manager) GetActiveGameByUserInRoom(ctx context.Context, userID, room string) (*Game, error) {
	if strings.TrimSpace(room) == "" {
		return nil, nil
	}
	return m.latestActive(ctx, userID, func(g *Game) bool { return g.InRoom(room) })
}

func (m *Manager) latestActive(ctx context.Context, userID string, keep func(*Game) bool) (*Game, error) {
	if m == nil || m.rdb == nil {
		return nil, fmt.Errorf("duel manager not initialized")
	}
	if strings.TrimSpace(userID) == "" {
		return nil, nil
	}
	ids, err := m.rdb.SMembers(ctx, idxUserKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("user index: %w", err)
	}
	var list []*Game
	for _, id := range ids {
		g, err := m.get(ctx, id)
		if err != nil || g == nil || g.Status != StatusActive || !keep(g) {
			continue
		}
		list = append(list, g)
	}
	if len(list) == 0 {
		return nil, nil
	}
	sort.Slice(list, func(i, j int) bool { return list[i].UpdatedAt.After(list[j].UpdatedAt) })
	return list[0], nil
}

// LoadGame returns the duel by ID, or nil when it expired.
func (m *Manager) LoadGame(ctx context.Context, id string) (*Game, error) {
	return m.get(ctx, id)
}

// Select feeds one square from userID into their duel in room.
// The returned outcome mirrors rules.Game.Select.
func (m *Manager) Select(ctx context.Context, userID, room, square string) (*Game, rules.Outcome, error) {
	pos, err := rules.ParsePosition(square)
	if err != nil {
		return nil, rules.Outcome{}, fmt.Errorf("%w: %q", ErrInvalidSquare, square)
	}
	g, err := m.GetActiveGameByUserInRoom(ctx, userID, room)
	if err != nil {
		return nil, rules.Outcome{}, err
	}
	if g == nil {
		return nil, rules.Outcome{}, ErrGameNotFound
	}

	var out rules.Outcome
	g, err = m.update(ctx, g.ID, func(cur *Game) error {
		if cur.Status != StatusActive {
			return ErrGameOver
		}
		if !cur.InRoom(room) {
			return ErrGameNotFound
		}
		side, ok := cur.SideOf(userID)
		if !ok {
			return ErrNotInGame
		}
		if side != cur.Turn() {
			return ErrNotYourTurn
		}
		game, err := rules.Restore(cur.State)
		if err != nil {
			return fmt.Errorf("restore %s: %w", cur.ID, err)
		}
		out = game.Select(pos)
		cur.State = game.Snapshot()
		if mv := out.Move; mv != nil {
			cur.LastMove = &LastMove{
				From:   mv.From.String(),
				To:     mv.To.String(),
				Effect: mv.Effect.String(),
				Text:   mv.String(),
			}
			if mv.Effect == rules.GameOver {
				cur.Status = StatusFinished
				cur.Winner = cur.PlayerID(mv.Winner)
				cur.Outcome = mv.Winner.String()
			}
		}
		return nil
	})
	if err != nil {
		return nil, rules.Outcome{}, err
	}

	fields := []zap.Field{
		zap.String("game_id", g.ID),
		zap.String("room_id", strings.TrimSpace(room)),
		zap.String("user_id", strings.TrimSpace(userID)),
		zap.String("square", pos.String()),
		zap.Stringer("outcome", out.Kind),
	}
	if out.Move == nil {
		obslog.L().Debug("duel_select", fields...)
		return g, out, nil
	}
	obslog.L().Info("duel_move", append(fields,
		zap.String("move", out.Move.String()),
		zap.Stringer("effect", out.Move.Effect),
		zap.String("status", string(g.Status)),
	)...)
	if g.Status == StatusFinished {
		_ = m.persistIfFinal(ctx, g, "king_capture")
	}
	return g, out, nil
}

// Resign ends userID's duel in room; the opponent wins.
func (m *Manager) Resign(ctx context.Context, userID, room string) (*Game, error) {
	g, err := m.GetActiveGameByUserInRoom(ctx, userID, room)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, ErrGameNotFound
	}
	g, err = m.update(ctx, g.ID, func(cur *Game) error {
		if cur.Status != StatusActive {
			return ErrGameOver
		}
		if !cur.InRoom(room) {
			return ErrGameNotFound
		}
		side, ok := cur.SideOf(userID)
		if !ok {
			return ErrNotInGame
		}
		cur.Status = StatusResigned
		cur.Winner = cur.PlayerID(side.Opponent())
		cur.Outcome = side.Opponent().String()
		cur.State.Selected = ""
		return nil
	})
	if err != nil {
		return nil, err
	}
	obslog.L().Info("duel_resign",
		zap.String("game_id", g.ID),
		zap.String("resigner", strings.TrimSpace(userID)),
		zap.String("room_id", strings.TrimSpace(room)),
		zap.String("winner", g.Winner),
	)
	_ = m.persistIfFinal(ctx, g, "resignation")
	return g, nil
}

// Abort cancels a duel before any move was applied. Aborted duels have no winner and
// are not recorded as results.
func (m *Manager) Abort(ctx context.Context, gameID string) (*Game, error) {
	g, err := m.update(ctx, gameID, func(cur *Game) error {
		if cur.Status != StatusActive {
			return ErrGameOver
		}
		if cur.MoveCount() > 0 {
			return ErrAlreadyStarted
		}
		cur.Status = StatusAborted
		cur.Outcome = "aborted"
		cur.State.Selected = ""
		return nil
	})
	if err != nil {
		return nil, err
	}
	obslog.L().Info("duel_abort", zap.String("game_id", g.ID))
	return g, nil
}

// update runs fn on the stored duel inside a WATCH transaction. A concurrent write to the
// same key surfaces as ErrConcurrentUpdate.
func (m *Manager) update(ctx context.Context, id string, fn func(cur *Game) error) (*Game, error) {
	if m == nil || m.rdb == nil {
		return nil, fmt.Errorf("duel manager not initialized")
	}
	key := gameKey(id)
	var out *Game
	err := m.rdb.Watch(ctx, func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return ErrGameNotFound
		}
		if err != nil {
			return err
		}
		var cur Game
		if err := json.Unmarshal(raw, &cur); err != nil {
			return fmt.Errorf("decode duel %s: %w", id, err)
		}
		if err := fn(&cur); err != nil {
			return err
		}
		cur.UpdatedAt = m.now()
		next, err := json.Marshal(&cur)
		if err != nil {
			return err
		}
		if _, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, m.ttl)
			return nil
		}); err != nil {
			return err
		}
		out = &cur
		return nil
	}, key)
	if errors.Is(err, redis.TxFailedErr) {
		return nil, ErrConcurrentUpdate
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (m *Manager) save(ctx context.Context, g *Game) error {
	raw, err := json.Marshal(g)
	if err != nil {
		return err
	}
	return m.rdb.Set(ctx, gameKey(g.ID), raw, m.ttl).Err()
}

func (m *Manager) get(ctx context.Context, id string) (*Game, error) {
	if m == nil || m.rdb == nil {
		return nil, fmt.Errorf("duel manager not initialized")
	}
	raw, err := m.rdb.Get(ctx, gameKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var g Game
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("decode duel %s: %w", id, err)
	}
	return &g, nil
}

func (m *Manager) indexParticipants(ctx context.Context, id string, users ...string) error {
	for _, u := range users {
		if strings.TrimSpace(u) == "" {
			continue
		}
		key := idxUserKey(u)
		if err := m.rdb.SAdd(ctx, key, id).Err(); err != nil {
			return err
		}
		// index lives as long as the newest duel
		_ = m.rdb.Expire(ctx, key, m.ttl).Err()
	}
	return nil
}

func gameKey(id string) string        { return "duel:game:" + strings.TrimSpace(id) }
func idxUserKey(userID string) string { return "duel:index:user:" + strings.TrimSpace(userID) }

// persistIfFinal hands a finished duel to the result store, if one is attached.
func (m *Manager) persistIfFinal(ctx context.Context, g *Game, method string) error {
	if m == nil || m.repo == nil || g == nil {
		return nil
	}
	if g.Status != StatusFinished && g.Status != StatusResigned {
		return nil
	}
	if err := m.repo.SaveResult(ctx, g, method); err != nil {
		obslog.L().Error("duel_result_persist_error", zap.String("game_id", g.ID), zap.String("outcome", g.Outcome), zap.Error(err))
		return err
	}
	obslog.L().Info("duel_result_persist", zap.String("game_id", g.ID), zap.String("outcome", g.Outcome), zap.String("method", method))
	return nil
}

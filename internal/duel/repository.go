package duel

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

// Schema creates the results table used by Repository.
const Schema = `CREATE TABLE IF NOT EXISTS duel_games (
    game_id       TEXT PRIMARY KEY,
    white_id      TEXT NOT NULL,
    white_name    TEXT NOT NULL,
    black_id      TEXT NOT NULL,
    black_name    TEXT NOT NULL,
    origin_room   TEXT NOT NULL,
    resolve_room  TEXT NOT NULL,
    winner_id     TEXT NOT NULL,
    result        TEXT NOT NULL,
    result_method TEXT NOT NULL,
    move_count    INTEGER NOT NULL,
    last_move     TEXT NOT NULL DEFAULT '',
    started_at    TIMESTAMPTZ NOT NULL,
    ended_at      TIMESTAMPTZ NOT NULL,
    duration_ms   BIGINT NOT NULL
);
CREATE INDEX IF NOT EXISTS duel_games_white_idx ON duel_games (white_id, ended_at DESC);
CREATE INDEX IF NOT EXISTS duel_games_black_idx ON duel_games (black_id, ended_at DESC);`

// Result is one finished duel as stored in Postgres.
type Result struct {
	GameID    string
	WhiteID   string
	WhiteName string
	BlackID   string
	BlackName string
	WinnerID  string
	Result    string
	Method    string
	MoveCount int
	EndedAt   time.Time
}

type Repository struct {
	db *sql.DB
}

func NewRepository(databaseURL string) (*Repository, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(16)
	db.SetMaxIdleConns(8)
	db.SetConnMaxLifetime(30 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("postgres ping: %w", err)
	}
	return &Repository{db: db}, nil
}

// EnsureSchema creates the results table if it does not exist yet.
func (r *Repository) EnsureSchema(ctx context.Context) error {
	if r == nil || r.db == nil {
		return nil
	}
	if _, err := r.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("ensure duel schema: %w", err)
	}
	return nil
}

func (r *Repository) Close() error {
	if r == nil || r.db == nil {
		return nil
	}
	return r.db.Close()
}

// SaveResult upserts a finished duel.
func (r *Repository) SaveResult(ctx context.Context, g *Game, method string) error {
	if r == nil || r.db == nil || g == nil {
		return nil
	}
	lastMove := ""
	if g.LastMove != nil {
		lastMove = g.LastMove.Text
	}
	q := `INSERT INTO duel_games (
        game_id, white_id, white_name, black_id, black_name,
        origin_room, resolve_room, winner_id, result, result_method,
        move_count, last_move, started_at, ended_at, duration_ms
      ) VALUES (
        $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15
      ) ON CONFLICT (game_id) DO UPDATE SET
        winner_id=EXCLUDED.winner_id,
        result=EXCLUDED.result,
        result_method=EXCLUDED.result_method,
        move_count=EXCLUDED.move_count,
        last_move=EXCLUDED.last_move,
        ended_at=EXCLUDED.ended_at,
        duration_ms=EXCLUDED.duration_ms`

	_, err := r.db.ExecContext(ctx, q,
		g.ID,
		g.WhiteID, g.WhiteName,
		g.BlackID, g.BlackName,
		g.OriginRoom, g.ResolveRoom,
		g.Winner, resultToken(g), strings.TrimSpace(method),
		g.MoveCount(), lastMove,
		g.CreatedAt, g.UpdatedAt, durationMillis(g),
	)
	if err != nil {
		return fmt.Errorf("save duel %s: %w", g.ID, err)
	}
	return nil
}

// RecentResults lists the newest finished duels userID took part in.
func (r *Repository) RecentResults(ctx context.Context, userID string, limit int) ([]Result, error) {
	if r == nil || r.db == nil {
		return nil, nil
	}
	if limit <= 0 || limit > 50 {
		limit = 10
	}
	rows, err := r.db.QueryContext(ctx, `SELECT game_id, white_id, white_name, black_id, black_name,
        winner_id, result, result_method, move_count, ended_at
      FROM duel_games
      WHERE white_id = $1 OR black_id = $1
      ORDER BY ended_at DESC
      LIMIT $2`, strings.TrimSpace(userID), limit)
	if err != nil {
		return nil, fmt.Errorf("recent duels: %w", err)
	}
	defer rows.Close()

	var out []Result
	for rows.Next() {
		var res Result
		if err := rows.Scan(&res.GameID, &res.WhiteID, &res.WhiteName, &res.BlackID, &res.BlackName,
			&res.WinnerID, &res.Result, &res.Method, &res.MoveCount, &res.EndedAt); err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, rows.Err()
}

// resultToken is "1-0", "0-1" or "*" for a duel without a winner.
func resultToken(g *Game) string {
	switch {
	case g.Winner == "":
		return "*"
	case g.Winner == g.WhiteID:
		return "1-0"
	case g.Winner == g.BlackID:
		return "0-1"
	default:
		return "*"
	}
}

func durationMillis(g *Game) int64 {
	d := g.UpdatedAt.Sub(g.CreatedAt).Milliseconds()
	if d < 0 {
		return 0
	}
	return d
}

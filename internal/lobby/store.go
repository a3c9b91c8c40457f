package lobby

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const ttlChannel = 24 * time.Hour

type store struct{ rdb *redis.Client }

func keyChannel(code string) string      { return "lobby:" + strings.ToUpper(strings.TrimSpace(code)) }
func keyRooms(code string) string        { return keyChannel(code) + ":rooms" }
func keyParticipants(code string) string { return keyChannel(code) + ":participants" }
func keyUserIdx(user string) string      { return "lobby:index:user:" + strings.TrimSpace(user) }
func keyOpen() string                    { return "lobby:open" }

func (s *store) save(ctx context.Context, ch *Channel) error {
	raw, err := json.Marshal(ch)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, keyChannel(ch.Code), raw, ttlChannel).Err()
}

// reserve claims a fresh code key; false means the code is taken.
func (s *store) reserve(ctx context.Context, code string) (bool, error) {
	return s.rdb.SetNX(ctx, keyChannel(code), "{}", ttlChannel).Result()
}

func (s *store) load(ctx context.Context, code string) (*Channel, error) {
	raw, err := s.rdb.Get(ctx, keyChannel(code)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var ch Channel
	if err := json.Unmarshal(raw, &ch); err != nil {
		return nil, err
	}
	return &ch, nil
}

func (s *store) addMember(ctx context.Context, code, room, userID string) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		addMember(ctx, pipe, code, room, userID)
		return nil
	})
	return err
}

func addMember(ctx context.Context, pipe redis.Pipeliner, code, room, userID string) {
	pipe.SAdd(ctx, keyParticipants(code), userID)
	pipe.Expire(ctx, keyParticipants(code), ttlChannel)
	pipe.SAdd(ctx, keyRooms(code), room)
	pipe.Expire(ctx, keyRooms(code), ttlChannel)
	pipe.SAdd(ctx, keyUserIdx(userID), strings.ToUpper(code))
	pipe.Expire(ctx, keyUserIdx(userID), ttlChannel)
}

// dropMember undoes addMember for a joiner whose duel could not start. keepRoom stays
// bound because the creator still waits there.
func (s *store) dropMember(ctx context.Context, code, room, userID, keepRoom string) error {
	_, err := s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SRem(ctx, keyParticipants(code), userID)
		if room != keepRoom {
			pipe.SRem(ctx, keyRooms(code), room)
		}
		pipe.SRem(ctx, keyUserIdx(userID), strings.ToUpper(code))
		return nil
	})
	return err
}

func (s *store) rooms(ctx context.Context, code string) ([]string, error) {
	return s.rdb.SMembers(ctx, keyRooms(code)).Result()
}

func (s *store) participants(ctx context.Context, code string) ([]string, error) {
	return s.rdb.SMembers(ctx, keyParticipants(code)).Result()
}

func (s *store) codesByUser(ctx context.Context, userID string) ([]string, error) {
	return s.rdb.SMembers(ctx, keyUserIdx(userID)).Result()
}

func (s *store) open(ctx context.Context, code string) error {
	if err := s.rdb.SAdd(ctx, keyOpen(), code).Err(); err != nil {
		return err
	}
	return s.rdb.Expire(ctx, keyOpen(), ttlChannel).Err()
}

func (s *store) close(ctx context.Context, code string) error {
	return s.rdb.SRem(ctx, keyOpen(), code).Err()
}

func (s *store) listOpen(ctx context.Context) ([]*Channel, error) {
	codes, err := s.rdb.SMembers(ctx, keyOpen()).Result()
	if err != nil {
		return nil, err
	}
	var out []*Channel
	for _, c := range codes {
		ch, _ := s.load(ctx, c)
		if ch == nil || ch.State != StateLobby {
			continue
		}
		out = append(out, ch)
	}
	return out, nil
}

const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// newCode returns "CH-" followed by six characters without look-alikes (0/O, 1/I).
func newCode() (string, error) {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return "CH-" + string(b), nil
}
